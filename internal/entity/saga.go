package entity

import "fmt"

// BookingSagaState mirrors the booking orchestrator's lifecycle for a single
// reservation attempt. The orchestrator owns these states; they are modelled
// here so the participant's guarantees can be checked against defined
// transitions instead of an informal diagram.
type BookingSagaState string

const (
	SagaStatePending     BookingSagaState = "PENDING"
	SagaStateSagaPending BookingSagaState = "SAGA_PENDING"
	SagaStateConfirmed   BookingSagaState = "CONFIRMED"
	SagaStateSagaFailed  BookingSagaState = "SAGA_FAILED"
	SagaStateCancelled   BookingSagaState = "CANCELLED"
)

// SagaSignal is an observable step in the command/event exchange.
type SagaSignal string

const (
	SignalReserveSent   SagaSignal = "slot.reserve"
	SignalSlotReserved  SagaSignal = "slot.reserved"
	SignalReserveFailed SagaSignal = "slot.reserve.failed"
	SignalSlotReleased  SagaSignal = "slot.released"
)

var sagaTransitions = map[BookingSagaState]map[SagaSignal]BookingSagaState{
	SagaStatePending: {
		SignalReserveSent: SagaStateSagaPending,
	},
	SagaStateSagaPending: {
		SignalSlotReserved:  SagaStateConfirmed,
		SignalReserveFailed: SagaStateSagaFailed,
	},
	SagaStateConfirmed: {
		SignalSlotReleased: SagaStateCancelled,
	},
}

// Transition returns the state following signal, or an error when the
// transition is not defined for the current state.
func (s BookingSagaState) Transition(signal SagaSignal) (BookingSagaState, error) {
	next, ok := sagaTransitions[s][signal]
	if !ok {
		return s, fmt.Errorf("no transition from %s on %s", s, signal)
	}
	return next, nil
}

// Terminal reports whether the saga can make no further progress.
func (s BookingSagaState) Terminal() bool {
	return len(sagaTransitions[s]) == 0
}
