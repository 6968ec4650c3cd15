package messaging

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/parkgolf/slot-service/internal/service"

	"github.com/sirupsen/logrus"
)

// SagaHandler translates the booking orchestrator's commands into capacity
// ledger calls and answers with outcome events. The contract for reserve: no
// path may finish without publishing either slot.reserved or
// slot.reserve.failed, otherwise the orchestrator's saga stalls.
type SagaHandler struct {
	capacity  service.CapacityService
	slots     service.SlotService
	publisher EventPublisher
}

func NewSagaHandler(capacity service.CapacityService, slots service.SlotService, publisher EventPublisher) *SagaHandler {
	return &SagaHandler{
		capacity:  capacity,
		slots:     slots,
		publisher: publisher,
	}
}

// Register wires every inbound topic into the router.
func (h *SagaHandler) Register(router *Router) {
	router.Handle(TopicSlotReserve, h.HandleSlotReserve)
	router.Handle(TopicSlotRelease, h.HandleSlotRelease)
	router.Handle(TopicSlotsGenerate, h.HandleGenerateSlots)
	router.Handle(TopicSlotsBook, h.HandleBookSlot)
	router.Handle(TopicSlotsDirect, h.HandleReleaseSlot)
}

func (h *SagaHandler) HandleSlotReserve(ctx context.Context, body []byte) error {
	var cmd SlotReserveCommand
	if err := json.Unmarshal(body, &cmd); err != nil {
		logrus.Errorf("Malformed slot.reserve payload, dropping: %v", err)
		return nil
	}

	logrus.Infof("Received slot.reserve: booking=%d number=%s slot=%d players=%d",
		cmd.BookingID, cmd.BookingNumber, cmd.SlotID, cmd.PlayerCount)

	_, err := h.capacity.Reserve(ctx, cmd.BookingID, cmd.SlotID, cmd.PlayerCount)
	if err != nil {
		// Business rejection or unexpected failure: either way the
		// orchestrator gets an explicit answer.
		failed := SlotReserveFailedEvent{
			EventID:   uuid.NewString(),
			BookingID: cmd.BookingID,
			SlotID:    cmd.SlotID,
			Reason:    err.Error(),
			FailedAt:  time.Now().UTC().Format(time.RFC3339),
		}
		if pubErr := h.publisher.Publish(ctx, TopicSlotReserveFailed, failed); pubErr != nil {
			logrus.Errorf("Failed to publish slot.reserve.failed for booking %d: %v", cmd.BookingID, pubErr)
			return pubErr
		}

		logrus.Warnf("slot.reserve failed for booking %d: %v", cmd.BookingID, err)
		return nil
	}

	reserved := SlotReservedEvent{
		EventID:     uuid.NewString(),
		BookingID:   cmd.BookingID,
		SlotID:      cmd.SlotID,
		PlayerCount: cmd.PlayerCount,
		ReservedAt:  time.Now().UTC().Format(time.RFC3339),
	}
	if err := h.publisher.Publish(ctx, TopicSlotReserved, reserved); err != nil {
		logrus.Errorf("Failed to publish slot.reserved for booking %d: %v", cmd.BookingID, err)
		return err
	}

	logrus.Infof("slot.reserve succeeded for booking %d, emitted slot.reserved", cmd.BookingID)
	return nil
}

func (h *SagaHandler) HandleSlotRelease(ctx context.Context, body []byte) error {
	var cmd SlotReleaseCommand
	if err := json.Unmarshal(body, &cmd); err != nil {
		logrus.Errorf("Malformed slot.release payload, dropping: %v", err)
		return nil
	}

	logrus.Infof("Received slot.release: booking=%d slot=%d players=%d reason=%q",
		cmd.BookingID, cmd.SlotID, cmd.PlayerCount, cmd.Reason)

	_, err := h.capacity.Release(ctx, cmd.BookingID, cmd.SlotID, cmd.PlayerCount)
	if err != nil {
		failed := SlotReleaseFailedEvent{
			EventID:   uuid.NewString(),
			BookingID: cmd.BookingID,
			SlotID:    cmd.SlotID,
			Reason:    err.Error(),
			FailedAt:  time.Now().UTC().Format(time.RFC3339),
		}
		if pubErr := h.publisher.Publish(ctx, TopicSlotReleaseFailed, failed); pubErr != nil {
			logrus.Errorf("Failed to publish slot.release.failed for booking %d: %v", cmd.BookingID, pubErr)
			return pubErr
		}

		logrus.Errorf("slot.release failed for booking %d: %v", cmd.BookingID, err)
		return nil
	}

	released := SlotReleasedEvent{
		EventID:     uuid.NewString(),
		BookingID:   cmd.BookingID,
		SlotID:      cmd.SlotID,
		PlayerCount: cmd.PlayerCount,
		ReleasedAt:  time.Now().UTC().Format(time.RFC3339),
	}
	if err := h.publisher.Publish(ctx, TopicSlotReleased, released); err != nil {
		logrus.Errorf("Failed to publish slot.released for booking %d: %v", cmd.BookingID, err)
		return err
	}

	logrus.Infof("slot.release succeeded for booking %d, emitted slot.released", cmd.BookingID)
	return nil
}

func (h *SagaHandler) HandleGenerateSlots(ctx context.Context, body []byte) error {
	var cmd GenerateSlotsCommand
	if err := json.Unmarshal(body, &cmd); err != nil {
		logrus.Errorf("Malformed slots.generate payload, dropping: %v", err)
		return nil
	}

	result, err := h.slots.GenerateSlots(ctx, &service.GenerateSlotsRequest{
		GameID:    cmd.GameID,
		DateFrom:  cmd.DateFrom,
		DateTo:    cmd.DateTo,
		Overwrite: cmd.Overwrite,
	})
	if err != nil {
		logrus.Errorf("slots.generate failed for game %d: %v", cmd.GameID, err)
		return nil
	}

	logrus.Infof("slots.generate for game %d: created=%d skipped=%d", cmd.GameID, result.Created, result.Skipped)
	return nil
}

func (h *SagaHandler) HandleBookSlot(ctx context.Context, body []byte) error {
	var cmd AdjustSlotCommand
	if err := json.Unmarshal(body, &cmd); err != nil {
		logrus.Errorf("Malformed slots.book payload, dropping: %v", err)
		return nil
	}

	if _, err := h.capacity.Book(ctx, cmd.SlotID, cmd.PlayerCount); err != nil {
		logrus.Errorf("slots.book failed for slot %d: %v", cmd.SlotID, err)
	}
	return nil
}

func (h *SagaHandler) HandleReleaseSlot(ctx context.Context, body []byte) error {
	var cmd AdjustSlotCommand
	if err := json.Unmarshal(body, &cmd); err != nil {
		logrus.Errorf("Malformed slots.release payload, dropping: %v", err)
		return nil
	}

	if _, err := h.capacity.ReleaseDirect(ctx, cmd.SlotID, cmd.PlayerCount); err != nil {
		logrus.Errorf("slots.release failed for slot %d: %v", cmd.SlotID, err)
	}
	return nil
}
