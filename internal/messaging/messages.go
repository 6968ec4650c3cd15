package messaging

// Topics exchanged with the booking orchestrator. Inbound commands arrive on
// the slot exchange; outcome events are published back on the same exchange.
const (
	TopicSlotReserve   = "slot.reserve"
	TopicSlotRelease   = "slot.release"
	TopicSlotsGenerate = "slots.generate"
	TopicSlotsBook     = "slots.book"
	TopicSlotsDirect   = "slots.release"

	TopicSlotReserved      = "slot.reserved"
	TopicSlotReserveFailed = "slot.reserve.failed"
	TopicSlotReleased      = "slot.released"
	TopicSlotReleaseFailed = "slot.release.failed"
)

// InboundTopics lists every routing key this service consumes.
var InboundTopics = []string{
	TopicSlotReserve,
	TopicSlotRelease,
	TopicSlotsGenerate,
	TopicSlotsBook,
	TopicSlotsDirect,
}

// Commands

type SlotReserveCommand struct {
	BookingID     int64  `json:"bookingId"`
	BookingNumber string `json:"bookingNumber"`
	SlotID        int64  `json:"slotId"`
	PlayerCount   int    `json:"playerCount"`
	RequestedAt   string `json:"requestedAt"`
}

type SlotReleaseCommand struct {
	BookingID   int64  `json:"bookingId"`
	SlotID      int64  `json:"slotId"`
	PlayerCount int    `json:"playerCount"`
	Reason      string `json:"reason"`
	RequestedAt string `json:"requestedAt"`
}

type GenerateSlotsCommand struct {
	GameID    int64  `json:"gameId"`
	DateFrom  string `json:"dateFrom"`
	DateTo    string `json:"dateTo"`
	Overwrite bool   `json:"overwrite"`
}

type AdjustSlotCommand struct {
	SlotID      int64 `json:"slotId"`
	PlayerCount int   `json:"playerCount"`
}

// Events

type SlotReservedEvent struct {
	EventID     string `json:"eventId"`
	BookingID   int64  `json:"bookingId"`
	SlotID      int64  `json:"slotId"`
	PlayerCount int    `json:"playerCount"`
	ReservedAt  string `json:"reservedAt"`
}

type SlotReserveFailedEvent struct {
	EventID   string `json:"eventId"`
	BookingID int64  `json:"bookingId"`
	SlotID    int64  `json:"slotId"`
	Reason    string `json:"reason"`
	FailedAt  string `json:"failedAt"`
}

type SlotReleasedEvent struct {
	EventID     string `json:"eventId"`
	BookingID   int64  `json:"bookingId"`
	SlotID      int64  `json:"slotId"`
	PlayerCount int    `json:"playerCount"`
	ReleasedAt  string `json:"releasedAt"`
}

type SlotReleaseFailedEvent struct {
	EventID   string `json:"eventId"`
	BookingID int64  `json:"bookingId"`
	SlotID    int64  `json:"slotId"`
	Reason    string `json:"reason"`
	FailedAt  string `json:"failedAt"`
}
