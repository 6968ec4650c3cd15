package worker

import (
	"context"
	"time"

	repository "github.com/parkgolf/slot-service/internal/database/postgres"

	"github.com/sirupsen/logrus"
)

// SlotCloserWorker periodically marks past-dated slots CLOSED so they stop
// accepting reservations. It works in batches to keep the update short-lived
// under concurrent capacity traffic.
type SlotCloserWorker struct {
	slotRepo  repository.SlotRepository
	interval  time.Duration
	batchSize int
}

func NewSlotCloserWorker(slotRepo repository.SlotRepository, interval time.Duration, batchSize int) *SlotCloserWorker {
	if interval <= 0 {
		interval = 30 * time.Minute
	}
	if batchSize <= 0 {
		batchSize = 100
	}
	return &SlotCloserWorker{
		slotRepo:  slotRepo,
		interval:  interval,
		batchSize: batchSize,
	}
}

func (w *SlotCloserWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	logrus.Info("Slot closer worker started")

	for {
		select {
		case <-ctx.Done():
			logrus.Info("Slot closer worker stopped")
			return
		case <-ticker.C:
			w.closePastSlots(ctx)
		}
	}
}

func (w *SlotCloserWorker) closePastSlots(ctx context.Context) {
	today := time.Now().Truncate(24 * time.Hour)

	var total int64
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		closed, err := w.slotRepo.CloseBefore(ctx, today, w.batchSize)
		if err != nil {
			logrus.Errorf("Failed to close past slots: %v", err)
			return
		}
		total += closed
		if closed < int64(w.batchSize) {
			break
		}
	}

	if total > 0 {
		logrus.Infof("Closed %d past slots", total)
	}
}
