package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/parkgolf/slot-service/internal/entity"
)

// fakeSlotRepo mirrors the postgres repository semantics in memory. The
// mutex plays the part of the row lock: every capacity operation is one
// critical section combining the check and the mutation.
type fakeSlotRepo struct {
	mu           sync.Mutex
	nextID       int64
	slots        map[int64]*entity.Slot
	reservations map[string]int
}

func newFakeSlotRepo() *fakeSlotRepo {
	return &fakeSlotRepo{
		slots:        make(map[int64]*entity.Slot),
		reservations: make(map[string]int),
	}
}

func reservationKey(bookingID, slotID int64) string {
	return fmt.Sprintf("%d:%d", bookingID, slotID)
}

func slotKey(s *entity.Slot) string {
	return fmt.Sprintf("%d:%s:%s", s.GameID, s.Date.Format("2006-01-02"), s.StartTime)
}

func (r *fakeSlotRepo) add(slot *entity.Slot) *entity.Slot {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	slot.ID = r.nextID
	r.slots[slot.ID] = slot
	return slot
}

func (r *fakeSlotRepo) GetByID(ctx context.Context, id int64) (*entity.Slot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	slot, ok := r.slots[id]
	if !ok {
		return nil, entity.ErrSlotNotFound
	}
	copied := *slot
	return &copied, nil
}

func (r *fakeSlotRepo) ListByGame(ctx context.Context, gameID int64, from, to time.Time, availableOnly bool) ([]*entity.Slot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Slot
	for _, slot := range r.slots {
		if slot.GameID != gameID || slot.Date.Before(from) || slot.Date.After(to) {
			continue
		}
		if availableOnly && (slot.Status != entity.SlotStatusAvailable || !slot.Active) {
			continue
		}
		copied := *slot
		out = append(out, &copied)
	}
	return out, nil
}

func (r *fakeSlotRepo) UpdateStatus(ctx context.Context, id int64, status entity.SlotStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	slot, ok := r.slots[id]
	if !ok {
		return entity.ErrSlotNotFound
	}
	slot.Status = status
	return nil
}

func (r *fakeSlotRepo) CreateBatch(ctx context.Context, slots []*entity.Slot) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing := make(map[string]bool, len(r.slots))
	for _, slot := range r.slots {
		existing[slotKey(slot)] = true
	}

	created := 0
	for _, slot := range slots {
		if existing[slotKey(slot)] {
			continue
		}
		r.nextID++
		copied := *slot
		copied.ID = r.nextID
		r.slots[copied.ID] = &copied
		existing[slotKey(&copied)] = true
		created++
	}
	return created, nil
}

func (r *fakeSlotRepo) DeleteUnbookedInRange(ctx context.Context, gameID int64, from, to time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var deleted int64
	for id, slot := range r.slots {
		if slot.GameID != gameID || slot.Date.Before(from) || slot.Date.After(to) {
			continue
		}
		if slot.BookedPlayers != 0 {
			continue
		}
		delete(r.slots, id)
		deleted++
	}
	return deleted, nil
}

func (r *fakeSlotRepo) Reserve(ctx context.Context, bookingID, slotID int64, playerCount int) (*entity.Slot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	slot, ok := r.slots[slotID]
	if !ok {
		return nil, entity.ErrSlotNotFound
	}

	if _, exists := r.reservations[reservationKey(bookingID, slotID)]; exists {
		copied := *slot
		return &copied, nil
	}

	if err := slot.ApplyReserve(playerCount); err != nil {
		return nil, err
	}

	r.reservations[reservationKey(bookingID, slotID)] = playerCount
	copied := *slot
	return &copied, nil
}

func (r *fakeSlotRepo) Release(ctx context.Context, bookingID, slotID int64, playerCount int) (*entity.Slot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	slot, ok := r.slots[slotID]
	if !ok {
		return nil, entity.ErrSlotNotFound
	}

	reserved := playerCount
	key := reservationKey(bookingID, slotID)
	if recorded, exists := r.reservations[key]; exists {
		reserved = recorded
		delete(r.reservations, key)
	}

	slot.ApplyRelease(reserved)
	copied := *slot
	return &copied, nil
}

func (r *fakeSlotRepo) AdjustCapacity(ctx context.Context, slotID int64, delta int) (*entity.Slot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	slot, ok := r.slots[slotID]
	if !ok {
		return nil, entity.ErrSlotNotFound
	}

	if delta >= 0 {
		if err := slot.ApplyReserve(delta); err != nil {
			return nil, err
		}
	} else {
		slot.ApplyRelease(-delta)
	}

	copied := *slot
	return &copied, nil
}

func (r *fakeSlotRepo) CloseBefore(ctx context.Context, date time.Time, batchSize int) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var closed int64
	for _, slot := range r.slots {
		if closed >= int64(batchSize) {
			break
		}
		if slot.Date.Before(date) && (slot.Status == entity.SlotStatusAvailable || slot.Status == entity.SlotStatusFullyBooked) {
			slot.Status = entity.SlotStatusClosed
			closed++
		}
	}
	return closed, nil
}

type fakeScheduleRepo struct {
	mu        sync.Mutex
	nextID    int64
	schedules map[int64]*entity.WeeklySchedule
}

func newFakeScheduleRepo() *fakeScheduleRepo {
	return &fakeScheduleRepo{schedules: make(map[int64]*entity.WeeklySchedule)}
}

func (r *fakeScheduleRepo) Create(ctx context.Context, schedule *entity.WeeklySchedule) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.schedules {
		if s.GameID == schedule.GameID && s.DayOfWeek == schedule.DayOfWeek {
			return entity.ErrScheduleConflict
		}
	}
	r.nextID++
	schedule.ID = r.nextID
	r.schedules[schedule.ID] = schedule
	return nil
}

func (r *fakeScheduleRepo) GetByID(ctx context.Context, id int64) (*entity.WeeklySchedule, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	schedule, ok := r.schedules[id]
	if !ok {
		return nil, entity.ErrScheduleNotFound
	}
	copied := *schedule
	return &copied, nil
}

func (r *fakeScheduleRepo) GetActiveByGame(ctx context.Context, gameID int64) ([]*entity.WeeklySchedule, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.WeeklySchedule
	for _, schedule := range r.schedules {
		if schedule.GameID == gameID && schedule.Active {
			copied := *schedule
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *fakeScheduleRepo) Update(ctx context.Context, schedule *entity.WeeklySchedule) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.schedules[schedule.ID]; !ok {
		return entity.ErrScheduleNotFound
	}
	copied := *schedule
	r.schedules[schedule.ID] = &copied
	return nil
}

func (r *fakeScheduleRepo) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.schedules[id]; !ok {
		return entity.ErrScheduleNotFound
	}
	delete(r.schedules, id)
	return nil
}

type fakeCache struct {
	mu    sync.Mutex
	slots map[int64]*entity.Slot
}

func (c *fakeCache) Get(ctx context.Context, id int64) (*entity.Slot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	slot, ok := c.slots[id]
	if !ok {
		return nil, entity.ErrSlotNotFound
	}
	copied := *slot
	return &copied, nil
}

func (c *fakeCache) Set(ctx context.Context, slot *entity.Slot) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	copied := *slot
	c.slots[slot.ID] = &copied
	return nil
}

func (c *fakeCache) Invalidate(ctx context.Context, id int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.slots, id)
	return nil
}

type fakeGameRepo struct {
	games map[int64]*entity.Game
}

func newFakeGameRepo(games ...*entity.Game) *fakeGameRepo {
	repo := &fakeGameRepo{games: make(map[int64]*entity.Game)}
	for _, game := range games {
		repo.games[game.ID] = game
	}
	return repo
}

func (r *fakeGameRepo) GetByID(ctx context.Context, id int64) (*entity.Game, error) {
	game, ok := r.games[id]
	if !ok {
		return nil, entity.ErrGameNotFound
	}
	return game, nil
}
