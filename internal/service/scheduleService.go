package service

import (
	"context"
	"fmt"

	repository "github.com/parkgolf/slot-service/internal/database/postgres"
	"github.com/parkgolf/slot-service/internal/entity"

	"github.com/sirupsen/logrus"
)

type scheduleService struct {
	scheduleRepo repository.ScheduleRepository
	gameRepo     repository.GameRepository
}

func NewScheduleService(scheduleRepo repository.ScheduleRepository, gameRepo repository.GameRepository) ScheduleService {
	return &scheduleService{scheduleRepo: scheduleRepo, gameRepo: gameRepo}
}

func (s *scheduleService) CreateSchedule(ctx context.Context, req *CreateScheduleRequest) (*entity.WeeklySchedule, error) {
	if _, err := s.gameRepo.GetByID(ctx, req.GameID); err != nil {
		return nil, fmt.Errorf("game %d: %w", req.GameID, err)
	}

	if err := validateWindow(req.StartTime, req.EndTime); err != nil {
		return nil, err
	}

	schedule := &entity.WeeklySchedule{
		GameID:          req.GameID,
		DayOfWeek:       req.DayOfWeek,
		StartTime:       req.StartTime,
		EndTime:         req.EndTime,
		IntervalMinutes: req.IntervalMinutes,
		Active:          true,
	}

	if err := s.scheduleRepo.Create(ctx, schedule); err != nil {
		return nil, err
	}

	logrus.Infof("Created weekly schedule %d for game %d, day %d", schedule.ID, schedule.GameID, schedule.DayOfWeek)
	return schedule, nil
}

func (s *scheduleService) GetSchedule(ctx context.Context, id int64) (*entity.WeeklySchedule, error) {
	return s.scheduleRepo.GetByID(ctx, id)
}

func (s *scheduleService) GetGameSchedules(ctx context.Context, gameID int64) ([]*entity.WeeklySchedule, error) {
	return s.scheduleRepo.GetActiveByGame(ctx, gameID)
}

// UpdateSchedule changes the window, interval or active flag of an existing
// schedule. The game and weekday are identity; moving a schedule means
// deleting and recreating it.
func (s *scheduleService) UpdateSchedule(ctx context.Context, id int64, req *UpdateScheduleRequest) (*entity.WeeklySchedule, error) {
	schedule, err := s.scheduleRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.StartTime != nil {
		schedule.StartTime = *req.StartTime
	}
	if req.EndTime != nil {
		schedule.EndTime = *req.EndTime
	}
	if req.IntervalMinutes != nil {
		schedule.IntervalMinutes = *req.IntervalMinutes
	}
	if req.Active != nil {
		schedule.Active = *req.Active
	}

	if err := validateWindow(schedule.StartTime, schedule.EndTime); err != nil {
		return nil, err
	}
	if schedule.IntervalMinutes <= 0 {
		return nil, fmt.Errorf("%w: interval must be positive", entity.ErrInvalidInput)
	}

	if err := s.scheduleRepo.Update(ctx, schedule); err != nil {
		return nil, err
	}

	return schedule, nil
}

func (s *scheduleService) DeleteSchedule(ctx context.Context, id int64) error {
	return s.scheduleRepo.Delete(ctx, id)
}

func validateWindow(startTime, endTime string) error {
	start, err := parseClock(startTime)
	if err != nil {
		return err
	}
	end, err := parseClock(endTime)
	if err != nil {
		return err
	}
	if start >= end {
		return entity.ErrInvalidTimeWindow
	}
	return nil
}
