package services

import (
	"time"

	"github.com/alphabatem/common/context"
	"github.com/google/uuid"
	"github.com/lac-hong-legacy/study_api/dto"
	"github.com/lac-hong-legacy/study_api/model"
	"github.com/lac-hong-legacy/study_api/services/repositories"
	"github.com/lac-hong-legacy/study_api/shared"
	log "github.com/sirupsen/logrus"
)

type StudyGoalService struct {
	context.DefaultService

	storeSvc *StoreService
	redisSvc *RedisService
	goalRepo *repositories.GoalRepository
}

const STUDY_GOAL_SVC = "study_goal_svc"

func (svc StudyGoalService) Id() string {
	return STUDY_GOAL_SVC
}

func (svc *StudyGoalService) Configure(ctx *context.Context) error {
	return svc.DefaultService.Configure(ctx)
}

func (svc *StudyGoalService) Start() error {
	svc.storeSvc = svc.Service(STORE_SVC).(*StoreService)
	svc.redisSvc, _ = svc.Service(REDIS_SVC).(*RedisService)
	svc.goalRepo = repositories.NewGoalRepository(svc.storeSvc)
	return nil
}

func (svc *StudyGoalService) GetUserGoals(userID, status string) ([]model.StudyGoal, error) {
	switch status {
	case "", shared.GoalStatusActive, shared.GoalStatusCompleted, shared.GoalStatusExpired:
	default:
		return nil, shared.NewBadRequestError(nil, "status must be one of: active completed expired")
	}

	goals, err := svc.goalRepo.GetUserGoals(userID)
	if err != nil {
		return nil, svc.storeSvc.HandleError(err)
	}

	filtered := []model.StudyGoal{}
	for _, goal := range goals {
		if status == "" || goal.Status == status {
			filtered = append(filtered, goal)
		}
	}
	return filtered, nil
}

func (svc *StudyGoalService) GetGoal(userID, goalID string) (*model.StudyGoal, error) {
	goal, err := svc.goalRepo.GetGoal(userID, goalID)
	if err != nil {
		return nil, svc.storeSvc.HandleLookupError(err, "Goal not found")
	}
	return goal, nil
}

func (svc *StudyGoalService) CreateGoal(req dto.CreateGoalRequest) (*model.StudyGoal, error) {
	now := time.Now().UTC()
	if req.Deadline != nil && !req.Deadline.After(now) {
		return nil, shared.NewBadRequestError(nil, "Deadline must be in the future")
	}

	period := req.Period
	if period == "" {
		period = shared.GoalPeriodOnce
	}

	id, _ := uuid.NewV7()
	goal := &model.StudyGoal{
		ID:              id.String(),
		UserID:          req.UserID,
		Title:           req.Title,
		Type:            req.Type,
		Target:          req.Target,
		Period:          period,
		Deadline:        utcPtr(req.Deadline),
		Status:          shared.GoalStatusActive,
		PeriodStartedAt: periodStart(period, now),
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := svc.goalRepo.CreateGoal(goal); err != nil {
		return nil, svc.storeSvc.HandleError(err)
	}

	svc.redisSvc.Invalidate(analyticsCachePattern(req.UserID))
	return goal, nil
}

func (svc *StudyGoalService) UpdateGoal(req dto.UpdateGoalRequest) (*model.StudyGoal, error) {
	now := time.Now().UTC()
	if req.Deadline != nil && !req.Deadline.After(now) {
		return nil, shared.NewBadRequestError(nil, "Deadline must be in the future")
	}

	goal, err := svc.goalRepo.UpdateGoal(req.UserID, req.GoalID, func(goal *model.StudyGoal) error {
		if req.Title != nil {
			goal.Title = *req.Title
		}
		if req.Target != nil {
			goal.Target = *req.Target
		}
		if req.Period != nil && *req.Period != goal.Period {
			goal.Period = *req.Period
			goal.PeriodStartedAt = periodStart(goal.Period, now)
		}
		if req.Deadline != nil {
			goal.Deadline = utcPtr(req.Deadline)
			if goal.Status == shared.GoalStatusExpired {
				goal.Status = shared.GoalStatusActive
			}
		}
		settleGoal(goal, now)
		return nil
	})
	if err != nil {
		return nil, svc.storeSvc.HandleLookupError(err, "Goal not found")
	}

	svc.redisSvc.Invalidate(analyticsCachePattern(req.UserID))
	return goal, nil
}

// ProgressGoal adds amount to the goal's progress and completes it once the target
// is reached.
func (svc *StudyGoalService) ProgressGoal(userID, goalID string, amount int) (*model.StudyGoal, error) {
	if amount <= 0 {
		return nil, shared.NewBadRequestError(nil, "amount must be greater than 0")
	}

	now := time.Now().UTC()
	goal, err := svc.goalRepo.UpdateGoal(userID, goalID, func(goal *model.StudyGoal) error {
		if goal.Status == shared.GoalStatusExpired {
			return shared.NewConflictError(nil, "Goal has expired")
		}
		goal.Progress += amount
		settleGoal(goal, now)
		return nil
	})
	if err != nil {
		return nil, svc.storeSvc.HandleLookupError(err, "Goal not found")
	}

	svc.redisSvc.Invalidate(analyticsCachePattern(userID))
	return goal, nil
}

func (svc *StudyGoalService) ResetGoal(userID, goalID string) (*model.StudyGoal, error) {
	now := time.Now().UTC()
	goal, err := svc.goalRepo.UpdateGoal(userID, goalID, func(goal *model.StudyGoal) error {
		goal.Progress = 0
		goal.Status = shared.GoalStatusActive
		goal.CompletedAt = nil
		goal.PeriodStartedAt = periodStart(goal.Period, now)
		return nil
	})
	if err != nil {
		return nil, svc.storeSvc.HandleLookupError(err, "Goal not found")
	}

	svc.redisSvc.Invalidate(analyticsCachePattern(userID))
	return goal, nil
}

func (svc *StudyGoalService) DeleteGoal(userID, goalID string) error {
	if err := svc.goalRepo.DeleteGoal(userID, goalID); err != nil {
		return svc.storeSvc.HandleLookupError(err, "Goal not found")
	}

	svc.redisSvc.Invalidate(analyticsCachePattern(userID))
	return nil
}

// RecordActivity credits the user's active goals whose type appears in activity.
// Failures are logged; activity tracking never fails the caller.
func (svc *StudyGoalService) RecordActivity(userID string, activity map[string]int) {
	if svc == nil || svc.goalRepo == nil || len(activity) == 0 {
		return
	}

	now := time.Now().UTC()
	changed, err := svc.goalRepo.UpdateGoals(func(goal *model.StudyGoal) bool {
		if goal.UserID != userID || goal.Status != shared.GoalStatusActive {
			return false
		}
		amount := activity[goal.Type]
		if amount <= 0 {
			return false
		}
		goal.Progress += amount
		settleGoal(goal, now)
		return true
	})
	if err != nil {
		log.WithFields(log.Fields{
			"user_id": userID,
			"error":   err,
		}).Error("Failed to record goal activity")
		return
	}

	if changed > 0 {
		svc.redisSvc.Invalidate(analyticsCachePattern(userID))
	}
}

// RefreshGoals expires goals past their deadline and starts a new period for
// daily and weekly goals whose period has rolled over.
func (svc *StudyGoalService) RefreshGoals(now time.Time) (expired int, rolled int, err error) {
	now = now.UTC()
	_, err = svc.goalRepo.UpdateGoals(func(goal *model.StudyGoal) bool {
		if goal.Status == shared.GoalStatusActive && goal.Deadline != nil && goal.Deadline.Before(now) {
			goal.Status = shared.GoalStatusExpired
			expired++
			return true
		}

		if goal.Period == shared.GoalPeriodOnce || goal.Status == shared.GoalStatusExpired {
			return false
		}

		start := periodStart(goal.Period, now)
		if !start.After(goal.PeriodStartedAt) {
			return false
		}
		goal.Progress = 0
		goal.Status = shared.GoalStatusActive
		goal.CompletedAt = nil
		goal.PeriodStartedAt = start
		rolled++
		return true
	})
	if err != nil {
		return 0, 0, svc.storeSvc.HandleError(err)
	}

	if expired > 0 || rolled > 0 {
		svc.redisSvc.Invalidate(cacheKey("analytics", "*"))
	}
	return expired, rolled, nil
}

// settleGoal moves a goal between active and completed after progress or target changes.
func settleGoal(goal *model.StudyGoal, now time.Time) {
	if goal.Status == shared.GoalStatusExpired {
		return
	}
	if goal.Progress >= goal.Target {
		if goal.Status != shared.GoalStatusCompleted {
			goal.Status = shared.GoalStatusCompleted
			goal.CompletedAt = &now
		}
		return
	}
	goal.Status = shared.GoalStatusActive
	goal.CompletedAt = nil
}

func periodStart(period string, now time.Time) time.Time {
	switch period {
	case shared.GoalPeriodDaily:
		return startOfDay(now)
	case shared.GoalPeriodWeekly:
		return startOfWeek(now)
	}
	return now.UTC()
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	utc := t.UTC()
	return &utc
}
