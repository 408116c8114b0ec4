package services

import (
	"sort"
	"time"

	"github.com/alphabatem/common/context"
	"github.com/google/uuid"
	"github.com/lac-hong-legacy/study_api/dto"
	"github.com/lac-hong-legacy/study_api/model"
	"github.com/lac-hong-legacy/study_api/services/repositories"
	"github.com/lac-hong-legacy/study_api/shared"
)

type StudySessionService struct {
	context.DefaultService

	storeSvc    *StoreService
	goalSvc     *StudyGoalService
	redisSvc    *RedisService
	sessionRepo *repositories.SessionRepository
}

const STUDY_SESSION_SVC = "study_session_svc"

func (svc StudySessionService) Id() string {
	return STUDY_SESSION_SVC
}

func (svc *StudySessionService) Configure(ctx *context.Context) error {
	return svc.DefaultService.Configure(ctx)
}

func (svc *StudySessionService) Start() error {
	svc.storeSvc = svc.Service(STORE_SVC).(*StoreService)
	svc.goalSvc, _ = svc.Service(STUDY_GOAL_SVC).(*StudyGoalService)
	svc.redisSvc, _ = svc.Service(REDIS_SVC).(*RedisService)
	svc.sessionRepo = repositories.NewSessionRepository(svc.storeSvc)
	return nil
}

// GetUserSessions returns sessions newest first, optionally limited to those
// starting within [from, to].
func (svc *StudySessionService) GetUserSessions(userID string, from, to *time.Time) ([]model.StudySession, error) {
	if from != nil && to != nil && to.Before(*from) {
		return nil, shared.NewBadRequestError(nil, "to must not be before from")
	}

	sessions, err := svc.sessionRepo.GetUserSessions(userID)
	if err != nil {
		return nil, svc.storeSvc.HandleError(err)
	}

	filtered := []model.StudySession{}
	for _, session := range sessions {
		if from != nil && session.StartedAt.Before(*from) {
			continue
		}
		if to != nil && session.StartedAt.After(*to) {
			continue
		}
		filtered = append(filtered, session)
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].StartedAt.After(filtered[j].StartedAt)
	})
	return filtered, nil
}

func (svc *StudySessionService) GetSession(userID, sessionID string) (*model.StudySession, error) {
	session, err := svc.sessionRepo.GetSession(userID, sessionID)
	if err != nil {
		return nil, svc.storeSvc.HandleLookupError(err, "Session not found")
	}
	return session, nil
}

func (svc *StudySessionService) CreateSession(req dto.CreateSessionRequest) (*model.StudySession, error) {
	now := time.Now().UTC()
	duration := time.Duration(req.DurationMinutes) * time.Minute

	startedAt := now.Add(-duration)
	if req.StartedAt != nil {
		startedAt = req.StartedAt.UTC()
	}

	id, _ := uuid.NewV7()
	session := &model.StudySession{
		ID:                id.String(),
		UserID:            req.UserID,
		CourseID:          req.CourseID,
		TopicID:           req.TopicID,
		DurationMinutes:   req.DurationMinutes,
		StartedAt:         startedAt,
		EndedAt:           startedAt.Add(duration),
		Notes:             req.Notes,
		CardsReviewed:     req.CardsReviewed,
		QuestionsAnswered: req.QuestionsAnswered,
		CreatedAt:         now,
	}

	if err := svc.sessionRepo.CreateSession(session); err != nil {
		return nil, svc.storeSvc.HandleError(err)
	}

	svc.goalSvc.RecordActivity(req.UserID, map[string]int{
		shared.GoalTypeStudyMinutes: req.DurationMinutes,
		shared.GoalTypeSessions:     1,
	})
	svc.redisSvc.Invalidate(analyticsCachePattern(req.UserID))
	return session, nil
}

func (svc *StudySessionService) DeleteSession(userID, sessionID string) error {
	if err := svc.sessionRepo.DeleteSession(userID, sessionID); err != nil {
		return svc.storeSvc.HandleLookupError(err, "Session not found")
	}

	svc.redisSvc.Invalidate(analyticsCachePattern(userID))
	return nil
}

func (svc *StudySessionService) GetSessionStats(userID string) (*dto.SessionStatsResponse, error) {
	sessions, err := svc.sessionRepo.GetUserSessions(userID)
	if err != nil {
		return nil, svc.storeSvc.HandleError(err)
	}
	return sessionStats(sessions, time.Now().UTC()), nil
}

func sessionStats(sessions []model.StudySession, now time.Time) *dto.SessionStatsResponse {
	stats := &dto.SessionStatsResponse{MinutesByCourse: map[string]int{}}
	weekStart := startOfWeek(now)

	for i := range sessions {
		session := sessions[i]
		stats.TotalSessions++
		stats.TotalMinutes += session.DurationMinutes
		stats.CardsReviewed += session.CardsReviewed
		stats.QuestionsAnswered += session.QuestionsAnswered

		if session.DurationMinutes > stats.LongestMinutes {
			stats.LongestMinutes = session.DurationMinutes
		}
		if !session.StartedAt.Before(weekStart) {
			stats.ThisWeekMinutes += session.DurationMinutes
		}
		if session.CourseID != "" {
			stats.MinutesByCourse[session.CourseID] += session.DurationMinutes
		}
		if stats.LastSessionAt == nil || session.StartedAt.After(*stats.LastSessionAt) {
			startedAt := session.StartedAt
			stats.LastSessionAt = &startedAt
		}
	}

	if stats.TotalSessions > 0 {
		stats.AverageMinutes = roundPercent(float64(stats.TotalMinutes) / float64(stats.TotalSessions))
	}
	return stats
}

// startOfWeek returns Monday 00:00 UTC of t's week.
func startOfWeek(t time.Time) time.Time {
	day := startOfDay(t)
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}
