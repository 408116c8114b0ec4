package services

import (
	"fmt"
	"sort"
	"time"

	"github.com/alphabatem/common/context"
	"github.com/lac-hong-legacy/study_api/dto"
	"github.com/lac-hong-legacy/study_api/model"
	"github.com/lac-hong-legacy/study_api/services/repositories"
	"github.com/lac-hong-legacy/study_api/shared"
)

const ANALYTICS_SVC = "analytics_svc"

const (
	DefaultActivityDays = 7
	MaxActivityDays     = 90
)

// AnalyticsService derives reports from the raw documents on every call. Results
// are cached per user when Redis is configured and dropped on any write by that user.
type AnalyticsService struct {
	context.DefaultService

	storeSvc      *StoreService
	redisSvc      *RedisService
	courseRepo    *repositories.CourseRepository
	userRepo      *repositories.UserRepository
	flashcardRepo *repositories.FlashcardRepository
	sessionRepo   *repositories.SessionRepository
	goalRepo      *repositories.GoalRepository
}

func (svc AnalyticsService) Id() string {
	return ANALYTICS_SVC
}

func (svc *AnalyticsService) Configure(ctx *context.Context) error {
	return svc.DefaultService.Configure(ctx)
}

func (svc *AnalyticsService) Start() error {
	svc.storeSvc = svc.Service(STORE_SVC).(*StoreService)
	svc.redisSvc, _ = svc.Service(REDIS_SVC).(*RedisService)
	svc.courseRepo = repositories.NewCourseRepository(svc.storeSvc)
	svc.userRepo = repositories.NewUserRepository(svc.storeSvc)
	svc.flashcardRepo = repositories.NewFlashcardRepository(svc.storeSvc)
	svc.sessionRepo = repositories.NewSessionRepository(svc.storeSvc)
	svc.goalRepo = repositories.NewGoalRepository(svc.storeSvc)
	return nil
}

func analyticsCachePattern(userID string) string {
	return cacheKey("analytics", userID, "*")
}

// lookupUser returns nil without error for users that have no profile yet; their
// flashcards and sessions still count.
func (svc *AnalyticsService) lookupUser(userID string) (*model.User, error) {
	user, err := svc.userRepo.GetUser(userID)
	if err == repositories.ErrRecordNotFound {
		return nil, nil
	}
	return user, err
}

func (svc *AnalyticsService) GetOverview(userID string) (*dto.OverviewResponse, error) {
	var overview dto.OverviewResponse
	err := svc.redisSvc.Remember(cacheKey("analytics", userID, "overview"), &overview, func() error {
		user, err := svc.lookupUser(userID)
		if err != nil {
			return err
		}
		sessions, err := svc.sessionRepo.GetUserSessions(userID)
		if err != nil {
			return err
		}
		cards, err := svc.flashcardRepo.Load()
		if err != nil {
			return err
		}
		goals, err := svc.goalRepo.GetUserGoals(userID)
		if err != nil {
			return err
		}

		overview = buildOverview(userID, user, sessions, cards, goals, time.Now().UTC())
		return nil
	})
	if err != nil {
		return nil, svc.storeSvc.HandleError(err)
	}
	return &overview, nil
}

func buildOverview(userID string, user *model.User, sessions []model.StudySession, cards *model.FlashcardsDocument, goals []model.StudyGoal, now time.Time) dto.OverviewResponse {
	overview := dto.OverviewResponse{UserID: userID}

	for _, session := range sessions {
		overview.TotalSessions++
		overview.TotalStudyMinutes += session.DurationMinutes
	}
	if overview.TotalSessions > 0 {
		overview.AverageSessionMins = roundPercent(float64(overview.TotalStudyMinutes) / float64(overview.TotalSessions))
	}

	if user != nil {
		// progress updates can log time outside of sessions
		if user.TotalStudyMinutes > overview.TotalStudyMinutes {
			overview.TotalStudyMinutes = user.TotalStudyMinutes
		}
		overview.QuestionsAnswered = user.TotalQuestionsAnswered
		overview.CorrectAnswers = user.TotalCorrectAnswers
		if user.TotalQuestionsAnswered > 0 {
			overview.Accuracy = roundPercent(float64(user.TotalCorrectAnswers) / float64(user.TotalQuestionsAnswered) * 100)
		}
		overview.Streak = user.Streak
		overview.LongestStreak = user.LongestStreak

		for _, course := range user.CourseProgress {
			if course.Completion >= 100 {
				overview.CoursesCompleted++
			} else {
				overview.CoursesInProgress++
			}
			for _, unit := range course.Units {
				for _, topic := range unit.Topics {
					if topic.Completed {
						overview.TopicsCompleted++
					}
				}
			}
		}
	}

	stats := reviewStats(cards, userID, now)
	overview.TotalCards = stats.TotalCards
	overview.DueCards = stats.DueCards
	overview.MasteredCards = stats.MasteredCards
	overview.TotalReviews = stats.TotalReviews

	for _, goal := range goals {
		switch goal.Status {
		case shared.GoalStatusActive:
			overview.ActiveGoals++
		case shared.GoalStatusCompleted:
			overview.CompletedGoals++
		}
	}
	return overview
}

// GetDailyActivity returns one entry per UTC day, oldest first, ending today.
func (svc *AnalyticsService) GetDailyActivity(userID string, days int) ([]dto.DailyActivity, error) {
	if days == 0 {
		days = DefaultActivityDays
	}
	if days < 1 || days > MaxActivityDays {
		return nil, shared.NewBadRequestError(nil, fmt.Sprintf("days must be between 1 and %d", MaxActivityDays))
	}

	var activity []dto.DailyActivity
	key := cacheKey("analytics", userID, "daily", fmt.Sprint(days))
	err := svc.redisSvc.Remember(key, &activity, func() error {
		sessions, err := svc.sessionRepo.GetUserSessions(userID)
		if err != nil {
			return err
		}
		reviews, err := svc.flashcardRepo.GetUserReviews(userID)
		if err != nil {
			return err
		}

		activity = buildDailyActivity(sessions, reviews, days, time.Now().UTC())
		return nil
	})
	if err != nil {
		return nil, svc.storeSvc.HandleError(err)
	}
	return activity, nil
}

func buildDailyActivity(sessions []model.StudySession, reviews []model.ReviewLog, days int, now time.Time) []dto.DailyActivity {
	first := startOfDay(now).AddDate(0, 0, -(days - 1))

	activity := make([]dto.DailyActivity, days)
	index := map[string]int{}
	for i := 0; i < days; i++ {
		date := first.AddDate(0, 0, i).Format("2006-01-02")
		activity[i] = dto.DailyActivity{Date: date}
		index[date] = i
	}

	for _, session := range sessions {
		if i, ok := index[session.StartedAt.UTC().Format("2006-01-02")]; ok {
			activity[i].Sessions++
			activity[i].StudyMinutes += session.DurationMinutes
			activity[i].QuestionsAnswered += session.QuestionsAnswered
		}
	}
	for _, review := range reviews {
		if i, ok := index[review.ReviewedAt.UTC().Format("2006-01-02")]; ok {
			activity[i].Reviews++
		}
	}
	return activity
}

// GetTopicPerformance lists every topic the user has progress on, weakest first.
func (svc *AnalyticsService) GetTopicPerformance(userID string) ([]dto.TopicPerformance, error) {
	var performance []dto.TopicPerformance
	err := svc.redisSvc.Remember(cacheKey("analytics", userID, "topics"), &performance, func() error {
		user, err := svc.lookupUser(userID)
		if err != nil {
			return err
		}
		courses, err := svc.courseRepo.GetCourses()
		if err != nil {
			return err
		}

		performance = buildTopicPerformance(user, courses)
		return nil
	})
	if err != nil {
		return nil, svc.storeSvc.HandleError(err)
	}
	return performance, nil
}

func buildTopicPerformance(user *model.User, courses []model.Course) []dto.TopicPerformance {
	performance := []dto.TopicPerformance{}
	if user == nil {
		return performance
	}

	titles := map[string]string{}
	for _, course := range courses {
		for _, unit := range course.Units {
			for _, topic := range unit.Topics {
				titles[course.ID+"/"+unit.ID+"/"+topic.ID] = topic.Title
			}
		}
	}

	for _, course := range user.CourseProgress {
		for _, unit := range course.Units {
			for _, topic := range unit.Topics {
				entry := dto.TopicPerformance{
					CourseID:         course.CourseID,
					UnitID:           unit.UnitID,
					TopicID:          topic.TopicID,
					TopicTitle:       titles[course.CourseID+"/"+unit.UnitID+"/"+topic.TopicID],
					Attempted:        len(topic.AttemptedQuestions),
					Correct:          len(topic.CorrectQuestions),
					Completion:       topic.Completion,
					TimeSpentMinutes: topic.TimeSpentMinutes,
				}
				if entry.Attempted > 0 {
					entry.Accuracy = roundPercent(float64(entry.Correct) / float64(entry.Attempted) * 100)
				}
				performance = append(performance, entry)
			}
		}
	}

	sort.SliceStable(performance, func(i, j int) bool {
		if performance[i].Accuracy != performance[j].Accuracy {
			return performance[i].Accuracy < performance[j].Accuracy
		}
		return performance[i].TopicID < performance[j].TopicID
	})
	return performance
}
