package services

import (
	"math"
	"time"

	"github.com/alphabatem/common/context"
	"github.com/google/uuid"
	"github.com/lac-hong-legacy/study_api/dto"
	"github.com/lac-hong-legacy/study_api/model"
	"github.com/lac-hong-legacy/study_api/services/repositories"
	"github.com/lac-hong-legacy/study_api/shared"
	log "github.com/sirupsen/logrus"
)

type UserService struct {
	context.DefaultService

	storeSvc  *StoreService
	courseSvc *CourseService
	goalSvc   *StudyGoalService
	redisSvc  *RedisService
	userRepo  *repositories.UserRepository
}

const USER_SVC = "user_svc"

func (svc UserService) Id() string {
	return USER_SVC
}

func (svc *UserService) Configure(ctx *context.Context) error {
	return svc.DefaultService.Configure(ctx)
}

func (svc *UserService) Start() error {
	svc.storeSvc = svc.Service(STORE_SVC).(*StoreService)
	svc.courseSvc = svc.Service(COURSE_SVC).(*CourseService)
	svc.goalSvc, _ = svc.Service(STUDY_GOAL_SVC).(*StudyGoalService)
	svc.redisSvc, _ = svc.Service(REDIS_SVC).(*RedisService)
	svc.userRepo = repositories.NewUserRepository(svc.storeSvc)
	return nil
}

func (svc *UserService) CreateUser(req dto.CreateUserRequest) (*model.User, error) {
	id := req.ID
	if id == "" {
		uid, _ := uuid.NewV7()
		id = uid.String()
	}

	user := &model.User{
		ID:             id,
		Name:           req.Name,
		Email:          req.Email,
		Avatar:         req.Avatar,
		TelegramChatID: req.TelegramChatID,
		CourseProgress: []model.CourseProgress{},
	}
	if err := svc.userRepo.CreateUser(user); err != nil {
		if err == repositories.ErrDuplicateRecord {
			return nil, shared.NewConflictError(err, "User already exists")
		}
		return nil, svc.storeSvc.HandleError(err)
	}

	log.WithField("user_id", user.ID).Info("User created")
	return user, nil
}

func (svc *UserService) GetUser(userID string) (*model.User, error) {
	user, err := svc.userRepo.GetUser(userID)
	if err != nil {
		return nil, svc.storeSvc.HandleLookupError(err, "User not found")
	}
	return user, nil
}

// GetUsers is used by background jobs that fan out over every user.
func (svc *UserService) GetUsers() ([]model.User, error) {
	users, err := svc.userRepo.GetUsers()
	if err != nil {
		return nil, svc.storeSvc.HandleError(err)
	}
	return users, nil
}

func (svc *UserService) UpdateUser(userID string, req dto.UpdateUserRequest) (*model.User, error) {
	user, err := svc.userRepo.UpdateUser(userID, func(user *model.User) error {
		if req.Name != nil {
			user.Name = *req.Name
		}
		if req.Email != nil {
			user.Email = *req.Email
		}
		if req.Avatar != nil {
			user.Avatar = *req.Avatar
		}
		if req.TelegramChatID != nil {
			user.TelegramChatID = *req.TelegramChatID
		}
		return nil
	})
	if err != nil {
		return nil, svc.storeSvc.HandleLookupError(err, "User not found")
	}
	return user, nil
}

// MarkReminded records that a due-card reminder reached the user at.
func (svc *UserService) MarkReminded(userID string, at time.Time) error {
	_, err := svc.userRepo.UpdateUser(userID, func(user *model.User) error {
		at := at.UTC()
		user.LastRemindedAt = &at
		return nil
	})
	if err != nil {
		return svc.storeSvc.HandleLookupError(err, "User not found")
	}
	return nil
}

// remindedOn reports whether the user already got a reminder on the UTC day of now.
func remindedOn(user model.User, now time.Time) bool {
	return user.LastRemindedAt != nil && startOfDay(*user.LastRemindedAt).Equal(startOfDay(now))
}

// GetProgress returns every course the user has touched, or only courseID when set.
func (svc *UserService) GetProgress(userID, courseID string) (*dto.ProgressResponse, error) {
	user, err := svc.GetUser(userID)
	if err != nil {
		return nil, err
	}

	progress := &dto.ProgressResponse{
		UserID:                 user.ID,
		Streak:                 user.Streak,
		LongestStreak:          user.LongestStreak,
		TotalStudyMinutes:      user.TotalStudyMinutes,
		TotalQuestionsAnswered: user.TotalQuestionsAnswered,
		TotalCorrectAnswers:    user.TotalCorrectAnswers,
		Courses:                user.CourseProgress,
	}

	if courseID != "" {
		courseProgress := user.FindCourseProgress(courseID)
		if courseProgress == nil {
			return nil, shared.NewNotFoundError(nil, "Course progress not found")
		}
		progress.Courses = []model.CourseProgress{*courseProgress}
	}

	return progress, nil
}

// UpdateProgress records one unit of activity on a topic and recomputes completion
// up the catalog tree. The user is created on first use.
func (svc *UserService) UpdateProgress(req dto.ProgressUpdateRequest) (*model.CourseProgress, error) {
	course, err := svc.courseSvc.GetCourse(req.CourseID)
	if err != nil {
		return nil, err
	}
	unit := course.FindUnit(req.UnitID)
	if unit == nil {
		return nil, shared.NewNotFoundError(nil, "Unit not found")
	}
	topic := unit.FindTopic(req.TopicID)
	if topic == nil {
		return nil, shared.NewNotFoundError(nil, "Topic not found")
	}
	if req.QuestionID != "" && !topic.HasQuestion(req.QuestionID) {
		return nil, shared.NewBadRequestError(nil, "Question does not belong to topic")
	}

	var saved model.CourseProgress
	newlyCompleted := false
	now := time.Now().UTC()

	_, err = svc.userRepo.UpsertUser(req.UserID, func() model.User {
		return model.User{CourseProgress: []model.CourseProgress{}}
	}, func(user *model.User) error {
		courseProgress := user.FindCourseProgress(course.ID)
		if courseProgress == nil {
			user.CourseProgress = append(user.CourseProgress, model.CourseProgress{
				CourseID:  course.ID,
				Units:     []model.UnitProgress{},
				StartedAt: now,
			})
			courseProgress = &user.CourseProgress[len(user.CourseProgress)-1]
		}

		unitProgress := courseProgress.FindUnit(unit.ID)
		if unitProgress == nil {
			courseProgress.Units = append(courseProgress.Units, model.UnitProgress{
				UnitID: unit.ID,
				Topics: []model.TopicProgress{},
			})
			unitProgress = &courseProgress.Units[len(courseProgress.Units)-1]
		}

		topicProgress := unitProgress.FindTopic(topic.ID)
		if topicProgress == nil {
			unitProgress.Topics = append(unitProgress.Topics, model.TopicProgress{
				TopicID:            topic.ID,
				AttemptedQuestions: []string{},
				CorrectQuestions:   []string{},
			})
			topicProgress = &unitProgress.Topics[len(unitProgress.Topics)-1]
		}

		if req.QuestionID != "" {
			topicProgress.AttemptedQuestions = addUnique(topicProgress.AttemptedQuestions, req.QuestionID)
			user.TotalQuestionsAnswered++
			if req.Correct {
				topicProgress.CorrectQuestions = addUnique(topicProgress.CorrectQuestions, req.QuestionID)
				user.TotalCorrectAnswers++
			}
		}

		if req.TimeSpentMinutes > 0 {
			topicProgress.TimeSpentMinutes += req.TimeSpentMinutes
			courseProgress.TimeSpentMinutes += req.TimeSpentMinutes
			user.TotalStudyMinutes += req.TimeSpentMinutes
		}

		if req.Completed && !topicProgress.Completed {
			topicProgress.Completed = true
			newlyCompleted = true
		}

		topicProgress.LastAccessedAt = now
		courseProgress.LastAccessedAt = now
		recomputeCompletion(course, courseProgress)
		updateStreak(user, now)

		saved = *courseProgress
		return nil
	})
	if err != nil {
		return nil, svc.storeSvc.HandleError(err)
	}

	activity := map[string]int{}
	if req.QuestionID != "" {
		activity[shared.GoalTypeQuestionsAnswered] = 1
	}
	if newlyCompleted {
		activity[shared.GoalTypeTopicsCompleted] = 1
	}
	svc.goalSvc.RecordActivity(req.UserID, activity)
	svc.redisSvc.Invalidate(analyticsCachePattern(req.UserID))

	log.WithFields(log.Fields{
		"user_id":    req.UserID,
		"course_id":  course.ID,
		"topic_id":   topic.ID,
		"completion": saved.Completion,
	}).Debug("Progress updated")

	return &saved, nil
}

// recomputeCompletion walks the catalog so that topics and units the user never
// touched count as zero.
func recomputeCompletion(course *model.Course, courseProgress *model.CourseProgress) {
	unitsTotal := 0.0
	for _, unit := range course.Units {
		unitProgress := courseProgress.FindUnit(unit.ID)
		if unitProgress == nil {
			continue
		}

		topicsTotal := 0.0
		for i := range unit.Topics {
			topicProgress := unitProgress.FindTopic(unit.Topics[i].ID)
			if topicProgress == nil {
				continue
			}
			topicProgress.Completion = topicCompletion(&unit.Topics[i], topicProgress)
			topicsTotal += topicProgress.Completion
		}

		unitProgress.Completion = 0
		if len(unit.Topics) > 0 {
			unitProgress.Completion = roundPercent(topicsTotal / float64(len(unit.Topics)))
		}
		unitsTotal += unitProgress.Completion
	}

	courseProgress.Completion = 0
	if len(course.Units) > 0 {
		courseProgress.Completion = roundPercent(unitsTotal / float64(len(course.Units)))
	}
}

func topicCompletion(topic *model.Topic, progress *model.TopicProgress) float64 {
	if progress.Completed {
		return 100
	}
	if len(topic.Questions) == 0 {
		return 0
	}

	correct := 0
	for _, questionID := range progress.CorrectQuestions {
		if topic.HasQuestion(questionID) {
			correct++
		}
	}
	return roundPercent(float64(correct) / float64(len(topic.Questions)) * 100)
}

// updateStreak counts consecutive UTC calendar days with activity.
func updateStreak(user *model.User, now time.Time) {
	today := startOfDay(now)

	if user.LastActiveAt == nil {
		user.Streak = 1
	} else {
		lastActiveDay := startOfDay(*user.LastActiveAt)
		daysDiff := int(today.Sub(lastActiveDay).Hours() / 24)

		switch {
		case daysDiff <= 0:
			if user.Streak == 0 {
				user.Streak = 1
			}
		case daysDiff == 1:
			user.Streak++
		default:
			user.Streak = 1
		}
	}

	if user.Streak > user.LongestStreak {
		user.LongestStreak = user.Streak
	}
	user.LastActiveAt = &now
}

func startOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func roundPercent(value float64) float64 {
	return math.Round(value*100) / 100
}

func addUnique(values []string, value string) []string {
	for _, existing := range values {
		if existing == value {
			return values
		}
	}
	return append(values, value)
}
