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

const SPACED_REPETITION_SVC = "spaced_repetition_svc"

const (
	DefaultDueLimit = 20
	MaxDueLimit     = 100

	masteredRepetitions = 4
)

// ReviewSchedule maps a rating to the delays used for successive repetitions.
// The step is min(repetitions, len-1) where repetitions is the count before the review.
var ReviewSchedule = map[string][]time.Duration{
	shared.RatingAgain: {10 * time.Minute},
	shared.RatingHard:  {days(1), days(2), days(4)},
	shared.RatingGood:  {days(1), days(3), days(7), days(14), days(30)},
	shared.RatingEasy:  {days(4), days(10), days(21), days(45), days(90)},
}

func days(n int) time.Duration {
	return time.Duration(n) * 24 * time.Hour
}

// NextReview returns the delay for rating and the repetition count after the review.
// "again" resets repetitions to zero.
func NextReview(repetitions int, rating string) (time.Duration, int) {
	steps, ok := ReviewSchedule[rating]
	if !ok || len(steps) == 0 {
		return 0, repetitions
	}
	if repetitions < 0 {
		repetitions = 0
	}

	step := repetitions
	if step > len(steps)-1 {
		step = len(steps) - 1
	}

	if rating == shared.RatingAgain {
		return steps[step], 0
	}
	return steps[step], repetitions + 1
}

type SpacedRepetitionService struct {
	context.DefaultService

	storeSvc      *StoreService
	goalSvc       *StudyGoalService
	redisSvc      *RedisService
	flashcardRepo *repositories.FlashcardRepository
}

func (svc SpacedRepetitionService) Id() string {
	return SPACED_REPETITION_SVC
}

func (svc *SpacedRepetitionService) Configure(ctx *context.Context) error {
	return svc.DefaultService.Configure(ctx)
}

func (svc *SpacedRepetitionService) Start() error {
	svc.storeSvc = svc.Service(STORE_SVC).(*StoreService)
	svc.goalSvc, _ = svc.Service(STUDY_GOAL_SVC).(*StudyGoalService)
	svc.redisSvc, _ = svc.Service(REDIS_SVC).(*RedisService)
	svc.flashcardRepo = repositories.NewFlashcardRepository(svc.storeSvc)
	return nil
}

// GetDueCards returns at most limit cards due now, earliest first. deckID narrows the
// candidates to one deck.
func (svc *SpacedRepetitionService) GetDueCards(userID string, limit int, deckID string) (*dto.DueCardsResponse, error) {
	if limit <= 0 {
		limit = DefaultDueLimit
	}
	if limit > MaxDueLimit {
		limit = MaxDueLimit
	}

	doc, err := svc.flashcardRepo.Load()
	if err != nil {
		return nil, svc.storeSvc.HandleError(err)
	}

	var deck *model.FlashcardDeck
	if deckID != "" {
		idx := repositories.FindDeck(doc, userID, deckID)
		if idx < 0 {
			return nil, shared.NewNotFoundError(nil, "Deck not found")
		}
		deck = &doc.Decks[idx]
	}

	now := time.Now().UTC()
	due := []model.Flashcard{}
	for _, card := range repositories.UserCards(doc, userID) {
		if card.NextReviewAt.After(now) {
			continue
		}
		if deck != nil && !deck.HasCard(card.ID) {
			continue
		}
		due = append(due, card)
	}

	sort.SliceStable(due, func(i, j int) bool {
		return due[i].NextReviewAt.Before(due[j].NextReviewAt)
	})

	resp := &dto.DueCardsResponse{Total: len(due), Limit: limit}
	if len(due) > limit {
		due = due[:limit]
	}
	resp.Cards = due
	return resp, nil
}

func (svc *SpacedRepetitionService) SubmitReview(req dto.SubmitReviewRequest) (*dto.ReviewResultResponse, error) {
	now := time.Now().UTC()

	var result dto.ReviewResultResponse
	err := svc.flashcardRepo.Update(func(doc *model.FlashcardsDocument) error {
		idx := repositories.FindCard(doc, req.UserID, req.CardID)
		if idx < 0 {
			return shared.NewNotFoundError(nil, "Flashcard not found")
		}

		card := &doc.Cards[idx]
		delay := applyReview(card, req.Rating, now)

		logID, _ := uuid.NewV7()
		doc.Reviews = append(doc.Reviews, model.ReviewLog{
			ID:           logID.String(),
			UserID:       req.UserID,
			CardID:       card.ID,
			Rating:       req.Rating,
			DelayMinutes: int(delay / time.Minute),
			ReviewedAt:   now,
		})

		result = dto.ReviewResultResponse{
			Card:         *card,
			Rating:       req.Rating,
			DelayMinutes: int(delay / time.Minute),
			NextReviewAt: card.NextReviewAt,
		}
		return nil
	})
	if err != nil {
		return nil, svc.storeSvc.HandleError(err)
	}

	svc.goalSvc.RecordActivity(req.UserID, map[string]int{shared.GoalTypeCardsReviewed: 1})
	svc.redisSvc.Invalidate(analyticsCachePattern(req.UserID))
	return &result, nil
}

func applyReview(card *model.Flashcard, rating string, now time.Time) time.Duration {
	delay, repetitions := NextReview(card.Repetitions, rating)

	card.ReviewCount++
	if rating != shared.RatingAgain {
		card.CorrectCount++
	}
	card.Repetitions = repetitions
	card.IntervalMinutes = int(delay / time.Minute)
	card.LastRating = rating
	card.LastReviewedAt = &now
	card.NextReviewAt = now.Add(delay)
	card.UpdatedAt = now
	return delay
}

// ResetCards makes the given cards due now with no repetitions. Unknown ids are
// ignored unless none of them match.
func (svc *SpacedRepetitionService) ResetCards(req dto.ResetCardsRequest) ([]model.Flashcard, error) {
	now := time.Now().UTC()

	reset := []model.Flashcard{}
	err := svc.flashcardRepo.Update(func(doc *model.FlashcardsDocument) error {
		for _, cardID := range dedupe(req.CardIDs) {
			idx := repositories.FindCard(doc, req.UserID, cardID)
			if idx < 0 {
				continue
			}
			card := &doc.Cards[idx]
			card.Repetitions = 0
			card.IntervalMinutes = 0
			card.NextReviewAt = now
			card.UpdatedAt = now
			reset = append(reset, *card)
		}
		if len(reset) == 0 {
			return shared.NewNotFoundError(nil, "Flashcard not found")
		}
		return nil
	})
	if err != nil {
		return nil, svc.storeSvc.HandleError(err)
	}
	return reset, nil
}

func (svc *SpacedRepetitionService) Reschedule(req dto.RescheduleRequest) (*model.Flashcard, error) {
	var saved model.Flashcard
	err := svc.flashcardRepo.Update(func(doc *model.FlashcardsDocument) error {
		idx := repositories.FindCard(doc, req.UserID, req.CardID)
		if idx < 0 {
			return shared.NewNotFoundError(nil, "Flashcard not found")
		}
		card := &doc.Cards[idx]
		card.NextReviewAt = req.NextReviewAt.UTC()
		card.UpdatedAt = time.Now().UTC()
		saved = *card
		return nil
	})
	if err != nil {
		return nil, svc.storeSvc.HandleError(err)
	}
	return &saved, nil
}

func (svc *SpacedRepetitionService) GetStats(userID string) (*dto.ReviewStatsResponse, error) {
	doc, err := svc.flashcardRepo.Load()
	if err != nil {
		return nil, svc.storeSvc.HandleError(err)
	}
	return reviewStats(doc, userID, time.Now().UTC()), nil
}

func reviewStats(doc *model.FlashcardsDocument, userID string, now time.Time) *dto.ReviewStatsResponse {
	stats := &dto.ReviewStatsResponse{
		RatingDistribution: map[string]int{
			shared.RatingAgain: 0,
			shared.RatingHard:  0,
			shared.RatingGood:  0,
			shared.RatingEasy:  0,
		},
	}

	for _, card := range doc.Cards {
		if card.UserID != userID {
			continue
		}
		stats.TotalCards++
		if !card.NextReviewAt.After(now) {
			stats.DueCards++
		}
		switch {
		case card.ReviewCount == 0:
			stats.NewCards++
		case isMastered(card):
			stats.MasteredCards++
		default:
			stats.LearningCards++
		}
	}

	today := startOfDay(now)
	correct := 0
	for _, review := range doc.Reviews {
		if review.UserID != userID {
			continue
		}
		stats.TotalReviews++
		stats.RatingDistribution[review.Rating]++
		if review.Rating != shared.RatingAgain {
			correct++
		}
		if !review.ReviewedAt.Before(today) {
			stats.ReviewsToday++
		}
	}
	if stats.TotalReviews > 0 {
		stats.Accuracy = roundPercent(float64(correct) / float64(stats.TotalReviews) * 100)
	}
	return stats
}

func isMastered(card model.Flashcard) bool {
	return card.Repetitions >= masteredRepetitions &&
		(card.LastRating == shared.RatingGood || card.LastRating == shared.RatingEasy)
}

// DueCountsByUser counts due cards for every user that has any.
func (svc *SpacedRepetitionService) DueCountsByUser(now time.Time) (map[string]int, error) {
	doc, err := svc.flashcardRepo.Load()
	if err != nil {
		return nil, svc.storeSvc.HandleError(err)
	}

	counts := map[string]int{}
	for _, card := range doc.Cards {
		if !card.NextReviewAt.After(now) {
			counts[card.UserID]++
		}
	}
	return counts, nil
}
