package services

import (
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/alphabatem/common/context"
	"github.com/google/uuid"
	"github.com/lac-hong-legacy/study_api/dto"
	"github.com/lac-hong-legacy/study_api/model"
	"github.com/lac-hong-legacy/study_api/services/repositories"
	"github.com/lac-hong-legacy/study_api/shared"
	log "github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"
)

type FlashcardService struct {
	context.DefaultService

	storeSvc      *StoreService
	redisSvc      *RedisService
	flashcardRepo *repositories.FlashcardRepository
}

const FLASHCARD_SVC = "flashcard_svc"

const maxImportRows = 2000

func (svc FlashcardService) Id() string {
	return FLASHCARD_SVC
}

func (svc *FlashcardService) Configure(ctx *context.Context) error {
	return svc.DefaultService.Configure(ctx)
}

func (svc *FlashcardService) Start() error {
	svc.storeSvc = svc.Service(STORE_SVC).(*StoreService)
	svc.redisSvc, _ = svc.Service(REDIS_SVC).(*RedisService)
	svc.flashcardRepo = repositories.NewFlashcardRepository(svc.storeSvc)
	return nil
}

// ==================== CARDS ====================

// GetUserCards lists the user's cards, optionally limited to a deck and/or a tag.
func (svc *FlashcardService) GetUserCards(userID, deckID, tag string) ([]model.Flashcard, error) {
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

	cards := []model.Flashcard{}
	for _, card := range repositories.UserCards(doc, userID) {
		if deck != nil && !deck.HasCard(card.ID) {
			continue
		}
		if tag != "" && !hasTag(card.Tags, tag) {
			continue
		}
		cards = append(cards, card)
	}
	return cards, nil
}

func (svc *FlashcardService) GetCard(userID, cardID string) (*model.Flashcard, error) {
	doc, err := svc.flashcardRepo.Load()
	if err != nil {
		return nil, svc.storeSvc.HandleError(err)
	}

	idx := repositories.FindCard(doc, userID, cardID)
	if idx < 0 {
		return nil, shared.NewNotFoundError(nil, "Flashcard not found")
	}
	return &doc.Cards[idx], nil
}

func (svc *FlashcardService) CreateCard(req dto.CreateCardRequest) (*model.Flashcard, error) {
	card := newFlashcard(req.UserID, req.Front, req.Back, req.Tags, req.Difficulty, time.Now().UTC())
	card.CourseID = req.CourseID
	card.TopicID = req.TopicID

	err := svc.flashcardRepo.Update(func(doc *model.FlashcardsDocument) error {
		if req.DeckID != "" {
			idx := repositories.FindDeck(doc, req.UserID, req.DeckID)
			if idx < 0 {
				return shared.NewNotFoundError(nil, "Deck not found")
			}
			doc.Decks[idx].CardIDs = addUnique(doc.Decks[idx].CardIDs, card.ID)
			doc.Decks[idx].UpdatedAt = card.CreatedAt
		}
		doc.Cards = append(doc.Cards, card)
		return nil
	})
	if err != nil {
		return nil, svc.storeSvc.HandleError(err)
	}

	svc.redisSvc.Invalidate(analyticsCachePattern(req.UserID))
	return &card, nil
}

func (svc *FlashcardService) UpdateCard(cardID string, req dto.UpdateCardRequest) (*model.Flashcard, error) {
	var saved model.Flashcard
	err := svc.flashcardRepo.Update(func(doc *model.FlashcardsDocument) error {
		idx := repositories.FindCard(doc, req.UserID, cardID)
		if idx < 0 {
			return shared.NewNotFoundError(nil, "Flashcard not found")
		}

		card := &doc.Cards[idx]
		if req.Front != nil {
			card.Front = strings.TrimSpace(*req.Front)
		}
		if req.Back != nil {
			card.Back = strings.TrimSpace(*req.Back)
		}
		if req.Tags != nil {
			card.Tags = normalizeTags(*req.Tags)
		}
		if req.Difficulty != nil {
			card.Difficulty = *req.Difficulty
		}
		card.UpdatedAt = time.Now().UTC()

		saved = *card
		return nil
	})
	if err != nil {
		return nil, svc.storeSvc.HandleError(err)
	}
	return &saved, nil
}

// DeleteCard removes the card and its id from the user's decks. Review logs are kept.
func (svc *FlashcardService) DeleteCard(userID, cardID string) error {
	err := svc.flashcardRepo.Update(func(doc *model.FlashcardsDocument) error {
		idx := repositories.FindCard(doc, userID, cardID)
		if idx < 0 {
			return shared.NewNotFoundError(nil, "Flashcard not found")
		}
		doc.Cards = append(doc.Cards[:idx], doc.Cards[idx+1:]...)

		now := time.Now().UTC()
		for i := range doc.Decks {
			if doc.Decks[i].UserID == userID && doc.Decks[i].HasCard(cardID) {
				doc.Decks[i].CardIDs = removeValues(doc.Decks[i].CardIDs, cardID)
				doc.Decks[i].UpdatedAt = now
			}
		}
		return nil
	})
	if err != nil {
		return svc.storeSvc.HandleError(err)
	}

	svc.redisSvc.Invalidate(analyticsCachePattern(userID))
	return nil
}

// ==================== DECKS ====================

func (svc *FlashcardService) GetUserDecks(userID string) ([]dto.DeckResponse, error) {
	doc, err := svc.flashcardRepo.Load()
	if err != nil {
		return nil, svc.storeSvc.HandleError(err)
	}

	now := time.Now().UTC()
	decks := []dto.DeckResponse{}
	for _, deck := range doc.Decks {
		if deck.UserID == userID {
			decks = append(decks, toDeckResponse(doc, deck, now))
		}
	}
	return decks, nil
}

func (svc *FlashcardService) GetDeck(userID, deckID string) (*dto.DeckResponse, error) {
	doc, err := svc.flashcardRepo.Load()
	if err != nil {
		return nil, svc.storeSvc.HandleError(err)
	}

	idx := repositories.FindDeck(doc, userID, deckID)
	if idx < 0 {
		return nil, shared.NewNotFoundError(nil, "Deck not found")
	}
	deck := toDeckResponse(doc, doc.Decks[idx], time.Now().UTC())
	return &deck, nil
}

func (svc *FlashcardService) CreateDeck(req dto.CreateDeckRequest) (*dto.DeckResponse, error) {
	now := time.Now().UTC()
	id, _ := uuid.NewV7()
	deck := model.FlashcardDeck{
		ID:          id.String(),
		UserID:      req.UserID,
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		CardIDs:     dedupe(req.CardIDs),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	var resp dto.DeckResponse
	err := svc.flashcardRepo.Update(func(doc *model.FlashcardsDocument) error {
		if deckNameTaken(doc, req.UserID, deck.Name, "") {
			return shared.NewConflictError(nil, "A deck with this name already exists")
		}
		doc.Decks = append(doc.Decks, deck)
		resp = toDeckResponse(doc, deck, now)
		return nil
	})
	if err != nil {
		return nil, svc.storeSvc.HandleError(err)
	}

	log.WithFields(log.Fields{"user_id": req.UserID, "deck_id": deck.ID}).Info("Deck created")
	return &resp, nil
}

func (svc *FlashcardService) UpdateDeck(req dto.UpdateDeckRequest) (*dto.DeckResponse, error) {
	var resp dto.DeckResponse
	err := svc.flashcardRepo.Update(func(doc *model.FlashcardsDocument) error {
		idx := repositories.FindDeck(doc, req.UserID, req.DeckID)
		if idx < 0 {
			return shared.NewNotFoundError(nil, "Deck not found")
		}

		deck := &doc.Decks[idx]
		if req.Name != nil {
			name := strings.TrimSpace(*req.Name)
			if deckNameTaken(doc, req.UserID, name, deck.ID) {
				return shared.NewConflictError(nil, "A deck with this name already exists")
			}
			deck.Name = name
		}
		if req.Description != nil {
			deck.Description = *req.Description
		}
		if req.CardIDs != nil {
			deck.CardIDs = dedupe(*req.CardIDs)
		}
		for _, cardID := range req.AddCardIDs {
			deck.CardIDs = addUnique(deck.CardIDs, cardID)
		}
		if len(req.RemoveCardIDs) > 0 {
			deck.CardIDs = removeValues(deck.CardIDs, req.RemoveCardIDs...)
		}
		deck.UpdatedAt = time.Now().UTC()

		resp = toDeckResponse(doc, *deck, deck.UpdatedAt)
		return nil
	})
	if err != nil {
		return nil, svc.storeSvc.HandleError(err)
	}
	return &resp, nil
}

// DeleteDeck removes the deck only; its cards stay with the user.
func (svc *FlashcardService) DeleteDeck(userID, deckID string) error {
	err := svc.flashcardRepo.Update(func(doc *model.FlashcardsDocument) error {
		idx := repositories.FindDeck(doc, userID, deckID)
		if idx < 0 {
			return shared.NewNotFoundError(nil, "Deck not found")
		}
		doc.Decks = append(doc.Decks[:idx], doc.Decks[idx+1:]...)
		return nil
	})
	return svc.storeSvc.HandleError(err)
}

// ==================== IMPORT ====================

// ImportCards reads front, back, tags and difficulty from the first four columns of
// an .xlsx workbook's first sheet or a .csv file, then creates the cards and a deck
// named deckName holding them.
func (svc *FlashcardService) ImportCards(userID, deckName, filename string, reader io.Reader) (*dto.ImportResult, error) {
	rows, err := readImportRows(filename, reader)
	if err != nil {
		return nil, shared.NewBadRequestError(err, "Could not read import file")
	}
	if len(rows) > maxImportRows+1 {
		return nil, shared.NewBadRequestError(nil, fmt.Sprintf("Import files are limited to %d rows", maxImportRows))
	}

	now := time.Now().UTC()
	result := &dto.ImportResult{CardIDs: []string{}}
	var cards []model.Flashcard

	for i, row := range rows {
		rowNum := i + 1
		front, back, tags, difficulty := importCell(row, 0), importCell(row, 1), importCell(row, 2), importCell(row, 3)

		if i == 0 && strings.EqualFold(front, "front") {
			continue
		}
		if front == "" && back == "" {
			result.Skipped++
			continue
		}

		result.TotalRows++
		if front == "" || back == "" {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: front and back are required", rowNum))
			continue
		}

		difficulty = strings.ToLower(difficulty)
		switch difficulty {
		case shared.DifficultyEasy, shared.DifficultyMedium, shared.DifficultyHard:
		case "":
			difficulty = shared.DifficultyMedium
		default:
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: unknown difficulty %q, using medium", rowNum, difficulty))
			difficulty = shared.DifficultyMedium
		}

		card := newFlashcard(userID, front, back, splitTags(tags), difficulty, now)
		cards = append(cards, card)
		result.CardIDs = append(result.CardIDs, card.ID)
	}

	if len(cards) == 0 {
		return nil, shared.NewBadRequestError(nil, "No flashcards found in file")
	}

	deckName = strings.TrimSpace(deckName)
	if deckName == "" {
		deckName = strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	}

	deckID, _ := uuid.NewV7()
	err = svc.flashcardRepo.Update(func(doc *model.FlashcardsDocument) error {
		name := deckName
		for n := 2; deckNameTaken(doc, userID, name, ""); n++ {
			name = fmt.Sprintf("%s (%d)", deckName, n)
		}

		doc.Cards = append(doc.Cards, cards...)
		doc.Decks = append(doc.Decks, model.FlashcardDeck{
			ID:        deckID.String(),
			UserID:    userID,
			Name:      name,
			CardIDs:   result.CardIDs,
			CreatedAt: now,
			UpdatedAt: now,
		})
		return nil
	})
	if err != nil {
		return nil, svc.storeSvc.HandleError(err)
	}

	result.DeckID = deckID.String()
	result.Created = len(cards)
	svc.redisSvc.Invalidate(analyticsCachePattern(userID))

	log.WithFields(log.Fields{
		"user_id": userID,
		"deck_id": result.DeckID,
		"created": result.Created,
		"skipped": result.Skipped,
	}).Info("Flashcards imported")
	return result, nil
}

func readImportRows(filename string, reader io.Reader) ([][]string, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		csvReader := csv.NewReader(reader)
		csvReader.FieldsPerRecord = -1
		csvReader.LazyQuotes = true
		return csvReader.ReadAll()
	case ".xlsx", ".xlsm":
		f, err := excelize.OpenReader(reader)
		if err != nil {
			return nil, fmt.Errorf("failed to open Excel file: %w", err)
		}
		defer f.Close()

		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("workbook has no sheets")
		}
		return f.GetRows(sheets[0])
	default:
		return nil, fmt.Errorf("unsupported file type %q", filepath.Ext(filename))
	}
}

func importCell(row []string, idx int) string {
	if idx < len(row) {
		return strings.TrimSpace(row[idx])
	}
	return ""
}

// ==================== HELPERS ====================

func newFlashcard(userID, front, back string, tags []string, difficulty string, now time.Time) model.Flashcard {
	id, _ := uuid.NewV7()
	if difficulty == "" {
		difficulty = shared.DifficultyMedium
	}
	return model.Flashcard{
		ID:           id.String(),
		UserID:       userID,
		Front:        strings.TrimSpace(front),
		Back:         strings.TrimSpace(back),
		Tags:         normalizeTags(tags),
		Difficulty:   difficulty,
		NextReviewAt: now,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func toDeckResponse(doc *model.FlashcardsDocument, deck model.FlashcardDeck, now time.Time) dto.DeckResponse {
	resp := dto.DeckResponse{
		ID:          deck.ID,
		UserID:      deck.UserID,
		Name:        deck.Name,
		Description: deck.Description,
		CardIDs:     deck.CardIDs,
		CreatedAt:   deck.CreatedAt,
		UpdatedAt:   deck.UpdatedAt,
	}
	for _, card := range doc.Cards {
		if card.UserID != deck.UserID || !deck.HasCard(card.ID) {
			continue
		}
		resp.CardCount++
		if !card.NextReviewAt.After(now) {
			resp.DueCount++
		}
	}
	return resp
}

func deckNameTaken(doc *model.FlashcardsDocument, userID, name, exceptID string) bool {
	for _, deck := range doc.Decks {
		if deck.UserID == userID && deck.ID != exceptID && strings.EqualFold(deck.Name, name) {
			return true
		}
	}
	return false
}

func splitTags(raw string) []string {
	return strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == ';'
	})
}

func normalizeTags(tags []string) []string {
	normalized := []string{}
	for _, tag := range tags {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag != "" {
			normalized = addUnique(normalized, tag)
		}
	}
	return normalized
}

func hasTag(tags []string, tag string) bool {
	tag = strings.ToLower(strings.TrimSpace(tag))
	for _, t := range tags {
		if t == tag {
			return true
		}
	}
	return false
}

func dedupe(values []string) []string {
	result := []string{}
	for _, value := range values {
		if value != "" {
			result = addUnique(result, value)
		}
	}
	return result
}

func removeValues(values []string, remove ...string) []string {
	result := values[:0]
	for _, value := range values {
		keep := true
		for _, r := range remove {
			if value == r {
				keep = false
				break
			}
		}
		if keep {
			result = append(result, value)
		}
	}
	return result
}
