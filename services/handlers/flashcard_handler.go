package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/lac-hong-legacy/study_api/dto"
	"github.com/lac-hong-legacy/study_api/shared"
)

const maxImportFileSize = 5 * 1024 * 1024

type FlashcardHandler struct {
	flashcardSvc FlashcardServiceInterface
}

func NewFlashcardHandler(flashcardSvc FlashcardServiceInterface) *FlashcardHandler {
	return &FlashcardHandler{
		flashcardSvc: flashcardSvc,
	}
}

// @Summary List flashcards
// @Description Get a user's flashcards, optionally filtered by deck or tag
// @Tags flashcards
// @Accept json
// @Produce json
// @Param userId query string true "User ID"
// @Param deckId query string false "Deck ID"
// @Param tag query string false "Tag"
// @Success 200 {object} shared.Response{data=[]model.Flashcard}
// @Failure 400 {object} shared.Response
// @Router /api/v1/flashcards [get]
func (h *FlashcardHandler) GetCards(c *fiber.Ctx) error {
	userID, err := requireUserID(c, "")
	if err != nil {
		return err
	}

	cards, err := h.flashcardSvc.GetUserCards(userID, queryParam(c, "deckId", "deck_id"), c.Query("tag"))
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, cards)
}

// @Summary Create flashcard
// @Description Create a flashcard, optionally adding it to a deck
// @Tags flashcards
// @Accept json
// @Produce json
// @Param createRequest body dto.CreateCardRequest true "Flashcard"
// @Success 201 {object} shared.Response{data=model.Flashcard}
// @Failure 400 {object} shared.Response
// @Router /api/v1/flashcards [post]
func (h *FlashcardHandler) CreateCard(c *fiber.Ctx) error {
	var req dto.CreateCardRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	userID, err := requireUserID(c, req.UserID)
	if err != nil {
		return err
	}
	req.UserID = userID

	if err := validateRequest(req); err != nil {
		return err
	}

	card, err := h.flashcardSvc.CreateCard(req)
	if err != nil {
		return err
	}

	return shared.ResponseCreated(c, card)
}

// @Summary Update flashcard
// @Description Update the fields of a flashcard that are present in the body
// @Tags flashcards
// @Accept json
// @Produce json
// @Param cardId path string true "Card ID"
// @Param updateRequest body dto.UpdateCardRequest true "Card fields"
// @Success 200 {object} shared.Response{data=model.Flashcard}
// @Failure 400 {object} shared.Response
// @Failure 404 {object} shared.Response
// @Router /api/v1/flashcards/{cardId} [patch]
func (h *FlashcardHandler) UpdateCard(c *fiber.Ctx) error {
	var req dto.UpdateCardRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	userID, err := requireUserID(c, req.UserID)
	if err != nil {
		return err
	}
	req.UserID = userID

	if err := validateRequest(req); err != nil {
		return err
	}

	card, err := h.flashcardSvc.UpdateCard(c.Params("cardId"), req)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, card)
}

// @Summary Delete flashcard
// @Description Delete a flashcard and remove it from every deck
// @Tags flashcards
// @Accept json
// @Produce json
// @Param cardId path string true "Card ID"
// @Param userId query string true "User ID"
// @Success 200 {object} shared.Response{data=map[string]string}
// @Failure 404 {object} shared.Response
// @Router /api/v1/flashcards/{cardId} [delete]
func (h *FlashcardHandler) DeleteCard(c *fiber.Ctx) error {
	userID, err := requireUserID(c, "")
	if err != nil {
		return err
	}

	cardID := c.Params("cardId")
	if err := h.flashcardSvc.DeleteCard(userID, cardID); err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, fiber.Map{"id": cardID})
}

// @Summary Import flashcards
// @Description Create a deck from an Excel (.xlsx) or CSV file with front, back, tags and difficulty columns
// @Tags flashcards
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Spreadsheet"
// @Param userId formData string true "User ID"
// @Param deckName formData string false "Deck name"
// @Success 201 {object} shared.Response{data=dto.ImportResult}
// @Failure 400 {object} shared.Response
// @Router /api/v1/flashcards/import [post]
func (h *FlashcardHandler) ImportCards(c *fiber.Ctx) error {
	userID, err := requireUserID(c, c.FormValue("userId", c.FormValue("user_id")))
	if err != nil {
		return err
	}

	file, err := c.FormFile("file")
	if err != nil {
		return shared.NewBadRequestError(err, "file is required")
	}
	if file.Size > maxImportFileSize {
		return shared.NewBadRequestError(nil, "file must be 5MB or smaller")
	}

	reader, err := file.Open()
	if err != nil {
		return shared.NewBadRequestError(err, "Could not read uploaded file")
	}
	defer reader.Close()

	result, err := h.flashcardSvc.ImportCards(userID, c.FormValue("deckName", c.FormValue("deck_name")), file.Filename, reader)
	if err != nil {
		return err
	}

	return shared.ResponseCreated(c, result)
}

// @Summary List decks
// @Description Get a user's decks, or a single deck when deckId is given
// @Tags flashcards
// @Accept json
// @Produce json
// @Param userId query string true "User ID"
// @Param deckId query string false "Deck ID"
// @Success 200 {object} shared.Response{data=[]dto.DeckResponse}
// @Failure 400 {object} shared.Response
// @Router /api/v1/flashcards/decks [get]
func (h *FlashcardHandler) GetDecks(c *fiber.Ctx) error {
	userID, err := requireUserID(c, "")
	if err != nil {
		return err
	}

	if deckID := queryParam(c, "deckId", "deck_id"); deckID != "" {
		deck, err := h.flashcardSvc.GetDeck(userID, deckID)
		if err != nil {
			return err
		}
		return shared.ResponseJSON(c, fiber.StatusOK, deck)
	}

	decks, err := h.flashcardSvc.GetUserDecks(userID)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, decks)
}

// @Summary Create deck
// @Description Create a named deck of flashcards
// @Tags flashcards
// @Accept json
// @Produce json
// @Param createRequest body dto.CreateDeckRequest true "Deck"
// @Success 201 {object} shared.Response{data=dto.DeckResponse}
// @Failure 400 {object} shared.Response
// @Failure 409 {object} shared.Response
// @Router /api/v1/flashcards/decks [post]
func (h *FlashcardHandler) CreateDeck(c *fiber.Ctx) error {
	var req dto.CreateDeckRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	userID, err := requireUserID(c, req.UserID)
	if err != nil {
		return err
	}
	req.UserID = userID

	if err := validateRequest(req); err != nil {
		return err
	}

	deck, err := h.flashcardSvc.CreateDeck(req)
	if err != nil {
		return err
	}

	return shared.ResponseCreated(c, deck)
}

// @Summary Update deck
// @Description Rename a deck or change its cards
// @Tags flashcards
// @Accept json
// @Produce json
// @Param updateRequest body dto.UpdateDeckRequest true "Deck fields"
// @Success 200 {object} shared.Response{data=dto.DeckResponse}
// @Failure 400 {object} shared.Response
// @Failure 404 {object} shared.Response
// @Router /api/v1/flashcards/decks [patch]
func (h *FlashcardHandler) UpdateDeck(c *fiber.Ctx) error {
	var req dto.UpdateDeckRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	userID, err := requireUserID(c, req.UserID)
	if err != nil {
		return err
	}
	req.UserID = userID
	if req.DeckID == "" {
		req.DeckID = queryParam(c, "deckId", "deck_id")
	}

	if err := validateRequest(req); err != nil {
		return err
	}

	deck, err := h.flashcardSvc.UpdateDeck(req)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, deck)
}

// @Summary Delete deck
// @Description Delete a deck. Its cards are kept.
// @Tags flashcards
// @Accept json
// @Produce json
// @Param userId query string true "User ID"
// @Param deckId query string true "Deck ID"
// @Success 200 {object} shared.Response{data=map[string]string}
// @Failure 400 {object} shared.Response
// @Failure 404 {object} shared.Response
// @Router /api/v1/flashcards/decks [delete]
func (h *FlashcardHandler) DeleteDeck(c *fiber.Ctx) error {
	var body struct {
		UserID      string `json:"user_id"`
		DeckID      string `json:"deck_id"`
		DeckIDCamel string `json:"deckId"`
	}
	if err := parseBody(c, &body); err != nil {
		return err
	}

	userID, err := requireUserID(c, body.UserID)
	if err != nil {
		return err
	}

	deckID := body.DeckID
	if deckID == "" {
		deckID = body.DeckIDCamel
	}
	if deckID == "" {
		deckID = queryParam(c, "deckId", "deck_id")
	}
	if deckID == "" {
		return shared.NewBadRequestError(nil, "deckId is required")
	}

	if err := h.flashcardSvc.DeleteDeck(userID, deckID); err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, fiber.Map{"id": deckID})
}
