package services

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type envelope struct {
	Success bool                     `json:"success"`
	Data    interface{}              `json:"data"`
	Error   string                   `json:"error"`
	Errors  []map[string]interface{} `json:"errors"`
}

var _ = Describe("HttpService", func() {
	var (
		env *testEnv
		svc *HttpService
		app *fiber.App
	)

	newApp := func() *fiber.App {
		return svc.buildApp()
	}

	call := func(method, target string, body string, headers ...string) (int, envelope) {
		var reader io.Reader
		if body != "" {
			reader = bytes.NewBufferString(body)
		}
		req := httptest.NewRequest(method, target, reader)
		if body != "" {
			req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		}
		for i := 0; i+1 < len(headers); i += 2 {
			req.Header.Set(headers[i], headers[i+1])
		}

		resp, err := app.Test(req, -1)
		Expect(err).NotTo(HaveOccurred())
		defer resp.Body.Close()

		raw, err := io.ReadAll(resp.Body)
		Expect(err).NotTo(HaveOccurred())

		var out envelope
		Expect(sonic.Unmarshal(raw, &out)).To(Succeed(), string(raw))
		return resp.StatusCode, out
	}

	BeforeEach(func() {
		env = newTestEnv()
		svc = &HttpService{
			storeSvc:            env.store,
			courseSvc:           env.courses,
			userSvc:             env.users,
			flashcardSvc:        env.cards,
			spacedRepetitionSvc: env.reviews,
			studySessionSvc:     env.sessions,
			studyGoalSvc:        env.goals,
			analyticsSvc:        env.analytics,
			corsOrigins:         "*",
		}
		app = newApp()
	})

	It("answers ping and health with the envelope", func() {
		status, body := call(http.MethodGet, "/ping", "")
		Expect(status).To(Equal(http.StatusOK))
		Expect(body.Success).To(BeTrue())
		Expect(body.Data).To(Equal("pong"))

		status, body = call(http.MethodGet, "/api/v1/health", "")
		Expect(status).To(Equal(http.StatusOK))
		Expect(body.Data).To(HaveKeyWithValue("status", "healthy"))
	})

	It("renders unknown routes as 404", func() {
		status, body := call(http.MethodGet, "/api/v1/nothing-here", "")
		Expect(status).To(Equal(http.StatusNotFound))
		Expect(body.Success).To(BeFalse())
		Expect(body.Error).To(Equal("Route not found"))
	})

	DescribeTable("requires a user id on user-scoped routes",
		func(method, target, body string) {
			status, out := call(method, target, body)
			Expect(status).To(Equal(http.StatusBadRequest))
			Expect(out.Success).To(BeFalse())
			Expect(out.Error).To(Equal("userId is required"))
		},
		Entry("list cards", http.MethodGet, "/api/v1/flashcards", ""),
		Entry("create deck", http.MethodPost, "/api/v1/flashcards/decks", `{"name":"Deck"}`),
		Entry("delete deck", http.MethodDelete, "/api/v1/flashcards/decks", `{"deck_id":"d1"}`),
		Entry("due cards", http.MethodGet, "/api/v1/spaced-repetition", ""),
		Entry("submit review", http.MethodPost, "/api/v1/spaced-repetition", `{"card_id":"c1","rating":"good"}`),
		Entry("reset cards", http.MethodPut, "/api/v1/spaced-repetition", `{"card_ids":["c1"]}`),
		Entry("reschedule", http.MethodPatch, "/api/v1/spaced-repetition", `{"card_id":"c1"}`),
		Entry("progress", http.MethodGet, "/api/v1/progress", ""),
		Entry("progress update", http.MethodPost, "/api/v1/progress/update", `{"course_id":"go","unit_id":"basics","topic_id":"vars"}`),
		Entry("list sessions", http.MethodGet, "/api/v1/sessions", ""),
		Entry("delete session", http.MethodDelete, "/api/v1/sessions/s1", ""),
		Entry("list goals", http.MethodGet, "/api/v1/goals", ""),
		Entry("create goal", http.MethodPost, "/api/v1/goals", `{"title":"Read","type":"sessions","target":3}`),
		Entry("progress goal", http.MethodPatch, "/api/v1/goals", `{"goal_id":"g1","amount":1}`),
		Entry("delete goal", http.MethodDelete, "/api/v1/goals", `{"goal_id":"g1"}`),
		Entry("overview", http.MethodGet, "/api/v1/analytics/overview", ""),
	)

	It("reads a camelCase userId from json bodies", func() {
		status, body := call(http.MethodPost, "/api/v1/flashcards/decks", `{"userId":"ana","name":"Deck"}`)
		Expect(status).To(Equal(http.StatusCreated))
		Expect(body.Data).To(HaveKeyWithValue("user_id", "ana"))

		status, body = call(http.MethodGet, "/api/v1/flashcards/decks?userId=ana", "")
		Expect(status).To(Equal(http.StatusOK))
		Expect(body.Data).To(HaveLen(1))
		deckID := body.Data.([]interface{})[0].(map[string]interface{})["id"].(string)

		status, _ = call(http.MethodDelete, "/api/v1/flashcards/decks", `{"userId":"ana","deckId":"`+deckID+`"}`)
		Expect(status).To(Equal(http.StatusOK))

		status, body = call(http.MethodPost, "/api/v1/goals", `{"userId":"ana","title":"Read","type":"sessions","target":3}`)
		Expect(status).To(Equal(http.StatusCreated))
		Expect(body.Data).To(HaveKeyWithValue("user_id", "ana"))
	})

	It("serves the catalog", func() {
		status, body := call(http.MethodGet, "/api/v1/courses", "")
		Expect(status).To(Equal(http.StatusOK))
		Expect(body.Data).To(HaveLen(1))

		status, body = call(http.MethodGet, "/api/v1/units/go/basics/vars", "")
		Expect(status).To(Equal(http.StatusOK))
		Expect(body.Data).To(HaveKeyWithValue("title", "Variables"))

		status, _ = call(http.MethodGet, "/api/v1/courses/rust", "")
		Expect(status).To(Equal(http.StatusNotFound))
	})

	It("creates and fetches users", func() {
		status, body := call(http.MethodPost, "/api/v1/users", `{"id":"ana","name":"Ana"}`)
		Expect(status).To(Equal(http.StatusCreated))
		Expect(body.Data).To(HaveKeyWithValue("id", "ana"))

		status, body = call(http.MethodGet, "/api/v1/users/ana", "")
		Expect(status).To(Equal(http.StatusOK))
		Expect(body.Data).To(HaveKeyWithValue("name", "Ana"))
	})

	It("reports field errors on invalid bodies", func() {
		status, body := call(http.MethodPost, "/api/v1/goals", `{"user_id":"ana","title":"Read","type":"sessions","target":0}`)
		Expect(status).To(Equal(http.StatusBadRequest))
		Expect(body.Error).To(Equal("Validation failed"))
		Expect(body.Errors).NotTo(BeEmpty())
		Expect(body.Errors[0]).To(HaveKeyWithValue("field", "target"))

		status, body = call(http.MethodPost, "/api/v1/sessions", `{not json`)
		Expect(status).To(Equal(http.StatusBadRequest))
		Expect(body.Error).To(Equal("Invalid request body"))
	})

	It("runs a review cycle", func() {
		status, body := call(http.MethodPost, "/api/v1/flashcards", `{"user_id":"ana","front":"hola","back":"hello"}`)
		Expect(status).To(Equal(http.StatusCreated))
		cardID := body.Data.(map[string]interface{})["id"].(string)

		status, body = call(http.MethodGet, "/api/v1/spaced-repetition?userId=ana", "")
		Expect(status).To(Equal(http.StatusOK))
		Expect(body.Data).To(HaveKeyWithValue("cards", HaveLen(1)))

		status, _ = call(http.MethodPost, "/api/v1/spaced-repetition", `{"user_id":"ana","card_id":"`+cardID+`","rating":"good"}`)
		Expect(status).To(Equal(http.StatusOK))

		status, body = call(http.MethodGet, "/api/v1/spaced-repetition?user_id=ana", "")
		Expect(status).To(Equal(http.StatusOK))
		Expect(body.Data).To(HaveKeyWithValue("cards", BeEmpty()))

		status, _ = call(http.MethodGet, "/api/v1/spaced-repetition?userId=ana&limit=abc", "")
		Expect(status).To(Equal(http.StatusBadRequest))
	})

	It("imports a csv upload", func() {
		var buf bytes.Buffer
		writer := multipart.NewWriter(&buf)
		Expect(writer.WriteField("userId", "ana")).To(Succeed())
		Expect(writer.WriteField("deckName", "Spanish")).To(Succeed())
		part, err := writer.CreateFormFile("file", "words.csv")
		Expect(err).NotTo(HaveOccurred())
		_, err = part.Write([]byte("front,back\nperro,dog\ngato,cat\n"))
		Expect(err).NotTo(HaveOccurred())
		Expect(writer.Close()).To(Succeed())

		req := httptest.NewRequest(http.MethodPost, "/api/v1/flashcards/import", &buf)
		req.Header.Set(fiber.HeaderContentType, writer.FormDataContentType())
		resp, err := app.Test(req, -1)
		Expect(err).NotTo(HaveOccurred())
		Expect(resp.StatusCode).To(Equal(http.StatusCreated))

		status, body := call(http.MethodGet, "/api/v1/flashcards/decks?userId=ana", "")
		Expect(status).To(Equal(http.StatusOK))
		Expect(body.Data).To(ContainElement(HaveKeyWithValue("card_count", BeEquivalentTo(2))))
	})

	Context("with bearer tokens", func() {
		var jwtSvc *JWTService

		BeforeEach(func() {
			jwtSvc = &JWTService{AccessTokenDuration: time.Hour, jwtSecretKey: "test-secret"}
			svc.authSvc = &AuthMiddleware{jwtSvc: jwtSvc}
			app = newApp()
		})

		It("prefers the token's user over the query", func() {
			token, err := jwtSvc.ToJWT("ana")
			Expect(err).NotTo(HaveOccurred())
			env.createCard("ana", "mine")

			status, body := call(http.MethodGet, "/api/v1/flashcards?userId=mallory", "", fiber.HeaderAuthorization, "Bearer "+token)
			Expect(status).To(Equal(http.StatusOK))
			Expect(body.Data).To(HaveLen(1))
		})

		It("rejects invalid tokens", func() {
			status, body := call(http.MethodGet, "/api/v1/flashcards?userId=ana", "", fiber.HeaderAuthorization, "Bearer nope")
			Expect(status).To(Equal(http.StatusUnauthorized))
			Expect(body.Success).To(BeFalse())
		})
	})

	Context("with rate limits", func() {
		BeforeEach(func() {
			limiter := &RateLimitService{}
			limiter.initDefaultConfigs()
			limiter.SetConfig(RateLimitConfig{
				EndpointType: RateLimitGeneral,
				MaxRequests:  2,
				WindowSize:   time.Minute,
				BlockTime:    time.Minute,
				IsActive:     true,
			})
			svc.rateLimitSvc = limiter
			app = newApp()
		})

		It("answers 429 once the allowance is spent", func() {
			for i := 0; i < 2; i++ {
				status, _ := call(http.MethodGet, "/api/v1/courses", "")
				Expect(status).To(Equal(http.StatusOK))
			}
			status, body := call(http.MethodGet, "/api/v1/courses", "")
			Expect(status).To(Equal(http.StatusTooManyRequests))
			Expect(body.Success).To(BeFalse())
		})
	})

	Context("admin routes", func() {
		BeforeEach(func() {
			svc.backupSvc = &BackupService{storeSvc: env.store}
			svc.adminKey = "letmein"
			app = newApp()
		})

		It("checks the admin key", func() {
			status, _ := call(http.MethodGet, "/api/v1/admin/backups", "")
			Expect(status).To(Equal(http.StatusUnauthorized))
		})

		It("reports missing backup storage", func() {
			status, body := call(http.MethodPost, "/api/v1/admin/backup", "", "X-Admin-Key", "letmein")
			Expect(status).To(Equal(http.StatusServiceUnavailable))
			Expect(body.Error).To(Equal("Backup storage is not configured"))
		})
	})
})
