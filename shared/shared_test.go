package shared_test

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"

	"github.com/gofiber/fiber/v2"
	"github.com/lac-hong-legacy/study_api/shared"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("AppError", func() {
	It("finds wrapped application errors", func() {
		cause := errors.New("row missing")
		err := fmt.Errorf("lookup: %w", shared.NewNotFoundError(cause, ""))

		appErr, ok := shared.GetAppError(err)
		Expect(ok).To(BeTrue())
		Expect(appErr.Message).To(Equal("Not Found"))
		Expect(errors.Is(err, cause)).To(BeTrue())
		Expect(shared.IsNotFound(err)).To(BeTrue())
		Expect(shared.IsNotFound(cause)).To(BeFalse())
	})

	It("includes the cause in the message", func() {
		err := shared.NewInternalError(errors.New("disk full"))
		Expect(err.Error()).To(Equal("Internal Server Error: disk full"))
		Expect(shared.NewConflictError(nil, "Deck exists").Error()).To(Equal("Deck exists"))
	})
})

var _ = Describe("Response", func() {
	render := func(handler fiber.Handler) (int, map[string]interface{}) {
		app := fiber.New()
		app.Get("/", handler)

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
		Expect(err).NotTo(HaveOccurred())
		defer resp.Body.Close()

		raw, err := io.ReadAll(resp.Body)
		Expect(err).NotTo(HaveOccurred())

		var body map[string]interface{}
		Expect(shared.JSON.Unmarshal(raw, &body)).To(Succeed())
		return resp.StatusCode, body
	}

	It("wraps data in the success envelope", func() {
		status, body := render(func(c *fiber.Ctx) error {
			return shared.ResponseCreated(c, fiber.Map{"id": "x"})
		})
		Expect(status).To(Equal(http.StatusCreated))
		Expect(body).To(HaveKeyWithValue("success", true))
		Expect(body).To(HaveKeyWithValue("data", HaveKeyWithValue("id", "x")))
		Expect(body).To(HaveKey("timestamp"))
		Expect(body).NotTo(HaveKey("error"))
	})

	It("reports errors with a null payload", func() {
		status, body := render(func(c *fiber.Ctx) error {
			return shared.ResponseError(c, http.StatusConflict, "Deck exists", nil)
		})
		Expect(status).To(Equal(http.StatusConflict))
		Expect(body).To(HaveKeyWithValue("success", false))
		Expect(body).To(HaveKeyWithValue("error", "Deck exists"))
		Expect(body).To(HaveKeyWithValue("data", BeNil()))
	})
})
