package shared

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

// Response is the envelope every endpoint answers with.
type Response struct {
	Success   bool        `json:"success"`
	Data      interface{} `json:"data"`
	Error     string      `json:"error,omitempty"`
	Errors    interface{} `json:"errors,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

func render(c *fiber.Ctx, httpCode int, resp Response) error {
	body, err := JSON.Marshal(resp)
	if err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSONCharsetUTF8)
	return c.Status(httpCode).Send(body)
}

func ResponseJSON(c *fiber.Ctx, httpCode int, data interface{}) error {
	return render(c, httpCode, Response{
		Success:   httpCode < 400,
		Data:      data,
		Timestamp: time.Now().UTC(),
	})
}

func ResponseCreated(c *fiber.Ctx, data interface{}) error {
	return ResponseJSON(c, fiber.StatusCreated, data)
}

func ResponseError(c *fiber.Ctx, httpCode int, message string, details interface{}) error {
	return render(c, httpCode, Response{
		Success:   false,
		Error:     message,
		Errors:    details,
		Timestamp: time.Now().UTC(),
	})
}

func ResponseInternalError(c *fiber.Ctx) error {
	return ResponseError(c, fiber.StatusInternalServerError, "Internal Server Error", nil)
}
