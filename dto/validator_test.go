package dto_test

import (
	"net/http"

	"github.com/lac-hong-legacy/study_api/dto"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func fields(err error) []string {
	var names []string
	for _, e := range dto.FormatValidationErrors(err) {
		names = append(names, e.Field)
	}
	return names
}

var _ = Describe("Validation", func() {
	It("names fields by their json keys", func() {
		err := dto.SubmitReviewRequest{Rating: "maybe"}.Validate()
		Expect(err).To(HaveOccurred())
		Expect(fields(err)).To(ConsistOf("user_id", "card_id", "rating"))
	})

	It("rejects blank text", func() {
		err := dto.CreateCardRequest{UserID: "u1", Front: "   ", Back: "b"}.Validate()
		Expect(fields(err)).To(ConsistOf("front"))

		messages := dto.FormatValidationErrors(err)
		Expect(messages[0].Message).To(Equal("front must not be blank"))
	})

	It("accepts a complete goal and rejects unknown types", func() {
		Expect(dto.CreateGoalRequest{UserID: "u1", Title: "Read", Type: "sessions", Target: 3}.Validate()).To(Succeed())

		err := dto.CreateGoalRequest{UserID: "u1", Title: "Read", Type: "pages", Target: 3, Period: "yearly"}.Validate()
		Expect(fields(err)).To(ConsistOf("type", "period"))
	})

	It("bounds session durations", func() {
		Expect(dto.CreateSessionRequest{UserID: "u1", DurationMinutes: 1441}.Validate()).NotTo(Succeed())
		Expect(dto.CreateSessionRequest{UserID: "u1", DurationMinutes: 45}.Validate()).To(Succeed())
	})

	It("checks optional pointer fields only when set", func() {
		Expect(dto.UpdateUserRequest{}.Validate()).To(Succeed())

		bad := "not-an-email"
		err := dto.UpdateUserRequest{Email: &bad}.Validate()
		Expect(dto.FormatValidationErrors(err)[0].Message).To(Equal("Invalid email format"))
	})

	It("requires at least one card id to reset", func() {
		err := dto.ResetCardsRequest{UserID: "u1"}.Validate()
		Expect(fields(err)).To(ConsistOf("card_ids"))
	})

	It("wraps failures as a 400 with details", func() {
		appErr := dto.NewValidationError(dto.ProgressUpdateRequest{}.Validate())
		Expect(appErr.StatusCode).To(Equal(http.StatusBadRequest))
		Expect(appErr.Data).To(HaveLen(4))
	})
})
