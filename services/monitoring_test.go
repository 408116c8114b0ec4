package services

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("MonitoringService", func() {
	var svc *MonitoringService

	BeforeEach(func() {
		svc = &MonitoringService{}
	})

	It("counts requests by route pattern", func() {
		app := fiber.New()
		app.Use(MonitoringMiddleware(svc))
		app.Get("/decks/:deckId", func(c *fiber.Ctx) error {
			return c.SendStatus(fiber.StatusOK)
		})
		app.Get("/missing", func(c *fiber.Ctx) error {
			return c.SendStatus(fiber.StatusNotFound)
		})

		ok := httpRequestsTotal.WithLabelValues("/decks/:deckId", "GET", "200")
		failed := httpRequestsFailedTotal.WithLabelValues("/missing", "GET")
		okBefore, failedBefore := testutil.ToFloat64(ok), testutil.ToFloat64(failed)

		for _, target := range []string{"/decks/a", "/decks/b", "/missing"} {
			resp, err := app.Test(httptest.NewRequest(http.MethodGet, target, nil), -1)
			Expect(err).NotTo(HaveOccurred())
			resp.Body.Close()
		}

		Expect(testutil.ToFloat64(ok) - okBefore).To(Equal(2.0))
		Expect(testutil.ToFloat64(failed) - failedBefore).To(Equal(1.0))
		Expect(testutil.ToFloat64(httpRequestsActive.WithLabelValues("/decks/:deckId", "GET"))).To(BeZero())
	})

	It("records store operations and job outcomes", func() {
		ops := storeOperationsTotal.WithLabelValues("update", "goals", "ok")
		failedJobs := scheduledJobsTotal.WithLabelValues("backup", "error")
		opsBefore, jobsBefore := testutil.ToFloat64(ops), testutil.ToFloat64(failedJobs)

		svc.RecordStoreOperation("update", "goals", "ok", time.Millisecond)
		svc.RecordJob("backup", errors.New("bucket gone"))
		svc.RecordJob("backup", nil)

		Expect(testutil.ToFloat64(ops) - opsBefore).To(Equal(1.0))
		Expect(testutil.ToFloat64(failedJobs) - jobsBefore).To(Equal(1.0))
	})
})
