package services

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("RateLimitService", func() {
	var svc *RateLimitService

	BeforeEach(func() {
		svc = &RateLimitService{}
		svc.initDefaultConfigs()
		svc.SetConfig(RateLimitConfig{
			EndpointType: RateLimitImport,
			MaxRequests:  2,
			WindowSize:   50 * time.Millisecond,
			BlockTime:    50 * time.Millisecond,
			IsActive:     true,
		})
	})

	It("blocks after the window's allowance is spent", func() {
		allowed, info := svc.IsAllowed("u1", RateLimitImport)
		Expect(allowed).To(BeTrue())
		Expect(info.Remaining).To(Equal(1))

		allowed, _ = svc.IsAllowed("u1", RateLimitImport)
		Expect(allowed).To(BeTrue())

		allowed, info = svc.IsAllowed("u1", RateLimitImport)
		Expect(allowed).To(BeFalse())
		Expect(info.BlockedUntil).NotTo(BeNil())

		allowed, _ = svc.IsAllowed("u2", RateLimitImport)
		Expect(allowed).To(BeTrue())

		stats := svc.GetRateLimitStats()
		Expect(stats.TrackedIdentifiers).To(Equal(2))
		Expect(stats.Blocked).To(Equal(1))
	})

	It("lets requests through again after the block", func() {
		for i := 0; i < 3; i++ {
			svc.IsAllowed("u1", RateLimitImport)
		}
		Eventually(func() bool {
			allowed, _ := svc.IsAllowed("u1", RateLimitImport)
			return allowed
		}).WithTimeout(time.Second).Should(BeTrue())
	})

	It("ignores unknown and disabled endpoint types", func() {
		allowed, info := svc.IsAllowed("u1", "unknown")
		Expect(allowed).To(BeTrue())
		Expect(info.Remaining).To(Equal(-1))

		svc.disabled = true
		for i := 0; i < 5; i++ {
			allowed, _ = svc.IsAllowed("u1", RateLimitImport)
			Expect(allowed).To(BeTrue())
		}
	})

	It("cleans up expired windows", func() {
		svc.IsAllowed("u1", RateLimitImport)
		svc.IsAllowed("u1", RateLimitGeneral)

		Eventually(svc.CleanupOldRecords).WithTimeout(time.Second).Should(Equal(1))
		Expect(svc.GetRateLimitStats().ByEndpoint).To(HaveKeyWithValue(RateLimitGeneral, 1))
	})

	It("forgets a reset identifier", func() {
		for i := 0; i < 3; i++ {
			svc.IsAllowed("u1", RateLimitImport)
		}
		svc.ResetRateLimit("u1", RateLimitImport)

		allowed, _ := svc.IsAllowed("u1", RateLimitImport)
		Expect(allowed).To(BeTrue())
	})
})
