package generator_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/wayfarerhq/wayfarer/common/llm"
	"github.com/wayfarerhq/wayfarer/internal/generator"
)

var _ = Describe("Generator", func() {
	var mockLLM *mockLLMClient

	newGenerator := func() generator.Generator {
		return generator.New(mockLLM, generator.Config{
			MaxAttempts: 3,
			BaseBackoff: time.Millisecond,
			Timeout:     time.Second,
			MaxTokens:   500,
		})
	}

	BeforeEach(func() {
		mockLLM = &mockLLMClient{}
	})

	Describe("Generate", func() {
		It("returns the itinerary when the first attempt succeeds", func() {
			mockLLM.chatFn = respondWith(itineraryPayload(3))

			days, err := newGenerator().Generate(context.Background(), "Kyoto, Japan", 3)

			Expect(err).NotTo(HaveOccurred())
			Expect(days).To(HaveLen(3))
			Expect(days[0].Day).To(Equal(1))
			Expect(days[2].Day).To(Equal(3))
			Expect(days[0].Activities).To(HaveLen(3))
			Expect(mockLLM.calls).To(Equal(1))
		})

		It("includes the destination and duration in the prompt", func() {
			var captured llm.Request
			mockLLM.chatFn = func(ctx context.Context, req llm.Request, result any) (*llm.Response, error) {
				captured = req
				return respondWith(itineraryPayload(5))(ctx, req, result)
			}

			_, err := newGenerator().Generate(context.Background(), "Lisbon", 5)

			Expect(err).NotTo(HaveOccurred())
			Expect(captured.UserPrompt).To(ContainSubstring("Lisbon"))
			Expect(captured.UserPrompt).To(ContainSubstring("5-day"))
			Expect(captured.SystemPrompt).To(ContainSubstring("travel planner"))
			Expect(captured.SchemaName).NotTo(BeEmpty())
			Expect(captured.MaxTokens).To(Equal(500))
		})

		It("applies the per-call timeout to the model call", func() {
			var hasDeadline bool
			mockLLM.chatFn = func(ctx context.Context, req llm.Request, result any) (*llm.Response, error) {
				_, hasDeadline = ctx.Deadline()
				return respondWith(itineraryPayload(1))(ctx, req, result)
			}

			_, err := newGenerator().Generate(context.Background(), "Quito", 1)

			Expect(err).NotTo(HaveOccurred())
			Expect(hasDeadline).To(BeTrue())
		})

		It("retries rate limits until the attempt budget is exhausted", func() {
			mockLLM.chatFn = func(context.Context, llm.Request, any) (*llm.Response, error) {
				return nil, apiError(http.StatusTooManyRequests)
			}

			_, err := newGenerator().Generate(context.Background(), "Oslo", 2)

			Expect(err).To(MatchError(generator.ErrRateLimited))
			Expect(mockLLM.calls).To(Equal(3))
		})

		It("recovers when a rate limit clears before the budget runs out", func() {
			mockLLM.chatFn = func(ctx context.Context, req llm.Request, result any) (*llm.Response, error) {
				if mockLLM.calls == 1 {
					return nil, apiError(http.StatusTooManyRequests)
				}
				return respondWith(itineraryPayload(2))(ctx, req, result)
			}

			days, err := newGenerator().Generate(context.Background(), "Oslo", 2)

			Expect(err).NotTo(HaveOccurred())
			Expect(days).To(HaveLen(2))
			Expect(mockLLM.calls).To(Equal(2))
		})

		It("retries upstream server errors", func() {
			mockLLM.chatFn = func(ctx context.Context, req llm.Request, result any) (*llm.Response, error) {
				if mockLLM.calls < 3 {
					return nil, apiError(http.StatusBadGateway)
				}
				return respondWith(itineraryPayload(1))(ctx, req, result)
			}

			days, err := newGenerator().Generate(context.Background(), "Berlin", 1)

			Expect(err).NotTo(HaveOccurred())
			Expect(days).To(HaveLen(1))
			Expect(mockLLM.calls).To(Equal(3))
		})

		It("retries network failures", func() {
			mockLLM.chatFn = func(ctx context.Context, req llm.Request, result any) (*llm.Response, error) {
				if mockLLM.calls == 1 {
					return nil, fmt.Errorf("openai chat: %w", errors.New("connection refused"))
				}
				return respondWith(itineraryPayload(1))(ctx, req, result)
			}

			days, err := newGenerator().Generate(context.Background(), "Reykjavik", 1)

			Expect(err).NotTo(HaveOccurred())
			Expect(days).To(HaveLen(1))
			Expect(mockLLM.calls).To(Equal(2))
		})

		It("bounds mixed transient failures by the overall attempt budget", func() {
			responses := []error{
				apiError(http.StatusServiceUnavailable),
				apiError(http.StatusTooManyRequests),
				apiError(http.StatusBadGateway),
			}
			mockLLM.chatFn = func(context.Context, llm.Request, any) (*llm.Response, error) {
				return nil, responses[mockLLM.calls-1]
			}

			_, err := newGenerator().Generate(context.Background(), "Nairobi", 2)

			Expect(err).To(MatchError(generator.ErrUpstream))
			Expect(mockLLM.calls).To(Equal(3))
		})

		It("stops immediately when the model rejects the request", func() {
			mockLLM.chatFn = func(context.Context, llm.Request, any) (*llm.Response, error) {
				return nil, apiError(http.StatusUnauthorized)
			}

			_, err := newGenerator().Generate(context.Background(), "Rome", 2)

			Expect(err).To(MatchError(generator.ErrUpstream))
			Expect(mockLLM.calls).To(Equal(1))
		})

		It("retries an unusable itinerary exactly once", func() {
			mockLLM.chatFn = respondWith(itineraryPayload(4)) // caller asked for 2 days

			_, err := newGenerator().Generate(context.Background(), "Athens", 2)

			Expect(err).To(MatchError(generator.ErrInvalidResponse))
			Expect(mockLLM.calls).To(Equal(2))
		})

		It("retries undecodable output exactly once", func() {
			mockLLM.chatFn = func(context.Context, llm.Request, any) (*llm.Response, error) {
				return nil, fmt.Errorf("%w: unmarshal response", llm.ErrMalformedOutput)
			}

			_, err := newGenerator().Generate(context.Background(), "Athens", 2)

			Expect(err).To(MatchError(generator.ErrInvalidResponse))
			Expect(mockLLM.calls).To(Equal(2))
		})

		It("retries a timed-out call exactly once", func() {
			mockLLM.chatFn = func(context.Context, llm.Request, any) (*llm.Response, error) {
				return nil, fmt.Errorf("openai chat: %w", context.DeadlineExceeded)
			}

			_, err := newGenerator().Generate(context.Background(), "Havana", 2)

			Expect(err).To(MatchError(generator.ErrTimeout))
			Expect(mockLLM.calls).To(Equal(2))
		})

		It("stops retrying when the context is cancelled", func() {
			ctx, cancel := context.WithCancel(context.Background())
			mockLLM.chatFn = func(context.Context, llm.Request, any) (*llm.Response, error) {
				cancel()
				return nil, apiError(http.StatusTooManyRequests)
			}

			_, err := newGenerator().Generate(ctx, "Lima", 2)

			Expect(err).To(MatchError(context.Canceled))
			Expect(mockLLM.calls).To(Equal(1))
		})
	})
})
