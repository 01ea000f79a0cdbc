package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/wayfarerhq/wayfarer/internal/http/handler"
	"github.com/wayfarerhq/wayfarer/internal/model"
	"github.com/wayfarerhq/wayfarer/internal/service"
)

func processingJob() *model.Job {
	return &model.Job{
		JobID:        "7f9c1b2e-0a4f-4a7d-9a39-5a1f3c2d8e44",
		Status:       model.JobStatusProcessing,
		Destination:  "Kyoto, Japan",
		DurationDays: 2,
		CreatedAt:    time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC),
	}
}

func completedJob() *model.Job {
	job := processingJob()
	completedAt := job.CreatedAt.Add(12 * time.Second)
	job.Status = model.JobStatusCompleted
	job.CompletedAt = &completedAt
	job.Itinerary = []model.Day{
		{
			Day:   1,
			Theme: "Temples and tea houses",
			Activities: []model.Activity{
				{Time: "Morning", Description: "Walk the Fushimi Inari gates", Location: "Fushimi Inari Taisha"},
				{Time: "Afternoon", Description: "Matcha tasting", Location: "Uji"},
				{Time: "Evening", Description: "Kaiseki dinner", Location: "Gion"},
			},
		},
		{
			Day:   2,
			Theme: "Gardens and markets",
			Activities: []model.Activity{
				{Time: "Morning", Description: "Stroll the bamboo grove", Location: "Arashiyama"},
				{Time: "Afternoon", Description: "Browse the food stalls", Location: "Nishiki Market"},
				{Time: "Evening", Description: "Riverside walk", Location: "Kamo River"},
			},
		},
	}
	return job
}

func failedJob() *model.Job {
	job := processingJob()
	completedAt := job.CreatedAt.Add(40 * time.Second)
	message := "Failed to generate itinerary: model rate limited"
	job.Status = model.JobStatusFailed
	job.CompletedAt = &completedAt
	job.Error = &message
	return job
}

var _ = Describe("JobHandler", func() {
	var (
		router *gin.Engine
		svc    *mockJobService
	)

	BeforeEach(func() {
		gin.SetMode(gin.TestMode)
		router = gin.New()
		svc = &mockJobService{}
		h := handler.NewJobHandler(svc)
		router.POST("/generate-itinerary", h.Generate)
		router.GET("/job-status/:jobId", h.Status)
		router.GET("/jobs", h.List)
	})

	postGenerate := func(body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/generate-itinerary", bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	get := func(path string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	Describe("Generate", func() {
		It("returns 202 with the job ID on success", func() {
			var gotDestination string
			var gotDays int
			svc.submitFn = func(_ context.Context, destination string, durationDays int) (string, error) {
				gotDestination = destination
				gotDays = durationDays
				return "7f9c1b2e-0a4f-4a7d-9a39-5a1f3c2d8e44", nil
			}

			w := postGenerate(`{"destination": "Kyoto, Japan", "durationDays": 2}`)

			Expect(w.Code).To(Equal(http.StatusAccepted))
			Expect(gotDestination).To(Equal("Kyoto, Japan"))
			Expect(gotDays).To(Equal(2))

			var resp map[string]any
			Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
			Expect(resp["jobId"]).To(Equal("7f9c1b2e-0a4f-4a7d-9a39-5a1f3c2d8e44"))
		})

		It("returns 422 when destination is missing", func() {
			w := postGenerate(`{"durationDays": 2}`)

			Expect(w.Code).To(Equal(http.StatusUnprocessableEntity))
		})

		It("returns 422 on malformed JSON", func() {
			w := postGenerate(`{"destination": "Kyoto"`)

			Expect(w.Code).To(Equal(http.StatusUnprocessableEntity))
		})

		It("returns 422 with the limit when the duration is out of range", func() {
			svc.submitFn = func(_ context.Context, _ string, _ int) (string, error) {
				return "", fmt.Errorf("%w: durationDays must be between 1 and 30", service.ErrInvalidDuration)
			}

			w := postGenerate(`{"destination": "Kyoto, Japan", "durationDays": 45}`)

			Expect(w.Code).To(Equal(http.StatusUnprocessableEntity))
			var resp map[string]any
			Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
			Expect(resp["error"]).To(ContainSubstring("between 1 and 30"))
		})

		It("returns 422 when the service rejects an empty destination", func() {
			svc.submitFn = func(_ context.Context, _ string, _ int) (string, error) {
				return "", service.ErrEmptyDestination
			}

			w := postGenerate(`{"destination": "   ", "durationDays": 2}`)

			Expect(w.Code).To(Equal(http.StatusUnprocessableEntity))
		})

		It("returns 500 when the service fails unexpectedly", func() {
			svc.submitFn = func(_ context.Context, _ string, _ int) (string, error) {
				return "", errors.New("store down")
			}

			w := postGenerate(`{"destination": "Kyoto, Japan", "durationDays": 2}`)

			Expect(w.Code).To(Equal(http.StatusInternalServerError))
			var resp map[string]any
			Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
			Expect(resp["error"]).NotTo(ContainSubstring("store down"))
		})
	})

	Describe("Status", func() {
		It("returns a processing job without terminal fields", func() {
			svc.getFn = func(_ context.Context, jobID string) (*model.Job, error) {
				Expect(jobID).To(Equal("7f9c1b2e-0a4f-4a7d-9a39-5a1f3c2d8e44"))
				return processingJob(), nil
			}

			w := get("/job-status/7f9c1b2e-0a4f-4a7d-9a39-5a1f3c2d8e44")

			Expect(w.Code).To(Equal(http.StatusOK))
			var resp map[string]any
			Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
			Expect(resp["jobId"]).To(Equal("7f9c1b2e-0a4f-4a7d-9a39-5a1f3c2d8e44"))
			Expect(resp["status"]).To(Equal("processing"))
			Expect(resp["destination"]).To(Equal("Kyoto, Japan"))
			Expect(resp["durationDays"]).To(BeNumerically("==", 2))
			Expect(resp).To(HaveKey("createdAt"))
			Expect(resp).NotTo(HaveKey("completedAt"))
			Expect(resp).NotTo(HaveKey("itinerary"))
			Expect(resp).NotTo(HaveKey("error"))
		})

		It("returns a completed job with its itinerary and no error", func() {
			svc.getFn = func(_ context.Context, _ string) (*model.Job, error) {
				return completedJob(), nil
			}

			w := get("/job-status/7f9c1b2e-0a4f-4a7d-9a39-5a1f3c2d8e44")

			Expect(w.Code).To(Equal(http.StatusOK))
			var resp map[string]any
			Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
			Expect(resp["status"]).To(Equal("completed"))
			Expect(resp).To(HaveKey("completedAt"))
			Expect(resp).NotTo(HaveKey("error"))

			itinerary, ok := resp["itinerary"].([]any)
			Expect(ok).To(BeTrue())
			Expect(itinerary).To(HaveLen(2))
			day, ok := itinerary[0].(map[string]any)
			Expect(ok).To(BeTrue())
			Expect(day["theme"]).To(Equal("Temples and tea houses"))
			Expect(day["activities"]).To(HaveLen(3))
		})

		It("returns a failed job with its error and no itinerary", func() {
			svc.getFn = func(_ context.Context, _ string) (*model.Job, error) {
				return failedJob(), nil
			}

			w := get("/job-status/7f9c1b2e-0a4f-4a7d-9a39-5a1f3c2d8e44")

			Expect(w.Code).To(Equal(http.StatusOK))
			var resp map[string]any
			Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
			Expect(resp["status"]).To(Equal("failed"))
			Expect(resp["error"]).To(ContainSubstring("Failed to generate itinerary"))
			Expect(resp).NotTo(HaveKey("itinerary"))
		})

		It("returns the same body when polled twice", func() {
			svc.getFn = func(_ context.Context, _ string) (*model.Job, error) {
				return completedJob(), nil
			}

			first := get("/job-status/7f9c1b2e-0a4f-4a7d-9a39-5a1f3c2d8e44")
			second := get("/job-status/7f9c1b2e-0a4f-4a7d-9a39-5a1f3c2d8e44")

			Expect(first.Code).To(Equal(http.StatusOK))
			Expect(second.Body.Bytes()).To(Equal(first.Body.Bytes()))
		})

		It("returns 404 when the job does not exist", func() {
			svc.getFn = func(_ context.Context, _ string) (*model.Job, error) {
				return nil, service.ErrJobNotFound
			}

			w := get("/job-status/unknown-id")

			Expect(w.Code).To(Equal(http.StatusNotFound))
			var resp map[string]any
			Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
			Expect(resp["error"]).To(Equal("job ID not found"))
		})

		It("returns 500 when the lookup fails", func() {
			svc.getFn = func(_ context.Context, _ string) (*model.Job, error) {
				return nil, errors.New("store down")
			}

			w := get("/job-status/7f9c1b2e-0a4f-4a7d-9a39-5a1f3c2d8e44")

			Expect(w.Code).To(Equal(http.StatusInternalServerError))
		})
	})

	Describe("List", func() {
		It("passes no limit through when the query is absent", func() {
			var gotLimit int
			svc.listRecentFn = func(_ context.Context, limit int) ([]model.Job, error) {
				gotLimit = limit
				return []model.Job{*processingJob()}, nil
			}

			w := get("/jobs")

			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(gotLimit).To(Equal(0))

			var resp map[string]any
			Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
			Expect(resp["count"]).To(BeNumerically("==", 1))
			Expect(resp["jobs"]).To(HaveLen(1))
		})

		It("passes an explicit limit through", func() {
			var gotLimit int
			svc.listRecentFn = func(_ context.Context, limit int) ([]model.Job, error) {
				gotLimit = limit
				return []model.Job{}, nil
			}

			w := get("/jobs?limit=5")

			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(gotLimit).To(Equal(5))
		})

		It("returns 400 when the limit is not a number", func() {
			w := get("/jobs?limit=abc")

			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})

		It("returns 400 when the limit is not positive", func() {
			w := get("/jobs?limit=0")

			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})

		It("returns 500 when listing fails", func() {
			svc.listRecentFn = func(_ context.Context, _ int) ([]model.Job, error) {
				return nil, errors.New("store down")
			}

			w := get("/jobs")

			Expect(w.Code).To(Equal(http.StatusInternalServerError))
		})
	})
})
