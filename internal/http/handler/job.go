package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/wayfarerhq/wayfarer/internal/http/dto"
	"github.com/wayfarerhq/wayfarer/internal/service"
)

type JobHandler struct {
	jobService service.JobService
}

func NewJobHandler(jobService service.JobService) *JobHandler {
	return &JobHandler{
		jobService: jobService,
	}
}

// Generate accepts an itinerary request and responds with a job id right
// away; generation continues in the background and is observed via Status.
func (h *JobHandler) Generate(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.GenerateItineraryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "invalid request: destination and durationDays are required"})
		return
	}

	jobID, err := h.jobService.Submit(ctx, req.Destination, req.DurationDays)
	if err != nil {
		if errors.Is(err, service.ErrEmptyDestination) || errors.Is(err, service.ErrInvalidDuration) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
			return
		}
		slog.ErrorContext(ctx, "failed to accept job", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to accept itinerary request"})
		return
	}

	c.JSON(http.StatusAccepted, dto.JobAcceptedResponse{JobID: jobID})
}

// Status returns the job's stored projection as-is. Polling it any number of
// times does not change the job.
func (h *JobHandler) Status(c *gin.Context) {
	ctx := c.Request.Context()
	jobID := c.Param("jobId")

	job, err := h.jobService.Get(ctx, jobID)
	if err != nil {
		if errors.Is(err, service.ErrJobNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "job ID not found"})
			return
		}
		slog.ErrorContext(ctx, "failed to load job status", "error", err, "job_id", jobID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to retrieve job status"})
		return
	}

	c.JSON(http.StatusOK, dto.ToJobStatusResponse(job))
}

// List returns recent jobs, newest first.
func (h *JobHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = parsed
	}

	jobs, err := h.jobService.ListRecent(ctx, limit)
	if err != nil {
		slog.ErrorContext(ctx, "failed to list jobs", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list jobs"})
		return
	}

	resp := dto.JobListResponse{
		Jobs:  make([]dto.JobStatusResponse, len(jobs)),
		Count: len(jobs),
	}
	for i := range jobs {
		resp.Jobs[i] = dto.ToJobStatusResponse(&jobs[i])
	}

	c.JSON(http.StatusOK, resp)
}
