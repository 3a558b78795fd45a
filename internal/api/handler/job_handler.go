package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/oddscope/clvserver/internal/domain"
	"github.com/oddscope/clvserver/internal/service"
)

// JobHandler serves batch submission and job status endpoints.
type JobHandler struct {
	jobSvc *service.JobService
}

// NewJobHandler creates a JobHandler.
func NewJobHandler(jobSvc *service.JobService) *JobHandler {
	return &JobHandler{jobSvc: jobSvc}
}

// fallbackStrategies are the accepted values for the optional request field.
// The field is validated for forward compatibility but does not influence
// processing; the resolver always walks the full hierarchy.
var fallbackStrategies = map[string]bool{
	"":             true,
	"exact":        true,
	"pinnacle":     true,
	"weighted_avg": true,
}

// SubmitBatch godoc
// POST /api/batch-closing-odds
// Body: {"bets":[{...}], "fallbackStrategy":"pinnacle"}
func (h *JobHandler) SubmitBatch(c *gin.Context) {
	var body struct {
		Bets             []domain.BetRequest `json:"bets" binding:"required,min=1"`
		FallbackStrategy string              `json:"fallbackStrategy"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, http.StatusBadRequest, "ERR_VALIDATION", err.Error())
		return
	}
	if !fallbackStrategies[body.FallbackStrategy] {
		respondError(c, http.StatusBadRequest, "ERR_VALIDATION",
			"fallbackStrategy must be one of exact, pinnacle, weighted_avg")
		return
	}

	job, err := h.jobSvc.SubmitBatch(c.Request.Context(), body.Bets)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", "could not queue batch")
		return
	}

	respondSuccess(c, http.StatusAccepted, gin.H{
		"jobId":     job.ID,
		"status":    job.Status,
		"totalBets": job.TotalBets,
	})
}

// JobStatus godoc
// GET /api/job-status/:jobID
func (h *JobHandler) JobStatus(c *gin.Context) {
	jobID, err := uuid.Parse(c.Param("jobID"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "ERR_INVALID_JOB_ID", "invalid job id")
		return
	}

	status, err := h.jobSvc.Status(c.Request.Context(), jobID)
	if err != nil {
		if domain.IsNotFound(err) {
			respondError(c, http.StatusNotFound, "ERR_JOB_NOT_FOUND", "job not found")
			return
		}
		respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", "could not fetch job")
		return
	}

	payload := gin.H{
		"jobId":    status.Job.ID,
		"status":   status.Job.Status,
		"progress": status.Job.Progress(),
		"results":  status.Results,
	}
	if status.Job.ErrorMessage != nil {
		payload["error"] = *status.Job.ErrorMessage
	}
	respondSuccess(c, http.StatusOK, payload)
}
