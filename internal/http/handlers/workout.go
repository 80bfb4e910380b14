package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mand0ng/fitness-app-backend/internal/http/response"
	"github.com/mand0ng/fitness-app-backend/internal/jobs"
	"github.com/mand0ng/fitness-app-backend/internal/platform/ctxutil"
	"github.com/mand0ng/fitness-app-backend/internal/services"
)

type WorkoutHandler struct {
	workouts services.WorkoutService
}

func NewWorkoutHandler(workouts services.WorkoutService) *WorkoutHandler {
	return &WorkoutHandler{workouts: workouts}
}

// POST /api/workout/generate
func (h *WorkoutHandler) Generate(c *gin.Context) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	if rd == nil {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", errors.New("not authenticated"))
		return
	}
	jobID, err := h.workouts.CreateUserWorkout(c.Request.Context(), rd.UserID)
	if err != nil {
		response.RespondAPIError(c, err, "create_workout_failed")
		return
	}
	response.RespondAccepted(c, gin.H{"status": "success", "job_id": jobID})
}

// GET /api/workout
func (h *WorkoutHandler) GetWorkout(c *gin.Context) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	if rd == nil {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", errors.New("not authenticated"))
		return
	}
	doc, err := h.workouts.GetUserWorkout(c.Request.Context(), rd.UserID)
	if err != nil {
		response.RespondAPIError(c, err, "get_workout_failed")
		return
	}
	response.RespondOK(c, doc)
}

// GET /api/workout/jobs/:id
func (h *WorkoutHandler) GetJobStatus(c *gin.Context) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	if rd == nil {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", errors.New("not authenticated"))
		return
	}
	jobID := strings.TrimSpace(c.Param("id"))
	status, err := h.workouts.GetJobStatus(c.Request.Context(), rd.UserID, jobID)
	if err != nil {
		response.RespondAPIError(c, err, "job_status_failed")
		return
	}
	code := http.StatusOK
	if status.Status == jobs.StateNotFound {
		code = http.StatusNotFound
	}
	c.JSON(code, gin.H{"job_status": status})
}
