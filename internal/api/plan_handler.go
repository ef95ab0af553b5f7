package api

import (
	"errors"
	"net/http"
	"time"

	"alcyxob/coach-assistant/internal/domain"
	"alcyxob/coach-assistant/internal/service"

	"github.com/gin-gonic/gin"
)

// PlanHandler exposes the client's persisted plan state: active diet, active
// workout, meal plan days and the flattened food category table.
type PlanHandler struct {
	assistantService service.AssistantService
}

// NewPlanHandler creates a new PlanHandler.
func NewPlanHandler(assistantService service.AssistantService) *PlanHandler {
	return &PlanHandler{assistantService: assistantService}
}

// GetActiveDiet handles GET /api/v1/plans/diet.
func (h *PlanHandler) GetActiveDiet(c *gin.Context) {
	userID, ok := currentUserObjectID(c)
	if !ok {
		return
	}

	diet, err := h.assistantService.GetActiveDiet(c.Request.Context(), userID)
	if err != nil {
		handlePlanError(c, err, "No active diet")
		return
	}
	c.JSON(http.StatusOK, diet)
}

// GetActiveWorkout handles GET /api/v1/plans/workout.
func (h *PlanHandler) GetActiveWorkout(c *gin.Context) {
	userID, ok := currentUserObjectID(c)
	if !ok {
		return
	}

	workout, err := h.assistantService.GetActiveWorkout(c.Request.Context(), userID)
	if err != nil {
		handlePlanError(c, err, "No active workout plan")
		return
	}
	c.JSON(http.StatusOK, workout)
}

// GetMealPlans handles GET /api/v1/plans/meals?from=YYYY-MM-DD&to=YYYY-MM-DD.
func (h *PlanHandler) GetMealPlans(c *gin.Context) {
	userID, ok := currentUserObjectID(c)
	if !ok {
		return
	}

	from := c.Query("from")
	to := c.Query("to")
	if !validPlanDate(from) || !validPlanDate(to) || from > to {
		abortWithError(c, http.StatusBadRequest, "Query params 'from' and 'to' must be YYYY-MM-DD dates with from <= to")
		return
	}

	days, err := h.assistantService.GetMealPlanRange(c.Request.Context(), userID, from, to)
	if err != nil {
		handlePlanError(c, err, "No meal plans in range")
		return
	}
	c.JSON(http.StatusOK, days)
}

// GetFoodCategories handles GET /api/v1/plans/diet/categories.
func (h *PlanHandler) GetFoodCategories(c *gin.Context) {
	userID, ok := currentUserObjectID(c)
	if !ok {
		return
	}

	rows, err := h.assistantService.GetFoodCategories(c.Request.Context(), userID)
	if err != nil {
		handlePlanError(c, err, "No active diet")
		return
	}
	c.JSON(http.StatusOK, rows)
}

func validPlanDate(s string) bool {
	_, err := time.Parse(domain.MealPlanDateLayout, s)
	return err == nil
}

func handlePlanError(c *gin.Context, err error, notFoundMsg string) {
	switch {
	case errors.Is(err, service.ErrPlanNotFound):
		abortWithError(c, http.StatusNotFound, notFoundMsg)
	case errors.Is(err, service.ErrUserNotFound):
		abortWithError(c, http.StatusNotFound, "User not found")
	case errors.Is(err, service.ErrUserNotClient):
		abortWithError(c, http.StatusForbidden, "Only clients have plans")
	case errors.Is(err, service.ErrNoTrainerAssigned):
		abortWithError(c, http.StatusConflict, "No trainer assigned")
	default:
		abortWithError(c, http.StatusInternalServerError, "Failed to load plan")
	}
}
