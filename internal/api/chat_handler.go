package api

import (
	"errors"
	"net/http"

	"alcyxob/coach-assistant/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ChatHandler holds the assistant service dependency.
type ChatHandler struct {
	assistantService service.AssistantService
}

// NewChatHandler creates a new ChatHandler.
func NewChatHandler(assistantService service.AssistantService) *ChatHandler {
	return &ChatHandler{assistantService: assistantService}
}

// --- DTOs ---

// ChatTurnRequest defines the expected JSON for one chat turn.
type ChatTurnRequest struct {
	Message string `json:"message" binding:"required"`
}

// currentUserObjectID extracts and parses the authenticated user's ID.
func currentUserObjectID(c *gin.Context) (primitive.ObjectID, bool) {
	idStr, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return primitive.NilObjectID, false
	}
	id, err := primitive.ObjectIDFromHex(idStr)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid user ID in token")
		return primitive.NilObjectID, false
	}
	return id, true
}

// HandleTurn handles POST /api/v1/chat/turn.
func (h *ChatHandler) HandleTurn(c *gin.Context) {
	userID, ok := currentUserObjectID(c)
	if !ok {
		return
	}

	var req ChatTurnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	output, err := h.assistantService.HandleTurn(c.Request.Context(), userID, req.Message)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			abortWithError(c, http.StatusNotFound, "User not found")
		case errors.Is(err, service.ErrUserNotClient):
			abortWithError(c, http.StatusForbidden, "Only clients can chat with the assistant")
		case errors.Is(err, service.ErrNoTrainerAssigned):
			abortWithError(c, http.StatusConflict, "No trainer assigned; the assistant needs trainer material to work with")
		case errors.Is(err, service.ErrBackendFailed):
			abortWithError(c, http.StatusBadGateway, "Assistant is temporarily unavailable, try again shortly")
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to process chat turn")
		}
		return
	}

	c.JSON(http.StatusOK, output)
}
