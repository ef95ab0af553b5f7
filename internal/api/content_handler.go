package api

import (
	"errors"
	"net/http"
	"time"

	"alcyxob/coach-assistant/internal/domain"
	"alcyxob/coach-assistant/internal/service"

	"github.com/gin-gonic/gin"
)

// ContentHandler holds the content service dependency.
type ContentHandler struct {
	contentService service.ContentService
}

// NewContentHandler creates a new ContentHandler.
func NewContentHandler(contentService service.ContentService) *ContentHandler {
	return &ContentHandler{contentService: contentService}
}

// --- DTOs ---

// UploadURLRequest defines the expected JSON for requesting an upload URL.
type UploadURLRequest struct {
	FileName    string `json:"fileName" binding:"required"`
	ContentType string `json:"contentType" binding:"required"`
}

// UploadURLResponse returns the presigned URL plus the key to reference in
// the ingest call.
type UploadURLResponse struct {
	UploadURL string `json:"uploadUrl"`
	ObjectKey string `json:"objectKey"`
}

// IngestContentRequest defines the expected JSON for adding a library item.
type IngestContentRequest struct {
	ContentType     string         `json:"contentType" binding:"required"`
	Title           string         `json:"title" binding:"required"`
	RawContent      string         `json:"rawContent" binding:"required"`
	SourceKey       string         `json:"sourceKey"`
	StructuredData  map[string]any `json:"structuredData"`
	Tags            []string       `json:"tags"`
	TargetGoals     []string       `json:"targetGoals"`
	IntensityLevel  int            `json:"intensityLevel" binding:"omitempty,min=1,max=10"`
	ExperienceLevel string         `json:"experienceLevel"`
}

// ContentItemResponse is the DTO for returning library item details.
type ContentItemResponse struct {
	ID              string    `json:"id"`
	ContentType     string    `json:"contentType"`
	Title           string    `json:"title"`
	SourceKey       string    `json:"sourceKey,omitempty"`
	Tags            []string  `json:"tags,omitempty"`
	TargetGoals     []string  `json:"targetGoals,omitempty"`
	IntensityLevel  int       `json:"intensityLevel,omitempty"`
	ExperienceLevel string    `json:"experienceLevel,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// MapContentItemToResponse converts a domain.TrainerContentItem to its DTO.
func MapContentItemToResponse(item *domain.TrainerContentItem) ContentItemResponse {
	if item == nil {
		return ContentItemResponse{}
	}
	return ContentItemResponse{
		ID:              item.ID,
		ContentType:     string(item.ContentType),
		Title:           item.Title,
		SourceKey:       item.SourceKey,
		Tags:            item.Tags,
		TargetGoals:     item.TargetGoals,
		IntensityLevel:  item.IntensityLevel,
		ExperienceLevel: item.ExperienceLevel,
		CreatedAt:       item.CreatedAt,
		UpdatedAt:       item.UpdatedAt,
	}
}

// GenerateUploadURL handles POST /api/v1/trainer/content/upload-url.
func (h *ContentHandler) GenerateUploadURL(c *gin.Context) {
	trainerID, ok := currentUserObjectID(c)
	if !ok {
		return
	}

	var req UploadURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	uploadURL, objectKey, err := h.contentService.GenerateUploadURL(c.Request.Context(), trainerID, req.FileName, req.ContentType)
	if err != nil {
		if errors.Is(err, service.ErrContentInvalid) {
			abortWithError(c, http.StatusBadRequest, "Invalid upload request")
			return
		}
		abortWithError(c, http.StatusInternalServerError, "Failed to generate upload URL")
		return
	}

	c.JSON(http.StatusOK, UploadURLResponse{UploadURL: uploadURL, ObjectKey: objectKey})
}

// IngestContent handles POST /api/v1/trainer/content.
func (h *ContentHandler) IngestContent(c *gin.Context) {
	trainerID, ok := currentUserObjectID(c)
	if !ok {
		return
	}

	var req IngestContentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	item, err := h.contentService.IngestContent(c.Request.Context(), trainerID, service.IngestContentInput{
		ContentType:     domain.ContentType(req.ContentType),
		Title:           req.Title,
		RawContent:      req.RawContent,
		SourceKey:       req.SourceKey,
		StructuredData:  req.StructuredData,
		Tags:            req.Tags,
		TargetGoals:     req.TargetGoals,
		IntensityLevel:  req.IntensityLevel,
		ExperienceLevel: req.ExperienceLevel,
	})
	if err != nil {
		if errors.Is(err, service.ErrContentInvalid) {
			abortWithError(c, http.StatusBadRequest, "Invalid content item")
			return
		}
		abortWithError(c, http.StatusInternalServerError, "Failed to store content item")
		return
	}

	c.JSON(http.StatusCreated, MapContentItemToResponse(item))
}

// ListContent handles GET /api/v1/trainer/content.
func (h *ContentHandler) ListContent(c *gin.Context) {
	trainerID, ok := currentUserObjectID(c)
	if !ok {
		return
	}

	items, err := h.contentService.ListContent(c.Request.Context(), trainerID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to list content")
		return
	}

	responses := make([]ContentItemResponse, len(items))
	for i := range items {
		responses[i] = MapContentItemToResponse(&items[i])
	}
	c.JSON(http.StatusOK, responses)
}

// DeleteContent handles DELETE /api/v1/trainer/content/:contentId.
func (h *ContentHandler) DeleteContent(c *gin.Context) {
	trainerID, ok := currentUserObjectID(c)
	if !ok {
		return
	}

	contentID := c.Param("contentId")
	if contentID == "" {
		abortWithError(c, http.StatusBadRequest, "Content ID is required")
		return
	}

	err := h.contentService.DeleteContent(c.Request.Context(), trainerID, contentID)
	if err != nil {
		if errors.Is(err, service.ErrContentNotFound) {
			abortWithError(c, http.StatusNotFound, "Content item not found")
			return
		}
		abortWithError(c, http.StatusInternalServerError, "Failed to delete content item")
		return
	}

	c.Status(http.StatusNoContent)
}

// GetDownloadURL handles GET /api/v1/trainer/content/:contentId/download-url.
func (h *ContentHandler) GetDownloadURL(c *gin.Context) {
	trainerID, ok := currentUserObjectID(c)
	if !ok {
		return
	}

	contentID := c.Param("contentId")
	downloadURL, err := h.contentService.GetDownloadURL(c.Request.Context(), trainerID, contentID)
	if err != nil {
		if errors.Is(err, service.ErrContentNotFound) {
			abortWithError(c, http.StatusNotFound, "Content item or source file not found")
			return
		}
		abortWithError(c, http.StatusInternalServerError, "Failed to generate download URL")
		return
	}

	c.JSON(http.StatusOK, gin.H{"downloadUrl": downloadURL})
}
