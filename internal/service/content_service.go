package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"path"
	"strings"

	"alcyxob/coach-assistant/internal/domain"
	"alcyxob/coach-assistant/internal/repository"
	"alcyxob/coach-assistant/internal/storage"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrContentNotFound = errors.New("content item not found")
	ErrContentInvalid  = errors.New("content item is invalid")
)

// IngestContentInput is what a trainer submits to add an item to their
// library. SourceKey is set when the raw file was uploaded to object storage
// first; RawContent carries the extracted text either way.
type IngestContentInput struct {
	ContentType     domain.ContentType `json:"contentType"`
	Title           string             `json:"title"`
	RawContent      string             `json:"rawContent"`
	SourceKey       string             `json:"sourceKey,omitempty"`
	StructuredData  map[string]any     `json:"structuredData,omitempty"`
	Tags            []string           `json:"tags,omitempty"`
	TargetGoals     []string           `json:"targetGoals,omitempty"`
	IntensityLevel  int                `json:"intensityLevel,omitempty"`
	ExperienceLevel string             `json:"experienceLevel,omitempty"`
}

// --- Service Interface ---
type ContentService interface {
	// GenerateUploadURL hands the trainer a presigned PUT URL for the raw
	// source file. The returned object key goes into IngestContentInput.
	GenerateUploadURL(ctx context.Context, trainerID primitive.ObjectID, fileName, contentType string) (uploadURL, objectKey string, err error)

	IngestContent(ctx context.Context, trainerID primitive.ObjectID, input IngestContentInput) (*domain.TrainerContentItem, error)
	ListContent(ctx context.Context, trainerID primitive.ObjectID) ([]domain.TrainerContentItem, error)
	DeleteContent(ctx context.Context, trainerID primitive.ObjectID, contentID string) error

	// GetDownloadURL returns a presigned GET URL for an item's source file.
	GetDownloadURL(ctx context.Context, trainerID primitive.ObjectID, contentID string) (string, error)
}

// --- Service Implementation ---

type contentService struct {
	contentRepo repository.ContentRepository
	fileStorage storage.FileStorage
}

// NewContentService creates the trainer content library service.
func NewContentService(contentRepo repository.ContentRepository, fileStorage storage.FileStorage) ContentService {
	return &contentService{
		contentRepo: contentRepo,
		fileStorage: fileStorage,
	}
}

// GenerateUploadURL builds a namespaced object key and presigns a PUT for it.
func (s *contentService) GenerateUploadURL(ctx context.Context, trainerID primitive.ObjectID, fileName, contentType string) (string, string, error) {
	if trainerID == primitive.NilObjectID || fileName == "" {
		return "", "", ErrContentInvalid
	}

	ext := path.Ext(fileName)
	objectKey := fmt.Sprintf("trainer-content/%s/%s%s", trainerID.Hex(), uuid.NewString(), ext)

	uploadURL, err := s.fileStorage.GeneratePresignedUploadURL(ctx, objectKey, contentType, storage.DefaultPresignedURLExpiry)
	if err != nil {
		return "", "", err
	}
	return uploadURL, objectKey, nil
}

// IngestContent validates and stores one library item.
func (s *contentService) IngestContent(ctx context.Context, trainerID primitive.ObjectID, input IngestContentInput) (*domain.TrainerContentItem, error) {
	if trainerID == primitive.NilObjectID {
		return nil, ErrContentInvalid
	}
	if strings.TrimSpace(input.Title) == "" || strings.TrimSpace(input.RawContent) == "" {
		return nil, ErrContentInvalid
	}
	switch input.ContentType {
	case domain.ContentTypeWorkout, domain.ContentTypeDiet, domain.ContentTypeDocument:
	default:
		return nil, ErrContentInvalid
	}
	if input.IntensityLevel < 0 || input.IntensityLevel > 10 {
		return nil, ErrContentInvalid
	}

	item := &domain.TrainerContentItem{
		ID:              uuid.NewString(),
		TrainerID:       trainerID,
		ContentType:     input.ContentType,
		SourceKey:       input.SourceKey,
		Title:           strings.TrimSpace(input.Title),
		RawContent:      input.RawContent,
		StructuredData:  input.StructuredData,
		Tags:            input.Tags,
		TargetGoals:     input.TargetGoals,
		IntensityLevel:  input.IntensityLevel,
		ExperienceLevel: input.ExperienceLevel,
		IsActive:        true,
	}

	if err := s.contentRepo.Insert(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// ListContent returns the trainer's active library items.
func (s *contentService) ListContent(ctx context.Context, trainerID primitive.ObjectID) ([]domain.TrainerContentItem, error) {
	if trainerID == primitive.NilObjectID {
		return nil, ErrContentInvalid
	}
	return s.contentRepo.GetActiveByTrainer(ctx, trainerID)
}

// DeleteContent removes an item the trainer owns, plus its source file.
func (s *contentService) DeleteContent(ctx context.Context, trainerID primitive.ObjectID, contentID string) error {
	item, err := s.contentRepo.GetByID(ctx, contentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrContentNotFound
		}
		return err
	}
	// Ownership is enforced again in the repository's delete filter; the
	// lookup here exists to fetch the source key.
	if item.TrainerID != trainerID {
		return ErrContentNotFound
	}

	if err := s.contentRepo.Delete(ctx, contentID, trainerID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrContentNotFound
		}
		return err
	}

	if item.SourceKey != "" {
		if err := s.fileStorage.DeleteObject(ctx, item.SourceKey); err != nil {
			// The library row is gone; an orphaned object is a cleanup
			// problem, not a caller problem.
			log.Printf("WARN: Failed to delete source object %s: %v", item.SourceKey, err)
		}
	}
	return nil
}

// GetDownloadURL presigns a GET for an item's source file.
func (s *contentService) GetDownloadURL(ctx context.Context, trainerID primitive.ObjectID, contentID string) (string, error) {
	item, err := s.contentRepo.GetByID(ctx, contentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrContentNotFound
		}
		return "", err
	}
	if item.TrainerID != trainerID {
		return "", ErrContentNotFound
	}
	if item.SourceKey == "" {
		return "", ErrContentNotFound
	}
	return s.fileStorage.GeneratePresignedDownloadURL(ctx, item.SourceKey, storage.DefaultPresignedURLExpiry)
}
