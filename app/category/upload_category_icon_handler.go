package category

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"goldshop/domain"
	"goldshop/pkg/events"
	"goldshop/pkg/httperror"
)

// MaxIconSize is the largest accepted icon upload in bytes.
const MaxIconSize = 1024 * 1024

var iconExtensions = map[string]string{
	"image/png":     ".png",
	"image/jpeg":    ".jpg",
	"image/jpg":     ".jpg",
	"image/svg+xml": ".svg",
	"image/webp":    ".webp",
}

type UploadCategoryIconHandler struct {
	repository     Repository
	icons          IconStore
	eventPublisher events.Publisher
}

func NewUploadCategoryIconHandler(repository Repository, icons IconStore, eventPublisher events.Publisher) *UploadCategoryIconHandler {
	return &UploadCategoryIconHandler{
		repository:     repository,
		icons:          icons,
		eventPublisher: eventPublisher,
	}
}

// UploadCategoryIconRequest is filled from the multipart "icon" field.
type UploadCategoryIconRequest struct {
	ID          string `params:"id"`
	Filename    string `json:"-"`
	ContentType string `json:"-"`
	Data        []byte `json:"-"`
}

type UploadCategoryIconResponse struct {
	ID      string `json:"id"`
	IconURL string `json:"icon_url"`
}

func (h *UploadCategoryIconHandler) Handle(ctx context.Context, req *UploadCategoryIconRequest) (*UploadCategoryIconResponse, error) {
	if len(req.Data) == 0 {
		return nil, httperror.BadRequest("category.icon.missing_file", "Icon file is required (use 'icon' field)", nil)
	}
	if len(req.Data) > MaxIconSize {
		return nil, httperror.BadRequest("category.icon.file_too_large", "Icon must not exceed 1MB",
			map[string]any{
				"size_kb": len(req.Data) / 1024,
				"max_kb":  MaxIconSize / 1024,
			})
	}
	extension, ok := iconExtensions[req.ContentType]
	if !ok {
		return nil, httperror.BadRequest("category.icon.invalid_content_type", "Only PNG, JPEG, SVG and WebP icons are allowed",
			map[string]any{"received": req.ContentType})
	}

	if _, err := h.repository.GetCategory(ctx, req.ID); err != nil {
		if errors.Is(err, domain.ErrCategoryNotFound) {
			return nil, httperror.NotFound(domain.CodeCategoryNotFound, "Category not found", nil)
		}
		return nil, httperror.InternalServerError("category.icon.failed", "Failed to get category", nil)
	}

	key := fmt.Sprintf("categories/%s/%s%s", req.ID, uuid.New().String(), extension)
	if err := h.icons.Upload(key, req.Data); err != nil {
		zap.L().Error("Failed to upload category icon", zap.String("key", key), zap.Error(err))
		return nil, httperror.InternalServerError("category.icon.upload_failed", "Failed to upload icon to storage", nil)
	}

	iconURL := h.icons.URL(key)
	if _, err := h.repository.UpdateCategories(ctx, []string{req.ID}, domain.CategoryChanges{Icon: &iconURL}); err != nil {
		_ = h.icons.Delete(key)
		zap.L().Error("Failed to store category icon", zap.String("id", req.ID), zap.Error(err))
		return nil, httperror.InternalServerError("category.icon.store_failed", "Failed to save icon", nil)
	}

	publish(ctx, h.eventPublisher, events.CategoryUpdatedEvent, events.CategoryUpdatedPayload{
		IDs:       []string{req.ID},
		Fields:    []string{"icon"},
		UpdatedBy: actor(ctx),
		UpdatedAt: time.Now().UTC(),
	})

	return &UploadCategoryIconResponse{
		ID:      req.ID,
		IconURL: iconURL,
	}, nil
}
