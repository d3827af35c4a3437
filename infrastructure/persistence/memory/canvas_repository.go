// Package memory provides in-process repository implementations. The editing
// surface is single-user and session-scoped, so canvases live in a map
// guarded by a read-write mutex; durable persistence is an external concern.
package memory

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"pagecraft-backend/domain/config"
	"pagecraft-backend/domain/core/aggregates"
	pkgerrors "pagecraft-backend/pkg/errors"
)

// CanvasRepository stores canvases keyed by owner
type CanvasRepository struct {
	mu     sync.RWMutex
	byUser map[string]*aggregates.Canvas
	byID   map[string]*aggregates.Canvas
	cfg    *config.DomainConfig
	logger *zap.Logger
}

// NewCanvasRepository creates an empty in-memory canvas repository
func NewCanvasRepository(cfg *config.DomainConfig, logger *zap.Logger) *CanvasRepository {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	return &CanvasRepository{
		byUser: make(map[string]*aggregates.Canvas),
		byID:   make(map[string]*aggregates.Canvas),
		cfg:    cfg,
		logger: logger,
	}
}

// GetByID retrieves a canvas by its identifier
func (r *CanvasRepository) GetByID(ctx context.Context, id aggregates.CanvasID) (*aggregates.Canvas, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	canvas, ok := r.byID[id.String()]
	if !ok {
		return nil, pkgerrors.NewNotFoundError("canvas " + id.String())
	}
	return canvas, nil
}

// GetOrCreateDefault returns the user's canvas, creating it with the
// implicit first page on first access
func (r *CanvasRepository) GetOrCreateDefault(ctx context.Context, userID string) (*aggregates.Canvas, error) {
	if userID == "" {
		return nil, pkgerrors.NewValidationError("userID is required")
	}

	r.mu.RLock()
	canvas, ok := r.byUser[userID]
	r.mu.RUnlock()
	if ok {
		return canvas, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if canvas, ok := r.byUser[userID]; ok {
		return canvas, nil
	}

	canvas, err := aggregates.NewCanvasWithConfig(userID, "My Canvas", r.cfg)
	if err != nil {
		return nil, err
	}
	r.byUser[userID] = canvas
	r.byID[canvas.ID().String()] = canvas

	r.logger.Info("Canvas created",
		zap.String("canvasID", canvas.ID().String()),
		zap.String("userID", userID),
	)
	return canvas, nil
}

// Save persists the canvas. The store hands out live aggregate pointers, so
// saving is an index refresh plus a hook for future durable backends.
func (r *CanvasRepository) Save(ctx context.Context, canvas *aggregates.Canvas) error {
	if canvas == nil {
		return pkgerrors.NewValidationError("canvas cannot be nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.byUser[canvas.UserID()] = canvas
	r.byID[canvas.ID().String()] = canvas
	return nil
}
