package services

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"pagecraft-backend/domain/core/aggregates"
	"pagecraft-backend/domain/events"
)

// fakeCanvasRepo holds live aggregates in memory, one per user
type fakeCanvasRepo struct {
	mu       sync.Mutex
	byUser   map[string]*aggregates.Canvas
	saves    int
	saveErr  error
	fetchErr error
}

func newFakeCanvasRepo() *fakeCanvasRepo {
	return &fakeCanvasRepo{byUser: make(map[string]*aggregates.Canvas)}
}

func (r *fakeCanvasRepo) GetByID(ctx context.Context, id aggregates.CanvasID) (*aggregates.Canvas, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, canvas := range r.byUser {
		if canvas.ID() == id {
			return canvas, nil
		}
	}
	return nil, context.Canceled
}

func (r *fakeCanvasRepo) GetOrCreateDefault(ctx context.Context, userID string) (*aggregates.Canvas, error) {
	if r.fetchErr != nil {
		return nil, r.fetchErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if canvas, ok := r.byUser[userID]; ok {
		return canvas, nil
	}
	canvas, err := aggregates.NewCanvas(userID, "Test Canvas")
	if err != nil {
		return nil, err
	}
	canvas.MarkEventsAsCommitted()
	r.byUser[userID] = canvas
	return canvas, nil
}

func (r *fakeCanvasRepo) Save(ctx context.Context, canvas *aggregates.Canvas) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saves++
	r.byUser[canvas.UserID()] = canvas
	return nil
}

// mustCanvas returns the user's canvas, creating it through the same path
// the services use
func mustCanvas(t *testing.T, repo *fakeCanvasRepo, userID string) *aggregates.Canvas {
	t.Helper()
	canvas, err := repo.GetOrCreateDefault(context.Background(), userID)
	require.NoError(t, err)
	return canvas
}

// fakeEventBus records everything published
type fakeEventBus struct {
	mu        sync.Mutex
	published []events.DomainEvent
}

func (b *fakeEventBus) Publish(ctx context.Context, event events.DomainEvent) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.published = append(b.published, event)
	return nil
}

func (b *fakeEventBus) PublishBatch(ctx context.Context, batch []events.DomainEvent) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.published = append(b.published, batch...)
	return nil
}

func (b *fakeEventBus) count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.published)
}
