package server

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/erdraw/erdraw/pkg/er"
	"github.com/erdraw/erdraw/pkg/errors"
)

// Diagram is one saved diagram document: the source it was derived from,
// the derived model, and the styling the user applied.
type Diagram struct {
	ID        string                        `json:"id" bson:"_id"`
	Title     string                        `json:"title" bson:"title"`
	Source    string                        `json:"source,omitempty" bson:"source,omitempty"`
	Format    string                        `json:"format,omitempty" bson:"format,omitempty"`
	Model     er.Model                      `json:"model" bson:"model"`
	Style     er.StyleParams                `json:"style,omitempty" bson:"style,omitempty"`
	Overrides map[string]er.NodeStyleParams `json:"overrides,omitempty" bson:"overrides,omitempty"`
	CreatedAt time.Time                     `json:"createdAt" bson:"created_at"`
	UpdatedAt time.Time                     `json:"updatedAt" bson:"updated_at"`
}

// DiagramSummary is the listing view of a stored diagram.
type DiagramSummary struct {
	ID        string    `json:"id" bson:"_id"`
	Title     string    `json:"title" bson:"title"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updated_at"`
}

// Store is the interface for diagram persistence backends.
type Store interface {
	// Put inserts or replaces a diagram. A missing ID is minted here, and
	// timestamps are maintained by the store.
	Put(ctx context.Context, d *Diagram) error

	// Get retrieves a diagram by id. Returns ErrCodeNotFound if absent.
	Get(ctx context.Context, id string) (*Diagram, error)

	// List returns summaries of all diagrams, most recently updated first.
	List(ctx context.Context) ([]DiagramSummary, error)

	// Delete removes a diagram. Deleting an absent id is not an error.
	Delete(ctx context.Context, id string) error

	// Close releases backend resources.
	Close(ctx context.Context) error
}

// MemoryStore is an in-process Store for development and tests.
type MemoryStore struct {
	mu       sync.RWMutex
	diagrams map[string]Diagram
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{diagrams: make(map[string]Diagram)}
}

// Put inserts or replaces a diagram.
func (s *MemoryStore) Put(ctx context.Context, d *Diagram) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	if d.ID == "" {
		d.ID = uuid.NewString()
		d.CreatedAt = now
	} else if existing, ok := s.diagrams[d.ID]; ok {
		d.CreatedAt = existing.CreatedAt
	} else if d.CreatedAt.IsZero() {
		d.CreatedAt = now
	}
	d.UpdatedAt = now

	s.diagrams[d.ID] = *d
	return nil
}

// Get retrieves a diagram by id.
func (s *MemoryStore) Get(ctx context.Context, id string) (*Diagram, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, ok := s.diagrams[id]
	if !ok {
		return nil, errors.New(errors.ErrCodeNotFound, "diagram %s not found", id)
	}
	return &d, nil
}

// List returns summaries sorted by recency.
func (s *MemoryStore) List(ctx context.Context) ([]DiagramSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	summaries := make([]DiagramSummary, 0, len(s.diagrams))
	for _, d := range s.diagrams {
		summaries = append(summaries, DiagramSummary{
			ID:        d.ID,
			Title:     d.Title,
			UpdatedAt: d.UpdatedAt,
		})
	}
	sort.Slice(summaries, func(i, j int) bool {
		if !summaries[i].UpdatedAt.Equal(summaries[j].UpdatedAt) {
			return summaries[i].UpdatedAt.After(summaries[j].UpdatedAt)
		}
		return summaries[i].ID < summaries[j].ID
	})
	return summaries, nil
}

// Delete removes a diagram.
func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.diagrams, id)
	return nil
}

// Close does nothing for the memory store.
func (s *MemoryStore) Close(ctx context.Context) error {
	return nil
}

// Ensure MemoryStore implements Store.
var _ Store = (*MemoryStore)(nil)
