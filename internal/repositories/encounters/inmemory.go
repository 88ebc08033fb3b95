package encounters

import (
	"context"
	"sync"

	"github.com/KirkDiggler/encounter-api/internal/entities"
	"github.com/KirkDiggler/encounter-api/internal/errors"
)

// InMemoryRepository implements Repository using in-memory storage
type InMemoryRepository struct {
	mu    sync.RWMutex
	store map[string]*entities.Encounter
}

// NewInMemory creates a new in-memory repository
func NewInMemory() *InMemoryRepository {
	return &InMemoryRepository{
		store: make(map[string]*entities.Encounter),
	}
}

// Ensure InMemoryRepository implements Repository
var _ Repository = (*InMemoryRepository)(nil)

// Save stores a new encounter
func (r *InMemoryRepository) Save(ctx context.Context, input *SaveInput) (*SaveOutput, error) {
	if input == nil || input.Encounter == nil {
		return nil, errors.InvalidArgument("encounter is required")
	}
	if input.Encounter.ID == "" {
		return nil, errors.InvalidArgument("encounter ID is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.store[input.Encounter.ID]; exists {
		return nil, errors.AlreadyExistsf("encounter with ID %s already exists", input.Encounter.ID)
	}

	// Store a copy so later caller mutations never leak in
	r.store[input.Encounter.ID] = input.Encounter.Clone()

	return &SaveOutput{Encounter: input.Encounter}, nil
}

// Get retrieves an encounter by ID
func (r *InMemoryRepository) Get(ctx context.Context, input *GetInput) (*GetOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if input.EncounterID == "" {
		return nil, errors.InvalidArgument("encounter ID is required")
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	stored, exists := r.store[input.EncounterID]
	if !exists {
		return nil, errors.NotFoundf("encounter with ID %s not found", input.EncounterID)
	}

	// Return a copy to prevent external modification
	return &GetOutput{Encounter: stored.Clone()}, nil
}

// Update replaces an existing encounter's snapshot
func (r *InMemoryRepository) Update(ctx context.Context, input *UpdateInput) (*UpdateOutput, error) {
	if input == nil || input.Encounter == nil {
		return nil, errors.InvalidArgument("encounter is required")
	}
	if input.Encounter.ID == "" {
		return nil, errors.InvalidArgument("encounter ID is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.store[input.Encounter.ID]; !exists {
		return nil, errors.NotFoundf("encounter with ID %s not found", input.Encounter.ID)
	}

	r.store[input.Encounter.ID] = input.Encounter.Clone()

	return &UpdateOutput{Encounter: input.Encounter}, nil
}

// Delete removes an encounter
func (r *InMemoryRepository) Delete(ctx context.Context, input *DeleteInput) (*DeleteOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if input.EncounterID == "" {
		return nil, errors.InvalidArgument("encounter ID is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.store[input.EncounterID]; !exists {
		return nil, errors.NotFoundf("encounter with ID %s not found", input.EncounterID)
	}

	delete(r.store, input.EncounterID)

	return &DeleteOutput{}, nil
}
