// Package encounters persists encounter snapshots: the full combat graph of
// participants, turn order, pending action, and pending opportunities.
package encounters

//go:generate mockgen -destination=mock/mock_repository.go -package=encountermock github.com/KirkDiggler/encounter-api/internal/repositories/encounters Repository

import (
	"context"

	"github.com/KirkDiggler/encounter-api/internal/entities"
)

// Repository defines the storage interface for encounters. Implementations
// store and return deep copies, so a loaded snapshot never aliases stored
// state.
type Repository interface {
	// Save stores a new encounter
	Save(ctx context.Context, input *SaveInput) (*SaveOutput, error)

	// Get retrieves an encounter by ID
	Get(ctx context.Context, input *GetInput) (*GetOutput, error)

	// Update replaces an existing encounter's snapshot
	Update(ctx context.Context, input *UpdateInput) (*UpdateOutput, error)

	// Delete removes an encounter
	Delete(ctx context.Context, input *DeleteInput) (*DeleteOutput, error)
}

// SaveInput defines the request for saving a new encounter
type SaveInput struct {
	Encounter *entities.Encounter
}

// SaveOutput defines the response for saving a new encounter
type SaveOutput struct {
	Encounter *entities.Encounter
}

// GetInput defines the request for retrieving an encounter
type GetInput struct {
	EncounterID string
}

// GetOutput defines the response for retrieving an encounter
type GetOutput struct {
	Encounter *entities.Encounter
}

// UpdateInput defines the request for replacing an encounter snapshot
type UpdateInput struct {
	Encounter *entities.Encounter
}

// UpdateOutput defines the response for replacing an encounter snapshot
type UpdateOutput struct {
	Encounter *entities.Encounter
}

// DeleteInput defines the request for deleting an encounter
type DeleteInput struct {
	EncounterID string
}

// DeleteOutput defines the response for deleting an encounter
type DeleteOutput struct{}
