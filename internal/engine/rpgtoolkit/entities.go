package rpgtoolkit

import (
	"github.com/KirkDiggler/rpg-toolkit/core"

	"github.com/KirkDiggler/encounter-api/internal/entities"
)

// ParticipantEntity wraps entities.Participant to implement core.Entity interface
type ParticipantEntity struct {
	*entities.Participant
}

// GetID returns the participant's ID
func (p *ParticipantEntity) GetID() string {
	return p.ID
}

// GetType returns the entity type for rpg-toolkit
func (p *ParticipantEntity) GetType() string {
	return "participant"
}

// EncounterEntity wraps entities.Encounter to implement core.Entity interface
type EncounterEntity struct {
	*entities.Encounter
}

// GetID returns the encounter's ID
func (e *EncounterEntity) GetID() string {
	return e.ID
}

// GetType returns the entity type for rpg-toolkit
func (e *EncounterEntity) GetType() string {
	return "encounter"
}

// Compile-time check that our entity wrappers implement core.Entity
var (
	_ core.Entity = (*ParticipantEntity)(nil)
	_ core.Entity = (*EncounterEntity)(nil)
)

// WrapParticipant converts an entities.Participant to a ParticipantEntity
func WrapParticipant(participant *entities.Participant) *ParticipantEntity {
	return &ParticipantEntity{Participant: participant}
}

// WrapEncounter converts an entities.Encounter to an EncounterEntity
func WrapEncounter(encounter *entities.Encounter) *EncounterEntity {
	return &EncounterEntity{Encounter: encounter}
}
