package rpgtoolkit

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/KirkDiggler/encounter-api/internal/entities"
)

func TestParticipantEntity(t *testing.T) {
	participant := &entities.Participant{
		ID:   "part-123",
		Name: "Test Fighter",
	}

	entity := WrapParticipant(participant)

	assert.Equal(t, "part-123", entity.GetID())
	assert.Equal(t, "participant", entity.GetType())
	assert.Equal(t, participant, entity.Participant)
}

func TestEncounterEntity(t *testing.T) {
	encounter := &entities.Encounter{
		ID:    "enc-456",
		Round: 1,
	}

	entity := WrapEncounter(encounter)

	assert.Equal(t, "enc-456", entity.GetID())
	assert.Equal(t, "encounter", entity.GetType())
	assert.Equal(t, encounter, entity.Encounter)
}

func TestEntityWrappers(t *testing.T) {
	t.Run("ParticipantEntity wrapping", func(t *testing.T) {
		participant := &entities.Participant{
			ID:    "test-part",
			Name:  "Borin",
			Side:  entities.SideAlly,
			Level: 5,
			AbilityScores: entities.AbilityScores{
				Strength:     16,
				Dexterity:    13,
				Constitution: 14,
				Intelligence: 10,
				Wisdom:       12,
				Charisma:     8,
			},
		}

		wrapped := &ParticipantEntity{Participant: participant}

		// Test that wrapper maintains access to original data
		assert.Equal(t, "test-part", wrapped.GetID())
		assert.Equal(t, "participant", wrapped.GetType())
		assert.Equal(t, "Borin", wrapped.Name)
		assert.Equal(t, entities.SideAlly, wrapped.Side)
		assert.Equal(t, int32(5), wrapped.Level)
		assert.Equal(t, int32(16), wrapped.AbilityScores.Strength)
	})

	t.Run("EncounterEntity wrapping", func(t *testing.T) {
		encounter := &entities.Encounter{
			ID:     "test-enc",
			Round:  2,
			Phase:  entities.PhaseTurnActive,
			Status: entities.StatusActive,
		}

		wrapped := &EncounterEntity{Encounter: encounter}

		// Test that wrapper maintains access to original data
		assert.Equal(t, "test-enc", wrapped.GetID())
		assert.Equal(t, "encounter", wrapped.GetType())
		assert.Equal(t, int32(2), wrapped.Round)
		assert.Equal(t, entities.PhaseTurnActive, wrapped.Phase)
		assert.Equal(t, entities.StatusActive, wrapped.Status)
	})
}
