package testutils

import (
	"github.com/KirkDiggler/encounter-api/internal/entities"
)

// TestEncounterID is the default encounter ID for test fixtures
const TestEncounterID = "enc-test-001"

// CreateTestFighter creates an ally-side sword-and-board fighter
func CreateTestFighter(id string) *entities.Participant {
	return &entities.Participant{
		ID:    id,
		Name:  "Fighter",
		Side:  entities.SideAlly,
		Level: 3,
		AbilityScores: entities.AbilityScores{
			Strength:     16,
			Dexterity:    13,
			Constitution: 14,
			Intelligence: 10,
			Wisdom:       12,
			Charisma:     8,
		},
		CurrentHP:          28,
		MaxHP:              28,
		ArmorClass:         17,
		Speed:              entities.Speed{Walk: 30},
		Position:           entities.ZoneMelee,
		ReactionsRemaining: 1,
	}
}

// CreateTestGoblin creates an enemy-side goblin skirmisher
func CreateTestGoblin(id string) *entities.Participant {
	return &entities.Participant{
		ID:    id,
		Name:  "Goblin",
		Side:  entities.SideEnemy,
		Level: 1,
		AbilityScores: entities.AbilityScores{
			Strength:     8,
			Dexterity:    14,
			Constitution: 10,
			Intelligence: 10,
			Wisdom:       8,
			Charisma:     8,
		},
		CurrentHP:          10,
		MaxHP:              10,
		ArmorClass:         13,
		Speed:              entities.Speed{Walk: 30},
		Position:           entities.ZoneMelee,
		ReactionsRemaining: 1,
	}
}

// CreateTestWizard creates an ally-side wizard with shield and counterspell ready
func CreateTestWizard(id string) *entities.Participant {
	return &entities.Participant{
		ID:    id,
		Name:  "Wizard",
		Side:  entities.SideAlly,
		Level: 5,
		AbilityScores: entities.AbilityScores{
			Strength:     8,
			Dexterity:    14,
			Constitution: 13,
			Intelligence: 16,
			Wisdom:       12,
			Charisma:     10,
		},
		CurrentHP:  22,
		MaxHP:      22,
		ArmorClass: 12,
		Speed:      entities.Speed{Walk: 30},
		Position:   entities.ZoneRanged,
		SpellSlots: map[int32]*entities.SpellSlot{
			1: {Current: 4, Max: 4},
			2: {Current: 3, Max: 3},
			3: {Current: 2, Max: 2},
		},
		PreparedSpells:     []string{entities.SpellShield, entities.SpellCounterspell},
		ReactionsRemaining: 1,
	}
}

// CreateTestEncounter creates an active two-sided encounter in the
// turn-active phase with the fighter up first.
func CreateTestEncounter(participants ...*entities.Participant) *entities.Encounter {
	if len(participants) == 0 {
		participants = []*entities.Participant{
			CreateTestFighter("fighter-1"),
			CreateTestGoblin("goblin-1"),
		}
	}

	enc := &entities.Encounter{
		ID:           TestEncounterID,
		Round:        1,
		Status:       entities.StatusActive,
		Phase:        entities.PhaseTurnActive,
		Participants: participants,
	}
	for _, p := range participants {
		enc.TurnOrder = append(enc.TurnOrder, p.ID)
	}
	return enc
}
