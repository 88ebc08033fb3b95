// Package builders provides test data builders for creating test fixtures
package builders

import (
	"github.com/KirkDiggler/encounter-api/internal/entities"
)

// ParticipantBuilder provides a fluent interface for building test Participant instances
type ParticipantBuilder struct {
	participant *entities.Participant
}

// NewParticipantBuilder creates a new builder with minimal defaults
func NewParticipantBuilder() *ParticipantBuilder {
	return &ParticipantBuilder{
		participant: &entities.Participant{
			ID:    "participant-test-123",
			Name:  "Test Participant",
			Side:  entities.SideAlly,
			Level: 1,
			AbilityScores: entities.AbilityScores{
				Strength:     10,
				Dexterity:    10,
				Constitution: 10,
				Intelligence: 10,
				Wisdom:       10,
				Charisma:     10,
			},
			CurrentHP:          10,
			MaxHP:              10,
			ArmorClass:         13,
			Speed:              entities.Speed{Walk: 30},
			Position:           entities.ZoneMelee,
			ReactionsRemaining: 1,
		},
	}
}

// WithID sets the participant ID
func (b *ParticipantBuilder) WithID(id string) *ParticipantBuilder {
	b.participant.ID = id
	return b
}

// WithName sets the display name
func (b *ParticipantBuilder) WithName(name string) *ParticipantBuilder {
	b.participant.Name = name
	return b
}

// WithSide sets the participant's side
func (b *ParticipantBuilder) WithSide(side entities.Side) *ParticipantBuilder {
	b.participant.Side = side
	return b
}

// WithLevel sets the level
func (b *ParticipantBuilder) WithLevel(level int32) *ParticipantBuilder {
	b.participant.Level = level
	return b
}

// WithHP sets current and max hit points together
func (b *ParticipantBuilder) WithHP(current, maxHP int32) *ParticipantBuilder {
	b.participant.CurrentHP = current
	b.participant.MaxHP = maxHP
	return b
}

// WithTempHP sets temporary hit points
func (b *ParticipantBuilder) WithTempHP(temp int32) *ParticipantBuilder {
	b.participant.TempHP = temp
	return b
}

// WithArmorClass sets the armor class
func (b *ParticipantBuilder) WithArmorClass(ac int32) *ParticipantBuilder {
	b.participant.ArmorClass = ac
	return b
}

// WithAbilityScores sets the six ability scores
func (b *ParticipantBuilder) WithAbilityScores(str, dex, con, intel, wis, cha int32) *ParticipantBuilder {
	b.participant.AbilityScores = entities.AbilityScores{
		Strength:     str,
		Dexterity:    dex,
		Constitution: con,
		Intelligence: intel,
		Wisdom:       wis,
		Charisma:     cha,
	}
	return b
}

// WithSpeed sets movement speeds
func (b *ParticipantBuilder) WithSpeed(speed entities.Speed) *ParticipantBuilder {
	b.participant.Speed = speed
	return b
}

// WithPosition places the participant in a zone
func (b *ParticipantBuilder) WithPosition(zone entities.PositionZone) *ParticipantBuilder {
	b.participant.Position = zone
	return b
}

// WithFeatures grants features
func (b *ParticipantBuilder) WithFeatures(features ...string) *ParticipantBuilder {
	b.participant.Features = append(b.participant.Features, features...)
	return b
}

// WithFightingStyles grants fighting styles
func (b *ParticipantBuilder) WithFightingStyles(styles ...string) *ParticipantBuilder {
	b.participant.FightingStyles = append(b.participant.FightingStyles, styles...)
	return b
}

// WithPreparedSpells marks spells as prepared
func (b *ParticipantBuilder) WithPreparedSpells(spells ...string) *ParticipantBuilder {
	b.participant.PreparedSpells = append(b.participant.PreparedSpells, spells...)
	return b
}

// WithSpellSlots sets full spell slots for the given levels
func (b *ParticipantBuilder) WithSpellSlots(slots map[int32]int32) *ParticipantBuilder {
	if b.participant.SpellSlots == nil {
		b.participant.SpellSlots = make(map[int32]*entities.SpellSlot, len(slots))
	}
	for level, count := range slots {
		b.participant.SpellSlots[level] = &entities.SpellSlot{Current: count, Max: count}
	}
	return b
}

// WithConditions applies conditions
func (b *ParticipantBuilder) WithConditions(conditions ...entities.Condition) *ParticipantBuilder {
	b.participant.Conditions = append(b.participant.Conditions, conditions...)
	return b
}

// WithInitiative sets the rolled initiative
func (b *ParticipantBuilder) WithInitiative(initiative int32) *ParticipantBuilder {
	b.participant.Initiative = initiative
	return b
}

// WithReactionsRemaining sets the per-round reaction budget
func (b *ParticipantBuilder) WithReactionsRemaining(n int32) *ParticipantBuilder {
	b.participant.ReactionsRemaining = n
	return b
}

// WithSaveProficiencies grants saving throw proficiencies
func (b *ParticipantBuilder) WithSaveProficiencies(abilities ...entities.Ability) *ParticipantBuilder {
	b.participant.SaveProficiencies = append(b.participant.SaveProficiencies, abilities...)
	return b
}

// Defeated drops the participant to 0 HP
func (b *ParticipantBuilder) Defeated() *ParticipantBuilder {
	b.participant.CurrentHP = 0
	return b
}

// Build returns the built participant
func (b *ParticipantBuilder) Build() *entities.Participant {
	return b.participant
}
