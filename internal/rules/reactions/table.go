package reactions

import (
	"fmt"

	"github.com/KirkDiggler/encounter-api/internal/entities"
	"github.com/KirkDiggler/encounter-api/internal/rules/movement"
)

// rule is one row of the trigger table: which event pattern fires it, which
// reactors it applies to (identity, side, and position constraints), and
// which reaction it offers. Capability checks (features, spells, slots) live
// on the offered reaction's Descriptor.
type rule struct {
	trigger  entities.ReactionTrigger
	reaction entities.ActionType
	matches  func(ev Event) bool
	applies  func(reactor, actor *entities.Participant, ev Event, enc *entities.Encounter) bool
	describe func(actorName string, ev Event) string
}

// hostile reports whether two participants fight for opposing sides.
// Neutral participants are hostile to nobody.
func hostile(a, b *entities.Participant) bool {
	if a.Side == entities.SideNeutral || b.Side == entities.SideNeutral {
		return false
	}
	return a.Side != b.Side
}

// allied reports whether two participants fight for the same side.
func allied(a, b *entities.Participant) bool {
	return a.Side == b.Side
}

// counterspellRange is the widest zone separation across which a cast can
// still be countered. Only a melee<->distant separation is out of range.
const counterspellRange int32 = 2

// protectionRange is the widest zone separation at which a defender can
// still interpose protection for an ally.
const protectionRange int32 = 1

// triggerRules is the full trigger table. Order matters only for the order
// opportunities are presented in; detection is independent per row.
func triggerRules() []rule {
	return []rule{
		{
			trigger:  entities.TriggerCreatureLeavesReach,
			reaction: entities.ReactionOpportunityAttack,
			matches: func(ev Event) bool {
				return ev.Type == EventMovement && ev.Movement != nil && movement.LeavesReach(*ev.Movement)
			},
			applies: func(reactor, actor *entities.Participant, ev Event, _ *entities.Encounter) bool {
				if actor == nil || reactor.ID == actor.ID {
					return false
				}
				if !movement.Provokes(actor, *ev.Movement) {
					return false
				}
				return hostile(reactor, actor) && movement.WithinReach(reactor.Position, ev.Movement.From)
			},
			describe: func(actorName string, ev Event) string {
				return fmt.Sprintf("%s moves from %s to %s, leaving your reach", actorName, ev.Movement.From, ev.Movement.To)
			},
		},
		{
			trigger:  entities.TriggerSpellCastInRange,
			reaction: entities.ReactionCounterspell,
			matches: func(ev Event) bool {
				return ev.Type == EventSpellCast
			},
			applies: func(reactor, actor *entities.Participant, ev Event, _ *entities.Encounter) bool {
				if actor == nil || reactor.ID == actor.ID {
					return false
				}
				return movement.ZoneDistance(reactor.Position, actor.Position) <= counterspellRange
			},
			describe: func(actorName string, ev Event) string {
				return fmt.Sprintf("%s casts %s within range", actorName, ev.SpellID)
			},
		},
		{
			trigger:  entities.TriggerDamageTaken,
			reaction: entities.ReactionUncannyDodge,
			matches: func(ev Event) bool {
				return ev.Type == EventDamageTaken && ev.Amount > 0
			},
			applies: func(reactor, actor *entities.Participant, ev Event, _ *entities.Encounter) bool {
				// The attacker must be a known, separate participant the
				// reactor can see.
				return reactor.ID == ev.TargetID && actor != nil && actor.ID != reactor.ID
			},
			describe: func(actorName string, ev Event) string {
				return fmt.Sprintf("%s hits you for %d %s damage", actorName, ev.Amount, ev.DamageType)
			},
		},
		{
			trigger:  entities.TriggerRangedAttackHits,
			reaction: entities.ReactionDeflectMissiles,
			matches: func(ev Event) bool {
				return ev.Type == EventAttackHit && ev.Ranged
			},
			applies: func(reactor, _ *entities.Participant, ev Event, _ *entities.Encounter) bool {
				return reactor.ID == ev.TargetID
			},
			describe: func(actorName string, _ Event) string {
				return fmt.Sprintf("%s hits you with a ranged weapon attack", actorName)
			},
		},
		{
			trigger:  entities.TriggerDamageTaken,
			reaction: entities.ReactionShieldSpell,
			matches: func(ev Event) bool {
				return ev.Type == EventDamageTaken && ev.Amount > 0
			},
			applies: func(reactor, _ *entities.Participant, ev Event, _ *entities.Encounter) bool {
				return reactor.ID == ev.TargetID
			},
			describe: func(actorName string, ev Event) string {
				return fmt.Sprintf("%s damages you; shield could turn the blow", actorName)
			},
		},
		{
			trigger:  entities.TriggerDamageTaken,
			reaction: entities.ReactionAbsorbElements,
			matches: func(ev Event) bool {
				return ev.Type == EventDamageTaken && ev.Amount > 0 && entities.ElementalDamageTypes[ev.DamageType]
			},
			applies: func(reactor, _ *entities.Participant, ev Event, _ *entities.Encounter) bool {
				return reactor.ID == ev.TargetID
			},
			describe: func(actorName string, ev Event) string {
				return fmt.Sprintf("%s deals %s damage you could absorb", actorName, ev.DamageType)
			},
		},
		{
			trigger:  entities.TriggerDamageTaken,
			reaction: entities.ReactionHellishRebuke,
			matches: func(ev Event) bool {
				return ev.Type == EventDamageTaken && ev.Amount > 0
			},
			applies: func(reactor, actor *entities.Participant, ev Event, _ *entities.Encounter) bool {
				if actor == nil || reactor.ID != ev.TargetID {
					return false
				}
				return hostile(reactor, actor)
			},
			describe: func(actorName string, _ Event) string {
				return fmt.Sprintf("%s wounds you; rebuke them with flame", actorName)
			},
		},
		{
			trigger:  entities.TriggerAllyAttackedNearby,
			reaction: entities.ReactionUseObject,
			matches: func(ev Event) bool {
				return ev.Type == EventAttackHit
			},
			applies: func(reactor, actor *entities.Participant, ev Event, enc *entities.Encounter) bool {
				if reactor.ID == ev.TargetID || reactor.ID == ev.ActorID {
					return false
				}
				target := enc.FindParticipant(ev.TargetID)
				if target == nil || !allied(reactor, target) {
					return false
				}
				return movement.ZoneDistance(reactor.Position, target.Position) <= protectionRange
			},
			describe: func(actorName string, _ Event) string {
				return fmt.Sprintf("%s attacks an ally within your guard", actorName)
			},
		},
		{
			trigger:  entities.TriggerCreatureEntersReach,
			reaction: entities.ReactionOpportunityAttack,
			matches: func(ev Event) bool {
				return ev.Type == EventMovement && ev.Movement != nil && movement.EntersReach(*ev.Movement)
			},
			applies: func(reactor, actor *entities.Participant, ev Event, _ *entities.Encounter) bool {
				if actor == nil || reactor.ID == actor.ID {
					return false
				}
				if !reactor.HasFeature(entities.FeaturePolearmMaster) {
					return false
				}
				return hostile(reactor, actor) && movement.WithinReach(reactor.Position, ev.Movement.To)
			},
			describe: func(actorName string, _ Event) string {
				return fmt.Sprintf("%s moves into your polearm's reach", actorName)
			},
		},
	}
}
