// Package movement computes coarse zone-based movement costs and decides
// whether a move is eligible to provoke reactions.
package movement

import (
	"github.com/KirkDiggler/encounter-api/internal/entities"
)

// BaseStepCost is the movement cost, in feet, of crossing one zone
// boundary on clear terrain.
const BaseStepCost int32 = 15

// zoneOrder gives each zone an ordinal so reach and transition math are
// simple comparisons. Melee is closest to the enemy line, distant is
// furthest.
var zoneOrder = map[entities.PositionZone]int32{
	entities.ZoneMelee:    0,
	entities.ZoneAdjacent: 1,
	entities.ZoneRanged:   2,
	entities.ZoneDistant:  3,
}

// ValidZone reports whether the zone is one of the four coarse bands.
func ValidZone(zone entities.PositionZone) bool {
	_, ok := zoneOrder[zone]
	return ok
}

// ZoneDistance returns the number of zone boundaries between two zones.
// Unknown zones count as distant.
func ZoneDistance(a, b entities.PositionZone) int32 {
	oa, ok := zoneOrder[a]
	if !ok {
		oa = zoneOrder[entities.ZoneDistant]
	}
	ob, ok := zoneOrder[b]
	if !ok {
		ob = zoneOrder[entities.ZoneDistant]
	}
	if oa > ob {
		return oa - ob
	}
	return ob - oa
}

// InReachBand reports whether a zone is within melee reach of the enemy
// line (melee or adjacent).
func InReachBand(zone entities.PositionZone) bool {
	return zone == entities.ZoneMelee || zone == entities.ZoneAdjacent
}

// WithinReach reports whether two participants' zones put them in each
// other's melee reach. With coarse zones this means both stand in the
// engaged band.
func WithinReach(a, b entities.PositionZone) bool {
	return InReachBand(a) && InReachBand(b)
}

// LeavesReach reports whether the move crosses out of the engaged band
// (melee/adjacent into ranged/distant).
func LeavesReach(move entities.Movement) bool {
	return InReachBand(move.From) && !InReachBand(move.To)
}

// EntersReach reports whether the move crosses into the engaged band
// (ranged/distant into melee/adjacent).
func EntersReach(move entities.Movement) bool {
	return !InReachBand(move.From) && InReachBand(move.To)
}

// Cost returns the movement cost in feet for the zone transition over the
// given terrain: steps crossed x BaseStepCost x terrain multiplier
// (difficult x2, rough x1.5 rounded up, clear x1).
func Cost(move entities.Movement, terrain entities.TerrainType) int32 {
	steps := ZoneDistance(move.From, move.To)
	base := steps * BaseStepCost

	switch terrain {
	case entities.TerrainDifficult:
		return base * 2
	case entities.TerrainRough:
		return (base*3 + 1) / 2
	default:
		return base
	}
}

// CanTraverse reports whether the mover's speed budget covers the move.
// Dashing doubles the budget for the turn. Flying participants use their
// fly speed when it is higher than their walk speed.
func CanTraverse(mover *entities.Participant, move entities.Movement, terrain entities.TerrainType, dashed bool) bool {
	budget := mover.Speed.Walk
	if mover.Speed.Fly > budget {
		budget = mover.Speed.Fly
	}
	if dashed {
		budget *= 2
	}
	return Cost(move, terrain) <= budget
}

// Provokes reports whether the move is eligible to provoke opportunity
// attacks: it must leave the engaged band, and the mover must lack the
// mobile feature, not be flying, and not have disengaged this turn.
func Provokes(mover *entities.Participant, move entities.Movement) bool {
	if !LeavesReach(move) {
		return false
	}
	if mover.HasFeature(entities.FeatureMobile) {
		return false
	}
	if mover.IsFlying() {
		return false
	}
	if mover.DisengageActive {
		return false
	}
	return true
}
