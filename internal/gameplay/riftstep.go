package gameplay

import (
	"github.com/riftforged/gameserver/internal/physics"
	"github.com/riftforged/gameserver/internal/wire"
)

// RiftStepOutcome mirrors original_source's
// "V0.0.01 Running In Full/Gameplay/RiftStepLogic.h" RiftStepOutcome: the
// full record of a resolved dash/teleport, including the entry/exit
// gameplay effects §4.6 requires on the S2C response.
type RiftStepOutcome struct {
	Success           bool
	FailureReason     string
	StartPosition     wire.Vec3
	IntendedTarget    wire.Vec3
	ActualFinal       wire.Vec3
	TravelDurationSec float32
	EntryEffects      []wire.RiftStepEffect
	ExitEffects       []wire.RiftStepEffect
}

// ResolveRiftStep performs the §4.6 RiftStepActivation pre-checks, computes
// the world-space step direction from the player's current orientation
// basis, sweeps to the furthest unobstructed point along that direction,
// relocates the player there, and applies the (cooldown-modifier-adjusted,
// 0.25s-floor-clamped) ability cooldown.
func ResolveRiftStep(p *PlayerState, eng physics.Engine, intent wire.RiftStepIntent) RiftStepOutcome {
	start := p.Position

	if !p.CanAct() {
		return RiftStepOutcome{Success: false, FailureReason: "player cannot act", StartPosition: start, ActualFinal: start}
	}
	if p.IsAbilityOnCooldown(RiftStepAbilityID) {
		return RiftStepOutcome{Success: false, FailureReason: "riftstep on cooldown", StartPosition: start, ActualFinal: start}
	}

	dir := riftStepDirection(p.Orientation, intent)
	target := physics.Add(start, physics.Scale(dir, p.RiftStep.TravelDistance))

	travelDist := p.RiftStep.TravelDistance
	filter := func(candidate physics.FilterData, entityID uint64) physics.FilterAction {
		if candidate.Word0&0x1 != 0 {
			return physics.FilterBlock
		}
		return physics.FilterTouch
	}
	if hit, ok := eng.SweepCapsule(start, p.Orientation, p.CapsuleRadius, p.CapsuleHalfHeight, dir, p.RiftStep.TravelDistance, p.ID, physics.FilterData{}, filter); ok {
		travelDist = hit.Distance
	}

	final := physics.Add(start, physics.Scale(dir, travelDist))
	p.Position = final
	eng.SetPose(p.ControllerHandle, final, p.Orientation)
	p.SetAbilityCooldown(RiftStepAbilityID, p.RiftStep.BaseCooldownSec)
	p.MarkDirty()

	return RiftStepOutcome{
		Success:           true,
		StartPosition:     start,
		IntendedTarget:    target,
		ActualFinal:       final,
		TravelDurationSec: p.RiftStep.TravelDurationSec,
		EntryEffects:      p.RiftStep.EntryEffects,
		ExitEffects:       p.RiftStep.ExitEffects,
	}
}

func riftStepDirection(orientation wire.Quat, intent wire.RiftStepIntent) wire.Vec3 {
	forward := physics.WorldForward(orientation)
	right := physics.WorldRight(orientation)
	switch intent {
	case wire.RiftStepIntentForward:
		return forward
	case wire.RiftStepIntentBack, wire.RiftStepIntentDefaultBack:
		return physics.Scale(forward, -1)
	case wire.RiftStepIntentLeft:
		return physics.Scale(right, -1)
	case wire.RiftStepIntentRight:
		return right
	default:
		return physics.Scale(forward, -1)
	}
}
