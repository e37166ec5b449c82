package gameplay

import (
	"github.com/riftforged/gameserver/internal/physics"
	"github.com/riftforged/gameserver/internal/wire"
)

// ApplyMovementInput rotates the client's local-space direction into world
// space by the player's current orientation, integrates position through
// the character controller, and updates movement/animation state. A no-op
// if the player's current movement state forbids movement (§4.6).
func ApplyMovementInput(p *PlayerState, eng physics.Engine, input wire.MovementInputC2S, dt float32) {
	if !p.CanMove() {
		return
	}
	if input.LocalDirection == (wire.Vec3{}) {
		p.MovementState = MovementIdle
		p.AnimationStateID = animIdle
		p.MarkDirty()
		return
	}

	worldDir := physics.RotateVectorByQuat(input.LocalDirection, p.Orientation)
	worldDir = physics.Normalize(worldDir)

	speed := p.BaseWalkSpeed
	if input.IsSprinting {
		speed *= p.SprintMultiplier
	}
	displacement := physics.Scale(worldDir, speed*dt)

	eng.MoveCharacter(p.ControllerHandle, displacement, dt)
	p.Position = eng.GetPosition(p.ControllerHandle)

	if input.IsSprinting {
		p.MovementState = MovementSprinting
		p.AnimationStateID = animSprinting
	} else {
		p.MovementState = MovementWalking
		p.AnimationStateID = animWalking
	}
	p.MarkDirty()
}

// ApplyTurnIntent composes a yaw delta onto the player's orientation and
// propagates the new pose to the physics character controller.
func ApplyTurnIntent(p *PlayerState, eng physics.Engine, deltaDegrees float32) {
	delta := physics.YawQuatDegrees(deltaDegrees)
	p.Orientation = physics.ComposeOrientation(p.Orientation, delta)
	eng.SetPose(p.ControllerHandle, p.Position, p.Orientation)
	p.MarkDirty()
}

const (
	animIdle      uint32 = 0
	animWalking   uint32 = 1
	animSprinting uint32 = 2
)
