package gameplay

import (
	"testing"

	"github.com/riftforged/gameserver/internal/physics"
	"github.com/riftforged/gameserver/internal/wire"
	"github.com/stretchr/testify/require"
)

func newTestPlayer(t *testing.T, eng *physics.ReferenceEngine, id uint64, pos wire.Vec3) *PlayerState {
	t.Helper()
	p := NewPlayerState(id, "hero", pos)
	h, err := eng.CreateCharacterController(id, pos, p.CapsuleRadius, p.CapsuleHalfHeight*2)
	require.NoError(t, err)
	p.ControllerHandle = h
	return p
}

func TestApplyMovementInputIntegratesPosition(t *testing.T) {
	eng := physics.NewReferenceEngine()
	p := newTestPlayer(t, eng, 1, wire.Vec3{})

	ApplyMovementInput(p, eng, wire.MovementInputC2S{LocalDirection: wire.Vec3{Y: 1}}, 1.0)

	require.Equal(t, MovementWalking, p.MovementState)
	require.InDelta(t, p.BaseWalkSpeed, p.Position.Y, 0.01)
	require.True(t, p.IsDirty())
}

func TestApplyMovementInputNoOpWhenStunned(t *testing.T) {
	eng := physics.NewReferenceEngine()
	p := newTestPlayer(t, eng, 1, wire.Vec3{})
	p.MovementState = MovementStunned
	p.ClearDirty()

	ApplyMovementInput(p, eng, wire.MovementInputC2S{LocalDirection: wire.Vec3{Y: 1}}, 1.0)

	require.Equal(t, wire.Vec3{}, p.Position)
	require.False(t, p.IsDirty())
}

func TestApplyTurnIntentRotatesOrientation(t *testing.T) {
	eng := physics.NewReferenceEngine()
	p := newTestPlayer(t, eng, 1, wire.Vec3{})

	ApplyTurnIntent(p, eng, 90)

	forward := physics.WorldForward(p.Orientation)
	require.InDelta(t, -1.0, forward.X, 0.01)
	require.InDelta(t, 0.0, forward.Y, 0.01)
}

func TestResolveRiftStepMovesPlayerAndSetsCooldown(t *testing.T) {
	eng := physics.NewReferenceEngine()
	p := newTestPlayer(t, eng, 1, wire.Vec3{})

	outcome := ResolveRiftStep(p, eng, wire.RiftStepIntentForward)

	require.True(t, outcome.Success)
	require.InDelta(t, p.RiftStep.TravelDistance, outcome.ActualFinal.Y, 0.01)
	require.True(t, p.IsAbilityOnCooldown(RiftStepAbilityID))
}

func TestResolveRiftStepFailsWhileStunned(t *testing.T) {
	eng := physics.NewReferenceEngine()
	p := newTestPlayer(t, eng, 1, wire.Vec3{})
	p.MovementState = MovementStunned

	outcome := ResolveRiftStep(p, eng, wire.RiftStepIntentForward)

	require.False(t, outcome.Success)
	require.Equal(t, wire.Vec3{}, outcome.ActualFinal)
}

func TestResolveRiftStepStopsAtDenseObstacle(t *testing.T) {
	eng := physics.NewReferenceEngine()
	p := newTestPlayer(t, eng, 1, wire.Vec3{})
	eng.AddStaticObstacle(wire.Vec3{Y: 3}, 0.5, physics.FilterData{Word0: 0x1})

	outcome := ResolveRiftStep(p, eng, wire.RiftStepIntentForward)

	require.True(t, outcome.Success)
	require.Less(t, outcome.ActualFinal.Y, p.RiftStep.TravelDistance)
}

func TestSetAbilityCooldownClampsToQuarterSecondFloor(t *testing.T) {
	p := NewPlayerState(1, "hero", wire.Vec3{})
	p.AbilityCooldownModifier = 0.01
	p.SetAbilityCooldown(BasicAttackAbilityID, 1.0)
	require.InDelta(t, 0.25, p.AbilityCooldowns[BasicAttackAbilityID], 0.001)
}

func TestApplyDamageAppliesResistanceAndKills(t *testing.T) {
	p := NewPlayerState(1, "hero", wire.Vec3{})
	p.CurrentHealth = 10
	p.Resistances[wire.DamageTypeFrost] = DamageResistance{Flat: 2, Percent: 50}

	dealt, killed := p.ApplyDamage(wire.DamageInstance{Amount: 10, DamageType: wire.DamageTypeFrost})

	// (10 - 2) * (1 - 0.5) = 4
	require.Equal(t, int32(4), dealt)
	require.False(t, killed)
	require.Equal(t, int32(6), p.CurrentHealth)

	_, killed = p.ApplyDamage(wire.DamageInstance{Amount: 100, DamageType: wire.DamageTypePhysical})
	require.True(t, killed)
	require.Equal(t, int32(0), p.CurrentHealth)
	require.Equal(t, MovementDead, p.MovementState)
}

func TestResolveMeleeAttackHitsNearbyTarget(t *testing.T) {
	eng := physics.NewReferenceEngine()
	attacker := newTestPlayer(t, eng, 1, wire.Vec3{})
	defender := newTestPlayer(t, eng, 2, wire.Vec3{Y: 1})

	targets := map[uint64]*PlayerState{defender.ID: defender}
	combat := NewCombatSystem(1)
	attacker.AccuracyRatingPercent = 100
	attacker.CriticalHitChancePercent = 0

	weapon := LookupWeapon(WeaponGenericMeleeSword)
	results := ResolveMeleeAttack(attacker, eng, weapon, combat, targets)

	require.Len(t, results, 1)
	require.True(t, results[0].Hit)
	require.Equal(t, defender.ID, results[0].TargetID)
}

func TestResolveAimDirectionPrecedence(t *testing.T) {
	caster := NewPlayerState(1, "hero", wire.Vec3{})
	target := NewPlayerState(2, "enemy", wire.Vec3{Y: 5})

	dir := ResolveAimDirection(caster, true, wire.Vec3{X: 5}, true, target)
	require.InDelta(t, 1.0, dir.X, 0.01)

	dir = ResolveAimDirection(caster, false, wire.Vec3{}, true, target)
	require.InDelta(t, 1.0, dir.Y, 0.01)

	dir = ResolveAimDirection(caster, false, wire.Vec3{}, false, nil)
	require.Equal(t, physics.WorldForward(caster.Orientation), dir)
}
