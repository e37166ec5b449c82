package gameplay

import (
	"math/rand"

	"github.com/riftforged/gameserver/internal/physics"
	"github.com/riftforged/gameserver/internal/wire"
)

// HitResult is the outcome of resolving a single damage application,
// grounded on original_source/Gameplay/CombatData.h's
// DamageApplicationDetails.
type HitResult struct {
	TargetID    uint64
	FinalDamage int32
	WasCrit     bool
	WasKill     bool
	Hit         bool // false if the accuracy roll missed
}

// CombatSystem resolves basic attacks and ability hits against accuracy,
// critical-hit, and resistance rules. Its RNG is injected so tests can
// assert deterministic outcomes, the way a production build would seed it
// once at startup.
type CombatSystem struct {
	rng *rand.Rand
}

// NewCombatSystem constructs a CombatSystem seeded deterministically.
func NewCombatSystem(seed int64) *CombatSystem {
	return &CombatSystem{rng: rand.New(rand.NewSource(seed))}
}

// ResolveHit rolls accuracy and critical chance for attacker against
// defender and applies the resulting damage to defender.
func (c *CombatSystem) ResolveHit(attacker, defender *PlayerState, damage wire.DamageInstance) HitResult {
	accuracyRoll := c.rng.Float32() * 100
	if accuracyRoll >= attacker.AccuracyRatingPercent {
		return HitResult{TargetID: defender.ID, Hit: false}
	}

	amount := damage.Amount
	wasCrit := false
	critRoll := c.rng.Float32() * 100
	if critRoll < attacker.CriticalHitChancePercent {
		wasCrit = true
		amount = int32(float32(amount) * attacker.CriticalHitDamageMultiplier)
	}

	final, killed := defender.ApplyDamage(wire.DamageInstance{Amount: amount, DamageType: damage.DamageType})
	return HitResult{TargetID: defender.ID, FinalDamage: final, WasCrit: wasCrit, WasKill: killed, Hit: true}
}

// ResolveMeleeAttack sweeps a short arc of capsule casts (center plus two
// flanking angles) in front of the attacker so a single melee swing can
// land on more than one nearby target, matching §4.6's "for each hit"
// plural wording while staying within the single-hit sweep_capsule
// contract from §4.8.
func ResolveMeleeAttack(attacker *PlayerState, eng physics.Engine, weapon WeaponProperties, combat *CombatSystem, targets map[uint64]*PlayerState) []HitResult {
	forward := physics.WorldForward(attacker.Orientation)
	origin := physics.Add(attacker.Position, physics.Scale(forward, attacker.CapsuleRadius))

	const arcDegrees = 20
	dirs := []wire.Vec3{
		forward,
		physics.RotateVectorByQuat(forward, physics.YawQuatDegrees(-arcDegrees)),
		physics.RotateVectorByQuat(forward, physics.YawQuatDegrees(arcDegrees)),
	}

	seen := map[uint64]bool{attacker.ID: true}
	var results []HitResult
	for _, dir := range dirs {
		hit, ok := eng.SweepCapsule(origin, attacker.Orientation, weapon.Radius, attacker.CapsuleHalfHeight, dir, weapon.Range, attacker.ID, physics.FilterData{}, meleeFilter)
		if !ok || seen[hit.EntityID] {
			continue
		}
		seen[hit.EntityID] = true
		target, ok := targets[hit.EntityID]
		if !ok {
			continue
		}
		results = append(results, combat.ResolveHit(attacker, target, weapon.Damage))
	}
	return results
}

func meleeFilter(candidate physics.FilterData, entityID uint64) physics.FilterAction {
	return physics.FilterBlock
}

// SpawnRangedAttack resolves a ranged basic attack or projectile ability by
// creating a physics projectile travelling along aimDir.
func SpawnRangedAttack(attacker *PlayerState, eng physics.Engine, weapon WeaponProperties, aimDir wire.Vec3) physics.ActorHandle {
	dir := physics.Normalize(aimDir)
	velocity := physics.Scale(dir, weapon.ProjectileSpeed)
	lifetime := weapon.Range / weapon.ProjectileSpeed
	props := physics.ProjectileProps{Radius: weapon.Radius, MaxLifetimeSec: lifetime}
	return eng.CreateDynamicProjectile(props, attacker.ID, attacker.Position, velocity)
}

// ResolveAimDirection implements §4.6's UseAbility target-resolution
// precedence: explicit target position, then target entity, then the
// caster's forward vector.
func ResolveAimDirection(caster *PlayerState, hasTargetPosition bool, targetPosition wire.Vec3, hasTargetEntity bool, targetEntity *PlayerState) wire.Vec3 {
	switch {
	case hasTargetPosition:
		return physics.Normalize(physics.Add(targetPosition, physics.Scale(caster.Position, -1)))
	case hasTargetEntity && targetEntity != nil:
		return physics.Normalize(physics.Add(targetEntity.Position, physics.Scale(caster.Position, -1)))
	default:
		return physics.WorldForward(caster.Orientation)
	}
}
