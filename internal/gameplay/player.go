// Package gameplay implements the authoritative per-player state and the
// movement, combat, and RiftStep rules the dispatcher's message handlers
// invoke on the simulation thread. Grounded throughout on
// original_source/Gameplay/ActivePlayer.h for PlayerState's field set and
// original_source/.../RiftStepLogic.h and CombatData.h for the ability and
// combat-outcome shapes.
package gameplay

import (
	"sync/atomic"

	"github.com/riftforged/gameserver/internal/physics"
	"github.com/riftforged/gameserver/internal/wire"
)

// MovementState mirrors ActivePlayer.h's PlayerMovementState enum.
type MovementState uint8

const (
	MovementIdle MovementState = iota
	MovementWalking
	MovementSprinting
	MovementStunned
	MovementRooted
	MovementDead
	MovementAbilityInUse
)

// WeaponCategory mirrors ActivePlayer.h's EquippedWeaponCategory enum
// values exactly, including its deliberate gaps between melee/ranged/magic
// bands.
type WeaponCategory uint16

const (
	WeaponUnarmed             WeaponCategory = 0
	WeaponGenericMeleeSword   WeaponCategory = 1
	WeaponGenericMeleeAxe     WeaponCategory = 2
	WeaponGenericMeleeMaul    WeaponCategory = 3
	WeaponGenericRangedBow    WeaponCategory = 101
	WeaponGenericRangedGun    WeaponCategory = 102
	WeaponGenericMagicStaff   WeaponCategory = 201
	WeaponGenericMagicWand    WeaponCategory = 202
)

// Well-known ability ids, grounded on ActivePlayer.h's
// RIFTSTEP_ABILITY_ID / BASIC_ATTACK_ABILITY_ID constants.
const (
	RiftStepAbilityID   uint32 = 1
	BasicAttackAbilityID uint32 = 2
)

// DamageResistance is the flat-then-percent mitigation pair ActivePlayer.h
// carries per damage type.
type DamageResistance struct {
	Flat    int32
	Percent float32
}

// RiftStepDefinition configures a player's currently equipped RiftStep
// ability: travel distance/duration and the gameplay effects it applies at
// either end of the step.
type RiftStepDefinition struct {
	TravelDistance    float32
	TravelDurationSec float32
	BaseCooldownSec   float32
	EntryEffects      []wire.RiftStepEffect
	ExitEffects       []wire.RiftStepEffect
}

// StatusEffect is a single active buff/debuff category with its expiry.
type StatusEffect struct {
	Category      uint32
	RemainingSec  float32
}

// PlayerState is the authoritative per-player record. It is mutated only
// from the simulation thread (§5); IsDirty is the sole field any other
// thread is permitted to read without synchronization through the atomic
// wrapper, and even that is only ever written from the simulation thread in
// this implementation.
type PlayerState struct {
	ID         uint64
	CharacterID string

	Position    wire.Vec3
	Orientation wire.Quat
	CapsuleRadius float32
	CapsuleHalfHeight float32

	CurrentHealth, MaxHealth     int32
	CurrentResource, MaxResource int32

	BaseWalkSpeed      float32
	SprintMultiplier   float32
	AbilityCooldownModifier float32 // multiplies computed cooldowns; 1.0 = no change
	CriticalHitChancePercent float32
	CriticalHitDamageMultiplier float32
	AccuracyRatingPercent    float32
	BasicAttackCooldownSec   float32

	Resistances map[wire.DamageType]DamageResistance

	EquippedWeapon   WeaponCategory
	EquippedWeaponDefinitionID uint32

	RiftStep RiftStepDefinition

	MovementState    MovementState
	AnimationStateID uint32

	AbilityCooldowns map[uint32]float32 // ability id -> seconds remaining
	ActiveStatusEffects []StatusEffect

	ControllerHandle physics.Handle

	dirty atomic.Bool
}

// NewPlayerState constructs a PlayerState with the spawn defaults the join
// path uses, marked dirty so the first tick broadcasts it.
func NewPlayerState(id uint64, characterID string, spawnPos wire.Vec3) *PlayerState {
	p := &PlayerState{
		ID:                          id,
		CharacterID:                 characterID,
		Position:                    spawnPos,
		Orientation:                 wire.Quat{W: 1},
		CapsuleRadius:               0.4,
		CapsuleHalfHeight:           0.9,
		CurrentHealth:               100,
		MaxHealth:                   100,
		CurrentResource:             100,
		MaxResource:                 100,
		BaseWalkSpeed:               4.0,
		SprintMultiplier:            1.6,
		AbilityCooldownModifier:     1.0,
		CriticalHitChancePercent:    5.0,
		CriticalHitDamageMultiplier: 1.5,
		AccuracyRatingPercent:       95.0,
		BasicAttackCooldownSec:      0.8,
		Resistances:                 make(map[wire.DamageType]DamageResistance),
		EquippedWeapon:              WeaponUnarmed,
		AbilityCooldowns:            make(map[uint32]float32),
		RiftStep: RiftStepDefinition{
			TravelDistance:    6.0,
			TravelDurationSec: 0.2,
			BaseCooldownSec:   3.0,
		},
	}
	p.dirty.Store(true)
	return p
}

// MarkDirty flags the player for broadcast on the next tick.
func (p *PlayerState) MarkDirty() { p.dirty.Store(true) }

// IsDirty reports and does not clear the dirty flag.
func (p *PlayerState) IsDirty() bool { return p.dirty.Load() }

// ClearDirty resets the dirty flag after the simulation loop has broadcast
// this player's state.
func (p *PlayerState) ClearDirty() { p.dirty.Store(false) }

// CanAct reports whether the player's movement state permits issuing
// movement, basic-attack, ability, or RiftStep commands.
func (p *PlayerState) CanAct() bool {
	switch p.MovementState {
	case MovementStunned, MovementRooted, MovementDead, MovementAbilityInUse:
		return false
	default:
		return true
	}
}

// CanMove reports whether the player's movement state permits translating
// position (RiftStep additionally requires CanAct()'s broader check since
// it also excludes AbilityInUse).
func (p *PlayerState) CanMove() bool {
	switch p.MovementState {
	case MovementStunned, MovementRooted, MovementDead:
		return false
	default:
		return true
	}
}

// IsAbilityOnCooldown reports whether the ability still has time remaining.
func (p *PlayerState) IsAbilityOnCooldown(abilityID uint32) bool {
	return p.AbilityCooldowns[abilityID] > 0
}

// SetAbilityCooldown starts (or overwrites) an ability's cooldown, applying
// the player's AbilityCooldownModifier and clamping to a 0.25s floor per
// §4.6's RiftStep cooldown rule, which this implementation applies
// uniformly to every ability's cooldown for consistency.
func (p *PlayerState) SetAbilityCooldown(abilityID uint32, baseSeconds float32) {
	adjusted := baseSeconds * p.AbilityCooldownModifier
	const minCooldown = 0.25
	if adjusted < minCooldown {
		adjusted = minCooldown
	}
	p.AbilityCooldowns[abilityID] = adjusted
}

// TickCooldowns advances every active cooldown by dt, clearing any that
// expire. Called once per simulation tick.
func (p *PlayerState) TickCooldowns(dt float32) {
	for id, remaining := range p.AbilityCooldowns {
		remaining -= dt
		if remaining <= 0 {
			delete(p.AbilityCooldowns, id)
		} else {
			p.AbilityCooldowns[id] = remaining
		}
	}
	kept := p.ActiveStatusEffects[:0]
	for _, eff := range p.ActiveStatusEffects {
		eff.RemainingSec -= dt
		if eff.RemainingSec > 0 {
			kept = append(kept, eff)
		}
	}
	p.ActiveStatusEffects = kept
}

// ApplyDamage applies a damage instance after resistance mitigation,
// returning the final amount dealt and whether the player died. Mirrors the
// flat-then-percent mitigation ActivePlayer.h's per-damage-type resistance
// fields describe.
func (p *PlayerState) ApplyDamage(instance wire.DamageInstance) (finalDamage int32, killed bool) {
	amount := instance.Amount
	if res, ok := p.Resistances[instance.DamageType]; ok {
		amount -= res.Flat
		amount -= int32(float32(amount) * res.Percent / 100)
	}
	if amount < 0 {
		amount = 0
	}
	p.CurrentHealth -= amount
	if p.CurrentHealth <= 0 {
		p.CurrentHealth = 0
		p.MovementState = MovementDead
		killed = true
	}
	p.MarkDirty()
	return amount, killed
}

// HealDamage restores health, clamped to MaxHealth.
func (p *PlayerState) HealDamage(amount int32) {
	p.CurrentHealth += amount
	if p.CurrentHealth > p.MaxHealth {
		p.CurrentHealth = p.MaxHealth
	}
	p.MarkDirty()
}

// ActiveStatusCategories returns the compact list of status-effect category
// ids EntityStateUpdateS2C carries.
func (p *PlayerState) ActiveStatusCategories() []uint32 {
	if len(p.ActiveStatusEffects) == 0 {
		return nil
	}
	cats := make([]uint32, len(p.ActiveStatusEffects))
	for i, eff := range p.ActiveStatusEffects {
		cats[i] = eff.Category
	}
	return cats
}
