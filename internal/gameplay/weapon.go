package gameplay

import "github.com/riftforged/gameserver/internal/wire"

// AttackShape distinguishes melee sweep resolution from ranged projectile
// resolution for a weapon category.
type AttackShape uint8

const (
	AttackMelee AttackShape = iota
	AttackRanged
)

// WeaponProperties is the external weapon-properties table §4.6's
// BasicAttackIntent handler consults.
type WeaponProperties struct {
	Shape           AttackShape
	Range           float32 // melee sweep distance, or projectile max travel distance
	Radius          float32 // sweep/projectile capsule radius
	Damage          wire.DamageInstance
	ProjectileSpeed float32
	CooldownSec     float32
}

// WeaponTable maps each equippable weapon category to its combat
// properties, grounded on ActivePlayer.h's EquippedWeaponCategory bands
// (melee swords/axes/mauls, ranged bows/guns, magic staves/wands).
var WeaponTable = map[WeaponCategory]WeaponProperties{
	WeaponUnarmed: {
		Shape: AttackMelee, Range: 1.2, Radius: 0.3,
		Damage: wire.DamageInstance{Amount: 3, DamageType: wire.DamageTypePhysical}, CooldownSec: 0.8,
	},
	WeaponGenericMeleeSword: {
		Shape: AttackMelee, Range: 2.0, Radius: 0.4,
		Damage: wire.DamageInstance{Amount: 12, DamageType: wire.DamageTypePhysical}, CooldownSec: 0.7,
	},
	WeaponGenericMeleeAxe: {
		Shape: AttackMelee, Range: 1.8, Radius: 0.5,
		Damage: wire.DamageInstance{Amount: 16, DamageType: wire.DamageTypePhysical}, CooldownSec: 0.9,
	},
	WeaponGenericMeleeMaul: {
		Shape: AttackMelee, Range: 1.6, Radius: 0.6,
		Damage: wire.DamageInstance{Amount: 22, DamageType: wire.DamageTypePhysical}, CooldownSec: 1.3,
	},
	WeaponGenericRangedBow: {
		Shape: AttackRanged, Range: 40, Radius: 0.1,
		Damage: wire.DamageInstance{Amount: 10, DamageType: wire.DamageTypePhysical}, ProjectileSpeed: 45, CooldownSec: 0.9,
	},
	WeaponGenericRangedGun: {
		Shape: AttackRanged, Range: 60, Radius: 0.08,
		Damage: wire.DamageInstance{Amount: 9, DamageType: wire.DamageTypePhysical}, ProjectileSpeed: 90, CooldownSec: 0.3,
	},
	WeaponGenericMagicStaff: {
		Shape: AttackRanged, Range: 35, Radius: 0.2,
		Damage: wire.DamageInstance{Amount: 14, DamageType: wire.DamageTypeRadiant}, ProjectileSpeed: 30, CooldownSec: 1.0,
	},
	WeaponGenericMagicWand: {
		Shape: AttackRanged, Range: 30, Radius: 0.15,
		Damage: wire.DamageInstance{Amount: 8, DamageType: wire.DamageTypeRadiant}, ProjectileSpeed: 35, CooldownSec: 0.6,
	},
}

// LookupWeapon returns the category's properties, falling back to unarmed
// for an unrecognized category rather than panicking on bad data.
func LookupWeapon(cat WeaponCategory) WeaponProperties {
	if props, ok := WeaponTable[cat]; ok {
		return props
	}
	return WeaponTable[WeaponUnarmed]
}
