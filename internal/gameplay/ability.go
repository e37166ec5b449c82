package gameplay

import "github.com/riftforged/gameserver/internal/wire"

// AbilityDefinition is the external ability-properties table §4.6's
// UseAbility handler consults, grounded on
// original_source/Gameplay/AbilityData.h's AbilityDefinition (trimmed to
// the fields a projectile-or-self-target ability actually needs).
type AbilityDefinition struct {
	ID              uint32
	IsProjectile    bool
	Damage          wire.DamageInstance
	ProjectileSpeed float32
	Range           float32
	Radius          float32
	CooldownSec     float32
	HealAmount      int32
}

// AbilityTable maps ability id to its definition. RiftStepAbilityID and
// BasicAttackAbilityID are reserved and never looked up here; this table
// covers the activatable ability bar.
var AbilityTable = map[uint32]AbilityDefinition{
	3001: { // Fireball
		ID: 3001, IsProjectile: true,
		Damage:          wire.DamageInstance{Amount: 28, DamageType: wire.DamageTypeRadiant},
		ProjectileSpeed: 25, Range: 40, Radius: 0.35, CooldownSec: 4.0,
	},
	3002: { // Frost Bolt
		ID: 3002, IsProjectile: true,
		Damage:          wire.DamageInstance{Amount: 18, DamageType: wire.DamageTypeFrost},
		ProjectileSpeed: 32, Range: 35, Radius: 0.25, CooldownSec: 3.0,
	},
	3003: { // Renewal Ward, a self-heal with no projectile
		ID: 3003, IsProjectile: false,
		HealAmount: 30, CooldownSec: 8.0,
	},
}

// LookupAbility returns the ability's definition and whether it is
// recognized.
func LookupAbility(id uint32) (AbilityDefinition, bool) {
	def, ok := AbilityTable[id]
	return def, ok
}
