// Package physics defines the §4.8 physics-engine contract the gameplay
// engine depends on, and ships a from-scratch reference implementation
// (engine.go) since no physics SDK appears anywhere in the retrieval pack.
// The contract is kept narrow and data-driven (filter words + callback)
// exactly as specified, so a production build could swap the reference
// implementation for a real physics SDK's binding without touching
// internal/gameplay.
package physics

import "github.com/riftforged/gameserver/internal/wire"

// Handle identifies a character controller.
type Handle uint64

// ActorHandle identifies any other physics actor (e.g. a projectile).
type ActorHandle uint64

// CollisionFlags reports which sides of a character controller's capsule
// made contact during a MoveCharacter call.
type CollisionFlags uint8

const (
	CollisionSide CollisionFlags = 1 << iota
	CollisionAbove
	CollisionBelow
)

// FilterData is the four-word filter block carried by every shape, used to
// decide ignore/touch/block during queries without the query needing to
// know the shape's concrete type.
type FilterData struct {
	Word0, Word1, Word2, Word3 uint32
}

// FilterAction is the outcome a FilterCallback returns for a candidate.
type FilterAction uint8

const (
	FilterIgnore FilterAction = iota
	FilterTouch
	FilterBlock
)

// FilterCallback inspects a sweep/raycast candidate given its filter data
// and opaque entity id, and decides whether the query should ignore it,
// record it as a touch without stopping, or block (stopping the query at
// that point).
type FilterCallback func(candidate FilterData, entityID uint64) FilterAction

// Hit is a single sweep or raycast result.
type Hit struct {
	EntityID uint64
	Point    wire.Vec3
	Normal   wire.Vec3
	Distance float32
}

// ProjectileProps configures a spawned projectile's motion and collision
// shape.
type ProjectileProps struct {
	Radius       float32
	MaxLifetimeSec float32
	Filter       FilterData
}

// ProjectileHit is produced when a live projectile's path intersects a
// blocking or touching actor during Step. The contract in §4.8 lists
// create_dynamic_projectile but is silent on how a hit is later reported
// back to game logic; DrainProjectileHits resolves that gap the way a
// polling per-tick query would, matching the simulation loop's own
// drain-then-process shape (§4.7).
type ProjectileHit struct {
	Projectile ActorHandle
	Hit        Hit
}

// Engine is the physics-engine contract §4.8 requires of the core.
type Engine interface {
	CreateCharacterController(entityID uint64, pos wire.Vec3, radius, height float32) (Handle, error)
	ReleaseCharacterController(h Handle)
	SetPose(h Handle, pos wire.Vec3, orientation wire.Quat)
	GetPosition(h Handle) wire.Vec3
	MoveCharacter(h Handle, displacement wire.Vec3, dt float32) CollisionFlags
	Step(dt float32)
	SweepCapsule(start wire.Vec3, orientation wire.Quat, radius, halfHeight float32, unitDir wire.Vec3, maxDist float32, ignoreEntityID uint64, filter FilterData, cb FilterCallback) (Hit, bool)
	RaycastSingle(start, unitDir wire.Vec3, maxDist float32, filter FilterData) (Hit, bool)
	CreateDynamicProjectile(props ProjectileProps, gameData uint64, start, velocity wire.Vec3) ActorHandle
	DrainProjectileHits() []ProjectileHit
}
