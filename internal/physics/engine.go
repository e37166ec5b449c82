package physics

import (
	"fmt"
	"math"
	"sync"

	"github.com/riftforged/gameserver/internal/wire"
)

// ReferenceEngine is a from-scratch, brute-force implementation of Engine.
// It models every actor as a sphere (character controllers collapse their
// capsule to its horizontal radius, which is sufficient for this server's
// ground-plane movement and sweep use cases) and tests sweeps/raycasts
// against every actor in the scene. There is no spatial partitioning: it is
// built to be correct and easy to read, not to scale past the handful of
// concurrent actors a single authoritative shard handles per spec.md's
// Non-goals around broad-scale physics fidelity.
type ReferenceEngine struct {
	mu sync.Mutex

	nextHandle      uint64
	controllers     map[Handle]*controllerActor
	staticObstacles map[uint64]*obstacleActor
	projectiles     map[ActorHandle]*projectileActor
	nextObstacleID  uint64

	pendingHits []ProjectileHit
}

type controllerActor struct {
	entityID    uint64
	pos         wire.Vec3
	orientation wire.Quat
	radius      float32
	height      float32
}

type obstacleActor struct {
	entityID uint64
	pos      wire.Vec3
	radius   float32
	filter   FilterData
}

type projectileActor struct {
	gameData   uint64
	pos        wire.Vec3
	velocity   wire.Vec3
	radius     float32
	filter     FilterData
	remainingSec float32
	alive      bool
}

// NewReferenceEngine constructs an empty scene.
func NewReferenceEngine() *ReferenceEngine {
	return &ReferenceEngine{
		controllers:     make(map[Handle]*controllerActor),
		staticObstacles: make(map[uint64]*obstacleActor),
		projectiles:     make(map[ActorHandle]*projectileActor),
	}
}

// AddStaticObstacle registers a standing obstacle (a "dense" world prop or
// a "minor" piece of cover/clutter, distinguished purely by the filter data
// the caller assigns it) that sweeps and raycasts can hit. This is scene
// setup, not part of the §4.8 contract, so it is a ReferenceEngine-specific
// method rather than an Engine interface method.
func (e *ReferenceEngine) AddStaticObstacle(pos wire.Vec3, radius float32, filter FilterData) uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.nextObstacleID++
	id := e.nextObstacleID
	e.staticObstacles[id] = &obstacleActor{entityID: id, pos: pos, radius: radius, filter: filter}
	return id
}

func (e *ReferenceEngine) CreateCharacterController(entityID uint64, pos wire.Vec3, radius, height float32) (Handle, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if radius <= 0 || height <= 0 {
		return 0, fmt.Errorf("physics: invalid controller dimensions radius=%f height=%f", radius, height)
	}
	e.nextHandle++
	h := Handle(e.nextHandle)
	e.controllers[h] = &controllerActor{
		entityID:    entityID,
		pos:         pos,
		orientation: wire.Quat{W: 1},
		radius:      radius,
		height:      height,
	}
	return h, nil
}

func (e *ReferenceEngine) ReleaseCharacterController(h Handle) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.controllers, h)
}

func (e *ReferenceEngine) SetPose(h Handle, pos wire.Vec3, orientation wire.Quat) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if c, ok := e.controllers[h]; ok {
		c.pos = pos
		c.orientation = orientation
	}
}

func (e *ReferenceEngine) GetPosition(h Handle) wire.Vec3 {
	e.mu.Lock()
	defer e.mu.Unlock()
	if c, ok := e.controllers[h]; ok {
		return c.pos
	}
	return wire.Vec3{}
}

// MoveCharacter displaces the controller, clamping against any dense
// obstacle the displacement would tunnel into. Minor obstacles never block
// ordinary movement.
func (e *ReferenceEngine) MoveCharacter(h Handle, displacement wire.Vec3, dt float32) CollisionFlags {
	e.mu.Lock()
	defer e.mu.Unlock()
	c, ok := e.controllers[h]
	if !ok {
		return 0
	}
	target := vecAdd(c.pos, displacement)
	var flags CollisionFlags
	for _, obstacle := range e.staticObstacles {
		if !isDense(obstacle.filter) {
			continue
		}
		minDist := c.radius + obstacle.radius
		if distanceSquared(target, obstacle.pos) < minDist*minDist {
			flags |= CollisionSide
			// Clamp to the obstacle's surface along the approach direction
			// rather than allowing penetration.
			dir := vecNormalize(vecSub(target, obstacle.pos))
			target = vecAdd(obstacle.pos, vecScale(dir, minDist))
		}
	}
	c.pos = target
	return flags
}

func (e *ReferenceEngine) Step(dt float32) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for handle, p := range e.projectiles {
		if !p.alive {
			continue
		}
		p.pos = vecAdd(p.pos, vecScale(p.velocity, dt))
		p.remainingSec -= dt
		if p.remainingSec <= 0 {
			p.alive = false
			delete(e.projectiles, handle)
			continue
		}
		if hit, ok := e.testProjectileHit(p); ok {
			p.alive = false
			delete(e.projectiles, handle)
			e.pendingHits = append(e.pendingHits, ProjectileHit{Projectile: handle, Hit: hit})
		}
	}
}

func (e *ReferenceEngine) testProjectileHit(p *projectileActor) (Hit, bool) {
	for _, c := range e.controllers {
		minDist := p.radius + c.radius
		if distanceSquared(p.pos, c.pos) < minDist*minDist {
			return Hit{EntityID: c.entityID, Point: c.pos, Normal: vecNormalize(vecSub(p.pos, c.pos)), Distance: 0}, true
		}
	}
	for _, o := range e.staticObstacles {
		if !isDense(o.filter) {
			continue
		}
		minDist := p.radius + o.radius
		if distanceSquared(p.pos, o.pos) < minDist*minDist {
			return Hit{EntityID: o.entityID, Point: o.pos, Normal: vecNormalize(vecSub(p.pos, o.pos)), Distance: 0}, true
		}
	}
	return Hit{}, false
}

// SweepCapsule marches a sphere of the given radius (the capsule's
// horizontal cross-section) from start along unitDir up to maxDist,
// reporting the nearest candidate the filter callback classifies as a
// block, while candidates classified as touch are skipped over (in this
// reference engine a touch never stops the sweep) and ignore candidates are
// skipped entirely.
func (e *ReferenceEngine) SweepCapsule(start wire.Vec3, orientation wire.Quat, radius, halfHeight float32, unitDir wire.Vec3, maxDist float32, ignoreEntityID uint64, filter FilterData, cb FilterCallback) (Hit, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	type candidate struct {
		entityID  uint64
		pos       wire.Vec3
		radius    float32
		shapeData FilterData
	}
	var candidates []candidate
	for _, c := range e.controllers {
		if c.entityID == ignoreEntityID {
			continue
		}
		candidates = append(candidates, candidate{c.entityID, c.pos, c.radius, FilterData{}})
	}
	for _, o := range e.staticObstacles {
		candidates = append(candidates, candidate{o.entityID, o.pos, o.radius, o.filter})
	}

	var best Hit
	bestDist := maxDist
	found := false
	for _, cand := range candidates {
		toCand := vecSub(cand.pos, start)
		along := vecDot(toCand, unitDir)
		if along < 0 || along > bestDist+cand.radius+radius {
			continue
		}
		closest := vecAdd(start, vecScale(unitDir, along))
		perpSq := distanceSquared(closest, cand.pos)
		combined := radius + cand.radius
		if perpSq > combined*combined {
			continue
		}
		// Back off from the closest-approach point to where the two spheres
		// first touch.
		dist := along - float32(math.Sqrt(float64(combined*combined-perpSq)))
		if dist < 0 {
			dist = 0
		}
		if dist > bestDist {
			continue
		}

		action := FilterBlock
		if cb != nil {
			action = cb(cand.shapeData, cand.entityID)
		}
		if action == FilterIgnore {
			continue
		}
		if action == FilterTouch {
			continue
		}
		bestDist = dist
		best = Hit{
			EntityID: cand.entityID,
			Point:    vecAdd(start, vecScale(unitDir, dist)),
			Normal:   vecNormalize(vecSub(vecAdd(start, vecScale(unitDir, dist)), cand.pos)),
			Distance: dist,
		}
		found = true
	}
	return best, found
}

func (e *ReferenceEngine) RaycastSingle(start, unitDir wire.Vec3, maxDist float32, filter FilterData) (Hit, bool) {
	return e.SweepCapsule(start, wire.Quat{W: 1}, 0, 0, unitDir, maxDist, 0, filter, nil)
}

func (e *ReferenceEngine) CreateDynamicProjectile(props ProjectileProps, gameData uint64, start, velocity wire.Vec3) ActorHandle {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.nextHandle++
	h := ActorHandle(e.nextHandle)
	e.projectiles[h] = &projectileActor{
		gameData:     gameData,
		pos:          start,
		velocity:     velocity,
		radius:       props.Radius,
		filter:       props.Filter,
		remainingSec: props.MaxLifetimeSec,
		alive:        true,
	}
	return h
}

func (e *ReferenceEngine) DrainProjectileHits() []ProjectileHit {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.pendingHits) == 0 {
		return nil
	}
	drained := e.pendingHits
	e.pendingHits = nil
	return drained
}

// isDense reports whether a shape's filter data marks it as a dense,
// movement-blocking obstacle rather than a minor, pass-through one. Bit 0
// of Word0 is the dense flag; the remaining words are reserved for gameplay
// categorization (team, damage-type immunity, and so on) that this
// reference engine doesn't interpret itself.
func isDense(f FilterData) bool {
	return f.Word0&0x1 != 0
}

