package sim

import (
	"context"
	"sync"
	"time"

	"github.com/riftforged/gameserver/internal/gameplay"
	"github.com/riftforged/gameserver/internal/metrics"
	"github.com/riftforged/gameserver/internal/physics"
	"github.com/riftforged/gameserver/internal/session"
	"github.com/riftforged/gameserver/internal/transport"
	"github.com/riftforged/gameserver/internal/wire"
	"github.com/riftforged/gameserver/pkg/logger"
	"go.uber.org/zap"
)

// spawnPosition is the fixed spawn point every joining player is placed at.
// A production build would consult a world/zone service; this core has no
// notion of zones (see SPEC_FULL.md's Non-goals), so every join spawns here.
var spawnPosition = wire.Vec3{}

// projectileSource remembers which player spawned a projectile actor and
// what it does on impact, so DrainProjectileHits results (which only carry
// the physics-level actor handle) can be resolved back to a CombatEvent.
type projectileSource struct {
	SourceID      uint64
	Damage        wire.DamageInstance
	IsBasicAttack bool
}

// Loop is the single authoritative simulation worker described in §4.7: it
// owns every PlayerState, drains the join/disconnect/command queues once
// per fixed-rate tick, steps physics, and broadcasts dirty state. Grounded
// on the teacher's server.updateLoop (a ticker-driven goroutine with a
// cancel-aware sleep and an idempotent Stop), generalized from one Tick
// call into the seven-step body §4.7 specifies.
type Loop struct {
	tickInterval time.Duration
	tickRateHz   uint32
	welcomeText  string

	registry  *session.Registry
	engine    physics.Engine
	combat    *gameplay.CombatSystem
	commands  *CommandQueue
	transport *transport.Handler
	log       *logger.Logger
	mx        *metrics.Collector

	players     map[uint64]*gameplay.PlayerState
	projectiles map[physics.ActorHandle]projectileSource

	cancel context.CancelFunc
	wg     sync.WaitGroup
	once   sync.Once
}

// Config configures a Loop at construction time.
type Config struct {
	TickInterval time.Duration
	TickRateHz   uint32
	WelcomeText  string
}

// NewLoop constructs a simulation Loop. Nothing runs until Start is called.
func NewLoop(cfg Config, registry *session.Registry, engine physics.Engine, commands *CommandQueue, transportHandler *transport.Handler, log *logger.Logger, mx *metrics.Collector, combatSeed int64) *Loop {
	return &Loop{
		tickInterval: cfg.TickInterval,
		tickRateHz:   cfg.TickRateHz,
		welcomeText:  cfg.WelcomeText,
		registry:     registry,
		engine:       engine,
		combat:       gameplay.NewCombatSystem(combatSeed),
		commands:     commands,
		transport:    transportHandler,
		log:          log,
		mx:           mx,
		players:      make(map[uint64]*gameplay.PlayerState),
		projectiles:  make(map[physics.ActorHandle]projectileSource),
	}
}

// Start launches the tick loop in its own goroutine.
func (l *Loop) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	l.cancel = cancel
	l.wg.Add(1)
	go l.run(ctx)
}

// Stop idempotently cancels the loop and waits for it to exit.
func (l *Loop) Stop() {
	l.once.Do(func() {
		if l.cancel != nil {
			l.cancel()
		}
		l.wg.Wait()
	})
}

func (l *Loop) run(ctx context.Context) {
	defer l.wg.Done()
	lastTick := time.Now()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		tickStart := time.Now()
		dt := float32(tickStart.Sub(lastTick).Seconds())
		lastTick = tickStart

		l.processJoins()
		l.processDisconnects()
		l.processCommands(dt)
		l.tickCooldowns(dt)
		l.engine.Step(dt)
		l.drainProjectileHits()
		l.broadcastDirtyState()

		elapsed := time.Since(tickStart)
		if l.mx != nil {
			l.mx.TickDuration.Observe(elapsed.Seconds())
		}

		remaining := l.tickInterval - elapsed
		if remaining <= 0 {
			if l.mx != nil {
				l.mx.TickOverruns.Inc()
			}
			l.log.Warn("sim: tick overran its budget", zap.Duration("elapsed", elapsed), zap.Duration("budget", l.tickInterval))
			continue
		}

		timer := time.NewTimer(remaining)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}

// processJoins implements §4.4's join outcome. The seen set guards against
// two join requests for the same endpoint landing in the same drained
// batch, which session.Registry.IsLoggedIn alone cannot catch since
// neither has been inserted yet.
func (l *Loop) processJoins() {
	requests := l.registry.DrainJoins()
	if len(requests) == 0 {
		return
	}
	seen := make(map[string]bool, len(requests))
	for _, req := range requests {
		key := req.Endpoint.Key()
		if l.registry.IsLoggedIn(req.Endpoint) || seen[key] {
			_ = l.transport.SendReliable(req.Endpoint, wire.JoinFailedS2C{Reason: "already logged in", Code: wire.JoinFailureAlreadyLoggedIn})
			continue
		}
		seen[key] = true

		characterID := req.CharacterID
		if characterID == "" {
			characterID = "unnamed"
		}

		id := l.registry.AllocatePlayerID()
		p := gameplay.NewPlayerState(uint64(id), characterID, spawnPosition)
		handle, err := l.engine.CreateCharacterController(uint64(id), spawnPosition, p.CapsuleRadius, p.CapsuleHalfHeight*2)
		if err != nil {
			l.log.Error("sim: failed to create character controller", zap.Uint64("player_id", uint64(id)), zap.Error(err))
			_ = l.transport.SendReliable(req.Endpoint, wire.JoinFailedS2C{Reason: "server error", Code: wire.JoinFailureServerError})
			continue
		}
		p.ControllerHandle = handle

		l.registry.Insert(req.Endpoint, id)
		l.players[uint64(id)] = p
		if l.mx != nil {
			l.mx.SessionsJoined.Inc()
		}
		_ = l.transport.SendReliable(req.Endpoint, wire.JoinSuccessS2C{PlayerID: uint64(id), WelcomeText: l.welcomeText, TickRateHz: l.tickRateHz})
	}
}

// processDisconnects implements §4.4's disconnect teardown.
func (l *Loop) processDisconnects() {
	for _, req := range l.registry.DrainDisconnects() {
		id, ok := l.registry.Remove(req.Endpoint)
		if !ok {
			continue
		}
		if p, ok := l.players[uint64(id)]; ok {
			l.engine.ReleaseCharacterController(p.ControllerHandle)
			delete(l.players, uint64(id))
		}
		if l.mx != nil {
			l.mx.SessionsLeft.Inc()
		}
	}
}

// processCommands drains the inbound command queue and invokes the
// corresponding gameplay-engine methods, per §4.7 step 4.
func (l *Loop) processCommands(dt float32) {
	cmds := l.commands.Drain()
	if l.mx != nil {
		l.mx.CommandQueueDepth.Set(0)
	}
	for _, cmd := range cmds {
		p, ok := l.players[cmd.PlayerID]
		if !ok {
			continue
		}
		switch cmd.Kind {
		case CommandMovementInput:
			gameplay.ApplyMovementInput(p, l.engine, cmd.Movement, dt)
		case CommandTurnIntent:
			gameplay.ApplyTurnIntent(p, l.engine, cmd.Turn.DeltaDegrees)
		case CommandRiftStepActivation:
			l.handleRiftStep(p, cmd.RiftStep)
		case CommandBasicAttackIntent:
			l.handleBasicAttack(p, cmd.BasicAttack)
		case CommandUseAbility:
			l.handleUseAbility(p, cmd.UseAbility)
		}
	}
}

func (l *Loop) tickCooldowns(dt float32) {
	for _, p := range l.players {
		p.TickCooldowns(dt)
	}
}

func (l *Loop) handleRiftStep(p *gameplay.PlayerState, c wire.RiftStepActivationC2S) {
	outcome := gameplay.ResolveRiftStep(p, l.engine, c.Intent)
	if !outcome.Success {
		return
	}
	l.broadcastReliable(wire.RiftStepInitiatedS2C{
		PlayerID:          p.ID,
		StartPosition:     outcome.StartPosition,
		IntendedTarget:    outcome.IntendedTarget,
		ActualFinal:       outcome.ActualFinal,
		TravelDurationSec: outcome.TravelDurationSec,
		EntryEffects:      outcome.EntryEffects,
		ExitEffects:       outcome.ExitEffects,
	})
}

func (l *Loop) handleBasicAttack(p *gameplay.PlayerState, c wire.BasicAttackIntentC2S) {
	if !p.CanAct() || p.IsAbilityOnCooldown(gameplay.BasicAttackAbilityID) {
		return
	}
	weapon := gameplay.LookupWeapon(p.EquippedWeapon)

	switch weapon.Shape {
	case gameplay.AttackMelee:
		for _, r := range gameplay.ResolveMeleeAttack(p, l.engine, weapon, l.combat, l.players) {
			if !r.Hit {
				continue
			}
			l.broadcastUnreliable(wire.CombatEventS2C{
				EventType:     wire.CombatEventDamageDealt,
				Source:        p.ID,
				Target:        r.TargetID,
				Damage:        wire.DamageInstance{Amount: r.FinalDamage, DamageType: weapon.Damage.DamageType},
				IsKill:        r.WasKill,
				IsBasicAttack: true,
			})
		}
	case gameplay.AttackRanged:
		handle := gameplay.SpawnRangedAttack(p, l.engine, weapon, c.WorldAimDirection)
		l.projectiles[handle] = projectileSource{SourceID: p.ID, Damage: weapon.Damage, IsBasicAttack: true}
		l.broadcastUnreliable(wire.CombatEventS2C{EventType: wire.CombatEventProjectileSpawned, Source: p.ID, IsBasicAttack: true})
	}

	p.SetAbilityCooldown(gameplay.BasicAttackAbilityID, weapon.CooldownSec)
}

func (l *Loop) handleUseAbility(p *gameplay.PlayerState, c wire.UseAbilityC2S) {
	if !p.CanAct() || p.IsAbilityOnCooldown(c.AbilityID) {
		return
	}
	def, ok := gameplay.LookupAbility(c.AbilityID)
	if !ok {
		return
	}

	if def.IsProjectile {
		var targetEntity *gameplay.PlayerState
		if c.HasTargetEntityID {
			targetEntity = l.players[c.TargetEntityID]
		}
		aimDir := gameplay.ResolveAimDirection(p, c.HasTargetPosition, c.TargetPosition, c.HasTargetEntityID, targetEntity)
		asWeapon := gameplay.WeaponProperties{
			Shape: gameplay.AttackRanged, Range: def.Range, Radius: def.Radius,
			Damage: def.Damage, ProjectileSpeed: def.ProjectileSpeed,
		}
		handle := gameplay.SpawnRangedAttack(p, l.engine, asWeapon, aimDir)
		l.projectiles[handle] = projectileSource{SourceID: p.ID, Damage: def.Damage}
		l.broadcastUnreliable(wire.CombatEventS2C{EventType: wire.CombatEventProjectileSpawned, Source: p.ID})
	} else if def.HealAmount > 0 {
		p.HealDamage(def.HealAmount)
	}

	p.SetAbilityCooldown(c.AbilityID, def.CooldownSec)
}

// drainProjectileHits resolves physics-reported projectile impacts back to
// the player that spawned them and emits the resulting CombatEvent.
func (l *Loop) drainProjectileHits() {
	if len(l.projectiles) == 0 {
		return
	}
	for _, ph := range l.engine.DrainProjectileHits() {
		src, ok := l.projectiles[ph.Projectile]
		if !ok {
			continue
		}
		delete(l.projectiles, ph.Projectile)

		attacker, ok := l.players[src.SourceID]
		if !ok {
			continue
		}
		target, ok := l.players[ph.Hit.EntityID]
		if !ok {
			continue
		}

		result := l.combat.ResolveHit(attacker, target, src.Damage)
		if !result.Hit {
			continue
		}
		l.broadcastUnreliable(wire.CombatEventS2C{
			EventType:     wire.CombatEventDamageDealt,
			Source:        attacker.ID,
			Target:        target.ID,
			Damage:        wire.DamageInstance{Amount: result.FinalDamage, DamageType: src.Damage.DamageType},
			IsKill:        result.WasKill,
			IsBasicAttack: src.IsBasicAttack,
		})
	}
}

// broadcastDirtyState implements §4.7 step 6: unicast an EntityStateUpdate
// to each dirty player's own session only.
func (l *Loop) broadcastDirtyState() {
	now := uint64(time.Now().UnixMilli())
	for id, p := range l.players {
		if !p.IsDirty() {
			continue
		}
		ep, ok := l.registry.EndpointFor(session.PlayerID(id))
		if !ok {
			p.ClearDirty()
			continue
		}
		_ = l.transport.SendUnreliable(ep, wire.EntityStateUpdateS2C{
			PlayerID:            p.ID,
			Position:            p.Position,
			Orientation:         p.Orientation,
			CurrentHealth:       p.CurrentHealth,
			MaxHealth:           p.MaxHealth,
			CurrentResource:     p.CurrentResource,
			MaxResource:         p.MaxResource,
			ServerTimestampMs:   now,
			AnimationStateID:    p.AnimationStateID,
			ActiveStatusEffects: p.ActiveStatusCategories(),
		})
		p.ClearDirty()
	}
}

func (l *Loop) broadcastReliable(payload wire.Payload) {
	for _, ep := range l.registry.AllEndpoints() {
		_ = l.transport.SendReliable(ep, payload)
	}
}

func (l *Loop) broadcastUnreliable(payload wire.Payload) {
	for _, ep := range l.registry.AllEndpoints() {
		_ = l.transport.SendUnreliable(ep, payload)
	}
}
