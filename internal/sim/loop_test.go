package sim

import (
	"testing"
	"time"

	"github.com/riftforged/gameserver/internal/gameplay"
	"github.com/riftforged/gameserver/internal/metrics"
	"github.com/riftforged/gameserver/internal/physics"
	"github.com/riftforged/gameserver/internal/session"
	"github.com/riftforged/gameserver/internal/transport"
	"github.com/riftforged/gameserver/internal/wire"
	"github.com/riftforged/gameserver/pkg/logger"
	"github.com/stretchr/testify/require"
)

func newTestLoop(t *testing.T) (*Loop, *session.Registry, *CommandQueue) {
	t.Helper()
	log := logger.NewNop()
	mx := metrics.New()
	th, err := transport.New("127.0.0.1:0", log, mx, nil, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = th.Stop() })

	registry := session.NewRegistry()
	commands := NewCommandQueue()
	l := NewLoop(Config{TickInterval: 10 * time.Millisecond, TickRateHz: 100, WelcomeText: "welcome"}, registry, physics.NewReferenceEngine(), commands, th, log, mx, 1)
	return l, registry, commands
}

func TestProcessJoinsCreatesPlayerAndMapping(t *testing.T) {
	l, registry, _ := newTestLoop(t)
	ep := transport.Endpoint{IP: "127.0.0.1", Port: 9001}
	registry.EnqueueJoin(session.JoinRequest{Endpoint: ep, CharacterID: "hero_1"})

	l.processJoins()

	id, ok := registry.Lookup(ep)
	require.True(t, ok)
	require.Contains(t, l.players, uint64(id))
	require.Equal(t, "hero_1", l.players[uint64(id)].CharacterID)
}

func TestProcessJoinsRejectsDuplicateInSameBatch(t *testing.T) {
	l, registry, _ := newTestLoop(t)
	ep := transport.Endpoint{IP: "127.0.0.1", Port: 9002}
	registry.EnqueueJoin(session.JoinRequest{Endpoint: ep, CharacterID: "a"})
	registry.EnqueueJoin(session.JoinRequest{Endpoint: ep, CharacterID: "b"})

	l.processJoins()

	require.Len(t, l.players, 1)
}

func TestProcessDisconnectsReleasesController(t *testing.T) {
	l, registry, _ := newTestLoop(t)
	ep := transport.Endpoint{IP: "127.0.0.1", Port: 9003}
	registry.EnqueueJoin(session.JoinRequest{Endpoint: ep, CharacterID: "a"})
	l.processJoins()
	require.Len(t, l.players, 1)

	registry.EnqueueDisconnect(session.DisconnectRequest{Endpoint: ep})
	l.processDisconnects()

	require.Empty(t, l.players)
	_, ok := registry.Lookup(ep)
	require.False(t, ok)
}

func TestProcessCommandsAppliesMovement(t *testing.T) {
	l, registry, commands := newTestLoop(t)
	ep := transport.Endpoint{IP: "127.0.0.1", Port: 9004}
	registry.EnqueueJoin(session.JoinRequest{Endpoint: ep, CharacterID: "a"})
	l.processJoins()
	id, _ := registry.Lookup(ep)

	commands.Push(QueuedCommand{PlayerID: uint64(id), Kind: CommandMovementInput, Movement: wire.MovementInputC2S{LocalDirection: wire.Vec3{Y: 1}}})
	l.processCommands(1.0)

	p := l.players[uint64(id)]
	require.Greater(t, p.Position.Y, float32(0))
}

func TestHandleBasicAttackRangedSpawnsTrackedProjectile(t *testing.T) {
	l, registry, _ := newTestLoop(t)
	ep := transport.Endpoint{IP: "127.0.0.1", Port: 9005}
	registry.EnqueueJoin(session.JoinRequest{Endpoint: ep, CharacterID: "a"})
	l.processJoins()
	id, _ := registry.Lookup(ep)
	p := l.players[uint64(id)]
	p.EquippedWeapon = gameplay.WeaponGenericRangedBow

	l.handleBasicAttack(p, wire.BasicAttackIntentC2S{WorldAimDirection: wire.Vec3{Y: 1}})

	require.Len(t, l.projectiles, 1)
	require.True(t, p.IsAbilityOnCooldown(gameplay.BasicAttackAbilityID))
}
