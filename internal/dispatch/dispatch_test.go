package dispatch

import (
	"testing"

	"github.com/riftforged/gameserver/internal/metrics"
	"github.com/riftforged/gameserver/internal/session"
	"github.com/riftforged/gameserver/internal/sim"
	"github.com/riftforged/gameserver/internal/transport"
	"github.com/riftforged/gameserver/internal/wire"
	"github.com/riftforged/gameserver/pkg/logger"
	"github.com/stretchr/testify/require"
)

func newTestDispatcher(t *testing.T) (*Dispatcher, *session.Registry, *sim.CommandQueue) {
	t.Helper()
	log := logger.NewNop()
	mx := metrics.New()
	th, err := transport.New("127.0.0.1:0", log, mx, nil, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = th.Stop() })

	registry := session.NewRegistry()
	commands := sim.NewCommandQueue()
	return New(registry, commands, th, log, mx), registry, commands
}

func TestHandleJoinRequestEnqueuesJoin(t *testing.T) {
	d, registry, _ := newTestDispatcher(t)
	ep := transport.Endpoint{IP: "127.0.0.1", Port: 9101}

	d.Handle(ep, wire.Header{MessageType: wire.MsgJoinRequest}, wire.JoinRequestC2S{CharacterID: "hero_1"})

	joins := registry.DrainJoins()
	require.Len(t, joins, 1)
	require.Equal(t, "hero_1", joins[0].CharacterID)
}

func TestHandleDropsNonJoinMessageFromUnjoinedEndpoint(t *testing.T) {
	d, _, commands := newTestDispatcher(t)
	ep := transport.Endpoint{IP: "127.0.0.1", Port: 9102}

	d.Handle(ep, wire.Header{MessageType: wire.MsgMovementInput}, wire.MovementInputC2S{})

	require.Empty(t, commands.Drain())
}

func TestHandleMovementInputPushesCommandForLoggedInPlayer(t *testing.T) {
	d, registry, commands := newTestDispatcher(t)
	ep := transport.Endpoint{IP: "127.0.0.1", Port: 9103}
	registry.Insert(ep, registry.AllocatePlayerID())

	d.Handle(ep, wire.Header{MessageType: wire.MsgMovementInput}, wire.MovementInputC2S{IsSprinting: true})

	cmds := commands.Drain()
	require.Len(t, cmds, 1)
	require.Equal(t, sim.CommandMovementInput, cmds[0].Kind)
	require.True(t, cmds[0].Movement.IsSprinting)
}

func TestHandlePeerLostEnqueuesDisconnect(t *testing.T) {
	d, registry, _ := newTestDispatcher(t)
	ep := transport.Endpoint{IP: "127.0.0.1", Port: 9104}

	d.HandlePeerLost(ep)

	require.Len(t, registry.DrainDisconnects(), 1)
}
