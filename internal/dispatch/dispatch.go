// Package dispatch implements the §4.5 dispatcher: resolving the calling
// player from its endpoint, enforcing the join/non-join player-nil rules,
// and translating each recognized C2S message into either an immediate S2C
// reply (Ping, JoinRequest's failure paths) or a sim.QueuedCommand pushed
// onto the simulation thread's command queue. Grounded on the teacher's
// source/protocol/rpc.go dispatch table (a message-type-keyed switch
// calling into narrow per-message handlers), generalized from RPC-style
// request/response to this core's queue-and-drain model.
package dispatch

import (
	"time"

	"github.com/riftforged/gameserver/internal/metrics"
	"github.com/riftforged/gameserver/internal/session"
	"github.com/riftforged/gameserver/internal/sim"
	"github.com/riftforged/gameserver/internal/transport"
	"github.com/riftforged/gameserver/internal/wire"
	"github.com/riftforged/gameserver/pkg/logger"
	"go.uber.org/zap"
)

// Dispatcher wires an inbound PacketHandler (registered with
// transport.New) to the session registry and the simulation command queue.
type Dispatcher struct {
	registry  *session.Registry
	commands  *sim.CommandQueue
	transport *transport.Handler
	log       *logger.Logger
	mx        *metrics.Collector
}

// New constructs a Dispatcher. transportHandler is the same Handler the
// Dispatcher's Handle method will be registered against as its
// PacketHandler — it is needed here so immediate replies (Pong,
// JoinFailed) can be sent without round-tripping through the simulation
// queue. transportHandler may be nil at construction time to break the
// construction cycle (transport.New itself requires a PacketHandler); call
// SetTransport before starting the transport's receive loop.
func New(registry *session.Registry, commands *sim.CommandQueue, transportHandler *transport.Handler, log *logger.Logger, mx *metrics.Collector) *Dispatcher {
	return &Dispatcher{registry: registry, commands: commands, transport: transportHandler, log: log, mx: mx}
}

// SetTransport binds the transport.Handler a Dispatcher constructed with a
// nil transport will use. Must be called before the transport's Start.
func (d *Dispatcher) SetTransport(transportHandler *transport.Handler) {
	d.transport = transportHandler
}

// Handle implements transport.PacketHandler. It is invoked once per
// accepted inbound datagram, after reliability bookkeeping has already
// discarded duplicates. Reliable packets are relayed in arrival order, which
// may differ from sequence order within the 32-packet window. payload may be
// nil for ack-only packets, which carry nothing to dispatch.
func (d *Dispatcher) Handle(from transport.Endpoint, h wire.Header, payload wire.Payload) {
	if payload == nil {
		return
	}

	player, loggedIn := d.registry.Lookup(from)

	if h.MessageType == wire.MsgJoinRequest {
		if loggedIn {
			_ = d.transport.SendReliable(from, wire.JoinFailedS2C{Reason: "already logged in", Code: wire.JoinFailureAlreadyLoggedIn})
			return
		}
		req, ok := payload.(wire.JoinRequestC2S)
		if !ok {
			_ = d.transport.SendReliable(from, wire.JoinFailedS2C{Reason: "malformed join request", Code: wire.JoinFailureMalformed})
			return
		}
		d.registry.EnqueueJoin(session.JoinRequest{Endpoint: from, CharacterID: req.CharacterID})
		return
	}

	if !loggedIn {
		d.log.Debug("dispatch: dropping message from unjoined endpoint", zap.String("from", from.String()), zap.Uint16("type", uint16(h.MessageType)))
		if d.mx != nil {
			d.mx.PacketsDropped.Inc()
		}
		return
	}

	playerID := uint64(player)

	switch p := payload.(type) {
	case wire.PingC2S:
		_ = d.transport.SendUnreliable(from, wire.PongS2C{ClientTimestamp: p.ClientTimestamp, ServerTimestampMs: uint64(time.Now().UnixMilli())})

	case wire.MovementInputC2S:
		d.push(sim.QueuedCommand{PlayerID: playerID, Kind: sim.CommandMovementInput, Movement: p})

	case wire.TurnIntentC2S:
		d.push(sim.QueuedCommand{PlayerID: playerID, Kind: sim.CommandTurnIntent, Turn: p})

	case wire.RiftStepActivationC2S:
		d.push(sim.QueuedCommand{PlayerID: playerID, Kind: sim.CommandRiftStepActivation, RiftStep: p})

	case wire.BasicAttackIntentC2S:
		d.push(sim.QueuedCommand{PlayerID: playerID, Kind: sim.CommandBasicAttackIntent, BasicAttack: p})

	case wire.UseAbilityC2S:
		d.push(sim.QueuedCommand{PlayerID: playerID, Kind: sim.CommandUseAbility, UseAbility: p})

	default:
		d.log.Debug("dispatch: unhandled payload type", zap.Uint16("type", uint16(h.MessageType)))
	}
}

func (d *Dispatcher) push(cmd sim.QueuedCommand) {
	d.commands.Push(cmd)
	if d.mx != nil {
		d.mx.CommandQueueDepth.Set(float64(d.commands.Len()))
	}
}

// HandlePeerLost implements transport.PeerLostHandler: it enqueues a
// disconnect request for the simulation thread to process on its next
// tick, the same path an explicit client-initiated disconnect would take.
func (d *Dispatcher) HandlePeerLost(from transport.Endpoint) {
	d.registry.EnqueueDisconnect(session.DisconnectRequest{Endpoint: from})
}
