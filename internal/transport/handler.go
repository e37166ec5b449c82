// Package transport owns the UDP socket, the per-peer reliability state
// table, and the background goroutines that drive retransmission and
// stale-peer reaping. It mirrors the teacher's server.Server: a Start/Stop
// lifecycle, a blocking receive loop run in its own goroutine, and a ticker
// goroutine for periodic maintenance (the teacher's updateLoop and
// sessionCleanupLoop collapse into one reliabilityLoop here since both
// operate over the same peer table).
package transport

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/riftforged/gameserver/internal/metrics"
	"github.com/riftforged/gameserver/internal/reliability"
	"github.com/riftforged/gameserver/internal/wire"
	"github.com/riftforged/gameserver/pkg/logger"
	"go.uber.org/zap"
)

const (
	maxDatagramSize            = 2048
	defaultReliabilityInterval = 20 * time.Millisecond
	defaultStaleTimeout        = 60 * time.Second
)

// PacketHandler is invoked once per accepted inbound packet, after
// reliability bookkeeping and duplicate suppression have already run.
// payload is nil for ack-only or empty-body datagrams.
type PacketHandler func(from Endpoint, h wire.Header, payload wire.Payload)

// PeerLostHandler is invoked when a peer is reaped for inactivity or
// dropped after exhausting its retry budget.
type PeerLostHandler func(from Endpoint)

type peer struct {
	endpoint Endpoint
	state    *reliability.State
}

// Handler binds a UDP socket and manages every peer's reliability state. It
// is safe for concurrent use; the zero value is not usable, use New.
type Handler struct {
	conn *net.UDPConn
	log  *logger.Logger
	mx   *metrics.Collector

	onPacket   PacketHandler
	onPeerLost PeerLostHandler

	reliabilityInterval time.Duration
	staleTimeout        time.Duration
	maxPacketRetries    int

	mu        sync.RWMutex
	peers     map[string]*peer
	nextConnID uint64

	wg     sync.WaitGroup
	cancel context.CancelFunc
	once   sync.Once
}

// Option configures a Handler at construction time.
type Option func(*Handler)

// WithStaleTimeout overrides the default 60s stale-peer timeout.
func WithStaleTimeout(d time.Duration) Option {
	return func(h *Handler) { h.staleTimeout = d }
}

// WithReliabilityInterval overrides the default 20ms maintenance tick.
func WithReliabilityInterval(d time.Duration) Option {
	return func(h *Handler) { h.reliabilityInterval = d }
}

// WithMaxPacketRetries overrides reliability.MaxPacketRetries for every
// peer this Handler tracks.
func WithMaxPacketRetries(n int) Option {
	return func(h *Handler) { h.maxPacketRetries = n }
}

// New binds addr and constructs a Handler. The socket is open but no
// goroutines run until Start is called.
func New(addr string, log *logger.Logger, mx *metrics.Collector, onPacket PacketHandler, onPeerLost PeerLostHandler, opts ...Option) (*Handler, error) {
	udpAddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("transport: resolve %q: %w", addr, err)
	}
	conn, err := net.ListenUDP("udp", udpAddr)
	if err != nil {
		return nil, fmt.Errorf("transport: bind %q: %w", addr, err)
	}
	h := &Handler{
		conn:                conn,
		log:                 log,
		mx:                  mx,
		onPacket:            onPacket,
		onPeerLost:          onPeerLost,
		reliabilityInterval: defaultReliabilityInterval,
		staleTimeout:        defaultStaleTimeout,
		maxPacketRetries:    reliability.MaxPacketRetries,
		peers:               make(map[string]*peer),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h, nil
}

// LocalAddr returns the bound local address.
func (h *Handler) LocalAddr() net.Addr {
	return h.conn.LocalAddr()
}

// Start launches the receive loop and the reliability maintenance loop.
// Safe to call once; a second call is a no-op.
func (h *Handler) Start() {
	if h.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	h.cancel = cancel

	h.wg.Add(2)
	go h.recvLoop(ctx)
	go h.reliabilityLoop(ctx)
}

// Stop idempotently shuts the handler down: it cancels both background
// goroutines, closes the socket (unblocking ReadFromUDP), and waits for
// both to exit.
func (h *Handler) Stop() error {
	var closeErr error
	h.once.Do(func() {
		if h.cancel != nil {
			h.cancel()
		}
		closeErr = h.conn.Close()
		h.wg.Wait()
	})
	return closeErr
}

func (h *Handler) recvLoop(ctx context.Context) {
	defer h.wg.Done()
	buf := make([]byte, maxDatagramSize)
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		n, addr, err := h.conn.ReadFromUDP(buf)
		if err != nil {
			select {
			case <-ctx.Done():
				return
			default:
			}
			h.log.Warn("transport: read error", zap.Error(err))
			continue
		}

		datagram := make([]byte, n)
		copy(datagram, buf[:n])
		from := EndpointFromUDPAddr(addr)
		h.handleDatagram(from, datagram)
	}
}

func (h *Handler) handleDatagram(from Endpoint, datagram []byte) {
	if h.mx != nil {
		h.mx.PacketsReceived.Inc()
	}

	hdr, payload, err := wire.Decode(datagram)
	if err != nil {
		if h.mx != nil {
			h.mx.PacketsDropped.Inc()
		}
		h.log.Debug("transport: discarding malformed datagram", zap.String("from", from.String()), zap.Error(err))
		return
	}

	st := h.getOrCreateState(from)
	relay := reliability.ProcessIncoming(st, time.Now(), hdr, payload != nil)
	if st.ConnectionDroppedByMaxRetries {
		h.dropPeer(from)
		return
	}
	if !relay {
		return
	}
	h.onPacket(from, hdr, payload)
}

func (h *Handler) getOrCreateState(ep Endpoint) *reliability.State {
	key := ep.Key()

	h.mu.RLock()
	p, ok := h.peers[key]
	h.mu.RUnlock()
	if ok {
		return p.state
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if p, ok := h.peers[key]; ok {
		return p.state
	}
	h.nextConnID++
	st := reliability.NewState(h.nextConnID, time.Now())
	st.MaxRetries = h.maxPacketRetries
	h.peers[key] = &peer{endpoint: ep, state: st}
	if h.mx != nil {
		h.mx.ConnectionsActive.Set(float64(len(h.peers)))
	}
	return st
}

func (h *Handler) dropPeer(ep Endpoint) {
	h.mu.Lock()
	_, existed := h.peers[ep.Key()]
	delete(h.peers, ep.Key())
	if h.mx != nil {
		h.mx.ConnectionsActive.Set(float64(len(h.peers)))
	}
	h.mu.Unlock()

	if existed {
		if h.mx != nil {
			h.mx.ConnectionsDropped.Inc()
		}
		if h.onPeerLost != nil {
			h.onPeerLost(ep)
		}
	}
}

// SendReliable encodes and sends payload with the reliable flag set,
// queuing it for retransmission until acknowledged.
func (h *Handler) SendReliable(to Endpoint, payload wire.Payload) error {
	return h.send(to, payload, wire.FlagReliable)
}

// SendUnreliable encodes and sends payload with no reliability guarantees.
func (h *Handler) SendUnreliable(to Endpoint, payload wire.Payload) error {
	return h.send(to, payload, 0)
}

func (h *Handler) send(to Endpoint, payload wire.Payload, flags uint8) error {
	st := h.getOrCreateState(to)
	var msgType wire.MessageType
	if payload != nil {
		msgType = payload.Type()
	}
	buf := reliability.PrepareOutgoing(st, time.Now(), msgType, payload, flags)
	return h.writeDatagram(to, buf)
}

func (h *Handler) writeDatagram(to Endpoint, buf []byte) error {
	_, err := h.conn.WriteToUDP(buf, to.UDPAddr())
	if err != nil {
		h.log.Warn("transport: send failed", zap.String("to", to.String()), zap.Error(err))
		return fmt.Errorf("transport: send to %s: %w", to, err)
	}
	if h.mx != nil {
		h.mx.PacketsSent.Inc()
	}
	return nil
}

func (h *Handler) reliabilityLoop(ctx context.Context) {
	defer h.wg.Done()
	ticker := time.NewTicker(h.reliabilityInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			h.runMaintenancePass()
		}
	}
}

func (h *Handler) runMaintenancePass() {
	now := time.Now()

	h.mu.RLock()
	snapshot := make([]*peer, 0, len(h.peers))
	for _, p := range h.peers {
		snapshot = append(snapshot, p)
	}
	h.mu.RUnlock()

	var stale []Endpoint
	for _, p := range snapshot {
		for _, buf := range reliability.SelectRetransmits(p.state, now) {
			if h.mx != nil {
				h.mx.PacketsRetransmitted.Inc()
			}
			_ = h.writeDatagram(p.endpoint, buf)
		}
		if p.state.ConnectionDroppedByMaxRetries {
			stale = append(stale, p.endpoint)
			continue
		}
		if reliability.PendingAckDue(p.state) {
			_ = h.send(p.endpoint, nil, wire.FlagAckOnly)
		}
		if reliability.IsStale(p.state, now, h.staleTimeout) {
			stale = append(stale, p.endpoint)
		}
	}

	for _, ep := range stale {
		h.dropPeer(ep)
	}
}
