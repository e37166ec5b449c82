package transport

import (
	"net"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/riftforged/gameserver/internal/metrics"
	"github.com/riftforged/gameserver/internal/wire"
	"github.com/riftforged/gameserver/pkg/logger"
	"github.com/stretchr/testify/require"
)

func TestHandlerDeliversReliablePacket(t *testing.T) {
	log := logger.NewNop()

	var mu sync.Mutex
	var received []wire.Payload

	server, err := New("127.0.0.1:0", log, nil, func(from Endpoint, h wire.Header, p wire.Payload) {
		mu.Lock()
		received = append(received, p)
		mu.Unlock()
	}, nil, WithReliabilityInterval(5*time.Millisecond))
	require.NoError(t, err)
	server.Start()
	defer server.Stop()

	client, err := New("127.0.0.1:0", log, nil, func(Endpoint, wire.Header, wire.Payload) {}, nil,
		WithReliabilityInterval(5*time.Millisecond))
	require.NoError(t, err)
	client.Start()
	defer client.Stop()

	serverEndpoint := EndpointFromUDPAddr(server.LocalAddr().(*net.UDPAddr))

	err = client.SendReliable(serverEndpoint, wire.PingC2S{ClientTimestamp: 7})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(received) == 1
	}, time.Second, 10*time.Millisecond)

	mu.Lock()
	require.Equal(t, wire.PingC2S{ClientTimestamp: 7}, received[0])
	mu.Unlock()
}

func TestHandlerRetransmitsUntilAcked(t *testing.T) {
	log := logger.NewNop()
	mx := metrics.New()

	server, err := New("127.0.0.1:0", log, mx, func(Endpoint, wire.Header, wire.Payload) {}, nil,
		WithReliabilityInterval(5*time.Millisecond))
	require.NoError(t, err)
	server.Start()
	defer server.Stop()

	// The client is never started, so it never reads or acks anything it
	// receives: every send from the server stays unacknowledged and must be
	// retried at its RTO.
	client, err := New("127.0.0.1:0", log, nil, func(Endpoint, wire.Header, wire.Payload) {}, nil,
		WithReliabilityInterval(5*time.Millisecond))
	require.NoError(t, err)
	defer client.Stop()

	clientEndpoint := EndpointFromUDPAddr(client.LocalAddr().(*net.UDPAddr))
	st := server.getOrCreateState(clientEndpoint)
	st.RetransmissionTimeoutMs = 10

	require.NoError(t, server.SendReliable(clientEndpoint, wire.SystemBroadcastS2C{Text: "hi"}))

	require.Eventually(t, func() bool {
		return testutil.ToFloat64(mx.PacketsRetransmitted) >= 1
	}, time.Second, 10*time.Millisecond, "expected at least one retransmission")
}

func TestHandlerStopIsIdempotent(t *testing.T) {
	log := logger.NewNop()
	h, err := New("127.0.0.1:0", log, nil, func(Endpoint, wire.Header, wire.Payload) {}, nil)
	require.NoError(t, err)
	h.Start()
	require.NoError(t, h.Stop())
	require.NoError(t, h.Stop())
}
