package reliability

import (
	"testing"
	"time"

	"github.com/riftforged/gameserver/internal/wire"
	"github.com/stretchr/testify/require"
)

func TestPrepareOutgoingReliableAssignsSequenceAndQueues(t *testing.T) {
	now := time.Unix(0, 0)
	state := NewState(1, now)

	buf := PrepareOutgoing(state, now, wire.MsgPing, wire.PingC2S{ClientTimestamp: 5}, wire.FlagReliable)
	require.NotEmpty(t, buf)
	require.Equal(t, uint32(1), state.NextOutgoingSequence)
	require.Len(t, state.Unacked, 1)
	require.Equal(t, uint32(0), state.Unacked[0].Sequence)
	require.False(t, state.HasPendingAckToSend)

	h, payload, err := wire.Decode(buf)
	require.NoError(t, err)
	require.Equal(t, uint32(0), h.Sequence)
	require.Equal(t, wire.PingC2S{ClientTimestamp: 5}, payload)
}

func TestPrepareOutgoingUnreliableDoesNotQueue(t *testing.T) {
	now := time.Unix(0, 0)
	state := NewState(1, now)

	PrepareOutgoing(state, now, wire.MsgPing, wire.PingC2S{}, 0)
	require.Empty(t, state.Unacked)
	require.Equal(t, uint32(0), state.NextOutgoingSequence)
}

func TestPrepareOutgoingAckOnlyDropsPayload(t *testing.T) {
	now := time.Unix(0, 0)
	state := NewState(1, now)
	state.HighestReceivedSequence = 7
	state.ReceivedBitfield = 0x3

	buf := PrepareOutgoing(state, now, wire.MsgPong, wire.PongS2C{ServerTimestampMs: 99}, wire.FlagAckOnly)
	h, payload, err := wire.Decode(buf)
	require.NoError(t, err)
	require.Nil(t, payload)
	require.Equal(t, uint32(7), h.Ack)
	require.Equal(t, uint32(0x3), h.AckBitfield)
}

func TestProcessIncomingFirstPacketAlwaysRelayed(t *testing.T) {
	now := time.Unix(0, 0)
	state := NewState(1, now)

	h := wire.Header{Flags: wire.FlagReliable, Sequence: 0}
	relay := ProcessIncoming(state, now, h, true)
	require.True(t, relay, "a peer's very first reliable packet must always be relayed")
	require.True(t, state.HasPendingAckToSend)
	require.Equal(t, uint32(0), state.HighestReceivedSequence)
}

func TestProcessIncomingDuplicateOfHighestDiscarded(t *testing.T) {
	now := time.Unix(0, 0)
	state := NewState(1, now)

	h := wire.Header{Flags: wire.FlagReliable, Sequence: 5}
	require.True(t, ProcessIncoming(state, now, h, true))
	state.HasPendingAckToSend = false

	require.False(t, ProcessIncoming(state, now, h, true))
	require.False(t, state.HasPendingAckToSend)
}

func TestProcessIncomingOutOfOrderAcceptedOnce(t *testing.T) {
	now := time.Unix(0, 0)
	state := NewState(1, now)

	require.True(t, ProcessIncoming(state, now, wire.Header{Flags: wire.FlagReliable, Sequence: 10}, true))
	require.Equal(t, uint32(10), state.HighestReceivedSequence)

	// Sequence 8 arrives late: within the 32-bit window, accepted once.
	require.True(t, ProcessIncoming(state, now, wire.Header{Flags: wire.FlagReliable, Sequence: 8}, true))
	// A second delivery of the same out-of-order packet is a duplicate.
	require.False(t, ProcessIncoming(state, now, wire.Header{Flags: wire.FlagReliable, Sequence: 8}, true))
	// The highest tracked sequence is unaffected by an older arrival.
	require.Equal(t, uint32(10), state.HighestReceivedSequence)
}

func TestProcessIncomingTooOldDiscarded(t *testing.T) {
	now := time.Unix(0, 0)
	state := NewState(1, now)
	require.True(t, ProcessIncoming(state, now, wire.Header{Flags: wire.FlagReliable, Sequence: 100}, true))

	require.False(t, ProcessIncoming(state, now, wire.Header{Flags: wire.FlagReliable, Sequence: 50}, true))
}

func TestProcessIncomingAcksRemoveFromUnackedAndSampleRTT(t *testing.T) {
	start := time.Unix(0, 0)
	state := NewState(1, start)

	PrepareOutgoing(state, start, wire.MsgPing, wire.PingC2S{}, wire.FlagReliable)
	require.Len(t, state.Unacked, 1)

	later := start.Add(50 * time.Millisecond)
	ProcessIncoming(state, later, wire.Header{Ack: 0, AckBitfield: 0}, false)

	require.Empty(t, state.Unacked)
	require.False(t, state.IsFirstRTTSample)
	require.InDelta(t, 50.0, state.SmoothedRTTMs, 0.001)
}

func TestProcessIncomingAckBitfieldAcksOlderPackets(t *testing.T) {
	start := time.Unix(0, 0)
	state := NewState(1, start)

	PrepareOutgoing(state, start, wire.MsgPing, wire.PingC2S{}, wire.FlagReliable) // seq 0
	PrepareOutgoing(state, start, wire.MsgPing, wire.PingC2S{}, wire.FlagReliable) // seq 1
	require.Len(t, state.Unacked, 2)

	// Remote acks seq 1 directly and seq 0 via bit 0 of the bitfield.
	ProcessIncoming(state, start, wire.Header{Ack: 1, AckBitfield: 0x1}, false)
	require.Empty(t, state.Unacked)
}

func TestSelectRetransmitsRespectsRTOAndMaxRetries(t *testing.T) {
	start := time.Unix(0, 0)
	state := NewState(1, start)
	state.RetransmissionTimeoutMs = 100

	PrepareOutgoing(state, start, wire.MsgPing, wire.PingC2S{}, wire.FlagReliable)

	// Not yet due.
	due := SelectRetransmits(state, start.Add(50*time.Millisecond))
	require.Empty(t, due)

	// Due now; retried once.
	due = SelectRetransmits(state, start.Add(150*time.Millisecond))
	require.Len(t, due, 1)
	require.Equal(t, 1, state.Unacked[0].Retries)

	// Drive past MaxPacketRetries.
	ts := start.Add(150 * time.Millisecond)
	for i := 1; i < MaxPacketRetries; i++ {
		ts = ts.Add(150 * time.Millisecond)
		due = SelectRetransmits(state, ts)
		require.Len(t, due, 1)
	}
	require.False(t, state.ConnectionDroppedByMaxRetries)

	ts = ts.Add(150 * time.Millisecond)
	due = SelectRetransmits(state, ts)
	require.Empty(t, due)
	require.True(t, state.ConnectionDroppedByMaxRetries)
	require.Empty(t, state.Unacked)
}

func TestIsStaleRequiresEmptyUnackedAndTimeout(t *testing.T) {
	start := time.Unix(0, 0)
	state := NewState(1, start)

	require.True(t, IsStale(state, start.Add(61*time.Second), 60*time.Second))

	PrepareOutgoing(state, start, wire.MsgPing, wire.PingC2S{}, wire.FlagReliable)
	require.False(t, IsStale(state, start.Add(61*time.Second), 60*time.Second), "a peer with unacked packets outstanding is not stale")

	state.Unacked = nil
	require.False(t, IsStale(state, start.Add(30*time.Second), 60*time.Second))
	require.True(t, IsStale(state, start.Add(61*time.Second), 60*time.Second))
}

func TestApplyRTTSampleClampsToRTOBounds(t *testing.T) {
	state := NewState(1, time.Unix(0, 0))
	state.applyRTTSampleLocked(0.01)
	require.GreaterOrEqual(t, state.RetransmissionTimeoutMs, MinRTOMs)

	state2 := NewState(1, time.Unix(0, 0))
	state2.applyRTTSampleLocked(10000)
	require.LessOrEqual(t, state2.RetransmissionTimeoutMs, MaxRTOMs)
}
