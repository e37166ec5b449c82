package reliability

import (
	"time"

	"github.com/riftforged/gameserver/internal/wire"
)

// PrepareOutgoing builds a datagram for the given payload and flags,
// stamping the header's ack/ack-bitfield from the current receive state and,
// for reliable packets, assigning the next outgoing sequence number and
// queuing the packet for retransmission until acknowledged. Grounded on
// original_source/NetworkEngine/UDPReliabilityProtocol.cpp's
// PrepareOutgoingPacket.
func PrepareOutgoing(state *State, now time.Time, msgType wire.MessageType, payload wire.Payload, flags uint8) []byte {
	state.Mu.Lock()
	defer state.Mu.Unlock()

	if flags&wire.FlagAckOnly != 0 {
		payload = nil
	}

	h := wire.Header{
		ProtocolVersion: wire.CurrentProtocolVersion,
		Flags:           flags,
		Ack:             state.HighestReceivedSequence,
		AckBitfield:     state.ReceivedBitfield,
		MessageType:     msgType,
	}
	if flags&wire.FlagReliable != 0 {
		h.Sequence = state.NextOutgoingSequence
		state.NextOutgoingSequence++
	}

	buf := wire.Encode(h, payload)

	if flags&wire.FlagReliable != 0 {
		state.Unacked = append(state.Unacked, SentPacketRecord{
			Sequence:  h.Sequence,
			TimeSent:  now,
			Data:      buf,
			IsAckOnly: flags&wire.FlagAckOnly != 0,
		})
	}

	state.HasPendingAckToSend = false
	state.LastSentTime = now
	return buf
}

// ProcessIncoming folds a received header's ACK information into the peer's
// unacknowledged-send list (removing acked entries and, for first-attempt
// packets, sampling RTT) and updates the peer's view of the remote's
// reliable sequence stream. It returns whether the accompanying payload (if
// any) should be relayed to the dispatcher — false for duplicates and
// packets too old to fit the ACK bitfield window.
//
// Grounded on UDPReliabilityProtocol.cpp's ProcessIncomingPacketHeader, with
// one deliberate correction: the original's equal-to-highest branch treats
// a peer's very first reliable packet (sequence 0, against a freshly-zeroed
// HighestReceivedSequenceNumberFromRemote) as a duplicate and drops it. This
// violates the invariant that every reliable message is relayed exactly
// once, so HasReceivedAny tracks whether any reliable packet has been seen
// yet and the first one is always relayed.
func ProcessIncoming(state *State, now time.Time, h wire.Header, hasPayload bool) (shouldRelay bool) {
	state.Mu.Lock()
	defer state.Mu.Unlock()

	remoteAck := h.Ack
	remoteBits := h.AckBitfield

	kept := state.Unacked[:0]
	for _, rec := range state.Unacked {
		acked := false
		if rec.Sequence == remoteAck {
			acked = true
		} else if rec.Sequence < remoteAck {
			diff := remoteAck - rec.Sequence
			if diff > 0 && diff <= 32 {
				bitIndex := diff - 1
				if remoteBits&(1<<bitIndex) != 0 {
					acked = true
				}
			}
		}
		if acked {
			if rec.Retries == 0 {
				measuredMs := float64(now.Sub(rec.TimeSent)) / float64(time.Millisecond)
				state.applyRTTSampleLocked(measuredMs)
			}
			continue
		}
		kept = append(kept, rec)
	}
	state.Unacked = kept

	ackUpdated := false

	if h.HasFlag(wire.FlagReliable) {
		incomingSeq := h.Sequence
		switch {
		case !state.HasReceivedAny:
			state.HasReceivedAny = true
			state.HighestReceivedSequence = incomingSeq
			shouldRelay = true
			ackUpdated = true

		case wire.SequenceGreaterThan(incomingSeq, state.HighestReceivedSequence):
			diff := incomingSeq - state.HighestReceivedSequence
			if diff >= 32 {
				state.ReceivedBitfield = 0
			} else {
				state.ReceivedBitfield <<= diff
				state.ReceivedBitfield |= 1 << (diff - 1)
			}
			state.HighestReceivedSequence = incomingSeq
			shouldRelay = true
			ackUpdated = true

		case incomingSeq == state.HighestReceivedSequence:
			// duplicate of the current highest, discard

		default:
			diff := state.HighestReceivedSequence - incomingSeq
			if diff > 0 && diff <= 32 {
				bit := uint32(1) << (diff - 1)
				if state.ReceivedBitfield&bit == 0 {
					state.ReceivedBitfield |= bit
					shouldRelay = true
					ackUpdated = true
				}
			}
		}
	} else if hasPayload {
		shouldRelay = true
	}

	if ackUpdated {
		state.HasPendingAckToSend = true
	}
	state.LastReceivedTime = now
	return shouldRelay
}

// SelectRetransmits scans the unacknowledged-send list for entries whose RTO
// has elapsed, bumping their retry count and resetting their send time for
// the packets due to go out again. A packet that has already exhausted the
// peer's MaxRetries budget is dropped from the list and causes
// ConnectionDroppedByMaxRetries to be set, signaling the transport layer to
// tear the peer down.
func SelectRetransmits(state *State, now time.Time) [][]byte {
	state.Mu.Lock()
	defer state.Mu.Unlock()

	var due [][]byte
	kept := state.Unacked[:0]
	for _, rec := range state.Unacked {
		elapsedMs := float64(now.Sub(rec.TimeSent)) / float64(time.Millisecond)
		if elapsedMs < state.RetransmissionTimeoutMs {
			kept = append(kept, rec)
			continue
		}
		if rec.Retries >= state.MaxRetries {
			state.ConnectionDroppedByMaxRetries = true
			continue
		}
		rec.Retries++
		rec.TimeSent = now
		due = append(due, rec.Data)
		kept = append(kept, rec)
	}
	state.Unacked = kept
	return due
}

// PendingAckDue reports whether the peer has reliable data pending
// acknowledgement with no outgoing traffic yet scheduled to carry it,
// meaning the caller should send a dedicated ACK-only packet.
func PendingAckDue(state *State) bool {
	state.Mu.Lock()
	defer state.Mu.Unlock()
	return state.HasPendingAckToSend
}

// IsStale reports whether the peer has been silent long enough (with no
// packets pending acknowledgement) that the transport layer should reap it.
func IsStale(state *State, now time.Time, timeout time.Duration) bool {
	state.Mu.Lock()
	defer state.Mu.Unlock()
	if state.ConnectionDroppedByMaxRetries {
		return true
	}
	return len(state.Unacked) == 0 && now.Sub(state.LastReceivedTime) > timeout
}
