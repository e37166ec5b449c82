// Package reliability implements the reliable-UDP layer: per-peer sequence
// tracking, ACK bitfields, RTT/RTO estimation and retransmission selection.
// It mirrors the shape of the teacher's protocol.Session (one struct per
// remote peer, fields protected by a single mutex) generalized from RakNet's
// ordering/split-packet bookkeeping to the simpler send/ack/retry state this
// spec's wire layer requires.
package reliability

import (
	"sync"
	"time"
)

// RTT/RTO estimation constants, grounded on
// original_source/NetworkEngine/ReliableConnectionState.h. These implement
// the RFC 6298 smoothing algorithm exactly.
const (
	rttAlpha       = 0.125
	rttBeta        = 0.250
	rtoK           = 4.0
	initialRTTMs   = 200.0
	MinRTOMs       = 100.0
	MaxRTOMs       = 3000.0
	MaxPacketRetries = 10
)

// SentPacketRecord is an unacknowledged reliable packet awaiting ACK or
// retransmission.
type SentPacketRecord struct {
	Sequence  uint32
	TimeSent  time.Time
	Data      []byte
	Retries   int
	IsAckOnly bool
}

// State is the per-peer reliability bookkeeping. All fields are protected
// by Mu; callers must not read or write them without holding it. A State is
// created once per Endpoint and lives in the transport layer's connection
// table.
type State struct {
	Mu sync.Mutex

	ConnectionID uint64

	NextOutgoingSequence uint32
	Unacked              []SentPacketRecord

	HighestReceivedSequence uint32
	ReceivedBitfield        uint32
	HasReceivedAny          bool
	HasPendingAckToSend     bool

	LastSentTime     time.Time
	LastReceivedTime time.Time

	SmoothedRTTMs           float64
	RTTVarianceMs           float64
	RetransmissionTimeoutMs float64
	IsFirstRTTSample        bool

	ConnectionDroppedByMaxRetries bool
	IsConnected                   bool

	// MaxRetries overrides MaxPacketRetries for this peer. Set from
	// NewState's default and adjustable by the transport layer's
	// configured retry budget before the peer sends its first packet.
	MaxRetries int
}

// NewState constructs a State for a newly observed peer, seeded with the
// original's default initial RTT and RTO.
func NewState(connectionID uint64, now time.Time) *State {
	return &State{
		ConnectionID:            connectionID,
		IsFirstRTTSample:        true,
		SmoothedRTTMs:           initialRTTMs,
		RetransmissionTimeoutMs: initialRTTMs,
		IsConnected:             true,
		LastReceivedTime:        now,
		LastSentTime:            now,
		MaxRetries:              MaxPacketRetries,
	}
}

// applyRTTSampleLocked folds a single round-trip measurement into the
// smoothed RTT/RTO estimate per RFC 6298. Mu must already be held.
func (s *State) applyRTTSampleLocked(measuredMs float64) {
	if s.IsFirstRTTSample {
		s.SmoothedRTTMs = measuredMs
		s.RTTVarianceMs = measuredMs / 2
		s.IsFirstRTTSample = false
	} else {
		delta := measuredMs - s.SmoothedRTTMs
		if delta < 0 {
			delta = -delta
		}
		s.RTTVarianceMs = (1-rttBeta)*s.RTTVarianceMs + rttBeta*delta
		s.SmoothedRTTMs = (1-rttAlpha)*s.SmoothedRTTMs + rttAlpha*measuredMs
	}
	rto := s.SmoothedRTTMs + rtoK*s.RTTVarianceMs
	if rto < MinRTOMs {
		rto = MinRTOMs
	} else if rto > MaxRTOMs {
		rto = MaxRTOMs
	}
	s.RetransmissionTimeoutMs = rto
}
