package wire

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPayloadRoundTrip(t *testing.T) {
	cases := []Payload{
		PingC2S{ClientTimestamp: 1000},
		JoinRequestC2S{CharacterID: "hero_1"},
		MovementInputC2S{ClientTimestamp: 5, LocalDirection: Vec3{X: 0, Y: 1, Z: 0}, IsSprinting: true},
		TurnIntentC2S{ClientTimestamp: 5, DeltaDegrees: 45.5},
		RiftStepActivationC2S{ClientTimestamp: 5, Intent: RiftStepIntentForward},
		BasicAttackIntentC2S{ClientTimestamp: 5, WorldAimDirection: Vec3{X: 1}, HasTargetEntityID: true, TargetEntityID: 77},
		UseAbilityC2S{ClientTimestamp: 5, AbilityID: 3, HasTargetPosition: true, TargetPosition: Vec3{Y: 2}},
		PongS2C{ClientTimestamp: 1000, ServerTimestampMs: 2000},
		JoinSuccessS2C{PlayerID: 7, WelcomeText: "hi", TickRateHz: 100},
		JoinFailedS2C{Reason: "already logged in", Code: JoinFailureAlreadyLoggedIn},
		EntityStateUpdateS2C{
			PlayerID: 9, Position: Vec3{1, 2, 3}, Orientation: Quat{0, 0, 0, 1},
			CurrentHealth: 80, MaxHealth: 100, CurrentResource: 10, MaxResource: 50,
			ServerTimestampMs: 12345, AnimationStateID: 2, ActiveStatusEffects: []uint32{1, 2, 3},
		},
		RiftStepInitiatedS2C{
			PlayerID: 1, StartPosition: Vec3{0, 0, 0}, IntendedTarget: Vec3{0, 5, 0}, ActualFinal: Vec3{0, 2.7, 0},
			TravelDurationSec: 0.2,
			EntryEffects:      []RiftStepEffect{{Type: RiftStepEffectAreaStun, Radius: 2}},
			ExitEffects:       []RiftStepEffect{{Type: RiftStepEffectAreaDamage, Damage: DamageInstance{Amount: 10}}},
		},
		CombatEventS2C{EventType: CombatEventDamageDealt, Source: 1, Target: 2, Damage: DamageInstance{Amount: 15, DamageType: DamageTypeFrost}, IsBasicAttack: true},
		SystemBroadcastS2C{Text: "server restarting"},
	}

	for _, original := range cases {
		body := EncodePayload(original)
		decoded, err := DecodePayload(original.Type(), body)
		require.NoError(t, err)
		require.Equal(t, original, decoded)
	}
}

func TestDecodePayloadUnknownTag(t *testing.T) {
	_, err := DecodePayload(MessageType(9999), nil)
	require.Error(t, err)
}

func TestEnvelopeRoundTrip(t *testing.T) {
	h := Header{ProtocolVersion: CurrentProtocolVersion, Flags: FlagReliable, Sequence: 3}
	payload := PingC2S{ClientTimestamp: 42}

	datagram := Encode(h, payload)
	decodedHeader, decodedPayload, err := Decode(datagram)
	require.NoError(t, err)
	require.Equal(t, MsgPing, decodedHeader.MessageType)
	require.Equal(t, payload, decodedPayload)
}

func TestDecodeRejectsVersionMismatch(t *testing.T) {
	h := Header{ProtocolVersion: 0x1, Sequence: 1}
	datagram := Encode(h, PingC2S{})
	_, _, err := Decode(datagram)
	require.Error(t, err)
}

func TestDecodeAckOnlyRejectsPayload(t *testing.T) {
	h := Header{ProtocolVersion: CurrentProtocolVersion, Flags: FlagAckOnly}
	datagram := EncodeHeader(h)
	datagram = append(datagram, 0x01) // stray byte after an ack-only header
	_, _, err := Decode(datagram)
	require.Error(t, err)
}

func TestDecodeShortDatagramDiscarded(t *testing.T) {
	_, _, err := Decode([]byte{0x01, 0x02})
	require.Error(t, err)
}
