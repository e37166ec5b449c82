package wire

import "fmt"

// MessageType is the discriminator shared between the envelope header's
// message-type field and the payload union's tag, per §4.1's consistency
// rule.
type MessageType uint16

// Recognized C2S message types.
const (
	MsgPing MessageType = iota + 1
	MsgJoinRequest
	MsgMovementInput
	MsgTurnIntent
	MsgRiftStepActivation
	MsgBasicAttackIntent
	MsgUseAbility
)

// Recognized S2C message types, numbered in a disjoint range so a stray
// header mismatch is easy to spot in logs.
const (
	MsgPong MessageType = iota + 100
	MsgJoinSuccess
	MsgJoinFailed
	MsgEntityStateUpdate
	MsgRiftStepInitiated
	MsgCombatEvent
	MsgSystemBroadcast
)

// Payload is any decoded application message body.
type Payload interface {
	// Type returns the message type this payload encodes as.
	Type() MessageType
	// Encode appends the payload body (without the envelope header) to w.
	Encode(w *Writer)
}

// --- C2S payloads -----------------------------------------------------

type PingC2S struct {
	ClientTimestamp uint64
}

func (PingC2S) Type() MessageType { return MsgPing }
func (p PingC2S) Encode(w *Writer) { w.WriteUint64(p.ClientTimestamp) }

func decodePingC2S(r *Reader) (PingC2S, error) {
	ts, err := r.ReadUint64()
	return PingC2S{ClientTimestamp: ts}, err
}

type JoinRequestC2S struct {
	CharacterID string // empty means absent, per the optional field
}

func (JoinRequestC2S) Type() MessageType { return MsgJoinRequest }
func (p JoinRequestC2S) Encode(w *Writer) { w.WriteString(p.CharacterID) }

func decodeJoinRequestC2S(r *Reader) (JoinRequestC2S, error) {
	id, err := r.ReadString()
	return JoinRequestC2S{CharacterID: id}, err
}

type MovementInputC2S struct {
	ClientTimestamp uint64
	LocalDirection  Vec3
	IsSprinting     bool
}

func (MovementInputC2S) Type() MessageType { return MsgMovementInput }
func (p MovementInputC2S) Encode(w *Writer) {
	w.WriteUint64(p.ClientTimestamp)
	w.WriteVec3(p.LocalDirection)
	w.WriteBool(p.IsSprinting)
}

func decodeMovementInputC2S(r *Reader) (MovementInputC2S, error) {
	var m MovementInputC2S
	var err error
	if m.ClientTimestamp, err = r.ReadUint64(); err != nil {
		return m, err
	}
	if m.LocalDirection, err = r.ReadVec3(); err != nil {
		return m, err
	}
	m.IsSprinting, err = r.ReadBool()
	return m, err
}

type TurnIntentC2S struct {
	ClientTimestamp uint64
	DeltaDegrees    float32
}

func (TurnIntentC2S) Type() MessageType { return MsgTurnIntent }
func (p TurnIntentC2S) Encode(w *Writer) {
	w.WriteUint64(p.ClientTimestamp)
	w.WriteFloat32(p.DeltaDegrees)
}

func decodeTurnIntentC2S(r *Reader) (TurnIntentC2S, error) {
	var t TurnIntentC2S
	var err error
	if t.ClientTimestamp, err = r.ReadUint64(); err != nil {
		return t, err
	}
	t.DeltaDegrees, err = r.ReadFloat32()
	return t, err
}

type RiftStepActivationC2S struct {
	ClientTimestamp uint64
	Intent          RiftStepIntent
}

func (RiftStepActivationC2S) Type() MessageType { return MsgRiftStepActivation }
func (p RiftStepActivationC2S) Encode(w *Writer) {
	w.WriteUint64(p.ClientTimestamp)
	w.WriteByte(byte(p.Intent))
}

func decodeRiftStepActivationC2S(r *Reader) (RiftStepActivationC2S, error) {
	var a RiftStepActivationC2S
	var err error
	if a.ClientTimestamp, err = r.ReadUint64(); err != nil {
		return a, err
	}
	intent, err := r.ReadByte()
	a.Intent = RiftStepIntent(intent)
	return a, err
}

type BasicAttackIntentC2S struct {
	ClientTimestamp    uint64
	WorldAimDirection  Vec3
	HasTargetEntityID  bool
	TargetEntityID     uint64
}

func (BasicAttackIntentC2S) Type() MessageType { return MsgBasicAttackIntent }
func (p BasicAttackIntentC2S) Encode(w *Writer) {
	w.WriteUint64(p.ClientTimestamp)
	w.WriteVec3(p.WorldAimDirection)
	w.WriteBool(p.HasTargetEntityID)
	w.WriteUint64(p.TargetEntityID)
}

func decodeBasicAttackIntentC2S(r *Reader) (BasicAttackIntentC2S, error) {
	var b BasicAttackIntentC2S
	var err error
	if b.ClientTimestamp, err = r.ReadUint64(); err != nil {
		return b, err
	}
	if b.WorldAimDirection, err = r.ReadVec3(); err != nil {
		return b, err
	}
	if b.HasTargetEntityID, err = r.ReadBool(); err != nil {
		return b, err
	}
	b.TargetEntityID, err = r.ReadUint64()
	return b, err
}

type UseAbilityC2S struct {
	ClientTimestamp   uint64
	AbilityID         uint32
	HasTargetEntityID bool
	TargetEntityID    uint64
	HasTargetPosition bool
	TargetPosition    Vec3
}

func (UseAbilityC2S) Type() MessageType { return MsgUseAbility }
func (p UseAbilityC2S) Encode(w *Writer) {
	w.WriteUint64(p.ClientTimestamp)
	w.WriteUint32(p.AbilityID)
	w.WriteBool(p.HasTargetEntityID)
	w.WriteUint64(p.TargetEntityID)
	w.WriteBool(p.HasTargetPosition)
	w.WriteVec3(p.TargetPosition)
}

func decodeUseAbilityC2S(r *Reader) (UseAbilityC2S, error) {
	var u UseAbilityC2S
	var err error
	if u.ClientTimestamp, err = r.ReadUint64(); err != nil {
		return u, err
	}
	if u.AbilityID, err = r.ReadUint32(); err != nil {
		return u, err
	}
	if u.HasTargetEntityID, err = r.ReadBool(); err != nil {
		return u, err
	}
	if u.TargetEntityID, err = r.ReadUint64(); err != nil {
		return u, err
	}
	if u.HasTargetPosition, err = r.ReadBool(); err != nil {
		return u, err
	}
	u.TargetPosition, err = r.ReadVec3()
	return u, err
}

// --- S2C payloads -------------------------------------------------------

type PongS2C struct {
	ClientTimestamp    uint64
	ServerTimestampMs  uint64
}

func (PongS2C) Type() MessageType { return MsgPong }
func (p PongS2C) Encode(w *Writer) {
	w.WriteUint64(p.ClientTimestamp)
	w.WriteUint64(p.ServerTimestampMs)
}

func decodePongS2C(r *Reader) (PongS2C, error) {
	var p PongS2C
	var err error
	if p.ClientTimestamp, err = r.ReadUint64(); err != nil {
		return p, err
	}
	p.ServerTimestampMs, err = r.ReadUint64()
	return p, err
}

type JoinSuccessS2C struct {
	PlayerID    uint64
	WelcomeText string
	TickRateHz  uint32
}

func (JoinSuccessS2C) Type() MessageType { return MsgJoinSuccess }
func (p JoinSuccessS2C) Encode(w *Writer) {
	w.WriteUint64(p.PlayerID)
	w.WriteString(p.WelcomeText)
	w.WriteUint32(p.TickRateHz)
}

func decodeJoinSuccessS2C(r *Reader) (JoinSuccessS2C, error) {
	var j JoinSuccessS2C
	var err error
	if j.PlayerID, err = r.ReadUint64(); err != nil {
		return j, err
	}
	if j.WelcomeText, err = r.ReadString(); err != nil {
		return j, err
	}
	j.TickRateHz, err = r.ReadUint32()
	return j, err
}

type JoinFailedS2C struct {
	Reason string
	Code   JoinFailureCode
}

func (JoinFailedS2C) Type() MessageType { return MsgJoinFailed }
func (p JoinFailedS2C) Encode(w *Writer) {
	w.WriteString(p.Reason)
	w.WriteByte(byte(p.Code))
}

func decodeJoinFailedS2C(r *Reader) (JoinFailedS2C, error) {
	var j JoinFailedS2C
	var err error
	if j.Reason, err = r.ReadString(); err != nil {
		return j, err
	}
	code, err := r.ReadByte()
	j.Code = JoinFailureCode(code)
	return j, err
}

type EntityStateUpdateS2C struct {
	PlayerID           uint64
	Position           Vec3
	Orientation        Quat
	CurrentHealth      int32
	MaxHealth          int32
	CurrentResource    int32
	MaxResource        int32
	ServerTimestampMs  uint64
	AnimationStateID   uint32
	ActiveStatusEffects []uint32
}

func (EntityStateUpdateS2C) Type() MessageType { return MsgEntityStateUpdate }
func (p EntityStateUpdateS2C) Encode(w *Writer) {
	w.WriteUint64(p.PlayerID)
	w.WriteVec3(p.Position)
	w.WriteQuat(p.Orientation)
	w.WriteInt32(p.CurrentHealth)
	w.WriteInt32(p.MaxHealth)
	w.WriteInt32(p.CurrentResource)
	w.WriteInt32(p.MaxResource)
	w.WriteUint64(p.ServerTimestampMs)
	w.WriteUint32(p.AnimationStateID)
	w.WriteUint16(uint16(len(p.ActiveStatusEffects)))
	for _, e := range p.ActiveStatusEffects {
		w.WriteUint32(e)
	}
}

func decodeEntityStateUpdateS2C(r *Reader) (EntityStateUpdateS2C, error) {
	var e EntityStateUpdateS2C
	var err error
	if e.PlayerID, err = r.ReadUint64(); err != nil {
		return e, err
	}
	if e.Position, err = r.ReadVec3(); err != nil {
		return e, err
	}
	if e.Orientation, err = r.ReadQuat(); err != nil {
		return e, err
	}
	if e.CurrentHealth, err = r.ReadInt32(); err != nil {
		return e, err
	}
	if e.MaxHealth, err = r.ReadInt32(); err != nil {
		return e, err
	}
	if e.CurrentResource, err = r.ReadInt32(); err != nil {
		return e, err
	}
	if e.MaxResource, err = r.ReadInt32(); err != nil {
		return e, err
	}
	if e.ServerTimestampMs, err = r.ReadUint64(); err != nil {
		return e, err
	}
	if e.AnimationStateID, err = r.ReadUint32(); err != nil {
		return e, err
	}
	n, err := r.ReadUint16()
	if err != nil {
		return e, err
	}
	e.ActiveStatusEffects = make([]uint32, 0, n)
	for i := uint16(0); i < n; i++ {
		v, err := r.ReadUint32()
		if err != nil {
			return e, err
		}
		e.ActiveStatusEffects = append(e.ActiveStatusEffects, v)
	}
	return e, nil
}

type RiftStepInitiatedS2C struct {
	PlayerID          uint64
	StartPosition     Vec3
	IntendedTarget    Vec3
	ActualFinal       Vec3
	TravelDurationSec float32
	EntryEffects      []RiftStepEffect
	ExitEffects       []RiftStepEffect
}

func (RiftStepInitiatedS2C) Type() MessageType { return MsgRiftStepInitiated }
func (p RiftStepInitiatedS2C) Encode(w *Writer) {
	w.WriteUint64(p.PlayerID)
	w.WriteVec3(p.StartPosition)
	w.WriteVec3(p.IntendedTarget)
	w.WriteVec3(p.ActualFinal)
	w.WriteFloat32(p.TravelDurationSec)
	writeEffectSlice(w, p.EntryEffects)
	writeEffectSlice(w, p.ExitEffects)
}

func decodeRiftStepInitiatedS2C(r *Reader) (RiftStepInitiatedS2C, error) {
	var p RiftStepInitiatedS2C
	var err error
	if p.PlayerID, err = r.ReadUint64(); err != nil {
		return p, err
	}
	if p.StartPosition, err = r.ReadVec3(); err != nil {
		return p, err
	}
	if p.IntendedTarget, err = r.ReadVec3(); err != nil {
		return p, err
	}
	if p.ActualFinal, err = r.ReadVec3(); err != nil {
		return p, err
	}
	if p.TravelDurationSec, err = r.ReadFloat32(); err != nil {
		return p, err
	}
	if p.EntryEffects, err = readEffectSlice(r); err != nil {
		return p, err
	}
	p.ExitEffects, err = readEffectSlice(r)
	return p, err
}

type CombatEventS2C struct {
	EventType    CombatEventType
	Source       uint64
	Target       uint64
	Damage       DamageInstance
	IsKill       bool
	IsBasicAttack bool
}

func (CombatEventS2C) Type() MessageType { return MsgCombatEvent }
func (p CombatEventS2C) Encode(w *Writer) {
	w.WriteByte(byte(p.EventType))
	w.WriteUint64(p.Source)
	w.WriteUint64(p.Target)
	p.Damage.write(w)
	w.WriteBool(p.IsKill)
	w.WriteBool(p.IsBasicAttack)
}

func decodeCombatEventS2C(r *Reader) (CombatEventS2C, error) {
	var c CombatEventS2C
	t, err := r.ReadByte()
	if err != nil {
		return c, err
	}
	c.EventType = CombatEventType(t)
	if c.Source, err = r.ReadUint64(); err != nil {
		return c, err
	}
	if c.Target, err = r.ReadUint64(); err != nil {
		return c, err
	}
	if c.Damage, err = readDamageInstance(r); err != nil {
		return c, err
	}
	if c.IsKill, err = r.ReadBool(); err != nil {
		return c, err
	}
	c.IsBasicAttack, err = r.ReadBool()
	return c, err
}

type SystemBroadcastS2C struct {
	Text string
}

func (SystemBroadcastS2C) Type() MessageType { return MsgSystemBroadcast }
func (p SystemBroadcastS2C) Encode(w *Writer) { w.WriteString(p.Text) }

func decodeSystemBroadcastS2C(r *Reader) (SystemBroadcastS2C, error) {
	text, err := r.ReadString()
	return SystemBroadcastS2C{Text: text}, err
}

// EncodePayload serializes a payload's body (not including the envelope
// header).
func EncodePayload(p Payload) []byte {
	w := NewWriter()
	p.Encode(w)
	return w.Bytes()
}

// DecodePayload parses a payload body against the given tag, implementing
// the root-schema verification named in §4.1 and §4.5 step 2: an unknown
// tag or a body that runs past its own bounds is rejected rather than
// partially accepted.
func DecodePayload(tag MessageType, body []byte) (Payload, error) {
	r := NewReader(body)
	var (
		p   Payload
		err error
	)
	switch tag {
	case MsgPing:
		p, err = decodePingC2S(r)
	case MsgJoinRequest:
		p, err = decodeJoinRequestC2S(r)
	case MsgMovementInput:
		p, err = decodeMovementInputC2S(r)
	case MsgTurnIntent:
		p, err = decodeTurnIntentC2S(r)
	case MsgRiftStepActivation:
		p, err = decodeRiftStepActivationC2S(r)
	case MsgBasicAttackIntent:
		p, err = decodeBasicAttackIntentC2S(r)
	case MsgUseAbility:
		p, err = decodeUseAbilityC2S(r)
	case MsgPong:
		p, err = decodePongS2C(r)
	case MsgJoinSuccess:
		p, err = decodeJoinSuccessS2C(r)
	case MsgJoinFailed:
		p, err = decodeJoinFailedS2C(r)
	case MsgEntityStateUpdate:
		p, err = decodeEntityStateUpdateS2C(r)
	case MsgRiftStepInitiated:
		p, err = decodeRiftStepInitiatedS2C(r)
	case MsgCombatEvent:
		p, err = decodeCombatEventS2C(r)
	case MsgSystemBroadcast:
		p, err = decodeSystemBroadcastS2C(r)
	default:
		return nil, fmt.Errorf("wire: unrecognized message type %d", tag)
	}
	return p, err
}
