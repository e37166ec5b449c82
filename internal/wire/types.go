package wire

// Vec3 is a 3-component float vector, client-forward is +Y per §4.5.
type Vec3 struct {
	X, Y, Z float32
}

// Quat is a unit quaternion, identity is {0,0,0,1}.
type Quat struct {
	X, Y, Z, W float32
}

// DamageType mirrors the resistance categories carried on PlayerState.
type DamageType uint8

const (
	DamageTypePhysical DamageType = iota
	DamageTypeRadiant
	DamageTypeFrost
	DamageTypeShock
	DamageTypeNecrotic
	DamageTypeVoid
	DamageTypeCosmic
	DamageTypePoison
	DamageTypeNature
	DamageTypeAetherial
)

// DamageInstance is a single damage application.
type DamageInstance struct {
	Amount     int32
	DamageType DamageType
}

func (d DamageInstance) write(w *Writer) {
	w.WriteInt32(d.Amount)
	w.WriteByte(byte(d.DamageType))
}

func readDamageInstance(r *Reader) (DamageInstance, error) {
	amount, err := r.ReadInt32()
	if err != nil {
		return DamageInstance{}, err
	}
	dt, err := r.ReadByte()
	if err != nil {
		return DamageInstance{}, err
	}
	return DamageInstance{Amount: amount, DamageType: DamageType(dt)}, nil
}

// RiftStepIntent is the directional intent of a RiftStepActivation.
type RiftStepIntent uint8

const (
	RiftStepIntentDefaultBack RiftStepIntent = iota
	RiftStepIntentForward
	RiftStepIntentBack
	RiftStepIntentLeft
	RiftStepIntentRight
)

// RiftStepEffectType tags the variant held by a RiftStepEffect.
type RiftStepEffectType uint8

const (
	RiftStepEffectNone RiftStepEffectType = iota
	RiftStepEffectAreaDamage
	RiftStepEffectAreaStun
	RiftStepEffectPersistentAreaHeal
	RiftStepEffectApplyBuff
)

// StunSeverity mirrors the original's StunInstance severities.
type StunSeverity uint8

const (
	StunSeverityLight StunSeverity = iota
	StunSeverityHeavy
)

// RiftStepEffect is a tagged-union gameplay-effect instance attached to the
// entry or exit point of a RiftStep, per §4.6 and the SPEC_FULL supplement
// grounded on original_source/.../RiftStepLogic.h's GameplayEffectInstance.
type RiftStepEffect struct {
	Type             RiftStepEffectType
	Center           Vec3
	Radius           float32
	DurationMs       uint32
	Damage           DamageInstance
	StunSeverity     StunSeverity
	StunDurationMs   uint32
	BuffCategory     uint32
	VisualEffectTag  string
}

func (e RiftStepEffect) write(w *Writer) {
	w.WriteByte(byte(e.Type))
	w.WriteVec3(e.Center)
	w.WriteFloat32(e.Radius)
	w.WriteUint32(e.DurationMs)
	e.Damage.write(w)
	w.WriteByte(byte(e.StunSeverity))
	w.WriteUint32(e.StunDurationMs)
	w.WriteUint32(e.BuffCategory)
	w.WriteString(e.VisualEffectTag)
}

func readRiftStepEffect(r *Reader) (RiftStepEffect, error) {
	var e RiftStepEffect
	t, err := r.ReadByte()
	if err != nil {
		return e, err
	}
	e.Type = RiftStepEffectType(t)
	if e.Center, err = r.ReadVec3(); err != nil {
		return e, err
	}
	if e.Radius, err = r.ReadFloat32(); err != nil {
		return e, err
	}
	if e.DurationMs, err = r.ReadUint32(); err != nil {
		return e, err
	}
	if e.Damage, err = readDamageInstance(r); err != nil {
		return e, err
	}
	sev, err := r.ReadByte()
	if err != nil {
		return e, err
	}
	e.StunSeverity = StunSeverity(sev)
	if e.StunDurationMs, err = r.ReadUint32(); err != nil {
		return e, err
	}
	if e.BuffCategory, err = r.ReadUint32(); err != nil {
		return e, err
	}
	if e.VisualEffectTag, err = r.ReadString(); err != nil {
		return e, err
	}
	return e, nil
}

func writeEffectSlice(w *Writer, effects []RiftStepEffect) {
	w.WriteUint16(uint16(len(effects)))
	for _, e := range effects {
		e.write(w)
	}
}

func readEffectSlice(r *Reader) ([]RiftStepEffect, error) {
	n, err := r.ReadUint16()
	if err != nil {
		return nil, err
	}
	out := make([]RiftStepEffect, 0, n)
	for i := uint16(0); i < n; i++ {
		e, err := readRiftStepEffect(r)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

// CombatEventType tags CombatEvent variants.
type CombatEventType uint8

const (
	CombatEventDamageDealt CombatEventType = iota
	CombatEventProjectileSpawned
)

// JoinFailureCode enumerates JoinFailed reasons per §4.4.
type JoinFailureCode uint8

const (
	JoinFailureMalformed JoinFailureCode = iota
	JoinFailureAlreadyLoggedIn
	JoinFailureServerError
)
