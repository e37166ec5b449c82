package wire

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Writer accumulates an application payload body in the little-endian,
// zero-copy-friendly layout the wire schema uses. It is the generalized
// successor to the teacher's BitStream type, kept big-endian-free since the
// envelope and every payload field in this schema is little-endian.
type Writer struct {
	buf []byte
}

// NewWriter returns an empty Writer with room for a typical payload.
func NewWriter() *Writer {
	return &Writer{buf: make([]byte, 0, 64)}
}

func (w *Writer) Bytes() []byte { return w.buf }

func (w *Writer) WriteByte(b byte) { w.buf = append(w.buf, b) }

func (w *Writer) WriteBool(b bool) {
	if b {
		w.WriteByte(1)
	} else {
		w.WriteByte(0)
	}
}

func (w *Writer) WriteUint16(v uint16) {
	var tmp [2]byte
	binary.LittleEndian.PutUint16(tmp[:], v)
	w.buf = append(w.buf, tmp[:]...)
}

func (w *Writer) WriteUint32(v uint32) {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], v)
	w.buf = append(w.buf, tmp[:]...)
}

func (w *Writer) WriteUint64(v uint64) {
	var tmp [8]byte
	binary.LittleEndian.PutUint64(tmp[:], v)
	w.buf = append(w.buf, tmp[:]...)
}

func (w *Writer) WriteInt32(v int32) { w.WriteUint32(uint32(v)) }

func (w *Writer) WriteFloat32(f float32) { w.WriteUint32(math.Float32bits(f)) }

func (w *Writer) WriteString(s string) {
	w.WriteUint16(uint16(len(s)))
	w.buf = append(w.buf, s...)
}

func (w *Writer) WriteVec3(v Vec3) {
	w.WriteFloat32(v.X)
	w.WriteFloat32(v.Y)
	w.WriteFloat32(v.Z)
}

func (w *Writer) WriteQuat(q Quat) {
	w.WriteFloat32(q.X)
	w.WriteFloat32(q.Y)
	w.WriteFloat32(q.Z)
	w.WriteFloat32(q.W)
}

// Reader parses a payload body written by Writer.
type Reader struct {
	buf    []byte
	offset int
}

func NewReader(data []byte) *Reader {
	return &Reader{buf: data}
}

func (r *Reader) Remaining() int { return len(r.buf) - r.offset }

func (r *Reader) ReadByte() (byte, error) {
	if r.offset >= len(r.buf) {
		return 0, fmt.Errorf("wire: buffer underflow reading byte")
	}
	b := r.buf[r.offset]
	r.offset++
	return b, nil
}

func (r *Reader) ReadBool() (bool, error) {
	b, err := r.ReadByte()
	return b != 0, err
}

func (r *Reader) ReadBytes(n int) ([]byte, error) {
	if r.offset+n > len(r.buf) {
		return nil, fmt.Errorf("wire: buffer underflow reading %d bytes", n)
	}
	out := r.buf[r.offset : r.offset+n]
	r.offset += n
	return out, nil
}

func (r *Reader) ReadUint16() (uint16, error) {
	b, err := r.ReadBytes(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

func (r *Reader) ReadUint32() (uint32, error) {
	b, err := r.ReadBytes(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (r *Reader) ReadInt32() (int32, error) {
	v, err := r.ReadUint32()
	return int32(v), err
}

func (r *Reader) ReadUint64() (uint64, error) {
	b, err := r.ReadBytes(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

func (r *Reader) ReadFloat32() (float32, error) {
	v, err := r.ReadUint32()
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(v), nil
}

func (r *Reader) ReadString() (string, error) {
	n, err := r.ReadUint16()
	if err != nil {
		return "", err
	}
	b, err := r.ReadBytes(int(n))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (r *Reader) ReadVec3() (Vec3, error) {
	x, err := r.ReadFloat32()
	if err != nil {
		return Vec3{}, err
	}
	y, err := r.ReadFloat32()
	if err != nil {
		return Vec3{}, err
	}
	z, err := r.ReadFloat32()
	if err != nil {
		return Vec3{}, err
	}
	return Vec3{X: x, Y: y, Z: z}, nil
}

func (r *Reader) ReadQuat() (Quat, error) {
	x, err := r.ReadFloat32()
	if err != nil {
		return Quat{}, err
	}
	y, err := r.ReadFloat32()
	if err != nil {
		return Quat{}, err
	}
	z, err := r.ReadFloat32()
	if err != nil {
		return Quat{}, err
	}
	w, err := r.ReadFloat32()
	if err != nil {
		return Quat{}, err
	}
	return Quat{X: x, Y: y, Z: z, W: w}, nil
}
