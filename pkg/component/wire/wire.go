// Package wire holds the small fixed-width encoding helpers every
// gameplay component uses to build its RPC payloads, factored out of
// the individual components since the layout rule never changes:
// little-endian fixed-width integers and floats, length-prefixed
// strings, matching network.BinaryProtocol's own wire convention.
package wire

import (
	"bytes"
	"encoding/binary"

	"github.com/opd-ai/sampcore/pkg/types"
)

// PutVector3 appends v as three little-endian float32s.
func PutVector3(buf *bytes.Buffer, v types.Vector3) {
	binary.Write(buf, binary.LittleEndian, float32(v.X))
	binary.Write(buf, binary.LittleEndian, float32(v.Y))
	binary.Write(buf, binary.LittleEndian, float32(v.Z))
}

// GetVector3 reads three little-endian float32s from r.
func GetVector3(r *bytes.Reader) (types.Vector3, error) {
	var x, y, z float32
	if err := binary.Read(r, binary.LittleEndian, &x); err != nil {
		return types.Vector3{}, err
	}
	if err := binary.Read(r, binary.LittleEndian, &y); err != nil {
		return types.Vector3{}, err
	}
	if err := binary.Read(r, binary.LittleEndian, &z); err != nil {
		return types.Vector3{}, err
	}
	return types.Vector3{X: float64(x), Y: float64(y), Z: float64(z)}, nil
}

// PutColour appends c as a little-endian packed ARGB uint32.
func PutColour(buf *bytes.Buffer, c types.GTAColour) {
	binary.Write(buf, binary.LittleEndian, uint32(c))
}

// PutString appends s as a uint16 length prefix followed by its bytes.
func PutString(buf *bytes.Buffer, s string) {
	binary.Write(buf, binary.LittleEndian, uint16(len(s)))
	buf.WriteString(s)
}

// GetString reads a uint16-length-prefixed string from r.
func GetString(r *bytes.Reader) (string, error) {
	var n uint16
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return "", err
	}
	b := make([]byte, n)
	if n > 0 {
		if _, err := r.Read(b); err != nil {
			return "", err
		}
	}
	return string(b), nil
}

// PutBool appends b as a single byte.
func PutBool(buf *bytes.Buffer, b bool) {
	if b {
		buf.WriteByte(1)
	} else {
		buf.WriteByte(0)
	}
}

// GetBool reads a single byte from r as a bool.
func GetBool(r *bytes.Reader) (bool, error) {
	b, err := r.ReadByte()
	if err != nil {
		return false, err
	}
	return b != 0, nil
}
