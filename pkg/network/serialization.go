package network

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// BinaryProtocol implements the Protocol interface using fixed-width,
// little-endian binary encoding, matching the wire format the spec
// requires: fixed-width integers, floats, vectors, and length-prefixed
// strings.
type BinaryProtocol struct{}

// NewBinaryProtocol creates a new binary protocol encoder/decoder.
func NewBinaryProtocol() *BinaryProtocol {
	return &BinaryProtocol{}
}

// EncodePacket serializes a packet to binary format.
//
// Layout: Timestamp(8) RPC(2) EntityID(8) Priority(1) SequenceNumber(4)
// ComponentCount(2) { TypeLen(2) Type DataLen(4) Data }...
func (p *BinaryProtocol) EncodePacket(pkt *Packet) ([]byte, error) {
	if pkt == nil {
		return nil, fmt.Errorf("cannot encode nil packet")
	}

	pooled := AcquireBuffer()
	defer ReleaseBuffer(pooled)
	buf := bytes.NewBuffer(*pooled)
	binary.Write(buf, binary.LittleEndian, pkt.Timestamp)
	binary.Write(buf, binary.LittleEndian, uint16(pkt.RPC))
	binary.Write(buf, binary.LittleEndian, pkt.EntityID)
	binary.Write(buf, binary.LittleEndian, pkt.Priority)
	binary.Write(buf, binary.LittleEndian, pkt.SequenceNumber)

	binary.Write(buf, binary.LittleEndian, uint16(len(pkt.Components)))
	for _, comp := range pkt.Components {
		if err := writeLengthPrefixedString(buf, comp.Type); err != nil {
			return nil, err
		}
		binary.Write(buf, binary.LittleEndian, uint32(len(comp.Data)))
		buf.Write(comp.Data)
	}

	out := make([]byte, buf.Len())
	copy(out, buf.Bytes())
	return out, nil
}

// DecodePacket deserializes a packet from binary format.
func (p *BinaryProtocol) DecodePacket(data []byte) (*Packet, error) {
	const headerSize = 8 + 2 + 8 + 1 + 4 + 2
	if len(data) < headerSize {
		return nil, fmt.Errorf("data too short for packet: %d bytes", len(data))
	}

	buf := bytes.NewReader(data)
	pkt := &Packet{}

	if err := binary.Read(buf, binary.LittleEndian, &pkt.Timestamp); err != nil {
		return nil, fmt.Errorf("read timestamp: %w", err)
	}
	var rpc uint16
	if err := binary.Read(buf, binary.LittleEndian, &rpc); err != nil {
		return nil, fmt.Errorf("read rpc id: %w", err)
	}
	pkt.RPC = RPCID(rpc)
	if err := binary.Read(buf, binary.LittleEndian, &pkt.EntityID); err != nil {
		return nil, fmt.Errorf("read entity id: %w", err)
	}
	if err := binary.Read(buf, binary.LittleEndian, &pkt.Priority); err != nil {
		return nil, fmt.Errorf("read priority: %w", err)
	}
	if err := binary.Read(buf, binary.LittleEndian, &pkt.SequenceNumber); err != nil {
		return nil, fmt.Errorf("read sequence number: %w", err)
	}

	var componentCount uint16
	if err := binary.Read(buf, binary.LittleEndian, &componentCount); err != nil {
		return nil, fmt.Errorf("read component count: %w", err)
	}

	pkt.Components = make([]ComponentData, componentCount)
	for i := range pkt.Components {
		typ, err := readLengthPrefixedString(buf)
		if err != nil {
			return nil, fmt.Errorf("read component %d type: %w", i, err)
		}
		var dataLen uint32
		if err := binary.Read(buf, binary.LittleEndian, &dataLen); err != nil {
			return nil, fmt.Errorf("read component %d data length: %w", i, err)
		}
		payload := make([]byte, dataLen)
		if _, err := buf.Read(payload); err != nil {
			return nil, fmt.Errorf("read component %d data: %w", i, err)
		}
		pkt.Components[i] = ComponentData{Type: typ, Data: payload}
	}

	return pkt, nil
}

// EncodeInputCommand serializes an input command to binary format.
func (p *BinaryProtocol) EncodeInputCommand(cmd *InputCommand) ([]byte, error) {
	if cmd == nil {
		return nil, fmt.Errorf("cannot encode nil input command")
	}

	pooled := AcquireBuffer()
	defer ReleaseBuffer(pooled)
	buf := bytes.NewBuffer(*pooled)
	binary.Write(buf, binary.LittleEndian, cmd.PlayerID)
	binary.Write(buf, binary.LittleEndian, cmd.Timestamp)
	binary.Write(buf, binary.LittleEndian, cmd.SequenceNumber)
	if err := writeLengthPrefixedString(buf, cmd.InputType); err != nil {
		return nil, err
	}
	binary.Write(buf, binary.LittleEndian, uint32(len(cmd.Data)))
	buf.Write(cmd.Data)

	out := make([]byte, buf.Len())
	copy(out, buf.Bytes())
	return out, nil
}

// DecodeInputCommand deserializes an input command from binary format.
func (p *BinaryProtocol) DecodeInputCommand(data []byte) (*InputCommand, error) {
	const minSize = 8 + 8 + 4 + 2
	if len(data) < minSize {
		return nil, fmt.Errorf("data too short for input command: %d bytes", len(data))
	}

	buf := bytes.NewReader(data)
	cmd := &InputCommand{}

	if err := binary.Read(buf, binary.LittleEndian, &cmd.PlayerID); err != nil {
		return nil, fmt.Errorf("read player id: %w", err)
	}
	if err := binary.Read(buf, binary.LittleEndian, &cmd.Timestamp); err != nil {
		return nil, fmt.Errorf("read timestamp: %w", err)
	}
	if err := binary.Read(buf, binary.LittleEndian, &cmd.SequenceNumber); err != nil {
		return nil, fmt.Errorf("read sequence number: %w", err)
	}
	typ, err := readLengthPrefixedString(buf)
	if err != nil {
		return nil, fmt.Errorf("read input type: %w", err)
	}
	cmd.InputType = typ

	var dataLen uint32
	if err := binary.Read(buf, binary.LittleEndian, &dataLen); err != nil {
		return nil, fmt.Errorf("read data length: %w", err)
	}
	payload := make([]byte, dataLen)
	if _, err := buf.Read(payload); err != nil {
		return nil, fmt.Errorf("read data: %w", err)
	}
	cmd.Data = payload

	return cmd, nil
}

func writeLengthPrefixedString(buf *bytes.Buffer, s string) error {
	if len(s) > 0xFFFF {
		return fmt.Errorf("string too long to encode: %d bytes", len(s))
	}
	binary.Write(buf, binary.LittleEndian, uint16(len(s)))
	buf.WriteString(s)
	return nil
}

func readLengthPrefixedString(buf *bytes.Reader) (string, error) {
	var n uint16
	if err := binary.Read(buf, binary.LittleEndian, &n); err != nil {
		return "", err
	}
	b := make([]byte, n)
	if n > 0 {
		if _, err := buf.Read(b); err != nil {
			return "", err
		}
	}
	return string(b), nil
}

// Compile-time interface check.
var _ Protocol = (*BinaryProtocol)(nil)
