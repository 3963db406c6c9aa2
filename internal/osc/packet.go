package osc

import "fmt"

// PacketKind identifies the top-level shape of a datagram
type PacketKind uint8

const (
	PacketMessage PacketKind = iota + 1
	PacketBundle
)

// String returns a human-readable name of the packet kind
func (k PacketKind) String() string {
	switch k {
	case PacketMessage:
		return "Message"
	case PacketBundle:
		return "Bundle"
	default:
		return fmt.Sprintf("Unknown(%d)", uint8(k))
	}
}

// Packet is either a bundle or exactly one bare message.
// Both shapes are iterated with EOF and ReadMessage.
type Packet struct {
	kind    PacketKind
	bundle  Bundle
	message Message
	taken   bool
}

// ParsePacket decodes a full datagram payload.
// A payload that parses as a bundle is always a bundle; otherwise it must
// parse as a single message.
func ParsePacket(b []byte) (Packet, error) {
	if bundle, err := ParseBundle(b); err == nil {
		return Packet{kind: PacketBundle, bundle: bundle}, nil
	}

	msg, err := ParseMessage(b)
	if err != nil {
		return Packet{}, err
	}
	return Packet{kind: PacketMessage, message: msg}, nil
}

// Kind returns the packet shape
func (p *Packet) Kind() PacketKind {
	return p.kind
}

// Timestamp returns the bundle time tag; ok is false for bare messages
func (p *Packet) Timestamp() (ts uint64, ok bool) {
	if p.kind != PacketBundle {
		return 0, false
	}
	return p.bundle.Timestamp(), true
}

// EOF reports whether every contained message has been returned
func (p *Packet) EOF() bool {
	switch p.kind {
	case PacketBundle:
		return p.bundle.EOF()
	case PacketMessage:
		return p.taken
	default:
		return true
	}
}

// ReadMessage returns the next message in the packet.
// A bare message is returned once; later calls fail.
func (p *Packet) ReadMessage() (Message, error) {
	switch p.kind {
	case PacketBundle:
		return p.bundle.ReadMessage()
	case PacketMessage:
		if p.taken {
			return Message{}, ErrMalformed
		}
		p.taken = true
		return p.message, nil
	default:
		return Message{}, ErrMalformed
	}
}
