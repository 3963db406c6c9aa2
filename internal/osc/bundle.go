package osc

import "bytes"

// BundleTag is the address-position string that opens every bundle
const BundleTag = "#bundle"

// Bundle is a decoded bundle header with a lazily consumed element stream
type Bundle struct {
	timestamp uint64
	elements  Reader
}

// ParseBundle validates the "#bundle" header and reads the time tag.
// The remaining bytes are left for ReadMessage.
func ParseBundle(b []byte) (Bundle, error) {
	r := NewReader(b)

	tag, err := r.ReadString()
	if err != nil {
		return Bundle{}, err
	}
	if !bytes.Equal(tag, []byte(BundleTag)) {
		return Bundle{}, ErrMalformed
	}

	ts, err := r.ReadTimestamp()
	if err != nil {
		return Bundle{}, err
	}

	return Bundle{timestamp: ts, elements: r}, nil
}

// Timestamp returns the opaque 64-bit time tag
func (b *Bundle) Timestamp() uint64 {
	return b.timestamp
}

// EOF reports whether all elements have been consumed
func (b *Bundle) EOF() bool {
	return b.elements.EOF()
}

// ReadMessage slices out the next length-prefixed element and decodes it
// as a message. Nested bundles are not supported and fail to decode.
func (b *Bundle) ReadMessage() (Message, error) {
	r := b.elements

	size, err := r.ReadInt32()
	if err != nil {
		return Message{}, err
	}
	if size < 0 || int(size) > r.Len() {
		return Message{}, ErrMalformed
	}

	rest := r.Rest()
	elem := rest[:size:size]
	b.elements = NewReader(rest[size:])

	return ParseMessage(elem)
}
