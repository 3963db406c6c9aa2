package osc

// Message is a decoded OSC message: address, remaining type tags and a
// cursor over the not-yet-read argument bytes.
type Message struct {
	address []byte
	tags    []byte
	args    Reader
}

// ParseMessage decodes the address and type-tag string of a raw message.
// Arguments are decoded on demand by ReadArgument.
func ParseMessage(b []byte) (Message, error) {
	r := NewReader(b)

	address, err := r.ReadString()
	if err != nil {
		return Message{}, err
	}

	tags, err := r.ReadString()
	if err != nil {
		return Message{}, err
	}
	if len(tags) == 0 || tags[0] != TagPrefix {
		return Message{}, ErrMalformed
	}

	return Message{
		address: address,
		tags:    tags[1:],
		args:    r,
	}, nil
}

// Address returns the address pattern, e.g. "/VMC/Ext/Con"
func (m *Message) Address() []byte {
	return m.address
}

// TypeTags returns the tags of the arguments not yet read
func (m *Message) TypeTags() []byte {
	return m.tags
}

// NumRemainingArguments returns the count of arguments not yet read
func (m *Message) NumRemainingArguments() int {
	return len(m.tags)
}

// ReadArgument decodes the next argument according to its type tag.
//
// An unknown tag consumes the tag but not the argument bytes, so the
// message cannot be read further; callers must abandon it.
func (m *Message) ReadArgument() (Atom, error) {
	if len(m.tags) == 0 {
		return Atom{}, ErrMalformed
	}
	tag := m.tags[0]
	m.tags = m.tags[1:]

	switch tag {
	case TagInt32:
		v, err := m.args.ReadInt32()
		if err != nil {
			return Atom{}, err
		}
		return Int32Atom(v), nil
	case TagFloat32:
		v, err := m.args.ReadFloat32()
		if err != nil {
			return Atom{}, err
		}
		return Float32Atom(v), nil
	case TagString:
		v, err := m.args.ReadString()
		if err != nil {
			return Atom{}, err
		}
		return StringAtom(v), nil
	default:
		return Atom{}, ErrMalformed
	}
}
