package osc

import "fmt"

// Type tags
const (
	TagInt32   = 'i'
	TagFloat32 = 'f'
	TagString  = 's'

	// TagPrefix starts every type-tag string
	TagPrefix = ','
)

// AtomKind identifies which variant an Atom holds
type AtomKind uint8

const (
	AtomInt32 AtomKind = iota + 1
	AtomFloat32
	AtomString
)

// String returns the type-tag character name of the kind
func (k AtomKind) String() string {
	switch k {
	case AtomInt32:
		return "int32"
	case AtomFloat32:
		return "float32"
	case AtomString:
		return "string"
	default:
		return fmt.Sprintf("Unknown(%d)", uint8(k))
	}
}

// Atom is one decoded argument value.
// String atoms borrow from the datagram buffer and are valid only while it is.
type Atom struct {
	kind AtomKind
	i    int32
	f    float32
	s    []byte
}

// Int32Atom wraps an int32 value
func Int32Atom(v int32) Atom { return Atom{kind: AtomInt32, i: v} }

// Float32Atom wraps a float32 value
func Float32Atom(v float32) Atom { return Atom{kind: AtomFloat32, f: v} }

// StringAtom wraps a string view
func StringAtom(v []byte) Atom { return Atom{kind: AtomString, s: v} }

// Kind returns the variant held by the atom
func (a Atom) Kind() AtomKind {
	return a.kind
}

// Int32 returns the value if the atom is an int32
func (a Atom) Int32() (int32, bool) {
	return a.i, a.kind == AtomInt32
}

// Float32 returns the value if the atom is a float32
func (a Atom) Float32() (float32, bool) {
	return a.f, a.kind == AtomFloat32
}

// Bytes returns the string content if the atom is a string
func (a Atom) Bytes() ([]byte, bool) {
	if a.kind != AtomString {
		return nil, false
	}
	return a.s, true
}

// String returns a human-readable representation of the atom
func (a Atom) String() string {
	switch a.kind {
	case AtomInt32:
		return fmt.Sprintf("i:%d", a.i)
	case AtomFloat32:
		return fmt.Sprintf("f:%g", a.f)
	case AtomString:
		return fmt.Sprintf("s:%q", a.s)
	default:
		return "invalid"
	}
}
