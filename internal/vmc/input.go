package vmc

import (
	"bytes"
	"fmt"

	"github.com/skypro1111/vmc-keymap/internal/osc"
)

// Controller report constants
const (
	Address       = "/VMC/Ext/Con"
	ArgumentCount = 8
)

// ControllerInput is one decoded /VMC/Ext/Con report.
// Name borrows from the datagram buffer.
type ControllerInput struct {
	Active  int32
	Name    []byte
	IsLeft  int32
	IsTouch int32
	IsAxis  int32
	Axis    [3]float32
}

// IsControllerMessage reports whether m has the controller address and
// exactly ArgumentCount unread arguments
func IsControllerMessage(m *osc.Message) bool {
	return m.NumRemainingArguments() == ArgumentCount &&
		bytes.Equal(m.Address(), []byte(Address))
}

// DecodeControllerInput reads the eight controller arguments in order:
// active, name, is_left, is_touch, is_axis, axis x/y/z.
// Any argument of the wrong type fails the whole message.
func DecodeControllerInput(m *osc.Message) (ControllerInput, error) {
	var (
		in  ControllerInput
		err error
	)

	if in.Active, err = readInt32(m); err != nil {
		return ControllerInput{}, err
	}
	if in.Name, err = readString(m); err != nil {
		return ControllerInput{}, err
	}
	if in.IsLeft, err = readInt32(m); err != nil {
		return ControllerInput{}, err
	}
	if in.IsTouch, err = readInt32(m); err != nil {
		return ControllerInput{}, err
	}
	if in.IsAxis, err = readInt32(m); err != nil {
		return ControllerInput{}, err
	}
	for i := range in.Axis {
		if in.Axis[i], err = readFloat32(m); err != nil {
			return ControllerInput{}, err
		}
	}

	return in, nil
}

// String returns a human-readable representation of the input
func (c ControllerInput) String() string {
	return fmt.Sprintf("ControllerInput{Active:%d, Name:%q, IsLeft:%d, IsTouch:%d, IsAxis:%d, Axis:%v}",
		c.Active, c.Name, c.IsLeft, c.IsTouch, c.IsAxis, c.Axis)
}

func readInt32(m *osc.Message) (int32, error) {
	a, err := m.ReadArgument()
	if err != nil {
		return 0, err
	}
	v, ok := a.Int32()
	if !ok {
		return 0, osc.ErrMalformed
	}
	return v, nil
}

func readFloat32(m *osc.Message) (float32, error) {
	a, err := m.ReadArgument()
	if err != nil {
		return 0, err
	}
	v, ok := a.Float32()
	if !ok {
		return 0, osc.ErrMalformed
	}
	return v, nil
}

func readString(m *osc.Message) ([]byte, error) {
	a, err := m.ReadArgument()
	if err != nil {
		return nil, err
	}
	v, ok := a.Bytes()
	if !ok {
		return nil, osc.ErrMalformed
	}
	return v, nil
}
