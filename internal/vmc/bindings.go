package vmc

import (
	"bytes"

	"github.com/go-faster/errors"

	"github.com/skypro1111/vmc-keymap/internal/keyboard"
)

// Binding maps a pressed controller button to a key
type Binding struct {
	Button string
	Left   bool
	Key    keyboard.Key
}

// Bindings is an ordered binding table
type Bindings []Binding

// DefaultBindings returns the right-hand B/A buttons mapped to right/left arrows
func DefaultBindings() Bindings {
	return Bindings{
		{Button: "ClickBbutton", Left: false, Key: keyboard.KeyRightArrow},
		{Button: "ClickAbutton", Left: false, Key: keyboard.KeyLeftArrow},
	}
}

// Validate rejects empty button names and duplicate button/hand pairs
func (b Bindings) Validate() error {
	type hand struct {
		button string
		left   bool
	}
	seen := make(map[hand]struct{}, len(b))
	for i, binding := range b {
		if binding.Button == "" {
			return errors.Errorf("binding %d: button cannot be empty", i)
		}
		if binding.Key != keyboard.KeyLeftArrow && binding.Key != keyboard.KeyRightArrow {
			return errors.Errorf("binding %d: invalid key %s", i, binding.Key)
		}
		h := hand{binding.Button, binding.Left}
		if _, ok := seen[h]; ok {
			return errors.Errorf("binding %d: duplicate button %q (left=%t)", i, binding.Button, binding.Left)
		}
		seen[h] = struct{}{}
	}
	return nil
}

// Match appends to dst the keys bound to an active press described by in
func (b Bindings) Match(dst []keyboard.Key, in ControllerInput) []keyboard.Key {
	if in.Active != 1 {
		return dst
	}
	left := in.IsLeft != 0
	for _, binding := range b {
		if binding.Left == left && bytes.Equal(in.Name, []byte(binding.Button)) {
			dst = append(dst, binding.Key)
		}
	}
	return dst
}
