package vmc

import (
	"context"
	"log/slog"

	"github.com/skypro1111/vmc-keymap/internal/keyboard"
	"github.com/skypro1111/vmc-keymap/internal/osc"
)

// Action is invoked once per recognized button press
type Action interface {
	Press(ctx context.Context, key keyboard.Key) error
}

// Result summarizes what happened to one datagram.
// It is filled in as far as processing got, including when HandlePacket
// returns an error.
type Result struct {
	Kind      osc.PacketKind
	Timestamp uint64 // bundle time tag, zero for bare messages
	Messages  int    // messages decoded
	Matched   int    // controller reports decoded
	Ignored   int    // well-formed messages with another address or arity
	Keys      []keyboard.Key
	Failed    int // actions that returned an error
}

// Dispatcher decodes datagrams and fires actions for bound button presses
type Dispatcher struct {
	bindings Bindings
	action   Action
	logger   *slog.Logger
}

// NewDispatcher creates a dispatcher. Empty bindings fall back to DefaultBindings.
func NewDispatcher(bindings Bindings, action Action, logger *slog.Logger) *Dispatcher {
	if len(bindings) == 0 {
		bindings = DefaultBindings()
	}
	return &Dispatcher{
		bindings: bindings,
		action:   action,
		logger:   logger,
	}
}

// HandlePacket processes every message in data in order.
//
// Messages that are not controller reports are skipped. The first decode
// error abandons the rest of the packet; actions already fired for earlier
// messages are not undone.
func (d *Dispatcher) HandlePacket(ctx context.Context, data []byte) (Result, error) {
	var res Result

	packet, err := osc.ParsePacket(data)
	if err != nil {
		return res, err
	}
	res.Kind = packet.Kind()
	res.Timestamp, _ = packet.Timestamp()

	for !packet.EOF() {
		msg, err := packet.ReadMessage()
		if err != nil {
			return res, err
		}
		res.Messages++

		if !IsControllerMessage(&msg) {
			res.Ignored++
			continue
		}

		in, err := DecodeControllerInput(&msg)
		if err != nil {
			return res, err
		}
		res.Matched++

		start := len(res.Keys)
		res.Keys = d.bindings.Match(res.Keys, in)
		for _, key := range res.Keys[start:] {
			d.press(ctx, key, &res)
		}
	}

	return res, nil
}

func (d *Dispatcher) press(ctx context.Context, key keyboard.Key, res *Result) {
	if err := d.action.Press(ctx, key); err != nil {
		res.Failed++
		d.logger.Error("Failed to press key",
			slog.String("key", key.String()),
			slog.String("error", err.Error()),
		)
		return
	}
	d.logger.Debug("Key pressed", slog.String("key", key.String()))
}
