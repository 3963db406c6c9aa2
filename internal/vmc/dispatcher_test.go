package vmc

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skypro1111/vmc-keymap/internal/keyboard"
	"github.com/skypro1111/vmc-keymap/internal/osc"
)

type recordingAction struct {
	keys []keyboard.Key
	err  error
}

func (r *recordingAction) Press(_ context.Context, key keyboard.Key) error {
	r.keys = append(r.keys, key)
	return r.err
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

type report struct {
	active, isLeft, isTouch, isAxis int32
	name                            string
	axis                            [3]float32
}

func encodeReport(t testing.TB, r report) []byte {
	t.Helper()
	b, err := osc.AppendMessage(nil, Address,
		r.active, r.name, r.isLeft, r.isTouch, r.isAxis,
		r.axis[0], r.axis[1], r.axis[2],
	)
	require.NoError(t, err)
	return b
}

func encode(t testing.TB, address string, args ...any) []byte {
	t.Helper()
	b, err := osc.AppendMessage(nil, address, args...)
	require.NoError(t, err)
	return b
}

func TestDispatchScenarios(t *testing.T) {
	for _, tt := range []struct {
		name    string
		data    func(t *testing.T) []byte
		keys    []keyboard.Key
		ignored int
	}{
		{
			name: "B button presses right arrow",
			data: func(t *testing.T) []byte {
				return encodeReport(t, report{active: 1, name: "ClickBbutton"})
			},
			keys: []keyboard.Key{keyboard.KeyRightArrow},
		},
		{
			name: "A button presses left arrow",
			data: func(t *testing.T) []byte {
				return encodeReport(t, report{active: 1, name: "ClickAbutton"})
			},
			keys: []keyboard.Key{keyboard.KeyLeftArrow},
		},
		{
			name: "inactive button",
			data: func(t *testing.T) []byte {
				return encodeReport(t, report{active: 0, name: "ClickBbutton"})
			},
		},
		{
			name: "left hand",
			data: func(t *testing.T) []byte {
				return encodeReport(t, report{active: 1, name: "ClickBbutton", isLeft: 1})
			},
		},
		{
			name: "other button",
			data: func(t *testing.T) []byte {
				return encodeReport(t, report{active: 1, name: "ClickTrigger", axis: [3]float32{1, 0, 0}})
			},
		},
		{
			name: "other address",
			data: func(t *testing.T) []byte {
				return encode(t, "/VMC/Ext/Other", int32(1), "ClickBbutton", int32(0))
			},
			ignored: 1,
		},
		{
			name: "wrong argument count",
			data: func(t *testing.T) []byte {
				return encode(t, Address, int32(1), "ClickBbutton", int32(0))
			},
			ignored: 1,
		},
	} {
		t.Run(tt.name, func(t *testing.T) {
			action := &recordingAction{}
			d := NewDispatcher(nil, action, testLogger())

			res, err := d.HandlePacket(context.Background(), tt.data(t))
			require.NoError(t, err)
			assert.Equal(t, tt.keys, action.keys)
			assert.Equal(t, len(tt.keys), len(res.Keys))
			assert.Equal(t, tt.ignored, res.Ignored)
			assert.Equal(t, osc.PacketMessage, res.Kind)
			assert.Equal(t, 1, res.Messages)
		})
	}
}

func TestDispatchArgumentTypeMismatch(t *testing.T) {
	// Eight arguments with the name where active belongs.
	data := encode(t, Address,
		"ClickBbutton", int32(1), int32(0), int32(0), int32(0),
		float32(0), float32(0), float32(0),
	)
	action := &recordingAction{}
	d := NewDispatcher(nil, action, testLogger())

	_, err := d.HandlePacket(context.Background(), data)
	require.ErrorIs(t, err, osc.ErrMalformed)
	require.Empty(t, action.keys)
}

func TestDispatchBundleOrdering(t *testing.T) {
	good := encodeReport(t, report{active: 1, name: "ClickBbutton"})
	// Declares eight int32 arguments but carries none.
	bad := osc.AppendString(osc.AppendString(nil, Address), ",iiiiiiii")

	t.Run("valid message first", func(t *testing.T) {
		action := &recordingAction{}
		d := NewDispatcher(nil, action, testLogger())

		res, err := d.HandlePacket(context.Background(), osc.AppendBundle(nil, 7, good, bad))
		require.ErrorIs(t, err, osc.ErrMalformed)
		require.Equal(t, []keyboard.Key{keyboard.KeyRightArrow}, action.keys)
		require.Equal(t, osc.PacketBundle, res.Kind)
		require.Equal(t, uint64(7), res.Timestamp)
		require.Equal(t, 1, res.Matched)
	})
	t.Run("malformed message first", func(t *testing.T) {
		action := &recordingAction{}
		d := NewDispatcher(nil, action, testLogger())

		res, err := d.HandlePacket(context.Background(), osc.AppendBundle(nil, 7, bad, good))
		require.ErrorIs(t, err, osc.ErrMalformed)
		require.Empty(t, action.keys, "rest of the bundle is abandoned")
		require.Zero(t, res.Matched)
	})
	t.Run("both valid", func(t *testing.T) {
		action := &recordingAction{}
		d := NewDispatcher(nil, action, testLogger())

		other := encodeReport(t, report{active: 1, name: "ClickAbutton"})
		res, err := d.HandlePacket(context.Background(), osc.AppendBundle(nil, 7, good, other))
		require.NoError(t, err)
		require.Equal(t, []keyboard.Key{keyboard.KeyRightArrow, keyboard.KeyLeftArrow}, action.keys)
		require.Equal(t, 2, res.Messages)
	})
}

func TestDispatchMalformedPacket(t *testing.T) {
	action := &recordingAction{}
	d := NewDispatcher(nil, action, testLogger())

	_, err := d.HandlePacket(context.Background(), []byte{1, 2, 3})
	require.ErrorIs(t, err, osc.ErrMalformed)
	require.Empty(t, action.keys)
}

func TestDispatchActionFailure(t *testing.T) {
	action := &recordingAction{err: errors.New("injector down")}
	d := NewDispatcher(nil, action, testLogger())

	data := osc.AppendBundle(nil, 1,
		encodeReport(t, report{active: 1, name: "ClickBbutton"}),
		encodeReport(t, report{active: 1, name: "ClickAbutton"}),
	)
	res, err := d.HandlePacket(context.Background(), data)
	require.NoError(t, err, "action errors do not fail the packet")
	require.Equal(t, 2, res.Failed)
	require.Len(t, action.keys, 2)
}

func TestDispatchCustomBindings(t *testing.T) {
	action := &recordingAction{}
	d := NewDispatcher(Bindings{
		{Button: "ClickTrigger", Left: true, Key: keyboard.KeyLeftArrow},
	}, action, testLogger())

	_, err := d.HandlePacket(context.Background(),
		encodeReport(t, report{active: 1, name: "ClickTrigger", isLeft: 1}))
	require.NoError(t, err)
	require.Equal(t, []keyboard.Key{keyboard.KeyLeftArrow}, action.keys)

	action.keys = nil
	_, err = d.HandlePacket(context.Background(),
		encodeReport(t, report{active: 1, name: "ClickBbutton"}))
	require.NoError(t, err)
	require.Empty(t, action.keys)
}
