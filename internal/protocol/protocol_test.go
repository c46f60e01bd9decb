package protocol

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreman2200/funtimes-pushbridge/internal/scene"
	"github.com/coreman2200/funtimes-pushbridge/internal/style"
)

func sampleElements() []scene.Element {
	sel := scene.ChannelSelector{
		Header: scene.Header{MenuName: "Mix", MenuSelected: true, Name: "Bass", Color: style.RGB(200, 10, 0), Selected: true},
		Type:   scene.TypeAudio,
	}
	sends := &scene.Sends{ChannelSelector: sel, Extension: true}
	sends.Slots[0] = scene.SendSlot{Name: "Rev", Text: "-3 dB", Value: 700, Edited: true}
	return []scene.Element{
		&scene.ChannelSelector{Header: scene.Header{Name: "Ünïcode"}, Type: scene.TypeMaster},
		&scene.Channel{
			ChannelSelector: sel,
			Edit:            scene.EditAll,
			Volume:          1023, VolumeText: "0 dB",
			Pan: 512, PanText: "C",
			VU:   300,
			Mute: true, Arm: true,
			Crossfade: scene.CrossfadeAB,
		},
		&scene.Param{ChannelSelector: sel, ParamName: "Cutoff", Value: scene.ValueOf(1024), ValueText: "20 kHz", Touched: true},
		&scene.Param{ParamName: "Empty", Value: scene.NoValue},
		&scene.List{Items: []scene.ListItem{{Label: "A"}, {Label: "B", Selected: true}}},
		sends,
	}
}

func TestGridRoundTrip(t *testing.T) {
	var enc Encoder
	data, err := enc.Grid(sampleElements()...)
	require.NoError(t, err)

	msg, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, CommandGrid, msg.Command)
	require.NotNil(t, msg.Scene)
	assert.Equal(t, sampleElements(), msg.Scene.Elements)
}

func TestEmptyGrid(t *testing.T) {
	msg, err := Decode([]byte{StartByte, byte(CommandGrid), EndByte})
	require.NoError(t, err)
	require.NotNil(t, msg.Scene)
	assert.Equal(t, 0, msg.Scene.Len())
}

func TestFramingRejected(t *testing.T) {
	for name, data := range map[string][]byte{
		"empty":     nil,
		"one byte":  {StartByte},
		"no start":  {0x00, 10, EndByte},
		"no end":    {StartByte, 10, 0x00},
		"truncated": {StartByte, 10},
	} {
		_, err := Decode(data)
		assert.ErrorIs(t, err, ErrUnformatted, name)
	}
}

func TestUnknownCommand(t *testing.T) {
	_, err := Decode([]byte{StartByte, 7, EndByte})
	var uc *UnknownCommandError
	require.True(t, errors.As(err, &uc))
	assert.Equal(t, Command(7), uc.Code)
	assert.Equal(t, "unknown display command: 7", err.Error())
}

func TestShutdownIsRecognised(t *testing.T) {
	msg, err := Decode(Shutdown())
	require.NoError(t, err)
	assert.Equal(t, CommandShutdown, msg.Command)
	assert.Nil(t, msg.Scene)
}

func TestTruncatedRecordFailsWholeMessage(t *testing.T) {
	var enc Encoder
	data, err := enc.Grid(sampleElements()...)
	require.NoError(t, err)

	// cut the last record short but keep the framing intact
	cut := append(append([]byte(nil), data[:len(data)-4]...), EndByte)
	msg, err := Decode(cut)
	assert.ErrorIs(t, err, ErrTruncated)
	assert.Nil(t, msg.Scene)
}

func TestOutOfRangeTag(t *testing.T) {
	_, err := Decode([]byte{StartByte, byte(CommandGrid), 9, EndByte})
	var ut *UnknownTagError
	require.True(t, errors.As(err, &ut))
	assert.Equal(t, byte(9), ut.Tag)
}

func TestOutOfRangeEnum(t *testing.T) {
	var enc Encoder
	data, err := enc.Grid(&scene.ChannelSelector{Type: scene.TypeAudio})
	require.NoError(t, err)
	bad := append([]byte(nil), data...)
	bad[len(bad)-2] = 8 // channel type
	_, err = Decode(bad)
	assert.ErrorIs(t, err, ErrRange)
}

func TestOutOfRangeValue(t *testing.T) {
	sends := &scene.Sends{}
	sends.Slots[2].Value = 16000
	for name, el := range map[string]scene.Element{
		"volume":     &scene.Channel{Volume: 1025},
		"pan":        &scene.Channel{Pan: 2048},
		"vu":         &scene.Channel{VU: 16382},
		"param":      &scene.Param{Value: scene.ValueOf(1025)},
		"send value": sends,
	} {
		var enc Encoder
		data, err := enc.Grid(&scene.ChannelSelector{}, el)
		require.NoError(t, err, name)
		msg, err := Decode(data)
		assert.ErrorIs(t, err, ErrRange, name)
		assert.Nil(t, msg.Scene, name)
	}

	var enc Encoder
	data, err := enc.Grid(&scene.Channel{Volume: 1024, Pan: 0, VU: 1024}, &scene.Param{Value: scene.NoValue})
	require.NoError(t, err)
	_, err = Decode(data)
	assert.NoError(t, err, "the full range and the absent value decode")
}

func TestReaderInt(t *testing.T) {
	r := &reader{b: []byte{0x7F, 0x7F, 0x00, 0x01, 0x80, 0x00}}
	v, err := r.int()
	require.NoError(t, err)
	assert.Equal(t, NoValue, v)
	v, err = r.int()
	require.NoError(t, err)
	assert.Equal(t, 128, v)
	_, err = r.int()
	assert.ErrorIs(t, err, ErrRange)
	_, err = r.int()
	assert.ErrorIs(t, err, ErrTruncated)
}

func TestEncoderRejectsOversizedValues(t *testing.T) {
	var enc Encoder
	_, err := enc.Grid(&scene.Channel{Volume: 1 << 14})
	assert.ErrorIs(t, err, ErrRange)
}

func TestListCountBeyondPayload(t *testing.T) {
	_, err := Decode([]byte{StartByte, byte(CommandGrid), byte(scene.KindList), 0x7F, 0x7F, EndByte})
	assert.ErrorIs(t, err, ErrTruncated)
}
