// Package protocol decodes the datagrams the host sends to the bridge.
//
// A datagram is framed as 0xF0, a signed command byte, a payload and 0xF7.
// Command 10 carries a grid: a sequence of element records, each starting
// with its tag byte (see scene.Kind). Command -1 asks for shutdown.
package protocol

import (
	"errors"
	"fmt"

	"github.com/coreman2200/funtimes-pushbridge/internal/geom"
	"github.com/coreman2200/funtimes-pushbridge/internal/scene"
)

const (
	StartByte = 0xF0
	EndByte   = 0xF7

	// NoValue is the wire sentinel for an absent parameter value.
	NoValue = 1<<14 - 1
)

type Command int8

const (
	CommandShutdown Command = -1
	CommandGrid     Command = 10
)

func (c Command) String() string {
	switch c {
	case CommandGrid:
		return "grid"
	case CommandShutdown:
		return "shutdown"
	}
	return fmt.Sprintf("Command(%d)", int8(c))
}

var ErrUnformatted = errors.New("unformatted message")

type UnknownCommandError struct {
	Code Command
}

func (e *UnknownCommandError) Error() string {
	return fmt.Sprintf("unknown display command: %d", int8(e.Code))
}

type UnknownTagError struct {
	Tag    byte
	Offset int
}

func (e *UnknownTagError) Error() string {
	return fmt.Sprintf("unknown element tag %d at offset %d", e.Tag, e.Offset)
}

// Message is a decoded datagram. Scene is set for grid messages only.
type Message struct {
	Command Command
	Scene   *scene.Scene
}

// Decode validates the framing and decodes the command. A grid that fails
// to decode yields an error and no scene.
func Decode(data []byte) (Message, error) {
	if len(data) < 2 || data[0] != StartByte || data[len(data)-1] != EndByte {
		return Message{}, ErrUnformatted
	}
	cmd := Command(int8(data[1]))
	switch cmd {
	case CommandShutdown:
		return Message{Command: cmd}, nil
	case CommandGrid:
		// the end byte differs from the command byte, so len(data) >= 3
		elems, err := DecodeElements(data[2 : len(data)-1])
		if err != nil {
			return Message{}, err
		}
		return Message{Command: cmd, Scene: scene.NewScene(elems...)}, nil
	}
	return Message{}, &UnknownCommandError{Code: cmd}
}

// DecodeElements reads element records until the payload is exhausted.
func DecodeElements(payload []byte) ([]scene.Element, error) {
	r := &reader{b: payload}
	var out []scene.Element
	for r.more() {
		start := r.off
		e, err := decodeElement(r)
		if err != nil {
			return nil, fmt.Errorf("element %d at offset %d: %w", len(out), start, err)
		}
		out = append(out, e)
	}
	return out, nil
}

func decodeElement(r *reader) (scene.Element, error) {
	off := r.off
	tag, err := r.byte()
	if err != nil {
		return nil, err
	}
	kind := scene.Kind(tag)
	if !kind.Valid() {
		return nil, &UnknownTagError{Tag: tag, Offset: off}
	}
	if kind == scene.KindList {
		return decodeList(r)
	}

	sel, err := decodeSelector(r)
	if err != nil {
		return nil, err
	}
	switch kind {
	case scene.KindChannel:
		return decodeChannel(r, sel)
	case scene.KindParam:
		return decodeParam(r, sel)
	case scene.KindSends:
		return decodeSends(r, sel)
	}
	return &sel, nil
}

// fields runs the reads in order and stops at the first error.
func fields(reads ...func() error) error {
	for _, read := range reads {
		if err := read(); err != nil {
			return err
		}
	}
	return nil
}

func str(r *reader, dst *string) func() error {
	return func() (err error) { *dst, err = r.string(); return }
}

func boolean(r *reader, dst *bool) func() error {
	return func() (err error) { *dst, err = r.bool(); return }
}

func integer(r *reader, dst *int) func() error {
	return func() (err error) { *dst, err = r.int(); return }
}

// level reads a fader level, 0..geom.MaxValue.
func level(r *reader, dst *int) func() error {
	return func() error {
		off := r.off
		v, err := r.int()
		if err != nil {
			return err
		}
		if v > geom.MaxValue {
			return fmt.Errorf("%w: level %d at offset %d", ErrRange, v, off)
		}
		*dst = v
		return nil
	}
}

func decodeSelector(r *reader) (scene.ChannelSelector, error) {
	var s scene.ChannelSelector
	err := fields(
		str(r, &s.MenuName),
		boolean(r, &s.MenuSelected),
		str(r, &s.Name),
		func() (err error) { s.Color, err = r.color(); return },
		boolean(r, &s.Selected),
		func() error {
			v, err := r.enum(int(scene.TypeLayer) + 1)
			s.Type = scene.ChannelType(v)
			return err
		},
	)
	return s, err
}

func decodeChannel(r *reader, sel scene.ChannelSelector) (*scene.Channel, error) {
	c := &scene.Channel{ChannelSelector: sel}
	err := fields(
		func() error {
			v, err := r.enum(int(scene.EditAll) + 1)
			c.Edit = scene.EditType(v)
			return err
		},
		level(r, &c.Volume),
		str(r, &c.VolumeText),
		level(r, &c.Pan),
		str(r, &c.PanText),
		level(r, &c.VU),
		boolean(r, &c.Mute),
		boolean(r, &c.Solo),
		boolean(r, &c.Arm),
		func() error {
			v, err := r.enum(int(scene.CrossfadeOff) + 1)
			c.Crossfade = scene.CrossfadeMode(v)
			return err
		},
	)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func decodeParam(r *reader, sel scene.ChannelSelector) (*scene.Param, error) {
	p := &scene.Param{ChannelSelector: sel}
	var v int
	err := fields(
		str(r, &p.ParamName),
		func() error {
			if err := integer(r, &v)(); err != nil || v == NoValue {
				return err
			}
			if v > geom.MaxValue {
				return fmt.Errorf("%w: param value %d", ErrRange, v)
			}
			return nil
		},
		str(r, &p.ValueText),
		boolean(r, &p.Touched),
	)
	if err != nil {
		return nil, err
	}
	if v != NoValue {
		p.Value = scene.ValueOf(v)
	}
	return p, nil
}

func decodeSends(r *reader, sel scene.ChannelSelector) (*scene.Sends, error) {
	s := &scene.Sends{ChannelSelector: sel}
	for i := range s.Slots {
		slot := &s.Slots[i]
		if err := fields(
			str(r, &slot.Name),
			str(r, &slot.Text),
			level(r, &slot.Value),
			boolean(r, &slot.Edited),
		); err != nil {
			return nil, fmt.Errorf("send %d: %w", i, err)
		}
	}
	if err := boolean(r, &s.Extension)(); err != nil {
		return nil, err
	}
	return s, nil
}

func decodeList(r *reader) (*scene.List, error) {
	n, err := r.int()
	if err != nil {
		return nil, err
	}
	// each item needs at least three bytes; reject counts the payload cannot hold
	if n*3 > len(r.b)-r.off {
		return nil, fmt.Errorf("%w: list of %d items", ErrTruncated, n)
	}
	l := &scene.List{Items: make([]scene.ListItem, n)}
	for i := range l.Items {
		it := &l.Items[i]
		if err := fields(str(r, &it.Label), boolean(r, &it.Selected)); err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
	}
	return l, nil
}
