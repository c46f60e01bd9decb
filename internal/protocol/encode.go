package protocol

import (
	"fmt"
	"image/color"

	"github.com/coreman2200/funtimes-pushbridge/internal/scene"
)

// Encoder builds datagrams in the format Decode reads. The zero value is
// ready to use.
type Encoder struct {
	buf []byte
}

// Grid returns a complete grid datagram for elems. The slice is reused by
// the next call.
func (e *Encoder) Grid(elems ...scene.Element) ([]byte, error) {
	e.buf = append(e.buf[:0], StartByte, byte(CommandGrid))
	for i, el := range elems {
		if err := e.element(el); err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
	}
	e.buf = append(e.buf, EndByte)
	return e.buf, nil
}

func Shutdown() []byte {
	return []byte{StartByte, byte(0xFF), EndByte}
}

func (e *Encoder) element(el scene.Element) error {
	e.buf = append(e.buf, byte(el.Kind()))
	switch v := el.(type) {
	case *scene.ChannelSelector:
		return e.selector(v)
	case *scene.Channel:
		if err := e.selector(&v.ChannelSelector); err != nil {
			return err
		}
		e.buf = append(e.buf, byte(v.Edit))
		for _, f := range []func() error{
			func() error { return e.int(v.Volume) },
			func() error { return e.string(v.VolumeText) },
			func() error { return e.int(v.Pan) },
			func() error { return e.string(v.PanText) },
			func() error { return e.int(v.VU) },
		} {
			if err := f(); err != nil {
				return err
			}
		}
		e.bool(v.Mute)
		e.bool(v.Solo)
		e.bool(v.Arm)
		e.buf = append(e.buf, byte(v.Crossfade))
	case *scene.Param:
		if err := e.selector(&v.ChannelSelector); err != nil {
			return err
		}
		if err := e.string(v.ParamName); err != nil {
			return err
		}
		n := NoValue
		if v.Value.Valid {
			n = v.Value.N
		}
		if err := e.int(n); err != nil {
			return err
		}
		if err := e.string(v.ValueText); err != nil {
			return err
		}
		e.bool(v.Touched)
	case *scene.Sends:
		if err := e.selector(&v.ChannelSelector); err != nil {
			return err
		}
		for _, s := range v.Slots {
			if err := e.string(s.Name); err != nil {
				return err
			}
			if err := e.string(s.Text); err != nil {
				return err
			}
			if err := e.int(s.Value); err != nil {
				return err
			}
			e.bool(s.Edited)
		}
		e.bool(v.Extension)
	case *scene.List:
		if err := e.int(len(v.Items)); err != nil {
			return err
		}
		for _, it := range v.Items {
			if err := e.string(it.Label); err != nil {
				return err
			}
			e.bool(it.Selected)
		}
	default:
		return fmt.Errorf("unsupported element %T", el)
	}
	return nil
}

func (e *Encoder) selector(s *scene.ChannelSelector) error {
	if err := e.string(s.MenuName); err != nil {
		return err
	}
	e.bool(s.MenuSelected)
	if err := e.string(s.Name); err != nil {
		return err
	}
	e.color(s.Color)
	e.bool(s.Selected)
	e.buf = append(e.buf, byte(s.Type))
	return nil
}

func (e *Encoder) int(v int) error {
	if v < 0 || v > NoValue {
		return fmt.Errorf("%w: %d does not fit 14 bits", ErrRange, v)
	}
	e.buf = append(e.buf, byte(v&0x7F), byte(v>>7))
	return nil
}

func (e *Encoder) bool(b bool) {
	if b {
		e.buf = append(e.buf, 1)
	} else {
		e.buf = append(e.buf, 0)
	}
}

func (e *Encoder) string(s string) error {
	if err := e.int(len(s)); err != nil {
		return fmt.Errorf("string too long: %w", err)
	}
	e.buf = append(e.buf, s...)
	return nil
}

func (e *Encoder) color(c color.Color) {
	if c == nil {
		e.bool(false)
		return
	}
	e.bool(true)
	rgba := color.RGBAModel.Convert(c).(color.RGBA)
	for _, v := range [...]uint8{rgba.R, rgba.G, rgba.B} {
		e.buf = append(e.buf, v&0x7F, v>>7)
	}
}
