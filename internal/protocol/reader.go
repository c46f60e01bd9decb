package protocol

import (
	"errors"
	"fmt"
	"image/color"
)

var (
	ErrTruncated = errors.New("record truncated")
	ErrRange     = errors.New("value out of range")
)

// reader walks an element payload. All reads are bounds checked.
type reader struct {
	b   []byte
	off int
}

func (r *reader) more() bool { return r.off < len(r.b) }

func (r *reader) byte() (byte, error) {
	if r.off >= len(r.b) {
		return 0, fmt.Errorf("%w at offset %d", ErrTruncated, r.off)
	}
	v := r.b[r.off]
	r.off++
	return v, nil
}

// int reads a 14-bit integer sent as two 7-bit groups, low group first.
func (r *reader) int() (int, error) {
	lo, err := r.byte()
	if err != nil {
		return 0, err
	}
	hi, err := r.byte()
	if err != nil {
		return 0, err
	}
	if lo > 0x7F || hi > 0x7F {
		return 0, fmt.Errorf("%w: integer byte at offset %d has the high bit set", ErrRange, r.off-2)
	}
	return int(lo) | int(hi)<<7, nil
}

func (r *reader) bool() (bool, error) {
	v, err := r.byte()
	if err != nil {
		return false, err
	}
	switch v {
	case 0:
		return false, nil
	case 1:
		return true, nil
	}
	return false, fmt.Errorf("%w: bool %d at offset %d", ErrRange, v, r.off-1)
}

func (r *reader) string() (string, error) {
	n, err := r.int()
	if err != nil {
		return "", err
	}
	if r.off+n > len(r.b) {
		return "", fmt.Errorf("%w: string of %d bytes at offset %d", ErrTruncated, n, r.off)
	}
	s := string(r.b[r.off : r.off+n])
	r.off += n
	return s, nil
}

// enum reads a one byte enumeration that must be below limit.
func (r *reader) enum(limit int) (int, error) {
	v, err := r.byte()
	if err != nil {
		return 0, err
	}
	if int(v) >= limit {
		return 0, fmt.Errorf("%w: enum %d at offset %d", ErrRange, v, r.off-1)
	}
	return int(v), nil
}

// color reads a presence flag and, when set, three components.
func (r *reader) color() (color.Color, error) {
	ok, err := r.bool()
	if err != nil || !ok {
		return nil, err
	}
	var c [3]uint8
	for i := range c {
		v, err := r.int()
		if err != nil {
			return nil, err
		}
		if v > 0xFF {
			return nil, fmt.Errorf("%w: color component %d", ErrRange, v)
		}
		c[i] = uint8(v)
	}
	return color.RGBA{R: c[0], G: c[1], B: c[2], A: 0xFF}, nil
}
