// Package scene models what the display shows: an ordered row of grid
// elements, each painting itself into one column.
package scene

import (
	"image/color"

	"github.com/google/uuid"
)

// Element is one column of the display. The set of variants is closed.
type Element interface {
	Kind() Kind
	// Draw paints the element into the column starting at left. height is
	// the full display height.
	Draw(c Canvas, left, width, height int)

	element()
}

// Header is shared by every variant except List.
type Header struct {
	MenuName     string
	MenuSelected bool
	Name         string
	// Color is the track color strip; nil leaves it unpainted.
	Color    color.Color
	Selected bool
}

// Scene is published whole and never modified afterwards.
type Scene struct {
	ID       uuid.UUID
	Elements []Element
}

func NewScene(elems ...Element) *Scene {
	return &Scene{ID: uuid.New(), Elements: elems}
}

// Empty is the scene shown before the first grid message arrives.
func Empty() *Scene { return NewScene() }

func (s *Scene) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Elements)
}

// Kinds summarises the scene for logs and health output.
func (s *Scene) Kinds() []string {
	out := make([]string, 0, s.Len())
	if s == nil {
		return out
	}
	for _, e := range s.Elements {
		out = append(out, e.Kind().String())
	}
	return out
}
