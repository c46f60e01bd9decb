package scene

import "github.com/coreman2200/funtimes-pushbridge/internal/geom"

type ListItem struct {
	Label    string
	Selected bool
}

// List splits the full column height into equal rows. It has no header.
type List struct {
	Items []ListItem
}

func (*List) Kind() Kind { return KindList }
func (*List) element()   {}

func (e *List) Draw(c Canvas, left, width, _ int) {
	if len(e.Items) == 0 {
		return
	}
	st := c.Style()
	itemHeight := geom.DisplayHeight / len(e.Items)
	itemLeft := left + sep
	itemWidth := width - sep
	for i, it := range e.Items {
		top := i * itemHeight
		fill, ink := st.Border, st.Text
		if it.Selected {
			fill, ink = st.Text, st.Border
		}
		c.FillRect(itemLeft, top+sep, itemWidth, itemHeight-2*sep, fill)
		c.Text(it.Label, itemLeft+geom.Inset, top, itemWidth-2*geom.Inset, itemHeight, float64(itemHeight/2), AlignLeft, ink)
	}
}
