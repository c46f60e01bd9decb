package main

import (
	"fmt"
	"image/color"

	"github.com/coreman2200/funtimes-pushbridge/internal/geom"
	"github.com/coreman2200/funtimes-pushbridge/internal/scene"
	"github.com/coreman2200/funtimes-pushbridge/internal/style"
)

var trackColors = []color.RGBA{
	style.RGB(217, 46, 36), style.RGB(255, 148, 0), style.RGB(236, 212, 0), style.RGB(92, 186, 45),
	style.RGB(0, 166, 148), style.RGB(32, 120, 208), style.RGB(146, 86, 204), style.RGB(180, 180, 180),
}

var menus = []string{"Volume", "Pan", "Send 1", "Send 2", "Device", "Clip", "Track", "Master"}

func header(i int, name string) scene.ChannelSelector {
	return scene.ChannelSelector{
		Header: scene.Header{
			MenuName:     menus[i],
			MenuSelected: i == 0,
			Name:         name,
			Color:        trackColors[i],
			Selected:     i == 2,
		},
		Type: scene.ChannelType(1 + i%6),
	}
}

var demos = map[string]func() []scene.Element{
	"empty": func() []scene.Element { return nil },
	"channels": func() []scene.Element {
		out := make([]scene.Element, 8)
		for i := range out {
			vol := geom.MaxValue * (i + 1) / 8
			out[i] = &scene.Channel{
				ChannelSelector: header(i, fmt.Sprintf("Track %d", i+1)),
				Edit:            scene.EditType(i % 4),
				Volume:          vol,
				VolumeText:      fmt.Sprintf("%.1f dB", float64(vol-800)/40),
				Pan:             geom.MaxValue * i / 7,
				PanText:         fmt.Sprintf("%d%%", (i-4)*25),
				VU:              vol * 3 / 4,
				Mute:            i == 3,
				Solo:            i == 5,
				Arm:             i == 1,
				Crossfade:       scene.CrossfadeMode(i % 4),
			}
		}
		return out
	},
	"params": func() []scene.Element {
		names := []string{"Cutoff", "Resonance", "Drive", "Attack", "Decay", "Sustain", "Release", ""}
		out := make([]scene.Element, 8)
		for i := range out {
			v := scene.ValueOf(geom.MaxValue * i / 7)
			if i == 6 {
				v = scene.NoValue
			}
			out[i] = &scene.Param{
				ChannelSelector: header(i, "Poly Synth"),
				ParamName:       names[i],
				Value:           v,
				ValueText:       fmt.Sprintf("%d %%", 100*i/7),
				Touched:         i == 1,
			}
		}
		return out
	},
	"sends": func() []scene.Element {
		out := make([]scene.Element, 8)
		for i := range out {
			s := &scene.Sends{ChannelSelector: header(i, fmt.Sprintf("Track %d", i+1)), Extension: i%2 == 1}
			if s.Extension {
				s.Name = ""
			}
			for j := range s.Slots {
				s.Slots[j] = scene.SendSlot{
					Name:   fmt.Sprintf("FX %c", 'A'+j),
					Value:  geom.MaxValue * (j + 1) / 4,
					Edited: j == i%4,
				}
				if j == 0 && i == 2 {
					s.Slots[j].Text = "-6.0 dB"
				}
			}
			out[i] = s
		}
		return out
	},
	"list": func() []scene.Element {
		out := make([]scene.Element, 8)
		for i := range out {
			items := make([]scene.ListItem, 6)
			for j := range items {
				items[j] = scene.ListItem{Label: fmt.Sprintf("Preset %d", i*6+j+1), Selected: j == i%6}
			}
			out[i] = &scene.List{Items: items}
		}
		return out
	},
}
