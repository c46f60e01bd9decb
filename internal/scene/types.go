package scene

import "fmt"

// ChannelType selects the track icon and a few layout exceptions.
type ChannelType uint8

const (
	TypeUnknown ChannelType = iota
	TypeAudio
	TypeInstrument
	TypeHybrid
	TypeGroup
	TypeEffect
	TypeMaster
	TypeLayer
)

var channelTypeNames = [...]string{"unknown", "audio", "instrument", "hybrid", "group", "effect", "master", "layer"}

func (t ChannelType) Valid() bool { return int(t) < len(channelTypeNames) }

func (t ChannelType) String() string {
	if !t.Valid() {
		return fmt.Sprintf("ChannelType(%d)", uint8(t))
	}
	return channelTypeNames[t]
}

// EditType says which control of a channel the knobs currently edit.
type EditType uint8

const (
	EditVolume EditType = iota
	EditPan
	EditCrossfader
	EditAll
)

func (e EditType) Valid() bool { return e <= EditAll }

func (e EditType) edits(what EditType) bool { return e == what || e == EditAll }

func (e EditType) String() string {
	switch e {
	case EditVolume:
		return "volume"
	case EditPan:
		return "pan"
	case EditCrossfader:
		return "crossfader"
	case EditAll:
		return "all"
	}
	return fmt.Sprintf("EditType(%d)", uint8(e))
}

// CrossfadeMode is the channel's crossfader assignment. CrossfadeOff hides the selector.
type CrossfadeMode uint8

const (
	CrossfadeA CrossfadeMode = iota
	CrossfadeAB
	CrossfadeB
	CrossfadeOff
)

func (m CrossfadeMode) Valid() bool { return m <= CrossfadeOff }

func (m CrossfadeMode) String() string {
	switch m {
	case CrossfadeA:
		return "A"
	case CrossfadeAB:
		return "AB"
	case CrossfadeB:
		return "B"
	case CrossfadeOff:
		return "off"
	}
	return fmt.Sprintf("CrossfadeMode(%d)", uint8(m))
}

// Kind identifies the element variant. The values double as wire tags.
type Kind uint8

const (
	KindChannelSelector Kind = iota
	KindChannel
	KindParam
	KindList
	KindSends
)

func (k Kind) Valid() bool { return k <= KindSends }

func (k Kind) String() string {
	switch k {
	case KindChannelSelector:
		return "channel-selector"
	case KindChannel:
		return "channel"
	case KindParam:
		return "param"
	case KindList:
		return "list"
	case KindSends:
		return "sends"
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Value is a fader position in 0..geom.MaxValue that may be absent.
type Value struct {
	N     int
	Valid bool
}

var NoValue = Value{}

func ValueOf(n int) Value { return Value{N: n, Valid: true} }

func (v Value) String() string {
	if !v.Valid {
		return "none"
	}
	return fmt.Sprint(v.N)
}
