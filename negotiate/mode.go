package negotiate

import (
	"fmt"
	"strings"
)

// Mode is the strategy used to turn a sequence of items into response bytes.
// It is chosen once per request.
type Mode int

const (
	// AggregateJSON buffers every item and writes one JSON array.
	AggregateJSON Mode = iota
	// PlainConcat buffers every item and writes their text back to back.
	PlainConcat
	// EventStream writes one data frame per item as soon as it is produced.
	EventStream
)

// Media types of the supported modes.
const (
	MediaTypeJSON        = "application/json"
	MediaTypePlain       = "text/plain"
	MediaTypeEventStream = "text/event-stream"
)

var modeNames = map[Mode]string{
	AggregateJSON: "json",
	PlainConcat:   "plain",
	EventStream:   "event-stream",
}

// String returns the short name used in logs, metrics and configuration.
func (m Mode) String() string {
	if name, ok := modeNames[m]; ok {
		return name
	}
	return fmt.Sprintf("mode(%d)", int(m))
}

// MediaType returns the bare media type the mode renders.
func (m Mode) MediaType() string {
	switch m {
	case PlainConcat:
		return MediaTypePlain
	case EventStream:
		return MediaTypeEventStream
	default:
		return MediaTypeJSON
	}
}

// ContentType returns the Content-Type header value for the mode.
func (m Mode) ContentType() string {
	switch m {
	case PlainConcat:
		return MediaTypePlain + "; charset=utf-8"
	case EventStream:
		return MediaTypeEventStream + "; charset=utf-8"
	default:
		return MediaTypeJSON
	}
}

// Buffered reports whether the mode needs the whole sequence before writing.
func (m Mode) Buffered() bool {
	return m != EventStream
}

// ParseMode parses a mode name as returned by String.
func ParseMode(s string) (Mode, error) {
	for m, name := range modeNames {
		if strings.EqualFold(s, name) {
			return m, nil
		}
	}
	return 0, fmt.Errorf("unknown render mode %q", s)
}

// Offer declares the modes an endpoint can render and which one it prefers.
type Offer struct {
	// Default is chosen when the client expresses no preference.
	Default Mode
	// Modes are the other modes the endpoint supports, in preference order.
	Modes []Mode
}

// JSONOffer is the declaration of structured endpoints: JSON by default,
// event stream on request.
func JSONOffer() Offer {
	return Offer{Default: AggregateJSON, Modes: []Mode{EventStream}}
}

// TextOffer is the declaration of plain-text endpoints: concatenated text by
// default, JSON or event stream on request.
func TextOffer() Offer {
	return Offer{Default: PlainConcat, Modes: []Mode{AggregateJSON, EventStream}}
}

// Candidates returns the supported modes, default first, without duplicates.
func (o Offer) Candidates() []Mode {
	out := []Mode{o.Default}
	for _, m := range o.Modes {
		if !o.contains(out, m) {
			out = append(out, m)
		}
	}
	return out
}

// Supports reports whether m is one of the offered modes.
func (o Offer) Supports(m Mode) bool {
	return o.contains(o.Candidates(), m)
}

// MediaTypes returns the media types of the offered modes, default first.
func (o Offer) MediaTypes() []string {
	candidates := o.Candidates()
	out := make([]string, len(candidates))
	for i, m := range candidates {
		out[i] = m.MediaType()
	}
	return out
}

func (o Offer) contains(modes []Mode, m Mode) bool {
	for _, x := range modes {
		if x == m {
			return true
		}
	}
	return false
}
