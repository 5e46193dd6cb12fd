package negotiate

import (
	"sort"
	"strings"

	"github.com/munnerz/goautoneg"

	"github.com/kbukum/streamkit/errors"
)

// Range is one parsed entry of an Accept header.
type Range struct {
	Type    string
	SubType string
	Q       float64
}

func (r Range) wildcard() bool {
	return r.Type == "*" && r.SubType == "*"
}

func (r Range) specificity() int {
	switch {
	case r.Type == "*":
		return 0
	case r.SubType == "*":
		return 1
	default:
		return 2
	}
}

// Matches reports whether the range admits the given media type.
func (r Range) Matches(mediaType string) bool {
	typ, sub, _ := strings.Cut(mediaType, "/")
	return (r.Type == "*" || strings.EqualFold(r.Type, typ)) &&
		(r.SubType == "*" || strings.EqualFold(r.SubType, sub))
}

// ParseAccept parses an Accept header into ranges ordered by client
// preference: quality first, then specificity, then header order.
func ParseAccept(header string) []Range {
	var ranges []Range
	for _, element := range splitAccept(header) {
		parsed := goautoneg.ParseAccept(element)
		if len(parsed) == 0 {
			continue
		}
		a := parsed[0]
		ranges = append(ranges, Range{
			Type:    strings.ToLower(a.Type),
			SubType: strings.ToLower(a.SubType),
			Q:       a.Q,
		})
	}
	sort.SliceStable(ranges, func(i, j int) bool {
		if ranges[i].Q != ranges[j].Q {
			return ranges[i].Q > ranges[j].Q
		}
		return ranges[i].specificity() > ranges[j].specificity()
	})
	return ranges
}

// splitAccept splits header into its comma-separated elements. goautoneg
// splits on every comma and semicolon, so quoted parameter values are
// emptied first; only q is ever read and it is never quoted.
func splitAccept(header string) []string {
	var (
		elements []string
		b        strings.Builder
		quoted   bool
		escaped  bool
	)
	for _, r := range header {
		switch {
		case escaped:
			escaped = false
		case quoted && r == '\\':
			escaped = true
		case r == '"':
			quoted = !quoted
			b.WriteRune(r)
		case quoted:
		case r == ',':
			elements = append(elements, b.String())
			b.Reset()
		default:
			b.WriteRune(r)
		}
	}
	return append(elements, b.String())
}

// Resolve selects the render mode for a request.
//
// A missing header, or one holding only wildcards, selects the endpoint's
// default. An acceptable text/event-stream entry wins over every other entry
// when the endpoint offers event streams. Otherwise the first client range,
// in preference order, that admits an offered mode decides; the default mode
// is tried first for each range. When nothing matches the returned error
// satisfies errors.IsNotAcceptable.
func Resolve(accept string, offer Offer) (Mode, error) {
	if strings.TrimSpace(accept) == "" {
		return offer.Default, nil
	}
	ranges := ParseAccept(accept)
	if len(ranges) == 0 {
		return offer.Default, nil
	}

	excluded := make(map[Mode]bool)
	acceptable := ranges[:0:0]
	for _, r := range ranges {
		if r.Q > 0 {
			acceptable = append(acceptable, r)
			continue
		}
		for _, m := range offer.Candidates() {
			if r.specificity() == 2 && r.Matches(m.MediaType()) {
				excluded[m] = true
			}
		}
	}

	if offer.Supports(EventStream) && !excluded[EventStream] {
		for _, r := range acceptable {
			if !r.wildcard() && r.specificity() == 2 && r.Matches(MediaTypeEventStream) {
				return EventStream, nil
			}
		}
	}

	for _, r := range acceptable {
		for _, m := range offer.Candidates() {
			if !excluded[m] && r.Matches(m.MediaType()) {
				return m, nil
			}
		}
	}

	return 0, errors.NotAcceptable(accept, offer.MediaTypes())
}
