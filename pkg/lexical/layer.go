package lexical

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Interval is a half-open [Start, End) range measured in code points.
type Interval struct {
	Start int
	End   int
}

// MarshalJSON encodes the interval as a two element array.
func (iv Interval) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]int{iv.Start, iv.End})
}

func (iv *Interval) UnmarshalJSON(data []byte) error {
	var pair [2]int
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("invalid interval: %w", err)
	}
	if pair[0] >= pair[1] {
		return fmt.Errorf("invalid interval [%d,%d)", pair[0], pair[1])
	}
	iv.Start, iv.End = pair[0], pair[1]
	return nil
}

// Layer holds every range sharing one formatting identity.
// Intervals are sorted, disjoint and never adjacent.
type Layer struct {
	Kind       string            `json:"kind"`
	Attributes map[string]string `json:"attributes,omitempty"`
	Intervals  []Interval        `json:"intervals"`
}

// AddSpan records [start, end). Spans must arrive in non-decreasing order;
// a span touching the last interval extends it. Empty spans are ignored.
func (l *Layer) AddSpan(start, end int) error {
	switch {
	case start > end:
		return fmt.Errorf("%w: %s span [%d,%d)", ErrInvalidSpan, l.Kind, start, end)
	case start == end:
		return nil
	}
	n := len(l.Intervals)
	if n == 0 {
		l.Intervals = append(l.Intervals, Interval{Start: start, End: end})
		return nil
	}

	last := &l.Intervals[n-1]
	switch {
	case start < last.End:
		return fmt.Errorf("%w: %s span [%d,%d) before end %d", ErrOutOfOrderSpan, l.Kind, start, end, last.End)
	case start == last.End:
		last.End = end
	default:
		l.Intervals = append(l.Intervals, Interval{Start: start, End: end})
	}
	return nil
}

// Contains reports the index of the interval holding pos.
func (l *Layer) Contains(pos int) (int, bool) {
	// First interval whose end lies past pos; everything before it ends at or before pos.
	i := sort.Search(len(l.Intervals), func(i int) bool {
		return l.Intervals[i].End > pos
	})
	if i < len(l.Intervals) && l.Intervals[i].Start <= pos {
		return i, true
	}
	return -1, false
}

// first returns the start of the first interval, or -1 for an empty layer.
func (l *Layer) first() int {
	if len(l.Intervals) == 0 {
		return -1
	}
	return l.Intervals[0].Start
}

// identityKey is deterministic regardless of map order.
func identityKey(kind string, attrs map[string]string) string {
	if len(attrs) == 0 {
		return kind
	}
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	sb.WriteString(kind)
	for _, k := range keys {
		sb.WriteString("\x00")
		sb.WriteString(k)
		sb.WriteString("=")
		sb.WriteString(attrs[k])
	}
	return sb.String()
}

// LayerSet owns the layers of one flattening pass.
type LayerSet struct {
	layers map[string]*Layer
	order  []*Layer
}

func NewLayerSet() *LayerSet {
	return &LayerSet{
		layers: make(map[string]*Layer),
	}
}

// AddSpan adds [start, end) to the layer identified by kind and attrs, creating it on first use.
func (s *LayerSet) AddSpan(kind string, attrs map[string]string, start, end int) error {
	key := identityKey(kind, attrs)
	l, ok := s.layers[key]
	if !ok {
		l = &Layer{Kind: kind, Attributes: attrs}
		s.layers[key] = l
		s.order = append(s.order, l)
	}
	return l.AddSpan(start, end)
}

// Len returns the number of distinct layers.
func (s *LayerSet) Len() int {
	return len(s.order)
}

// List returns non-empty layers ordered by first start, ties in creation order.
func (s *LayerSet) List() []*Layer {
	out := make([]*Layer, 0, len(s.order))
	for _, l := range s.order {
		if len(l.Intervals) > 0 {
			out = append(out, l)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].first() < out[j].first()
	})
	if len(out) == 0 {
		return nil
	}
	return out
}
