package entities

import (
	"math"
	"sort"
	"time"
)

// TideType describes the state of the tide
type TideType string

const (
	TideRising  TideType = "rising"
	TideFalling TideType = "falling"
	TideHigh    TideType = "high"
	TideLow     TideType = "low"
)

// TideEvent is a single high or low water extreme
type TideEvent struct {
	Type   TideType  `json:"type"` // TideHigh or TideLow
	Time   time.Time `json:"time"`
	Height float64   `json:"height"` // metres
}

// TideData represents the tide state at a location
type TideData struct {
	LocationID string      `json:"location_id"`
	Station    string      `json:"station"`
	Height     float64     `json:"height"` // Interpolated current height in metres
	Type       TideType    `json:"type"`
	NextHigh   *TideEvent  `json:"next_high,omitempty"`
	NextLow    *TideEvent  `json:"next_low,omitempty"`
	Events     []TideEvent `json:"events"`
	Timestamp  time.Time   `json:"timestamp"` // Moment the derived fields refer to
	CachedAt   time.Time   `json:"cached_at"`
}

// TideResult wraps tide data with cache information
type TideResult struct {
	Data      TideData `json:"data"`
	FromCache bool     `json:"from_cache"`
	Stale     bool     `json:"stale"`
}

// SlackWindow is how close to a high or low event the tide counts as slack
const SlackWindow = 30 * time.Minute

// Derive returns a copy of t with the current type, height and next events computed for now
func (t TideData) Derive(now time.Time) TideData {
	events := make([]TideEvent, len(t.Events))
	copy(events, t.Events)
	sort.Slice(events, func(i, j int) bool { return events[i].Time.Before(events[j].Time) })

	out := t
	out.Events = events
	out.Timestamp = now
	out.NextHigh, out.NextLow = nil, nil
	out.Type = ""
	out.Height = 0

	var prev, next *TideEvent
	for i := range events {
		e := &events[i]
		if !e.Time.After(now) {
			prev = e
			continue
		}
		if next == nil {
			next = e
		}
		if e.Type == TideHigh && out.NextHigh == nil {
			ev := *e
			out.NextHigh = &ev
		}
		if e.Type == TideLow && out.NextLow == nil {
			ev := *e
			out.NextLow = &ev
		}
	}

	switch {
	case prev != nil && now.Sub(prev.Time) <= SlackWindow:
		out.Type = prev.Type
	case next != nil && next.Time.Sub(now) <= SlackWindow:
		out.Type = next.Type
	case next != nil && next.Type == TideHigh:
		out.Type = TideRising
	case next != nil:
		out.Type = TideFalling
	case prev != nil && prev.Type == TideHigh:
		out.Type = TideFalling
	case prev != nil:
		out.Type = TideRising
	}

	// Cosine interpolation between the bracketing extremes
	switch {
	case prev != nil && next != nil:
		frac := float64(now.Sub(prev.Time)) / float64(next.Time.Sub(prev.Time))
		out.Height = prev.Height + (next.Height-prev.Height)*(1-math.Cos(math.Pi*frac))/2
	case prev != nil:
		out.Height = prev.Height
	case next != nil:
		out.Height = next.Height
	}

	return out
}
