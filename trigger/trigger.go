package trigger

import (
	"encoding/json"
	"fmt"
	"time"
)

// Duration wraps time.Duration so trigger periods can be written as
// strings like "5s" or "1h30m" in configuration documents.
type Duration struct {
	time.Duration
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Duration) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	d.Duration = parsed
	return nil
}

// IntervalTrigger fires repeatedly every Period, counted from Start when
// set, otherwise from the moment the trigger is registered.
type IntervalTrigger struct {
	Name   string     `json:"name"`
	Period Duration   `json:"period"`
	Start  *time.Time `json:"start,omitempty"`
}

// IsValid reports whether the trigger can be scheduled: a name and a
// strictly positive period are required.
func (t IntervalTrigger) IsValid() bool {
	return t.Name != "" && t.Period.Duration > 0
}

func (t IntervalTrigger) String() string {
	return fmt.Sprintf("IntervalTrigger{name=%s period=%s}", t.Name, t.Period.Duration)
}

// RangeTrigger fires inside the window [Start, End]. Without a period it
// fires at window entry and window exit; with one it fires every Period
// from the start of the window until the window closes.
type RangeTrigger struct {
	Name   string     `json:"name"`
	Start  *time.Time `json:"start"`
	End    *time.Time `json:"end"`
	Period *Duration  `json:"period,omitempty"`
}

// IsValid reports whether the trigger can be scheduled: both bounds must
// be present and Start must be strictly before End.
func (t RangeTrigger) IsValid() bool {
	return t.Name != "" && t.Start != nil && t.End != nil && t.Start.Before(*t.End)
}

// Expired reports whether the whole window is already behind now.
func (t RangeTrigger) Expired(now time.Time) bool {
	return t.End != nil && t.End.Before(now)
}

func (t RangeTrigger) String() string {
	format := func(ts *time.Time) string {
		if ts == nil {
			return "<nil>"
		}
		return ts.Format(time.RFC3339)
	}
	return fmt.Sprintf("RangeTrigger{name=%s start=%s end=%s}", t.Name, format(t.Start), format(t.End))
}
