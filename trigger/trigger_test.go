package trigger

import (
	"testing"
	"time"
)

func ts(t time.Time) *time.Time {
	return &t
}

func TestIntervalTriggerIsValid(t *testing.T) {
	tests := []struct {
		name    string
		trigger IntervalTrigger
		valid   bool
	}{
		{
			name:    "positive period",
			trigger: IntervalTrigger{Name: "heartbeat", Period: Duration{5 * time.Second}},
			valid:   true,
		},
		{
			name:    "zero period",
			trigger: IntervalTrigger{Name: "heartbeat", Period: Duration{0}},
			valid:   false,
		},
		{
			name:    "negative period",
			trigger: IntervalTrigger{Name: "heartbeat", Period: Duration{-time.Second}},
			valid:   false,
		},
		{
			name:    "missing name",
			trigger: IntervalTrigger{Period: Duration{time.Minute}},
			valid:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.trigger.IsValid(); got != tt.valid {
				t.Errorf("IsValid() = %v, want %v", got, tt.valid)
			}
		})
	}
}

func TestRangeTriggerIsValid(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name    string
		trigger RangeTrigger
		valid   bool
	}{
		{
			name:    "start before end",
			trigger: RangeTrigger{Name: "window1", Start: ts(now), End: ts(now.Add(time.Hour))},
			valid:   true,
		},
		{
			name:    "start equals end",
			trigger: RangeTrigger{Name: "window1", Start: ts(now), End: ts(now)},
			valid:   false,
		},
		{
			name:    "start after end",
			trigger: RangeTrigger{Name: "window1", Start: ts(now.Add(time.Hour)), End: ts(now)},
			valid:   false,
		},
		{
			name:    "missing start",
			trigger: RangeTrigger{Name: "window1", End: ts(now)},
			valid:   false,
		},
		{
			name:    "missing end",
			trigger: RangeTrigger{Name: "window1", Start: ts(now)},
			valid:   false,
		},
		{
			name:    "missing name",
			trigger: RangeTrigger{Start: ts(now), End: ts(now.Add(time.Hour))},
			valid:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.trigger.IsValid(); got != tt.valid {
				t.Errorf("IsValid() = %v, want %v", got, tt.valid)
			}
		})
	}
}

func TestRangeTriggerExpired(t *testing.T) {
	now := time.Now()

	past := RangeTrigger{Name: "w", Start: ts(now.Add(-2 * time.Hour)), End: ts(now.Add(-time.Hour))}
	if !past.Expired(now) {
		t.Error("expected a fully past window to be expired")
	}

	open := RangeTrigger{Name: "w", Start: ts(now.Add(-time.Hour)), End: ts(now.Add(time.Hour))}
	if open.Expired(now) {
		t.Error("expected an open window to not be expired")
	}
}

func TestValidTriggersPreserveOrder(t *testing.T) {
	all := Triggers{
		Intervals: []IntervalTrigger{
			{Name: "a", Period: Duration{time.Second}},
			{Name: "broken", Period: Duration{0}},
			{Name: "b", Period: Duration{time.Minute}},
		},
	}

	valid := all.ValidIntervalTriggers()
	if len(valid) != 2 {
		t.Fatalf("expected 2 valid triggers, got %d", len(valid))
	}
	if valid[0].Name != "a" || valid[1].Name != "b" {
		t.Errorf("expected document order [a b], got [%s %s]", valid[0].Name, valid[1].Name)
	}
}
