package trigger

// Triggers is the root of a decoded trigger configuration document. The
// raw entry lists are kept exactly as decoded; the ValidX accessors apply
// the per-variant validity rules and preserve document order.
type Triggers struct {
	Intervals []IntervalTrigger `json:"intervals"`
	Ranges    []RangeTrigger    `json:"ranges"`
}

// ValidIntervalTriggers returns the interval entries that pass validation,
// in document order.
func (t Triggers) ValidIntervalTriggers() []IntervalTrigger {
	valid := make([]IntervalTrigger, 0, len(t.Intervals))
	for _, trig := range t.Intervals {
		if trig.IsValid() {
			valid = append(valid, trig)
		}
	}
	return valid
}

// ValidRangeTriggers returns the range entries that pass validation, in
// document order.
func (t Triggers) ValidRangeTriggers() []RangeTrigger {
	valid := make([]RangeTrigger, 0, len(t.Ranges))
	for _, trig := range t.Ranges {
		if trig.IsValid() {
			valid = append(valid, trig)
		}
	}
	return valid
}
