package trigger

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tempora-io/tempora/errors"
)

// ErrMalformedConfig marks configuration documents that are empty or
// cannot be decoded structurally.
var ErrMalformedConfig = errors.New("malformed trigger configuration")

// Parse decodes a trigger configuration document and partitions its
// entries by validity. Invalid entries are dropped here; whether to log
// them is the caller's call. Parse keeps no state and may be invoked
// concurrently.
func Parse(text string) ([]IntervalTrigger, []RangeTrigger, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil, errors.ConfigurationError(fmt.Errorf("%w: empty document", ErrMalformedConfig))
	}

	var all Triggers
	if err := json.Unmarshal([]byte(text), &all); err != nil {
		return nil, nil, errors.ConfigurationError(fmt.Errorf("%w: %v", ErrMalformedConfig, err))
	}

	return all.ValidIntervalTriggers(), all.ValidRangeTriggers(), nil
}
