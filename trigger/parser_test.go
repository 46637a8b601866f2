package trigger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tempora-io/tempora/errors"
)

func TestParseRejectsMalformedDocuments(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{name: "empty string", text: ""},
		{name: "whitespace only", text: "   \n\t"},
		{name: "truncated document", text: `{"intervals":[{"name":"x"`},
		{name: "not an object", text: `"just a string"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			intervals, ranges, err := Parse(tt.text)
			assert.ErrorIs(t, err, ErrMalformedConfig)
			assert.Empty(t, intervals)
			assert.Empty(t, ranges)
		})
	}
}

func TestParseClassifiesAsConfigurationError(t *testing.T) {
	_, _, err := Parse("")
	require.Error(t, err)
	assert.Equal(t, errors.ERR_CONFIGURATION, errors.GetLevel(err))
}

func TestParsePartitionsByValidity(t *testing.T) {
	text := `{
		"intervals": [
			{"name": "heartbeat", "period": "5s"},
			{"name": "no-period"},
			{"name": "frozen", "period": "0s"}
		],
		"ranges": [
			{"name": "window1", "start": "2026-01-01T00:00:00Z", "end": "2026-01-01T06:00:00Z"},
			{"name": "inverted", "start": "2026-01-01T06:00:00Z", "end": "2026-01-01T00:00:00Z"}
		]
	}`

	intervals, ranges, err := Parse(text)
	require.NoError(t, err)

	require.Len(t, intervals, 1)
	assert.Equal(t, "heartbeat", intervals[0].Name)
	assert.Equal(t, 5*time.Second, intervals[0].Period.Duration)

	require.Len(t, ranges, 1)
	assert.Equal(t, "window1", ranges[0].Name)
}

func TestParseAcceptsSingleGroup(t *testing.T) {
	t.Run("intervals only", func(t *testing.T) {
		intervals, ranges, err := Parse(`{"intervals":[{"name":"heartbeat","period":"5s"}],"ranges":[]}`)
		require.NoError(t, err)
		assert.Len(t, intervals, 1)
		assert.Empty(t, ranges)
	})

	t.Run("ranges only", func(t *testing.T) {
		intervals, ranges, err := Parse(`{"intervals":[],"ranges":[{"name":"window1","start":"2020-01-01T00:00:00Z","end":"2020-01-01T01:00:00Z"}]}`)
		require.NoError(t, err)
		assert.Empty(t, intervals)
		// Past windows stay valid at parse time; expiry is the schedule
		// manager's concern.
		assert.Len(t, ranges, 1)
	})

	t.Run("both groups empty", func(t *testing.T) {
		intervals, ranges, err := Parse(`{"intervals":[],"ranges":[]}`)
		require.NoError(t, err)
		assert.Empty(t, intervals)
		assert.Empty(t, ranges)
	})
}

func TestParseIntervalStartTime(t *testing.T) {
	t.Run("start present", func(t *testing.T) {
		intervals, _, err := Parse(`{
			"intervals": [{"name": "delayed", "period": "5s", "start": "2026-01-01T00:00:00Z"}]
		}`)
		require.NoError(t, err)
		require.Len(t, intervals, 1)
		require.NotNil(t, intervals[0].Start)
		assert.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), intervals[0].Start.UTC())
	})

	t.Run("start omitted", func(t *testing.T) {
		intervals, _, err := Parse(`{"intervals":[{"name":"heartbeat","period":"5s"}]}`)
		require.NoError(t, err)
		require.Len(t, intervals, 1)
		assert.Nil(t, intervals[0].Start)
	})
}

func TestParseRangeRecurrence(t *testing.T) {
	intervals, ranges, err := Parse(`{
		"ranges": [{"name": "poll-window", "start": "2026-01-01T00:00:00Z", "end": "2026-01-01T06:00:00Z", "period": "30s"}]
	}`)
	require.NoError(t, err)
	assert.Empty(t, intervals)
	require.Len(t, ranges, 1)
	require.NotNil(t, ranges[0].Period)
	assert.Equal(t, 30*time.Second, ranges[0].Period.Duration)
}

func TestParseIsSafeForConcurrentUse(t *testing.T) {
	text := `{"intervals":[{"name":"heartbeat","period":"5s"}]}`

	done := make(chan struct{})
	for i := 0; i < 8; i++ {
		go func() {
			defer func() { done <- struct{}{} }()
			for j := 0; j < 100; j++ {
				intervals, _, err := Parse(text)
				if err != nil || len(intervals) != 1 {
					t.Errorf("Parse() = %v, %v", intervals, err)
					return
				}
			}
		}()
	}
	for i := 0; i < 8; i++ {
		<-done
	}
}
