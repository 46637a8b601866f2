package servers_test

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tempora-io/tempora/core"
	"github.com/tempora-io/tempora/modules/servers"
	"github.com/tempora-io/tempora/trigger"
)

type staticSchedule struct {
	state   core.State
	entries []core.ScheduledEntry
}

func (s *staticSchedule) Start() bool { return true }

func (s *staticSchedule) Stop() {}

func (s *staticSchedule) ScheduleIntervalTrigger(t trigger.IntervalTrigger, owner string) {}

func (s *staticSchedule) ScheduleRangeTrigger(t trigger.RangeTrigger, owner string) {}

func (s *staticSchedule) State() core.State { return s.state }

func (s *staticSchedule) Entries() []core.ScheduledEntry { return s.entries }

func (s *staticSchedule) Use(middleware ...core.FireMiddleware) {}

func TestAdminServerRoutes(t *testing.T) {
	schedule := &staticSchedule{
		state: core.StateRunning,
		entries: []core.ScheduledEntry{
			{ID: uuid.New(), Name: "heartbeat", Owner: "test", Kind: "interval"},
		},
	}
	server, err := servers.NewAdminServer(schedule)
	require.NoError(t, err)

	t.Run("state", func(t *testing.T) {
		resp, err := server.GetApp().Test(httptest.NewRequest("GET", "/api/state", nil))
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, 200, resp.StatusCode)

		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)

		var payload map[string]string
		require.NoError(t, json.Unmarshal(body, &payload))
		assert.Equal(t, "running", payload["state"])
	})

	t.Run("triggers", func(t *testing.T) {
		resp, err := server.GetApp().Test(httptest.NewRequest("GET", "/api/triggers", nil))
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, 200, resp.StatusCode)

		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)

		var payload struct {
			Count    int                   `json:"count"`
			Triggers []core.ScheduledEntry `json:"triggers"`
		}
		require.NoError(t, json.Unmarshal(body, &payload))
		assert.Equal(t, 1, payload.Count)
		require.Len(t, payload.Triggers, 1)
		assert.Equal(t, "heartbeat", payload.Triggers[0].Name)
	})
}

func TestNewAdminServerRejectsBadTimeouts(t *testing.T) {
	_, err := servers.NewAdminServer(&staticSchedule{}, servers.WithConfig(&servers.Config{
		ReadTimeout: "not-a-duration",
	}))
	assert.Error(t, err)
}
