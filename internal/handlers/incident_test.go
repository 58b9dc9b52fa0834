package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueryIncidentsEmptyRangeSeedsEveryDay(t *testing.T) {
	r := setupTest(t)

	createTeam(t, "ABC123")

	w := doJSON(t, r, http.MethodPost, "/api/v1/incidents/ABC123", map[string]string{
		"since": "2023-01-01",
		"until": "2023-01-07",
	})

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{
		"incidents": [],
		"summary": {
			"2023-01-01": {"high": 0, "low": 0},
			"2023-01-02": {"high": 0, "low": 0},
			"2023-01-03": {"high": 0, "low": 0},
			"2023-01-04": {"high": 0, "low": 0},
			"2023-01-05": {"high": 0, "low": 0},
			"2023-01-06": {"high": 0, "low": 0},
			"2023-01-07": {"high": 0, "low": 0}
		}
	}`, w.Body.String())
}

func TestQueryIncidentsCountsUrgencies(t *testing.T) {
	r := setupTest(t)

	team := createTeam(t, "ABC123")

	createIncident(t, team, "P1_ABC123", "high", time.Date(2023, 1, 2, 12, 0, 0, 0, time.UTC))
	createIncident(t, team, "P2_ABC123", "low", time.Date(2023, 1, 2, 13, 0, 0, 0, time.UTC))
	createIncident(t, team, "P3_ABC123", "low", time.Date(2023, 1, 3, 9, 0, 0, 0, time.UTC))

	w := doJSON(t, r, http.MethodPost, "/api/v1/incidents/ABC123", map[string]string{
		"since": "2023-01-01",
		"until": "2023-01-03",
	})

	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)

	incidents := body["incidents"].([]interface{})
	require.Len(t, incidents, 3)

	// Ordered by created_at ascending
	first := incidents[0].(map[string]interface{})
	assert.Equal(t, "P1_ABC123", first["incident_id"])

	summary := body["summary"].(map[string]interface{})
	day2 := summary["2023-01-02"].(map[string]interface{})
	assert.EqualValues(t, 1, day2["high"])
	assert.EqualValues(t, 1, day2["low"])

	day3 := summary["2023-01-03"].(map[string]interface{})
	assert.EqualValues(t, 0, day3["high"])
	assert.EqualValues(t, 1, day3["low"])

	day1 := summary["2023-01-01"].(map[string]interface{})
	assert.EqualValues(t, 0, day1["high"])
	assert.EqualValues(t, 0, day1["low"])
}

func TestQueryIncidentsLocalizesToRequestedTimezone(t *testing.T) {
	r := setupTest(t)

	team := createTeam(t, "ABC123")

	// 23:30 UTC on Jan 1 is 18:30 Jan 1 in New York
	createIncident(t, team, "P1_ABC123", "high", time.Date(2023, 1, 1, 23, 30, 0, 0, time.UTC))

	w := doJSON(t, r, http.MethodPost, "/api/v1/incidents/ABC123", map[string]string{
		"since":    "2023-01-01",
		"until":    "2023-01-02",
		"timezone": "America/New_York",
	})

	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)

	summary := body["summary"].(map[string]interface{})
	require.Len(t, summary, 2)

	day1 := summary["2023-01-01"].(map[string]interface{})
	assert.EqualValues(t, 1, day1["high"])

	day2 := summary["2023-01-02"].(map[string]interface{})
	assert.EqualValues(t, 0, day2["high"])

	incidents := body["incidents"].([]interface{})
	require.Len(t, incidents, 1)

	entry := incidents[0].(map[string]interface{})
	assert.Equal(t, "2023-01-01T18:30:00-05:00", entry["created_at"])
}

func TestQueryIncidentsRequiresJSONContentType(t *testing.T) {
	r := setupTest(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/incidents/ABC123", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"requests must of type application/json"}`, w.Body.String())
}

func TestQueryIncidentsUnknownTeam(t *testing.T) {
	r := setupTest(t)

	w := doJSON(t, r, http.MethodPost, "/api/v1/incidents/123", map[string]string{
		"since": "2023-01-01",
		"until": "2023-01-02",
	})

	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestQueryIncidentsByAlias(t *testing.T) {
	r := setupTest(t)

	team := createTeam(t, "ABC123")

	alias := "sre"
	require.NoError(t, teamSetAlias(team.ID, alias))

	w := doJSON(t, r, http.MethodPost, "/api/v1/incidents/sre", map[string]string{
		"since": "2023-01-01",
		"until": "2023-01-01",
	})

	require.Equal(t, http.StatusOK, w.Code)
}

func TestQueryIncidentsValidation(t *testing.T) {
	r := setupTest(t)

	createTeam(t, "ABC123")

	tests := []struct {
		name    string
		body    map[string]string
		message string
	}{
		{
			name:    "missing dates",
			body:    map[string]string{},
			message: "since and until are required arguments",
		},
		{
			name:    "unparseable dates",
			body:    map[string]string{"since": "January 1st", "until": "2023-01-02"},
			message: "since and until require ISO format",
		},
		{
			name:    "since after until",
			body:    map[string]string{"since": "2023-01-05", "until": "2023-01-02"},
			message: "since cannot be greater than until",
		},
		{
			name:    "invalid timezone",
			body:    map[string]string{"since": "2023-01-01", "until": "2023-01-02", "timezone": "Mars/Olympus"},
			message: "Mars/Olympus is not a valid timezone",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(t, r, http.MethodPost, "/api/v1/incidents/ABC123", tt.body)

			require.Equal(t, http.StatusBadRequest, w.Code)

			body := decodeBody(t, w)
			assert.Equal(t, tt.message, body["error"])
		})
	}
}
