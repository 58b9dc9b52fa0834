package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/oncall-dev/oncall/db"
	"github.com/oncall-dev/oncall/internal/models"
	"github.com/oncall-dev/oncall/internal/router"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTest(t *testing.T) *gin.Engine {
	t.Helper()

	gin.SetMode(gin.TestMode)

	conn, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, conn.AutoMigrate(&models.Team{}, &models.Incident{}, &models.Annotation{}))

	db.DB = conn

	return router.NewRouter()
}

func createTeam(t *testing.T, externalID string) models.Team {
	t.Helper()

	team := models.Team{
		ExternalTeamID: externalID,
		Name:           "test-team",
		LastChecked:    time.Now().UTC(),
	}
	require.NoError(t, db.DB.Create(&team).Error)

	return team
}

func createIncident(t *testing.T, team models.Team, externalID, urgency string, createdAt time.Time) models.Incident {
	t.Helper()

	incident := models.Incident{
		ExternalIncidentID: externalID,
		Title:              "Server on Fire",
		Description:        "Servers on Fire",
		Summary:            "Servers on Fire",
		Status:             "resolved",
		Urgency:            urgency,
		TeamID:             team.ID,
	}
	incident.CreatedAt = createdAt

	require.NoError(t, db.DB.Create(&incident).Error)

	return incident
}

func teamSetAlias(teamID uint, alias string) error {
	return db.DB.Model(&models.Team{}).Where("id = ?", teamID).Update("alias", alias).Error
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader

	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &decoded))

	return decoded
}
