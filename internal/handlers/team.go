package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/oncall-dev/oncall/db"
	"github.com/oncall-dev/oncall/internal/models"
)

type TeamSummary struct {
	ID    uint    `json:"id"`
	Name  string  `json:"name"`
	Alias *string `json:"alias"`
}

type TeamIncidentCount struct {
	ID            uint    `json:"id"`
	Name          string  `json:"name"`
	Alias         *string `json:"alias"`
	IncidentCount int     `json:"incident_count"`
}

func GetTeams(ctx *gin.Context) {
	var teams []models.Team

	if err := db.DB.Find(&teams).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve teams"})
		return
	}

	summaries := make([]TeamSummary, 0, len(teams))

	for _, team := range teams {
		summaries = append(summaries, TeamSummary{
			ID:    team.ID,
			Name:  team.Name,
			Alias: team.Alias,
		})
	}

	ctx.JSON(http.StatusOK, gin.H{"teams": summaries})
}

// GetMostIncidents ranks every team by incident count over the trailing
// seven days. Teams without incidents still appear with a zero count.
func GetMostIncidents(ctx *gin.Context) {
	cutoff := time.Now().UTC().AddDate(0, 0, -7)

	rankings := make([]TeamIncidentCount, 0)

	err := db.DB.Model(&models.Team{}).
		Select("teams.id, teams.name, teams.alias, count(incidents.id) AS incident_count").
		Joins("LEFT JOIN incidents ON incidents.team_id = teams.id AND incidents.created_at >= ? AND incidents.deleted_at IS NULL", cutoff).
		Group("teams.id, teams.name, teams.alias").
		Order("incident_count DESC, teams.id ASC").
		Scan(&rankings).Error

	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve teams"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"teams": rankings})
}
