package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/oncall-dev/oncall/db"
	"github.com/oncall-dev/oncall/internal/models"
	"github.com/oncall-dev/oncall/internal/summary"
	"gorm.io/gorm"
)

type QueryIncidentsRequest struct {
	Since    string `json:"since"`
	Until    string `json:"until"`
	Timezone string `json:"timezone"`
}

type AnnotationSummary struct {
	ID        uint   `json:"id"`
	Summary   string `json:"summary"`
	CreatedAt string `json:"created_at"`
}

type IncidentDetail struct {
	ID          uint               `json:"id"`
	IncidentID  string             `json:"incident_id"`
	Title       string             `json:"title"`
	Description string             `json:"description"`
	Summary     string             `json:"summary"`
	Status      string             `json:"status"`
	Urgency     string             `json:"urgency"`
	Actionable  *bool              `json:"actionable"`
	CreatedAt   string             `json:"created_at"`
	UpdatedAt   string             `json:"updated_at"`
	Team        uint               `json:"team"`
	Annotation  *AnnotationSummary `json:"annotation"`
}

var isoLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// parseISOTime accepts ISO-8601 timestamps with or without a time or
// offset. Values without an offset are interpreted in loc, so a date-only
// range means that calendar day in the requester's zone.
func parseISOTime(value string, loc *time.Location) (time.Time, error) {
	for _, layout := range isoLayouts {
		if parsed, err := time.ParseInLocation(layout, value, loc); err == nil {
			return parsed, nil
		}
	}

	return time.Time{}, fmt.Errorf("%q is not an ISO timestamp", value)
}

// QueryIncidents returns a team's incidents for a date range along with a
// per-day low/high urgency summary, with days bucketed in the requested
// time zone.
func QueryIncidents(ctx *gin.Context) {
	if ctx.ContentType() != "application/json" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "requests must of type application/json"})
		return
	}

	teamID := ctx.Param("team_id")

	var team models.Team

	if err := db.DB.Where("external_team_id = ? OR alias = ?", teamID, teamID).First(&team).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "team not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve team"})
		}
		return
	}

	var req QueryIncidentsRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "since and until are required arguments"})
		return
	}

	if req.Since == "" || req.Until == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "since and until are required arguments"})
		return
	}

	timezone := req.Timezone

	if timezone == "" {
		timezone = "UTC"
	}

	loc, err := time.LoadLocation(timezone)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("%s is not a valid timezone", timezone)})
		return
	}

	since, err := parseISOTime(req.Since, loc)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "since and until require ISO format"})
		return
	}

	until, err := parseISOTime(req.Until, loc)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "since and until require ISO format"})
		return
	}

	sinceUTC := since.UTC()
	untilUTC := until.UTC()

	if sinceUTC.After(untilUTC) {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "since cannot be greater than until"})
		return
	}

	// Fetch a day past the end of the range so incidents shifted into the
	// last bucket by the timezone conversion are not excluded.
	var incidents []models.Incident

	err = db.DB.Preload("Annotation").
		Where("team_id = ? AND created_at >= ? AND created_at < ?", team.ID, sinceUTC, untilUTC.Add(24*time.Hour)).
		Order("created_at ASC").
		Find(&incidents).Error

	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve incidents"})
		return
	}

	buckets := summary.DateBuckets(since, until, loc)
	details := make([]IncidentDetail, 0, len(incidents))

	for _, incident := range incidents {
		summary.Count(buckets, incident.CreatedAt, incident.Urgency, loc)

		details = append(details, buildIncidentDetail(incident, loc))
	}

	ctx.JSON(http.StatusOK, gin.H{"incidents": details, "summary": buckets})
}

func buildIncidentDetail(incident models.Incident, loc *time.Location) IncidentDetail {
	detail := IncidentDetail{
		ID:          incident.ID,
		IncidentID:  incident.ExternalIncidentID,
		Title:       incident.Title,
		Description: incident.Description,
		Summary:     incident.Summary,
		Status:      incident.Status,
		Urgency:     incident.Urgency,
		Actionable:  incident.Actionable,
		CreatedAt:   incident.CreatedAt.UTC().In(loc).Format(time.RFC3339),
		UpdatedAt:   incident.UpdatedAt.UTC().In(loc).Format(time.RFC3339),
		Team:        incident.TeamID,
	}

	if incident.Annotation != nil {
		detail.Annotation = &AnnotationSummary{
			ID:        incident.Annotation.ID,
			Summary:   incident.Annotation.Summary,
			CreatedAt: incident.Annotation.CreatedAt.Format(time.RFC3339),
		}
	}

	return detail
}
