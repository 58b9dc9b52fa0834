package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/oncall-dev/oncall/db"
	"github.com/oncall-dev/oncall/internal/config"
	"github.com/oncall-dev/oncall/internal/models"
	"github.com/oncall-dev/oncall/internal/pagerduty"
	"github.com/oncall-dev/oncall/internal/scheduler"
	"github.com/oncall-dev/oncall/internal/services"
	"github.com/oncall-dev/oncall/internal/types"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Syncer owns the three recurring sync jobs: team discovery, incident pull
// and status refresh. Per-team and per-incident units fan out onto the
// worker pool and coordinate only through the database.
type Syncer struct {
	provider *pagerduty.Client
	lookback time.Duration
	pool     *scheduler.WorkerPool
	retry    scheduler.RetryPolicy

	// Optional hook for pushing sync events to websocket clients
	Broadcast func(event map[string]string)
}

func NewSyncer(provider *pagerduty.Client, lookback time.Duration, workers int) *Syncer {
	return &Syncer{
		provider: provider,
		lookback: lookback,
		pool:     scheduler.NewWorkerPool(workers),
		retry:    scheduler.DefaultRetryPolicy(),
	}
}

// Jobs returns the recurring jobs ready to register with the scheduler.
func (s *Syncer) Jobs(cfg *config.Config) []scheduler.Job {
	return []scheduler.Job{
		{
			Name:     "populate_teams",
			Interval: cfg.TeamSyncInterval,
			Run: func(ctx context.Context) {
				s.runUnit(ctx, "populate_teams", func() error {
					return s.PopulateTeams(ctx)
				})
			},
		},
		{
			Name:     "populate_incidents",
			Interval: cfg.IncidentSyncInterval,
			Run: func(ctx context.Context) {
				if err := s.PopulateIncidents(ctx); err != nil {
					log.Printf("populate_incidents failed: %v", err)
				}
			},
		},
		{
			Name:     "update_incidents",
			Interval: cfg.StatusRefreshInterval,
			Run: func(ctx context.Context) {
				if err := s.UpdateIncidents(ctx); err != nil {
					log.Printf("update_incidents failed: %v", err)
				}
			},
		},
	}
}

// CompositeID builds the stored incident key. Provider incident IDs can be
// duplicated across teams, so the team ID disambiguates.
func CompositeID(providerIncidentID, teamExternalID string) string {
	return providerIncidentID + "_" + teamExternalID
}

// providerIncidentID strips the team suffix back off a composite ID.
func providerIncidentID(externalID string) string {
	id, _, _ := strings.Cut(externalID, "_")

	return id
}

// runUnit wraps a unit of work with the outer retry policy. A provider
// request failure is terminal for the tick (nothing to gain from an
// immediate retry; the next scheduled run covers the same window because
// watermarks only advance on success).
func (s *Syncer) runUnit(ctx context.Context, name string, fn func() error) {
	_ = scheduler.Retry(ctx, s.retry, name, func() error {
		err := fn()

		var failure *pagerduty.RequestError

		if errors.As(err, &failure) {
			log.Printf("Failed to query PagerDuty: %v", failure)
			return nil
		}

		return err
	})
}

// PopulateTeams discovers provider teams and creates any that are missing
// locally. A new team's watermark starts lookback in the past so the first
// incident pull backfills history.
func (s *Syncer) PopulateTeams(ctx context.Context) error {
	pager := s.provider.ListTeams()

	for {
		page, ok, err := pager.Next(ctx)

		if err != nil {
			return err
		}

		if !ok {
			break
		}

		for _, team := range page {
			var existing models.Team

			err := db.DB.Where("external_team_id = ?", team.ID).First(&existing).Error

			if err == nil {
				continue
			}

			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}

			newTeam := models.Team{
				ExternalTeamID: team.ID,
				Name:           team.Name,
				Summary:        team.Summary,
				LastChecked:    time.Now().UTC().Add(-s.lookback),
			}

			if err := db.DB.Create(&newTeam).Error; err != nil {
				return err
			}

			log.Printf("%s has been created", team.Name)

			s.broadcast(map[string]string{
				"type":    "team_created",
				"team_id": team.ID,
				"name":    team.Name,
			})
		}
	}

	return nil
}

// PopulateIncidents fans out one pull per team. until is snapshotted at
// dispatch time so every unit covers [team.LastChecked, until).
func (s *Syncer) PopulateIncidents(ctx context.Context) error {
	until := time.Now().UTC()

	var teams []models.Team

	if err := db.DB.Find(&teams).Error; err != nil {
		return err
	}

	var wg sync.WaitGroup

	for _, team := range teams {
		team := team

		wg.Add(1)

		s.pool.Submit(func() {
			defer wg.Done()

			s.runUnit(ctx, "populate_incidents "+team.ExternalTeamID, func() error {
				return s.populateTeamIncidents(ctx, team, until)
			})
		})
	}

	wg.Wait()

	return nil
}

func (s *Syncer) populateTeamIncidents(ctx context.Context, team models.Team, until time.Time) error {
	pager, err := s.provider.ListIncidents(team.ExternalTeamID, team.LastChecked, until)

	if err != nil {
		return err
	}

	for {
		page, ok, err := pager.Next(ctx)

		if err != nil {
			return err
		}

		if !ok {
			break
		}

		for _, incident := range page {
			if err := s.storeIncident(team, incident); err != nil {
				return err
			}
		}
	}

	// The only place the watermark moves. Re-runs after a failure are safe:
	// the unique composite key turns replayed inserts into no-ops.
	return db.DB.Model(&models.Team{}).Where("id = ?", team.ID).Update("last_checked", until).Error
}

func (s *Syncer) storeIncident(team models.Team, incident pagerduty.Incident) error {
	externalID := CompositeID(incident.ID, team.ExternalTeamID)

	var existing models.Incident

	err := db.DB.Where("external_incident_id = ?", externalID).First(&existing).Error

	if err == nil {
		return nil
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	createdAt, err := time.Parse(time.RFC3339, incident.CreatedAt)

	if err != nil {
		log.Printf("Skipping incident %s: unparseable created_at %q", externalID, incident.CreatedAt)
		return nil
	}

	urgency := strings.ToLower(incident.Urgency)

	if urgency != types.UrgencyLow && urgency != types.UrgencyHigh {
		log.Printf("Skipping incident %s: unknown urgency %q", externalID, incident.Urgency)
		return nil
	}

	raw, err := json.Marshal(incident)

	if err != nil {
		return err
	}

	row := models.Incident{
		ExternalIncidentID: externalID,
		Title:              valueOr(incident.Title, "No title"),
		Description:        valueOr(incident.Description, "No description"),
		Summary:            valueOr(incident.Summary, "No summary"),
		Status:             valueOr(incident.Status, "No status"),
		Urgency:            urgency,
		RawPayload:         datatypes.JSON(raw),
		TeamID:             team.ID,
	}

	// Provider event time, not insertion time
	row.CreatedAt = createdAt.UTC()

	if err := db.DB.Create(&row).Error; err != nil {
		return err
	}

	log.Printf("%s has been created", externalID)

	s.broadcast(map[string]string{
		"type":        "incident_created",
		"incident_id": externalID,
		"team_id":     team.ExternalTeamID,
		"urgency":     urgency,
		"status":      row.Status,
	})

	// Only page the chat channels about incidents that are still open;
	// backfills of resolved history stay quiet.
	if row.Status != types.StatusResolved {
		if err := services.NotifyIncidentCreated(team, row); err != nil {
			log.Printf("Failed to send incident notification: %v", err)
		}
	}

	return nil
}

// UpdateIncidents re-polls every unresolved incident for a status change,
// one independent unit per incident.
func (s *Syncer) UpdateIncidents(ctx context.Context) error {
	var incidents []models.Incident

	if err := db.DB.Where("status <> ?", types.StatusResolved).Find(&incidents).Error; err != nil {
		return err
	}

	var wg sync.WaitGroup

	for _, incident := range incidents {
		incident := incident

		wg.Add(1)

		s.pool.Submit(func() {
			defer wg.Done()

			s.runUnit(ctx, "update_incident "+incident.ExternalIncidentID, func() error {
				return s.updateIncident(ctx, incident.ID)
			})
		})
	}

	wg.Wait()

	return nil
}

func (s *Syncer) updateIncident(ctx context.Context, incidentID uint) error {
	var incident models.Incident

	err := db.DB.Preload("Team").First(&incident, incidentID).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		log.Printf("Failed to find incident %d", incidentID)
		return nil
	}

	if err != nil {
		return err
	}

	resp, err := s.provider.GetIncident(ctx, providerIncidentID(incident.ExternalIncidentID))

	if err != nil {
		return err
	}

	if resp.Status == incident.Status {
		return nil
	}

	log.Printf("Updated incident %s with the new status of %s", incident.ExternalIncidentID, resp.Status)

	if err := db.DB.Model(&incident).Update("status", resp.Status).Error; err != nil {
		return err
	}

	s.broadcast(map[string]string{
		"type":        "status_changed",
		"incident_id": incident.ExternalIncidentID,
		"team_id":     incident.Team.ExternalTeamID,
		"status":      resp.Status,
	})

	if resp.Status == types.StatusResolved {
		if err := services.NotifyIncidentResolved(incident.Team, incident); err != nil {
			log.Printf("Failed to send resolved notification: %v", err)
		}
	}

	return nil
}

func (s *Syncer) broadcast(event map[string]string) {
	if s.Broadcast != nil {
		s.Broadcast(event)
	}
}

func valueOr(value, fallback string) string {
	if value == "" {
		return fallback
	}

	return value
}
