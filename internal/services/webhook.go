package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/oncall-dev/oncall/internal/models"
)

type DiscordWebhookField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

type DiscordEmbed struct {
	Title       string                `json:"title"`
	Description string                `json:"description"`
	Color       int                   `json:"color"`
	Fields      []DiscordWebhookField `json:"fields"`
	Timestamp   string                `json:"timestamp"`
}

type DiscordWebhookRequest struct {
	Username string         `json:"username"`
	Embeds   []DiscordEmbed `json:"embeds"`
}

type SlackField struct {
	Title string `json:"title"`
	Value string `json:"value"`
	Short bool   `json:"short"`
}

type SlackAttachment struct {
	Color     string       `json:"color"`
	Title     string       `json:"title"`
	Text      string       `json:"text"`
	Fields    []SlackField `json:"fields"`
	Footer    string       `json:"footer"`
	Timestamp int64        `json:"ts"`
}

type SlackWebhookRequest struct {
	Username    string            `json:"username"`
	Text        string            `json:"text"`
	Attachments []SlackAttachment `json:"attachments"`
}

const (
	ColorRed   = 16711680 // #FF0000 - Incident created
	ColorGreen = 65280    // #00FF00 - Incident resolved

	Username = "Oncall"
)

// NotifyIncidentCreated pushes a new incident to the configured chat
// webhooks. A missing webhook URL is not an error.
func NotifyIncidentCreated(team models.Team, incident models.Incident) error {
	if webhookURL := os.Getenv("DISCORD_WEBHOOK_URL"); webhookURL != "" {
		if err := sendDiscordIncidentCreated(webhookURL, team, incident); err != nil {
			return fmt.Errorf("discord: %w", err)
		}
	}

	if webhookURL := os.Getenv("SLACK_WEBHOOK_URL"); webhookURL != "" {
		if err := sendSlackIncidentCreated(webhookURL, team, incident); err != nil {
			return fmt.Errorf("slack: %w", err)
		}
	}

	return nil
}

// NotifyIncidentResolved announces that a previously synced incident has
// been resolved upstream.
func NotifyIncidentResolved(team models.Team, incident models.Incident) error {
	if webhookURL := os.Getenv("DISCORD_WEBHOOK_URL"); webhookURL != "" {
		if err := sendDiscordIncidentResolved(webhookURL, team, incident); err != nil {
			return fmt.Errorf("discord: %w", err)
		}
	}

	if webhookURL := os.Getenv("SLACK_WEBHOOK_URL"); webhookURL != "" {
		if err := sendSlackIncidentResolved(webhookURL, team, incident); err != nil {
			return fmt.Errorf("slack: %w", err)
		}
	}

	return nil
}

func sendDiscordIncidentCreated(webhookURL string, team models.Team, incident models.Incident) error {
	payload := DiscordWebhookRequest{
		Username: Username,
		Embeds: []DiscordEmbed{
			{
				Title:       "🚨 **INCIDENT DETECTED**",
				Description: fmt.Sprintf("**%s** has a new incident.", team.Name),
				Color:       ColorRed,
				Fields: []DiscordWebhookField{
					{Name: "Team", Value: team.Name, Inline: true},
					{Name: "Urgency", Value: incident.Urgency, Inline: true},
					{Name: "Status", Value: "**" + incident.Status + "**", Inline: true},
					{Name: "Title", Value: incident.Title, Inline: false},
					{Name: "Created At", Value: incident.CreatedAt.Format("2006-01-02 15:04:05 UTC"), Inline: true},
				},
				Timestamp: time.Now().Format(time.RFC3339),
			},
		},
	}

	return sendDiscordWebhook(webhookURL, payload)
}

func sendDiscordIncidentResolved(webhookURL string, team models.Team, incident models.Incident) error {
	payload := DiscordWebhookRequest{
		Username: Username,
		Embeds: []DiscordEmbed{
			{
				Title:       "✅ **INCIDENT RESOLVED**",
				Description: fmt.Sprintf("An incident for **%s** has been resolved.", team.Name),
				Color:       ColorGreen,
				Fields: []DiscordWebhookField{
					{Name: "Team", Value: team.Name, Inline: true},
					{Name: "Urgency", Value: incident.Urgency, Inline: true},
					{Name: "Title", Value: incident.Title, Inline: false},
					{Name: "Created At", Value: incident.CreatedAt.Format("2006-01-02 15:04:05 UTC"), Inline: true},
				},
				Timestamp: time.Now().Format(time.RFC3339),
			},
		},
	}

	return sendDiscordWebhook(webhookURL, payload)
}

func sendSlackIncidentCreated(webhookURL string, team models.Team, incident models.Incident) error {
	payload := SlackWebhookRequest{
		Username: Username,
		Text:     ":rotating_light: *INCIDENT DETECTED*",
		Attachments: []SlackAttachment{
			{
				Color: "danger",
				Title: fmt.Sprintf("Team '%s' has a new incident", team.Name),
				Text:  incident.Description,
				Fields: []SlackField{
					{Title: "Team", Value: team.Name, Short: true},
					{Title: "Urgency", Value: incident.Urgency, Short: true},
					{Title: "Status", Value: incident.Status, Short: true},
					{Title: "Title", Value: incident.Title, Short: false},
				},
				Footer:    fmt.Sprintf("Incident: %s", incident.ExternalIncidentID),
				Timestamp: time.Now().Unix(),
			},
		},
	}

	return sendSlackWebhook(webhookURL, payload)
}

func sendSlackIncidentResolved(webhookURL string, team models.Team, incident models.Incident) error {
	payload := SlackWebhookRequest{
		Username: Username,
		Text:     ":white_check_mark: *INCIDENT RESOLVED*",
		Attachments: []SlackAttachment{
			{
				Color: "good",
				Title: fmt.Sprintf("An incident for team '%s' has been resolved", team.Name),
				Text:  incident.Title,
				Fields: []SlackField{
					{Title: "Team", Value: team.Name, Short: true},
					{Title: "Urgency", Value: incident.Urgency, Short: true},
				},
				Footer:    fmt.Sprintf("Incident: %s", incident.ExternalIncidentID),
				Timestamp: time.Now().Unix(),
			},
		},
	}

	return sendSlackWebhook(webhookURL, payload)
}

func sendDiscordWebhook(webhookURL string, payload DiscordWebhookRequest) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal Discord payload: %w", err)
	}

	resp, err := http.Post(webhookURL, "application/json", bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("failed to send Discord webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("Discord webhook returned status %d", resp.StatusCode)
	}

	return nil
}

func sendSlackWebhook(webhookURL string, payload SlackWebhookRequest) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal Slack payload: %w", err)
	}

	resp, err := http.Post(webhookURL, "application/json", bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("failed to send Slack webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("Slack webhook returned status %d", resp.StatusCode)
	}

	return nil
}
