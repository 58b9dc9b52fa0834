package pagerduty

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const (
	defaultEndpoint   = "https://api.pagerduty.com"
	defaultPageSize   = 25
	defaultTimeout    = 5 * time.Second
	defaultMaxTries   = 3
	defaultRetryDelay = 30 * time.Second

	acceptHeader = "application/vnd.pagerduty+json;version=2"
)

var ErrInvalidTimeRange = errors.New("invalid time range")

// RateLimitError reports a 429 from the provider. It is retried inside the
// client; callers only see it once the retry budget is exhausted.
type RateLimitError struct {
	Endpoint string
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("%s is being rate limited", e.Endpoint)
}

// RequestError reports any other non-200 provider response. It is never
// retried at this layer.
type RequestError struct {
	Endpoint   string
	StatusCode int
	Message    string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("%s returned a status code: %d (%s)", e.Endpoint, e.StatusCode, e.Message)
}

type Options struct {
	Endpoint   string
	APIKey     string
	HTTPClient *http.Client
	PageSize   int
	MaxTries   int
	RetryDelay time.Duration
}

type Client struct {
	endpoint   string
	apiKey     string
	httpClient *http.Client
	pageSize   int
	maxTries   int
	retryDelay time.Duration
}

func NewClient(opts Options) *Client {
	endpoint := opts.Endpoint

	if endpoint == "" {
		endpoint = defaultEndpoint
	}

	httpClient := opts.HTTPClient

	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}

	pageSize := opts.PageSize

	if pageSize <= 0 {
		pageSize = defaultPageSize
	}

	maxTries := opts.MaxTries

	if maxTries <= 0 {
		maxTries = defaultMaxTries
	}

	retryDelay := opts.RetryDelay

	if retryDelay <= 0 {
		retryDelay = defaultRetryDelay
	}

	return &Client{
		endpoint:   endpoint,
		apiKey:     opts.APIKey,
		httpClient: httpClient,
		pageSize:   pageSize,
		maxTries:   maxTries,
		retryDelay: retryDelay,
	}
}

// query performs a single GET against the provider, retrying only on rate
// limits with exponential backoff (no jitter).
func (c *Client) query(ctx context.Context, path string, params url.Values, out interface{}) error {
	endpoint := c.endpoint + "/" + path

	requestURL := endpoint

	if len(params) > 0 {
		requestURL += "?" + params.Encode()
	}

	delay := c.retryDelay

	for attempt := 1; ; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)

		if err != nil {
			return err
		}

		req.Header.Set("Accept", acceptHeader)
		req.Header.Set("Authorization", "Token token="+c.apiKey)

		resp, err := c.httpClient.Do(req)

		if err != nil {
			return err
		}

		body, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()

		if readErr != nil {
			return readErr
		}

		if resp.StatusCode == http.StatusOK {
			return json.Unmarshal(body, out)
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			if attempt < c.maxTries {
				if waitErr := sleepContext(ctx, delay); waitErr != nil {
					return waitErr
				}

				delay *= 2

				continue
			}

			return &RateLimitError{Endpoint: endpoint}
		}

		var envelope errorEnvelope
		_ = json.Unmarshal(body, &envelope)

		return &RequestError{
			Endpoint:   endpoint,
			StatusCode: resp.StatusCode,
			Message:    envelope.Error.Message,
		}
	}
}

// checkDate rejects invalid ranges before any network call is made.
func checkDate(since, until time.Time) error {
	if since.After(until) {
		return fmt.Errorf("%w: since time cannot be newer than until time", ErrInvalidTimeRange)
	}

	now := time.Now().UTC()

	if since.After(now) || until.After(now) {
		return fmt.Errorf("%w: since and/or until cannot be set to a future time", ErrInvalidTimeRange)
	}

	return nil
}

type IncidentPager struct {
	client *Client
	params url.Values
	offset int
	done   bool
}

// ListIncidents returns a pager over all incidents for a team within
// [since, until). Pages are fetched lazily on each Next call.
func (c *Client) ListIncidents(teamID string, since, until time.Time) (*IncidentPager, error) {
	if err := checkDate(since, until); err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("team_ids[]", teamID)
	params.Set("time_zone", "UTC")
	params.Set("since", since.UTC().Format(time.RFC3339))
	params.Set("until", until.UTC().Format(time.RFC3339))

	return &IncidentPager{client: c, params: params}, nil
}

func (p *IncidentPager) Next(ctx context.Context) ([]Incident, bool, error) {
	if p.done {
		return nil, false, nil
	}

	p.params.Set("limit", strconv.Itoa(p.client.pageSize))
	p.params.Set("offset", strconv.Itoa(p.offset))

	var page incidentsPage

	if err := p.client.query(ctx, "incidents", p.params, &page); err != nil {
		return nil, false, err
	}

	p.offset += p.client.pageSize

	if !page.More {
		p.done = true
	}

	return page.Incidents, true, nil
}

type TeamPager struct {
	client *Client
	offset int
	done   bool
}

// ListTeams returns a pager over every team visible to the API key.
func (c *Client) ListTeams() *TeamPager {
	return &TeamPager{client: c}
}

func (p *TeamPager) Next(ctx context.Context) ([]Team, bool, error) {
	if p.done {
		return nil, false, nil
	}

	params := url.Values{}
	params.Set("limit", strconv.Itoa(p.client.pageSize))
	params.Set("offset", strconv.Itoa(p.offset))

	var page teamsPage

	if err := p.client.query(ctx, "teams", params, &page); err != nil {
		return nil, false, err
	}

	p.offset += p.client.pageSize

	if !page.More {
		p.done = true
	}

	return page.Teams, true, nil
}

type SchedulePager struct {
	client *Client
	params url.Values
	offset int
	done   bool
}

// ListSchedules returns a pager over a team's schedules.
func (c *Client) ListSchedules(teamID string) *SchedulePager {
	params := url.Values{}
	params.Set("team_ids[]", teamID)

	return &SchedulePager{client: c, params: params}
}

func (p *SchedulePager) Next(ctx context.Context) ([]Schedule, bool, error) {
	if p.done {
		return nil, false, nil
	}

	p.params.Set("limit", strconv.Itoa(p.client.pageSize))
	p.params.Set("offset", strconv.Itoa(p.offset))

	var page schedulesPage

	if err := p.client.query(ctx, "schedules", p.params, &page); err != nil {
		return nil, false, err
	}

	p.offset += p.client.pageSize

	if !page.More {
		p.done = true
	}

	return page.Schedules, true, nil
}

// GetIncident fetches a single incident by its provider ID.
func (c *Client) GetIncident(ctx context.Context, incidentID string) (Incident, error) {
	var envelope incidentEnvelope

	if err := c.query(ctx, "incidents/"+incidentID, nil, &envelope); err != nil {
		return Incident{}, err
	}

	return envelope.Incident, nil
}

// GetSchedule fetches a schedule with its finalized oncall for [since, until).
func (c *Client) GetSchedule(ctx context.Context, scheduleID string, since, until time.Time) (Schedule, error) {
	if err := checkDate(since, until); err != nil {
		return Schedule{}, err
	}

	params := url.Values{}
	params.Set("time_zone", "UTC")
	params.Set("since", since.UTC().Format(time.RFC3339))
	params.Set("until", until.UTC().Format(time.RFC3339))

	var envelope scheduleEnvelope

	if err := c.query(ctx, "schedules/"+scheduleID, params, &envelope); err != nil {
		return Schedule{}, err
	}

	return envelope.Schedule, nil
}

func sleepContext(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return nil
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
