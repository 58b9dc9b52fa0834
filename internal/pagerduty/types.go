package pagerduty

// Payloads are validated at this boundary so the rest of the service never
// deals with raw provider JSON.

type Team struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Summary     string `json:"summary"`
	Description string `json:"description"`
}

type Incident struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Summary     string `json:"summary"`
	Status      string `json:"status"`
	Urgency     string `json:"urgency"`
	CreatedAt   string `json:"created_at"`
}

type Schedule struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Summary  string `json:"summary"`
	TimeZone string `json:"time_zone"`
}

type teamsPage struct {
	Teams []Team `json:"teams"`
	More  bool   `json:"more"`
}

type incidentsPage struct {
	Incidents []Incident `json:"incidents"`
	More      bool       `json:"more"`
}

type schedulesPage struct {
	Schedules []Schedule `json:"schedules"`
	More      bool       `json:"more"`
}

type incidentEnvelope struct {
	Incident Incident `json:"incident"`
}

type scheduleEnvelope struct {
	Schedule Schedule `json:"schedule"`
}

type errorEnvelope struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}
