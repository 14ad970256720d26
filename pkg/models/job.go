package models

const (
	JobStatusPending   = "pending"
	JobStatusRunning   = "running"
	JobStatusCompleted = "completed"
	JobStatusFailed    = "failed"
	JobStatusStopped   = "stopped"
)

// ExtractOptions selects which fields the scraping engine should extract
// for each business it finds.
type ExtractOptions struct {
	Emails  bool `json:"extract_emails"`
	Phone   bool `json:"extract_phone"`
	Website bool `json:"extract_website"`
	Reviews bool `json:"extract_reviews"`
}

// SearchJob tracks one search submitted to the scraping engine. The engine
// assigns the ID on submission; it never changes afterwards. The dashboard
// polls GET /jobs/{jobID}/results until the status is terminal.
type SearchJob struct {
	ID       string         `json:"job_id"`
	Query    string         `json:"query"`
	Location string         `json:"location"`
	Limit    int            `json:"limit"`
	Options  ExtractOptions `json:"options"`
	Status   string         `json:"status"`
	Progress string         `json:"progress"`
}
