package handler

import "encoding/json"

type ReportListItem struct {
	ID        string `json:"id"`
	CreatedAt string `json:"created_at"`
	Status    string `json:"status"`
	Summary   string `json:"summary"`
	RunKind   string `json:"run_kind"`
}

type SectionResponse struct {
	Title        string          `json:"title"`
	Summary      string          `json:"summary"`
	Items        json.RawMessage `json:"items"`
	SourcesCount int             `json:"sources_count"`
}

type ReportResponse struct {
	ID           string                     `json:"id"`
	CreatedAt    string                     `json:"created_at"`
	UpdatedAt    string                     `json:"updated_at"`
	Status       string                     `json:"status"`
	RunKind      string                     `json:"run_kind"`
	Summary      string                     `json:"summary"`
	FullReport   json.RawMessage            `json:"full_report"`
	ErrorMessage string                     `json:"error_message,omitempty"`
	Sections     map[string]SectionResponse `json:"sections"`
}

type StatsResponse struct {
	Total             int     `json:"total"`
	Completed         int     `json:"completed"`
	Failed            int     `json:"failed"`
	SuccessRate       float64 `json:"success_rate"`
	LatestCompletedAt *string `json:"latest_completed_at"`
}

type ArabifyTweetRequest struct {
	URL string `json:"url"`
}

type ArabifyTextRequest struct {
	Text string `json:"text"`
}

type ArabifyResponse struct {
	OriginalText   string `json:"original_text"`
	ArabifiedText  string `json:"arabified_text"`
	AuthorName     string `json:"author_name,omitempty"`
	AuthorUsername string `json:"author_username,omitempty"`
	Note           string `json:"note,omitempty"`
}
