package dto

// CreateResearchItemResponse reports the created item and, when an ingest
// was scheduled, its job.
type CreateResearchItemResponse struct {
	ID     string  `json:"id"`
	Status string  `json:"status"`
	FileID *string `json:"file_id,omitempty"`
	JobID  string  `json:"job_id,omitempty"`
}

// CopyResponse carries generated or edited copy text.
type CopyResponse struct {
	Text string `json:"text"`
}
