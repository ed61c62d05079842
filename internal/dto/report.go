package dto

import "time"

// ReportFormat selects the rendered document type.
type ReportFormat string

const (
	ReportFormatCSV ReportFormat = "csv"
	ReportFormatPDF ReportFormat = "pdf"
)

// ReportType selects what document a report job produces.
type ReportType string

const (
	ReportTypeTranscript   ReportType = "transcript"
	ReportTypeCourseRoster ReportType = "course_roster"
)

// ReportJobStatus tracks asynchronous report generation.
type ReportJobStatus string

const (
	ReportStatusQueued     ReportJobStatus = "QUEUED"
	ReportStatusProcessing ReportJobStatus = "PROCESSING"
	ReportStatusFinished   ReportJobStatus = "FINISHED"
	ReportStatusFailed     ReportJobStatus = "FAILED"
)

// ReportRequest asks for a document to be generated in the background.
type ReportRequest struct {
	Type       ReportType   `json:"type" validate:"required,oneof=transcript course_roster"`
	StudentID  string       `json:"student_id,omitempty"`
	CourseCode string       `json:"course_code,omitempty"`
	Format     ReportFormat `json:"format" validate:"required,oneof=csv pdf"`
}

// ReportJobResponse acknowledges job creation.
type ReportJobResponse struct {
	ID     string          `json:"id"`
	Status ReportJobStatus `json:"status"`
}

// ReportStatusResponse reports job progress and, once finished, the signed
// download link.
type ReportStatusResponse struct {
	ID          string          `json:"id"`
	Status      ReportJobStatus `json:"status"`
	DownloadURL string          `json:"download_url,omitempty"`
	ExpiresAt   *time.Time      `json:"expires_at,omitempty"`
	Error       string          `json:"error,omitempty"`
}
