package models

import "time"

// ImportBatch is the Firestore record for a PDF dropped into the ingest bucket.
// It tracks the extraction status and where the candidate report was written.
type ImportBatch struct {
	ID               string    `firestore:"-" json:"id,omitempty"`
	FileHash         string    `firestore:"fileHash,omitempty" json:"file_hash"`
	OriginalFilename string    `firestore:"originalFilename,omitempty" json:"original_filename"`
	Status           string    `firestore:"status,omitempty" json:"status"`
	ErrorDetails     string    `firestore:"errorDetails,omitempty" json:"error_details,omitempty"`
	PageCount        int       `firestore:"pageCount,omitempty" json:"page_count,omitempty"`
	CandidateCount   int       `firestore:"candidateCount" json:"candidate_count"`
	ReportURI        string    `firestore:"reportUri,omitempty" json:"report_uri,omitempty"`
	CreatedAt        time.Time `firestore:"createdAt,omitempty" json:"created_at"`
}

// Import batch statuses.
const (
	BatchStatusExtracting = "EXTRACTING"
	BatchStatusExtracted  = "EXTRACTED"
	BatchStatusFailed     = "FAILED"
)
