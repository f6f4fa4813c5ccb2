package storage

import "time"

// ResumeUploadedMessage announces a resume file landed in object
// storage and is ready for extraction and analysis.
type ResumeUploadedMessage struct {
	CandidateID      string    `json:"candidate_id"`
	JobID            string    `json:"job_id,omitempty"`
	ObjectKey        string    `json:"object_key"`
	OriginalFilename string    `json:"original_filename"`
	RawFileMD5       string    `json:"raw_file_md5,omitempty"` // used to roll the dedup record back on failure
	SourceChannel    string    `json:"source_channel,omitempty"`
	UploadedAt       time.Time `json:"uploaded_at"`
	Reanalyze        bool      `json:"reanalyze,omitempty"` // skip extraction, rescore from stored text
}
