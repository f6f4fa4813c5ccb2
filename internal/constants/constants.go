package constants

// Candidate processing statuses.
const (
	CandidateStatusPending   = "pending"
	CandidateStatusAnalyzed  = "analyzed"
	CandidateStatusInterview = "interview"
	CandidateStatusApproved  = "approved"
	CandidateStatusRejected  = "rejected"
	CandidateStatusFailed    = "failed"
)

// Job statuses.
const (
	JobStatusActive = "active"
	JobStatusClosed = "closed"
)

// Interview statuses.
const (
	InterviewStatusScheduled = "scheduled"
	InterviewStatusCompleted = "completed"
	InterviewStatusCanceled  = "canceled"
	InterviewStatusNoShow    = "no_show"
)

// Candidate source channels.
const (
	SourceManual     = "manual"
	SourceBulkUpload = "bulk_upload"
	SourceImport     = "import"
)

// Analysis providers, recorded on each stored analysis.
const (
	ProviderAgent     = "remote_agent"
	ProviderHeuristic = "heuristic_local"
	ProviderEmergency = "emergency"
)

// Hiring recommendations derived from the overall score.
const (
	RecommendationHigh   = "Highly Recommended"
	RecommendationYes    = "Recommended"
	RecommendationReview = "Manual Review Recommended"
	RecommendationNo     = "Not Recommended"
)

// Seniority levels inferred from resumes.
const (
	SeniorityExpert  = "Expert"
	SenioritySenior  = "Senior"
	SeniorityMid     = "Mid"
	SeniorityJunior  = "Junior"
	SeniorityTrainee = "Trainee"
	SeniorityUnknown = "Undetermined"
)
