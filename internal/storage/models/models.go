package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// User is a recruiter account.
type User struct {
	UserID       string    `gorm:"type:char(36);primaryKey"`
	Username     string    `gorm:"type:varchar(100);uniqueIndex:idx_users_username_unique;not null"`
	Email        string    `gorm:"type:varchar(255);uniqueIndex:idx_users_email_unique"`
	PasswordHash string    `gorm:"type:varchar(255);not null"`
	DisplayName  string    `gorm:"type:varchar(255)"`
	IsAdmin      bool      `gorm:"default:false"`
	IsActive     bool      `gorm:"default:true"`
	LastLoginAt  *time.Time `gorm:"type:datetime(6)"`
	CreatedAt    time.Time `gorm:"type:datetime(6);default:CURRENT_TIMESTAMP(6)"`
	UpdatedAt    time.Time `gorm:"type:datetime(6);default:CURRENT_TIMESTAMP(6);autoUpdateTime"`
}

func (User) TableName() string {
	return "users"
}

// Job is an open position candidates are scored against.
type Job struct {
	JobID            string         `gorm:"type:char(36);primaryKey"`
	Title            string         `gorm:"type:varchar(255);not null"`
	Department       string         `gorm:"type:varchar(255)"`
	Location         string         `gorm:"type:varchar(255)"`
	Description      string         `gorm:"type:text;not null"`
	Requirements     string         `gorm:"type:text"`
	SalaryRange      string         `gorm:"type:varchar(100)"`
	SkillsJSON       datatypes.JSON `gorm:"type:json"` // keyword list used by the local analyzer
	Status           string         `gorm:"type:varchar(50);default:'active';index:idx_jobs_status"`
	CreatedByUserID  string         `gorm:"type:char(36)"`
	CreatedAt        time.Time      `gorm:"type:datetime(6);default:CURRENT_TIMESTAMP(6)"`
	UpdatedAt        time.Time      `gorm:"type:datetime(6);default:CURRENT_TIMESTAMP(6);autoUpdateTime"`
}

func (Job) TableName() string {
	return "jobs"
}

// Candidate is one applicant, tied to a job. Contact fields are
// heuristically extracted on bulk upload and editable afterwards.
type Candidate struct {
	CandidateID string  `gorm:"type:char(36);primaryKey"`
	JobID       *string `gorm:"type:char(36);index:idx_candidates_job_id"`
	Name        string  `gorm:"type:varchar(255);not null"`
	Email       string  `gorm:"type:varchar(255);index:idx_candidates_email"`
	Phone       string  `gorm:"type:varchar(50)"`
	LinkedIn    string  `gorm:"column:linkedin;type:varchar(512)"`
	Location    string  `gorm:"type:varchar(255)"`

	// Resume artifacts.
	SourceChannel      string `gorm:"type:varchar(50);default:'manual'"`
	OriginalFilename   string `gorm:"type:varchar(255)"`
	ResumeObjectKey    string `gorm:"type:varchar(1024)"` // original file in object storage
	ParsedTextKey      string `gorm:"type:varchar(1024)"` // extracted text in object storage
	RawFileMD5         string `gorm:"type:char(32);index:idx_candidates_raw_file_md5"`
	ExtractedTextMD5   string `gorm:"type:char(32);index:idx_candidates_text_md5"`

	// Analysis results.
	Score           *float64       `gorm:"type:float;index:idx_candidates_score"`
	TechnicalScore  *float64       `gorm:"type:float"`
	ExperienceScore *float64       `gorm:"type:float"`
	SoftSkillScore  *float64       `gorm:"type:float"`
	Seniority       string         `gorm:"type:varchar(50)"`
	YearsExperience *float64       `gorm:"type:float"`
	Recommendation  string         `gorm:"type:varchar(100)"`
	AnalysisJSON    datatypes.JSON `gorm:"type:json"` // full normalized analysis payload
	AnalysisProvider string        `gorm:"type:varchar(50)"`

	Status     string     `gorm:"type:varchar(50);default:'pending';index:idx_candidates_status"`
	AnalyzedAt *time.Time `gorm:"type:datetime(6)"`
	CreatedAt  time.Time  `gorm:"type:datetime(6);default:CURRENT_TIMESTAMP(6)"`
	UpdatedAt  time.Time  `gorm:"type:datetime(6);default:CURRENT_TIMESTAMP(6);autoUpdateTime"`

	Job *Job `gorm:"foreignKey:JobID;references:JobID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL"`
}

func (Candidate) TableName() string {
	return "candidates"
}

// Interview is a scheduled conversation with a candidate.
type Interview struct {
	InterviewID string    `gorm:"type:char(36);primaryKey"`
	CandidateID string    `gorm:"type:char(36);not null;index:idx_interviews_candidate_id"`
	JobID       *string   `gorm:"type:char(36);index:idx_interviews_job_id"`
	ScheduledAt time.Time `gorm:"type:datetime(6);not null;index:idx_interviews_scheduled_at"`
	DurationMin int       `gorm:"default:60"`
	Interviewer string    `gorm:"type:varchar(255)"`
	MeetingLink string    `gorm:"type:varchar(1024)"`
	Notes       string    `gorm:"type:text"`
	Status      string    `gorm:"type:varchar(50);default:'scheduled';index:idx_interviews_status"`
	CreatedAt   time.Time `gorm:"type:datetime(6);default:CURRENT_TIMESTAMP(6)"`
	UpdatedAt   time.Time `gorm:"type:datetime(6);default:CURRENT_TIMESTAMP(6);autoUpdateTime"`

	Candidate *Candidate `gorm:"foreignKey:CandidateID;references:CandidateID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Job       *Job       `gorm:"foreignKey:JobID;references:JobID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL"`
}

func (Interview) TableName() string {
	return "interviews"
}

// OutreachLog records each WhatsApp contact link generated for a
// candidate, for auditing who was reached and when.
type OutreachLog struct {
	OutreachID  uint64    `gorm:"primaryKey;autoIncrement"`
	CandidateID string    `gorm:"type:char(36);not null;index:idx_outreach_candidate_id"`
	UserID      string    `gorm:"type:char(36)"`
	Channel     string    `gorm:"type:varchar(50);default:'whatsapp'"`
	Phone       string    `gorm:"type:varchar(50)"`
	MessageKind string    `gorm:"type:varchar(50)"` // greeting, interview_invite, followup
	Link        string    `gorm:"type:varchar(2048)"`
	CreatedAt   time.Time `gorm:"type:datetime(6);default:CURRENT_TIMESTAMP(6)"`

	Candidate *Candidate `gorm:"foreignKey:CandidateID;references:CandidateID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

func (OutreachLog) TableName() string {
	return "outreach_logs"
}

// SliceToJSON converts a string slice to a datatypes.JSON column
// value. A nil slice becomes an empty JSON array; marshaling a string
// slice cannot fail.
func SliceToJSON(s []string) datatypes.JSON {
	if s == nil {
		s = []string{}
	}
	bytes, _ := json.Marshal(s)
	return bytes
}
