package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"talentscope/internal/config"
	"talentscope/internal/constants"
	"talentscope/internal/storage/models"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

var mysqlTracer = otel.Tracer("talentscope/storage/mysql")

// GormTracingPlugin adds OpenTelemetry spans around every GORM operation.
type GormTracingPlugin struct {
	tracer         trace.Tracer
	dbName         string
	disableErrSkip bool
}

// NewGormTracingPlugin creates the tracing plugin for the given database.
func NewGormTracingPlugin(dbName string) *GormTracingPlugin {
	return &GormTracingPlugin{
		tracer:         mysqlTracer,
		dbName:         dbName,
		disableErrSkip: true,
	}
}

// Name returns the plugin name.
func (p *GormTracingPlugin) Name() string {
	return "GormOpenTelemetryPlugin"
}

type gormSpanKey struct{}

// Initialize registers the before/after callbacks on every CRUD verb.
func (p *GormTracingPlugin) Initialize(db *gorm.DB) error {
	cb := db.Callback()

	if err := cb.Create().Before("gorm:create").Register("otel:before_create", p.before("CREATE")); err != nil {
		return err
	}
	if err := cb.Create().After("gorm:create").Register("otel:after_create", p.after()); err != nil {
		return err
	}

	if err := cb.Query().Before("gorm:query").Register("otel:before_query", p.before("SELECT")); err != nil {
		return err
	}
	if err := cb.Query().After("gorm:query").Register("otel:after_query", p.after()); err != nil {
		return err
	}

	if err := cb.Update().Before("gorm:update").Register("otel:before_update", p.before("UPDATE")); err != nil {
		return err
	}
	if err := cb.Update().After("gorm:update").Register("otel:after_update", p.after()); err != nil {
		return err
	}

	if err := cb.Delete().Before("gorm:delete").Register("otel:before_delete", p.before("DELETE")); err != nil {
		return err
	}
	if err := cb.Delete().After("gorm:delete").Register("otel:after_delete", p.after()); err != nil {
		return err
	}

	if err := cb.Row().Before("gorm:row").Register("otel:before_row", p.before("ROW")); err != nil {
		return err
	}
	if err := cb.Row().After("gorm:row").Register("otel:after_row", p.after()); err != nil {
		return err
	}

	if err := cb.Raw().Before("gorm:raw").Register("otel:before_raw", p.before("RAW")); err != nil {
		return err
	}
	if err := cb.Raw().After("gorm:raw").Register("otel:after_raw", p.after()); err != nil {
		return err
	}

	return nil
}

func (p *GormTracingPlugin) before(operation string) func(db *gorm.DB) {
	return func(db *gorm.DB) {
		if p.disableErrSkip && db.Statement.SkipHooks {
			return
		}

		ctx := db.Statement.Context
		if ctx == nil {
			ctx = context.Background()
		}

		tableName := db.Statement.Table
		if tableName == "" {
			tableName = "unknown"
		}

		spanName := fmt.Sprintf("%s %s", operation, tableName)
		opts := []trace.SpanStartOption{
			trace.WithSpanKind(trace.SpanKindClient),
			trace.WithAttributes(
				semconv.DBSystemMySQL,
				attribute.String("db.name", p.dbName),
				attribute.String("db.operation", operation),
				attribute.String("db.sql.table", tableName),
			),
		}

		newCtx, span := p.tracer.Start(ctx, spanName, opts...)
		db.Statement.Context = context.WithValue(newCtx, gormSpanKey{}, span)
	}
}

func (p *GormTracingPlugin) after() func(db *gorm.DB) {
	return func(db *gorm.DB) {
		span, ok := db.Statement.Context.Value(gormSpanKey{}).(trace.Span)
		if !ok {
			return
		}
		defer span.End()

		span.SetAttributes(attribute.Int64("db.rows_affected", db.Statement.RowsAffected))

		if db.Error != nil {
			if errors.Is(db.Error, gorm.ErrRecordNotFound) {
				// Not found is part of normal control flow, not a failure.
				span.SetAttributes(attribute.String("error.type", "record_not_found"))
				span.SetStatus(codes.Ok, "record not found")
			} else {
				span.SetAttributes(
					attribute.String("error.type", "database_error"),
					attribute.String("error.message", db.Error.Error()),
				)
				span.RecordError(db.Error)
				span.SetStatus(codes.Error, db.Error.Error())
			}
		} else {
			span.SetStatus(codes.Ok, "")
		}
	}
}

// MySQL provides relational persistence through GORM.
type MySQL struct {
	db  *gorm.DB
	cfg *config.MySQLConfig
}

// NewMySQL connects to MySQL, registers tracing and migrates the schema.
func NewMySQL(cfg *config.MySQLConfig) (*MySQL, error) {
	if cfg == nil {
		return nil, fmt.Errorf("MySQL config cannot be nil")
	}

	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local&timeout=%ds&readTimeout=%ds&writeTimeout=%ds",
		cfg.Username, cfg.Password, cfg.Host, cfg.Port, cfg.Database,
		cfg.ConnectTimeoutSeconds, cfg.ReadTimeoutSeconds, cfg.WriteTimeoutSeconds)

	var logLevel logger.LogLevel
	switch cfg.LogLevel {
	case 1:
		logLevel = logger.Silent
	case 2:
		logLevel = logger.Error
	case 3:
		logLevel = logger.Warn
	case 4:
		logLevel = logger.Info
	default:
		logLevel = logger.Info
	}

	gormConfig := &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   logger.Default.LogMode(logLevel),
		PrepareStmt:                              true,
		NowFunc: func() time.Time {
			return time.Now().Local()
		},
	}

	db, err := gorm.Open(mysql.Open(dsn), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("connecting to MySQL: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("getting underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetimeMinutes) * time.Minute)
	sqlDB.SetConnMaxIdleTime(time.Duration(cfg.ConnMaxIdleTimeMinutes) * time.Minute)

	m := &MySQL{
		db:  db,
		cfg: cfg,
	}

	if err := db.Use(NewGormTracingPlugin(cfg.Database)); err != nil {
		return nil, fmt.Errorf("registering tracing plugin: %w", err)
	}

	if err := m.autoMigrateSchema(); err != nil {
		if sqlDB, dbErr := db.DB(); dbErr == nil {
			sqlDB.Close()
		}
		return nil, fmt.Errorf("migrating schema: %w", err)
	}

	return m, nil
}

// autoMigrateSchema migrates all tables with SQL logging suppressed.
func (m *MySQL) autoMigrateSchema() error {
	currentLogger := m.db.Logger

	silentLogger := logger.New(
		log.New(log.Writer(), "", log.LstdFlags),
		logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  logger.Silent,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	silentDB := m.db.Session(&gorm.Session{Logger: silentLogger})

	err := silentDB.AutoMigrate(
		&models.User{},
		&models.Job{},
		&models.Candidate{},
		&models.Interview{},
		&models.OutreachLog{},
	)

	m.db = m.db.Session(&gorm.Session{Logger: currentLogger})

	if err != nil {
		return fmt.Errorf("GORM auto-migration failed: %w", err)
	}
	return nil
}

// DB exposes the raw GORM handle.
func (m *MySQL) DB() *gorm.DB {
	return m.db
}

// Close closes the underlying connection pool.
func (m *MySQL) Close() error {
	sqlDB, err := m.db.DB()
	if err != nil {
		return fmt.Errorf("getting underlying sql.DB: %w", err)
	}
	return sqlDB.Close()
}

// IsNotFound reports whether err is the missing-record sentinel.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// ---- users ----

// CreateUser inserts a new account.
func (m *MySQL) CreateUser(ctx context.Context, user *models.User) error {
	return m.db.WithContext(ctx).Create(user).Error
}

// GetUserByUsername looks an account up by its unique username.
func (m *MySQL) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := m.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserByID fetches an account by primary key.
func (m *MySQL) GetUserByID(ctx context.Context, userID string) (*models.User, error) {
	var user models.User
	if err := m.db.WithContext(ctx).Where("user_id = ?", userID).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// TouchUserLogin stamps the account's last login time.
func (m *MySQL) TouchUserLogin(ctx context.Context, userID string) error {
	now := time.Now()
	return m.db.WithContext(ctx).Model(&models.User{}).
		Where("user_id = ?", userID).
		Update("last_login_at", &now).Error
}

// ListUsers returns every account, newest first.
func (m *MySQL) ListUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := m.db.WithContext(ctx).Order("created_at DESC").Find(&users).Error
	return users, err
}

// SetUserAdmin flips the admin flag on an account.
func (m *MySQL) SetUserAdmin(ctx context.Context, userID string, isAdmin bool) error {
	return m.db.WithContext(ctx).Model(&models.User{}).
		Where("user_id = ?", userID).
		Update("is_admin", isAdmin).Error
}

// DeleteUser removes an account.
func (m *MySQL) DeleteUser(ctx context.Context, userID string) error {
	return m.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.User{}).Error
}

// ---- jobs ----

// CreateJob inserts a new position.
func (m *MySQL) CreateJob(ctx context.Context, job *models.Job) error {
	return m.db.WithContext(ctx).Create(job).Error
}

// GetJob fetches one position by primary key.
func (m *MySQL) GetJob(ctx context.Context, jobID string) (*models.Job, error) {
	var job models.Job
	if err := m.db.WithContext(ctx).Where("job_id = ?", jobID).First(&job).Error; err != nil {
		return nil, err
	}
	return &job, nil
}

// ListJobs returns positions, optionally filtered by status.
func (m *MySQL) ListJobs(ctx context.Context, status string) ([]models.Job, error) {
	var jobs []models.Job
	q := m.db.WithContext(ctx).Order("created_at DESC")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	err := q.Find(&jobs).Error
	return jobs, err
}

// UpdateJob applies the given column updates to a position.
func (m *MySQL) UpdateJob(ctx context.Context, jobID string, updates map[string]interface{}) error {
	return m.db.WithContext(ctx).Model(&models.Job{}).
		Where("job_id = ?", jobID).
		Updates(updates).Error
}

// DeleteJob removes a position. Candidates keep their rows with a
// nulled job reference.
func (m *MySQL) DeleteJob(ctx context.Context, jobID string) error {
	return m.db.WithContext(ctx).Where("job_id = ?", jobID).Delete(&models.Job{}).Error
}

// ---- candidates ----

// CandidateFilter narrows candidate listings.
type CandidateFilter struct {
	JobID    string
	Status   string
	MinScore float64
	Search   string // matches name or email
	Limit    int
	Offset   int
}

// CreateCandidate inserts a new applicant.
func (m *MySQL) CreateCandidate(ctx context.Context, candidate *models.Candidate) error {
	return m.db.WithContext(ctx).Create(candidate).Error
}

// BatchInsertCandidates inserts a page of applicants, silently keeping
// existing rows on primary key collision so retried batches stay
// idempotent.
func (m *MySQL) BatchInsertCandidates(ctx context.Context, candidates []models.Candidate) error {
	ctx, span := mysqlTracer.Start(ctx, "MySQL.BatchInsertCandidates",
		trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	span.SetAttributes(
		semconv.DBSystemMySQL,
		attribute.String("db.name", m.cfg.Database),
		attribute.String("db.sql.table", "candidates"),
		attribute.Int("batch.size", len(candidates)),
	)

	if len(candidates) == 0 {
		span.SetStatus(codes.Ok, "no candidates to insert")
		return nil
	}

	err := m.db.WithContext(ctx).Clauses(
		clause.OnConflict{
			Columns:   []clause.Column{{Name: "candidate_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"candidate_id"}),
		}).Create(&candidates).Error

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// GetCandidate fetches one applicant by primary key.
func (m *MySQL) GetCandidate(ctx context.Context, candidateID string) (*models.Candidate, error) {
	var candidate models.Candidate
	if err := m.db.WithContext(ctx).Where("candidate_id = ?", candidateID).First(&candidate).Error; err != nil {
		return nil, err
	}
	return &candidate, nil
}

// ListCandidates returns applicants matching the filter, best score first.
func (m *MySQL) ListCandidates(ctx context.Context, filter CandidateFilter) ([]models.Candidate, int64, error) {
	q := m.db.WithContext(ctx).Model(&models.Candidate{})
	if filter.JobID != "" {
		q = q.Where("job_id = ?", filter.JobID)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.MinScore > 0 {
		q = q.Where("score >= ?", filter.MinScore)
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		q = q.Where("name LIKE ? OR email LIKE ?", like, like)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	q = q.Order("score DESC, created_at DESC")
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit).Offset(filter.Offset)
	}

	var candidates []models.Candidate
	if err := q.Find(&candidates).Error; err != nil {
		return nil, 0, err
	}
	return candidates, total, nil
}

// UpdateCandidate applies the given column updates to an applicant.
func (m *MySQL) UpdateCandidate(ctx context.Context, candidateID string, updates map[string]interface{}) error {
	return m.db.WithContext(ctx).Model(&models.Candidate{}).
		Where("candidate_id = ?", candidateID).
		Updates(updates).Error
}

// UpdateCandidateStatus moves an applicant through the pipeline.
func (m *MySQL) UpdateCandidateStatus(ctx context.Context, candidateID string, status string) error {
	return m.db.WithContext(ctx).Model(&models.Candidate{}).
		Where("candidate_id = ?", candidateID).
		Update("status", status).Error
}

// FindCandidateByTextMD5 returns the applicant whose extracted resume
// text hashed to md5Hex, if any.
func (m *MySQL) FindCandidateByTextMD5(ctx context.Context, md5Hex string) (*models.Candidate, error) {
	var candidate models.Candidate
	if err := m.db.WithContext(ctx).Where("extracted_text_md5 = ?", md5Hex).First(&candidate).Error; err != nil {
		return nil, err
	}
	return &candidate, nil
}

// DeleteCandidate removes an applicant and, through FK cascade, their
// interviews and outreach history.
func (m *MySQL) DeleteCandidate(ctx context.Context, candidateID string) error {
	return m.db.WithContext(ctx).Where("candidate_id = ?", candidateID).Delete(&models.Candidate{}).Error
}

// ---- interviews ----

// CreateInterview schedules a conversation with an applicant.
func (m *MySQL) CreateInterview(ctx context.Context, interview *models.Interview) error {
	return m.db.WithContext(ctx).Create(interview).Error
}

// GetInterview fetches one interview by primary key.
func (m *MySQL) GetInterview(ctx context.Context, interviewID string) (*models.Interview, error) {
	var interview models.Interview
	if err := m.db.WithContext(ctx).Where("interview_id = ?", interviewID).First(&interview).Error; err != nil {
		return nil, err
	}
	return &interview, nil
}

// InterviewFilter narrows interview listings.
type InterviewFilter struct {
	CandidateID string
	From        *time.Time
	To          *time.Time
}

// ListInterviews returns interviews matching the filter, soonest first.
func (m *MySQL) ListInterviews(ctx context.Context, filter InterviewFilter) ([]models.Interview, error) {
	var interviews []models.Interview
	q := m.db.WithContext(ctx).Preload("Candidate").Order("scheduled_at ASC")
	if filter.CandidateID != "" {
		q = q.Where("candidate_id = ?", filter.CandidateID)
	}
	if filter.From != nil {
		q = q.Where("scheduled_at >= ?", *filter.From)
	}
	if filter.To != nil {
		q = q.Where("scheduled_at <= ?", *filter.To)
	}
	err := q.Find(&interviews).Error
	return interviews, err
}

// ListUpcomingInterviews returns interviews still in the future, soonest first.
func (m *MySQL) ListUpcomingInterviews(ctx context.Context, limit int) ([]models.Interview, error) {
	var interviews []models.Interview
	q := m.db.WithContext(ctx).Preload("Candidate").
		Where("scheduled_at > ? AND status = ?", time.Now(), constants.InterviewStatusScheduled).
		Order("scheduled_at ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&interviews).Error
	return interviews, err
}

// UpdateInterview applies the given column updates to an interview.
func (m *MySQL) UpdateInterview(ctx context.Context, interviewID string, updates map[string]interface{}) error {
	return m.db.WithContext(ctx).Model(&models.Interview{}).
		Where("interview_id = ?", interviewID).
		Updates(updates).Error
}

// ---- outreach ----

// CreateOutreachLog records a generated contact link.
func (m *MySQL) CreateOutreachLog(ctx context.Context, entry *models.OutreachLog) error {
	return m.db.WithContext(ctx).Create(entry).Error
}

// ListOutreachByCandidate returns the outreach history for one applicant.
func (m *MySQL) ListOutreachByCandidate(ctx context.Context, candidateID string) ([]models.OutreachLog, error) {
	var entries []models.OutreachLog
	err := m.db.WithContext(ctx).
		Where("candidate_id = ?", candidateID).
		Order("created_at DESC").
		Find(&entries).Error
	return entries, err
}

// ---- aggregates ----

// CandidateBrief is a trimmed candidate row for dashboards.
type CandidateBrief struct {
	CandidateID    string  `json:"candidate_id"`
	Name           string  `json:"name"`
	Score          float64 `json:"score"`
	Seniority      string  `json:"seniority"`
	Recommendation string  `json:"recommendation"`
}

// DashboardStats is the aggregate snapshot served to the dashboard and
// fed into chatbot prompts.
type DashboardStats struct {
	TotalJobs           int64            `json:"total_jobs"`
	ActiveJobs          int64            `json:"active_jobs"`
	TotalCandidates     int64            `json:"total_candidates"`
	AnalyzedCandidates  int64            `json:"analyzed_candidates"`
	PendingCandidates   int64            `json:"pending_candidates"`
	InterviewsScheduled int64            `json:"interviews_scheduled"`
	AverageScore        float64          `json:"average_score"`
	AverageTechnical    float64          `json:"average_technical"`
	AverageSoft         float64          `json:"average_soft"`
	HighBand            int64            `json:"high_band"` // score >= 8
	MidBand             int64            `json:"mid_band"`  // 6 <= score < 8
	LowBand             int64            `json:"low_band"`  // score < 6
	SeniorityCounts     map[string]int64 `json:"seniority_counts"`
	TopCandidates       []CandidateBrief `json:"top_candidates"`
}

// GetDashboardStats computes the aggregate snapshot in one pass per table.
func (m *MySQL) GetDashboardStats(ctx context.Context) (*DashboardStats, error) {
	ctx, span := mysqlTracer.Start(ctx, "MySQL.GetDashboardStats",
		trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	stats := &DashboardStats{
		SeniorityCounts: make(map[string]int64),
	}

	db := m.db.WithContext(ctx)

	if err := db.Model(&models.Job{}).Count(&stats.TotalJobs).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Job{}).Where("status = ?", constants.JobStatusActive).Count(&stats.ActiveJobs).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Candidate{}).Count(&stats.TotalCandidates).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Candidate{}).Where("score IS NOT NULL").Count(&stats.AnalyzedCandidates).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Candidate{}).Where("status = ?", constants.CandidateStatusPending).Count(&stats.PendingCandidates).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Interview{}).Where("status = ?", constants.InterviewStatusScheduled).Count(&stats.InterviewsScheduled).Error; err != nil {
		return nil, err
	}

	var avgScore, avgTech, avgSoft sql.NullFloat64
	row := db.Model(&models.Candidate{}).
		Select("AVG(score), AVG(technical_score), AVG(soft_skill_score)").
		Where("score IS NOT NULL").
		Row()
	if err := row.Scan(&avgScore, &avgTech, &avgSoft); err != nil {
		return nil, err
	}
	stats.AverageScore = avgScore.Float64
	stats.AverageTechnical = avgTech.Float64
	stats.AverageSoft = avgSoft.Float64

	if err := db.Model(&models.Candidate{}).Where("score >= 8").Count(&stats.HighBand).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Candidate{}).Where("score >= 6 AND score < 8").Count(&stats.MidBand).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Candidate{}).Where("score IS NOT NULL AND score < 6").Count(&stats.LowBand).Error; err != nil {
		return nil, err
	}

	type seniorityRow struct {
		Seniority string
		Total     int64
	}
	var seniorities []seniorityRow
	if err := db.Model(&models.Candidate{}).
		Select("seniority, COUNT(*) AS total").
		Where("seniority <> ''").
		Group("seniority").
		Scan(&seniorities).Error; err != nil {
		return nil, err
	}
	for _, row := range seniorities {
		stats.SeniorityCounts[row.Seniority] = row.Total
	}

	if err := db.Model(&models.Candidate{}).
		Select("candidate_id, name, score, seniority, recommendation").
		Where("score IS NOT NULL").
		Order("score DESC").
		Limit(5).
		Scan(&stats.TopCandidates).Error; err != nil {
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	return stats, nil
}
