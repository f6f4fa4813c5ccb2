package storage

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"talentscope/internal/config"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/minio/minio-go/v7/pkg/lifecycle"
)

// ObjectStorage is the object store surface the pipeline depends on.
type ObjectStorage interface {
	UploadResumeFile(ctx context.Context, candidateID, fileExt string, reader io.Reader, fileSize int64) (string, string, error)
	UploadParsedText(ctx context.Context, candidateID string, text string) (string, error)
	GetResumeFile(ctx context.Context, objectKey string) ([]byte, error)
	GetParsedText(ctx context.Context, objectKey string) (string, error)
	GetPresignedResumeURL(ctx context.Context, objectKey string, expiry time.Duration) (string, error)
	DeleteResumeFile(ctx context.Context, objectKey string) error
}

var _ ObjectStorage = (*MinIO)(nil)

// MinIO provides object storage over two buckets: one for original
// resume files and one for the extracted plain text.
type MinIO struct {
	client        *minio.Client
	cfg           *config.MinIOConfig
	resumesBucket string
	parsedBucket  string
	logger        *log.Logger
}

// NewMinIO creates the MinIO client, ensures both buckets and installs
// expiry lifecycle rules.
func NewMinIO(cfg *config.MinIOConfig, logger *log.Logger) (*MinIO, error) {
	if cfg == nil {
		return nil, fmt.Errorf("MinIO config cannot be nil")
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("creating MinIO client: %w", err)
	}

	resumesBucket := cfg.ResumesBucket
	if resumesBucket == "" {
		resumesBucket = "resumes"
	}
	parsedBucket := cfg.ParsedTextBucket
	if parsedBucket == "" {
		parsedBucket = "parsed-text"
	}

	m := &MinIO{
		client:        client,
		cfg:           cfg,
		resumesBucket: resumesBucket,
		parsedBucket:  parsedBucket,
		logger:        logger,
	}

	if err := m.ensureBucketExists(resumesBucket, cfg.Location); err != nil {
		return nil, fmt.Errorf("ensuring resumes bucket %s: %w", resumesBucket, err)
	}
	if err := m.ensureBucketExists(parsedBucket, cfg.Location); err != nil {
		return nil, fmt.Errorf("ensuring parsed-text bucket %s: %w", parsedBucket, err)
	}

	if cfg.ResumeExpireDays > 0 || cfg.ParsedTextExpireDays > 0 {
		if err := m.setupLifecycleRules(context.Background()); err != nil {
			logger.Printf("[MinIO] warning: failed to set up lifecycle rules: %v", err)
		}
	}

	logger.Printf("[MinIO] client initialized for endpoint %s", cfg.Endpoint)
	return m, nil
}

func (m *MinIO) ensureBucketExists(bucketName, location string) error {
	exists, err := m.client.BucketExists(context.Background(), bucketName)
	if err != nil {
		return fmt.Errorf("checking bucket %s: %w", bucketName, err)
	}
	if !exists {
		if err := m.client.MakeBucket(context.Background(), bucketName, minio.MakeBucketOptions{Region: location}); err != nil {
			return fmt.Errorf("creating bucket %s: %w", bucketName, err)
		}
		m.logger.Printf("[MinIO] bucket %s created", bucketName)
	}
	return nil
}

func (m *MinIO) setupLifecycleRules(ctx context.Context) error {
	if m.cfg.ResumeExpireDays > 0 {
		if err := m.setupBucketLifecycle(ctx, m.resumesBucket, "expire-resumes", m.cfg.ResumeExpireDays); err != nil {
			return fmt.Errorf("setting lifecycle on %s: %w", m.resumesBucket, err)
		}
	}
	if m.cfg.ParsedTextExpireDays > 0 {
		if err := m.setupBucketLifecycle(ctx, m.parsedBucket, "expire-parsed-text", m.cfg.ParsedTextExpireDays); err != nil {
			return fmt.Errorf("setting lifecycle on %s: %w", m.parsedBucket, err)
		}
	}
	return nil
}

func (m *MinIO) setupBucketLifecycle(ctx context.Context, bucketName, ruleID string, expiryDays int) error {
	lc := lifecycle.NewConfiguration()
	lc.Rules = []lifecycle.Rule{
		{
			ID:     ruleID,
			Status: "Enabled",
			Expiration: lifecycle.Expiration{
				Days: lifecycle.ExpirationDays(expiryDays),
			},
		},
	}
	return m.client.SetBucketLifecycle(ctx, bucketName, lc)
}

// UploadResumeFile streams an original resume into the resumes bucket,
// computing its MD5 on the way through. Returns the object key and the
// hex MD5 of the uploaded bytes.
func (m *MinIO) UploadResumeFile(ctx context.Context, candidateID, fileExt string, reader io.Reader, fileSize int64) (string, string, error) {
	objectKey := fmt.Sprintf("resume/%s/original%s", candidateID, fileExt)
	contentType := getContentType(fileExt)

	hasher := md5.New()
	tee := io.TeeReader(reader, hasher)

	_, err := m.client.PutObject(ctx, m.resumesBucket, objectKey, tee, fileSize, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", "", fmt.Errorf("uploading %s/%s: %w", m.resumesBucket, objectKey, err)
	}

	md5Hex := hex.EncodeToString(hasher.Sum(nil))
	return objectKey, md5Hex, nil
}

// UploadParsedText stores the extracted resume text alongside the
// original, in the parsed-text bucket.
func (m *MinIO) UploadParsedText(ctx context.Context, candidateID string, text string) (string, error) {
	objectKey := fmt.Sprintf("resume/%s/parsed_text.txt", candidateID)

	_, err := m.client.PutObject(ctx, m.parsedBucket, objectKey, strings.NewReader(text), int64(len(text)),
		minio.PutObjectOptions{ContentType: "text/plain"})
	if err != nil {
		return "", fmt.Errorf("uploading parsed text %s: %w", objectKey, err)
	}
	return objectKey, nil
}

// GetResumeFile downloads an original resume by object key.
func (m *MinIO) GetResumeFile(ctx context.Context, objectKey string) ([]byte, error) {
	obj, err := m.client.GetObject(ctx, m.resumesBucket, objectKey, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("getting object %s: %w", objectKey, err)
	}
	defer obj.Close()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, obj); err != nil {
		return nil, fmt.Errorf("reading object %s: %w", objectKey, err)
	}
	return buf.Bytes(), nil
}

// GetParsedText downloads extracted resume text by object key.
func (m *MinIO) GetParsedText(ctx context.Context, objectKey string) (string, error) {
	obj, err := m.client.GetObject(ctx, m.parsedBucket, objectKey, minio.GetObjectOptions{})
	if err != nil {
		return "", fmt.Errorf("getting object %s: %w", objectKey, err)
	}
	defer obj.Close()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, obj); err != nil {
		return "", fmt.Errorf("reading object %s: %w", objectKey, err)
	}
	return buf.String(), nil
}

// GetPresignedResumeURL issues a temporary download link for an
// original resume, so the browser fetches straight from object storage.
func (m *MinIO) GetPresignedResumeURL(ctx context.Context, objectKey string, expiry time.Duration) (string, error) {
	if expiry <= 0 {
		expiry = 15 * time.Minute
	}
	u, err := m.client.PresignedGetObject(ctx, m.resumesBucket, objectKey, expiry, nil)
	if err != nil {
		return "", fmt.Errorf("presigning %s: %w", objectKey, err)
	}
	return u.String(), nil
}

// DeleteResumeFile removes an original resume object.
func (m *MinIO) DeleteResumeFile(ctx context.Context, objectKey string) error {
	return m.client.RemoveObject(ctx, m.resumesBucket, objectKey, minio.RemoveObjectOptions{})
}

// getContentType maps a file extension to its MIME type.
func getContentType(fileExt string) string {
	switch strings.ToLower(fileExt) {
	case ".pdf":
		return "application/pdf"
	case ".txt":
		return "text/plain"
	case ".doc":
		return "application/msword"
	case ".docx":
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	default:
		return "application/octet-stream"
	}
}
