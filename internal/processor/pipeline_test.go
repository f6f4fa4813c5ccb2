package processor

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"talentscope/internal/analyzer"
	"talentscope/internal/config"
	"talentscope/internal/constants"
	"talentscope/internal/storage"
	"talentscope/internal/storage/models"
)

type fakeCandidateStore struct {
	candidates map[string]*models.Candidate
	updates    map[string]map[string]interface{}
	statuses   map[string]string
	textOwners map[string]string // text md5 -> candidate id
}

func newFakeCandidateStore() *fakeCandidateStore {
	return &fakeCandidateStore{
		candidates: make(map[string]*models.Candidate),
		updates:    make(map[string]map[string]interface{}),
		statuses:   make(map[string]string),
		textOwners: make(map[string]string),
	}
}

func (f *fakeCandidateStore) GetCandidate(ctx context.Context, candidateID string) (*models.Candidate, error) {
	c, ok := f.candidates[candidateID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return c, nil
}

func (f *fakeCandidateStore) UpdateCandidate(ctx context.Context, candidateID string, updates map[string]interface{}) error {
	merged, ok := f.updates[candidateID]
	if !ok {
		merged = make(map[string]interface{})
		f.updates[candidateID] = merged
	}
	for k, v := range updates {
		merged[k] = v
	}
	return nil
}

func (f *fakeCandidateStore) UpdateCandidateStatus(ctx context.Context, candidateID string, status string) error {
	f.statuses[candidateID] = status
	return nil
}

func (f *fakeCandidateStore) FindCandidateByTextMD5(ctx context.Context, md5Hex string) (*models.Candidate, error) {
	owner, ok := f.textOwners[md5Hex]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &models.Candidate{CandidateID: owner}, nil
}

func (f *fakeCandidateStore) GetJob(ctx context.Context, jobID string) (*models.Job, error) {
	return nil, gorm.ErrRecordNotFound
}

type fakeDedupCache struct {
	textOwners map[string]string
	cached     map[string]string
	released   []string
}

func newFakeDedupCache() *fakeDedupCache {
	return &fakeDedupCache{
		textOwners: make(map[string]string),
		cached:     make(map[string]string),
	}
}

func (f *fakeDedupCache) GetTextMD5Candidate(ctx context.Context, md5Hex string) (string, error) {
	return f.textOwners[md5Hex], nil
}

func (f *fakeDedupCache) SetTextMD5Candidate(ctx context.Context, md5Hex, candidateID string) error {
	f.cached[md5Hex] = candidateID
	return nil
}

func (f *fakeDedupCache) RemoveRawFileMD5(ctx context.Context, md5Hex string) error {
	f.released = append(f.released, md5Hex)
	return nil
}

type fakeResumeObjects struct {
	parsedText map[string]string
	resumeErr  error
}

func (f *fakeResumeObjects) GetResumeFile(ctx context.Context, objectKey string) ([]byte, error) {
	if f.resumeErr != nil {
		return nil, f.resumeErr
	}
	return nil, fmt.Errorf("no resume file for %s", objectKey)
}

func (f *fakeResumeObjects) GetParsedText(ctx context.Context, objectKey string) (string, error) {
	text, ok := f.parsedText[objectKey]
	if !ok {
		return "", fmt.Errorf("no parsed text for %s", objectKey)
	}
	return text, nil
}

func (f *fakeResumeObjects) UploadParsedText(ctx context.Context, candidateID string, text string) (string, error) {
	return "parsed/" + candidateID + ".txt", nil
}

func testPipeline(db *fakeCandidateStore, cache *fakeDedupCache, objects *fakeResumeObjects) *Pipeline {
	cfg := config.DefaultConfig()
	cfg.Agent.APIKey = "" // force the offline analyzer path
	p := &Pipeline{
		db:       db,
		objects:  objects,
		analyzer: analyzer.New(cfg),
		cfg:      cfg,
	}
	if cache != nil {
		p.cache = cache
	}
	return p
}

func textMD5(text string) string {
	sum := md5.Sum([]byte(text))
	return hex.EncodeToString(sum[:])
}

func TestProcessDuplicateTextViaCacheMarksFailed(t *testing.T) {
	const resume = "Desenvolvedor Python com 5 anos de experiência em Django e PostgreSQL."

	db := newFakeCandidateStore()
	db.candidates["cand-1"] = &models.Candidate{
		CandidateID:   "cand-1",
		ParsedTextKey: "parsed/cand-1.txt",
	}
	cache := newFakeDedupCache()
	cache.textOwners[textMD5(resume)] = "cand-other"
	objects := &fakeResumeObjects{parsedText: map[string]string{"parsed/cand-1.txt": resume}}

	p := testPipeline(db, cache, objects)
	err := p.Process(context.Background(), storage.ResumeUploadedMessage{
		CandidateID: "cand-1",
		RawFileMD5:  "aaaa1111",
		Reanalyze:   true,
	})

	// Duplicates are permanent failures: acked, never redelivered.
	require.NoError(t, err)
	assert.Equal(t, constants.CandidateStatusFailed, db.statuses["cand-1"])
	assert.Contains(t, cache.released, "aaaa1111")
	assert.NotContains(t, db.updates["cand-1"], "score")
}

func TestProcessDuplicateTextViaDatabaseMarksFailed(t *testing.T) {
	const resume = "Engenheira de dados com experiência em Spark e Airflow."

	db := newFakeCandidateStore()
	db.candidates["cand-1"] = &models.Candidate{
		CandidateID:   "cand-1",
		ParsedTextKey: "parsed/cand-1.txt",
	}
	db.textOwners[textMD5(resume)] = "cand-2"
	objects := &fakeResumeObjects{parsedText: map[string]string{"parsed/cand-1.txt": resume}}

	// No cache at all: MySQL stays the authority.
	p := testPipeline(db, nil, objects)
	err := p.Process(context.Background(), storage.ResumeUploadedMessage{
		CandidateID: "cand-1",
		Reanalyze:   true,
	})

	require.NoError(t, err)
	assert.Equal(t, constants.CandidateStatusFailed, db.statuses["cand-1"])
}

func TestProcessExtractionFailureReleasesRawFileMD5(t *testing.T) {
	db := newFakeCandidateStore()
	db.candidates["cand-1"] = &models.Candidate{
		CandidateID:     "cand-1",
		ResumeObjectKey: "resumes/cand-1.pdf",
	}
	cache := newFakeDedupCache()
	objects := &fakeResumeObjects{resumeErr: fmt.Errorf("object storage unavailable")}

	p := testPipeline(db, cache, objects)
	err := p.Process(context.Background(), storage.ResumeUploadedMessage{
		CandidateID: "cand-1",
		ObjectKey:   "resumes/cand-1.pdf",
		RawFileMD5:  "bbbb2222",
	})

	// A corrected re-upload of the same file must not hit the dedup set.
	require.NoError(t, err)
	assert.Equal(t, constants.CandidateStatusFailed, db.statuses["cand-1"])
	assert.Contains(t, cache.released, "bbbb2222")
}

func TestProcessReanalyzeStoresAnalysis(t *testing.T) {
	const resume = "Desenvolvedor Go sênior, 8 anos de experiência, liderança de equipe, Docker e Kubernetes."

	db := newFakeCandidateStore()
	db.candidates["cand-1"] = &models.Candidate{
		CandidateID:   "cand-1",
		Name:          "Ana Lima",
		ParsedTextKey: "parsed/cand-1.txt",
	}
	cache := newFakeDedupCache()
	objects := &fakeResumeObjects{parsedText: map[string]string{"parsed/cand-1.txt": resume}}

	p := testPipeline(db, cache, objects)
	err := p.Process(context.Background(), storage.ResumeUploadedMessage{
		CandidateID: "cand-1",
		Reanalyze:   true,
	})

	require.NoError(t, err)
	updates := db.updates["cand-1"]
	require.NotNil(t, updates)
	assert.Equal(t, constants.CandidateStatusAnalyzed, updates["status"])
	assert.Contains(t, updates, "score")
	assert.Contains(t, updates, "analysis_json")
	assert.Empty(t, db.statuses["cand-1"])
	// The first owner of the text gets cached for future dedup checks.
	assert.Equal(t, "cand-1", cache.cached[textMD5(resume)])
}
