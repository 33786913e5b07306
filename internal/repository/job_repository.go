package repository

import (
	"context"
	"errors"
	"time"

	"feed-mapper-service/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrJobNotFound is returned when a translation job lookup misses
var ErrJobNotFound = errors.New("translation job not found")

// JobRepository handles database operations for translation jobs
type JobRepository struct {
	db *gorm.DB
}

// NewJobRepository creates a new job repository
func NewJobRepository(db *gorm.DB) *JobRepository {
	return &JobRepository{db: db}
}

// Create creates a new translation job
func (r *JobRepository) Create(ctx context.Context, job *models.TranslationJob) error {
	if job.ID == uuid.Nil {
		job.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(job).Error
}

// GetByID retrieves a translation job by ID
func (r *JobRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.TranslationJob, error) {
	var job models.TranslationJob
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&job).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrJobNotFound
		}
		return nil, err
	}
	return &job, nil
}

// ListByFeed retrieves recent translation jobs of a feed
func (r *JobRepository) ListByFeed(ctx context.Context, feedID uint, limit int) ([]models.TranslationJob, error) {
	var jobs []models.TranslationJob
	query := r.db.WithContext(ctx).
		Where("feed_id = ?", feedID).
		Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&jobs).Error
	return jobs, err
}

// MarkStarted transitions a job to RUNNING and stamps the start time
func (r *JobRepository) MarkStarted(ctx context.Context, id uuid.UUID) error {
	now := time.Now()
	return r.db.WithContext(ctx).
		Model(&models.TranslationJob{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     models.JobRunning,
			"started_at": now,
		}).Error
}

// MarkCompleted transitions a job to COMPLETED with its final progress
func (r *JobRepository) MarkCompleted(ctx context.Context, id uuid.UUID, progress *models.JobProgress) error {
	now := time.Now()
	job := models.TranslationJob{}
	job.SetProgress(progress)
	return r.db.WithContext(ctx).
		Model(&models.TranslationJob{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":       models.JobCompleted,
			"completed_at": now,
			"progress":     job.Progress,
		}).Error
}

// MarkFailed transitions a job to FAILED with the error text
func (r *JobRepository) MarkFailed(ctx context.Context, id uuid.UUID, message string) error {
	now := time.Now()
	return r.db.WithContext(ctx).
		Model(&models.TranslationJob{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":        models.JobFailed,
			"completed_at":  now,
			"error_message": message,
		}).Error
}
