package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// JobType defines the type of background job
type JobType string

const (
	// JobTypeSettlePayment settles a provider payment confirmation
	// received on the webhook endpoint
	JobTypeSettlePayment JobType = "settle_payment"
)

// JobStatus defines the lifecycle state of a job
type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
)

// Job is the persisted record of a background job. Redis carries only the
// job ID; the payload and status live in the database so a lost Redis
// entry never loses the job's audit trail.
type Job struct {
	ID         uuid.UUID       `json:"id" gorm:"type:uuid;primaryKey"`
	Type       JobType         `json:"type" gorm:"type:varchar(50);not null;index"`
	Payload    json.RawMessage `json:"payload"`
	Status     JobStatus       `json:"status" gorm:"type:varchar(20);not null;default:'pending'"`
	RetryCount int             `json:"retry_count" gorm:"default:0"`
	MaxRetries int             `json:"max_retries" gorm:"default:3"`
	Error      string          `json:"error,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// JobHandler processes a dequeued job
type JobHandler func(ctx context.Context, job Job) error

// Redis key prefix for job queues
const queuePrefix = "queue:"

// Client is a Redis-backed job queue with database-persisted job records
type Client struct {
	redis *redis.Client
	db    *gorm.DB
	ctx   context.Context
}

// NewClient creates a new queue client
func NewClient(client *redis.Client, db *gorm.DB) *Client {
	return &Client{
		redis: client,
		db:    db,
		ctx:   context.Background(),
	}
}

// Close closes the underlying Redis connection
func (c *Client) Close() error {
	return c.redis.Close()
}

// Enqueue persists a job record and pushes its ID onto the Redis queue
func (c *Client) Enqueue(jobType JobType, payload interface{}) (string, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal job payload: %w", err)
	}

	job := Job{
		ID:         uuid.New(),
		Type:       jobType,
		Payload:    payloadBytes,
		Status:     JobStatusPending,
		MaxRetries: 3,
	}
	if err := c.db.Create(&job).Error; err != nil {
		return "", fmt.Errorf("failed to persist job: %w", err)
	}

	queueName := queuePrefix + string(jobType)
	if err := c.redis.LPush(c.ctx, queueName, job.ID.String()).Err(); err != nil {
		return "", fmt.Errorf("failed to push job to queue: %w", err)
	}

	return job.ID.String(), nil
}

// Dequeue blocks up to timeout waiting for a job, returning nil when the
// queue stays empty
func (c *Client) Dequeue(jobType JobType, timeout time.Duration) (*Job, error) {
	queueName := queuePrefix + string(jobType)

	result, err := c.redis.BRPop(c.ctx, timeout, queueName).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("error popping job from queue %s: %w", queueName, err)
	}
	if len(result) < 2 {
		return nil, fmt.Errorf("invalid BRPOP result for queue %s", queueName)
	}

	jobID, err := uuid.Parse(result[1])
	if err != nil {
		return nil, fmt.Errorf("invalid job ID on queue %s: %w", queueName, err)
	}

	var job Job
	if err := c.db.First(&job, "id = ?", jobID).Error; err != nil {
		return nil, fmt.Errorf("failed to find job %s: %w", jobID, err)
	}

	if err := c.db.Model(&job).Update("status", JobStatusProcessing).Error; err != nil {
		return nil, fmt.Errorf("failed to mark job %s processing: %w", jobID, err)
	}

	return &job, nil
}

// Complete marks a job as completed
func (c *Client) Complete(job *Job) error {
	return c.db.Model(job).Updates(map[string]interface{}{
		"status": JobStatusCompleted,
		"error":  "",
	}).Error
}

// Fail records a job failure. The job is requeued until its retry budget
// is exhausted, then marked failed.
func (c *Client) Fail(job *Job, jobErr error) error {
	job.RetryCount++

	if job.RetryCount >= job.MaxRetries {
		return c.db.Model(job).Updates(map[string]interface{}{
			"status":      JobStatusFailed,
			"retry_count": job.RetryCount,
			"error":       jobErr.Error(),
		}).Error
	}

	if err := c.db.Model(job).Updates(map[string]interface{}{
		"status":      JobStatusPending,
		"retry_count": job.RetryCount,
		"error":       jobErr.Error(),
	}).Error; err != nil {
		return err
	}

	queueName := queuePrefix + string(job.Type)
	return c.redis.LPush(c.ctx, queueName, job.ID.String()).Err()
}

// Stats reports queue depth and persisted job counts per status
type Stats struct {
	QueueDepth int64            `json:"queue_depth"`
	ByStatus   map[string]int64 `json:"by_status"`
}

// GetStats returns queue statistics for a job type
func (c *Client) GetStats(jobType JobType) (*Stats, error) {
	depth, err := c.redis.LLen(c.ctx, queuePrefix+string(jobType)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read queue depth: %w", err)
	}

	stats := &Stats{QueueDepth: depth, ByStatus: make(map[string]int64)}
	for _, status := range []JobStatus{JobStatusPending, JobStatusProcessing, JobStatusCompleted, JobStatusFailed} {
		var count int64
		if err := c.db.Model(&Job{}).Where("type = ? AND status = ?", jobType, status).Count(&count).Error; err != nil {
			return nil, fmt.Errorf("failed to count jobs: %w", err)
		}
		stats.ByStatus[string(status)] = count
	}
	return stats, nil
}
