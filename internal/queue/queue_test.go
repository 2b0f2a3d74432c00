package queue

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type testPayload struct {
	Reference string `json:"reference"`
}

func setupTestClient(t *testing.T) (*Client, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	db, err := gorm.Open(sqlite.Open("file:"+uuid.NewString()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&Job{}))

	return NewClient(rdb, db), mr
}

func settlementQueueKey() string {
	return queuePrefix + string(JobTypeSettlePayment)
}

func TestEnqueuePersistsJobAndPushesID(t *testing.T) {
	client, mr := setupTestClient(t)

	jobID, err := client.Enqueue(JobTypeSettlePayment, testPayload{Reference: "DON_20260831_AB12CD34"})
	require.NoError(t, err)
	require.NotEmpty(t, jobID)

	var job Job
	require.NoError(t, client.db.First(&job, "id = ?", jobID).Error)
	assert.Equal(t, JobTypeSettlePayment, job.Type)
	assert.Equal(t, JobStatusPending, job.Status)
	assert.Equal(t, 3, job.MaxRetries)

	var payload testPayload
	require.NoError(t, json.Unmarshal(job.Payload, &payload))
	assert.Equal(t, "DON_20260831_AB12CD34", payload.Reference)

	ids, err := mr.List(settlementQueueKey())
	require.NoError(t, err)
	assert.Equal(t, []string{jobID}, ids)
}

func TestDequeueMarksJobProcessing(t *testing.T) {
	client, mr := setupTestClient(t)

	jobID, err := client.Enqueue(JobTypeSettlePayment, testPayload{Reference: "DON_20260831_EF56GH78"})
	require.NoError(t, err)

	job, err := client.Dequeue(JobTypeSettlePayment, time.Second)
	require.NoError(t, err)
	require.NotNil(t, job)
	assert.Equal(t, jobID, job.ID.String())
	assert.Equal(t, JobStatusProcessing, job.Status)

	var stored Job
	require.NoError(t, client.db.First(&stored, "id = ?", job.ID).Error)
	assert.Equal(t, JobStatusProcessing, stored.Status)

	assert.False(t, mr.Exists(settlementQueueKey()))
}

func TestCompleteMarksJobCompleted(t *testing.T) {
	client, _ := setupTestClient(t)

	_, err := client.Enqueue(JobTypeSettlePayment, testPayload{Reference: "DON_20260831_IJ90KL12"})
	require.NoError(t, err)

	job, err := client.Dequeue(JobTypeSettlePayment, time.Second)
	require.NoError(t, err)
	require.NotNil(t, job)

	require.NoError(t, client.Complete(job))

	var stored Job
	require.NoError(t, client.db.First(&stored, "id = ?", job.ID).Error)
	assert.Equal(t, JobStatusCompleted, stored.Status)
	assert.Empty(t, stored.Error)
}

func TestFailRequeuesUntilRetryBudgetExhausted(t *testing.T) {
	client, mr := setupTestClient(t)

	_, err := client.Enqueue(JobTypeSettlePayment, testPayload{Reference: "DON_20260831_MN34OP56"})
	require.NoError(t, err)

	job, err := client.Dequeue(JobTypeSettlePayment, time.Second)
	require.NoError(t, err)
	require.NotNil(t, job)

	// The first two failures requeue the job with the retry recorded
	for want := 1; want <= 2; want++ {
		require.NoError(t, client.Fail(job, errors.New("provider timeout")))

		var stored Job
		require.NoError(t, client.db.First(&stored, "id = ?", job.ID).Error)
		assert.Equal(t, JobStatusPending, stored.Status)
		assert.Equal(t, want, stored.RetryCount)
		assert.Equal(t, "provider timeout", stored.Error)

		ids, err := mr.List(settlementQueueKey())
		require.NoError(t, err)
		assert.Equal(t, []string{job.ID.String()}, ids)

		job, err = client.Dequeue(JobTypeSettlePayment, time.Second)
		require.NoError(t, err)
		require.NotNil(t, job)
	}

	// The third failure exhausts the budget: failed for good, no requeue
	require.NoError(t, client.Fail(job, errors.New("provider timeout")))

	var stored Job
	require.NoError(t, client.db.First(&stored, "id = ?", job.ID).Error)
	assert.Equal(t, JobStatusFailed, stored.Status)
	assert.Equal(t, 3, stored.RetryCount)
	assert.False(t, mr.Exists(settlementQueueKey()))
}
