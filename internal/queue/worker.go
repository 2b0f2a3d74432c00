package queue

import (
	"context"
	"log"
	"sync"
	"time"
)

// Worker runs a pool of goroutines processing jobs of one type
type Worker struct {
	client     *Client
	jobType    JobType
	handler    JobHandler
	numWorkers int
	wg         sync.WaitGroup
	quit       chan struct{}
}

// NewWorker creates a worker pool for a job type
func NewWorker(client *Client, jobType JobType, handler JobHandler, numWorkers int) *Worker {
	return &Worker{
		client:     client,
		jobType:    jobType,
		handler:    handler,
		numWorkers: numWorkers,
		quit:       make(chan struct{}),
	}
}

// Start launches the worker goroutines
func (w *Worker) Start() {
	log.Printf("Starting %d workers for %s jobs", w.numWorkers, w.jobType)
	for i := 0; i < w.numWorkers; i++ {
		w.wg.Add(1)
		go w.process(i)
	}
}

// Stop signals the workers to finish and waits for them
func (w *Worker) Stop() {
	log.Printf("Stopping workers for %s jobs", w.jobType)
	close(w.quit)
	w.wg.Wait()
}

func (w *Worker) process(workerID int) {
	defer w.wg.Done()

	for {
		select {
		case <-w.quit:
			return
		default:
			job, err := w.client.Dequeue(w.jobType, 1*time.Second)
			if err != nil {
				log.Printf("Worker %d: error dequeueing job: %v", workerID, err)
				time.Sleep(1 * time.Second)
				continue
			}
			if job == nil {
				continue
			}

			if err := w.handler(context.Background(), *job); err != nil {
				log.Printf("Worker %d: job %s failed: %v", workerID, job.ID, err)
				if failErr := w.client.Fail(job, err); failErr != nil {
					log.Printf("Worker %d: error recording job failure: %v", workerID, failErr)
				}
				continue
			}

			if err := w.client.Complete(job); err != nil {
				log.Printf("Worker %d: error marking job %s completed: %v", workerID, job.ID, err)
			}
		}
	}
}
