package services

import (
	"context"
	"sync"

	"github.com/dealdesk/backend/internal/infrastructure/logger"
)

// TaskQueue is the in-process job queue feeding the research worker pool.
// Submissions enqueue a task id; workers pull ids and run the pipeline. A
// full queue rejects instead of blocking the submitting request.
type TaskQueue struct {
	jobs chan string
	wg   sync.WaitGroup
	log  *logger.Logger

	mu     sync.Mutex
	closed bool
}

func NewTaskQueue(size int, log *logger.Logger) *TaskQueue {
	return &TaskQueue{
		jobs: make(chan string, size),
		log:  log,
	}
}

func (q *TaskQueue) Enqueue(taskID string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return ErrQueueFull
	}
	select {
	case q.jobs <- taskID:
		q.log.Infow("task_enqueued", "task_id", taskID, "queued", len(q.jobs))
		return nil
	default:
		q.log.Warnw("task_queue_full", "task_id", taskID, "capacity", cap(q.jobs))
		return ErrQueueFull
	}
}

// Start launches the worker pool. Each worker pulls task ids until the
// queue is stopped or the context is cancelled.
func (q *TaskQueue) Start(ctx context.Context, workers int, run func(ctx context.Context, taskID string)) {
	for i := 0; i < workers; i++ {
		q.wg.Add(1)
		go func(worker int) {
			defer q.wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case taskID, ok := <-q.jobs:
					if !ok {
						return
					}
					q.log.Infow("task_dequeued", "worker", worker, "task_id", taskID)
					run(ctx, taskID)
				}
			}
		}(i)
	}
	q.log.Infow("task_workers_started", "workers", workers, "queue_capacity", cap(q.jobs))
}

// Stop refuses new work and waits for in-flight tasks to finish.
func (q *TaskQueue) Stop() {
	q.mu.Lock()
	if !q.closed {
		q.closed = true
		close(q.jobs)
	}
	q.mu.Unlock()
	q.wg.Wait()
}
