package concurrent

import (
	"sync"
)

type JobFunc[T any, G any] func(job T) G

// WorkerPool. fixed number of goroutines consuming a job queue and producing results in completion order.
type WorkerPool[T any, G any] struct {
	numWorkers int
	jobQueue   chan T
	results    chan G
	wg         sync.WaitGroup
}

func NewWorkerPool[T any, G any](numWorkers, jobQueueSize int) *WorkerPool[T, G] {
	if numWorkers < 1 {
		numWorkers = 1
	}
	return &WorkerPool[T, G]{
		numWorkers: numWorkers,
		jobQueue:   make(chan T, jobQueueSize),
		results:    make(chan G, jobQueueSize),
	}
}

func (wp *WorkerPool[T, G]) worker(jobFunc JobFunc[T, G]) {
	defer wp.wg.Done()
	for job := range wp.jobQueue {
		wp.results <- jobFunc(job)
	}
}

func (wp *WorkerPool[T, G]) Start(jobFunc JobFunc[T, G]) {
	for i := 0; i < wp.numWorkers; i++ {
		wp.wg.Add(1)
		go wp.worker(jobFunc)
	}
}

// Wait. block until every worker exits, then close the result channel. call Close first.
func (wp *WorkerPool[T, G]) Wait() {
	wp.wg.Wait()
	close(wp.results)
}

func (wp *WorkerPool[T, G]) AddJob(job T) {
	wp.jobQueue <- job
}

func (wp *WorkerPool[T, G]) CollectResults() chan G {
	return wp.results
}

// Close. no more jobs.
func (wp *WorkerPool[T, G]) Close() {
	close(wp.jobQueue)
}

type indexed[T any] struct {
	idx int
	val T
}

/*
Map. run jobFunc on every job with numWorkers goroutines. results[i] is the result of jobs[i] no matter in which
order the workers finish.
*/
func Map[T any, G any](numWorkers int, jobs []T, jobFunc JobFunc[T, G]) []G {
	results := make([]G, len(jobs))
	if len(jobs) == 0 {
		return results
	}

	wp := NewWorkerPool[indexed[T], indexed[G]](min(numWorkers, len(jobs)), len(jobs))
	for i, job := range jobs {
		wp.AddJob(indexed[T]{idx: i, val: job})
	}
	wp.Close()
	wp.Start(func(job indexed[T]) indexed[G] {
		return indexed[G]{idx: job.idx, val: jobFunc(job.val)}
	})
	wp.Wait()

	for res := range wp.CollectResults() {
		results[res.idx] = res.val
	}
	return results
}
