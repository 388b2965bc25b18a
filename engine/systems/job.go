package systems

import (
	"fmt"
	"sync"

	"github.com/spaghettifunk/vkscene/engine/core"
)

// Job is a unit of CPU work, typically decoding an asset. It must not touch
// the GPU; results are handed back to the main loop.
type Job struct {
	Name string
	Run  func() (interface{}, error)
}

type JobResult struct {
	Name  string
	Value interface{}
	Err   error
}

type jobEntry struct {
	job    Job
	result chan JobResult
}

type JobSystem struct {
	numWorkers int
	jobQueue   chan jobEntry
	wg         sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

var ErrNoWorkers = fmt.Errorf("attempting to create worker pool with less than 1 worker")
var ErrNegativeChannelSize = fmt.Errorf("attempting to create worker pool with a negative channel size")
var ErrJobSystemClosed = fmt.Errorf("job system is shut down")

func NewJobSystem(numWorkers int, channelSize int) (*JobSystem, error) {
	if numWorkers <= 0 {
		return nil, ErrNoWorkers
	}
	if channelSize < 0 {
		return nil, ErrNegativeChannelSize
	}

	js := &JobSystem{
		numWorkers: numWorkers,
		jobQueue:   make(chan jobEntry, channelSize),
	}

	js.start()

	return js, nil
}

func (js *JobSystem) start() {
	for i := 0; i < js.numWorkers; i++ {
		js.wg.Add(1)
		go func() {
			defer js.wg.Done()
			for entry := range js.jobQueue {
				value, err := entry.job.Run()
				if err != nil {
					core.LogError("job `%s` failed: %s", entry.job.Name, err)
				}
				entry.result <- JobResult{Name: entry.job.Name, Value: value, Err: err}
			}
		}()
	}
}

// Shutdown waits for queued jobs to finish. Submit after Shutdown fails.
func (js *JobSystem) Shutdown() error {
	js.mu.Lock()
	if js.closed {
		js.mu.Unlock()
		return nil
	}
	js.closed = true
	close(js.jobQueue)
	js.mu.Unlock()

	js.wg.Wait()
	return nil
}

// Submit queues the job. The returned channel receives exactly one result.
// It blocks while the queue is full.
func (js *JobSystem) Submit(job Job) <-chan JobResult {
	result := make(chan JobResult, 1)

	js.mu.RLock()
	defer js.mu.RUnlock()
	if js.closed {
		result <- JobResult{Name: job.Name, Err: ErrJobSystemClosed}
		return result
	}
	js.jobQueue <- jobEntry{job: job, result: result}
	return result
}

// RunAll submits every job and waits for all of them. Results keep the
// order of jobs; the first error is returned alongside.
func (js *JobSystem) RunAll(jobs ...Job) ([]JobResult, error) {
	pending := make([]<-chan JobResult, len(jobs))
	for i, job := range jobs {
		pending[i] = js.Submit(job)
	}

	results := make([]JobResult, len(jobs))
	var firstErr error
	for i, ch := range pending {
		results[i] = <-ch
		if results[i].Err != nil && firstErr == nil {
			firstErr = fmt.Errorf("%s: %w", results[i].Name, results[i].Err)
		}
	}
	return results, firstErr
}
