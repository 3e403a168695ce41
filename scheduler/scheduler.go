package scheduler

import "sync"

// Task is one schedulable unit of work, typically an operator pipeline.
type Task func()

/**
 * Scheduler fans tasks out to worker goroutines and waits for all of them.
 * Independent operator subtrees of a physical plan may run in parallel;
 * the caller only observes completion.
 */
type Scheduler struct {
	workerNum int
}

func NewScheduler(workerNum int) *Scheduler {
	if workerNum <= 0 {
		workerNum = 1
	}
	return &Scheduler{workerNum}
}

func (s *Scheduler) ScheduleAndWaitForTasks(tasks []Task) {
	taskCh := make(chan Task)
	var wg sync.WaitGroup

	workerNum := s.workerNum
	if workerNum > len(tasks) {
		workerNum = len(tasks)
	}
	for ii := 0; ii < workerNum; ii++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for task := range taskCh {
				task()
			}
		}()
	}
	for _, task := range tasks {
		taskCh <- task
	}
	close(taskCh)
	wg.Wait()
}
