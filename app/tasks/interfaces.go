package tasks

// TaskSchedulerInterface defines the interface for background task
// scheduling. The main application starts and stops the worker pool
// through it; the API enqueues work through it.
type TaskSchedulerInterface interface {
	Start()
	Stop()
	EnqueueTask(task TaskInterface) error
}
