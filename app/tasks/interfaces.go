package tasks

// TaskSchedulerInterface is what the entry point and the HTTP API use to
// drive background refreshes.
//
//	scheduler := NewScheduler(newRefreshTask, interval, workerCount)
//	scheduler.Start()
//	defer scheduler.Stop()
//	scheduler.EnqueueTask(newRefreshTask())
type TaskSchedulerInterface interface {
	Start()
	Stop()
	EnqueueTask(task TaskInterface) error
	EnqueueRefresh() error
}
