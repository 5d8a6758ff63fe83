package services

// writeQueue serializes store mutations: jobs run on a single worker
// goroutine in submission order, so at most one write per store is in
// flight at a time.
type writeQueue struct {
	jobs chan func()
}

func newWriteQueue() *writeQueue {
	q := &writeQueue{jobs: make(chan func(), 64)}
	go q.run()
	return q
}

func (q *writeQueue) run() {
	for job := range q.jobs {
		job()
	}
}

// Do enqueues fn and waits for it to finish. Once dequeued a job runs to
// completion; there is no mid-operation cancellation or timeout here,
// callers impose their own at a higher layer.
func (q *writeQueue) Do(fn func() error) error {
	done := make(chan error, 1)
	q.jobs <- func() { done <- fn() }
	return <-done
}
