package pool

// run is the pool's single dispatch loop: every scheduler state
// transition — accepting a submission, reacting to a worker event, killing
// a timed-out or cancelled job, running a health sweep, draining for
// Close, or tearing down for Terminate — happens here, one message at a
// time, so no two transitions can ever observe each other mid-update. The
// loop itself ends the moment the pool becomes drained (graceful Close) or
// terminated (forced Terminate) — both paths close p.stopped on their way
// out, which is what lets this goroutine and New's ctx-watcher goroutine
// exit instead of idling forever.
func (p *Pool) run() {
	for {
		select {
		case job := <-p.submissions:
			p.dispatch(job)

		case ev := <-p.events:
			p.handleEvent(ev)

		case job := <-p.timeouts:
			p.handleTimeout(job)

		case job := <-p.cancellations:
			p.handleCancellation(job)

		case <-p.healthTicker.C:
			p.runHealthCheck()

		case waiter := <-p.closeRequests:
			p.handleCloseRequest(waiter)

		case <-p.terminateCh:
			p.handleTerminate()
		}

		if p.drained || p.terminated {
			return
		}
	}
}
