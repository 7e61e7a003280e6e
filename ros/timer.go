package ros

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// defaultTimer enqueues its callback on the node's job channel once per
// period. Ticks that find the job queue full are skipped.
type defaultTimer struct {
	rate     Rate
	callback func(TimerEvent)
	jobChan  chan func()
	stopChan chan struct{}
	stopOnce sync.Once
	logger   *logrus.Entry
}

func newDefaultTimer(period Duration, callback func(TimerEvent), jobChan chan func(), logger *logrus.Entry) *defaultTimer {
	return &defaultTimer{
		rate:     CycleTime(period),
		callback: callback,
		jobChan:  jobChan,
		stopChan: make(chan struct{}),
		logger:   logger,
	}
}

func (t *defaultTimer) start(wg *sync.WaitGroup) {
	defer wg.Done()
	var last TimerEvent
	for {
		wait := time.NewTimer(t.rate.Remaining().Go())
		select {
		case <-t.stopChan:
			wait.Stop()
			return
		case <-wait.C:
		}

		event := TimerEvent{
			LastExpected:    last.CurrentExpected,
			LastReal:        last.CurrentReal,
			CurrentExpected: t.rate.ExpectedEnd(),
			CurrentReal:     Now(),
		}
		t.rate.Advance()
		select {
		case t.jobChan <- func() { t.callback(event) }:
			last = event
		case <-t.stopChan:
			return
		default:
			t.logger.Debug("callback queue full, timer tick skipped")
		}
	}
}

func (t *defaultTimer) Stop() {
	t.stopOnce.Do(func() { close(t.stopChan) })
}
