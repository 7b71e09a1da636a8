package flowdag

import "sync"

// shutdownSequence orchestrates a runner's teardown in a fixed order:
// cancel dispatch, wait for whatever is already in flight to report back,
// then signal and wait for any background collector goroutine. Close is
// safe to call more than once; the sequence runs exactly once.
type shutdownSequence struct {
	cancel     func()
	inflight   *sync.WaitGroup
	closeCh    chan struct{}
	afterClose *sync.WaitGroup

	once sync.Once
}

func newShutdownSequence(cancel func(), inflight *sync.WaitGroup, closeCh chan struct{}, afterClose *sync.WaitGroup) *shutdownSequence {
	return &shutdownSequence{cancel: cancel, inflight: inflight, closeCh: closeCh, afterClose: afterClose}
}

// Close runs: 1) cancel, 2) wait for in-flight dispatch to finish
// reporting, 3) close closeCh so a background collector can stop, 4) wait
// for that collector to exit.
func (s *shutdownSequence) Close() {
	s.once.Do(func() {
		if s.cancel != nil {
			s.cancel()
		}
		if s.inflight != nil {
			s.inflight.Wait()
		}
		if s.closeCh != nil {
			close(s.closeCh)
		}
		if s.afterClose != nil {
			s.afterClose.Wait()
		}
	})
}
