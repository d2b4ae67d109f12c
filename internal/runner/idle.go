package runner

import (
	"io"
	"sync"
	"time"
)

// idleTimeoutReader calls cancel when the wrapped reader produces no bytes
// for timeout. Every non-empty Read restarts the clock. A zero timeout
// disables the watchdog.
type idleTimeoutReader struct {
	r       io.Reader
	timeout time.Duration
	cancel  func()
	timer   *time.Timer

	mu    sync.Mutex
	idled bool
}

func newIdleTimeoutReader(r io.Reader, timeout time.Duration, cancel func()) *idleTimeoutReader {
	itr := &idleTimeoutReader{r: r}
	if timeout <= 0 {
		return itr
	}
	itr.timeout = timeout
	itr.cancel = cancel
	itr.timer = time.AfterFunc(timeout, itr.fire)
	return itr
}

func (itr *idleTimeoutReader) Read(p []byte) (int, error) {
	n, err := itr.r.Read(p)
	if n > 0 && itr.timer != nil {
		itr.timer.Reset(itr.timeout)
	}
	return n, err
}

func (itr *idleTimeoutReader) fire() {
	itr.mu.Lock()
	itr.idled = true
	itr.mu.Unlock()
	if itr.cancel != nil {
		itr.cancel()
	}
}

// Idled reports whether the watchdog fired.
func (itr *idleTimeoutReader) Idled() bool {
	itr.mu.Lock()
	defer itr.mu.Unlock()
	return itr.idled
}

// Stop disarms the watchdog.
func (itr *idleTimeoutReader) Stop() {
	if itr.timer != nil {
		itr.timer.Stop()
	}
}
