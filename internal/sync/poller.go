package sync

import (
	"context"
	"log"
	gosync "sync"
	"time"
)

// RunFunc executes one ingestion batch. The poller treats it as
// opaque; errors are delivered to the result callback.
type RunFunc func(ctx context.Context) error

// Result reports the outcome of one timed run.
type Result struct {
	StartedAt time.Time
	Duration  time.Duration
	Err       error
}

// runTimeout is the maximum time allowed for a single ingestion run.
const runTimeout = 5 * time.Minute

// Poller invokes an ingestion run on a fixed timer with a
// single-flight guard: a tick that arrives while a previous run is
// still active is dropped, never overlapped, because concurrent runs
// would race on derived filenames and append targets.
type Poller struct {
	run      RunFunc
	interval time.Duration
	onResult func(Result)

	triggerCh chan struct{}
	stopCh    chan struct{}

	mu       gosync.Mutex
	running  bool
	inFlight bool
}

// New creates a poller running fn every interval. onResult may be nil.
func New(fn RunFunc, interval time.Duration, onResult func(Result)) *Poller {
	if interval <= 0 {
		interval = 60 * time.Second
	}
	return &Poller{
		run:       fn,
		interval:  interval,
		onResult:  onResult,
		triggerCh: make(chan struct{}, 1),
		stopCh:    make(chan struct{}),
	}
}

// Start launches the polling loop. The first run happens immediately.
func (p *Poller) Start() {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return
	}
	p.running = true
	p.mu.Unlock()

	go p.loop()
}

// Stop halts the polling loop. An in-flight run finishes on its own.
func (p *Poller) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.running {
		return
	}
	close(p.stopCh)
	p.running = false
}

// Trigger requests an immediate run without waiting for the next tick.
func (p *Poller) Trigger() {
	select {
	case p.triggerCh <- struct{}{}:
	default:
		// A trigger is already pending.
	}
}

func (p *Poller) loop() {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.runOnce()

	for {
		select {
		case <-p.stopCh:
			return
		case <-ticker.C:
			p.runOnce()
		case <-p.triggerCh:
			p.runOnce()
		}
	}
}

// runOnce executes one guarded run.
func (p *Poller) runOnce() {
	p.mu.Lock()
	if p.inFlight {
		p.mu.Unlock()
		log.Printf("poller: previous run still active, skipping tick")
		return
	}
	p.inFlight = true
	p.mu.Unlock()

	defer func() {
		p.mu.Lock()
		p.inFlight = false
		p.mu.Unlock()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	started := time.Now()
	err := p.run(ctx)
	if p.onResult != nil {
		p.onResult(Result{
			StartedAt: started,
			Duration:  time.Since(started),
			Err:       err,
		})
	}
}
