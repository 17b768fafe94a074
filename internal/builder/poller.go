package builder

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/jackzampolin/fable/internal/api"
	"github.com/jackzampolin/fable/internal/book"
	"github.com/jackzampolin/fable/internal/imagejob"
)

// State is the poller lifecycle state.
type State string

const (
	StateIdle    State = "idle"
	StatePolling State = "polling"
	StateDone    State = "done"
	StateError   State = "error"
)

// ErrJobNotFound classifies an unknown job id on a status query. The
// record is gone (or never existed) and will not come back, so the
// poller stops instead of retrying.
var ErrJobNotFound = errors.New("job not found")

// StatusFetcher fetches the current record for an image job.
type StatusFetcher interface {
	JobStatus(ctx context.Context, jobID string) (*imagejob.Job, error)
}

// APIStatusFetcher fetches job status over the HTTP API.
type APIStatusFetcher struct {
	Client *api.Client
}

func (f *APIStatusFetcher) JobStatus(ctx context.Context, jobID string) (*imagejob.Job, error) {
	var job imagejob.Job
	if err := f.Client.Get(ctx, "/api/images/status/"+jobID, &job); err != nil {
		if api.IsNotFound(err) {
			return nil, ErrJobNotFound
		}
		return nil, err
	}
	return &job, nil
}

// Snapshot is a point-in-time copy of the poller's merged state.
type Snapshot struct {
	State     State
	Message   string
	JobID     string
	Completed int
	Total     int
	Pages     map[int][]book.ImageVariant
}

// PollerConfig configures a Poller.
type PollerConfig struct {
	Fetcher StatusFetcher

	// Interval between status fetches (default 3s).
	Interval time.Duration

	// Timeout is the wall-clock ceiling since polling began (default 5m).
	// Purely client-side: hitting it stops observation without marking
	// the server-side job as errored.
	Timeout time.Duration

	// OnUpdate, if set, is called with a snapshot after every merge and
	// state transition.
	OnUpdate func(Snapshot)

	Logger *slog.Logger
}

// Poller drives local state to eventual consistency with a server-side
// image job. The server never pushes: the poller fetches on a fixed
// tick, merges new results, and stops on a terminal status, the
// wall-clock ceiling, or an unknown job id.
//
// Results are de-duplicated by variant URL per page on merge. The
// server does not de-duplicate, so a URL may appear in every poll
// response once delivered; it is added to local state exactly once.
type Poller struct {
	fetch    StatusFetcher
	interval time.Duration
	timeout  time.Duration
	onUpdate func(Snapshot)
	logger   *slog.Logger

	mu        sync.Mutex
	state     State
	message   string
	jobID     string
	completed int
	total     int
	pages     map[int][]book.ImageVariant
	cancel    context.CancelFunc
	loopDone  chan struct{}
}

// NewPoller creates an idle poller.
func NewPoller(cfg PollerConfig) (*Poller, error) {
	if cfg.Fetcher == nil {
		return nil, errors.New("poller requires a status fetcher")
	}
	if cfg.Interval <= 0 {
		cfg.Interval = 3 * time.Second
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Minute
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Poller{
		fetch:    cfg.Fetcher,
		interval: cfg.Interval,
		timeout:  cfg.Timeout,
		onUpdate: cfg.OnUpdate,
		logger:   cfg.Logger,
		state:    StateIdle,
		pages:    make(map[int][]book.ImageVariant),
	}, nil
}

// Start begins polling the given job id. It returns an error if the
// poller is already polling; terminal pollers (done/error) restart
// cleanly with fresh merged state.
func (p *Poller) Start(jobID string) error {
	p.mu.Lock()
	if p.state == StatePolling {
		p.mu.Unlock()
		return errors.New("poller already running")
	}
	ctx, cancel := context.WithCancel(context.Background())
	p.state = StatePolling
	p.message = ""
	p.jobID = jobID
	p.completed = 0
	p.total = 0
	p.pages = make(map[int][]book.ImageVariant)
	p.cancel = cancel
	p.loopDone = make(chan struct{})
	done := p.loopDone
	p.mu.Unlock()

	p.notify()
	go p.loop(ctx, jobID, done)
	return nil
}

// Stop tears down the polling loop and returns the poller to idle. No
// cancellation is sent to the external engine: in-flight generation
// continues server-side, only observation stops. Safe to call from any
// state and any number of times.
func (p *Poller) Stop() {
	p.mu.Lock()
	cancel := p.cancel
	p.cancel = nil
	changed := p.state == StatePolling
	if changed {
		p.state = StateIdle
	}
	p.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if changed {
		p.notify()
	}
}

// Wait blocks until the polling loop has exited. Returns immediately if
// the poller never started.
func (p *Poller) Wait() {
	p.mu.Lock()
	done := p.loopDone
	p.mu.Unlock()
	if done != nil {
		<-done
	}
}

// Snapshot returns a copy of the current merged state.
func (p *Poller) Snapshot() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snapshotLocked()
}

// ApplyTo merges the poller's accumulated variants into the book's
// pages, again de-duplicating by URL so repeated application is safe.
func (p *Poller) ApplyTo(b *book.Book) {
	snap := p.Snapshot()
	for idx, variants := range snap.Pages {
		page := b.PageByIndex(idx)
		if page == nil {
			continue
		}
		for _, v := range variants {
			if !hasURL(page.Images, v.URL) {
				page.Images = append(page.Images, v)
			}
		}
	}
}

func (p *Poller) loop(ctx context.Context, jobID string, done chan struct{}) {
	defer close(done)

	started := time.Now()
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		if time.Since(started) > p.timeout {
			p.transition(StateError, "polling timed out; the job may still be running")
			return
		}

		job, err := p.fetch.JobStatus(ctx, jobID)
		switch {
		case ctx.Err() != nil:
			// Stop already set the state.
			return
		case errors.Is(err, ErrJobNotFound):
			p.transition(StateError, "job not found")
			return
		case err != nil:
			// Transient fetch failures are swallowed: flaky
			// connectivity during a long generation must not kill
			// the loop. The next tick retries.
			p.logger.Debug("poll fetch failed", "job_id", jobID, "error", err)
		default:
			p.merge(job)
			switch job.Status {
			case imagejob.StatusDone:
				p.transition(StateDone, "")
				return
			case imagejob.StatusError:
				p.transition(StateError, job.Error)
				return
			}
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// merge folds a fetched job record into local state. All page variants
// are merged before the progress counters are updated, so a snapshot
// never shows a completion count ahead of the images it holds.
func (p *Poller) merge(job *imagejob.Job) {
	p.mu.Lock()
	for key, res := range job.Results {
		idx, err := strconv.Atoi(key)
		if err != nil {
			continue
		}
		for _, v := range res.Variants {
			if !hasURL(p.pages[idx], v.URL) {
				p.pages[idx] = append(p.pages[idx], book.ImageVariant{URL: v.URL, Model: v.Model})
			}
		}
	}
	p.completed = job.CompletedPages
	p.total = job.TotalPages
	p.mu.Unlock()
	p.notify()
}

func (p *Poller) transition(state State, message string) {
	p.mu.Lock()
	if p.state != StatePolling {
		// Stop won the race; keep idle.
		p.mu.Unlock()
		return
	}
	p.state = state
	p.message = message
	cancel := p.cancel
	p.cancel = nil
	p.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	p.notify()
}

func (p *Poller) notify() {
	if p.onUpdate == nil {
		return
	}
	p.mu.Lock()
	snap := p.snapshotLocked()
	p.mu.Unlock()
	p.onUpdate(snap)
}

func (p *Poller) snapshotLocked() Snapshot {
	pages := make(map[int][]book.ImageVariant, len(p.pages))
	for idx, variants := range p.pages {
		pages[idx] = append([]book.ImageVariant(nil), variants...)
	}
	return Snapshot{
		State:     p.state,
		Message:   p.message,
		JobID:     p.jobID,
		Completed: p.completed,
		Total:     p.total,
		Pages:     pages,
	}
}

func hasURL(variants []book.ImageVariant, url string) bool {
	for _, v := range variants {
		if v.URL == url {
			return true
		}
	}
	return false
}
