package poll

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Alwanly/service-env-state/pkg/logger"
	"go.uber.org/zap"
)

var (
	ErrUnknownFetchFunc = errors.New("poll: unknown fetch function")
	ErrAlreadyStarted   = errors.New("poll: already started")
)

type job struct {
	name     string
	fetch    FetchFunc
	config   PollerConfig
	interval time.Duration
	resetCh  chan time.Duration
	triggerC chan struct{}
}

// poller implements the Poller interface
type poller struct {
	cfg     Config
	logger  *logger.CanonicalLogger
	mu      sync.Mutex
	jobs    map[string]*job
	started bool
	stopCh  chan struct{}
	stopped sync.Once
	wg      sync.WaitGroup
}

// NewPoller creates a new Poller instance
func NewPoller(cfg Config, log *logger.CanonicalLogger) Poller {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultConfig().Interval
	}
	return &poller{
		cfg:    cfg,
		logger: log,
		jobs:   make(map[string]*job),
		stopCh: make(chan struct{}),
	}
}

// RegisterFetchFunc registers a fetch function with its polling configuration
func (p *poller) RegisterFetchFunc(name string, fetchFunc FetchFunc, config PollerConfig) error {
	if name == "" || fetchFunc == nil {
		return fmt.Errorf("poll: invalid fetch function registration")
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started {
		return ErrAlreadyStarted
	}
	if _, exists := p.jobs[name]; exists {
		return fmt.Errorf("poll: fetch function %q already registered", name)
	}

	interval := config.Interval
	if interval <= 0 {
		interval = p.cfg.Interval
	}
	p.jobs[name] = &job{
		name:     name,
		fetch:    fetchFunc,
		config:   config,
		interval: p.clamp(interval),
		resetCh:  make(chan time.Duration, 1),
		triggerC: make(chan struct{}, 1),
	}
	p.logger.Info("fetch function registered", zap.String(logger.FieldPollName, name), zap.Duration(logger.FieldPollInterval, interval))
	return nil
}

// Start launches one loop per registered fetch function
func (p *poller) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started {
		return ErrAlreadyStarted
	}
	p.started = true

	for _, j := range p.jobs {
		p.wg.Add(1)
		go p.run(ctx, j, j.interval)
	}
	return nil
}

// Stop gracefully stops the poller
func (p *poller) Stop() error {
	p.stopped.Do(func() {
		close(p.stopCh)
	})
	p.wg.Wait()
	return nil
}

func (p *poller) SetInterval(name string, interval time.Duration) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	j, ok := p.jobs[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownFetchFunc, name)
	}
	interval = p.clamp(interval)
	if interval == j.interval {
		return nil
	}
	j.interval = interval

	// keep only the newest pending interval
	select {
	case <-j.resetCh:
	default:
	}
	j.resetCh <- interval

	p.logger.Info("poll interval changed", zap.String(logger.FieldPollName, name), zap.Duration(logger.FieldPollInterval, interval))
	return nil
}

func (p *poller) Interval(name string) (time.Duration, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	j, ok := p.jobs[name]
	if !ok {
		return 0, false
	}
	return j.interval, true
}

func (p *poller) Trigger(name string) error {
	p.mu.Lock()
	j, ok := p.jobs[name]
	p.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownFetchFunc, name)
	}
	select {
	case j.triggerC <- struct{}{}:
	default:
		// a trigger is already pending
	}
	return nil
}

// run performs the polling loop of a single fetch function
func (p *poller) run(ctx context.Context, j *job, interval time.Duration) {
	defer p.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	p.logger.Info("started polling", zap.String(logger.FieldPollName, j.name), zap.Duration(logger.FieldPollInterval, interval))

	if j.config.Immediate {
		p.performPoll(ctx, j)
	}

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("stopping poller", zap.String(logger.FieldPollName, j.name))
			return
		case <-p.stopCh:
			p.logger.Info("stopping poller", zap.String(logger.FieldPollName, j.name))
			return
		case d := <-j.resetCh:
			ticker.Reset(d)
		case <-j.triggerC:
			p.performPoll(ctx, j)
		case <-ticker.C:
			p.logger.Debug("polling", zap.String(logger.FieldPollName, j.name))
			p.performPoll(ctx, j)
		}
	}
}

// performPoll executes a single poll operation
func (p *poller) performPoll(ctx context.Context, j *job) {
	if err := j.fetch(ctx); err != nil {
		p.logger.Error("fetch failed", zap.String(logger.FieldPollName, j.name), zap.Error(err))
		return
	}
	p.logger.Debug("fetch succeeded", zap.String(logger.FieldPollName, j.name))
}

func (p *poller) clamp(d time.Duration) time.Duration {
	if p.cfg.MinInterval > 0 && d < p.cfg.MinInterval {
		return p.cfg.MinInterval
	}
	return d
}
