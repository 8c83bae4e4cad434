package jobs

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/valyala/fasthttp"

	"github.com/wcckavaliers/scorebook/internal/platform/logging"
	"github.com/wcckavaliers/scorebook/internal/usecase"
)

const (
	keepAliveSchedule  = "@every 14m"
	activityGrace      = 10 * time.Minute
	alertAfterFailures = 3
)

// Pinger issues the self-ping that keeps the free-tier host from idling.
type Pinger interface {
	Ping(ctx context.Context, url string) error
}

// FastHTTPPinger is the production pinger.
type FastHTTPPinger struct {
	client *fasthttp.Client
}

func NewFastHTTPPinger(timeout time.Duration) *FastHTTPPinger {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &FastHTTPPinger{
		client: &fasthttp.Client{
			ReadTimeout:  timeout,
			WriteTimeout: timeout,
		},
	}
}

func (p *FastHTTPPinger) Ping(_ context.Context, url string) error {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(url)
	req.Header.SetMethod(fasthttp.MethodGet)

	if err := p.client.Do(req, resp); err != nil {
		return fmt.Errorf("ping %s: %w", url, err)
	}
	if code := resp.StatusCode(); code < 200 || code >= 300 {
		return fmt.Errorf("ping %s: status %d", url, code)
	}

	return nil
}

// KeepAlive pings the service's own health endpoint on a schedule so the
// hosting platform does not idle it between match days. Pings are skipped
// inside the configured quiet windows and whenever real traffic was seen
// recently. Repeated failures raise one notification.
type KeepAlive struct {
	cron      *cron.Cron
	pinger    Pinger
	targetURL string
	notifier  usecase.Notifier
	logger    *logging.Logger
	now       func() time.Time

	lastActivity atomic.Int64

	mu       sync.Mutex
	failures int
	alerted  bool
}

func NewKeepAlive(pinger Pinger, targetURL string, notifier usecase.Notifier, logger *logging.Logger) *KeepAlive {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &KeepAlive{
		cron:      cron.New(),
		pinger:    pinger,
		targetURL: targetURL,
		notifier:  notifier,
		logger:    logger,
		now:       time.Now,
	}
}

func (k *KeepAlive) Start() error {
	if _, err := k.cron.AddFunc(keepAliveSchedule, k.runOnce); err != nil {
		return fmt.Errorf("schedule keep-alive job: %w", err)
	}
	k.cron.Start()
	k.logger.Info("keep-alive job started", "schedule", keepAliveSchedule, "target", k.targetURL)
	return nil
}

func (k *KeepAlive) Stop() {
	ctx := k.cron.Stop()
	<-ctx.Done()
}

// TouchActivity records that a real request was just served. Wired into the
// HTTP middleware chain.
func (k *KeepAlive) TouchActivity() {
	k.lastActivity.Store(k.now().UnixNano())
}

func (k *KeepAlive) runOnce() {
	now := k.now().UTC()
	if inQuietWindow(now) {
		k.logger.Debug("keep-alive skipped, quiet window", "at", now)
		return
	}
	if last := k.lastActivity.Load(); last > 0 && now.Sub(time.Unix(0, last)) < activityGrace {
		k.logger.Debug("keep-alive skipped, recent traffic", "at", now)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := k.pinger.Ping(ctx, k.targetURL); err != nil {
		k.recordFailure(ctx, err)
		return
	}
	k.recordSuccess()
}

func (k *KeepAlive) recordFailure(ctx context.Context, err error) {
	k.mu.Lock()
	k.failures++
	failures := k.failures
	shouldAlert := failures >= alertAfterFailures && !k.alerted
	if shouldAlert {
		k.alerted = true
	}
	k.mu.Unlock()

	k.logger.Warn("keep-alive ping failed", "failures", failures, "error", err)
	if shouldAlert && k.notifier != nil {
		k.notifier.Notify(ctx,
			"Scorebook keep-alive failing",
			fmt.Sprintf("The keep-alive ping to %s has failed %d times in a row: %v", k.targetURL, failures, err),
		)
	}
}

func (k *KeepAlive) recordSuccess() {
	k.mu.Lock()
	k.failures = 0
	k.alerted = false
	k.mu.Unlock()
}

// inQuietWindow reports whether pings pause: early Saturday (01:00-05:00,
// match-day maintenance) and late Tuesday-Thursday mornings (11:00-14:00)
// when the host is allowed to sleep.
func inQuietWindow(now time.Time) bool {
	hour := now.Hour()
	switch now.Weekday() {
	case time.Saturday:
		return hour >= 1 && hour < 5
	case time.Tuesday, time.Wednesday, time.Thursday:
		return hour >= 11 && hour < 14
	default:
		return false
	}
}
