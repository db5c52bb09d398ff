// Package fetch reads HTML pages from the network or from local snapshots.
package fetch

import (
	"context"
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/go-resty/resty/v2"
	"github.com/riskibarqy/esports-stats/internal/platform/logging"
	"github.com/riskibarqy/esports-stats/internal/platform/resilience"
)

const (
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"
	DefaultTimeout   = 30 * time.Second
	DefaultDelay     = time.Second

	defaultEncoding = "utf-8"
)

var (
	ErrUnexpectedStatus = crerr.New("unexpected response status")
	ErrSourceNotFound   = crerr.New("source is neither a url nor an existing file")
)

// Error is returned for every failed fetch.
type Error struct {
	Source     string
	StatusCode int
	Err        error
}

func (e *Error) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("fetch %s: status %d: %v", e.Source, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetch %s: %v", e.Source, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Response is the content of a fetched page.
type Response struct {
	Content    []byte
	StatusCode int
	Encoding   string
	Headers    http.Header
	Source     string
	Local      bool
}

// Recorder observes fetch outcomes and circuit breaker state.
type Recorder interface {
	ObserveFetch(local bool, statusCode int, err error, elapsed time.Duration)
	ObserveCircuit(state string)
}

type Config struct {
	HTTPClient     *http.Client
	UserAgent      string
	Timeout        time.Duration
	Delay          time.Duration
	BaseDir        string
	CircuitBreaker resilience.CircuitBreakerConfig
	Logger         *logging.Logger
	Recorder       Recorder
}

// Fetcher enforces a minimum delay between network requests, measured from
// the end of the previous one. Local files bypass the delay.
type Fetcher struct {
	client   *resty.Client
	baseDir  string
	delay    time.Duration
	logger   *logging.Logger
	recorder Recorder
	breaker  *resilience.CircuitBreaker

	mu      sync.Mutex
	lastEnd time.Time
	now     func() time.Time
	sleep   func(context.Context, time.Duration) error
}

func New(cfg Config) *Fetcher {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	delay := cfg.Delay
	if delay < 0 {
		delay = 0
	}
	userAgent := strings.TrimSpace(cfg.UserAgent)
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}

	var client *resty.Client
	if cfg.HTTPClient != nil {
		client = resty.NewWithClient(cfg.HTTPClient)
	} else {
		client = resty.New()
	}
	client.SetTimeout(timeout)
	client.SetHeader("User-Agent", userAgent)

	f := &Fetcher{
		client:   client,
		baseDir:  strings.TrimSpace(cfg.BaseDir),
		delay:    delay,
		logger:   logger,
		recorder: cfg.Recorder,
		now:      time.Now,
		sleep:    sleepContext,
	}
	if cfg.CircuitBreaker.Enabled {
		f.breaker = resilience.NewCircuitBreaker(cfg.CircuitBreaker, f.circuitChanged)
	}
	return f
}

// Fetch returns the content of source, which is either an http(s) URL or a
// path to a saved page (absolute, relative to the base dir, or file://).
func (f *Fetcher) Fetch(ctx context.Context, source string) (Response, error) {
	source = strings.TrimSpace(source)
	start := f.now()

	if path, ok := f.localPath(source); ok {
		resp, err := f.readFile(source, path)
		f.observe(true, resp.StatusCode, err, start)
		return resp, err
	}
	if !isHTTP(source) {
		err := &Error{Source: source, Err: ErrSourceNotFound}
		f.observe(false, 0, err, start)
		return Response{}, err
	}

	resp, err := f.get(ctx, source)
	f.observe(false, resp.StatusCode, err, start)
	return resp, err
}

func (f *Fetcher) get(ctx context.Context, source string) (Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.lastEnd.IsZero() {
		if wait := f.delay - f.now().Sub(f.lastEnd); wait > 0 {
			if err := f.sleep(ctx, wait); err != nil {
				return Response{}, &Error{Source: source, Err: err}
			}
		}
	}
	if f.breaker != nil {
		if err := f.breaker.Allow(); err != nil {
			return Response{}, &Error{Source: source, Err: err}
		}
	}

	f.logger.DebugContext(ctx, "fetch page", "url", source)
	res, err := f.client.R().SetContext(ctx).Get(source)
	f.lastEnd = f.now()
	if err != nil {
		f.recordFailure()
		return Response{}, &Error{Source: source, Err: crerr.Wrap(err, "http get")}
	}

	out := Response{
		Content:    res.Body(),
		StatusCode: res.StatusCode(),
		Encoding:   encodingOf(res.Header().Get("Content-Type")),
		Headers:    res.Header(),
		Source:     source,
	}
	if !res.IsSuccess() {
		if res.StatusCode() >= http.StatusInternalServerError {
			f.recordFailure()
		} else {
			f.recordSuccess()
		}
		return out, &Error{Source: source, StatusCode: res.StatusCode(), Err: ErrUnexpectedStatus}
	}
	f.recordSuccess()
	return out, nil
}

func (f *Fetcher) readFile(source, path string) (Response, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Response{}, &Error{Source: source, Err: crerr.Wrapf(err, "read %s", path)}
	}
	return Response{
		Content:    content,
		StatusCode: http.StatusOK,
		Encoding:   defaultEncoding,
		Headers:    http.Header{},
		Source:     path,
		Local:      true,
	}, nil
}

// localPath resolves source to an existing regular file. file:// sources are
// always treated as local so a missing snapshot reports a read error.
func (f *Fetcher) localPath(source string) (string, bool) {
	if source == "" {
		return "", false
	}
	if rest, ok := strings.CutPrefix(source, "file://"); ok {
		return f.resolvePath(rest), true
	}
	if isHTTP(source) {
		return "", false
	}

	candidates := []string{source}
	if !filepath.IsAbs(source) && f.baseDir != "" {
		candidates = []string{filepath.Join(f.baseDir, source), source}
	}
	for _, candidate := range candidates {
		info, err := os.Stat(candidate)
		if err == nil && info.Mode().IsRegular() {
			return candidate, true
		}
	}
	return "", false
}

func (f *Fetcher) resolvePath(path string) string {
	if filepath.IsAbs(path) || f.baseDir == "" {
		return path
	}
	return filepath.Join(f.baseDir, path)
}

func (f *Fetcher) recordFailure() {
	if f.breaker != nil {
		f.breaker.RecordFailure()
	}
}

func (f *Fetcher) recordSuccess() {
	if f.breaker != nil {
		f.breaker.RecordSuccess()
	}
}

func (f *Fetcher) circuitChanged(from, to resilience.CircuitState) {
	f.logger.Warn("fetch circuit state changed", "from", from, "to", to)
	if f.recorder != nil {
		f.recorder.ObserveCircuit(string(to))
	}
}

func (f *Fetcher) observe(local bool, statusCode int, err error, start time.Time) {
	if f.recorder == nil {
		return
	}
	f.recorder.ObserveFetch(local, statusCode, err, f.now().Sub(start))
}

func isHTTP(source string) bool {
	lower := strings.ToLower(source)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

func encodingOf(contentType string) string {
	if contentType == "" {
		return defaultEncoding
	}
	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return defaultEncoding
	}
	if charset := strings.ToLower(strings.TrimSpace(params["charset"])); charset != "" {
		return charset
	}
	return defaultEncoding
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
