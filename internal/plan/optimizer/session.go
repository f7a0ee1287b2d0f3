package optimizer

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/iRoman8614/timelinesWorks-sub000/internal/plan/entity"
	"github.com/iRoman8614/timelinesWorks-sub000/internal/plan/timeline"
)

// Session states.
type State int

const (
	StateIdle State = iota
	StateConnecting
	StateStreaming
	StateCompleted
	StateErrored
	StateCancelled
)

var (
	ErrCancelled    = errors.New("generation cancelled")
	ErrStreamFailed = errors.New("optimizer stream failed")

	// errStreamDone stops the frame loop after an explicit completion.
	errStreamDone = errors.New("stream done")
)

// Callbacks are the side effects a session exposes. The session performs no
// persistence itself: the caller persists on OnComplete only, and explicitly
// not on OnError or after Cancel. Callbacks are invoked serially and must not
// call back into the session synchronously.
type Callbacks struct {
	OnProgress         func(text string)
	OnTimelineUpdate   func(tl *entity.Timeline)
	OnOptimizationInfo func(points []OptimizationInfo)
	OnComplete         func(tl *entity.Timeline)
	OnError            func(err error)
	OnRetry            func(count int)
}

// Client talks to the optimizer's generation endpoint.
type Client struct {
	baseURL    string
	httpClient *http.Client
	retryDelay time.Duration
	maxRetries int
	log        *zap.Logger
}

// NewClient creates an optimizer client. The HTTP client carries no overall
// timeout: the stream is long-lived and bounded by cancellation, not wall clock.
func NewClient(baseURL string, retryDelay time.Duration, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	if retryDelay <= 0 {
		retryDelay = 2 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
		retryDelay: retryDelay,
		maxRetries: 3,
		log:        log,
	}
}

// Session is one generation run. It is an owned, cancellable handle rather
// than a shared singleton, so several sessions can run side by side even
// though production use is one at a time.
type Session struct {
	mu        sync.Mutex
	state     State
	cancelled bool
	cancelCtx context.CancelFunc
	done      chan struct{}
	cb        Callbacks
	metrics   *MetricsBuffer

	updates      int
	retries      int
	lastTimeline *entity.Timeline

	log *zap.Logger
}

// Generate starts one optimization run. The structural model is POSTed as the
// body; start and end bound the planned range. The returned session is already
// running.
func (c *Client) Generate(ctx context.Context, m *entity.StructuralModel, rng timeline.Range, cb Callbacks) (*Session, error) {
	body, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("marshal structural model: %w", err)
	}

	runCtx, cancel := context.WithCancel(ctx)
	s := &Session{
		state:     StateConnecting,
		cancelCtx: cancel,
		done:      make(chan struct{}),
		cb:        cb,
		log:       c.log,
	}
	s.metrics = NewMetricsBuffer(func(points []OptimizationInfo) {
		s.emit(func(cb Callbacks) {
			if cb.OnOptimizationInfo != nil {
				cb.OnOptimizationInfo(points)
			}
		})
	})

	url := fmt.Sprintf("%s/generate?start=%s&end=%s",
		c.baseURL, rng.Start.Format(time.RFC3339), rng.End.Format(time.RFC3339))

	go s.run(runCtx, c, url, body)
	return s, nil
}

// Cancel aborts the run. After Cancel returns, no OnTimelineUpdate, OnComplete
// or any other callback fires; a final message already in flight is dropped.
// Cancellation is not an error and triggers no OnError.
func (s *Session) Cancel() {
	s.mu.Lock()
	if s.isTerminalLocked() {
		s.mu.Unlock()
		return
	}
	s.cancelled = true
	s.state = StateCancelled
	s.mu.Unlock()
	s.cancelCtx()
}

// Done closes when the session reaches a terminal state.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// State returns the current session state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Retries returns the monotonically incremented retry counter.
func (s *Session) Retries() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.retries
}

func (s *Session) run(ctx context.Context, c *Client, url string, body []byte) {
	defer close(s.done)
	defer s.cancelCtx()

	for attempt := 1; attempt <= c.maxRetries; attempt++ {
		err := s.stream(ctx, c, url, body)
		if err == nil || errors.Is(err, errStreamDone) {
			return
		}
		if ctx.Err() != nil || s.State() == StateCancelled {
			s.log.Info("generation cancelled")
			return
		}
		// Close after at least one update and no explicit completion: the
		// transport closing is the only observable signal, so treat it as a
		// degraded success rather than throwing the partial result away.
		if s.updatesSeen() > 0 {
			s.log.Warn("stream closed without completion event, treating last update as final",
				zap.Int("updates", s.updatesSeen()))
			s.complete(s.lastSeen())
			return
		}
		if attempt == c.maxRetries {
			s.fail(fmt.Errorf("%w after %d attempts: %v", ErrStreamFailed, attempt, err))
			return
		}
		s.mu.Lock()
		s.retries++
		count := s.retries
		s.mu.Unlock()
		s.emit(func(cb Callbacks) {
			if cb.OnRetry != nil {
				cb.OnRetry(count)
			}
		})
		s.log.Warn("optimizer stream attempt failed, retrying",
			zap.Int("attempt", attempt), zap.Error(err))
		select {
		case <-ctx.Done():
			return
		case <-time.After(c.retryDelay * time.Duration(attempt)):
		}
	}
}

func (s *Session) stream(ctx context.Context, c *Client, url string, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create generation request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("open optimizer stream: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("optimizer returned status %d", resp.StatusCode)
	}

	s.setState(StateStreaming)

	return readFrames(resp.Body, func(tag string, data []byte) error {
		if s.State() == StateCancelled {
			// Final messages racing the abort are dropped, not processed.
			return errStreamDone
		}
		msg, err := DecodeMessage(tag, data)
		if err != nil {
			s.log.Warn("unparseable stream message skipped", zap.Error(err))
			return nil
		}
		return s.handle(msg)
	})
}

func (s *Session) handle(msg *Message) error {
	switch msg.Kind {
	case MessageProgress:
		s.emit(func(cb Callbacks) {
			if cb.OnProgress != nil {
				cb.OnProgress(msg.Text)
			}
		})
	case MessageUpdate:
		if msg.Timeline != nil {
			// The latest snapshot is authoritative for the generated subset:
			// replacement, not field-by-field merge.
			s.mu.Lock()
			s.updates++
			s.lastTimeline = msg.Timeline
			s.mu.Unlock()
			s.emit(func(cb Callbacks) {
				if cb.OnTimelineUpdate != nil {
					cb.OnTimelineUpdate(msg.Timeline)
				}
			})
		}
		if msg.Info != nil {
			s.metrics.Add(*msg.Info)
		}
	case MessageComplete:
		tl := msg.Timeline
		if tl == nil {
			tl = s.lastSeen()
		}
		s.complete(tl)
		return errStreamDone
	}
	return nil
}

func (s *Session) complete(tl *entity.Timeline) {
	s.mu.Lock()
	if s.isTerminalLocked() {
		s.mu.Unlock()
		return
	}
	s.state = StateCompleted
	s.mu.Unlock()
	s.emit(func(cb Callbacks) {
		if cb.OnComplete != nil {
			cb.OnComplete(tl)
		}
	})
}

func (s *Session) fail(err error) {
	s.mu.Lock()
	if s.isTerminalLocked() {
		s.mu.Unlock()
		return
	}
	s.state = StateErrored
	s.mu.Unlock()
	s.emit(func(cb Callbacks) {
		if cb.OnError != nil {
			cb.OnError(err)
		}
	})
}

// emit invokes a callback under the session lock. Cancel takes the same lock,
// so once Cancel has returned no further callback can fire.
func (s *Session) emit(fn func(cb Callbacks)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancelled {
		return
	}
	fn(s.cb)
}

func (s *Session) setState(st State) {
	s.mu.Lock()
	if !s.isTerminalLocked() {
		s.state = st
	}
	s.mu.Unlock()
}

func (s *Session) isTerminalLocked() bool {
	return s.state == StateCompleted || s.state == StateErrored || s.state == StateCancelled
}

func (s *Session) updatesSeen() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updates
}

func (s *Session) lastSeen() *entity.Timeline {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastTimeline
}

// readFrames parses a text/event-stream body: "event:" and "data:" lines
// accumulate until a blank line dispatches the frame. Comment lines (leading
// colon) are keepalives and are ignored.
func readFrames(body io.Reader, fn func(tag string, data []byte) error) error {
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)

	var tag string
	var data []string
	dispatch := func() error {
		if len(data) == 0 {
			tag = ""
			return nil
		}
		payload := strings.Join(data, "\n")
		t := tag
		tag = ""
		data = nil
		return fn(t, []byte(payload))
	}

	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case line == "":
			if err := dispatch(); err != nil {
				return err
			}
		case strings.HasPrefix(line, ":"):
			// keepalive
		case strings.HasPrefix(line, "event:"):
			tag = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		case strings.HasPrefix(line, "data:"):
			data = append(data, strings.TrimSpace(strings.TrimPrefix(line, "data:")))
		default:
			// Some emitters send bare JSON lines without SSE field names.
			data = append(data, line)
		}
	}
	if err := dispatch(); err != nil {
		return err
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read optimizer stream: %w", err)
	}
	return fmt.Errorf("%w: stream closed", ErrStreamFailed)
}
