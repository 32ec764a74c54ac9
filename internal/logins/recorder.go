package logins

import (
	"context"
	"fmt"
	"time"

	"github.com/zulal-hq/identity-backend/pkg/logger"
	"github.com/zulal-hq/identity-backend/pkg/metrics"
)

const (
	defaultQueueSize    = 256
	defaultWriteTimeout = 5 * time.Second
)

type eventStore interface {
	Create(ctx context.Context, entry Entry) error
}

// Recorder persists login events off the request path. Enqueueing never
// blocks: when the queue is full the event is dropped with a warn log.
type Recorder struct {
	store        eventStore
	logg         *logger.Logger
	metrics      *metrics.IdentityMetrics
	queue        chan Entry
	writeTimeout time.Duration
}

// RecorderParams bundles the dependencies for a login recorder.
type RecorderParams struct {
	Store        eventStore
	Logger       *logger.Logger
	Metrics      *metrics.IdentityMetrics
	QueueSize    int
	WriteTimeout time.Duration
}

// NewRecorder constructs the recorder. Run must be started for queued events
// to reach storage.
func NewRecorder(params RecorderParams) (*Recorder, error) {
	if params.Store == nil {
		return nil, fmt.Errorf("event store is required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	size := params.QueueSize
	if size <= 0 {
		size = defaultQueueSize
	}
	timeout := params.WriteTimeout
	if timeout <= 0 {
		timeout = defaultWriteTimeout
	}
	return &Recorder{
		store:        params.Store,
		logg:         params.Logger,
		metrics:      params.Metrics,
		queue:        make(chan Entry, size),
		writeTimeout: timeout,
	}, nil
}

// Record enqueues the event without waiting on the write. Reports whether the
// event was accepted.
func (r *Recorder) Record(ctx context.Context, entry Entry) bool {
	if r == nil {
		return false
	}
	select {
	case r.queue <- entry:
		return true
	default:
		r.metrics.IncLoginDropped()
		r.logg.Warn(ctx, "login event queue full, dropping event")
		return false
	}
}

// Run consumes the queue until the context is canceled, then drains whatever
// is already buffered before returning.
func (r *Recorder) Run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	for {
		select {
		case <-ctx.Done():
			r.drain()
			return ctx.Err()
		case entry := <-r.queue:
			r.write(entry)
		}
	}
}

func (r *Recorder) drain() {
	for {
		select {
		case entry := <-r.queue:
			r.write(entry)
		default:
			return
		}
	}
}

func (r *Recorder) write(entry Entry) {
	ctx, cancel := context.WithTimeout(context.Background(), r.writeTimeout)
	defer cancel()

	if err := r.store.Create(ctx, entry); err != nil {
		r.metrics.IncLoginWriteFailure()
		r.logg.Error(ctx, "failed to record login event", err)
		return
	}
	r.metrics.IncLoginRecorded()
}
