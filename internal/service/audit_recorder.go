package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/iliyamo/inventory-api/internal/metrics"
	"github.com/iliyamo/inventory-api/internal/model"
)

// AuditWriter appends one audit row.
type AuditWriter interface {
	Insert(ctx context.Context, entry *model.AuditLog) error
}

// AuditEventPublisher fans a persisted audit row out to other consumers.
type AuditEventPublisher interface {
	PublishAuditRecorded(ctx context.Context, entry model.AuditLog) error
}

// AuditRecorderOptions tunes the recorder. Zero values pick the defaults.
type AuditRecorderOptions struct {
	Workers      int
	QueueSize    int
	MaxPending   int
	WriteTimeout time.Duration
	Publisher    AuditEventPublisher
	Logger       *slog.Logger
}

// AuditRecorder persists audit entries on a pool of background workers.
// Submit never blocks and never reports failure to the caller; write
// errors are logged from a dedicated goroutine.
type AuditRecorder struct {
	writer    AuditWriter
	publisher AuditEventPublisher
	log       *slog.Logger
	timeout   time.Duration

	queue   chan model.AuditLog
	pending chan struct{}
	errs    chan error

	mu     sync.RWMutex
	closed bool

	workers  sync.WaitGroup
	overflow sync.WaitGroup
	drained  sync.WaitGroup

	closeOnce sync.Once
	done      chan struct{}
}

// NewAuditRecorder starts the workers and the error drain.
func NewAuditRecorder(w AuditWriter, opts AuditRecorderOptions) *AuditRecorder {
	if opts.Workers <= 0 {
		opts.Workers = 4
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = 1024
	}
	if opts.MaxPending <= 0 {
		opts.MaxPending = 256
	}
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = 5 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	r := &AuditRecorder{
		writer:    w,
		publisher: opts.Publisher,
		log:       opts.Logger,
		timeout:   opts.WriteTimeout,
		queue:     make(chan model.AuditLog, opts.QueueSize),
		pending:   make(chan struct{}, opts.MaxPending),
		errs:      make(chan error, opts.Workers),
		done:      make(chan struct{}),
	}

	r.drained.Add(1)
	go r.drainErrors()

	r.workers.Add(opts.Workers)
	for i := 0; i < opts.Workers; i++ {
		go r.work()
	}
	return r
}

// Submit enqueues entry for persistence. When the queue is full the entry
// is handed to one of at most MaxPending goroutines that wait for room, so
// the caller returns at once. When those are taken too the entry is logged
// and dropped. Dropped entries, and entries submitted after Close, are
// reported false.
func (r *AuditRecorder) Submit(entry model.AuditLog) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		return false
	}

	select {
	case r.queue <- entry:
		return true
	default:
	}

	select {
	case r.pending <- struct{}{}:
		metrics.AuditDeferred.Inc()
		r.overflow.Add(1)
		go func() {
			defer r.overflow.Done()
			r.queue <- entry
			<-r.pending
		}()
		return true
	default:
		metrics.AuditDropped.Inc()
		r.log.Warn("audit queue full, entry dropped",
			"user_id", entry.UserID, "action", entry.Action, "resource", entry.Resource)
		return false
	}
}

// Close stops intake and waits until every accepted entry has been
// written or ctx expires.
func (r *AuditRecorder) Close(ctx context.Context) error {
	r.closeOnce.Do(func() {
		r.mu.Lock()
		r.closed = true
		r.mu.Unlock()

		go func() {
			r.overflow.Wait()
			close(r.queue)
			r.workers.Wait()
			close(r.errs)
			r.drained.Wait()
			close(r.done)
		}()
	})

	select {
	case <-r.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *AuditRecorder) work() {
	defer r.workers.Done()
	for entry := range r.queue {
		r.write(entry)
	}
}

func (r *AuditRecorder) write(entry model.AuditLog) {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	if err := r.writer.Insert(ctx, &entry); err != nil {
		metrics.AuditFailed.Inc()
		r.errs <- fmt.Errorf("insert audit %s %s: %w", entry.Action, entry.Resource, err)
		return
	}
	metrics.AuditWritten.Inc()

	if r.publisher == nil {
		return
	}
	if err := r.publisher.PublishAuditRecorded(ctx, entry); err != nil {
		r.errs <- fmt.Errorf("publish audit %s: %w", entry.ID, err)
	}
}

func (r *AuditRecorder) drainErrors() {
	defer r.drained.Done()
	for err := range r.errs {
		r.log.Error("audit recorder", "error", err)
	}
}
