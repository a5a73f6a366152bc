package notification

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/fekuna/omnipos-stockroom/internal/model"
	"github.com/fekuna/omnipos-stockroom/pkg/logger"
	"github.com/fekuna/omnipos-stockroom/pkg/metrics"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Status string

const (
	StatusSent    Status = "sent"
	StatusSkipped Status = "skipped"
	StatusFailed  Status = "failed"
)

// Mailer is the external mail transport.
type Mailer interface {
	Configured() bool
	Send(ctx context.Context, recipients []string, subject, html string) error
}

type Task struct {
	ID         string
	AlertID    string
	Recipients []string
	Subject    string
	HTML       string
}

type Result struct {
	TaskID  string
	AlertID string
	Status  Status
	Reason  string
	Err     error
}

type Config struct {
	Workers     int
	QueueSize   int
	SendTimeout time.Duration
	// OnResult, when set, receives every task result after it is logged.
	OnResult func(Result)
}

// Dispatcher delivers alert mail off the request path. Tasks go through a
// bounded queue to a worker pool; outcomes go to a results channel drained
// by a single collector that logs and counts them.
type Dispatcher struct {
	mailer  Mailer
	cfg     Config
	metrics *metrics.Metrics
	logger  logger.ZapLogger

	mu      sync.RWMutex
	closed  bool
	queue   chan Task
	results chan Result

	workers   sync.WaitGroup
	collector sync.WaitGroup
}

func NewDispatcher(mailer Mailer, cfg Config, m *metrics.Metrics, log logger.ZapLogger) *Dispatcher {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 64
	}
	if cfg.SendTimeout <= 0 {
		cfg.SendTimeout = 15 * time.Second
	}

	d := &Dispatcher{
		mailer:  mailer,
		cfg:     cfg,
		metrics: m,
		logger:  log,
		queue:   make(chan Task, cfg.QueueSize),
		results: make(chan Result, cfg.QueueSize),
	}

	for i := 0; i < cfg.Workers; i++ {
		d.workers.Add(1)
		go d.work()
	}
	d.collector.Add(1)
	go d.collect()
	return d
}

// Send delivers synchronously. It never panics and reports every outcome as
// a Result; an empty recipient list or an unconfigured transport is skipped.
func (d *Dispatcher) Send(ctx context.Context, recipients []string, subject, html string) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			res = Result{Status: StatusFailed, Err: fmt.Errorf("mail transport panic: %v", r)}
		}
	}()

	if len(recipients) == 0 {
		return Result{Status: StatusSkipped, Reason: "no recipients"}
	}
	if d.mailer == nil || !d.mailer.Configured() {
		return Result{Status: StatusSkipped, Reason: "mail transport not configured"}
	}
	if err := d.mailer.Send(ctx, recipients, subject, html); err != nil {
		return Result{Status: StatusFailed, Err: err}
	}
	return Result{Status: StatusSent}
}

// Enqueue hands a task to the workers without blocking. It returns false when
// the queue is full or the dispatcher is closed; the task is then dropped.
func (d *Dispatcher) Enqueue(t Task) bool {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}

	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return false
	}
	select {
	case d.queue <- t:
		return true
	default:
		d.report(Result{TaskID: t.ID, AlertID: t.AlertID, Status: StatusSkipped, Reason: "queue full"})
		return false
	}
}

// NotifyAlert renders the alert mail and enqueues it.
func (d *Dispatcher) NotifyAlert(a *model.AlertLog, rec *model.InventoryRecord, recipients []string) bool {
	subject, html, err := RenderAlert(a, rec)
	if err != nil {
		d.logger.Error("failed to render alert mail", zap.String("alert_id", a.ID), zap.Error(err))
		return false
	}
	return d.Enqueue(Task{
		AlertID:    a.ID,
		Recipients: recipients,
		Subject:    subject,
		HTML:       html,
	})
}

// Close stops accepting tasks, drains the queue and waits for the results to
// be collected.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	close(d.queue)
	d.mu.Unlock()

	d.workers.Wait()
	close(d.results)
	d.collector.Wait()
}

func (d *Dispatcher) work() {
	defer d.workers.Done()
	for t := range d.queue {
		ctx, cancel := context.WithTimeout(context.Background(), d.cfg.SendTimeout)
		res := d.Send(ctx, t.Recipients, t.Subject, t.HTML)
		cancel()
		res.TaskID = t.ID
		res.AlertID = t.AlertID
		d.results <- res
	}
}

// report delivers a result produced outside the workers. Callers hold d.mu,
// so the results channel is still open.
func (d *Dispatcher) report(res Result) {
	select {
	case d.results <- res:
	default:
		d.logger.Warn("notification result dropped", zap.String("task_id", res.TaskID))
	}
}

func (d *Dispatcher) collect() {
	defer d.collector.Done()
	for res := range d.results {
		d.metrics.IncNotification(string(res.Status))
		switch res.Status {
		case StatusFailed:
			d.logger.Warn("alert notification failed",
				zap.String("task_id", res.TaskID),
				zap.String("alert_id", res.AlertID),
				zap.Error(res.Err),
			)
		case StatusSkipped:
			d.logger.Debug("alert notification skipped",
				zap.String("alert_id", res.AlertID),
				zap.String("reason", res.Reason),
			)
		default:
			d.logger.Info("alert notification sent", zap.String("alert_id", res.AlertID))
		}
		if d.cfg.OnResult != nil {
			d.cfg.OnResult(res)
		}
	}
}
