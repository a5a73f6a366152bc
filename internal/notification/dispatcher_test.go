package notification

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/fekuna/omnipos-stockroom/internal/model"
	"github.com/fekuna/omnipos-stockroom/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMailer struct {
	mu         sync.Mutex
	configured bool
	err        error
	panicMsg   string
	block      chan struct{}
	sent       [][]string
}

func (f *fakeMailer) Configured() bool { return f.configured }

func (f *fakeMailer) Send(ctx context.Context, recipients []string, subject, html string) error {
	if f.block != nil {
		<-f.block
	}
	if f.panicMsg != "" {
		panic(f.panicMsg)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, recipients)
	return nil
}

func newDispatcher(m Mailer, cfg Config) *Dispatcher {
	return NewDispatcher(m, cfg, nil, logger.NewNop())
}

func TestSend_EmptyRecipientsSkipped(t *testing.T) {
	d := newDispatcher(&fakeMailer{configured: true}, Config{})
	defer d.Close()

	var res Result
	assert.NotPanics(t, func() {
		res = d.Send(context.Background(), nil, "subject", "<p>x</p>")
	})
	assert.Equal(t, StatusSkipped, res.Status)
	assert.NoError(t, res.Err)
}

func TestSend_UnconfiguredTransportSkipped(t *testing.T) {
	d := newDispatcher(&fakeMailer{configured: false}, Config{})
	defer d.Close()

	res := d.Send(context.Background(), []string{"ops@example.com"}, "s", "h")
	assert.Equal(t, StatusSkipped, res.Status)

	d2 := newDispatcher(nil, Config{})
	defer d2.Close()
	assert.Equal(t, StatusSkipped, d2.Send(context.Background(), []string{"ops@example.com"}, "s", "h").Status)
}

func TestSend_FailureIsReportedNotRaised(t *testing.T) {
	d := newDispatcher(&fakeMailer{configured: true, err: errors.New("connection refused")}, Config{})
	defer d.Close()

	res := d.Send(context.Background(), []string{"ops@example.com"}, "s", "h")
	assert.Equal(t, StatusFailed, res.Status)
	assert.EqualError(t, res.Err, "connection refused")
}

func TestSend_PanicIsRecovered(t *testing.T) {
	d := newDispatcher(&fakeMailer{configured: true, panicMsg: "boom"}, Config{})
	defer d.Close()

	res := d.Send(context.Background(), []string{"ops@example.com"}, "s", "h")
	assert.Equal(t, StatusFailed, res.Status)
	assert.Error(t, res.Err)
}

func TestEnqueue_DeliversAndReportsResults(t *testing.T) {
	mailer := &fakeMailer{configured: true}
	results := make(chan Result, 10)
	d := newDispatcher(mailer, Config{Workers: 2, OnResult: func(r Result) { results <- r }})

	require.True(t, d.Enqueue(Task{AlertID: "a1", Recipients: []string{"ops@example.com"}, Subject: "s", HTML: "h"}))
	require.True(t, d.Enqueue(Task{AlertID: "a2", Subject: "s", HTML: "h"}))
	d.Close()
	close(results)

	byAlert := map[string]Result{}
	for r := range results {
		byAlert[r.AlertID] = r
	}
	assert.Equal(t, StatusSent, byAlert["a1"].Status)
	assert.Equal(t, StatusSkipped, byAlert["a2"].Status)
	assert.NotEmpty(t, byAlert["a1"].TaskID)
	assert.Len(t, mailer.sent, 1)
}

func TestEnqueue_QueueFullDropsTask(t *testing.T) {
	block := make(chan struct{})
	mailer := &fakeMailer{configured: true, block: block}
	var mu sync.Mutex
	var statuses []Status
	d := newDispatcher(mailer, Config{Workers: 1, QueueSize: 1, OnResult: func(r Result) {
		mu.Lock()
		statuses = append(statuses, r.Status)
		mu.Unlock()
	}})

	task := Task{Recipients: []string{"ops@example.com"}}
	require.True(t, d.Enqueue(task))
	// Wait until the worker has taken the first task and is blocked in Send.
	require.Eventually(t, func() bool { return len(d.queue) == 0 }, time.Second, 5*time.Millisecond)
	require.True(t, d.Enqueue(task))
	assert.False(t, d.Enqueue(task))

	close(block)
	d.Close()

	mu.Lock()
	defer mu.Unlock()
	assert.Contains(t, statuses, StatusSkipped)
	assert.Len(t, statuses, 3)
}

func TestEnqueue_AfterClose(t *testing.T) {
	d := newDispatcher(&fakeMailer{configured: true}, Config{})
	d.Close()
	d.Close()

	assert.False(t, d.Enqueue(Task{Recipients: []string{"ops@example.com"}}))
}

func TestNotifyAlert(t *testing.T) {
	mailer := &fakeMailer{configured: true}
	d := newDispatcher(mailer, Config{})

	a := &model.AlertLog{ID: "a1", AlertType: model.AlertLowStock, PriorityLevel: model.PriorityMedium, Message: "low", CreatedAt: time.Now()}
	rec := &model.InventoryRecord{Barcode: "X", ItemName: "Widget", WarehouseName: "W"}
	assert.True(t, d.NotifyAlert(a, rec, []string{"ops@example.com"}))
	d.Close()

	require.Len(t, mailer.sent, 1)
	assert.Equal(t, []string{"ops@example.com"}, mailer.sent[0])
}
