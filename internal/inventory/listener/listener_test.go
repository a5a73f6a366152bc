package listener

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/fekuna/omnipos-stockroom/internal/inventory"
	"github.com/fekuna/omnipos-stockroom/internal/inventory/dto"
	"github.com/fekuna/omnipos-stockroom/internal/model"
	"github.com/fekuna/omnipos-stockroom/pkg/apperror"
	"github.com/fekuna/omnipos-stockroom/pkg/logger"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingUseCase struct {
	inventory.UseCase
	mu       sync.Mutex
	received []*dto.StockMovementInput
	issued   []*dto.StockMovementInput
}

func (r *recordingUseCase) Receive(ctx context.Context, in *dto.StockMovementInput) (*model.StockTransaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.received = append(r.received, in)
	return &model.StockTransaction{ID: "tx"}, nil
}

func (r *recordingUseCase) Issue(ctx context.Context, in *dto.StockMovementInput) (*model.StockTransaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.issued = append(r.issued, in)
	if in.Quantity > 100 {
		return nil, apperror.Validation("insufficient stock")
	}
	return &model.StockTransaction{ID: "tx"}, nil
}

// sliceReader serves queued messages, then blocks until ctx is cancelled.
type sliceReader struct {
	mu    sync.Mutex
	msgs  [][]byte
	fails int
}

func (s *sliceReader) ReadMessage(ctx context.Context) (kafka.Message, error) {
	s.mu.Lock()
	if s.fails > 0 {
		s.fails--
		s.mu.Unlock()
		return kafka.Message{}, errors.New("broker unavailable")
	}
	if len(s.msgs) > 0 {
		v := s.msgs[0]
		s.msgs = s.msgs[1:]
		s.mu.Unlock()
		return kafka.Message{Value: v}, nil
	}
	s.mu.Unlock()
	<-ctx.Done()
	return kafka.Message{}, ctx.Err()
}

func TestProcessMessage_RoutesByEventType(t *testing.T) {
	uc := &recordingUseCase{}
	l := NewInventoryListener(&sliceReader{}, uc, logger.NewNop())
	ctx := context.Background()

	l.processMessage(ctx, []byte(`{"event_id":"e1","event_type":"StockReceived","payload":{"barcode":"X","warehouse_name":"Main","quantity":5,"reference_doc":"PO-1"}}`))
	l.processMessage(ctx, []byte(`{"event_id":"e2","event_type":"StockIssued","payload":{"barcode":"X","warehouse_name":"Main","quantity":2,"reason":"sale"}}`))
	l.processMessage(ctx, []byte(`{"event_id":"e3","event_type":"OrderCreated","payload":{}}`))
	l.processMessage(ctx, []byte(`not json`))

	require.Len(t, uc.received, 1)
	require.Len(t, uc.issued, 1)
	assert.Equal(t, "PO-1", uc.received[0].ReferenceDoc)
	assert.Equal(t, 5.0, uc.received[0].Quantity)
	assert.Equal(t, "system", uc.received[0].UserID)
	assert.Equal(t, "sale", uc.issued[0].Reason)
	assert.Equal(t, "Main", uc.issued[0].WarehouseName)
}

func TestStart_ConsumesUntilCancelled(t *testing.T) {
	uc := &recordingUseCase{}
	reader := &sliceReader{
		fails: 1,
		msgs: [][]byte{
			[]byte(`{"event_type":"StockIssued","payload":{"barcode":"X","warehouse_name":"Main","quantity":500}}`),
			[]byte(`{"event_type":"StockReceived","payload":{"barcode":"X","warehouse_name":"Main","quantity":1}}`),
		},
	}
	l := NewInventoryListener(reader, uc, logger.NewNop())
	l.backoff = time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		l.Start(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool {
		uc.mu.Lock()
		defer uc.mu.Unlock()
		return len(uc.received) == 1 && len(uc.issued) == 1
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("listener did not stop")
	}
}
