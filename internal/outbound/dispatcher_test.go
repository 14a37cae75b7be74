package outbound

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ggoodman/lsp-server-go/jsonrpc"
)

// recordingTransport collects what the dispatcher sends.
type recordingTransport struct {
	mu       sync.Mutex
	requests []*jsonrpc.Request
	cancels  []*jsonrpc.RequestID
	sent     chan struct{}
	failSend error
}

func newRecordingTransport() *recordingTransport {
	return &recordingTransport{sent: make(chan struct{}, 16)}
}

func (t *recordingTransport) SendRequest(ctx context.Context, req *jsonrpc.Request) error {
	if t.failSend != nil {
		return t.failSend
	}
	t.mu.Lock()
	t.requests = append(t.requests, req)
	t.mu.Unlock()
	t.sent <- struct{}{}
	return nil
}

func (t *recordingTransport) SendCancel(ctx context.Context, id *jsonrpc.RequestID) error {
	t.mu.Lock()
	t.cancels = append(t.cancels, id)
	t.mu.Unlock()
	t.sent <- struct{}{}
	return nil
}

func (t *recordingTransport) waitSent(tb testing.TB, n int) {
	tb.Helper()
	for i := 0; i < n; i++ {
		select {
		case <-t.sent:
		case <-time.After(time.Second):
			tb.Fatalf("timeout waiting for outbound message %d", i+1)
		}
	}
}

func (t *recordingTransport) request(i int) *jsonrpc.Request {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.requests[i]
}

func TestDispatcher_RequestResponse_OutOfOrder(t *testing.T) {
	t.Parallel()

	tr := newRecordingTransport()
	d := New(tr)
	ctx := context.Background()

	type result struct {
		method string
		resp   *jsonrpc.Response
	}
	results := make(chan result, 2)
	for _, m := range []string{"window/showMessageRequest", "workspace/configuration"} {
		go func() {
			resp, err := d.Call(ctx, m, nil)
			if err != nil {
				t.Errorf("call %s: %v", m, err)
				return
			}
			results <- result{method: m, resp: resp}
		}()
	}
	tr.waitSent(t, 2)

	if got := d.Pending(); got != 2 {
		t.Fatalf("expected 2 pending calls, got %d", got)
	}

	// Reply in reverse order.
	for _, i := range []int{1, 0} {
		req := tr.request(i)
		resp, _ := jsonrpc.NewResultResponse(req.ID, req.Method)
		if !d.OnResponse(resp) {
			t.Fatalf("response for %s not matched", req.Method)
		}
	}

	for i := 0; i < 2; i++ {
		r := <-results
		if string(r.resp.Result) != `"`+r.method+`"` {
			t.Fatalf("call %s got result %s", r.method, r.resp.Result)
		}
	}
	if got := d.Pending(); got != 0 {
		t.Fatalf("expected no pending calls, got %d", got)
	}
}

func TestDispatcher_IDsAreNumeric(t *testing.T) {
	t.Parallel()

	tr := newRecordingTransport()
	d := New(tr)
	go func() { _, _ = d.Call(context.Background(), "m", nil) }()
	tr.waitSent(t, 1)

	id := tr.request(0).ID
	if id.IsString() {
		t.Fatalf("expected numeric id, got %s", id.Key())
	}

	// A string id with the same text must not match.
	resp, _ := jsonrpc.NewResultResponse(jsonrpc.NewRequestID(id.String()), nil)
	if d.OnResponse(resp) {
		t.Fatalf("string id matched numeric request")
	}
	d.Close(nil)
}

func TestDispatcher_CancelContext_SendsCancelRequest(t *testing.T) {
	t.Parallel()

	tr := newRecordingTransport()
	d := New(tr)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := d.Call(ctx, "window/showMessageRequest", nil)
		done <- err
	}()
	tr.waitSent(t, 1)

	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	tr.waitSent(t, 1)

	tr.mu.Lock()
	defer tr.mu.Unlock()
	if len(tr.cancels) != 1 || !tr.cancels[0].Equal(tr.requests[0].ID) {
		t.Fatalf("expected $/cancelRequest for %s, got %v", tr.requests[0].ID, tr.cancels)
	}

	// A late response is ignored.
	resp, _ := jsonrpc.NewResultResponse(tr.requests[0].ID, nil)
	if d.OnResponse(resp) {
		t.Fatalf("late response matched a cancelled call")
	}
}

func TestDispatcher_CloseFailsPending(t *testing.T) {
	t.Parallel()

	tr := newRecordingTransport()
	d := New(tr)
	closeErr := errors.New("connection lost")

	done := make(chan error, 1)
	go func() {
		_, err := d.Call(context.Background(), "m", nil)
		done <- err
	}()
	tr.waitSent(t, 1)

	d.Close(closeErr)
	if err := <-done; !errors.Is(err, closeErr) {
		t.Fatalf("expected %v, got %v", closeErr, err)
	}
	if _, err := d.Call(context.Background(), "m", nil); !errors.Is(err, closeErr) {
		t.Fatalf("expected %v after close, got %v", closeErr, err)
	}
	d.Close(nil)
}

func TestDispatcher_SendFailure(t *testing.T) {
	t.Parallel()

	tr := newRecordingTransport()
	tr.failSend = errors.New("broken pipe")
	d := New(tr)

	if _, err := d.Call(context.Background(), "m", nil); !errors.Is(err, tr.failSend) {
		t.Fatalf("expected send error, got %v", err)
	}
	if got := d.Pending(); got != 0 {
		t.Fatalf("expected no pending calls after send failure, got %d", got)
	}
}
