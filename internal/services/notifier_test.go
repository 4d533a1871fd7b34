package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"finboard/internal/amqp"
	"finboard/internal/core"
)

type recordingPublisher struct {
	mu   sync.Mutex
	msgs []*amqp.LedgerChangeMessage
	err  error
	seen chan struct{}
}

func newRecordingPublisher() *recordingPublisher {
	return &recordingPublisher{seen: make(chan struct{}, 64)}
}

func (p *recordingPublisher) PublishLedgerChange(_ context.Context, msg *amqp.LedgerChangeMessage) error {
	p.mu.Lock()
	p.msgs = append(p.msgs, msg)
	p.mu.Unlock()
	p.seen <- struct{}{}
	return p.err
}

func (p *recordingPublisher) wait(t *testing.T, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		select {
		case <-p.seen:
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for message %d", i+1)
		}
	}
}

func TestChangeNotifierPublishesMutations(t *testing.T) {
	l := newLedger(t)
	pub := newRecordingPublisher()
	n := NewChangeNotifier(pub, nil)
	n.Attach(l)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		n.Run(ctx)
		close(done)
	}()

	tx := mustAdd(t, l, core.Expense, "10", "2025-03-02", "Food")
	if err := l.Reload(context.Background()); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if err := l.DeleteTransaction(context.Background(), tx.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	pub.wait(t, 2)
	cancel()
	<-done

	pub.mu.Lock()
	defer pub.mu.Unlock()
	if len(pub.msgs) != 2 {
		t.Fatalf("expected 2 messages (reload is not forwarded), got %d", len(pub.msgs))
	}
	if pub.msgs[0].Op != "create" || pub.msgs[0].ID != tx.ID || pub.msgs[0].Revision != 1 {
		t.Fatalf("unexpected first message %+v", pub.msgs[0])
	}
	if pub.msgs[1].Op != "delete" || pub.msgs[1].Kind != "transaction" || pub.msgs[1].Revision != 3 {
		t.Fatalf("unexpected second message %+v", pub.msgs[1])
	}
}

func TestChangeNotifierPublishFailureDoesNotFailMutation(t *testing.T) {
	l := newLedger(t)
	pub := newRecordingPublisher()
	pub.err = errors.New("broker down")
	n := NewChangeNotifier(pub, nil)
	n.Attach(l)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go n.Run(ctx)

	if _, err := l.AddBudget(context.Background(), core.BudgetForm{Category: "Food", Amount: "10", Month: "2025-03"}); err != nil {
		t.Fatalf("mutation failed: %v", err)
	}
	pub.wait(t, 1)
}

func TestChangeNotifierDetachAndNilPublisher(t *testing.T) {
	l := newLedger(t)
	disabled := NewChangeNotifier(nil, nil)
	disabled.Attach(l)
	mustAdd(t, l, core.Expense, "1", "2025-03-02", "Food")
	if len(disabled.queue) != 0 {
		t.Fatal("nil publisher must not queue events")
	}

	pub := newRecordingPublisher()
	n := NewChangeNotifier(pub, nil)
	n.Attach(l)
	n.Detach()
	n.Detach()
	mustAdd(t, l, core.Expense, "1", "2025-03-02", "Food")
	if len(n.queue) != 0 {
		t.Fatal("detached notifier must not queue events")
	}
}
