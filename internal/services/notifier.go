package services

import (
	"context"
	"sync"
	"time"

	"finboard/internal/amqp"
	"finboard/internal/ledger"
	"finboard/internal/log"
)

// ChangePublisher sends ledger change events somewhere. *amqp.Client
// implements it.
type ChangePublisher interface {
	PublishLedgerChange(ctx context.Context, msg *amqp.LedgerChangeMessage) error
}

const notifierQueueSize = 256

// ChangeNotifier forwards ledger changes to a ChangePublisher in the
// background. A slow or unavailable broker never delays or fails a
// mutation: changes that do not fit in the queue are dropped and logged.
type ChangeNotifier struct {
	publisher ChangePublisher
	logger    *log.Logger
	queue     chan ledger.Change

	mu     sync.Mutex
	cancel func()
}

// NewChangeNotifier returns a notifier. A nil publisher disables publishing
// while keeping the notifier usable.
func NewChangeNotifier(publisher ChangePublisher, logger *log.Logger) *ChangeNotifier {
	if logger == nil {
		logger = log.Nop()
	}
	return &ChangeNotifier{
		publisher: publisher,
		logger:    logger.WithComponent(log.ComponentAMQP),
		queue:     make(chan ledger.Change, notifierQueueSize),
	}
}

// Attach subscribes the notifier to l. Reloads are not forwarded: they are
// the consumer side of an event, not a new change.
func (n *ChangeNotifier) Attach(l *ledger.Ledger) {
	cancel := l.Subscribe(n.enqueue)
	n.mu.Lock()
	n.cancel = cancel
	n.mu.Unlock()
}

// Detach stops receiving changes from the attached ledger.
func (n *ChangeNotifier) Detach() {
	n.mu.Lock()
	cancel := n.cancel
	n.cancel = nil
	n.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

func (n *ChangeNotifier) enqueue(c ledger.Change) {
	if n.publisher == nil || c.Op == ledger.OpReload {
		return
	}
	select {
	case n.queue <- c:
	default:
		n.logger.Warn("Change queue full, dropping event",
			log.FieldRecordKind, string(c.Kind),
			log.FieldRecordID, c.ID,
			log.FieldRevision, c.Revision)
	}
}

// Run publishes queued changes until ctx is done, then drains what is
// already queued with a short deadline.
func (n *ChangeNotifier) Run(ctx context.Context) error {
	for {
		select {
		case c := <-n.queue:
			n.publish(ctx, c)
		case <-ctx.Done():
			n.drain()
			return nil
		}
	}
}

func (n *ChangeNotifier) drain() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for {
		select {
		case c := <-n.queue:
			n.publish(ctx, c)
		default:
			return
		}
	}
}

func (n *ChangeNotifier) publish(ctx context.Context, c ledger.Change) {
	msg := amqp.NewLedgerChangeMessage(string(c.Kind), string(c.Op), c.ID, c.Revision, c.At)
	if err := n.publisher.PublishLedgerChange(ctx, msg); err != nil {
		n.logger.ErrorContext(ctx, "Failed to publish ledger change",
			log.NewFields().
				WithOperation(log.OpPublish).
				WithErrorType(log.ErrorTypeNetwork).
				WithRecord(string(c.Kind), c.ID).
				WithError(err).
				ToSlice()...,
		)
	}
}
