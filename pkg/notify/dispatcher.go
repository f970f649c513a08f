// Package notify delivers best-effort notifications off the request path.
package notify

import (
	"context"
	"maps"
	"sync"
	"time"

	"go-jobboard-backend/pkg/email"
	"go-jobboard-backend/pkg/logger"
)

const deliveryTimeout = 30 * time.Second

type Renderer interface {
	Render(templateID string, data map[string]any) (subject, body string, err error)
}

type message struct {
	templateID string
	recipient  string
	data       map[string]any
}

// Dispatcher queues notifications on a bounded channel drained by a fixed
// set of workers. Notify never blocks; when the queue is full the
// notification is dropped and logged.
type Dispatcher struct {
	sender   email.Sender
	renderer Renderer
	queue    chan message

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

func NewDispatcher(sender email.Sender, renderer Renderer, workers, queueSize int) *Dispatcher {
	if workers < 1 {
		workers = 1
	}
	if queueSize < 1 {
		queueSize = 1
	}
	d := &Dispatcher{
		sender:   sender,
		renderer: renderer,
		queue:    make(chan message, queueSize),
	}
	d.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go d.work()
	}
	return d
}

// Notify enqueues one message. ctx is the request context and is not used for
// delivery: the request usually finishes long before the mail is sent.
func (d *Dispatcher) Notify(ctx context.Context, templateID, recipient string, data map[string]any) {
	if recipient == "" {
		return
	}
	// The read lock pairs with Close: a send can never race the close of
	// the queue channel, which would panic
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		logger.Log.Warn("notification dropped, dispatcher closed", "template", templateID)
		return
	}
	// data is cloned because callers reuse the map for the next recipient
	select {
	case d.queue <- message{templateID: templateID, recipient: recipient, data: maps.Clone(data)}:
	default:
		logger.Log.Warn("notification dropped, queue full", "template", templateID, "recipient", recipient)
	}
}

// Close stops accepting notifications and waits for queued ones to be
// delivered or for ctx to expire.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Dispatcher) work() {
	defer d.wg.Done()
	for msg := range d.queue {
		d.deliver(msg)
	}
}

func (d *Dispatcher) deliver(msg message) {
	defer func() {
		if r := recover(); r != nil {
			logger.Log.Error("notification delivery panicked", "template", msg.templateID, "panic", r)
		}
	}()

	subject, body, err := d.renderer.Render(msg.templateID, msg.data)
	if err != nil {
		logger.Log.Warn("notification render failed", "template", msg.templateID, "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), deliveryTimeout)
	defer cancel()
	if err := d.sender.Send(ctx, msg.recipient, subject, body); err != nil {
		logger.Log.Warn("notification delivery failed", "template", msg.templateID, "recipient", msg.recipient, "error", err)
		return
	}
	logger.Log.Debug("notification delivered", "template", msg.templateID, "recipient", msg.recipient)
}
