package notify

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSender struct {
	mu      sync.Mutex
	sent    []string
	release chan struct{}
	err     error
}

func (s *recordingSender) Send(ctx context.Context, to, subject, body string) error {
	if s.release != nil {
		<-s.release
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, to+"|"+subject)
	return s.err
}

func (s *recordingSender) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sent)
}

type stubRenderer struct{}

func (stubRenderer) Render(templateID string, data map[string]any) (string, string, error) {
	if templateID == "broken" {
		return "", "", errors.New("no such template")
	}
	return templateID, "<p>hi</p>", nil
}

func TestDispatcherDeliversAndDrainsOnClose(t *testing.T) {
	sender := &recordingSender{}
	d := NewDispatcher(sender, stubRenderer{}, 2, 16)

	for i := 0; i < 5; i++ {
		d.Notify(context.Background(), "application_received", "seeker@example.com", map[string]any{"JobTitle": "Go"})
	}
	d.Notify(context.Background(), "broken", "seeker@example.com", nil)
	d.Notify(context.Background(), "application_received", "", nil)

	require.NoError(t, d.Close(context.Background()))
	assert.Equal(t, 5, sender.count())

	// after close, Notify is a logged no-op
	d.Notify(context.Background(), "application_received", "late@example.com", nil)
	assert.Equal(t, 5, sender.count())
}

func TestDispatcherNeverBlocksWhenFull(t *testing.T) {
	sender := &recordingSender{release: make(chan struct{})}
	d := NewDispatcher(sender, stubRenderer{}, 1, 1)

	done := make(chan struct{})
	go func() {
		for i := 0; i < 50; i++ {
			d.Notify(context.Background(), "new_application", "owner@example.com", nil)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Notify blocked on a full queue")
	}

	close(sender.release)
	require.NoError(t, d.Close(context.Background()))
	assert.LessOrEqual(t, sender.count(), 2)
	assert.GreaterOrEqual(t, sender.count(), 1)
}

func TestDispatcherDeliveryFailureIsSwallowed(t *testing.T) {
	sender := &recordingSender{err: errors.New("smtp down")}
	d := NewDispatcher(sender, stubRenderer{}, 1, 4)
	d.Notify(context.Background(), "job_approved", "owner@example.com", nil)
	require.NoError(t, d.Close(context.Background()))
	assert.Equal(t, 1, sender.count())
}
