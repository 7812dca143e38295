package remote

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// mirrorTimeout bounds each mirror attempt independently of the client's
// own request timeout.
const mirrorTimeout = 30 * time.Second

// Task is one switch to replay against the remote account: push the key
// (when one was supplied) and issue the switch command.
type Task struct {
	ProviderCode string
	APIKey       string
}

// Mirror replays switch events to the remote account service on a
// background worker. Local state stays authoritative: enqueueing never
// blocks the switch path, and worker failures are logged, not surfaced.
type Mirror struct {
	client *Client
	tasks  chan Task
	done   chan struct{}
	logW   io.Writer
	once   sync.Once
}

// NewMirror creates a Mirror and starts its worker.
func NewMirror(client *Client) *Mirror {
	m := &Mirror{
		client: client,
		tasks:  make(chan Task, 16),
		done:   make(chan struct{}),
		logW:   os.Stderr,
	}
	go m.run()
	return m
}

// Enqueue hands a task to the worker. When the queue is full the task is
// dropped and reported as such; the local switch already succeeded.
func (m *Mirror) Enqueue(t Task) bool {
	select {
	case m.tasks <- t:
		return true
	default:
		fmt.Fprintf(m.logW, "warning: remote mirror queue full, dropping switch to %s\n", t.ProviderCode)
		return false
	}
}

// Close stops accepting tasks and waits for the worker to drain.
func (m *Mirror) Close() {
	m.once.Do(func() {
		close(m.tasks)
	})
	<-m.done
}

func (m *Mirror) run() {
	defer close(m.done)
	for t := range m.tasks {
		m.mirror(t)
	}
}

func (m *Mirror) mirror(t Task) {
	ctx, cancel := context.WithTimeout(context.Background(), mirrorTimeout)
	defer cancel()

	if t.APIKey != "" {
		if _, err := m.client.SetAPIKey(ctx, t.ProviderCode, t.APIKey); err != nil {
			fmt.Fprintf(m.logW, "warning: failed to mirror API key for %s: %v\n", t.ProviderCode, err)
			// The switch command would fail against a keyless provider.
			return
		}
	}
	if _, err := m.client.Switch(ctx, t.ProviderCode); err != nil {
		fmt.Fprintf(m.logW, "warning: failed to mirror switch to %s: %v\n", t.ProviderCode, err)
	}
}
