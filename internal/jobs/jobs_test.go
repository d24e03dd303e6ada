package jobs

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkraev/diffsentry/internal/core"
)

type recordingJob struct {
	mu     sync.Mutex
	events []*core.ReviewEvent
	done   chan struct{}
}

func (r *recordingJob) Run(_ context.Context, event *core.ReviewEvent) error {
	r.mu.Lock()
	r.events = append(r.events, event)
	r.mu.Unlock()
	if r.done != nil {
		r.done <- struct{}{}
	}
	return nil
}

func validEvent() *core.ReviewEvent {
	return &core.ReviewEvent{
		RepoOwner:      "acme",
		RepoName:       "rocket",
		RepoFullName:   "acme/rocket",
		PRNumber:       7,
		Commenter:      "octocat",
		InstallationID: 1234,
	}
}

func TestDispatcher_ProcessesQueuedEvents(t *testing.T) {
	job := &recordingJob{done: make(chan struct{}, 1)}
	d := NewDispatcher(job, 2, slog.Default())
	defer d.Stop()

	require.NoError(t, d.Dispatch(context.Background(), validEvent()))

	select {
	case <-job.done:
	case <-time.After(2 * time.Second):
		t.Fatal("dispatched event was never processed")
	}

	job.mu.Lock()
	defer job.mu.Unlock()
	require.Len(t, job.events, 1)
	assert.Equal(t, "acme/rocket", job.events[0].RepoFullName)
}

func TestDispatcher_StopWaitsForWorkers(t *testing.T) {
	job := &recordingJob{}
	d := NewDispatcher(job, 1, slog.Default())

	for range 5 {
		require.NoError(t, d.Dispatch(context.Background(), validEvent()))
	}
	d.Stop()

	job.mu.Lock()
	defer job.mu.Unlock()
	assert.Len(t, job.events, 5, "Stop must drain the queue before returning")
}

func TestValidateEvent(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(e *core.ReviewEvent)
		nilEv   bool
		wantErr string
	}{
		{name: "valid", mutate: func(*core.ReviewEvent) {}},
		{name: "nil event", nilEv: true, wantErr: "cannot be nil"},
		{name: "missing owner", mutate: func(e *core.ReviewEvent) { e.RepoOwner = "" }, wantErr: "owner"},
		{name: "missing repo", mutate: func(e *core.ReviewEvent) { e.RepoName = "" }, wantErr: "name"},
		{name: "bad PR number", mutate: func(e *core.ReviewEvent) { e.PRNumber = 0 }, wantErr: "positive"},
		{name: "missing installation", mutate: func(e *core.ReviewEvent) { e.InstallationID = 0 }, wantErr: "installation"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var event *core.ReviewEvent
			if !tt.nilEv {
				event = validEvent()
				tt.mutate(event)
			}

			err := validateEvent(event)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
