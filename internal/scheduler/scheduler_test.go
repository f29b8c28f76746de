package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/octobees/contact-finder/internal/dto"
	"github.com/octobees/contact-finder/internal/service"
)

type fakeRunner struct {
	mu    sync.Mutex
	paths []string
	err   error
	ran   chan struct{}
}

func (f *fakeRunner) RunFromFile(ctx context.Context, path string) (dto.IngestSummary, error) {
	f.mu.Lock()
	f.paths = append(f.paths, path)
	f.mu.Unlock()
	if f.ran != nil {
		f.ran <- struct{}{}
	}
	return dto.IngestSummary{Total: 3, Stored: 2, Skipped: 1}, f.err
}

func TestNew_RejectsBadSpec(t *testing.T) {
	_, err := New(&fakeRunner{}, Config{Spec: "every tuesday"}, nil)
	assert.Error(t, err)

	s, err := New(&fakeRunner{}, Config{}, nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultSpec, s.cfg.Spec)
}

func TestStart_RunsOnStartAndRegistersJob(t *testing.T) {
	runner := &fakeRunner{ran: make(chan struct{}, 1)}
	s, err := New(runner, Config{SourcesPath: "assets/sources.csv", RunOnStart: true}, nil)
	require.NoError(t, err)

	require.NoError(t, s.Start(context.Background()))
	select {
	case <-runner.ran:
	case <-time.After(time.Second):
		t.Fatal("expected an immediate pass")
	}
	s.Stop()

	assert.Equal(t, []string{"assets/sources.csv"}, runner.paths)
	require.Len(t, s.cron.Entries(), 1)
}

func TestStart_NoRunOnStart(t *testing.T) {
	runner := &fakeRunner{}
	s, err := New(runner, Config{}, nil)
	require.NoError(t, err)

	require.NoError(t, s.Start(context.Background()))
	s.Stop()
	assert.Empty(t, runner.paths)
}

func TestTrigger_Logging(t *testing.T) {
	tests := map[string]struct {
		err     error
		message string
		level   zapcore.Level
	}{
		"completed":   {message: "ingest pass completed", level: zapcore.InfoLevel},
		"overlap":     {err: service.ErrPassInProgress, message: "ingest trigger skipped, pass already running", level: zapcore.InfoLevel},
		"interrupted": {err: context.Canceled, message: "ingest pass interrupted", level: zapcore.InfoLevel},
		"failed":      {err: errors.New("open sources: no such file"), message: "ingest pass failed", level: zapcore.ErrorLevel},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			core, logs := observer.New(zapcore.DebugLevel)
			s, err := New(&fakeRunner{err: tc.err}, Config{}, zap.New(core))
			require.NoError(t, err)

			s.trigger(context.Background())

			entries := logs.FilterMessage(tc.message).All()
			require.Len(t, entries, 1)
			assert.Equal(t, tc.level, entries[0].Level)
		})
	}
}
