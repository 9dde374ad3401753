package startStop_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/zhangjinde/cerver/runner/startStop"
)

func TestStartStopLifecycle(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	started := make(chan struct{}, 1)
	r := startStop.New(
		func(c context.Context) error {
			started <- struct{}{}
			<-c.Done()
			return nil
		},
		func(c context.Context) error { return nil },
	)

	if err := r.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}

	select {
	case <-started:
	case <-time.After(time.Second):
		t.Fatal("start function never ran")
	}

	if !r.IsRunning() {
		t.Fatal("expected IsRunning() to be true")
	}
	if r.Uptime() <= 0 {
		t.Fatal("expected positive uptime while running")
	}

	if err := r.Stop(ctx); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if r.IsRunning() {
		t.Fatal("expected IsRunning() to be false after Stop")
	}
	if r.Uptime() != 0 {
		t.Fatal("expected zero uptime after Stop")
	}
}

func TestStopWhenNotRunningIsNoop(t *testing.T) {
	r := startStop.New(
		func(c context.Context) error { <-c.Done(); return nil },
		func(c context.Context) error { return nil },
	)

	if err := r.Stop(context.Background()); err != nil {
		t.Fatalf("Stop on idle runner returned error: %v", err)
	}
}

func TestNilStartFunctionRecordsError(t *testing.T) {
	r := startStop.New(nil, nil)

	if err := r.Start(context.Background()); err == nil {
		t.Fatal("expected error starting with nil start function")
	}

	if r.ErrorsLast() == nil {
		t.Fatal("expected ErrorsLast() to report the nil-function error")
	}
}

func TestErrorFromStartFunctionIsRecorded(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	want := errors.New("boom")
	r := startStop.New(
		func(c context.Context) error { return want },
		func(c context.Context) error { return nil },
	)

	if err := r.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}

	deadline := time.After(time.Second)
	for r.ErrorsLast() == nil {
		select {
		case <-deadline:
			t.Fatal("start error was never recorded")
		case <-time.After(5 * time.Millisecond):
		}
	}

	if r.ErrorsLast().Error() != want.Error() {
		t.Fatalf("ErrorsLast() = %v, want %v", r.ErrorsLast(), want)
	}
	if len(r.ErrorsList()) != 1 {
		t.Fatalf("ErrorsList() length = %d, want 1", len(r.ErrorsList()))
	}
}

func TestRestart(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	r := startStop.New(
		func(c context.Context) error { <-c.Done(); return nil },
		func(c context.Context) error { return nil },
	)

	if err := r.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	time.Sleep(10 * time.Millisecond)

	if err := r.Restart(ctx); err != nil {
		t.Fatalf("Restart: %v", err)
	}
	if !r.IsRunning() {
		t.Fatal("expected runner to be running after Restart")
	}
}
