package benchmark

import (
	"errors"
	"testing"

	"go.uber.org/zap"
)

func TestRunPassesThroughError(t *testing.T) {
	want := errors.New("boom")
	called := false

	usage, err := Run("failing", zap.NewNop(), func() error {
		called = true
		return want
	})
	if !called {
		t.Fatal("wrapped function was not called")
	}
	if !errors.Is(err, want) {
		t.Errorf("Run() error = %v, want %v", err, want)
	}
	if usage.Elapsed < 0 {
		t.Errorf("Elapsed = %v, want >= 0", usage.Elapsed)
	}
}

func TestRunSuccess(t *testing.T) {
	usage, err := Run("ok", zap.NewNop(), func() error {
		buf := make([]byte, 1<<20)
		_ = buf
		return nil
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if usage.GoroutinesFrom <= 0 {
		t.Errorf("GoroutinesFrom = %d, want > 0", usage.GoroutinesFrom)
	}
}
