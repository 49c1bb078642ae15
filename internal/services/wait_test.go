package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"previsbine/internal/services"
)

func TestWaitForFileReturnsWhenProbeSucceeds(t *testing.T) {
	calls := 0
	err := services.WaitForFile(context.Background(), func() bool {
		calls++
		return calls >= 3
	}, time.Millisecond, time.Second)
	if err != nil {
		t.Fatalf("WaitForFile returned error: %v", err)
	}
	if calls != 3 {
		t.Fatalf("expected 3 probes, got %d", calls)
	}
}

func TestWaitForFileTimesOut(t *testing.T) {
	err := services.WaitForFile(context.Background(), func() bool { return false }, time.Millisecond, 30*time.Millisecond)
	if !errors.Is(err, services.ErrTimeout) {
		t.Fatalf("expected timeout, got %v", err)
	}
}

func TestWaitForFileHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := services.WaitForFile(ctx, func() bool { return false }, time.Millisecond, 0)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestSleepZeroDuration(t *testing.T) {
	if err := services.Sleep(context.Background(), 0); err != nil {
		t.Fatalf("Sleep(0) returned %v", err)
	}
}
