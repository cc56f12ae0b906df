package audioin

import (
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/cwbudde/algo-rig/internal/testutil"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestOpenRejectsBadArguments(t *testing.T) {
	if _, err := Open(0, DefaultSampleRate); err == nil {
		t.Fatal("Open() with zero channels, want error")
	}
	if _, err := Open(1, 0); err == nil {
		t.Fatal("Open() with zero sample rate, want error")
	}
	if _, err := Open(1, -44100); err == nil {
		t.Fatal("Open() with negative sample rate, want error")
	}
}

func TestOpenRejectsNilLogger(t *testing.T) {
	_, err := Open(1, DefaultSampleRate, WithLogger(nil))
	if err == nil {
		t.Fatal("Open() with nil logger, want error")
	}
	if !strings.Contains(err.Error(), "logger") {
		t.Fatalf("Open() error = %v, want mention of logger", err)
	}
}

func TestPushDeinterleavesChannels(t *testing.T) {
	s := &Stream{
		logger:   quietLogger(),
		channels: 2,
		rings:    []*ring{newRing(16), newRing(16)},
		scratch:  make([]float64, 4),
	}

	s.push([]float32{0.1, 0.9, 0.2, 0.8, 0.3, 0.7})

	left := make([]float64, 8)
	n := s.Snapshot(0, left)
	if n != 3 {
		t.Fatalf("Snapshot(0) = %d samples, want 3", n)
	}
	testutil.RequireSliceNearlyEqual(t, left[:n], []float64{0.1, 0.2, 0.3}, 1e-6)

	right := make([]float64, 8)
	n = s.Snapshot(1, right)
	if n != 3 {
		t.Fatalf("Snapshot(1) = %d samples, want 3", n)
	}
	testutil.RequireSliceNearlyEqual(t, right[:n], []float64{0.9, 0.8, 0.7}, 1e-6)
}

func TestPushGrowsScratch(t *testing.T) {
	s := &Stream{
		logger:   quietLogger(),
		channels: 1,
		rings:    []*ring{newRing(16)},
		scratch:  make([]float64, 1),
	}

	s.push([]float32{1, 2, 3, 4, 5})

	dst := make([]float64, 5)
	if n := s.Snapshot(0, dst); n != 5 {
		t.Fatalf("Snapshot() = %d samples, want 5", n)
	}
	testutil.RequireSliceNearlyEqual(t, dst, []float64{1, 2, 3, 4, 5}, 0)
}

func TestSnapshotUnknownChannel(t *testing.T) {
	s := &Stream{
		logger:   quietLogger(),
		channels: 1,
		rings:    []*ring{newRing(16)},
		scratch:  make([]float64, 4),
	}
	s.push([]float32{0.5})

	dst := make([]float64, 4)
	if n := s.Snapshot(1, dst); n != 0 {
		t.Fatalf("Snapshot(1) = %d, want 0", n)
	}
	if n := s.Snapshot(-1, dst); n != 0 {
		t.Fatalf("Snapshot(-1) = %d, want 0", n)
	}
}

func TestCloseInactiveIsSafe(t *testing.T) {
	s := &Stream{logger: quietLogger(), channels: 1}
	s.Close()
	s.Close()

	if s.Active() {
		t.Fatal("Active() = true after Close")
	}
}
