package kernel_test

import (
	"strconv"
	"strings"
	"testing"

	"rvkernel/hal"
	"rvkernel/kernel"
)

// logCapture wraps HostHAL and redirects kernel log output into a buffer
// tests can inspect, instead of os.Stdout.
type logCapture struct {
	*hal.HostHAL
	logged strings.Builder
}

func newLogCapture() *logCapture {
	return &logCapture{HostHAL: hal.NewHostHAL()}
}

func (l *logCapture) Logger() hal.Logger { return l }
func (l *logCapture) WriteLineString(s string) {
	l.logged.WriteString(s)
	l.logged.WriteString("\n")
}
func (l *logCapture) WriteLineBytes(b []byte) {
	l.logged.Write(b)
	l.logged.WriteString("\n")
}

func itoa(n int64) string { return strconv.FormatInt(n, 10) }

func TestAllocAssignsIncreasingPIDs(t *testing.T) {
	k, _, _ := newTestKernel()
	a := k.Alloc()
	b := k.Alloc()
	if a == b {
		t.Fatalf("expected distinct pids, got %d and %d", a, b)
	}
	if b <= a {
		t.Fatalf("expected monotonically increasing pids, got %d then %d", a, b)
	}
}

func TestAllocFatalWhenTableFull(t *testing.T) {
	k, _, _ := newTestKernel()
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic when process table capacity is exhausted")
		}
	}()
	for i := 0; i < kernel.CAP+1; i++ {
		k.Alloc()
	}
}

func TestFreeClearsSlot(t *testing.T) {
	k, _, clk := newTestKernel()
	pid := k.Alloc()
	k.SetReady(pid)

	clk.advance(5_000_000) // 5s before termination

	k.Free(pid)

	if _, ok := k.Snapshot(pid); ok {
		t.Fatal("expected freed pid to no longer be present in the table")
	}
}

func TestFreeWritesSevenLineBlock(t *testing.T) {
	h := newLogCapture()
	k := kernel.New(h)
	pid := k.Alloc()
	k.SetReady(pid)
	k.Free(pid)

	out := h.logged.String()
	for _, want := range []string{
		"Process " + itoa(pid) + " terminated:",
		"Turnaround time:",
		"Response time:",
		"Total CPU time:",
		"Waiting time:",
		"Timer interrupts:",
		"Final queue level:",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected termination output to contain %q, got:\n%s", want, out)
		}
	}
}
