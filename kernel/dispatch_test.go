package kernel_test

import (
	"testing"

	"rvkernel/kernel"
)

// TestFirstScheduleLoadsEntryAndArgs verifies a process still in the
// Ready state, about to run for the very first time, gets its argc/argv
// registers and entry point preloaded instead of a previously saved
// context restored.
func TestFirstScheduleLoadsEntryAndArgs(t *testing.T) {
	k, _, _ := newTestKernel()
	pid := k.Alloc()
	k.SetReady(pid)

	regs, pc, priv := k.Trap(0, kernel.Cause{Interrupt: true, Code: kernel.CauseTimer}, kernel.RegFile{}, 0xdead)

	if pc != kernel.AppsEntry {
		t.Fatalf("expected entry pc %#x, got %#x", kernel.AppsEntry, pc)
	}
	if regs[0] != kernel.AppsArg || regs[1] != kernel.AppsArg+4 {
		t.Fatalf("expected argc/argv preloaded at AppsArg, got regs[0]=%#x regs[1]=%#x", regs[0], regs[1])
	}
	if pid >= kernel.UserStart && priv != kernel.PrivUser {
		t.Fatalf("expected user process to return in user privilege, got %v", priv)
	}
}

// TestEcallAdvancesPastSyscallInstruction verifies an ecall exception
// advances saved_pc past the (fixed-width) ecall instruction before the
// syscall is dispatched. A Yield syscall is used
// because it completes immediately and reselects the same (now sole)
// process, so its advanced pc survives to be the Trap return value.
func TestEcallAdvancesPastSyscallInstruction(t *testing.T) {
	k, h, _ := newTestKernel()
	pid := installRunning(t, k)

	paddr, err := h.MMUTranslate(pid, kernel.SyscallArg)
	if err != nil {
		t.Fatalf("unexpected MMU translate error: %v", err)
	}
	h.WritePhys(paddr, kernel.EncodeSyscall(kernel.Syscall{Type: kernel.SysYield}))

	const entryPC = 0x1000
	_, pc, _ := k.Trap(0, kernel.Cause{Interrupt: false, Code: kernel.CauseEcallUser}, kernel.RegFile{}, entryPC)

	if want := uint64(entryPC) + 4; pc != want {
		t.Fatalf("expected saved pc advanced past the ecall to %#x, got %#x", want, pc)
	}
}

// TestYieldSyscallReturnsProcessToRunnable exercises the Yield syscall
// path: it completes immediately at ecall entry rather than going through
// the Send/Recv retry machinery.
func TestYieldSyscallReturnsProcessToRunnable(t *testing.T) {
	k, _, _ := newTestKernel()
	pid := installRunning(t, k)
	other := k.Alloc()
	k.SetReady(other)

	k.IssueSyscall(pid, kernel.Syscall{Type: kernel.SysYield})

	snap, _ := k.Snapshot(pid)
	if snap.Status != kernel.Runnable {
		t.Fatalf("expected yielding process to be runnable, got %v", snap.Status)
	}

	otherSnap, _ := k.Snapshot(other)
	if otherSnap.Status != kernel.Running {
		t.Fatalf("expected the other ready process to take the core after yield, got %v", otherSnap.Status)
	}
}

// TestUserExceptionKillsProcess verifies a non-ecall exception from a
// user-mode process kills it; the process is freed from the table rather
// than being left pending.
func TestUserExceptionKillsProcess(t *testing.T) {
	k, _, _ := newTestKernel()
	for k.Alloc() < kernel.UserStart {
		// Consume kernel-reserved pids so the next allocation is a user pid.
	}
	pid := installRunning(t, k)
	if pid < kernel.UserStart {
		t.Fatalf("expected a user pid (>= %d), got %d", kernel.UserStart, pid)
	}

	const illegalInstruction = 2
	k.Trap(0, kernel.Cause{Interrupt: false, Code: illegalInstruction}, kernel.RegFile{}, 0x1000)

	if _, ok := k.Snapshot(pid); ok {
		t.Fatal("expected process to be freed from the table after a fatal user exception")
	}
}

// TestNonUserExceptionPanics verifies an exception from a kernel-mode
// process (pid below UserStart) is a kernel bug, not a recoverable fault.
func TestNonUserExceptionPanics(t *testing.T) {
	k, _, _ := newTestKernel()
	pid := installRunning(t, k)
	if pid >= kernel.UserStart {
		t.Skip("allocator handed out a user pid; nothing kernel-mode to exercise")
	}

	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on exception from a kernel-mode process")
		}
	}()
	const illegalInstruction = 2
	k.Trap(0, kernel.Cause{Interrupt: false, Code: illegalInstruction}, kernel.RegFile{}, 0x1000)
}

// TestIdleCoreWaitsForInterruptWhenNothingRunnable exercises the idle
// path: with no Ready or Runnable process anywhere, yield parks the core
// on hal.WaitForInterrupt instead of panicking or busy-looping.
func TestIdleCoreWaitsForInterruptWhenNothingRunnable(t *testing.T) {
	k, _, _ := newTestKernel()

	k.Trap(0, kernel.Cause{Interrupt: true, Code: kernel.CauseTimer}, kernel.RegFile{}, 0)

	if n := k.FallbackScans(); n != 0 {
		t.Fatalf("expected no fallback scans to have fired, got %d", n)
	}
}

// TestNonTimerInterruptPanics verifies the only interrupt cause this
// kernel models is the timer; anything else is a kernel bug.
func TestNonTimerInterruptPanics(t *testing.T) {
	k, _, _ := newTestKernel()
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on a non-timer interrupt cause")
		}
	}()
	const bogusInterruptCode = 99
	k.Trap(0, kernel.Cause{Interrupt: true, Code: bogusInterruptCode}, kernel.RegFile{}, 0)
}
