package kernel

import "fmt"

// Cause codes, ported from the original grass kernel's mcause encoding
// (kernel.c): bit 31 set means interrupt, clear means exception; the low
// bits are the cause code.
const (
	CauseTimer        = 7
	CauseEcallUser    = 8
	CauseEcallMachine = 11
)

// Cause describes a decoded trap cause.
type Cause struct {
	Interrupt bool
	Code      uint64
}

// Trap is the architectural trap vector's entry point. It takes the kernel
// lock itself, standing in for the trap prologue, and holds it for the
// whole trap body except around the idle wait. It performs context save,
// cause decode and dispatch, scheduler selection, and returns the context
// to install for trap return.
//
// regs/pc are the hart's register file and program counter at trap entry,
// as captured by the (out of scope) trap prologue from the fixed save
// area. The returned RegFile/pc/PrivMode are what the trap epilogue
// should restore before mret.
func (k *Kernel) Trap(core int, cause Cause, regs RegFile, pc uint64) (RegFile, uint64, PrivMode) {
	k.mu.Lock()
	defer k.mu.Unlock()

	slot := k.coreToSlot[core]
	p := &k.pcbs[slot]
	p.SavedPC = pc
	p.SavedRegs = regs

	if cause.Interrupt {
		k.dispatchInterrupt(slot, p, cause.Code)
	} else {
		k.dispatchException(core, slot, cause.Code)
	}

	k.yield(core)

	newSlot := k.coreToSlot[core]
	np := &k.pcbs[newSlot]
	return np.SavedRegs, np.SavedPC, np.Priv
}

func (k *Kernel) dispatchInterrupt(slot int, p *PCB, code uint64) {
	if code != CauseTimer {
		panic(fmt.Sprintf("kernel: non-timer interrupt %d", code))
	}
	if slot > 0 {
		p.TimerTickCount++
	}
	// CPU accounting flush for a Running process happens in yield's
	// demotion step (setRunnable), which is the only place a timer
	// interrupt leaves status == Running by the time yield runs.
}

func (k *Kernel) dispatchException(core, slot int, code uint64) {
	p := &k.pcbs[slot]
	if code == CauseEcallUser || code == CauseEcallMachine {
		k.handleEcall(p)
		return
	}
	if p.isUser() {
		k.logf("Process %d killed due to exception %d", p.PID, code)
		k.free(p.PID)
		return
	}
	panic(fmt.Sprintf("kernel: exception %d from non-user process %d", code, p.PID))
}

func (k *Kernel) handleEcall(p *PCB) {
	paddr, err := k.hal.MMUTranslate(p.PID, SyscallArg)
	if err != nil {
		panic(fmt.Sprintf("kernel: mmu_translate failed for pid %d: %v", p.PID, err))
	}
	raw := k.hal.ReadPhys(paddr, syscallWireSize)
	p.Syscall = decodeSyscallWire(raw)
	p.Syscall.Status = Pending
	p.SavedPC += ecallWidth

	switch p.Syscall.Type {
	case SysSend, SysRecv:
		k.setPending(p.PID)
		k.trySyscall(p)
	case SysSleep:
		k.setPending(p.PID)
		k.sleep(p)
	case SysYield:
		k.setRunnable(p.PID)
	default:
		panic(fmt.Sprintf("kernel: unknown syscall type %d from pid %d", p.Syscall.Type, p.PID))
	}
}

// yield runs scheduler selection: the current PCB is demoted, the MLFQ
// housekeeping runs, pending syscalls and sleepers are advanced, and the
// highest-priority runnable PCB is installed, or the core goes idle.
func (k *Kernel) yield(core int) {
	slot := k.coreToSlot[core]
	cur := &k.pcbs[slot]
	if cur.Status == Running {
		k.setRunnable(cur.PID)
	}

	k.mlfqMaybeReset()

	now := k.hal.NowUS()
	k.checkWakeups(now)

	// Scan starts just past the slot that was running (slot 0, the idle
	// placeholder, if the core was idle) rather than always at slot 1, so
	// processes tied at the same queue level take turns instead of the
	// lowest slot number perpetually winning the tie-break. This is what
	// makes Yield actually relinquish the core to a same-level peer.
	start := slot%CAP + 1

	nextSlot := -1
	minLevel := L
	for n := 0; n < CAP; n++ {
		i := (start-1+n)%CAP + 1
		p := &k.pcbs[i]
		if p.Status == PendingSyscall {
			k.trySyscall(p)
		}
		if p.sleeping(now) {
			continue
		}
		if (p.Status == Ready || p.Status == Runnable) && p.QueueLevel < minLevel {
			minLevel = p.QueueLevel
			nextSlot = i
		}
	}

	if nextSlot < 0 {
		// Defensive fallback, unreachable under normal scheduling
		// invariants. Kept live rather than deleted, instrumented below.
		for i := 1; i <= CAP; i++ {
			p := &k.pcbs[i]
			if p.sleeping(now) {
				continue
			}
			if p.Status == Ready || p.Status == Runnable {
				nextSlot = i
				k.fallbackScans++
				break
			}
		}
	}

	if nextSlot < 0 {
		k.coreToSlot[core] = 0
		k.hal.TimerReset(core)
		k.mu.Unlock()
		k.hal.WaitForInterrupt()
		k.mu.Lock()
		return
	}

	winner := &k.pcbs[nextSlot]
	k.coreToSlot[core] = nextSlot
	k.hal.MMUSwitch(winner.PID)
	k.hal.MMUFlushCache()

	if winner.isUser() {
		winner.Priv = PrivUser
	} else {
		winner.Priv = PrivMachine
	}

	if winner.Status == Ready {
		winner.SavedRegs[0] = AppsArg
		winner.SavedRegs[1] = AppsArg + 4
		winner.SavedPC = AppsEntry
	}

	k.setRunning(winner.PID)
	k.hal.TimerReset(core)
}
