package kernel

// IssueSyscall simulates a user-space library executing the ecall
// instruction: it writes the encoded syscall into pid's argument block
// and traps into the kernel on whichever core currently has pid running.
// It returns false if pid is not presently Running anywhere.
//
// This stands in for the (out of scope) architectural ecall instruction
// and its ABI-level user-space wrapper; callers (cmd/rvkernel's demo
// workloads, tests) use it instead of hand-rolling a trap.
func (k *Kernel) IssueSyscall(pid int64, s Syscall) (RegFile, uint64, PrivMode, bool) {
	k.mu.Lock()
	core := -1
	var regs RegFile
	var pc uint64
	for c := 0; c < NCores; c++ {
		slot := k.coreToSlot[c]
		if slot > 0 && k.pcbs[slot].PID == pid && k.pcbs[slot].Status == Running {
			core = c
			regs = k.pcbs[slot].SavedRegs
			pc = k.pcbs[slot].SavedPC
			break
		}
	}
	k.mu.Unlock()
	if core < 0 {
		return RegFile{}, 0, 0, false
	}

	paddr, err := k.hal.MMUTranslate(pid, SyscallArg)
	if err != nil {
		return RegFile{}, 0, 0, false
	}
	k.hal.WritePhys(paddr, EncodeSyscall(s))

	newRegs, newPC, priv := k.Trap(core, Cause{Interrupt: false, Code: CauseEcallUser}, regs, pc)
	return newRegs, newPC, priv, true
}

// FreeAll terminates every user process (the pid == ALL case), emitting
// lifecycle statistics for each.
func (k *Kernel) FreeAll() {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.free(pidAll)
}
