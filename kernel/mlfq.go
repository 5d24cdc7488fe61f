package kernel

// mlfqAccount demotes a process once the runtime accrued at its current
// queue level consumes that level's quantum. The bottom level (L-1) is
// sticky, no further demotion.
func (k *Kernel) mlfqAccount(p *PCB, deltaUS uint64) {
	if p.QueueLevel >= L-1 {
		return
	}
	p.QueueTimeUS += deltaUS
	if p.QueueTimeUS >= quantumUS(p.QueueLevel) {
		p.QueueLevel++
		p.QueueTimeUS = 0
	}
}

// mlfqMaybeReset applies the periodic global priority boost and the
// shell's interactive boost on TTY input. Called once per scheduling pass
// from yield.
func (k *Kernel) mlfqMaybeReset() {
	now := k.hal.NowUS()

	if !k.hal.TTYInputEmpty() {
		if i := k.findSlot(ShellPID); i >= 0 {
			k.pcbs[i].QueueLevel = 0
			k.pcbs[i].QueueTimeUS = 0
		}
	}

	if now-k.lastGlobalResetUS >= ResetPeriodUS {
		for i := 1; i <= CAP; i++ {
			if k.pcbs[i].Status != Unused {
				k.pcbs[i].QueueLevel = 0
				k.pcbs[i].QueueTimeUS = 0
			}
		}
		k.lastGlobalResetUS = now
	}
}
