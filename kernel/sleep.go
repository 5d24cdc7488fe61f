package kernel

import "encoding/binary"

// sleep implements the Sleep syscall, restored from the original grass
// kernel's proc_sleep: the caller is already PendingSyscall by the time
// this runs, so this only arms wakeup_time_us. usec is decoded from the
// first 8 bytes of the syscall content the user library packed into the
// argument block.
func (k *Kernel) sleep(p *PCB) {
	usec := binary.LittleEndian.Uint64(p.Syscall.Content[:8])
	p.WakeupTimeUS = k.hal.NowUS() + usec
}

// checkWakeups clears wakeup_time_us and marks Runnable any PendingSyscall
// PCB whose deadline has passed.
func (k *Kernel) checkWakeups(now uint64) {
	for i := 1; i <= CAP; i++ {
		p := &k.pcbs[i]
		if p.Status == PendingSyscall && p.WakeupTimeUS > 0 && now >= p.WakeupTimeUS {
			p.WakeupTimeUS = 0
			p.Status = Runnable
		}
	}
}

func (p *PCB) sleeping(now uint64) bool {
	return p.WakeupTimeUS > 0 && now < p.WakeupTimeUS
}
