package kernel

import "fmt"

// trySyscall attempts progress on a PendingSyscall PCB. Only Send and
// Recv are retryable here; every other syscall type (Sleep is woken by
// wakeup_time, Yield completes at ecall entry) is a silent no-op, since a
// process can still be PendingSyscall mid-sleep when yield's retry scan
// reaches it.
func (k *Kernel) trySyscall(p *PCB) {
	switch p.Syscall.Type {
	case SysRecv:
		k.tryRecv(p)
	case SysSend:
		k.trySend(p)
	}
}

// trySend is the Send half of the rendezvous. Delivery succeeds only
// against a receiver that is itself PendingSyscall on a matching Recv;
// otherwise the send stays Pending and is retried on the next scheduler
// pass. A receiver pid absent from the table entirely is a kernel panic,
// misconfiguration rather than a runtime condition.
func (k *Kernel) trySend(sender *PCB) {
	receiverPID := sender.Syscall.Receiver
	for i := 1; i <= CAP; i++ {
		dst := &k.pcbs[i]
		if dst.PID != receiverPID || dst.Status == Unused {
			continue
		}
		if dst.Syscall.Type != SysRecv || dst.Syscall.Status != Pending {
			return
		}
		if dst.Syscall.Sender != Any && dst.Syscall.Sender != sender.PID {
			return
		}
		dst.Syscall.Status = Done
		dst.Syscall.Sender = sender.PID
		dst.Syscall.Content = sender.Syscall.Content
		return
	}
	panic(fmt.Sprintf("kernel: send to unknown receiver pid=%d", receiverPID))
}

// tryRecv implements the Recv half. Once the matching Send has marked the
// receiver's syscall record Done, the record is copied back to the
// receiver's user-space argument block and both parties are unblocked.
func (k *Kernel) tryRecv(receiver *PCB) {
	if receiver.Syscall.Status == Pending {
		return
	}

	paddr, err := k.hal.MMUTranslate(receiver.PID, SyscallArg)
	if err == nil {
		k.hal.WritePhys(paddr, EncodeSyscall(receiver.Syscall))
	}

	senderPID := receiver.Syscall.Sender
	k.setRunnable(receiver.PID)
	k.setRunnable(senderPID)
}
