// Package hal defines the hardware abstraction layer the kernel core
// consumes. It is the only contact point between the trap dispatcher and
// the outside world: the timer, the MMU, and the console.
package hal

import "errors"

// ErrNotImplemented is returned by HAL methods a platform chooses not to
// back (e.g. a headless test double with no MMU backing store).
var ErrNotImplemented = errors.New("hal: not implemented")

// Logger writes newline-delimited diagnostic lines.
//
// The kernel never calls fmt.Println directly; every kill notice,
// lifecycle statistics block, and panic message goes through this so a
// platform can route kernel output anywhere (serial line, ring buffer,
// stdout).
type Logger interface {
	WriteLineString(s string)
	WriteLineBytes(b []byte)
}

// HAL is the façade the kernel core is built against. Non-goals keep the
// bootloader, MMU implementation, and TTY driver themselves out of scope;
// this is only the narrow surface the core calls into.
type HAL interface {
	// NowUS returns a monotonic, non-decreasing microsecond clock.
	NowUS() uint64

	// TimerReset arms the given core's preemption timer for the next tick.
	TimerReset(core int)

	// MMUTranslate returns the physical address backing vaddr in pid's
	// address space.
	MMUTranslate(pid int64, vaddr uint64) (uint64, error)

	// MMUSwitch installs pid's page tables on the current core.
	MMUSwitch(pid int64)

	// MMUFlushCache flushes the TLB after a switch.
	MMUFlushCache()

	// MMUFree releases pid's page tables.
	MMUFree(pid int64)

	// ReadPhys and WritePhys give the kernel raw access to the bytes at a
	// physical address returned by MMUTranslate. Real hardware would just
	// dereference the address; Go has no raw pointers, so the HAL owns
	// physical memory and exposes it through these two calls instead.
	ReadPhys(paddr uint64, n int) []byte
	WritePhys(paddr uint64, data []byte)

	// TTYInputEmpty reports whether the TTY input ring is empty.
	TTYInputEmpty() bool

	// Logger returns the platform's diagnostic sink.
	Logger() Logger

	// WaitForInterrupt blocks the calling core until the next interrupt,
	// with the kernel lock already released by the caller. Used only by
	// the idle path.
	WaitForInterrupt()
}
