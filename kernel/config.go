package kernel

// Compile-time configuration. A real build would make NCORES and MsgLen
// platform-defined; here they are fixed so the package is self-contained.
// All durations are in microseconds to match hal.NowUS.
const (
	// CAP is the process table capacity, slots 1..=CAP; slot 0 is the idle
	// placeholder.
	CAP = 16

	// NCores is the number of simulated hardware threads.
	NCores = 4

	// L is the number of MLFQ levels, 0 (highest) .. L-1 (lowest, sticky).
	L = 5

	// BaseQuantumUS is the level-0 MLFQ quantum in microseconds; level n
	// gets (n+1)*BaseQuantumUS.
	BaseQuantumUS = 100_000

	// ResetPeriodUS is the MLFQ global priority-boost interval (Rule 5).
	ResetPeriodUS = 10_000_000

	// MsgLen is the fixed IPC payload size.
	MsgLen = 64

	// UserStart is the first pid considered a user process (vs. kernel
	// process) for privilege-mode and exception-handling purposes.
	UserStart = 2

	// ShellPID is the pid that receives the interactive MLFQ boost on TTY
	// input.
	ShellPID = UserStart

	// AppsEntry/AppsArg are the fixed virtual addresses a newly-loaded user
	// process starts executing at / receives argc,argv from.
	AppsEntry = 0x1000
	AppsArg   = 0x2000

	// SyscallArg is the fixed user-space virtual address of the syscall
	// argument block.
	SyscallArg = 0x3000

	// ResponseClampUS bounds the "unreasonable response time" defensive
	// cap, kept at the original source's literal 10-second threshold.
	ResponseClampUS = 10_000_000

	// ecallWidth is the width in bytes of the ecall instruction; saved_pc
	// advances past it on syscall entry.
	ecallWidth = 4
)

// pidAll is the sentinel pid meaning "every user process" for Table.Free,
// and Any is the sentinel sender filter for Recv.
const (
	pidAll int64 = -1
	Any    int64 = -1
)

func quantumUS(level int) uint64 {
	return uint64(level+1) * BaseQuantumUS
}
