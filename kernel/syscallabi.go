package kernel

import "encoding/binary"

// Wire layout of the user-space syscall argument block at SyscallArg:
//
//	byte  0      : type (SyscallType)
//	byte  1      : reserved
//	bytes 2..10  : sender pid, int64 LE
//	bytes 10..18 : receiver pid, int64 LE
//	bytes 18..   : content, MsgLen bytes
const syscallWireSize = 18 + MsgLen

// EncodeSyscall packs a Syscall into the wire format a user-space library
// would place at SyscallArg before issuing an ecall. Exported for
// cmd/rvkernel's demo workloads and for tests driving Trap directly.
func EncodeSyscall(s Syscall) []byte {
	buf := make([]byte, syscallWireSize)
	buf[0] = byte(s.Type)
	binary.LittleEndian.PutUint64(buf[2:10], uint64(s.Sender))
	binary.LittleEndian.PutUint64(buf[10:18], uint64(s.Receiver))
	copy(buf[18:], s.Content[:])
	return buf
}

func decodeSyscallWire(raw []byte) Syscall {
	var s Syscall
	s.Type = SyscallType(raw[0])
	s.Sender = int64(binary.LittleEndian.Uint64(raw[2:10]))
	s.Receiver = int64(binary.LittleEndian.Uint64(raw[10:18]))
	copy(s.Content[:], raw[18:18+MsgLen])
	return s
}

// EncodeSleepContent packs a microsecond duration into a syscall content
// block for the Sleep syscall.
func EncodeSleepContent(usec uint64) [MsgLen]byte {
	var c [MsgLen]byte
	binary.LittleEndian.PutUint64(c[:8], usec)
	return c
}
