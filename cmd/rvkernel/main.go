// Command rvkernel boots the educational kernel core against the host
// HAL and drives it with a small demo workload: a kernel logger service,
// a shell process that receives the interactive MLFQ boost, and a
// handful of CPU-bound and IPC demo processes.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	"golang.org/x/sync/errgroup"

	"rvkernel/hal"
	"rvkernel/internal/buildinfo"
	"rvkernel/kernel"
)

func main() {
	var (
		ticks        uint64
		tickInterval time.Duration
		showCores    bool
	)
	flag.Uint64Var(&ticks, "ticks", 200, "stop after N timer ticks per core (0 = run forever)")
	flag.DurationVar(&tickInterval, "tick-interval", 5*time.Millisecond, "simulated preemption tick period")
	flag.BoolVar(&showCores, "cores", false, "print per-core status once at exit")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	h := hal.NewHostHAL()
	k := kernel.New(h)
	h.Logger().WriteLineString(fmt.Sprintf("rvkernel %s booting, %d cores", buildinfo.Short(), kernel.NCores))

	bootDemo(k)

	g, gctx := errgroup.WithContext(ctx)
	for c := 0; c < kernel.NCores; c++ {
		core := c
		g.Go(func() error {
			return runCore(gctx, k, core, ticks, tickInterval)
		})
	}

	if err := g.Wait(); err != nil && ctx.Err() == nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if showCores {
		h.Logger().WriteLineString(k.CoresInfo())
	}
	k.FreeAll()
}

// runCore simulates one hardware thread's timer-driven trap loop. It has
// no instruction-level CPU model: between ticks it lets demo workloads
// issue their syscalls via kernel.Kernel.IssueSyscall, which stands in
// for the (out of scope) ecall instruction.
//
// A kernel panic raised by one of this core's timer Trap calls (such as a
// retried send to an unknown receiver) is recovered here, logged through
// the HAL's logger via topLevelPanic, and turned into the error this
// core's errgroup goroutine returns, which cancels every other core and
// unwinds main cleanly instead of crashing raw to stderr mid-tick. Panics
// raised outside this loop (Alloc in bootDemo, or the ecall Traps the
// demo goroutines make through IssueSyscall) are not recovered here.
func runCore(ctx context.Context, k *kernel.Kernel, core int, ticks uint64, interval time.Duration) (err error) {
	defer func() {
		if r := recover(); r != nil {
			topLevelPanic.trigger(k.HAL().Logger(), core, r)
			err = fmt.Errorf("kernel panic on core %d: %v", core, r)
		}
	}()

	var regs kernel.RegFile
	var pc uint64
	var n uint64
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			regs, pc, _ = k.Trap(core, kernel.Cause{Interrupt: true, Code: kernel.CauseTimer}, regs, pc)
			n++
			if ticks != 0 && n >= ticks {
				return nil
			}
		}
	}
}

// bootDemo spawns the kernel logger service (pid below UserStart), the
// shell (pid == ShellPID), and three demo applications, then installs each
// process's image (the image_loaded transition).
func bootDemo(k *kernel.Kernel) {
	logger := k.Alloc() // pid 1: kernel-mode service, never crosses UserStart.
	k.SetReady(logger)

	shell := k.Alloc() // pid == kernel.ShellPID
	k.SetReady(shell)

	worker := k.Alloc() // CPU-bound demo process.
	k.SetReady(worker)

	pinger := k.Alloc() // IPC demo: sends to ponger.
	k.SetReady(pinger)
	ponger := k.Alloc() // IPC demo: receives from pinger.
	k.SetReady(ponger)

	go driveIPCDemo(k, pinger, ponger)
	go driveSleepDemo(k, worker)
}

// driveIPCDemo periodically issues a Send from pinger to ponger and a
// matching Recv on ponger, demonstrating the rendezvous.
func driveIPCDemo(k *kernel.Kernel, pinger, ponger int64) {
	for {
		time.Sleep(50 * time.Millisecond)
		var content [kernel.MsgLen]byte
		copy(content[:], "ping")
		k.IssueSyscall(ponger, kernel.Syscall{Type: kernel.SysRecv, Sender: kernel.Any})
		k.IssueSyscall(pinger, kernel.Syscall{Type: kernel.SysSend, Receiver: ponger, Content: content})
	}
}

// driveSleepDemo periodically puts the worker process to sleep,
// demonstrating the Sleep syscall.
func driveSleepDemo(k *kernel.Kernel, worker int64) {
	for {
		time.Sleep(300 * time.Millisecond)
		k.IssueSyscall(worker, kernel.Syscall{
			Type:    kernel.SysSleep,
			Content: kernel.EncodeSleepContent(50_000),
		})
	}
}
