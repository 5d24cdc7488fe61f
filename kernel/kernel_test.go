package kernel_test

import (
	"rvkernel/hal"
	"rvkernel/kernel"
)

// manualClock gives tests a deterministic, explicitly-advanced microsecond
// clock instead of HostHAL's default wall-clock source.
type manualClock struct{ us uint64 }

func (c *manualClock) now() uint64     { return c.us }
func (c *manualClock) advance(d uint64) { c.us += d }

func newTestKernel() (*kernel.Kernel, *hal.HostHAL, *manualClock) {
	h := hal.NewHostHAL()
	clk := &manualClock{}
	h.SetClockFunc(clk.now)
	return kernel.New(h), h, clk
}
