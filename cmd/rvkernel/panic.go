package main

import (
	"fmt"
	"runtime/debug"
	"strings"
	"sync"

	"rvkernel/hal"
)

// topLevelPanic funnels a recovered kernel panic, from whichever core's
// trap loop hit it, through the logger exactly once. It plays the same
// role sparkos/kernel/panic.go's SetPanicHandler/triggerPanic pair plays
// for the teacher's task panics: sync.Once-guarded so a second core
// panicking during shutdown doesn't double-log.
var topLevelPanic panicHandler

type panicHandler struct {
	once sync.Once
}

func (h *panicHandler) trigger(logger hal.Logger, core int, value any) {
	h.once.Do(func() {
		logger.WriteLineString(fmt.Sprintf("kernel panic on core %d: %v", core, value))
		for _, line := range strings.Split(string(debug.Stack()), "\n") {
			if line != "" {
				logger.WriteLineString(line)
			}
		}
	})
}
