package kernel

// stats holds the derived, millisecond, lifecycle metrics printed at
// process termination.
type stats struct {
	turnaroundMS int64
	responseMS   int64
	cpuMS        int64
	waitMS       int64
}

func computeStats(p *PCB) stats {
	turnaround := int64(p.TerminationTimeUS - p.CreationTimeUS)

	var response int64
	if p.FirstScheduledUS > p.CreationTimeUS {
		response = int64(p.FirstScheduledUS - p.CreationTimeUS)
	}
	// Defensive cap against clock anomalies.
	if response > turnaround || response > ResponseClampUS {
		response = turnaround / 2
	}

	cpu := int64(p.TotalCPUUS)

	waiting := turnaround - response - cpu
	if waiting < 0 {
		waiting = 0
	}

	s := stats{
		turnaroundMS: turnaround / 1000,
		responseMS:   response / 1000,
		cpuMS:        cpu / 1000,
		waitMS:       waiting / 1000,
	}
	if s.turnaroundMS < 0 {
		s.turnaroundMS = 0
	}
	if s.responseMS < 0 {
		s.responseMS = 0
	}
	if s.cpuMS < 0 {
		s.cpuMS = 0
	}
	return s
}

// logTermination prints the seven-line termination summary: a header line
// followed by six statistics lines.
func (k *Kernel) logTermination(p *PCB) {
	s := computeStats(p)
	k.logf("Process %d terminated:", p.PID)
	k.logf("  Turnaround time: %d ms", s.turnaroundMS)
	k.logf("  Response time: %d ms", s.responseMS)
	k.logf("  Total CPU time: %d ms", s.cpuMS)
	k.logf("  Waiting time: %d ms", s.waitMS)
	k.logf("  Timer interrupts: %d", p.TimerTickCount)
	k.logf("  Final queue level: %d", p.QueueLevel)
}
