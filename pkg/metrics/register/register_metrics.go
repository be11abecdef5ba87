package register

import (
	// Pull in the placement ladder's step/latency collector.
	_ "github.com/schedcore/serial-select/pkg/laddermetrics"
)
