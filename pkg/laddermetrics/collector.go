// Copyright 2019 Intel Corporation. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package laddermetrics exposes the placement ladder's step outcomes and
// call latency as Prometheus metrics, following the collector-per-concern
// pattern the teacher uses for its policy metrics: a package-level
// Recorder gathers counts, a Collector renders them on demand, and an
// init() registers the Collector with pkg/metrics the same way the
// teacher's avx and cgroupstats packages self-register.
package laddermetrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/schedcore/serial-select/pkg/metrics"
)

var (
	stepOutcomeDesc = prometheus.NewDesc(
		"crselect_ladder_step_total",
		"Number of times a placement ladder step was evaluated, by step and outcome.",
		[]string{"step", "outcome"}, nil,
	)
	callDurationDesc = prometheus.NewDesc(
		"crselect_placement_duration_seconds",
		"Wall-clock duration of a full Runner.Run call.",
		nil, nil,
	)
)

// Recorder accumulates ladder-step outcomes and call durations in memory
// for a Collector to render. The zero value is ready to use.
type Recorder struct {
	mu       sync.Mutex
	steps    map[string]map[string]uint64
	calls    uint64
	totalDur time.Duration
}

// NewRecorder returns a ready-to-use Recorder.
func NewRecorder() *Recorder {
	return &Recorder{steps: make(map[string]map[string]uint64)}
}

// RecordStep tallies one evaluation of a named ladder step (e.g. "test0",
// "test3") with outcome "succeeded" or "failed".
func (r *Recorder) RecordStep(step string, ok bool) {
	outcome := "failed"
	if ok {
		outcome = "succeeded"
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.steps == nil {
		r.steps = make(map[string]map[string]uint64)
	}
	if r.steps[step] == nil {
		r.steps[step] = make(map[string]uint64)
	}
	r.steps[step][outcome]++
}

// RecordDuration tallies the wall-clock time a single Runner.Run call took.
func (r *Recorder) RecordDuration(d time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	r.totalDur += d
}

// Collector adapts a Recorder to prometheus.Collector.
type Collector struct {
	rec *Recorder
}

// NewCollector returns a Collector rendering rec's accumulated metrics.
func NewCollector(rec *Recorder) *Collector {
	return &Collector{rec: rec}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- stepOutcomeDesc
	ch <- callDurationDesc
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	c.rec.mu.Lock()
	defer c.rec.mu.Unlock()

	for step, outcomes := range c.rec.steps {
		for outcome, count := range outcomes {
			ch <- prometheus.MustNewConstMetric(stepOutcomeDesc, prometheus.CounterValue, float64(count), step, outcome)
		}
	}

	var avg float64
	if c.rec.calls > 0 {
		avg = c.rec.totalDur.Seconds() / float64(c.rec.calls)
	}
	ch <- prometheus.MustNewConstMetric(callDurationDesc, prometheus.GaugeValue, avg)
}

// DefaultRecorder is the process-wide Recorder the self-registered
// Collector reports on, used by callers that don't thread their own
// Recorder through the ladder Runner.
var DefaultRecorder = NewRecorder()

func init() {
	_ = metrics.RegisterCollector("ladderMetrics", func() (prometheus.Collector, error) {
		return NewCollector(DefaultRecorder), nil
	})
}
