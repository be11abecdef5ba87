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

package laddermetrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
)

func TestRecorderTalliesStepsAndDuration(t *testing.T) {
	rec := NewRecorder()
	rec.RecordStep("test0", true)
	rec.RecordStep("test0", true)
	rec.RecordStep("test1", false)
	rec.RecordDuration(10 * time.Millisecond)
	rec.RecordDuration(20 * time.Millisecond)

	assert.Equal(t, uint64(2), rec.steps["test0"]["succeeded"])
	assert.Equal(t, uint64(1), rec.steps["test1"]["failed"])
	assert.Equal(t, uint64(2), rec.calls)
}

func TestCollectorEmitsAllRegisteredMetrics(t *testing.T) {
	rec := NewRecorder()
	rec.RecordStep("test3", true)
	rec.RecordDuration(5 * time.Millisecond)
	c := NewCollector(rec)

	ch := make(chan prometheus.Metric, 10)
	c.Collect(ch)
	close(ch)

	count := 0
	for range ch {
		count++
	}
	assert.Equal(t, 2, count) // one step-outcome counter, one duration gauge
}
