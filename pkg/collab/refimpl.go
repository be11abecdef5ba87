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

package collab

import (
	"github.com/pkg/errors"

	logger "github.com/schedcore/serial-select/pkg/log"

	"github.com/schedcore/serial-select/pkg/bitmap"
	"github.com/schedcore/serial-select/pkg/coremap"
	"github.com/schedcore/serial-select/pkg/crtype"
	"github.com/schedcore/serial-select/pkg/domain"
)

const logSource = "collab"

// CountingGresTester is a deterministic reference GresTester: it checks
// that every named resource the job asks for is present on the node in
// sufficient count, and otherwise imposes no further clamp. Real GRES
// plugins additionally narrow coreMap by device affinity; this reference
// implementation never does, since it has no device topology to consult.
type CountingGresTester struct {
	Log logger.Logger
}

// NewCountingGresTester returns a CountingGresTester with a default logger.
func NewCountingGresTester() *CountingGresTester {
	return &CountingGresTester{Log: logger.NewLogger(logSource)}
}

// Test implements GresTester.
func (g *CountingGresTester) Test(jobGres, nodeGres []domain.GresSpec, testOnly bool, coreMap *bitmap.Bitmap, coreLo, coreHi int, jobID uint32, nodeName string) (int, error) {
	avail := make(map[string]uint64, len(nodeGres))
	for _, gr := range nodeGres {
		avail[gr.Name] += gr.Count
	}
	for _, want := range jobGres {
		if avail[want.Name] < want.Count {
			g.Log.Debug("job %d: node %s lacks %s (want %d, have %d)", jobID, nodeName, want.Name, want.Count, avail[want.Name])
			return 0, nil
		}
	}
	if coreHi < coreLo {
		return 0, nil
	}
	return coreHi - coreLo + 1, nil
}

// SimpleJobResourcesBuilder is a reference JobResourcesBuilder: it
// confirms the selected node's topology was actually supplied and
// otherwise leaves res untouched, since the reference core already
// populated Cpus, TotalCpus, and CoreBitmap before calling Build.
type SimpleJobResourcesBuilder struct{}

// Build implements JobResourcesBuilder.
func (SimpleJobResourcesBuilder) Build(res *domain.JobResources, nodes []coremap.NodeTopology, fastSchedule bool) error {
	if res.NodeIndex < 0 || res.NodeIndex >= len(nodes) {
		return errors.Errorf("job resources builder: node index %d out of range (have %d nodes)", res.NodeIndex, len(nodes))
	}
	return nil
}

// SequentialTaskDistributor is a reference TaskDistributor: it assumes
// tasks are handed out to the selected cores in ascending core order and
// performs no further bookkeeping, since the reference core has no
// per-task placement state to mutate.
type SequentialTaskDistributor struct{}

// Distribute implements TaskDistributor.
func (SequentialTaskDistributor) Distribute(job *domain.Job, crType crtype.CR) error {
	if job.NumTasks < 0 {
		return errors.Errorf("task distributor: job %d has negative NumTasks %d", job.ID, job.NumTasks)
	}
	return nil
}

// LoggingNodeDrainer is a reference NodeDrainer: it records the drain
// request through the package logger instead of reaching out to a real
// cluster manager.
type LoggingNodeDrainer struct {
	Log logger.Logger
}

// NewLoggingNodeDrainer returns a LoggingNodeDrainer with a default logger.
func NewLoggingNodeDrainer() *LoggingNodeDrainer {
	return &LoggingNodeDrainer{Log: logger.NewLogger(logSource)}
}

// Drain implements NodeDrainer.
func (d *LoggingNodeDrainer) Drain(name, reason string, actorUID uint32) error {
	d.Log.Warn("draining node %s: %s (requested by uid %d)", name, reason, actorUID)
	return nil
}
