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

package cluster

import (
	"github.com/schedcore/serial-select/pkg/collab"
	"github.com/schedcore/serial-select/pkg/coremap"
	"github.com/schedcore/serial-select/pkg/domain"
)

// Context is the read-only (within a placement call) view of the
// cluster a placement call reasons over: topology, per-node usage,
// partitions, and the collaborator interfaces a call reaches out
// through. Every placement function takes a *Context explicitly instead
// of reaching for package-level globals.
type Context struct {
	CoreMap    *coremap.CoreMap
	Usage      []domain.NodeUsage
	Partitions []*domain.Partition

	Gres    collab.GresTester
	Builder collab.JobResourcesBuilder
	Dist    collab.TaskDistributor
	Drainer collab.NodeDrainer

	// Debug turns on per-ladder-step diagnostic logging.
	Debug bool
	// FastSchedule is passed through to JobResourcesBuilder.Build,
	// mirroring the original plugin's fast-schedule configuration flag.
	FastSchedule bool
}

// NodeCount returns the number of nodes the Context knows about, used to
// validate a caller-supplied node_count parameter for consistency.
func (c *Context) NodeCount() int {
	return c.CoreMap.NumNodes()
}

// FindPartition returns the job's own partition by name, or nil if none
// matches — partitions never form cycles, so a linear scan is sufficient
// and matches how the original plugin resolves a job's partition.
func (c *Context) FindPartition(name string) *domain.Partition {
	for _, p := range c.Partitions {
		if p.Name == name {
			return p
		}
	}
	return nil
}
