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
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/schedcore/serial-select/pkg/crtype"
)

func sampleSnapshot() *Snapshot {
	return &Snapshot{
		Nodes: []NodeSnapshot{
			{Name: "node0", Sockets: 2, CoresPerSocket: 2, ThreadsPerCore: 1, RealMemory: 8000, NodeState: "AVAILABLE"},
			{Name: "node1", Sockets: 1, CoresPerSocket: 4, ThreadsPerCore: 1, RealMemory: 4000, NodeState: "ONE_ROW"},
		},
		Partitions: []PartitionSnapshot{
			{Name: "batch", Priority: 100, Rows: []RowSnapshot{{Cores: []int{0, 1}}}},
		},
	}
}

func TestSnapshotIntoBuildsContext(t *testing.T) {
	ctx, err := sampleSnapshot().Into()
	assert.NoError(t, err)
	assert.Equal(t, 2, ctx.NodeCount())
	assert.Equal(t, 8, ctx.CoreMap.TotalCores())
	assert.Equal(t, crtype.NodeOneRow, ctx.Usage[1].NodeState)

	p := ctx.FindPartition("batch")
	assert.NotNil(t, p)
	assert.Equal(t, 2, p.Rows[0].Cores.Count())
	assert.Nil(t, ctx.FindPartition("missing"))
}

func TestSnapshotValidateCatchesBadGeometryAndState(t *testing.T) {
	s := sampleSnapshot()
	s.Nodes[0].Sockets = 0
	s.Nodes[1].NodeState = "WEIRD"
	err := s.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid geometry")
	assert.Contains(t, err.Error(), "unknown node state")
}

func TestSnapshotValidateCatchesOutOfRangeRowCores(t *testing.T) {
	s := sampleSnapshot()
	s.Partitions[0].Rows[0].Cores = []int{99}
	err := s.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "out of range")
}

func TestSnapshotValidateCatchesDuplicatePartitions(t *testing.T) {
	s := sampleSnapshot()
	s.Partitions = append(s.Partitions, s.Partitions[0])
	err := s.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "declared more than once")
}
