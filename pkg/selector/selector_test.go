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

package selector

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/schedcore/serial-select/pkg/bitmap"
	"github.com/schedcore/serial-select/pkg/cluster"
	"github.com/schedcore/serial-select/pkg/crtype"
	"github.com/schedcore/serial-select/pkg/domain"
)

func oneNodeCtx(t *testing.T, sockets, coresPerSocket, threadsPerCore int, realMemory, allocMemory uint64, state string) *cluster.Context {
	t.Helper()
	snap := &cluster.Snapshot{
		Nodes: []cluster.NodeSnapshot{
			{Name: "node0", Sockets: sockets, CoresPerSocket: coresPerSocket, ThreadsPerCore: threadsPerCore, RealMemory: realMemory, AllocMemory: allocMemory, NodeState: state},
		},
	}
	ctx, err := snap.Into()
	assert.NoError(t, err)
	return ctx
}

func fullMask(ctx *cluster.Context) *bitmap.Bitmap {
	b := bitmap.New(ctx.CoreMap.TotalCores())
	b.SetRange(0, ctx.CoreMap.TotalCores()-1)
	return b
}

// Scenario 1: trivial fit.
func TestAllocateCoresTrivialFit(t *testing.T) {
	ctx := oneNodeCtx(t, 2, 2, 1, 0, 0, "AVAILABLE")
	cores := fullMask(ctx)

	job := &domain.Job{
		CpusPerTask:   1,
		NtasksPerNode: domain.Some(2),
		Shared:        true,
	}

	cpus := AllocateCores(ctx, cores, job, 0, false)
	assert.Equal(t, 2, cpus)
	assert.Equal(t, 2, cores.Count())
}

// Scenario 2: socket-exclusive.
func TestAllocateSocketsExclusiveUsedSocket(t *testing.T) {
	ctx := oneNodeCtx(t, 2, 2, 1, 0, 0, "AVAILABLE")
	cores := fullMask(ctx)
	cores.Clear(0) // one core on socket 0 already used

	job := &domain.Job{
		CpusPerTask: 1,
		MC:          domain.MC{SocketsPerNode: 2},
	}

	cpus := AllocateSockets(ctx, cores, job, 0)
	assert.Equal(t, 0, cpus)
	assert.Equal(t, 0, cores.Count())
}

// Scenario 3: memory clamp per-cpu.
func TestClampMemoryPerCpu(t *testing.T) {
	ctx := oneNodeCtx(t, 1, 4, 1, 8000, 0, "AVAILABLE")
	job := &domain.Job{
		CpusPerTask: 1,
		PnMinMemory: 3000,
		MemPerCPU:   true,
	}

	cpus := clampMemory(ctx, job, 0, crtype.CRMemory, 4, false)
	assert.Equal(t, 2, cpus) // 3*3000 > 8000, clamps down from 4 to 2
}

// Scenario 4: required node dropped.
func TestVerifyNodeStateDropsRequiredReservedNode(t *testing.T) {
	ctx := oneNodeCtx(t, 1, 2, 1, 0, 0, "RESERVED")
	candidates := bitmap.New(1)
	candidates.Set(0)

	req := bitmap.New(1)
	req.Set(0)
	job := &domain.Job{ReqNodeBitmap: req}

	err := VerifyNodeState(ctx, candidates, job, crtype.ReqAvailable, crtype.CRCore)
	assert.Error(t, err)
}

// Scenario 6: overcommit bypasses the ntasks_per_node gate.
func TestAllocateCoresOvercommitBypassesGate(t *testing.T) {
	ctx := oneNodeCtx(t, 1, 4, 1, 0, 0, "AVAILABLE")
	cores := fullMask(ctx)

	job := &domain.Job{
		CpusPerTask:   1,
		NtasksPerNode: domain.Some(8),
		NumTasks:      1,
		Overcommit:    true,
	}

	cpus := AllocateCores(ctx, cores, job, 0, false)
	assert.Greater(t, cpus, 0)
}

// Regression: min_sockets must fail a node where one socket is fully
// allocated, even though the job never set min_cores. A socket with
// zero free cores must not count toward usableSockets just because
// min_cores defaulted to zero instead of one.
func TestAllocateCoresMinSocketsFailsOnFullyBusySocket(t *testing.T) {
	ctx := oneNodeCtx(t, 3, 2, 1, 0, 0, "AVAILABLE")
	cores := fullMask(ctx)
	cores.Clear(0) // socket 0's two cores both already used
	cores.Clear(1)

	job := &domain.Job{
		CpusPerTask: 1,
		MC:          domain.MC{SocketsPerNode: 3},
	}

	cpus := AllocateCores(ctx, cores, job, 0, false)
	assert.Equal(t, 0, cpus)
	assert.Equal(t, 0, cores.Count())
}

func TestSelectNodesPicksLowestFeasibleCandidate(t *testing.T) {
	snap := &cluster.Snapshot{
		Nodes: []cluster.NodeSnapshot{
			{Name: "node0", Sockets: 1, CoresPerSocket: 2, ThreadsPerCore: 1, NodeState: "AVAILABLE"},
			{Name: "node1", Sockets: 1, CoresPerSocket: 2, ThreadsPerCore: 1, NodeState: "AVAILABLE"},
		},
	}
	ctx, err := snap.Into()
	assert.NoError(t, err)

	cores := fullMask(ctx)
	candidates := bitmap.New(2)
	candidates.Set(0)
	candidates.Set(1)

	job := &domain.Job{CpusPerTask: 1}

	winner, cpus, err := SelectNodes(ctx, cores, job, candidates, crtype.CRCore, crtype.RunNow, 2)
	assert.NoError(t, err)
	assert.Equal(t, 0, winner)
	assert.Equal(t, 2, cpus)
	assert.Equal(t, 0, cores.CountRange(2, 3)) // node1's cores cleared
}

func TestVerifyNodeStateNonRequiredDropIsSilent(t *testing.T) {
	ctx := oneNodeCtx(t, 1, 2, 1, 0, 0, "RESERVED")
	candidates := bitmap.New(1)
	candidates.Set(0)

	job := &domain.Job{}
	err := VerifyNodeState(ctx, candidates, job, crtype.ReqAvailable, crtype.CRCore)
	assert.NoError(t, err)
	assert.False(t, candidates.Test(0))
}
