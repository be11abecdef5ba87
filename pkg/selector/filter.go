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

// Package selector implements the per-node feasibility computation and
// node filter: VerifyNodeState, AllocateCores, AllocateSockets,
// CanJobRunOnNode, and the GetResUsage/EvalNodes/ChooseNodes/SelectNodes
// selection driver. Every function here takes a *cluster.Context
// explicitly and owns only the scratch bitmaps it allocates itself,
// releasing them on every return path by simply letting them go out of
// scope.
package selector

import (
	"github.com/schedcore/serial-select/pkg/bitmap"
	"github.com/schedcore/serial-select/pkg/cluster"
	"github.com/schedcore/serial-select/pkg/crtype"
	"github.com/schedcore/serial-select/pkg/domain"
	"github.com/schedcore/serial-select/pkg/placerr"
)

// VerifyNodeState drops every candidate bit that fails the memory, GRES,
// or sharing gate, in place. A dropped bit belonging to a required node
// fails the whole placement immediately.
func VerifyNodeState(ctx *cluster.Context, candidates *bitmap.Bitmap, job *domain.Job, jobNodeReq crtype.JobNodeReq, crType crtype.CR) error {
	for n := 0; n < ctx.NodeCount(); n++ {
		if !candidates.Test(n) {
			continue
		}
		if ok, err := nodePassesGates(ctx, n, job, jobNodeReq, crType); err != nil {
			return err
		} else if !ok {
			if job.IsRequiredNode(n) {
				return placerr.New(placerr.RequiredNodeUnusable, "node %s is required but fails the node-state filter", ctx.CoreMap.Node(n).Name)
			}
			candidates.Clear(n)
		}
	}
	return nil
}

// nodePassesGates runs the memory, GRES, and sharing gates for node n, in
// that order, short-circuiting on the first failure.
func nodePassesGates(ctx *cluster.Context, n int, job *domain.Job, jobNodeReq crtype.JobNodeReq, crType crtype.CR) (bool, error) {
	if !memoryGatePasses(ctx, n, job, crType) {
		return false, nil
	}
	ok, err := gresGatePasses(ctx, n, job)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}
	return sharingGatePasses(ctx, n, jobNodeReq, job.PartitionName), nil
}

func memoryGatePasses(ctx *cluster.Context, n int, job *domain.Job, crType crtype.CR) bool {
	if !crType.Has(crtype.CRMemory) || job.PnMinMemory == 0 {
		return true
	}
	effectiveMin := job.PnMinMemory
	if job.MemPerCPU {
		ntpn := 0
		if v, ok := job.NtasksPerNode.Get(); ok {
			ntpn = v
		}
		mult := maxInt(maxInt(ntpn, job.PnMinCpus), maxInt(job.CpusPerTask, 1))
		effectiveMin = job.PnMinMemory * uint64(mult)
	}
	node := ctx.CoreMap.Node(n)
	usage := ctx.Usage[n]
	var freeMem uint64
	if node.RealMemory > usage.AllocMemory {
		freeMem = node.RealMemory - usage.AllocMemory
	}
	return freeMem >= effectiveMin
}

func gresGatePasses(ctx *cluster.Context, n int, job *domain.Job) (bool, error) {
	if len(job.GresList) == 0 {
		return true, nil
	}
	node := ctx.CoreMap.Node(n)
	cpus, err := ctx.Gres.Test(job.GresList, ctx.Usage[n].Gres, true, nil, 0, 0, job.ID, node.Name)
	if err != nil {
		return false, placerr.Wrap(placerr.DownstreamFailure, err, "gres_test failed for node %s", node.Name)
	}
	return cpus != 0, nil
}

func sharingGatePasses(ctx *cluster.Context, n int, jobNodeReq crtype.JobNodeReq, ownPart string) bool {
	state := ctx.Usage[n].NodeState
	switch {
	case state >= crtype.NodeReserved:
		return false
	case state >= crtype.NodeOneRow:
		if jobNodeReq == crtype.ReqReserved || jobNodeReq == crtype.ReqAvailable {
			return false
		}
		return !IsNodeBusy(ctx, n, true, ownPart)
	default: // NodeAvailable
		switch jobNodeReq {
		case crtype.ReqReserved:
			return !IsNodeBusy(ctx, n, false, "")
		case crtype.ReqOneRow:
			return !IsNodeBusy(ctx, n, true, "")
		default:
			return true
		}
	}
}

// IsNodeBusy scans every row of every partition for a bit set in node n's
// core range. When sharingOnly is true it ignores partitions with a
// single row (they cannot oversubscribe) and the partition named
// ownPart.
func IsNodeBusy(ctx *cluster.Context, n int, sharingOnly bool, ownPart string) bool {
	lo := ctx.CoreMap.Offset(n)
	hi := ctx.CoreMap.Offset(n+1) - 1
	for _, p := range ctx.Partitions {
		if sharingOnly && (len(p.Rows) <= 1 || p.Name == ownPart) {
			continue
		}
		for _, row := range p.Rows {
			if row.Cores.CountRange(lo, hi) > 0 {
				return true
			}
		}
	}
	return false
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
