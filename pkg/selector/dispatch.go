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
	"github.com/schedcore/serial-select/pkg/bitmap"
	"github.com/schedcore/serial-select/pkg/cluster"
	"github.com/schedcore/serial-select/pkg/crtype"
	"github.com/schedcore/serial-select/pkg/domain"
	"github.com/schedcore/serial-select/pkg/placerr"
)

// CanJobRunOnNode dispatches to the core/cpu or socket allocator
// depending on crType, then applies the memory and GRES clamps on the
// resulting cpu count.
func CanJobRunOnNode(ctx *cluster.Context, coreBits *bitmap.Bitmap, job *domain.Job, n int, crType crtype.CR, mode crtype.Mode) (int, error) {
	var cpus int
	switch {
	case crType.Has(crtype.CRSocket):
		cpus = AllocateSockets(ctx, coreBits, job, n)
	case crType.Has(crtype.CRCore):
		cpus = AllocateCores(ctx, coreBits, job, n, false)
	default:
		cpus = AllocateCores(ctx, coreBits, job, n, true)
	}
	if cpus == 0 {
		return 0, nil
	}

	testOnly := mode == crtype.TestOnly

	cpus = clampMemory(ctx, job, n, crType, cpus, testOnly)
	if cpus > 0 {
		var err error
		cpus, err = clampGres(ctx, coreBits, job, n, cpus)
		if err != nil {
			return 0, err
		}
	}

	if cpus == 0 {
		clearNodeRange(ctx, coreBits, n)
	}
	return cpus, nil
}

func clampMemory(ctx *cluster.Context, job *domain.Job, n int, crType crtype.CR, cpus int, testOnly bool) int {
	if !crType.Has(crtype.CRMemory) {
		return cpus
	}
	node := ctx.CoreMap.Node(n)
	usage := ctx.Usage[n]
	alloc := usage.AllocMemory
	if testOnly {
		alloc = 0
	}
	var avail uint64
	if node.RealMemory > alloc {
		avail = node.RealMemory - alloc
	}

	reqMem := job.PnMinMemory
	ntpn, ntpnSet := job.NtasksPerNode.Get()

	if job.MemPerCPU {
		for cpus > 0 && reqMem*uint64(cpus) > avail {
			cpus--
		}
		if (ntpnSet && cpus < ntpn) || (job.CpusPerTask > 1 && cpus < job.CpusPerTask) {
			cpus = 0
		}
		return cpus
	}

	if reqMem > avail {
		return 0
	}
	return cpus
}

func clampGres(ctx *cluster.Context, coreBits *bitmap.Bitmap, job *domain.Job, n int, cpus int) (int, error) {
	if len(job.GresList) == 0 {
		return cpus, nil
	}
	node := ctx.CoreMap.Node(n)
	lo, hi := ctx.CoreMap.Offset(n), ctx.CoreMap.Offset(n+1)-1
	gresCpus, err := ctx.Gres.Test(job.GresList, ctx.Usage[n].Gres, false, coreBits, lo, hi, job.ID, node.Name)
	if err != nil {
		return 0, placerr.Wrap(placerr.DownstreamFailure, err, "gres_test failed for node %s", node.Name)
	}
	ntpn, ntpnSet := job.NtasksPerNode.Get()
	if (ntpnSet && gresCpus < ntpn) || (job.CpusPerTask > 1 && gresCpus < job.CpusPerTask) {
		gresCpus = 0
	}
	return minInt(cpus, gresCpus), nil
}
