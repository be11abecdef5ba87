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

package ladder

import (
	"github.com/schedcore/serial-select/pkg/bitmap"
	"github.com/schedcore/serial-select/pkg/cluster"
	"github.com/schedcore/serial-select/pkg/coremap"
	"github.com/schedcore/serial-select/pkg/crtype"
	"github.com/schedcore/serial-select/pkg/domain"
	"github.com/schedcore/serial-select/pkg/placerr"
)

// finalize assembles the job-resources object for a winning placement,
// invokes the job-resources builder and task distributor collaborators,
// and computes the memory allocation array when CR_MEMORY gates the
// placement. On WILL_RUN it reports total_cpus=1 without materializing
// an allocation or calling either collaborator.
func (r *Runner) finalize(ctx *cluster.Context, job *domain.Job, mode crtype.Mode, crType crtype.CR, winner, cpus int, coreBits *bitmap.Bitmap) (*Result, error) {
	if mode == crtype.WillRun {
		return &Result{
			Success: true,
			Resources: &domain.JobResources{
				NodeName:  ctx.CoreMap.Node(winner).Name,
				NodeIndex: winner,
				Cpus:      1,
				TotalCpus: 1,
				Ncpus:     1,
			},
		}, nil
	}

	if coreBits.Len() != ctx.CoreMap.TotalCores() {
		_ = ctx.Drainer.Drain(ctx.CoreMap.Node(winner).Name, "core index overflow during placement finalization", 0)
		return nil, placerr.New(placerr.InconsistentTopology, "selected core bitmap size %d does not match cluster core count %d", coreBits.Len(), ctx.CoreMap.TotalCores())
	}

	res := &domain.JobResources{
		NodeName:   ctx.CoreMap.Node(winner).Name,
		NodeIndex:  winner,
		Cpus:       cpus,
		TotalCpus:  cpus,
		CoreBitmap: coreBits.Clone(),
	}

	ncpus := 1
	if ntpn, ok := job.NtasksPerNode.Get(); ok && ntpn > ncpus {
		ncpus = ntpn
	}
	if job.MinCpus > ncpus {
		ncpus = job.MinCpus
	}
	if job.PnMinCpus > ncpus {
		ncpus = job.PnMinCpus
	}
	res.Ncpus = ncpus

	if err := ctx.Builder.Build(res, []coremap.NodeTopology{ctx.CoreMap.Node(winner)}, ctx.FastSchedule); err != nil {
		return nil, placerr.Wrap(placerr.DownstreamFailure, err, "build_job_resources failed for node %s", res.NodeName)
	}

	if job.Overcommit && job.NumTasks > 0 {
		res.Ncpus = minInt(res.TotalCpus, job.NumTasks)
	}

	if err := ctx.Dist.Distribute(job, crType); err != nil {
		return nil, placerr.Wrap(placerr.DownstreamFailure, err, "cr_dist failed for job %d", job.ID)
	}

	if crType.Has(crtype.CRMemory) {
		if job.MemPerCPU {
			res.MemoryAllocated = uint64(cpus) * job.PnMinMemory
		} else {
			res.MemoryAllocated = job.PnMinMemory
		}
	}

	return &Result{Success: true, Resources: res}, nil
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
