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
	"math"

	"github.com/schedcore/serial-select/pkg/bitmap"
	"github.com/schedcore/serial-select/pkg/cluster"
	"github.com/schedcore/serial-select/pkg/domain"
)

// effectiveNtasksPerCore derives the per-core task cap: unbounded unless
// the job names one, further capped by mc.ThreadsPerCore when that is
// set and smaller.
func effectiveNtasksPerCore(job *domain.Job) int {
	v := math.MaxInt32
	if job.MC.NtasksPerCore > 0 {
		v = job.MC.NtasksPerCore
	}
	if job.MC.ThreadsPerCore > 0 && job.MC.ThreadsPerCore < v {
		v = job.MC.ThreadsPerCore
	}
	return v
}

// socketFreeCores counts, per socket of node n, how many of node n's
// cores are set in coreBits.
func socketFreeCores(ctx *cluster.Context, coreBits *bitmap.Bitmap, n int) []int {
	sockets := ctx.CoreMap.Sockets(n)
	cps := ctx.CoreMap.Cores(n)
	base := ctx.CoreMap.Offset(n)
	free := make([]int, sockets)
	for s := 0; s < sockets; s++ {
		lo := base + s*cps
		free[s] = coreBits.CountRange(lo, lo+cps-1)
	}
	return free
}

// clearNodeRange clears every bit belonging to node n in coreBits,
// mirroring the failure cleanup both allocators perform.
func clearNodeRange(ctx *cluster.Context, coreBits *bitmap.Bitmap, n int) {
	coreBits.ClearRange(ctx.CoreMap.Offset(n), ctx.CoreMap.Offset(n+1)-1)
}

// AllocateCores decides how many cpus the job could get on node n and
// which cores to keep set in coreBits, scheduling at core (cpuType
// false) or cpu (cpuType true) granularity — the two differ only in the
// call-site label per the spec; the procedure is identical.
func AllocateCores(ctx *cluster.Context, coreBits *bitmap.Bitmap, job *domain.Job, n int, cpuType bool) int {
	free := socketFreeCores(ctx, coreBits, n)
	minCores := job.MC.CoresPerSocket
	if minCores == 0 {
		minCores = 1
	}
	minSockets := job.MC.SocketsPerNode
	if minSockets == 0 {
		minSockets = 1
	}

	freeCoreCount := 0
	usableSockets := 0
	for s := range free {
		if free[s] < minCores {
			free[s] = 0
			continue
		}
		usableSockets++
		freeCoreCount += free[s]
	}
	if usableSockets < minSockets || freeCoreCount == 0 {
		clearNodeRange(ctx, coreBits, n)
		return 0
	}

	threadsPerCore := ctx.CoreMap.Threads(n)
	t := threadsPerCore
	if nc := effectiveNtasksPerCore(job); nc < t {
		t = nc
	}

	numTasks := t * freeCoreCount
	availCpus := numTasks

	ntpn, ntpnSet := job.NtasksPerNode.Get()
	if ntpnSet && job.Shared {
		numTasks = minInt(numTasks, ntpn)
	}
	if job.CpusPerTask < 2 {
		// Matches the original plugin's unconditional sync here: with
		// one cpu per task, avail_cpus tracks num_tasks directly, even
		// when ntasks_per_node was never set.
		availCpus = numTasks
	} else {
		numTasks = minInt(numTasks, availCpus/job.CpusPerTask)
		if ntpnSet {
			availCpus = numTasks * job.CpusPerTask
		}
	}

	if ntpnSet && numTasks < ntpn && !job.Overcommit {
		clearNodeRange(ctx, coreBits, n)
		return 0
	}
	if job.PnMinCpus > 0 && availCpus < job.PnMinCpus {
		clearNodeRange(ctx, coreBits, n)
		return 0
	}

	return selectCores(ctx, coreBits, n, free, threadsPerCore, availCpus)
}

// selectCores walks node n's core range in ascending order, keeping a
// core only while its socket still has remaining capacity in free, and
// accumulating cpu_count until availCpus is exhausted.
func selectCores(ctx *cluster.Context, coreBits *bitmap.Bitmap, n int, free []int, threadsPerCore, availCpus int) int {
	base := ctx.CoreMap.Offset(n)
	cps := ctx.CoreMap.Cores(n)
	end := ctx.CoreMap.Offset(n + 1)

	cpuCount := 0
	remaining := availCpus
	exhausted := false

	for c := base; c < end; c++ {
		s := (c - base) / cps
		if exhausted {
			coreBits.Clear(c)
			continue
		}
		if !coreBits.Test(c) {
			continue
		}
		if free[s] <= 0 {
			coreBits.Clear(c)
			continue
		}
		free[s]--
		give := minInt(threadsPerCore, remaining)
		cpuCount += give
		remaining -= give
		if remaining <= 0 {
			exhausted = true
		}
	}
	return cpuCount
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
