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
	"github.com/schedcore/serial-select/pkg/domain"
)

// AllocateSockets is AllocateCores' sibling for socket-granularity
// scheduling: a socket that is even partially used by another job
// becomes wholly unusable, and ntasks_per_socket additionally caps how
// many cores of one socket a single job may claim.
func AllocateSockets(ctx *cluster.Context, coreBits *bitmap.Bitmap, job *domain.Job, n int) int {
	coresPerSocket := ctx.CoreMap.Cores(n)
	base := ctx.CoreMap.Offset(n)

	free := socketFreeCores(ctx, coreBits, n)
	for s := range free {
		usedCores := coresPerSocket - free[s]
		if usedCores > 0 {
			free[s] = 0
		}
	}

	minCores := job.MC.CoresPerSocket
	minSockets := job.MC.SocketsPerNode
	freeCoreCount := 0
	usableSockets := 0
	for s := range free {
		if free[s] == 0 {
			continue
		}
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

	numTasks := 0
	availCpus := 0
	for s := range free {
		tmp := t * free[s]
		availCpus += tmp
		if job.MC.NtasksPerSocket > 0 {
			numTasks += minInt(tmp, job.MC.NtasksPerSocket)
		} else {
			numTasks += tmp
		}
	}

	ntpn, ntpnSet := job.NtasksPerNode.Get()
	if ntpnSet && job.Shared {
		numTasks = minInt(numTasks, ntpn)
	}
	if job.CpusPerTask < 2 {
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

	capPerSocket := numTasks
	if job.MC.NtasksPerSocket > 1 {
		capPerSocket = job.MC.NtasksPerSocket * maxInt(1, job.CpusPerTask)
	}

	return selectSocketCores(ctx, coreBits, n, free, coresPerSocket, base, threadsPerCore, availCpus, capPerSocket)
}

// selectSocketCores walks node n's cores in ascending order, resetting a
// per-socket running counter whenever a new socket is entered and
// capping a socket's contribution at capPerSocket, in addition to the
// per-socket remaining-capacity bookkeeping AllocateCores performs.
func selectSocketCores(ctx *cluster.Context, coreBits *bitmap.Bitmap, n int, free []int, coresPerSocket, base, threadsPerCore, availCpus, capPerSocket int) int {
	end := ctx.CoreMap.Offset(n + 1)

	cpuCount := 0
	remaining := availCpus
	exhausted := false
	prevSocket := -1
	cpuCnt := 0

	for c := base; c < end; c++ {
		if exhausted {
			coreBits.Clear(c)
			continue
		}
		if !coreBits.Test(c) {
			continue
		}
		s := (c - base) / coresPerSocket
		if s != prevSocket {
			cpuCnt = threadsPerCore
			prevSocket = s
		} else if cpuCnt >= capPerSocket {
			coreBits.Clear(c)
			continue
		} else {
			cpuCnt += threadsPerCore
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
