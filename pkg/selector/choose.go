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
	"github.com/schedcore/serial-select/pkg/placerr"
)

// ChooseNodes is the knapsack de-escalation step between GetResUsage and
// EvalNodes: it drops candidates that cannot satisfy max_cpus, tries the
// full remaining set, and, failing that, retries with progressively
// higher cpu-count thresholds excluded, in ascending order, taking the
// first threshold that yields a feasible node.
func ChooseNodes(ctx *cluster.Context, job *domain.Job, candidates *bitmap.Bitmap, cpuCnt []int, nodeCount int) error {
	for n := 0; n < ctx.NodeCount(); n++ {
		if !candidates.Test(n) {
			continue
		}
		dropped := cpuCnt[n] < 1
		if !dropped && !job.Shared {
			if maxCpus, ok := job.MaxCpus.Get(); ok && maxCpus < cpuCnt[n] {
				dropped = true
			}
		}
		if dropped {
			if job.IsRequiredNode(n) {
				return placerr.New(placerr.RequiredNodeUnusable, "required node %s cannot satisfy the request", ctx.CoreMap.Node(n).Name)
			}
			candidates.Clear(n)
		}
	}

	saved := candidates.Clone()
	if err := EvalNodes(ctx, job, candidates, cpuCnt, nodeCount); err == nil {
		return nil
	}

	maxCpu := 0
	for n := 0; n < ctx.NodeCount(); n++ {
		if saved.Test(n) && cpuCnt[n] > maxCpu {
			maxCpu = cpuCnt[n]
		}
	}

	for threshold := 1; threshold < maxCpu; threshold++ {
		candidates.CopyFrom(saved)
		cleared := 0
		for n := 0; n < ctx.NodeCount(); n++ {
			if !saved.Test(n) || job.IsRequiredNode(n) {
				continue
			}
			if cpuCnt[n] > 0 && cpuCnt[n] <= threshold {
				candidates.Clear(n)
				cleared++
			}
		}
		if cleared == 0 {
			continue
		}
		if err := EvalNodes(ctx, job, candidates, cpuCnt, nodeCount); err == nil {
			return nil
		}
	}

	return placerr.New(placerr.Infeasible, "no threshold de-escalation produced a feasible node")
}
