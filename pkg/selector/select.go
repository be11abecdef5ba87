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

// SelectNodes orchestrates GetResUsage, required-node escalation, and
// ChooseNodes, then clears coreBits of every core belonging to a node
// other than the one winner. It returns the winning node index and its
// cpu count.
func SelectNodes(ctx *cluster.Context, coreBits *bitmap.Bitmap, job *domain.Job, candidates *bitmap.Bitmap, crType crtype.CR, mode crtype.Mode, nodeCount int) (int, int, error) {
	cpuCnt, err := GetResUsage(ctx, coreBits, job, candidates, crType, mode)
	if err != nil {
		return 0, 0, err
	}

	for n := 0; n < ctx.NodeCount(); n++ {
		if !candidates.Test(n) {
			continue
		}
		if cpuCnt[n] == 0 {
			if job.IsRequiredNode(n) {
				return 0, 0, placerr.New(placerr.RequiredNodeUnusable, "required node %s has zero cpus available", ctx.CoreMap.Node(n).Name)
			}
			candidates.Clear(n)
		}
	}

	if err := ChooseNodes(ctx, job, candidates, cpuCnt, nodeCount); err != nil {
		return 0, 0, err
	}

	winner := candidates.FirstSet()
	if winner < 0 {
		return 0, 0, placerr.New(placerr.Infeasible, "choose_nodes reported success with no candidate set")
	}

	for n := 0; n < ctx.NodeCount(); n++ {
		if n != winner {
			clearNodeRange(ctx, coreBits, n)
		}
	}

	return winner, cpuCnt[winner], nil
}
