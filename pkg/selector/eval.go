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

// EvalNodes is the serial core of the selector: it ORs the job's
// required nodes into candidates, then keeps only the lowest-index
// candidate with a nonzero cpu count, clearing every other bit. A serial
// placement never keeps more than one node.
func EvalNodes(ctx *cluster.Context, job *domain.Job, candidates *bitmap.Bitmap, cpuCnt []int, nodeCount int) error {
	if nodeCount != ctx.NodeCount() {
		return placerr.New(placerr.InconsistentTopology, "node_count %d disagrees with cluster node count %d", nodeCount, ctx.NodeCount())
	}

	if job.ReqNodeBitmap != nil {
		candidates.Or(job.ReqNodeBitmap)
	}

	winner := -1
	for n := 0; n < ctx.NodeCount(); n++ {
		if candidates.Test(n) && cpuCnt[n] > 0 {
			winner = n
			break
		}
	}
	if winner < 0 {
		return placerr.New(placerr.Infeasible, "no candidate node has a nonzero cpu count")
	}

	for n := 0; n < ctx.NodeCount(); n++ {
		if n != winner {
			candidates.Clear(n)
		}
	}
	return nil
}
