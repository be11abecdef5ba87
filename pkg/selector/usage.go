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
)

// GetResUsage computes CanJobRunOnNode for every candidate bit, leaving
// non-candidates at zero.
func GetResUsage(ctx *cluster.Context, coreBits *bitmap.Bitmap, job *domain.Job, candidates *bitmap.Bitmap, crType crtype.CR, mode crtype.Mode) ([]int, error) {
	cpuCnt := make([]int, ctx.NodeCount())
	for n := 0; n < ctx.NodeCount(); n++ {
		if !candidates.Test(n) {
			continue
		}
		cpus, err := CanJobRunOnNode(ctx, coreBits, job, n, crType, mode)
		if err != nil {
			return nil, err
		}
		cpuCnt[n] = cpus
	}
	return cpuCnt, nil
}
