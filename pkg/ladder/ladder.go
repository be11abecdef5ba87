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

// Package ladder implements the five-step placement strategy that layers
// a job's request against existing allocations of higher-, equal-, and
// lower-priority partitions. It is structured as one method per rung,
// composed by Runner.Run, in the staged-pipeline style of the teacher's
// static policy Start/Sync methods.
package ladder

import (
	"time"

	logger "github.com/schedcore/serial-select/pkg/log"

	"github.com/schedcore/serial-select/pkg/bitmap"
	"github.com/schedcore/serial-select/pkg/cluster"
	"github.com/schedcore/serial-select/pkg/crtype"
	"github.com/schedcore/serial-select/pkg/domain"
	"github.com/schedcore/serial-select/pkg/laddermetrics"
	"github.com/schedcore/serial-select/pkg/placerr"
	"github.com/schedcore/serial-select/pkg/selector"
)

const logSource = "ladder"

// Result is the outcome of a placement call.
type Result struct {
	// Success reports whether the job can run.
	Success bool
	// Resources is populated on SUCCESS for RUN_NOW and WILL_RUN; nil
	// for TEST_ONLY, which only reports feasibility.
	Resources *domain.JobResources
}

// Runner drives the placement ladder.
type Runner struct {
	Log     logger.Logger
	Metrics *laddermetrics.Recorder
}

// NewRunner returns a Runner with a default logger, reporting into the
// process-wide metrics Recorder so a single /metrics endpoint sees every
// Runner's activity.
func NewRunner() *Runner {
	return &Runner{Log: logger.NewLogger(logSource), Metrics: laddermetrics.DefaultRecorder}
}

// Run executes the placement ladder for job against candidates, the
// pre-filter candidate node set, under mode/crType/jobNodeReq, using ctx
// as the cluster snapshot.
func (r *Runner) Run(ctx *cluster.Context, job *domain.Job, candidates *bitmap.Bitmap, mode crtype.Mode, crType crtype.CR, jobNodeReq crtype.JobNodeReq, nodeCount int) (*Result, error) {
	start := time.Now()
	defer func() {
		if r.Metrics != nil {
			r.Metrics.RecordDuration(time.Since(start))
		}
	}()
	if ctx.Debug && r.Log != nil {
		defer r.Log.EnableDebug(r.Log.EnableDebug(true))
	}

	if (mode == crtype.RunNow || mode == crtype.TestOnly) && ctx.FindPartition(job.PartitionName) == nil {
		return nil, placerr.New(placerr.BadMode, "mode %s requires a partition association, job has none", mode)
	}

	origNodes := candidates.Clone()
	if err := selector.VerifyNodeState(ctx, origNodes, job, jobNodeReq, crType); err != nil {
		return nil, err
	}

	origMap := ctx.CoreMap.MakeCoreBitmap(origNodes)
	availCores := origMap.Clone()

	// Test 0: universe check.
	winner, cpus, coreBits, err := r.selectNodes(ctx, job, origNodes, availCores.Clone(), crType, mode, nodeCount)
	if err != nil || !job.BestSwitch {
		r.log("test0", false)
		return nil, placerr.New(placerr.Infeasible, "no placement satisfies the request under current occupancy")
	}
	r.log("test0", true)
	if mode == crtype.TestOnly {
		return &Result{Success: true}, nil
	}
	if crType == crtype.CRMemory {
		return r.finalize(ctx, job, mode, crType, winner, cpus, coreBits)
	}

	// Test 1: idle search across all partitions.
	freeCores := origMap.Clone()
	for _, p := range ctx.Partitions {
		for _, row := range p.Rows {
			freeCores.AndNot(row.Cores)
		}
	}
	winner, cpus, coreBits, err = r.selectNodes(ctx, job, origNodes, freeCores, crType, mode, nodeCount)
	if err == nil && job.BestSwitch {
		r.log("test1", true)
		return r.finalize(ctx, job, mode, crType, winner, cpus, coreBits)
	}
	r.log("test1", false)
	if jobNodeReq == crtype.ReqOneRow {
		return nil, placerr.New(placerr.Infeasible, "job cannot share and no idle placement was found")
	}

	// Test 2: drop higher-priority partition occupancy; becomes the new baseline.
	ownPart := ctx.FindPartition(job.PartitionName)
	freeCores = origMap.Clone()
	for _, p := range ctx.Partitions {
		if ownPart != nil && p.Priority > ownPart.Priority {
			for _, row := range p.Rows {
				freeCores.AndNot(row.Cores)
			}
		}
	}
	availCores = freeCores.Clone()
	if _, _, _, err := r.selectNodes(ctx, job, origNodes, freeCores.Clone(), crType, mode, nodeCount); err != nil {
		r.log("test2", false)
		return nil, placerr.New(placerr.Infeasible, "no placement remains after dropping higher-priority occupancy")
	}
	r.log("test2", true)

	// Test 3: same-priority exclusion.
	freeCores = availCores.Clone()
	for _, p := range ctx.Partitions {
		if ownPart != nil && p.Priority == ownPart.Priority {
			for _, row := range p.Rows {
				freeCores.AndNot(row.Cores)
			}
		}
	}
	winner, cpus, coreBits, err = r.selectNodes(ctx, job, origNodes, freeCores, crType, mode, nodeCount)
	if err == nil {
		r.log("test3", true)
		return r.finalize(ctx, job, mode, crType, winner, cpus, coreBits)
	}
	r.log("test3", false)

	// Test 4: row fit in the job's own partition.
	if ownPart == nil || len(ownPart.Rows) == 0 {
		freeCores = availCores.Clone()
		winner, cpus, coreBits, err = r.selectNodes(ctx, job, origNodes, freeCores, crType, mode, nodeCount)
		if err != nil {
			r.log("test4", false)
			return nil, placerr.New(placerr.Infeasible, "no row fit was found in the job's own partition")
		}
		r.log("test4", true)
		return r.finalize(ctx, job, mode, crType, winner, cpus, coreBits)
	}

	domain.SortRows(ownPart)
	limit := len(ownPart.Rows)
	if jobNodeReq != crtype.ReqAvailable {
		limit = 1
	}
	for i := 0; i < limit; i++ {
		freeCores = availCores.Clone()
		freeCores.AndNot(ownPart.Rows[i].Cores)
		winner, cpus, coreBits, err = r.selectNodes(ctx, job, origNodes, freeCores, crType, mode, nodeCount)
		if err == nil {
			r.log("test4", true)
			return r.finalize(ctx, job, mode, crType, winner, cpus, coreBits)
		}
	}
	r.log("test4", false)
	return nil, placerr.New(placerr.Infeasible, "no row of the job's own partition fits the request")
}

// selectNodes clones nodeCandidates so each ladder test runs against its
// own copy, and returns the winner's node index, cpu count, and the
// working core bitmap select_nodes narrowed to the winner's cores.
func (r *Runner) selectNodes(ctx *cluster.Context, job *domain.Job, nodeCandidates *bitmap.Bitmap, coreBits *bitmap.Bitmap, crType crtype.CR, mode crtype.Mode, nodeCount int) (int, int, *bitmap.Bitmap, error) {
	nodes := nodeCandidates.Clone()
	winner, cpus, err := selector.SelectNodes(ctx, coreBits, job, nodes, crType, mode, nodeCount)
	if err != nil {
		return 0, 0, nil, err
	}
	return winner, cpus, coreBits, nil
}

func (r *Runner) log(step string, ok bool) {
	if r.Metrics != nil {
		r.Metrics.RecordStep(step, ok)
	}
	if r.Log == nil || !r.Log.DebugEnabled() {
		return
	}
	if ok {
		r.Log.Debug("%s: succeeded", step)
	} else {
		r.Log.Debug("%s: failed", step)
	}
}
