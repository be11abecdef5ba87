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

// crselect runs a single placement decision against a YAML cluster
// snapshot and job description, printing the result as YAML. It is a
// one-shot CLI in the style of the teacher's avx512-load tool rather
// than a long-running daemon: one invocation, one decision, exit.
package main

import (
	"flag"
	"fmt"
	"io/ioutil"
	"os"

	"github.com/pkg/errors"
	"github.com/prometheus/common/expfmt"
	"sigs.k8s.io/yaml"

	"github.com/schedcore/serial-select/pkg/bitmap"
	"github.com/schedcore/serial-select/pkg/cluster"
	"github.com/schedcore/serial-select/pkg/crtype"
	"github.com/schedcore/serial-select/pkg/domain"
	"github.com/schedcore/serial-select/pkg/ladder"
	"github.com/schedcore/serial-select/pkg/metrics"
	// Registers the ladder step/latency collector with pkg/metrics.
	_ "github.com/schedcore/serial-select/pkg/metrics/register"
	// Registers the --version flag.
	_ "github.com/schedcore/serial-select/pkg/version"
)

type jobSpec struct {
	ID            uint32            `json:"id"`
	PartitionName string            `json:"partitionName"`
	CpusPerTask   int               `json:"cpusPerTask"`
	NtasksPerNode *int              `json:"ntasksPerNode,omitempty"`
	PnMinCpus     int               `json:"pnMinCpus"`
	PnMinMemory   uint64            `json:"pnMinMemory"`
	MemPerCPU     bool              `json:"memPerCpu"`
	NumTasks      int               `json:"numTasks"`
	MinCpus       int               `json:"minCpus"`
	Shared        bool              `json:"shared"`
	Overcommit    bool              `json:"overcommit"`
	BestSwitch    bool              `json:"bestSwitch"`
	RequiredNodes []string          `json:"requiredNodes,omitempty"`
	MC            domain.MC         `json:"mc"`
	Gres          []domain.GresSpec `json:"gres,omitempty"`
}

type requestFile struct {
	Cluster    cluster.Snapshot `json:"cluster"`
	Job        jobSpec          `json:"job"`
	Mode       string           `json:"mode"`
	JobNodeReq string           `json:"jobNodeReq"`
	CRType     []string         `json:"crType"`
	Candidates []string         `json:"candidates,omitempty"`
}

func parseMode(s string) (crtype.Mode, error) {
	switch s {
	case "", "RUN_NOW":
		return crtype.RunNow, nil
	case "TEST_ONLY":
		return crtype.TestOnly, nil
	case "WILL_RUN":
		return crtype.WillRun, nil
	default:
		return 0, errors.Errorf("unknown mode %q", s)
	}
}

func parseJobNodeReq(s string) (crtype.JobNodeReq, error) {
	switch s {
	case "", "AVAILABLE":
		return crtype.ReqAvailable, nil
	case "ONE_ROW":
		return crtype.ReqOneRow, nil
	default:
		return 0, errors.Errorf("unknown job node requirement %q", s)
	}
}

func parseCRType(names []string) (crtype.CR, error) {
	var cr crtype.CR
	for _, n := range names {
		switch n {
		case "CORE":
			cr |= crtype.CRCore
		case "SOCKET":
			cr |= crtype.CRSocket
		case "CPU":
			cr |= crtype.CRCpu
		case "MEMORY":
			cr |= crtype.CRMemory
		default:
			return 0, errors.Errorf("unknown consumable-resource type %q", n)
		}
	}
	return cr, nil
}

func buildJob(ctx *cluster.Context, js jobSpec) (*domain.Job, error) {
	job := &domain.Job{
		ID:            js.ID,
		PartitionName: js.PartitionName,
		CpusPerTask:   js.CpusPerTask,
		PnMinCpus:     js.PnMinCpus,
		PnMinMemory:   js.PnMinMemory,
		MemPerCPU:     js.MemPerCPU,
		NumTasks:      js.NumTasks,
		MinCpus:       js.MinCpus,
		Shared:        js.Shared,
		Overcommit:    js.Overcommit,
		BestSwitch:    js.BestSwitch,
		MC:            js.MC,
		GresList:      js.Gres,
	}
	if js.NtasksPerNode != nil {
		job.NtasksPerNode = domain.Some(*js.NtasksPerNode)
	} else {
		job.NtasksPerNode = domain.None[int]()
	}

	if len(js.RequiredNodes) > 0 {
		req := bitmap.New(ctx.NodeCount())
		for _, name := range js.RequiredNodes {
			idx := -1
			for n := 0; n < ctx.NodeCount(); n++ {
				if ctx.CoreMap.Node(n).Name == name {
					idx = n
					break
				}
			}
			if idx < 0 {
				return nil, errors.Errorf("required node %q not found in cluster snapshot", name)
			}
			req.Set(idx)
		}
		job.ReqNodeBitmap = req
	}

	return job, nil
}

func run() error {
	path := flag.String("f", "", "path to a YAML request file (cluster snapshot + job)")
	printMetrics := flag.Bool("metrics", false, "print gathered Prometheus metrics to stderr after the decision")
	flag.Parse()
	if *path == "" {
		return errors.New("usage: crselect -f request.yaml")
	}

	raw, err := ioutil.ReadFile(*path)
	if err != nil {
		return errors.Wrap(err, "reading request file")
	}

	var req requestFile
	if err := yaml.Unmarshal(raw, &req); err != nil {
		return errors.Wrap(err, "parsing request file")
	}

	ctx, err := req.Cluster.Into()
	if err != nil {
		return errors.Wrap(err, "building cluster context")
	}

	mode, err := parseMode(req.Mode)
	if err != nil {
		return err
	}
	jobNodeReq, err := parseJobNodeReq(req.JobNodeReq)
	if err != nil {
		return err
	}
	crType, err := parseCRType(req.CRType)
	if err != nil {
		return err
	}

	job, err := buildJob(ctx, req.Job)
	if err != nil {
		return err
	}

	candidates := bitmap.New(ctx.NodeCount())
	if len(req.Candidates) == 0 {
		candidates.SetRange(0, ctx.NodeCount()-1)
	} else {
		for _, name := range req.Candidates {
			for n := 0; n < ctx.NodeCount(); n++ {
				if ctx.CoreMap.Node(n).Name == name {
					candidates.Set(n)
				}
			}
		}
	}

	runner := ladder.NewRunner()
	result, err := runner.Run(ctx, job, candidates, mode, crType, jobNodeReq, ctx.NodeCount())
	if err != nil {
		return errors.Wrap(err, "placement failed")
	}

	out, err := yaml.Marshal(result)
	if err != nil {
		return errors.Wrap(err, "rendering result")
	}
	fmt.Print(string(out))

	if *printMetrics {
		if err := dumpMetrics(); err != nil {
			return errors.Wrap(err, "gathering metrics")
		}
	}
	return nil
}

// dumpMetrics gathers every collector registered with pkg/metrics —
// including the ladder's step/outcome and latency counters — and
// writes them to stderr in Prometheus text exposition format, the same
// way the teacher's gatherer command renders its periodic scrape.
func dumpMetrics() error {
	g, err := metrics.NewMetricGatherer()
	if err != nil {
		return err
	}
	mfs, err := g.Gather()
	if err != nil {
		return err
	}
	for _, mf := range mfs {
		if _, err := expfmt.MetricFamilyToText(os.Stderr, mf); err != nil {
			return err
		}
	}
	return nil
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "crselect:", err)
		os.Exit(1)
	}
}
