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

// Package cluster holds the Context value threaded through every
// placement call, replacing the select_node_record[]/node_record_count-
// style process-wide globals with one explicit value. Snapshot is its
// YAML-serializable counterpart, used by fixtures and the CLI.
package cluster

import (
	"fmt"

	"github.com/hashicorp/go-multierror"

	"github.com/schedcore/serial-select/pkg/bitmap"
	"github.com/schedcore/serial-select/pkg/collab"
	"github.com/schedcore/serial-select/pkg/coremap"
	"github.com/schedcore/serial-select/pkg/crtype"
	"github.com/schedcore/serial-select/pkg/domain"
)

// GresSnapshot is the YAML rendering of domain.GresSpec.
type GresSnapshot struct {
	Name  string `json:"name"`
	Count uint64 `json:"count"`
}

// NodeSnapshot is the YAML rendering of one node's topology and usage.
type NodeSnapshot struct {
	Name           string         `json:"name"`
	Sockets        int            `json:"sockets"`
	CoresPerSocket int            `json:"coresPerSocket"`
	ThreadsPerCore int            `json:"threadsPerCore"`
	RealMemory     uint64         `json:"realMemory"`
	AllocMemory    uint64         `json:"allocMemory"`
	NodeState      string         `json:"nodeState"` // AVAILABLE | ONE_ROW | RESERVED
	Gres           []GresSnapshot `json:"gres,omitempty"`
}

// RowSnapshot is the YAML rendering of one partition row: the
// cluster-wide core indices it has allocated.
type RowSnapshot struct {
	Cores []int `json:"cores"`
}

// PartitionSnapshot is the YAML rendering of one partition.
type PartitionSnapshot struct {
	Name     string        `json:"name"`
	Priority int           `json:"priority"`
	Rows     []RowSnapshot `json:"rows,omitempty"`
}

// Snapshot is the serializable form of a cluster's topology, occupancy,
// and partitions, as loaded from a YAML fixture or CLI input file.
type Snapshot struct {
	Nodes      []NodeSnapshot      `json:"nodes"`
	Partitions []PartitionSnapshot `json:"partitions"`
}

func parseNodeState(s string) (crtype.NodeState, error) {
	switch s {
	case "", "AVAILABLE":
		return crtype.NodeAvailable, nil
	case "ONE_ROW":
		return crtype.NodeOneRow, nil
	case "RESERVED":
		return crtype.NodeReserved, nil
	default:
		return 0, fmt.Errorf("unknown node state %q", s)
	}
}

// Validate reports every structural problem found in the snapshot: bad
// node geometry, unknown node states, row core indices outside the
// cluster's core range, and duplicate partition names. It aggregates all
// of them instead of stopping at the first, so a fixture author sees the
// whole list in one pass.
func (s *Snapshot) Validate() error {
	var errs *multierror.Error

	total := 0
	for _, n := range s.Nodes {
		if n.Sockets < 1 || n.CoresPerSocket < 1 || n.ThreadsPerCore < 1 {
			errs = multierror.Append(errs, fmt.Errorf("node %q: invalid geometry sockets=%d coresPerSocket=%d threadsPerCore=%d",
				n.Name, n.Sockets, n.CoresPerSocket, n.ThreadsPerCore))
		}
		if _, err := parseNodeState(n.NodeState); err != nil {
			errs = multierror.Append(errs, fmt.Errorf("node %q: %w", n.Name, err))
		}
		total += n.Sockets * n.CoresPerSocket
	}

	seen := map[string]bool{}
	for _, p := range s.Partitions {
		if seen[p.Name] {
			errs = multierror.Append(errs, fmt.Errorf("partition %q declared more than once", p.Name))
		}
		seen[p.Name] = true
		for ri, row := range p.Rows {
			for _, c := range row.Cores {
				if c < 0 || c >= total {
					errs = multierror.Append(errs, fmt.Errorf("partition %q row %d: core index %d out of range [0,%d)", p.Name, ri, c, total))
				}
			}
		}
	}

	return errs.ErrorOrNil()
}

// Into validates the snapshot and builds a live Context from it, wiring
// the reference collaborator implementations. Callers wanting real GRES,
// job-resources, distribution, or drain integrations replace those
// fields on the returned Context before use.
func (s *Snapshot) Into() (*Context, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	nodes := make([]coremap.NodeTopology, len(s.Nodes))
	usage := make([]domain.NodeUsage, len(s.Nodes))
	for i, n := range s.Nodes {
		nodes[i] = coremap.NodeTopology{
			Name:           n.Name,
			Sockets:        n.Sockets,
			CoresPerSocket: n.CoresPerSocket,
			ThreadsPerCore: n.ThreadsPerCore,
			RealMemory:     n.RealMemory,
		}
		state, _ := parseNodeState(n.NodeState) // already validated
		gres := make([]domain.GresSpec, len(n.Gres))
		for j, g := range n.Gres {
			gres[j] = domain.GresSpec{Name: g.Name, Count: g.Count}
		}
		usage[i] = domain.NodeUsage{AllocMemory: n.AllocMemory, NodeState: state, Gres: gres}
	}

	cm, err := coremap.New(nodes)
	if err != nil {
		return nil, err
	}

	partitions := make([]*domain.Partition, len(s.Partitions))
	for i, p := range s.Partitions {
		rows := make([]*domain.Row, len(p.Rows))
		for ri, rs := range p.Rows {
			b := bitmap.New(cm.TotalCores())
			for _, c := range rs.Cores {
				b.Set(c)
			}
			rows[ri] = &domain.Row{Cores: b}
		}
		partitions[i] = &domain.Partition{Name: p.Name, Priority: p.Priority, Rows: rows}
	}

	return &Context{
		CoreMap:    cm,
		Usage:      usage,
		Partitions: partitions,
		Gres:       collab.NewCountingGresTester(),
		Builder:    collab.SimpleJobResourcesBuilder{},
		Dist:       collab.SequentialTaskDistributor{},
		Drainer:    collab.NewLoggingNodeDrainer(),
	}, nil
}
