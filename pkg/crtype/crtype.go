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

// Package crtype defines the small closed enumerations the placement core
// switches on: the consumable-resource granularity flag set, the node's
// sharing state, and the stance a job takes on sharing. These are modeled
// as explicit Go types with String() methods and exhaustive switches at
// every consumption site, never as raw ints or strings, matching the
// AllocFlag bitset in the teacher's cpuallocator package.
package crtype

import "fmt"

// CR is the consumable-resource granularity flag set. Flags combine with
// bitwise or; CRMemory can be observed alone for memory-only scheduling.
type CR uint

const (
	// CRCore schedules at core granularity.
	CRCore CR = 1 << iota
	// CRSocket schedules at socket granularity.
	CRSocket
	// CRCpu schedules at cpu/thread granularity.
	CRCpu
	// CRMemory additionally gates and clamps on memory availability.
	CRMemory
)

// Has reports whether every bit of flag is set in cr.
func (cr CR) Has(flag CR) bool {
	return cr&flag == flag
}

func (cr CR) String() string {
	if cr == 0 {
		return "none"
	}
	parts := []string{}
	if cr.Has(CRCore) {
		parts = append(parts, "core")
	}
	if cr.Has(CRSocket) {
		parts = append(parts, "socket")
	}
	if cr.Has(CRCpu) {
		parts = append(parts, "cpu")
	}
	if cr.Has(CRMemory) {
		parts = append(parts, "memory")
	}
	out := ""
	for i, p := range parts {
		if i > 0 {
			out += "|"
		}
		out += p
	}
	return out
}

// NodeState is the sharing/exclusivity state of a node, as tracked by the
// occupancy snapshot.
type NodeState int

const (
	// NodeAvailable nodes may be shared, subject to partition policy.
	NodeAvailable NodeState = iota
	// NodeOneRow nodes have at least one "no-share" job running.
	NodeOneRow
	// NodeReserved nodes are held for exclusive use.
	NodeReserved
)

func (s NodeState) String() string {
	switch s {
	case NodeAvailable:
		return "AVAILABLE"
	case NodeOneRow:
		return "ONE_ROW"
	case NodeReserved:
		return "RESERVED"
	default:
		return fmt.Sprintf("NodeState(%d)", int(s))
	}
}

// JobNodeReq is the sharing stance a job takes toward the nodes it lands on.
type JobNodeReq int

const (
	// ReqAvailable jobs may share a node subject to partition policy.
	ReqAvailable JobNodeReq = iota
	// ReqOneRow jobs may not share a node with another job.
	ReqOneRow
	// ReqReserved jobs demand an entirely idle node.
	ReqReserved
)

func (r JobNodeReq) String() string {
	switch r {
	case ReqAvailable:
		return "AVAILABLE"
	case ReqOneRow:
		return "ONE_ROW"
	case ReqReserved:
		return "RESERVED"
	default:
		return fmt.Sprintf("JobNodeReq(%d)", int(r))
	}
}

// Mode is the placement call mode.
type Mode int

const (
	// RunNow materializes the allocation on success.
	RunNow Mode = iota
	// TestOnly reports feasibility without allocating.
	TestOnly
	// WillRun reports feasibility and sets TotalCpus to 1, without
	// materializing an allocation.
	WillRun
)

func (m Mode) String() string {
	switch m {
	case RunNow:
		return "RUN_NOW"
	case TestOnly:
		return "TEST_ONLY"
	case WillRun:
		return "WILL_RUN"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}
