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

// Package coremap indexes a cluster's node topology into a single
// cluster-wide core numbering: offset(n) gives the first core index for
// node n, and offset(n+1)-offset(n) equals sockets(n)*cores(n) (physical
// cores, not threads). It is a pure, read-only lookup built once at
// cluster-init time, the Go analogue of the teacher's sysfs.System
// package geometry but addressed as one flat cluster core map instead of
// a single machine's /sys/devices/system/cpu tree.
package coremap

import (
	"fmt"

	"github.com/schedcore/serial-select/pkg/bitmap"
)

// NodeTopology is the immutable hardware description of one node.
type NodeTopology struct {
	Name           string
	Sockets        int
	CoresPerSocket int
	ThreadsPerCore int
	RealMemory     uint64
}

// CPUs returns the number of logical CPUs the node exposes.
func (n NodeTopology) CPUs() int {
	return n.Sockets * n.CoresPerSocket * n.ThreadsPerCore
}

// cores returns the number of physical cores (not threads) on the node.
func (n NodeTopology) cores() int {
	return n.Sockets * n.CoresPerSocket
}

// CoreMap is a read-only index over a cluster's node topology.
type CoreMap struct {
	nodes   []NodeTopology
	offsets []int // offsets[n] = first cluster-wide core index of node n; len == len(nodes)+1
}

// New validates and indexes a node topology slice. Every node must have at
// least one socket, one core per socket, and one thread per core.
func New(nodes []NodeTopology) (*CoreMap, error) {
	offsets := make([]int, len(nodes)+1)
	total := 0
	for i, n := range nodes {
		if n.Sockets < 1 || n.CoresPerSocket < 1 || n.ThreadsPerCore < 1 {
			return nil, fmt.Errorf("coremap: node %q has invalid geometry sockets=%d cores=%d threads=%d",
				n.Name, n.Sockets, n.CoresPerSocket, n.ThreadsPerCore)
		}
		offsets[i] = total
		total += n.cores()
	}
	offsets[len(nodes)] = total
	return &CoreMap{nodes: nodes, offsets: offsets}, nil
}

// NumNodes returns the number of nodes indexed.
func (c *CoreMap) NumNodes() int {
	return len(c.nodes)
}

// TotalCores returns the total number of physical cores across the cluster,
// i.e. Offset(NumNodes()).
func (c *CoreMap) TotalCores() int {
	return c.offsets[len(c.offsets)-1]
}

// Offset returns the first cluster-wide core index of node n. Offset(n+1)
// is valid even for n == NumNodes()-1 and yields the exclusive end.
func (c *CoreMap) Offset(n int) int {
	return c.offsets[n]
}

// Node returns the topology of node n.
func (c *CoreMap) Node(n int) NodeTopology {
	return c.nodes[n]
}

// Sockets returns the number of sockets on node n.
func (c *CoreMap) Sockets(n int) int {
	return c.nodes[n].Sockets
}

// Cores returns the number of cores per socket on node n.
func (c *CoreMap) Cores(n int) int {
	return c.nodes[n].CoresPerSocket
}

// Threads returns the number of threads per core (vpus) on node n.
func (c *CoreMap) Threads(n int) int {
	return c.nodes[n].ThreadsPerCore
}

// RealMemory returns the real memory of node n.
func (c *CoreMap) RealMemory(n int) uint64 {
	return c.nodes[n].RealMemory
}

// CPUsOnNode returns sockets(n)*cores(n)*threads(n).
func (c *CoreMap) CPUsOnNode(n int) int {
	return c.nodes[n].CPUs()
}

// SocketOf returns the socket index a cluster-wide core index belongs to,
// or -1 if the index names no node.
func (c *CoreMap) SocketOf(coreIdx int) int {
	n := c.NodeOf(coreIdx)
	if n < 0 {
		return -1
	}
	localCore := coreIdx - c.offsets[n]
	return localCore / c.nodes[n].CoresPerSocket
}

// NodeOf returns the node index owning cluster-wide core index coreIdx, or
// -1 if out of range.
func (c *CoreMap) NodeOf(coreIdx int) int {
	if coreIdx < 0 || coreIdx >= c.TotalCores() {
		return -1
	}
	// Small cluster core counts in practice; linear scan keeps this
	// package dependency-free and trivially correct. Binary search over
	// offsets would be the next step if profiling ever showed this hot.
	for n := 0; n < len(c.nodes); n++ {
		if coreIdx < c.offsets[n+1] {
			return n
		}
	}
	return -1
}

// MakeCoreBitmap returns a new cluster-wide bitmap with every core of every
// node selected in nodeBits set.
func (c *CoreMap) MakeCoreBitmap(nodeBits *bitmap.Bitmap) *bitmap.Bitmap {
	out := bitmap.New(c.TotalCores())
	for n := 0; n < len(c.nodes); n++ {
		if nodeBits.Test(n) {
			out.SetRange(c.offsets[n], c.offsets[n+1]-1)
		}
	}
	return out
}
