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

package domain

import "github.com/schedcore/serial-select/pkg/bitmap"

// MC holds the multi-core placement hints a job may supply. A zero value
// for any field means "no preference," matching the spec's reading of
// each field as an optional minimum or maximum rather than an exact
// requirement.
type MC struct {
	// CoresPerSocket is the minimum cores a contributing socket must offer.
	CoresPerSocket int
	// SocketsPerNode is the minimum number of sockets a node must contribute.
	SocketsPerNode  int
	NtasksPerCore   int
	NtasksPerSocket int
	// ThreadsPerCore caps the vpus used per core; 0 means no cap.
	ThreadsPerCore int
}

// Job is a pending job's resource request, as consumed by the placement
// core. PnMinMemory is per-cpu when MemPerCPU is set, per-node otherwise —
// the Go rendering of the original request's high-bit MEM_PER_CPU flag as
// its own field rather than a packed bit.
type Job struct {
	ID uint32

	CpusPerTask   int
	NtasksPerNode Optional[int]
	PnMinCpus     int
	PnMinMemory   uint64
	MemPerCPU     bool
	NumTasks      int
	MinCpus       int
	MaxCpus       Optional[int]
	Shared        bool
	Overcommit    bool

	MC MC

	// ReqNodeBitmap names nodes that MUST appear in the final placement.
	ReqNodeBitmap *bitmap.Bitmap
	// ReqNodeLayout optionally caps cpus for a required node, keyed by
	// node index. A node absent from the map has no per-node cap.
	ReqNodeLayout map[int]int

	GresList []GresSpec

	// BestSwitch is the precomputed topology-locality verdict the ladder
	// consults at tests 0 and 1 only.
	BestSwitch bool

	// PartitionName is the job's own partition, found by the ladder via
	// a linear scan of the cluster's partitions.
	PartitionName string
}

// IsRequiredNode reports whether node index n is in the job's required set.
func (j *Job) IsRequiredNode(n int) bool {
	return j.ReqNodeBitmap != nil && j.ReqNodeBitmap.Test(n)
}

// RequiredLayoutCap returns the per-node cpu cap for a required node, if any.
func (j *Job) RequiredLayoutCap(n int) (int, bool) {
	if j.ReqNodeLayout == nil {
		return 0, false
	}
	c, ok := j.ReqNodeLayout[n]
	return c, ok
}
