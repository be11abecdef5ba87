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

// JobResources is the finalized product of a successful placement: the
// selected node (serial placement admits exactly one), its per-node cpu
// count, the cluster-wide core bitmap of the cores allocated to it, and,
// when CRMemory gates the placement, the memory charged to it.
type JobResources struct {
	NodeName        string
	NodeIndex       int
	Cpus            int
	TotalCpus       int
	Ncpus           int
	CoreBitmap      *bitmap.Bitmap
	MemoryAllocated uint64
}
