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

import "github.com/schedcore/serial-select/pkg/crtype"

// NodeUsage is the mutable occupancy record for one node. Topology
// (sockets, cores, threads, real memory) lives in coremap.NodeTopology
// instead, since it never changes across a placement call while usage
// does, between calls, as jobs are admitted or completed.
type NodeUsage struct {
	AllocMemory uint64
	NodeState   crtype.NodeState
	Gres        []GresSpec
}
