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

// Package collab declares the contracts the placement core treats as
// external collaborators: GRES feasibility, job-resources construction,
// task distribution, and node drain. The core never implements these
// itself; it only calls through the interfaces here, so a cluster
// manager can plug in its real GRES plugin, job-resources builder, and
// so on without the core knowing anything beyond these four contracts.
package collab

import (
	"github.com/schedcore/serial-select/pkg/bitmap"
	"github.com/schedcore/serial-select/pkg/coremap"
	"github.com/schedcore/serial-select/pkg/crtype"
	"github.com/schedcore/serial-select/pkg/domain"
)

// GresTester answers whether a node's generic resources satisfy a job's
// request, and, when given a real core map, may narrow it to the cores
// GRES affinity permits. A zero return rejects the node.
type GresTester interface {
	Test(jobGres, nodeGres []domain.GresSpec, testOnly bool, coreMap *bitmap.Bitmap, coreLo, coreHi int, jobID uint32, nodeName string) (cpuCount int, err error)
}

// JobResourcesBuilder fills in the hardware geometry of the selected
// nodes once the core has decided on a placement.
type JobResourcesBuilder interface {
	Build(res *domain.JobResources, nodes []coremap.NodeTopology, fastSchedule bool) error
}

// TaskDistributor spreads a job's tasks across its already-chosen core
// bitmap. Failure rolls the placement back.
type TaskDistributor interface {
	Distribute(job *domain.Job, crType crtype.CR) error
}

// NodeDrainer is the side channel used when the core detects an
// inconsistency it cannot recover from on its own (an overflowing core
// index during finalization).
type NodeDrainer interface {
	Drain(name, reason string, actorUID uint32) error
}
