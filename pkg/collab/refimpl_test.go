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

package collab

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/schedcore/serial-select/pkg/coremap"
	"github.com/schedcore/serial-select/pkg/domain"
)

func TestCountingGresTesterRejectsShortfall(t *testing.T) {
	g := NewCountingGresTester()
	jobGres := []domain.GresSpec{{Name: "gpu", Count: 2}}
	nodeGres := []domain.GresSpec{{Name: "gpu", Count: 1}}

	cpus, err := g.Test(jobGres, nodeGres, true, nil, 0, 3, 7, "node0")
	assert.NoError(t, err)
	assert.Equal(t, 0, cpus)
}

func TestCountingGresTesterAcceptsSufficient(t *testing.T) {
	g := NewCountingGresTester()
	jobGres := []domain.GresSpec{{Name: "gpu", Count: 1}}
	nodeGres := []domain.GresSpec{{Name: "gpu", Count: 4}}

	cpus, err := g.Test(jobGres, nodeGres, true, nil, 0, 3, 7, "node0")
	assert.NoError(t, err)
	assert.Equal(t, 4, cpus)
}

func TestSimpleJobResourcesBuilderRejectsBadIndex(t *testing.T) {
	b := SimpleJobResourcesBuilder{}
	res := &domain.JobResources{NodeIndex: 5}
	err := b.Build(res, []coremap.NodeTopology{{Name: "n0", Sockets: 1, CoresPerSocket: 1, ThreadsPerCore: 1}}, false)
	assert.Error(t, err)
}

func TestSequentialTaskDistributorRejectsNegativeTasks(t *testing.T) {
	d := SequentialTaskDistributor{}
	err := d.Distribute(&domain.Job{ID: 1, NumTasks: -1}, 0)
	assert.Error(t, err)
}

func TestLoggingNodeDrainerSucceeds(t *testing.T) {
	d := NewLoggingNodeDrainer()
	err := d.Drain("node0", "core index overflow", 1000)
	assert.NoError(t, err)
}
