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

package coremap

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/schedcore/serial-select/pkg/bitmap"
)

func twoNodeCluster() []NodeTopology {
	return []NodeTopology{
		{Name: "node0", Sockets: 2, CoresPerSocket: 2, ThreadsPerCore: 2, RealMemory: 8000},
		{Name: "node1", Sockets: 1, CoresPerSocket: 4, ThreadsPerCore: 1, RealMemory: 4000},
	}
}

func TestOffsetsAndGeometry(t *testing.T) {
	cm, err := New(twoNodeCluster())
	assert.NoError(t, err)

	assert.Equal(t, 0, cm.Offset(0))
	assert.Equal(t, 4, cm.Offset(1)) // node0 has 2*2=4 cores
	assert.Equal(t, 8, cm.Offset(2)) // node1 has 1*4=4 cores
	assert.Equal(t, 8, cm.TotalCores())

	assert.Equal(t, 8, cm.CPUsOnNode(0)) // 2*2*2 threads
	assert.Equal(t, 4, cm.CPUsOnNode(1)) // 1*4*1
}

func TestSocketOfAndNodeOf(t *testing.T) {
	cm, err := New(twoNodeCluster())
	assert.NoError(t, err)

	assert.Equal(t, 0, cm.NodeOf(0))
	assert.Equal(t, 0, cm.NodeOf(3))
	assert.Equal(t, 1, cm.NodeOf(4))
	assert.Equal(t, -1, cm.NodeOf(8))
	assert.Equal(t, -1, cm.NodeOf(-1))

	assert.Equal(t, 0, cm.SocketOf(0))
	assert.Equal(t, 0, cm.SocketOf(1))
	assert.Equal(t, 1, cm.SocketOf(2))
	assert.Equal(t, 1, cm.SocketOf(3))
}

func TestMakeCoreBitmap(t *testing.T) {
	cm, err := New(twoNodeCluster())
	assert.NoError(t, err)

	nodeBits := bitmap.New(2)
	nodeBits.Set(1)

	cores := cm.MakeCoreBitmap(nodeBits)
	assert.Equal(t, 4, cores.Count())
	assert.Equal(t, "4-7", cores.String())
}

func TestRejectsBadGeometry(t *testing.T) {
	_, err := New([]NodeTopology{{Name: "broken", Sockets: 0, CoresPerSocket: 1, ThreadsPerCore: 1}})
	assert.Error(t, err)
}
