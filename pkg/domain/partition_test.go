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

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/schedcore/serial-select/pkg/bitmap"
)

func rowWithBits(n int, bits ...int) *Row {
	b := bitmap.New(n)
	for _, i := range bits {
		b.Set(i)
	}
	return &Row{Cores: b}
}

func TestSortRowsDescendingOccupancy(t *testing.T) {
	p := &Partition{
		Name: "batch",
		Rows: []*Row{
			rowWithBits(10, 0),
			rowWithBits(10, 0, 1, 2, 3),
			rowWithBits(10, 0, 1),
		},
	}
	SortRows(p)

	assert.Equal(t, 4, p.Rows[0].Cores.Count())
	assert.Equal(t, 2, p.Rows[1].Cores.Count())
	assert.Equal(t, 1, p.Rows[2].Cores.Count())
}
