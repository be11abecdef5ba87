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
	"sort"

	"github.com/schedcore/serial-select/pkg/bitmap"
)

// Row is one oversubscription layer of a partition: a cluster-wide core
// bitmap of the cores currently allocated at that layer.
type Row struct {
	Cores *bitmap.Bitmap
}

// Partition is a flat, ordered sequence of rows plus a scheduling
// priority. Partitions never form cycles; the job's own partition is
// found by a linear scan over the cluster's partition list for a name
// match.
type Partition struct {
	Name     string
	Priority int
	Rows     []*Row
}

// SortRows reorders p's rows in descending occupancy (most-full row
// first), so the row-fit search in the placement ladder tries to pack a
// job into the fullest row that still fits it, rather than spreading
// jobs thin across rows.
func SortRows(p *Partition) {
	sort.SliceStable(p.Rows, func(i, j int) bool {
		return p.Rows[i].Cores.Count() > p.Rows[j].Cores.Count()
	})
}
