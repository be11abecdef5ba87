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

package bitmap

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func TestSetClearTest(t *testing.T) {
	b := New(130) // spans three words
	for _, i := range []int{0, 63, 64, 65, 129} {
		b.Set(i)
	}
	for _, i := range []int{0, 63, 64, 65, 129} {
		assert.True(t, b.Test(i), "bit %d should be set", i)
	}
	assert.False(t, b.Test(1))
	assert.Equal(t, 5, b.Count())

	b.Clear(64)
	assert.False(t, b.Test(64))
	assert.Equal(t, 4, b.Count())
}

func TestRangeOpsCrossWordBoundary(t *testing.T) {
	b := New(200)
	b.SetRange(60, 70)
	assert.Equal(t, 11, b.CountRange(0, 199))
	for i := 60; i <= 70; i++ {
		assert.True(t, b.Test(i))
	}
	assert.False(t, b.Test(59))
	assert.False(t, b.Test(71))

	b.ClearRange(65, 200) // hi beyond nbits is clamped
	assert.Equal(t, 5, b.Count())
}

func TestBooleanAlgebra(t *testing.T) {
	a := New(8)
	a.SetRange(0, 3)
	o := New(8)
	o.SetRange(2, 5)

	and := a.Clone().And(o)
	assert.Equal(t, "2-3", and.String())

	or := a.Clone().Or(o)
	assert.Equal(t, "0-5", or.String())

	andNot := a.Clone().AndNot(o)
	assert.Equal(t, "0-1", andNot.String())
}

func TestEqualsAndClone(t *testing.T) {
	a := New(16)
	a.SetRange(1, 4)
	b := a.Clone()
	assert.True(t, a.Equals(b))

	b.Clear(2)
	assert.False(t, a.Equals(b))
	if diff := cmp.Diff(a.String(), "1-4"); diff != "" {
		t.Errorf("unexpected string (-want +got):\n%s", diff)
	}
}

func TestFirstSetAndIsEmpty(t *testing.T) {
	b := New(64)
	assert.True(t, b.IsEmpty())
	assert.Equal(t, -1, b.FirstSet())

	b.Set(40)
	assert.False(t, b.IsEmpty())
	assert.Equal(t, 40, b.FirstSet())
}

func TestStringRangeCompression(t *testing.T) {
	b := New(20)
	for _, i := range []int{0, 1, 2, 5, 7, 8, 9, 19} {
		b.Set(i)
	}
	assert.Equal(t, "0-2,5,7-9,19", b.String())
}
