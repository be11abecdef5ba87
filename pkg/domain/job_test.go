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

func TestOptional(t *testing.T) {
	none := None[int]()
	assert.False(t, none.IsSet())
	assert.Equal(t, 42, none.OrElse(42))

	some := Some(7)
	assert.True(t, some.IsSet())
	v, ok := some.Get()
	assert.True(t, ok)
	assert.Equal(t, 7, v)
	assert.Equal(t, 7, some.OrElse(42))
}

func TestRequiredNodeHelpers(t *testing.T) {
	req := bitmap.New(4)
	req.Set(2)
	j := &Job{
		ReqNodeBitmap: req,
		ReqNodeLayout: map[int]int{2: 6},
	}

	assert.True(t, j.IsRequiredNode(2))
	assert.False(t, j.IsRequiredNode(0))

	c, ok := j.RequiredLayoutCap(2)
	assert.True(t, ok)
	assert.Equal(t, 6, c)

	_, ok = j.RequiredLayoutCap(0)
	assert.False(t, ok)
}
