// Copyright 2026 gorse Project Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package logics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDenseMatrix(t *testing.T) {
	m := NewDenseMatrix(3)
	assert.Equal(t, 3, m.Len())
	m.data[1*3+2] = 0.5
	assert.Equal(t, float32(0.5), m.At(1, 2))
	assert.Equal(t, []float32{0, 0, 0.5}, m.Row(1))
	assert.Len(t, m.Row(2), 3)
}

func TestNewCosineMatrix(t *testing.T) {
	vectors := [][]float32{
		{1, 1, 0, 0},
		{1, 1, 0, 0},
		{0, 0, 1, 0},
		{0, 0, 0, 0},
		{1, 0, 1, 1},
	}
	for _, numJobs := range []int{1, 4} {
		m := NewCosineMatrix(vectors, numJobs)
		assert.Equal(t, len(vectors), m.Len())
		for i := range vectors {
			for j := range vectors {
				assert.Equal(t, m.At(i, j), m.At(j, i))
			}
		}
		assert.Equal(t, float32(1), m.At(0, 0))
		assert.Equal(t, float32(1), m.At(0, 1))
		assert.Equal(t, float32(1), m.At(4, 4))
		assert.Equal(t, float32(0), m.At(0, 2))
		assert.InDelta(t, 1/math.Sqrt(6), m.At(0, 4), 1e-6)
		assert.InDelta(t, 1/math.Sqrt(3), m.At(2, 4), 1e-6)
		assert.Equal(t, []float32{0, 0, 0, 0, 0}, m.Row(3))
	}
}
