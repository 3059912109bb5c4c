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
	"github.com/gorse-io/movierec/common/floats"
	"github.com/gorse-io/movierec/common/parallel"
)

// Matrix is a read-only square similarity matrix addressed by row position. Queries only
// depend on this interface, so a sparse or approximate structure may replace the dense
// one for large catalogs.
type Matrix interface {
	Len() int
	At(i, j int) float32
	// Row returns the similarities between row i and every row. Callers must not modify it.
	Row(i int) []float32
}

// DenseMatrix stores all n² similarities in row-major order.
type DenseMatrix struct {
	n    int
	data []float32
}

func NewDenseMatrix(n int) *DenseMatrix {
	return &DenseMatrix{n: n, data: make([]float32, n*n)}
}

func (m *DenseMatrix) Len() int {
	return m.n
}

func (m *DenseMatrix) At(i, j int) float32 {
	return m.data[i*m.n+j]
}

func (m *DenseMatrix) Row(i int) []float32 {
	return m.data[i*m.n : (i+1)*m.n : (i+1)*m.n]
}

// NewCosineMatrix computes the pairwise cosine similarity of vectors. Only the upper
// triangle is computed and mirrored, so the result is exactly symmetric. A zero vector is
// similar to nothing, itself included.
func NewCosineMatrix(vectors [][]float32, numJobs int) *DenseMatrix {
	n := len(vectors)
	m := NewDenseMatrix(n)
	norms := make([]float32, n)
	parallel.For(n, numJobs, func(i int) {
		norms[i] = floats.Norm(vectors[i])
	})
	parallel.For(n, numJobs, func(i int) {
		if norms[i] == 0 {
			return
		}
		for j := i; j < n; j++ {
			if norms[j] == 0 {
				continue
			}
			s := floats.Cosine(vectors[i], vectors[j])
			m.data[i*n+j] = s
			m.data[j*n+i] = s
		}
	})
	return m
}
