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

package dataset

// Dict assigns dense ids to keys in first-seen order and counts how many times each key
// has been added.
type Dict[K comparable] struct {
	ki  map[K]int
	ik  []K
	cnt []int
}

func NewDict[K comparable]() *Dict[K] {
	return &Dict[K]{ki: map[K]int{}}
}

func (d *Dict[K]) Count() int {
	return len(d.ik)
}

// Add returns the id of a key, assigning a new one if the key is unseen, and increases
// its frequency.
func (d *Dict[K]) Add(k K) int {
	if y, ok := d.ki[k]; ok {
		d.cnt[y]++
		return y
	}
	y := len(d.ik)
	d.ki[k] = y
	d.ik = append(d.ik, k)
	d.cnt = append(d.cnt, 1)
	return y
}

func (d *Dict[K]) Id(k K) (int, bool) {
	y, ok := d.ki[k]
	return y, ok
}

func (d *Dict[K]) Key(id int) (k K, ok bool) {
	if id < 0 || id >= len(d.ik) {
		return k, false
	}
	return d.ik[id], true
}

func (d *Dict[K]) Freq(id int) int {
	if id < 0 || id >= len(d.cnt) {
		return 0
	}
	return d.cnt[id]
}
