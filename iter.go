// Copyright 2024 The Cockroach Authors
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

package arenalist

import "fmt"

// All calls yield sequentially for each value in the list, in traversal
// order from head to tail. If yield returns false, iteration stops. The
// list must not be mutated during the iteration.
//
// The signature conforms to the range-over-function form, so on go1.23 and
// later callers can write:
//
//	for v := range l.All {
//		...
//	}
func (l *List[V]) All(yield func(v V) bool) {
	for i := l.head; i != nilIdx; {
		s := &l.slots[i]
		if !s.occupied {
			panic(fmt.Sprintf("arenalist: corrupted list: free slot %d reached from head\n%s",
				i, l.debugString()))
		}
		if !yield(s.value) {
			return
		}
		i = s.next
	}
}

// Drain removes every value from the list in traversal order, calling yield
// for each. Each visited slot is freed before its value is yielded, and
// each removal bumps the list generation, so all handles go stale exactly
// as they would under Remove. After a full drain the list is empty and may
// be reused. If yield returns false the drain stops, leaving a consistent
// list holding the unvisited suffix.
func (l *List[V]) Drain(yield func(v V) bool) {
	for l.head != nilIdx {
		i := l.head
		s := &l.slots[i]
		if !s.occupied {
			panic(fmt.Sprintf("arenalist: corrupted list: free slot %d reached from head\n%s",
				i, l.debugString()))
		}

		next := s.next
		v := s.value
		*s = Slot[V]{next: l.free}
		l.free = i
		l.head = next
		if next != nilIdx {
			l.slots[next].prev = nilIdx
		} else {
			l.tail = nilIdx
		}
		l.gen++
		l.used--

		if !yield(v) {
			break
		}
	}
	l.checkInvariants()
}
