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

// Package arenalist provides an order-preserving collection that stores
// values in a flat arena of recyclable slots and hands callers stable,
// generation-checked handles in place of pointers.
//
// # Design
//
// A List[V] owns a single growable array of slots. Each slot is either free
// or occupied. Free slots form a singly-linked free list threaded through
// the slots themselves. Occupied slots carry the stored value plus prev/next
// slot indices forming a doubly-linked list that defines traversal order
// independently of where a value physically lives in the array. Insertion
// recycles the head of the free list if one exists and appends a new slot
// otherwise, so the array never grows while churn can be satisfied from
// previously freed slots.
//
// All links are expressed as indices into the slot array rather than Go
// pointers. This keeps slots relocatable: growing the array moves every
// slot, which would invalidate interior pointers but leaves indices intact.
//
// # Handles
//
// PushFront and PushBack return a Handle[V], an opaque pair of a slot
// position and the list generation at the time of insertion. The list
// generation is bumped on every removal. A handle resolves if and only if
// its slot is occupied and the slot's stamped generation equals the
// handle's; once the referenced value is removed the handle is permanently
// stale, even after the slot has been recycled for a later insertion. This
// makes use-after-remove a detectable absence rather than silent aliasing
// of an unrelated value.
//
// The type parameter doubles as a tag: a Handle[A] does not compile against
// a List[B]. The zero Handle is invalid and resolves against nothing.
//
// Handle-based operations report staleness as ordinary absence via an ok
// boolean or a nil pointer. Encountering a free slot on a chain reachable
// from the list's own head, tail, or links is different in kind: it means
// the list's internal invariants were violated by a bug, and it panics.
//
// # Complexity
//
// PushFront, PushBack, Get, and Remove are O(1) (amortized for insertion,
// which may grow the array). All and Drain are O(n).
//
// A List is NOT goroutine-safe.
package arenalist

import (
	"fmt"
	"strings"
)

// nilIdx marks the absence of a slot reference in head, tail, free, and the
// per-slot prev/next links.
const nilIdx = -1

// minCapacity is the slot count allocated by the first growth of an empty
// list.
const minCapacity = 8

// Slot is a single storage cell in a List's backing array. A slot is either
// free, in which case it is a member of the free list, or occupied, in
// which case it holds a value, the list generation it was stamped with at
// insertion, and its links in traversal order.
type Slot[V any] struct {
	value V
	// gen is the list generation at the time the slot was last occupied.
	gen uint64
	// next is the next occupied slot in traversal order while the slot is
	// occupied, and the next free slot while it is free. nilIdx terminates
	// both chains.
	next int
	// prev is the previous occupied slot in traversal order. Meaningless
	// while the slot is free.
	prev int
	// occupied discriminates the two slot states.
	occupied bool
}

// Handle is an opaque reference to a value stored in a List. Handles are
// cheap to copy and compare, and never keep the referenced value alive.
//
// The zero Handle is invalid and is never returned by a List.
type Handle[V any] struct {
	// pos is the slot position plus one, so that the zero Handle holds 0
	// and cannot collide with slot 0 of a fresh list.
	pos int
	// gen is the list generation the handle was issued under.
	gen uint64
}

// List is an ordered collection of values addressed by Handles, with
// PushFront, PushBack, Get, Remove, and forward iteration. Values are
// stored in a slot arena and referenced by index, so removal and reordering
// never invalidate storage, and stale handles are detected by generation
// rather than aliasing a slot's next occupant.
//
// A List is NOT goroutine-safe.
type List[V any] struct {
	// The allocator to use for the slots array.
	allocator Allocator[V]
	// slots is the backing arena. Slot positions are indices into it. The
	// array grows but never shrinks while the list is in use.
	slots []Slot[V]
	// used is the number of occupied slots.
	used int
	// gen is incremented once per removal. It only increases.
	gen uint64
	// free is the head of the free list, or nilIdx.
	free int
	// head and tail delimit the traversal order. Both are nilIdx exactly
	// when used == 0.
	head int
	tail int
}

// New constructs an empty List. initialCapacity is a sizing hint for the
// slot array, not a bound: a list always grows past it as needed. The zero
// value for a List is not usable.
func New[V any](initialCapacity int, options ...option[V]) *List[V] {
	l := &List[V]{
		allocator: defaultAllocator[V]{},
		free:      nilIdx,
		head:      nilIdx,
		tail:      nilIdx,
	}

	for _, op := range options {
		op.apply(l)
	}

	if initialCapacity > 0 {
		l.slots = l.allocator.AllocSlots(initialCapacity)[:0]
	}

	l.checkInvariants()
	return l
}

// Close closes the list, releasing the slot array back to its configured
// allocator. It is unnecessary to close a list using the default allocator.
// It is invalid to use a List after it has been closed, though Close itself
// is idempotent.
func (l *List[V]) Close() {
	if cap(l.slots) > 0 {
		l.allocator.FreeSlots(l.slots[:cap(l.slots)])
	}
	l.slots = nil
	l.used = 0
	l.free, l.head, l.tail = nilIdx, nilIdx, nilIdx
	l.allocator = nil
}

// Len returns the number of values in the list.
func (l *List[V]) Len() int {
	return l.used
}

// PushBack appends a value at the tail of the traversal order and returns
// its handle.
func (l *List[V]) PushBack(v V) Handle[V] {
	i := l.alloc(v)
	s := &l.slots[i]
	s.prev = l.tail

	if l.tail != nilIdx {
		t := &l.slots[l.tail]
		if !t.occupied {
			panic(fmt.Sprintf("arenalist: corrupted list: tail %d is free\n%s", l.tail, l.debugString()))
		}
		t.next = i
	}
	if l.head == nilIdx {
		l.head = i
	}
	l.tail = i

	l.used++
	l.checkInvariants()
	return Handle[V]{pos: i + 1, gen: l.gen}
}

// PushFront inserts a value at the head of the traversal order and returns
// its handle.
func (l *List[V]) PushFront(v V) Handle[V] {
	i := l.alloc(v)
	s := &l.slots[i]
	s.next = l.head

	// NB: the mirror image of PushBack rewires the old head's prev link,
	// not the old tail's next link.
	if l.head != nilIdx {
		h := &l.slots[l.head]
		if !h.occupied {
			panic(fmt.Sprintf("arenalist: corrupted list: head %d is free\n%s", l.head, l.debugString()))
		}
		h.prev = i
	}
	if l.tail == nilIdx {
		l.tail = i
	}
	l.head = i

	l.used++
	l.checkInvariants()
	return Handle[V]{pos: i + 1, gen: l.gen}
}

// alloc places v in a slot and returns its position. The head of the free
// list is recycled if one exists; otherwise a slot is appended, growing the
// backing array if it is full.
func (l *List[V]) alloc(v V) int {
	if i := l.free; i != nilIdx {
		s := &l.slots[i]
		if s.occupied {
			panic(fmt.Sprintf("arenalist: corrupted list: free head %d is occupied\n%s", i, l.debugString()))
		}
		l.free = s.next
		*s = Slot[V]{value: v, gen: l.gen, next: nilIdx, prev: nilIdx, occupied: true}
		return i
	}

	if len(l.slots) == cap(l.slots) {
		l.grow()
	}
	l.slots = append(l.slots, Slot[V]{value: v, gen: l.gen, next: nilIdx, prev: nilIdx, occupied: true})
	return len(l.slots) - 1
}

// grow replaces the backing array with a doubled one from the allocator,
// copying the existing slots and releasing the old array.
func (l *List[V]) grow() {
	newCap := 2 * cap(l.slots)
	if newCap < minCapacity {
		newCap = minCapacity
	}

	old := l.slots
	l.slots = l.allocator.AllocSlots(newCap)[:len(old)]
	copy(l.slots, old)
	if cap(old) > 0 {
		l.allocator.FreeSlots(old[:cap(old)])
	}
}

// slotFor resolves a handle to its occupied slot, or nil if the handle is
// out of range, references a free slot, or was issued for an earlier
// occupant of the slot.
func (l *List[V]) slotFor(h Handle[V]) *Slot[V] {
	i := h.pos - 1
	if i < 0 || i >= len(l.slots) {
		return nil
	}
	s := &l.slots[i]
	if !s.occupied || s.gen != h.gen {
		return nil
	}
	return s
}

// Get retrieves the value h references, returning ok=false if h is stale or
// invalid.
func (l *List[V]) Get(h Handle[V]) (value V, ok bool) {
	s := l.slotFor(h)
	if s == nil {
		return value, false
	}
	return s.value, true
}

// GetPtr returns a pointer to the value h references for in-place
// modification, or nil if h is stale or invalid.
//
// The pointer is into the list's backing array: any subsequent insertion
// may grow the array and relocate the value, so the pointer must not be
// retained across mutations of the list.
func (l *List[V]) GetPtr(h Handle[V]) *V {
	s := l.slotFor(h)
	if s == nil {
		return nil
	}
	return &s.value
}

// Head returns the value at the head of the traversal order, returning
// ok=false if the list is empty.
func (l *List[V]) Head() (value V, ok bool) {
	if l.head == nilIdx {
		return value, false
	}
	return l.slots[l.head].value, true
}

// HeadPtr returns a pointer to the value at the head of the traversal
// order, or nil if the list is empty. See GetPtr for the pointer's
// validity.
func (l *List[V]) HeadPtr() *V {
	if l.head == nilIdx {
		return nil
	}
	return &l.slots[l.head].value
}

// Tail returns the value at the tail of the traversal order, returning
// ok=false if the list is empty.
func (l *List[V]) Tail() (value V, ok bool) {
	if l.tail == nilIdx {
		return value, false
	}
	return l.slots[l.tail].value, true
}

// TailPtr returns a pointer to the value at the tail of the traversal
// order, or nil if the list is empty. See GetPtr for the pointer's
// validity.
func (l *List[V]) TailPtr() *V {
	if l.tail == nilIdx {
		return nil
	}
	return &l.slots[l.tail].value
}

// Remove removes the value h references and returns it, returning ok=false
// if h is stale or invalid. Removal frees the slot for reuse and bumps the
// list generation, so h (and any copy of it) is permanently stale
// afterwards: a second Remove of the same handle is an ordinary absence,
// not a double free.
func (l *List[V]) Remove(h Handle[V]) (removed V, ok bool) {
	if l.head == nilIdx {
		return removed, false
	}
	s := l.slotFor(h)
	if s == nil {
		return removed, false
	}
	i := h.pos - 1
	prev, next := s.prev, s.next

	// The two neighbor updates are independent: an interior removal rewires
	// both neighbors, an endpoint removal rewires one neighbor and moves
	// the corresponding endpoint, and removing the sole element moves both
	// endpoints to nilIdx.
	if prev != nilIdx {
		p := &l.slots[prev]
		if !p.occupied {
			panic(fmt.Sprintf("arenalist: corrupted list: prev %d of %d is free\n%s", prev, i, l.debugString()))
		}
		p.next = next
	}
	if next != nilIdx {
		n := &l.slots[next]
		if !n.occupied {
			panic(fmt.Sprintf("arenalist: corrupted list: next %d of %d is free\n%s", next, i, l.debugString()))
		}
		n.prev = prev
	}
	if i == l.head {
		l.head = next
	}
	if i == l.tail {
		l.tail = prev
	}

	removed = s.value
	*s = Slot[V]{next: l.free}
	l.free = i
	l.gen++
	l.used--

	l.checkInvariants()
	return removed, true
}

// Clear removes all values from the list, retaining the allocated capacity
// for reuse. Every outstanding handle becomes permanently stale.
func (l *List[V]) Clear() {
	if l.used > 0 {
		// A single bump suffices: handles issued before Clear carry a
		// stamp no greater than the current generation, while any slot
		// reoccupied afterwards is stamped strictly greater.
		l.gen++
	}
	clear(l.slots)
	l.slots = l.slots[:0]
	l.used = 0
	l.free, l.head, l.tail = nilIdx, nilIdx, nilIdx
	l.checkInvariants()
}

func (l *List[V]) checkInvariants() {
	if invariants {
		if (l.head == nilIdx) != (l.tail == nilIdx) {
			panic(fmt.Sprintf("invariant failed: head=%d and tail=%d disagree on emptiness\n%s",
				l.head, l.tail, l.debugString()))
		}
		if (l.head == nilIdx) != (l.used == 0) {
			panic(fmt.Sprintf("invariant failed: head=%d but used=%d\n%s",
				l.head, l.used, l.debugString()))
		}

		// Walk the order list forward, verifying that every reachable slot
		// is occupied and that the backward links mirror the forward walk.
		var n int
		prev := nilIdx
		for i := l.head; i != nilIdx; i = l.slots[i].next {
			s := &l.slots[i]
			if !s.occupied {
				panic(fmt.Sprintf("invariant failed: slot %d on the order list is free\n%s",
					i, l.debugString()))
			}
			if s.prev != prev {
				panic(fmt.Sprintf("invariant failed: slot %d has prev=%d, expected %d\n%s",
					i, s.prev, prev, l.debugString()))
			}
			prev = i
			n++
			if n > l.used {
				panic(fmt.Sprintf("invariant failed: order list cycle through slot %d\n%s",
					i, l.debugString()))
			}
		}
		if prev != l.tail {
			panic(fmt.Sprintf("invariant failed: forward walk ended at %d, tail is %d\n%s",
				prev, l.tail, l.debugString()))
		}
		if n != l.used {
			panic(fmt.Sprintf("invariant failed: found %d occupied slots, but used count is %d\n%s",
				n, l.used, l.debugString()))
		}

		// Walk the free list. Together with the order list it must partition
		// the slot array.
		var f int
		for i := l.free; i != nilIdx; i = l.slots[i].next {
			if l.slots[i].occupied {
				panic(fmt.Sprintf("invariant failed: slot %d on the free list is occupied\n%s",
					i, l.debugString()))
			}
			f++
			if f > len(l.slots)-l.used {
				panic(fmt.Sprintf("invariant failed: free list cycle through slot %d\n%s",
					i, l.debugString()))
			}
		}
		if n+f != len(l.slots) {
			panic(fmt.Sprintf("invariant failed: %d occupied + %d free != %d slots\n%s",
				n, f, len(l.slots), l.debugString()))
		}
	}
}

func (l *List[V]) debugString() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "used=%d  slots=%d  gen=%d  head=%d  tail=%d  free=%d\n",
		l.used, len(l.slots), l.gen, l.head, l.tail, l.free)
	for i := range l.slots {
		s := &l.slots[i]
		if s.occupied {
			fmt.Fprintf(&buf, "  %4d: %v [gen=%d prev=%d next=%d]\n", i, s.value, s.gen, s.prev, s.next)
		} else {
			fmt.Fprintf(&buf, "  %4d: free [next=%d]\n", i, s.next)
		}
	}
	return buf.String()
}
