package arenalist

import (
	"container/list"
	"strconv"
	"testing"

	"github.com/aclements/go-perfevent/perfbench"
)

func BenchmarkListPushBack(b *testing.B) {
	b.Run("impl=containerList", benchSizes(benchmarkContainerListPushBack))
	b.Run("impl=arenaList", benchSizes(benchmarkArenaListPushBack))
}

func BenchmarkListPushFront(b *testing.B) {
	b.Run("impl=containerList", benchSizes(benchmarkContainerListPushFront))
	b.Run("impl=arenaList", benchSizes(benchmarkArenaListPushFront))
}

func BenchmarkListPushRemove(b *testing.B) {
	b.Run("impl=containerList", benchSizes(benchmarkContainerListPushRemove))
	b.Run("impl=arenaList", benchSizes(benchmarkArenaListPushRemove))
}

func BenchmarkListGet(b *testing.B) {
	b.Run("impl=arenaList", benchSizes(benchmarkArenaListGet))
}

func BenchmarkListIter(b *testing.B) {
	b.Run("impl=containerList", benchSizes(benchmarkContainerListIter))
	b.Run("impl=arenaList", benchSizes(benchmarkArenaListIter))
}

func benchSizes(f func(b *testing.B, n int)) func(*testing.B) {
	var cases = []int{
		16,
		128,
		1024,
		8192,
		1 << 16,
	}

	return func(b *testing.B) {
		for _, n := range cases {
			b.Run("len="+strconv.Itoa(n), func(b *testing.B) { f(b, n) })
		}
	}
}

func benchmarkContainerListPushBack(b *testing.B, n int) {
	c := perfbench.Open(b)
	l := list.New()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if l.Len() == n {
			l.Init()
		}
		l.PushBack(i)
	}
	b.StopTimer()
	c.Stop()
}

func benchmarkArenaListPushBack(b *testing.B, n int) {
	c := perfbench.Open(b)
	l := New[int](n)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if l.Len() == n {
			l.Clear()
		}
		l.PushBack(i)
	}
	b.StopTimer()
	c.Stop()
}

func benchmarkContainerListPushFront(b *testing.B, n int) {
	c := perfbench.Open(b)
	l := list.New()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if l.Len() == n {
			l.Init()
		}
		l.PushFront(i)
	}
	b.StopTimer()
	c.Stop()
}

func benchmarkArenaListPushFront(b *testing.B, n int) {
	c := perfbench.Open(b)
	l := New[int](n)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if l.Len() == n {
			l.Clear()
		}
		l.PushFront(i)
	}
	b.StopTimer()
	c.Stop()
}

func benchmarkContainerListPushRemove(b *testing.B, n int) {
	c := perfbench.Open(b)
	l := list.New()
	elems := make([]*list.Element, n)
	for i := 0; i < n; i++ {
		elems[i] = l.PushBack(i)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		j := i % n
		l.Remove(elems[j])
		elems[j] = l.PushBack(j)
	}
	b.StopTimer()
	c.Stop()
}

func benchmarkArenaListPushRemove(b *testing.B, n int) {
	c := perfbench.Open(b)
	l := New[int](n)
	handles := make([]Handle[int], n)
	for i := 0; i < n; i++ {
		handles[i] = l.PushBack(i)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		j := i % n
		l.Remove(handles[j])
		handles[j] = l.PushBack(j)
	}
	b.StopTimer()
	c.Stop()
}

func benchmarkArenaListGet(b *testing.B, n int) {
	c := perfbench.Open(b)
	l := New[int](n)
	handles := make([]Handle[int], n)
	for i := 0; i < n; i++ {
		handles[i] = l.PushBack(i)
	}
	b.ResetTimer()
	var sum int
	for i := 0; i < b.N; i++ {
		v, _ := l.Get(handles[i%n])
		sum += v
	}
	b.StopTimer()
	c.Stop()
	_ = sum
}

func benchmarkContainerListIter(b *testing.B, n int) {
	c := perfbench.Open(b)
	l := list.New()
	for i := 0; i < n; i++ {
		l.PushBack(i)
	}
	b.ResetTimer()
	var sum int
	for i := 0; i < b.N; i++ {
		for e := l.Front(); e != nil; e = e.Next() {
			sum += e.Value.(int)
		}
	}
	b.StopTimer()
	c.Stop()
	_ = sum
}

func benchmarkArenaListIter(b *testing.B, n int) {
	c := perfbench.Open(b)
	l := New[int](n)
	for i := 0; i < n; i++ {
		l.PushBack(i)
	}
	b.ResetTimer()
	var sum int
	for i := 0; i < b.N; i++ {
		l.All(func(v int) bool {
			sum += v
			return true
		})
	}
	b.StopTimer()
	c.Stop()
	_ = sum
}
