package pathfind

import "github.com/Faultbox/gridpath/pkg/navgrid"

// Open list operations on the map's 1-indexed heap of node offsets. Only F
// is compared, so equal-F nodes come out in heap order rather than by G or H.

func (s *search) push(off int) {
	s.openLen++
	s.open[s.openLen] = off
	n := &s.nodes[off]
	n.OnOpenList = true
	n.HeapIndex = s.openLen
	s.up(s.openLen)
}

// pop moves the lowest-F node to the closed list and returns its offset.
func (s *search) pop() int {
	off := s.open[1]
	n := &s.nodes[off]
	n.OnOpenList = false
	n.OnClosedList = true
	n.HeapIndex = navgrid.NoHeapIndex
	s.closed[s.closedLen] = off
	s.closedLen++

	s.open[1] = s.open[s.openLen]
	s.openLen--
	if s.openLen > 0 {
		s.nodes[s.open[1]].HeapIndex = 1
		s.down(1)
	}
	return off
}

func (s *search) up(i int) {
	for i > 1 {
		parent := i >> 1
		if s.f(i) > s.f(parent) {
			return
		}
		s.swap(i, parent)
		i = parent
	}
}

func (s *search) down(i int) {
	for {
		a, b := i<<1, i<<1|1
		if a > s.openLen {
			return
		}
		child := a
		if b <= s.openLen && s.f(a) >= s.f(b) {
			child = b
		}
		if s.f(i) <= s.f(child) {
			return
		}
		s.swap(i, child)
		i = child
	}
}

func (s *search) f(i int) float32 {
	return s.nodes[s.open[i]].F
}

func (s *search) swap(i, j int) {
	s.open[i], s.open[j] = s.open[j], s.open[i]
	s.nodes[s.open[i]].HeapIndex = i
	s.nodes[s.open[j]].HeapIndex = j
}
