// Package history tracks previously played playlist positions so the wall can go back.
package history

import (
	"sync"

	"github.com/videowall/videowall/util"
)

// DefaultSize is the capacity used when a non-positive size is requested.
const DefaultSize = 50

// Stack is a bounded stack of playlist indices, most recent last.
// Pushing past the capacity evicts the oldest entry. It is safe for concurrent use.
type Stack struct {
	mu    sync.Mutex
	size  int
	items util.Stack[int]
}

// New returns an empty stack holding at most size entries.
func New(size int) *Stack {
	if size <= 0 {
		size = DefaultSize
	}
	return &Stack{size: size, items: util.Stack[int]{Limit: size}}
}

// Push records index as the most recently played position.
func (s *Stack) Push(index int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items.Push(index)
}

// CanGoBack reports whether there is a previous position to return to.
func (s *Stack) CanGoBack() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.items.Len() > 0
}

// Pop removes and returns the most recent position.
func (s *Stack) Pop() (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.items.Pop()
}

// Len returns the number of remembered positions.
func (s *Stack) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.items.Len()
}

// Cap returns the configured capacity.
func (s *Stack) Cap() int {
	return s.size
}

// Indices returns the remembered positions, oldest first.
func (s *Stack) Indices() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.items.Items()
}

// Clear forgets every position.
func (s *Stack) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items.Clear()
}
