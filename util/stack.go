package util

// Stack is a LIFO of T. A positive Limit bounds it: pushing onto a full
// stack evicts the bottom element. The zero value is an unbounded stack.
type Stack[T any] struct {
	Limit int
	items []T
}

// Push adds item on top and reports the evicted bottom element, if any.
func (s *Stack[T]) Push(item T) (evicted T, ok bool) {
	s.items = append(s.items, item)
	if s.Limit > 0 && len(s.items) > s.Limit {
		evicted, ok = s.items[0], true
		s.items = append(s.items[:0:0], s.items[1:]...)
	}
	return evicted, ok
}

// Pop removes the top element. ok is false on an empty stack.
func (s *Stack[T]) Pop() (item T, ok bool) {
	n := len(s.items)
	if n == 0 {
		return item, false
	}

	item = s.items[n-1]
	var zero T
	s.items[n-1] = zero
	s.items = s.items[:n-1]
	return item, true
}

// Peek returns the top element without removing it.
func (s *Stack[T]) Peek() (item T, ok bool) {
	if len(s.items) == 0 {
		return item, false
	}
	return s.items[len(s.items)-1], true
}

func (s *Stack[T]) Len() int { return len(s.items) }

func (s *Stack[T]) Clear() { s.items = nil }

// Items returns a copy of the elements, bottom first.
func (s *Stack[T]) Items() []T {
	return append([]T(nil), s.items...)
}
