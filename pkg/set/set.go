package set

import (
	"cmp"
	"slices"
)

// Set keeps the first-insertion order of its items
type Set[T cmp.Ordered] struct {
	items map[T]struct{}
	order []T
}

func From[T cmp.Ordered](items ...T) *Set[T] {
	s := &Set[T]{}
	s.Add(items...)
	return s
}

func (s *Set[T]) Add(items ...T) {
	if s.items == nil {
		s.items = make(map[T]struct{}, len(items))
	}

	for _, item := range items {
		if _, ok := s.items[item]; ok {
			continue
		}
		s.items[item] = struct{}{}
		s.order = append(s.order, item)
	}
}

func (s *Set[T]) Has(item T) bool {
	_, ok := s.items[item]
	return ok
}

func (s *Set[T]) Len() int {
	return len(s.order)
}

// List returns a copy of the items in insertion order
func (s *Set[T]) List() []T {
	return slices.Clone(s.order)
}

func (s *Set[T]) ToSortedList() []T {
	result := s.List()
	slices.SortFunc(result, func(a, b T) int {
		return cmp.Compare(a, b)
	})

	return result
}

// Union returns a new set with the items of s followed by the unseen items of other
func (s *Set[T]) Union(other *Set[T]) *Set[T] {
	result := From(s.order...)
	if other != nil {
		result.Add(other.order...)
	}
	return result
}
