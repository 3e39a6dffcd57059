package query

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"time"
)

// Page is one window of a filtered, sorted collection. Count is the size of
// the whole filtered set, not of Items.
type Page[T any] struct {
	Count int `json:"count"`
	Items []T `json:"items"`
}

// UnknownFieldError is returned when a descriptor names a sort field the
// entity does not expose.
type UnknownFieldError struct {
	Field string
}

func (e *UnknownFieldError) Error() string {
	return fmt.Sprintf("unknown sort field %q", e.Field)
}

// Field compares two records on one sortable attribute.
type Field[T any] func(a, b T) int

// Fields maps lower-cased field names to comparators.
type Fields[T any] map[string]Field[T]

// Lookup resolves name case-insensitively.
func (f Fields[T]) Lookup(name string) (Field[T], error) {
	cmpFn, ok := f[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, &UnknownFieldError{Field: name}
	}
	return cmpFn, nil
}

// Names returns the registered field names in sorted order.
func (f Fields[T]) Names() []string {
	names := make([]string, 0, len(f))
	for name := range f {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func StringField[T any](get func(T) string) Field[T] {
	return func(a, b T) int { return strings.Compare(get(a), get(b)) }
}

func IntField[T any](get func(T) int64) Field[T] {
	return func(a, b T) int { return cmp.Compare(get(a), get(b)) }
}

func FloatField[T any](get func(T) float64) Field[T] {
	return func(a, b T) int { return cmp.Compare(get(a), get(b)) }
}

func TimeField[T any](get func(T) time.Time) Field[T] {
	return func(a, b T) int { return get(a).Compare(get(b)) }
}

// Spec binds the generic operator to one entity type.
type Spec[T any] struct {
	Fields Fields[T]
	// Search returns the text values matched against SearchTerm.
	Search func(T) []string
	// Filters returns the equality predicates enabled by the descriptor.
	Filters func(Descriptor) []func(T) bool
}

// Apply filters, counts, sorts and paginates items in that order. The input
// slice is not modified.
func Apply[T any](d Descriptor, items []T, spec Spec[T]) (Page[T], error) {
	compare, err := spec.Fields.Lookup(d.SortField)
	if err != nil {
		return Page[T]{}, err
	}

	filtered := filter(d, items, spec)
	count := len(filtered)

	if d.Descending() {
		slices.SortStableFunc(filtered, func(a, b T) int { return compare(b, a) })
	} else {
		slices.SortStableFunc(filtered, compare)
	}

	start, ok := d.Offset()
	if !ok || start >= count || d.PageSize < 1 {
		return Page[T]{Count: count, Items: []T{}}, nil
	}
	end := start + min(d.PageSize, count-start)

	page := make([]T, end-start)
	copy(page, filtered[start:end])
	return Page[T]{Count: count, Items: page}, nil
}

func filter[T any](d Descriptor, items []T, spec Spec[T]) []T {
	term := strings.ToLower(strings.TrimSpace(d.SearchTerm))
	var preds []func(T) bool
	if spec.Filters != nil {
		preds = spec.Filters(d)
	}

	out := make([]T, 0, len(items))
	for _, item := range items {
		if term != "" && (spec.Search == nil || !matches(term, spec.Search(item))) {
			continue
		}
		keep := true
		for _, p := range preds {
			if !p(item) {
				keep = false
				break
			}
		}
		if keep {
			out = append(out, item)
		}
	}
	return out
}

func matches(term string, values []string) bool {
	for _, v := range values {
		if strings.Contains(strings.ToLower(v), term) {
			return true
		}
	}
	return false
}
