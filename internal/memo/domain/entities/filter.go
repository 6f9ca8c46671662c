package entities

import (
	"fmt"
	"strings"
)

type memoItemFilterKind int

const (
	filterVisibleOnly memoItemFilterKind = iota + 1
	filterOrderBetween
	filterNameContains
)

// MemoItemFilter is one predicate of the closed memo item filter vocabulary.
// Build it with VisibleOnly, OrderBetween or NameContains.
type MemoItemFilter struct {
	kind     memoItemFilterKind
	min, max int
	substr   string
}

// VisibleOnly keeps items whose Visible flag is set.
func VisibleOnly() MemoItemFilter {
	return MemoItemFilter{kind: filterVisibleOnly}
}

// OrderBetween keeps items with min <= Order <= max.
func OrderBetween(min, max int) MemoItemFilter {
	return MemoItemFilter{kind: filterOrderBetween, min: min, max: max}
}

// NameContains keeps items whose name contains substr, ignoring case.
func NameContains(substr string) MemoItemFilter {
	return MemoItemFilter{kind: filterNameContains, substr: substr}
}

// String describes the filter for logs.
func (f MemoItemFilter) String() string {
	switch f.kind {
	case filterVisibleOnly:
		return "visible-only"
	case filterOrderBetween:
		return fmt.Sprintf("order-between(%d,%d)", f.min, f.max)
	case filterNameContains:
		return fmt.Sprintf("name-contains(%q)", f.substr)
	default:
		return "invalid"
	}
}

// MemoItemCriteria is the conjunction of a set of filters, in the form
// persistence adapters translate into an indexed query.
type MemoItemCriteria struct {
	VisibleOnly  bool
	MinOrder     *int
	MaxOrder     *int
	NameContains []string
}

// CriteriaFrom combines filters. Several OrderBetween filters intersect.
func CriteriaFrom(filters ...MemoItemFilter) (MemoItemCriteria, error) {
	var c MemoItemCriteria
	for _, f := range filters {
		switch f.kind {
		case filterVisibleOnly:
			c.VisibleOnly = true
		case filterOrderBetween:
			if f.min > f.max {
				return MemoItemCriteria{}, fmt.Errorf("%s: min greater than max", f)
			}
			if c.MinOrder == nil || f.min > *c.MinOrder {
				minOrder := f.min
				c.MinOrder = &minOrder
			}
			if c.MaxOrder == nil || f.max < *c.MaxOrder {
				maxOrder := f.max
				c.MaxOrder = &maxOrder
			}
		case filterNameContains:
			if f.substr == "" {
				continue
			}
			c.NameContains = append(c.NameContains, f.substr)
		default:
			return MemoItemCriteria{}, fmt.Errorf("unsupported memo item filter")
		}
	}
	return c, nil
}

// Empty reports whether the criteria match every item.
func (c MemoItemCriteria) Empty() bool {
	return !c.VisibleOnly && c.MinOrder == nil && c.MaxOrder == nil && len(c.NameContains) == 0
}

// Match evaluates the criteria against item.
func (c MemoItemCriteria) Match(item MemoItem) bool {
	if c.VisibleOnly && !item.Visible {
		return false
	}
	if c.MinOrder != nil && item.Order < *c.MinOrder {
		return false
	}
	if c.MaxOrder != nil && item.Order > *c.MaxOrder {
		return false
	}
	name := strings.ToLower(item.Name)
	for _, s := range c.NameContains {
		if !strings.Contains(name, strings.ToLower(s)) {
			return false
		}
	}
	return true
}
