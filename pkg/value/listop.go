package value

import "github.com/joshuapare/cratekit/pkg/types"

// ListOp is a composable list edit with six optional ordered buckets.
// When Explicit is set only ExplicitItems is meaningful; otherwise the
// populated buckets each carry their own qualifier.
type ListOp[T any] struct {
	Explicit       bool
	ExplicitItems  []T
	AddedItems     []T
	PrependedItems []T
	AppendedItems  []T
	DeletedItems   []T
	OrderedItems   []T
}

// ListOpPair is one decoded (qualifier, items) bucket.
type ListOpPair[T any] struct {
	Qual  types.ListEditQual
	Items []T
}

// Decode flattens the populated buckets into qualifier/items pairs. An
// explicit op yields exactly one ResetToExplicit pair; otherwise buckets
// appear in the fixed order explicit, added, prepended, appended, deleted,
// ordered.
func (l ListOp[T]) Decode() []ListOpPair[T] {
	if l.Explicit {
		return []ListOpPair[T]{{Qual: types.ListEditResetToExplicit, Items: l.ExplicitItems}}
	}
	var out []ListOpPair[T]
	if len(l.ExplicitItems) > 0 {
		out = append(out, ListOpPair[T]{types.ListEditResetToExplicit, l.ExplicitItems})
	}
	if len(l.AddedItems) > 0 {
		out = append(out, ListOpPair[T]{types.ListEditAdd, l.AddedItems})
	}
	if len(l.PrependedItems) > 0 {
		out = append(out, ListOpPair[T]{types.ListEditPrepend, l.PrependedItems})
	}
	if len(l.AppendedItems) > 0 {
		out = append(out, ListOpPair[T]{types.ListEditAppend, l.AppendedItems})
	}
	if len(l.DeletedItems) > 0 {
		out = append(out, ListOpPair[T]{types.ListEditDelete, l.DeletedItems})
	}
	if len(l.OrderedItems) > 0 {
		out = append(out, ListOpPair[T]{types.ListEditOrder, l.OrderedItems})
	}
	return out
}

// IsEmpty reports whether no bucket is populated.
func (l ListOp[T]) IsEmpty() bool {
	return !l.Explicit &&
		len(l.ExplicitItems) == 0 && len(l.AddedItems) == 0 &&
		len(l.PrependedItems) == 0 && len(l.AppendedItems) == 0 &&
		len(l.DeletedItems) == 0 && len(l.OrderedItems) == 0
}
