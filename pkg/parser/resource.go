package parser

import (
	"container/list"
	"fmt"
	"strings"
)

// Absent is the name recorded for an object that does not exist before or
// after a migration.
const Absent = "-1"

// Operation tags recorded on a Resource.
const (
	OpCreate = "CREATE"
	OpAlter  = "ALTER"
	OpRename = "RENAME"
	OpDrop   = "DROP"
)

// Resource is the before/after identity of one database object across a
// migration file, together with the ordered operations applied to it.
type Resource struct {
	ObjectType ObjectType
	NameBefore string
	NameAfter  string
	Operations []string
}

func newResource(typ ObjectType, before, after string, ops ...string) *Resource {
	return &Resource{ObjectType: typ, NameBefore: before, NameAfter: after, Operations: ops}
}

// IsPlaceholder reports whether the object was both created and dropped in the
// same migration. Placeholders are never written to the ledger.
func (r *Resource) IsPlaceholder() bool {
	return r.NameBefore == Absent && r.NameAfter == Absent
}

// IsDestructive reports whether any operation drops the object.
func (r *Resource) IsDestructive() bool {
	for _, op := range r.Operations {
		if op == OpDrop {
			return true
		}
	}

	return false
}

// DisplayName returns the most meaningful name of the object: its name before
// the migration, falling back to its name after, or NULL when neither exists.
func (r *Resource) DisplayName() string {
	switch {
	case r.NameBefore != Absent:
		return r.NameBefore
	case r.NameAfter != Absent:
		return r.NameAfter
	default:
		return "NULL"
	}
}

func (r *Resource) String() string {
	return fmt.Sprintf("%s %s -> %s [%s]", r.ObjectType, r.NameBefore, r.NameAfter, strings.Join(r.Operations, " "))
}

type resourceKey struct {
	typ  ObjectType
	name string
}

// ResourceCollection folds resources into one entry per object identity. It
// is ordered: entries are kept in the order they were last touched.
type ResourceCollection struct {
	order *list.List
	index map[resourceKey][]*list.Element
}

// NewResourceCollection returns an empty collection.
func NewResourceCollection() *ResourceCollection {
	return &ResourceCollection{
		order: list.New(),
		index: make(map[resourceKey][]*list.Element),
	}
}

// Upsert folds res into the collection.
//
// A CREATE always starts a new entry. Any other operation removes the first
// entry (in insertion order) of the same object type whose current name equals
// res.NameBefore, merges the operations, and appends the merged entry at the
// end. Without a match a new entry is started with res.NameBefore as the
// object's original name.
func (c *ResourceCollection) Upsert(res *Resource) {
	merged := &Resource{
		ObjectType: res.ObjectType,
		NameBefore: res.NameBefore,
		NameAfter:  res.NameAfter,
	}

	if len(res.Operations) > 0 && res.Operations[0] == OpCreate {
		merged.NameBefore = Absent
	} else if prev := c.popFirstMatch(res.ObjectType, res.NameBefore); prev != nil {
		merged.NameBefore = prev.NameBefore
		merged.Operations = append(merged.Operations, prev.Operations...)
	}

	merged.Operations = append(merged.Operations, res.Operations...)
	c.push(merged)
}

// Resources returns the folded resources in order.
func (c *ResourceCollection) Resources() []*Resource {
	out := make([]*Resource, 0, c.order.Len())
	for e := c.order.Front(); e != nil; e = e.Next() {
		out = append(out, e.Value.(*Resource))
	}

	return out
}

// Trackable returns the resources that belong in the ledger, skipping placeholders.
func (c *ResourceCollection) Trackable() []*Resource {
	var out []*Resource
	for _, r := range c.Resources() {
		if !r.IsPlaceholder() {
			out = append(out, r)
		}
	}

	return out
}

// Len returns the number of folded resources.
func (c *ResourceCollection) Len() int {
	return c.order.Len()
}

// HasDestructive reports whether any resource was dropped.
func (c *ResourceCollection) HasDestructive() bool {
	for _, r := range c.Resources() {
		if r.IsDestructive() {
			return true
		}
	}

	return false
}

func (c *ResourceCollection) push(res *Resource) {
	key := resourceKey{typ: res.ObjectType, name: res.NameAfter}
	c.index[key] = append(c.index[key], c.order.PushBack(res))
}

func (c *ResourceCollection) popFirstMatch(typ ObjectType, name string) *Resource {
	key := resourceKey{typ: typ, name: name}

	elems := c.index[key]
	if len(elems) == 0 {
		return nil
	}

	first := elems[0]
	if len(elems) == 1 {
		delete(c.index, key)
	} else {
		c.index[key] = elems[1:]
	}

	return c.order.Remove(first).(*Resource)
}
