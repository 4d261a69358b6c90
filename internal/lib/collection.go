package lib

import "sync"

type IModel interface {
	GetID() string
}

// Collection is a typed wrapper around sync.Map keyed by the item ID.
type Collection[T IModel] struct {
	items sync.Map
}

func NewCollection[T IModel]() *Collection[T] {
	return &Collection[T]{}
}

func (c *Collection[T]) Store(item T) {
	c.items.Store(item.GetID(), item)
}

// LoadOrStore returns the existing item for the id if present, otherwise
// stores the given item. The loaded flag is true if the item was already there.
func (c *Collection[T]) LoadOrStore(item T) (actual T, loaded bool) {
	val, loaded := c.items.LoadOrStore(item.GetID(), item)
	return val.(T), loaded
}

func (c *Collection[T]) Load(id string) (item T, ok bool) {
	if val, ok := c.items.Load(id); ok {
		return val.(T), true
	}
	var zero T
	return zero, false
}

func (c *Collection[T]) Delete(id string) {
	c.items.Delete(id)
}

func (c *Collection[T]) Range(f func(item T) bool) {
	c.items.Range(func(key, value any) bool {
		return f(value.(T))
	})
}

func (c *Collection[T]) Len() int {
	count := 0
	c.items.Range(func(key, value any) bool {
		count++
		return true
	})
	return count
}
