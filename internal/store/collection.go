package store

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"
)

// Collection is a typed record list persisted under a single namespace.
// Loads never fail: a missing or malformed document yields a copy of the
// seed list. Saves are best-effort: a write failure is logged and swallowed
// and the in-memory list stays authoritative for the session.
type Collection[T any] struct {
	kv        KV
	namespace string
	seed      []T
	logger    *zap.Logger
}

// NewCollection binds a typed collection to a namespace. seed may be nil.
func NewCollection[T any](kv KV, namespace string, seed []T, logger *zap.Logger) *Collection[T] {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Collection[T]{kv: kv, namespace: namespace, seed: seed, logger: logger}
}

// Namespace returns the namespace key this collection persists under.
func (c *Collection[T]) Namespace() string {
	return c.namespace
}

// Load returns the stored list, or a copy of the seed when the namespace is
// missing or its content cannot be decoded.
func (c *Collection[T]) Load(ctx context.Context) []T {
	raw, ok, err := c.kv.Get(ctx, c.namespace)
	if err != nil {
		c.logger.Warn("store read failed, using seed",
			zap.String("namespace", c.namespace), zap.Error(err))
		return c.seedCopy()
	}
	if !ok {
		return c.seedCopy()
	}
	var items []T
	if err := json.Unmarshal(raw, &items); err != nil {
		c.logger.Warn("store content malformed, using seed",
			zap.String("namespace", c.namespace), zap.Error(err))
		return c.seedCopy()
	}
	return items
}

// Save overwrites the namespace with items. Failures are swallowed.
func (c *Collection[T]) Save(ctx context.Context, items []T) {
	raw, err := json.Marshal(items)
	if err != nil {
		c.logger.Warn("store encode failed, change not persisted",
			zap.String("namespace", c.namespace), zap.Error(err))
		return
	}
	if err := c.kv.Put(ctx, c.namespace, raw); err != nil {
		c.logger.Warn("store write failed, change not persisted",
			zap.String("namespace", c.namespace), zap.Error(err))
	}
}

// Upsert replaces the first record matching match, or prepends item when no
// record matches, then saves. It returns the updated list.
func (c *Collection[T]) Upsert(ctx context.Context, item T, match func(T) bool) []T {
	items := c.Load(ctx)
	replaced := false
	for i := range items {
		if match(items[i]) {
			items[i] = item
			replaced = true
			break
		}
	}
	if !replaced {
		items = append([]T{item}, items...)
	}
	c.Save(ctx, items)
	return items
}

// Remove filters out every record matching match, then saves. It returns
// the updated list.
func (c *Collection[T]) Remove(ctx context.Context, match func(T) bool) []T {
	items := c.Load(ctx)
	kept := items[:0]
	for _, item := range items {
		if !match(item) {
			kept = append(kept, item)
		}
	}
	out := make([]T, len(kept))
	copy(out, kept)
	c.Save(ctx, out)
	return out
}

// Find returns the first record matching match.
func (c *Collection[T]) Find(ctx context.Context, match func(T) bool) (T, bool) {
	for _, item := range c.Load(ctx) {
		if match(item) {
			return item, true
		}
	}
	var zero T
	return zero, false
}

func (c *Collection[T]) seedCopy() []T {
	if c.seed == nil {
		return []T{}
	}
	out := make([]T, len(c.seed))
	copy(out, c.seed)
	return out
}
