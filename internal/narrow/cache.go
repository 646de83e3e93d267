package narrow

import "surgetype/internal/types"

// DefaultCacheCapacity bounds the shared resolve/property caches so a
// pathological file with enormous numbers of distinct narrowed types cannot
// grow the cache unboundedly across a long-lived session.
const DefaultCacheCapacity = 4096

type propertyKey struct {
	Obj  types.TypeID
	Name types.Atom
}

// NarrowingCache memoizes type-resolution results and top-level property
// lookups across narrowing calls within one session. Bounded by capacity
// with FIFO eviction once full.
type NarrowingCache struct {
	capacity int

	resolve     map[types.TypeID]types.TypeID
	resolveFIFO []types.TypeID

	property     map[propertyKey]types.TypeID
	propertyHas  map[propertyKey]bool
	propertyFIFO []propertyKey
}

// NewNarrowingCache constructs a cache bounded at capacity entries per
// sub-cache. A capacity of 0 uses DefaultCacheCapacity.
func NewNarrowingCache(capacity int) *NarrowingCache {
	if capacity <= 0 {
		capacity = DefaultCacheCapacity
	}
	return &NarrowingCache{
		capacity:    capacity,
		resolve:     make(map[types.TypeID]types.TypeID),
		property:    make(map[propertyKey]types.TypeID),
		propertyHas: make(map[propertyKey]bool),
	}
}

func (c *NarrowingCache) getResolve(id types.TypeID) (types.TypeID, bool) {
	v, ok := c.resolve[id]
	return v, ok
}

func (c *NarrowingCache) setResolve(id, resolved types.TypeID) {
	if _, exists := c.resolve[id]; exists {
		c.resolve[id] = resolved
		return
	}
	if len(c.resolveFIFO) >= c.capacity {
		oldest := c.resolveFIFO[0]
		c.resolveFIFO = c.resolveFIFO[1:]
		delete(c.resolve, oldest)
	}
	c.resolve[id] = resolved
	c.resolveFIFO = append(c.resolveFIFO, id)
}

func (c *NarrowingCache) getProperty(obj types.TypeID, name types.Atom) (types.TypeID, bool, bool) {
	key := propertyKey{Obj: obj, Name: name}
	has, known := c.propertyHas[key]
	if !known {
		return types.NoTypeID, false, false
	}
	return c.property[key], has, true
}

// CacheSnapshot is the serializable image of a NarrowingCache, letting an
// enclosing IDE process persist the bounded cache across restarts instead of
// re-deriving it. Session-level code owns the wire encoding.
type CacheSnapshot struct {
	Resolve     map[types.TypeID]types.TypeID                `msgpack:"resolve"`
	Property    map[types.TypeID]map[types.Atom]types.TypeID `msgpack:"property"`
	PropertyHas map[types.TypeID]map[types.Atom]bool         `msgpack:"property_has"`
}

// Snapshot captures the cache's current contents.
func (c *NarrowingCache) Snapshot() CacheSnapshot {
	snap := CacheSnapshot{
		Resolve:     make(map[types.TypeID]types.TypeID, len(c.resolve)),
		Property:    make(map[types.TypeID]map[types.Atom]types.TypeID),
		PropertyHas: make(map[types.TypeID]map[types.Atom]bool),
	}
	for k, v := range c.resolve {
		snap.Resolve[k] = v
	}
	for k, has := range c.propertyHas {
		if snap.PropertyHas[k.Obj] == nil {
			snap.PropertyHas[k.Obj] = make(map[types.Atom]bool)
		}
		snap.PropertyHas[k.Obj][k.Name] = has
		if has {
			if snap.Property[k.Obj] == nil {
				snap.Property[k.Obj] = make(map[types.Atom]types.TypeID)
			}
			snap.Property[k.Obj][k.Name] = c.property[k]
		}
	}
	return snap
}

// Restore replays a snapshot into the cache, respecting the capacity bound.
func (c *NarrowingCache) Restore(snap CacheSnapshot) {
	for k, v := range snap.Resolve {
		c.setResolve(k, v)
	}
	for obj, names := range snap.PropertyHas {
		for name, has := range names {
			var propType types.TypeID
			if has {
				propType = snap.Property[obj][name]
			}
			c.setProperty(obj, name, propType, has)
		}
	}
}

// Reset drops every cached entry, the invalidation hook for source edits.
func (c *NarrowingCache) Reset() {
	c.resolve = make(map[types.TypeID]types.TypeID)
	c.resolveFIFO = nil
	c.property = make(map[propertyKey]types.TypeID)
	c.propertyHas = make(map[propertyKey]bool)
	c.propertyFIFO = nil
}

func (c *NarrowingCache) setProperty(obj types.TypeID, name types.Atom, propType types.TypeID, found bool) {
	key := propertyKey{Obj: obj, Name: name}
	if _, exists := c.propertyHas[key]; !exists {
		if len(c.propertyFIFO) >= c.capacity {
			oldest := c.propertyFIFO[0]
			c.propertyFIFO = c.propertyFIFO[1:]
			delete(c.property, oldest)
			delete(c.propertyHas, oldest)
		}
		c.propertyFIFO = append(c.propertyFIFO, key)
	}
	c.propertyHas[key] = found
	if found {
		c.property[key] = propType
	}
}
