package compile

import (
	"sync"

	"github.com/recodec/recodec"
	"github.com/recodec/recodec/typeexpr"
)

// ContainerCtor replaces the default conversion core for one container
// shape. It receives the already-resolved element descriptors (one per
// declared element type, a single Dynamic descriptor for bare containers)
// and the use-site metadata. Field-level policy (constraints, requiredness,
// defaults, direction) is layered on top of the returned descriptor by the
// resolver, the same as for built-in containers.
type ContainerCtor func(elems []*recodec.FieldDescriptor, meta recodec.Meta) (*recodec.FieldDescriptor, error)

// overrideTable maps container shapes to replacement constructors. Unlike
// the alias registry it is not frozen: registering an override mid-process
// affects only descriptors compiled afterwards, and already-cached
// descriptors are never rebuilt.
type overrideTable struct {
	mu    sync.RWMutex
	ctors map[typeexpr.Kind]ContainerCtor
}

func newOverrideTable() *overrideTable {
	return &overrideTable{ctors: map[typeexpr.Kind]ContainerCtor{}}
}

func (t *overrideTable) register(k typeexpr.Kind, ctor ContainerCtor) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.ctors[k] = ctor
}

func (t *overrideTable) lookup(k typeexpr.Kind) (ContainerCtor, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	ctor, ok := t.ctors[k]
	return ctor, ok
}
