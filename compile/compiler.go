// Package compile turns record declarations into executable descriptors.
// It hosts the recursive type resolver, the record compiler, the alias
// registry, the container override table and the descriptor cache.
//
// Lifecycle: construct a Compiler with New, register aliases and container
// overrides during startup, then compile. The alias registry freezes at the
// first Compile; container overrides may be registered later and affect only
// subsequently compiled records. Compile may be called concurrently from any
// number of goroutines; the cache guarantees a single compilation per
// (record, config) key.
package compile

import (
	"github.com/recodec/recodec"
	"github.com/recodec/recodec/introspect"
	"github.com/recodec/recodec/typeexpr"
)

// Compiler owns the registries and cache for one descriptor universe.
type Compiler struct {
	intro     introspect.TypeIntrospector
	registry  *registry
	overrides *overrideTable
	cache     *cache
}

// New returns a Compiler reading declarations from ti.
func New(ti introspect.TypeIntrospector) *Compiler {
	return &Compiler{
		intro:     ti,
		registry:  newRegistry(),
		overrides: newOverrideTable(),
		cache:     newCache(),
	}
}

// RegisterAlias binds a name to an underlying type expression plus attached
// constraints. At resolution the alias constraints run before any declared at
// the use site. Aliases must be registered before the first Compile.
func (c *Compiler) RegisterAlias(name string, underlying typeexpr.Type, constraints ...recodec.Constraint) error {
	return c.registry.register(aliasEntry{
		name:        name,
		underlying:  underlying,
		constraints: append([]recodec.Constraint(nil), constraints...),
	})
}

// RegisterAliasCtor binds a name to a fully custom descriptor constructor,
// bypassing shape resolution entirely. Use-site constraints still reach the
// constructor through the merged metadata.
func (c *Compiler) RegisterAliasCtor(name string, ctor DescriptorCtor) error {
	return c.registry.register(aliasEntry{name: name, custom: ctor})
}

// RegisterContainerOverride replaces the default descriptor construction for
// a container shape. Descriptors already in the cache are unaffected.
func (c *Compiler) RegisterContainerOverride(k typeexpr.Kind, ctor ContainerCtor) error {
	if !k.IsContainer() {
		return &UnsupportedTypeError{Shape: k.String(), Reason: "overrides apply to container shapes only"}
	}
	c.overrides.register(k, ctor)
	return nil
}

// Compile returns the descriptor for a record type under the given
// configuration, compiling it on first request. The same (record, cfg)
// pair always yields the identical descriptor instance; cfg identity is
// pointer identity with nil meaning the shared default.
func (c *Compiler) Compile(record string, cfg *recodec.Config) (*recodec.RecordDescriptor, error) {
	c.registry.freeze()
	return c.cache.getOrCompile(c, record, cfg)
}

// Resolve compiles a standalone field descriptor for a type expression and
// metadata, outside any record. Useful for tests and for callers embedding
// single-value validation.
func (c *Compiler) Resolve(t typeexpr.Type, meta recodec.Meta) (*recodec.FieldDescriptor, error) {
	c.registry.freeze()
	s := newSession(c)
	fd, err := s.resolve(t, meta, nil)
	if err != nil {
		return nil, err
	}
	s.publish(c.cache)
	return fd, nil
}

// Invalidate drops every cached descriptor of a record type. Intended for
// test isolation, not for normal request handling.
func (c *Compiler) Invalidate(record string) {
	c.cache.invalidate(record)
}

// ---- compilation session ----

// A session is one top-level compilation run. It tracks in-progress record
// descriptors so that self- or mutually-recursive record references resolve
// to the placeholder registered before field resolution, instead of
// re-entering compilation and diverging.
type session struct {
	c          *Compiler
	inProgress map[cacheKey]*recodec.RecordDescriptor
	completed  []cacheKey
}

func newSession(c *Compiler) *session {
	return &session{c: c, inProgress: map[cacheKey]*recodec.RecordDescriptor{}}
}

// record compiles (or returns) the descriptor for a record under cfg.
func (s *session) record(name string, cfg *recodec.Config) (*recodec.RecordDescriptor, error) {
	key := cacheKey{record: name, cfg: cfg}
	if rd, ok := s.c.cache.get(key); ok {
		return rd, nil
	}
	if rd, ok := s.inProgress[key]; ok {
		return rd, nil
	}

	rec, ok := s.c.intro.Record(name)
	if !ok {
		return nil, &UnknownRecordError{Record: name}
	}
	fields, err := s.flatten(rec, map[string]bool{name: true})
	if err != nil {
		return nil, err
	}

	// Register the forward placeholder before recursing into fields.
	rd := &recodec.RecordDescriptor{Name: name, Config: cfg}
	s.inProgress[key] = rd

	seen := map[string]string{} // serialized key -> field name
	for _, f := range fields {
		fd, err := s.resolve(f.Type, f.Meta, cfg)
		if err != nil {
			delete(s.inProgress, key)
			return nil, err
		}
		fd.Name = f.Name
		fd.Key = f.Name
		if f.Meta.Key != "" {
			fd.Key = f.Meta.Key
		}
		if prev, dup := seen[fd.Key]; dup {
			delete(s.inProgress, key)
			return nil, &DuplicateFieldError{Record: name, Key: fd.Key, Fields: [2]string{prev, f.Name}}
		}
		seen[fd.Key] = f.Name
		rd.Fields = append(rd.Fields, fd)
	}
	rd.Finalize()
	s.completed = append(s.completed, key)
	return rd, nil
}

// flatten resolves the inheritance chain: base fields first in their own
// declaration order; a same-named field in the derived record replaces the
// inherited one in place rather than appending.
func (s *session) flatten(rec introspect.Record, visiting map[string]bool) ([]introspect.Field, error) {
	if rec.Base == "" {
		return rec.Fields, nil
	}
	if visiting[rec.Base] {
		return nil, &UnsupportedTypeError{Shape: "record<" + rec.Name + ">", Reason: "inheritance cycle through " + rec.Base}
	}
	base, ok := s.c.intro.Record(rec.Base)
	if !ok {
		return nil, &UnknownRecordError{Record: rec.Base}
	}
	visiting[rec.Base] = true
	inherited, err := s.flatten(base, visiting)
	if err != nil {
		return nil, err
	}
	merged := append([]introspect.Field(nil), inherited...)
	for _, f := range rec.Fields {
		replaced := false
		for i := range merged {
			if merged[i].Name == f.Name {
				merged[i] = f
				replaced = true
				break
			}
		}
		if !replaced {
			merged = append(merged, f)
		}
	}
	return merged, nil
}

// publish moves every record completed by this session into the cache.
func (s *session) publish(c *cache) {
	for _, key := range s.completed {
		c.put(key, s.inProgress[key])
	}
}
