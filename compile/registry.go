package compile

import (
	"sync"
	"sync/atomic"

	"github.com/recodec/recodec"
	"github.com/recodec/recodec/typeexpr"
)

// DescriptorCtor builds a fully custom field descriptor for a type alias,
// bypassing default resolution entirely. It receives the merged metadata
// (alias constraints stacked before use-site constraints) and owns the whole
// contract: conversion, constraint execution, requiredness and defaults.
type DescriptorCtor func(meta recodec.Meta) (*recodec.FieldDescriptor, error)

type aliasEntry struct {
	name        string
	underlying  typeexpr.Type
	constraints []recodec.Constraint
	custom      DescriptorCtor
}

// registry maps alias names to their underlying type, attached constraints
// and optional custom constructor. Entries are created once at declaration
// time and immutable afterward; the registry freezes at the first compile
// and rejects later writes.
type registry struct {
	mu      sync.RWMutex
	entries map[string]aliasEntry
	frozen  atomic.Bool
}

func newRegistry() *registry {
	return &registry{entries: map[string]aliasEntry{}}
}

func (r *registry) register(e aliasEntry) error {
	if r.frozen.Load() {
		return ErrRegistryFrozen
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.entries[e.name]; exists {
		return ErrAliasExists
	}
	r.entries[e.name] = e
	return nil
}

func (r *registry) lookup(name string) (aliasEntry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[name]
	return e, ok
}

func (r *registry) freeze() { r.frozen.Store(true) }
