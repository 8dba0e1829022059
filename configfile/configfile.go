// Package configfile loads record-level configuration from YAML. It covers
// the declarative part of a configuration (unknown-key policy, field
// ordering, collect target); hooks stay code-side and can be attached to the
// resolved Config afterwards.
package configfile

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/recodec/recodec"
)

// RecordConfig is the YAML shape for one record's configuration.
type RecordConfig struct {
	Unknown     string `yaml:"unknown"`      // "reject" | "ignore" | "collect"
	ExtraTarget string `yaml:"extra_target"` // instance key for collected unknowns
	Ordering    string `yaml:"ordering"`     // "declared" | "lexical"
}

// File is the parsed configuration document.
type File struct {
	Default RecordConfig            `yaml:"default"`
	Records map[string]RecordConfig `yaml:"records"`

	resolved map[string]*recodec.Config
	fallback *recodec.Config
}

// Load parses a YAML document and resolves every section into a
// recodec.Config. Config pointers are allocated once here, so repeated
// ConfigFor calls return identical pointers and hit the same descriptor
// cache entries.
func Load(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("configfile: %w", err)
	}
	fb, err := toConfig(f.Default)
	if err != nil {
		return nil, fmt.Errorf("configfile: default: %w", err)
	}
	f.fallback = fb
	f.resolved = make(map[string]*recodec.Config, len(f.Records))
	for name, rc := range f.Records {
		cfg, err := toConfig(rc)
		if err != nil {
			return nil, fmt.Errorf("configfile: record %s: %w", name, err)
		}
		f.resolved[name] = cfg
	}
	return &f, nil
}

// ConfigFor returns the configuration for a record, falling back to the
// document default. The returned pointer is stable across calls.
func (f *File) ConfigFor(record string) *recodec.Config {
	if cfg, ok := f.resolved[record]; ok {
		return cfg
	}
	return f.fallback
}

func toConfig(rc RecordConfig) (*recodec.Config, error) {
	cfg := &recodec.Config{}
	switch rc.Unknown {
	case "", "reject":
		cfg.Unknown = recodec.UnknownReject
	case "ignore":
		cfg.Unknown = recodec.UnknownIgnore
	case "collect":
		cfg.Unknown = recodec.UnknownCollect
		if rc.ExtraTarget == "" {
			return nil, fmt.Errorf("unknown policy %q requires extra_target", rc.Unknown)
		}
		cfg.UnknownTarget = rc.ExtraTarget
	default:
		return nil, fmt.Errorf("unknown policy %q", rc.Unknown)
	}
	switch rc.Ordering {
	case "", "declared":
		cfg.Ordering = recodec.OrderDeclared
	case "lexical":
		cfg.Ordering = recodec.OrderLexical
	default:
		return nil, fmt.Errorf("unknown ordering %q", rc.Ordering)
	}
	return cfg, nil
}
