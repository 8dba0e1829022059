package recodec

import "context"

// Constraint is an opaque validation callable supplied by a validator
// library. It receives the converted value and returns nil or Issues.
type Constraint func(ctx context.Context, v any) error

// Meta is the use-site metadata attached to a field declaration. The zero
// value means: serialized name equals the field name, requiredness decided
// by the resolver, no default, both directions, no constraints.
type Meta struct {
	Key         string       // Serialized-name override.
	Required    Requiredness // Tri-state required flag.
	Default     any          // Default value applied when the key is absent.
	DefaultFunc func() any   // Default factory; takes precedence over Default.
	Direction   Direction
	Constraints []Constraint
	// DisallowNull rejects explicit null for shapes that otherwise accept
	// any value (Dynamic).
	DisallowNull bool
	// Config overrides the record-level configuration for a nested record
	// field. When nil the parent configuration propagates.
	Config *Config
}

// HasDefault reports whether a default value or factory is declared.
func (m Meta) HasDefault() bool { return m.DefaultFunc != nil || m.Default != nil }

// MergeConstraints concatenates alias-level constraints with use-site
// constraints, alias first. No deduplication: a constraint appearing in both
// lists runs twice; stacking is intentional.
func MergeConstraints(alias, field []Constraint) []Constraint {
	if len(alias) == 0 && len(field) == 0 {
		return nil
	}
	out := make([]Constraint, 0, len(alias)+len(field))
	out = append(out, alias...)
	out = append(out, field...)
	return out
}

// RunConstraints applies each constraint in order, collecting issues.
// Honors fail-fast via context.
func RunConstraints(ctx context.Context, cons []Constraint, v any) Issues {
	var iss Issues
	for _, c := range cons {
		if c == nil {
			continue
		}
		if err := c(ctx, v); err != nil {
			iss = AppendIssues(iss, IssuesFromErr("/", err)...)
			if IsFailFast(ctx) {
				return iss
			}
		}
	}
	return iss
}
