package recodec

import "context"

// UnknownPolicy controls how keys absent from the record declaration are
// handled during load.
type UnknownPolicy int

const (
	UnknownReject  UnknownPolicy = iota // Reject unknown keys with an error.
	UnknownIgnore                       // Drop unknown keys.
	UnknownCollect                      // Collect unknown keys into a target field.
)

// FieldOrdering selects the iteration order of fields during load/dump.
type FieldOrdering int

const (
	OrderDeclared FieldOrdering = iota // Declaration order, inherited fields first.
	OrderLexical                       // Key-sorted order.
)

// Direction restricts a field to one side of the load/dump pair.
type Direction int

const (
	DirBoth Direction = iota
	DirLoadOnly
	DirDumpOnly
)

// Requiredness is the tri-state use-site required flag. RequireDefault defers
// to the resolver: fields with a default or an Optional type are not
// required, everything else is.
type Requiredness int

const (
	RequireDefault Requiredness = iota
	RequireYes
	RequireNo
)

// Severity expresses the severity level for raw-layer findings such as
// duplicate JSON keys.
type Severity int

const (
	Ignore Severity = iota
	Warn
	Error
)

// Config is the record-level configuration threaded through compilation.
// A Config pointer is part of the descriptor cache key; reuse the same
// pointer to receive the same compiled descriptor instance. A nil Config
// means the shared default (UnknownReject, OrderDeclared, no hooks).
type Config struct {
	Unknown       UnknownPolicy
	UnknownTarget string // Instance key receiving collected unknowns (UnknownCollect).
	Ordering      FieldOrdering

	// PostLoad runs after all fields loaded successfully and may replace the
	// instance (e.g. to attach derived values). PreDump runs before dumping
	// and may replace the instance.
	PostLoad func(ctx context.Context, inst map[string]any) (map[string]any, error)
	PreDump  func(ctx context.Context, inst map[string]any) (map[string]any, error)
}

// LoadOpt bundles raw-layer options for LoadJSON.
type LoadOpt struct {
	FailFast       bool
	OnDuplicateKey Severity
	MaxDepth       int
}
