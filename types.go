package oasgen

// NumberMode dictates which rendering of a sampled number is embedded as an
// example.
type NumberMode int

const (
	NumberJSONNumber NumberMode = iota // Keep the literal text as written in the input.
	NumberFloat64                      // Re-render through float64 (precision loss is visible).
)

// Severity expresses the severity level for issues.
type Severity int

const (
	Ignore Severity = iota
	Warn
	Error
)

// Strictness configures enforcement for duplicate keys.
type Strictness struct {
	// OnDuplicateKey selects how a repeated object key is treated. With Ignore
	// and Warn the later value wins and the key keeps its first position.
	OnDuplicateKey Severity
}

// ParseOpt bundles options for the JSON parsing boundary.
type ParseOpt struct {
	Strictness Strictness
	MaxDepth   int   // 0 disables the check
	MaxBytes   int64 // 0 disables the check
	NumberMode NumberMode
	FailFast   bool
	// IssueSink receives non-fatal issues such as duplicate key warnings.
	IssueSink func(Issue)
}

func lastParseOpt(opts []ParseOpt) ParseOpt {
	if len(opts) == 0 {
		return ParseOpt{}
	}
	return opts[len(opts)-1]
}
