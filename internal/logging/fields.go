package logging

// Field names for structured logging.
const (
	FieldError = "error"
	FieldPath  = "path"
	FieldPaths = "paths"
	FieldAddr  = "addr"

	// Configuration.
	FieldFlavor    = "flavor"
	FieldThreshold = "threshold"
	FieldJobs      = "jobs"

	// Documents.
	FieldDocument = "document"
	FieldBytes    = "bytes"
	FieldNodes    = "nodes"

	// Incremental parsing.
	FieldMode    = "mode"
	FieldRegions = "regions"
	FieldReused  = "reused"
	FieldCutoff  = "cutoff"

	// Patcher flushes.
	FieldWeight   = "weight"
	FieldAppended = "appended"
	FieldReplaced = "replaced"

	// Build info.
	FieldVersion = "version"
	FieldCommit  = "commit"
	FieldBuilt   = "built"
)
