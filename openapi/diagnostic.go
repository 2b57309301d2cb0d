package openapi

import (
	"go.uber.org/zap"
)

// DiagnosticKind classifies a non-fatal irregularity found during generation.
type DiagnosticKind string

const (
	// DuplicateOperationID: an operation id was emitted more than once.
	DuplicateOperationID DiagnosticKind = "duplicate_operation_id"
	// MergedOperationID: two different ids were concatenated while merging.
	MergedOperationID DiagnosticKind = "merged_operation_id"
	// MergeConflict: merged operations disagreed on a field resolved by
	// taking the last value.
	MergeConflict DiagnosticKind = "merge_conflict"
)

// Diagnostic is a non-fatal warning. Diagnostics never appear in the
// generated document.
type Diagnostic struct {
	Kind        DiagnosticKind
	OperationID string
	Path        string
	Method      string
	// Key is the dotted location of a merge conflict inside the path item.
	Key     string
	Message string
}

// reporter delivers diagnostics for one generation run.
type reporter struct {
	log  *zap.Logger
	hook func(Diagnostic)
}

func (r *reporter) report(d Diagnostic) {
	if r == nil {
		return
	}
	if r.log != nil {
		fields := []zap.Field{zap.String("kind", string(d.Kind))}
		if d.OperationID != "" {
			fields = append(fields, zap.String("operation_id", d.OperationID))
		}
		if d.Path != "" {
			fields = append(fields, zap.String("path", d.Path))
		}
		if d.Method != "" {
			fields = append(fields, zap.String("method", d.Method))
		}
		if d.Key != "" {
			fields = append(fields, zap.String("key", d.Key))
		}
		r.log.Warn(d.Message, fields...)
	}
	if r.hook != nil {
		r.hook(d)
	}
}
