package core

import (
	"context"
	"sort"
	"strings"

	glog "github.com/goliatone/go-logger/glog"
)

// Auditor writes the per-notification audit trail. Benign ignores log at
// INFO, upstream failures at ERROR; every outcome carries the structured
// reason fields.
type Auditor struct {
	logger Logger
}

func NewAuditor(logger Logger) *Auditor {
	if logger == nil {
		_, logger = glog.Resolve("zaaknotify", nil, nil)
	}
	return &Auditor{logger: logger}
}

func (a *Auditor) Info(ctx context.Context, message string, fields map[string]any) {
	a.log(ctx, "info", message, fields)
}

func (a *Auditor) Error(ctx context.Context, message string, fields map[string]any) {
	a.log(ctx, "error", message, fields)
}

func (a *Auditor) Warn(ctx context.Context, message string, fields map[string]any) {
	a.log(ctx, "warn", message, fields)
}

func (a *Auditor) log(ctx context.Context, level string, message string, fields map[string]any) {
	if a == nil || a.logger == nil {
		return
	}
	logger := a.logger
	if ctx != nil {
		logger = logger.WithContext(ctx)
	}
	if fieldsLogger, ok := logger.(FieldsLogger); ok {
		logger = fieldsLogger.WithFields(cloneFields(fields))
	}
	args := flattenFields(fields)
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "error":
		logger.Error(message, args...)
	case "warn":
		logger.Warn(message, args...)
	default:
		logger.Info(message, args...)
	}
}

func cloneFields(fields map[string]any) map[string]any {
	if len(fields) == 0 {
		return map[string]any{}
	}
	copied := make(map[string]any, len(fields))
	for key, value := range fields {
		copied[key] = value
	}
	return copied
}

func flattenFields(fields map[string]any) []any {
	if len(fields) == 0 {
		return nil
	}
	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	args := make([]any, 0, len(keys)*2)
	for _, key := range keys {
		args = append(args, key, fields[key])
	}
	return args
}
