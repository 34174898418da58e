package infrastructure

import (
	"context"

	log "github.com/sirupsen/logrus"
)

// LogErrorReporter reports internal failures to the structured log
type LogErrorReporter struct{}

// NewLogErrorReporter creates a new LogErrorReporter
func NewLogErrorReporter() *LogErrorReporter {
	return &LogErrorReporter{}
}

// ReportError logs the failure with the caller's fields at error level
func (r *LogErrorReporter) ReportError(ctx context.Context, err error, fields map[string]interface{}) {
	entry := log.WithError(err)
	if len(fields) > 0 {
		entry = entry.WithFields(log.Fields(fields))
	}
	if ctx.Err() != nil {
		entry = entry.WithField("contextError", ctx.Err().Error())
	}
	entry.Error("Internal error while processing ledger request")
}
