package application

import (
	"context"

	"fundledger/domain/apperrors"

	log "github.com/sirupsen/logrus"
)

// classifyError passes business errors through and converts everything else to an AppError,
// reporting internal failures. Cancellation by the caller is logged, not reported.
func classifyError(ctx context.Context, reporter ErrorReporter, err error, fields log.Fields, canceledMsg string) error {
	if apperrors.IsBusinessError(err) {
		return err
	}

	appErr := apperrors.FromError(err)
	if appErr.Code == apperrors.CodeRequestCanceled {
		log.WithFields(fields).WithError(err).Warn(canceledMsg)
		return appErr
	}

	if reporter != nil {
		reporter.ReportError(ctx, err, fields)
	}
	return appErr
}
