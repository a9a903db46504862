// Package reporter publishes error reports to the data journal so operators
// see best-effort degradations without grepping logs. Reporting is fire and
// forget: a failure to report is itself only logged.
package reporter

import (
	"context"
	"time"

	"github.com/chainlens/chainlens/pkg/journal"
	"go.uber.org/zap"
)

const reportTimeout = 5 * time.Second

type Reporter struct {
	logger    *zap.Logger
	client    journal.Client
	journalID string
}

func New(logger *zap.Logger, client journal.Client, journalID string) *Reporter {
	return &Reporter{logger: logger, client: client, journalID: journalID}
}

// ErrorReport publishes one error as a journal entry. The report inherits the
// caller's context but never fails the caller.
func (r *Reporter) ErrorReport(ctx context.Context, err error, tags ...string) {
	reportCtx, cancel := context.WithTimeout(ctx, reportTimeout)
	defer cancel()

	entry := journal.Entry{
		Title:   "chainlens error report",
		Content: err.Error(),
		Tags:    append([]string{"type:error_report"}, tags...),
	}

	if reportErr := r.client.CreateEntry(reportCtx, r.journalID, entry); reportErr != nil {
		r.logger.Warn("Failed to publish error report",
			zap.Error(reportErr),
			zap.NamedError("reported", err))
	}
}
