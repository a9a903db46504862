package controller

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/chainlens/chainlens/pkg/journal"
)

// HandleStatus reports the most recent observed event per tracked crawl type.
// GET /status
func (c *Controller) HandleStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	status, err := c.App.Status.Status(ctx)
	if err != nil {
		var statusErr *journal.StatusError
		if errors.As(err, &statusErr) {
			c.App.Logger.Error("Crawl status check failed",
				zap.String("crawl_type", statusErr.CrawlType),
				zap.Error(err))
		} else {
			c.App.Logger.Error("Crawl status check failed", zap.Error(err))
		}
		c.writeError(w, http.StatusInternalServerError, "failed to check crawl status")
		return
	}

	c.writeJSON(w, http.StatusOK, status)
}
