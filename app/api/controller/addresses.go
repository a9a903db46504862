package controller

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/chainlens/chainlens/pkg/nameservice"
)

const defaultLabelPageSize = 100

// HandleAddress returns the composed metadata view for one address.
// GET /addresses/{address}
func (c *Controller) HandleAddress(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	address := mux.Vars(r)["address"]

	info, err := c.App.Enrich.Enrich(ctx, address)
	if err != nil {
		if errors.Is(err, nameservice.ErrInvalidAddress) {
			c.writeError(w, http.StatusBadRequest, "invalid address: "+address)
			return
		}
		c.App.Logger.Error("Failed to enrich address",
			zap.String("address", address),
			zap.Error(err))
		c.writeError(w, http.StatusInternalServerError, "failed to enrich address")
		return
	}

	c.writeJSON(w, http.StatusOK, info)
}

// HandleAddressLabels returns raw labels for a page of a comma-separated
// address list.
// GET /addresses/labels?addresses=0xa,0xb&start=0&limit=100
func (c *Controller) HandleAddressLabels(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var addresses []string
	for _, address := range strings.Split(r.URL.Query().Get("addresses"), ",") {
		if address = strings.TrimSpace(address); address != "" {
			addresses = append(addresses, address)
		}
	}

	start, err := queryInt(r, "start", 0)
	if err != nil {
		c.writeError(w, http.StatusBadRequest, "invalid start parameter")
		return
	}
	limit, err := queryInt(r, "limit", defaultLabelPageSize)
	if err != nil {
		c.writeError(w, http.StatusBadRequest, "invalid limit parameter")
		return
	}

	result, err := c.App.Batch.ListLabels(ctx, addresses, start, limit)
	if err != nil {
		c.App.Logger.Error("Failed to list address labels", zap.Error(err))
		c.writeError(w, http.StatusInternalServerError, "failed to list address labels")
		return
	}

	c.writeJSON(w, http.StatusOK, map[string]interface{}{
		"addresses": result,
		"start":     start,
		"limit":     limit,
	})
}

func queryInt(r *http.Request, key string, def int) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}
