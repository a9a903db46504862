package controller

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/chainlens/chainlens/pkg/nameservice"
)

// HandleResolveName resolves a registered name to its address.
// GET /names/{name}
func (c *Controller) HandleResolveName(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	name := mux.Vars(r)["name"]

	address, err := c.App.Names.ResolveAddress(ctx, name)
	if err != nil {
		if errors.Is(err, nameservice.ErrInvalidName) {
			c.writeError(w, http.StatusBadRequest, "invalid name: "+name)
			return
		}
		c.App.Logger.Error("Failed to resolve name",
			zap.String("name", name),
			zap.Error(err))
		c.writeError(w, http.StatusInternalServerError, "failed to resolve name")
		return
	}
	if address == "" {
		c.writeError(w, http.StatusNotFound, "name is not registered: "+name)
		return
	}

	c.writeJSON(w, http.StatusOK, map[string]string{"name": name, "address": address})
}
