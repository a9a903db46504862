package controller

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/chainlens/chainlens/pkg/artifacts"
	"github.com/chainlens/chainlens/pkg/contracts"
)

// HandleContractSource returns the verified source record for a contract.
// GET /contracts/{address}/source
func (c *Controller) HandleContractSource(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	address := mux.Vars(r)["address"]

	info, err := c.App.Artifacts.SourceInfo(ctx, address)
	if err != nil {
		c.App.Logger.Error("Failed to load contract source",
			zap.String("address", address),
			zap.Error(err))
		c.writeError(w, http.StatusInternalServerError, "failed to load contract source")
		return
	}
	if info == nil {
		c.writeError(w, http.StatusNotFound, "no verified source for address "+address)
		return
	}

	c.writeJSON(w, http.StatusOK, info)
}

type uploadABIRequest struct {
	ResourceID string `json:"resource_id"`
	ABI        string `json:"abi"`
}

// HandleUploadABI validates and stores a submitted contract ABI.
// POST /contracts/{address}/abi
func (c *Controller) HandleUploadABI(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	address := mux.Vars(r)["address"]

	var req uploadABIRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		c.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ResourceID == "" || req.ABI == "" {
		c.writeError(w, http.StatusBadRequest, "resource_id and abi are required")
		return
	}

	resource := artifacts.Resource{ID: req.ResourceID, Address: address}
	update, err := c.App.Artifacts.UploadABI(ctx, resource, req.ABI)
	if err != nil {
		var schemaErr *contracts.SchemaError
		switch {
		case errors.Is(err, contracts.ErrMalformed):
			c.writeError(w, http.StatusBadRequest, "abi is not valid json")
		case errors.As(err, &schemaErr):
			c.writeError(w, http.StatusBadRequest, schemaErr.Error())
		default:
			c.App.Logger.Error("Failed to upload ABI",
				zap.String("address", address),
				zap.Error(err))
			c.writeError(w, http.StatusInternalServerError, "failed to upload abi")
		}
		return
	}

	c.writeJSON(w, http.StatusOK, update)
}
