package controller

import (
	"encoding/json"
	"net/http"
)

func (c *Controller) HandleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode("1")
}
