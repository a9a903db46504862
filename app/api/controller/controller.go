package controller

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/chainlens/chainlens/app/api/types"
)

type Controller struct {
	App *types.App
}

// NewController returns a new controller.
func NewController(app *types.App) *Controller {
	return &Controller{
		App: app,
	}
}

// NewRouter returns a new router with all the routes defined in this file.
func (c *Controller) NewRouter() (*mux.Router, error) {
	r := mux.NewRouter()

	r.Handle("/health", http.HandlerFunc(c.HandleHealth)).Methods("GET")

	r.HandleFunc("/addresses/labels", c.HandleAddressLabels).Methods("GET")
	r.HandleFunc("/addresses/{address}", c.HandleAddress).Methods("GET")

	r.HandleFunc("/names/{name}", c.HandleResolveName).Methods("GET")

	r.HandleFunc("/contracts/{address}/source", c.HandleContractSource).Methods("GET")
	r.HandleFunc("/contracts/{address}/abi", c.HandleUploadABI).Methods("POST")

	r.HandleFunc("/status", c.HandleStatus).Methods("GET")

	return r, nil
}

// WithCORS restricts cross-origin access to the configured origin list.
func WithCORS(origins []string, next http.Handler) http.Handler {
	allowed := make(map[string]struct{}, len(origins))
	for _, origin := range origins {
		allowed[origin] = struct{}{}
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if _, ok := allowed[origin]; ok {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
		}
		w.Header().Set("Vary", "Origin")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Allow-Methods", http.MethodGet+", "+http.MethodPost+", "+http.MethodOptions)

		// Fast-path the preflight
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (c *Controller) writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes an error response
func (c *Controller) writeError(w http.ResponseWriter, statusCode int, message string) {
	c.writeJSON(w, statusCode, map[string]string{"error": message})
}
