package handlers

import "net/http"

const (
	serviceName = "Coreterra API"
	Version     = "1.0.0"
)

func Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func Root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": serviceName, "version": Version})
}
