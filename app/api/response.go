package api

import (
	"encoding/json"
	"net/http"
)

// OKResponse writes data as JSON with status 200.
func OKResponse(w http.ResponseWriter, data any) {
	JSONResponse(w, http.StatusOK, data)
}

// ErrorResponse writes {"error": message} with the given status.
func ErrorResponse(w http.ResponseWriter, status int, message string) {
	JSONResponse(w, status, map[string]string{"error": message})
}

func JSONResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
