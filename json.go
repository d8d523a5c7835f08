package main

import (
	"encoding/json"
	"errors"
	"net/http"
)

// JSON response plumbing shared by every handler.

type errorBody struct {
	Error string `json:"error"`
}

// respondWithJSON writes payload as a JSON body under the given status code.
// A marshal failure turns into a bare 500; there is nothing useful left to
// tell the client at that point.
func (cfg *apiConfig) respondWithJSON(w http.ResponseWriter, code int, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		cfg.logger.Error("error marshalling JSON", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err := w.Write(data); err != nil {
		cfg.logger.Error("error writing response", "error", err)
	}
}

// respondWithError sends msg to the client under the given status code,
// logging err when one is provided.
func (cfg *apiConfig) respondWithError(w http.ResponseWriter, code int, msg string, err error) {
	if err != nil {
		cfg.logger.Error(msg, "error", err)
	}
	cfg.respondWithJSON(w, code, errorBody{Error: msg})
}

// respondLookupError maps lookup failures onto HTTP status codes and
// user-facing messages.
func (cfg *apiConfig) respondLookupError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrLocationNotFound):
		cfg.respondWithError(w, http.StatusNotFound, ErrLocationNotFound.Error(), err)
	case errors.Is(err, ErrUnauthorized):
		cfg.respondWithError(w, http.StatusInternalServerError, ErrUnauthorized.Error(), err)
	case errors.Is(err, ErrUpstream):
		cfg.respondWithError(w, http.StatusBadGateway, err.Error(), err)
	default:
		cfg.respondWithError(w, http.StatusInternalServerError, "Error getting weather data", err)
	}
}
