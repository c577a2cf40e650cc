// internal/app/system/httpjson/httpjson.go
package httpjson

import (
	"encoding/json"
	"net/http"
)

// errorBody is the JSON error envelope every endpoint uses.
type errorBody struct {
	Error string `json:"error"`
}

// Write encodes v as JSON with the given status.
func Write(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Error writes the standard error envelope.
func Error(w http.ResponseWriter, status int, msg string) {
	Write(w, status, errorBody{Error: msg})
}

// Created writes a 201 with the created resource.
func Created(w http.ResponseWriter, v interface{}) {
	Write(w, http.StatusCreated, v)
}

// OK writes a 200 with the given body.
func OK(w http.ResponseWriter, v interface{}) {
	Write(w, http.StatusOK, v)
}

// NoContent writes a 204.
func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// ListEnvelope is the paged list response shape.
type ListEnvelope struct {
	Count   int64       `json:"count"`
	Page    int         `json:"page"`
	Results interface{} `json:"results"`
}
