package httputil

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
)

// MaxBodyBytes bounds request bodies read by ParseJSON
const MaxBodyBytes = 1 << 20

// ParseJSON decodes a JSON request body into dest
func ParseJSON(r *http.Request, dest interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, MaxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dest); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	return nil
}

// ParseJSONOrError decodes JSON and writes a 400 response on failure
func ParseJSONOrError(w http.ResponseWriter, r *http.Request, dest interface{}) bool {
	if err := ParseJSON(r, dest); err != nil {
		WriteBadRequest(w, err.Error())
		return false
	}
	return true
}

// PathParam returns a non-empty mux path parameter
func PathParam(r *http.Request, key string) (string, error) {
	value := mux.Vars(r)[key]
	if value == "" {
		return "", fmt.Errorf("missing path parameter: %s", key)
	}
	return value, nil
}
