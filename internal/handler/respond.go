package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/upao-inso/restaurant-pos/internal/validation"
)

var validate = validation.New()

// bodyError is a request body that failed field validation.
type bodyError struct {
	messages []string
}

func (e *bodyError) Error() string { return strings.Join(e.messages, "; ") }

var errMalformedBody = errors.New("invalid request body")

// decodeJSON decodes the body into dest and runs its validate tags.
func decodeJSON(r *http.Request, dest any) error {
	defer io.Copy(io.Discard, r.Body) //nolint:errcheck

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dest); err != nil {
		return fmt.Errorf("%w: %v", errMalformedBody, err)
	}
	if err := validate.Struct(dest); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return err
		}
		return &bodyError{messages: validation.Messages(verrs, nil)}
	}
	return nil
}

// writeDecodeError answers 400 for malformed JSON and 422 for invalid fields.
func writeDecodeError(w http.ResponseWriter, err error) {
	var be *bodyError
	if errors.As(err, &be) {
		writeErrors(w, http.StatusUnprocessableEntity, be.messages)
		return
	}
	writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Error("failed to encode JSON response", zap.Error(err))
	}
}

func writeErrors(w http.ResponseWriter, status int, msgs []string) {
	writeJSON(w, status, map[string][]string{"errors": msgs})
}

func internalError(w http.ResponseWriter, msg string, err error) {
	zap.L().Error(msg, zap.Error(err))
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
}

func uuidParam(r *http.Request, name string) (uuid.UUID, error) {
	return uuid.Parse(chi.URLParam(r, name))
}
