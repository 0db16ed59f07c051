// Package handlers implements the HTTP endpoints.
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/turtacn/chemidr/pkg/errors"
)

// ErrorResponse is the standard error response body.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

func writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// writeAppError maps an error to its code's HTTP status. Errors that are not
// AppErrors are masked as internal.
func writeAppError(w http.ResponseWriter, err error) {
	var ae *errors.AppError
	if !errors.As(err, &ae) {
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{
			Code:    string(errors.ErrCodeInternal),
			Message: "internal server error",
		})
		return
	}
	writeJSON(w, ae.HTTPStatus(), ErrorResponse{
		Code:    string(ae.Code),
		Message: ae.Message,
		Detail:  ae.Detail,
	})
}

// decodeJSON reads a size-limited JSON body into dst, rejecting unknown fields.
func decodeJSON(w http.ResponseWriter, r *http.Request, maxBytes int64, dst interface{}) error {
	if maxBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	}
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return errors.InvalidParam("request body too large")
		}
		return errors.Wrap(err, errors.CodeInvalidParam, "malformed request body").WithDetail(err.Error())
	}
	if dec.More() {
		return errors.InvalidParam("request body must hold a single JSON value")
	}
	return nil
}

//Personal.AI order the ending
