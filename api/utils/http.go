// Copyright (c) 2025 The Vestry developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package utils

import (
	"encoding/json"
	"net/http"

	"github.com/pkg/errors"

	"github.com/vestry-labs/vestry/builtin/reverts"
)

// statusError carries the response status of a failed request.
type statusError struct {
	cause  error
	status int
}

func (e *statusError) Error() string { return e.cause.Error() }
func (e *statusError) Unwrap() error { return e.cause }

// HTTPError attaches an http status to cause.
func HTTPError(cause error, status int) error {
	return &statusError{cause, status}
}

func BadRequest(cause error) error { return HTTPError(cause, http.StatusBadRequest) }
func Forbidden(cause error) error  { return HTTPError(cause, http.StatusForbidden) }

// HandlerFunc is an http handler returning its failure.
type HandlerFunc func(http.ResponseWriter, *http.Request) error

// WrapHandlerFunc adapts f to http.HandlerFunc. The status of a failure is
// the attached one, 400 for engine reverts and 500 otherwise.
func WrapHandlerFunc(f HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := f(w, r)
		if err == nil {
			return
		}
		var se *statusError
		switch {
		case errors.As(err, &se):
			if se.cause == nil {
				w.WriteHeader(se.status)
				return
			}
			http.Error(w, se.cause.Error(), se.status)
		case reverts.IsRevertErr(err):
			http.Error(w, err.Error(), http.StatusBadRequest)
		default:
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	}
}

const JSONContentType = "application/json; charset=utf-8"

// WriteJSON writes obj as the json body of the response.
func WriteJSON(w http.ResponseWriter, obj any) error {
	w.Header().Set("Content-Type", JSONContentType)
	return json.NewEncoder(w).Encode(obj)
}

// M is a shortcut of a json object.
type M map[string]any
