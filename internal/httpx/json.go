package httpx

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/dmitrijs2005/hugmood/internal/common"
)

// maxRequestBody bounds JSON request bodies read by DecodeJSON.
const maxRequestBody = 1 << 20

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

// WriteJSON writes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError maps err to its status code and writes {"error","code"}.
// Untyped errors become a bare 500.
func WriteError(w http.ResponseWriter, err error) {
	kind := common.KindOf(err)
	WriteJSON(w, common.HTTPStatus(kind), ErrorBody{
		Error: common.MessageOf(err),
		Code:  string(kind),
	})
}

// DecodeJSON reads a JSON object from r's body into v. An empty body leaves v
// untouched.
func DecodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxRequestBody))
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return common.MissingField("Invalid JSON body")
	}
	return nil
}
