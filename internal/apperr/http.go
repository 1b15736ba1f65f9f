package apperr

import (
	"encoding/json"
	"net/http"
)

// HTTPBody is the JSON body written for every REST failure.
type HTTPBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// WriteHTTP converts err to its REST representation and writes it. This is
// the only place a tagged error becomes an HTTP response.
func WriteHTTP(w http.ResponseWriter, err error) {
	e := From(err)
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(HTTPStatus(e))
	_ = json.NewEncoder(w).Encode(HTTPBody{
		Error:   Code(e),
		Message: e.Error(),
	})
}
