package server

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/tentolabs/tento/internal/apperr"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError converts a tagged error to its REST representation. The wire
// body hides internal causes; the cause is logged here instead.
func writeError(w http.ResponseWriter, err error) {
	e := apperr.From(err)
	evt := log.Warn().Str("code", apperr.Code(e))
	if cause := apperr.Cause(e); cause != nil {
		evt = evt.AnErr("cause", cause)
	}
	evt.Msg(e.Error())

	apperr.WriteHTTP(w, e)
}
