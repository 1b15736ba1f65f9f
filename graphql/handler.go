package graphql

import (
	"encoding/json"
	"net/http"

	"github.com/graphql-go/graphql"
	"github.com/graphql-go/graphql/gqlerrors"
	"github.com/rs/zerolog/log"

	"github.com/tentolabs/tento/internal/apperr"
)

// Handler serves the GraphQL endpoint. Per GraphQL convention, resolver
// failures travel in the errors array of a 200 response; only an unreadable
// request body yields a REST-style error.
type Handler struct {
	schema graphql.Schema
}

func NewHandler(schema graphql.Schema) *Handler {
	return &Handler{schema: schema}
}

type request struct {
	Query         string                 `json:"query"`
	OperationName string                 `json:"operationName"`
	Variables     map[string]interface{} `json:"variables"`
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apperr.WriteHTTP(w, apperr.Validation("query", "request body must be a JSON GraphQL request"))
		return
	}

	result := graphql.Do(graphql.Params{
		Schema:         h.schema,
		RequestString:  req.Query,
		OperationName:  req.OperationName,
		VariableValues: req.Variables,
		Context:        r.Context(),
	})

	if result.HasErrors() {
		logErrors(result.Errors)
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	_ = json.NewEncoder(w).Encode(result)
}

func logErrors(errs []gqlerrors.FormattedError) {
	for _, fe := range errs {
		log.Warn().Str("message", fe.Message).Interface("extensions", fe.Extensions).Msg("graphql error")
	}
}
