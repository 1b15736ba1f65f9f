// Package graphql exposes the same domain over a GraphQL endpoint. Failures
// surface as GraphQL errors whose extensions.code comes from the same wire
// table as the REST status codes.
package graphql

import (
	"github.com/graphql-go/graphql"
	"github.com/pkg/errors"

	"github.com/tentolabs/tento/auth"
	"github.com/tentolabs/tento/internal/apperr"
	"github.com/tentolabs/tento/quizzes"
	"github.com/tentolabs/tento/token"
	"github.com/tentolabs/tento/users"
)

var userType = graphql.NewObject(graphql.ObjectConfig{
	Name: "User",
	Fields: graphql.Fields{
		"id":       &graphql.Field{Type: graphql.String},
		"username": &graphql.Field{Type: graphql.String},
		"email":    &graphql.Field{Type: graphql.String},
		"role":     &graphql.Field{Type: graphql.String},
		"fullName": &graphql.Field{
			Type: graphql.String,
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				user, ok := p.Source.(*users.User)
				if !ok {
					return nil, nil
				}
				return user.FullName(), nil
			},
		},
	},
})

var quizType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Quiz",
	Fields: graphql.Fields{
		"id":      &graphql.Field{Type: graphql.String},
		"ownerId": &graphql.Field{
			Type: graphql.String,
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				quiz, ok := p.Source.(*quizzes.Quiz)
				if !ok {
					return nil, nil
				}
				return quiz.OwnerID, nil
			},
		},
		"title":  &graphql.Field{Type: graphql.String},
		"status": &graphql.Field{Type: graphql.String},
	},
})

// NewSchema builds the query/mutation schema over the repository contracts.
// Resolvers read verified claims from the request context; requests without
// a valid access token fail with an Unauthorized error.
func NewSchema(userRepo users.Repo, quizRepo quizzes.Repo) (graphql.Schema, error) {
	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"me": &graphql.Field{
				Type: userType,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					claims := token.ClaimsFromContext(p.Context)
					if err := auth.RequireClaims(claims); err != nil {
						return nil, err
					}
					user, err := userRepo.GetByID(p.Context, claims.Subject)
					if errors.Is(err, users.ErrNotFound) {
						return nil, apperr.NotFound("user not found")
					}
					if err != nil {
						return nil, apperr.Repository(err)
					}
					return user, nil
				},
			},
			"user": &graphql.Field{
				Type: userType,
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					claims := token.ClaimsFromContext(p.Context)
					id, _ := p.Args["id"].(string)
					if err := auth.RequireOwnerOrAdmin(claims, id); err != nil {
						return nil, err
					}
					user, err := userRepo.GetByID(p.Context, id)
					if errors.Is(err, users.ErrNotFound) {
						return nil, apperr.NotFound("user not found")
					}
					if err != nil {
						return nil, apperr.Repository(err)
					}
					return user, nil
				},
			},
			"quiz": &graphql.Field{
				Type: quizType,
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					claims := token.ClaimsFromContext(p.Context)
					if err := auth.RequireClaims(claims); err != nil {
						return nil, err
					}
					id, _ := p.Args["id"].(string)
					quiz, err := quizRepo.GetByID(p.Context, id)
					if errors.Is(err, quizzes.ErrNotFound) {
						return nil, apperr.NotFound("quiz not found")
					}
					if err != nil {
						return nil, apperr.Repository(err)
					}
					if err := auth.RequireOwnerOrAdmin(claims, quiz.OwnerID); err != nil {
						return nil, err
					}
					return quiz, nil
				},
			},
			"quizzes": &graphql.Field{
				Type: graphql.NewList(quizType),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					claims := token.ClaimsFromContext(p.Context)
					if err := auth.RequireClaims(claims); err != nil {
						return nil, err
					}
					list, err := quizRepo.ListByOwner(p.Context, claims.Subject)
					if err != nil {
						return nil, apperr.Repository(err)
					}
					return list, nil
				},
			},
		},
	})

	mutationType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Mutation",
		Fields: graphql.Fields{
			"createQuiz": &graphql.Field{
				Type: quizType,
				Args: graphql.FieldConfigArgument{
					"title": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					claims := token.ClaimsFromContext(p.Context)
					if err := auth.RequireClaims(claims); err != nil {
						return nil, err
					}
					title, _ := p.Args["title"].(string)
					if title == "" {
						return nil, apperr.Validation("title", "title is required")
					}
					quiz, err := quizRepo.Create(p.Context, quizzes.Quiz{
						OwnerID: claims.Subject,
						Title:   title,
					})
					if err != nil {
						return nil, apperr.Repository(err)
					}
					return quiz, nil
				},
			},
			"deleteQuiz": &graphql.Field{
				Type: graphql.Boolean,
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					claims := token.ClaimsFromContext(p.Context)
					if err := auth.RequireClaims(claims); err != nil {
						return nil, err
					}
					id, _ := p.Args["id"].(string)
					quiz, err := quizRepo.GetByID(p.Context, id)
					if errors.Is(err, quizzes.ErrNotFound) {
						return nil, apperr.NotFound("quiz not found")
					}
					if err != nil {
						return nil, apperr.Repository(err)
					}
					if err := auth.RequireOwnerOrAdmin(claims, quiz.OwnerID); err != nil {
						return nil, err
					}
					if err := quizRepo.Delete(p.Context, id); err != nil {
						return nil, apperr.Repository(err)
					}
					return true, nil
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query:    queryType,
		Mutation: mutationType,
	})
}
