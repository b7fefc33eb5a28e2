// Package graph exposes the task and account services as a GraphQL schema.
package graph

import (
	_ "embed"

	"github.com/graph-gophers/graphql-go"
)

//go:embed schema.graphql
var SchemaSDL string

// NewSchema parses the schema and binds it to r.
func NewSchema(r *Resolver) (*graphql.Schema, error) {
	return graphql.ParseSchema(SchemaSDL, r, graphql.MaxDepth(8))
}
