package pokeapi

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/hanpama/pokegraph/internal/restrt"
	schema "github.com/hanpama/pokegraph/internal/schema"
)

//go:embed schema.graphql
var SDL string

// LoadSchema builds the gateway schema from the embedded SDL.
func LoadSchema() (*schema.Schema, error) {
	return schema.BuildFromNamedSDL("pokeapi/schema.graphql", SDL)
}

// Register adds the remote field resolvers backed by c to reg.
func Register(reg *restrt.Registry, c *Client) *restrt.Registry {
	return reg.
		Register("Query", "fetchPokemon", func(ctx context.Context, _ any, args map[string]any) (any, error) {
			name, _ := args["pokemonName"].(string)
			p, err := c.FetchPokemon(ctx, name)
			if err != nil {
				return nil, err
			}
			return p, nil
		}).
		Register("Form", "detail", func(ctx context.Context, source any, _ map[string]any) (any, error) {
			form, ok := source.(*Form)
			if !ok {
				return nil, fmt.Errorf("Form.detail: unexpected source %T", source)
			}
			if form.URL == nil || *form.URL == "" {
				return nil, nil
			}
			d, err := c.FetchFormDetail(ctx, *form.URL)
			if err != nil {
				return nil, err
			}
			return d, nil
		})
}
