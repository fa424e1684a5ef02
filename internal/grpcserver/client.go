package grpcserver

import (
	"context"
	"encoding/json"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"herohub/pkg/models"
)

// Client calls HeroService and decodes the replies back into models.
type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

func (c *Client) ListHeroes(ctx context.Context, seed string, opts ...grpc.CallOption) ([]models.HeroSummary, error) {
	out := new(structpb.ListValue)
	if err := c.cc.Invoke(ctx, listHeroesMethod, wrapperspb.String(seed), out, opts...); err != nil {
		return nil, err
	}
	var items []models.HeroSummary
	if err := decode(out, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (c *Client) SearchHeroes(ctx context.Context, query string, opts ...grpc.CallOption) ([]models.HeroSummary, error) {
	out := new(structpb.ListValue)
	if err := c.cc.Invoke(ctx, searchHeroesMethod, wrapperspb.String(query), out, opts...); err != nil {
		return nil, err
	}
	var items []models.HeroSummary
	if err := decode(out, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (c *Client) GetHero(ctx context.Context, id string, opts ...grpc.CallOption) (models.Hero, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, getHeroMethod, wrapperspb.String(id), out, opts...); err != nil {
		return models.Hero{}, err
	}
	var h models.Hero
	if err := decode(out, &h); err != nil {
		return models.Hero{}, err
	}
	return h, nil
}

func decode(m proto.Message, v any) error {
	b, err := protojson.Marshal(m)
	if err != nil {
		return fmt.Errorf("decode reply: %w", err)
	}
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("decode reply: %w", err)
	}
	return nil
}
