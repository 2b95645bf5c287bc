package cryptofeed

import (
	"context"
	"encoding/json"
	"strings"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/mcpforge/adapters/internal/adapter"
	"github.com/mcpforge/adapters/internal/config"
	"github.com/mcpforge/adapters/internal/logging"
)

// Service shares one client across tools. The API key is optional, so
// construction never fails; it only changes rate limits.
type Service struct {
	once   sync.Once
	client *Client
	log    logging.Logger
}

func NewService(log logging.Logger) *Service {
	return &Service{log: log.WithName("cryptofeed")}
}

func (s *Service) getClient() *Client {
	s.once.Do(func() {
		s.client = NewClient(config.CoinGeckoAPIKey())
	})
	return s.client
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func (s *Service) handleCoinPrice(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	idsArg, err := req.RequireString("ids")
	if err != nil {
		return adapter.Errorf("ids parameter is required"), nil
	}
	ids := splitList(idsArg)
	if len(ids) == 0 {
		return adapter.Errorf("ids must name at least one coin"), nil
	}
	currencies := splitList(req.GetString("vs_currencies", "usd"))
	if len(currencies) == 0 {
		currencies = []string{"usd"}
	}

	prices, err := s.getClient().CoinPrices(ctx, ids, currencies)
	if err != nil {
		return adapter.Errorf("%v", err), nil
	}
	return adapter.TextResult(struct {
		Prices []Price `json:"prices"`
		Total  int     `json:"total"`
	}{prices, len(prices)}), nil
}

func (s *Service) handleCoinDetail(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return adapter.Errorf("id parameter is required"), nil
	}
	detail, err := s.getClient().CoinDetail(ctx, id)
	if err != nil {
		return adapter.Errorf("%v", err), nil
	}
	return adapter.TextResult(detail), nil
}

func (s *Service) handleSearchCoins(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return adapter.Errorf("query parameter is required"), nil
	}
	hits, err := s.getClient().SearchCoins(ctx, query)
	if err != nil {
		return adapter.Errorf("%v", err), nil
	}
	return adapter.TextResult(struct {
		Query string      `json:"query"`
		Coins []SearchHit `json:"coins"`
		Total int         `json:"total"`
	}{query, hits, len(hits)}), nil
}

func (s *Service) handleTrending(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	hits, err := s.getClient().Trending(ctx)
	if err != nil {
		return adapter.Errorf("%v", err), nil
	}
	return adapter.TextResult(struct {
		Coins []SearchHit `json:"coins"`
		Total int         `json:"total"`
	}{hits, len(hits)}), nil
}

func (s *Service) handlePriceResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	id, err := coinFromURI(req.Params.URI)
	if err != nil {
		return nil, err
	}
	prices, err := s.getClient().CoinPrices(ctx, []string{id}, []string{"usd"})
	if err != nil {
		return nil, err
	}
	data, err := json.MarshalIndent(prices, "", "  ")
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{URI: req.Params.URI, MIMEType: "application/json", Text: string(data)},
	}, nil
}

// New builds the cryptofeed adapter.
func New(svc *Service, log logging.Logger) *adapter.Server {
	srv := adapter.New(adapter.Options{
		Name:        "cryptofeed",
		Version:     "1.0.0",
		Description: "Cryptocurrency market data from CoinGecko: prices, coin detail, search, and trending.",
		Resources:   true,
		Logger:      log,
	})

	srv.Handle(mcp.NewTool("coin_price",
		mcp.WithDescription("Spot prices with 24h change and market cap for one or more coins."),
		mcp.WithString("ids", mcp.Required(), mcp.Description("Comma-separated coin ids, e.g. bitcoin,ethereum")),
		mcp.WithString("vs_currencies", mcp.Description("Comma-separated quote currencies (default: usd)")),
	), svc.handleCoinPrice)

	srv.Handle(mcp.NewTool("coin_detail",
		mcp.WithDescription("Detailed coin info: rank, description, supply, and USD market data."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Coin id, e.g. bitcoin")),
	), svc.handleCoinDetail)

	srv.Handle(mcp.NewTool("search_coins",
		mcp.WithDescription("Search coins by name or symbol."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search term")),
	), svc.handleSearchCoins)

	srv.Handle(mcp.NewTool("trending",
		mcp.WithDescription("Coins trending on CoinGecko in the last 24 hours."),
	), svc.handleTrending)

	srv.HandleResourceTemplate(mcp.NewResourceTemplate(
		"crypto://price/{id}",
		"Coin price",
		mcp.WithTemplateDescription("USD spot price for the named coin"),
		mcp.WithTemplateMIMEType("application/json"),
	), svc.handlePriceResource)

	return srv
}
