// Package cryptofeed adapts the CoinGecko market API: spot prices,
// coin detail, search, and trending coins. The public API works
// without credentials; a demo key raises the rate limit.
package cryptofeed

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

const defaultBaseURL = "https://api.coingecko.com"

type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

func NewClient(apiKey string) *Client {
	return &Client{
		baseURL: defaultBaseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *Client) get(ctx context.Context, path string, query url.Values) (gjson.Result, error) {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return gjson.Result{}, err
	}
	if c.apiKey != "" {
		req.Header.Set("x-cg-demo-api-key", c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("coingecko request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		if msg := gjson.GetBytes(data, "status.error_message").String(); msg != "" {
			return gjson.Result{}, fmt.Errorf("coingecko: %s (%s)", msg, resp.Status)
		}
		return gjson.Result{}, fmt.Errorf("coingecko returned %s", resp.Status)
	}
	return gjson.ParseBytes(data), nil
}

type Price struct {
	ID        string             `json:"id"`
	Prices    map[string]float64 `json:"prices"`
	Change24h map[string]float64 `json:"change_24h,omitempty"`
	MarketCap map[string]float64 `json:"market_cap,omitempty"`
}

// CoinPrices fetches spot prices for a set of coin ids against a set of
// currencies. The simple/price endpoint flattens derived values into
// suffixed keys, which are split back out here.
func (c *Client) CoinPrices(ctx context.Context, ids, vsCurrencies []string) ([]Price, error) {
	query := url.Values{}
	query.Set("ids", strings.Join(ids, ","))
	query.Set("vs_currencies", strings.Join(vsCurrencies, ","))
	query.Set("include_24hr_change", "true")
	query.Set("include_market_cap", "true")

	doc, err := c.get(ctx, "/api/v3/simple/price", query)
	if err != nil {
		return nil, err
	}

	prices := []Price{}
	for _, id := range ids {
		entry := doc.Get(escapeGJSONKey(id))
		if !entry.Exists() {
			continue
		}
		price := Price{
			ID:        id,
			Prices:    map[string]float64{},
			Change24h: map[string]float64{},
			MarketCap: map[string]float64{},
		}
		entry.ForEach(func(key, value gjson.Result) bool {
			name := key.String()
			switch {
			case strings.HasSuffix(name, "_24h_change"):
				price.Change24h[strings.TrimSuffix(name, "_24h_change")] = value.Float()
			case strings.HasSuffix(name, "_market_cap"):
				price.MarketCap[strings.TrimSuffix(name, "_market_cap")] = value.Float()
			default:
				price.Prices[name] = value.Float()
			}
			return true
		})
		prices = append(prices, price)
	}
	return prices, nil
}

// escapeGJSONKey protects dots in coin ids from being read as path
// separators.
func escapeGJSONKey(key string) string {
	return strings.ReplaceAll(key, ".", `\.`)
}

type Detail struct {
	ID                string  `json:"id"`
	Name              string  `json:"name"`
	Symbol            string  `json:"symbol"`
	Rank              int     `json:"rank,omitempty"`
	Description       string  `json:"description,omitempty"`
	Homepage          string  `json:"homepage,omitempty"`
	PriceUSD          float64 `json:"price_usd"`
	MarketCapUSD      float64 `json:"market_cap_usd"`
	Change24h         float64 `json:"change_24h_percent"`
	CirculatingSupply float64 `json:"circulating_supply,omitempty"`
	TotalSupply       float64 `json:"total_supply,omitempty"`
}

const maxDescriptionRunes = 600

func (c *Client) CoinDetail(ctx context.Context, id string) (*Detail, error) {
	query := url.Values{}
	query.Set("localization", "false")
	query.Set("tickers", "false")
	query.Set("market_data", "true")
	query.Set("community_data", "false")
	query.Set("developer_data", "false")

	doc, err := c.get(ctx, "/api/v3/coins/"+url.PathEscape(id), query)
	if err != nil {
		return nil, err
	}

	return &Detail{
		ID:                doc.Get("id").String(),
		Name:              doc.Get("name").String(),
		Symbol:            doc.Get("symbol").String(),
		Rank:              int(doc.Get("market_cap_rank").Int()),
		Description:       truncate(doc.Get("description.en").String(), maxDescriptionRunes),
		Homepage:          doc.Get("links.homepage.0").String(),
		PriceUSD:          doc.Get("market_data.current_price.usd").Float(),
		MarketCapUSD:      doc.Get("market_data.market_cap.usd").Float(),
		Change24h:         doc.Get("market_data.price_change_percentage_24h").Float(),
		CirculatingSupply: doc.Get("market_data.circulating_supply").Float(),
		TotalSupply:       doc.Get("market_data.total_supply").Float(),
	}, nil
}

func truncate(s string, maxRunes int) string {
	runes := []rune(s)
	if len(runes) <= maxRunes {
		return s
	}
	return string(runes[:maxRunes]) + "..."
}

type SearchHit struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Symbol string `json:"symbol"`
	Rank   int    `json:"rank,omitempty"`
}

func (c *Client) SearchCoins(ctx context.Context, queryTerm string) ([]SearchHit, error) {
	query := url.Values{}
	query.Set("query", queryTerm)

	doc, err := c.get(ctx, "/api/v3/search", query)
	if err != nil {
		return nil, err
	}

	hits := []SearchHit{}
	for _, item := range doc.Get("coins").Array() {
		hits = append(hits, SearchHit{
			ID:     item.Get("id").String(),
			Name:   item.Get("name").String(),
			Symbol: item.Get("symbol").String(),
			Rank:   int(item.Get("market_cap_rank").Int()),
		})
	}
	return hits, nil
}

func (c *Client) Trending(ctx context.Context) ([]SearchHit, error) {
	doc, err := c.get(ctx, "/api/v3/search/trending", nil)
	if err != nil {
		return nil, err
	}

	hits := []SearchHit{}
	for _, item := range doc.Get("coins").Array() {
		hits = append(hits, SearchHit{
			ID:     item.Get("item.id").String(),
			Name:   item.Get("item.name").String(),
			Symbol: item.Get("item.symbol").String(),
			Rank:   int(item.Get("item.market_cap_rank").Int()),
		})
	}
	return hits, nil
}

// coinFromURI normalizes resource URIs like crypto://price/bitcoin.
func coinFromURI(uri string) (string, error) {
	id := strings.TrimPrefix(uri, "crypto://price/")
	id, err := url.PathUnescape(id)
	if err != nil || id == "" || strings.Contains(id, "/") {
		return "", fmt.Errorf("invalid crypto resource URI %s", uri)
	}
	return id, nil
}
