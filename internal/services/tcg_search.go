package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/slabworks/card-pos/backend/internal/metrics"
	"github.com/slabworks/card-pos/backend/internal/models"
)

const (
	tcgDefaultTimeout = 10 * time.Second
	tcgDefaultLimit   = 20
)

// ProductSearcher is the raw product-search dependency of the cascade.
// Implementations return an error for transport-level failures; an empty
// slice with a nil error is a legitimate no-results outcome.
type ProductSearcher interface {
	Search(ctx context.Context, name, setName, number string, limit int) ([]models.TCGProduct, error)
}

// TCGClient calls the TCGplayer-style product search service.
type TCGClient struct {
	client  *http.Client
	baseURL string
	apiKey  string
	limiter *rate.Limiter
}

type tcgSearchResponse struct {
	Success  bool                `json:"success"`
	Products []models.TCGProduct `json:"products"`
	Error    string              `json:"error,omitempty"`
}

// NewTCGClient creates a product-search client. minInterval spaces out
// upstream requests; zero disables the limiter.
func NewTCGClient(baseURL, apiKey string, minInterval time.Duration) *TCGClient {
	limit := rate.Inf
	if minInterval > 0 {
		limit = rate.Every(minInterval)
	}
	return &TCGClient{
		client:  &http.Client{Timeout: tcgDefaultTimeout},
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		limiter: rate.NewLimiter(limit, 1),
	}
}

func (c *TCGClient) Search(ctx context.Context, name, setName, number string, limit int) ([]models.TCGProduct, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	if limit <= 0 {
		limit = tcgDefaultLimit
	}
	params := url.Values{}
	params.Set("name", name)
	if setName != "" {
		params.Set("set", setName)
	}
	if number != "" {
		params.Set("number", number)
	}
	params.Set("limit", strconv.Itoa(limit))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/products/search?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("product search request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("product search error: status %d", resp.StatusCode)
	}

	var out tcgSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}
	if !out.Success {
		if out.Error != "" {
			return nil, fmt.Errorf("product search error: %s", out.Error)
		}
		return nil, fmt.Errorf("product search returned unsuccessful response")
	}
	return out.Products, nil
}

// SearchService widens a product search step by step until something
// matches. Graded-card names and set names frequently disagree with the
// product catalog's conventions, so each step relaxes one constraint.
type SearchService struct {
	searcher ProductSearcher
}

func NewSearchService(searcher ProductSearcher) *SearchService {
	return &SearchService{searcher: searcher}
}

type searchAttempt struct {
	name    string
	setName string
	step    string
}

// lookupCleanName strips periods, spaces and apostrophes. Some catalogs
// (One Piece in particular) index names without punctuation.
func lookupCleanName(name string) string {
	r := strings.NewReplacer(".", "", " ", "", "'", "")
	return r.Replace(name)
}

// buildCascade lists the attempts in relaxation order: as given, then
// punctuation-stripped name, then both names with the set dropped. Steps
// that would repeat an earlier attempt are skipped.
func buildCascade(cardName, setName string) []searchAttempt {
	attempts := []searchAttempt{{name: cardName, setName: setName, step: "exact"}}

	cleaned := ""
	if strings.ContainsAny(cardName, ". ") {
		if c := lookupCleanName(cardName); c != cardName {
			cleaned = c
			attempts = append(attempts, searchAttempt{name: cleaned, setName: setName, step: "clean_name"})
		}
	}

	if setName != "" {
		attempts = append(attempts, searchAttempt{name: cardName, setName: "", step: "no_set"})
		if cleaned != "" {
			attempts = append(attempts, searchAttempt{name: cleaned, setName: "", step: "clean_name_no_set"})
		}
	}
	return attempts
}

// SearchProducts runs the widening cascade. The first attempt that
// yields a non-empty result wins outright: later steps are never tried
// and results are never merged or re-ranked across steps. If every
// attempt comes back empty the final result is an empty slice and a nil
// error; an error is returned only when the last attempt itself failed.
func (s *SearchService) SearchProducts(ctx context.Context, cardName, setName, cardNumber string, limit int) ([]models.TCGProduct, error) {
	attempts := buildCascade(cardName, setName)

	var lastErr error
	for i, attempt := range attempts {
		products, err := s.searcher.Search(ctx, attempt.name, attempt.setName, cardNumber, limit)
		if err != nil {
			metrics.ProductSearchesTotal.WithLabelValues(attempt.step, "error").Inc()
			lastErr = err
			continue
		}
		if len(products) > 0 {
			metrics.ProductSearchesTotal.WithLabelValues(attempt.step, "hit").Inc()
			metrics.SearchCascadeDepth.Observe(float64(i + 1))
			return products, nil
		}
		metrics.ProductSearchesTotal.WithLabelValues(attempt.step, "empty").Inc()
		lastErr = nil
	}

	metrics.SearchCascadeDepth.Observe(float64(len(attempts)))
	if lastErr != nil {
		return nil, lastErr
	}
	return []models.TCGProduct{}, nil
}
