package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/time/rate"

	"github.com/slabworks/card-pos/backend/internal/metrics"
	"github.com/slabworks/card-pos/backend/internal/models"
)

const (
	psaDefaultTimeout = 10 * time.Second
	psaCacheSize      = 256
)

// ErrCertNotFound reports a cert number the PSA service does not know.
// Distinct from transport failures so callers can tell "no such cert"
// apart from "try again".
var ErrCertNotFound = errors.New("cert not found")

// PSAService looks up certificate records from the PSA lookup service.
// Responses are cached per cert number; a graded card's record never
// changes, so cached entries have no TTL.
type PSAService struct {
	client  *http.Client
	baseURL string
	apiKey  string
	limiter *rate.Limiter
	cache   *lru.Cache[string, *models.RawPSARecord]
}

// NewPSAService creates a PSA lookup client. minInterval spaces out
// upstream requests; zero disables the limiter.
func NewPSAService(baseURL, apiKey string, minInterval time.Duration) *PSAService {
	cache, err := lru.New[string, *models.RawPSARecord](psaCacheSize)
	if err != nil {
		log.Printf("PSA lookup: failed to create cert cache: %v", err)
	}

	limit := rate.Inf
	if minInterval > 0 {
		limit = rate.Every(minInterval)
	}

	return &PSAService{
		client:  &http.Client{Timeout: psaDefaultTimeout},
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		limiter: rate.NewLimiter(limit, 1),
		cache:   cache,
	}
}

// IsTimeoutError reports whether a lookup failure came from cancellation
// or a deadline rather than the service itself. The two are surfaced
// differently: timeouts get a retry affordance, not-found does not.
func IsTimeoutError(err error) bool {
	return errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled)
}

// LookupCert fetches the certificate record for a cert number. Returns
// ErrCertNotFound when the service answers success=false.
func (s *PSAService) LookupCert(ctx context.Context, cert string) (*models.RawPSARecord, error) {
	cert = strings.TrimSpace(cert)
	if cert == "" {
		return nil, ErrCertNotFound
	}

	if s.cache != nil {
		if rec, ok := s.cache.Get(cert); ok {
			metrics.PSALookupsTotal.WithLabelValues("cached").Inc()
			return rec, nil
		}
	}

	if err := s.limiter.Wait(ctx); err != nil {
		metrics.PSALookupsTotal.WithLabelValues("timeout").Inc()
		return nil, err
	}

	start := time.Now()
	rec, err := s.fetchCert(ctx, cert)
	metrics.PSALookupDuration.Observe(time.Since(start).Seconds())

	switch {
	case err == nil:
		metrics.PSALookupsTotal.WithLabelValues("success").Inc()
		if s.cache != nil {
			s.cache.Add(cert, rec)
		}
	case errors.Is(err, ErrCertNotFound):
		metrics.PSALookupsTotal.WithLabelValues("not_found").Inc()
	case IsTimeoutError(err):
		metrics.PSALookupsTotal.WithLabelValues("timeout").Inc()
	default:
		metrics.PSALookupsTotal.WithLabelValues("error").Inc()
	}
	return rec, err
}

func (s *PSAService) fetchCert(ctx context.Context, cert string) (*models.RawPSARecord, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/cert/"+cert, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("PSA lookup request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrCertNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("PSA lookup error: status %d", resp.StatusCode)
	}

	var out models.PSALookupResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode PSA response: %w", err)
	}
	if !out.Success || out.PSA == nil {
		return nil, ErrCertNotFound
	}

	rec := out.PSA
	if rec.Cert == "" {
		rec.Cert = cert
	}
	return rec, nil
}
