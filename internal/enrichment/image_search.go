package enrichment

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const maxPageSize = 10

// HTTPImageSearch consume un servicio externo de búsqueda de imágenes.
// Es una llamada opcional de enriquecimiento: ante cualquier falla tras un
// reintento, degrada a lista vacía en lugar de propagar el error.
type HTTPImageSearch struct {
	endpoint string
	apiKey   string
	client   *http.Client
}

func NewHTTPImageSearch(endpoint, apiKey string) *HTTPImageSearch {
	return &HTTPImageSearch{
		endpoint: endpoint,
		apiKey:   apiKey,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

type imageSearchResponse struct {
	Items []struct {
		Link string `json:"link"`
	} `json:"items"`
}

func (s *HTTPImageSearch) Search(ctx context.Context, phrase string, pageSize, start int) ([]string, error) {
	if s.endpoint == "" {
		return nil, nil
	}
	if pageSize <= 0 || pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	if start < 0 {
		start = 0
	}

	query := url.Values{}
	query.Set("q", phrase)
	query.Set("num", strconv.Itoa(pageSize))
	query.Set("start", strconv.Itoa(start))
	if s.apiKey != "" {
		query.Set("key", s.apiKey)
	}
	requestURL := s.endpoint + "?" + query.Encode()

	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		links, err := s.fetch(ctx, requestURL)
		if err == nil {
			return links, nil
		}
		lastErr = err
	}

	// Enriquecimiento opcional: degradar, no fallar.
	_ = lastErr
	return nil, nil
}

func (s *HTTPImageSearch) fetch(ctx context.Context, requestURL string) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("image search returned %d", resp.StatusCode)
	}

	var parsed imageSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, err
	}

	links := make([]string, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		if strings.HasPrefix(item.Link, "http://") || strings.HasPrefix(item.Link, "https://") {
			links = append(links, item.Link)
		}
	}
	return links, nil
}
