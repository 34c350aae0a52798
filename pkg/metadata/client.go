package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Record is the subset of bibliographic metadata the resolver needs.
type Record struct {
	DOI     string
	Title   string
	Authors []string
	Year    int
	Venue   string
}

// Client looks up bibliographic metadata from a Crossref-style API.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = "https://api.crossref.org"
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

type worksResponse struct {
	Message struct {
		DOI    string     `json:"DOI"`
		Title  []string   `json:"title"`
		Author []struct {
			Given  string `json:"given"`
			Family string `json:"family"`
		} `json:"author"`
		Issued struct {
			DateParts [][]int `json:"date-parts"`
		} `json:"issued"`
		ContainerTitle []string `json:"container-title"`
	} `json:"message"`
}

// LookupDOI fetches the work record for a DOI. Metadata lookups get one
// retry after a short pause; the service degrades to local data when
// both attempts fail.
func (c *Client) LookupDOI(ctx context.Context, doi string) (*Record, error) {
	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(500 * time.Millisecond):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
		rec, err := c.lookupOnce(ctx, doi)
		if err == nil {
			return rec, nil
		}
		lastErr = err
	}
	return nil, lastErr
}

func (c *Client) lookupOnce(ctx context.Context, doi string) (*Record, error) {
	endpoint := fmt.Sprintf("%s/works/%s", c.baseURL, url.PathEscape(doi))

	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("metadata request failed: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, _ := io.ReadAll(resp.Body)

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("doi not found: %s", doi)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("metadata api error (status %d): %s", resp.StatusCode, string(bodyBytes))
	}

	var parsed worksResponse
	if err := json.Unmarshal(bodyBytes, &parsed); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	rec := &Record{DOI: parsed.Message.DOI}
	if len(parsed.Message.Title) > 0 {
		rec.Title = parsed.Message.Title[0]
	}
	if len(parsed.Message.ContainerTitle) > 0 {
		rec.Venue = parsed.Message.ContainerTitle[0]
	}
	for _, a := range parsed.Message.Author {
		name := a.Family
		if a.Given != "" {
			name = a.Given + " " + a.Family
		}
		rec.Authors = append(rec.Authors, name)
	}
	if len(parsed.Message.Issued.DateParts) > 0 && len(parsed.Message.Issued.DateParts[0]) > 0 {
		rec.Year = parsed.Message.Issued.DateParts[0][0]
	}

	return rec, nil
}
