// ABOUTME: SEC-API.io client for filing search and section extraction
// ABOUTME: Rate limited, retrying; produces the raw API document set for the corpus
package sec

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/finrag/finrag/internal/config"
	"github.com/finrag/finrag/internal/corpus"
	"github.com/finrag/finrag/internal/util"
)

// maxSectionChars bounds stored section content; plenty for chunking while
// keeping the document set small.
const maxSectionChars = 50000

// minSectionChars rejects near-empty extractor responses.
const minSectionChars = 100

// sectionSpec maps a corpus section name to its 10-K item code.
type sectionSpec struct {
	Name        string
	Item        string
	Description string
}

// Sections extracted for financial Q&A, in extraction order.
var filingSections = []sectionSpec{
	{"business", "1", "Business Description"},
	{"risk_factors", "1A", "Risk Factors"},
	{"financial_performance", "7", "Management's Discussion and Analysis"},
	{"financial_statements", "8", "Financial Statements"},
}

// Filing is one hit from the SEC-API query endpoint.
type Filing struct {
	FiledAt             string `json:"filedAt"`
	PeriodOfReport      string `json:"periodOfReport"`
	FormType            string `json:"formType"`
	LinkToFilingDetails string `json:"linkToFilingDetails"`
}

// Client talks to the SEC-API.io query and extractor endpoints. All calls
// pass through a shared rate limiter to stay within the API quota.
type Client struct {
	httpClient   *http.Client
	apiKey       string
	queryURL     string
	extractorURL string
	limiter      *rate.Limiter
	maxRetries   int
	retryDelay   time.Duration
	log          *slog.Logger

	companies []config.Company
	years     []int

	// urlCache avoids duplicate query-API calls per company/year.
	urlCache map[string]string
}

// NewClient creates a SEC-API client from configuration. The API key is
// required.
func NewClient(cfg *config.Config, log *slog.Logger) (*Client, error) {
	if cfg.SECAPIKey == "" {
		return nil, fmt.Errorf("SEC_API_KEY is not set; get a key from https://sec-api.io/")
	}
	return &Client{
		httpClient:   &http.Client{Timeout: cfg.Timeout},
		apiKey:       cfg.SECAPIKey,
		queryURL:     cfg.SECAPIBaseURL,
		extractorURL: cfg.SECAPIBaseURL + "/extractor",
		limiter:      rate.NewLimiter(rate.Every(500*time.Millisecond), 1),
		maxRetries:   cfg.MaxRetries,
		retryDelay:   cfg.RetryDelay,
		log:          log,
		companies:    cfg.Companies,
		years:        cfg.Years,
		urlCache:     make(map[string]string),
	}, nil
}

// VerifyAccess makes a minimal query to confirm the API key works.
func (c *Client) VerifyAccess(ctx context.Context) error {
	payload := map[string]any{
		"query": `ticker:AAPL AND formType:"10-K"`,
		"from":  "0",
		"size":  "1",
	}
	var result struct {
		Filings []Filing `json:"filings"`
	}
	if err := c.postQuery(ctx, payload, &result); err != nil {
		return fmt.Errorf("verifying SEC-API access: %w", err)
	}
	if result.Filings == nil {
		return fmt.Errorf("unexpected response format from SEC-API")
	}
	return nil
}

// SearchFilings queries for filings of a form type by CIK, optionally
// bounded to a filing year, newest first.
func (c *Client) SearchFilings(ctx context.Context, cik, formType string, year, limit int) ([]Filing, error) {
	queryParts := []string{
		fmt.Sprintf("cik:%s", cik),
		fmt.Sprintf("formType:%q", formType),
	}
	if year > 0 {
		queryParts = append(queryParts, fmt.Sprintf("filedAt:[%d-01-01 TO %d-12-31]", year, year))
	}

	payload := map[string]any{
		"query": strings.Join(queryParts, " AND "),
		"from":  "0",
		"size":  fmt.Sprintf("%d", limit),
		"sort":  []map[string]any{{"filedAt": map[string]string{"order": "desc"}}},
	}

	var result struct {
		Filings []Filing `json:"filings"`
	}
	if err := c.postQuery(ctx, payload, &result); err != nil {
		return nil, fmt.Errorf("searching filings for CIK %s: %w", cik, err)
	}
	c.log.Info("searched filings", "cik", cik, "year", year, "found", len(result.Filings))
	return result.Filings, nil
}

// FilingURL resolves the 10-K filing URL for a company and year, matching
// either the filing year or the period-of-report year.
func (c *Client) FilingURL(ctx context.Context, company config.Company, year int) (string, error) {
	cacheKey := fmt.Sprintf("%s_%d", company.Ticker, year)
	if u, ok := c.urlCache[cacheKey]; ok {
		return u, nil
	}

	filings, err := c.SearchFilings(ctx, company.CIK, "10-K", year, 5)
	if err != nil {
		return "", err
	}

	for _, filing := range filings {
		if filing.LinkToFilingDetails == "" {
			continue
		}
		if filingYear(filing.FiledAt) == year || filingYear(filing.PeriodOfReport) == year {
			c.urlCache[cacheKey] = filing.LinkToFilingDetails
			c.log.Info("resolved filing", "company", company.Ticker, "year", year, "url", filing.LinkToFilingDetails)
			return filing.LinkToFilingDetails, nil
		}
	}
	return "", fmt.Errorf("no %d 10-K filing found for %s", year, company.Ticker)
}

// ExtractSection pulls one item's text from a filing via the extractor
// endpoint. The extractor answers "processing" while it works on a fresh
// filing; that is retried like a transient failure.
func (c *Client) ExtractSection(ctx context.Context, filingURL, item string) (string, error) {
	params := url.Values{}
	params.Set("url", filingURL)
	params.Set("item", item)
	params.Set("type", "text")
	params.Set("token", c.apiKey)
	reqURL := c.extractorURL + "?" + params.Encode()

	var content string
	err := util.Retry(ctx, c.maxRetries, c.retryDelay, func(ctx context.Context) error {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return err
		}
		resp, err := c.httpClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("extractor returned status %d", resp.StatusCode)
		}
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}

		text := string(body)
		if strings.EqualFold(strings.TrimSpace(text), "processing") {
			return fmt.Errorf("extractor still processing item %s", item)
		}
		if len(strings.TrimSpace(text)) < 10 {
			return fmt.Errorf("empty or minimal content for item %s", item)
		}
		content = text
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("extracting item %s: %w", item, err)
	}
	return content, nil
}

// DownloadCompany extracts all configured sections for one company/year.
// It returns nil (no error) when not a single section could be extracted.
func (c *Client) DownloadCompany(ctx context.Context, company config.Company, year int) (*corpus.FilingData, error) {
	c.log.Info("downloading filing", "company", company.Ticker, "year", year)

	filingURL, err := c.FilingURL(ctx, company, year)
	if err != nil {
		return nil, err
	}

	data := &corpus.FilingData{
		Company:   company.Ticker,
		Year:      year,
		CIK:       company.CIK,
		FilingURL: filingURL,
		Sections:  make(map[string]corpus.Section),
		Extracted: time.Now().UTC(),
	}

	for _, spec := range filingSections {
		content, err := c.ExtractSection(ctx, filingURL, spec.Item)
		if err != nil {
			c.log.Warn("section extraction failed", "company", company.Ticker, "year", year,
				"section", spec.Name, "error", err)
			continue
		}
		if len(strings.TrimSpace(content)) <= minSectionChars {
			c.log.Warn("section content too short", "company", company.Ticker, "year", year, "section", spec.Name)
			continue
		}

		fullLength := len(content)
		truncated := fullLength > maxSectionChars
		if truncated {
			content = content[:maxSectionChars]
		}
		data.Sections[spec.Name] = corpus.Section{
			Item:        spec.Item,
			Description: spec.Description,
			Content:     content,
			FullLength:  fullLength,
			Truncated:   truncated,
		}
		c.log.Info("extracted section", "company", company.Ticker, "year", year,
			"section", spec.Name, "chars", fullLength, "truncated", truncated)
	}

	if len(data.Sections) == 0 {
		return nil, nil
	}
	return data, nil
}

// DownloadAll extracts sections for every configured company/year pair,
// skipping failures so one bad filing does not abort the run.
func (c *Client) DownloadAll(ctx context.Context) ([]corpus.FilingData, error) {
	var all []corpus.FilingData
	var failed []string

	for _, company := range c.companies {
		for _, year := range c.years {
			data, err := c.DownloadCompany(ctx, company, year)
			if err != nil {
				if ctx.Err() != nil {
					return all, ctx.Err()
				}
				c.log.Error("download failed", "company", company.Ticker, "year", year, "error", err)
				failed = append(failed, fmt.Sprintf("%s %d", company.Ticker, year))
				continue
			}
			if data == nil {
				failed = append(failed, fmt.Sprintf("%s %d", company.Ticker, year))
				continue
			}
			all = append(all, *data)
		}
	}

	c.log.Info("download complete", "succeeded", len(all), "failed", len(failed))
	if len(failed) > 0 {
		c.log.Warn("some filings failed to download", "filings", strings.Join(failed, ", "))
	}
	return all, nil
}

func (c *Client) postQuery(ctx context.Context, payload any, result any) error {
	return util.Retry(ctx, c.maxRetries, c.retryDelay, func(ctx context.Context) error {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}
		body, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.queryURL, bytes.NewReader(body))
		if err != nil {
			return err
		}
		req.Header.Set("Authorization", c.apiKey)
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("query API returned status %d", resp.StatusCode)
		}
		return json.NewDecoder(resp.Body).Decode(result)
	})
}

// filingYear parses the year from SEC-API timestamps such as
// "2023-07-27T16:01:48-04:00" or "2023-06-30".
func filingYear(s string) int {
	if len(s) < 4 {
		return 0
	}
	var year int
	if _, err := fmt.Sscanf(s[:4], "%d", &year); err != nil {
		return 0
	}
	return year
}
