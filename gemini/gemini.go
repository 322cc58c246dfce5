package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"review-dashboard/internal/logger"
)

const (
	defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

	defaultMaxAttempts     = 5
	defaultBaseRetryDelay  = 2000 * time.Millisecond
	defaultMaxRetryDelay   = 8000 * time.Millisecond
	defaultErrorRetryDelay = 1000 * time.Millisecond
	defaultTimeout         = 120 * time.Second
)

// Options configures a Client. Zero values fall back to production defaults;
// tests shrink the delays to keep the retry path fast.
type Options struct {
	APIKey  string
	BaseURL string
	Model   string

	Timeout         time.Duration
	MaxAttempts     int
	BaseRetryDelay  time.Duration
	MaxRetryDelay   time.Duration
	ErrorRetryDelay time.Duration
}

// Client issues single logical generate calls against the Gemini REST API,
// handling endpoint resolution, retry with backoff, and response-text
// extraction. It holds no batch or persistence state.
type Client struct {
	httpClient *http.Client
	apiKey     string
	baseURL    string
	model      string

	maxAttempts     int
	baseRetryDelay  time.Duration
	maxRetryDelay   time.Duration
	errorRetryDelay time.Duration

	mu       sync.Mutex
	endpoint string
}

func New(opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = defaultBaseURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = defaultMaxAttempts
	}
	if opts.BaseRetryDelay <= 0 {
		opts.BaseRetryDelay = defaultBaseRetryDelay
	}
	if opts.MaxRetryDelay <= 0 {
		opts.MaxRetryDelay = defaultMaxRetryDelay
	}
	if opts.ErrorRetryDelay <= 0 {
		opts.ErrorRetryDelay = defaultErrorRetryDelay
	}
	return &Client{
		httpClient:      &http.Client{Timeout: opts.Timeout},
		apiKey:          opts.APIKey,
		baseURL:         strings.TrimRight(opts.BaseURL, "/"),
		model:           opts.Model,
		maxAttempts:     opts.MaxAttempts,
		baseRetryDelay:  opts.BaseRetryDelay,
		maxRetryDelay:   opts.MaxRetryDelay,
		errorRetryDelay: opts.ErrorRetryDelay,
	}
}

// Invoke sends one prompt and returns the generated text. Rate limits are
// retried with exponential backoff (base doubling up to the cap); other
// failures are retried after a short fixed delay. The final cause is wrapped
// in a PermanentError. A malformed response body is permanent immediately.
func (c *Client) Invoke(ctx context.Context, prompt string) (string, error) {
	endpoint, err := c.resolveEndpoint(ctx)
	if err != nil {
		return "", &PermanentError{Cause: err}
	}

	delay := c.baseRetryDelay
	var lastErr error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		text, err := c.generate(ctx, endpoint, prompt)
		if err == nil {
			return text, nil
		}
		lastErr = err

		var perm *PermanentError
		if errors.As(err, &perm) {
			return "", err
		}

		var transient *TransientError
		if errors.As(err, &transient) {
			logger.Log.Warnf("gemini rate limit hit, retrying in %s (attempt %d/%d)",
				delay, attempt, c.maxAttempts)
			if err := sleep(ctx, delay); err != nil {
				return "", &PermanentError{Cause: err}
			}
			delay *= 2
			if delay > c.maxRetryDelay {
				delay = c.maxRetryDelay
			}
			continue
		}

		if attempt == c.maxAttempts {
			logger.Log.Errorf("gemini request failed after %d attempts: %v", c.maxAttempts, err)
			return "", &PermanentError{Cause: err}
		}
		if err := sleep(ctx, c.errorRetryDelay); err != nil {
			return "", &PermanentError{Cause: err}
		}
	}

	return "", &PermanentError{
		Cause: fmt.Errorf("gemini api failed after %d attempts: %w", c.maxAttempts, lastErr),
	}
}

// resolveEndpoint discovers the generateContent endpoint once and caches it
// for the lifetime of the client. Only a successful resolution is cached.
func (c *Client) resolveEndpoint(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.endpoint != "" {
		return c.endpoint, nil
	}

	name, err := c.discoverModel(ctx)
	if err != nil {
		return "", fmt.Errorf("resolve gemini endpoint: %w", err)
	}
	c.endpoint = fmt.Sprintf("%s/%s:generateContent", c.baseURL, name)
	logger.Log.Infof("gemini endpoint resolved: %s", c.endpoint)
	return c.endpoint, nil
}

type modelInfo struct {
	Name                       string   `json:"name"`
	SupportedGenerationMethods []string `json:"supportedGenerationMethods"`
}

type modelList struct {
	Models []modelInfo `json:"models"`
}

// discoverModel lists the available models and picks the configured one when
// present, otherwise the first model supporting generateContent.
func (c *Client) discoverModel(ctx context.Context) (string, error) {
	url := fmt.Sprintf("%s/models?key=%s", c.baseURL, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("list models returned status %d", resp.StatusCode)
	}

	var list modelList
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		return "", fmt.Errorf("decode model list: %w", err)
	}

	var fallback string
	for _, m := range list.Models {
		supported := false
		for _, method := range m.SupportedGenerationMethods {
			if method == "generateContent" {
				supported = true
				break
			}
		}
		if !supported {
			continue
		}
		if c.model != "" && strings.HasSuffix(m.Name, c.model) {
			return m.Name, nil
		}
		if fallback == "" {
			fallback = m.Name
		}
	}
	if fallback == "" {
		return "", errors.New("no model supporting generateContent found")
	}
	return fallback, nil
}

type generatePart struct {
	Text string `json:"text"`
}

type generateContent struct {
	Parts []generatePart `json:"parts"`
}

type generationConfig struct {
	Temperature float64 `json:"temperature"`
	TopP        float64 `json:"topP"`
}

type generateRequest struct {
	Contents         []generateContent `json:"contents"`
	GenerationConfig generationConfig  `json:"generationConfig"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []generatePart `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// generate performs one HTTP request and extracts the generated text.
func (c *Client) generate(ctx context.Context, endpoint, prompt string) (string, error) {
	// Low temperature and topP bias the model toward stable JSON output.
	body := generateRequest{
		Contents: []generateContent{{Parts: []generatePart{{Text: prompt}}}},
		GenerationConfig: generationConfig{
			Temperature: 0.2,
			TopP:        0.85,
		},
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s?key=%s", endpoint, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		io.Copy(io.Discard, resp.Body)
		return "", &TransientError{Cause: errors.New("gemini returned status 429")}
	}
	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("gemini returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}

	var gr generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&gr); err != nil {
		return "", &PermanentError{Cause: fmt.Errorf("decode gemini response: %w", err)}
	}
	if len(gr.Candidates) == 0 || len(gr.Candidates[0].Content.Parts) == 0 {
		return "", &PermanentError{Cause: errors.New("gemini response missing candidates")}
	}
	return gr.Candidates[0].Content.Parts[0].Text, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
