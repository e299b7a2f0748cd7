package translate

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	apperrors "github.com/screenlate/screenlate/internal/errors"
	"github.com/screenlate/screenlate/internal/resilience"
	"github.com/screenlate/screenlate/internal/trace"
)

// DeepL API hosts. Free-tier keys are suffixed ":fx" and live on their own host.
const (
	proEndpoint   = "https://api.deepl.com/v2/translate"
	freeEndpoint  = "https://api-free.deepl.com/v2/translate"
	freeKeySuffix = ":fx"

	requestTimeout   = 15 * time.Second
	maxResponseBytes = 1 << 20
)

// Client calls the DeepL REST API, with retry and circuit breaking around the
// rate-limited service.
type Client struct {
	endpoint string
	authKey  string
	http     *http.Client
	breaker  *resilience.Breaker
	retry    resilience.RetryConfig
}

// NewClient creates a DeepL client for the given auth key.
func NewClient(authKey string) *Client {
	endpoint := proEndpoint
	if strings.HasSuffix(authKey, freeKeySuffix) {
		endpoint = freeEndpoint
	}
	return &Client{
		endpoint: endpoint,
		authKey:  authKey,
		http:     &http.Client{Timeout: requestTimeout},
		breaker:  resilience.NewBreaker(resilience.DefaultConfig()),
		retry:    resilience.DefaultRetryConfig(),
	}
}

// WithEndpoint overrides the API endpoint (tests).
func (c *Client) WithEndpoint(endpoint string) *Client {
	c.endpoint = endpoint
	return c
}

// WithRetryConfig overrides retry settings.
func (c *Client) WithRetryConfig(cfg resilience.RetryConfig) *Client {
	c.retry = cfg
	return c
}

// Translate converts text from sourceLang to targetLang.
func (c *Client) Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	ctx, span := trace.StartSpan(ctx, "deepl_translate")
	defer span.End()
	span.SetAttr("chars", len(text))

	var result string
	err := resilience.Retry(ctx, c.retry, func() error {
		return c.breaker.Execute(func() error {
			var err error
			result, err = c.translateOnce(ctx, text, sourceLang, targetLang)
			return err
		})
	})
	if err != nil {
		span.SetAttr("error", err.Error())
		return "", err
	}
	return result, nil
}

func (c *Client) translateOnce(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	form := url.Values{}
	form.Set("text", text)
	form.Set("source_lang", sourceLang)
	form.Set("target_lang", targetLang)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.CodeTranslateFailed, "build request")
	}
	req.Header.Set("Authorization", "DeepL-Auth-Key "+c.authKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.CodeUnavailable, "translation service unreachable")
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.CodeUnavailable, "read response")
	}
	if resp.StatusCode != http.StatusOK {
		return "", serviceError(resp.StatusCode, body)
	}

	var parsed struct {
		Translations []struct {
			Text string `json:"text"`
		} `json:"translations"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil || len(parsed.Translations) == 0 {
		return "", apperrors.New(apperrors.CodeTranslateFailed, "malformed translation response")
	}
	return parsed.Translations[0].Text, nil
}

// serviceError maps an HTTP failure to a structured error carrying the
// server's own message, which the controller surfaces to the user.
func serviceError(status int, body []byte) error {
	msg := strings.TrimSpace(string(body))
	var parsed struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(body, &parsed) == nil && parsed.Message != "" {
		msg = parsed.Message
	}
	if msg == "" {
		msg = http.StatusText(status)
	}

	code := apperrors.CodeTranslateFailed
	switch {
	// 456 is DeepL's "quota exceeded".
	case status == http.StatusTooManyRequests || status == 456:
		code = apperrors.CodeRateLimited
	case status >= 500:
		code = apperrors.CodeUnavailable
	}
	return apperrors.New(code, msg).WithMetadata("status", strconv.Itoa(status))
}
