package translate

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	apperrors "github.com/screenlate/screenlate/internal/errors"
	"github.com/screenlate/screenlate/internal/resilience"
)

// fastRetry keeps test retries from sleeping for real.
func fastRetry() resilience.RetryConfig {
	return resilience.RetryConfig{
		MaxRetries: 1,
		BaseDelay:  time.Millisecond,
		MaxDelay:   2 * time.Millisecond,
	}
}

func TestTranslateSuccess(t *testing.T) {
	var gotAuth, gotText, gotSource, gotTarget string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_ = r.ParseForm()
		gotText = r.PostForm.Get("text")
		gotSource = r.PostForm.Get("source_lang")
		gotTarget = r.PostForm.Get("target_lang")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"translations":[{"text":"Hello"}]}`))
	}))
	defer ts.Close()

	c := NewClient("key:fx").WithEndpoint(ts.URL).WithRetryConfig(fastRetry())

	got, err := c.Translate(context.Background(), "안녕하세요", "KO", "EN-US")
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if got != "Hello" {
		t.Errorf("translation = %q, want %q", got, "Hello")
	}
	if gotAuth != "DeepL-Auth-Key key:fx" {
		t.Errorf("auth header = %q", gotAuth)
	}
	if gotText != "안녕하세요" || gotSource != "KO" || gotTarget != "EN-US" {
		t.Errorf("form = %q/%q/%q", gotText, gotSource, gotTarget)
	}
}

func TestTranslateQuotaExceeded(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(456)
		_, _ = w.Write([]byte(`{"message":"Quota for this billing period has been exceeded"}`))
	}))
	defer ts.Close()

	c := NewClient("key").WithEndpoint(ts.URL).WithRetryConfig(fastRetry())

	_, err := c.Translate(context.Background(), "text", "KO", "EN-US")
	if !apperrors.IsCode(err, apperrors.CodeRateLimited) {
		t.Fatalf("expected RATE_LIMITED, got %v", err)
	}
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) || appErr.Message != "Quota for this billing period has been exceeded" {
		t.Errorf("service message not propagated: %v", err)
	}
}

func TestTranslateAuthFailureNotRetried(t *testing.T) {
	calls := 0
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"message":"Authorization failure"}`))
	}))
	defer ts.Close()

	c := NewClient("bad").WithEndpoint(ts.URL).WithRetryConfig(fastRetry())

	_, err := c.Translate(context.Background(), "text", "KO", "EN-US")
	if !apperrors.IsCode(err, apperrors.CodeTranslateFailed) {
		t.Fatalf("expected TRANSLATE_FAILED, got %v", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1 (auth failures are not retryable)", calls)
	}
}

func TestTranslateServerErrorRetried(t *testing.T) {
	calls := 0
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(`{"translations":[{"text":"ok"}]}`))
	}))
	defer ts.Close()

	c := NewClient("key").WithEndpoint(ts.URL).WithRetryConfig(fastRetry())

	got, err := c.Translate(context.Background(), "text", "KO", "EN-US")
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if got != "ok" || calls != 2 {
		t.Errorf("got %q after %d calls, want %q after 2", got, calls, "ok")
	}
}

func TestTranslateMalformedResponse(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"translations":[]}`))
	}))
	defer ts.Close()

	c := NewClient("key").WithEndpoint(ts.URL).WithRetryConfig(fastRetry())

	_, err := c.Translate(context.Background(), "text", "KO", "EN-US")
	if !apperrors.IsCode(err, apperrors.CodeTranslateFailed) {
		t.Errorf("expected TRANSLATE_FAILED, got %v", err)
	}
}

func TestEndpointSelection(t *testing.T) {
	if got := NewClient("abc123:fx").endpoint; got != freeEndpoint {
		t.Errorf("free key endpoint = %q, want %q", got, freeEndpoint)
	}
	if got := NewClient("abc123").endpoint; got != proEndpoint {
		t.Errorf("pro key endpoint = %q, want %q", got, proEndpoint)
	}
}
