package trace

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNewGeneratesIDs(t *testing.T) {
	tc := New()
	if len(tc.TraceID) != 32 {
		t.Errorf("TraceID length = %d, want 32 hex chars", len(tc.TraceID))
	}
	if len(tc.SpanID) != 16 {
		t.Errorf("SpanID length = %d, want 16 hex chars", len(tc.SpanID))
	}
	if tc.ParentSpanID != "" {
		t.Error("root context should have no parent span")
	}

	if New().TraceID == tc.TraceID {
		t.Error("trace IDs should be unique")
	}
}

func TestNewChild(t *testing.T) {
	parent := New()
	child := NewChild(parent)

	if child.TraceID != parent.TraceID {
		t.Error("child must stay on the parent's trace")
	}
	if child.ParentSpanID != parent.SpanID {
		t.Error("child must record parent span")
	}
	if child.SpanID == parent.SpanID {
		t.Error("child needs a fresh span ID")
	}
}

func TestContextRoundTrip(t *testing.T) {
	tc := New()
	ctx := WithContext(context.Background(), tc)

	got, ok := FromContext(ctx)
	if !ok || got != tc {
		t.Errorf("FromContext = %+v ok=%v", got, ok)
	}

	if _, ok := FromContext(context.Background()); ok {
		t.Error("bare context should carry no trace")
	}
}

func TestStartSpan(t *testing.T) {
	ctx, root := StartSpan(context.Background(), "capture")
	if root.Ctx.TraceID == "" {
		t.Fatal("span should mint a trace when none exists")
	}

	_, child := StartSpan(ctx, "translate")
	if child.Ctx.TraceID != root.Ctx.TraceID {
		t.Error("nested span must stay on the same trace")
	}
	if child.Ctx.ParentSpanID != root.Ctx.SpanID {
		t.Error("nested span must record its parent")
	}

	child.End()
	if child.Duration() < 0 {
		t.Error("duration should be non-negative")
	}
}

func TestMiddlewarePropagatesHeaders(t *testing.T) {
	var got Context
	h := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = FromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/status", nil)
	req.Header.Set(TraceIDKey, "0123456789abcdef0123456789abcdef")
	req.Header.Set(SpanIDKey, "0123456789abcdef")
	h.ServeHTTP(httptest.NewRecorder(), req)

	if got.TraceID != "0123456789abcdef0123456789abcdef" {
		t.Errorf("TraceID = %q, want propagated header", got.TraceID)
	}
	if got.ParentSpanID != "0123456789abcdef" {
		t.Errorf("ParentSpanID = %q, want caller's span", got.ParentSpanID)
	}
	if got.SpanID == "" || got.SpanID == got.ParentSpanID {
		t.Error("server should mint its own span ID")
	}
}

func TestMiddlewareMintsTraceWhenAbsent(t *testing.T) {
	var got Context
	h := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = FromContext(r.Context())
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	if got.TraceID == "" || got.SpanID == "" {
		t.Errorf("middleware should mint IDs: %+v", got)
	}
}
