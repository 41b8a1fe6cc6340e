package observe

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

func useTestTracer(t *testing.T) *tracetest.InMemoryExporter {
	t.Helper()
	exp := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exp))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	orig := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { otel.SetTracerProvider(orig) })
	return exp
}

func TestMiddlewareRecordsSpanAndDuration(t *testing.T) {
	exp := useTestTracer(t)
	m, reader := newTestMetrics(t)

	var traceID string
	handler := Middleware(m, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID = TraceID(r.Context())
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/jobs/xyz", nil))

	if rec.Code != http.StatusTeapot {
		t.Fatalf("status = %d", rec.Code)
	}
	if len(traceID) != 32 {
		t.Fatalf("trace id = %q", traceID)
	}
	if rec.Header().Get("Traceparent") == "" {
		t.Fatal("expected traceparent response header")
	}

	spans := exp.GetSpans()
	if len(spans) != 1 || spans[0].Name != "HTTP GET /api/jobs/{id}" {
		t.Fatalf("unexpected spans: %v", spans)
	}

	rm := collect(t, reader)
	hist := findMetric(rm, "captionburn.http.request.duration")
	if hist == nil {
		t.Fatal("http duration not recorded")
	}
	if h := hist.Data.(metricdata.Histogram[float64]); len(h.DataPoints) != 1 || h.DataPoints[0].Count != 1 {
		t.Fatalf("unexpected histogram %#v", h.DataPoints)
	}
}

func TestProviderServesPrometheus(t *testing.T) {
	ctx := context.Background()
	origMP := otel.GetMeterProvider()
	origTP := otel.GetTracerProvider()
	t.Cleanup(func() {
		otel.SetMeterProvider(origMP)
		otel.SetTracerProvider(origTP)
	})

	provider, err := InitProvider(ctx, ProviderConfig{ServiceVersion: "test"})
	if err != nil {
		t.Fatalf("InitProvider: %v", err)
	}
	t.Cleanup(func() { _ = provider.Shutdown(ctx) })

	provider.Metrics.WordsCompiled(ctx, 4)

	srv := httptest.NewServer(provider.Handler())
	defer srv.Close()
	resp, err := http.Get(srv.URL)
	if err != nil {
		t.Fatalf("GET metrics: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	scrape := strings.ReplaceAll(string(body), ".", "_")
	if !strings.Contains(scrape, "captionburn_caption_words") {
		t.Fatalf("metrics output missing counter:\n%s", body)
	}
}

func TestServiceResourceMergesWithSDKDefaults(t *testing.T) {
	res, err := serviceResource("captionburnd", "1.2.3")
	if err != nil {
		t.Fatalf("serviceResource: %v", err)
	}
	if res.SchemaURL() != resource.Default().SchemaURL() {
		t.Fatalf("schema url = %q, want SDK default %q", res.SchemaURL(), resource.Default().SchemaURL())
	}
	want := map[attribute.Key]string{
		semconv.ServiceNameKey:    "captionburnd",
		semconv.ServiceVersionKey: "1.2.3",
		"telemetry.sdk.language":  "go",
	}
	for key, value := range want {
		got, ok := res.Set().Value(key)
		if !ok || got.AsString() != value {
			t.Errorf("%s = %q (present %v), want %q", key, got.AsString(), ok, value)
		}
	}

	unversioned, err := serviceResource("captionburnd", "")
	if err != nil {
		t.Fatalf("serviceResource without version: %v", err)
	}
	if _, ok := unversioned.Set().Value(semconv.ServiceVersionKey); ok {
		t.Fatal("empty version should not be recorded")
	}
}
