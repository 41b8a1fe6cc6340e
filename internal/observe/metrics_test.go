package observe

import (
	"context"
	"testing"
	"time"

	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func newTestMetrics(t *testing.T) (*Metrics, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	m, err := NewMetrics(mp)
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}
	return m, reader
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) metricdata.ResourceMetrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect: %v", err)
	}
	return rm
}

func findMetric(rm metricdata.ResourceMetrics, name string) *metricdata.Metrics {
	for _, sm := range rm.ScopeMetrics {
		for i := range sm.Metrics {
			if sm.Metrics[i].Name == name {
				return &sm.Metrics[i]
			}
		}
	}
	return nil
}

func TestJobFinishedRecordsCounterAndHistogram(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	m.JobFinished(ctx, "succeeded", "", 3*time.Second)
	m.JobFinished(ctx, "failed", "validation", time.Second)
	m.JobFinished(ctx, "failed", "validation", time.Second)

	rm := collect(t, reader)
	jobs := findMetric(rm, "captionburn.jobs")
	if jobs == nil {
		t.Fatal("captionburn.jobs not found")
	}
	sum, ok := jobs.Data.(metricdata.Sum[int64])
	if !ok {
		t.Fatalf("unexpected data type %T", jobs.Data)
	}
	failed := attribute.NewSet(attribute.String("status", "failed"), attribute.String("kind", "validation"))
	var found bool
	for _, dp := range sum.DataPoints {
		if dp.Attributes.Equals(&failed) {
			found = true
			if dp.Value != 2 {
				t.Fatalf("failed count = %d, want 2", dp.Value)
			}
		}
	}
	if !found {
		t.Fatal("failed/validation data point missing")
	}

	hist := findMetric(rm, "captionburn.job.duration")
	if hist == nil {
		t.Fatal("captionburn.job.duration not found")
	}
	if h, ok := hist.Data.(metricdata.Histogram[float64]); !ok || len(h.DataPoints) != 2 {
		t.Fatalf("unexpected histogram data %#v", hist.Data)
	}
}

func TestActiveJobsGauge(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	m.JobStarted(ctx)
	m.JobStarted(ctx)
	m.TranscodeFinished(ctx, "succeeded", 2*time.Second)

	rm := collect(t, reader)
	active := findMetric(rm, "captionburn.jobs.active")
	if active == nil {
		t.Fatal("captionburn.jobs.active not found")
	}
	sum := active.Data.(metricdata.Sum[int64])
	if len(sum.DataPoints) != 1 || sum.DataPoints[0].Value != 1 {
		t.Fatalf("active = %#v, want 1", sum.DataPoints)
	}
	if findMetric(rm, "captionburn.transcode.duration") == nil {
		t.Fatal("transcode duration not recorded")
	}
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	ctx := context.Background()
	m.JobStarted(ctx)
	m.JobFinished(ctx, "succeeded", "", time.Second)
	m.TranscodeFinished(ctx, "failed", time.Second)
	m.WordsCompiled(ctx, 3)
	m.UploadAccepted(ctx, 10)
}

func TestRouteLabel(t *testing.T) {
	tests := map[string]string{
		"/outputs/123-output.mp4": "/outputs/{file}",
		"/api/jobs/abc":           "/api/jobs/{id}",
		"/api/jobs":               "/api/jobs",
		"/process-video":          "/process-video",
	}
	for in, want := range tests {
		if got := RouteLabel(in); got != want {
			t.Errorf("RouteLabel(%q) = %q, want %q", in, got, want)
		}
	}
}
