// Package observe provides metrics, tracing, and HTTP instrumentation for
// captionburn.
//
// Metrics are recorded through the OpenTelemetry Metrics API and exported to
// Prometheus by [InitProvider]. Tests should use [NewMetrics] with a
// [sdkmetric.ManualReader]-backed provider to avoid cross-test pollution.
package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// meterName is the instrumentation scope name used for all captionburn metrics.
const meterName = "captionburn"

// Metrics holds the OpenTelemetry instruments for the application. A nil
// *Metrics is valid and records nothing.
type Metrics struct {
	// JobsTotal counts finished burn jobs. Attributes: status, kind.
	JobsTotal metric.Int64Counter

	// JobDuration tracks end-to-end job latency, compile through transcode.
	JobDuration metric.Float64Histogram

	// TranscodeDuration tracks ffmpeg wall time. Attribute: status.
	TranscodeDuration metric.Float64Histogram

	// ActiveJobs tracks the number of jobs currently transcoding.
	ActiveJobs metric.Int64UpDownCounter

	// CaptionWords counts highlighted words compiled into tracks.
	CaptionWords metric.Int64Counter

	// UploadBytes tracks accepted upload sizes.
	UploadBytes metric.Int64Histogram

	// HTTPRequestDuration tracks HTTP request processing time. Attributes:
	// method, route, status.
	HTTPRequestDuration metric.Float64Histogram
}

// transcodeBuckets covers short clips through long-form video, in seconds.
var transcodeBuckets = []float64{
	0.5, 1, 2.5, 5, 10, 30, 60, 120, 300, 600, 1800,
}

var requestBuckets = []float64{
	0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 60,
}

var sizeBuckets = []float64{
	1 << 20, 10 << 20, 50 << 20, 100 << 20, 250 << 20, 500 << 20, 1 << 30,
}

// NewMetrics creates a fully initialised [Metrics] using mp.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	if met.JobsTotal, err = m.Int64Counter("captionburn.jobs",
		metric.WithDescription("Burn jobs by final status."),
	); err != nil {
		return nil, err
	}
	if met.JobDuration, err = m.Float64Histogram("captionburn.job.duration",
		metric.WithDescription("Latency of a burn job from validation to finished output."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(transcodeBuckets...),
	); err != nil {
		return nil, err
	}
	if met.TranscodeDuration, err = m.Float64Histogram("captionburn.transcode.duration",
		metric.WithDescription("Wall time of the ffmpeg overlay process."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(transcodeBuckets...),
	); err != nil {
		return nil, err
	}
	if met.ActiveJobs, err = m.Int64UpDownCounter("captionburn.jobs.active",
		metric.WithDescription("Jobs currently transcoding."),
	); err != nil {
		return nil, err
	}
	if met.CaptionWords, err = m.Int64Counter("captionburn.caption.words",
		metric.WithDescription("Highlighted words compiled into subtitle tracks."),
	); err != nil {
		return nil, err
	}
	if met.UploadBytes, err = m.Int64Histogram("captionburn.upload.size",
		metric.WithDescription("Size of accepted video uploads."),
		metric.WithUnit("By"),
		metric.WithExplicitBucketBoundaries(sizeBuckets...),
	); err != nil {
		return nil, err
	}
	if met.HTTPRequestDuration, err = m.Float64Histogram("captionburn.http.request.duration",
		metric.WithDescription("Latency of HTTP requests."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(requestBuckets...),
	); err != nil {
		return nil, err
	}
	return met, nil
}

// JobStarted increments the active job gauge.
func (m *Metrics) JobStarted(ctx context.Context) {
	if m == nil {
		return
	}
	m.ActiveJobs.Add(ctx, 1)
}

// JobFinished records the outcome of a job. kind is empty on success.
func (m *Metrics) JobFinished(ctx context.Context, status, kind string, elapsed time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("status", status),
		attribute.String("kind", kind),
	)
	m.JobsTotal.Add(ctx, 1, attrs)
	m.JobDuration.Record(ctx, elapsed.Seconds(), attrs)
}

// TranscodeFinished records an ffmpeg run and releases the active job gauge.
func (m *Metrics) TranscodeFinished(ctx context.Context, status string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.ActiveJobs.Add(ctx, -1)
	m.TranscodeDuration.Record(ctx, elapsed.Seconds(),
		metric.WithAttributes(attribute.String("status", status)))
}

// WordsCompiled counts highlighted words.
func (m *Metrics) WordsCompiled(ctx context.Context, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.CaptionWords.Add(ctx, int64(n))
}

// UploadAccepted records the size of a stored upload.
func (m *Metrics) UploadAccepted(ctx context.Context, size int64) {
	if m == nil {
		return
	}
	m.UploadBytes.Record(ctx, size)
}
