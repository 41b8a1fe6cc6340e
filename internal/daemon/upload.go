package daemon

import (
	"errors"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"captionburn/internal/api"
	"captionburn/internal/burn"
	"captionburn/internal/fileutil"
	"captionburn/internal/logging"
	"captionburn/internal/observe"
	"captionburn/internal/services"
	"captionburn/internal/subtitles"
)

// multipartMemory bounds the in-memory part of a parsed upload; the rest spills to temp files.
const multipartMemory = 32 << 20

// handleProcessVideo accepts a multipart upload with a video file, a JSON
// caption array, and an optional highlight colour, burns the captions into the
// video, and answers with the output URL.
func (s *apiServer) handleProcessVideo(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	ctx := r.Context()
	logger := logging.WithContext(ctx, s.logger)
	limit := s.cfg.MaxUploadBytes()

	r.Body = http.MaxBytesReader(w, r.Body, limit+multipartMemory)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.writeFailure(w, http.StatusRequestEntityTooLarge, "upload exceeds size limit", "validation")
			return
		}
		s.writeFailure(w, http.StatusBadRequest, "expected multipart form: "+err.Error(), "validation")
		return
	}
	defer func() {
		if err := r.MultipartForm.RemoveAll(); err != nil {
			logger.Debug("multipart cleanup failed", logging.Error(err))
		}
	}()

	file, header, err := r.FormFile("video")
	if err != nil {
		s.writeFailure(w, http.StatusBadRequest, "video file is required", "validation")
		return
	}
	defer file.Close()

	spans, err := subtitles.ParseJSONString(r.FormValue("captions"))
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	activeColor := strings.TrimSpace(r.FormValue("activeColor"))
	if err := subtitles.ValidateSpans(spans); err != nil {
		s.writeServiceError(w, err)
		return
	}
	if err := s.daemon.processor.Style(activeColor).Validate(); err != nil {
		s.writeServiceError(w, err)
		return
	}

	jobID := uuid.NewString()
	videoPath := filepath.Join(s.cfg.Paths.UploadsDir, jobID+uploadExtension(header.Filename))
	size, err := fileutil.SaveStream(videoPath, file, limit)
	if errors.Is(err, fileutil.ErrTooLarge) {
		s.writeFailure(w, http.StatusRequestEntityTooLarge, "upload exceeds size limit", "validation")
		return
	}
	if err != nil {
		s.writeServiceError(w, services.Wrap(services.ErrConfiguration, "upload", "save video", videoPath, err))
		return
	}
	s.metrics().UploadAccepted(ctx, size)
	logger.Info("video upload accepted",
		logging.String(logging.FieldEventType, "upload_accepted"),
		logging.JobID(jobID),
		logging.String("video", header.Filename),
		logging.Int64("bytes", size),
		logging.Int("spans", len(spans)),
	)

	requestID, _ := services.RequestIDFromContext(ctx)
	outcome, err := s.daemon.processor.Process(ctx, burn.Job{
		ID:          jobID,
		VideoPath:   videoPath,
		VideoName:   header.Filename,
		Spans:       spans,
		ActiveColor: activeColor,
		BaseURL:     s.baseURL(r),
		RemoveVideo: true,
		RequestID:   requestID,
	})
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, api.ProcessVideoResponse{URL: outcome.URL, JobID: outcome.JobID})
}

func (s *apiServer) metrics() *observe.Metrics {
	if s.daemon.provider == nil {
		return nil
	}
	return s.daemon.provider.Metrics
}

// baseURL prefers the configured public URL, then the request's own scheme and host.
func (s *apiServer) baseURL(r *http.Request) string {
	if base := strings.TrimRight(strings.TrimSpace(s.cfg.Paths.PublicBaseURL), "/"); base != "" {
		return base
	}
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := strings.TrimSpace(r.Header.Get("X-Forwarded-Proto")); proto == "http" || proto == "https" {
		scheme = proto
	}
	return scheme + "://" + r.Host
}

func (s *apiServer) writeServiceError(w http.ResponseWriter, err error) {
	s.writeFailure(w, services.HTTPStatus(err), err.Error(), services.Kind(err))
}

func (s *apiServer) writeFailure(w http.ResponseWriter, status int, message, kind string) {
	s.writeJSON(w, status, errorPayload(message, kind))
}

// uploadExtension keeps a short alphanumeric extension from the client file
// name so ffmpeg can probe the container; anything else is dropped.
func uploadExtension(name string) string {
	ext := strings.ToLower(filepath.Ext(filepath.Base(name)))
	if len(ext) < 2 || len(ext) > 6 {
		return ""
	}
	for _, r := range ext[1:] {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return ""
		}
	}
	return ext
}
