// Package server は物語生成を HTTP で公開するトランスポート層なのだ。
// マルチパートの解析、レスポンスの整形、流量制限はここの責務で、コアは何も知らないのだよ。
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/shouni/go-imagify-kit/pkg/asset"
	"github.com/shouni/go-imagify-kit/pkg/captioner"
	"github.com/shouni/go-imagify-kit/pkg/domain"
	"github.com/shouni/go-imagify-kit/pkg/workflow"
)

const (
	defaultStyle           = "creative"
	defaultMaxUploadBytes  = 10 << 20
	defaultShutdownTimeout = 10 * time.Second
	multipartMemory        = 32 << 20
	readHeaderTimeout      = 10 * time.Second
)

// Args は Server の初期化に必要な依存関係と設定です。
type Args struct {
	Workflow        workflow.Workflow
	Port            int
	MaxUploadBytes  int64
	RateLimiter     *RateLimiter
	ShutdownTimeout time.Duration
	Now             func() time.Time
}

// Server は物語生成 API の HTTP サーバーなのだ。
type Server struct {
	workflow        workflow.Workflow
	addr            string
	maxUploadBytes  int64
	limiter         *RateLimiter
	shutdownTimeout time.Duration
	now             func() time.Time
}

// New は Server を初期化します。
func New(args Args) (*Server, error) {
	if args.Workflow == nil {
		return nil, fmt.Errorf("workflow は必須です")
	}

	s := &Server{
		workflow:        args.Workflow,
		addr:            fmt.Sprintf(":%d", args.Port),
		maxUploadBytes:  args.MaxUploadBytes,
		limiter:         args.RateLimiter,
		shutdownTimeout: args.ShutdownTimeout,
		now:             args.Now,
	}
	if s.maxUploadBytes <= 0 {
		s.maxUploadBytes = defaultMaxUploadBytes
	}
	if s.shutdownTimeout <= 0 {
		s.shutdownTimeout = defaultShutdownTimeout
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s, nil
}

// Handler はルーティング済みの http.Handler を返すのだ。
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /generate", RateLimitMiddleware(s.limiter, s.handleGenerate))
	mux.HandleFunc("POST /compose", RateLimitMiddleware(s.limiter, s.handleCompose))
	mux.HandleFunc("GET /health", s.handleHealth)
	return loggingMiddleware(mux)
}

// Run は ctx がキャンセルされるまでサーバーを動かし、その後グレースフルに停止するのだ。
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		slog.Info("HTTPサーバーを起動するのだ", "addr", s.addr, "captioner", s.workflow.CaptionerName())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTPサーバーの起動に失敗しました: %w", err)
		}
		return nil
	})
	eg.Go(func() error {
		<-egCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()
		slog.Info("HTTPサーバーを停止するのだ")
		return srv.Shutdown(shutdownCtx)
	})
	return eg.Wait()
}

// handleGenerate は画像をアップロードして物語を受け取るエンドポイントなのだ。
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("File too large (max %s)", humanize.IBytes(uint64(s.maxUploadBytes))))
			return
		}
		writeError(w, http.StatusBadRequest, "No image uploaded")
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("image")
	if err != nil {
		writeError(w, http.StatusBadRequest, "No image uploaded")
		return
	}
	defer file.Close()
	if header.Filename == "" {
		writeError(w, http.StatusBadRequest, "No image selected")
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Failed to read image")
		return
	}
	upload, err := asset.Load(data, header.Filename)
	if err != nil {
		slog.WarnContext(r.Context(), "画像のデコードに失敗したのだ", "filename", header.Filename, "error", err)
		writeError(w, http.StatusBadRequest, "Unsupported image format")
		return
	}

	style := formValueOr(r, "style", defaultStyle)
	seed := firstNonEmpty(r.FormValue("variation_seed"), r.FormValue("seed"))
	requestID := requestIDOrNew(r.FormValue("request_id"))

	res, err := s.workflow.Generate(r.Context(), workflow.GenerateRequest{
		Image:     upload.Image,
		Style:     style,
		Seed:      domain.SeedPtr(seed),
		RequestID: requestID,
	})
	if err != nil {
		slog.ErrorContext(r.Context(), "物語の生成に失敗したのだ", "request_id", requestID, "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	imageData, err := asset.JPEGDataURI(upload.Decoded, asset.DefaultJPEGQuality)
	if err != nil {
		slog.WarnContext(r.Context(), "表示用の画像の再エンコードに失敗したのだ", "error", err)
	}

	writeJSON(w, http.StatusOK, StoryResponse{
		Success:   true,
		Caption:   res.Caption,
		Story:     res.Story,
		Style:     style,
		ImageData: imageData,
		Timestamp: s.now().Format(time.RFC3339),
		SeedUsed:  res.Seed,
		RequestID: requestID,
	})
}

// composeRequest は /compose の入力なのだ。seed は数値でも文字列でも受け付けるのだ。
type composeRequest struct {
	Caption   string          `json:"caption"`
	Style     string          `json:"style"`
	Seed      json.RawMessage `json:"seed"`
	RequestID string          `json:"request_id"`
}

// handleCompose はキャプション文字列から直接物語を生成するエンドポイントなのだ。
func (s *Server) handleCompose(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)
	var req composeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	style := req.Style
	if style == "" {
		style = defaultStyle
	}
	requestID := requestIDOrNew(req.RequestID)

	res := s.workflow.Compose(domain.StoryRequest{
		Caption:   req.Caption,
		Style:     style,
		Seed:      domain.SeedPtr(rawSeed(req.Seed)),
		RequestID: requestID,
	})

	writeJSON(w, http.StatusOK, StoryResponse{
		Success:   true,
		Caption:   res.Caption,
		Story:     res.Story,
		Style:     style,
		Timestamp: s.now().Format(time.RFC3339),
		SeedUsed:  res.Seed,
		RequestID: requestID,
	})
}

// handleHealth はキャプションモデルが使えるかどうかを返すのだ。
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	name := s.workflow.CaptionerName()
	loaded := name != "" && name != captioner.StaticName
	status := "healthy"
	if !loaded {
		status = "models_missing"
	}
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:       status,
		ModelsLoaded: loaded,
		Device:       name,
	})
}

// rawSeed は JSON の seed を文字列にするのだ。null や欠落は空文字なのだ。
func rawSeed(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

func formValueOr(r *http.Request, key, def string) string {
	if v := r.FormValue(key); v != "" {
		return v
	}
	return def
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func requestIDOrNew(id string) string {
	if id != "" {
		return id
	}
	return uuid.NewString()
}

// statusRecorder はログ用にステータスコードを覚えておくのだ。
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		slog.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"elapsed", time.Since(start))
	})
}
