package builder

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shouni/go-imagify-kit/internal/config"
	"github.com/shouni/go-imagify-kit/internal/server"
	"github.com/shouni/go-imagify-kit/pkg/captioner"
	"github.com/shouni/go-imagify-kit/pkg/generator"
	"github.com/shouni/go-imagify-kit/pkg/prompts"
	"github.com/shouni/go-imagify-kit/pkg/workflow"
)

// BuildCaptioner はキャプション生成器を構築します。
// APIキーが無いときやオフライン指定のときは固定キャプションで動くのだ。
func BuildCaptioner(ctx context.Context, cfg *config.Config) (captioner.Captioner, error) {
	if !cfg.CaptionerEnabled() {
		slog.WarnContext(ctx, "GEMINI_API_KEY が無いので固定キャプションで動くのだ",
			"caption", cfg.FallbackCaption)
		return captioner.NewStaticCaptioner(cfg.FallbackCaption), nil
	}

	gemini, err := captioner.NewGeminiCaptioner(ctx, captioner.GeminiConfig{
		APIKey:  cfg.GeminiAPIKey,
		Model:   cfg.CaptionModel,
		Prompt:  cfg.CaptionPrompt,
		Timeout: cfg.CaptionTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("キャプション生成器の初期化に失敗したのだ: %w", err)
	}

	if cfg.CaptionCacheTTL <= 0 {
		return gemini, nil
	}
	cached, err := captioner.NewCachedCaptioner(gemini, cfg.CaptionCacheTTL)
	if err != nil {
		return nil, fmt.Errorf("キャプションキャッシュの初期化に失敗したのだ: %w", err)
	}
	return cached, nil
}

// BuildComposer はカタログから物語生成器を構築します。
func BuildComposer(catalog *prompts.Catalog) (*generator.Composer, error) {
	composer, err := generator.NewComposer(catalog)
	if err != nil {
		return nil, fmt.Errorf("物語生成器の初期化に失敗しました: %w", err)
	}
	return composer, nil
}

// BuildWorkflow はキャプション生成器と物語生成器をつないだ Manager を構築します。
func BuildWorkflow(cfg *config.Config, capt captioner.Captioner, catalog *prompts.Catalog) (*workflow.Manager, error) {
	composer, err := BuildComposer(catalog)
	if err != nil {
		return nil, err
	}
	return workflow.New(workflow.ManagerArgs{
		Captioner:       capt,
		Composer:        composer,
		FallbackCaption: cfg.FallbackCaption,
	})
}

// BuildServer は HTTP サーバーを構築します。
func BuildServer(appCtx *AppContext) (*server.Server, error) {
	cfg := appCtx.Config

	var limiter *server.RateLimiter
	if cfg.RateInterval > 0 {
		limiter = server.NewRateLimiter(cfg.RateInterval, cfg.RateBurst, cfg.TrustProxy)
	}

	return server.New(server.Args{
		Workflow:        appCtx.Workflow,
		Port:            cfg.Port,
		MaxUploadBytes:  cfg.MaxUploadBytes,
		RateLimiter:     limiter,
		ShutdownTimeout: config.DefaultShutdownTimeout,
	})
}
