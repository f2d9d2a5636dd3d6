package captioner

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"google.golang.org/genai"

	"github.com/shouni/go-imagify-kit/pkg/domain"
)

// DefaultCaptionPrompt はキャプション生成に使う指示文なのだ。
// 後段の正規化は短い英語の1文を前提にしているので、それに合う形で頼むのだ。
const DefaultCaptionPrompt = "Write a single short English caption for this image, like an automatic image captioner would. " +
	"Use lowercase, start with an article such as 'a' or 'an' when natural, use no more than 15 words, " +
	"and reply with the caption only, without quotes or a trailing period."

const (
	defaultGeminiTemperature = float32(0.2)
	defaultMaxOutputTokens   = int32(64)
)

// GeminiConfig は GeminiCaptioner の設定です。
type GeminiConfig struct {
	APIKey      string
	Model       string
	Prompt      string
	Temperature *float32
	Timeout     time.Duration
}

// GeminiCaptioner は Gemini のマルチモーダル生成でキャプションを作るのだ。
// クライアントはプロセス起動時に1度だけ作り、以後は読み取り専用で共有するのだ。
type GeminiCaptioner struct {
	client      *genai.Client
	model       string
	prompt      string
	temperature float32
	timeout     time.Duration
}

// NewGeminiCaptioner は Gemini クライアントを初期化します。
func NewGeminiCaptioner(ctx context.Context, cfg GeminiConfig) (*GeminiCaptioner, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("Gemini APIキーは必須です")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("Gemini モデル名は必須です")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: &http.Client{Timeout: cfg.Timeout},
	})
	if err != nil {
		return nil, fmt.Errorf("Geminiクライアントの初期化に失敗しました: %w", err)
	}

	prompt := cfg.Prompt
	if prompt == "" {
		prompt = DefaultCaptionPrompt
	}
	temperature := defaultGeminiTemperature
	if cfg.Temperature != nil {
		temperature = *cfg.Temperature
	}

	return &GeminiCaptioner{
		client:      client,
		model:       cfg.Model,
		prompt:      prompt,
		temperature: temperature,
		timeout:     cfg.Timeout,
	}, nil
}

// Caption は画像とプロンプトを Gemini に送り、キャプションを返すのだ。
func (g *GeminiCaptioner) Caption(ctx context.Context, img domain.Image) (string, error) {
	if img.IsEmpty() {
		return "", ErrEmptyImage
	}
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	mimeType := img.MimeType
	if mimeType == "" {
		mimeType = http.DetectContentType(img.Data)
	}

	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromBytes(img.Data, mimeType),
			genai.NewPartFromText(g.prompt),
		}, genai.RoleUser),
	}

	start := time.Now()
	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(g.temperature),
		MaxOutputTokens: defaultMaxOutputTokens,
	})
	if err != nil {
		return "", fmt.Errorf("Gemini によるキャプション生成に失敗しました: %w", err)
	}

	caption := CleanCaption(resp.Text())
	slog.DebugContext(ctx, "キャプションを生成したのだ",
		"model", g.model,
		"mime_type", mimeType,
		"elapsed", time.Since(start),
		"caption", caption)
	if caption == "" {
		return "", fmt.Errorf("Gemini の応答にキャプションが含まれていません")
	}
	return caption, nil
}

// Name は識別名を返します。
func (g *GeminiCaptioner) Name() string {
	return "gemini:" + g.model
}
