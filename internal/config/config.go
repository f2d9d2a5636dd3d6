package config

import (
	"log/slog"
	"strconv"
	"time"

	"github.com/shouni/go-utils/envutil"

	"github.com/shouni/go-imagify-kit/pkg/captioner"
)

// デフォルト値の定義なのだ
const (
	DefaultPort            = 5000
	DefaultCaptionModel    = "gemini-2.5-flash"
	DefaultMaxUploadBytes  = 10 << 20 // 10MB
	DefaultRateInterval    = 2 * time.Second
	DefaultRateBurst       = 5
	DefaultCaptionTimeout  = 30 * time.Second
	DefaultCaptionCacheTTL = 30 * time.Minute
	DefaultShutdownTimeout = 10 * time.Second
	DefaultStyle           = "creative"
)

// Config はアプリケーション全体の環境設定を保持する構造体なのだ。
type Config struct {
	Port            int
	GeminiAPIKey    string
	CaptionModel    string
	CaptionPrompt   string
	FallbackCaption string
	MaxUploadBytes  int64
	RateInterval    time.Duration
	RateBurst       int
	CaptionTimeout  time.Duration
	CaptionCacheTTL time.Duration
	TrustProxy      bool // X-Forwarded-For を信用するか（リバースプロキシの背後のときだけ）

	Options Options
}

// LoadConfig は環境変数から設定を読み込み、構造体を返すのだ！
func LoadConfig() *Config {
	return &Config{
		Port:            getInt("PORT", DefaultPort),
		GeminiAPIKey:    envutil.GetEnv("GEMINI_API_KEY", ""),
		CaptionModel:    envutil.GetEnv("GEMINI_MODEL", DefaultCaptionModel),
		CaptionPrompt:   envutil.GetEnv("CAPTION_PROMPT", captioner.DefaultCaptionPrompt),
		FallbackCaption: envutil.GetEnv("FALLBACK_CAPTION", captioner.DefaultFallbackCaption),
		MaxUploadBytes:  int64(getInt("MAX_UPLOAD_BYTES", DefaultMaxUploadBytes)),
		RateInterval:    getDuration("RATE_INTERVAL", DefaultRateInterval),
		RateBurst:       getInt("RATE_BURST", DefaultRateBurst),
		CaptionTimeout:  getDuration("CAPTION_TIMEOUT", DefaultCaptionTimeout),
		CaptionCacheTTL: getDuration("CAPTION_CACHE_TTL", DefaultCaptionCacheTTL),
		TrustProxy:      getBool("TRUST_PROXY", false),
	}
}

// Options は CLI フラグから渡される実行時のパラメータなのだ。
type Options struct {
	// 共通
	Verbose bool // --verbose

	// serve
	Port       int  // --port
	TrustProxy bool // --trust-proxy

	// compose / caption
	Caption      string // --caption
	CaptionsFile string // --captions-file
	ImageFile    string // --image
	Style        string // --style
	Seed         string // --seed
	RequestID    string // --request-id
	Offline      bool   // --offline: Gemini を使わず固定キャプションにするのだ
}

// ApplyOptions は CLI フラグの値で環境変数由来の設定を上書きします。
func (c *Config) ApplyOptions(opts Options) {
	c.Options = opts
	if opts.Port > 0 {
		c.Port = opts.Port
	}
	if opts.Offline {
		c.GeminiAPIKey = ""
	}
	if opts.TrustProxy {
		c.TrustProxy = true
	}
}

// CaptionerEnabled は Gemini によるキャプション生成が使えるかを返すのだ。
func (c *Config) CaptionerEnabled() bool {
	return c.GeminiAPIKey != ""
}

func getInt(key string, def int) int {
	raw := envutil.GetEnv(key, "")
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		slog.Warn("環境変数を整数として解釈できないので既定値を使うのだ", "key", key, "value", raw)
		return def
	}
	return v
}

func getBool(key string, def bool) bool {
	raw := envutil.GetEnv(key, "")
	if raw == "" {
		return def
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		slog.Warn("環境変数を真偽値として解釈できないので既定値を使うのだ", "key", key, "value", raw)
		return def
	}
	return v
}

func getDuration(key string, def time.Duration) time.Duration {
	raw := envutil.GetEnv(key, "")
	if raw == "" {
		return def
	}
	v, err := time.ParseDuration(raw)
	if err != nil || v <= 0 {
		slog.Warn("環境変数を期間として解釈できないので既定値を使うのだ", "key", key, "value", raw)
		return def
	}
	return v
}
