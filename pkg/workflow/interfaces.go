package workflow

import (
	"context"

	"github.com/shouni/go-imagify-kit/pkg/domain"
)

// Workflow は画像から物語までの一連の処理を提供する契約です。
type Workflow interface {
	// Generate は画像のキャプションを得て、そこから物語を1つ生成します。
	Generate(ctx context.Context, req GenerateRequest) (domain.StoryResult, error)
	// Compose はキャプション文字列から直接物語を生成します。
	Compose(req domain.StoryRequest) domain.StoryResult
	// ComposeBatch は複数のキャプションを並行に処理し、入力と同じ順序で結果を返します。
	ComposeBatch(ctx context.Context, reqs []domain.StoryRequest) ([]domain.StoryResult, error)
	// CaptionerName はキャプション生成器の識別名を返します。
	CaptionerName() string
}

// GenerateRequest は画像1枚分の生成要求なのだ。
type GenerateRequest struct {
	Image     domain.Image
	Style     string
	Seed      *string
	RequestID string
}
