package captioner

import (
	"context"

	"github.com/shouni/go-imagify-kit/pkg/domain"
)

const (
	// DefaultFallbackCaption はモデルが使えないときのキャプションです。
	DefaultFallbackCaption = "an object near water"
	// StaticName は StaticCaptioner の識別名なのだ。
	StaticName = "static"
)

// StaticCaptioner は常に同じキャプションを返すのだ。APIキーが無い環境やテストで使うのだよ。
type StaticCaptioner struct {
	caption string
}

// NewStaticCaptioner は StaticCaptioner を生成します。空文字なら既定のキャプションになるのだ。
func NewStaticCaptioner(caption string) *StaticCaptioner {
	if caption == "" {
		caption = DefaultFallbackCaption
	}
	return &StaticCaptioner{caption: caption}
}

// Caption は画像の中身に関係なく固定のキャプションを返します。
func (s *StaticCaptioner) Caption(ctx context.Context, img domain.Image) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return s.caption, nil
}

// Name は識別名を返します。
func (s *StaticCaptioner) Name() string {
	return StaticName
}
