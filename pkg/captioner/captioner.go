// Package captioner は画像からキャプション文字列を得る外部モデルとの境界なのだ。
// 物語生成のコアはこのパッケージの中身を知らず、同期的に文字列を返す箱として扱うのだよ。
package captioner

import (
	"context"
	"errors"
	"strings"

	"github.com/shouni/go-imagify-kit/pkg/domain"
)

// ErrEmptyImage は画像データが空のときに返されます。
var ErrEmptyImage = errors.New("画像データが空です")

// Captioner は画像を1文のキャプションに変換する契約です。
type Captioner interface {
	// Caption は画像のキャプションを返します。失敗時は空文字とエラーを返すのだ。
	Caption(ctx context.Context, img domain.Image) (string, error)
	// Name はヘルスチェックやログに出すための識別名なのだ。
	Name() string
}

// CleanCaption はモデルの応答から最初の空でない行を取り出し、囲み記号を外すのだ。
func CleanCaption(text string) string {
	for _, line := range strings.Split(text, "\n") {
		line = strings.Trim(strings.TrimSpace(line), "\"'`")
		line = strings.TrimSpace(line)
		if line != "" {
			return line
		}
	}
	return ""
}
