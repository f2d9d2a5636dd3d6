package workflow

import "github.com/shouni/go-imagify-kit/pkg/captioner"

// デフォルト値の定義なのだ
const (
	DefaultFallbackCaption = captioner.DefaultFallbackCaption
	DefaultBatchLimit      = 8
)
