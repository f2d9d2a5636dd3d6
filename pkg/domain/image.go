package domain

import "errors"

// Image はキャプション生成に渡すアップロード画像なのだ。
type Image struct {
	Data     []byte
	MimeType string
	Filename string
}

// IsEmpty は画像データを持たない場合に true を返します。
func (img Image) IsEmpty() bool {
	return len(img.Data) == 0
}

// ErrNoImage は画像がアップロードされていない場合のエラーなのだ。
var ErrNoImage = errors.New("画像がアップロードされていません")
