// Package asset はアップロードされた画像の読み込みと、表示用の再エンコードを担当するのだ。
package asset

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"net/http"

	"github.com/shouni/go-imagify-kit/pkg/domain"
)

// DefaultJPEGQuality はレスポンスに埋め込む JPEG の品質です。
const DefaultJPEGQuality = 85

// ErrUnsupportedImage は画像としてデコードできないデータに対して返されます。
var ErrUnsupportedImage = errors.New("画像としてデコードできないデータです")

// Upload はデコード済みの画像と、キャプション生成に渡す元データのペアなのだ。
type Upload struct {
	Image   domain.Image
	Decoded image.Image
	Format  string
}

// Load はアップロードされたバイト列をデコードします。
// MIME タイプはデコードできた形式から決めるので、クライアントの申告は信用しないのだ。
func Load(data []byte, filename string) (*Upload, error) {
	if len(data) == 0 {
		return nil, domain.ErrNoImage
	}

	decoded, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w (%s): %v", ErrUnsupportedImage, http.DetectContentType(data), err)
	}

	return &Upload{
		Image: domain.Image{
			Data:     data,
			MimeType: "image/" + format,
			Filename: filename,
		},
		Decoded: decoded,
		Format:  format,
	}, nil
}

// JPEGDataURI は画像を JPEG に再エンコードし、data URI 形式の文字列にするのだ。
func JPEGDataURI(img image.Image, quality int) (string, error) {
	if img == nil {
		return "", fmt.Errorf("画像が nil です")
	}
	if quality <= 0 || quality > 100 {
		quality = DefaultJPEGQuality
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return "", fmt.Errorf("JPEG へのエンコードに失敗しました: %w", err)
	}
	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
