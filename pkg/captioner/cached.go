package captioner

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"

	"github.com/shouni/go-imagify-kit/pkg/domain"
)

const (
	defaultCacheExpiration = 30 * time.Minute
	cacheCleanupInterval   = 1 * time.Hour
)

// CachedCaptioner は同じ画像へのキャプション要求をキャッシュし、同時要求を1回の呼び出しにまとめるのだ。
// モデルの呼び出しは重いので、同じ画像を何度アップロードされても1回で済ませたいのだ。
type CachedCaptioner struct {
	next  Captioner
	cache *cache.Cache
	ttl   time.Duration
	group singleflight.Group
}

// NewCachedCaptioner は CachedCaptioner を生成します。ttl が0以下なら既定値を使うのだ。
func NewCachedCaptioner(next Captioner, ttl time.Duration) (*CachedCaptioner, error) {
	if next == nil {
		return nil, fmt.Errorf("captioner は必須です")
	}
	if ttl <= 0 {
		ttl = defaultCacheExpiration
	}
	return &CachedCaptioner{
		next:  next,
		cache: cache.New(ttl, cacheCleanupInterval),
		ttl:   ttl,
	}, nil
}

// Caption はキャッシュを確認し、無ければ下位の Captioner を呼び出します。エラーはキャッシュしないのだ。
func (c *CachedCaptioner) Caption(ctx context.Context, img domain.Image) (string, error) {
	if img.IsEmpty() {
		return "", ErrEmptyImage
	}
	key := imageKey(img)

	if v, ok := c.cache.Get(key); ok {
		if caption, ok := v.(string); ok {
			return caption, nil
		}
	}

	val, err, _ := c.group.Do(key, func() (interface{}, error) {
		// 待機中に他のゴルーチンが完了させている可能性があるので、もう一度確認するのだ
		if v, ok := c.cache.Get(key); ok {
			return v, nil
		}

		caption, err := c.next.Caption(ctx, img)
		if err != nil {
			return nil, err
		}
		c.cache.Set(key, caption, c.ttl)
		return caption, nil
	})
	if err != nil {
		return "", err
	}

	caption, ok := val.(string)
	if !ok {
		return "", fmt.Errorf("unexpected return type from singleflight: %T", val)
	}
	return caption, nil
}

// Name は下位の Captioner の識別名を返します。
func (c *CachedCaptioner) Name() string {
	return c.next.Name()
}

// Len はキャッシュ済みの件数を返します。
func (c *CachedCaptioner) Len() int {
	return c.cache.ItemCount()
}

// imageKey は画像のバイト列と MIME タイプからキャッシュキーを作るのだ。
func imageKey(img domain.Image) string {
	return img.MimeType + ":" + strconv.FormatUint(xxhash.Sum64(img.Data), 16)
}
