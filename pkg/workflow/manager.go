// Package workflow はキャプション生成器と物語生成器をつなぐのだ。
// 1リクエストにつきキャプション生成を1回、物語生成を1回だけ呼ぶのだよ。
package workflow

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/shouni/go-imagify-kit/pkg/captioner"
	"github.com/shouni/go-imagify-kit/pkg/domain"
	"github.com/shouni/go-imagify-kit/pkg/generator"
)

// ManagerArgs は Manager の初期化に必要な依存関係です。
type ManagerArgs struct {
	Captioner       captioner.Captioner
	Composer        generator.StoryComposer
	FallbackCaption string
	BatchLimit      int
}

// Manager はキャプション生成と物語生成を順に実行するのだ。
type Manager struct {
	captioner       captioner.Captioner
	composer        generator.StoryComposer
	fallbackCaption string
	batchLimit      int
}

// New は Manager を初期化します。
func New(args ManagerArgs) (*Manager, error) {
	if args.Captioner == nil {
		return nil, fmt.Errorf("captioner は必須です")
	}
	if args.Composer == nil {
		return nil, fmt.Errorf("composer は必須です")
	}

	fallback := args.FallbackCaption
	if fallback == "" {
		fallback = DefaultFallbackCaption
	}
	limit := args.BatchLimit
	if limit <= 0 {
		limit = DefaultBatchLimit
	}

	return &Manager{
		captioner:       args.Captioner,
		composer:        args.Composer,
		fallbackCaption: fallback,
		batchLimit:      limit,
	}, nil
}

// Generate は画像からキャプションを得て物語を生成します。
// キャプション生成の失敗はリクエストの失敗にはせず、フォールバックのキャプションで続行するのだ。
func (m *Manager) Generate(ctx context.Context, req GenerateRequest) (domain.StoryResult, error) {
	if req.Image.IsEmpty() {
		return domain.StoryResult{}, domain.ErrNoImage
	}

	caption, err := m.captioner.Caption(ctx, req.Image)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return domain.StoryResult{}, fmt.Errorf("キャプション生成が中断されました: %w", ctxErr)
		}
		slog.WarnContext(ctx, "キャプション生成に失敗したのでフォールバックのキャプションを使うのだ",
			"captioner", m.captioner.Name(),
			"request_id", req.RequestID,
			"error", err)
		caption = m.fallbackCaption
	}

	res := m.composer.Compose(domain.StoryRequest{
		Caption:   caption,
		Style:     req.Style,
		Seed:      req.Seed,
		RequestID: req.RequestID,
	})

	slog.InfoContext(ctx, "物語を生成したのだ",
		"request_id", req.RequestID,
		"style", res.Style,
		"seed_used", res.Seed,
		"caption", res.Caption)
	return res, nil
}

// Compose はキャプション文字列から直接物語を生成します。
func (m *Manager) Compose(req domain.StoryRequest) domain.StoryResult {
	return m.composer.Compose(req)
}

// ComposeBatch は複数のキャプションを並行に処理するのだ。
// Composer は状態を持たないので、同時に呼んでも結果は逐次実行と同じになるのだ。
func (m *Manager) ComposeBatch(ctx context.Context, reqs []domain.StoryRequest) ([]domain.StoryResult, error) {
	results := make([]domain.StoryResult, len(reqs))
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(m.batchLimit)

	for i, req := range reqs {
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			results[i] = m.composer.Compose(req)
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, fmt.Errorf("バッチ生成が中断されました: %w", err)
	}
	return results, nil
}

// CaptionerName はキャプション生成器の識別名を返します。
func (m *Manager) CaptionerName() string {
	return m.captioner.Name()
}
