package builder

import (
	"context"
	"fmt"

	"github.com/shouni/go-imagify-kit/internal/config"
	"github.com/shouni/go-imagify-kit/pkg/captioner"
	"github.com/shouni/go-imagify-kit/pkg/prompts"
	"github.com/shouni/go-imagify-kit/pkg/workflow"
)

// AppContext は、アプリケーション実行に必要な共通コンテキストを保持する
// これを各コマンドに渡すことで、依存関係の注入を簡素化します。
type AppContext struct {
	Config    *config.Config      // Configは、環境変数とフラグから組み立てた設定です。
	Options   config.Options      // Optionsは、コマンドラインから渡された実行時の設定です。
	Captioner captioner.Captioner // Captionerは、画像からキャプションを得るための生成器です。
	Catalog   *prompts.Catalog    // Catalogは、物語生成器と共有するテンプレートカタログです。
	Workflow  *workflow.Manager   // Workflowは、キャプション生成と物語生成をつなぐマネージャーです。
}

// NewAppContext は設定から依存関係を組み立てて AppContext を生成する
func NewAppContext(ctx context.Context, cfg *config.Config) (*AppContext, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config は必須です")
	}

	capt, err := BuildCaptioner(ctx, cfg)
	if err != nil {
		return nil, err
	}

	catalog, err := prompts.NewCatalog()
	if err != nil {
		return nil, fmt.Errorf("テンプレートカタログの読み込みに失敗しました: %w", err)
	}

	wf, err := BuildWorkflow(cfg, capt, catalog)
	if err != nil {
		return nil, err
	}

	return &AppContext{
		Config:    cfg,
		Options:   cfg.Options,
		Captioner: capt,
		Catalog:   catalog,
		Workflow:  wf,
	}, nil
}
