package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/shouni/go-imagify-kit/internal/builder"
	"github.com/shouni/go-imagify-kit/internal/config"
)

func newServeCmd(opts *config.Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "物語生成の HTTP API を起動するのだ。",
		Long: `POST /generate で画像を受け取り、キャプションと物語を JSON で返すのだ。
POST /compose はキャプション文字列から直接物語を作り、GET /health は状態を返すのだよ。`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			appCtx, err := buildAppContext(ctx, opts)
			if err != nil {
				return err
			}
			srv, err := builder.BuildServer(appCtx)
			if err != nil {
				return fmt.Errorf("サーバーの構築に失敗したのだ: %w", err)
			}

			slog.Info("物語生成 API を起動するのだ",
				"port", appCtx.Config.Port,
				"captioner", appCtx.Captioner.Name(),
				"offline", appCtx.Options.Offline,
				"trust_proxy", appCtx.Config.TrustProxy)
			return srv.Run(ctx)
		},
	}
	cmd.Flags().IntVarP(&opts.Port, "port", "p", 0, fmt.Sprintf("待ち受けポートなのだ（省略時は PORT または %d）。", config.DefaultPort))
	cmd.Flags().BoolVar(&opts.TrustProxy, "trust-proxy", false, "リバースプロキシの背後で動くときに X-Forwarded-For でクライアントを識別するのだ。")
	return cmd
}
