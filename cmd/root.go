package cmd

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/shouni/go-imagify-kit/internal/builder"
	"github.com/shouni/go-imagify-kit/internal/config"
)

const appName = "imagify"

// newRootCmd はサブコマンドをすべてぶら下げたルートコマンドを組み立てるのだ。
// フラグの値は opts に集めて、各コマンドの実行時に Config へ反映するのだよ。
func newRootCmd() *cobra.Command {
	opts := &config.Options{}

	rootCmd := &cobra.Command{
		Use:           appName,
		Short:         "画像からキャプションと短い物語を生成するのだ。",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLogger(opts.Verbose)
		},
	}

	// --- 共通フラグ ---
	rootCmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "デバッグログを出力するのだ。")
	rootCmd.PersistentFlags().BoolVar(&opts.Offline, "offline", false, "Gemini を使わず固定キャプションで動かすのだ。")

	rootCmd.AddCommand(
		newServeCmd(opts),
		newComposeCmd(opts),
		newCaptionCmd(opts),
	)
	return rootCmd
}

func setupLogger(verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

// buildAppContext は環境変数とフラグから AppContext を組み立てるのだ。
func buildAppContext(ctx context.Context, opts *config.Options) (*builder.AppContext, error) {
	cfg := config.LoadConfig()
	cfg.ApplyOptions(*opts)
	return builder.NewAppContext(ctx, cfg)
}

// Execute は、アプリケーションのメインエントリポイントなのだ。
// main.go から呼び出されて、cobra のコマンドライン解析を開始するのだよ。
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		slog.Error("コマンドの実行に失敗したのだ", "error", err)
		stop()
		os.Exit(1)
	}
}
