package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/shouni/go-imagify-kit/internal/config"
	"github.com/shouni/go-imagify-kit/pkg/asset"
	"github.com/shouni/go-imagify-kit/pkg/domain"
	"github.com/shouni/go-imagify-kit/pkg/workflow"
)

func newCaptionCmd(opts *config.Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "caption",
		Short: "画像ファイルからキャプションと物語を生成するのだ。",
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.ImageFile == "" {
				return fmt.Errorf("--image を指定してほしいのだ")
			}

			data, err := os.ReadFile(opts.ImageFile)
			if err != nil {
				return fmt.Errorf("画像ファイル '%s' の読み込みに失敗しました: %w", opts.ImageFile, err)
			}
			upload, err := asset.Load(data, filepath.Base(opts.ImageFile))
			if err != nil {
				return fmt.Errorf("画像のデコードに失敗しました: %w", err)
			}

			ctx := cmd.Context()
			appCtx, err := buildAppContext(ctx, opts)
			if err != nil {
				return err
			}
			warnUnknownStyle(appCtx)

			o := appCtx.Options
			slog.Debug("キャプション生成器を使うのだ", "captioner", appCtx.Captioner.Name(), "image", o.ImageFile)
			res, err := appCtx.Workflow.Generate(ctx, workflow.GenerateRequest{
				Image:     upload.Image,
				Style:     o.Style,
				Seed:      domain.SeedPtr(o.Seed),
				RequestID: requestIDOrNew(o.RequestID),
			})
			if err != nil {
				return fmt.Errorf("物語の生成に失敗したのだ: %w", err)
			}
			return writeResult(cmd.OutOrStdout(), res)
		},
	}

	cmd.Flags().StringVarP(&opts.ImageFile, "image", "i", "", "キャプションを付ける画像ファイルのパスなのだ。")
	addStoryFlags(cmd, opts)
	return cmd
}
