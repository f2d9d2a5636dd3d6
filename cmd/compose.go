package cmd

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/shouni/go-imagify-kit/internal/builder"
	"github.com/shouni/go-imagify-kit/internal/config"
	"github.com/shouni/go-imagify-kit/pkg/domain"
)

func newComposeCmd(opts *config.Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compose",
		Short: "キャプション文字列から物語を生成するのだ。",
		Long: `--caption で1件、--captions-file で1行1キャプションのファイルをまとめて処理するのだ。
ファイルに '-' を渡すと標準入力から読むのだよ。結果は JSON で出力するのだ。`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.Caption == "" && opts.CaptionsFile == "" {
				return fmt.Errorf("--caption か --captions-file を指定してほしいのだ")
			}

			ctx := cmd.Context()
			appCtx, err := buildAppContext(ctx, opts)
			if err != nil {
				return err
			}
			warnUnknownStyle(appCtx)

			o := appCtx.Options
			if o.CaptionsFile == "" {
				res := appCtx.Workflow.Compose(domain.StoryRequest{
					Caption:   o.Caption,
					Style:     o.Style,
					Seed:      domain.SeedPtr(o.Seed),
					RequestID: requestIDOrNew(o.RequestID),
				})
				return writeResult(cmd.OutOrStdout(), res)
			}

			captions, err := readCaptions(cmd.InOrStdin(), o.CaptionsFile)
			if err != nil {
				return err
			}
			reqs := make([]domain.StoryRequest, len(captions))
			for i, c := range captions {
				reqs[i] = domain.StoryRequest{
					Caption:   c,
					Style:     o.Style,
					Seed:      domain.SeedPtr(o.Seed),
					RequestID: uuid.NewString(),
				}
			}

			results, err := appCtx.Workflow.ComposeBatch(ctx, reqs)
			if err != nil {
				return fmt.Errorf("物語の一括生成に失敗したのだ: %w", err)
			}
			slog.Info("物語の一括生成が完了したのだ", "count", len(results))
			return writeResult(cmd.OutOrStdout(), results)
		},
	}

	cmd.Flags().StringVarP(&opts.Caption, "caption", "c", "", "物語の元になるキャプションなのだ。")
	cmd.Flags().StringVarP(&opts.CaptionsFile, "captions-file", "f", "", "1行1キャプションのファイルパス（'-'で標準入力なのだ）。")
	addStoryFlags(cmd, opts)
	return cmd
}

// addStoryFlags は compose と caption に共通のフラグを登録するのだ。
func addStoryFlags(cmd *cobra.Command, opts *config.Options) {
	cmd.Flags().StringVarP(&opts.Style, "style", "s", config.DefaultStyle, "物語のスタイル（direct, poetic, creative, caption）なのだ。")
	cmd.Flags().StringVar(&opts.Seed, "seed", "", "乱数シードなのだ。同じシードなら同じ物語になるのだよ。")
	cmd.Flags().StringVar(&opts.RequestID, "request-id", "", "リクエストIDなのだ（省略時は自動で採番）。")
}

// warnUnknownStyle は未知のスタイルが既定スタイルに置き換わることを知らせるのだ。
// 物語生成器と同じカタログで判定するのだ。
func warnUnknownStyle(appCtx *builder.AppContext) {
	if resolved, err := appCtx.Catalog.Lookup(appCtx.Options.Style); err != nil {
		slog.Warn("既定のスタイルで生成するのだ", "style", resolved, "reason", err)
	}
}

// readCaptions は空行を除いたキャプションの一覧を読み込むのだ。
func readCaptions(stdin io.Reader, path string) ([]string, error) {
	var r io.Reader = stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("キャプションファイル '%s' を開けませんでした: %w", path, err)
		}
		defer f.Close()
		r = f
	}

	var captions []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			captions = append(captions, line)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("キャプションの読み込みに失敗しました: %w", err)
	}
	if len(captions) == 0 {
		return nil, fmt.Errorf("キャプションが1件も見つからなかったのだ")
	}
	return captions, nil
}

func writeResult(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

func requestIDOrNew(id string) string {
	if id != "" {
		return id
	}
	return uuid.NewString()
}
