// Package generator は正規化済みのキャプションとシードから物語を組み立てるのだ。
package generator

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/shouni/go-imagify-kit/pkg/domain"
	"github.com/shouni/go-imagify-kit/pkg/parser"
	"github.com/shouni/go-imagify-kit/pkg/prompts"
)

// EmbellishProbability は形容詞を差し込む確率です。
const EmbellishProbability = 0.35

// StoryComposer は物語を生成する契約です。
type StoryComposer interface {
	Compose(req domain.StoryRequest) domain.StoryResult
}

// Composer はキャプションの正規化、シード解決、テンプレート抽選、装飾をまとめて行うのだ。
// 状態を持たないので、ロックなしで並行に呼び出しても安全なのだ。
type Composer struct {
	catalog   *prompts.Catalog
	seeds     *SeedResolver
	newStream StreamFactory
}

// Option は Composer の任意設定です。
type Option func(*Composer)

// WithStreamFactory は乱数列の生成方法を差し替えます。
func WithStreamFactory(f StreamFactory) Option {
	return func(c *Composer) {
		if f != nil {
			c.newStream = f
		}
	}
}

// WithSeedResolver はシード解決を差し替えます。
func WithSeedResolver(r *SeedResolver) Option {
	return func(c *Composer) {
		if r != nil {
			c.seeds = r
		}
	}
}

// NewComposer は Composer を初期化します。
func NewComposer(catalog *prompts.Catalog, opts ...Option) (*Composer, error) {
	if catalog == nil {
		return nil, fmt.Errorf("catalog は必須です")
	}

	c := &Composer{
		catalog:   catalog,
		seeds:     NewSeedResolver(),
		newStream: NewStream,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Compose は物語を1つ生成します。
//
// 乱数はテンプレート抽選 → 装飾の確率判定 → 形容詞抽選の順に引くのだ。
// この順番は再現性の契約の一部なので変えてはいけないのだ。
func (c *Composer) Compose(req domain.StoryRequest) domain.StoryResult {
	// 1. シードを決めて、このリクエスト専用の乱数列を作るのだ
	seed := c.seeds.Resolve(req.Seed, req.RequestID)
	stream := c.newStream(seed)

	// 2. キャプションの正規化
	forms := parser.Normalize(req.Caption)

	// 3. スタイル解決とテンプレート群の選択
	style := c.catalog.Resolve(req.Style)
	templates := c.catalog.Templates(style)

	// 4. テンプレートの抽選（最初の乱数）
	tmpl := templates[stream.IntN(len(templates))]

	// 5. プレースホルダの置換。失敗したら一番素朴な形に縮退するのだ
	story, err := tmpl.Render(prompts.NewTemplateData(req.Caption, forms))
	if err != nil {
		slog.Debug("テンプレートの置換に失敗したため素朴な文にフォールバックするのだ",
			"style", style, "template", tmpl.Source, "error", err)
		story = fallbackStory(style, req.Caption, forms)
	}

	// 6. 形容詞による装飾
	if style.Embellished() {
		story = c.embellish(stream, story, tmpl, forms.Subject)
	}

	return domain.StoryResult{
		Caption: req.Caption,
		Story:   finalize(story),
		Style:   style,
		Seed:    seed,
		Forms:   forms,
	}
}

// embellish は確率判定に通れば形容詞を抽選し、主語の最初の出現の直前に差し込むのだ。
// テンプレートが subject を参照していなければ、抽選はしても文は変えないのだ。
func (c *Composer) embellish(stream Stream, story string, tmpl *prompts.Template, subject string) string {
	if stream.Float64() >= EmbellishProbability {
		return story
	}
	adjectives := c.catalog.Adjectives()
	adj := adjectives[stream.IntN(len(adjectives))]

	if !tmpl.References(prompts.FieldSubject) || subject == "" {
		return story
	}
	return strings.Replace(story, subject, adj+" "+subject, 1)
}

func fallbackStory(style domain.Style, raw string, forms domain.NormalizedForms) string {
	if style == domain.StyleDirect {
		return forms.Sentence
	}
	return raw
}

// finalize は前後の空白を除き、文末が . ! ? でなければピリオドを補うのだ。
// 最悪でも "." を返すので、結果が空になることはないのだ。
func finalize(story string) string {
	story = strings.TrimSpace(story)
	if story == "" {
		return "."
	}
	if !parser.TerminalPunctRegex.MatchString(story) {
		story += "."
	}
	return story
}
