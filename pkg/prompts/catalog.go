// Package prompts はスタイルごとの物語テンプレート集（カタログ）を提供するのだ。
// カタログはビルド時に埋め込まれ、実行時には変更できないのだよ。
package prompts

import (
	_ "embed"
	"fmt"
	"maps"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/shouni/go-imagify-kit/pkg/domain"
)

//go:embed catalog.yaml
var catalogYAML []byte

// catalogFile は catalog.yaml のスキーマです。
type catalogFile struct {
	Default    string              `yaml:"default"`
	Adjectives []string            `yaml:"adjectives"`
	Styles     map[string][]string `yaml:"styles"`
}

// Catalog はスタイルから順序付きのテンプレート群を引くための読み取り専用の表なのだ。
// 構築後は変更されないので、複数のゴルーチンから同時に使っても安全なのだ。
type Catalog struct {
	defaultStyle domain.Style
	adjectives   []string
	styles       map[domain.Style][]*Template
}

// NewCatalog は埋め込みのテンプレート集からカタログを構築します。
func NewCatalog() (*Catalog, error) {
	return ParseCatalog(catalogYAML)
}

// MustCatalog は NewCatalog の失敗時に panic するのだ。埋め込みデータが壊れている場合にしか失敗しないのだ。
func MustCatalog() *Catalog {
	c, err := NewCatalog()
	if err != nil {
		panic(err)
	}
	return c
}

// ParseCatalog は YAML からカタログを構築します。
// すべての既知スタイルに1件以上のテンプレートが必要で、既定スタイルも既知でなければならないのだ。
func ParseCatalog(data []byte) (*Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("テンプレートカタログのデコードに失敗しました: %w", err)
	}

	defaultStyle := domain.Style(file.Default)
	if !defaultStyle.IsValid() {
		return nil, fmt.Errorf("不明な既定スタイルです: '%s'", file.Default)
	}

	styles := make(map[domain.Style][]*Template, len(file.Styles))
	for key, sources := range file.Styles {
		style := domain.Style(key)
		if !style.IsValid() {
			return nil, fmt.Errorf("不明なスタイルです: '%s'", key)
		}
		templates := make([]*Template, 0, len(sources))
		for i, src := range sources {
			tmpl, err := NewTemplate(fmt.Sprintf("%s-%d", key, i), src)
			if err != nil {
				return nil, err
			}
			templates = append(templates, tmpl)
		}
		styles[style] = templates
	}

	for _, style := range domain.Styles() {
		if len(styles[style]) == 0 {
			return nil, fmt.Errorf("スタイル '%s' のテンプレートが空です", style)
		}
	}

	if len(file.Adjectives) == 0 {
		return nil, fmt.Errorf("形容詞リストが空です")
	}

	return &Catalog{
		defaultStyle: defaultStyle,
		adjectives:   file.Adjectives,
		styles:       styles,
	}, nil
}

// Default はカタログの既定スタイルを返します。
func (c *Catalog) Default() domain.Style {
	return c.defaultStyle
}

// Resolve は自由形式のスタイル指定を解決し、未知の場合は既定スタイルを返すのだ。
func (c *Catalog) Resolve(token string) domain.Style {
	if style, ok := domain.ParseStyle(token); ok {
		return style
	}
	return c.defaultStyle
}

// Lookup は Resolve の厳格版なのだ。未知のスタイルならサポートしているスタイルを並べたエラーを返すのだ。
func (c *Catalog) Lookup(token string) (domain.Style, error) {
	if style, ok := domain.ParseStyle(token); ok {
		return style, nil
	}
	supported := make([]string, 0, len(c.styles))
	for _, style := range slices.Sorted(maps.Keys(c.styles)) {
		supported = append(supported, style.String())
	}
	return c.defaultStyle, fmt.Errorf("サポートされていないスタイル: '%s'。サポートされているスタイルは [%s] です",
		token, strings.Join(supported, ", "))
}

// Templates はスタイルのテンプレート群を返します。未登録のスタイルなら既定のテンプレート群なのだ。
func (c *Catalog) Templates(style domain.Style) []*Template {
	if templates, ok := c.styles[style]; ok {
		return templates
	}
	return c.styles[c.defaultStyle]
}

// Adjectives は装飾に使う形容詞のリストを返します。
func (c *Catalog) Adjectives() []string {
	return c.adjectives
}
