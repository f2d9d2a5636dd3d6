package prompts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shouni/go-imagify-kit/pkg/domain"
)

func TestNewCatalog(t *testing.T) {
	c, err := NewCatalog()
	require.NoError(t, err, "埋め込みカタログの読み込みに失敗したのだ")

	t.Run("既定スタイルは creative なのだ", func(t *testing.T) {
		assert.Equal(t, domain.StyleCreative, c.Default())
	})

	t.Run("すべてのスタイルにテンプレートがあるのだ", func(t *testing.T) {
		want := map[domain.Style]int{
			domain.StyleDirect:   4,
			domain.StylePoetic:   3,
			domain.StyleCreative: 3,
			domain.StyleCaption:  3,
		}
		for style, n := range want {
			assert.Len(t, c.Templates(style), n, "style=%s", style)
		}
	})

	t.Run("未知のスタイルは既定のテンプレート群になるのだ", func(t *testing.T) {
		assert.Equal(t, domain.StyleCreative, c.Resolve("xyz"))
		assert.Equal(t, c.Templates(domain.StyleCreative), c.Templates(domain.Style("xyz")))
	})

	t.Run("別名も解決できるのだ", func(t *testing.T) {
		assert.Equal(t, domain.StyleDirect, c.Resolve("DIRECT_DESCRIPTION"))
	})

	t.Run("形容詞リストの順序は固定なのだ", func(t *testing.T) {
		assert.Equal(t, []string{"gentle", "calm", "majestic", "quiet", "serene", "stoic"}, c.Adjectives())
	})
}

func TestParseCatalog_Errors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"壊れたYAML", "default: [creative"},
		{"不明な既定スタイル", "default: xyz\nadjectives: [calm]\nstyles:\n  direct: [a]\n  poetic: [a]\n  creative: [a]\n  caption: [a]\n"},
		{"スタイルの欠落", "default: creative\nadjectives: [calm]\nstyles:\n  direct: [a]\n  creative: [a]\n  caption: [a]\n"},
		{"不明なスタイル", "default: creative\nadjectives: [calm]\nstyles:\n  direct: [a]\n  poetic: [a]\n  creative: [a]\n  caption: [a]\n  noir: [a]\n"},
		{"テンプレートの構文エラー", "default: creative\nadjectives: [calm]\nstyles:\n  direct: [\"{{.subject\"]\n  poetic: [a]\n  creative: [a]\n  caption: [a]\n"},
		{"形容詞が空", "default: creative\nstyles:\n  direct: [a]\n  poetic: [a]\n  creative: [a]\n  caption: [a]\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCatalog([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestTemplate(t *testing.T) {
	data := NewTemplateData("a dog standing near a lake", domain.NormalizedForms{
		Short:    "a dog standing near a lake",
		Sentence: "A dog stands near a lake.",
		Subject:  "dog",
	})

	t.Run("プレースホルダを置換するのだ", func(t *testing.T) {
		tmpl, err := NewTemplate("t", "A {{.subject}} stands near the water's edge.")
		require.NoError(t, err)

		got, err := tmpl.Render(data)
		require.NoError(t, err)
		assert.Equal(t, "A dog stands near the water's edge.", got)
		assert.True(t, tmpl.References(FieldSubject))
		assert.False(t, tmpl.References(FieldCaption))
	})

	t.Run("未知のプレースホルダは実行時エラーなのだ", func(t *testing.T) {
		tmpl, err := NewTemplate("t", "{{.mood}} and {{.subject}}")
		require.NoError(t, err)

		_, err = tmpl.Render(data)
		assert.Error(t, err)
		assert.True(t, tmpl.References("mood"))
	})

	t.Run("条件分岐の中の参照も拾うのだ", func(t *testing.T) {
		tmpl, err := NewTemplate("t", "{{if .caption}}{{.caption_short}}{{else}}{{.subject}}{{end}}")
		require.NoError(t, err)
		assert.True(t, tmpl.References(FieldCaption))
		assert.True(t, tmpl.References(FieldCaptionShort))
		assert.True(t, tmpl.References(FieldSubject))
	})

	t.Run("プレースホルダなしのテンプレート", func(t *testing.T) {
		tmpl, err := NewTemplate("t", "Just water.")
		require.NoError(t, err)
		got, err := tmpl.Render(data)
		require.NoError(t, err)
		assert.Equal(t, "Just water.", got)
	})
}

func TestCatalog_Lookup(t *testing.T) {
	c, err := NewCatalog()
	require.NoError(t, err)

	style, err := c.Lookup("Description")
	require.NoError(t, err)
	assert.Equal(t, domain.StyleDirect, style)

	style, err = c.Lookup("haiku")
	require.Error(t, err)
	assert.Equal(t, c.Default(), style)
	assert.Contains(t, err.Error(), "[caption, creative, direct, poetic]")
}
