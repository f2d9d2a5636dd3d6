package generator

import (
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shouni/go-imagify-kit/pkg/domain"
	"github.com/shouni/go-imagify-kit/pkg/parser"
	"github.com/shouni/go-imagify-kit/pkg/prompts"
)

// scriptedStream は決められた値を順に返し、引かれた順番を記録するテスト用の乱数列なのだ。
type scriptedStream struct {
	ints   []int
	floats []float64
	calls  []string
}

func (s *scriptedStream) IntN(n int) int {
	s.calls = append(s.calls, fmt.Sprintf("IntN(%d)", n))
	v := s.ints[0]
	s.ints = s.ints[1:]
	return v
}

func (s *scriptedStream) Float64() float64 {
	s.calls = append(s.calls, "Float64")
	v := s.floats[0]
	s.floats = s.floats[1:]
	return v
}

func scripted(s *scriptedStream) Option {
	return WithStreamFactory(func(int64) Stream { return s })
}

func newTestComposer(t *testing.T, opts ...Option) *Composer {
	t.Helper()
	c, err := NewComposer(prompts.MustCatalog(), opts...)
	require.NoError(t, err)
	return c
}

// subjectCatalog は装飾対象のスタイルに subject を参照するテンプレートを持つカタログなのだ。
func subjectCatalog(t *testing.T) *prompts.Catalog {
	t.Helper()
	c, err := prompts.ParseCatalog([]byte(`
default: creative
adjectives: [gentle, calm, majestic]
styles:
  direct: ["{{.mood}}"]
  poetic: ["{{.caption_phrase}} glows"]
  creative: ["The {{.subject}} waits.", "{{.mood}}"]
  caption: ["{{.caption_short}}"]
`))
	require.NoError(t, err)
	return c
}

func TestNewComposer_RequiresCatalog(t *testing.T) {
	_, err := NewComposer(nil)
	assert.Error(t, err)
}

func TestComposer_DrawOrder(t *testing.T) {
	t.Run("装飾対象のスタイルはテンプレート→確率→形容詞の順に引くのだ", func(t *testing.T) {
		s := &scriptedStream{ints: []int{0, 2}, floats: []float64{0.1}}
		c, err := NewComposer(subjectCatalog(t), scripted(s))
		require.NoError(t, err)

		res := c.Compose(domain.StoryRequest{Caption: "a dog near a lake", Style: "creative", Seed: domain.SeedPtr("1")})
		assert.Equal(t, []string{"IntN(2)", "Float64", "IntN(3)"}, s.calls)
		assert.Equal(t, "The majestic dog waits.", res.Story)
	})

	t.Run("確率判定に落ちたら形容詞は引かないのだ", func(t *testing.T) {
		s := &scriptedStream{ints: []int{0}, floats: []float64{EmbellishProbability}}
		c, err := NewComposer(subjectCatalog(t), scripted(s))
		require.NoError(t, err)

		res := c.Compose(domain.StoryRequest{Caption: "a dog near a lake", Style: "creative", Seed: domain.SeedPtr("1")})
		assert.Equal(t, []string{"IntN(2)", "Float64"}, s.calls)
		assert.Equal(t, "The dog waits.", res.Story)
	})

	t.Run("subject を参照しないテンプレートでも形容詞は引くが文は変えないのだ", func(t *testing.T) {
		s := &scriptedStream{ints: []int{0, 1}, floats: []float64{0.0}}
		c := newTestComposer(t, scripted(s))

		res := c.Compose(domain.StoryRequest{Caption: "a dog near a lake", Style: "poetic", Seed: domain.SeedPtr("1")})
		assert.Equal(t, []string{"IntN(3)", "Float64", "IntN(6)"}, s.calls)
		assert.NotContains(t, res.Story, "calm")
	})

	t.Run("direct と caption は装飾の乱数を引かないのだ", func(t *testing.T) {
		for _, style := range []string{"direct", "description", "caption"} {
			s := &scriptedStream{ints: []int{0}}
			c := newTestComposer(t, scripted(s))
			c.Compose(domain.StoryRequest{Caption: "a dog", Style: style, Seed: domain.SeedPtr("1")})
			assert.Len(t, s.calls, 1, "style=%s", style)
		}
	})
}

func TestComposer_Fallback(t *testing.T) {
	t.Run("direct の置換失敗は現在形の一文になるのだ", func(t *testing.T) {
		s := &scriptedStream{ints: []int{0}}
		c, err := NewComposer(subjectCatalog(t), scripted(s))
		require.NoError(t, err)

		res := c.Compose(domain.StoryRequest{Caption: "a cat sitting on a mat", Style: "direct"})
		assert.Equal(t, "A cat sits on a mat.", res.Story)
	})

	t.Run("それ以外の置換失敗は生のキャプションになるのだ", func(t *testing.T) {
		s := &scriptedStream{ints: []int{1}, floats: []float64{0.9}}
		c, err := NewComposer(subjectCatalog(t), scripted(s))
		require.NoError(t, err)

		res := c.Compose(domain.StoryRequest{Caption: "a cat on a mat", Style: "creative"})
		assert.Equal(t, "a cat on a mat.", res.Story)
	})

	t.Run("空キャプションの置換失敗でもピリオドだけは返すのだ", func(t *testing.T) {
		s := &scriptedStream{ints: []int{1}, floats: []float64{0.9}}
		c, err := NewComposer(subjectCatalog(t), scripted(s))
		require.NoError(t, err)

		res := c.Compose(domain.StoryRequest{Caption: "", Style: "creative"})
		assert.Equal(t, ".", res.Story)
	})
}

func TestComposer_Scenarios(t *testing.T) {
	catalog := prompts.MustCatalog()

	renderAll := func(style domain.Style, raw string) []string {
		forms := parser.Normalize(raw)
		var out []string
		for _, tmpl := range catalog.Templates(style) {
			s, err := tmpl.Render(prompts.NewTemplateData(raw, forms))
			require.NoError(t, err)
			out = append(out, finalize(s))
		}
		return out
	}

	t.Run("direct スタイルで犬のキャプション", func(t *testing.T) {
		c := newTestComposer(t)
		raw := "a dog standing near a lake"
		res := c.Compose(domain.StoryRequest{Caption: raw, Style: "direct", Seed: domain.SeedPtr("42")})

		assert.Equal(t, int64(42), res.Seed)
		assert.Equal(t, domain.StyleDirect, res.Style)
		assert.Equal(t, "A dog stands near a lake.", res.Forms.Sentence)
		assert.Equal(t, "dog", res.Forms.Subject)
		assert.Contains(t, renderAll(domain.StyleDirect, raw), res.Story)
		assert.True(t, res.Story == res.Forms.Sentence || strings.Contains(res.Story, "dog"))
	})

	t.Run("空キャプションの poetic", func(t *testing.T) {
		c := newTestComposer(t)
		res := c.Compose(domain.StoryRequest{Caption: "", Style: "poetic", Seed: domain.SeedPtr("7")})

		assert.Equal(t, domain.NormalizedForms{Subject: domain.DefaultSubject}, res.Forms)
		assert.NotEmpty(t, res.Story)
		assert.Regexp(t, `[.!?]$`, res.Story)
		assert.Contains(t, renderAll(domain.StylePoetic, ""), res.Story)
	})

	t.Run("未知のスタイルは既定のテンプレート群から選ぶのだ", func(t *testing.T) {
		c := newTestComposer(t)
		raw := "two horses running in a field"
		res := c.Compose(domain.StoryRequest{Caption: raw, Style: "xyz", Seed: domain.SeedPtr("3")})

		assert.Equal(t, domain.StyleCreative, res.Style)
		assert.Contains(t, renderAll(domain.StyleCreative, raw), res.Story)
	})
}

func TestComposer_Determinism(t *testing.T) {
	c := newTestComposer(t)
	captions := []string{"", "a dog standing near a lake", "A man (in a hat) is walking a dog on the beach at sunset", "!!!"}
	styles := []string{"direct", "poetic", "creative", "caption", "xyz", ""}

	for _, raw := range captions {
		for _, style := range styles {
			for seed := 0; seed < 20; seed++ {
				req := domain.StoryRequest{Caption: raw, Style: style, Seed: domain.SeedPtr(fmt.Sprint(seed)), RequestID: "r"}
				a, b := c.Compose(req), c.Compose(req)
				require.Equal(t, a, b, "同じ入力で結果が変わったのだ: %+v", req)
				require.NotEmpty(t, a.Story)
				require.Regexp(t, `[.!?]$`, a.Story)
			}
		}
	}
}

func TestComposer_ConcurrentUse(t *testing.T) {
	c := newTestComposer(t)
	req := domain.StoryRequest{Caption: "a cat lying on a sofa", Style: "creative", Seed: domain.SeedPtr("99")}
	want := c.Compose(req)

	var wg sync.WaitGroup
	results := make([]domain.StoryResult, 32)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = c.Compose(req)
		}(i)
	}
	wg.Wait()

	for _, got := range results {
		assert.Equal(t, want, got)
	}
}

func TestFinalize(t *testing.T) {
	assert.Equal(t, ".", finalize("   "))
	assert.Equal(t, "Hello.", finalize(" Hello "))
	assert.Equal(t, "Wow!", finalize("Wow!"))
	assert.Equal(t, "✨ cat | A moment worth remembering.", finalize("✨ cat | A moment worth remembering"))
}
