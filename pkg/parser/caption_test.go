package parser

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"

	"github.com/shouni/go-imagify-kit/pkg/domain"
)

func TestShortenCaption(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		maxWords int
		want     string
	}{
		{"空文字は空文字のまま", "", 6, ""},
		{"短い文はそのまま", "a small cat", 6, "a small cat"},
		{"括弧は除去するのだ", "a [small] cat (sleeping)", 6, "a small cat sleeping"},
		{"語数を超えたら省略記号を付けるのだ",
			"a man (wearing a hat) standing next to a big red car", 6,
			"a man wearing a hat standing..."},
		{"切り詰めない場合は内部の空白を保つのだ", "  two   dogs ", 6, "two   dogs"},
		{"ちょうど上限なら切り詰めない", "one two three four five six", 6, "one two three four five six"},
		{"括弧だけなら空になる", "()[]", 6, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ShortenCaption(tt.raw, tt.maxWords))
		})
	}
}

func TestPresentSentence(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"空文字", "", ""},
		{"動名詞を現在形にするのだ", "a dog standing near a lake", "A dog stands near a lake."},
		{"文法の修復まではしないのだ", "A man is standing near water.", "A man is stands near water."},
		{"文末の句読点の連続は一つにまとめる", "birds flying over the sea!!!", "Birds flies over the sea."},
		{"単語の一部には置換しないのだ", "an outstanding performer", "An outstanding performer."},
		{"flying の中の lying は置換しない", "a kite flying high", "A kite flies high."},
		{"複数の置換", "kids playing and running", "Kids plays and runs."},
		{"句読点だけなら空になる", "?!.", ""},
		{"前後の空白は無視する", "   a cat lying on a sofa  ", "A cat lies on a sofa."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PresentSentence(tt.raw))
		})
	}
}

func TestExtractSubject(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"a <名詞> を拾うのだ", "A cat sits on a mat.", "cat"},
		{"an <名詞> も拾うのだ", "an elephant by the river", "elephant"},
		{"ハイフンを含む名詞", "a well-known landmark", "well-known"},
		{"空文字は既定値", "", domain.DefaultSubject},
		{"空白だけでも既定値", "   ", domain.DefaultSubject},
		{"限定詞は読み飛ばすのだ", "The dog runs.", "dog"},
		{"限定詞の後の語から句読点を外すのだ", "those cats.", "cats"},
		{"冠詞がなければ最初の語", "two dogs playing", "two"},
		{"限定詞しかなければ既定値", "the those", domain.DefaultSubject},
		{"語の端の記号は落とすのだ", "\"Sunset\" over hills", "sunset"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractSubject(tt.raw))
		})
	}
}

func TestNormalize(t *testing.T) {
	t.Run("典型的なキャプション", func(t *testing.T) {
		got := Normalize("a dog standing near a lake")
		want := domain.NormalizedForms{
			Short:    "a dog standing near a lake",
			Sentence: "A dog stands near a lake.",
			Subject:  "dog",
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("Normalize の結果が一致しないのだ (-want +got):\n%s", diff)
		}
	})

	t.Run("空のキャプションは空と既定の主語に縮退するのだ", func(t *testing.T) {
		got := Normalize("")
		want := domain.NormalizedForms{Subject: domain.DefaultSubject}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("Normalize の結果が一致しないのだ (-want +got):\n%s", diff)
		}
	})

	t.Run("同じ入力なら常に同じ結果", func(t *testing.T) {
		raw := "a man (in a red coat) walking a dog along the beach at sunset"
		assert.Equal(t, Normalize(raw), Normalize(raw))
	})
}
