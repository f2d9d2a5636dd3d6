package parser

import "regexp"

var (
	// BracketRegex は短縮キャプションから取り除く括弧類にマッチします。
	BracketRegex = regexp.MustCompile(`[()\[\]]`)

	// TrailingPunctRegex は文末の句読点の連続をキャプチャします。
	TrailingPunctRegex = regexp.MustCompile(`[.!?]+$`)

	// TerminalPunctRegex は文が句読点で終わっているかを判定します。
	TerminalPunctRegex = regexp.MustCompile(`[.!?]$`)

	// ArticleNounRegex は "a/an <名詞>" 形式の最初の出現をキャプチャします。
	ArticleNounRegex = regexp.MustCompile(`\b(an|a)\s+([a-z\-]+)`)
)

// gerundRule は動名詞を現在形に置き換える単語境界付きのルールなのだ。
type gerundRule struct {
	pattern *regexp.Regexp
	replace string
}

// gerundRules は適用順が意味を持つので、スライスで順序を固定しているのだ。
var gerundRules = []gerundRule{
	{regexp.MustCompile(`\bstanding\b`), "stands"},
	{regexp.MustCompile(`\bsitting\b`), "sits"},
	{regexp.MustCompile(`\brunning\b`), "runs"},
	{regexp.MustCompile(`\bwalking\b`), "walks"},
	{regexp.MustCompile(`\bflying\b`), "flies"},
	{regexp.MustCompile(`\blying\b`), "lies"},
	{regexp.MustCompile(`\bplaying\b`), "plays"},
}

// determiners は先頭語フォールバックで読み飛ばす限定詞です。
var determiners = map[string]bool{
	"the":   true,
	"this":  true,
	"that":  true,
	"these": true,
	"those": true,
}
