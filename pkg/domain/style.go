package domain

import "strings"

// Style は物語テンプレートのファミリーを表すのだ。
type Style string

const (
	StyleDirect   Style = "direct"
	StylePoetic   Style = "poetic"
	StyleCreative Style = "creative"
	StyleCaption  Style = "caption"
)

// styleAliases はリクエストで受け付けるスタイル名の別名を正規のスタイルに対応付けます。
var styleAliases = map[string]Style{
	"direct":             StyleDirect,
	"direct_description": StyleDirect,
	"description":        StyleDirect,
	"poetic":             StylePoetic,
	"creative":           StyleCreative,
	"caption":            StyleCaption,
}

// ParseStyle は大文字小文字を区別せずにスタイル名を解決するのだ。
// 未知の名前の場合は ok=false を返すので、呼び出し側がデフォルトを選ぶのだよ。
func ParseStyle(token string) (Style, bool) {
	s, ok := styleAliases[strings.ToLower(strings.TrimSpace(token))]
	return s, ok
}

// Styles は既知のスタイルを固定順で返します。
func Styles() []Style {
	return []Style{StyleDirect, StylePoetic, StyleCreative, StyleCaption}
}

// IsValid は既知のスタイルかどうかを判定します。
func (s Style) IsValid() bool {
	switch s {
	case StyleDirect, StylePoetic, StyleCreative, StyleCaption:
		return true
	}
	return false
}

// Embellished は形容詞による装飾の対象となるスタイルかどうかを返すのだ。
// direct と caption は装飾せず、素直な文のまま残すのだ。
func (s Style) Embellished() bool {
	return s != StyleDirect && s != StyleCaption
}

func (s Style) String() string {
	return string(s)
}
