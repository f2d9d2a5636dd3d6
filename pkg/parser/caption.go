// Package parser はキャプションモデルが返した生の文字列を、テンプレートに流し込める形に正規化するのだ。
// ここにある関数はすべて純粋関数で、乱数も外部状態も使わないのだよ。
package parser

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/shouni/go-imagify-kit/pkg/domain"
)

// DefaultShortWords は短縮キャプションに残す最大語数です。
const DefaultShortWords = 6

const ellipsis = "..."

// Normalize は生のキャプションから短縮形・現在形の一文・主語をまとめて導出するのだ。
// どんな入力でもエラーにはならず、空文字か既定の主語に縮退するのだ。
func Normalize(raw string) domain.NormalizedForms {
	return domain.NormalizedForms{
		Short:    ShortenCaption(raw, DefaultShortWords),
		Sentence: PresentSentence(raw),
		Subject:  ExtractSubject(raw),
	}
}

// ShortenCaption は括弧を除去し、maxWords 語を超える場合は切り詰めて "..." を付けます。
func ShortenCaption(raw string, maxWords int) string {
	if raw == "" {
		return ""
	}
	s := strings.TrimSpace(BracketRegex.ReplaceAllString(raw, ""))
	words := strings.Fields(s)
	if maxWords < 0 || len(words) <= maxWords {
		return s
	}
	return strings.Join(words[:maxWords], " ") + ellipsis
}

// PresentSentence はキャプションを小文字化し、よくある動名詞を現在形に置き換えた一文にするのだ。
// 文法的な修復はしないので "is standing" は "is stands" になるのだ。
func PresentSentence(raw string) string {
	if raw == "" {
		return ""
	}
	text := strings.TrimSpace(raw)
	text = strings.TrimSpace(TrailingPunctRegex.ReplaceAllString(text, ""))

	s := strings.ToLower(text)
	for _, rule := range gerundRules {
		s = rule.pattern.ReplaceAllString(s, rule.replace)
	}

	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	s = capitalize(s)
	if !TerminalPunctRegex.MatchString(s) {
		s += "."
	}
	return s
}

// ExtractSubject はキャプションから主語らしき名詞を素朴に取り出します。
// "a/an <名詞>" が見つかればその名詞を、なければ限定詞を読み飛ばした最初の語を返します。
func ExtractSubject(raw string) string {
	caption := strings.ToLower(strings.TrimSpace(raw))
	if caption == "" {
		return domain.DefaultSubject
	}

	if m := ArticleNounRegex.FindStringSubmatch(caption); m != nil {
		return m[2]
	}

	for _, word := range strings.Fields(caption) {
		if determiners[word] {
			continue
		}
		word = strings.TrimFunc(word, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		})
		if word != "" && !determiners[word] {
			return word
		}
	}
	return domain.DefaultSubject
}

// capitalize は先頭のルーンだけを大文字にするのだ。
func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
