package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseStyle(t *testing.T) {
	tests := []struct {
		name   string
		token  string
		want   Style
		wantOK bool
	}{
		{"そのままのスタイル名", "poetic", StylePoetic, true},
		{"大文字小文字は無視するのだ", "CrEaTiVe", StyleCreative, true},
		{"direct_description は direct なのだ", "direct_description", StyleDirect, true},
		{"description も direct なのだ", " Description ", StyleDirect, true},
		{"caption", "caption", StyleCaption, true},
		{"未知の名前", "xyz", "", false},
		{"空文字", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseStyle(tt.token)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStyle_Embellished(t *testing.T) {
	assert.False(t, StyleDirect.Embellished())
	assert.False(t, StyleCaption.Embellished())
	assert.True(t, StylePoetic.Embellished())
	assert.True(t, StyleCreative.Embellished())
}

func TestStyles_AllValid(t *testing.T) {
	for _, s := range Styles() {
		assert.True(t, s.IsValid(), "スタイル %s が無効と判定されたのだ", s)
	}
	assert.False(t, Style("xyz").IsValid())
}

func TestSeedPtr(t *testing.T) {
	assert.Nil(t, SeedPtr(""))
	if p := SeedPtr("42"); assert.NotNil(t, p) {
		assert.Equal(t, "42", *p)
	}
}
