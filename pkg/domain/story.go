package domain

// DefaultSubject は キャプションから主語を抽出できなかった場合の既定値です。
const DefaultSubject = "subject"

// NormalizedForms は生のキャプションから乱数を使わずに導出される派生形を保持します。
type NormalizedForms struct {
	Short    string `json:"short"`    // 括弧を除去し、語数を制限した短縮キャプション
	Sentence string `json:"sentence"` // 現在形に書き換えた一文
	Subject  string `json:"subject"`  // 小文字の主語（見つからなければ "subject"）
}

// StoryRequest は物語生成1回分の入力なのだ。
type StoryRequest struct {
	Caption   string  // キャプションモデルが返した生の文字列
	Style     string  // 自由形式のスタイル指定（大文字小文字は区別しない）
	Seed      *string // 明示的なシード。nil なら時刻とリクエストIDから導出するのだ
	RequestID string  // フォールバックシードのハッシュにだけ使う識別子
}

// StoryResult は物語生成の結果です。
type StoryResult struct {
	Caption string          `json:"caption"`
	Story   string          `json:"story"`
	Style   Style           `json:"style"`
	Seed    int64           `json:"seed_used"`
	Forms   NormalizedForms `json:"forms"`
}

// SeedPtr は文字列シードをポインタに変換する小さなヘルパーなのだ。空文字は nil として扱うのだ。
func SeedPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
