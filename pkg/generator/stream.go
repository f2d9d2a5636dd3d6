package generator

import "math/rand/v2"

// Stream は1リクエスト分の乱数列なのだ。テンプレートの抽選、装飾の確率判定、形容詞の抽選は
// すべてこの1本の列から決まった順番で引くのだ。
type Stream interface {
	// IntN は [0, n) の一様な整数を返します。
	IntN(n int) int
	// Float64 は [0, 1) の一様な浮動小数点数を返します。
	Float64() float64
}

// StreamFactory はシードから Stream を生成する関数です。
type StreamFactory func(seed int64) Stream

// streamSequence は PCG の第2シードなのだ。変えると全シードの出力が変わるので固定しているのだ。
const streamSequence = 0x696d616769667921

// NewStream は PCG ベースの Stream を生成します。呼び出しごとに独立した生成器を返すのだ。
func NewStream(seed int64) Stream {
	return rand.New(rand.NewPCG(uint64(seed), streamSequence))
}
