package generator

import (
	"log/slog"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
)

// SeedMask は明示的なシードを正の31ビット範囲に収めるためのマスクです。
const SeedMask = 0x7fffffff

// MaxSeedDigits を超える桁数のシードは解釈せず、時刻からの導出に回すのだ。
const MaxSeedDigits = 4300

// requestIDMask はリクエストIDのハッシュから使う下位32ビットなのだ。
const requestIDMask = 0xffffffff

// SeedResolver は明示的なシード、リクエストID、現在時刻から決定論的なシード値を求めるのだ。
//
// 明示的なシードがあれば完全に再現可能なのだ。時刻によるフォールバックは
// 「ベストエフォートな再現性」しか持たないので、再現したいならシードを指定してほしいのだ。
type SeedResolver struct {
	now func() time.Time
}

// NewSeedResolver は実時間の時計を使う SeedResolver を生成します。
func NewSeedResolver() *SeedResolver {
	return NewSeedResolverWithClock(time.Now)
}

// NewSeedResolverWithClock は時計を差し替えた SeedResolver を生成します。テスト用なのだ。
func NewSeedResolverWithClock(now func() time.Time) *SeedResolver {
	if now == nil {
		now = time.Now
	}
	return &SeedResolver{now: now}
}

// Resolve はシード値を決定します。整数として解釈できない明示的シードは無いものとして扱い、エラーにはしないのだ。
func (r *SeedResolver) Resolve(explicit *string, requestID string) int64 {
	if explicit != nil {
		if seed, ok := ParseExplicitSeed(*explicit); ok {
			return seed
		}
		slog.Debug("シードを整数として解釈できないため時刻から導出するのだ", "variation_seed", *explicit)
	}
	return r.now().UnixMilli() ^ int64(HashRequestID(requestID))
}

// ParseExplicitSeed は符号付きの10進整数文字列を受け取り、2の補数としての下位31ビットを返すのだ。
// 負の値や int64 を超える値でも必ず [0, SeedMask] に収まるのだ。
// 下位31ビットは 2^31 を法とした剰余なので、桁を1回なめるだけで求まるのだ。
func ParseExplicitSeed(s string) (int64, bool) {
	s = strings.TrimSpace(s)
	negative := false
	if s != "" && (s[0] == '+' || s[0] == '-') {
		negative = s[0] == '-'
		s = s[1:]
	}
	if s == "" || len(s) > MaxSeedDigits {
		return 0, false
	}

	var mod int64
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < '0' || c > '9' {
			return 0, false
		}
		mod = (mod*10 + int64(c-'0')) & SeedMask
	}

	if negative {
		return -mod & SeedMask, true
	}
	return mod, true
}

// HashRequestID はリクエストIDを xxHash64 でハッシュし、下位32ビットを返します。
// プロセスを再起動しても同じIDなら同じ値になるのだ。
func HashRequestID(requestID string) uint32 {
	return uint32(xxhash.Sum64String(requestID) & requestIDMask)
}
