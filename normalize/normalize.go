// Package normalize は価格表の識別子と価格の正規化ルールをまとめたものです。
package normalize

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"pricecmp/model"
)

// MinIDLength は品番から抽出する識別子の最小文字数です。業務ルールのためそのまま維持します。
const MinIDLength = 5

var (
	mfgIDPattern = regexp.MustCompile(`[A-Z0-9]{5,}`)
	pricePattern = regexp.MustCompile(`\$?([\d,]+\.?\d*)`)
)

// 競合側のメーカーコードから取り除く文字列 (この順に除去)
var mfgCodeNoise = []string{"MFG#:", "#ABA"}

// ExtractMfgID は自由記述の品番から識別子を抽出します。
// 大文字化した後、英大文字と数字が MinIDLength 文字以上続く最初の部分を返します。
func ExtractMfgID(c model.Cell) (string, bool) {
	if !c.IsText() {
		return "", false
	}
	return ExtractMfgIDString(c.Value)
}

// ExtractMfgIDString は ExtractMfgID の文字列版です。
func ExtractMfgIDString(s string) (string, bool) {
	id := mfgIDPattern.FindString(strings.ToUpper(s))
	if id == "" {
		return "", false
	}
	return id, true
}

// CleanMfgCode は競合側のメーカーコードから "MFG#:" と "#ABA" を取り除き、前後の空白を除去します。
func CleanMfgCode(c model.Cell) (string, bool) {
	if !c.IsText() {
		return "", false
	}
	return CleanMfgCodeString(c.Value)
}

// CleanMfgCodeString は CleanMfgCode の文字列版です。
func CleanMfgCodeString(s string) (string, bool) {
	for _, noise := range mfgCodeNoise {
		s = strings.ReplaceAll(s, noise, "")
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	return s, true
}

// ParsePrice はセルから価格を読み取ります。テキスト以外、または数値が見つからない場合は NaN です。
func ParsePrice(c model.Cell) float64 {
	if !c.IsText() {
		return math.NaN()
	}
	return ParsePriceString(c.Value)
}

// ParsePriceString は "$1,234.56" のような文字列から最初の数値を読み取ります。
func ParsePriceString(s string) float64 {
	m := pricePattern.FindStringSubmatch(s)
	if m == nil {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64)
	if err != nil {
		// "," だけにマッチした場合など
		return math.NaN()
	}
	return v
}
