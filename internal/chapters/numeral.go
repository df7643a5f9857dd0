package chapters

import "strings"

var (
	cnDigits       = []string{"零", "一", "二", "三", "四", "五", "六", "七", "八", "九"}
	cnUnits        = []string{"", "十", "百", "千"}
	cnSectionUnits = []string{"", "万", "亿", "万亿", "亿亿"}
)

// ToChinese renders n in canonical short-form Chinese numerals: 0 is 零,
// 10-19 drop the leading 一, and a run of zeros inside the number becomes a
// single 零 that never precedes a unit word.
func ToChinese(n int) string {
	if n == 0 {
		return cnDigits[0]
	}

	// math.MinInt has no positive counterpart in int, so work in uint64.
	var u uint64
	prefix := ""
	if n < 0 {
		prefix = "负"
		u = uint64(-(n + 1)) + 1
	} else {
		u = uint64(n)
	}

	var sections []int
	for u > 0 {
		sections = append(sections, int(u%10000))
		u /= 10000
	}

	var b strings.Builder
	pendingZero := false
	for i := len(sections) - 1; i >= 0; i-- {
		sec := sections[i]
		if sec == 0 {
			if b.Len() > 0 {
				pendingZero = true
			}
			continue
		}

		if b.Len() > 0 && (pendingZero || sec < 1000) {
			b.WriteString(cnDigits[0])
		}
		pendingZero = false

		b.WriteString(sectionToChinese(sec))
		b.WriteString(cnSectionUnits[i])
	}

	out := b.String()
	if strings.HasPrefix(out, "一十") {
		out = strings.TrimPrefix(out, "一")
	}

	return prefix + out
}

// sectionToChinese renders 1..9999 without any leading zero.
func sectionToChinese(sec int) string {
	var b strings.Builder
	zero := false

	for pos, div := 3, 1000; pos >= 0; pos, div = pos-1, div/10 {
		d := sec / div % 10
		if d == 0 {
			if b.Len() > 0 {
				zero = true
			}
			continue
		}

		if zero {
			b.WriteString(cnDigits[0])
			zero = false
		}
		b.WriteString(cnDigits[d])
		b.WriteString(cnUnits[pos])
	}

	return b.String()
}
