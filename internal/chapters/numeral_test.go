package chapters_test

import (
	"math"
	"strings"
	"testing"

	"github.com/brogergvhs/noveld/internal/chapters"
	"github.com/stretchr/testify/assert"
)

func TestToChinese(t *testing.T) {
	t.Parallel()

	cases := map[int]string{
		0:          "零",
		1:          "一",
		9:          "九",
		10:         "十",
		12:         "十二",
		19:         "十九",
		20:         "二十",
		23:         "二十三",
		100:        "一百",
		101:        "一百零一",
		105:        "一百零五",
		110:        "一百一十",
		1000:       "一千",
		1001:       "一千零一",
		1010:       "一千零一十",
		1100:       "一千一百",
		10000:      "一万",
		10010:      "一万零一十",
		100000:     "十万",
		100005:     "十万零五",
		10000001:   "一千万零一",
		10010000:   "一千零一万",
		100001000:  "一亿零一千",
		100000000:  "一亿",
		123456789:  "一亿二千三百四十五万六千七百八十九",
		-15:        "负十五",
		1000000000: "十亿",
	}

	for n, want := range cases {
		assert.Equal(t, want, chapters.ToChinese(n), "ToChinese(%d)", n)
	}
}

func TestToChinese_NeverDoubleZero(t *testing.T) {
	t.Parallel()

	for n := 0; n <= 20000; n++ {
		got := chapters.ToChinese(n)
		if strings.Contains(got, "零零") {
			t.Fatalf("ToChinese(%d) = %q contains a doubled zero", n, got)
		}
		if n > 0 && strings.HasSuffix(got, "零") {
			t.Fatalf("ToChinese(%d) = %q ends with a zero", n, got)
		}
	}

	for _, n := range []int{100000001, 1000000010, 100100100100, math.MaxInt, math.MinInt} {
		assert.NotContains(t, chapters.ToChinese(n), "零零", "ToChinese(%d)", n)
	}
}

func TestToChinese_ZeroNeverBeforeUnit(t *testing.T) {
	t.Parallel()

	for n := 1; n <= 20000; n += 7 {
		got := chapters.ToChinese(n)
		for _, unit := range []string{"零十", "零百", "零千", "零万"} {
			assert.NotContains(t, got, unit, "ToChinese(%d)", n)
		}
	}
}
