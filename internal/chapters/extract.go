package chapters

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

const (
	extraMarker = "番外"
	untitled    = "无题"
	separators  = " \t　:：、.,，-_—·"
)

var (
	reChapter = regexp.MustCompile(`^(第)?\s*([0-9０-９]+|[零〇一二两三四五六七八九十百千万亿]+)(\s*)(章)?(.*)$`)
	reVolume  = regexp.MustCompile(`^第\s*(?:[0-9０-９]+|[零〇一二两三四五六七八九十百千万亿]+)\s*[卷部]\s*`)
	reAside   = regexp.MustCompile(`[(（]([^()（）]*)[)）]`)

	keptAsides = map[string]bool{
		extraMarker: true,
		"一": true, "二": true, "三": true, "四": true, "五": true,
		"六": true, "七": true, "八": true, "九": true, "十": true,
		"上": true, "中": true, "下": true,
	}
)

// Extract parses a chapter link label. It reports false when the label does
// not look like a chapter at all; that is the only failure mode.
//
// Arabic chapter numbers are converted with ToChinese. Numbers that are
// already written in Chinese are kept verbatim.
//
// A leading volume marker ("第一卷 ") is skipped so the chapter number is
// the one that follows it.
func Extract(label string) (Info, bool) {
	text := strings.TrimSpace(strings.Map(foldSpace, label))
	if loc := reVolume.FindStringIndex(text); loc != nil && loc[1] < len(text) {
		text = text[loc[1]:]
	}

	if m := reChapter.FindStringSubmatch(text); m != nil {
		if info, ok := fromMatch(m); ok {
			return info, true
		}
	}

	if strings.Contains(text, extraMarker) {
		return Info{Name: text}, true
	}

	return Info{}, false
}

func fromMatch(m []string) (Info, bool) {
	numeral, gap, rest := strings.Map(halfWidthDigit, m[2]), m[3], m[5]
	marked := m[1] != "" || m[4] != ""
	arabic := numeral[0] >= '0' && numeral[0] <= '9'

	if !marked {
		// A bare Chinese numeral is too easily ordinary prose, and a bare
		// Arabic one must stand apart from the name ("12 风起", "3.开端").
		if !arabic {
			return Info{}, false
		}
		if gap == "" && rest != "" && !strings.ContainsRune(separators, []rune(rest)[0]) {
			return Info{}, false
		}
	}

	number := numeral
	if arabic {
		n, err := strconv.Atoi(numeral)
		if err != nil {
			return Info{}, false
		}
		number = ToChinese(n)
	}

	return Info{Number: number, Name: cleanName(rest)}, true
}

// cleanName drops parenthetical asides unless they mark a structural part of
// the chapter (番外, 上/中/下, small ordinals, bare digits).
func cleanName(s string) string {
	s = strings.TrimLeft(s, separators)

	s = reAside.ReplaceAllStringFunc(s, func(aside string) string {
		inner := strings.TrimSpace(reAside.FindStringSubmatch(aside)[1])
		if keptAsides[inner] || isDigits(inner) {
			return aside
		}
		return ""
	})

	s = strings.Join(strings.Fields(s), " ")
	if s == "" {
		return untitled
	}

	return s
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}

	return true
}

func halfWidthDigit(r rune) rune {
	if r >= '０' && r <= '９' {
		return r - '０' + '0'
	}

	return r
}

// foldSpace turns exotic spaces into ASCII ones. The ideographic space is
// kept as a name separator.
func foldSpace(r rune) rune {
	if unicode.Is(unicode.Zs, r) && r != '　' {
		return ' '
	}

	return r
}
