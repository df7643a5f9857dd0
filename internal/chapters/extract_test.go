package chapters_test

import (
	"testing"

	"github.com/brogergvhs/noveld/internal/chapters"
	"github.com/stretchr/testify/assert"
)

func TestExtract(t *testing.T) {
	t.Parallel()

	tests := []struct {
		label  string
		want   chapters.Info
		wantOK bool
	}{
		{"第12章 (番外)风起", chapters.Info{Number: "十二", Name: "(番外)风起"}, true},
		{"第3章 (作者按)完结", chapters.Info{Number: "三", Name: "完结"}, true},
		{"广告", chapters.Info{}, false},
		{"第1章 开端", chapters.Info{Number: "一", Name: "开端"}, true},
		{"第105章 决战", chapters.Info{Number: "一百零五", Name: "决战"}, true},
		{"第007章 归来", chapters.Info{Number: "七", Name: "归来"}, true},
		{"第１２章 全角", chapters.Info{Number: "十二", Name: "全角"}, true},
		{"第十二章 已是中文", chapters.Info{Number: "十二", Name: "已是中文"}, true},
		{"第一百零五章", chapters.Info{Number: "一百零五", Name: "无题"}, true},
		{"二十章：夜", chapters.Info{Number: "二十", Name: "夜"}, true},
		{"第8章 风雨（上）", chapters.Info{Number: "八", Name: "风雨（上）"}, true},
		{"第8章 风雨(2)", chapters.Info{Number: "八", Name: "风雨(2)"}, true},
		{"第9章 (求月票)", chapters.Info{Number: "九", Name: "无题"}, true},
		{"第9章 重逢（三）（求订阅）", chapters.Info{Number: "九", Name: "重逢（三）"}, true},
		{"12 风起", chapters.Info{Number: "十二", Name: "风起"}, true},
		{"3.开端", chapters.Info{Number: "三", Name: "开端"}, true},
		{"2024年总结", chapters.Info{}, false},
		{"一些闲话", chapters.Info{}, false},
		{"番外 三人行", chapters.Info{Name: "番外 三人行"}, true},
		{"  番外：后日谈  ", chapters.Info{Name: "番外：后日谈"}, true},
		{"章节目录", chapters.Info{}, false},
		{"第一卷 第1章 开端", chapters.Info{Number: "一", Name: "开端"}, true},
		{"第2卷第十章 归途", chapters.Info{Number: "十", Name: "归途"}, true},
		{"第三部 番外 旧梦", chapters.Info{Name: "番外 旧梦"}, true},
		{"第一卷 序言", chapters.Info{}, false},
		{"第1章 ２０２４", chapters.Info{Number: "一", Name: "２０２４"}, true},
		{"１２ 风起", chapters.Info{Number: "十二", Name: "风起"}, true},
		{"", chapters.Info{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			got, ok := chapters.Extract(tt.label)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestInfo_Header(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "第一章 开端", chapters.Info{Number: "一", Name: "开端"}.Header())
	assert.Equal(t, "番外 三人行", chapters.Info{Name: "番外 三人行"}.Header())
}

func TestJobs_DropsNonChapters(t *testing.T) {
	t.Parallel()

	refs := []chapters.Ref{
		{URL: "https://example.com/1.html", Text: "第1章 开端"},
		{URL: "https://example.com/ad.html", Text: "广告"},
		{URL: "https://example.com/2.html", Text: "第2章 决战"},
	}

	jobs := chapters.Jobs(refs)

	assert.Len(t, jobs, 2)
	assert.Equal(t, 0, jobs[0].Index)
	assert.Equal(t, "https://example.com/1.html", jobs[0].Ref.URL)
	assert.Equal(t, "第一章 开端", jobs[0].Info.Header())
	assert.Equal(t, 1, jobs[1].Index)
	assert.Equal(t, "第二章 决战", jobs[1].Info.Header())
}
