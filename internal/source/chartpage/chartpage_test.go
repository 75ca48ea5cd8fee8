package chartpage

import (
	"errors"
	"io"
	"testing"

	"github.com/John-Robertt/emotax/internal/reflist"
)

const sampleChart = `<!DOCTYPE html>
<html><body>
<table>
<tr><th colspan="15" class="bighead"><a href="#smileys_&amp;_emotion" name="smileys_&amp;_emotion">Smileys &amp; Emotion</a></th></tr>
<tr><th colspan="15" class="mediumhead"><a href="#face-smiling" name="face-smiling">face-smiling</a></th></tr>
<tr><td class="rchars">1</td><td class="code"><a href="#1f600" name="1f600">U+1F600</a></td><td class="andr"><img alt="😀" src="x.png"></td><td class="name">grinning face</td></tr>
<tr><th colspan="15" class="bighead"><a name="flags">Flags</a></th></tr>
<tr><th colspan="15" class="mediumhead"><a name="country-flag">country-flag</a></th></tr>
<tr><td class="rchars">2</td><td class="code"><a name="1f1fa_1f1f8">U+1F1FA U+1F1F8</a></td><td class="name">flag: United States</td></tr>
</table>
</body></html>`

func drain(t *testing.T, rd reflist.Reader) []reflist.Record {
	t.Helper()
	var recs []reflist.Record
	for {
		rec, err := rd.Next()
		if errors.Is(err, io.EOF) {
			return recs
		}
		if err != nil {
			t.Fatalf("不期望错误：%v", err)
		}
		recs = append(recs, rec)
	}
}

func TestParse_ChartStructure(t *testing.T) {
	rd, err := Provider{}.Parse([]byte(sampleChart))
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}

	recs := drain(t, rd)
	want := []reflist.Record{
		reflist.CategoryRecord{Title: "Smileys & Emotion"},
		reflist.SubcategoryRecord{Title: "Face Smiling"},
		reflist.EmojiRecord{Literal: "\U0001F600"},
		reflist.CategoryRecord{Title: "Flags"},
		reflist.SubcategoryRecord{Title: "Country Flag"},
		reflist.EmojiRecord{Literal: "\U0001F1FA\U0001F1F8"},
	}
	if len(recs) != len(want) {
		t.Fatalf("期望 %d 条记录，实际 %d：%+v", len(want), len(recs), recs)
	}
	for i := range want {
		if recs[i] != want[i] {
			t.Fatalf("记录 %d 不符合预期：%+v != %+v", i, recs[i], want[i])
		}
	}
}

func TestParse_RejectsNonChart(t *testing.T) {
	if _, err := (Provider{}).Parse([]byte("<html><body><p>404</p></body></html>")); err == nil {
		t.Fatalf("无分类表头的页面应报错")
	}
	if _, err := (Provider{}).Parse([]byte("  ")); err == nil {
		t.Fatalf("空内容应报错")
	}
}

func TestParse_BadCodeCellFails(t *testing.T) {
	html := `<table>
<tr><th class="bighead">Flags</th></tr>
<tr><th class="mediumhead">country-flag</th></tr>
<tr><td class="code">U+ZZZZ</td></tr>
</table>`
	if _, err := (Provider{}).Parse([]byte(html)); err == nil {
		t.Fatalf("非法码点列应报错")
	}
}
