package glyph

import (
	"testing"

	"github.com/John-Robertt/emotax/internal/domain"
)

func TestDecode_SingleCodePoint(t *testing.T) {
	g, err := Decode("https://github.githubassets.com/images/icons/emoji/unicode/1f600.png?v8")
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	ug, ok := g.(domain.UnicodeGlyph)
	if !ok {
		t.Fatalf("期望 UnicodeGlyph，实际 %T", g)
	}
	if ug.Literal != "\U0001F600" {
		t.Fatalf("期望 😀（U+1F600），实际 %q", ug.Literal)
	}
}

func TestDecode_MultiCodePointKeepsOrder(t *testing.T) {
	// 区旗序列：两个 regional indicator，文件名中的顺序必须原样保留。
	g, err := Decode("https://github.githubassets.com/images/icons/emoji/unicode/1f1fa-1f1f8.png?v8")
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	ug, ok := g.(domain.UnicodeGlyph)
	if !ok {
		t.Fatalf("期望 UnicodeGlyph，实际 %T", g)
	}
	if ug.Literal != "\U0001F1FA\U0001F1F8" {
		t.Fatalf("期望 🇺🇸（U+1F1FA U+1F1F8），实际 %q", ug.Literal)
	}
}

func TestDecode_CustomGlyph(t *testing.T) {
	g, err := Decode("https://github.githubassets.com/images/icons/emoji/octocat.png?v8")
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	cg, ok := g.(domain.CustomGlyph)
	if !ok {
		t.Fatalf("期望 CustomGlyph，实际 %T", g)
	}
	if cg.Asset != "octocat" {
		t.Fatalf("期望 asset=octocat，实际 %q", cg.Asset)
	}
	if cg.URL == "" {
		t.Fatalf("URL 应保留原始地址")
	}
}

func TestDecode_BadHexFailsLoudly(t *testing.T) {
	// /unicode/ 路径下出现非十六进制段：这是源数据漂移，必须失败而不是静默归为 custom。
	if _, err := Decode("https://x/emoji/unicode/not-hex.png"); err == nil {
		t.Fatalf("期望错误，但得到 nil")
	}
}

func TestDecode_EmptyLocator(t *testing.T) {
	if _, err := Decode("  "); err == nil {
		t.Fatalf("期望错误，但得到 nil")
	}
}

func TestNormalize_StripsVSAndZWJ(t *testing.T) {
	// ❤️ = U+2764 U+FE0F；规范化后只剩 U+2764。
	if got := Normalize("❤️"); got != "❤" {
		t.Fatalf("期望去掉 VS16，实际 %q", got)
	}
	// 👨‍👩‍👧 家庭序列：去掉 ZWJ 后只剩三个基础码点。
	in := "\U0001F468‍\U0001F469‍\U0001F467"
	want := "\U0001F468\U0001F469\U0001F467"
	if got := Normalize(in); got != want {
		t.Fatalf("期望 %q，实际 %q", want, got)
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	cases := []string{
		"❤️",
		"\U0001F468‍\U0001F469‍\U0001F467",
		"\U0001F600",
		"",
	}
	for _, c := range cases {
		once := Normalize(c)
		if twice := Normalize(once); twice != once {
			t.Fatalf("Normalize 不幂等：%q -> %q -> %q", c, once, twice)
		}
	}
}
