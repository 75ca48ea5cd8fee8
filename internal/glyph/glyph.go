package glyph

import (
	"fmt"
	"net/url"
	"path"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/John-Robertt/emotax/internal/domain"
)

// unicodeSegment 是标准 Unicode 资源的路径标记。
// GitHub 的 emoji 图片路径形如 .../emoji/unicode/1f1fa-1f1f8.png?v8。
const unicodeSegment = "/unicode/"

// Decode 把 image locator 判定为标准 Unicode 字面量或平台自有字形。
//
// 规则（硬约束）：
// - 路径含 "/unicode/"：末段去扩展名后按 '-' 切开，每段是一个十六进制码点，
//   按文件名中的顺序解码拼接（flag/ZWJ 组合已经编码在文件名里，顺序不能动）
// - 其他路径：平台自有字形，末段（去扩展名）只作为分组键
//
// 约束：要么得到确定的变体，要么失败；宁可整体失败，也不允许把
// 源数据漂移静默当成 custom。
func Decode(locator string) (domain.Glyph, error) {
	locator = strings.TrimSpace(locator)
	if locator == "" {
		return nil, fmt.Errorf("locator 不能为空")
	}
	u, err := url.Parse(locator)
	if err != nil {
		return nil, err
	}

	base := path.Base(u.Path)
	name := strings.TrimSuffix(base, path.Ext(base))
	if name == "" || name == "." || name == "/" {
		return nil, fmt.Errorf("locator 缺少文件名：%q", locator)
	}

	if !strings.Contains(u.Path, unicodeSegment) {
		return domain.CustomGlyph{Asset: name, URL: locator}, nil
	}

	var b strings.Builder
	for _, part := range strings.Split(name, "-") {
		v, err := strconv.ParseUint(part, 16, 32)
		if err != nil {
			return nil, fmt.Errorf("unicode 路径中存在非法码点 %q（locator=%q）：%w", part, locator, err)
		}
		r := rune(v)
		if !utf8.ValidRune(r) {
			return nil, fmt.Errorf("unicode 路径中存在越界码点 %q（locator=%q）", part, locator)
		}
		b.WriteRune(r)
	}
	return domain.UnicodeGlyph{Literal: b.String()}, nil
}

// Normalize 去掉字面量中的表现层码点：variation selector（U+FE00..U+FE0F）
// 与 zero-width joiner（U+200D）。
//
// 不变量：多个原始字面量（肤色/性别变体）可能折叠到同一个 key；
// 匹配只用折叠后的 key，输出永远用原始 shortcode。
func Normalize(literal string) string {
	var b strings.Builder
	b.Grow(len(literal))
	for _, r := range literal {
		if r == 0x200D || (r >= 0xFE00 && r <= 0xFE0F) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
