package reflist

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"
)

// 行首标记：双标记在前判断（"##" 同时满足 "#" 前缀）。
const (
	categoryMarker    = "##"
	subcategoryMarker = "#"
)

// Scanner 逐行把清单文本解析为 Record 流（惰性、一次性、不可重启）。
//
// 语法（行导向）：
// - "## <title>"  分类
// - "# <title>"   子分类
// - 其余非空行    emoji 条目：首个 tab 字段是空格分隔的十六进制码点列表
// - 空行跳过，不产出记录
type Scanner struct {
	s    *bufio.Scanner
	done bool
}

func NewScanner(r io.Reader) *Scanner {
	s := bufio.NewScanner(r)
	// 单行上限放宽到 1MiB：清单行远小于该值，但默认 64KiB 不值得作为隐式约束留着。
	s.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return &Scanner{s: s}
}

// Next 产出下一条记录；读尽返回 io.EOF，解析失败立即终止流。
func (sc *Scanner) Next() (Record, error) {
	if sc.done {
		return nil, io.EOF
	}
	for sc.s.Scan() {
		rec, ok, err := parseLine(sc.s.Text())
		if err != nil {
			sc.done = true
			return nil, err
		}
		if !ok {
			continue
		}
		return rec, nil
	}
	sc.done = true
	if err := sc.s.Err(); err != nil {
		return nil, err
	}
	return nil, io.EOF
}

func parseLine(line string) (Record, bool, error) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return nil, false, nil
	}

	switch {
	case strings.HasPrefix(trimmed, categoryMarker):
		return CategoryRecord{Title: TitleCase(strings.TrimPrefix(trimmed, categoryMarker))}, true, nil
	case strings.HasPrefix(trimmed, subcategoryMarker):
		return SubcategoryRecord{Title: TitleCase(strings.TrimPrefix(trimmed, subcategoryMarker))}, true, nil
	}

	field := trimmed
	if i := strings.IndexByte(trimmed, '\t'); i >= 0 {
		field = trimmed[:i]
	}
	lit, err := DecodeCodePoints(field)
	if err != nil {
		return nil, false, err
	}
	return EmojiRecord{Literal: lit}, true, nil
}

// DecodeCodePoints 把空格分隔的十六进制码点列表解码为字面量（保序拼接）。
// 允许可选的 "U+" 前缀（Unicode 图表页的写法），便于两个 provider 共用。
func DecodeCodePoints(field string) (string, error) {
	parts := strings.Fields(field)
	if len(parts) == 0 {
		return "", fmt.Errorf("emoji 行缺少码点字段：%q", field)
	}

	var b strings.Builder
	for _, p := range parts {
		hex := strings.TrimPrefix(strings.TrimPrefix(p, "U+"), "u+")
		v, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return "", fmt.Errorf("非法码点 %q：%w", p, err)
		}
		r := rune(v)
		if !utf8.ValidRune(r) {
			return "", fmt.Errorf("越界码点 %q", p)
		}
		b.WriteRune(r)
	}
	return b.String(), nil
}
