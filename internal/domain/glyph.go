package domain

// Glyph 是一个 shortcode 指向的“字形”：要么是标准 Unicode 字面量，
// 要么是平台自有图片（没有 Unicode 对应物）。
//
// 约束：变体在 decode 阶段一次性确定；下游只按类型分派，不再做结构猜测。
type Glyph interface{ isGlyph() }

// UnicodeGlyph 表示标准 Unicode 字面量（可能包含 VS/ZWJ 等表现层码点）。
type UnicodeGlyph struct {
	Literal string
}

func (UnicodeGlyph) isGlyph() {}

// CustomGlyph 表示平台自有字形。
//
// - Asset 是图片 locator 的末段（去扩展名），只作为分组键使用，
//   永远不参与字面量匹配
// - URL 保留原始图片地址，仅用于报告与追溯
type CustomGlyph struct {
	Asset string
	URL   string
}

func (CustomGlyph) isGlyph() {}

// ShortcodeEntry 是 identifier 源的一条条目（shortcode 唯一）。
// 条目顺序必须保持源的枚举顺序：分组内 shortcode 的输出顺序依赖它。
type ShortcodeEntry struct {
	Shortcode string
	Glyph     Glyph
}
