// Package catalog 实现核心归类算法：把 shortcode 索引与参考清单的记录流
// 对账为一棵一致的 taxonomy。
//
// 两阶段管道：先把条目分区成不可变索引，再对记录流做一次 fold，
// 携带 (剩余索引, taxonomy 构建器) 作为累加器；覆盖检查是结束时的一次
// 纯后置条件判断，而不是散落在循环里的共享可变状态。
package catalog

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/John-Robertt/emotax/internal/domain"
	"github.com/John-Robertt/emotax/internal/glyph"
	"github.com/John-Robertt/emotax/internal/reflist"
)

// UncategorizedError 表示覆盖不变量被破坏：有 shortcode 声称是标准 emoji，
// 但走完整个参考清单也没被匹配到（两个数据源之间出现了规范化漂移或清单缺口）。
type UncategorizedError struct {
	// Shortcodes 已排序，保证错误信息与 report 稳定。
	Shortcodes []string
}

func (e *UncategorizedError) Error() string {
	return fmt.Sprintf("%d 个 shortcode 未被参考清单覆盖：%s",
		len(e.Shortcodes), strings.Join(e.Shortcodes, ", "))
}

// ContextError 表示参考清单的记录顺序不合法（例如分类记录之前就出现了
// 子分类或 emoji 记录）。这是输入损坏，必须大声失败而不是静默错归。
type ContextError struct {
	// Kind: "subcategory_without_category" | "emoji_without_context"
	Kind  string
	Title string
}

func (e *ContextError) Error() string {
	switch e.Kind {
	case "subcategory_without_category":
		return fmt.Sprintf("子分类 %q 出现在任何分类之前（清单格式损坏）", e.Title)
	case "emoji_without_context":
		return "emoji 记录出现在分类/子分类上下文就绪之前（清单格式损坏）"
	default:
		return "参考清单记录顺序不合法"
	}
}

// UnrecognizedRecordError 表示记录流里出现了三种已知形态之外的记录。
// Record 是密封接口，正常情况下不可能；出现即意味着格式/代码演进没同步。
type UnrecognizedRecordError struct {
	Record reflist.Record
}

func (e *UnrecognizedRecordError) Error() string {
	return fmt.Sprintf("未知的参考清单记录类型：%T", e.Record)
}

// context 是显式的两级上下文状态（取代"按栈长度分支"的隐式两元素栈）。
// 转移规则：Category 记录清空子分类；Subcategory 记录要求分类已就绪。
type context struct {
	category       string
	hasCategory    bool
	subcategory    string
	hasSubcategory bool
}

// Categorize 把 shortcode 条目按参考清单的记录流归类为 taxonomy。
//
// 算法：
// 1) 分区：Unicode 条目按规范化 key 聚为分组；custom 条目按 asset 聚为
//    分组（一个 shortcode 恰好落在一个分区）
// 2) 单遍 fold 记录流：Category/Subcategory 维护上下文，Emoji 按
//    规范化 key 取走整个分组（首个匹配位置即最终位置，key 即刻移除）
// 3) 覆盖检查：剩余索引非空 => UncategorizedError，不返回部分结果
// 4) 剪枝：空子分类、随后空分类一律移除
// 5) custom 分组以合成分类兜底，按 asset 首次出现顺序排列
func Categorize(entries []domain.ShortcodeEntry, records reflist.Reader) (domain.Taxonomy, error) {
	byKey, custom, customOrder, err := partition(entries)
	if err != nil {
		return domain.Taxonomy{}, err
	}

	b := newBuilder()
	var cur context
	for {
		rec, err := records.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return domain.Taxonomy{}, err
		}

		switch r := rec.(type) {
		case reflist.CategoryRecord:
			cur = context{category: r.Title, hasCategory: true}
			b.ensureCategory(r.Title)
		case reflist.SubcategoryRecord:
			if !cur.hasCategory {
				return domain.Taxonomy{}, &ContextError{Kind: "subcategory_without_category", Title: r.Title}
			}
			cur.subcategory = r.Title
			cur.hasSubcategory = true
			b.ensureSubcategory(cur.category, r.Title)
		case reflist.EmojiRecord:
			if !cur.hasCategory || !cur.hasSubcategory {
				return domain.Taxonomy{}, &ContextError{Kind: "emoji_without_context"}
			}
			key := glyph.Normalize(r.Literal)
			if group, ok := byKey[key]; ok {
				b.appendGroup(cur.category, cur.subcategory, group)
				delete(byKey, key)
			}
		default:
			return domain.Taxonomy{}, &UnrecognizedRecordError{Record: rec}
		}
	}

	if len(byKey) > 0 {
		leftover := make([]string, 0, len(byKey))
		for _, group := range byKey {
			leftover = append(leftover, group...)
		}
		sort.Strings(leftover)
		return domain.Taxonomy{}, &UncategorizedError{Shortcodes: leftover}
	}

	tax := b.pruned()

	if len(customOrder) > 0 {
		groups := make([][]string, 0, len(customOrder))
		for _, asset := range customOrder {
			groups = append(groups, custom[asset])
		}
		tax.Categories = append(tax.Categories, domain.Category{
			Title: domain.CustomCategoryTitle,
			Subcategories: []domain.Subcategory{
				{Title: "", Groups: groups},
			},
		})
	}

	return tax, nil
}

// partition 把条目切成两个互斥分区：
// - byKey：规范化字面量 key -> shortcode 分组（顺序 = 源枚举顺序）
// - custom：asset -> shortcode 分组，customOrder 记录 asset 首次出现顺序
//
// 已知并被测试钉住的缺口：不同 locator 折叠到同一 asset 时分组会静默合并
//（custom 条目没有对应的覆盖检查）。
func partition(entries []domain.ShortcodeEntry) (byKey, custom map[string][]string, customOrder []string, err error) {
	byKey = make(map[string][]string, len(entries))
	custom = make(map[string][]string, 16)

	for _, e := range entries {
		switch g := e.Glyph.(type) {
		case domain.UnicodeGlyph:
			key := glyph.Normalize(g.Literal)
			byKey[key] = append(byKey[key], e.Shortcode)
		case domain.CustomGlyph:
			if _, ok := custom[g.Asset]; !ok {
				customOrder = append(customOrder, g.Asset)
			}
			custom[g.Asset] = append(custom[g.Asset], e.Shortcode)
		default:
			return nil, nil, nil, fmt.Errorf("未知的 Glyph 变体：%T（shortcode=%q）", e.Glyph, e.Shortcode)
		}
	}
	return byKey, custom, customOrder, nil
}

// builder 保序构建 taxonomy：slice 维持文档序，index map 提供按标题寻址。
// 同名分类/子分类重复出现时合并到首次出现的位置（mapping 语义）。
type builder struct {
	cats   []domain.Category
	catIdx map[string]int
	subIdx []map[string]int // 与 cats 平行
}

func newBuilder() *builder {
	return &builder{catIdx: make(map[string]int, 16)}
}

func (b *builder) ensureCategory(title string) int {
	if i, ok := b.catIdx[title]; ok {
		return i
	}
	i := len(b.cats)
	b.catIdx[title] = i
	b.cats = append(b.cats, domain.Category{Title: title})
	b.subIdx = append(b.subIdx, make(map[string]int, 8))
	return i
}

func (b *builder) ensureSubcategory(category, title string) int {
	ci := b.ensureCategory(category)
	if si, ok := b.subIdx[ci][title]; ok {
		return si
	}
	si := len(b.cats[ci].Subcategories)
	b.subIdx[ci][title] = si
	b.cats[ci].Subcategories = append(b.cats[ci].Subcategories, domain.Subcategory{Title: title})
	return si
}

func (b *builder) appendGroup(category, subcategory string, group []string) {
	ci := b.ensureCategory(category)
	si := b.ensureSubcategory(category, subcategory)
	sub := &b.cats[ci].Subcategories[si]
	sub.Groups = append(sub.Groups, group)
}

// pruned 返回剪枝后的 taxonomy：先移除空分组列表的子分类，
// 再移除子分类清空后的分类。
func (b *builder) pruned() domain.Taxonomy {
	cats := make([]domain.Category, 0, len(b.cats))
	for _, c := range b.cats {
		subs := make([]domain.Subcategory, 0, len(c.Subcategories))
		for _, s := range c.Subcategories {
			if len(s.Groups) == 0 {
				continue
			}
			subs = append(subs, s)
		}
		if len(subs) == 0 {
			continue
		}
		c.Subcategories = subs
		cats = append(cats, c)
	}
	return domain.Taxonomy{Categories: cats}
}
