package domain

// CustomCategoryTitle 是平台自有 emoji 的合成分类标题。
// 该分类只有一个空标题子分类，分组按 asset 首次出现顺序排列。
const CustomCategoryTitle = "GitHub Custom Emoji"

// Taxonomy 是最终产物：分类 → 子分类 → 有序分组列表。
//
// 用 slice 而不是 map：文档序是契约的一部分（参考清单的出现顺序），
// 且 JSON 序列化必须稳定。
type Taxonomy struct {
	Categories []Category `json:"categories"`
}

type Category struct {
	Title         string        `json:"title"`
	Subcategories []Subcategory `json:"subcategories"`
}

type Subcategory struct {
	Title  string     `json:"title"`
	Groups [][]string `json:"groups"`
}

// Counts 统计 taxonomy 的规模（用于 report summary 与测试断言）。
// 返回值依次为：分类数、子分类数、分组数、shortcode 总数。
func (t Taxonomy) Counts() (categories, subcategories, groups, shortcodes int) {
	for _, c := range t.Categories {
		categories++
		for _, s := range c.Subcategories {
			subcategories++
			for _, g := range s.Groups {
				groups++
				shortcodes += len(g)
			}
		}
	}
	return categories, subcategories, groups, shortcodes
}
