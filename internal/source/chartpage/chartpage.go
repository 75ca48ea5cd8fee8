package chartpage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/John-Robertt/emotax/internal/reflist"
	"github.com/John-Robertt/emotax/internal/source"
)

// DefaultURL 是 Unicode 官方的 Full Emoji List 图表页。
const DefaultURL = "https://unicode.org/emoji/charts/full-emoji-list.html"

// Provider 实现 Unicode 图表页（"chart"）的获取与解析，作为 plain 清单的后备来源。
//
// 图表页结构（按文档序）：
// - th.bighead    分类表头
// - th.mediumhead 子分类表头
// - td.code       emoji 行的码点列（"U+1F600" / "U+1F1FA U+1F1F8"）
type Provider struct {
	// URL 允许替换图表地址（镜像/固定版本）；为空用 DefaultURL。
	URL string
}

func (Provider) Name() string { return "chart" }

func (p Provider) Fetch(ctx context.Context, c *http.Client) ([]byte, string, error) {
	u := strings.TrimSpace(p.URL)
	if u == "" {
		u = DefaultURL
	}
	b, err := source.Get(ctx, c, u, nil)
	return b, u, err
}

// Parse 把图表页 HTML 物化为记录列表。
// HTML 解析没有惰性读法，这里一次读完再包成 Reader，引擎侧无感知。
func (Provider) Parse(raw []byte) (reflist.Reader, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, errors.New("图表页内容为空")
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}

	var (
		recs     []reflist.Record
		parseErr error
	)
	doc.Find("tr").EachWithBreak(func(_ int, row *goquery.Selection) bool {
		if th := row.Find("th.bighead").First(); th.Length() > 0 {
			recs = append(recs, reflist.CategoryRecord{Title: reflist.TitleCase(th.Text())})
			return true
		}
		if th := row.Find("th.mediumhead").First(); th.Length() > 0 {
			recs = append(recs, reflist.SubcategoryRecord{Title: reflist.TitleCase(th.Text())})
			return true
		}

		code := strings.TrimSpace(row.Find("td.code").First().Text())
		if code == "" {
			return true
		}
		lit, err := reflist.DecodeCodePoints(code)
		if err != nil {
			parseErr = fmt.Errorf("码点列解析失败：%w", err)
			return false
		}
		recs = append(recs, reflist.EmojiRecord{Literal: lit})
		return true
	})
	if parseErr != nil {
		return nil, parseErr
	}

	// 先校验“是不是图表页”：一个分类表头都没有，多半拿到了错误页/非图表内容。
	if len(recs) == 0 {
		return nil, errors.New("未找到分类表头（疑似返回了非图表页内容）")
	}
	if _, ok := recs[0].(reflist.CategoryRecord); !ok {
		return nil, errors.New("图表页首条记录不是分类（结构可能变化）")
	}

	return reflist.NewSliceReader(recs), nil
}
