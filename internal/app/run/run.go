package run

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/John-Robertt/emotax/internal/catalog"
	"github.com/John-Robertt/emotax/internal/config"
	"github.com/John-Robertt/emotax/internal/domain"
	"github.com/John-Robertt/emotax/internal/glyph"
	"github.com/John-Robertt/emotax/internal/infra/cache"
	"github.com/John-Robertt/emotax/internal/infra/fsx"
	"github.com/John-Robertt/emotax/internal/infra/httpx"
	"github.com/John-Robertt/emotax/internal/reflist"
	"github.com/John-Robertt/emotax/internal/source"
	"github.com/John-Robertt/emotax/internal/source/githubapi"
)

const shortcodesCacheName = "shortcodes.json"

// Execute 执行一次 run（dry-run/apply），并返回对外稳定的 RunReport。
// 一次 run 要么产出完整 taxonomy，要么只产出错误条目；没有部分成功。
func Execute(ctx context.Context, eff config.EffectiveConfig, reg source.Registry) domain.RunReport {
	return ExecuteWithObserver(ctx, eff, reg, nil)
}

// ExecuteWithObserver 与 Execute 相同，但允许传入 Observer 以输出进度/阶段信息（由上层决定是否启用）。
func ExecuteWithObserver(ctx context.Context, eff config.EffectiveConfig, reg source.Registry, obs Observer) domain.RunReport {
	started := time.Now().UTC()

	if obs != nil {
		obs.OnStart(eff)
	}

	rr := domain.RunReport{
		Path:      eff.Path,
		DryRun:    !eff.Apply,
		StartedAt: started,
		Errors:    []domain.ErrorItem{},
	}

	client, err := httpx.NewClient(eff.ProxyURL, eff.UserAgent)
	if err != nil {
		return finish(obs, rr, domain.ErrorItem{
			ErrorCode: domain.ErrCodeConfigInvalid,
			ErrorMsg:  fmt.Sprintf("proxy.url 无效：%v", err),
		})
	}

	store := cache.New(eff.Path, !eff.Apply)

	// fetch：两个来源互相独立，可并发获取。任一失败即整体失败
	// （归类两边缺一不可），errgroup 负责取消另一边。
	fetchStarted := time.Now()

	var (
		rawEntries []githubapi.Entry
		rawShort   []byte
		shortHit   bool

		records    reflist.Reader
		sourceUsed string
		srcURL     string
		rawRef     []byte
		refHit     bool
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		es, raw, hit, e := fetchShortcodes(gctx, store, client, eff.ShortcodesURL)
		if e != nil {
			return e
		}
		rawEntries, rawShort, shortHit = es, raw, hit
		return nil
	})
	g.Go(func() error {
		rd, used, u, raw, hit, e := fetchReflist(gctx, store, reg, eff.Provider, client)
		if e != nil {
			return e
		}
		records, sourceUsed, srcURL, rawRef, refHit = rd, used, u, raw, hit
		return nil
	})
	if err := g.Wait(); err != nil {
		return finish(obs, rr, classifySourceError(err))
	}
	fetchDur := time.Since(fetchStarted)

	if obs != nil {
		hits := 0
		if shortHit {
			hits++
		}
		if refHit {
			hits++
		}
		obs.OnPhaseDone("fetch", map[string]any{
			"shortcodes": len(rawEntries),
			"source":     sourceUsed,
			"source_url": srcURL,
			"cache_hits": hits,
		}, fetchDur)
	}

	// decode：locator -> Glyph。任何一条 decode 失败都说明源格式漂移，整体失败。
	decodeStarted := time.Now()
	entries := make([]domain.ShortcodeEntry, 0, len(rawEntries))
	customCount := 0
	for _, e := range rawEntries {
		gl, derr := glyph.Decode(e.Locator)
		if derr != nil {
			return finish(obs, rr, domain.ErrorItem{
				ErrorCode: domain.ErrCodeParseFailed,
				ErrorMsg:  fmt.Sprintf("shortcode %q 的 locator 无法解码：%v", e.Shortcode, derr),
			})
		}
		if _, ok := gl.(domain.CustomGlyph); ok {
			customCount++
		}
		entries = append(entries, domain.ShortcodeEntry{Shortcode: e.Shortcode, Glyph: gl})
	}
	decodeDur := time.Since(decodeStarted)

	if obs != nil {
		obs.OnPhaseDone("decode", map[string]any{
			"unicode": len(entries) - customCount,
			"custom":  customCount,
		}, decodeDur)
	}

	// categorize：单次折叠消费记录流。
	catStarted := time.Now()
	tax, err := catalog.Categorize(entries, records)
	if err != nil {
		return finish(obs, rr, classifyCategorizeError(sourceUsed, err))
	}
	catDur := time.Since(catStarted)

	cats, subs, groups, codes := tax.Counts()
	rr.SourceUsed = sourceUsed
	rr.Summary = domain.ReportSummary{
		Shortcodes:    codes,
		Custom:        customCount,
		Categories:    cats,
		Subcategories: subs,
		Groups:        groups,
	}

	if obs != nil {
		obs.OnPhaseDone("categorize", map[string]any{
			"categories":    cats,
			"subcategories": subs,
			"groups":        groups,
		}, catDur)
	}

	// write：apply 才落盘。taxonomy 写失败是硬错误；源缓存写失败只丢缓存，不影响结果。
	if eff.Apply {
		writeStarted := time.Now()

		b, merr := json.MarshalIndent(tax, "", "  ")
		if merr != nil {
			return finish(obs, rr, domain.ErrorItem{
				ErrorCode: domain.ErrCodeIOFailed,
				ErrorMsg:  fmt.Sprintf("序列化 taxonomy 失败：%v", merr),
			})
		}
		b = append(b, '\n')
		if werr := fsx.WriteFileAtomicReplace(filepath.Join(eff.Path, "out"), "taxonomy.json", b); werr != nil {
			return finish(obs, rr, domain.ErrorItem{
				ErrorCode: domain.ErrCodeIOFailed,
				ErrorMsg:  fmt.Sprintf("写入 taxonomy.json 失败：%v", werr),
			})
		}

		if !shortHit {
			_ = store.WriteSource(shortcodesCacheName, rawShort)
		}
		if !refHit {
			_ = store.WriteSource(reflistCacheName(sourceUsed), rawRef)
		}

		if obs != nil {
			obs.OnPhaseDone("write", map[string]any{
				"file": filepath.Join("out", "taxonomy.json"),
			}, time.Since(writeStarted))
		}
	}

	rr.FinishedAt = time.Now().UTC()
	rr.Finalize()
	if obs != nil {
		obs.OnDone(rr)
	}
	return rr
}

func finish(obs Observer, rr domain.RunReport, item domain.ErrorItem) domain.RunReport {
	rr.Errors = append(rr.Errors, item)
	rr.FinishedAt = time.Now().UTC()
	rr.Finalize()
	if obs != nil {
		obs.OnDone(rr)
	}
	return rr
}

// fetchShortcodes 获取 shortcode -> locator 映射：先查缓存，命中则不打网络。
// 坏缓存（解析失败）当作 miss 处理，走网络重取。
func fetchShortcodes(ctx context.Context, store cache.Store, c *http.Client, apiURL string) (entries []githubapi.Entry, raw []byte, cacheHit bool, err error) {
	if b, ok, rerr := store.ReadSource(shortcodesCacheName); rerr == nil && ok {
		if es, perr := githubapi.Parse(b); perr == nil {
			return es, b, true, nil
		}
	}

	raw, ferr := githubapi.Fetch(ctx, c, apiURL)
	if ferr != nil {
		return nil, nil, false, &source.Error{Provider: "github", Stage: "fetch", Err: ferr}
	}
	entries, perr := githubapi.Parse(raw)
	if perr != nil {
		return nil, nil, false, &source.Error{Provider: "github", Stage: "parse", Err: perr}
	}
	return entries, raw, false, nil
}

// fetchReflist 获取参考清单记录流：先查 requested provider 的缓存，
// 命中且能解析则直接使用；否则走网络（含 provider 降级）。
func fetchReflist(ctx context.Context, store cache.Store, reg source.Registry, requested string, c *http.Client) (rd reflist.Reader, used, srcURL string, raw []byte, cacheHit bool, err error) {
	if p, ok := reg.Get(requested); ok {
		if b, hit, rerr := store.ReadSource(reflistCacheName(requested)); rerr == nil && hit {
			if r, perr := p.Parse(b); perr == nil {
				return r, requested, "cache:" + reflistCacheName(requested), b, true, nil
			}
		}
	}

	rd, used, srcURL, raw, err = source.FetchParse(ctx, reg, requested, c)
	if err != nil {
		return nil, "", "", nil, false, err
	}
	return rd, used, srcURL, raw, false, nil
}

// reflistCacheName 返回某 provider 清单缓存的文件名（按内容形态区分扩展名）。
func reflistCacheName(provider string) string {
	if provider == "chart" {
		return "reflist_chart.html"
	}
	return "reflist_plain.txt"
}

// classifySourceError 把来源阶段的失败映射为 report 的 error_code。
func classifySourceError(err error) domain.ErrorItem {
	var se *source.Error
	if errors.As(err, &se) {
		switch se.Stage {
		case "fetch":
			return domain.ErrorItem{
				ErrorCode: domain.ErrCodeFetchFailed,
				ErrorMsg:  humanizeFetchError(se.Provider, se.Err),
			}
		case "parse":
			return domain.ErrorItem{
				ErrorCode: domain.ErrCodeParseFailed,
				ErrorMsg:  fmt.Sprintf("%s 解析失败（源格式可能变化或返回了非预期内容）：%v", se.Provider, se.Err),
			}
		}
	}

	var hs *source.HTTPStatusError
	if errors.As(err, &hs) {
		return domain.ErrorItem{
			ErrorCode: domain.ErrCodeFetchFailed,
			ErrorMsg:  err.Error(),
		}
	}

	// 未注册 provider 等注册期错误也归 fetch_failed（对用户而言都是“拿不到源”）。
	return domain.ErrorItem{
		ErrorCode: domain.ErrCodeFetchFailed,
		ErrorMsg:  err.Error(),
	}
}

// classifyCategorizeError 把归类阶段的失败映射为 report 的 error_code。
func classifyCategorizeError(sourceUsed string, err error) domain.ErrorItem {
	var ue *catalog.UncategorizedError
	if errors.As(err, &ue) {
		return domain.ErrorItem{
			ErrorCode:  domain.ErrCodeUncategorized,
			ErrorMsg:   fmt.Sprintf("%d 个 shortcode 声称是标准 emoji 但参考清单（%s）没有匹配到", len(ue.Shortcodes), sourceUsed),
			Shortcodes: ue.Shortcodes,
		}
	}

	var re *catalog.UnrecognizedRecordError
	if errors.As(err, &re) {
		return domain.ErrorItem{
			ErrorCode: domain.ErrCodeBadRecord,
			ErrorMsg:  fmt.Sprintf("参考清单出现无法识别的记录形态（%s 的格式可能已变更）：%v", sourceUsed, err),
		}
	}

	// 上下文错误与逐行解析错误都属于清单内容问题。
	return domain.ErrorItem{
		ErrorCode: domain.ErrCodeParseFailed,
		ErrorMsg:  fmt.Sprintf("参考清单（%s）无法归类：%v", sourceUsed, err),
	}
}

func humanizeFetchError(providerName string, err error) string {
	if err == nil {
		return providerName + " 抓取失败"
	}

	var hs *source.HTTPStatusError
	if errors.As(err, &hs) {
		switch hs.StatusCode {
		case 403, 429:
			return fmt.Sprintf("%s 返回 HTTP %d（可能触发限流；GitHub API 对无 User-Agent/未认证请求更严格）。建议配置 user_agent 或稍后重试。", providerName, hs.StatusCode)
		case 404:
			return fmt.Sprintf("%s 返回 HTTP 404（地址可能已变更，可在 emotax.json 覆盖来源地址）。", providerName)
		default:
			return fmt.Sprintf("%s 返回 HTTP %d。", providerName, hs.StatusCode)
		}
	}

	low := strings.ToLower(err.Error())
	if errors.Is(err, context.DeadlineExceeded) || strings.Contains(low, "timeout") {
		return fmt.Sprintf("%s 抓取超时。建议检查网络/代理后重试。", providerName)
	}

	return fmt.Sprintf("%s 抓取失败：%v", providerName, err)
}
