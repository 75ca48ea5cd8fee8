package main

import (
	"fmt"
	"io"
	"net/url"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/John-Robertt/emotax/internal/app/run"
	"github.com/John-Robertt/emotax/internal/config"
	"github.com/John-Robertt/emotax/internal/domain"
)

var _ run.Observer = (*progressUI)(nil)

// progressUI 是一个“简洁版”的交互终端进度输出。
//
// 设计目标：
// - 所有过程信息写到 stderr（或 fallback 到 stdout），不污染 stdout 的 JSON 输出契约
// - 事件驱动：run 层只发事件，CLI 决定如何展示
type progressUI struct {
	w io.Writer

	mu        sync.Mutex
	startedAt time.Time
}

func newProgressUI(w io.Writer) *progressUI {
	return &progressUI{w: w}
}

func (p *progressUI) OnStart(eff config.EffectiveConfig) {
	now := time.Now()

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.startedAt.IsZero() {
		p.startedAt = now
	}

	mode := "dry-run"
	modeHint := " (不写入)"
	if eff.Apply {
		mode = "apply"
		modeHint = ""
	}

	fmt.Fprintf(p.w, "[%s] emotax run (%s)\n", now.Format("15:04:05"), mode)
	fmt.Fprintln(p.w, "配置（生效）:")
	fmt.Fprintf(p.w, "  path: %s\n", eff.Path)
	fmt.Fprintf(p.w, "  mode: %s%s\n", mode, modeHint)
	fmt.Fprintf(p.w, "  provider: %s\n", providerChain(eff.Provider))
	fmt.Fprintf(p.w, "  proxy: %s\n", formatProxy(eff.ProxyURL))
	if strings.TrimSpace(eff.ShortcodesURL) != "" {
		fmt.Fprintf(p.w, "  shortcodes_url: %s\n", truncate(eff.ShortcodesURL, 120))
	}
	if strings.TrimSpace(eff.ReflistURL) != "" {
		fmt.Fprintf(p.w, "  reflist_url: %s\n", truncate(eff.ReflistURL, 120))
	}
	if strings.TrimSpace(eff.ChartURL) != "" {
		fmt.Fprintf(p.w, "  chart_url: %s\n", truncate(eff.ChartURL, 120))
	}

	if eff.Apply {
		fmt.Fprintln(p.w, "输出:")
		fmt.Fprintf(p.w, "  out: %s\n", filepath.Join(eff.Path, "out", "taxonomy.json"))
		fmt.Fprintf(p.w, "  cache: %s\n", filepath.Join(eff.Path, "cache"))
	}
	fmt.Fprintln(p.w)
}

func (p *progressUI) OnPhaseDone(name string, fields map[string]any, dur time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch name {
	case "fetch":
		fmt.Fprintf(p.w, "获取: shortcodes=%d source=%s cache_hits=%d (%s)\n",
			intField(fields, "shortcodes"),
			stringField(fields, "source"),
			intField(fields, "cache_hits"),
			formatShortDuration(dur),
		)
	case "decode":
		fmt.Fprintf(p.w, "解码: unicode=%d custom=%d (%s)\n",
			intField(fields, "unicode"), intField(fields, "custom"), formatShortDuration(dur),
		)
	case "categorize":
		fmt.Fprintf(p.w, "归类: categories=%d subcategories=%d groups=%d (%s)\n",
			intField(fields, "categories"),
			intField(fields, "subcategories"),
			intField(fields, "groups"),
			formatShortDuration(dur),
		)
	case "write":
		fmt.Fprintf(p.w, "写出: %s (%s)\n", stringField(fields, "file"), formatShortDuration(dur))
	default:
		// 兜底：未知阶段也不要静默（便于调试/演进）。
		fmt.Fprintf(p.w, "%s (%s)\n", name, formatShortDuration(dur))
	}
}

func (p *progressUI) OnDone(rr domain.RunReport) {
	p.mu.Lock()
	defer p.mu.Unlock()

	elapsed := time.Duration(0)
	if !p.startedAt.IsZero() {
		elapsed = time.Since(p.startedAt)
	}
	if rr.OK() {
		fmt.Fprintf(p.w, "\n结束: ok source=%s (%s)\n", rr.SourceUsed, formatShortDuration(elapsed))
		return
	}
	fmt.Fprintf(p.w, "\n结束: failed errors=%d (%s)\n", len(rr.Errors), formatShortDuration(elapsed))
}

// providerChain 展示降级顺序，让用户理解“requested 失败会换另一个”。
func providerChain(requested string) string {
	switch requested {
	case "chart":
		return "chart -> plain"
	default:
		return "plain -> chart"
	}
}

func formatProxy(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "off"
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "on (" + truncate(raw, 120) + ")"
	}
	auth := "off"
	if u.User != nil {
		auth = "on"
	}
	return fmt.Sprintf("on (%s://%s, auth=%s)", u.Scheme, u.Host, auth)
}

func truncate(s string, max int) string {
	s = strings.TrimSpace(s)
	if max <= 0 || len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}

func formatShortDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	return fmt.Sprintf("%.1fs", d.Seconds())
}

func intField(fields map[string]any, key string) int {
	if fields == nil {
		return 0
	}
	v, ok := fields[key]
	if !ok {
		return 0
	}
	switch x := v.(type) {
	case int:
		return x
	case int32:
		return int(x)
	case int64:
		return int(x)
	case uint:
		return int(x)
	case uint32:
		return int(x)
	case uint64:
		return int(x)
	default:
		return 0
	}
}

func stringField(fields map[string]any, key string) string {
	if fields == nil {
		return ""
	}
	if s, ok := fields[key].(string); ok {
		return s
	}
	return ""
}
