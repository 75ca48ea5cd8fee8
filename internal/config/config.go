package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

const (
	// ErrCodeInvalid 表示配置文件无法读取/解析，或字段不合法。
	ErrCodeInvalid = "config_invalid"
)

const (
	// DefaultProvider 是参考清单 provider 的最终默认值（当 CLI 与配置文件都未指定时）。
	DefaultProvider = "plain"
)

// CLIArgs 只包含 CLI 暴露的三项入口（path/provider/apply），并保留“是否显式指定”的信息。
// 这能保证覆盖优先级可实现：例如 --apply=false 必须能覆盖 config.apply=true。
type CLIArgs struct {
	Path string

	Provider    string
	ProviderSet bool

	Apply    bool
	ApplySet bool
}

// FileConfig 对应 emotax.json 的解析结构。
type FileConfig struct {
	Path     string       `json:"path"`
	Provider string       `json:"provider"`
	Apply    *bool        `json:"apply"`
	Proxy    *ProxyConfig `json:"proxy"`

	// 三个来源地址均可替换（镜像/固定版本/离线副本服务）；为空用内置默认。
	ShortcodesURL string `json:"shortcodes_url"`
	ReflistURL    string `json:"reflist_url"`
	ChartURL      string `json:"chart_url"`

	// UserAgent 覆盖默认的客户端标识（GitHub API 要求必须携带）。
	UserAgent string `json:"user_agent"`
}

type ProxyConfig struct {
	URL string `json:"url"`
}

// EffectiveConfig 是合并并做最小规范化后的最终配置（实现层直接消费，不再做二次默认/优先级判断）。
type EffectiveConfig struct {
	Path string

	Provider string
	Apply    bool

	ProxyURL string

	ShortcodesURL string
	ReflistURL    string
	ChartURL      string
	UserAgent     string
}

// Error 是配置阶段的结构化错误（带 error_code）。
type Error struct {
	Code string
	Path string
	Err  error
}

func (e *Error) Error() string {
	switch e.Code {
	case ErrCodeInvalid:
		if e.Err != nil {
			return fmt.Sprintf("%s：配置文件 %q 无效：%v", e.Code, e.Path, e.Err)
		}
		return fmt.Sprintf("%s：配置文件 %q 无效", e.Code, e.Path)
	default:
		if e.Err != nil {
			return fmt.Sprintf("%s：%v", e.Code, e.Err)
		}
		return e.Code
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Code 从 error 中提取 error_code；若不是 *Error 则返回空串。
func Code(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// LoadEffective 按文档约定发现并读取配置文件，然后与 CLI 参数合并为最终配置。
//
// 发现规则（固定）：
// 1) CLI 提供 path：尝试读取 <path>/emotax.json（可选）
// 2) CLI 未提供 path：尝试读取 <cwd>/emotax.json（可选）；path 取配置值，
//    配置也没有时默认 cwd（本工具不依赖既有目录结构，cwd 即合理工作目录）
//
// 覆盖优先级（固定）：
// - path：CLI path > config path > cwd
// - provider：CLI > config > 默认 plain
// - apply：CLI --apply/--apply=false > config > 默认 false
// - 其他字段：仅由 config 控制（CLI 不暴露）
func LoadEffective(cwd string, cli CLIArgs) (EffectiveConfig, error) {
	cwdAbs, err := filepath.Abs(cwd)
	if err != nil {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cwd, Err: err}
	}

	if strings.TrimSpace(cli.Path) != "" {
		// CLI 给了 path：配置文件可选，位置固定在 <path>/emotax.json。
		absPath := absCleanFrom(cwdAbs, cli.Path)
		cfgPath := filepath.Join(absPath, "emotax.json")

		fc, _, err := readFileConfig(cfgPath)
		if err != nil {
			return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: err}
		}
		return merge(absPath, cli, fc, cfgPath)
	}

	// CLI 没给 path：读 <cwd>/emotax.json（可选）。
	cfgPath := filepath.Join(cwdAbs, "emotax.json")
	fc, _, err := readFileConfig(cfgPath)
	if err != nil {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: err}
	}

	absPath := cwdAbs
	if strings.TrimSpace(fc.Path) != "" {
		absPath = absCleanFrom(cwdAbs, fc.Path)
	}
	return merge(absPath, cli, fc, cfgPath)
}

func merge(absPath string, cli CLIArgs, fc FileConfig, cfgPath string) (EffectiveConfig, error) {
	// provider：CLI > config > 默认
	provider := DefaultProvider
	if cli.ProviderSet {
		provider = cli.Provider
	} else if strings.TrimSpace(fc.Provider) != "" {
		provider = fc.Provider
	}
	if err := validateProvider(provider); err != nil {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: err}
	}

	// apply：CLI > config > 默认 false
	apply := false
	if cli.ApplySet {
		apply = cli.Apply
	} else if fc.Apply != nil {
		apply = *fc.Apply
	}

	proxyURL := ""
	if fc.Proxy != nil {
		proxyURL = strings.TrimSpace(fc.Proxy.URL)
	}
	if proxyURL != "" {
		if _, err := url.Parse(proxyURL); err != nil {
			return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: fmt.Errorf("proxy.url 无效：%w", err)}
		}
	}

	for _, f := range []struct{ name, raw string }{
		{"shortcodes_url", fc.ShortcodesURL},
		{"reflist_url", fc.ReflistURL},
		{"chart_url", fc.ChartURL},
	} {
		if err := validateHTTPURL(f.name, f.raw); err != nil {
			return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: err}
		}
	}

	return EffectiveConfig{
		Path:          absPath,
		Provider:      provider,
		Apply:         apply,
		ProxyURL:      proxyURL,
		ShortcodesURL: strings.TrimSpace(fc.ShortcodesURL),
		ReflistURL:    strings.TrimSpace(fc.ReflistURL),
		ChartURL:      strings.TrimSpace(fc.ChartURL),
		UserAgent:     strings.TrimSpace(fc.UserAgent),
	}, nil
}

func validateProvider(p string) error {
	switch p {
	case "plain", "chart":
		return nil
	case "":
		return fmt.Errorf("provider 不能为空")
	default:
		return fmt.Errorf("provider 只能是 plain 或 chart，实际是 %q", p)
	}
}

func validateHTTPURL(name, raw string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%s 无效：%q", name, raw)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%s 必须是 http/https：%q", name, raw)
	}
	return nil
}

// absCleanFrom 以 base 为基准，把 p 变为 clean + absolute。
// - p 若已是绝对路径：直接 Clean
// - p 若是相对路径：Join(base, p) 后 Clean
func absCleanFrom(base, p string) string {
	p = filepath.Clean(strings.TrimSpace(p))
	if p == "" {
		return ""
	}
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Clean(filepath.Join(base, p))
}

// readFileConfig 读取并解析 JSON 配置文件。
// 返回值 exists 表示该文件是否存在（不存在不算错误）。
func readFileConfig(path string) (fc FileConfig, exists bool, err error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, false, nil
		}
		return FileConfig{}, false, err
	}
	if err := json.Unmarshal(b, &fc); err != nil {
		return FileConfig{}, true, err
	}
	return fc, true, nil
}
