package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeJSON(t *testing.T, dir, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, "emotax.json"), []byte(content), 0o644); err != nil {
		t.Fatalf("写配置失败：%v", err)
	}
}

func TestLoadEffective_DefaultsWithoutFile(t *testing.T) {
	dir := t.TempDir()

	eff, err := LoadEffective(dir, CLIArgs{})
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if eff.Path != dir {
		t.Fatalf("path 应默认为 cwd：%q != %q", eff.Path, dir)
	}
	if eff.Provider != "plain" {
		t.Fatalf("provider 应默认 plain：%q", eff.Provider)
	}
	if eff.Apply {
		t.Fatalf("apply 应默认 false")
	}
}

func TestLoadEffective_CLIPathReadsConfigUnderPath(t *testing.T) {
	cwd := t.TempDir()
	target := t.TempDir()
	writeJSON(t, target, `{"provider":"chart","apply":true}`)

	eff, err := LoadEffective(cwd, CLIArgs{Path: target})
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if eff.Path != target {
		t.Fatalf("path 应为 CLI 指定目录：%q", eff.Path)
	}
	if eff.Provider != "chart" || !eff.Apply {
		t.Fatalf("应读到 <path>/emotax.json 的配置：%+v", eff)
	}
}

func TestLoadEffective_CLIOverridesConfig(t *testing.T) {
	dir := t.TempDir()
	writeJSON(t, dir, `{"provider":"chart","apply":true}`)

	eff, err := LoadEffective(dir, CLIArgs{
		Provider: "plain", ProviderSet: true,
		Apply: false, ApplySet: true,
	})
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if eff.Provider != "plain" {
		t.Fatalf("CLI provider 应覆盖配置：%q", eff.Provider)
	}
	if eff.Apply {
		t.Fatalf("--apply=false 应覆盖 config.apply=true")
	}
}

func TestLoadEffective_ConfigPathUsedWhenCLIOmitsPath(t *testing.T) {
	cwd := t.TempDir()
	sub := filepath.Join(cwd, "work")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatalf("建目录失败：%v", err)
	}
	writeJSON(t, cwd, `{"path":"work"}`)

	eff, err := LoadEffective(cwd, CLIArgs{})
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if eff.Path != sub {
		t.Fatalf("path 应取配置值（相对 cwd 解析）：%q != %q", eff.Path, sub)
	}
}

func TestLoadEffective_InvalidJSON(t *testing.T) {
	dir := t.TempDir()
	writeJSON(t, dir, `{not json`)

	_, err := LoadEffective(dir, CLIArgs{})
	if err == nil {
		t.Fatalf("期望失败")
	}
	if Code(err) != ErrCodeInvalid {
		t.Fatalf("期望 %s，实际 %q", ErrCodeInvalid, Code(err))
	}
}

func TestLoadEffective_InvalidProvider(t *testing.T) {
	dir := t.TempDir()
	writeJSON(t, dir, `{"provider":"gemoji"}`)

	_, err := LoadEffective(dir, CLIArgs{})
	if Code(err) != ErrCodeInvalid {
		t.Fatalf("非法 provider 应返回 %s：%v", ErrCodeInvalid, err)
	}

	// CLI 传入的非法 provider 同样拒绝。
	_, err = LoadEffective(t.TempDir(), CLIArgs{Provider: "x", ProviderSet: true})
	if Code(err) != ErrCodeInvalid {
		t.Fatalf("CLI 非法 provider 应返回 %s：%v", ErrCodeInvalid, err)
	}
}

func TestLoadEffective_InvalidURLs(t *testing.T) {
	for _, body := range []string{
		`{"shortcodes_url":"ftp://x/y"}`,
		`{"reflist_url":"not a url"}`,
		`{"chart_url":"//missing-scheme"}`,
	} {
		dir := t.TempDir()
		writeJSON(t, dir, body)
		_, err := LoadEffective(dir, CLIArgs{})
		if Code(err) != ErrCodeInvalid {
			t.Fatalf("配置 %s 应返回 %s：%v", body, ErrCodeInvalid, err)
		}
	}
}

func TestLoadEffective_ProxyAndURLsPassThrough(t *testing.T) {
	dir := t.TempDir()
	writeJSON(t, dir, `{
		"proxy": {"url": "http://127.0.0.1:7890"},
		"shortcodes_url": "https://mirror.example/emojis",
		"reflist_url": "https://mirror.example/reflist.txt",
		"chart_url": "https://mirror.example/full-emoji-list.html",
		"user_agent": "emotax-ci/1"
	}`)

	eff, err := LoadEffective(dir, CLIArgs{})
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if eff.ProxyURL != "http://127.0.0.1:7890" {
		t.Fatalf("proxy.url 未透传：%q", eff.ProxyURL)
	}
	if eff.ShortcodesURL != "https://mirror.example/emojis" ||
		eff.ReflistURL != "https://mirror.example/reflist.txt" ||
		eff.ChartURL != "https://mirror.example/full-emoji-list.html" {
		t.Fatalf("来源地址未透传：%+v", eff)
	}
	if eff.UserAgent != "emotax-ci/1" {
		t.Fatalf("user_agent 未透传：%q", eff.UserAgent)
	}
}

func TestCode_NonConfigError(t *testing.T) {
	if got := Code(errors.New("x")); got != "" {
		t.Fatalf("非 config.Error 应返回空串：%q", got)
	}
}
