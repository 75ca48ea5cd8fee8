package httpx

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNewClient_ProxyDisablesKeepAlive(t *testing.T) {
	c, err := NewClient("http://127.0.0.1:8080", "")
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	tr, ok := c.Transport.(*Transport)
	if !ok {
		t.Fatalf("期望 *Transport，实际 %T", c.Transport)
	}
	if tr.Base.Proxy == nil {
		t.Fatalf("期望启用代理，但 Proxy=nil")
	}
	if !tr.Base.DisableKeepAlives {
		t.Fatalf("期望禁用 keep-alive，但 Base.DisableKeepAlives=false")
	}
	if !tr.DisableKeepAlives {
		t.Fatalf("期望设置 Request.Close=true 的额外保险，但 DisableKeepAlives=false")
	}
}

func TestNewClient_NoProxyKeepsDefault(t *testing.T) {
	c, err := NewClient("", "")
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	tr, ok := c.Transport.(*Transport)
	if !ok {
		t.Fatalf("期望 *Transport，实际 %T", c.Transport)
	}
	if tr.Base.Proxy != nil {
		t.Fatalf("不期望启用代理，但 Proxy!=nil")
	}
	if tr.Base.DisableKeepAlives {
		t.Fatalf("不期望禁用 keep-alive，但 Base.DisableKeepAlives=true")
	}
}

func TestTransport_InjectsUserAgent(t *testing.T) {
	var gotUA []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = append(gotUA, r.Header.Get("User-Agent"))
	}))
	defer srv.Close()

	c, err := NewClient("", "custom-tool/9.9")
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}

	req, _ := http.NewRequestWithContext(context.Background(), http.MethodGet, srv.URL, nil)
	resp, err := c.Do(req)
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	resp.Body.Close()

	if len(gotUA) != 1 || gotUA[0] != "custom-tool/9.9" {
		t.Fatalf("UA 注入不符合预期：%v", gotUA)
	}

	// 请求显式携带 UA 时不得覆盖。
	req2, _ := http.NewRequestWithContext(context.Background(), http.MethodGet, srv.URL, nil)
	req2.Header.Set("User-Agent", "explicit/1.0")
	resp2, err := c.Do(req2)
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	resp2.Body.Close()
	if gotUA[1] != "explicit/1.0" {
		t.Fatalf("显式 UA 被覆盖：%q", gotUA[1])
	}
}

func TestTransport_DefaultUserAgentFallback(t *testing.T) {
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("User-Agent")
	}))
	defer srv.Close()

	c, err := NewClient("", "   ")
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	resp, err := c.Get(srv.URL)
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	resp.Body.Close()
	if got != DefaultUserAgent {
		t.Fatalf("期望默认 UA，实际 %q", got)
	}
}
