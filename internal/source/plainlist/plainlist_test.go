package plainlist

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/John-Robertt/emotax/internal/reflist"
)

func TestFetch_UsesConfiguredURL(t *testing.T) {
	body := "## smileys-&-emotion\n# face-smiling\n1f600\tgrinning face\n"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, body)
	}))
	defer srv.Close()

	p := Provider{URL: srv.URL}
	raw, srcURL, err := p.Fetch(context.Background(), srv.Client())
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if srcURL != srv.URL {
		t.Fatalf("srcURL 不符合预期：%q", srcURL)
	}
	if string(raw) != body {
		t.Fatalf("raw 不符合预期：%q", raw)
	}
}

func TestParse_ProducesRecords(t *testing.T) {
	raw := []byte("## smileys-&-emotion\n# face-smiling\n1f600\tgrinning face\n")
	rd, err := Provider{}.Parse(raw)
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}

	rec, err := rd.Next()
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if c, ok := rec.(reflist.CategoryRecord); !ok || c.Title != "Smileys & Emotion" {
		t.Fatalf("首条记录不符合预期：%+v", rec)
	}

	var n int
	for {
		if _, err := rd.Next(); errors.Is(err, io.EOF) {
			break
		} else if err != nil {
			t.Fatalf("不期望错误：%v", err)
		}
		n++
	}
	if n != 2 {
		t.Fatalf("期望后续 2 条记录，实际 %d", n)
	}
}

func TestParse_RejectsNonList(t *testing.T) {
	if _, err := (Provider{}).Parse([]byte("<html>not a list</html>")); err == nil {
		t.Fatalf("期望错误，但得到 nil")
	}
	if _, err := (Provider{}).Parse([]byte("   \n\n")); err == nil {
		t.Fatalf("空内容应报错")
	}
}
