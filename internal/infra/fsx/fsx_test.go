package fsx

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestWriteFileAtomicReplace_CreatesAndReplaces(t *testing.T) {
	dir := t.TempDir()

	if err := WriteFileAtomicReplace(dir, "taxonomy.json", []byte("v1")); err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	b, err := os.ReadFile(filepath.Join(dir, "taxonomy.json"))
	if err != nil || string(b) != "v1" {
		t.Fatalf("首次写入不符合预期：%q err=%v", b, err)
	}

	if err := WriteFileAtomicReplace(dir, "taxonomy.json", []byte("v2")); err != nil {
		t.Fatalf("覆盖写入不期望错误：%v", err)
	}
	b, _ = os.ReadFile(filepath.Join(dir, "taxonomy.json"))
	if string(b) != "v2" {
		t.Fatalf("覆盖后内容不符合预期：%q", b)
	}

	// 不应留下临时文件。
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("读目录失败：%v", err)
	}
	for _, e := range entries {
		if strings.Contains(e.Name(), ".tmp-") {
			t.Fatalf("遗留临时文件：%s", e.Name())
		}
	}
}

func TestWriteFileAtomicReplace_MakesParentDirs(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out", "nested")
	if err := WriteFileAtomicReplace(dir, "x.json", []byte("{}")); err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "x.json")); err != nil {
		t.Fatalf("文件未写入：%v", err)
	}
}

func TestWriteFileAtomicReplace_DirConflict(t *testing.T) {
	dir := t.TempDir()
	if err := os.Mkdir(filepath.Join(dir, "taxonomy.json"), 0o755); err != nil {
		t.Fatalf("准备目录失败：%v", err)
	}

	err := WriteFileAtomicReplace(dir, "taxonomy.json", []byte("x"))
	if !IsPathTypeConflict(err) {
		t.Fatalf("期望 PathTypeConflictError，实际 %v", err)
	}
}
