package cache

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/John-Robertt/emotax/internal/infra/fsx"
)

// Store 提供 <path>/cache/sources/ 下的源数据缓存读写。
// 缓存保存获取到的原始字节（不重编码），既省一次网络，也可直接人工排查。
//
// 约束：
// - dry-run：只允许读（ReadOnly=true）
// - apply：允许写（ReadOnly=false）
type Store struct {
	Root     string // <path>（工作目录）
	ReadOnly bool
}

var ErrReadOnly = errors.New("cache: read-only")

func New(root string, readOnly bool) Store {
	return Store{
		Root:     filepath.Clean(strings.TrimSpace(root)),
		ReadOnly: readOnly,
	}
}

// SourcePath 返回某个源缓存文件的绝对路径。
func (s Store) SourcePath(name string) (string, error) {
	n, err := cleanName(name)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.Root, "cache", "sources", n), nil
}

// ReadSource 读取源缓存；不存在不算错误（exists=false）。
func (s Store) ReadSource(name string) ([]byte, bool, error) {
	path, err := s.SourcePath(name)
	if err != nil {
		return nil, false, err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return b, true, nil
}

// WriteSource 原子写入源缓存（覆盖旧值）。
func (s Store) WriteSource(name string, data []byte) error {
	if s.ReadOnly {
		return ErrReadOnly
	}
	n, err := cleanName(name)
	if err != nil {
		return err
	}
	dir := filepath.Join(s.Root, "cache", "sources")
	return fsx.WriteFileAtomicReplace(dir, n, data)
}

var sourceNameRE = regexp.MustCompile(`^[a-z0-9_.-]+$`)

func cleanName(name string) (string, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return "", fmt.Errorf("缓存名不能为空")
	}
	// 最小约束：避免路径穿越；缓存名由 run 层枚举给出，这里不做更多“聪明”处理。
	if !sourceNameRE.MatchString(name) || strings.Contains(name, "..") {
		return "", fmt.Errorf("非法缓存名：%q", name)
	}
	return name, nil
}
