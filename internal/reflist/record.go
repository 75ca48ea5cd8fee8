package reflist

import "io"

// Record 是参考清单的一条记录（文档序）。
//
// 密封变体：只存在三种形态，顺序有语义——Category 重置上下文，
// Subcategory 收窄上下文，Emoji 归属于最近一次出现的 (Category, Subcategory)。
type Record interface{ isRecord() }

type CategoryRecord struct {
	Title string
}

func (CategoryRecord) isRecord() {}

type SubcategoryRecord struct {
	Title string
}

func (SubcategoryRecord) isRecord() {}

type EmojiRecord struct {
	// Literal 是已解码的字符序列（可能含 VS/ZWJ）。
	Literal string
}

func (EmojiRecord) isRecord() {}

// Reader 以惰性、有限、一次性的方式产出 Record；读尽返回 io.EOF。
// 消费方不得假设可以重启：Scanner 与 SliceReader 都只能走一遍。
type Reader interface {
	Next() (Record, error)
}

// SliceReader 把已物化的记录列表包装为 Reader（chart provider 用）。
type SliceReader struct {
	recs []Record
	i    int
}

func NewSliceReader(recs []Record) *SliceReader {
	return &SliceReader{recs: recs}
}

func (r *SliceReader) Next() (Record, error) {
	if r.i >= len(r.recs) {
		return nil, io.EOF
	}
	rec := r.recs[r.i]
	r.i++
	return rec, nil
}
