package reflist

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// TitleCase 规范化类目标题：连字符变空格、空白折叠为单个空格、
// 每个以字母开头的词首字母大写（词的其余部分原样保留）。
//
// 非字母开头的词（例如 "&"）原样透传："smileys-&-emotion" => "Smileys & Emotion"。
func TitleCase(raw string) string {
	words := strings.Fields(strings.ReplaceAll(raw, "-", " "))
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		if unicode.IsLetter(r) {
			words[i] = string(unicode.ToUpper(r)) + w[size:]
		}
	}
	return strings.Join(words, " ")
}
