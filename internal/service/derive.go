package service

import (
	"strings"
)

// ExcerptWords 摘要取前 25 个词
const ExcerptWords = 25

// ExcerptSuffix 摘要后缀，内容不足 25 词时同样追加
const ExcerptSuffix = "..."

// Slugify 标题转 slug：转小写，连续空白替换为单个 "-"，去掉 [A-Za-z0-9_-] 以外的字符。
// 结果可能为空，由调用方兜底。
func Slugify(title string) string {
	var b strings.Builder
	inSpace := false
	for _, r := range strings.ToLower(title) {
		if isSlugSpace(r) {
			if !inSpace {
				b.WriteByte('-')
			}
			inSpace = true
			continue
		}
		inSpace = false
		if isSlugRune(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// isSlugSpace 与 ECMAScript 的 \s 一致：不含 U+0085，含 U+FEFF
func isSlugSpace(r rune) bool {
	switch r {
	case '\t', '\n', '\v', '\f', '\r', ' ', 0x00A0, 0x1680, 0x2028, 0x2029, 0x202F, 0x205F, 0x3000, 0xFEFF:
		return true
	}
	return r >= 0x2000 && r <= 0x200A
}

func isSlugRune(r rune) bool {
	return r == '-' || r == '_' || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
}

// Excerpt 取内容前 ExcerptWords 个空白分隔的词，以单个空格拼接后追加 "..."
func Excerpt(content string) string {
	words := strings.Fields(content)
	if len(words) > ExcerptWords {
		words = words[:ExcerptWords]
	}
	return strings.Join(words, " ") + ExcerptSuffix
}

// NormalizeTags 逗号分隔的标签：去空白、转小写、丢弃空项、忽略大小写去重并保留首次出现顺序
func NormalizeTags(raw string) []string {
	tags := []string{}
	if raw == "" {
		return tags
	}
	seen := make(map[string]struct{})
	for _, part := range strings.Split(raw, ",") {
		tag := strings.ToLower(strings.TrimSpace(part))
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		tags = append(tags, tag)
	}
	return tags
}

// JoinTags 把标签列表拼回逗号分隔形式，和手工输入走同一条规范化路径
func JoinTags(tags []string) string {
	return strings.Join(tags, ",")
}
