package parser

import (
	"regexp"
	"strings"
)

var (
	multiBlankRe = regexp.MustCompile(`\n{3,}`)
	spaceRunRe   = regexp.MustCompile(`[ \t]+`)
	cidArtifact  = regexp.MustCompile(`\(cid:\d+\)`)
)

// NormalizeWhitespace 压缩空白：连续空行合并为一个空行，行内空白折叠为单个空格
func NormalizeWhitespace(text string) string {
	text = multiBlankRe.ReplaceAllString(text, "\n\n")
	text = spaceRunRe.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// FixBrokenLines 合并被PDF换行打断的句子：
// 上一行不以句号/冒号结尾、当前行以小写字母开头时拼接到上一行。
func FixBrokenLines(text string) string {
	lines := strings.Split(text, "\n")
	fixed := make([]string, 0, len(lines))

	for _, line := range lines {
		if len(fixed) > 0 && line != "" {
			prev := fixed[len(fixed)-1]
			first := rune(line[0])
			if prev != "" && !strings.HasSuffix(prev, ".") && !strings.HasSuffix(prev, ":") &&
				first >= 'a' && first <= 'z' {
				fixed[len(fixed)-1] = prev + " " + line
				continue
			}
		}
		fixed = append(fixed, line)
	}

	return strings.Join(fixed, "\n")
}

// CleanText 简历文本的标准预处理流程
func CleanText(text string) string {
	text = cidArtifact.ReplaceAllString(text, "")
	text = NormalizeWhitespace(text)
	text = FixBrokenLines(text)
	return text
}
