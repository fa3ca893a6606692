package parser

import (
	"regexp"
	"strings"
)

// headingKeywords 常见章节标题关键词，命中即强信号
var headingKeywords = []string{
	"experience", "education", "skills", "projects",
	"coursework", "certifications", "activities", "summary",
	"objective", "awards", "publications", "leadership",
	"extra-curricular", "extracurricular", "technical",
}

var (
	bulletPrefixRe = regexp.MustCompile(`^[•\-\*]\s*`)
	// 日期或日期范围，例如 "Aug. 2023"、"2021 – 2023"、"2022 - Present"
	headingDateRe  = regexp.MustCompile(`^[A-Z][a-z]{2,8}\.?\s+\d{4}|^\d{4}|\d{4}\s*[–-]\s*\d{4}|\d{4}\s*[–-]\s*[A-Z]`)
	contactNoiseRe = regexp.MustCompile(`[@+()]`)
	endPunctRe     = regexp.MustCompile(`[.,;]$`)
)

// IsHeading 判断单行文本是否为章节标题。
// 只依赖排版启发式，与标题具体内容无关；纯函数，无任何状态。
func IsHeading(line string) bool {
	stripped := strings.TrimSpace(line)
	if stripped == "" {
		return false
	}

	cleaned := bulletPrefixRe.ReplaceAllString(stripped, "")

	// 以项目符号开头且含冒号的是内容行，不是标题
	if (strings.HasPrefix(stripped, "•") || strings.HasPrefix(stripped, "-") || strings.HasPrefix(stripped, "*")) &&
		strings.Contains(stripped, ":") {
		return false
	}

	// 标题通常不超过5个词
	wordCount := len(strings.Fields(cleaned))
	if wordCount > 5 {
		return false
	}

	// 纯日期或日期范围
	if headingDateRe.MatchString(stripped) {
		return false
	}

	// 邮箱、电话、括号等联系信息噪声
	if contactNoiseRe.MatchString(stripped) {
		return false
	}

	// 以句读结尾的更像句子
	if endPunctRe.MatchString(stripped) {
		return false
	}

	lowerText := strings.ToLower(cleaned)
	hasKeyword := false
	for _, keyword := range headingKeywords {
		if strings.Contains(lowerText, keyword) {
			hasKeyword = true
			break
		}
	}

	// 全大写，例如 "EDUCATION"、"TECHNICAL SKILLS"
	if isAllUpper(cleaned) && wordCount <= 4 {
		return true
	}

	// 标题式大小写且含标题关键词
	if isTitleCase(cleaned) && hasKeyword {
		return true
	}

	// 本身就是某个关键词，大小写不限
	for _, keyword := range headingKeywords {
		if lowerText == keyword {
			return true
		}
	}

	return false
}

// isAllUpper 判断文本是否全大写（至少含一个字母）
func isAllUpper(s string) bool {
	hasLetter := false
	for _, r := range s {
		if r >= 'a' && r <= 'z' {
			return false
		}
		if r >= 'A' && r <= 'Z' {
			hasLetter = true
		}
	}
	return hasLetter
}

// isTitleCase 判断每个词是否首字母大写（忽略纯符号词）
func isTitleCase(s string) bool {
	words := strings.Fields(s)
	if len(words) == 0 {
		return false
	}
	hasLetter := false
	for _, w := range words {
		r := rune(w[0])
		if r >= 'a' && r <= 'z' {
			return false
		}
		if r >= 'A' && r <= 'Z' {
			hasLetter = true
			// 后续字符必须小写，全大写的词不算Title Case
			for _, c := range w[1:] {
				if c >= 'A' && c <= 'Z' {
					return false
				}
			}
		}
	}
	return hasLetter
}
