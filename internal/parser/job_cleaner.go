package parser

import (
	"regexp"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"job-match-go/internal/types"
)

// 岗位级别判定关键词，按优先级顺序匹配
var (
	internTitleKeywords = []string{"intern", "internship", "student", "co-op"}
	entryKeywords       = []string{"junior", "entry", "graduate", "associate", "new grad", "0-2 years"}
	seniorTitleKeywords = []string{"senior", "sr.", "sr ", "lead", "principal", "staff", "7+ years", "8+ years"}
	leadTitleKeywords   = []string{"lead", "principal", "staff", "architect", "director", "10+ years"}
)

var htmlTagHintRe = regexp.MustCompile(`</?\w+[^>]*>|&[a-z]+;|&#\d+;`)

// StripHTML 剥离岗位描述中的HTML标记，非HTML文本原样返回
func StripHTML(text string) string {
	if !htmlTagHintRe.MatchString(text) {
		return text
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(text))
	if err != nil {
		return text
	}
	return doc.Text()
}

// CleanJobDescription 剥离HTML后做空白归一化
func CleanJobDescription(text string) string {
	return NormalizeWhitespace(StripHTML(text))
}

// ClassifyJobLevel 按固定顺序的规则判定岗位级别。
// 规则命中即返回，未命中任何规则时归为中级。
func ClassifyJobLevel(title, description string) types.ExperienceLevel {
	titleLower := strings.ToLower(title)
	combined := titleLower + " " + strings.ToLower(description)

	// 1. 标题含实习词 → 学生岗
	for _, kw := range internTitleKeywords {
		if strings.Contains(titleLower, kw) {
			return types.LevelStudent
		}
	}

	// 2. 标题或描述含初级词 → 初级岗
	for _, kw := range entryKeywords {
		if strings.Contains(combined, kw) {
			return types.LevelEntry
		}
	}

	// 3. 标题含高级词 → 高级岗
	for _, kw := range seniorTitleKeywords {
		if strings.Contains(titleLower, kw) {
			return types.LevelSenior
		}
	}

	// 4. 标题含专家/管理词 → 专家岗
	for _, kw := range leadTitleKeywords {
		if strings.Contains(titleLower, kw) {
			return types.LevelLead
		}
	}

	return types.LevelMid
}

// ExtractJobKeywords 从岗位描述提取技术关键词，用于倒排缓存。
// 只认白名单技能词和技术缩写，不跑完整的技能提取策略。
func ExtractJobKeywords(title, description string) []string {
	combined := strings.ToLower(title + " " + description)
	found := make(map[string]bool)

	for skill := range knownSkills {
		re, err := regexp.Compile(`\b` + regexp.QuoteMeta(skill) + `\b`)
		if err != nil {
			continue
		}
		if re.MatchString(combined) {
			found[skill] = true
		}
	}

	for _, acronym := range acronymRe.FindAllString(title+" "+description, -1) {
		lower := strings.ToLower(acronym)
		if !nonSkillTerms[lower] {
			found[lower] = true
		}
	}

	keywords := make([]string, 0, len(found))
	for kw := range found {
		keywords = append(keywords, kw)
	}
	sort.Strings(keywords)
	return keywords
}
