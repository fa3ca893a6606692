package parser

import (
	"context"
	"regexp"
	"sort"
	"strings"
)

// EntityRecognizer 命名实体识别能力，由外部语言模型提供。
// 只消费 PRODUCT 类实体（工具、软件、设备名）。
type EntityRecognizer interface {
	// RecognizeProducts 返回文本中识别出的产品类实体
	RecognizeProducts(ctx context.Context, text string) ([]string, error)
}

// NoopEntityRecognizer 空实现，未接入NER模型时使用
type NoopEntityRecognizer struct{}

// RecognizeProducts 恒返回空结果
func (NoopEntityRecognizer) RecognizeProducts(ctx context.Context, text string) ([]string, error) {
	return nil, nil
}

// nonSkillTerms 非技能词黑名单：月份、星期、地名、简历章节词、泛化形容词等
var nonSkillTerms = map[string]bool{}

func init() {
	for _, term := range []string{
		// 月份
		"january", "february", "march", "april", "may", "june", "july",
		"august", "september", "october", "november", "december",
		"jan", "feb", "mar", "apr", "jun", "jul", "aug", "sep", "oct", "nov", "dec",
		// 星期
		"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday",
		"mon", "tue", "wed", "thu", "fri", "sat", "sun",
		// 常见地名
		"karnataka", "pradesh", "uttar", "delhi", "mumbai", "bangalore", "chennai",
		"manipal", "lucknow", "city", "state", "country",
		// 简历章节词和分类标题词
		"experience", "education", "projects", "summary", "objective",
		"skill", "skills", "tools", "technologies", "technology",
		"languages", "frameworks", "platforms",
		"profile", "background", "qualifications", "certifications", "awards",
		"references", "activities", "coursework", "relevant",
		"extra-curricular", "extracurricular",
		// 常见简历用词
		"present", "intern", "internship", "bachelor", "master", "degree",
		"university", "college", "school", "institute",
		"cgpa", "gpa", "percentage", "place", "first", "second", "third",
		// 泛化描述词
		"end-to-end", "real-time", "low-latency", "format-agnostic",
		"multi-class", "best", "good", "excellent", "strong", "weak",
		"high", "low", "big", "small", "large", "new", "old",
		// 角色/头衔类
		"student", "campus", "ambassador", "coordinator",
		"hackathon", "national", "level", "qualified", "competitions",
		// 可能泄漏的分类标题
		"programming languages", "developer tools", "data science",
	} {
		nonSkillTerms[term] = true
	}
}

// knownSkills 常见技术词白名单，即使小写开头也保留
var knownSkills = map[string]bool{}

func init() {
	for _, term := range []string{
		"python", "java", "javascript", "c++", "c#", "c", "r", "html", "css", "php", "sql",
		"ruby", "go", "rust", "swift", "kotlin", "scala", "perl", "bash", "shell",
		"git", "github", "gitlab", "linux", "unix", "windows", "docker", "kubernetes",
		"hadoop", "spark", "kafka", "redis", "mongodb", "postgresql", "mysql", "oracle",
		"numpy", "pandas", "scipy", "matplotlib", "sklearn", "tensorflow", "pytorch", "keras",
		"opencv", "pyspark", "fastapi", "flask", "django", "react", "angular", "vue",
		"node.js", "express", "spring", "hibernate", "aws", "azure", "gcp",
		"faiss", "streamlit", "tableau", "powerbi", "excel", "jira", "confluence",
	} {
		knownSkills[term] = true
	}
}

// skillCategoryKeywords 判定 "分类: 条目列表" 行是否为技能分类
var skillCategoryKeywords = []string{
	"skill", "language", "tool", "platform", "technology", "technologie",
	"framework", "library", "software", "certification", "qualification",
	"competenc", "proficienc", "expertise", "programming", "developer",
	"data science", "ml", "method", "technique",
}

var (
	categoryLineRe = regexp.MustCompile(`^([^:]+):\s*(.+)$`)
	itemSplitRe    = regexp.MustCompile(`[,;]`)
	wsRunRe        = regexp.MustCompile(`\s+`)

	// 技能语境句的触发模式
	skillContextRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(?:proficient|skilled|experienced|expert|knowledge)\s+(?:in|with|of)`),
		regexp.MustCompile(`(?i)(?:using|utilizing|applying|working with|implemented)`),
		regexp.MustCompile(`(?i)(?:skills?|tools?|technologies?|platforms?):\s*`),
		regexp.MustCompile(`(?i)(?:certified|trained|licensed)\s+(?:in|for)`),
	}

	// 动作语境短语，捕获组为技能对象
	actionPhraseRes = []*regexp.Regexp{
		regexp.MustCompile(`(?:proficient|skilled|experienced|expert)\s+(?:in|with)\s+([A-Z][A-Za-z0-9+#\-.]*(?:\s+[A-Za-z0-9+#\-.]+)*?)(?:\s*[,;.]|\s+and\s|\s+or\s|$)`),
		regexp.MustCompile(`(?:experience|expertise|knowledge)\s+(?:in|with|of)\s+([A-Z][A-Za-z0-9+#\-.]*(?:\s+[A-Za-z0-9+#\-.]+)*?)(?:\s*[,;.]|\s+and\s|$)`),
		regexp.MustCompile(`(?:using|utilizing|implemented)\s+([A-Z][A-Za-z0-9+#\-.]*(?:\s+[A-Za-z0-9+#\-.]+)*?)(?:\s*[,;.]|\s+and\s|\s+for\s|\s+to\s|$)`),
		regexp.MustCompile(`(?:certified|trained)\s+(?:in|for)\s+([A-Z][A-Za-z0-9\-.]*(?:\s+[A-Za-z0-9\-.]+)*?)(?:\s*[,;.]|$)`),
	}

	acronymRe      = regexp.MustCompile(`\b[A-Z]{2,8}\b`)
	acronymSignal  = regexp.MustCompile(`(?i)skills?|tools?|technologies?|platforms?|languages?|using|with|implemented|science|ml|developer`)
	camelCaseRe    = regexp.MustCompile(`\b[A-Z][a-z]*[A-Z][A-Za-z]*\b`)
	sentenceRe     = regexp.MustCompile(`[^.!?\n]+[.!?]?`)
	yearDigitsRe   = regexp.MustCompile(`\d{4}`)
	pureNumberRe   = regexp.MustCompile(`^\d+$`)
	hasLetterRe    = regexp.MustCompile(`[a-zA-Z]`)
	badPunctRe     = regexp.MustCompile(`[§•()\[\]{}@$%^&*]`)
	monthPrefixRe  = regexp.MustCompile(`^[a-z]+\s+(january|february|march|april|may|june|july|august|september|october|november|december|jan|feb|mar|apr|jun|jul|aug|sep|oct|nov|dec)\.?$`)
)

// months 月份全称与缩写
var months = []string{
	"january", "february", "march", "april", "may", "june", "july",
	"august", "september", "october", "november", "december",
	"jan", "feb", "mar", "apr", "jun", "jul", "aug", "sep", "oct", "nov", "dec",
}

// locationIndicators 地名指示词
var locationIndicators = []string{"pradesh", "karnataka", "city", "district", "state"}

// isDateOrLocationFragment 判断候选是否为日期片段或地名
func isDateOrLocationFragment(text string) bool {
	lower := strings.ToLower(strings.TrimSpace(text))

	for _, m := range months {
		if lower == m {
			return true
		}
	}

	if pureNumberRe.MatchString(lower) && len(lower) == 4 {
		return true
	}

	// 含年份的短片段，例如 "Aug 2023"
	if yearDigitsRe.MatchString(lower) && len(strings.Fields(lower)) <= 3 {
		return true
	}

	for _, ind := range locationIndicators {
		if strings.Contains(lower, ind) {
			return true
		}
	}

	// "Karnataka Aug" 这类地名+月份组合
	if monthPrefixRe.MatchString(lower) {
		return true
	}

	return false
}

// SkillExtractor 领域无关的技能提取器。
// 六个独立策略在全文上运行，结果取并集后过一道共享过滤器。
type SkillExtractor struct {
	recognizer EntityRecognizer
}

// NewSkillExtractor 创建技能提取器，recognizer 为 nil 时使用空实现
func NewSkillExtractor(recognizer EntityRecognizer) *SkillExtractor {
	if recognizer == nil {
		recognizer = NoopEntityRecognizer{}
	}
	return &SkillExtractor{recognizer: recognizer}
}

// Extract 提取去重、排序、小写化的技能列表
func (e *SkillExtractor) Extract(ctx context.Context, text string) []string {
	all := make(map[string]bool)

	merge := func(skills map[string]bool) {
		for s := range skills {
			all[s] = true
		}
	}

	// 策略1: 显式技能列表行（最可靠）
	merge(extractFromSkillListings(text))
	// 策略2: 技能语境句中的专有名词
	merge(extractProperNounsInSkillContext(text))
	// 策略3: 动作语境短语
	merge(extractFromActionContexts(text))
	// 策略4: 语言模型识别的产品实体
	merge(e.extractNamedEntities(ctx, text))
	// 策略5: 技能信号附近的全大写缩写词
	merge(extractTechnicalAcronyms(text))
	// 策略6: CamelCase复合词
	merge(extractCamelCaseTerms(text))

	return cleanAndFilterSkills(all)
}

// ExtractWithContext 提取技能并附带其出现的句子（每个技能至多3句）
func (e *SkillExtractor) ExtractWithContext(ctx context.Context, text string) map[string][]string {
	skills := e.Extract(ctx, text)
	result := make(map[string][]string)

	sentences := sentenceRe.FindAllString(text, -1)
	for _, skill := range skills {
		re, err := regexp.Compile(`(?i)\b` + regexp.QuoteMeta(skill) + `\b`)
		if err != nil {
			continue
		}
		for _, sent := range sentences {
			if re.MatchString(sent) {
				if len(result[skill]) < 3 {
					result[skill] = append(result[skill], strings.TrimSpace(sent))
				}
			}
		}
	}

	return result
}

// isSkillCategory 判断分类名是否为技能类分类
func isSkillCategory(category string) bool {
	for _, keyword := range skillCategoryKeywords {
		if strings.Contains(category, keyword) {
			return true
		}
	}
	return false
}

// extractFromSkillListings 策略1: 匹配技能分类列表。
// 两种排版都识别："分类: 条目, 条目, …" 单行式，
// 以及分类标题独占一行、逗号分隔的条目在后续行的块式。
func extractFromSkillListings(text string) map[string]bool {
	skills := make(map[string]bool)

	addItems := func(itemsStr string) {
		for _, part := range itemSplitRe.Split(itemsStr, -1) {
			cleaned := bulletGlyphRe.ReplaceAllString(strings.TrimSpace(part), "")
			cleaned = wsRunRe.ReplaceAllString(cleaned, " ")
			if cleaned == "" {
				continue
			}
			wordCount := len(strings.Fields(cleaned))
			if wordCount >= 1 && wordCount <= 5 && !isDateOrLocationFragment(cleaned) {
				skills[cleaned] = true
			}
		}
	}

	inSkillBlock := false
	for _, line := range strings.Split(text, "\n") {
		stripped := strings.TrimSpace(line)

		if match := categoryLineRe.FindStringSubmatch(stripped); match != nil {
			inSkillBlock = false
			category := strings.ToLower(strings.TrimSpace(match[1]))
			itemsStr := strings.TrimSpace(match[2])
			if isSkillCategory(category) && itemsStr != "" {
				addItems(itemsStr)
			}
			continue
		}

		// 独立分类标题行，例如 "SKILLS"、"Technical Skills"
		if len(strings.Fields(stripped)) <= 3 && !strings.Contains(stripped, ",") &&
			isSkillCategory(strings.ToLower(stripped)) {
			inSkillBlock = true
			continue
		}

		// 分类标题下的逗号分隔条目行
		if inSkillBlock && strings.Contains(stripped, ",") {
			addItems(stripped)
			continue
		}

		inSkillBlock = false
	}

	return skills
}

// extractProperNounsInSkillContext 策略2: 只在技能语境句中提取专有名词短语
func extractProperNounsInSkillContext(text string) map[string]bool {
	skills := make(map[string]bool)

	for _, sent := range sentenceRe.FindAllString(text, -1) {
		inContext := false
		for _, re := range skillContextRes {
			if re.MatchString(sent) {
				inContext = true
				break
			}
		}
		if !inContext {
			continue
		}

		words := strings.Fields(sent)
		for i := 0; i < len(words); i++ {
			token := strings.Trim(words[i], ",.;:")

			// 全大写缩写词 (2-8字符，FAISS、NLP这类)
			if isAllUpper(token) && len(token) >= 2 && len(token) <= 8 {
				if !nonSkillTerms[strings.ToLower(token)] && !isDateOrLocationFragment(token) {
					skills[token] = true
				}
			}

			// 大写开头的词串，不能位于句首
			if i == 0 || !startsUpper(token) || len(token) <= 2 {
				continue
			}
			run := []string{token}
			j := i + 1
			for j < len(words) && len(run) < 4 {
				next := strings.Trim(words[j], ",.;:")
				if !startsUpper(next) {
					break
				}
				run = append(run, next)
				// 原词带句读说明短语到此为止
				if next != words[j] {
					j++
					break
				}
				j++
			}
			phrase := strings.Join(run, " ")
			if !nonSkillTerms[strings.ToLower(phrase)] && !isDateOrLocationFragment(phrase) && len(run) <= 4 {
				skills[phrase] = true
			}
			i = j - 1
		}
	}

	return skills
}

// extractFromActionContexts 策略3: 显式动作语境中的技能提及
func extractFromActionContexts(text string) map[string]bool {
	skills := make(map[string]bool)

	for _, re := range actionPhraseRes {
		for _, match := range re.FindAllStringSubmatch(text, -1) {
			skill := strings.TrimSpace(match[1])
			if skill == "" || nonSkillTerms[strings.ToLower(skill)] || isDateOrLocationFragment(skill) {
				continue
			}
			wordCount := len(strings.Fields(skill))
			if wordCount >= 1 && wordCount <= 5 {
				skills[skill] = true
			}
		}
	}

	return skills
}

// extractNamedEntities 策略4: 外部模型识别的产品类实体
func (e *SkillExtractor) extractNamedEntities(ctx context.Context, text string) map[string]bool {
	skills := make(map[string]bool)

	entities, err := e.recognizer.RecognizeProducts(ctx, text)
	if err != nil {
		// NER失败不致命，其余策略继续兜底
		return skills
	}

	for _, ent := range entities {
		ent = strings.TrimSpace(ent)
		if nonSkillTerms[strings.ToLower(ent)] || isDateOrLocationFragment(ent) {
			continue
		}
		if len(strings.Fields(ent)) > 5 || len(ent) < 2 {
			continue
		}
		skills[ent] = true
	}

	return skills
}

// extractTechnicalAcronyms 策略5: 同一行内出现技能信号词的全大写缩写
func extractTechnicalAcronyms(text string) map[string]bool {
	skills := make(map[string]bool)

	for _, line := range strings.Split(text, "\n") {
		if !acronymSignal.MatchString(line) {
			continue
		}
		for _, acronym := range acronymRe.FindAllString(line, -1) {
			if nonSkillTerms[strings.ToLower(acronym)] {
				continue
			}
			skills[acronym] = true
		}
	}

	return skills
}

// extractCamelCaseTerms 策略6: CamelCase复合词，例如 OpenCV、PyTorch
func extractCamelCaseTerms(text string) map[string]bool {
	skills := make(map[string]bool)

	for _, term := range camelCaseRe.FindAllString(text, -1) {
		if nonSkillTerms[strings.ToLower(term)] || isDateOrLocationFragment(term) {
			continue
		}
		if len(term) >= 2 && len(term) <= 20 {
			skills[term] = true
		}
	}

	return skills
}

// cleanAndFilterSkills 共享过滤器：去噪、白名单放行、排序输出
func cleanAndFilterSkills(skills map[string]bool) []string {
	cleaned := make(map[string]bool)

	for skill := range skills {
		skill = wsRunRe.ReplaceAllString(strings.TrimSpace(skill), " ")
		if skill == "" {
			continue
		}

		lower := strings.ToLower(skill)
		if nonSkillTerms[lower] {
			continue
		}
		if isDateOrLocationFragment(skill) {
			continue
		}
		// 保留 + # - / . 以外的符号都视为噪声
		if badPunctRe.MatchString(skill) {
			continue
		}
		if len(strings.Fields(skill)) > 6 {
			continue
		}
		if !hasLetterRe.MatchString(skill) {
			continue
		}
		if pureNumberRe.MatchString(skill) {
			continue
		}
		// 单字符只认 c 和 r
		if len(skill) == 1 && lower != "c" && lower != "r" {
			continue
		}

		// 白名单技能直接放行
		if knownSkills[lower] {
			cleaned[lower] = true
			continue
		}

		// 未知技能从严：小写开头且不含 - / . 的多半是句子片段
		first := rune(skill[0])
		if first >= 'a' && first <= 'z' &&
			!strings.Contains(skill, "-") && !strings.Contains(skill, "/") && !strings.Contains(skill, ".") {
			continue
		}

		cleaned[lower] = true
	}

	result := make([]string, 0, len(cleaned))
	for skill := range cleaned {
		result = append(result, skill)
	}
	sort.Strings(result)
	return result
}
