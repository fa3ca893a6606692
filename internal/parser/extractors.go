package parser

import (
	"regexp"
	"strings"

	"job-match-go/internal/types"
)

var (
	bulletGlyphRe = regexp.MustCompile(`^[•◦\-\*]\s*`)
	techPrefixRe  = regexp.MustCompile(`^(Tech Stack:|Technologies:|Stack:|Built with:)\s*`)
	courseworkRe  = regexp.MustCompile(`(?i)^Relevant Coursework:\s*`)
	yearOnlyRe    = regexp.MustCompile(`^\d{4}$`)
	tabOrSpacesRe = regexp.MustCompile(`\t+|\s{2,}`)
)

// 不能作为项目标题开头的前缀（通常是技能分类行）
var nonTitlePrefixes = []string{"Languages:", "Programming", "Data Science", "Developer"}

// 与章节标题混淆的项目标题，直接丢弃
var headerLookalikes = map[string]bool{
	"projects":         true,
	"experience":       true,
	"technical skills": true,
}

// ExtractProjects 用行状态机从项目章节提取结构化项目记录。
// 标题行开启项目；显式 "Tech Stack:" 行或首个逗号分隔短行填充技术栈；
// 项目符号行累积进描述；空行关闭当前项目。
func ExtractProjects(content string) []types.Project {
	var projects []types.Project
	var current *types.Project
	seenTechStack := false

	closeCurrent := func() {
		if current != nil && current.Title != "" {
			projects = append(projects, *current)
		}
		current = nil
		seenTechStack = false
	}

	for _, line := range strings.Split(content, "\n") {
		stripped := strings.TrimSpace(line)

		if stripped == "" {
			closeCurrent()
			continue
		}

		// PDF提取残留的特殊字符
		if stripped == "§" || stripped == "(cid:239)" {
			continue
		}

		isBullet := strings.HasPrefix(stripped, "•") || strings.HasPrefix(stripped, "◦") ||
			strings.HasPrefix(stripped, "-") || strings.HasPrefix(stripped, "*")

		isTechExplicit := techPrefixRe.MatchString(stripped)

		isTechImplicit := !isBullet &&
			strings.Contains(stripped, ",") &&
			len(stripped) < 150 &&
			len(strings.Split(stripped, ",")) >= 2 &&
			!strings.HasSuffix(stripped, ".")

		wordCount := len(strings.Fields(stripped))
		looksLikeTitle := !isBullet && !isTechExplicit && !isTechImplicit &&
			startsUpper(stripped) &&
			wordCount >= 2 && wordCount <= 15 &&
			!strings.HasSuffix(stripped, ".") &&
			!hasAnyPrefix(stripped, nonTitlePrefixes)

		switch {
		case looksLikeTitle && current == nil:
			current = &types.Project{Title: stripped}
			seenTechStack = false

		case isTechExplicit && current != nil:
			current.Technologies = strings.TrimSpace(techPrefixRe.ReplaceAllString(stripped, ""))
			seenTechStack = true

		case isTechImplicit && current != nil && !seenTechStack:
			// 标题后的首个逗号分隔短行视为隐式技术栈，每个项目至多一次
			current.Technologies = stripped
			seenTechStack = true

		case isBullet && current != nil:
			descLine := bulletGlyphRe.ReplaceAllString(stripped, "")
			if current.Description != "" {
				current.Description += " "
			}
			current.Description += descLine

		case current != nil && current.Description != "":
			// 上一条描述的折行延续
			current.Description += " " + stripped
		}
	}

	closeCurrent()

	// 最终校验：过滤单词标题、小写开头标题和章节标题冒充者
	valid := make([]types.Project, 0, len(projects))
	for _, proj := range projects {
		if len(strings.Fields(proj.Title)) < 2 {
			continue
		}
		if !startsUpper(proj.Title) {
			continue
		}
		if headerLookalikes[strings.ToLower(proj.Title)] {
			continue
		}
		valid = append(valid, proj)
	}

	return valid
}

// 学位/成绩关键词
var degreeKeywords = []string{
	"bachelor", "master", "phd", "b.tech", "m.tech",
	"b.s.", "m.s.", "b.a.", "m.a.", "cgpa", "gpa", "%",
}

// 院校指示词
var institutionKeywords = []string{"institute", "university", "school", "college", "academy"}

// ExtractEducation 用关键词类驱动的行状态机从教育章节提取记录。
// 院校行开启条目，学位行累积进 Degree，毕业年份及其余行累积进 Details。
func ExtractEducation(content string) []types.Education {
	var education []types.Education
	var current *types.Education

	for _, line := range strings.Split(content, "\n") {
		stripped := strings.TrimSpace(line)
		if stripped == "" {
			continue
		}

		lower := strings.ToLower(stripped)

		hasDegreeInfo := false
		for _, keyword := range degreeKeywords {
			if strings.Contains(lower, keyword) {
				hasDegreeInfo = true
				break
			}
		}

		isGraduationInfo := strings.Contains(lower, "graduation") ||
			strings.Contains(lower, "expected") ||
			yearOnlyRe.MatchString(stripped)

		hasInstitutionKeyword := false
		for _, keyword := range institutionKeywords {
			if strings.Contains(lower, keyword) {
				hasInstitutionKeyword = true
				break
			}
		}
		looksLikeInstitution := hasInstitutionKeyword ||
			(isTitleCase(stripped) && len(strings.Fields(stripped)) >= 2 && !hasDegreeInfo)

		switch {
		case looksLikeInstitution && current == nil:
			current = &types.Education{Institution: stripped}

		case current != nil && hasDegreeInfo:
			if current.Degree != "" {
				current.Degree += " "
			}
			current.Degree += stripped

		case current != nil && isGraduationInfo:
			if current.Details != "" {
				current.Details += " "
			}
			current.Details += stripped

		case current != nil:
			if current.Details != "" {
				current.Details += " "
			}
			current.Details += stripped
		}
	}

	if current != nil {
		education = append(education, *current)
	}

	return education
}

// ExtractCoursework 从课程章节提取课程名列表。
// 含逗号时按逗号切分，否则按行切分；行内的制表符或多空格串再做二次切分。
// 超过10个词的候选视为句子而非课程名，丢弃。
func ExtractCoursework(content string) []string {
	var courses []string

	content = courseworkRe.ReplaceAllString(content, "")

	appendCourse := func(candidate string) {
		cleaned := bulletGlyphRe.ReplaceAllString(strings.TrimSpace(candidate), "")
		if cleaned == "" {
			return
		}
		if len(strings.Fields(cleaned)) <= 10 {
			courses = append(courses, cleaned)
		}
	}

	if strings.Contains(content, ",") {
		for _, part := range strings.Split(content, ",") {
			appendCourse(part)
		}
		return courses
	}

	for _, line := range strings.Split(content, "\n") {
		stripped := strings.TrimSpace(line)
		if stripped == "" {
			continue
		}
		cleaned := bulletGlyphRe.ReplaceAllString(stripped, "")
		if cleaned == "" {
			continue
		}

		if strings.Contains(cleaned, "\t") || strings.Contains(cleaned, "  ") {
			for _, part := range tabOrSpacesRe.Split(cleaned, -1) {
				appendCourse(part)
			}
		} else {
			appendCourse(cleaned)
		}
	}

	return courses
}

// startsUpper 判断首字符是否为大写字母
func startsUpper(s string) bool {
	if s == "" {
		return false
	}
	r := rune(s[0])
	return r >= 'A' && r <= 'Z'
}

// hasAnyPrefix 判断是否以任一前缀开头
func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}
