package parser

import (
	"strings"

	"job-match-go/internal/types"
)

// sectionKeywordRule 章节类型与其关键词表。
// 规则按声明顺序参与打分：同分时先声明者胜出，顺序本身即契约。
type sectionKeywordRule struct {
	Type     types.SectionType
	Keywords []string
}

// sectionKeywordRules 各章节类型的关键词打分表
var sectionKeywordRules = []sectionKeywordRule{
	{types.SectionSkills, []string{
		"skill", "technologies", "tools", "frameworks",
		"languages", "proficiencies", "technical", "programming",
	}},
	{types.SectionProjects, []string{
		"project", "application", "system", "platform",
		"developed", "built", "created",
	}},
	{types.SectionExperience, []string{
		"experience", "work", "intern", "employment",
		"position", "role", "job",
	}},
	{types.SectionEducation, []string{
		"education", "university", "degree", "school",
		"college", "bachelor", "master", "phd",
	}},
	{types.SectionCoursework, []string{
		"coursework", "courses", "subjects", "curriculum",
		"classes", "relevant coursework",
	}},
	{types.SectionCertifications, []string{
		"certification", "certificate", "licensed", "accredited",
	}},
	{types.SectionActivities, []string{
		"activities", "leadership", "extracurricular", "extra-curricular",
		"volunteer", "involvement",
	}},
}

// ClassifySection 根据标题和内容给章节打类型标签。
// 标题中出现 "coursework" 时无条件判为课程章节；
// 否则按关键词命中数取最高分，得分为0时归为 other。
func ClassifySection(heading, content string) types.SectionType {
	if strings.Contains(strings.ToLower(heading), "coursework") {
		return types.SectionCoursework
	}

	text := strings.ToLower(heading + " " + content)

	best := types.SectionOther
	bestScore := 0
	for _, rule := range sectionKeywordRules {
		score := 0
		for _, keyword := range rule.Keywords {
			if strings.Contains(text, keyword) {
				score++
			}
		}
		// 严格大于：同分时保持先声明的规则
		if score > bestScore {
			best = rule.Type
			bestScore = score
		}
	}

	return best
}
