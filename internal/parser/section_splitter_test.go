package parser

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"job-match-go/internal/types"
)

// TestSplitIntoSectionsBasic 验证标题切分和隐式头部章节
func TestSplitIntoSectionsBasic(t *testing.T) {
	text := "Jane Doe\njane@x.com\nEDUCATION\nSome University\nBachelor of Science\nSKILLS\nPython, SQL"

	sections := SplitIntoSections(text)
	require.Len(t, sections, 3, "应切分出3个章节")

	assert.Equal(t, HeaderSectionName, sections[0].Heading)
	assert.Equal(t, "Jane Doe\njane@x.com", sections[0].Content)
	assert.Equal(t, 0, sections[0].Order)

	assert.Equal(t, "EDUCATION", sections[1].Heading)
	assert.Equal(t, "Some University\nBachelor of Science", sections[1].Content)

	assert.Equal(t, "SKILLS", sections[2].Heading)
	assert.Equal(t, "Python, SQL", sections[2].Content)
}

// TestSplitIntoSectionsRoundTrip 验证章节内容与消费掉的标题行能还原原始行序列
func TestSplitIntoSectionsRoundTrip(t *testing.T) {
	// 选用不触发首尾空白裁剪的文档，保证还原是逐行精确的
	lines := []string{
		"Jane Doe",
		"EDUCATION",
		"Some University",
		"SKILLS",
		"Python, SQL",
		"PROJECTS",
		"Chat Application",
	}
	text := strings.Join(lines, "\n")

	sections := SplitIntoSections(text)

	var rebuilt []string
	for _, section := range sections {
		if section.Heading != HeaderSectionName {
			rebuilt = append(rebuilt, section.Heading)
		}
		rebuilt = append(rebuilt, strings.Split(section.Content, "\n")...)
	}

	assert.Equal(t, lines, rebuilt, "章节内容加标题行应还原原始行序列")
}

// TestSplitIntoSectionsDuplicateHeadingOverwrites 验证同名标题后出现时覆盖先前内容
func TestSplitIntoSectionsDuplicateHeadingOverwrites(t *testing.T) {
	text := "SKILLS\nPython\nPROJECTS\nChat Application\nSKILLS\nJava, Go"

	sections := SplitIntoSections(text)
	require.Len(t, sections, 2)

	assert.Equal(t, "SKILLS", sections[0].Heading)
	assert.Equal(t, "Java, Go", sections[0].Content, "同名标题应覆盖先前内容")
	assert.Equal(t, "PROJECTS", sections[1].Heading)
}

// TestSplitIntoSectionsDropsEmptySections 验证内容为空的章节被丢弃
func TestSplitIntoSectionsDropsEmptySections(t *testing.T) {
	text := "SKILLS\n   \nPROJECTS\nChat Application"

	sections := SplitIntoSections(text)
	require.Len(t, sections, 1)
	assert.Equal(t, "PROJECTS", sections[0].Heading)
}

// TestClassifySectionByKeywordScore 验证按关键词命中数打分分类
func TestClassifySectionByKeywordScore(t *testing.T) {
	tests := []struct {
		name     string
		heading  string
		content  string
		expected types.SectionType
	}{
		{"技能章节", "TECHNICAL SKILLS", "Programming Languages: Python, Java\nTools: Git", types.SectionSkills},
		{"项目章节", "PROJECTS", "Built a chat application\nDeveloped a platform", types.SectionProjects},
		{"教育章节", "EDUCATION", "Some University\nBachelor of Science", types.SectionEducation},
		{"经历章节", "WORK EXPERIENCE", "Software intern position at a company", types.SectionExperience},
		{"无命中归为other", "MISC", "random unrelated text here", types.SectionOther},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ClassifySection(tt.heading, tt.content))
		})
	}
}

// TestClassifySectionCourseworkOverride 验证标题含coursework时无条件判为课程章节
func TestClassifySectionCourseworkOverride(t *testing.T) {
	// 内容充满项目关键词，但标题含 coursework 仍应判为课程
	got := ClassifySection("Relevant Coursework", "project project project developed built created")
	assert.Equal(t, types.SectionCoursework, got)
}

// TestClassifySectionTieBreakOrder 验证同分时先声明的规则类型胜出
func TestClassifySectionTieBreakOrder(t *testing.T) {
	// "skill" 与 "project" 各命中一次，技能规则声明在前应胜出
	got := ClassifySection("", "skill project")
	assert.Equal(t, types.SectionSkills, got, "同分时应保持规则声明顺序")
}
