package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestExtractProjectsWithExplicitTechStack 验证显式Tech Stack行和项目符号描述的提取
func TestExtractProjectsWithExplicitTechStack(t *testing.T) {
	content := "Recommender System\nTech Stack: Python, FAISS\n• Built a scalable matcher\n• Served results over an API"

	projects := ExtractProjects(content)
	require.Len(t, projects, 1)

	assert.Equal(t, "Recommender System", projects[0].Title)
	assert.Equal(t, "Python, FAISS", projects[0].Technologies)
	assert.Equal(t, "Built a scalable matcher Served results over an API", projects[0].Description)
}

// TestExtractProjectsImplicitTechLine 验证标题后的首个逗号分隔短行视为隐式技术栈
func TestExtractProjectsImplicitTechLine(t *testing.T) {
	content := "Chat Application\nGo, Redis, WebSocket\n• Realtime messaging backend"

	projects := ExtractProjects(content)
	require.Len(t, projects, 1)

	assert.Equal(t, "Chat Application", projects[0].Title)
	assert.Equal(t, "Go, Redis, WebSocket", projects[0].Technologies)
}

// TestExtractProjectsBlankLineClosesProject 验证空行关闭当前项目
func TestExtractProjectsBlankLineClosesProject(t *testing.T) {
	content := "Recommender System\n• First project work\n\nChat Application\n• Second project work"

	projects := ExtractProjects(content)
	require.Len(t, projects, 2)

	assert.Equal(t, "Recommender System", projects[0].Title)
	assert.Equal(t, "Chat Application", projects[1].Title)
}

// TestExtractProjectsFiltersInvalidTitles 验证单词标题和章节标题冒充者被过滤
func TestExtractProjectsFiltersInvalidTitles(t *testing.T) {
	// "Technical Skills" 是章节标题冒充者，单词标题不会开启项目
	content := "Technical Skills\n• looks like a project description"

	projects := ExtractProjects(content)
	assert.Empty(t, projects, "章节标题冒充者不应产生项目")
}

// TestExtractEducationBasic 验证院校、学位和毕业信息的归位
func TestExtractEducationBasic(t *testing.T) {
	content := "Some Institute of Technology\nBachelor of Technology, CGPA: 8.5\nExpected Graduation: 2027"

	education := ExtractEducation(content)
	require.Len(t, education, 1)

	assert.Equal(t, "Some Institute of Technology", education[0].Institution)
	assert.Contains(t, education[0].Degree, "Bachelor of Technology")
	assert.Contains(t, education[0].Details, "Expected Graduation: 2027")
}

// TestExtractCourseworkCommaSeparated 验证逗号分隔的课程列表
func TestExtractCourseworkCommaSeparated(t *testing.T) {
	content := "Relevant Coursework: Data Structures, Operating Systems, Machine Learning"

	courses := ExtractCoursework(content)
	assert.Equal(t, []string{"Data Structures", "Operating Systems", "Machine Learning"}, courses)
}

// TestExtractCourseworkLineSeparated 验证按行切分和制表符二次切分
func TestExtractCourseworkLineSeparated(t *testing.T) {
	content := "• Data Structures\n• Operating Systems\nMachine Learning\tDeep Learning"

	courses := ExtractCoursework(content)
	assert.Equal(t, []string{"Data Structures", "Operating Systems", "Machine Learning", "Deep Learning"}, courses)
}

// TestExtractCourseworkDropsSentences 验证超过10个词的候选被视为句子丢弃
func TestExtractCourseworkDropsSentences(t *testing.T) {
	content := "Data Structures\nthis line has way too many words to be a single course name entry"

	courses := ExtractCoursework(content)
	assert.Equal(t, []string{"Data Structures"}, courses)
}
