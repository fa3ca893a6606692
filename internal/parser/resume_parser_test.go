package parser

import (
	"context"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"job-match-go/internal/types"
)

// TestParseEndToEnd 验证完整简历文本的解析流程
func TestParseEndToEnd(t *testing.T) {
	text := "Jane Doe\njane@x.com\nSKILLS\nPython, AWS, Docker\nPROJECTS\nRecommender System\nTech Stack: Python, FAISS\n- Built a scalable matcher"

	profile, err := NewResumeParser().Parse(context.Background(), text)
	require.NoError(t, err)
	require.NotNil(t, profile)

	assert.Contains(t, profile.Skills, "python")
	assert.Contains(t, profile.Skills, "aws")
	assert.Contains(t, profile.Skills, "docker")

	require.Len(t, profile.Projects, 1)
	assert.Equal(t, "Recommender System", profile.Projects[0].Title)
	assert.Equal(t, "Python, FAISS", profile.Projects[0].Technologies)

	assert.Equal(t, "jane@x.com", profile.Contact.Email)
}

// TestParseRejectsTooShortText 验证过短文本返回错误
func TestParseRejectsTooShortText(t *testing.T) {
	profile, err := NewResumeParser().Parse(context.Background(), "too short")
	assert.Error(t, err)
	assert.Nil(t, profile)
}

// TestParseStudentResume 验证学生简历的经验档位判定
func TestParseStudentResume(t *testing.T) {
	text := strings.Join([]string{
		"John Smith",
		"john@example.com",
		"EDUCATION",
		"Some Institute of Technology",
		"Bachelor of Technology, CGPA: 8.5",
		"Expected Graduation: 2028",
		"SKILLS",
		"Python, SQL, Git",
		"Relevant Coursework",
		"Data Structures, Operating Systems",
	}, "\n")

	profile, err := NewResumeParser(WithReferenceYear(2026)).Parse(context.Background(), text)
	require.NoError(t, err)

	assert.Equal(t, types.LevelStudent, profile.ExperienceLevel.Level)
	assert.True(t, profile.ExperienceLevel.IsStudent)
	assert.True(t, profile.ExperienceLevel.SeekingInternship, "毕业年份晚于参考年份应视为求实习")

	require.NotEmpty(t, profile.Education)
	assert.Equal(t, "Some Institute of Technology", profile.Education[0].Institution)
	assert.Contains(t, profile.Coursework, "Data Structures")
	assert.Contains(t, profile.Coursework, "Operating Systems")
}

// TestParseRawSectionDebug 验证调试开关生成章节快照
func TestParseRawSectionDebug(t *testing.T) {
	text := "Jane Doe\njane@x.com\nSKILLS\nPython, AWS, Docker\nPROJECTS\nRecommender System\nTech Stack: Python, FAISS\n- Built a scalable matcher"

	profile, err := NewResumeParser(WithRawSectionDebug(true)).Parse(context.Background(), text)
	require.NoError(t, err)
	require.NotNil(t, profile.RawSections)

	section, ok := profile.RawSections["SKILLS"]
	require.True(t, ok, "应有SKILLS章节快照")
	assert.Equal(t, types.SectionSkills, section.Type)
	assert.Contains(t, section.ContentPreview, "Python")
}

// TestParseRawSectionPreviewRuneSafe 验证章节快照截断不切断多字节字符
func TestParseRawSectionPreviewRuneSafe(t *testing.T) {
	text := "Jane Doe\njane@x.com\nSKILLS\nPython, SQL\nSUMMARY\n" + strings.Repeat("全栈工程师", 60)

	profile, err := NewResumeParser(WithRawSectionDebug(true)).Parse(context.Background(), text)
	require.NoError(t, err)

	section, ok := profile.RawSections["SUMMARY"]
	require.True(t, ok)
	assert.True(t, utf8.ValidString(section.ContentPreview), "截断不应产生非法UTF-8")
	assert.Equal(t, 200, len([]rune(section.ContentPreview)))
}
