package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestIsHeadingRecognizesSectionTitles 验证常见章节标题能被识别
func TestIsHeadingRecognizesSectionTitles(t *testing.T) {
	headings := []string{
		"EDUCATION",
		"TECHNICAL SKILLS",
		"Work Experience",
		"PROJECTS",
		"Relevant Coursework",
		"skills",
		"EXTRA-CURRICULAR ACTIVITIES",
	}

	for _, line := range headings {
		assert.True(t, IsHeading(line), "应识别为标题: %q", line)
	}
}

// TestIsHeadingRejectsContentLines 验证内容行不会被误判为标题
func TestIsHeadingRejectsContentLines(t *testing.T) {
	contentLines := []string{
		"",
		"   ",
		"• Built a recommendation engine using Python and FAISS",
		"- Skills: Python, SQL", // 项目符号开头且含冒号
		"Aug. 2023",
		"2021 – 2023",
		"2022 - Present",
		"jane@x.com",
		"+91 98765 43210",
		"Worked on large scale distributed data processing pipelines daily",
		"Developed the system.",
	}

	for _, line := range contentLines {
		assert.False(t, IsHeading(line), "不应识别为标题: %q", line)
	}
}

// TestIsHeadingIsDeterministic 验证同一行多次判定结果一致
func TestIsHeadingIsDeterministic(t *testing.T) {
	lines := []string{"EDUCATION", "• worked with Kafka", "Technical Skills", "2019"}

	for _, line := range lines {
		first := IsHeading(line)
		for i := 0; i < 5; i++ {
			assert.Equal(t, first, IsHeading(line), "多次判定结果应一致: %q", line)
		}
	}
}
