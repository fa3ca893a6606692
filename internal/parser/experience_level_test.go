package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"job-match-go/internal/types"
)

// TestClassifyExperienceLevelByYears 验证按工作年限分档
func TestClassifyExperienceLevelByYears(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected types.ExperienceLevel
		years    int
	}{
		{"无年限默认初级", "Software developer with strong background.", types.LevelEntry, 0},
		{"2年为初级", "2 years of experience in backend development.", types.LevelEntry, 2},
		{"3年为中级", "3 years of experience building services.", types.LevelMid, 3},
		{"5年为中级", "5+ years experience with distributed systems.", types.LevelMid, 5},
		{"6年为高级", "6 years of experience leading projects.", types.LevelSenior, 6},
		{"8年为高级", "Experience: 8 years", types.LevelSenior, 8},
		{"9年为专家", "9 years of experience in platform engineering.", types.LevelLead, 9},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := ClassifyExperienceLevel(tt.text, nil, 2026)
			assert.Equal(t, tt.expected, info.Level)
			assert.Equal(t, tt.years, info.YearsExperience)
			assert.False(t, info.IsStudent)
		})
	}
}

// TestClassifyExperienceLevelTakesFirstYears 验证多处年限声明取首个命中
func TestClassifyExperienceLevelTakesFirstYears(t *testing.T) {
	text := "2 years of experience with Go. The company has 50 years of experience in manufacturing."

	info := ClassifyExperienceLevel(text, nil, 2026)
	assert.Equal(t, 2, info.YearsExperience)
	assert.Equal(t, types.LevelEntry, info.Level)
}

// TestClassifyExperienceLevelStudentSignalsOverrideYears 验证学生信号覆盖年限分档
func TestClassifyExperienceLevelStudentSignalsOverrideYears(t *testing.T) {
	text := "Currently pursuing a degree, with 2 years of experience in personal projects."

	info := ClassifyExperienceLevel(text, nil, 2026)
	assert.True(t, info.IsStudent)
	assert.Equal(t, types.LevelStudent, info.Level)
}

// TestClassifyExperienceLevelStudentCues 验证各类学生文案信号
func TestClassifyExperienceLevelStudentCues(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"fresher", "Computer science fresher passionate about backend systems."},
		{"CGPA标注", "B.Tech in Computer Science, CGPA: 8.5"},
		{"预期毕业", "Expected graduation in May."},
		{"本科在读", "Undergraduate student at IIT Delhi."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := ClassifyExperienceLevel(tt.text, nil, 2026)
			assert.True(t, info.IsStudent)
			assert.Equal(t, types.LevelStudent, info.Level)
		})
	}
}

// TestClassifyExperienceLevelSeekingInternship 验证求实习信号
func TestClassifyExperienceLevelSeekingInternship(t *testing.T) {
	text := "Looking for an internship opportunity in machine learning."

	info := ClassifyExperienceLevel(text, nil, 2026)
	assert.True(t, info.SeekingInternship)
	assert.Equal(t, types.LevelStudent, info.Level, "求实习者无论年限都归学生档")
}

// TestClassifyExperienceLevelGraduationYearInference 验证基于教育经历的毕业年份推断
func TestClassifyExperienceLevelGraduationYearInference(t *testing.T) {
	// 毕业年份晚于参考年份：在读且求实习
	info := ClassifyExperienceLevel("Backend projects in Go and Python.",
		[]types.Education{{Degree: "B.Tech", Details: "Expected 2028"}}, 2026)
	assert.True(t, info.IsStudent)
	assert.True(t, info.SeekingInternship)
	assert.Equal(t, types.LevelStudent, info.Level)

	// 毕业年份等于参考年份前一年：仍视为在读
	info = ClassifyExperienceLevel("Backend projects in Go and Python.",
		[]types.Education{{Degree: "B.Sc", Details: "Graduated 2025"}}, 2026)
	assert.True(t, info.IsStudent)
	assert.False(t, info.SeekingInternship)

	// 很早之前毕业：不是学生
	info = ClassifyExperienceLevel("Backend projects in Go and Python.",
		[]types.Education{{Degree: "B.Sc", Details: "Graduated 2015"}}, 2026)
	assert.False(t, info.IsStudent)
	assert.Equal(t, types.LevelEntry, info.Level)
}

// TestClassifyExperienceLevelIgnoresWorkDates 验证正文日期不触发毕业年份推断
func TestClassifyExperienceLevelIgnoresWorkDates(t *testing.T) {
	text := "Principal engineer with 10 years of experience.\nAcme Corp, Jan 2025 - Present"

	info := ClassifyExperienceLevel(text, nil, 2026)
	assert.False(t, info.IsStudent)
	assert.Equal(t, 10, info.YearsExperience)
	assert.Equal(t, types.LevelLead, info.Level)
}

// TestClassifyExperienceLevelSkipsEducationScanWithYears 验证有年限声明时不再看毕业年份
func TestClassifyExperienceLevelSkipsEducationScanWithYears(t *testing.T) {
	info := ClassifyExperienceLevel("7 years of experience in infrastructure.",
		[]types.Education{{Degree: "M.Sc", Details: "Class of 2026"}}, 2026)
	assert.False(t, info.IsStudent)
	assert.Equal(t, types.LevelSenior, info.Level)
}
