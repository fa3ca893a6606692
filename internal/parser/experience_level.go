package parser

import (
	"regexp"
	"strconv"

	"job-match-go/internal/types"
)

var (
	// 在读学生信号
	studentRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\bcurrent(?:ly)?\s+(?:studying|pursuing|enrolled)`),
		regexp.MustCompile(`(?i)\b(?:undergraduate|bachelor|btech|b\.tech)\s+student`),
		regexp.MustCompile(`(?i)\bexpected\s+graduation`),
		regexp.MustCompile(`(?i)\bseek(?:ing)?\s+internship`),
		regexp.MustCompile(`(?i)\bfresher\b`),
		regexp.MustCompile(`(?i)\bcgpa\s*[:=]\s*\d`),
	}

	// 求实习信号
	internshipRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\bseek(?:ing)?\s+(?:summer\s+)?internship`),
		regexp.MustCompile(`(?i)\bintern(?:ship)?\s+(?:position|role|opportunity)`),
		regexp.MustCompile(`(?i)\bsummer\s+(?:intern|internship)`),
	}

	// 工作年限声明，按优先级排列，取首个命中
	yearsRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(\d+)\+?\s*years?\s+(?:of\s+)?experience`),
		regexp.MustCompile(`(?i)experience\s*:\s*(\d+)\+?\s*years?`),
	}

	gradYearRe = regexp.MustCompile(`20(\d{2})`)
)

// ClassifyExperienceLevel 根据全文信号判定候选人经验档位。
// 毕业年份只看教育经历的学位与补充说明，且仅在疑似学生或年限为零时推断；
// referenceYear 为判定毕业年份时的当前年份。
func ClassifyExperienceLevel(text string, education []types.Education, referenceYear int) types.ExperienceLevelInfo {
	info := types.ExperienceLevelInfo{Level: types.LevelEntry}

	for _, re := range studentRes {
		if re.MatchString(text) {
			info.IsStudent = true
			break
		}
	}

	for _, re := range internshipRes {
		if re.MatchString(text) {
			info.SeekingInternship = true
			break
		}
	}

	// 年限取首个命中的声明
	for _, re := range yearsRes {
		if match := re.FindStringSubmatch(text); match != nil {
			if years, err := strconv.Atoi(match[1]); err == nil {
				info.YearsExperience = years
			}
			break
		}
	}

	// 毕业年份推断：去年之后毕业视为在读，晚于当前年份另视为求实习
	if info.IsStudent || info.YearsExperience == 0 {
		for _, edu := range education {
			match := gradYearRe.FindStringSubmatch(edu.Degree + " " + edu.Details)
			if match == nil {
				continue
			}
			suffix, err := strconv.Atoi(match[1])
			if err != nil {
				continue
			}
			gradYear := 2000 + suffix
			if gradYear >= referenceYear-1 {
				info.IsStudent = true
				info.SeekingInternship = info.SeekingInternship || gradYear > referenceYear
			}
		}
	}

	switch {
	case info.IsStudent || info.SeekingInternship:
		info.Level = types.LevelStudent
	case info.YearsExperience > 8:
		info.Level = types.LevelLead
	case info.YearsExperience >= 6:
		info.Level = types.LevelSenior
	case info.YearsExperience >= 3:
		info.Level = types.LevelMid
	default:
		info.Level = types.LevelEntry
	}

	return info
}
