package parser

import (
	"strings"

	"job-match-go/internal/types"
)

// HeaderSectionName 文档开头没有标题的隐式章节名（姓名、联系方式等）
const HeaderSectionName = "header"

// SplitIntoSections 按检测到的标题把简历文本切为有序章节。
// 同名标题后出现时覆盖先前内容，这是既定行为。
// 去除空白后内容为空的章节会被丢弃。
func SplitIntoSections(text string) []types.ResumeSection {
	currentHeading := HeaderSectionName
	var currentContent []string

	// heading -> 章节在结果中的下标，用于同名标题覆盖
	index := make(map[string]int)
	var sections []types.ResumeSection

	seal := func() {
		content := strings.TrimSpace(strings.Join(currentContent, "\n"))
		if content == "" {
			return
		}
		if i, ok := index[currentHeading]; ok {
			sections[i].Content = content
			return
		}
		index[currentHeading] = len(sections)
		sections = append(sections, types.ResumeSection{
			Heading: currentHeading,
			Content: content,
			Order:   len(sections),
		})
	}

	for _, line := range strings.Split(text, "\n") {
		if IsHeading(line) {
			// 封存上一章节，开启新章节
			if len(currentContent) > 0 {
				seal()
			}
			currentHeading = strings.TrimSpace(line)
			currentContent = nil
			continue
		}
		currentContent = append(currentContent, line)
	}

	// 封存最后一个章节
	if len(currentContent) > 0 {
		seal()
	}

	return sections
}
