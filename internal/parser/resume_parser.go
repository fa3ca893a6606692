package parser

import (
	"context"
	"fmt"
	"log"
	"os"
	"regexp"
	"strings"

	"job-match-go/internal/constants"
	"job-match-go/internal/types"
)

var (
	emailRe = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)
	phoneRe = regexp.MustCompile(`(?:\+?\d{1,3}[\s\-.]?)?(?:\(\d{2,5}\)[\s\-.]?)?\d{3,5}[\s\-.]?\d{4,6}`)
)

// ResumeParser 简历解析管线：清洗 → 切分 → 分类 → 逐章节结构化提取。
// 解析器本身无状态，可并发复用。
type ResumeParser struct {
	skillExtractor *SkillExtractor
	referenceYear  int
	withContext    bool
	keepRawDebug   bool
	logger         *log.Logger
}

// ResumeParserOption 解析器配置选项
type ResumeParserOption func(*ResumeParser)

// WithEntityRecognizer 注入命名实体识别能力
func WithEntityRecognizer(recognizer EntityRecognizer) ResumeParserOption {
	return func(p *ResumeParser) {
		p.skillExtractor = NewSkillExtractor(recognizer)
	}
}

// WithReferenceYear 设置毕业年份判定的参考年份
func WithReferenceYear(year int) ResumeParserOption {
	return func(p *ResumeParser) {
		if year > 0 {
			p.referenceYear = year
		}
	}
}

// WithSkillContext 开启技能上下文提取（附带出现句子）
func WithSkillContext(enable bool) ResumeParserOption {
	return func(p *ResumeParser) {
		p.withContext = enable
	}
}

// WithRawSectionDebug 开启原始章节快照，便于排查分类问题
func WithRawSectionDebug(enable bool) ResumeParserOption {
	return func(p *ResumeParser) {
		p.keepRawDebug = enable
	}
}

// WithParserLogger 设置解析器日志记录器
func WithParserLogger(logger *log.Logger) ResumeParserOption {
	return func(p *ResumeParser) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// NewResumeParser 创建简历解析器
func NewResumeParser(opts ...ResumeParserOption) *ResumeParser {
	p := &ResumeParser{
		skillExtractor: NewSkillExtractor(nil),
		referenceYear:  constants.DefaultReferenceYear,
		logger:         log.New(os.Stdout, "[ResumeParser] ", log.LstdFlags),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse 解析简历全文，返回结构化画像。
// 文本过短时返回错误，调用方据此判定上游提取失败。
func (p *ResumeParser) Parse(ctx context.Context, text string) (*types.ResumeProfile, error) {
	cleaned := CleanText(text)
	if len(cleaned) < constants.MinResumeTextLength {
		return nil, fmt.Errorf("简历文本过短(%d字符)，无法解析", len(cleaned))
	}

	// 1. 切分章节并逐一分类
	sections := SplitIntoSections(cleaned)
	for i := range sections {
		sections[i].Type = ClassifySection(sections[i].Heading, sections[i].Content)
	}
	p.logger.Printf("切分出 %d 个章节", len(sections))

	profile := &types.ResumeProfile{
		RawText: cleaned,
	}

	// 2. 联系方式从全文提取，不依赖章节分类
	profile.Contact = extractContactInfo(cleaned, sections)

	// 3. 逐章节结构化提取
	for _, section := range sections {
		switch section.Type {
		case types.SectionProjects:
			profile.Projects = append(profile.Projects, ExtractProjects(section.Content)...)
		case types.SectionEducation:
			profile.Education = append(profile.Education, ExtractEducation(section.Content)...)
		case types.SectionCoursework:
			profile.Coursework = append(profile.Coursework, ExtractCoursework(section.Content)...)
		}
	}

	// 4. 技能和经验级别在全文上运行，章节分类错误时仍有兜底
	profile.Skills = p.skillExtractor.Extract(ctx, cleaned)
	if p.withContext {
		profile.SkillsWithContext = p.skillExtractor.ExtractWithContext(ctx, cleaned)
	}
	profile.ExperienceLevel = ClassifyExperienceLevel(cleaned, profile.Education, p.referenceYear)

	if p.keepRawDebug {
		profile.RawSections = make(map[string]types.RawSectionDebug, len(sections))
		for _, section := range sections {
			preview := section.Content
			if len(preview) > 200 {
				if runes := []rune(preview); len(runes) > 200 {
					preview = string(runes[:200])
				}
			}
			profile.RawSections[section.Heading] = types.RawSectionDebug{
				Type:           section.Type,
				ContentPreview: preview,
			}
		}
	}

	p.logger.Printf("解析完成: %d个技能, %d个项目, %d条教育经历, 级别=%s",
		len(profile.Skills), len(profile.Projects), len(profile.Education), profile.ExperienceLevel.Level)

	return profile, nil
}

// extractContactInfo 从全文提取邮箱和电话，姓名取文档头部的首个候选行
func extractContactInfo(text string, sections []types.ResumeSection) types.ContactInfo {
	contact := types.ContactInfo{
		Email: emailRe.FindString(text),
		Phone: strings.TrimSpace(phoneRe.FindString(text)),
	}

	for _, section := range sections {
		if section.Heading != HeaderSectionName {
			continue
		}
		for _, line := range strings.Split(section.Content, "\n") {
			line = strings.TrimSpace(line)
			if line == "" || strings.ContainsAny(line, "@0123456789") {
				continue
			}
			words := strings.Fields(line)
			if len(words) >= 2 && len(words) <= 4 && startsUpper(line) {
				contact.Name = line
				break
			}
		}
		break
	}

	return contact
}
