package types

// SectionType 表示简历章节的语义类型
type SectionType string

const (
	// SectionSkills 技能章节
	SectionSkills SectionType = "skills"
	// SectionProjects 项目经历章节
	SectionProjects SectionType = "projects"
	// SectionExperience 工作/实习经历章节
	SectionExperience SectionType = "experience"
	// SectionEducation 教育经历章节
	SectionEducation SectionType = "education"
	// SectionCoursework 课程章节
	SectionCoursework SectionType = "coursework"
	// SectionCertifications 证书章节
	SectionCertifications SectionType = "certifications"
	// SectionActivities 活动/领导力章节
	SectionActivities SectionType = "activities"
	// SectionOther 未识别章节
	SectionOther SectionType = "other"
)

// ExperienceLevel 经验级别，同时用于简历画像和岗位标注
type ExperienceLevel string

const (
	// LevelStudent 在校生/求实习
	LevelStudent ExperienceLevel = "student"
	// LevelEntry 初级
	LevelEntry ExperienceLevel = "entry"
	// LevelMid 中级
	LevelMid ExperienceLevel = "mid"
	// LevelSenior 高级
	LevelSenior ExperienceLevel = "senior"
	// LevelLead 专家/负责人
	LevelLead ExperienceLevel = "lead"
)

// ResumeSection 简历的一个章节，保留原始文档顺序
type ResumeSection struct {
	Heading string      `json:"heading"` // 检测到的标题行（header表示文档开头的隐式章节）
	Content string      `json:"content"` // 标题之后、下一个标题之前的内容
	Order   int         `json:"order"`   // 原始文档中的顺序
	Type    SectionType `json:"type"`    // 分类结果
}

// ContactInfo 从全文提取的联系方式
type ContactInfo struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

// Project 从项目章节提取的结构化项目记录
type Project struct {
	Title        string `json:"title"`
	Technologies string `json:"technologies"`
	Description  string `json:"description"`
}

// Education 从教育章节提取的结构化教育记录
type Education struct {
	Institution string `json:"institution"`
	Degree      string `json:"degree"`
	Details     string `json:"details"`
}

// ExperienceLevelInfo 经验级别推断结果
type ExperienceLevelInfo struct {
	Level             ExperienceLevel `json:"level"`
	YearsExperience   int             `json:"years_experience"`
	IsStudent         bool            `json:"is_student"`
	SeekingInternship bool            `json:"seeking_internship"`
}

// RawSectionDebug 调试用的章节快照，内容做了截断
type RawSectionDebug struct {
	Type           SectionType `json:"type"`
	ContentPreview string      `json:"content_preview"`
}

// ResumeProfile 简历解析的聚合结果。
// 解析完成后视为只读，归调用方所有。
type ResumeProfile struct {
	Contact           ContactInfo                `json:"contact"`
	Skills            []string                   `json:"skills"`
	SkillsWithContext map[string][]string        `json:"skills_with_context,omitempty"`
	Projects          []Project                  `json:"projects"`
	Education         []Education                `json:"education"`
	Coursework        []string                   `json:"coursework"`
	ExperienceLevel   ExperienceLevelInfo        `json:"experience_level"`
	RawSections       map[string]RawSectionDebug `json:"raw_sections,omitempty"`
	RawText           string                     `json:"-"`
}
