package types

// JobPosting 归一化后的岗位记录。
// ExperienceLevel 在抓取时由级别分类器赋值一次，之后只作为过滤属性使用。
type JobPosting struct {
	ID              string          `json:"id"`
	Title           string          `json:"title"`
	Company         string          `json:"company"`
	Location        string          `json:"location"`
	Description     string          `json:"description"`
	Requirements    string          `json:"requirements"`
	EmploymentType  string          `json:"employment_type"`
	ExperienceLevel ExperienceLevel `json:"experience_level"`
	URL             string          `json:"url"`
	PostedAt        string          `json:"posted_date,omitempty"`
	SalaryMin       *float64        `json:"salary_min,omitempty"`
	SalaryMax       *float64        `json:"salary_max,omitempty"`
	IsRemote        bool            `json:"is_remote"`
}

// JobMatch 排序后的岗位匹配结果，描述和要求做了截断
type JobMatch struct {
	ID              string          `json:"id"`
	Title           string          `json:"title"`
	Company         string          `json:"company"`
	Location        string          `json:"location"`
	EmploymentType  string          `json:"employment_type"`
	ExperienceLevel ExperienceLevel `json:"experience_level"`
	MatchScore      float64         `json:"match_score"`
	URL             string          `json:"url"`
	Description     string          `json:"description"`
	Requirements    string          `json:"requirements"`
}

// UserProfileData 持久化的用户画像，由简历解析结果落库
type UserProfileData struct {
	UserID            string          `json:"user_id"`
	Name              string          `json:"name,omitempty"`
	Email             string          `json:"email,omitempty"`
	Phone             string          `json:"phone,omitempty"`
	Skills            []string        `json:"skills"`
	ExperienceLevel   ExperienceLevel `json:"experience_level"`
	YearsExperience   int             `json:"years_experience"`
	IsStudent         bool            `json:"is_student"`
	SeekingInternship bool            `json:"seeking_internship"`
	Education         []Education     `json:"education"`
	Projects          []Project       `json:"projects"`
	UpdatedAt         string          `json:"updated_at,omitempty"`
}
