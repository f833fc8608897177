package types

// Severity of a critique finding.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// CritiqueItem is one observation about a weakness in a posting.
type CritiqueItem struct {
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
}

// FocusArea is a named cluster of the posting's explicit skills.
type FocusArea struct {
	Name   string   `json:"name"`
	Weight float64  `json:"weight"` // share of explicit skills, 0..1
	Skills []string `json:"skills"`
}

// SalaryRange is an advertised pay range. Min <= Max always.
type SalaryRange struct {
	Min      int    `json:"min"`
	Max      int    `json:"max"`
	Currency string `json:"currency"`
}

// QualityReport is the deduction-based posting score.
type QualityReport struct {
	Score     int      `json:"score"` // 0..100
	Grade     string   `json:"grade"`
	Issues    []string `json:"issues"`
	Positives []string `json:"positives"`
}

// RoleMatch is the role template that best fits the explicit skills.
type RoleMatch struct {
	Role          string   `json:"role"`
	Confidence    float64  `json:"confidence"`
	MatchedSkills []string `json:"matched_skills"`
}

// Seniority levels.
const (
	LevelEntry       = "entry"
	LevelMid         = "mid"
	LevelSenior      = "senior"
	LevelLead        = "lead"
	LevelUnspecified = "unspecified"
)

// Experience is the seniority the posting asks for.
type Experience struct {
	Level string `json:"level"`
	Years *int   `json:"years,omitempty"`
}

// Education is the degree requirement of a posting.
type Education struct {
	MinDegree string   `json:"min_degree,omitempty"` // phd, master, bachelor, associate
	Required  bool     `json:"required"`
	Fields    []string `json:"fields"`
}

// SourceInfo records where the analyzed text came from.
type SourceInfo struct {
	Kind       string `json:"kind"` // text or url
	URL        string `json:"url,omitempty"`
	Platform   string `json:"platform,omitempty"`
	Hash       string `json:"hash"`
	FromCache  bool   `json:"from_cache"`
	AnalyzedAt string `json:"analyzed_at"` // RFC3339
}

// AnalyzeResponse is the full profile of one posting. List fields are never
// nil; optional values are pointers and omitted when not derived.
type AnalyzeResponse struct {
	RequestID         string              `json:"request_id"`
	Title             *string             `json:"title,omitempty"`
	Role              *RoleMatch          `json:"role,omitempty"`
	FocusAreas        []FocusArea         `json:"focus_areas"`
	ExplicitSkills    []string            `json:"explicit_skills"`
	HiddenSkills      []string            `json:"hidden_skills"`
	SkillCategories   map[string][]string `json:"skill_categories"`
	Critiques         []CritiqueItem      `json:"critiques"`
	Quality           QualityReport       `json:"quality"`
	QualityScore      float64             `json:"quality_score"` // Quality.Score / 100
	SalaryRange       *SalaryRange        `json:"salary_range,omitempty"`
	InterviewStages   []string            `json:"interview_stages"`
	InterviewRounds   *int                `json:"interview_rounds,omitempty"`
	InterviewDuration *string             `json:"interview_duration,omitempty"`
	Experience        Experience          `json:"experience"`
	Education         Education           `json:"education"`
	Sections          []string            `json:"sections"`
	ResumeAlignment   *float64            `json:"resume_alignment,omitempty"`
	Summary           string              `json:"summary"`
	Source            SourceInfo          `json:"source"`
}
