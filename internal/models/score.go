package models

// ExamMode tags which exam components a ScoreBlock carries.
type ExamMode string

const (
	// ExamModeCombined uses a single exam score.
	ExamModeCombined ExamMode = "combined"
	// ExamModeSeparate uses objective + theory scores.
	ExamModeSeparate ExamMode = "separate"
)

// ScoreBlock holds one subject's raw score components and derived fields
// for one student. Pointer fields mark presence: a nil component was never
// entered, which matters for the legacy overall-mark fallback and for
// completeness checks. The ExamMode tag says which exam fields are valid.
type ScoreBlock struct {
	ExamMode ExamMode `json:"exam_mode,omitempty"`

	Tests     []float64 `json:"tests,omitempty"`
	TotalTest *float64  `json:"total_test,omitempty"`

	ExamScore *float64 `json:"exam_score,omitempty"`
	Objective *float64 `json:"objective,omitempty"`
	Theory    *float64 `json:"theory,omitempty"`
	TotalExam *float64 `json:"total_exam,omitempty"`

	OverallMark *float64 `json:"overall_mark,omitempty"`
	Grade       string   `json:"grade,omitempty"`
}

// HasComponents reports whether any raw component field is present.
// Legacy rows that predate component storage carry only OverallMark.
func (b ScoreBlock) HasComponents() bool {
	if len(b.Tests) > 0 {
		return true
	}
	return b.TotalTest != nil || b.TotalExam != nil || b.ExamScore != nil || b.Objective != nil || b.Theory != nil
}

// ScoreMap maps subject name to its score block.
type ScoreMap map[string]ScoreBlock

func float64Value(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}

// TotalTestValue returns the summed test total, or 0 when absent.
func (b ScoreBlock) TotalTestValue() float64 { return float64Value(b.TotalTest) }

// TotalExamValue returns the summed exam total, or 0 when absent.
func (b ScoreBlock) TotalExamValue() float64 { return float64Value(b.TotalExam) }

// OverallMarkValue returns the overall mark, or 0 when absent.
func (b ScoreBlock) OverallMarkValue() float64 { return float64Value(b.OverallMark) }
