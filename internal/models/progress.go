package models

import "time"

// DefaultTotalLessons is the lesson target assigned to new learners
const DefaultTotalLessons = 20

// LessonProgress is the per-learner lesson counter
type LessonProgress struct {
	UserID           int       `json:"userId"`
	LessonsCompleted int       `json:"lessonsCompleted"`
	TotalLessons     int       `json:"totalLessons"`
	Percent          int       `json:"percent"` // 0..100
	UpdatedAt        time.Time `json:"updatedAt"`
}

// ComputePercent fills Percent from the counters, clamped to 0..100
func (p *LessonProgress) ComputePercent() {
	if p.TotalLessons <= 0 {
		p.Percent = 0
		return
	}
	p.Percent = min(100, max(0, p.LessonsCompleted*100/p.TotalLessons))
}

// SkillItem is one entry of a learner's skill checklist
type SkillItem struct {
	ID          int        `json:"id"`
	UserID      int        `json:"userId"`
	Skill       string     `json:"skill"`
	Title       string     `json:"title"`
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

// DefaultSkill is a checklist entry seeded for each new learner
type DefaultSkill struct {
	Skill string
	Title string
}

// DefaultSkills is the checklist every learner starts with
var DefaultSkills = []DefaultSkill{
	{Skill: "mirrors", Title: "Mirror checks"},
	{Skill: "signalling", Title: "Signalling"},
	{Skill: "roundabouts", Title: "Roundabouts"},
	{Skill: "parallel-parking", Title: "Parallel parking"},
	{Skill: "bay-parking", Title: "Bay parking"},
	{Skill: "hill-start", Title: "Hill start"},
	{Skill: "emergency-stop", Title: "Emergency stop"},
	{Skill: "highway-merging", Title: "Highway merging"},
	{Skill: "night-driving", Title: "Night driving"},
	{Skill: "independent-driving", Title: "Independent driving"},
}

// ProgressResponse is the full progress view of a learner
type ProgressResponse struct {
	Lessons       LessonProgress `json:"lessons"`
	Skills        []SkillItem    `json:"skills"`
	SkillsPercent int            `json:"skillsPercent"`
}

// UpdateSkillRequest toggles a checklist entry
type UpdateSkillRequest struct {
	Completed bool `json:"completed"`
}

// SetTotalLessonsRequest changes a learner's lesson target
type SetTotalLessonsRequest struct {
	TotalLessons int `json:"totalLessons" validate:"required,min=1,max=500"`
}
