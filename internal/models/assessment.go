package models

// AssessmentQuestion is one statement of the anxiety questionnaire.
// Learners answer on a 1 (strongly disagree) to 5 (strongly agree) scale.
type AssessmentQuestion struct {
	ID   int    `json:"id"`
	Text string `json:"text"`
}

// AssessmentAnswer is the learner's answer to a single question
type AssessmentAnswer struct {
	QuestionID int `json:"questionId" validate:"required"`
	Value      int `json:"value" validate:"min=1,max=5"`
}

// SubmitAssessmentRequest carries a full set of answers
type SubmitAssessmentRequest struct {
	Answers []AssessmentAnswer `json:"answers" validate:"required,dive"`
}

// AssessmentResult is the scored assessment with instructor recommendations
type AssessmentResult struct {
	Score       int          `json:"score"` // 0..100
	Level       AnxietyLevel `json:"level"`
	Recommended []Instructor `json:"recommendedInstructors"`
}
