package models

import "time"

type CourseLevel string

const (
	CourseLevelBeginner     CourseLevel = "beginner"
	CourseLevelIntermediate CourseLevel = "intermediate"
	CourseLevelAdvanced     CourseLevel = "advanced"
)

type Course struct {
	ID               string      `json:"_id" yaml:"id"`
	Title            string      `json:"title" yaml:"title"`
	Description      string      `json:"description" yaml:"description"`
	Price            float64     `json:"price" yaml:"price"`
	Level            CourseLevel `json:"level" yaml:"level"`
	Lessons          []any       `json:"lessons,omitempty" yaml:"lessons,omitempty"`
	IsDeleted        bool        `json:"isDeleted" yaml:"isDeleted"`
	EnrolledStudents int         `json:"enrolledStudents" yaml:"enrolledStudents"`
	AverageRating    float64     `json:"averageRating" yaml:"averageRating"`
	ThumbnailURL     string      `json:"thumbnailUrl" yaml:"thumbnailUrl"`
	CreatedAt        time.Time   `json:"createdAt" yaml:"createdAt"`
	UpdatedAt        time.Time   `json:"updatedAt" yaml:"updatedAt"`
}

type CourseList struct {
	Courses []Course `json:"courses"`
}

type Lesson struct {
	ID            string    `json:"_id" yaml:"id"`
	Title         string    `json:"title" yaml:"title"`
	Description   string    `json:"description" yaml:"description"`
	Order         int       `json:"order" yaml:"order"`
	CourseID      string    `json:"courseId" yaml:"courseId"`
	IsDeleted     bool      `json:"isDeleted" yaml:"isDeleted"`
	TotalDuration int       `json:"totalDuration" yaml:"totalDuration"`
	Lectures      []Lecture `json:"lectures,omitempty" yaml:"lectures,omitempty"`
	CreatedAt     time.Time `json:"createdAt" yaml:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt" yaml:"updatedAt"`
}

type LectureType string

const (
	LectureTypeVideo LectureType = "video"
	LectureTypeText  LectureType = "text"
	LectureTypeMixed LectureType = "mixed"
)

type LectureContent struct {
	Text     string `json:"text,omitempty" yaml:"text,omitempty"`
	Video    string `json:"video,omitempty" yaml:"video,omitempty"`
	Duration int    `json:"duration,omitempty" yaml:"duration,omitempty"`
}

type Lecture struct {
	ID          string         `json:"_id" yaml:"id"`
	Title       string         `json:"title" yaml:"title"`
	Description string         `json:"description" yaml:"description"`
	Order       int            `json:"order" yaml:"order"`
	LessonID    string         `json:"lessonId" yaml:"lessonId"`
	IsDeleted   bool           `json:"isDeleted" yaml:"isDeleted"`
	Type        LectureType    `json:"type" yaml:"type"`
	Content     LectureContent `json:"content" yaml:"content"`
	CreatedAt   time.Time      `json:"createdAt" yaml:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt" yaml:"updatedAt"`
}

type Quiz struct {
	ID           string    `json:"_id" yaml:"id"`
	Title        string    `json:"title" yaml:"title"`
	Description  string    `json:"description" yaml:"description"`
	TimeLimit    int       `json:"timeLimit" yaml:"timeLimit"`
	PassingScore int       `json:"passingScore" yaml:"passingScore"`
	LectureID    string    `json:"lectureId" yaml:"lectureId"`
	CreatedAt    time.Time `json:"createdAt" yaml:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt" yaml:"updatedAt"`
}

type QuestionType string

const (
	QuestionTypeSingleChoice   QuestionType = "single_choice"
	QuestionTypeMultipleChoice QuestionType = "multiple_choice"
	QuestionTypeTrueFalse      QuestionType = "true_false"
)

type QuizOption struct {
	ID        string `json:"id" yaml:"id" validate:"required"`
	Content   string `json:"content" yaml:"content" validate:"required"`
	IsCorrect bool   `json:"isCorrect" yaml:"isCorrect"`
}

type QuizQuestion struct {
	ID          string       `json:"_id,omitempty" yaml:"id"`
	Content     string       `json:"content" yaml:"content" validate:"required"`
	Type        QuestionType `json:"type" yaml:"type" validate:"required,oneof=single_choice multiple_choice true_false"`
	Options     []QuizOption `json:"options" yaml:"options" validate:"required,min=2,dive"`
	Explanation string       `json:"explanation" yaml:"explanation"`
	Points      int          `json:"points" yaml:"points" validate:"gte=0"`
	QuizID      string       `json:"quizId" yaml:"quizId"`
}

type QuizQuestionList struct {
	Questions []QuizQuestion `json:"questions"`
}

type Deposit struct {
	PaymentURL string `json:"paymentUrl" yaml:"paymentUrl"`
	OrderCode  int64  `json:"orderCode" yaml:"orderCode"`
}

type PaymentVerification struct {
	CourseID string `json:"courseId" yaml:"courseId"`
}

type Purchase struct {
	ID        string    `json:"_id" yaml:"id"`
	CourseID  string    `json:"courseId" yaml:"courseId"`
	UserID    string    `json:"userId" yaml:"userId"`
	Amount    float64   `json:"amount" yaml:"amount"`
	CreatedAt time.Time `json:"createdAt" yaml:"createdAt"`
}
