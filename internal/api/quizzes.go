package api

import (
	"context"
	"net/http"

	"github.com/coursehub/coursehub-gateway/internal/models"
)

type QuizInput struct {
	Title        string `json:"title" validate:"required"`
	Description  string `json:"description" validate:"required"`
	TimeLimit    int    `json:"timeLimit" validate:"gte=0"`
	PassingScore int    `json:"passingScore" validate:"gte=0,lte=100"`
	LectureID    string `json:"lectureId" validate:"required"`
}

type QuizUpdate struct {
	Title        *string `json:"title,omitempty" validate:"omitempty,min=1"`
	Description  *string `json:"description,omitempty"`
	TimeLimit    *int    `json:"timeLimit,omitempty" validate:"omitempty,gte=0"`
	PassingScore *int    `json:"passingScore,omitempty" validate:"omitempty,gte=0,lte=100"`
	LectureID    *string `json:"lectureId,omitempty"`
}

type QuizService struct {
	client *Client
}

func (s *QuizService) List(ctx context.Context, page Page) ([]models.Quiz, error) {
	if err := s.client.check(page); err != nil {
		return nil, err
	}
	return get[[]models.Quiz](ctx, s.client, "/quiz", page.query())
}

func (s *QuizService) Get(ctx context.Context, id string) (models.Quiz, error) {
	return get[models.Quiz](ctx, s.client, "/quiz/"+escape(id), nil)
}

func (s *QuizService) Create(ctx context.Context, input QuizInput) (models.Quiz, error) {
	if err := s.client.check(input); err != nil {
		return models.Quiz{}, err
	}
	return send[models.Quiz](ctx, s.client, http.MethodPost, "/quiz", input)
}

func (s *QuizService) Update(ctx context.Context, id string, input QuizUpdate) (models.Quiz, error) {
	if err := s.client.check(input); err != nil {
		return models.Quiz{}, err
	}
	return send[models.Quiz](ctx, s.client, http.MethodPut, "/quiz/"+escape(id), input)
}

func (s *QuizService) Delete(ctx context.Context, id string) error {
	_, err := send[any](ctx, s.client, http.MethodDelete, "/quiz/"+escape(id), nil)
	return err
}

func (s *QuizService) Questions(ctx context.Context, quizID string) ([]models.QuizQuestion, error) {
	list, err := get[models.QuizQuestionList](ctx, s.client, "/quiz-questions/quiz/"+escape(quizID), nil)
	return list.Questions, err
}

func (s *QuizService) AddQuestion(ctx context.Context, quizID string, question models.QuizQuestion) (models.QuizQuestion, error) {
	question.ID = ""
	question.QuizID = quizID
	if err := s.client.check(question); err != nil {
		return models.QuizQuestion{}, err
	}
	if quizID == "" {
		return models.QuizQuestion{}, &ValidationError{Fields: map[string]string{"quizId": "quizId is required"}}
	}
	return send[models.QuizQuestion](ctx, s.client, http.MethodPost, "/quiz-questions", question)
}

func (s *QuizService) UpdateQuestion(ctx context.Context, id string, question models.QuizQuestion) (models.QuizQuestion, error) {
	if err := s.client.check(question); err != nil {
		return models.QuizQuestion{}, err
	}
	return send[models.QuizQuestion](ctx, s.client, http.MethodPut, "/quiz-questions/"+escape(id), question)
}

func (s *QuizService) DeleteQuestion(ctx context.Context, id string) error {
	_, err := send[any](ctx, s.client, http.MethodDelete, "/quiz-questions/"+escape(id), nil)
	return err
}
