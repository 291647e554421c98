package api

import (
	"context"
	"net/http"

	"github.com/coursehub/coursehub-gateway/internal/models"
)

type LessonInput struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description" validate:"required"`
	CourseID    string `json:"courseId" validate:"required"`
}

type LessonUpdate struct {
	Title       *string `json:"title,omitempty" validate:"omitempty,min=1"`
	Description *string `json:"description,omitempty"`
}

type LessonService struct {
	client *Client
}

func (s *LessonService) List(ctx context.Context, page Page) ([]models.Lesson, error) {
	if err := s.client.check(page); err != nil {
		return nil, err
	}
	return get[[]models.Lesson](ctx, s.client, "/lesson", page.query())
}

func (s *LessonService) Get(ctx context.Context, id string) (models.Lesson, error) {
	return get[models.Lesson](ctx, s.client, "/lesson/"+escape(id), nil)
}

func (s *LessonService) ByCourse(ctx context.Context, courseID string) ([]models.Lesson, error) {
	return get[[]models.Lesson](ctx, s.client, "/courses/"+escape(courseID)+"/lessons", nil)
}

func (s *LessonService) Create(ctx context.Context, input LessonInput) (models.Lesson, error) {
	if err := s.client.check(input); err != nil {
		return models.Lesson{}, err
	}
	return send[models.Lesson](ctx, s.client, http.MethodPost, "/lesson", input)
}

func (s *LessonService) Update(ctx context.Context, id string, input LessonUpdate) (models.Lesson, error) {
	if err := s.client.check(input); err != nil {
		return models.Lesson{}, err
	}
	return send[models.Lesson](ctx, s.client, http.MethodPut, "/lesson/update/"+escape(id), input)
}

func (s *LessonService) Delete(ctx context.Context, id string) error {
	_, err := send[any](ctx, s.client, http.MethodDelete, "/lesson/delete/"+escape(id), nil)
	return err
}
