package api

import (
	"context"
	"net/http"

	"github.com/coursehub/coursehub-gateway/internal/models"
)

type CourseInput struct {
	Title        string             `json:"title" validate:"required"`
	Description  string             `json:"description" validate:"required"`
	Price        float64            `json:"price" validate:"gte=0"`
	Level        models.CourseLevel `json:"level" validate:"required,oneof=beginner intermediate advanced"`
	ThumbnailURL string             `json:"thumbnailUrl,omitempty" validate:"omitempty,url"`
}

// CourseUpdate only sends the fields that are set
type CourseUpdate struct {
	Title        *string             `json:"title,omitempty" validate:"omitempty,min=1"`
	Description  *string             `json:"description,omitempty"`
	Price        *float64            `json:"price,omitempty" validate:"omitempty,gte=0"`
	Level        *models.CourseLevel `json:"level,omitempty" validate:"omitempty,oneof=beginner intermediate advanced"`
	ThumbnailURL *string             `json:"thumbnailUrl,omitempty" validate:"omitempty,url"`
}

type CourseService struct {
	client *Client
}

func (s *CourseService) List(ctx context.Context) ([]models.Course, error) {
	list, err := get[models.CourseList](ctx, s.client, "/course", nil)
	return list.Courses, err
}

func (s *CourseService) Get(ctx context.Context, id string) (models.Course, error) {
	return get[models.Course](ctx, s.client, "/course/"+escape(id), nil)
}

func (s *CourseService) Featured(ctx context.Context) ([]models.Course, error) {
	list, err := get[models.CourseList](ctx, s.client, "/course/featured", nil)
	return list.Courses, err
}

func (s *CourseService) New(ctx context.Context) ([]models.Course, error) {
	list, err := get[models.CourseList](ctx, s.client, "/course/new", nil)
	return list.Courses, err
}

func (s *CourseService) Create(ctx context.Context, input CourseInput) (models.Course, error) {
	if err := s.client.check(input); err != nil {
		return models.Course{}, err
	}
	return send[models.Course](ctx, s.client, http.MethodPost, "/course", input)
}

func (s *CourseService) Update(ctx context.Context, id string, input CourseUpdate) (models.Course, error) {
	if err := s.client.check(input); err != nil {
		return models.Course{}, err
	}
	return send[models.Course](ctx, s.client, http.MethodPut, "/course/"+escape(id), input)
}

func (s *CourseService) Delete(ctx context.Context, id string) error {
	_, err := send[any](ctx, s.client, http.MethodDelete, "/course/"+escape(id), nil)
	return err
}
