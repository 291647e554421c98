package api

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/coursehub/coursehub-gateway/internal/gateway"
	"github.com/coursehub/coursehub-gateway/internal/models"
)

// VideoUpload is a video file sent along with a lecture
type VideoUpload struct {
	Filename string    `json:"filename" validate:"required"`
	Content  io.Reader `json:"-"`
}

type LectureContentInput struct {
	Text     string       `json:"text,omitempty"`
	Video    *VideoUpload `json:"video,omitempty"`
	Duration int          `json:"duration,omitempty" validate:"gte=0"`
}

type LectureInput struct {
	Title       string              `json:"title" validate:"required"`
	Description string              `json:"description" validate:"required"`
	Type        models.LectureType  `json:"type" validate:"required,oneof=video text mixed"`
	LessonID    string              `json:"lessonId" validate:"required"`
	Content     LectureContentInput `json:"content"`
}

// LectureUpdate only sends the fields that are set
type LectureUpdate struct {
	Title       string              `json:"title,omitempty"`
	Description string              `json:"description,omitempty"`
	Type        models.LectureType  `json:"type,omitempty" validate:"omitempty,oneof=video text mixed"`
	Content     LectureContentInput `json:"content"`
}

type LectureService struct {
	client *Client
}

func (s *LectureService) List(ctx context.Context, page Page) ([]models.Lecture, error) {
	if err := s.client.check(page); err != nil {
		return nil, err
	}
	return get[[]models.Lecture](ctx, s.client, "/lectures", page.query())
}

func (s *LectureService) Get(ctx context.Context, id string) (models.Lecture, error) {
	return get[models.Lecture](ctx, s.client, "/lectures/"+escape(id), nil)
}

func (s *LectureService) ByLesson(ctx context.Context, lessonID string) ([]models.Lecture, error) {
	return get[[]models.Lecture](ctx, s.client, "/lesson/"+escape(lessonID)+"/lectures", nil)
}

func (s *LectureService) Create(ctx context.Context, input LectureInput) (models.Lecture, error) {
	if err := s.client.check(input); err != nil {
		return models.Lecture{}, err
	}
	fields := []formField{
		{"title", input.Title},
		{"description", input.Description},
		{"type", string(input.Type)},
		{"lessonId", input.LessonID},
	}
	return s.upload(ctx, http.MethodPost, "/lectures", fields, input.Content)
}

func (s *LectureService) Update(ctx context.Context, id string, input LectureUpdate) (models.Lecture, error) {
	if err := s.client.check(input); err != nil {
		return models.Lecture{}, err
	}
	fields := []formField{}
	for _, field := range []formField{
		{"title", input.Title},
		{"description", input.Description},
		{"type", string(input.Type)},
	} {
		if field.value != "" {
			fields = append(fields, field)
		}
	}
	return s.upload(ctx, http.MethodPut, "/lectures/"+escape(id), fields, input.Content)
}

func (s *LectureService) Delete(ctx context.Context, id string) error {
	_, err := send[any](ctx, s.client, http.MethodDelete, "/lectures/"+escape(id), nil)
	return err
}

type formField struct {
	name  string
	value string
}

// upload sends the lecture as multipart/form-data. The whole form is buffered so that the
// request can be replayed after a credential refresh.
func (s *LectureService) upload(
	ctx context.Context,
	method, path string,
	fields []formField,
	content LectureContentInput,
) (models.Lecture, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	if content.Text != "" {
		fields = append(fields, formField{"content.text", content.Text})
	}
	if content.Duration > 0 {
		fields = append(fields, formField{"content.duration", strconv.Itoa(content.Duration)})
	}
	for _, field := range fields {
		if err := writer.WriteField(field.name, field.value); err != nil {
			return models.Lecture{}, err
		}
	}
	if content.Video != nil && content.Video.Content != nil {
		part, err := writer.CreateFormFile("content.video", content.Video.Filename)
		if err != nil {
			return models.Lecture{}, err
		}
		if _, err := io.Copy(part, content.Video.Content); err != nil {
			return models.Lecture{}, err
		}
	}
	if err := writer.Close(); err != nil {
		return models.Lecture{}, err
	}
	req := gateway.Request{
		Method:      method,
		Path:        path,
		Body:        body.Bytes(),
		ContentType: writer.FormDataContentType(),
	}
	envelope, err := call[models.Lecture](ctx, s.client, req)
	return envelope.Data, err
}
