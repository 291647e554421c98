package api

import (
	"context"
	"net/http"

	"github.com/coursehub/coursehub-gateway/internal/models"
)

type PurchaseService struct {
	client *Client
}

func (s *PurchaseService) Purchase(ctx context.Context, courseID string) (models.Purchase, error) {
	if courseID == "" {
		return models.Purchase{}, &ValidationError{Fields: map[string]string{"courseId": "courseId is required"}}
	}
	return send[models.Purchase](ctx, s.client, http.MethodPost, "/courses/"+escape(courseID)+"/purchase", nil)
}

func (s *PurchaseService) History(ctx context.Context) ([]models.Course, error) {
	return get[[]models.Course](ctx, s.client, "/purchases/history", nil)
}

func (s *PurchaseService) Get(ctx context.Context, id string) (models.Course, error) {
	return get[models.Course](ctx, s.client, "/purchases/"+escape(id), nil)
}
