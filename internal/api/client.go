// Package api is a typed client for the CourseHub backend. Every call goes through the
// authenticated request gateway so the services never deal with credentials themselves.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/coursehub/coursehub-gateway/internal/config"
	"github.com/coursehub/coursehub-gateway/internal/gateway"
	"github.com/coursehub/coursehub-gateway/internal/gwerrors"
	"github.com/coursehub/coursehub-gateway/internal/models"
)

// Gateway is the part of the authenticated request gateway used by the services
type Gateway interface {
	Do(ctx context.Context, req gateway.Request) (*gateway.Response, error)
	SetCredential(ctx context.Context, value string) error
	ClearSession(ctx context.Context) error
	Refresh(ctx context.Context) error
}

type Client struct {
	gateway    Gateway
	baseURL    *url.URL
	endpoints  config.EndpointsConfig
	validate   *validator.Validate
	translator ut.Translator
	// generates the Idempotency-Key sent with payment requests
	idempotencyKey func() string

	Auth      *AuthService
	Courses   *CourseService
	Lessons   *LessonService
	Lectures  *LectureService
	Quizzes   *QuizService
	Payments  *PaymentService
	Purchases *PurchaseService
}

type ClientOption func(*Client) error

func WithGateway(gw Gateway) ClientOption {
	return func(c *Client) error {
		c.gateway = gw
		return nil
	}
}

// WithBaseURL is the backend location, only needed to build links such as the Google sign-in URL
func WithBaseURL(baseURL *url.URL) ClientOption {
	return func(c *Client) error {
		if baseURL == nil {
			return fmt.Errorf("the base url cannot be nil")
		}
		copied := *baseURL
		c.baseURL = &copied
		return nil
	}
}

// WithEndpoints sets the authentication endpoints, they have to match the ones of the gateway
func WithEndpoints(endpoints config.EndpointsConfig) ClientOption {
	return func(c *Client) error {
		if endpoints.Login == "" || endpoints.Logout == "" || endpoints.Refresh == "" {
			return fmt.Errorf("the authentication endpoints cannot be empty")
		}
		c.endpoints = endpoints
		return nil
	}
}

func WithIdempotencyKeyGenerator(generator func() string) ClientOption {
	return func(c *Client) error {
		c.idempotencyKey = generator
		return nil
	}
}

func NewClient(options ...ClientOption) (*Client, error) {
	validate, translator := newValidator()
	c := &Client{
		validate:       validate,
		translator:     translator,
		idempotencyKey: uuid.NewString,
		endpoints: config.EndpointsConfig{
			Login:   "/auth/login",
			Refresh: "/auth/refresh",
			Logout:  "/auth/logout",
		},
	}
	for _, opt := range options {
		err := opt(c)
		if err != nil {
			return &Client{}, err
		}
	}
	if c.gateway == nil {
		return &Client{}, fmt.Errorf("gateway not initialized")
	}
	c.Auth = &AuthService{client: c}
	c.Courses = &CourseService{client: c}
	c.Lessons = &LessonService{client: c}
	c.Lectures = &LectureService{client: c}
	c.Quizzes = &QuizService{client: c}
	c.Payments = &PaymentService{client: c}
	c.Purchases = &PurchaseService{client: c}
	return c, nil
}

// Page selects a page of a listing, zero values are left out of the query
type Page struct {
	Page  int `json:"page" validate:"gte=0"`
	Limit int `json:"limit" validate:"gte=0,lte=100"`
}

func (p Page) query() url.Values {
	query := url.Values{}
	if p.Page > 0 {
		query.Set("page", strconv.Itoa(p.Page))
	}
	if p.Limit > 0 {
		query.Set("limit", strconv.Itoa(p.Limit))
	}
	return query
}

func jsonRequest(method, path string, payload any) (gateway.Request, error) {
	req := gateway.Request{Method: method, Path: path}
	if payload == nil {
		return req, nil
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return gateway.Request{}, err
	}
	req.Body = body
	req.ContentType = "application/json"
	return req, nil
}

// call sends the request and decodes the data field of the response envelope into T
func call[T any](ctx context.Context, c *Client, req gateway.Request) (models.Envelope[T], error) {
	var envelope models.Envelope[T]
	res, err := c.gateway.Do(ctx, req)
	if err != nil {
		return envelope, err
	}
	if len(bytes.TrimSpace(res.Body)) == 0 || res.StatusCode == http.StatusNoContent {
		return envelope, nil
	}
	err = json.Unmarshal(res.Body, &envelope)
	if err != nil {
		return envelope, fmt.Errorf("%w: %s %s: %w", gwerrors.ErrInvalidResponse, req.Method, req.Path, err)
	}
	return envelope, nil
}

func get[T any](ctx context.Context, c *Client, path string, query url.Values) (T, error) {
	envelope, err := call[T](ctx, c, gateway.Request{Method: http.MethodGet, Path: path, Query: query})
	return envelope.Data, err
}

func send[T any](ctx context.Context, c *Client, method, path string, payload any) (T, error) {
	var empty T
	req, err := jsonRequest(method, path, payload)
	if err != nil {
		return empty, err
	}
	envelope, err := call[T](ctx, c, req)
	return envelope.Data, err
}

func escape(id string) string {
	return url.PathEscape(id)
}
