package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Response, error)
	ListByResidence(ctx context.Context, residenceID string) ([]Response, error)
	GetByID(ctx context.Context, id string) (*Response, error)
	Update(ctx context.Context, req UpdateRequest) (*Response, error)
	Activate(ctx context.Context, id string) (*Response, error)
	Deactivate(ctx context.Context, id string) (*Response, error)
}

type CreateRequest struct {
	Name        string `json:"name"`
	ResidenceID string `json:"residence_id"`
	Active      *bool  `json:"active,omitempty"`
}

type UpdateRequest struct {
	ID   string  `json:"id"`
	Name *string `json:"name,omitempty"`
}

type Response struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	ResidenceID string    `json:"residence_id"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

var (
	ErrInvalidName        = errors.New("invalid_name")
	ErrInvalidID          = errors.New("invalid_id")
	ErrInvalidResidenceID = errors.New("invalid_residence_id")
	ErrNotFound           = errors.New("not_found")
)

func ParseID(value string) (snowflake.ID, error) {
	return snowflake.ParseString(value)
}
