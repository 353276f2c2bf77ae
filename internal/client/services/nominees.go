package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/dmitrijs2005/crux/internal/client/models"
	"github.com/dmitrijs2005/crux/internal/client/repositories/nominees"
	"github.com/dmitrijs2005/crux/internal/common"
)

var (
	ErrNomineeExists   = errors.New("nominee already added")
	ErrNomineeNotFound = errors.New("nominee not found")
)

var validate = validator.New()

type NomineeService interface {
	Add(ctx context.Context, email string, relationship models.Relationship) (*models.Nominee, error)
	Remove(ctx context.Context, email string) error
	List(ctx context.Context) ([]models.Nominee, error)
}

type nomineeService struct {
	repo nominees.Repository
	now  func() time.Time
}

func NewNomineeService(repo nominees.Repository) NomineeService {
	return &nomineeService{repo: repo, now: time.Now}
}

type nomineeInput struct {
	Email        string `validate:"required,email"`
	Relationship string `validate:"required,oneof=Friend Mom Dad Brother Sister"`
}

func (s *nomineeService) Add(ctx context.Context, email string, relationship models.Relationship) (*models.Nominee, error) {
	in := nomineeInput{Email: strings.TrimSpace(email), Relationship: string(relationship)}
	if err := validate.Struct(in); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorValidation, err)
	}

	n := &models.Nominee{
		ID:           uuid.NewString(),
		Email:        in.Email,
		Relationship: relationship,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.repo.Insert(ctx, n); err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, ErrNomineeExists
		}
		return nil, fmt.Errorf("saving error: %w", err)
	}
	return n, nil
}

func (s *nomineeService) Remove(ctx context.Context, email string) error {
	if err := s.repo.DeleteByEmail(ctx, email); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return ErrNomineeNotFound
		}
		return fmt.Errorf("delete error: %w", err)
	}
	return nil
}

func (s *nomineeService) List(ctx context.Context) ([]models.Nominee, error) {
	list, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list error: %w", err)
	}
	return list, nil
}
