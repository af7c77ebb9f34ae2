package form

import (
	apiError "collaborative-hiring-intake/internal/errors"
	"collaborative-hiring-intake/internal/loxo"
	"collaborative-hiring-intake/redis"
	"context"
	defError "errors"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
	"gorm.io/gorm"
)

// Publisher is the external applicant-tracking collaborator.
type Publisher interface {
	SyncIntake(ctx context.Context, data map[string]any, existingJobID, existingCompanyID *int64) (*loxo.SyncResult, error)
}

type Service interface {
	ListForms(ctx context.Context, limit int) ([]Form, error)
	GetForm(ctx context.Context, formID string) (*Form, error)
	CreateForm(ctx context.Context, formID string, data Document) (*Form, bool, error)
	DeleteForm(ctx context.Context, formID string) error
	SaveForm(ctx context.Context, formID string, data Document) (*Form, error)
	SyncForm(ctx context.Context, formID string) (*loxo.SyncResult, error)
}

type DefaultService struct {
	repository Repository
	publisher  Publisher
	cache      *redis.Cache
}

func NewService(repository Repository, publisher Publisher, cache *redis.Cache) Service {
	return &DefaultService{
		repository: repository,
		publisher:  publisher,
		cache:      cache,
	}
}

const listCacheTTL = 10 * time.Minute

// formsVersionKey stamps list cache entries; every mutation bumps it.
const formsVersionKey = "forms:version"

func (s *DefaultService) ListForms(ctx context.Context, limit int) ([]Form, error) {
	v := s.cache.GetVersion(ctx, formsVersionKey)
	cacheKey := fmt.Sprintf("forms:v:%d:l:%d", v, limit)

	var forms []Form
	found, _ := s.cache.Get(ctx, cacheKey, &forms)
	if found {
		return forms, nil
	}

	forms, err := s.repository.ListRecent(ctx, limit)
	if err != nil {
		return nil, err
	}
	go s.cache.Set(context.Background(), cacheKey, forms, listCacheTTL)

	return forms, nil
}

func (s *DefaultService) GetForm(ctx context.Context, formID string) (*Form, error) {
	f, err := s.repository.FindByFormID(ctx, formID)
	if err != nil {
		if defError.Is(err, gorm.ErrRecordNotFound) {
			return nil, apiError.NotFound("Form not found", err)
		}
		return nil, err
	}
	return f, nil
}

// CreateForm is idempotent on formID: an existing form is returned untouched.
// The second return reports whether a new record was created. An empty formID
// gets a generated one.
func (s *DefaultService) CreateForm(ctx context.Context, formID string, data Document) (*Form, bool, error) {
	if formID == "" {
		formID = ulid.Make().String()
	}

	existing, err := s.repository.FindByFormID(ctx, formID)
	if err == nil {
		return existing, false, nil
	}
	if !defError.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	f := &Form{
		FormID: formID,
		Status: StatusDraft,
		Data:   data,
	}
	if err := s.repository.Insert(ctx, f); err != nil {
		return nil, false, err
	}
	s.cache.IncrementVersion(ctx, formsVersionKey)

	return f, true, nil
}

func (s *DefaultService) DeleteForm(ctx context.Context, formID string) error {
	if err := s.repository.Delete(ctx, formID); err != nil {
		if defError.Is(err, gorm.ErrRecordNotFound) {
			return apiError.NotFound("Form not found", err)
		}
		return err
	}
	s.cache.IncrementVersion(ctx, formsVersionKey)
	return nil
}

// SaveForm is the explicit checkpoint path: replace data, advance status, and
// return the updated record.
func (s *DefaultService) SaveForm(ctx context.Context, formID string, data Document) (*Form, error) {
	if err := s.repository.ReplaceData(ctx, formID, data); err != nil {
		if defError.Is(err, gorm.ErrRecordNotFound) {
			return nil, apiError.NotFound("Form not found", err)
		}
		return nil, err
	}
	s.cache.IncrementVersion(ctx, formsVersionKey)

	return s.repository.FindByFormID(ctx, formID)
}

// SyncForm validates the minimum required fields, delegates to the publish
// collaborator and records the returned Loxo ids. Validation and downstream
// failures leave the document untouched.
func (s *DefaultService) SyncForm(ctx context.Context, formID string) (*loxo.SyncResult, error) {
	f, err := s.repository.FindByFormID(ctx, formID)
	if err != nil {
		if defError.Is(err, gorm.ErrRecordNotFound) {
			return nil, apiError.NotFound("Form not found", err)
		}
		return nil, err
	}

	var details []apiError.FieldError
	if LookupString(f.Data, "jobTitle") == "" {
		details = append(details, apiError.FieldError{Field: "jobTitle", Message: "Job title is required"})
	}
	if LookupString(f.Data, "clientCompany.name") == "" {
		details = append(details, apiError.FieldError{Field: "clientCompany.name", Message: "Client company name is required"})
	}
	if len(details) > 0 {
		return nil, apiError.Validation(details)
	}

	result, err := s.publisher.SyncIntake(ctx, f.Data, f.LoxoJobID, f.LoxoCompanyID)
	if err != nil {
		return nil, apiError.Downstream(err)
	}

	if err := s.repository.MarkSubmitted(ctx, formID, result.JobID, result.CompanyID); err != nil {
		return nil, err
	}
	s.cache.IncrementVersion(ctx, formsVersionKey)

	return result, nil
}
