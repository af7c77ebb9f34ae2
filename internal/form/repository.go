package form

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"gorm.io/gorm"
)

// ErrInvalidFieldPath is returned for field paths that are not dotted
// sequences of [A-Za-z0-9_] segments. Paths come straight from clients and
// are spliced into jsonb_set path literals, so anything else is rejected.
var ErrInvalidFieldPath = errors.New("invalid field path")

var fieldPathPattern = regexp.MustCompile(`^[A-Za-z0-9_]+(\.[A-Za-z0-9_]+)*$`)

type Repository interface {
	FindByFormID(ctx context.Context, formID string) (*Form, error)
	Insert(ctx context.Context, form *Form) error
	Delete(ctx context.Context, formID string) error
	ListRecent(ctx context.Context, limit int) ([]Form, error)
	ReplaceData(ctx context.Context, formID string, data Document) error
	SetField(ctx context.Context, formID string, path string, value any) error
	MarkSubmitted(ctx context.Context, formID string, jobID, companyID int64) error
	FormData(ctx context.Context, formID string) (Document, error)
}

type RepositoryImpl struct {
	db *gorm.DB
}

// NewRepository creates a new form repository
func NewRepository(db *gorm.DB) Repository {
	return &RepositoryImpl{db: db}
}

func (r *RepositoryImpl) FindByFormID(ctx context.Context, formID string) (*Form, error) {
	var f Form
	err := r.db.WithContext(ctx).Where("form_id = ?", formID).First(&f).Error
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *RepositoryImpl) Insert(ctx context.Context, form *Form) error {
	now := time.Now().UTC()
	form.CreatedAt = now
	form.UpdatedAt = now
	if form.Status == "" {
		form.Status = StatusDraft
	}
	if form.Data == nil {
		form.Data = DefaultData()
	}
	return r.db.WithContext(ctx).Create(form).Error
}

func (r *RepositoryImpl) Delete(ctx context.Context, formID string) error {
	res := r.db.WithContext(ctx).Where("form_id = ?", formID).Delete(&Form{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *RepositoryImpl) ListRecent(ctx context.Context, limit int) ([]Form, error) {
	var forms []Form
	err := r.db.WithContext(ctx).
		Order("updated_at DESC").
		Limit(limit).
		Find(&forms).Error
	return forms, err
}

// ReplaceData swaps the whole payload in one statement. The draft to
// in_progress advance and the revision bump ride along so two racing writers
// cannot observe a half-applied update.
func (r *RepositoryImpl) ReplaceData(ctx context.Context, formID string, data Document) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}

	res := r.db.WithContext(ctx).Exec(`
		UPDATE forms
		SET data = ?::jsonb,
		    status = CASE WHEN status = 'draft' THEN 'in_progress' ELSE status END,
		    revision = revision + 1,
		    updated_at = ?
		WHERE form_id = ?
	`, string(raw), time.Now().UTC(), formID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// SetField writes a single dotted path inside data, leaving the rest of the
// payload untouched. Missing intermediate objects are created, matching what
// a mongo $set on "data.a.b" would do.
func (r *RepositoryImpl) SetField(ctx context.Context, formID string, path string, value any) error {
	segments, err := splitFieldPath(path)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}

	query := fmt.Sprintf(`
		UPDATE forms
		SET data = %s,
		    status = CASE WHEN status = 'draft' THEN 'in_progress' ELSE status END,
		    revision = revision + 1,
		    updated_at = ?
		WHERE form_id = ?
	`, jsonbSetExpr(segments))

	res := r.db.WithContext(ctx).Exec(query, string(raw), time.Now().UTC(), formID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *RepositoryImpl) MarkSubmitted(ctx context.Context, formID string, jobID, companyID int64) error {
	now := time.Now().UTC()
	res := r.db.WithContext(ctx).Model(&Form{}).
		Where("form_id = ?", formID).
		Updates(map[string]any{
			"status":          StatusSubmitted,
			"loxo_job_id":     jobID,
			"loxo_company_id": companyID,
			"submitted_at":    now,
			"updated_at":      now,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// FormData returns the current payload, or nil (without error) when the form
// does not exist. Joining sessions treat a nil payload as "no snapshot".
func (r *RepositoryImpl) FormData(ctx context.Context, formID string) (Document, error) {
	f, err := r.FindByFormID(ctx, formID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return f.Data, nil
}

func splitFieldPath(path string) ([]string, error) {
	if !fieldPathPattern.MatchString(path) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidFieldPath, path)
	}
	return strings.Split(path, "."), nil
}

// jsonbSetExpr builds a nested jsonb_set expression writing the value bound
// to the first placeholder at the given path. Each proper prefix of the path
// is coalesced to an empty object first, since jsonb_set alone will not
// create missing parents.
func jsonbSetExpr(segments []string) string {
	expr := "data"
	for i := 1; i < len(segments); i++ {
		prefix := "{" + strings.Join(segments[:i], ",") + "}"
		expr = fmt.Sprintf(
			"jsonb_set(%s, '%s', COALESCE(data#>'%s', '{}'::jsonb), true)",
			expr, prefix, prefix,
		)
	}
	return fmt.Sprintf(
		"jsonb_set(%s, '{%s}', ?::jsonb, true)",
		expr, strings.Join(segments, ","),
	)
}
