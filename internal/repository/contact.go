package repository

import (
	"context"
	"time"

	"github.com/doctrot/site-server-go/internal/database"
	"github.com/doctrot/site-server-go/internal/model"
	"github.com/doctrot/site-server-go/internal/store"
)

const contactSubmissionsTable = "contact_submissions"

type ContactSubmissionRepository interface {
	Create(ctx context.Context, params model.CreateContactSubmissionParams, now time.Time) (*model.ContactSubmission, error)
	FindByID(ctx context.Context, id int64) (*model.ContactSubmission, error)
	List(ctx context.Context, limit, offset int) ([]model.ContactSubmission, int, error)
	MarkRead(ctx context.Context, id int64, now time.Time) (bool, error)
	Delete(ctx context.Context, id int64) (bool, error)
	CountUnread(ctx context.Context) (int, error)
}

type contactSubmissionRepo struct {
	table *store.Table[model.ContactSubmission]
}

func NewContactSubmissionRepository(db database.DBTX) ContactSubmissionRepository {
	return &contactSubmissionRepo{table: store.NewTable[model.ContactSubmission](db, contactSubmissionsTable)}
}

func (r *contactSubmissionRepo) Create(ctx context.Context, params model.CreateContactSubmissionParams, now time.Time) (*model.ContactSubmission, error) {
	return r.table.Insert(ctx, store.Values{
		"name":       params.Name,
		"email":      params.Email,
		"phone":      params.Phone,
		"subject":    params.Subject,
		"message":    params.Message,
		"is_read":    false,
		"created_at": now,
		"updated_at": now,
	})
}

func (r *contactSubmissionRepo) FindByID(ctx context.Context, id int64) (*model.ContactSubmission, error) {
	return r.table.GetOne(ctx, store.Where(store.Eq("id", id)))
}

// List returns submissions newest first together with the total count.
func (r *contactSubmissionRepo) List(ctx context.Context, limit, offset int) ([]model.ContactSubmission, int, error) {
	page, err := r.table.Query(ctx, store.Query{
		OrderBy:   []store.Order{store.Desc("created_at"), store.Desc("id")},
		Offset:    offset,
		Limit:     limit,
		WithCount: true,
	})
	if err != nil {
		return nil, 0, err
	}
	return page.Records, page.Count, nil
}

func (r *contactSubmissionRepo) MarkRead(ctx context.Context, id int64, now time.Time) (bool, error) {
	n, err := r.table.Update(ctx, store.Where(store.Eq("id", id)), store.Values{
		"is_read":    true,
		"updated_at": now,
	})
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *contactSubmissionRepo) Delete(ctx context.Context, id int64) (bool, error) {
	n, err := r.table.Delete(ctx, store.Where(store.Eq("id", id)))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *contactSubmissionRepo) CountUnread(ctx context.Context) (int, error) {
	return r.table.Count(ctx, store.Where(store.Eq("is_read", false)))
}
