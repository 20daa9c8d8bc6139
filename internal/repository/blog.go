package repository

import (
	"context"
	"time"

	"github.com/doctrot/site-server-go/internal/database"
	"github.com/doctrot/site-server-go/internal/model"
	"github.com/doctrot/site-server-go/internal/store"
)

const blogsTable = "blogs"

var blogSummaryColumns = []string{
	"id", "title", "excerpt", "image_url", "author", "date", "category", "created_at", "updated_at",
}

var blogNewestFirst = []store.Order{store.Desc("date"), store.Desc("id")}

type BlogListOptions struct {
	Category    string
	Limit       int
	Offset      int
	WithContent bool
	WithCount   bool
}

type BlogRepository interface {
	FindByID(ctx context.Context, id int64) (*model.BlogPost, error)
	List(ctx context.Context, opts BlogListOptions) ([]model.BlogPost, int, error)
	FindRelated(ctx context.Context, category string, excludeID int64, limit int) ([]model.BlogPost, error)
	Categories(ctx context.Context) ([]string, error)
	Create(ctx context.Context, params model.SaveBlogPostParams, now time.Time) (*model.BlogPost, error)
	Update(ctx context.Context, id int64, params model.SaveBlogPostParams, now time.Time) (*model.BlogPost, error)
	Delete(ctx context.Context, id int64) (bool, error)
}

type blogRepo struct {
	table *store.Table[model.BlogPost]
}

func NewBlogRepository(db database.DBTX) BlogRepository {
	return &blogRepo{table: store.NewTable[model.BlogPost](db, blogsTable)}
}

func (r *blogRepo) FindByID(ctx context.Context, id int64) (*model.BlogPost, error) {
	return r.table.GetOne(ctx, store.Where(store.Eq("id", id)))
}

func (r *blogRepo) List(ctx context.Context, opts BlogListOptions) ([]model.BlogPost, int, error) {
	var filter store.Filter
	if opts.Category != "" {
		filter = store.Where(store.Eq("category", opts.Category))
	}

	q := store.Query{
		Filter:    filter,
		OrderBy:   blogNewestFirst,
		Offset:    opts.Offset,
		Limit:     opts.Limit,
		WithCount: opts.WithCount,
	}
	if !opts.WithContent {
		q.Columns = blogSummaryColumns
	}

	page, err := r.table.Query(ctx, q)
	if err != nil {
		return nil, 0, err
	}
	return page.Records, page.Count, nil
}

func (r *blogRepo) FindRelated(ctx context.Context, category string, excludeID int64, limit int) ([]model.BlogPost, error) {
	page, err := r.table.Query(ctx, store.Query{
		Filter:  store.Where(store.Eq("category", category), store.Neq("id", excludeID)),
		OrderBy: blogNewestFirst,
		Limit:   limit,
		Columns: blogSummaryColumns,
	})
	if err != nil {
		return nil, err
	}
	return page.Records, nil
}

func (r *blogRepo) Categories(ctx context.Context) ([]string, error) {
	return r.table.Distinct(ctx, "category", nil)
}

func (r *blogRepo) Create(ctx context.Context, params model.SaveBlogPostParams, now time.Time) (*model.BlogPost, error) {
	values := blogValues(params, now)
	values["created_at"] = now
	return r.table.Insert(ctx, values)
}

// Update returns nil when no post has the given id.
func (r *blogRepo) Update(ctx context.Context, id int64, params model.SaveBlogPostParams, now time.Time) (*model.BlogPost, error) {
	n, err := r.table.Update(ctx, store.Where(store.Eq("id", id)), blogValues(params, now))
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil
	}
	return r.FindByID(ctx, id)
}

func (r *blogRepo) Delete(ctx context.Context, id int64) (bool, error) {
	n, err := r.table.Delete(ctx, store.Where(store.Eq("id", id)))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func blogValues(params model.SaveBlogPostParams, now time.Time) store.Values {
	return store.Values{
		"title":      params.Title,
		"excerpt":    params.Excerpt,
		"content":    params.Content,
		"image_url":  params.ImageURL,
		"author":     params.Author,
		"date":       params.Date,
		"category":   params.Category,
		"updated_at": now,
	}
}
