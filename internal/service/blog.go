package service

import (
	"context"
	"strings"
	"time"

	apperrors "github.com/doctrot/site-server-go/internal/errors"
	"github.com/doctrot/site-server-go/internal/model"
	"github.com/doctrot/site-server-go/internal/repository"
	"github.com/doctrot/site-server-go/internal/util"
)

const (
	SummaryLimit        = 50
	DefaultBlogPageSize = 6
	MaxBlogPageSize     = 50
	RelatedPostsLimit   = 3
)

type BlogService struct {
	repo repository.BlogRepository
	now  func() time.Time
}

func NewBlogService(repo repository.BlogRepository) *BlogService {
	return &BlogService{
		repo: repo,
		now:  func() time.Time { return time.Now().UTC() },
	}
}

// ListSummaries returns the newest posts without their content.
func (s *BlogService) ListSummaries(ctx context.Context) ([]model.BlogPost, error) {
	posts, _, err := s.repo.List(ctx, repository.BlogListOptions{Limit: SummaryLimit})
	if err != nil {
		return nil, apperrors.Database(err)
	}
	return posts, nil
}

// ListPaginated returns one 1-based page of posts, optionally restricted to
// a category, with the total number of matching posts.
func (s *BlogService) ListPaginated(ctx context.Context, page, limit int, category string) (*model.BlogPage, error) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = DefaultBlogPageSize
	}
	if limit > MaxBlogPageSize {
		limit = MaxBlogPageSize
	}

	posts, total, err := s.repo.List(ctx, repository.BlogListOptions{
		Category:    strings.TrimSpace(category),
		Limit:       limit,
		Offset:      (page - 1) * limit,
		WithContent: true,
		WithCount:   true,
	})
	if err != nil {
		return nil, apperrors.Database(err)
	}

	return &model.BlogPage{Posts: posts, TotalCount: total, Page: page, Limit: limit}, nil
}

func (s *BlogService) Get(ctx context.Context, id int64) (*model.BlogPost, error) {
	post, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if post == nil {
		return nil, apperrors.NotFound("Blog post")
	}
	return post, nil
}

// Related returns up to limit other posts of the same category.
func (s *BlogService) Related(ctx context.Context, id int64, limit int) ([]model.BlogPost, error) {
	if limit <= 0 || limit > RelatedPostsLimit {
		limit = RelatedPostsLimit
	}

	post, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	related, err := s.repo.FindRelated(ctx, post.Category, post.ID, limit)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	return related, nil
}

func (s *BlogService) Categories(ctx context.Context) ([]string, error) {
	categories, err := s.repo.Categories(ctx)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	return categories, nil
}

func (s *BlogService) Create(ctx context.Context, params model.SaveBlogPostParams) (*model.BlogPost, error) {
	params, err := s.prepare(params)
	if err != nil {
		return nil, err
	}

	post, err := s.repo.Create(ctx, params, s.now())
	if err != nil {
		return nil, apperrors.Database(err)
	}
	return post, nil
}

func (s *BlogService) Update(ctx context.Context, id int64, params model.SaveBlogPostParams) (*model.BlogPost, error) {
	params, err := s.prepare(params)
	if err != nil {
		return nil, err
	}

	post, err := s.repo.Update(ctx, id, params, s.now())
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if post == nil {
		return nil, apperrors.NotFound("Blog post")
	}
	return post, nil
}

func (s *BlogService) Delete(ctx context.Context, id int64) error {
	ok, err := s.repo.Delete(ctx, id)
	if err != nil {
		return apperrors.Database(err)
	}
	if !ok {
		return apperrors.NotFound("Blog post")
	}
	return nil
}

// prepare trims input, applies the author, date and category defaults and
// validates the result.
func (s *BlogService) prepare(params model.SaveBlogPostParams) (model.SaveBlogPostParams, error) {
	params.Title = strings.TrimSpace(params.Title)
	params.Excerpt = strings.TrimSpace(params.Excerpt)
	params.ImageURL = strings.TrimSpace(params.ImageURL)
	params.Author = strings.TrimSpace(params.Author)
	params.Date = strings.TrimSpace(params.Date)
	params.Category = strings.TrimSpace(params.Category)

	if params.Author == "" {
		params.Author = model.DefaultBlogAuthor
	}
	if params.Date == "" {
		params.Date = s.now().Format(model.BlogDateLayout)
	}
	if params.Category == "" {
		params.Category = model.DefaultBlogCategory
	}

	if err := util.ValidateStruct(params); err != nil {
		return params, apperrors.ValidationError(err.Error())
	}
	return params, nil
}
