package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/doctrot/site-server-go/internal/errors"
	"github.com/doctrot/site-server-go/internal/model"
	"github.com/doctrot/site-server-go/internal/repository"
)

func newBlogService(t *testing.T) *BlogService {
	t.Helper()
	env := newTestEnv(t)
	svc := NewBlogService(repository.NewBlogRepository(env.db.DB))
	svc.now = env.clock.Now
	return svc
}

func validPost(title, category string) model.SaveBlogPostParams {
	return model.SaveBlogPostParams{
		Title:    title,
		Excerpt:  "Résumé",
		Content:  "<p>Contenu</p>",
		ImageURL: "/images/blog/1.jpg",
		Category: category,
	}
}

func TestBlogService_CreateAppliesDefaults(t *testing.T) {
	svc := newBlogService(t)

	post, err := svc.Create(context.Background(), validPost("  Trottinette en hiver ", ""))
	require.NoError(t, err)
	assert.Equal(t, "Trottinette en hiver", post.Title)
	assert.Equal(t, model.DefaultBlogAuthor, post.Author)
	assert.Equal(t, model.DefaultBlogCategory, post.Category)
	assert.Equal(t, "2026-10-15", post.Date)
}

func TestBlogService_Validation(t *testing.T) {
	svc := newBlogService(t)
	ctx := context.Background()

	missing := validPost("", "Conseils")
	_, err := svc.Create(ctx, missing)
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeValidation, appErr.Code)
	assert.Equal(t, "title is required", appErr.Message)

	badDate := validPost("Titre", "Conseils")
	badDate.Date = "15/10/2026"
	_, err = svc.Create(ctx, badDate)
	appErr, ok = apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, "date must use the YYYY-MM-DD format", appErr.Message)
}

func TestBlogService_ListPaginated(t *testing.T) {
	svc := newBlogService(t)
	ctx := context.Background()

	for i, cat := range []string{"Conseils", "Entretien", "Conseils", "Conseils"} {
		p := validPost("Post", cat)
		p.Date = []string{"2026-01-01", "2026-02-01", "2026-03-01", "2026-04-01"}[i]
		_, err := svc.Create(ctx, p)
		require.NoError(t, err)
	}

	page, err := svc.ListPaginated(ctx, 0, 0, "")
	require.NoError(t, err)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, DefaultBlogPageSize, page.Limit)
	assert.Equal(t, 4, page.TotalCount)

	page, err = svc.ListPaginated(ctx, 2, 2, "Conseils")
	require.NoError(t, err)
	assert.Equal(t, 3, page.TotalCount)
	assert.Len(t, page.Posts, 1)

	page, err = svc.ListPaginated(ctx, 1, 1000, "")
	require.NoError(t, err)
	assert.Equal(t, MaxBlogPageSize, page.Limit)
}

func TestBlogService_Related(t *testing.T) {
	svc := newBlogService(t)
	ctx := context.Background()

	var ids []int64
	for _, cat := range []string{"Conseils", "Conseils", "Conseils", "Conseils", "Conseils", "Entretien"} {
		post, err := svc.Create(ctx, validPost("Post", cat))
		require.NoError(t, err)
		ids = append(ids, post.ID)
	}

	related, err := svc.Related(ctx, ids[0], 10)
	require.NoError(t, err)
	assert.Len(t, related, RelatedPostsLimit)
	for _, p := range related {
		assert.NotEqual(t, ids[0], p.ID)
		assert.Equal(t, "Conseils", p.Category)
	}

	_, err = svc.Related(ctx, 9999, 3)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeNotFound))
}

func TestBlogService_UpdateAndDelete(t *testing.T) {
	svc := newBlogService(t)
	ctx := context.Background()

	post, err := svc.Create(ctx, validPost("Avant", "Conseils"))
	require.NoError(t, err)

	updated, err := svc.Update(ctx, post.ID, validPost("Après", "Entretien"))
	require.NoError(t, err)
	assert.Equal(t, "Après", updated.Title)
	assert.Equal(t, "Entretien", updated.Category)

	_, err = svc.Update(ctx, 9999, validPost("X", ""))
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeNotFound))

	require.NoError(t, svc.Delete(ctx, post.ID))
	err = svc.Delete(ctx, post.ID)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeNotFound))

	_, err = svc.Get(ctx, post.ID)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeNotFound))
}

func TestBlogService_Categories(t *testing.T) {
	svc := newBlogService(t)
	ctx := context.Background()

	for _, cat := range []string{"Entretien", "Conseils", "Entretien"} {
		_, err := svc.Create(ctx, validPost("Post", cat))
		require.NoError(t, err)
	}

	categories, err := svc.Categories(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Conseils", "Entretien"}, categories)
}
