package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doctrot/site-server-go/internal/model"
)

func seedPosts(t *testing.T, repo BlogRepository) []*model.BlogPost {
	t.Helper()
	posts := []model.SaveBlogPostParams{
		{Title: "Entretien des freins", Date: "2026-01-10", Category: "Entretien"},
		{Title: "Choisir sa batterie", Date: "2026-02-05", Category: "Conseils"},
		{Title: "Pneus pleins ou gonflables", Date: "2026-03-01", Category: "Entretien"},
		{Title: "Réglementation 2026", Date: "2026-03-20", Category: "Actualités"},
		{Title: "Hiver et trottinette", Date: "2026-04-02", Category: "Entretien"},
	}

	var created []*model.BlogPost
	for _, p := range posts {
		p.Excerpt = "Résumé"
		p.Content = "Contenu complet"
		p.ImageURL = "https://cdn.example.com/cover.jpg"
		p.Author = model.DefaultBlogAuthor
		post, err := repo.Create(context.Background(), p, testNow)
		require.NoError(t, err)
		created = append(created, post)
	}
	return created
}

func TestBlogRepository_List(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	repo := NewBlogRepository(db.DB)
	ctx := context.Background()
	seedPosts(t, repo)

	t.Run("paginates newest first", func(t *testing.T) {
		posts, total, err := repo.List(ctx, BlogListOptions{Limit: 2, Offset: 2, WithContent: true, WithCount: true})
		require.NoError(t, err)
		assert.Equal(t, 5, total)
		require.Len(t, posts, 2)
		assert.Equal(t, "Pneus pleins ou gonflables", posts[0].Title)
		assert.Equal(t, "Choisir sa batterie", posts[1].Title)
		assert.Equal(t, "Contenu complet", posts[0].Content)
	})

	t.Run("summaries omit content", func(t *testing.T) {
		posts, _, err := repo.List(ctx, BlogListOptions{Limit: 50})
		require.NoError(t, err)
		require.Len(t, posts, 5)
		assert.Empty(t, posts[0].Content)
		assert.Equal(t, "Hiver et trottinette", posts[0].Title)
	})

	t.Run("filters by category", func(t *testing.T) {
		posts, total, err := repo.List(ctx, BlogListOptions{Category: "Entretien", Limit: 10, WithCount: true})
		require.NoError(t, err)
		assert.Equal(t, 3, total)
		assert.Len(t, posts, 3)
	})
}

func TestBlogRepository_Related(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	repo := NewBlogRepository(db.DB)
	ctx := context.Background()
	posts := seedPosts(t, repo)

	related, err := repo.FindRelated(ctx, "Entretien", posts[4].ID, 3)
	require.NoError(t, err)
	require.Len(t, related, 2)
	assert.Equal(t, posts[2].ID, related[0].ID)
	assert.Equal(t, posts[0].ID, related[1].ID)
}

func TestBlogRepository_CRUD(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	repo := NewBlogRepository(db.DB)
	ctx := context.Background()
	posts := seedPosts(t, repo)

	t.Run("categories are distinct and sorted", func(t *testing.T) {
		categories, err := repo.Categories(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"Actualités", "Conseils", "Entretien"}, categories)
	})

	t.Run("update returns the stored post", func(t *testing.T) {
		updated, err := repo.Update(ctx, posts[0].ID, model.SaveBlogPostParams{
			Title: "Freins: le guide", Excerpt: "e", Content: "c", ImageURL: "i",
			Author: "Atelier", Date: "2026-01-11", Category: "Entretien",
		}, testNow)
		require.NoError(t, err)
		require.NotNil(t, updated)
		assert.Equal(t, "Freins: le guide", updated.Title)
		assert.Equal(t, "Atelier", updated.Author)
	})

	t.Run("update of unknown id returns nil", func(t *testing.T) {
		updated, err := repo.Update(ctx, 4242, model.SaveBlogPostParams{Title: "x"}, testNow)
		require.NoError(t, err)
		assert.Nil(t, updated)
	})

	t.Run("delete", func(t *testing.T) {
		ok, err := repo.Delete(ctx, posts[1].ID)
		require.NoError(t, err)
		assert.True(t, ok)

		found, err := repo.FindByID(ctx, posts[1].ID)
		require.NoError(t, err)
		assert.Nil(t, found)
	})
}
