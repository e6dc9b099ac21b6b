package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Engineer-Guild-Hackathon/team-9-app/internal/domain"
)

func TestPublicURL(t *testing.T) {
	base := "https://example.supabase.co/storage/v1/object/public/images"

	assert.Equal(t, base+"/public/1700000000000_a.png", publicURL(base, "public/1700000000000_a.png"))
	assert.Equal(t, base+"/public/1700000000000_a.png", publicURL(base+"/", "/public/1700000000000_a.png"))
	assert.Equal(t, base+"/public/a%20b.png", publicURL(base, "public/a b.png"))
}

func TestListPrefix(t *testing.T) {
	assert.Equal(t, "public/", listPrefix("public"))
	assert.Equal(t, "public/", listPrefix("/public/"))
	assert.Equal(t, "", listPrefix(""))
}

func TestSortAndPage(t *testing.T) {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	objects := func() []domain.ObjectInfo {
		return []domain.ObjectInfo{
			{Path: "public/1_a.png", CreatedAt: base},
			{Path: "public/3_c.png", CreatedAt: base.Add(2 * time.Minute)},
			{Path: "public/2_b.png", CreatedAt: base.Add(time.Minute)},
			{Path: "public/2_z.png", CreatedAt: base.Add(time.Minute)},
		}
	}
	paths := func(objs []domain.ObjectInfo) []string {
		out := make([]string, 0, len(objs))
		for _, o := range objs {
			out = append(out, o.Path)
		}
		return out
	}

	t.Run("newest first", func(t *testing.T) {
		got := sortAndPage(objects(), domain.ListOptions{SortBy: domain.SortCreatedAtDesc})
		assert.Equal(t, []string{"public/3_c.png", "public/2_z.png", "public/2_b.png", "public/1_a.png"}, paths(got))
	})

	t.Run("oldest first", func(t *testing.T) {
		got := sortAndPage(objects(), domain.ListOptions{SortBy: domain.SortCreatedAtAsc})
		assert.Equal(t, []string{"public/1_a.png", "public/2_b.png", "public/2_z.png", "public/3_c.png"}, paths(got))
	})

	t.Run("limit and offset", func(t *testing.T) {
		got := sortAndPage(objects(), domain.ListOptions{Limit: 2, Offset: 1, SortBy: domain.SortCreatedAtDesc})
		assert.Equal(t, []string{"public/2_z.png", "public/2_b.png"}, paths(got))
	})

	t.Run("offset past end", func(t *testing.T) {
		got := sortAndPage(objects(), domain.ListOptions{Offset: 10})
		assert.Empty(t, got)
	})
}
