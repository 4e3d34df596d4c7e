package dashboard

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"freequilt/internal/app/catalog"
	"freequilt/internal/app/directory"
	"freequilt/internal/app/notify"
)

func member() *directory.User {
	return &directory.User{
		ID:           1709294400000,
		FirstName:    "Ada",
		LastName:     "Lovelace",
		Email:        "ada@example.com",
		Username:     "ada1815",
		PasswordHash: "$2a$04$secret",
		SkillLevel:   directory.SkillExpert,
		Favorites:    []string{"tetris-tumble", "jelly-roll"},
		Stats:        directory.Stats{PatternsDownloaded: 7, Favorites: 2},
	}
}

func TestBuild(t *testing.T) {
	s := Build(member())

	assert.Equal(t, "Ada", s.WelcomeName)
	assert.Equal(t, "Ada Lovelace", s.UserName)
	assert.Equal(t, "Expert Quilter", s.UserLevel)
	assert.Equal(t, Stats{PatternsDownloaded: 7, ActiveProjects: 3, Favorites: 2, StreakDays: 24}, s.Stats)
	assert.Len(t, s.Projects, 3)
	assert.Len(t, s.Activity, 4)
	assert.Len(t, s.Events, 3)
	assert.Len(t, s.Favorites, 4)
}

func TestFavoriteCardsAreCatalogPatterns(t *testing.T) {
	index := catalog.MustLoad()
	for _, card := range FavoriteCards() {
		p, ok := index.Get(card.ID)
		require.True(t, ok, card.ID)
		assert.Equal(t, p.Title, card.Name)
	}
	assert.Equal(t, []string{"tetris-tumble", "dresden-delight", "modern-angle", "jelly-roll"}, FavoriteCardIDs())
}

func TestFormatting(t *testing.T) {
	assert.Equal(t, "In Progress", FormatStatus(StatusInProgress))
	assert.Equal(t, "Planning", FormatStatus(StatusPlanning))
	assert.Equal(t, "Completed", FormatStatus(StatusCompleted))
	assert.Equal(t, "on-hold", FormatStatus("on-hold"))

	assert.Equal(t, "Intermediate", FormatDifficulty("intermediate"))
	assert.Equal(t, "legendary", FormatDifficulty("legendary"))

	assert.Equal(t, "Beginner Quilter", FormatSkillLevel(directory.SkillBeginner))
	assert.Equal(t, "Quilter", FormatSkillLevel(""))
	assert.Equal(t, "Quilter", FormatSkillLevel("grandmaster"))
}

func TestEventAction(t *testing.T) {
	tests := []struct {
		action string
		want   string
	}{
		{ActionJoin, `Joined "Virtual Quilt Along" successfully!`},
		{ActionRegister, `Registered for "Virtual Quilt Along"!`},
		{ActionRemindMe, `Reminder set for "Virtual Quilt Along"!`},
	}
	for _, tt := range tests {
		t.Run(tt.action, func(t *testing.T) {
			notice, ok := EventAction(tt.action, "Virtual Quilt Along")
			require.True(t, ok)
			assert.Equal(t, notify.KindSuccess, notice.Kind)
			assert.Equal(t, tt.want, notice.Message)
		})
	}

	_, ok := EventAction("Ignore", "Virtual Quilt Along")
	assert.False(t, ok)
}

func TestQuickAction(t *testing.T) {
	r, ok := QuickAction(QuickBrowsePatterns)
	require.True(t, ok)
	assert.Equal(t, "index.html#patterns", r.Navigate)
	assert.Nil(t, r.Notice)

	r, ok = QuickAction(QuickCommunity)
	require.True(t, ok)
	require.NotNil(t, r.Notice)
	assert.Equal(t, "Community features coming soon!", r.Notice.Message)

	_, ok = QuickAction("Settings")
	assert.False(t, ok)
}

func TestExportUser(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	user := member()

	export, err := ExportUser(user, now)
	require.NoError(t, err)

	assert.Equal(t, "quilt-patterns-data-1709294400000.json", export.FileName)
	assert.NotContains(t, string(export.Data), "passwordHash")
	assert.NotContains(t, string(export.Data), "secret")
	assert.True(t, strings.HasPrefix(string(export.Data), "{\n  \"user\""))

	var doc struct {
		User      directory.User `json:"user"`
		Timestamp time.Time      `json:"timestamp"`
	}
	require.NoError(t, json.Unmarshal(export.Data, &doc))
	assert.Equal(t, "ada1815", doc.User.Username)
	assert.True(t, doc.Timestamp.Equal(now))

	// The caller's record keeps its hash.
	assert.NotEmpty(t, user.PasswordHash)
}
