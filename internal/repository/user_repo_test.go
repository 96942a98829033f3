package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qs3c/insider_go_server/internal/testutil"
)

func TestUserRepository_FindExpiredTrialUsers(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	repo := NewUserRepository(db)

	now := time.Now()
	cooldown := 24 * time.Hour

	// 试用已到期、从未提醒过：应命中
	expired := testutil.TestUser(t, db,
		testutil.WithTrial(now.Add(-48*time.Hour), now.Add(-24*time.Hour)))

	// 试用还在进行：不命中
	testutil.TestUser(t, db,
		testutil.WithTrial(now.Add(-1*time.Hour), now.Add(23*time.Hour)))

	// 已到期但冷却期内提醒过：不命中
	testutil.TestUser(t, db,
		testutil.WithTrial(now.Add(-72*time.Hour), now.Add(-48*time.Hour)),
		testutil.WithTrialNotifiedAt(now.Add(-1*time.Hour)))

	// 已到期、上次提醒超过冷却期：再次命中
	renotify := testutil.TestUser(t, db,
		testutil.WithTrial(now.Add(-96*time.Hour), now.Add(-72*time.Hour)),
		testutil.WithTrialNotifiedAt(now.Add(-48*time.Hour)))

	// 从未开通试用：不命中
	testutil.TestUser(t, db)

	users, err := repo.FindExpiredTrialUsers(now, cooldown)
	require.NoError(t, err)
	require.Len(t, users, 2)

	ids := []int64{users[0].ID, users[1].ID}
	assert.Contains(t, ids, expired.ID)
	assert.Contains(t, ids, renotify.ID)
}

func TestUserRepository_ExistsByEmail(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	repo := NewUserRepository(db)

	user := testutil.TestUser(t, db)

	exists, err := repo.ExistsByEmail(*user.Email)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.ExistsByEmail("nobody@example.com")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestUserRepository_UpdateFields(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	repo := NewUserRepository(db)

	user := testutil.TestUser(t, db)

	err := repo.UpdateFields(user.ID, map[string]interface{}{
		"has_used_trial":      true,
		"subscription_status": "trialing",
	})
	require.NoError(t, err)

	got, err := repo.GetByID(user.ID)
	require.NoError(t, err)
	assert.True(t, got.HasUsedTrial)
	assert.Equal(t, "trialing", got.SubscriptionStatus)
}
