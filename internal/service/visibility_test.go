package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/pulsefeed/backend/internal/models"
	"github.com/pulsefeed/backend/internal/service"
	"github.com/pulsefeed/backend/internal/testhelpers"
)

func createPost(t *testing.T, db *gorm.DB, userID uuid.UUID, body, privacy string) *models.Post {
	t.Helper()
	post := models.Post{
		UserID:    userID,
		Body:      body,
		Privacy:   privacy,
		Embedding: service.GenerateEmbedding(body),
	}
	require.NoError(t, db.Create(&post).Error)
	return &post
}

func setProfileVisibility(t *testing.T, db *gorm.DB, userID uuid.UUID, visibility string) {
	t.Helper()
	require.NoError(t, db.Model(&models.Setting{}).
		Where("user_id = ?", userID).
		Update("profile_visibility", visibility).Error)
}

func TestCanViewProfile(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	svc := service.NewVisibilityService(db)
	ctx := context.Background()

	owner := testhelpers.CreateTestUser(t, db, "Alice", "Smith", "alice@example.com", true)
	other := testhelpers.CreateTestUser(t, db, "Bob", "Jones", "bob@example.com", true)

	ok, err := svc.CanViewProfile(ctx, owner.ID, nil)
	require.NoError(t, err)
	assert.True(t, ok, "public profile visible anonymously")

	setProfileVisibility(t, db, owner.ID, models.PrivacyPrivate)

	ok, err = svc.CanViewProfile(ctx, owner.ID, nil)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = svc.CanViewProfile(ctx, owner.ID, &other.ID)
	require.NoError(t, err)
	assert.False(t, ok, "private profile hidden even from signed-in users")

	ok, err = svc.CanViewProfile(ctx, owner.ID, &owner.ID)
	require.NoError(t, err)
	assert.True(t, ok, "owner always sees their own profile")
}

func TestVisiblePosts(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	svc := service.NewVisibilityService(db)
	ctx := context.Background()

	owner := testhelpers.CreateTestUser(t, db, "Alice", "Smith", "alice@example.com", true)
	other := testhelpers.CreateTestUser(t, db, "Bob", "Jones", "bob@example.com", true)

	createPost(t, db, owner.ID, "public one", models.PrivacyPublic)
	createPost(t, db, owner.ID, "private one", models.PrivacyPrivate)

	posts, err := svc.VisiblePosts(ctx, owner.ID, &owner.ID)
	require.NoError(t, err)
	assert.Len(t, posts, 2, "owner sees both posts")

	posts, err = svc.VisiblePosts(ctx, owner.ID, &other.ID)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "public one", posts[0].Body)

	posts, err = svc.VisiblePosts(ctx, owner.ID, nil)
	require.NoError(t, err)
	assert.Len(t, posts, 1)

	setProfileVisibility(t, db, owner.ID, models.PrivacyPrivate)

	posts, err = svc.VisiblePosts(ctx, owner.ID, &other.ID)
	require.NoError(t, err)
	assert.Empty(t, posts, "private profile hides even public posts")

	posts, err = svc.VisiblePosts(ctx, owner.ID, &owner.ID)
	require.NoError(t, err)
	assert.Len(t, posts, 2, "profile visibility never hides posts from the owner")
}

func TestHomeFeed(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	svc := service.NewVisibilityService(db)
	ctx := context.Background()

	alice := testhelpers.CreateTestUser(t, db, "Alice", "Smith", "alice@example.com", true)
	bob := testhelpers.CreateTestUser(t, db, "Bob", "Jones", "bob@example.com", true)
	carol := testhelpers.CreateTestUser(t, db, "Carol", "Brown", "carol@example.com", true)

	createPost(t, db, alice.ID, "alice public", models.PrivacyPublic)
	createPost(t, db, alice.ID, "alice private", models.PrivacyPrivate)
	createPost(t, db, bob.ID, "bob public", models.PrivacyPublic)
	createPost(t, db, carol.ID, "carol public", models.PrivacyPublic)
	setProfileVisibility(t, db, carol.ID, models.PrivacyPrivate)

	// anonymous: only public posts of public profiles
	posts, err := svc.HomeFeed(ctx, nil)
	require.NoError(t, err)
	bodies := postBodies(posts)
	assert.ElementsMatch(t, []string{"alice public", "bob public"}, bodies)

	// alice additionally sees her own private post
	posts, err = svc.HomeFeed(ctx, &alice.ID)
	require.NoError(t, err)
	bodies = postBodies(posts)
	assert.ElementsMatch(t, []string{"alice public", "alice private", "bob public"}, bodies)

	// carol sees her own post despite her private profile
	posts, err = svc.HomeFeed(ctx, &carol.ID)
	require.NoError(t, err)
	bodies = postBodies(posts)
	assert.ElementsMatch(t, []string{"alice public", "bob public", "carol public"}, bodies)
}

func TestHomeFeedOrdering(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	svc := service.NewVisibilityService(db)

	alice := testhelpers.CreateTestUser(t, db, "Alice", "Smith", "alice@example.com", true)
	createPost(t, db, alice.ID, "first", models.PrivacyPublic)
	createPost(t, db, alice.ID, "second", models.PrivacyPublic)
	createPost(t, db, alice.ID, "third", models.PrivacyPublic)

	posts, err := svc.HomeFeed(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, posts, 3)
	for i := 1; i < len(posts); i++ {
		assert.False(t, posts[i].CreatedAt.After(posts[i-1].CreatedAt), "feed is newest first")
	}
}

func postBodies(posts []models.Post) []string {
	bodies := make([]string, 0, len(posts))
	for _, p := range posts {
		bodies = append(bodies, p.Body)
	}
	return bodies
}
