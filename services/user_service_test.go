package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"job-board-api/auth"
	"job-board-api/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUserService(t *testing.T) (*UserService, *auth.TokenManager) {
	t.Helper()
	tokens, err := auth.NewTokenManager("test-secret", time.Hour)
	require.NoError(t, err)
	return NewUserService(newTestDB(t), tokens), tokens
}

func strp(s string) *string { return &s }

func TestRegisterAndAuthenticate(t *testing.T) {
	svc, tokens := newUserService(t)
	ctx := context.Background()

	res, err := svc.Register(ctx, RegisterInput{
		FirstName:   "Paula",
		LastName:    "Poster",
		Email:       "  Paula@Example.com ",
		Password:    "correct-horse",
		Role:        models.RoleJobPoster,
		CompanyName: "Acme",
	})
	require.NoError(t, err)
	assert.Equal(t, "paula@example.com", res.User.Email)
	assert.NotEqual(t, "correct-horse", res.User.Password)
	require.NotNil(t, res.User.CompanyName)
	assert.Equal(t, "Acme", *res.User.CompanyName)

	claims, err := tokens.Parse(res.Token)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, claims.UserID)
	assert.Equal(t, string(models.RoleJobPoster), claims.Role)

	login, err := svc.Authenticate(ctx, "PAULA@example.com", "correct-horse")
	require.NoError(t, err)
	assert.NotEmpty(t, login.Token)
	assert.Equal(t, res.User.ID, login.User.ID)

	_, err = svc.Authenticate(ctx, "paula@example.com", "wrong-password")
	assert.Equal(t, KindUnauthorized, KindOf(err))
	_, err = svc.Authenticate(ctx, "nobody@example.com", "correct-horse")
	assert.Equal(t, KindUnauthorized, KindOf(err))
	assert.Equal(t, "Invalid credentials", MessageOf(err))
}

func TestRegisterNormalizesEmailWithStrayNulBytes(t *testing.T) {
	svc, _ := newUserService(t)
	ctx := context.Background()

	res, err := svc.Register(ctx, RegisterInput{
		FirstName: "Jane",
		LastName:  "Doe",
		Email:     "  Jane@Example.COM \x00",
		Password:  "password1",
		Role:      models.RoleJobSeeker,
	})
	require.NoError(t, err)
	assert.Equal(t, "jane@example.com", res.User.Email)

	login, err := svc.Authenticate(ctx, "jane@example.com \x00", "password1")
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, login.User.ID)
}

func TestRegisterRejectsDuplicatesAndBadInput(t *testing.T) {
	svc, _ := newUserService(t)
	ctx := context.Background()

	in := RegisterInput{FirstName: "Sam", LastName: "Seeker", Email: "sam@example.com", Password: "password1", Role: models.RoleJobSeeker}
	_, err := svc.Register(ctx, in)
	require.NoError(t, err)

	_, err = svc.Register(ctx, in)
	assert.Equal(t, KindConflict, KindOf(err))

	bad := in
	bad.Email = "not-an-email"
	_, err = svc.Register(ctx, bad)
	assert.Equal(t, KindBadRequest, KindOf(err))

	bad = in
	bad.Email = "other@example.com"
	bad.Password = "short"
	_, err = svc.Register(ctx, bad)
	assert.Equal(t, KindBadRequest, KindOf(err))

	bad = in
	bad.Email = "other@example.com"
	bad.Role = "admin"
	_, err = svc.Register(ctx, bad)
	assert.Equal(t, KindBadRequest, KindOf(err))
}

func TestUpdateProfile(t *testing.T) {
	svc, _ := newUserService(t)
	ctx := context.Background()

	res, err := svc.Register(ctx, RegisterInput{FirstName: "Sam", LastName: "Seeker", Email: "sam@example.com", Password: "password1", Role: models.RoleJobSeeker})
	require.NoError(t, err)
	id := NewIdentity(res.User)

	skills := []string{"go", "", "sql"}
	user, err := svc.UpdateProfile(ctx, id, ProfileUpdate{
		Location:    strp("Lisbon"),
		Skills:      &skills,
		GithubURL:   strp("https://github.com/sam"),
		Bio:         strp("Gopher"),
		FirstName:   strp("Samuel"),
		LinkedinURL: strp(""),
	})
	require.NoError(t, err)
	assert.Equal(t, "Samuel", user.FirstName)
	require.NotNil(t, user.Location)
	assert.Equal(t, "Lisbon", *user.Location)
	assert.Equal(t, []string{"go", "sql"}, []string(user.Skills))
	assert.Nil(t, user.LinkedinURL)
	assert.Equal(t, models.RoleJobSeeker, user.Role)

	_, err = svc.UpdateProfile(ctx, id, ProfileUpdate{GithubURL: strp("ftp://example.com")})
	assert.Equal(t, KindBadRequest, KindOf(err))

	_, err = svc.UpdateProfile(ctx, id, ProfileUpdate{Bio: strp(strings.Repeat("b", 501))})
	assert.Equal(t, KindBadRequest, KindOf(err))

	_, err = svc.UpdateProfile(ctx, id, ProfileUpdate{LastName: strp("  ")})
	assert.Equal(t, KindBadRequest, KindOf(err))

	unchanged, err := svc.UpdateProfile(ctx, id, ProfileUpdate{})
	require.NoError(t, err)
	assert.Equal(t, "Samuel", unchanged.FirstName)
}

func TestIdentityByID(t *testing.T) {
	svc, _ := newUserService(t)
	ctx := context.Background()

	res, err := svc.Register(ctx, RegisterInput{FirstName: "Sam", LastName: "Seeker", Email: "sam@example.com", Password: "password1", Role: models.RoleJobSeeker})
	require.NoError(t, err)

	id, err := svc.IdentityByID(ctx, res.User.ID)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, id.UserID)
	assert.True(t, id.IsSeeker())
	assert.Equal(t, "Sam Seeker", id.DisplayName())

	_, err = svc.IdentityByID(ctx, res.User.ID+1)
	assert.Equal(t, KindNotFound, KindOf(err))
}
