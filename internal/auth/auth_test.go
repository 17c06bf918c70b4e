package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"immofds/server/internal/apperr"
	"immofds/server/internal/database"
	"immofds/server/internal/models"
)

type clock struct {
	t time.Time
}

func (c *clock) now() time.Time { return c.t }

func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

type fixture struct {
	db    *database.Database
	clock *clock
	auth  *Service
	users *UserService
}

func setup(t *testing.T) *fixture {
	gdb, err := database.NewTestDB()
	require.NoError(t, err)
	require.NoError(t, database.MigrateSchema(gdb))
	db := database.Wrap(gdb)

	c := &clock{t: time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)}
	logger, _ := test.NewNullLogger()
	tokens := NewTokenIssuer("test-secret", 15*time.Minute, c.now)
	return &fixture{
		db:    db,
		clock: c,
		auth:  NewService(db, tokens, 24*time.Hour, logger),
		users: NewUserService(db, logger),
	}
}

func (f *fixture) createAdmin(t *testing.T, email string, role models.UserRole) *models.User {
	u, err := f.users.Create(context.Background(), models.CreateUserInput{
		Email:     email,
		Password:  "s3cret-password",
		FirstName: "Claire",
		LastName:  "Dupont",
		Role:      role,
	})
	require.NoError(t, err)
	return u
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("correct horse")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse", hash)
	assert.True(t, CheckPassword("correct horse", hash))
	assert.False(t, CheckPassword("wrong", hash))
}

func TestTokenIssuer(t *testing.T) {
	c := &clock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	issuer := NewTokenIssuer("secret", time.Minute, c.now)
	user := &models.User{ID: 42, Email: "a@immofds.be", Role: models.RoleSuperAdmin}

	raw, err := issuer.Issue(user)
	require.NoError(t, err)

	claims, err := issuer.Parse(raw)
	require.NoError(t, err)
	id, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
	assert.Equal(t, models.RoleSuperAdmin, claims.Role)
	assert.Equal(t, "a@immofds.be", claims.Email)

	_, err = NewTokenIssuer("other", time.Minute, c.now).Parse(raw)
	assert.True(t, errors.Is(err, apperr.ErrInvalidToken))

	c.advance(2 * time.Minute)
	_, err = issuer.Parse(raw)
	assert.True(t, errors.Is(err, apperr.ErrInvalidToken))
	assert.Equal(t, "access token expired", apperr.MessageOf(err))

	_, err = issuer.Parse("not-a-token")
	assert.True(t, errors.Is(err, apperr.ErrInvalidToken))
}

func TestLogin(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	admin := f.createAdmin(t, "Claire@ImmoFDS.be", models.RoleAdmin)
	assert.Equal(t, "claire@immofds.be", admin.Email)

	resp, err := f.auth.Login(ctx, models.LoginInput{Email: "claire@immofds.be", Password: "s3cret-password"})
	require.NoError(t, err)
	assert.Equal(t, "Bearer", resp.TokenType)
	assert.Equal(t, int64(900), resp.ExpiresIn)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, admin.ID, resp.User.ID)

	claims, err := f.auth.Tokens().Parse(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, claims.Role)

	_, err = f.auth.Login(ctx, models.LoginInput{Email: "claire@immofds.be", Password: "nope"})
	assert.True(t, errors.Is(err, apperr.ErrInvalidToken))

	_, err = f.auth.Login(ctx, models.LoginInput{Email: "ghost@immofds.be", Password: "whatever"})
	assert.True(t, errors.Is(err, apperr.ErrInvalidToken))

	_, err = f.auth.Login(ctx, models.LoginInput{Email: "not-an-email"})
	assert.True(t, errors.Is(err, apperr.ErrValidation))
}

func TestLoginRevokesPreviousSessions(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	f.createAdmin(t, "claire@immofds.be", models.RoleAdmin)
	creds := models.LoginInput{Email: "claire@immofds.be", Password: "s3cret-password"}

	first, err := f.auth.Login(ctx, creds)
	require.NoError(t, err)
	_, err = f.auth.Login(ctx, creds)
	require.NoError(t, err)

	_, err = f.auth.Refresh(ctx, models.RefreshInput{RefreshToken: first.RefreshToken})
	assert.Equal(t, "refresh token not found", apperr.MessageOf(err))
}

func TestRefreshRotatesToken(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	f.createAdmin(t, "claire@immofds.be", models.RoleAdmin)

	login, err := f.auth.Login(ctx, models.LoginInput{Email: "claire@immofds.be", Password: "s3cret-password"})
	require.NoError(t, err)

	refreshed, err := f.auth.Refresh(ctx, models.RefreshInput{RefreshToken: login.RefreshToken})
	require.NoError(t, err)
	assert.NotEqual(t, login.RefreshToken, refreshed.RefreshToken)

	_, err = f.auth.Refresh(ctx, models.RefreshInput{RefreshToken: login.RefreshToken})
	assert.True(t, errors.Is(err, apperr.ErrInvalidToken))
	assert.Equal(t, "refresh token not found", apperr.MessageOf(err))
}

func TestExpiredRefreshTokenIsDeleted(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	f.createAdmin(t, "claire@immofds.be", models.RoleAdmin)

	login, err := f.auth.Login(ctx, models.LoginInput{Email: "claire@immofds.be", Password: "s3cret-password"})
	require.NoError(t, err)

	f.clock.advance(25 * time.Hour)
	in := models.RefreshInput{RefreshToken: login.RefreshToken}

	_, err = f.auth.Refresh(ctx, in)
	assert.True(t, errors.Is(err, apperr.ErrInvalidToken))
	assert.Equal(t, "refresh token expired", apperr.MessageOf(err))

	_, err = f.auth.Refresh(ctx, in)
	assert.Equal(t, "refresh token not found", apperr.MessageOf(err))
}

func TestLogoutIsIdempotent(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	f.createAdmin(t, "claire@immofds.be", models.RoleAdmin)

	login, err := f.auth.Login(ctx, models.LoginInput{Email: "claire@immofds.be", Password: "s3cret-password"})
	require.NoError(t, err)

	in := models.RefreshInput{RefreshToken: login.RefreshToken}
	require.NoError(t, f.auth.Logout(ctx, in))
	require.NoError(t, f.auth.Logout(ctx, in))

	_, err = f.auth.Refresh(ctx, in)
	assert.True(t, errors.Is(err, apperr.ErrInvalidToken))
}

func TestDisabledUserCannotLoginOrRefresh(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	admin := f.createAdmin(t, "claire@immofds.be", models.RoleAdmin)

	login, err := f.auth.Login(ctx, models.LoginInput{Email: "claire@immofds.be", Password: "s3cret-password"})
	require.NoError(t, err)

	_, err = f.users.Update(ctx, admin.ID, models.UpdateUserInput{
		Email: admin.Email, FirstName: "Claire", LastName: "Dupont", Role: models.RoleAdmin, Active: false,
	})
	require.NoError(t, err)

	_, err = f.auth.Refresh(ctx, models.RefreshInput{RefreshToken: login.RefreshToken})
	assert.True(t, errors.Is(err, apperr.ErrInvalidToken))

	_, err = f.auth.Login(ctx, models.LoginInput{Email: "claire@immofds.be", Password: "s3cret-password"})
	assert.Equal(t, "account is disabled", apperr.MessageOf(err))
}

func TestUserServiceCRUD(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	super := f.createAdmin(t, "root@immofds.be", models.RoleSuperAdmin)
	agent := f.createAdmin(t, "agent@immofds.be", models.RoleAdmin)

	_, err := f.users.Create(ctx, models.CreateUserInput{
		Email: "AGENT@immofds.be", Password: "another-pass", FirstName: "X", LastName: "Y", Role: models.RoleAdmin,
	})
	assert.True(t, errors.Is(err, apperr.ErrDuplicate))

	_, err = f.users.Create(ctx, models.CreateUserInput{
		Email: "short@immofds.be", Password: "short", FirstName: "X", LastName: "Y", Role: "GUEST",
	})
	require.Error(t, err)
	assert.Len(t, apperr.FieldsOf(err), 2)

	_, err = f.users.Update(ctx, agent.ID, models.UpdateUserInput{
		Email: "root@immofds.be", FirstName: "A", LastName: "B", Role: models.RoleAdmin, Active: true,
	})
	assert.True(t, errors.Is(err, apperr.ErrDuplicate))

	updated, err := f.users.Update(ctx, agent.ID, models.UpdateUserInput{
		Email: "agent@immofds.be", Password: "brand-new-pass", FirstName: "Jan", LastName: "Peeters", Role: models.RoleSuperAdmin, Active: true,
	})
	require.NoError(t, err)
	assert.Equal(t, models.RoleSuperAdmin, updated.Role)

	_, err = f.auth.Login(ctx, models.LoginInput{Email: "agent@immofds.be", Password: "brand-new-pass"})
	require.NoError(t, err)

	page, err := f.users.List(ctx, models.PageRequest{Size: 20})
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.TotalElements)

	err = f.users.Delete(ctx, super.ID, super.ID)
	assert.True(t, errors.Is(err, apperr.ErrInvalidOperation))

	require.NoError(t, f.users.Delete(ctx, agent.ID, super.ID))
	_, err = f.users.Get(ctx, agent.ID)
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}

func TestEnsureBootstrapAdmin(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	created, err := f.users.EnsureBootstrapAdmin(ctx, "", "")
	require.NoError(t, err)
	assert.False(t, created)

	created, err = f.users.EnsureBootstrapAdmin(ctx, "boss@immofds.be", "bootstrap-pass")
	require.NoError(t, err)
	assert.True(t, created)

	created, err = f.users.EnsureBootstrapAdmin(ctx, "other@immofds.be", "bootstrap-pass")
	require.NoError(t, err)
	assert.False(t, created)

	u, err := f.db.FindUserByEmail(ctx, "boss@immofds.be")
	require.NoError(t, err)
	assert.Equal(t, models.RoleSuperAdmin, u.Role)
}

func TestPurgeExpired(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	f.createAdmin(t, "claire@immofds.be", models.RoleAdmin)

	_, err := f.auth.Login(ctx, models.LoginInput{Email: "claire@immofds.be", Password: "s3cret-password"})
	require.NoError(t, err)

	n, err := f.auth.PurgeExpired(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	f.clock.advance(48 * time.Hour)
	n, err = f.auth.PurgeExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c := &clock{t: time.Now()}
	issuer := NewTokenIssuer("secret", time.Hour, c.now)
	respond := func(c *gin.Context, err error) {
		status := http.StatusUnauthorized
		if apperr.KindOf(err) == apperr.KindAccessDenied {
			status = http.StatusForbidden
		}
		c.AbortWithStatusJSON(status, gin.H{"message": err.Error()})
	}

	r := gin.New()
	r.GET("/admin", RequireAuth(issuer, respond), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"id": CurrentUserID(c)})
	})
	r.GET("/super", RequireAuth(issuer, respond), RequireRole(respond, models.RoleSuperAdmin), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	adminToken, err := issuer.Issue(&models.User{ID: 7, Email: "a@immofds.be", Role: models.RoleAdmin})
	require.NoError(t, err)
	superToken, err := issuer.Issue(&models.User{ID: 1, Email: "s@immofds.be", Role: models.RoleSuperAdmin})
	require.NoError(t, err)

	tests := []struct {
		name   string
		path   string
		header string
		want   int
	}{
		{"no header", "/admin", "", http.StatusUnauthorized},
		{"garbage", "/admin", "Bearer abc", http.StatusUnauthorized},
		{"admin", "/admin", "Bearer " + adminToken, http.StatusOK},
		{"admin on super route", "/super", "Bearer " + adminToken, http.StatusForbidden},
		{"super", "/super", "Bearer " + superToken, http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.want, w.Code)
		})
	}
}
