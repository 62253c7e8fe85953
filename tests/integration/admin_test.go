package integration

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"homePulseAPI/handlers"
	"homePulseAPI/internal/admin"
	"homePulseAPI/internal/user"
	"homePulseAPI/middleware"
	"homePulseAPI/services"
	"homePulseAPI/tests/helpers"
)

func TestAdminListUsers_Forbidden(t *testing.T) {
	pool := helpers.SetupTestDB(t)
	defer helpers.CleanupTestDB(t, pool)

	userService := services.NewUserService(pool)
	creditsService := services.NewCreditsService(pool)
	listingService := services.NewListingService(pool, creditsService)
	alertService := services.NewAlertService(pool)
	adminService := services.NewAdminService(pool, admin.NewBootstrapConfig("false", ""))
	adminHandler := handlers.NewAdminHandler(adminService, userService, listingService, creditsService, alertService)

	clerkID := helpers.UniqueClerkID()
	ctx := context.Background()

	_, err := userService.CreateUser(ctx, &user.CreateUserRequest{
		ClerkID:  clerkID,
		Email:    "testplain@example.com",
		Username: "testplain",
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/users", nil)
	req = req.WithContext(context.WithValue(req.Context(), middleware.ClerkIDKey, clerkID))

	rr := httptest.NewRecorder()
	adminHandler.ListUsers(rr, req)

	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestAdminListUsers_BootstrapGrant(t *testing.T) {
	pool := helpers.SetupTestDB(t)
	defer helpers.CleanupTestDB(t, pool)

	userService := services.NewUserService(pool)
	creditsService := services.NewCreditsService(pool)
	listingService := services.NewListingService(pool, creditsService)
	alertService := services.NewAlertService(pool)
	adminService := services.NewAdminService(pool, admin.NewBootstrapConfig("true", "testops@example.com"))
	adminHandler := handlers.NewAdminHandler(adminService, userService, listingService, creditsService, alertService)

	clerkID := helpers.UniqueClerkID()
	ctx := context.Background()

	_, err := userService.CreateUser(ctx, &user.CreateUserRequest{
		ClerkID:  clerkID,
		Email:    "testops@example.com",
		Username: "testops",
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/users", nil)
	req = req.WithContext(context.WithValue(req.Context(), middleware.ClerkIDKey, clerkID))

	rr := httptest.NewRecorder()
	adminHandler.ListUsers(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var users []user.User
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &users))
	assert.NotEmpty(t, users)
}

func TestAdminListUsers_MembershipGrant(t *testing.T) {
	pool := helpers.SetupTestDB(t)
	defer helpers.CleanupTestDB(t, pool)

	userService := services.NewUserService(pool)
	creditsService := services.NewCreditsService(pool)
	listingService := services.NewListingService(pool, creditsService)
	alertService := services.NewAlertService(pool)
	adminService := services.NewAdminService(pool, admin.NewBootstrapConfig("false", ""))
	adminHandler := handlers.NewAdminHandler(adminService, userService, listingService, creditsService, alertService)

	clerkID := helpers.UniqueClerkID()
	ctx := context.Background()

	_, err := userService.CreateUser(ctx, &user.CreateUserRequest{
		ClerkID:  clerkID,
		Email:    "testmember@example.com",
		Username: "testmember",
	})
	require.NoError(t, err)

	_, err = pool.Exec(ctx, `
	INSERT INTO admin_users (user_id, role, is_active) VALUES ($1, 'admin', TRUE)
	`, clerkID)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/users", nil)
	req = req.WithContext(context.WithValue(req.Context(), middleware.ClerkIDKey, clerkID))

	rr := httptest.NewRecorder()
	adminHandler.ListUsers(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
}
