package service

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/upline-next/internal/config"
	"github.com/upline-next/internal/constants"
	"github.com/upline-next/internal/models"
	"github.com/upline-next/internal/repository"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupUserAuthServiceTest(t *testing.T) (*UserAuthService, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:user_auth_service_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	models.DB = db

	cfg := &config.Config{}
	cfg.UserJWT.SecretKey = "user-auth-test-secret"
	cfg.UserJWT.ExpireHours = 24
	cfg.Security.PasswordPolicy.MinLength = 8
	return NewUserAuthService(cfg, repository.NewUserRepository(db)), db
}

func TestRegisterBindsSponsorByReferralCode(t *testing.T) {
	svc, _ := setupUserAuthServiceTest(t)

	sponsor, _, _, err := svc.Register(RegisterInput{
		Email:    "sponsor@example.com",
		Password: "demo123456",
	})
	if err != nil {
		t.Fatalf("register sponsor failed: %v", err)
	}
	if len(sponsor.ReferralCode) != referralCodeLength {
		t.Fatalf("referral code length want %d got %d", referralCodeLength, len(sponsor.ReferralCode))
	}

	member, token, expiresAt, err := svc.Register(RegisterInput{
		Email:       "  Member@Example.com ",
		Password:    "demo123456",
		SponsorCode: sponsor.ReferralCode,
	})
	if err != nil {
		t.Fatalf("register member failed: %v", err)
	}
	if member.Email != "member@example.com" {
		t.Fatalf("email should be normalized, got %s", member.Email)
	}
	if member.SponsorID == nil || *member.SponsorID != sponsor.ID {
		t.Fatalf("sponsor binding missing, got %v", member.SponsorID)
	}
	if member.Status != constants.UserStatusFree {
		t.Fatalf("initial status want free got %s", member.Status)
	}
	if token == "" || !expiresAt.After(time.Now()) {
		t.Fatalf("register should issue a valid token")
	}

	claims, err := svc.ParseUserJWT(token)
	if err != nil {
		t.Fatalf("parse token failed: %v", err)
	}
	if claims.UserID != member.ID {
		t.Fatalf("claims user id want %d got %d", member.ID, claims.UserID)
	}
}

func TestRegisterRejectsUnknownSponsorCode(t *testing.T) {
	svc, _ := setupUserAuthServiceTest(t)

	if _, _, _, err := svc.Register(RegisterInput{
		Email:       "member@example.com",
		Password:    "demo123456",
		SponsorCode: "NOSUCHCD",
	}); !errors.Is(err, ErrSponsorNotFound) {
		t.Fatalf("unknown sponsor code want ErrSponsorNotFound got %v", err)
	}
}

func TestRegisterRejectsSelfReferral(t *testing.T) {
	svc, db := setupUserAuthServiceTest(t)
	// 大小写不同的存量邮箱绕开重复校验，推荐码指回本人
	user := &models.User{
		Email:        "Member@Example.com",
		PasswordHash: "hash",
		ReferralCode: "SELFCODE",
		Status:       constants.UserStatusFree,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create user failed: %v", err)
	}

	if _, _, _, err := svc.Register(RegisterInput{
		Email:       "member@example.com",
		Password:    "demo123456",
		SponsorCode: "SELFCODE",
	}); !errors.Is(err, ErrSponsorSelfReferral) {
		t.Fatalf("self referral want ErrSponsorSelfReferral got %v", err)
	}
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	svc, _ := setupUserAuthServiceTest(t)

	if _, _, _, err := svc.Register(RegisterInput{
		Email:    "member@example.com",
		Password: "demo123456",
	}); err != nil {
		t.Fatalf("first register failed: %v", err)
	}
	if _, _, _, err := svc.Register(RegisterInput{
		Email:    " MEMBER@example.com ",
		Password: "demo123456",
	}); !errors.Is(err, ErrEmailExists) {
		t.Fatalf("duplicate email want ErrEmailExists got %v", err)
	}
}

func TestRegisterRejectsWeakPassword(t *testing.T) {
	svc, _ := setupUserAuthServiceTest(t)

	if _, _, _, err := svc.Register(RegisterInput{
		Email:    "member@example.com",
		Password: "short",
	}); !errors.Is(err, ErrWeakPassword) {
		t.Fatalf("short password want ErrWeakPassword got %v", err)
	}
	if _, _, _, err := svc.Register(RegisterInput{
		Email:    "not-an-email",
		Password: "demo123456",
	}); !errors.Is(err, ErrInvalidEmail) {
		t.Fatalf("bad email want ErrInvalidEmail got %v", err)
	}
}

func TestLoginValidatesCredentials(t *testing.T) {
	svc, db := setupUserAuthServiceTest(t)

	registered, _, _, err := svc.Register(RegisterInput{
		Email:    "member@example.com",
		Password: "demo123456",
	})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	if _, _, _, err := svc.Login("member@example.com", "wrong-pass"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("wrong password want ErrInvalidCredentials got %v", err)
	}
	if _, _, _, err := svc.Login("nobody@example.com", "demo123456"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("unknown email want ErrInvalidCredentials got %v", err)
	}

	user, token, _, err := svc.Login("member@example.com", "demo123456")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if user.ID != registered.ID || token == "" {
		t.Fatalf("login should return the registered user with a token")
	}
	if user.LastLoginAt == nil {
		t.Fatalf("last_login_at should be set")
	}

	if err := db.Model(&models.User{}).Where("id = ?", registered.ID).
		Update("status", constants.UserStatusBlocked).Error; err != nil {
		t.Fatalf("block user failed: %v", err)
	}
	if _, _, _, err := svc.Login("member@example.com", "demo123456"); !errors.Is(err, ErrUserBlocked) {
		t.Fatalf("blocked user want ErrUserBlocked got %v", err)
	}
}

func TestLoginRememberMeExtendsExpiry(t *testing.T) {
	svc, _ := setupUserAuthServiceTest(t)
	svc.cfg.UserJWT.RememberMeExpireHours = 24 * 30

	if _, _, _, err := svc.Register(RegisterInput{
		Email:    "member@example.com",
		Password: "demo123456",
	}); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	_, _, normalExpiry, err := svc.LoginWithRememberMe("member@example.com", "demo123456", false)
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	_, _, rememberedExpiry, err := svc.LoginWithRememberMe("member@example.com", "demo123456", true)
	if err != nil {
		t.Fatalf("remember-me login failed: %v", err)
	}
	if !rememberedExpiry.After(normalExpiry.Add(24 * time.Hour)) {
		t.Fatalf("remember-me expiry %v should be well beyond %v", rememberedExpiry, normalExpiry)
	}
}

func TestChangePasswordBumpsTokenVersion(t *testing.T) {
	svc, db := setupUserAuthServiceTest(t)

	registered, _, _, err := svc.Register(RegisterInput{
		Email:    "member@example.com",
		Password: "demo123456",
	})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	if err := svc.ChangePassword(registered.ID, "wrong-pass", "newpass12345"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("wrong old password want ErrInvalidCredentials got %v", err)
	}
	if err := svc.ChangePassword(registered.ID, "demo123456", "short"); !errors.Is(err, ErrWeakPassword) {
		t.Fatalf("weak new password want ErrWeakPassword got %v", err)
	}
	if err := svc.ChangePassword(registered.ID, "demo123456", "newpass12345"); err != nil {
		t.Fatalf("change password failed: %v", err)
	}

	var reloaded models.User
	if err := db.First(&reloaded, registered.ID).Error; err != nil {
		t.Fatalf("reload user failed: %v", err)
	}
	if reloaded.TokenVersion != registered.TokenVersion+1 {
		t.Fatalf("token version want %d got %d", registered.TokenVersion+1, reloaded.TokenVersion)
	}
	if reloaded.TokenInvalidBefore == nil {
		t.Fatalf("token_invalid_before should be set")
	}

	if _, _, _, err := svc.Login("member@example.com", "demo123456"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("old password should no longer work")
	}
	if _, _, _, err := svc.Login("member@example.com", "newpass12345"); err != nil {
		t.Fatalf("login with new password failed: %v", err)
	}
}

func TestUpdateProfile(t *testing.T) {
	svc, _ := setupUserAuthServiceTest(t)

	registered, _, _, err := svc.Register(RegisterInput{
		Email:    "member@example.com",
		Password: "demo123456",
	})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if registered.DisplayName != "member" {
		t.Fatalf("display name should default from email, got %s", registered.DisplayName)
	}

	name := "Member One"
	locale := constants.LocaleEnUS
	updated, err := svc.UpdateProfile(registered.ID, &name, &locale)
	if err != nil {
		t.Fatalf("update profile failed: %v", err)
	}
	if updated.DisplayName != name || updated.Locale != locale {
		t.Fatalf("profile not updated: %+v", updated)
	}

	// 空白输入视为未修改
	blank := "   "
	kept, err := svc.UpdateProfile(registered.ID, &blank, nil)
	if err != nil {
		t.Fatalf("update profile with blank failed: %v", err)
	}
	if kept.DisplayName != name {
		t.Fatalf("blank display name should be ignored, got %s", kept.DisplayName)
	}
}
