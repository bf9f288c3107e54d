package services

import (
	"testing"

	"github.com/gamepool/backend/internal/config"
	"github.com/gamepool/backend/internal/models"
	"github.com/gamepool/backend/internal/utils"
)

func newTestAuthService(t *testing.T) (*AuthService, *config.JWTConfig) {
	t.Helper()

	jwtCfg := &config.JWTConfig{Secret: "test-secret", ExpireHour: 1}
	utils.SetJWTSecret(jwtCfg.Secret)
	return NewAuthService(setupTestDB(t), jwtCfg), jwtCfg
}

func TestRegister(t *testing.T) {
	svc, _ := newTestAuthService(t)

	resp, err := svc.Register(&RegisterRequest{Name: "alice", Password: "supersecret"})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	if resp.Token == "" {
		t.Error("expected a session token")
	}
	if resp.Member.Role != models.RoleStandard {
		t.Errorf("Role = %q, expected %q", resp.Member.Role, models.RoleStandard)
	}
	if !resp.Member.Active {
		t.Error("new member should be active")
	}
	if resp.Member.AuthUID == "" {
		t.Error("AuthUID should be assigned")
	}
	if resp.Member.Password == "supersecret" {
		t.Error("password stored in plaintext")
	}
}

func TestRegister_DuplicateName(t *testing.T) {
	svc, _ := newTestAuthService(t)

	if _, err := svc.Register(&RegisterRequest{Name: "alice", Password: "supersecret"}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	_, err := svc.Register(&RegisterRequest{Name: "alice", Password: "othersecret"})
	assertAppErrorCode(t, err, 409)
}

func TestLogin(t *testing.T) {
	svc, _ := newTestAuthService(t)

	if _, err := svc.Register(&RegisterRequest{Name: "alice", Password: "supersecret"}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	resp, err := svc.Login(&LoginRequest{Name: "alice", Password: "supersecret"})
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if resp.Token == "" {
		t.Error("expected a session token")
	}

	claims, err := utils.ParseToken(resp.Token)
	if err != nil {
		t.Fatalf("ParseToken failed: %v", err)
	}
	if claims.Username != "alice" {
		t.Errorf("token username = %q, expected %q", claims.Username, "alice")
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	svc, _ := newTestAuthService(t)

	if _, err := svc.Register(&RegisterRequest{Name: "alice", Password: "supersecret"}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	_, err := svc.Login(&LoginRequest{Name: "alice", Password: "wrong"})
	assertAppErrorCode(t, err, 401)

	_, err = svc.Login(&LoginRequest{Name: "nobody", Password: "whatever"})
	assertAppErrorCode(t, err, 401)
}

func TestLogin_DeactivatedMember(t *testing.T) {
	svc, _ := newTestAuthService(t)

	resp, err := svc.Register(&RegisterRequest{Name: "alice", Password: "supersecret"})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if err := svc.db.Model(&models.Member{}).Where("id = ?", resp.Member.ID).
		Update("active", false).Error; err != nil {
		t.Fatalf("failed to deactivate: %v", err)
	}

	_, err = svc.Login(&LoginRequest{Name: "alice", Password: "supersecret"})
	assertAppErrorCode(t, err, 403)
}

func TestChangePassword(t *testing.T) {
	svc, _ := newTestAuthService(t)

	resp, err := svc.Register(&RegisterRequest{Name: "alice", Password: "supersecret"})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	err = svc.ChangePassword(resp.Member.ID, &ChangePasswordRequest{
		OldPassword: "wrong",
		NewPassword: "newpassword",
	})
	assertAppErrorCode(t, err, 401)

	if err := svc.ChangePassword(resp.Member.ID, &ChangePasswordRequest{
		OldPassword: "supersecret",
		NewPassword: "newpassword",
	}); err != nil {
		t.Fatalf("ChangePassword failed: %v", err)
	}

	if _, err := svc.Login(&LoginRequest{Name: "alice", Password: "newpassword"}); err != nil {
		t.Errorf("login with new password failed: %v", err)
	}
	_, err = svc.Login(&LoginRequest{Name: "alice", Password: "supersecret"})
	assertAppErrorCode(t, err, 401)
}

func TestCreateAdminIfNotExists(t *testing.T) {
	svc, _ := newTestAuthService(t)

	if err := svc.CreateAdminIfNotExists(); err != nil {
		t.Fatalf("CreateAdminIfNotExists failed: %v", err)
	}

	var admin models.Member
	if err := svc.db.Where("role = ?", models.RoleAdmin).First(&admin).Error; err != nil {
		t.Fatalf("admin not created: %v", err)
	}
	if admin.Name != "admin" {
		t.Errorf("admin name = %q, expected %q", admin.Name, "admin")
	}

	// Second call is a no-op.
	if err := svc.CreateAdminIfNotExists(); err != nil {
		t.Fatalf("second CreateAdminIfNotExists failed: %v", err)
	}
	var count int64
	if err := svc.db.Model(&models.Member{}).Where("role = ?", models.RoleAdmin).Count(&count).Error; err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 1 {
		t.Errorf("admin count = %d, expected 1", count)
	}
}
