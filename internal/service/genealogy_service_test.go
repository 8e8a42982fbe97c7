package service

import (
	"fmt"
	"testing"
	"time"

	"github.com/upline-next/internal/constants"
	"github.com/upline-next/internal/models"
	"github.com/upline-next/internal/repository"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupGenealogyServiceTest(t *testing.T) (*GenealogyService, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:genealogy_service_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	models.DB = db
	return NewGenealogyService(repository.NewUserRepository(db), 0), db
}

func createGenealogyUser(t *testing.T, db *gorm.DB, id uint, sponsorID *uint) *models.User {
	t.Helper()
	user := &models.User{
		ID:           id,
		Email:        fmt.Sprintf("genealogy_user_%d@example.com", id),
		PasswordHash: "hash",
		ReferralCode: fmt.Sprintf("GNCODE%04d", id),
		SponsorID:    sponsorID,
		Status:       constants.UserStatusFree,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create user %d failed: %v", id, err)
	}
	return user
}

func uintPtr(v uint) *uint { return &v }

func TestAncestorsOfOrdersByLevel(t *testing.T) {
	svc, db := setupGenealogyServiceTest(t)
	createGenealogyUser(t, db, 1, nil)
	createGenealogyUser(t, db, 2, uintPtr(1))
	createGenealogyUser(t, db, 3, uintPtr(2))
	createGenealogyUser(t, db, 4, uintPtr(3))

	ancestors, err := svc.AncestorsOf(4)
	if err != nil {
		t.Fatalf("ancestors failed: %v", err)
	}
	if len(ancestors) != 3 {
		t.Fatalf("ancestors want 3 got %d", len(ancestors))
	}
	wantIDs := []uint{3, 2, 1}
	for i, ancestor := range ancestors {
		if ancestor.Level != i+1 {
			t.Fatalf("level want %d got %d", i+1, ancestor.Level)
		}
		if ancestor.User == nil || ancestor.User.ID != wantIDs[i] {
			t.Fatalf("level %d user want %d got %+v", i+1, wantIDs[i], ancestor.User)
		}
	}
}

func TestAncestorsOfPartialChainOnMissingSponsor(t *testing.T) {
	svc, db := setupGenealogyServiceTest(t)
	// 999 不存在，链路应在第 2 层之后截断
	createGenealogyUser(t, db, 10, uintPtr(999))
	createGenealogyUser(t, db, 11, uintPtr(10))

	ancestors, err := svc.AncestorsOf(11)
	if err != nil {
		t.Fatalf("ancestors failed: %v", err)
	}
	if len(ancestors) != 1 {
		t.Fatalf("ancestors want 1 got %d", len(ancestors))
	}
	if ancestors[0].User.ID != 10 {
		t.Fatalf("ancestor want 10 got %d", ancestors[0].User.ID)
	}
}

func TestAncestorsOfCycleGuard(t *testing.T) {
	svc, db := setupGenealogyServiceTest(t)
	createGenealogyUser(t, db, 20, nil)
	createGenealogyUser(t, db, 21, uintPtr(20))
	if err := db.Model(&models.User{}).Where("id = ?", 20).Update("sponsor_id", 21).Error; err != nil {
		t.Fatalf("build cycle failed: %v", err)
	}

	ancestors, err := svc.AncestorsOf(21)
	if err != nil {
		t.Fatalf("ancestors failed: %v", err)
	}
	// 20 -> 21 形成环，回到已访问节点即停止
	if len(ancestors) != 1 {
		t.Fatalf("ancestors want 1 got %d", len(ancestors))
	}
}

func TestAncestorsOfMaxLevelCap(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:genealogy_cap_test_%d?mode=memory&cache=shared", time.Now().UnixNano())), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	svc := NewGenealogyService(repository.NewUserRepository(db), 3)

	createGenealogyUser(t, db, 1, nil)
	for id := uint(2); id <= 6; id++ {
		sponsor := id - 1
		createGenealogyUser(t, db, id, &sponsor)
	}

	ancestors, err := svc.AncestorsOf(6)
	if err != nil {
		t.Fatalf("ancestors failed: %v", err)
	}
	if len(ancestors) != 3 {
		t.Fatalf("ancestors want 3 (capped) got %d", len(ancestors))
	}
}

func TestDescendantsOfDepthLimitAndTruncation(t *testing.T) {
	svc, db := setupGenealogyServiceTest(t)
	// 四层单链：1 -> 2 -> 3 -> 4
	createGenealogyUser(t, db, 1, nil)
	createGenealogyUser(t, db, 2, uintPtr(1))
	createGenealogyUser(t, db, 3, uintPtr(2))
	createGenealogyUser(t, db, 4, uintPtr(3))

	result, err := svc.DescendantsOf(1, 2, 0)
	if err != nil {
		t.Fatalf("descendants failed: %v", err)
	}
	if len(result.Nodes) != 2 {
		t.Fatalf("nodes want 2 got %d", len(result.Nodes))
	}
	if result.Nodes[0].Level != 1 || result.Nodes[1].Level != 2 {
		t.Fatalf("levels want 1,2 got %d,%d", result.Nodes[0].Level, result.Nodes[1].Level)
	}
	if !result.Truncated {
		t.Fatalf("expected truncated=true when deeper levels exist")
	}

	full, err := svc.DescendantsOf(1, 10, 0)
	if err != nil {
		t.Fatalf("descendants failed: %v", err)
	}
	if len(full.Nodes) != 3 {
		t.Fatalf("nodes want 3 got %d", len(full.Nodes))
	}
	if full.Truncated {
		t.Fatalf("expected truncated=false for full traversal")
	}
}

func TestDescendantsOfNodeCap(t *testing.T) {
	svc, db := setupGenealogyServiceTest(t)
	createGenealogyUser(t, db, 1, nil)
	for id := uint(2); id <= 8; id++ {
		createGenealogyUser(t, db, id, uintPtr(1))
	}

	result, err := svc.DescendantsOf(1, 10, 5)
	if err != nil {
		t.Fatalf("descendants failed: %v", err)
	}
	if len(result.Nodes) != 5 {
		t.Fatalf("nodes want 5 got %d", len(result.Nodes))
	}
	if !result.Truncated {
		t.Fatalf("expected truncated=true when node cap reached")
	}
}

func TestDirectStats(t *testing.T) {
	svc, db := setupGenealogyServiceTest(t)
	createGenealogyUser(t, db, 1, nil)
	now := time.Now()
	for id := uint(2); id <= 5; id++ {
		user := createGenealogyUser(t, db, id, uintPtr(1))
		if id <= 3 {
			if err := db.Model(user).Updates(map[string]interface{}{
				"status":       constants.UserStatusActive,
				"activated_at": now,
			}).Error; err != nil {
				t.Fatalf("activate user failed: %v", err)
			}
		}
	}

	stats, err := svc.DirectStats(1)
	if err != nil {
		t.Fatalf("direct stats failed: %v", err)
	}
	if stats.Total != 4 {
		t.Fatalf("total want 4 got %d", stats.Total)
	}
	if stats.Activated != 2 {
		t.Fatalf("activated want 2 got %d", stats.Activated)
	}
}
