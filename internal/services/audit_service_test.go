package services

import (
	"encoding/json"
	"testing"

	"pyggy/internal/models"
	"pyggy/internal/pagination"
	"pyggy/internal/testutil"
)

func TestAuditLog(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewAuditService(db)

	svc.Log("PROCESS_MONTH", "budget_month", "m-1", "10.0.0.1", map[string]interface{}{"year": 2025, "month": 3})
	svc.Log("DELETE_BUDGET", "budget", "b-1", "", nil)

	var entries []models.AuditLog
	if err := db.Order("id").Find(&entries).Error; err != nil {
		t.Fatalf("failed to load audit entries: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}

	var changes map[string]interface{}
	if err := json.Unmarshal([]byte(entries[0].Changes), &changes); err != nil {
		t.Fatalf("changes should be JSON: %v", err)
	}
	if changes["year"] != float64(2025) {
		t.Errorf("expected year 2025, got %v", changes["year"])
	}
	if entries[1].Changes != "" {
		t.Errorf("expected empty changes, got %q", entries[1].Changes)
	}
}

func TestListAuditEntries(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewAuditService(db)

	svc.Log("CREATE_BUDGET", "budget", "b-1", "", nil)
	svc.Log("UPDATE_BUDGET", "budget", "b-1", "", map[string]interface{}{"name": "Home"})
	svc.Log("CREATE_BUDGET", "budget", "b-2", "", nil)
	svc.Log("CREATE_PAYEE", "payee", "p-1", "", nil)

	t.Run("by resource", func(t *testing.T) {
		result, err := svc.ListEntries(AuditFilter{ResourceType: "budget", ResourceID: "b-1"}, pagination.PageRequest{})
		testutil.AssertNoError(t, err)
		if result.TotalItems != 2 {
			t.Fatalf("expected 2 entries, got %d", result.TotalItems)
		}
		if result.Data[0].Action != "UPDATE_BUDGET" {
			t.Errorf("expected newest entry first, got %s", result.Data[0].Action)
		}
	})

	t.Run("by action", func(t *testing.T) {
		result, err := svc.ListEntries(AuditFilter{Action: "CREATE_BUDGET"}, pagination.PageRequest{Page: 1, PageSize: 1})
		testutil.AssertNoError(t, err)
		if result.TotalItems != 2 || result.TotalPages != 2 || len(result.Data) != 1 {
			t.Errorf("expected 1 of 2 entries on 2 pages, got %d of %d on %d", len(result.Data), result.TotalItems, result.TotalPages)
		}
	})

	t.Run("no filter", func(t *testing.T) {
		result, err := svc.ListEntries(AuditFilter{}, pagination.PageRequest{})
		testutil.AssertNoError(t, err)
		if result.TotalItems != 4 {
			t.Errorf("expected 4 entries, got %d", result.TotalItems)
		}
	})
}
