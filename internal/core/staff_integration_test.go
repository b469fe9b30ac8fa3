package core_test

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"

	"regimenz-pos/internal/core"
)

func seedStaff(t *testing.T, ctx context.Context, pool *pgxpool.Pool, staffID, pin string, active bool) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("Failed to hash pin: %v", err)
	}
	_, err = pool.Exec(ctx, `
		INSERT INTO staff (staff_id, full_name, role, pin_hash, is_active)
		VALUES ($1, 'Test Staff', 'cashier', $2, $3)`,
		staffID, string(hash), active)
	if err != nil {
		t.Fatalf("Failed to seed staff: %v", err)
	}
}

func TestStaff_ClockInAndOut(t *testing.T) {
	pool, ctx := setupTestDB(t)
	seedStaff(t, ctx, pool, "EMP-001", "4321", true)
	svc := core.NewStaffService(pool)

	in, err := svc.Clock(ctx, "EMP-001", "4321", core.ActionClockIn, "POS-1")
	if err != nil {
		t.Fatalf("Clock in failed: %v", err)
	}
	if in.Action != core.ActionClockIn || in.Method != "pin" {
		t.Errorf("Unexpected clock-in record: %+v", in)
	}

	out, err := svc.Clock(ctx, "EMP-001", "4321", core.ActionClockOut, "POS-1")
	if err != nil {
		t.Fatalf("Clock out failed: %v", err)
	}

	records, err := svc.TodayAttendance(ctx)
	if err != nil {
		t.Fatalf("TodayAttendance failed: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("Expected 2 attendance rows, got %d", len(records))
	}
	// Newest first
	if records[0].ID != out.ID {
		t.Errorf("Expected clock-out first, got %+v", records[0])
	}
}

func TestStaff_ClockRejectsWrongPin(t *testing.T) {
	pool, ctx := setupTestDB(t)
	seedStaff(t, ctx, pool, "EMP-001", "4321", true)
	svc := core.NewStaffService(pool)

	var validationErr *core.ValidationError
	_, err := svc.Clock(ctx, "EMP-001", "0000", core.ActionClockIn, "POS-1")
	if err == nil || !asError(err, &validationErr) {
		t.Fatalf("Expected ValidationError for wrong pin, got %v", err)
	}

	if n := countRows(t, ctx, pool, "attendance"); n != 0 {
		t.Errorf("Expected no attendance rows after rejected clock, got %d", n)
	}
}

func TestStaff_ClockRejectsBadAction(t *testing.T) {
	pool, ctx := setupTestDB(t)
	seedStaff(t, ctx, pool, "EMP-001", "4321", true)
	svc := core.NewStaffService(pool)

	var validationErr *core.ValidationError
	_, err := svc.Clock(ctx, "EMP-001", "4321", "lunch", "POS-1")
	if err == nil || !asError(err, &validationErr) {
		t.Fatalf("Expected ValidationError for bad action, got %v", err)
	}
}

func TestStaff_ClockRejectsInactive(t *testing.T) {
	pool, ctx := setupTestDB(t)
	seedStaff(t, ctx, pool, "EMP-009", "1111", false)
	svc := core.NewStaffService(pool)

	var validationErr *core.ValidationError
	_, err := svc.Clock(ctx, "EMP-009", "1111", core.ActionClockIn, "POS-1")
	if err == nil || !asError(err, &validationErr) {
		t.Fatalf("Expected ValidationError for inactive staff, got %v", err)
	}
}
