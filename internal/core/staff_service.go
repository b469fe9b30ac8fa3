package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"
)

// StaffService handles PIN-based attendance clocking.
type StaffService interface {
	Clock(ctx context.Context, staffID, pin, action, workstationID string) (*Attendance, error)
	TodayAttendance(ctx context.Context) ([]Attendance, error)
	ListStaff(ctx context.Context) ([]Staff, error)
}

type staffService struct {
	pool *pgxpool.Pool
}

func NewStaffService(pool *pgxpool.Pool) StaffService {
	return &staffService{pool: pool}
}

// Clock records a clock_in or clock_out event after verifying the staff PIN.
func (s *staffService) Clock(ctx context.Context, staffID, pin, action, workstationID string) (*Attendance, error) {
	if action != ActionClockIn && action != ActionClockOut {
		return nil, &ValidationError{Field: "action", Reason: "must be clock_in or clock_out"}
	}
	if staffID == "" || pin == "" {
		return nil, &ValidationError{Field: "staffId", Reason: "staff id and pin required"}
	}

	var pinHash string
	var isActive bool
	err := s.pool.QueryRow(ctx,
		`SELECT pin_hash, is_active FROM staff WHERE staff_id = $1`, staffID).
		Scan(&pinHash, &isActive)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &ValidationError{Field: "staffId", Reason: "unknown staff id or wrong pin"}
		}
		return nil, fmt.Errorf("failed to look up staff: %w", err)
	}
	if !isActive {
		return nil, &ValidationError{Field: "staffId", Reason: "staff member is inactive"}
	}
	if bcrypt.CompareHashAndPassword([]byte(pinHash), []byte(pin)) != nil {
		return nil, &ValidationError{Field: "pin", Reason: "unknown staff id or wrong pin"}
	}

	att := &Attendance{
		ID:            uuid.NewString(),
		StaffID:       staffID,
		ClockTime:     time.Now().UTC(),
		Action:        action,
		WorkstationID: workstationID,
		Method:        "pin",
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO attendance (id, staff_id, clock_time, action, workstation_id, method, notes)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		att.ID, att.StaffID, att.ClockTime, att.Action, att.WorkstationID, att.Method, att.Notes)
	if err != nil {
		return nil, fmt.Errorf("failed to record attendance: %w", err)
	}
	return att, nil
}

// TodayAttendance returns today's clock events, newest first.
func (s *staffService) TodayAttendance(ctx context.Context) ([]Attendance, error) {
	now := time.Now().UTC()
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	rows, err := s.pool.Query(ctx, `
		SELECT id, staff_id, clock_time, action, workstation_id, method, notes
		FROM attendance
		WHERE clock_time >= $1
		ORDER BY clock_time DESC`, start)
	if err != nil {
		return nil, fmt.Errorf("failed to query attendance: %w", err)
	}
	defer rows.Close()

	var records []Attendance
	for rows.Next() {
		var a Attendance
		if err := rows.Scan(&a.ID, &a.StaffID, &a.ClockTime, &a.Action, &a.WorkstationID, &a.Method, &a.Notes); err != nil {
			return nil, fmt.Errorf("failed to scan attendance row: %w", err)
		}
		records = append(records, a)
	}
	return records, rows.Err()
}

func (s *staffService) ListStaff(ctx context.Context) ([]Staff, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT staff_id, full_name, role, is_active FROM staff ORDER BY staff_id ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list staff: %w", err)
	}
	defer rows.Close()

	var staff []Staff
	for rows.Next() {
		var st Staff
		if err := rows.Scan(&st.StaffID, &st.FullName, &st.Role, &st.IsActive); err != nil {
			return nil, fmt.Errorf("failed to scan staff row: %w", err)
		}
		staff = append(staff, st)
	}
	return staff, rows.Err()
}
