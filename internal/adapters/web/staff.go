package web

import (
	"net/http"

	"regimenz-pos/internal/core"
)

// clockAttendance handles POST /api/attendance/clock.
func (h *Handler) clockAttendance(w http.ResponseWriter, r *http.Request) {
	var req struct {
		StaffID       string `json:"staffId"`
		PIN           string `json:"pin"`
		Action        string `json:"action"`
		WorkstationID string `json:"workstationId"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	att, err := h.svc.ClockAttendance(r.Context(), req.StaffID, req.PIN, req.Action, req.WorkstationID)
	if err != nil {
		writeCoreError(w, r, err)
		return
	}
	h.activity.record(req.StaffID, "attendance_"+req.Action, att.ID)
	writeJSON(w, att)
}

// listStaff handles GET /api/staff.
func (h *Handler) listStaff(w http.ResponseWriter, r *http.Request) {
	staff, err := h.svc.ListStaff(r.Context())
	if err != nil {
		writeCoreError(w, r, err)
		return
	}
	if staff == nil {
		staff = []core.Staff{}
	}
	writeJSON(w, staff)
}

// todayAttendance handles GET /api/attendance/today.
func (h *Handler) todayAttendance(w http.ResponseWriter, r *http.Request) {
	records, err := h.svc.TodayAttendance(r.Context())
	if err != nil {
		writeCoreError(w, r, err)
		return
	}
	if records == nil {
		records = []core.Attendance{}
	}
	writeJSON(w, records)
}
