package handlers

import "testing"

func TestValidateWindows(t *testing.T) {
	tests := []struct {
		name string
		days []WorkingWindowConfig
		ok   bool
	}{
		{
			name: "split shift",
			days: []WorkingWindowConfig{
				{Weekday: 1, Active: true, StartTime: "09:00", EndTime: "12:00"},
				{Weekday: 1, Active: true, StartTime: "14:00", EndTime: "19:00"},
			},
			ok: true,
		},
		{
			name: "touching windows",
			days: []WorkingWindowConfig{
				{Weekday: 2, Active: true, StartTime: "09:00", EndTime: "12:00"},
				{Weekday: 2, Active: true, StartTime: "12:00", EndTime: "18:00"},
			},
			ok: true,
		},
		{
			name: "overlapping windows",
			days: []WorkingWindowConfig{
				{Weekday: 1, Active: true, StartTime: "09:00", EndTime: "13:00"},
				{Weekday: 1, Active: true, StartTime: "12:00", EndTime: "18:00"},
			},
		},
		{
			name: "bad clock",
			days: []WorkingWindowConfig{{Weekday: 1, Active: true, StartTime: "9h", EndTime: "18:00"}},
		},
		{
			name: "ends before start",
			days: []WorkingWindowConfig{{Weekday: 1, Active: true, StartTime: "18:00", EndTime: "09:00"}},
		},
		{
			name: "lunch outside window",
			days: []WorkingWindowConfig{{Weekday: 1, Active: true, StartTime: "09:00", EndTime: "12:00", LunchStart: "12:00", LunchEnd: "13:00"}},
		},
		{
			name: "half lunch",
			days: []WorkingWindowConfig{{Weekday: 1, Active: true, StartTime: "09:00", EndTime: "18:00", LunchStart: "12:00"}},
		},
		{
			name: "inactive rows are not checked",
			days: []WorkingWindowConfig{{Weekday: 0, Active: false, StartTime: "", EndTime: ""}},
			ok:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateWindows(tt.days)
			if (err == nil) != tt.ok {
				t.Fatalf("validateWindows() = %v, want ok=%v", err, tt.ok)
			}
		})
	}
}
