package handlers

import (
	"testing"

	domain "github.com/BruksfildServices01/bookedbarber/internal/domain/appointment"
	"github.com/BruksfildServices01/bookedbarber/internal/models"
)

func intPtr(v int) *int       { return &v }
func strPtr(v string) *string { return &v }

func TestApplyBarbershopUpdate(t *testing.T) {
	defaults := domain.PolicyDefaults{Timezone: "UTC", BusinessStart: "09:00", BusinessEnd: "18:00", MinLeadMinutes: 120, MaxAdvanceDays: 30, SlotMinutes: 30}

	tests := []struct {
		name string
		req  UpdateBarbershopConfigRequest
		// msg is a field-level rejection; policy marks a row the policy
		// builder refuses.
		msg    bool
		policy bool
	}{
		{name: "lead and horizon", req: UpdateBarbershopConfigRequest{MinAdvanceMinutes: intPtr(30), MaxAdvanceDays: intPtr(60)}},
		{name: "timezone", req: UpdateBarbershopConfigRequest{Timezone: strPtr("America/Sao_Paulo")}},
		{name: "unknown timezone", req: UpdateBarbershopConfigRequest{Timezone: strPtr("Mars/Olympus")}, msg: true},
		{name: "negative lead", req: UpdateBarbershopConfigRequest{MinAdvanceMinutes: intPtr(-5)}, msg: true},
		{name: "tiny slots", req: UpdateBarbershopConfigRequest{SlotMinutes: intPtr(1)}, msg: true},
		{name: "cutoff out of range", req: UpdateBarbershopConfigRequest{SameDayCutoffHour: intPtr(24)}, msg: true},
		{name: "empty name", req: UpdateBarbershopConfigRequest{Name: strPtr("")}, msg: true},
		{name: "bad business hours", req: UpdateBarbershopConfigRequest{BusinessStart: strPtr("25:00")}, policy: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			shop := &models.Barbershop{Name: "Navalha", Timezone: "UTC", BusinessStart: "09:00", BusinessEnd: "18:00"}

			msg := applyBarbershopUpdate(shop, tt.req)
			if (msg != "") != tt.msg {
				t.Fatalf("applyBarbershopUpdate() = %q, want rejection=%v", msg, tt.msg)
			}
			if tt.msg {
				return
			}

			_, err := domain.PolicyFromBarbershop(shop, defaults)
			if (err != nil) != tt.policy {
				t.Fatalf("PolicyFromBarbershop() = %v, want error=%v", err, tt.policy)
			}
		})
	}
}
