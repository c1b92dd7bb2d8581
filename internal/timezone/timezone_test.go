package timezone

import (
	"testing"
	"time"
)

func TestParseClock(t *testing.T) {
	got, err := ParseClock("09:30")
	if err != nil || got != 570 {
		t.Fatalf("ParseClock = %d, %v", got, err)
	}
	if _, err := ParseClock("9h30"); err == nil {
		t.Fatal("expected error")
	}
	if FormatClock(570) != "09:30" {
		t.Fatalf("FormatClock = %s", FormatClock(570))
	}
}

func TestLocationFallback(t *testing.T) {
	if Location("Nowhere/Atlantis").String() != DefaultTimezone {
		t.Fatal("unknown zone should fall back to the default")
	}
	if Location("UTC").String() != "UTC" {
		t.Fatal("UTC should resolve")
	}
}

func TestAtAndStartOfDay(t *testing.T) {
	loc := Location("America/Sao_Paulo")
	day := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)

	got := At(day, 9*60, loc)
	if got.Hour() != 9 || got.Day() != 3 || got.Location() != loc {
		t.Fatalf("At = %v", got)
	}

	start := StartOfDay(got.Add(5 * time.Hour))
	if start.Hour() != 0 || start.Day() != 3 {
		t.Fatalf("StartOfDay = %v", start)
	}
	if !SameDate(got, start) {
		t.Fatal("SameDate")
	}
}
