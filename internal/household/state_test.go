package household

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/PetoAdam/homenavi/household-service/internal/apperrors"
	"github.com/PetoAdam/homenavi/household-service/internal/store"
)

func TestToggleLightsFlips(t *testing.T) {
	svc := NewService(newTestRepo(t), Options{})
	ctx := context.Background()

	for i, want := range []bool{true, false, true} {
		got, err := svc.ToggleDevice(ctx, "Smith", DeviceLights)
		if err != nil {
			t.Fatalf("toggle %d: %v", i, err)
		}
		if got != want {
			t.Fatalf("toggle %d: expected %v, got %v", i, want, got)
		}
	}
	st, err := svc.Status(ctx, "Smith")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if !st.Lights {
		t.Fatalf("status does not reflect toggles: %+v", st)
	}
}

// Unknown devices are a silent no-op that reports the current lights state.
func TestToggleUnknownDeviceIsIgnored(t *testing.T) {
	svc := NewService(newTestRepo(t), Options{})
	ctx := context.Background()

	if _, err := svc.ToggleDevice(ctx, "Smith", DeviceLights); err != nil {
		t.Fatalf("toggle lights: %v", err)
	}
	got, err := svc.ToggleDevice(ctx, "Smith", "oven")
	if err != nil {
		t.Fatalf("toggle oven: %v", err)
	}
	if !got {
		t.Fatalf("expected current lights state (true), got %v", got)
	}
	st, _ := svc.Status(ctx, "Smith")
	if !st.Lights {
		t.Fatalf("unknown device changed lights")
	}
}

func TestSetMode(t *testing.T) {
	svc := NewService(newTestRepo(t), Options{})
	ctx := context.Background()

	got, err := svc.SetMode(ctx, "Smith", "Away")
	if err != nil {
		t.Fatalf("set mode: %v", err)
	}
	if got != store.ModeAway {
		t.Fatalf("expected Away, got %s", got)
	}

	got, err = svc.SetMode(ctx, "Smith", "Night")
	if err != nil {
		t.Fatalf("set mode: %v", err)
	}
	if got != store.ModeNight {
		t.Fatalf("expected Night, got %s", got)
	}
}

// Invalid modes are a silent no-op that reports the prior mode.
func TestSetModeInvalidIsIgnored(t *testing.T) {
	svc := NewService(newTestRepo(t), Options{})
	ctx := context.Background()

	if _, err := svc.SetMode(ctx, "Smith", "Away"); err != nil {
		t.Fatalf("set mode: %v", err)
	}
	for _, mode := range []string{"Vacation", "away", ""} {
		got, err := svc.SetMode(ctx, "Smith", mode)
		if err != nil {
			t.Fatalf("set mode %q: %v", mode, err)
		}
		if got != store.ModeAway {
			t.Fatalf("mode %q: expected prior mode Away, got %s", mode, got)
		}
	}
}

func TestSetEnvironment(t *testing.T) {
	svc := NewService(newTestRepo(t), Options{})
	ctx := context.Background()

	temp := 21.5
	got, err := svc.SetEnvironment(ctx, "Smith", EnvironmentPatch{Temperature: &temp})
	if err != nil {
		t.Fatalf("set environment: %v", err)
	}
	if got.Temperature != 21.5 || got.Humidity != store.DefaultHumidity {
		t.Fatalf("unexpected state: %+v", got)
	}

	hum := 55.0
	got, err = svc.SetEnvironment(ctx, "Smith", EnvironmentPatch{Humidity: &hum})
	if err != nil {
		t.Fatalf("set environment: %v", err)
	}
	if got.Temperature != 21.5 || got.Humidity != 55 {
		t.Fatalf("unexpected state: %+v", got)
	}
}

func TestSetEnvironmentRejectsOutOfRange(t *testing.T) {
	svc := NewService(newTestRepo(t), Options{})
	ctx := context.Background()

	hot, wet, nan := 120.0, 101.0, math.NaN()
	cases := []EnvironmentPatch{
		{Temperature: &hot},
		{Humidity: &wet},
		{Temperature: &nan},
	}
	for i, p := range cases {
		if _, err := svc.SetEnvironment(ctx, "Smith", p); !errors.Is(err, apperrors.ErrInvalidRequest) {
			t.Fatalf("case %d: expected ErrInvalidRequest, got %v", i, err)
		}
	}
	st, _ := svc.Status(ctx, "Smith")
	if st.Temperature != store.DefaultTemperature || st.Humidity != store.DefaultHumidity {
		t.Fatalf("rejected patch was applied: %+v", st)
	}
}
