package household

import (
	"context"
	"math"

	"github.com/PetoAdam/homenavi/household-service/internal/apperrors"
	"github.com/PetoAdam/homenavi/household-service/internal/store"
)

// DeviceLights is the only device the service knows how to toggle.
const DeviceLights = "lights"

const (
	minTemperature = -50.0
	maxTemperature = 60.0
	minHumidity    = 0.0
	maxHumidity    = 100.0
)

// EnvironmentPatch carries optional new sensor readings for a family.
type EnvironmentPatch struct {
	Temperature *float64
	Humidity    *float64
}

func (s *Service) Status(ctx context.Context, family string) (*store.Family, error) {
	return s.Resolve(ctx, family)
}

// ToggleDevice flips the named device and returns the resulting lights state.
// Unknown devices are ignored on purpose: the call succeeds and reports the
// unchanged lights state. Rejecting them would be an API change.
func (s *Service) ToggleDevice(ctx context.Context, family, device string) (bool, error) {
	f, err := s.Resolve(ctx, family)
	if err != nil {
		return false, err
	}
	if device != DeviceLights {
		return f.Lights, nil
	}

	updated, err := s.families.ToggleLights(ctx, f.Name)
	if err != nil {
		return false, err
	}
	s.emit(ctx, Event{Type: EventStateChanged, Family: f.Name, Entity: "state", Data: updated})
	return updated.Lights, nil
}

// SetMode switches the household mode. Values outside Home/Away/Night are
// ignored the same way unknown devices are: the prior mode is returned.
func (s *Service) SetMode(ctx context.Context, family, mode string) (store.Mode, error) {
	f, err := s.Resolve(ctx, family)
	if err != nil {
		return "", err
	}
	next := store.Mode(mode)
	if !next.Valid() || next == f.Mode {
		return f.Mode, nil
	}

	updated, err := s.families.UpdateFamilyState(ctx, f.Name, store.StatePatch{Mode: &next})
	if err != nil {
		return "", err
	}
	s.emit(ctx, Event{Type: EventStateChanged, Family: f.Name, Entity: "state", Data: updated})
	return updated.Mode, nil
}

func (s *Service) SetEnvironment(ctx context.Context, family string, patch EnvironmentPatch) (*store.Family, error) {
	if t := patch.Temperature; t != nil && !inRange(*t, minTemperature, maxTemperature) {
		return nil, apperrors.Invalid("temperature must be between %g and %g", minTemperature, maxTemperature)
	}
	if h := patch.Humidity; h != nil && !inRange(*h, minHumidity, maxHumidity) {
		return nil, apperrors.Invalid("humidity must be between %g and %g", minHumidity, maxHumidity)
	}

	f, err := s.Resolve(ctx, family)
	if err != nil {
		return nil, err
	}
	if patch.Temperature == nil && patch.Humidity == nil {
		return f, nil
	}

	updated, err := s.families.UpdateFamilyState(ctx, f.Name, store.StatePatch{
		Temperature: patch.Temperature,
		Humidity:    patch.Humidity,
	})
	if err != nil {
		return nil, err
	}
	s.emit(ctx, Event{Type: EventStateChanged, Family: f.Name, Entity: "state", Data: updated})
	return updated, nil
}

func inRange(v, lo, hi float64) bool {
	return !math.IsNaN(v) && v >= lo && v <= hi
}
