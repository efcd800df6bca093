package parse

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/pkg/errors"

	"github.com/khen08/mrt3sim/model"
)

// ConfigError is a validation failure in the simulation
// configuration. The run never starts on one of these.
type ConfigError struct {
	Field  string
	Detail string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Field, e.Detail)
}

// ParseConfig decodes and validates a JSON configuration. Unknown
// fields are rejected.
func ParseConfig(r io.Reader) (model.Config, error) {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()

	var cfg model.Config
	if err := dec.Decode(&cfg); err != nil {
		return model.Config{}, errors.Wrap(err, "decoding config")
	}

	if cfg.PassthroughSpeed == 0 {
		cfg.PassthroughSpeed = model.DefaultPassthroughSpeed
	}

	if err := ValidateConfig(cfg); err != nil {
		return model.Config{}, err
	}
	return cfg, nil
}

// ValidateConfig checks the structural invariants the engine assumes.
func ValidateConfig(cfg model.Config) error {
	n := len(cfg.StationNames)
	if n < 2 {
		return &ConfigError{Field: "stationNames", Detail: "at least two stations required"}
	}
	if len(cfg.StationDistances) != n-1 {
		return &ConfigError{
			Field:  "stationDistances",
			Detail: fmt.Sprintf("expected %d distances for %d stations, got %d", n-1, n, len(cfg.StationDistances)),
		}
	}
	for i, d := range cfg.StationDistances {
		if d <= 0 {
			return &ConfigError{Field: "stationDistances", Detail: fmt.Sprintf("distance %d must be positive", i)}
		}
	}

	switch cfg.SchemeType {
	case model.SchemeRegular:
	case model.SchemeSkipStop:
		if len(cfg.SchemePattern) != n {
			return &ConfigError{
				Field:  "schemePattern",
				Detail: fmt.Sprintf("expected %d entries, got %d", n, len(cfg.SchemePattern)),
			}
		}
		for i, t := range cfg.SchemePattern {
			if t != model.StationA && t != model.StationB && t != model.StationAB {
				return &ConfigError{Field: "schemePattern", Detail: fmt.Sprintf("entry %d: invalid type %q", i, t)}
			}
		}
	case "":
		return &ConfigError{Field: "schemeType", Detail: "missing"}
	default:
		return &ConfigError{Field: "schemeType", Detail: fmt.Sprintf("invalid scheme %q", cfg.SchemeType)}
	}

	if cfg.DwellTime <= 0 {
		return &ConfigError{Field: "dwellTime", Detail: "must be positive"}
	}
	if cfg.TurnaroundTime <= 0 {
		return &ConfigError{Field: "turnaroundTime", Detail: "must be positive"}
	}
	if cfg.Acceleration <= 0 || cfg.Deceleration <= 0 {
		return &ConfigError{Field: "acceleration", Detail: "acceleration and deceleration must be positive"}
	}
	if cfg.MaxSpeed <= 0 {
		return &ConfigError{Field: "maxSpeed", Detail: "must be positive"}
	}
	if cfg.PassthroughSpeed < 0 || cfg.PassthroughSpeed > cfg.MaxSpeed {
		return &ConfigError{Field: "passthroughSpeed", Detail: "must be between 0 and maxSpeed"}
	}
	if cfg.MaxCapacity <= 0 {
		return &ConfigError{Field: "maxCapacity", Detail: "must be positive"}
	}

	if len(cfg.ServicePeriods) == 0 {
		return &ConfigError{Field: "servicePeriods", Detail: "at least one period required"}
	}
	prev := -1
	names := make(map[string]bool, len(cfg.ServicePeriods))
	for i, p := range cfg.ServicePeriods {
		if names[p.Name] {
			return &ConfigError{Field: "servicePeriods", Detail: fmt.Sprintf("duplicate period name %q", p.Name)}
		}
		names[p.Name] = true
		if p.StartHour < 0 || p.StartHour > 23 {
			return &ConfigError{Field: "servicePeriods", Detail: fmt.Sprintf("period %d: start hour out of range", i)}
		}
		if p.StartHour <= prev {
			return &ConfigError{Field: "servicePeriods", Detail: "periods must have strictly increasing start hours"}
		}
		prev = p.StartHour
		if p.RegularTrainCount < 0 || p.SkipStopTrainCount < 0 {
			return &ConfigError{Field: "servicePeriods", Detail: fmt.Sprintf("period %d: negative train count", i)}
		}
	}

	return nil
}
