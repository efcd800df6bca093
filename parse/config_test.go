package parse

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khen08/mrt3sim/model"
)

const validConfigJSON = `{
	"dwellTime": 30,
	"turnaroundTime": 120,
	"acceleration": 1.0,
	"deceleration": 1.0,
	"maxSpeed": 60,
	"maxCapacity": 1000,
	"schemeType": "SKIP-STOP",
	"stationNames": ["One", "Two", "Three"],
	"stationDistances": [1.0, 1.2],
	"schemePattern": ["AB", "A", "AB"],
	"servicePeriods": [
		{"name": "ALL DAY", "start_hour": 5, "regular_train_count": 2, "skip_stop_train_count": 2}
	]
}`

func TestParseConfig(t *testing.T) {
	cfg, err := ParseConfig(strings.NewReader(validConfigJSON))
	require.NoError(t, err)

	assert.Equal(t, model.SchemeSkipStop, cfg.SchemeType)
	assert.Equal(t, []string{"One", "Two", "Three"}, cfg.StationNames)
	assert.Equal(t, []float64{1.0, 1.2}, cfg.StationDistances)
	require.Len(t, cfg.ServicePeriods, 1)
	assert.Equal(t, 5, cfg.ServicePeriods[0].StartHour)

	// Omitted passthrough speed falls back to the default.
	assert.Equal(t, model.DefaultPassthroughSpeed, cfg.PassthroughSpeed)
}

func TestParseConfigRejectsUnknownFields(t *testing.T) {
	in := strings.Replace(validConfigJSON, `"dwellTime"`, `"dwellTyme"`, 1)
	_, err := ParseConfig(strings.NewReader(in))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dwellTyme")
}

func TestParseConfigRejectsBadJSON(t *testing.T) {
	_, err := ParseConfig(strings.NewReader("{not json"))
	assert.Error(t, err)
}

func TestValidateConfig(t *testing.T) {
	base := func() model.Config {
		cfg, err := ParseConfig(strings.NewReader(validConfigJSON))
		require.NoError(t, err)
		return cfg
	}

	for _, tc := range []struct {
		name   string
		mutate func(*model.Config)
		field  string
	}{
		{
			name:   "too few stations",
			mutate: func(c *model.Config) { c.StationNames = []string{"Only"} },
			field:  "stationNames",
		},
		{
			name:   "distance count mismatch",
			mutate: func(c *model.Config) { c.StationDistances = []float64{1.0} },
			field:  "stationDistances",
		},
		{
			name:   "non-positive distance",
			mutate: func(c *model.Config) { c.StationDistances[1] = 0 },
			field:  "stationDistances",
		},
		{
			name:   "missing scheme",
			mutate: func(c *model.Config) { c.SchemeType = "" },
			field:  "schemeType",
		},
		{
			name:   "unknown scheme",
			mutate: func(c *model.Config) { c.SchemeType = "EXPRESS" },
			field:  "schemeType",
		},
		{
			name:   "pattern length mismatch",
			mutate: func(c *model.Config) { c.SchemePattern = c.SchemePattern[:2] },
			field:  "schemePattern",
		},
		{
			name:   "invalid station type",
			mutate: func(c *model.Config) { c.SchemePattern[1] = "C" },
			field:  "schemePattern",
		},
		{
			name:   "zero dwell",
			mutate: func(c *model.Config) { c.DwellTime = 0 },
			field:  "dwellTime",
		},
		{
			name:   "zero turnaround",
			mutate: func(c *model.Config) { c.TurnaroundTime = 0 },
			field:  "turnaroundTime",
		},
		{
			name:   "negative deceleration",
			mutate: func(c *model.Config) { c.Deceleration = -1 },
			field:  "acceleration",
		},
		{
			name:   "passthrough above max speed",
			mutate: func(c *model.Config) { c.PassthroughSpeed = 80 },
			field:  "passthroughSpeed",
		},
		{
			name:   "zero capacity",
			mutate: func(c *model.Config) { c.MaxCapacity = 0 },
			field:  "maxCapacity",
		},
		{
			name:   "no service periods",
			mutate: func(c *model.Config) { c.ServicePeriods = nil },
			field:  "servicePeriods",
		},
		{
			name: "start hour out of range",
			mutate: func(c *model.Config) {
				c.ServicePeriods[0].StartHour = 24
			},
			field: "servicePeriods",
		},
		{
			name: "duplicate period name",
			mutate: func(c *model.Config) {
				c.ServicePeriods = append(c.ServicePeriods,
					model.ServicePeriod{Name: "ALL DAY", StartHour: 9,
						RegularTrainCount: 1, SkipStopTrainCount: 1})
			},
			field: "servicePeriods",
		},
		{
			name: "non-increasing periods",
			mutate: func(c *model.Config) {
				c.ServicePeriods = append(c.ServicePeriods,
					model.ServicePeriod{Name: "DUP", StartHour: 5})
			},
			field: "servicePeriods",
		},
		{
			name: "negative train count",
			mutate: func(c *model.Config) {
				c.ServicePeriods[0].RegularTrainCount = -1
			},
			field: "servicePeriods",
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			cfg := base()
			tc.mutate(&cfg)

			err := ValidateConfig(cfg)
			require.Error(t, err)

			var cerr *ConfigError
			require.ErrorAs(t, err, &cerr)
			assert.Equal(t, tc.field, cerr.Field)
		})
	}
}

func TestValidateConfigRegularIgnoresPattern(t *testing.T) {
	cfg := model.DefaultConfig()
	cfg.SchemePattern = nil
	assert.NoError(t, ValidateConfig(cfg))
}

func TestDefaultConfigIsValid(t *testing.T) {
	assert.NoError(t, ValidateConfig(model.DefaultConfig()))
}
