package model

// Simulation configuration. Distances are kilometres between
// consecutive stations, speeds are km/h; the engine converts to
// metres and m/s internally.
type Config struct {
	DwellTime        int             `json:"dwellTime"`
	TurnaroundTime   int             `json:"turnaroundTime"`
	Acceleration     float64         `json:"acceleration"`
	Deceleration     float64         `json:"deceleration"`
	MaxSpeed         float64         `json:"maxSpeed"`
	PassthroughSpeed float64         `json:"passthroughSpeed"`
	MaxCapacity      int             `json:"maxCapacity"`
	SchemeType       Scheme          `json:"schemeType"`
	StationNames     []string        `json:"stationNames"`
	StationDistances []float64       `json:"stationDistances"`
	SchemePattern    []StationType   `json:"schemePattern"`
	ServicePeriods   []ServicePeriod `json:"servicePeriods"`
}

// Platform zone length used by the passthrough motion profile.
const DefaultZoneLengthMetres = 130.0

const DefaultPassthroughSpeed = 20.0

// DefaultConfig is the MRT-3 line: 13 stations, North Avenue down to
// Taft Avenue, with the fleet parameters of the current 3-car sets.
func DefaultConfig() Config {
	return Config{
		DwellTime:        30,
		TurnaroundTime:   300,
		Acceleration:     0.8,
		Deceleration:     0.8,
		MaxSpeed:         45,
		PassthroughSpeed: DefaultPassthroughSpeed,
		MaxCapacity:      1182,
		SchemeType:       SchemeRegular,
		StationNames: []string{
			"North Avenue",
			"Quezon Avenue",
			"GMA-Kamuning",
			"Araneta Cubao",
			"Santolan-Annapolis",
			"Ortigas",
			"Shaw Boulevard",
			"Boni Avenue",
			"Guadalupe",
			"Buendia",
			"Ayala",
			"Magallanes",
			"Taft Avenue",
		},
		StationDistances: []float64{
			1.2, 1.1, 1.8, 1.5, 1.4, 0.9, 1.0, 1.1, 1.3, 1.0, 1.2, 1.7,
		},
		SchemePattern: []StationType{
			StationAB, StationA, StationAB, StationB, StationAB,
			StationA, StationAB, StationB, StationAB, StationA,
			StationAB, StationB, StationAB,
		},
		ServicePeriods: []ServicePeriod{
			{Name: "MORNING", StartHour: 5, RegularTrainCount: 14, SkipStopTrainCount: 11},
			{Name: "AM PEAK", StartHour: 7, RegularTrainCount: 19, SkipStopTrainCount: 14},
			{Name: "AM TRANSITION", StartHour: 9, RegularTrainCount: 16, SkipStopTrainCount: 12},
			{Name: "BASE", StartHour: 10, RegularTrainCount: 14, SkipStopTrainCount: 12},
			{Name: "PM TRANSITION", StartHour: 16, RegularTrainCount: 16, SkipStopTrainCount: 12},
			{Name: "PM PEAK", StartHour: 17, RegularTrainCount: 19, SkipStopTrainCount: 14},
			{Name: "NIGHT", StartHour: 19, RegularTrainCount: 14, SkipStopTrainCount: 12},
			{Name: "SERVICE END", StartHour: 21, RegularTrainCount: 4, SkipStopTrainCount: 4},
		},
	}
}
