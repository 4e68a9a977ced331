package weather

import "time"

// syntheticProfile is a canned forecast used when neither the live API nor
// a cached snapshot can serve a checkpoint.
type syntheticProfile struct {
	WindSpeed  float64
	Visibility float64
	Ceiling    *float64
	Conditions string
}

func ceilingPtr(v float64) *float64 { return &v }

// routeKey identifies a (origin, destination, checkpoint) synthetic profile.
type routeKey struct {
	Origin      string
	Destination string
	Checkpoint  string
}

// perRouteProfiles holds canned conditions for routes known ahead of time to
// need a distinct synthetic forecast (e.g. mountainous corridors). Routes
// not listed fall back to defaultProfile.
var perRouteProfiles = map[routeKey]syntheticProfile{
	{Origin: "KPAO", Destination: "KSQL", Checkpoint: "corridor"}: {
		WindSpeed: 8, Visibility: 10, Ceiling: nil, Conditions: "clear, light bay breeze",
	},
	{Origin: "KSQL", Destination: "KPAO", Checkpoint: "corridor"}: {
		WindSpeed: 8, Visibility: 10, Ceiling: nil, Conditions: "clear, light bay breeze",
	},
}

// defaultProfile is used whenever no per-route profile matches.
var defaultProfile = syntheticProfile{
	WindSpeed:  10,
	Visibility: 9,
	Ceiling:    ceilingPtr(8000),
	Conditions: "synthetic default: scattered clouds, light wind",
}

// synthesize produces a Forecast from the matching profile (or the default).
func synthesize(origin, destination, checkpoint string, targetInstant time.Time) Forecast {
	profile, ok := perRouteProfiles[routeKey{Origin: origin, Destination: destination, Checkpoint: checkpoint}]
	if !ok {
		profile = defaultProfile
	}

	return Forecast{
		WindSpeed:         profile.WindSpeed,
		Visibility:        profile.Visibility,
		Ceiling:           profile.Ceiling,
		Conditions:        profile.Conditions,
		ConfidenceHorizon: confidenceHorizonFor(time.Until(targetInstant)),
		Source:            SourceSynthetic,
	}
}
