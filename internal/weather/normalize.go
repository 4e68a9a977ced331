package weather

import "time"

// upstreamHourBucket is one hour-bucket of the upstream forecast document,
// after JSON decoding (see decodeUpstream in gateway.go for the wire shape).
type upstreamHourBucket struct {
	TimeUTC     time.Time
	WindKPH     float64
	VisibilityMi float64
	CloudCoverPct float64
	Conditions  string
}

// normalize converts one upstream hour bucket into a Forecast: wind
// kph→knots (round), ceiling from cloud coverage, and a confidence
// horizon derived from lead time.
func normalize(bucket upstreamHourBucket, targetInstant time.Time, revalidationToken string) Forecast {
	windKnots := roundFloat(bucket.WindKPH * 0.539957)

	var ceiling *float64
	if bucket.CloudCoverPct >= 10 {
		c := 10000 - bucket.CloudCoverPct*100
		ceiling = &c
	}

	leadTime := time.Until(targetInstant)

	return Forecast{
		WindSpeed:         windKnots,
		Visibility:        bucket.VisibilityMi,
		Ceiling:           ceiling,
		Conditions:        bucket.Conditions,
		ConfidenceHorizon: confidenceHorizonFor(leadTime),
		RevalidationToken: revalidationToken,
		Source:            SourceLive,
	}
}

// confidenceHorizonFor buckets lead time into a confidence horizon in
// hours. The boundary is strict "<", so a lead time of exactly 24h or
// 72h jumps to the higher confidence-horizon bucket.
func confidenceHorizonFor(leadTime time.Duration) int {
	hours := leadTime.Hours()
	switch {
	case hours < 24:
		return 24
	case hours < 72:
		return 48
	default:
		return 72
	}
}

func roundFloat(v float64) float64 {
	if v < 0 {
		return float64(int64(v - 0.5))
	}
	return float64(int64(v + 0.5))
}
