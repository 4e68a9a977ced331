package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/aerovane/skedcore/internal/platform/config"
	"github.com/aerovane/skedcore/internal/platform/db"
	"github.com/aerovane/skedcore/internal/platform/logging"
	"github.com/aerovane/skedcore/internal/platform/observability"
	"github.com/aerovane/skedcore/internal/repositories"
)

// Gateway fetches forecasts for a flight checkpoint, with retry/backoff
// against the upstream, conditional revalidation, cache fallback, and
// synthetic fallback. It never persists; callers append the returned
// snapshot via the snapshot store.
type Gateway struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	snapshots  *repositories.WeatherSnapshotRepository
	tunables   config.Tunables
	logger     *logging.Logger
	metrics    *observability.Metrics
}

// NewGateway constructs a Gateway. With an empty apiKey the upstream is
// never called; checkpoints are served from cache or synthetic fallback.
func NewGateway(baseURL, apiKey string, snapshots *repositories.WeatherSnapshotRepository, tunables config.Tunables, logger *logging.Logger) *Gateway {
	return &Gateway{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    baseURL,
		apiKey:     apiKey,
		snapshots:  snapshots,
		tunables:   tunables,
		logger:     logger,
		metrics:    observability.GetMetrics(),
	}
}

// resolveCheckpoint derives (location, targetInstant) for a checkpoint.
// The corridor checkpoint is fetched against the origin airport at
// departure time; whether this is intentional or a placeholder for a
// midroute point is left unresolved in the source and reproduced as-is.
func resolveCheckpoint(flight *db.Flight, checkpointType string) (checkpointRef, error) {
	switch checkpointType {
	case db.CheckpointDeparture:
		return checkpointRef{Location: flight.OriginCode, TargetInstant: flight.DepartureTime}, nil
	case db.CheckpointArrival:
		return checkpointRef{Location: flight.DestinationCode, TargetInstant: flight.ArrivalTime}, nil
	case db.CheckpointCorridor:
		return checkpointRef{Location: flight.OriginCode, TargetInstant: flight.DepartureTime}, nil
	default:
		return checkpointRef{}, fmt.Errorf("unknown checkpoint type %q", checkpointType)
	}
}

// FetchCheckpoint runs the full fetch/fallback chain for one flight
// checkpoint and returns an unsaved snapshot ready for the snapshot
// store to append.
func (g *Gateway) FetchCheckpoint(ctx context.Context, flight *db.Flight, checkpointType, correlationID string) (*db.WeatherSnapshot, error) {
	ref, err := resolveCheckpoint(flight, checkpointType)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	outcome := "not_available"
	defer func() {
		g.metrics.GatewayRequestsTotal.WithLabelValues(checkpointType, outcome).Inc()
		g.metrics.GatewayLatency.WithLabelValues(checkpointType).Observe(time.Since(start).Seconds())
	}()

	if g.apiKey != "" {
		if snap, err := g.fetchRemote(ctx, flight, checkpointType, ref, correlationID); err == nil {
			outcome = "fetched"
			return snap, nil
		} else {
			g.logger.Warn(correlationID, "gateway remote fetch exhausted, falling back", logging.Fields{
				"flight_id": flight.ID, "checkpoint": checkpointType, "error": err.Error(),
			})
		}
	}

	if snap, err := g.cachedFallback(ctx, flight, checkpointType, correlationID); err == nil {
		outcome = "cached"
		return snap, nil
	}

	snap := g.syntheticFallback(flight, checkpointType, ref, correlationID)
	outcome = "synthetic"
	return snap, nil
}

// fetchRemote performs the bounded HTTP GET with retry/backoff and
// conditional revalidation.
func (g *Gateway) fetchRemote(ctx context.Context, flight *db.Flight, checkpointType string, ref checkpointRef, correlationID string) (*db.WeatherSnapshot, error) {
	revalidationToken := g.priorRevalidationToken(ctx, ref)

	backoff := g.tunables.GatewayBaseBackoff()
	var lastErr error

	for attempt := 0; attempt < g.tunables.GatewayAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
			backoff *= 2
			if max := g.tunables.GatewayMaxBackoff(); backoff > max {
				backoff = max
			}
		}

		attemptCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		status, body, err := g.doRequest(attemptCtx, ref, revalidationToken)
		cancel()

		if err != nil {
			lastErr = err
			continue
		}

		if status == http.StatusNotModified {
			cached, cerr := g.snapshots.LatestForLocationForecast(ctx, ref.Location, ref.TargetInstant)
			if cerr != nil {
				return nil, fmt.Errorf("304 lookup failed: %w", cerr)
			}
			if cached == nil {
				return nil, fmt.Errorf("304 not modified but no stored snapshot found")
			}
			return reissue(cached, flight, checkpointType, correlationID), nil
		}

		if status >= 500 || status == http.StatusTooManyRequests {
			lastErr = fmt.Errorf("upstream status %d", status)
			continue
		}

		if status < 200 || status >= 300 {
			return nil, fmt.Errorf("upstream status %d (no retry)", status)
		}

		bucket, token, err := decodeUpstream(body, ref.TargetInstant)
		if err != nil {
			return nil, fmt.Errorf("decode upstream response: %w", err)
		}

		forecast := normalize(bucket, ref.TargetInstant, token)
		return toSnapshot(forecast, flight, checkpointType, ref, correlationID), nil
	}

	return nil, fmt.Errorf("exhausted %d attempts: %w", g.tunables.GatewayAttempts, lastErr)
}

func (g *Gateway) priorRevalidationToken(ctx context.Context, ref checkpointRef) string {
	prior, err := g.snapshots.LatestForLocationForecast(ctx, ref.Location, ref.TargetInstant)
	if err != nil || prior == nil || !prior.RevalidationToken.Valid {
		return ""
	}
	return prior.RevalidationToken.String
}

func (g *Gateway) doRequest(ctx context.Context, ref checkpointRef, revalidationToken string) (int, []byte, error) {
	url := fmt.Sprintf("%s?location=%s&date=%s", g.baseURL, ref.Location, ref.TargetInstant.UTC().Format("2006-01-02"))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+g.apiKey)
	if revalidationToken != "" {
		req.Header.Set("If-None-Match", revalidationToken)
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("transport error: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("read response body: %w", err)
	}

	return resp.StatusCode, body, nil
}

// cachedFallback falls back to the most recent snapshot for
// (flightId, checkpointType). The reissued snapshot carries no staleness
// annotation: its age in hours is not recorded anywhere.
func (g *Gateway) cachedFallback(ctx context.Context, flight *db.Flight, checkpointType, correlationID string) (*db.WeatherSnapshot, error) {
	cached, err := g.snapshots.LatestForFlightCheckpoint(ctx, flight.ID, checkpointType)
	if err != nil {
		return nil, err
	}
	if cached == nil {
		return nil, fmt.Errorf("no cached snapshot for flight %d checkpoint %s", flight.ID, checkpointType)
	}
	return reissue(cached, flight, checkpointType, correlationID), nil
}

// syntheticFallback synthesizes a snapshot when no upstream or cached
// forecast is available.
func (g *Gateway) syntheticFallback(flight *db.Flight, checkpointType string, ref checkpointRef, correlationID string) *db.WeatherSnapshot {
	forecast := synthesize(flight.OriginCode, flight.DestinationCode, checkpointType, ref.TargetInstant)
	return toSnapshot(forecast, flight, checkpointType, ref, correlationID)
}

func toSnapshot(f Forecast, flight *db.Flight, checkpointType string, ref checkpointRef, correlationID string) *db.WeatherSnapshot {
	snap := &db.WeatherSnapshot{
		FlightID:          flight.ID,
		CheckpointType:    checkpointType,
		LocationCode:      ref.Location,
		ForecastInstant:   ref.TargetInstant,
		WindSpeed:         f.WindSpeed,
		Visibility:        f.Visibility,
		Conditions:        f.Conditions,
		ConfidenceHorizon: f.ConfidenceHorizon,
		CorrelationID:     correlationID,
	}
	if f.Ceiling != nil {
		snap.Ceiling.Valid = true
		snap.Ceiling.Float64 = *f.Ceiling
	}
	if f.RevalidationToken != "" {
		snap.RevalidationToken.Valid = true
		snap.RevalidationToken.String = f.RevalidationToken
	}
	return snap
}

// reissue re-stamps a previously stored snapshot with a fresh correlation
// id, preserving its forecast content and revalidation token.
func reissue(prior *db.WeatherSnapshot, flight *db.Flight, checkpointType, correlationID string) *db.WeatherSnapshot {
	snap := *prior
	snap.ID = 0
	snap.FlightID = flight.ID
	snap.CheckpointType = checkpointType
	snap.CorrelationID = correlationID
	snap.CreatedAt = time.Time{}
	return &snap
}

func decodeUpstream(body []byte, targetInstant time.Time) (upstreamHourBucket, string, error) {
	var doc struct {
		ETag  string `json:"etag"`
		Hours []struct {
			TimeUTC       time.Time `json:"time_utc"`
			WindKPH       float64   `json:"wind_kph"`
			VisibilityMi  float64   `json:"visibility_mi"`
			CloudCoverPct float64   `json:"cloud_cover_pct"`
			Conditions    string    `json:"conditions"`
		} `json:"hours"`
	}
	if err := json.Unmarshal(body, &doc); err != nil {
		return upstreamHourBucket{}, "", err
	}

	targetHour := targetInstant.UTC().Truncate(time.Hour)
	for _, h := range doc.Hours {
		if h.TimeUTC.UTC().Truncate(time.Hour).Equal(targetHour) {
			return upstreamHourBucket{
				TimeUTC:       h.TimeUTC,
				WindKPH:       h.WindKPH,
				VisibilityMi:  h.VisibilityMi,
				CloudCoverPct: h.CloudCoverPct,
				Conditions:    h.Conditions,
			}, doc.ETag, nil
		}
	}

	return upstreamHourBucket{}, "", fmt.Errorf("no hour bucket matching %s", targetHour)
}
