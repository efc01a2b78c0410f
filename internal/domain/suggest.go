package domain

import (
	"context"
	"log/slog"
)

// SuggestCentroids asks the geocoder for a position for every missing key and
// attaches it as a suggestion. Failures and empty answers leave the entry
// untouched (graceful degradation). Joined records are never modified.
func SuggestCentroids(ctx context.Context, missing []MissingKey, geocoder Geocoder, logger *slog.Logger) []MissingKey {
	if geocoder == nil || len(missing) == 0 {
		return missing
	}

	out := make([]MissingKey, len(missing))
	copy(out, missing)

	for i := range out {
		if ctx.Err() != nil {
			break
		}
		if out[i].County == "" {
			continue
		}
		result, err := geocoder.ForwardGeocode(ctx, out[i].County+countySuffix, out[i].State)
		if err != nil {
			logger.Warn("centroid suggestion failed",
				"state", out[i].State,
				"county", out[i].County,
				"error", err,
			)
			continue
		}
		if result.Lat == 0 && result.Lon == 0 {
			continue
		}
		r := result
		out[i].Suggestion = &r
	}
	return out
}
