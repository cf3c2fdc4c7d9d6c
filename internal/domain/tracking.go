package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// trackingFieldCount is the number of pipe-delimited fields in a
// well-formed tracker payload: lat|lon|altitude_m|satellites|battery_v|temp_f.
const trackingFieldCount = 6

// TrackingFields holds the decoded values of a tracker payload.
type TrackingFields struct {
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
	AltitudeM    int     `json:"altitude_m"`
	Satellites   int     `json:"satellites"`
	BatteryVolts float64 `json:"battery_v"`
	TemperatureF int     `json:"temperature_f"`
}

// ParseTrackingData decodes the pipe-delimited payload carried in a
// message's data field. The payload may arrive wrapped in stray quotes
// from the tracker firmware, so those are stripped before splitting.
func ParseTrackingData(raw string) (*TrackingFields, error) {
	clean := strings.Trim(strings.TrimSpace(raw), `"'`)

	parts := strings.Split(clean, "|")
	if len(parts) != trackingFieldCount {
		return nil, fmt.Errorf("expected %d pipe-delimited fields, got %d", trackingFieldCount, len(parts))
	}

	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid latitude %q: %w", parts[0], err)
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid longitude %q: %w", parts[1], err)
	}
	alt, err := strconv.Atoi(strings.TrimSpace(parts[2]))
	if err != nil {
		return nil, fmt.Errorf("invalid altitude %q: %w", parts[2], err)
	}
	sats, err := strconv.Atoi(strings.TrimSpace(parts[3]))
	if err != nil {
		return nil, fmt.Errorf("invalid satellite count %q: %w", parts[3], err)
	}
	batt, err := strconv.ParseFloat(strings.TrimSpace(parts[4]), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid battery voltage %q: %w", parts[4], err)
	}
	temp, err := strconv.Atoi(strings.TrimSpace(parts[5]))
	if err != nil {
		return nil, fmt.Errorf("invalid temperature %q: %w", parts[5], err)
	}

	return &TrackingFields{
		Latitude:     lat,
		Longitude:    lon,
		AltitudeM:    alt,
		Satellites:   sats,
		BatteryVolts: batt,
		TemperatureF: temp,
	}, nil
}
