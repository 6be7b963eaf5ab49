// Package weather holds the latest weather snapshot and the two-phase panel
// cycle that alternates between current conditions and the 6-hour outlook.
package weather

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrNoSnapshot is returned for a weather frame that carries no data.
var ErrNoSnapshot = errors.New("weather frame has no data")

// Value is a weather reading. The backend sends readings as JSON numbers or
// strings; both decode to their textual form.
type Value string

// UnmarshalJSON accepts a number, a string or null.
func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*v = ""
		return nil
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = Value(s)
		return nil
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("weather value %s: %w", data, err)
		}
		*v = Value(n.String())
		return nil
	}
}

// Float parses the reading as a number.
func (v Value) Float() (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(string(v)), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// String returns the reading, or "-" when it is missing.
func (v Value) String() string {
	if v == "" {
		return "-"
	}
	return string(v)
}

// Snapshot is one complete weather report. It is always replaced as a whole.
type Snapshot struct {
	CurrentTemp     Value `json:"Current_temp"`
	ExpectedRain    Value `json:"Expected_rain"`
	CurrentWind     Value `json:"Current_wind"`
	CurrentCloud    Value `json:"Current_cloud"`
	CurrentFog      Value `json:"Current_fog"`
	MaxAirTemp6h    Value `json:"Max_air_temp_6_hours"`
	MinAirTemp6h    Value `json:"Min_air_temp_6_hours"`
	MaxRain6h       Value `json:"Max_rain_6_hours"`
	MinRain6h       Value `json:"Min_rain_6_hours"`
	RainProbability Value `json:"Rain_probability_6_hours"`
	LastUpdated     Value `json:"Last_updated"`
}

// ParseSnapshot decodes a weather frame's data. Missing or null data is
// ErrNoSnapshot, so the caller keeps whatever snapshot it already has.
func ParseSnapshot(data []byte) (Snapshot, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return Snapshot{}, ErrNoSnapshot
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}
