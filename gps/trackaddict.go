// Package gps parses GPS telemetry logs exported alongside footage.
package gps

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

// TimestampLayout is the fixed format pings are stored with: millisecond
// precision, UTC. Strings in this layout sort lexicographically in time
// order, which the route window queries rely on.
const TimestampLayout = "2006-01-02 15:04:05.000"

// Ping is one GPS fix parsed from a telemetry log.
type Ping struct {
	Timestamp    string  // formatted with TimestampLayout
	Latitude     float64 // decimal degrees
	Longitude    float64 // decimal degrees
	Altitude     float64 // as logged, usually meters
	RelativeTime float64 // seconds since the start of the recording
	Speed        float64 // km/h as logged
	Raw          string  // full source row serialized as JSON
}

// ParseTrackAddictFile reads a TrackAddict CSV export from disk.
func ParseTrackAddictFile(path string, logger *zap.Logger) ([]Ping, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open telemetry log %s: %w", path, err)
	}
	defer f.Close()

	pings, err := ParseTrackAddict(f, logger)
	if err != nil {
		return nil, fmt.Errorf("telemetry log %s: %w", path, err)
	}
	return pings, nil
}

// ParseTrackAddict parses a TrackAddict CSV export. Comment lines start with
// '#', possibly after leading whitespace, and are dropped before CSV parsing.
// Rows with malformed numeric fields are skipped with a warning; a log with
// no usable rows yields an empty slice, which callers treat the same as
// absent telemetry.
func ParseTrackAddict(r io.Reader, logger *zap.Logger) ([]Ping, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read telemetry log: %w", err)
	}

	var kept []string
	for _, line := range strings.Split(string(data), "\n") {
		if strings.HasPrefix(strings.TrimLeft(line, " \t"), "#") {
			continue
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		kept = append(kept, line)
	}
	if len(kept) < 2 {
		return nil, nil
	}

	reader := csv.NewReader(strings.NewReader(strings.Join(kept, "\n")))
	reader.FieldsPerRecord = -1 // TrackAddict column count varies with enabled sensors
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse telemetry CSV: %w", err)
	}
	if len(records) < 2 {
		return nil, nil
	}

	header := make([]string, len(records[0]))
	col := make(map[string]int, len(records[0]))
	for i, name := range records[0] {
		header[i] = strings.TrimSpace(name)
		col[header[i]] = i
	}
	for _, required := range []string{"Time", "UTC Time", "Latitude", "Longitude"} {
		if _, ok := col[required]; !ok {
			return nil, fmt.Errorf("telemetry CSV is missing the %q column", required)
		}
	}
	// altitude and speed headers carry the unit ("Altitude (m)", "Speed (Km/h)")
	altIdx := columnWithPrefix(header, "Altitude")
	speedIdx := columnWithPrefix(header, "Speed")

	pings := make([]Ping, 0, len(records)-1)
	for rowNum, record := range records[1:] {
		ping, err := parseRow(header, record, col, altIdx, speedIdx)
		if err != nil {
			logger.Warn("skipping malformed telemetry row",
				zap.Int("row", rowNum+2), // 1-based, counting the header
				zap.Error(err))
			continue
		}
		pings = append(pings, ping)
	}
	return pings, nil
}

func columnWithPrefix(header []string, prefix string) int {
	for i, name := range header {
		if strings.HasPrefix(name, prefix) {
			return i
		}
	}
	return -1
}

func parseRow(header, record []string, col map[string]int, altIdx, speedIdx int) (Ping, error) {
	field := func(idx int) string {
		if idx < 0 || idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}

	relTime, err := strconv.ParseFloat(field(col["Time"]), 64)
	if err != nil {
		return Ping{}, fmt.Errorf("bad Time value %q", field(col["Time"]))
	}
	utc, err := strconv.ParseFloat(field(col["UTC Time"]), 64)
	if err != nil {
		return Ping{}, fmt.Errorf("bad UTC Time value %q", field(col["UTC Time"]))
	}
	lat, err := strconv.ParseFloat(field(col["Latitude"]), 64)
	if err != nil {
		return Ping{}, fmt.Errorf("bad Latitude value %q", field(col["Latitude"]))
	}
	lon, err := strconv.ParseFloat(field(col["Longitude"]), 64)
	if err != nil {
		return Ping{}, fmt.Errorf("bad Longitude value %q", field(col["Longitude"]))
	}

	alt := 0.0
	if v := field(altIdx); v != "" {
		alt, err = strconv.ParseFloat(v, 64)
		if err != nil {
			return Ping{}, fmt.Errorf("bad Altitude value %q", v)
		}
	}
	speed := 0.0
	if v := field(speedIdx); v != "" {
		speed, err = strconv.ParseFloat(v, 64)
		if err != nil {
			return Ping{}, fmt.Errorf("bad Speed value %q", v)
		}
	}

	raw := make(map[string]string, len(header))
	for i, name := range header {
		if i < len(record) {
			raw[name] = strings.TrimSpace(record[i])
		}
	}
	rawJSON, err := json.Marshal(raw)
	if err != nil {
		return Ping{}, fmt.Errorf("failed to serialize source row: %w", err)
	}

	ts := time.UnixMilli(int64(math.Round(utc * 1000))).UTC().Format(TimestampLayout)

	return Ping{
		Timestamp:    ts,
		Latitude:     lat,
		Longitude:    lon,
		Altitude:     alt,
		RelativeTime: relTime,
		Speed:        speed,
		Raw:          string(rawJSON),
	}, nil
}
