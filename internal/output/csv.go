package output

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"trip-synth/internal/mobility"
)

// Header is the column order of the tabular trip output.
var Header = []string{"gps_start_lat", "gps_start_lon", "t_start", "t_end", "gps_end_lat", "gps_end_lon"}

// WriteCSV writes the header and one row per trip, in slice order.
func WriteCSV(w io.Writer, trips []mobility.Trip) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return err
	}
	row := make([]string, len(Header))
	for _, t := range trips {
		row[0] = formatCoord(t.StartLat)
		row[1] = formatCoord(t.StartLon)
		row[2] = strconv.FormatInt(t.StartMillis, 10)
		row[3] = strconv.FormatInt(t.EndMillis, 10)
		row[4] = formatCoord(t.EndLat)
		row[5] = formatCoord(t.EndLon)
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// CSVFile writes trips to a file path, or to stdout for "-".
type CSVFile struct {
	Path string
}

func (c *CSVFile) Name() string { return "csv" }

func (c *CSVFile) Write(_ context.Context, _ string, trips []mobility.Trip) error {
	if c.Path == "-" {
		return WriteCSV(os.Stdout, trips)
	}
	if dir := filepath.Dir(c.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	f, err := os.Create(c.Path)
	if err != nil {
		return fmt.Errorf("create %q: %w", c.Path, err)
	}
	if err := WriteCSV(f, trips); err != nil {
		f.Close()
		return fmt.Errorf("write %q: %w", c.Path, err)
	}
	return f.Close()
}
