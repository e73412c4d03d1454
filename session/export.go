package session

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
)

// ExportHeader is the fixed column header of the exported file.
var ExportHeader = []string{"Temperature (°C)", "Distance (cm)", "Time Taken (us)"}

// Export writes the dataset as comma-delimited UTF-8 text, one row per
// sample in display order under the fixed header. The unsaved-changes
// flag is cleared only when every row was written.
func (s *Session) Export(w io.Writer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cw := csv.NewWriter(w)
	if err := cw.Write(ExportHeader); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, sample := range s.samples {
		row := []string{
			sample.Temperature,
			sample.Distance,
			strconv.FormatInt(sample.TimeMicros, 10),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to flush export: %w", err)
	}

	s.dirty = false
	return nil
}

// ExportFile exports the dataset to the named file. Choosing the
// destination is the front-end's business; a cancelled prompt never
// reaches this far.
func (s *Session) ExportFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := s.Export(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	s.logger.Info("dataset exported", "path", path)
	return nil
}
