package calendar

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// FileHolidays is a HolidayOracle backed by a YAML file listing
// exchange holidays as YYYY-MM-DD dates. The file is read once at
// startup; holiday updates mean a redeploy, same as the holding set.
type FileHolidays struct {
	dates map[string]bool
}

type holidayFile struct {
	Holidays []string `yaml:"holidays"`
}

// LoadHolidayFile reads and parses the holiday file at path.
func LoadHolidayFile(path string) (*FileHolidays, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read holiday file: %w", err)
	}

	var file holidayFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse holiday file: %w", err)
	}

	dates := make(map[string]bool, len(file.Holidays))
	for _, s := range file.Holidays {
		if _, err := time.Parse("2006-01-02", s); err != nil {
			return nil, fmt.Errorf("invalid holiday date %q: %w", s, err)
		}
		dates[s] = true
	}

	return &FileHolidays{dates: dates}, nil
}

// IsHoliday reports whether date falls on a listed holiday.
func (h *FileHolidays) IsHoliday(date time.Time) (bool, error) {
	return h.dates[date.Format("2006-01-02")], nil
}
