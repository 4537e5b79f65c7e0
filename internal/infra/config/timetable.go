package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"class_timer_bot/internal/domain/period"
	"class_timer_bot/internal/domain/schedule"

	"gopkg.in/yaml.v3"
)

//go:embed timetable.yaml
var defaultTimetable []byte

var ErrEmptyTimetable = errors.New("timetable has no periods")

type timetableFile struct {
	Periods []struct {
		Start string `yaml:"start"`
		End   string `yaml:"end"`
	} `yaml:"periods"`
	Schedule []struct {
		Day  string `yaml:"day"`
		Name string `yaml:"name"`
		Time string `yaml:"time"`
	} `yaml:"schedule"`
}

// LoadTimetable reads the timetable from path, or the embedded default when
// path is empty. Every period label is validated here so a bad entry fails
// startup instead of surfacing as a silent "00:00" timer.
func LoadTimetable(path string) (*schedule.Timetable, error) {
	if path == "" {
		return ParseTimetable(defaultTimetable)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading timetable: %w", err)
	}
	tt, err := ParseTimetable(data)
	if err != nil {
		return nil, fmt.Errorf("timetable %s: %w", path, err)
	}
	return tt, nil
}

// ParseTimetable decodes and validates timetable YAML.
func ParseTimetable(data []byte) (*schedule.Timetable, error) {
	var raw timetableFile
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing YAML: %w", err)
	}
	if len(raw.Periods) == 0 {
		return nil, ErrEmptyTimetable
	}

	tt := &schedule.Timetable{
		Periods: make([]period.Period, 0, len(raw.Periods)),
		Entries: make([]schedule.Entry, 0, len(raw.Schedule)),
	}

	seen := make(map[period.Period]bool, len(raw.Periods))
	for i, rp := range raw.Periods {
		p, err := period.New(rp.Start, rp.End)
		if err != nil {
			return nil, fmt.Errorf("periods[%d]: %w", i, err)
		}
		if seen[p] {
			return nil, fmt.Errorf("periods[%d]: duplicate period %s", i, p)
		}
		seen[p] = true
		tt.Periods = append(tt.Periods, p)
	}

	for i, re := range raw.Schedule {
		day := strings.TrimSpace(re.Day)
		if day == "" {
			return nil, fmt.Errorf("schedule[%d]: day is required", i)
		}
		if strings.TrimSpace(re.Name) == "" {
			return nil, fmt.Errorf("schedule[%d]: name is required", i)
		}
		tt.Entries = append(tt.Entries, schedule.Entry{Day: day, Name: re.Name, Time: re.Time})
	}

	return tt, nil
}
