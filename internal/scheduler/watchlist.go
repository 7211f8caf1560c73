package scheduler

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"textinsight/internal/domain"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

const defaultWatchSchedule = "0 8 * * *"

type watchlistFile struct {
	Watches []struct {
		Query    string `yaml:"query"`
		Schedule string `yaml:"schedule"`
		ChatID   int64  `yaml:"chat_id"`
	} `yaml:"watches"`
}

// LoadWatchlist reads watch queries from a YAML file of the form
//
//	watches:
//	  - query: go release notes
//	    schedule: "0 9 * * *"
//	    chat_id: 123456
//
// A missing schedule means every day at 08:00 UTC.
func LoadWatchlist(path string) ([]domain.Watch, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read watch list: %w", err)
	}

	var file watchlistFile
	if err = yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse watch list: %w", err)
	}

	watches := make([]domain.Watch, 0, len(file.Watches))
	var errs []error

	for i, w := range file.Watches {
		watch := domain.Watch{
			Query:    strings.TrimSpace(w.Query),
			Schedule: strings.TrimSpace(w.Schedule),
			ChatID:   w.ChatID,
		}

		if watch.Query == "" {
			errs = append(errs, fmt.Errorf("watch %d: %w", i, domain.ErrInvalidQuery))
			continue
		}

		if watch.Schedule == "" {
			watch.Schedule = defaultWatchSchedule
		}

		if _, parseErr := cron.ParseStandard(watch.Schedule); parseErr != nil {
			errs = append(errs, fmt.Errorf("watch %d: parse schedule %q: %w", i, watch.Schedule, parseErr))
			continue
		}

		watches = append(watches, watch)
	}

	if err = errors.Join(errs...); err != nil {
		return nil, err
	}

	return watches, nil
}
