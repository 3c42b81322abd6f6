package store

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/JonMunkholm/tablesort/internal/widget"
)

// seedFile is the layout of a profiles file:
//
//	profiles:
//	  - name: releases
//	    options:
//	      dateTimeFormat: DD.MM.YYYY
//	      rowClass: 'data["State"] == "done" ? "done" : ""'
type seedFile struct {
	Profiles []struct {
		Name    string         `yaml:"name"`
		Options widget.Options `yaml:"options"`
	} `yaml:"profiles"`
}

// LoadYAML stores every profile of a YAML file in s and returns how many it
// stored. Each profile's options are normalized first, so a broken profile
// fails the whole load before anything is written.
func LoadYAML(ctx context.Context, s Store, path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read profiles file: %w", err)
	}

	var file seedFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return 0, fmt.Errorf("parse profiles file %s: %w", path, err)
	}

	profiles := make([]Profile, 0, len(file.Profiles))
	for i, entry := range file.Profiles {
		if err := ValidateName(entry.Name); err != nil {
			return 0, fmt.Errorf("profile %d: %w", i, err)
		}
		opts := entry.Options
		if err := opts.Normalize(); err != nil {
			return 0, fmt.Errorf("profile %s: %w", entry.Name, err)
		}
		profiles = append(profiles, Profile{Name: entry.Name, Options: opts})
	}

	for _, p := range profiles {
		if _, err := s.Put(ctx, p); err != nil {
			return 0, err
		}
	}
	return len(profiles), nil
}
