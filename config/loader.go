// config/loader.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package config

import (
	"os"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Loader loads calibration files, keeping recently parsed ones around so
// that a batch of scenarios that share a calibration parses it once. A
// file that is modified on disk is parsed again.
type Loader struct {
	cache *expirable.LRU[string, *Calibration]
}

func NewLoader() *Loader {
	return &Loader{
		cache: expirable.NewLRU[string, *Calibration](32, nil, time.Hour),
	}
}

// Load returns the calibration at path, or the default calibration if
// path is empty. The returned value is shared between callers and must
// not be modified.
func (l *Loader) Load(path string) (*Calibration, error) {
	if path == "" {
		return Default(), nil
	}

	fi, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	key := path + "@" + fi.ModTime().Format(time.RFC3339Nano)

	if c, ok := l.cache.Get(key); ok {
		return c, nil
	}

	c, err := Load(path)
	if err != nil {
		return nil, err
	}
	l.cache.Add(key, c)
	return c, nil
}

func (l *Loader) Len() int {
	return l.cache.Len()
}
