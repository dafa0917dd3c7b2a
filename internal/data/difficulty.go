// Package data holds the static tables the game ships with.
package data

import (
	_ "embed"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/tomz197/redlight/internal/game"
)

//go:embed difficulty.yaml
var difficultyYAML []byte

// Difficulty is a named tuning preset.
type Difficulty struct {
	Key    string
	Name   string
	Tuning game.Tuning
}

// difficultyEntry holds the overrides for one preset. Nil fields keep the
// base tuning.
type difficultyEntry struct {
	Key       string         `yaml:"key"`
	Name      string         `yaml:"name"`
	TimeLimit *time.Duration `yaml:"time_limit"`
	RunSpeed  *float64       `yaml:"run_speed"`
	UnsafeMin *time.Duration `yaml:"unsafe_min"`
	UnsafeMax *time.Duration `yaml:"unsafe_max"`
	SafeMin   *time.Duration `yaml:"safe_min"`
	SafeMax   *time.Duration `yaml:"safe_max"`
}

type difficultyFile struct {
	Difficulties []difficultyEntry `yaml:"difficulties"`
}

// DifficultyTable holds the presets in file order.
type DifficultyTable struct {
	list  []Difficulty
	byKey map[string]int
}

// LoadDifficulties parses the embedded presets over game.DefaultTuning.
func LoadDifficulties() (*DifficultyTable, error) {
	return ParseDifficulties(difficultyYAML, game.DefaultTuning())
}

// ParseDifficulties parses raw preset YAML, applying each entry's
// overrides to base.
func ParseDifficulties(raw []byte, base game.Tuning) (*DifficultyTable, error) {
	var f difficultyFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse difficulties: %w", err)
	}
	if len(f.Difficulties) == 0 {
		return nil, fmt.Errorf("parse difficulties: no presets")
	}

	t := &DifficultyTable{byKey: make(map[string]int, len(f.Difficulties))}
	for _, e := range f.Difficulties {
		if e.Key == "" {
			return nil, fmt.Errorf("difficulty %q: missing key", e.Name)
		}
		if _, dup := t.byKey[e.Key]; dup {
			return nil, fmt.Errorf("difficulty %q: duplicate key", e.Key)
		}
		tuning := e.apply(base)
		if err := tuning.Validate(); err != nil {
			return nil, fmt.Errorf("difficulty %q: %w", e.Key, err)
		}
		name := e.Name
		if name == "" {
			name = e.Key
		}
		t.byKey[e.Key] = len(t.list)
		t.list = append(t.list, Difficulty{Key: e.Key, Name: name, Tuning: tuning})
	}
	return t, nil
}

func (e difficultyEntry) apply(t game.Tuning) game.Tuning {
	setDuration(&t.TimeLimit, e.TimeLimit)
	setDuration(&t.UnsafeMin, e.UnsafeMin)
	setDuration(&t.UnsafeMax, e.UnsafeMax)
	setDuration(&t.SafeMin, e.SafeMin)
	setDuration(&t.SafeMax, e.SafeMax)
	if e.RunSpeed != nil {
		t.RunSpeed = *e.RunSpeed
	}
	return t
}

func setDuration(dst *time.Duration, v *time.Duration) {
	if v != nil {
		*dst = *v
	}
}

// Get returns the preset for key.
func (t *DifficultyTable) Get(key string) (Difficulty, bool) {
	i, ok := t.byKey[key]
	if !ok {
		return Difficulty{}, false
	}
	return t.list[i], true
}

// At returns the preset at index i (0-based, file order).
func (t *DifficultyTable) At(i int) (Difficulty, bool) {
	if i < 0 || i >= len(t.list) {
		return Difficulty{}, false
	}
	return t.list[i], true
}

// Index returns the position of key, or -1.
func (t *DifficultyTable) Index(key string) int {
	if i, ok := t.byKey[key]; ok {
		return i
	}
	return -1
}

// All returns the presets in file order.
func (t *DifficultyTable) All() []Difficulty {
	return t.list
}

// Count returns the number of presets.
func (t *DifficultyTable) Count() int {
	return len(t.list)
}
