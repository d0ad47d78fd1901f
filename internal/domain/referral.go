package domain

import (
	"fmt"
	"strings"
)

// Topic is a canonical legal topic token.
type Topic string

const (
	TopicChildSupport Topic = "child_support"
	TopicEducation    Topic = "education"
	TopicHousing      Topic = "housing"
	TopicDivorce      Topic = "divorce"
	TopicCustody      Topic = "custody"
)

// Topics lists the canonical topics in display order.
var Topics = []Topic{
	TopicChildSupport,
	TopicEducation,
	TopicHousing,
	TopicDivorce,
	TopicCustody,
}

// Valid reports whether t is one of the canonical topics.
func (t Topic) Valid() bool {
	for _, known := range Topics {
		if t == known {
			return true
		}
	}
	return false
}

// Level is the referral intensity derived from triage answers.
type Level int

const (
	LevelGeneralInfo   Level = 1
	LevelSelfHelp      Level = 2
	LevelDirectService Level = 3
)

func (l Level) Valid() bool {
	return l >= LevelGeneralInfo && l <= LevelDirectService
}

// Key returns the catalog key for the level, e.g. "level_2".
func (l Level) Key() string {
	return fmt.Sprintf("level_%d", int(l))
}

// ParseLevelKey is the inverse of Level.Key.
func ParseLevelKey(key string) (Level, error) {
	var n int
	if _, err := fmt.Sscanf(strings.TrimSpace(key), "level_%d", &n); err != nil {
		return 0, fmt.Errorf("domain: invalid level key %q", key)
	}
	l := Level(n)
	if !l.Valid() || l.Key() != strings.TrimSpace(key) {
		return 0, fmt.Errorf("domain: invalid level key %q", key)
	}
	return l, nil
}

// ReferralRecord is a single organization or contact offered to the user.
type ReferralRecord struct {
	Name               string `json:"name" yaml:"name"`
	URL                string `json:"url" yaml:"url"`
	Description        string `json:"description" yaml:"description"`
	Phone              string `json:"phone" yaml:"phone"`
	IntakeForm         string `json:"intake_form" yaml:"intake_form"`
	IntakeInstructions string `json:"intake_instructions" yaml:"intake_instructions"`
	IsNFP              bool   `json:"is_nfp" yaml:"is_nfp"`
}
