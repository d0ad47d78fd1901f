package catalog

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"intake-triage/internal/domain"
)

//go:embed referrals.yaml
var defaultDocument []byte

// document is the on-disk shape. JSON documents parse too since YAML is a
// superset of JSON.
type document struct {
	IncomeGatedProviders []string                                     `yaml:"income_gated_providers"`
	FlaggedProvider      string                                       `yaml:"flagged_provider"`
	Topics               map[string]map[string][]domain.ReferralRecord `yaml:"topics"`
}

// Catalog is an immutable topic -> level -> referral lookup. It is safe for
// concurrent use once constructed.
type Catalog struct {
	entries         map[domain.Topic]map[domain.Level][]domain.ReferralRecord
	incomeGated     []string
	flaggedProvider string
}

// Default parses the catalog embedded in the binary.
func Default() (*Catalog, error) {
	return Parse(defaultDocument)
}

// LoadFile parses a catalog document from disk.
func LoadFile(path string) (*Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: read %q: %w", path, err)
	}
	return Parse(raw)
}

// Parse decodes and validates a catalog document. Unknown fields, topics or
// level keys are rejected rather than ignored.
func Parse(raw []byte) (*Catalog, error) {
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)

	var doc document
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("catalog: document is empty")
		}
		return nil, fmt.Errorf("catalog: decode: %w", err)
	}
	if len(doc.Topics) == 0 {
		return nil, errors.New("catalog: no topics defined")
	}

	c := &Catalog{
		entries:         make(map[domain.Topic]map[domain.Level][]domain.ReferralRecord, len(doc.Topics)),
		flaggedProvider: strings.ToLower(strings.TrimSpace(doc.FlaggedProvider)),
	}
	for _, fragment := range doc.IncomeGatedProviders {
		fragment = strings.ToLower(strings.TrimSpace(fragment))
		if fragment == "" {
			return nil, errors.New("catalog: income gated provider must not be empty")
		}
		c.incomeGated = append(c.incomeGated, fragment)
	}

	for topicKey, levels := range doc.Topics {
		topic := domain.Topic(strings.TrimSpace(topicKey))
		if !topic.Valid() {
			return nil, fmt.Errorf("catalog: unknown topic %q", topicKey)
		}
		byLevel := make(map[domain.Level][]domain.ReferralRecord, len(levels))
		for levelKey, records := range levels {
			level, err := domain.ParseLevelKey(levelKey)
			if err != nil {
				return nil, fmt.Errorf("catalog: topic %q: %w", topicKey, err)
			}
			for i, rec := range records {
				if strings.TrimSpace(rec.Name) == "" {
					return nil, fmt.Errorf("catalog: %s/%s record %d: name is required", topicKey, levelKey, i)
				}
			}
			byLevel[level] = append([]domain.ReferralRecord(nil), records...)
		}
		c.entries[topic] = byLevel
	}
	return c, nil
}

// Lookup returns the referrals for a topic and level in priority order. An
// unknown combination yields an empty slice. The result is a copy.
func (c *Catalog) Lookup(topic domain.Topic, level domain.Level) []domain.ReferralRecord {
	records := c.entries[topic][level]
	out := make([]domain.ReferralRecord, len(records))
	copy(out, records)
	return out
}

// Topics returns the topics present in the catalog in canonical order.
func (c *Catalog) Topics() []domain.Topic {
	var out []domain.Topic
	for _, t := range domain.Topics {
		if _, ok := c.entries[t]; ok {
			out = append(out, t)
		}
	}
	return out
}

// IncomeGated reports whether a provider name matches one of the providers
// that only serve income-eligible clients.
func (c *Catalog) IncomeGated(name string) bool {
	name = strings.ToLower(name)
	for _, fragment := range c.incomeGated {
		if strings.Contains(name, fragment) {
			return true
		}
	}
	return false
}

// IsFlaggedProvider reports whether name belongs to the flagged nonprofit.
func (c *Catalog) IsFlaggedProvider(name string) bool {
	if c.flaggedProvider == "" {
		return false
	}
	return strings.Contains(strings.ToLower(name), c.flaggedProvider)
}
