package evaluate

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed tables.yaml
var defaultTablesYAML []byte

// Category is a sensitive topic checked for hedged or multi-source answers.
type Category struct {
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
}

// Tables holds the auditor's phrase and allow lists. They are loaded from
// YAML so they can be tuned without a rebuild.
type Tables struct {
	RefusalPhrases          []string   `yaml:"refusal_phrases"`
	PartialAnswerIndicators []string   `yaml:"partial_answer_indicators"`
	HedgingPhrases          []string   `yaml:"hedging_phrases"`
	AllowList               []string   `yaml:"allow_list"`
	Categories              []Category `yaml:"categories"`
}

// DefaultTables returns the embedded tables.
func DefaultTables() Tables {
	var t Tables
	// The embedded file is part of the build; a parse failure here is a
	// programming error.
	if err := yaml.Unmarshal(defaultTablesYAML, &t); err != nil {
		panic(fmt.Sprintf("evaluate: bad embedded tables: %v", err))
	}
	return t
}

// LoadTables reads a table file from disk, falling back to the embedded
// defaults when path is empty.
func LoadTables(path string) (Tables, error) {
	if path == "" {
		return DefaultTables(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Tables{}, fmt.Errorf("read tables: %w", err)
	}
	var t Tables
	if err := yaml.Unmarshal(data, &t); err != nil {
		return Tables{}, fmt.Errorf("parse tables: %w", err)
	}
	return t, nil
}
