package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// AgentDefinition is one entry of the agents file.
type AgentDefinition struct {
	ID       string         `yaml:"id"`
	Name     string         `yaml:"name"`
	Storage  string         `yaml:"storage"`
	Disabled bool           `yaml:"disabled"`
	Options  map[string]any `yaml:"options"`
}

type AgentsFile struct {
	Agents []AgentDefinition `yaml:"agents"`
}

func LoadAgents(path string) ([]AgentDefinition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read agents file: %w", err)
	}
	return ParseAgents(data)
}

func ParseAgents(data []byte) ([]AgentDefinition, error) {
	var f AgentsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse agents file: %w", err)
	}
	seen := make(map[string]bool, len(f.Agents))
	for i, a := range f.Agents {
		if a.ID == "" {
			return nil, fmt.Errorf("agent #%d: id is required", i+1)
		}
		if seen[a.ID] {
			return nil, fmt.Errorf("agent %s: duplicate id", a.ID)
		}
		seen[a.ID] = true
		if a.Name == "" {
			f.Agents[i].Name = a.ID
		}
	}
	return f.Agents, nil
}
