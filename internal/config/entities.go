package config

import (
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Severity of an alarm.
type Severity string

const (
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// AlarmKind says how an alarm entity signals an active condition.
type AlarmKind string

const (
	// AlarmBinary alarms are active while the entity state is "on".
	AlarmBinary AlarmKind = "binary"
	// AlarmText alarms are active while the entity state is a non-empty
	// string; the string itself describes the condition.
	AlarmText AlarmKind = "text"
)

// AlarmConfig is one explicitly configured alarm.
type AlarmConfig struct {
	Entity   string    `yaml:"entity" json:"entity"`
	Label    string    `yaml:"label" json:"label"`
	Severity Severity  `yaml:"severity" json:"severity"`
	Kind     AlarmKind `yaml:"type,omitempty" json:"type"`
}

// IsText reports whether the alarm uses the text convention. An empty kind
// means binary.
func (a AlarmConfig) IsText() bool {
	return a.Kind == AlarmText
}

func (a AlarmConfig) validate() error {
	if a.Entity == "" {
		return errors.New("entity is required")
	}
	switch a.Severity {
	case SeverityWarning, SeverityCritical:
	default:
		return fmt.Errorf("severity %q is not supported", a.Severity)
	}
	switch a.Kind {
	case "", AlarmBinary, AlarmText:
	default:
		return fmt.Errorf("type %q is not supported", a.Kind)
	}
	return nil
}

// CellSourceKind tags the variant held by a CellSource.
type CellSourceKind int

const (
	CellSourceList CellSourceKind = iota + 1
	CellSourcePattern
)

// CellSource is either an explicit ordered list of entity ids (index 0 is
// cell 1) or a pattern with {prefix} and {n} placeholders.
type CellSource struct {
	Kind    CellSourceKind
	List    []string
	Pattern string
}

// CellList builds a list variant.
func CellList(ids ...string) *CellSource {
	return &CellSource{Kind: CellSourceList, List: ids}
}

// CellPattern builds a pattern variant.
func CellPattern(pattern string) *CellSource {
	return &CellSource{Kind: CellSourcePattern, Pattern: pattern}
}

// UnmarshalYAML accepts a sequence (explicit list), a {pattern: ...} mapping
// or a bare pattern string.
func (c *CellSource) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.SequenceNode:
		var ids []string
		if err := value.Decode(&ids); err != nil {
			return fmt.Errorf("decode cell list: %w", err)
		}
		*c = CellSource{Kind: CellSourceList, List: ids}
	case yaml.MappingNode:
		var raw struct {
			Pattern string `yaml:"pattern"`
		}
		if err := value.Decode(&raw); err != nil {
			return fmt.Errorf("decode cell pattern: %w", err)
		}
		*c = CellSource{Kind: CellSourcePattern, Pattern: raw.Pattern}
	case yaml.ScalarNode:
		var pattern string
		if err := value.Decode(&pattern); err != nil {
			return fmt.Errorf("decode cell pattern: %w", err)
		}
		*c = CellSource{Kind: CellSourcePattern, Pattern: pattern}
	default:
		return fmt.Errorf("line %d: expected a list or a pattern", value.Line)
	}
	return nil
}

// MarshalYAML writes the variant back in the shape the editor produces.
func (c CellSource) MarshalYAML() (interface{}, error) {
	if c.Kind == CellSourceList {
		return c.List, nil
	}
	return map[string]string{"pattern": c.Pattern}, nil
}

// EntityConfig holds explicit entity overrides. Explicit entries always win
// over template-derived ids for the same key.
type EntityConfig struct {
	// Overrides maps standard keys to entity ids.
	Overrides map[Key]string
	// CellVoltages is nil when no explicit cell voltage source is configured.
	CellVoltages *CellSource
	// CellBalancing holds a {prefix}/{n} pattern; empty when unset.
	CellBalancing string
	TempCells     []string
	Alarms        []AlarmConfig
	// AlarmOverrides replaces the template-derived entity of a default alarm.
	AlarmOverrides map[Key]string

	// Ignored lists document keys that are not part of the schema.
	Ignored []string
}

// Override returns the explicit entity id configured for key.
func (e *EntityConfig) Override(key Key) (string, bool) {
	id, ok := e.Overrides[key]
	return id, ok && id != ""
}

// UnmarshalYAML decodes the entities mapping, keeping only recognized keys.
func (e *EntityConfig) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: entities must be a mapping", value.Line)
	}

	for i := 0; i+1 < len(value.Content); i += 2 {
		name := value.Content[i].Value
		node := value.Content[i+1]
		if node.Tag == "!!null" {
			continue
		}

		switch name {
		case "cell_voltages":
			var src CellSource
			if err := node.Decode(&src); err != nil {
				return fmt.Errorf("entities.cell_voltages: %w", err)
			}
			e.CellVoltages = &src
		case "cell_balancing":
			pattern, err := decodePattern(node)
			if err != nil {
				return fmt.Errorf("entities.cell_balancing: %w", err)
			}
			e.CellBalancing = pattern
		case "temp_cells":
			if err := node.Decode(&e.TempCells); err != nil {
				return fmt.Errorf("entities.temp_cells: %w", err)
			}
		case "alarms":
			if err := node.Decode(&e.Alarms); err != nil {
				return fmt.Errorf("entities.alarms: %w", err)
			}
		case "alarm_overrides":
			if node.Kind != yaml.MappingNode {
				return fmt.Errorf("entities.alarm_overrides: line %d: expected a mapping", node.Line)
			}
			for j := 0; j+1 < len(node.Content); j += 2 {
				k := node.Content[j].Value
				if !isAlarmKey(Key(k)) {
					e.Ignored = append(e.Ignored, "alarm_overrides."+k)
					continue
				}
				var id string
				if err := node.Content[j+1].Decode(&id); err != nil {
					return fmt.Errorf("entities.alarm_overrides.%s: %w", k, err)
				}
				if e.AlarmOverrides == nil {
					e.AlarmOverrides = make(map[Key]string)
				}
				e.AlarmOverrides[Key(k)] = id
			}
		default:
			if !isStandardKey(Key(name)) {
				e.Ignored = append(e.Ignored, name)
				continue
			}
			var id string
			if err := node.Decode(&id); err != nil {
				return fmt.Errorf("entities.%s: %w", name, err)
			}
			if e.Overrides == nil {
				e.Overrides = make(map[Key]string)
			}
			e.Overrides[Key(name)] = id
		}
	}
	return nil
}

func decodePattern(node *yaml.Node) (string, error) {
	switch node.Kind {
	case yaml.MappingNode:
		var raw struct {
			Pattern string `yaml:"pattern"`
		}
		if err := node.Decode(&raw); err != nil {
			return "", err
		}
		return raw.Pattern, nil
	case yaml.ScalarNode:
		var pattern string
		if err := node.Decode(&pattern); err != nil {
			return "", err
		}
		return pattern, nil
	default:
		return "", fmt.Errorf("line %d: expected a pattern", node.Line)
	}
}
