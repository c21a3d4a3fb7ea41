package semantic

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// measurementParams is the YAML shape of the parameter block attached to
// measurement contexts.
type measurementParams struct {
	AssayID        string `yaml:"assay_id"`
	UnitOntologyID string `yaml:"unit_ontology_id"`
}

// UnmarshalYAML decodes a context from its declarative spelling: a bare kind
// string for parameter-free contexts, or a single-key mapping for
// parameterized ones, e.g.
//
//	data_context: subject_id
//	data_context:
//	  quantitative_measurement:
//	    assay_id: "LOINC:2157-6"
//	    unit_ontology_id: "UO:0000182"
func (c *Context) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		var s string
		if err := value.Decode(&s); err != nil {
			return err
		}
		kind, err := ParseKind(s)
		if err != nil {
			return err
		}
		switch kind {
		case KindQuantitativeMeasurement, KindQualitativeMeasurement:
			return fmt.Errorf("context %q requires parameters", s)
		}
		*c = Context{Kind: kind}
		return nil

	case yaml.MappingNode:
		if len(value.Content) != 2 {
			return fmt.Errorf("parameterized context must have exactly one key")
		}
		var key string
		if err := value.Content[0].Decode(&key); err != nil {
			return err
		}
		var params measurementParams
		if err := value.Content[1].Decode(&params); err != nil {
			return err
		}
		switch Kind(key) {
		case KindQuantitativeMeasurement:
			if params.AssayID == "" || params.UnitOntologyID == "" {
				return fmt.Errorf("quantitative_measurement requires assay_id and unit_ontology_id")
			}
			*c = NewQuantitativeMeasurement(params.AssayID, params.UnitOntologyID)
			return nil
		case KindQualitativeMeasurement:
			if params.AssayID == "" {
				return fmt.Errorf("qualitative_measurement requires assay_id")
			}
			*c = NewQualitativeMeasurement(params.AssayID)
			return nil
		default:
			return fmt.Errorf("context %q does not take parameters", key)
		}

	default:
		return fmt.Errorf("invalid context node")
	}
}

// MarshalYAML emits the spelling accepted by UnmarshalYAML.
func (c Context) MarshalYAML() (any, error) {
	switch c.EraseKind() {
	case KindQuantitativeMeasurement:
		return map[string]measurementParams{
			string(KindQuantitativeMeasurement): {AssayID: c.AssayID, UnitOntologyID: c.UnitOntologyID},
		}, nil
	case KindQualitativeMeasurement:
		return map[string]measurementParams{
			string(KindQualitativeMeasurement): {AssayID: c.AssayID},
		}, nil
	default:
		return string(c.EraseKind()), nil
	}
}
