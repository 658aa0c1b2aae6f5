package tuning

import (
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

// paramsSchema is the closed contract for params.yaml. Unknown keys are
// rejected so a typo'd tunable fails at startup instead of silently falling
// back to its default.
const paramsSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "additionalProperties": false,
  "properties": {
    "tick_rate_hz":                    {"type": "integer", "minimum": 1},
    "slow_tick_period":                {"type": "integer", "minimum": 1},
    "ticks_per_hour":                  {"type": "integer", "minimum": 1},
    "starting_treasury":               {"type": "number", "minimum": 0},
    "residential_demand_sensitivity":  {"type": "number", "minimum": 0},
    "commercial_demand_sensitivity":   {"type": "number", "minimum": 0},
    "industrial_demand_sensitivity":   {"type": "number", "minimum": 0},
    "office_demand_sensitivity":       {"type": "number", "minimum": 0},
    "tax_residential":                 {"type": "number", "minimum": 0, "maximum": 1},
    "tax_commercial":                  {"type": "number", "minimum": 0, "maximum": 1},
    "tax_industrial":                  {"type": "number", "minimum": 0, "maximum": 1},
    "tax_office":                      {"type": "number", "minimum": 0, "maximum": 1},
    "need_decay_hunger":               {"type": "number", "minimum": 0},
    "need_decay_energy":               {"type": "number", "minimum": 0},
    "need_decay_social":               {"type": "number", "minimum": 0},
    "need_decay_fun":                  {"type": "number", "minimum": 0},
    "need_decay_comfort":              {"type": "number", "minimum": 0},
    "need_regen_rate":                 {"type": "number", "minimum": 0},
    "need_critical_threshold":         {"type": "number", "minimum": 0, "maximum": 100},
    "path_requests_per_tick":          {"type": "integer", "minimum": 1},
    "destination_search_radius":       {"type": "integer", "minimum": 1},
    "construction_ticks":              {"type": "integer", "minimum": 1},
    "growth_attractiveness_floor":     {"type": "number", "minimum": 0, "maximum": 100},
    "max_real_citizens_floor":         {"type": "integer", "minimum": 1},
    "max_real_citizens_ceil":          {"type": "integer", "minimum": 1},
    "power_plant_range":               {"type": "integer", "minimum": 1},
    "water_tower_range":               {"type": "integer", "minimum": 1},
    "grid_smoothing_alpha":            {"type": "number", "minimum": 0, "maximum": 1},
    "transit_fare":                    {"type": "number", "minimum": 0},
    "autosave_every_ticks":            {"type": "integer", "minimum": 1}
  }
}`

var compiledSchema = jsonschema.MustCompileString("params.schema.json", paramsSchema)

// validateParams checks raw YAML against the schema. The document is bridged
// through JSON so the validator sees the value types it expects.
func validateParams(raw []byte) error {
	var doc any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return err
	}
	if doc == nil {
		return nil
	}
	bridged, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("params: %w", err)
	}
	if err := json.Unmarshal(bridged, &doc); err != nil {
		return fmt.Errorf("params: %w", err)
	}
	return compiledSchema.Validate(doc)
}
