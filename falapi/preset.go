// Package falapi preset files.
//
// preset.go loads generation parameter presets from YAML. A preset only
// overrides the keys it names; absent keys keep their current values, so a
// preset file can tune a single setting without restating the rest.
package falapi

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Preset is a partial parameter set loaded from a YAML file.
//
// Example preset file:
//
//	guidance_scale: 1.5
//	num_inference_steps: 10
//	wide_angle_lens: true
type Preset struct {
	GuidanceScale     *float64 `yaml:"guidance_scale"`
	NumInferenceSteps *int     `yaml:"num_inference_steps"`
	LoraScale         *float64 `yaml:"lora_scale"`
	MoveForward       *float64 `yaml:"move_forward"`
	VerticalAngle     *float64 `yaml:"vertical_angle"`
	WideAngleLens     *bool    `yaml:"wide_angle_lens"`
	OutputFormat      *string  `yaml:"output_format"`
	NegativePrompt    *string  `yaml:"negative_prompt"`
	Acceleration      *string  `yaml:"acceleration"`
}

// LoadPreset reads and parses a preset file.
// The returned preset is not range-checked; callers validate the final
// Parameters after applying it.
func LoadPreset(path string) (*Preset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("falapi: failed to read preset %s: %w", path, err)
	}

	var preset Preset
	if err := yaml.Unmarshal(data, &preset); err != nil {
		return nil, fmt.Errorf("falapi: failed to parse preset %s: %w", path, err)
	}
	return &preset, nil
}

// Apply overlays the preset's set keys onto params. Unset keys leave the
// corresponding parameter untouched.
func (p *Preset) Apply(params *Parameters) {
	if p == nil || params == nil {
		return
	}

	if p.GuidanceScale != nil {
		params.GuidanceScale = *p.GuidanceScale
	}
	if p.NumInferenceSteps != nil {
		params.NumInferenceSteps = *p.NumInferenceSteps
	}
	if p.LoraScale != nil {
		params.LoraScale = *p.LoraScale
	}
	if p.MoveForward != nil {
		params.MoveForward = *p.MoveForward
	}
	if p.VerticalAngle != nil {
		params.VerticalAngle = *p.VerticalAngle
	}
	if p.WideAngleLens != nil {
		params.WideAngleLens = *p.WideAngleLens
	}
	if p.OutputFormat != nil {
		params.OutputFormat = *p.OutputFormat
	}
	if p.NegativePrompt != nil {
		params.NegativePrompt = *p.NegativePrompt
	}
	if p.Acceleration != nil {
		params.Acceleration = *p.Acceleration
	}
}
