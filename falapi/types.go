// Package falapi provides a client for the FAL.ai queue API, specialized for
// the multi-angle image generation endpoint.
//
// types.go defines the request/response structures and the generation
// parameter set with its accepted ranges.
package falapi

import (
	"fmt"
)

// Default generation endpoint. The model rotates the camera around the
// subject of the source image.
const DefaultEndpoint = "fal-ai/qwen-image-edit-plus-lora-gallery/multiple-angles"

// Queue states reported by the service while a request is pending.
const (
	StatusInQueue    = "IN_QUEUE"
	StatusInProgress = "IN_PROGRESS"
	StatusCompleted  = "COMPLETED"
)

// Accepted ranges for generation parameters. Requests outside these ranges
// are rejected locally before any network traffic.
const (
	MinGuidanceScale = 0.0
	MaxGuidanceScale = 20.0

	MinInferenceSteps = 2
	MaxInferenceSteps = 50

	MinLoraScale = 0.0
	MaxLoraScale = 4.0

	MinMoveForward = 0.0
	MaxMoveForward = 10.0

	MinVerticalAngle = -1.0
	MaxVerticalAngle = 1.0
)

// outputFormats lists the image formats the endpoint can return.
var outputFormats = map[string]bool{
	"png":  true,
	"jpeg": true,
	"webp": true,
}

// Parameters holds the generation settings shared by every view in a run.
// The zero value is not valid; start from DefaultParameters.
type Parameters struct {
	// GuidanceScale is the CFG scale (0-20).
	GuidanceScale float64

	// NumInferenceSteps is the diffusion step count (2-50).
	NumInferenceSteps int

	// LoraScale controls camera-control LoRA strength (0-4).
	LoraScale float64

	// MoveForward is camera zoom toward the subject (0-10, 0 = none).
	MoveForward float64

	// VerticalAngle tilts the camera (-1 to 1, 0 = neutral).
	VerticalAngle float64

	// WideAngleLens enables the wide-angle lens effect.
	WideAngleLens bool

	// OutputFormat is the returned image format: png, jpeg, or webp.
	OutputFormat string

	// NegativePrompt is passed through to the model.
	NegativePrompt string

	// Acceleration selects the provider-side speed/quality trade-off.
	Acceleration string
}

// DefaultParameters returns the standard settings for turntable generation.
func DefaultParameters() Parameters {
	return Parameters{
		GuidanceScale:     1.0,
		NumInferenceSteps: 6,
		LoraScale:         1.0,
		MoveForward:       0,
		VerticalAngle:     0,
		WideAngleLens:     false,
		OutputFormat:      "png",
		NegativePrompt:    " ",
		Acceleration:      "regular",
	}
}

// Validate checks every parameter against the endpoint's accepted ranges.
// Returns the first violation found.
func (p Parameters) Validate() error {
	if p.GuidanceScale < MinGuidanceScale || p.GuidanceScale > MaxGuidanceScale {
		return fmt.Errorf("falapi: guidance_scale must be between %g and %g, got %g",
			MinGuidanceScale, MaxGuidanceScale, p.GuidanceScale)
	}
	if p.NumInferenceSteps < MinInferenceSteps || p.NumInferenceSteps > MaxInferenceSteps {
		return fmt.Errorf("falapi: num_inference_steps must be between %d and %d, got %d",
			MinInferenceSteps, MaxInferenceSteps, p.NumInferenceSteps)
	}
	if p.LoraScale < MinLoraScale || p.LoraScale > MaxLoraScale {
		return fmt.Errorf("falapi: lora_scale must be between %g and %g, got %g",
			MinLoraScale, MaxLoraScale, p.LoraScale)
	}
	if p.MoveForward < MinMoveForward || p.MoveForward > MaxMoveForward {
		return fmt.Errorf("falapi: move_forward must be between %g and %g, got %g",
			MinMoveForward, MaxMoveForward, p.MoveForward)
	}
	if p.VerticalAngle < MinVerticalAngle || p.VerticalAngle > MaxVerticalAngle {
		return fmt.Errorf("falapi: vertical_angle must be between %g and %g, got %g",
			MinVerticalAngle, MaxVerticalAngle, p.VerticalAngle)
	}
	if !outputFormats[p.OutputFormat] {
		return fmt.Errorf("falapi: output_format must be png, jpeg, or webp, got %q",
			p.OutputFormat)
	}
	return nil
}

// Request describes one view generation call.
type Request struct {
	// ImageRef is the source image as a public URL or base64 data URI.
	// Fixed across all views of a run.
	ImageRef string

	// RotateRightLeft is the camera rotation in degrees for this view.
	// Sent to the endpoint exactly as given.
	RotateRightLeft float64

	// Params are the generation settings.
	Params Parameters
}

// generateArguments is the JSON payload for the queue submit call.
type generateArguments struct {
	ImageURLs           []string `json:"image_urls"`
	GuidanceScale       float64  `json:"guidance_scale"`
	NumInferenceSteps   int      `json:"num_inference_steps"`
	Acceleration        string   `json:"acceleration"`
	NegativePrompt      string   `json:"negative_prompt"`
	EnableSafetyChecker bool     `json:"enable_safety_checker"`
	OutputFormat        string   `json:"output_format"`
	NumImages           int      `json:"num_images"`
	RotateRightLeft     float64  `json:"rotate_right_left"`
	MoveForward         float64  `json:"move_forward"`
	VerticalAngle       float64  `json:"vertical_angle"`
	WideAngleLens       bool     `json:"wide_angle_lens"`
	LoraScale           float64  `json:"lora_scale"`
}

// buildArguments maps a Request onto the wire payload. One image per call;
// the safety checker stays on.
func buildArguments(req Request) generateArguments {
	return generateArguments{
		ImageURLs:           []string{req.ImageRef},
		GuidanceScale:       req.Params.GuidanceScale,
		NumInferenceSteps:   req.Params.NumInferenceSteps,
		Acceleration:        req.Params.Acceleration,
		NegativePrompt:      req.Params.NegativePrompt,
		EnableSafetyChecker: true,
		OutputFormat:        req.Params.OutputFormat,
		NumImages:           1,
		RotateRightLeft:     req.RotateRightLeft,
		MoveForward:         req.Params.MoveForward,
		VerticalAngle:       req.Params.VerticalAngle,
		WideAngleLens:       req.Params.WideAngleLens,
		LoraScale:           req.Params.LoraScale,
	}
}

// GeneratedImage is one image in a generation result.
type GeneratedImage struct {
	URL         string `json:"url"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ContentType string `json:"content_type"`
}

// GenerationResult is the completed output of one generation call.
type GenerationResult struct {
	// Images holds the generated images; this endpoint returns exactly one
	// per call.
	Images []GeneratedImage `json:"images"`

	// Seed is the sampling seed the provider used, when reported.
	Seed *int64 `json:"seed"`

	// Attempts is how many attempts the call took, including the successful
	// one. Filled in by the client, not part of the wire response.
	Attempts int `json:"-"`
}

// queueSubmitResponse is returned by the queue submit call.
type queueSubmitResponse struct {
	RequestID   string `json:"request_id"`
	StatusURL   string `json:"status_url"`
	ResponseURL string `json:"response_url"`
}

// queueStatusResponse is returned while polling a queued request.
type queueStatusResponse struct {
	Status        string `json:"status"`
	QueuePosition int    `json:"queue_position"`
}
