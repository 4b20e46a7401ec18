package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/ironsheep/attention-mcp/internal/attention"
	"github.com/ironsheep/attention-mcp/internal/fusion"
	"github.com/ironsheep/attention-mcp/internal/imaging"
)

// maxSigma bounds blur sigmas accepted from tool calls. Kernel length grows
// with 6*sigma.
const maxSigma = 64.0

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "image_load", "attention_compute").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000 and
// data {"kind": ..., "detail": ...}. Contract violations are logged at error
// level since they indicate a bug; caller errors are logged as warnings.
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	start := time.Now()
	result, err := s.executeTool(params.Name, params.Arguments)
	if err != nil {
		kind := errorKind(err)
		fields := map[string]interface{}{"tool": params.Name, "kind": kind}
		if kind == kindContractViolation {
			s.log.Error("server", err, fields)
		} else {
			fields["error"] = err.Error()
			s.log.Warning("server", "tool call rejected", fields)
		}
		return s.errorResponse(req.ID, -32000, "Tool execution failed", map[string]interface{}{
			"kind":   kind,
			"detail": err.Error(),
		})
	}

	s.log.Debug("server", "tool finished", map[string]interface{}{
		"tool":    params.Name,
		"elapsed": time.Since(start).String(),
	})

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// Error kinds reported in JSON-RPC error data.
const (
	kindInvalidInput         = "invalid_input"
	kindInvalidConfiguration = "invalid_configuration"
	kindContractViolation    = "contract_violation"
	kindToolError            = "tool_error"
)

func errorKind(err error) string {
	switch {
	case errors.Is(err, attention.ErrContractViolation):
		return kindContractViolation
	case errors.Is(err, attention.ErrInvalidConfiguration):
		return kindInvalidConfiguration
	case errors.Is(err, attention.ErrInvalidInput):
		return kindInvalidInput
	default:
		return kindToolError
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
//
// Each tool handler:
//  1. Unmarshals arguments from JSON
//  2. Applies default values for optional parameters
//  3. Loads and converts the image through the cache
//  4. Calls the attention or fusion package
//  5. Returns the result or error
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	switch name {
	case "image_load":
		return s.handleImageLoad(args)
	case "attention_features":
		return s.handleAttentionFeatures()
	case "attention_compute":
		return s.handleAttentionCompute(args)
	case "attention_fuse":
		return s.handleAttentionFuse(args)
	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message string, data interface{}) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// Panics are suppressed; on marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// === Image Information ===

type imageLoadArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleImageLoad(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return imaging.LoadImageInfo(s.cache, a.Path)
}

// === Attention ===

// FeatureInfo describes one built-in feature for attention_features.
type FeatureInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (s *Server) handleAttentionFeatures() (interface{}, error) {
	names := attention.FeatureNames()
	out := make([]FeatureInfo, len(names))
	for i, n := range names {
		out[i] = FeatureInfo{Name: n, Description: FeatureDescriptions[n]}
	}
	return map[string]interface{}{"features": out}, nil
}

// imageArgs are the arguments shared by attention_compute and attention_fuse.
type imageArgs struct {
	Path          string          `json:"path"`
	ColorSpace    string          `json:"color_space"`
	MaxDimension  *int            `json:"max_dimension"`
	Region        *imaging.Region `json:"region"`
	IncludeValues bool            `json:"include_values"`
}

type featureArgs struct {
	Name          string   `json:"name"`
	Weight        *float64 `json:"weight"`
	SigmaCenter   float64  `json:"sigma_center"`
	SigmaSurround float64  `json:"sigma_surround"`
}

type attentionComputeArgs struct {
	imageArgs
	Feature       string  `json:"feature"`
	SigmaCenter   float64 `json:"sigma_center"`
	SigmaSurround float64 `json:"sigma_surround"`
}

type attentionFuseArgs struct {
	imageArgs
	Features []featureArgs `json:"features"`
}

// AttentionResult is returned by attention_compute and attention_fuse.
type AttentionResult struct {
	Features   []string  `json:"features"`
	Weights    []float64 `json:"weights,omitempty"`
	ColorSpace string    `json:"color_space"`

	// Summary describes the map in map coordinates.
	Summary attention.Summary `json:"summary"`

	// SourcePeakX and SourcePeakY locate the peak in the original image,
	// undoing the region offset and any downscale.
	SourcePeakX int `json:"source_peak_x"`
	SourcePeakY int `json:"source_peak_y"`

	// Values holds the map row by row when include_values is set.
	Values [][]float64 `json:"values,omitempty"`
}

func (s *Server) handleAttentionCompute(args json.RawMessage) (interface{}, error) {
	var a attentionComputeArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}

	f, err := buildFeature(featureArgs{Name: a.Feature, SigmaCenter: a.SigmaCenter, SigmaSurround: a.SigmaSurround})
	if err != nil {
		return nil, err
	}

	img, opts, err := s.loadForAttention(a.imageArgs)
	if err != nil {
		return nil, err
	}

	m, err := f.Compute(img)
	if err != nil {
		return nil, fmt.Errorf("failed to compute %s: %w", f.Name(), err)
	}

	return s.buildResult(a.imageArgs, opts, m, []string{f.Name()}, nil)
}

func (s *Server) handleAttentionFuse(args json.RawMessage) (interface{}, error) {
	var a attentionFuseArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if len(a.Features) == 0 {
		return nil, fmt.Errorf("%w: features must be a non-empty list", attention.ErrInvalidInput)
	}

	features := make([]attention.Feature, len(a.Features))
	names := make([]string, len(a.Features))
	var weights []float64
	for i, fa := range a.Features {
		f, err := buildFeature(fa)
		if err != nil {
			return nil, fmt.Errorf("feature %d: %w", i, err)
		}
		features[i] = f
		names[i] = f.Name()
		if fa.Weight != nil && weights == nil {
			weights = make([]float64, len(a.Features))
			for j := range weights {
				weights[j] = 1
			}
		}
	}
	if weights != nil {
		for i, fa := range a.Features {
			if fa.Weight != nil {
				weights[i] = *fa.Weight
			}
		}
	}

	normalized, err := fusion.NormalizeWeights(len(features), weights)
	if err != nil {
		return nil, err
	}

	img, opts, err := s.loadForAttention(a.imageArgs)
	if err != nil {
		return nil, err
	}

	var m *attention.Map
	if s.cfg.Concurrent {
		m, err = fusion.FuseConcurrent(context.Background(), features, img, weights)
	} else {
		m, err = fusion.Fuse(features, img, weights)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fuse features: %w", err)
	}

	return s.buildResult(a.imageArgs, opts, m, names, normalized)
}

// buildFeature constructs a feature from tool arguments, bounding sigmas.
func buildFeature(fa featureArgs) (attention.Feature, error) {
	for _, sigma := range []float64{fa.SigmaCenter, fa.SigmaSurround} {
		if sigma > maxSigma {
			return nil, fmt.Errorf("%w: sigma %v exceeds the maximum of %v", attention.ErrInvalidConfiguration, sigma, maxSigma)
		}
	}
	return attention.NewFeature(fa.Name, attention.Options{
		SigmaCenter:   fa.SigmaCenter,
		SigmaSurround: fa.SigmaSurround,
	})
}

// loadForAttention resolves conversion options from a and the server config
// and returns the cached attention image.
func (s *Server) loadForAttention(a imageArgs) (*attention.Image, imaging.Options, error) {
	cs, err := imaging.ParseColorSpace(a.ColorSpace)
	if err != nil {
		return nil, imaging.Options{}, fmt.Errorf("%w: %v", attention.ErrInvalidInput, err)
	}

	opts := imaging.Options{ColorSpace: cs, MaxDimension: s.cfg.MaxDimension}
	if a.MaxDimension != nil {
		if *a.MaxDimension < 0 {
			return nil, imaging.Options{}, fmt.Errorf("%w: max_dimension must be >= 0", attention.ErrInvalidInput)
		}
		opts.MaxDimension = *a.MaxDimension
	}
	if a.Region != nil {
		opts.Region = *a.Region
	}

	img, err := s.cache.LoadAttentionImage(a.Path, opts)
	if err != nil {
		return nil, imaging.Options{}, err
	}
	return img, opts, nil
}

// buildResult summarizes m and maps its peak back to source coordinates.
func (s *Server) buildResult(a imageArgs, opts imaging.Options, m *attention.Map, names []string, weights []float64) (*AttentionResult, error) {
	src, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}

	res := &AttentionResult{
		Features:   names,
		Weights:    weights,
		ColorSpace: string(opts.ColorSpace),
		Summary:    attention.Summarize(m),
	}

	area := src.Bounds()
	if opts.Region != (imaging.Region{}) {
		area = opts.Region.Rect()
	}
	offX, offY := area.Min.X, area.Min.Y
	srcW, srcH := area.Dx(), area.Dy()
	if m.Width > 0 && m.Height > 0 {
		scaleX := float64(srcW) / float64(m.Width)
		scaleY := float64(srcH) / float64(m.Height)
		res.SourcePeakX = offX + int(math.Floor((float64(res.Summary.PeakX)+0.5)*scaleX))
		res.SourcePeakY = offY + int(math.Floor((float64(res.Summary.PeakY)+0.5)*scaleY))
	}

	if a.IncludeValues {
		res.Values = make([][]float64, m.Height)
		for y := range res.Values {
			res.Values[y] = append([]float64(nil), m.Data[y*m.Width:(y+1)*m.Width]...)
		}
	}
	return res, nil
}
