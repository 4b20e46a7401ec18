package server

import (
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"testing"

	"github.com/ironsheep/attention-mcp/internal/attention"
)

// createTestImageFile creates a test image file and returns its path
func createTestImageFile(t *testing.T, width, height int, c color.Color) string {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}
	return writeTestPNG(t, img)
}

// createSpotImageFile creates a black image with a white square at (sx, sy)
func createSpotImageFile(t *testing.T, width, height, sx, sy, size int) string {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			c := color.RGBA{0, 0, 0, 255}
			if x >= sx && x < sx+size && y >= sy && y < sy+size {
				c = color.RGBA{255, 255, 255, 255}
			}
			img.Set(x, y, c)
		}
	}
	return writeTestPNG(t, img)
}

func writeTestPNG(t *testing.T, img image.Image) string {
	t.Helper()

	tmpFile, err := os.CreateTemp(t.TempDir(), "handler-test-*.png")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	defer tmpFile.Close()

	if err := png.Encode(tmpFile, img); err != nil {
		t.Fatalf("failed to encode image: %v", err)
	}
	return tmpFile.Name()
}

// callTool sends a tools/call request through handleRequest
func callTool(t *testing.T, s *Server, name string, args interface{}) *MCPResponse {
	t.Helper()

	params := map[string]interface{}{
		"name":      name,
		"arguments": args,
	}
	paramsJSON, err := json.Marshal(params)
	if err != nil {
		t.Fatalf("failed to marshal params: %v", err)
	}

	resp := s.handleRequest(&MCPRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "tools/call",
		Params:  paramsJSON,
	})
	if resp == nil {
		t.Fatal("handleRequest returned nil")
	}
	return resp
}

// decodeText unmarshals the text content of a successful tool response into v
func decodeText(t *testing.T, resp *MCPResponse, v interface{}) {
	t.Helper()

	if resp.Error != nil {
		t.Fatalf("Unexpected error: %+v", resp.Error)
	}
	result, ok := resp.Result.(map[string]interface{})
	if !ok {
		t.Fatal("Result should be a map")
	}
	content, ok := result["content"].([]map[string]interface{})
	if !ok || len(content) != 1 {
		t.Fatalf("unexpected content: %#v", result["content"])
	}
	text, _ := content[0]["text"].(string)
	if err := json.Unmarshal([]byte(text), v); err != nil {
		t.Fatalf("failed to decode tool result: %v\n%s", err, text)
	}
}

// errorKindOf returns the kind recorded in a tool error response
func errorKindOf(t *testing.T, resp *MCPResponse) string {
	t.Helper()

	if resp.Error == nil {
		t.Fatal("Expected error response")
	}
	if resp.Error.Code != -32000 {
		t.Errorf("Error code: got %d, want -32000", resp.Error.Code)
	}
	data, ok := resp.Error.Data.(map[string]interface{})
	if !ok {
		t.Fatalf("Error data should be a map, got %T", resp.Error.Data)
	}
	kind, _ := data["kind"].(string)
	return kind
}

func TestHandleToolsCall_ImageLoad(t *testing.T) {
	s := New(DefaultConfig(), nil)
	imgPath := createTestImageFile(t, 100, 80, color.RGBA{255, 0, 0, 255})

	var info struct {
		Width  int    `json:"width"`
		Height int    `json:"height"`
		Format string `json:"format"`
	}
	decodeText(t, callTool(t, s, "image_load", map[string]interface{}{"path": imgPath}), &info)

	if info.Width != 100 || info.Height != 80 {
		t.Errorf("dimensions: got %dx%d, want 100x80", info.Width, info.Height)
	}
	if info.Format != "png" {
		t.Errorf("Format: got %s, want png", info.Format)
	}
}

func TestHandleToolsCall_NonExistentFile(t *testing.T) {
	s := New(DefaultConfig(), nil)

	resp := callTool(t, s, "attention_compute", map[string]interface{}{
		"path":    "/nonexistent/image.png",
		"feature": "contrast",
	})
	if kind := errorKindOf(t, resp); kind != kindToolError {
		t.Errorf("kind: got %s, want %s", kind, kindToolError)
	}
}

func TestHandleToolsCall_InvalidTool(t *testing.T) {
	s := New(DefaultConfig(), nil)

	resp := callTool(t, s, "nonexistent_tool", map[string]interface{}{})
	if kind := errorKindOf(t, resp); kind != kindToolError {
		t.Errorf("kind: got %s, want %s", kind, kindToolError)
	}
}

func TestHandleToolsCall_InvalidParams(t *testing.T) {
	s := New(DefaultConfig(), nil)

	resp := s.handleRequest(&MCPRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "tools/call",
		Params:  json.RawMessage(`{invalid json}`),
	})

	if resp.Error == nil {
		t.Fatal("Expected error for invalid params")
	}
	if resp.Error.Code != -32602 {
		t.Errorf("Error code: got %d, want -32602", resp.Error.Code)
	}
}

func TestHandleToolsCall_AttentionFeatures(t *testing.T) {
	s := New(DefaultConfig(), nil)

	var out struct {
		Features []FeatureInfo `json:"features"`
	}
	decodeText(t, callTool(t, s, "attention_features", map[string]interface{}{}), &out)

	if len(out.Features) != 4 {
		t.Fatalf("features: got %d, want 4", len(out.Features))
	}
	for _, f := range out.Features {
		if f.Description == "" {
			t.Errorf("feature %s has no description", f.Name)
		}
	}
}

func TestHandleToolsCall_AttentionCompute_CenterBias(t *testing.T) {
	s := New(DefaultConfig(), nil)
	imgPath := createTestImageFile(t, 21, 11, color.RGBA{10, 200, 30, 255})

	var res AttentionResult
	decodeText(t, callTool(t, s, "attention_compute", map[string]interface{}{
		"path":           imgPath,
		"feature":        "center_bias",
		"include_values": true,
	}), &res)

	if res.Summary.Width != 21 || res.Summary.Height != 11 {
		t.Errorf("map size: got %dx%d, want 21x11", res.Summary.Width, res.Summary.Height)
	}
	if res.Summary.PeakX != 10 || res.Summary.PeakY != 5 {
		t.Errorf("peak: got (%d,%d), want (10,5)", res.Summary.PeakX, res.Summary.PeakY)
	}
	if res.SourcePeakX != 10 || res.SourcePeakY != 5 {
		t.Errorf("source peak: got (%d,%d), want (10,5)", res.SourcePeakX, res.SourcePeakY)
	}
	if res.Summary.Max != 1 || res.Summary.Min != 0 {
		t.Errorf("range: got [%v,%v], want [0,1]", res.Summary.Min, res.Summary.Max)
	}
	if len(res.Values) != 11 || len(res.Values[0]) != 21 {
		t.Fatalf("values: got %d rows, want 11x21", len(res.Values))
	}
	if res.Values[5][10] != 1 {
		t.Errorf("center value: got %v, want 1", res.Values[5][10])
	}
	if res.ColorSpace != "rgb" {
		t.Errorf("ColorSpace: got %s, want rgb", res.ColorSpace)
	}
}

func TestHandleToolsCall_AttentionCompute_UniformContrast(t *testing.T) {
	s := New(DefaultConfig(), nil)
	imgPath := createTestImageFile(t, 30, 20, color.RGBA{128, 128, 128, 255})

	for _, cs := range []string{"gray", "rgb", "lab"} {
		t.Run(cs, func(t *testing.T) {
			var res AttentionResult
			decodeText(t, callTool(t, s, "attention_compute", map[string]interface{}{
				"path":        imgPath,
				"feature":     "contrast",
				"color_space": cs,
			}), &res)

			if res.Summary.Max != 0 {
				t.Errorf("uniform image contrast max: got %v, want 0", res.Summary.Max)
			}
			if res.Values != nil {
				t.Error("values should be omitted unless requested")
			}
		})
	}
}

func TestHandleToolsCall_AttentionCompute_SpotIsSalient(t *testing.T) {
	s := New(DefaultConfig(), nil)
	imgPath := createSpotImageFile(t, 40, 40, 30, 8, 3)

	for _, feature := range []string{"contrast", "center_surround"} {
		t.Run(feature, func(t *testing.T) {
			var res AttentionResult
			decodeText(t, callTool(t, s, "attention_compute", map[string]interface{}{
				"path":    imgPath,
				"feature": feature,
			}), &res)

			if res.SourcePeakX < 29 || res.SourcePeakX > 33 || res.SourcePeakY < 7 || res.SourcePeakY > 11 {
				t.Errorf("peak at (%d,%d), want near the spot at (31,9)", res.SourcePeakX, res.SourcePeakY)
			}
		})
	}
}

func TestHandleToolsCall_AttentionCompute_Downscaled(t *testing.T) {
	s := New(Config{MaxDimension: 50}, nil)
	imgPath := createTestImageFile(t, 200, 100, color.RGBA{0, 0, 255, 255})

	var res AttentionResult
	decodeText(t, callTool(t, s, "attention_compute", map[string]interface{}{
		"path":    imgPath,
		"feature": "center_bias",
	}), &res)

	if res.Summary.Width != 50 || res.Summary.Height != 25 {
		t.Fatalf("map size: got %dx%d, want 50x25", res.Summary.Width, res.Summary.Height)
	}
	// center (24.5, 12): first maximum is column 24
	if res.Summary.PeakX != 24 || res.Summary.PeakY != 12 {
		t.Errorf("peak: got (%d,%d), want (24,12)", res.Summary.PeakX, res.Summary.PeakY)
	}
	if res.SourcePeakX != 98 || res.SourcePeakY != 50 {
		t.Errorf("source peak: got (%d,%d), want (98,50)", res.SourcePeakX, res.SourcePeakY)
	}

	// per-call override disables downscaling
	decodeText(t, callTool(t, s, "attention_compute", map[string]interface{}{
		"path":          imgPath,
		"feature":       "center_bias",
		"max_dimension": 0,
	}), &res)
	if res.Summary.Width != 200 || res.Summary.Height != 100 {
		t.Errorf("map size: got %dx%d, want 200x100", res.Summary.Width, res.Summary.Height)
	}
}

func TestHandleToolsCall_AttentionCompute_Region(t *testing.T) {
	s := New(DefaultConfig(), nil)
	imgPath := createTestImageFile(t, 100, 100, color.RGBA{50, 50, 50, 255})

	var res AttentionResult
	decodeText(t, callTool(t, s, "attention_compute", map[string]interface{}{
		"path":    imgPath,
		"feature": "center_bias",
		"region":  map[string]int{"x1": 20, "y1": 30, "x2": 41, "y2": 51},
	}), &res)

	if res.Summary.Width != 21 || res.Summary.Height != 21 {
		t.Fatalf("map size: got %dx%d, want 21x21", res.Summary.Width, res.Summary.Height)
	}
	if res.SourcePeakX != 30 || res.SourcePeakY != 40 {
		t.Errorf("source peak: got (%d,%d), want (30,40)", res.SourcePeakX, res.SourcePeakY)
	}
}

func TestHandleToolsCall_AttentionCompute_Errors(t *testing.T) {
	s := New(DefaultConfig(), nil)
	imgPath := createTestImageFile(t, 20, 20, color.RGBA{1, 2, 3, 255})

	tests := []struct {
		name     string
		args     map[string]interface{}
		wantKind string
	}{
		{
			"unknown feature",
			map[string]interface{}{"path": imgPath, "feature": "saliency_net"},
			kindInvalidConfiguration,
		},
		{
			"sigma order",
			map[string]interface{}{"path": imgPath, "feature": "center_surround", "sigma_center": 3, "sigma_surround": 2},
			kindInvalidConfiguration,
		},
		{
			"negative sigma",
			map[string]interface{}{"path": imgPath, "feature": "center_surround", "sigma_center": -1},
			kindInvalidConfiguration,
		},
		{
			"sigma too large",
			map[string]interface{}{"path": imgPath, "feature": "center_surround", "sigma_center": 1, "sigma_surround": 1000},
			kindInvalidConfiguration,
		},
		{
			"unknown color space",
			map[string]interface{}{"path": imgPath, "feature": "contrast", "color_space": "cmyk"},
			kindInvalidInput,
		},
		{
			"negative max_dimension",
			map[string]interface{}{"path": imgPath, "feature": "contrast", "max_dimension": -5},
			kindInvalidInput,
		},
		{
			"region outside image",
			map[string]interface{}{"path": imgPath, "feature": "contrast", "region": map[string]int{"x1": 0, "y1": 0, "x2": 50, "y2": 5}},
			kindToolError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := callTool(t, s, "attention_compute", tt.args)
			if kind := errorKindOf(t, resp); kind != tt.wantKind {
				t.Errorf("kind: got %s, want %s", kind, tt.wantKind)
			}
		})
	}
}

func TestHandleToolsCall_AttentionFuse(t *testing.T) {
	s := New(DefaultConfig(), nil)
	imgPath := createSpotImageFile(t, 32, 24, 4, 4, 4)

	var res AttentionResult
	decodeText(t, callTool(t, s, "attention_fuse", map[string]interface{}{
		"path": imgPath,
		"features": []map[string]interface{}{
			{"name": "center_bias"},
			{"name": "contrast"},
		},
	}), &res)

	if len(res.Features) != 2 || res.Features[0] != "center_bias" || res.Features[1] != "contrast" {
		t.Errorf("features: got %v", res.Features)
	}
	if len(res.Weights) != 2 || res.Weights[0] != 0.5 || res.Weights[1] != 0.5 {
		t.Errorf("weights: got %v, want [0.5 0.5]", res.Weights)
	}
	if res.Summary.Min < 0 || res.Summary.Max > 1 {
		t.Errorf("range: got [%v,%v], want within [0,1]", res.Summary.Min, res.Summary.Max)
	}
}

func TestHandleToolsCall_AttentionFuse_PartialWeights(t *testing.T) {
	s := New(DefaultConfig(), nil)
	imgPath := createSpotImageFile(t, 16, 16, 2, 2, 2)

	var res AttentionResult
	decodeText(t, callTool(t, s, "attention_fuse", map[string]interface{}{
		"path": imgPath,
		"features": []map[string]interface{}{
			{"name": "contrast", "weight": 3},
			{"name": "edge_density"},
		},
	}), &res)

	if len(res.Weights) != 2 || res.Weights[0] != 0.75 || res.Weights[1] != 0.25 {
		t.Errorf("weights: got %v, want [0.75 0.25]", res.Weights)
	}
}

func TestHandleToolsCall_AttentionFuse_Errors(t *testing.T) {
	s := New(DefaultConfig(), nil)
	imgPath := createTestImageFile(t, 10, 10, color.RGBA{1, 2, 3, 255})

	tests := []struct {
		name     string
		features []map[string]interface{}
		wantKind string
	}{
		{"empty features", []map[string]interface{}{}, kindInvalidInput},
		{"zero weights", []map[string]interface{}{{"name": "contrast", "weight": 0}, {"name": "center_bias", "weight": 0}}, kindInvalidInput},
		{"negative weight", []map[string]interface{}{{"name": "contrast", "weight": -1}}, kindInvalidInput},
		{"unknown feature", []map[string]interface{}{{"name": "contrast"}, {"name": "nope"}}, kindInvalidConfiguration},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := callTool(t, s, "attention_fuse", map[string]interface{}{
				"path":     imgPath,
				"features": tt.features,
			})
			if kind := errorKindOf(t, resp); kind != tt.wantKind {
				t.Errorf("kind: got %s, want %s", kind, tt.wantKind)
			}
		})
	}
}

func TestHandleToolsCall_AttentionFuse_ConcurrentMatchesSequential(t *testing.T) {
	imgPath := createSpotImageFile(t, 24, 18, 5, 9, 3)
	args := map[string]interface{}{
		"path":           imgPath,
		"include_values": true,
		"features": []map[string]interface{}{
			{"name": "center_bias", "weight": 0.5},
			{"name": "contrast", "weight": 1},
			{"name": "edge_density", "weight": 2},
			{"name": "center_surround", "sigma_center": 0.8, "sigma_surround": 3},
		},
	}

	var seq, par AttentionResult
	decodeText(t, callTool(t, New(DefaultConfig(), nil), "attention_fuse", args), &seq)
	decodeText(t, callTool(t, New(Config{MaxDimension: DefaultMaxDimension, Concurrent: true}, nil), "attention_fuse", args), &par)

	if len(seq.Values) != len(par.Values) {
		t.Fatalf("row count differs: %d vs %d", len(seq.Values), len(par.Values))
	}
	for y := range seq.Values {
		for x := range seq.Values[y] {
			if seq.Values[y][x] != par.Values[y][x] {
				t.Fatalf("value (%d,%d) differs: %v vs %v", y, x, seq.Values[y][x], par.Values[y][x])
			}
		}
	}
}

func TestErrorKind(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{fmt.Errorf("wrap: %w", attention.ErrInvalidInput), kindInvalidInput},
		{fmt.Errorf("wrap: %w", attention.ErrInvalidConfiguration), kindInvalidConfiguration},
		{fmt.Errorf("outer: %w", fmt.Errorf("inner: %w", attention.ErrContractViolation)), kindContractViolation},
		{fmt.Errorf("failed to open image: %w", os.ErrNotExist), kindToolError},
	}

	for _, tt := range tests {
		if got := errorKind(tt.err); got != tt.want {
			t.Errorf("errorKind(%v): got %s, want %s", tt.err, got, tt.want)
		}
	}
}

func TestExecuteTool_InvalidJSON(t *testing.T) {
	s := New(DefaultConfig(), nil)

	for _, name := range []string{"image_load", "attention_compute", "attention_fuse"} {
		if _, err := s.executeTool(name, json.RawMessage(`{invalid}`)); err == nil {
			t.Errorf("%s should fail on invalid JSON", name)
		}
	}
}
