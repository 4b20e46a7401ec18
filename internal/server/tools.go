package server

import "github.com/ironsheep/attention-mcp/internal/attention"

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// imageInputProperties are the properties shared by every tool that reads an
// image and converts it for attention features.
func imageInputProperties() map[string]interface{} {
	return map[string]interface{}{
		"path": map[string]interface{}{
			"type":        "string",
			"description": "Absolute path to the image file",
		},
		"color_space": map[string]interface{}{
			"type":        "string",
			"enum":        []string{"rgb", "gray", "lab"},
			"description": "Channel layout passed to features. Default rgb",
			"default":     "rgb",
		},
		"max_dimension": map[string]interface{}{
			"type":        "integer",
			"description": "Downscale so the longest side is at most this many pixels (0 disables). Defaults to the server setting",
		},
		"region": map[string]interface{}{
			"type":        "object",
			"description": "Optional region to analyze; (x1,y1) inclusive, (x2,y2) exclusive",
			"properties": map[string]interface{}{
				"x1": map[string]interface{}{"type": "integer"},
				"y1": map[string]interface{}{"type": "integer"},
				"x2": map[string]interface{}{"type": "integer"},
				"y2": map[string]interface{}{"type": "integer"},
			},
			"required": []string{"x1", "y1", "x2", "y2"},
		},
		"include_values": map[string]interface{}{
			"type":        "boolean",
			"description": "Return the full attention map as rows of values in [0,1]. Default false",
			"default":     false,
		},
	}
}

func sigmaProperties(props map[string]interface{}) map[string]interface{} {
	props["sigma_center"] = map[string]interface{}{
		"type":        "number",
		"description": "center_surround only: narrow blur sigma. Default 1.0",
		"default":     attention.DefaultSigmaCenter,
	}
	props["sigma_surround"] = map[string]interface{}{
		"type":        "number",
		"description": "center_surround only: wide blur sigma, must exceed sigma_center. Default 2.5",
		"default":     attention.DefaultSigmaSurround,
	}
	return props
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	computeProps := sigmaProperties(imageInputProperties())
	computeProps["feature"] = map[string]interface{}{
		"type":        "string",
		"enum":        attention.FeatureNames(),
		"description": "Attention feature to compute",
	}

	fuseProps := imageInputProperties()
	fuseProps["features"] = map[string]interface{}{
		"type":        "array",
		"minItems":    1,
		"description": "Features to combine. Weights default to 1 and are rescaled to sum to 1",
		"items": map[string]interface{}{
			"type": "object",
			"properties": sigmaProperties(map[string]interface{}{
				"name": map[string]interface{}{
					"type": "string",
					"enum": attention.FeatureNames(),
				},
				"weight": map[string]interface{}{
					"type":        "number",
					"minimum":     0,
					"description": "Non-negative weight. Default 1",
				},
			}),
			"required": []string{"name"},
		},
	}

	return []Tool{
		{
			Name:        "image_load",
			Description: "Load an image file and return its dimensions and format.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the image file",
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "attention_features",
			Description: "List the available attention features and what each one scores.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			},
		},
		{
			Name:        "attention_compute",
			Description: "Compute one rule-based visual attention map for an image. Returns min, max, mean and the peak location (in map and source coordinates), optionally with the full map.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": computeProps,
				"required":   []string{"path", "feature"},
			},
		},
		{
			Name:        "attention_fuse",
			Description: "Compute several attention features on an image and combine them with a weighted sum into one map in [0,1].",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": fuseProps,
				"required":   []string{"path", "features"},
			},
		},
	}
}

// FeatureDescriptions maps each built-in feature name to a short summary.
var FeatureDescriptions = map[string]string{
	attention.NameCenterBias:     "Radial falloff from the image center; the center scores 1, the farthest corner 0.",
	attention.NameContrast:       "Absolute deviation of each pixel's intensity from the global mean.",
	attention.NameEdgeDensity:    "Central-difference gradient magnitude; high along edges.",
	attention.NameCenterSurround: "Difference of Gaussians (sigma_center vs sigma_surround); high on local contrast at that scale.",
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
