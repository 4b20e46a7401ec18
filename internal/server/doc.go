// Package server implements the MCP (Model Context Protocol) server for visual
// attention tools.
//
// This package provides a JSON-RPC 2.0 server that exposes rule-based attention
// features through the MCP protocol, so a client can ask where a human viewer
// is likely to look first in an image.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
//   - image_load: Load image and get metadata
//   - attention_features: List the built-in features
//   - attention_compute: Compute one feature map
//   - attention_fuse: Weighted sum of several feature maps
//
// The attention tools accept a color_space (rgb, gray or lab), an optional
// region, and a max_dimension that bounds the longest side before features
// run. Results carry the map summary plus the peak translated back into
// source image coordinates.
//
// # Image Caching
//
// Decoded images are cached by path. Converted attention images are cached
// per path and conversion options, so repeated calls with the same settings
// skip cropping, resampling and channel extraction.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with code
// -32000 and data {"kind", "detail"}. Kind is one of invalid_input,
// invalid_configuration, contract_violation or tool_error.
//
// # Usage
//
//	srv := server.New(server.DefaultConfig(), logger.NewConsole(zerolog.InfoLevel))
//	if err := srv.Run(); err != nil {
//	    log.Fatal(err)
//	}
package server
