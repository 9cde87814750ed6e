// Package schemas holds the JSON Schemas for documents exchanged with the analysis server.
package schemas

import _ "embed"

// AnalysisResponse is the schema for the POST /api/analyze response body.
//
//go:embed analysis_response.schema.json
var AnalysisResponse string
