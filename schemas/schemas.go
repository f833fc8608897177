// Package schemas embeds the JSON Schemas of the documents job-intel emits.
package schemas

import _ "embed"

// AnalyzeResponseFile is the schema file name, used in error messages.
const AnalyzeResponseFile = "analyze_response.schema.json"

//go:embed analyze_response.schema.json
var AnalyzeResponse []byte
