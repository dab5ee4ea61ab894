// Package source switches oasgen's JSON tokenizer to goccy/go-json when
// imported for side effects:
//
//	import _ "github.com/LukeHagar/openapi-definition-generator/source"
package source

import (
	oasgen "github.com/LukeHagar/openapi-definition-generator"
	drvgojson "github.com/LukeHagar/openapi-definition-generator/source/gojson"
)

// init lives in a separate package to avoid an import cycle in the root.
func init() { oasgen.SetJSONDriver(drvgojson.Driver()) }
