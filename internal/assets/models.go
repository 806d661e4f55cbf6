package assets

import _ "embed"

// ModelsData is the raw JSON catalog of chat models available per provider.
//
//go:embed models.json
var ModelsData []byte
