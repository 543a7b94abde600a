// Package config loads and validates fakerest configuration files.
//
// A config file is a Document: a version tag, optional server settings, an
// ordered list of routes, and optional routeFiles glob patterns that pull in
// more routes from other files:
//
//	version: "1.0"
//	server:
//	  port: 8080
//	  errorMode: respond
//	routes:
//	  - path: /hello
//	    method: GET
//	    resultType: direct
//	    result: '{"ok":true}'
//	routeFiles:
//	  - routes/**/*.yaml
//
// Files may be YAML or JSON, detected by extension. ${VAR} and
// ${VAR:-default} references are expanded from the environment before
// decoding:
//
//	doc, err := config.LoadDocument("fakerest.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	table := doc.Table()
//
// Validation comes in three layers: Document.Validate is the load-time gate
// (first error wins), ValidateDocument collects every error plus advisory
// warnings for the validate command, and ValidateSchema checks the raw bytes
// against the embedded JSON Schema, catching misspelled keys that Go decoding
// would silently drop.
package config
