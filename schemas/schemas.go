// Package schemas holds the JSON Schemas for files read by the sitemap agent.
package schemas

import _ "embed"

// SitemapConfigFile is the schema file name, relative to this directory.
const SitemapConfigFile = "sitemap_config.schema.json"

// SitemapConfig is the JSON Schema for configuration files.
//
//go:embed sitemap_config.schema.json
var SitemapConfig string
