// Package config provides configuration management for strwriter.
//
// Configuration is read from a YAML or TOML file (chosen by extension),
// layered over defaults and overridden by environment variables.
//
// # Configuration Loading
//
//	cfg, err := config.LoadConfig("strwriter.yaml")
//	cfg, err := config.LoadConfigWithEnvOverrides("strwriter.toml")
//
// Without a --config flag the CLI reads strwriter.yaml from the working
// directory when present and runs on defaults otherwise.
//
// # Environment Variable Overrides
//
// Environment variables follow the naming convention STRWRITER_SECTION_FIELD:
//
//   - STRWRITER_SOURCE_PATH overrides source.path
//   - STRWRITER_EXPORT_TARGET_CRS overrides export.target_crs
//   - STRWRITER_TELEMETRY_LOGGING_LEVEL overrides telemetry.logging.level
//
// # Configuration Precedence
//
//  1. Default values (defined in defaults.go)
//  2. Values from the configuration file
//  3. Environment variable overrides
//  4. Validation (fails fast if invalid)
//
// # Example Configuration
//
//	source:
//	  path: "./layers"
//	  crs: "EPSG:4326"
//
//	export:
//	  target_crs: "EPSG:3857"
//	  attribute_field: "ROAD_ID"
//	  default_z: "0"
//	  output_dir: "./out"
//
//	schedule:
//	  jobs:
//	    - name: nightly-roads
//	      cron: "0 2 * * *"
//	      layer: haul_roads
//
//	telemetry:
//	  logging:
//	    level: "info"
//	    format: "text"
//
// The same file in TOML:
//
//	[source]
//	path = "./layers"
//
//	[[schedule.jobs]]
//	name = "nightly-roads"
//	cron = "0 2 * * *"
//	layer = "haul_roads"
package config
