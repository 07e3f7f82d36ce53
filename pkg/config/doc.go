// Package config holds the configuration of the builtins runtime: which
// builtin families are registered, evidence recording, the serve listener and
// telemetry.
//
// A configuration is built in four steps, each overriding the last:
//
//  1. NewDefaultConfig / ApplyDefaults
//  2. the YAML file, if any
//  3. MERCATOR_<SECTION>_<FIELD> environment variables
//  4. Validate, which reports every bad field at once
//
// LoadConfig stops after step 2 and validation; LoadConfigWithEnvOverrides
// runs all four:
//
//	cfg, err := config.LoadConfigWithEnvOverrides("builtins.yaml")
//
// Some recognized variables:
//
//	MERCATOR_BUILTINS_FAMILIES=base64,json,yaml
//	MERCATOR_BUILTINS_STRICT=true
//	MERCATOR_EVIDENCE_SQLITE_DRIVER=sqlite3
//	MERCATOR_SERVE_TLS_ENABLED=true
//	MERCATOR_TELEMETRY_LOGGING_LEVEL=debug
//
// The CLI installs the loaded configuration with SetConfig and the config
// manager replaces it after each successful reload; GetConfig returns
// whatever is installed.
//
// A typical file:
//
//	builtins:
//	  families: [base64, base64url, hex, json, jsonschema, yaml]
//	  strict: false
//	  max_argument_bytes: 1048576
//
//	evidence:
//	  enabled: true
//	  backend: sqlite
//	  sqlite:
//	    path: data/evidence.db
//	  retention:
//	    days: 30
//	    prune_schedule: "0 3 * * *"
//
//	serve:
//	  metrics_address: 127.0.0.1:9090
//	  rate_limit:
//	    calls_per_second: 200
//
//	telemetry:
//	  logging:
//	    level: info
//	    format: json
package config
