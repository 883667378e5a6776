// Package config handles configuration loading for the media agent
// credential store tooling.
//
// Configuration is loaded from YAML files with environment variable
// expansion (${VAR_NAME}) and validated before use. The store itself never
// reads the environment; path selection is the caller's concern.
//
// Sections:
//
//	data_dir: "/data"            # database + key file location
//
//	database:
//	  file: "media_agent.db"     # bare file name inside data_dir
//
//	encryption:
//	  key: "${MEDIA_AGENT_KEY}"  # optional explicit key, bypasses key file
//
//	sessions:
//	  ttl: "24h"                 # login session lifetime
//
//	logging:
//	  level: "info"              # debug, info, warn, error
//	  format: "text"             # text, json
//
// Default() returns the zero-config behavior: current directory, default
// database name, 24h sessions, text logging at info level.
package config
