// Package config defines configuration for the fast CLI.
//
// Configuration can be provided via:
//   - Command-line flags
//   - Environment variables (FAST_ prefix)
//   - YAML configuration file
//
// Flags override the environment, which overrides the file.
//
// # File format
//
//	upload: true
//	host: fast.com
//	api_url: https://api.fast.com
//	url_count: 5
//	min_duration: 5s
//	max_duration: 30s
//	sample_interval: 200ms
//	latency_probes: 5
//	payload_size: 25MB
//	request_timeout: 10s
package config
