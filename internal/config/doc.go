// Package config loads and merges relnote configuration from multiple sources.
//
// Precedence (highest to lowest):
//  1. CLI flags
//  2. Environment variables (RELNOTE_OWNER, RELNOTE_REPO, RELNOTE_TARGET_BRANCH, etc.)
//  3. Config file ($XDG_CONFIG_HOME/relnote/config.json)
//  4. Built-in defaults
//
// Use [Load] to obtain a merged [Config] and [SetField] to update a single
// key in the config file. API tokens resolve separately through
// [GitHubToken] and [ZenodoToken].
package config
