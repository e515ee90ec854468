// Package configs provides embedded configuration templates for searchd.
//
// How Configuration Templates Work:
//
// Templates are embedded at build time using Go's //go:embed directive.
// This ensures they are available in ALL distributions:
//   - Source builds (go install)
//   - Binary releases
//   - Homebrew installations
//
// The templates are used by:
//   - cmd/searchd/cmd/init.go → runInit() - creates .searchd.yaml
//   - cmd/searchd/cmd/config.go → creates user config at ~/.config/searchd/config.yaml
//
// Template files:
//   - instance-config.example.yaml: per-directory settings (data dir, indexing, scheduler)
//   - user-config.example.yaml: machine-wide settings (daemon socket/pid, logging)
//
// Configuration Hierarchy (see internal/config/config.go Load()):
//   1. Hardcoded defaults (internal/config/config.go NewConfig())
//   2. User config (~/.config/searchd/config.yaml)
//   3. Instance config (.searchd.yaml)
//   4. Environment variables (SEARCHD_*)
//
// To modify templates, edit the .yaml files in this directory and rebuild.
// Changes will be embedded in the next build.
package configs

import _ "embed"

// UserConfigTemplate is the template for user/machine-level configuration.
// Created by: `searchd config init` at ~/.config/searchd/config.yaml
// Contains: machine-wide settings like the daemon's socket/PID paths and
// logging destination.
// Use case: settings that apply to every instance this machine serves.
//
//go:embed user-config.example.yaml
var UserConfigTemplate string

// InstanceConfigTemplate is the template for instance-level configuration.
// Created by: `searchd init` at .searchd.yaml in the current working directory.
// Contains: instance-specific settings like data_dir, indexing limits, the
// scheduler's idle interval, and the snapshot/dump schedule.
// Use case: settings that travel with a single searchd instance.
//
//go:embed instance-config.example.yaml
var InstanceConfigTemplate string
