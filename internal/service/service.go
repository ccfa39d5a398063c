// Package service resolves the desired lifecycle of the volume API service
// and the migration step that is gated on it.
package service

import "cinderapi/internal/directive"

// Name is the service managed by the plan.
const Name = "cinder-api"

// MigrationCommand is the one-time schema migration run by an external
// collaborator before the service starts on fresh configuration.
const MigrationCommand = "cinder-manage db_sync"

// Resolve returns the lifecycle directive, or nil when the service is not
// managed and its lifecycle must be left untouched. The directive depends on
// every ID in after, so the service only (re)starts on fresh configuration.
func Resolve(enabled, managed bool, after []string) *directive.ServiceState {
	if !managed {
		return nil
	}

	return &directive.ServiceState{
		Name:      Name,
		Enabled:   enabled,
		Managed:   true,
		HasStatus: true,
		DependsOn: copyIDs(after),
	}
}

// MigrationGate returns the migration directive when the service is
// enabled. A disabled service suppresses it entirely.
func MigrationGate(enabled bool, after []string) *directive.Migration {
	if !enabled {
		return nil
	}

	return &directive.Migration{
		Command:     MigrationCommand,
		RefreshOnly: true,
		DependsOn:   copyIDs(after),
	}
}

func copyIDs(ids []string) []string {
	if len(ids) == 0 {
		return nil
	}
	out := make([]string, len(ids))
	copy(out, ids)
	return out
}
