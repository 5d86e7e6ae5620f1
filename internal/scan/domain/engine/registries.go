package engine

import (
	"fmt"

	"github.com/opencourts/scandesk/internal/scan/domain/command"
	"github.com/opencourts/scandesk/internal/scan/domain/envelope"
	"github.com/opencourts/scandesk/internal/scan/domain/event"
	"github.com/opencourts/scandesk/internal/scan/domain/means"
	"github.com/opencourts/scandesk/internal/scan/domain/plea"
)

// Registries bundles the command and event registries.
type Registries struct {
	Commands *command.Registry
	Events   *event.Registry
}

// CoreDomain bundles the registration hooks each core domain package exports.
// Adding a new core domain means appending an entry to CoreDomains and wiring
// its fold function in the aggregate folder.
type CoreDomain struct {
	name             string
	RegisterCommands func(*command.Registry) error
	RegisterEvents   func(*event.Registry) error
	FoldHandledTypes func() []event.Type
}

// Name returns a human-readable label for error messages and diagnostics.
func (d CoreDomain) Name() string { return d.name }

// CoreDomains returns the authoritative list of core domain registrations.
func CoreDomains() []CoreDomain {
	return []CoreDomain{
		{
			name:             "envelope",
			RegisterCommands: envelope.RegisterCommands,
			RegisterEvents:   envelope.RegisterEvents,
			FoldHandledTypes: envelope.FoldHandledTypes,
		},
		{
			name:             "means",
			RegisterCommands: means.RegisterCommands,
			RegisterEvents:   means.RegisterEvents,
		},
		{
			name:             "plea",
			RegisterCommands: plea.RegisterCommands,
			RegisterEvents:   plea.RegisterEvents,
			FoldHandledTypes: plea.FoldHandledTypes,
		},
	}
}

// BuildRegistries registers all core domains into fresh registries.
//
// This is the shared bootstrap point where all command/event contracts become
// a single validated registry consumed by the write handler and projections.
func BuildRegistries() (Registries, error) {
	commandRegistry := command.NewRegistry()
	eventRegistry := event.NewRegistry()

	for _, domain := range CoreDomains() {
		if err := domain.RegisterCommands(commandRegistry); err != nil {
			return Registries{}, fmt.Errorf("register %s commands: %w", domain.Name(), err)
		}
		if err := domain.RegisterEvents(eventRegistry); err != nil {
			return Registries{}, fmt.Errorf("register %s events: %w", domain.Name(), err)
		}
	}

	if err := validateNoFoldHandlersForAuditOnlyEvents(eventRegistry); err != nil {
		return Registries{}, err
	}

	return Registries{Commands: commandRegistry, Events: eventRegistry}, nil
}

// validateNoFoldHandlersForAuditOnlyEvents enforces that audit-only events
// never reach aggregate state. A fold handler for one would reintroduce the
// event into replay through the back door.
func validateNoFoldHandlersForAuditOnlyEvents(events *event.Registry) error {
	for _, domain := range CoreDomains() {
		if domain.FoldHandledTypes == nil {
			continue
		}
		for _, t := range domain.FoldHandledTypes() {
			definition, ok := events.Definition(t)
			if !ok {
				return fmt.Errorf("domain %s folds unregistered event type %s", domain.Name(), t)
			}
			if definition.Intent == event.IntentAuditOnly {
				return fmt.Errorf("domain %s folds audit-only event type %s", domain.Name(), t)
			}
		}
	}
	return nil
}
