package engine

import (
	"testing"

	"github.com/opencourts/scandesk/internal/scan/domain/command"
	"github.com/opencourts/scandesk/internal/scan/domain/envelope"
	"github.com/opencourts/scandesk/internal/scan/domain/event"
	"github.com/opencourts/scandesk/internal/scan/domain/means"
	"github.com/opencourts/scandesk/internal/scan/domain/plea"
)

func TestBuildRegistriesRegistersAllCoreDomains(t *testing.T) {
	registries, err := BuildRegistries()
	if err != nil {
		t.Fatalf("build registries: %v", err)
	}

	commandTypes := []command.Type{
		envelope.CommandTypeRegister,
		envelope.CommandTypeDecideNextStep,
		means.CommandTypeUpdateFinancialMeans,
		plea.CommandTypeUpdateDefendantDetails,
	}
	for _, commandType := range commandTypes {
		if _, ok := registries.Commands.Definition(commandType); !ok {
			t.Fatalf("expected %s command registered", commandType)
		}
	}

	if _, ok := registries.Events.Definition(envelope.EventTypeRegistered); !ok {
		t.Fatal("expected registered event registered")
	}
	if _, ok := registries.Events.Definition(means.EventTypeFinancialMeansUpdated); !ok {
		t.Fatal("expected means updated event registered")
	}
	if _, ok := registries.Events.Definition(plea.EventTypePleaDetailsUpdated); !ok {
		t.Fatal("expected plea updated event registered")
	}
}

func TestBuildRegistriesEventIntents(t *testing.T) {
	registries, err := BuildRegistries()
	if err != nil {
		t.Fatalf("build registries: %v", err)
	}

	cases := []struct {
		eventType event.Type
		intent    event.Intent
	}{
		{envelope.EventTypeRegistered, event.IntentProjectionAndReplay},
		{envelope.EventTypeNextStepPaused, event.IntentReplayOnly},
		{envelope.EventTypeRejected, event.IntentAuditOnly},
		{envelope.EventTypeExpired, event.IntentAuditOnly},
	}
	for _, tc := range cases {
		definition, ok := registries.Events.Definition(tc.eventType)
		if !ok {
			t.Fatalf("expected %s registered", tc.eventType)
		}
		if definition.Intent != tc.intent {
			t.Fatalf("expected %s intent %s, got %s", tc.eventType, tc.intent, definition.Intent)
		}
	}
}

func TestFoldHandledTypesNeverAuditOnly(t *testing.T) {
	registries, err := BuildRegistries()
	if err != nil {
		t.Fatalf("build registries: %v", err)
	}
	for _, domain := range CoreDomains() {
		if domain.FoldHandledTypes == nil {
			continue
		}
		for _, eventType := range domain.FoldHandledTypes() {
			definition, ok := registries.Events.Definition(eventType)
			if !ok {
				t.Fatalf("domain %s folds unregistered type %s", domain.Name(), eventType)
			}
			if definition.Intent == event.IntentAuditOnly {
				t.Fatalf("domain %s folds audit-only type %s", domain.Name(), eventType)
			}
		}
	}
}
