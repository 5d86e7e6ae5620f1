package engine

import (
	"time"

	"github.com/opencourts/scandesk/internal/scan/domain/aggregate"
	"github.com/opencourts/scandesk/internal/scan/domain/command"
	"github.com/opencourts/scandesk/internal/scan/domain/envelope"
	"github.com/opencourts/scandesk/internal/scan/domain/means"
	"github.com/opencourts/scandesk/internal/scan/domain/plea"
)

// CoreDecider routes commands to the owning subdomain decider.
type CoreDecider struct{}

// Decide narrows aggregate state and dispatches on command type ownership.
func (CoreDecider) Decide(state any, cmd command.Command, now func() time.Time) command.Decision {
	current, err := aggregate.AssertState[aggregate.State](state)
	if err != nil {
		return command.Reject(command.Rejection{
			Code:    command.RejectionCodeCommandTypeUnsupported,
			Message: "state type is not supported by core decider",
		})
	}
	switch {
	case envelope.HandlesCommand(cmd.Type):
		return envelope.Decide(current.Scan, cmd, now)
	case means.HandlesCommand(cmd.Type):
		return means.Decide(current.Scan, cmd, now)
	case plea.HandlesCommand(cmd.Type):
		return plea.Decide(current.Scan, cmd, now)
	}
	return command.Reject(command.Rejection{
		Code:    command.RejectionCodeCommandTypeUnsupported,
		Message: "command type is not supported by core decider",
	})
}
