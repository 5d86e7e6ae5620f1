package integrity

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/opencourts/scandesk/internal/scan/domain/event"
)

// EventHash computes the content hash for a single event.
//
// The canonical envelope pins field ordering in one place so the hash cannot
// drift between the append path and integrity verification.
func EventHash(evt event.Event) (string, error) {
	envelope, err := canonicalEnvelope(evt)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256([]byte(envelope))
	return hex.EncodeToString(sum[:]), nil
}

// ChainHash computes the hash that links an event to its predecessor.
// The first event of a stream links to an empty previous hash.
func ChainHash(evt event.Event, prevHash string) (string, error) {
	envelope, err := canonicalEnvelope(evt)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256([]byte(prevHash + "|" + envelope))
	return hex.EncodeToString(sum[:]), nil
}

func canonicalEnvelope(evt event.Event) (string, error) {
	if strings.TrimSpace(evt.EnvelopeID) == "" {
		return "", fmt.Errorf("envelope id is required")
	}
	if strings.TrimSpace(string(evt.Type)) == "" {
		return "", fmt.Errorf("event type is required")
	}
	fields := []string{
		evt.EnvelopeID,
		strconv.FormatUint(evt.Seq, 10),
		strconv.FormatInt(evt.Timestamp.UTC().UnixMilli(), 10),
		string(evt.Type),
		string(evt.ActorType),
		evt.ActorID,
		evt.RequestID,
		evt.CorrelationID,
		evt.CausationID,
		evt.EntityType,
		evt.EntityID,
		string(evt.PayloadJSON),
	}
	return strings.Join(fields, "|"), nil
}
