package ovs

import (
	"strconv"
	"strings"

	"github.com/google/uuid"
)

const (
	// DefaultQoSID is the fixed symbolic QoS name of the legacy scripts.
	DefaultQoSID = "@newqos"
	// DefaultQueuePrefix makes the legacy queue names "@0", "@1", ...
	DefaultQueuePrefix = "@"
)

// Identifiers hands out the symbolic row names used inside a transaction.
type Identifiers interface {
	QoS() string
	Queues(n int) []string
}

// FreshIdentifiers derives new names from a random UUID on every call.
type FreshIdentifiers struct{}

func token() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}

// QoS returns "@qos<token>".
func (FreshIdentifiers) QoS() string {
	return "@qos" + token()
}

// Queues returns "@q<token>_<i>" for i in [0, n).
func (FreshIdentifiers) Queues(n int) []string {
	t := token()
	ids := make([]string, n)
	for i := range ids {
		ids[i] = "@q" + t + "_" + strconv.Itoa(i)
	}
	return ids
}

// FixedIdentifiers reuses the same names on every call. Attaching a second
// QoS object to a port under the same name replaces the first one.
type FixedIdentifiers struct {
	QoSID       string
	QueuePrefix string
}

// Fixed returns the legacy fixed identifiers.
func Fixed() FixedIdentifiers {
	return FixedIdentifiers{QoSID: DefaultQoSID, QueuePrefix: DefaultQueuePrefix}
}

// QoS returns the fixed QoS name.
func (f FixedIdentifiers) QoS() string {
	return f.QoSID
}

// Queues returns "<prefix><i>" for i in [0, n).
func (f FixedIdentifiers) Queues(n int) []string {
	ids := make([]string, n)
	for i := range ids {
		ids[i] = f.QueuePrefix + strconv.Itoa(i)
	}
	return ids
}
