package types

import (
	"context"

	"github.com/nanoncore/nano-devctl/model"
)

// SNMPType is the ASN.1 type of a value written with Set.
type SNMPType int

const (
	SNMPInteger SNMPType = iota
	SNMPOctetString
	SNMPGauge
	SNMPUnsigned
	SNMPIPAddress
)

// SNMPVar is one variable of a SetMulti request.
type SNMPVar struct {
	OID   string
	Type  SNMPType
	Value interface{}
}

// WalkFunc receives each row of a walk. index is the OID suffix below the
// walked base, without a leading dot. Returning an error stops the walk.
type WalkFunc func(index string, value interface{}) error

// SNMPSession is a request/response channel to one device.
//
// Values are normalised: octet strings come back as string, integers as
// int64, counters, gauges and time ticks as uint64. A missing instance
// (including the "NOSUCHINSTANCE" sentinel) is reported as a nil value
// with a nil error.
type SNMPSession interface {
	// Get reads a single OID
	Get(ctx context.Context, oid string) (interface{}, error)

	// GetNext returns the lexicographically next OID and its value
	GetNext(ctx context.Context, oid string) (string, interface{}, error)

	// Walk streams the subtree under oid to fn
	Walk(ctx context.Context, oid string, fn WalkFunc) error

	// Set writes one value
	Set(ctx context.Context, oid string, value interface{}, typ SNMPType) error

	// SetMulti writes several values in one PDU
	SetMulti(ctx context.Context, vars []SNMPVar) error

	// Close releases the session
	Close() error
}

// CLISession is a line-oriented, prompt-driven channel to one device.
// Prompts are matched as literal strings; the first literal found in the
// output wins, so callers list the most specific prompt first.
type CLISession interface {
	// Expect waits for one of the literals and returns its index
	Expect(ctx context.Context, literals ...string) (int, error)

	// Send writes one line
	Send(line string) error

	// DoCmd sends line and waits for one of the prompts
	DoCmd(ctx context.Context, line string, prompts ...string) (int, error)

	// LinesBefore returns the output captured before the most recent match
	LinesBefore() []string

	// Close releases the session
	Close() error
}

// Transport opens sessions to devices. Drivers receive a Transport at
// construction and open sessions per operation.
type Transport interface {
	// SNMP opens a session to dev
	SNMP(ctx context.Context, dev *model.Device) (SNMPSession, error)

	// CLI opens an interactive session to dev and logs in using profile
	CLI(ctx context.Context, dev *model.Device, profile CLIProfile) (CLISession, error)
}

// CLIProfile describes a vendor's login dialogue.
type CLIProfile struct {
	// UserPrompt and PassPrompt are the telnet login prompts. SSH sessions
	// authenticate at the transport and skip them.
	UserPrompt string
	PassPrompt string

	// Ready lists the prompts that mean the session is usable, most specific first
	Ready []string

	// Rejected lists banners that mean the credentials were refused
	Rejected []string

	// Setup lines are sent after login, each waiting for a Ready prompt
	Setup []string
}
