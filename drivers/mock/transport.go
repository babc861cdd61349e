package mock

import (
	"context"
	"sync"

	"github.com/nanoncore/nano-devctl/model"
	"github.com/nanoncore/nano-devctl/types"
)

// Transport hands out the scripted sessions registered for each device
// address and counts how many were opened.
type Transport struct {
	mu       sync.Mutex
	snmp     map[string]*SNMP
	cli      map[string][]*CLI
	failures map[string]error
	profiles []types.CLIProfile

	snmpDials int
	cliDials  int
}

var _ types.Transport = (*Transport)(nil)

// NewTransport returns an empty transport.
func NewTransport() *Transport {
	return &Transport{
		snmp:     make(map[string]*SNMP),
		cli:      make(map[string][]*CLI),
		failures: make(map[string]error),
	}
}

// AddSNMP registers the SNMP tree of the device at ip.
func (t *Transport) AddSNMP(ip string, s *SNMP) *Transport {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.snmp[ip] = s
	return t
}

// AddCLI queues a dialogue for the device at ip. Each CLI call consumes
// one queued dialogue.
func (t *Transport) AddCLI(ip string, c *CLI) *Transport {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.cli[ip] = append(t.cli[ip], c)
	return t
}

// FailCLI makes CLI logins to ip fail with err.
func (t *Transport) FailCLI(ip string, err error) *Transport {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.failures[ip] = err
	return t
}

// SNMP implements types.Transport.
func (t *Transport) SNMP(ctx context.Context, dev *model.Device) (types.SNMPSession, error) {
	if dev == nil || dev.IP == "" {
		return nil, types.Errorf(types.KindConfiguration, "snmp: hostname is required")
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.snmpDials++
	s, ok := t.snmp[dev.IP]
	if !ok {
		return nil, types.Errorf(types.KindConnection, "snmp: no route to %s", dev.IP)
	}
	return s, nil
}

// CLI implements types.Transport.
func (t *Transport) CLI(ctx context.Context, dev *model.Device, profile types.CLIProfile) (types.CLISession, error) {
	if dev == nil || dev.IP == "" {
		return nil, types.Errorf(types.KindConfiguration, "cli: hostname is required")
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.cliDials++
	t.profiles = append(t.profiles, profile)
	if err, ok := t.failures[dev.IP]; ok {
		return nil, err
	}
	queue := t.cli[dev.IP]
	if len(queue) == 0 {
		return nil, types.Errorf(types.KindConnection, "cli: connection refused by %s", dev.IP)
	}
	t.cli[dev.IP] = queue[1:]
	return queue[0], nil
}

// SNMPDials is the number of SNMP sessions opened.
func (t *Transport) SNMPDials() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snmpDials
}

// CLIDials is the number of CLI sessions requested.
func (t *Transport) CLIDials() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cliDials
}

// Profiles returns the login profiles CLI sessions were requested with.
func (t *Transport) Profiles() []types.CLIProfile {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]types.CLIProfile(nil), t.profiles...)
}
