// Package drivers wires the protocol transports into the types.Transport
// the vendor drivers consume.
package drivers

import (
	"context"

	"github.com/nanoncore/nano-devctl/drivers/cli"
	"github.com/nanoncore/nano-devctl/drivers/snmp"
	"github.com/nanoncore/nano-devctl/model"
	"github.com/nanoncore/nano-devctl/types"
	"github.com/nanoncore/nano-devctl/vendors/common"
	"github.com/sirupsen/logrus"
)

// NetTransport opens real SNMP and CLI sessions. Per-device overrides are
// read from extra_data: login, password, transport, cli_port and
// snmp_version.
type NetTransport struct {
	SNMPConfig snmp.Config
	CLIConfig  cli.Config
	Log        *logrus.Entry
}

var _ types.Transport = (*NetTransport)(nil)

// NewNetTransport returns a transport with the given session defaults.
func NewNetTransport(snmpCfg snmp.Config, cliCfg cli.Config, log *logrus.Entry) *NetTransport {
	return &NetTransport{SNMPConfig: snmpCfg, CLIConfig: cliCfg, Log: log}
}

// SNMP implements types.Transport.
func (t *NetTransport) SNMP(ctx context.Context, dev *model.Device) (types.SNMPSession, error) {
	if dev == nil {
		return nil, types.Errorf(types.KindConfiguration, "snmp: device is required")
	}
	cfg := t.SNMPConfig
	if v, ok := common.ExtraString(dev.ExtraData, common.ExtraSNMPVersion); ok {
		cfg.Version = v
	}
	s, err := snmp.Dial(ctx, dev.IP, dev.Community, cfg)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// CLI implements types.Transport.
func (t *NetTransport) CLI(ctx context.Context, dev *model.Device, profile types.CLIProfile) (types.CLISession, error) {
	if dev == nil {
		return nil, types.Errorf(types.KindConfiguration, "cli: device is required")
	}
	creds := cli.Credentials{
		Username: common.ExtraStringWithDefault(dev.ExtraData, "", common.ExtraLogin),
		Password: common.ExtraStringWithDefault(dev.ExtraData, "", common.ExtraPassword),
	}
	if creds.Username == "" {
		return nil, types.Errorf(types.KindConfiguration, "cli: %s has no login in extra_data", dev)
	}

	cfg := t.CLIConfig
	cfg.Transport = common.ExtraStringWithDefault(dev.ExtraData, cfg.Transport, common.ExtraTransport)
	cfg.Port = common.ExtraIntWithDefault(dev.ExtraData, cfg.Port, common.ExtraCLIPort)
	log := t.Log
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	cfg.Log = log.WithField("device", dev.IP)

	s, err := cli.Dial(ctx, dev.IP, creds, profile, cfg)
	if err != nil {
		return nil, err
	}
	return s, nil
}
