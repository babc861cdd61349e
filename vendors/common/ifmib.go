package common

import (
	"context"
	"strconv"
	"time"

	"github.com/nanoncore/nano-devctl/codec"
	"github.com/nanoncore/nano-devctl/types"
)

// StatusRule derives the reported port status from the IF-MIB columns.
type StatusRule func(admin, oper int64, speed uint64) bool

// OperUp reports the operational state only.
func OperUp(admin, oper int64, speed uint64) bool {
	return oper == IfStatusUp
}

// AdminAndOperUp requires both states up and a negotiated speed.
func AdminAndOperUp(admin, oper int64, speed uint64) bool {
	return admin == IfStatusUp && oper == IfStatusUp && speed != 0
}

// ReadIdentity reads sysName, sysDescr and sysUpTime.
func ReadIdentity(ctx context.Context, s types.SNMPSession) (*types.Identity, error) {
	name, err := GetString(ctx, s, OIDSysName)
	if err != nil {
		return nil, err
	}
	descr, err := GetString(ctx, s, OIDSysDescr)
	if err != nil {
		return nil, err
	}
	v, err := s.Get(ctx, OIDSysUpTime)
	if err != nil {
		return nil, err
	}
	ticks, _ := Uint(v)
	return &types.Identity{
		Name:        name,
		Description: descr,
		Uptime:      time.Duration(ticks) * 10 * time.Millisecond,
	}, nil
}

// ReadPorts reads the IF-MIB rows of ifIndexes and numbers them from 1 in
// the given order. The alias is preferred over ifName for the port name.
func ReadPorts(ctx context.Context, s types.SNMPSession, ifIndexes []int, rule StatusRule) ([]types.Port, error) {
	aliases, err := WalkStrings(ctx, s, OIDIfAlias)
	if err != nil {
		return nil, err
	}
	names, err := WalkStrings(ctx, s, OIDIfName)
	if err != nil {
		return nil, err
	}
	admin, err := WalkInts(ctx, s, OIDIfAdminStatus)
	if err != nil {
		return nil, err
	}
	oper, err := WalkInts(ctx, s, OIDIfOperStatus)
	if err != nil {
		return nil, err
	}
	macs, err := WalkStrings(ctx, s, OIDIfPhysAddress)
	if err != nil {
		return nil, err
	}
	speeds, err := WalkMap(ctx, s, OIDIfSpeed)
	if err != nil {
		return nil, err
	}
	changes, err := WalkMap(ctx, s, OIDIfLastChange)
	if err != nil {
		return nil, err
	}

	ports := make([]types.Port, 0, len(ifIndexes))
	for i, ifIndex := range ifIndexes {
		key := strconv.Itoa(ifIndex)
		name := aliases[key]
		if name == "" {
			name = names[key]
		}
		speed, _ := Uint(speeds[key])
		ticks, _ := Uint(changes[key])
		mac, err := codec.MACFromOctetString(macs[key])
		if err != nil {
			mac = ""
		}
		ports = append(ports, types.Port{
			Number:      i + 1,
			SNMPIndex:   ifIndex,
			Name:        name,
			Status:      rule(admin[key], oper[key], speed),
			MAC:         mac,
			Speed:       speed,
			UptimeTicks: ticks,
		})
	}
	return ports, nil
}

// SetAdminStatus enables or disables the interface ifIndex.
func SetAdminStatus(ctx context.Context, s types.SNMPSession, ifIndex int, up bool) error {
	status := IfStatusDown
	if up {
		status = IfStatusUp
	}
	return s.Set(ctx, OID(OIDIfAdminStatus, ifIndex), status, types.SNMPInteger)
}

// BridgeIfIndexes returns the ifIndex of every bridge port in bridge port
// order.
func BridgeIfIndexes(ctx context.Context, s types.SNMPSession) ([]int, error) {
	rows, err := WalkInts(ctx, s, OIDBasePortIfIndex)
	if err != nil {
		return nil, err
	}
	out := make([]int, 0, len(rows))
	for _, k := range SortedIndexes(rows) {
		out = append(out, int(rows[k]))
	}
	return out, nil
}

// SequentialIfIndexes returns 1..n, the layout of switches whose port n is
// ifIndex n.
func SequentialIfIndexes(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i + 1
	}
	return out
}
