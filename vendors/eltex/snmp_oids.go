package eltex

import "github.com/nanoncore/nano-devctl/vendors/common"

// Eltex MES OIDs (RADLAN-MIB, enterprise 89).
//
// rldot1qPortVlanStaticTable keeps the VLAN membership of a port as four
// 1024-bit lists, indexed by ifIndex:
//
//	.1.3.6.1.4.1.89.48.68.1.{1-4}.<ifIndex>  egress lists, vids 0-1023 ... 3072-4095
//	.1.3.6.1.4.1.89.48.68.1.{5-8}.<ifIndex>  untagged lists, same split
const (
	OIDPortVlanStatic = "1.3.6.1.4.1.89.48.68.1"

	// rlReboot, 1 = reboot now
	OIDRlReboot = "1.3.6.1.4.1.89.1.10.0"

	// Q-BRIDGE-MIB dot1qPvid, indexed by bridge port
	OIDPortPVID = "1.3.6.1.2.1.17.7.1.4.5.1.1"

	RebootValue = 1
)

// EgressOID returns the egress list column for table t (0-3) of ifIndex.
func EgressOID(t, ifIndex int) string {
	return common.OID(OIDPortVlanStatic, t+1, ifIndex)
}

// UntaggedOID returns the untagged list column for table t (0-3) of ifIndex.
func UntaggedOID(t, ifIndex int) string {
	return common.OID(OIDPortVlanStatic, t+5, ifIndex)
}
