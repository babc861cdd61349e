package common

// Standard MIB OIDs shared by every switch vendor.
const (
	// MIB-II system group (RFC 1213)
	OIDSysDescr  = "1.3.6.1.2.1.1.1.0" // System description
	OIDSysUpTime = "1.3.6.1.2.1.1.3.0" // Uptime in hundredths of seconds
	OIDSysName   = "1.3.6.1.2.1.1.5.0" // System name

	// IF-MIB interface table, indexed by ifIndex
	OIDIfDescr       = "1.3.6.1.2.1.2.2.1.2"
	OIDIfSpeed       = "1.3.6.1.2.1.2.2.1.5" // bits per second, 0 when down
	OIDIfPhysAddress = "1.3.6.1.2.1.2.2.1.6"
	OIDIfAdminStatus = "1.3.6.1.2.1.2.2.1.7" // 1=up, 2=down (writable)
	OIDIfOperStatus  = "1.3.6.1.2.1.2.2.1.8" // 1=up, 2=down
	OIDIfLastChange  = "1.3.6.1.2.1.2.2.1.9" // sysUpTime at the last state change
	OIDIfName        = "1.3.6.1.2.1.31.1.1.1.1"
	OIDIfAlias       = "1.3.6.1.2.1.31.1.1.1.18" // operator description

	// BRIDGE-MIB
	OIDBasePortIfIndex = "1.3.6.1.2.1.17.1.4.1.2" // dot1dBasePort -> ifIndex

	// Q-BRIDGE-MIB dot1qVlanStaticTable, indexed by vid
	OIDVlanStaticName      = "1.3.6.1.2.1.17.7.1.4.3.1.1"
	OIDVlanStaticEgress    = "1.3.6.1.2.1.17.7.1.4.3.1.2" // tagged and untagged members
	OIDVlanStaticUntagged  = "1.3.6.1.2.1.17.7.1.4.3.1.4" // untagged members
	OIDVlanStaticRowStatus = "1.3.6.1.2.1.17.7.1.4.3.1.5"

	// Q-BRIDGE-MIB dot1qTpFdbPort, indexed by <vid>.<six mac octets>
	OIDFdbPort = "1.3.6.1.2.1.17.7.1.2.2.1.2"
)

// Interface status values.
const (
	IfStatusUp   = 1
	IfStatusDown = 2
)

// RowStatus values (SNMPv2-TC).
const (
	RowCreateAndGo = 4
	RowDestroy     = 6
)
