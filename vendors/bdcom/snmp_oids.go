package bdcom

// BDCOM EPON OLT OIDs (NMS-EPON-ONU-MIB, enterprise 3320).
// ONU rows are indexed by the ifIndex of the ONU interface (EPON0/1:5);
// per-port rows append the ONU UNI port number.
const (
	// Enterprise OID prefix for BDCOM
	OIDBDCOMEnterprise = "1.3.6.1.4.1.3320"

	// ONU table (1.3.6.1.4.1.3320.101.10.1.1.x), index: <onu ifIndex>
	OIDONUMAC      = "1.3.6.1.4.1.3320.101.10.1.1.3"  // Raw 6-byte MAC
	OIDONUModel    = "1.3.6.1.4.1.3320.101.10.1.1.2"  // Model string
	OIDONUFirmware = "1.3.6.1.4.1.3320.101.10.1.1.5"  // Software version
	OIDONUStatus   = "1.3.6.1.4.1.3320.101.10.1.1.26" // 3 = up, other values are down states
	OIDONUDistance = "1.3.6.1.4.1.3320.101.10.1.1.27" // Distance in meters

	// ONU optical diagnostics, index: <onu ifIndex>
	OIDONURxPower = "1.3.6.1.4.1.3320.101.10.5.1.5" // Rx power in 0.1 dBm

	// Units seen on a PON port but not bound, index: <fiber ifIndex>.<n>
	OIDInactiveONUMAC      = "1.3.6.1.4.1.3320.101.11.1.1.3" // Raw 6-byte MAC
	OIDInactiveONUFirmware = "1.3.6.1.4.1.3320.101.11.1.1.5"

	// ONU UNI port VLAN table, index: <onu ifIndex>.<port>
	OIDONUPortPVID  = "1.3.6.1.4.1.3320.101.12.1.1.3" // Access (untagged) vid
	OIDONUPortTrunk = "1.3.6.1.4.1.3320.101.12.1.1.4" // Trunk vid list, e.g. "100,143-150"
)

// ONU status values.
const (
	ONUStatusUp = 3
)

// MaxONUSlot is the number of ONUs one EPON port binds.
const MaxONUSlot = 64
