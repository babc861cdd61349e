package zte

// ZTE C3xx GPON OIDs (ZXGPON-SERVICE-MIB, enterprise 3902).
// ONU rows are indexed by <packed fiber>.<onu>, where the packed fiber is
// also the ifIndex of the gpon-olt interface.
const (
	// Enterprise OID prefix for ZTE
	OIDZTEEnterprise = "1.3.6.1.4.1.3902"

	// ONU configuration table, index: <packed>.<onu>
	OIDONUType   = "1.3.6.1.4.1.3902.1012.3.28.1.1.1" // Registered type, e.g. "ZTE-F660"
	OIDONUName   = "1.3.6.1.4.1.3902.1012.3.28.1.1.3" // Operator name
	OIDONUSerial = "1.3.6.1.4.1.3902.1012.3.28.1.1.5" // 8 octets: 4 ASCII vendor bytes + 4 raw bytes

	// ONU runtime state, index: <packed>.<onu>
	OIDONUPhaseState = "1.3.6.1.4.1.3902.1012.3.28.2.1.4" // 4 = working
	OIDONUDistance   = "1.3.6.1.4.1.3902.1012.3.11.4.1.2" // Equalised distance in meters

	// ONU optical level, index: <packed>.<onu>.1
	OIDONURxPower = "1.3.6.1.4.1.3902.1012.3.50.12.1.1.10" // Raw level, see codec.DecodeZTESignal

	// Unconfigured units, index: <packed>.<n>
	OIDUncfgSerial   = "1.3.6.1.4.1.3902.1012.3.13.3.1.2" // Same octet layout as OIDONUSerial
	OIDUncfgFirmware = "1.3.6.1.4.1.3902.1012.3.13.3.1.5"

	// ONU UNI port VLANs, index: <packed>.<onu>.<port>
	OIDUNIAccessVID = "1.3.6.1.4.1.3902.1012.3.50.13.1.1.2" // Untagged vid, 0 when unset
	OIDUNITrunkVIDs = "1.3.6.1.4.1.3902.1012.3.50.13.1.1.3" // Trunk vid list, e.g. "100,143-150"
)

// Phase state values.
const (
	PhaseLogging   = 1
	PhaseLOS       = 2
	PhaseSyncMIB   = 3
	PhaseWorking   = 4
	PhaseDyingGasp = 5
	PhaseAuthFail  = 6
	PhaseOffline   = 7
)

var phaseNames = map[int64]string{
	PhaseLogging:   "logging",
	PhaseLOS:       "los",
	PhaseSyncMIB:   "syncMib",
	PhaseWorking:   "working",
	PhaseDyingGasp: "dyingGasp",
	PhaseAuthFail:  "authFailed",
	PhaseOffline:   "offline",
}

// RxPowerOID returns the optical level OID of the ONU at index.
func RxPowerOID(index string) string {
	return OIDONURxPower + "." + index + ".1"
}
