package huawei

// Huawei VRP switch OIDs (enterprise 2011).
// Ports, VLANs and the FDB are read through the standard tables in
// vendors/common; the reload and save actions are vendor-specific.
const (
	// Enterprise OID prefix for Huawei
	OIDHuaweiEnterprise = "1.3.6.1.4.1.2011"

	// HUAWEI-SYS-MAN-MIB hwSysReloadAction, 3 = reload now
	OIDSysReloadAction = "1.3.6.1.4.1.2011.5.25.19.1.3.2.0"

	// HUAWEI-CONFIG-MAN-MIB hwCfgOperateType row used to save the running
	// configuration, 1 = running to startup
	OIDCfgOperateType = "1.3.6.1.4.1.2011.6.10.1.2.4.1.2.1"

	ReloadNow        = 3
	CfgRunningToSave = 1
)
