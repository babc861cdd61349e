package dlink

// D-Link agent OIDs (DLINK-AGENT-MIB, enterprise 171).
// Port membership and the FDB use the standard Q-BRIDGE-MIB tables in
// vendors/common; only the management actions are vendor-specific.
const (
	OIDDLinkEnterprise = "1.3.6.1.4.1.171"

	// agentMgmt scalars
	OIDAgentSaveCfg = "1.3.6.1.4.1.171.12.1.2.6.0" // 3 = save the running configuration
	OIDAgentRestart = "1.3.6.1.4.1.171.12.1.2.3.0" // 3 = reboot the switch

	AgentSaveCfgValue = 3
	AgentRestartValue = 3
)
