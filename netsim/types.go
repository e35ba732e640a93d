package netsim

import "net"

// HostParameters is handed to the manager when a virtual host is
// registered. Field set and defaults follow spec.md's data model exactly.
type HostParameters struct {
	Hostname string
	IPAddr   net.IP

	CPUFrequency uint64
	CPUThreshold uint64 // always 0 per spec
	CPUPrecision uint64 // always 200 per spec

	LogLevel          string
	HeartbeatLogLevel string
	HeartbeatLogInfo  string
	HeartbeatInterval SimulationTime

	PcapDir string

	SendBufSize      uint64
	RecvBufSize      uint64
	AutotuneSendBuf  bool
	AutotuneRecvBuf  bool
	InterfaceBufSize uint64
	Qdisc            string

	RequestedBwDownBits uint64
	RequestedBwUpBits   uint64
}

// DefaultCPUThreshold and DefaultCPUPrecision are the fixed values spec.md
// assigns to every host, regardless of configuration.
const (
	DefaultCPUThreshold uint64 = 0
	DefaultCPUPrecision uint64 = 200
)

// ProcessDescriptor describes one virtual process to register with a host.
// Argv and Environment are owned by the caller for the scope of the
// registration call; the manager is assumed to take a defensive copy.
type ProcessDescriptor struct {
	PluginPath string
	StartTime  SimulationTime
	StopTime   SimulationTime
	Argv       []string // argv[0] == PluginPath, no trailing nil (Go strings are not NUL-terminated)
	Environment string
	Quantity   int
}
