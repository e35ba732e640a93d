// Package hostreg implements the two-phase host registration pipeline
// (spec.md §4.2): hosts with pinned IP addresses register first, then
// the rest, so pinned addresses can never be shadowed by auto-assigned
// ones.
package hostreg

import (
	"fmt"
	"net"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/shadowsim/controller/netsim"
	"github.com/shadowsim/controller/netsim/config"
	"github.com/shadowsim/controller/netsim/ipassign"
	"github.com/shadowsim/controller/netsim/manager"
	"github.com/shadowsim/controller/netsim/netgraph"
)

// PluginResolver resolves a process's configured path to an executable
// plugin path, per spec.md §6 ("path (resolved), rawPath (for
// diagnostics)"). Kept as an interface so tests can stub resolution
// without touching the filesystem.
type PluginResolver interface {
	Resolve(rawPath string) (string, error)
}

// Pipeline drives host and process registration against a Manager.
type Pipeline struct {
	Graph      *netgraph.Graph
	Assignment *ipassign.Assignment
	Manager    manager.Manager
	Resolver   PluginResolver

	GlobalOpts config.Options

	// OnHostRegistered, if set, is called immediately after a virtual
	// host is successfully registered with the manager, letting the
	// caller (the controller) register the hostname/address pair with
	// DNS in the same pass rather than re-walking the config.
	OnHostRegistered func(hostname string, ip net.IP) error

	seenHostnames map[string]bool
}

// Register runs both phases over cfg's hosts: pinned-IP hosts first,
// then auto-assigned ones (spec.md §4.4 REGISTER_HOSTS). Returns a
// non-nil error on the first fatal condition, matching spec.md §7's
// "no partial runs" guarantee — once registration fails, no further host
// is processed.
func (p *Pipeline) Register(opts *config.Options) error {
	if p.seenHostnames == nil {
		p.seenHostnames = make(map[string]bool)
	}

	if err := opts.IterHosts(func(h config.HostOptions) error {
		ip, err := h.ParsedIP()
		if err != nil {
			return err
		}
		if ip == nil {
			return nil
		}
		return p.registerHost(h)
	}); err != nil {
		return err
	}

	return opts.IterHosts(func(h config.HostOptions) error {
		ip, err := h.ParsedIP()
		if err != nil {
			return err
		}
		if ip != nil {
			return nil
		}
		return p.registerHost(h)
	})
}

// registerHost expands one configured host entry into EffectiveQuantity
// virtual hosts (spec.md §4.2).
func (p *Pipeline) registerHost(h config.HostOptions) error {
	quantity := h.EffectiveQuantity()

	if quantity > 1 && h.IPAddr != nil {
		err := fmt.Errorf("host %q: pinned ip_addr requires quantity <= 1, got %d", h.Name, quantity)
		logrus.Errorf("hostreg: %v", err)
		return err
	}

	node := netgraph.NodeID(h.NetworkNodeID)

	for i := 1; i <= quantity; i++ {
		hostname := h.Name
		if quantity > 1 {
			hostname = h.Name + strconv.Itoa(i)
		}
		if p.seenHostnames[hostname] {
			err := fmt.Errorf("host %q: duplicate hostname after suffixing", hostname)
			logrus.Errorf("hostreg: %v", err)
			return err
		}
		p.seenHostnames[hostname] = true

		ip, err := p.assignIP(h, node)
		if err != nil {
			logrus.Errorf("hostreg: host %q: %v", hostname, err)
			return err
		}

		params, err := p.buildHostParameters(h, node, hostname, ip)
		if err != nil {
			logrus.Errorf("hostreg: host %q: %v", hostname, err)
			return err
		}

		if err := p.Manager.AddNewVirtualHost(params); err != nil {
			logrus.Errorf("hostreg: host %q: manager rejected registration: %v", hostname, err)
			return err
		}

		if p.OnHostRegistered != nil {
			if err := p.OnHostRegistered(hostname, ip); err != nil {
				logrus.Errorf("hostreg: host %q: %v", hostname, err)
				return err
			}
		}

		if err := p.registerProcesses(h, hostname); err != nil {
			return err
		}
	}

	return nil
}

func (p *Pipeline) assignIP(h config.HostOptions, node netgraph.NodeID) (net.IP, error) {
	ip, err := h.ParsedIP()
	if err != nil {
		return nil, err
	}
	if ip != nil {
		if err := p.Assignment.AssignHostWithIp(node, ip); err != nil {
			return nil, fmt.Errorf("pinned IP assignment failed: %w", err)
		}
		return ip, nil
	}
	auto, err := p.Assignment.AssignHost(node)
	if err != nil {
		return nil, fmt.Errorf("auto IP assignment failed: %w", err)
	}
	return auto, nil
}

// buildHostParameters resolves bandwidth by looking first in the
// graph-node annotations, then letting host options override (spec.md
// §4.2.d: "Host-options value wins if both present").
func (p *Pipeline) buildHostParameters(h config.HostOptions, node netgraph.NodeID, hostname string, ip net.IP) (netsim.HostParameters, error) {
	var down, up uint64

	if n, ok := p.Graph.Node(node); ok {
		down = n.BandwidthDownBits
		up = n.BandwidthUpBits
	}
	if h.BandwidthDown != nil {
		down = *h.BandwidthDown
	}
	if h.BandwidthUp != nil {
		up = *h.BandwidthUp
	}
	if down == 0 || up == 0 {
		return netsim.HostParameters{}, fmt.Errorf("missing or zero bandwidth (down=%d up=%d)", down, up)
	}

	return netsim.HostParameters{
		Hostname:          hostname,
		IPAddr:            ip,
		CPUFrequency:      p.Manager.GetRawCPUFrequency(),
		CPUThreshold:      netsim.DefaultCPUThreshold,
		CPUPrecision:      netsim.DefaultCPUPrecision,
		LogLevel:          h.LogLevel,
		HeartbeatLogLevel: h.HeartbeatLogLevel,
		HeartbeatLogInfo:  h.HeartbeatLogInfo,
		HeartbeatInterval: h.HeartbeatInterval,
		PcapDir:           h.PcapDirectory,
		SendBufSize:       p.GlobalOpts.SocketSendBuffer,
		RecvBufSize:       p.GlobalOpts.SocketRecvBuffer,
		AutotuneSendBuf:   p.GlobalOpts.SocketSendAutotune,
		AutotuneRecvBuf:   p.GlobalOpts.SocketRecvAutotune,
		InterfaceBufSize:  p.GlobalOpts.InterfaceBuffer,
		Qdisc:             p.GlobalOpts.InterfaceQdisc,
		RequestedBwDownBits: down,
		RequestedBwUpBits:   up,
	}, nil
}

// registerProcesses resolves and registers every process configured for
// h onto hostname, replicated EffectiveQuantity times each (spec.md
// §4.2.f).
func (p *Pipeline) registerProcesses(h config.HostOptions, hostname string) error {
	return h.IterProcesses(func(po config.ProcessOptions) error {
		pluginPath, err := p.Resolver.Resolve(po.RawPath)
		if err != nil {
			err = fmt.Errorf("process %q: cannot resolve plugin: %w", po.RawPath, err)
			logrus.Errorf("hostreg: host %q: %v", hostname, err)
			return err
		}

		argv := make([]string, 0, len(po.Args)+1)
		argv = append(argv, pluginPath)
		_ = po.IterArgs(func(a string) error {
			argv = append(argv, a)
			return nil
		})

		desc := netsim.ProcessDescriptor{
			PluginPath:  pluginPath,
			StartTime:   po.StartTime,
			StopTime:    po.StopTime,
			Argv:        argv,
			Environment: po.Environment,
			Quantity:    po.EffectiveQuantity(),
		}

		for i := 0; i < desc.Quantity; i++ {
			if err := p.Manager.AddNewVirtualProcess(hostname, desc); err != nil {
				logrus.Errorf("hostreg: host %q: manager rejected process %q: %v", hostname, pluginPath, err)
				return err
			}
		}
		return nil
	})
}
