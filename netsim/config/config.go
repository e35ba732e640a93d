// Package config parses the user-facing topology/host document into a
// read-only Options value queried by the controller, following the
// teacher's strict-decode yaml.v3 convention (see cmd/default_config.go
// in the example pack this module was grounded on).
package config

import (
	"bytes"
	"fmt"
	"net"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/shadowsim/controller/netsim"
)

// Options is the read-only configuration handle the controller borrows
// for its lifetime. Field names mirror spec.md §6 ("Config options
// consumed").
type Options struct {
	Seed             int64          `yaml:"seed" validate:"gte=0"`
	Runahead         netsim.SimulationTime `yaml:"runahead"`
	StopTime         netsim.SimulationTime `yaml:"stop_time" validate:"required"`
	BootstrapEndTime netsim.SimulationTime `yaml:"bootstrap_end_time"`
	Workers          int            `yaml:"workers" validate:"gte=0"`
	UseShortestPath  bool           `yaml:"use_shortest_path"`
	LogLevel         string         `yaml:"log_level" validate:"omitempty,oneof=trace debug info warn error"`

	SocketSendBuffer     uint64 `yaml:"socket_send_buffer"`
	SocketRecvBuffer     uint64 `yaml:"socket_recv_buffer"`
	SocketSendAutotune   bool   `yaml:"socket_send_autotune"`
	SocketRecvAutotune   bool   `yaml:"socket_recv_autotune"`
	InterfaceBuffer      uint64 `yaml:"interface_buffer"`
	InterfaceQdisc       string `yaml:"interface_qdisc"`

	GraphPath string       `yaml:"graph_path" validate:"required"`
	Hosts     []HostOptions `yaml:"hosts" validate:"dive"`
}

// IterHosts calls fn for each configured host, in document order,
// stopping and returning the first non-nil error (spec.md §6:
// "iterHosts(callback)").
func (o *Options) IterHosts(fn func(HostOptions) error) error {
	for _, h := range o.Hosts {
		if err := fn(h); err != nil {
			return err
		}
	}
	return nil
}

// HostOptions describes one configured host entry, possibly expanding to
// several virtual hosts when Quantity > 1.
type HostOptions struct {
	Name              string  `yaml:"name" validate:"required"`
	Quantity          int     `yaml:"quantity" validate:"gte=0"`
	IPAddr            *string `yaml:"ip_addr"`
	NetworkNodeID     string  `yaml:"network_node_id" validate:"required"`
	LogLevel          string  `yaml:"log_level"`
	HeartbeatLogLevel string  `yaml:"heartbeat_log_level"`
	HeartbeatLogInfo  string  `yaml:"heartbeat_log_info"`
	HeartbeatInterval netsim.SimulationTime `yaml:"heartbeat_interval"`
	PcapDirectory     string  `yaml:"pcap_directory"`
	BandwidthDown     *uint64 `yaml:"bandwidth_down"`
	BandwidthUp       *uint64 `yaml:"bandwidth_up"`
	Processes         []ProcessOptions `yaml:"processes" validate:"dive"`
}

// EffectiveQuantity returns Quantity, treating the zero value as 1 (a
// host entry with no explicit quantity registers exactly one host).
func (h HostOptions) EffectiveQuantity() int {
	if h.Quantity == 0 {
		return 1
	}
	return h.Quantity
}

// ParsedIP parses IPAddr, returning (nil, nil) when unset.
func (h HostOptions) ParsedIP() (net.IP, error) {
	if h.IPAddr == nil {
		return nil, nil
	}
	ip := net.ParseIP(*h.IPAddr)
	if ip == nil {
		return nil, fmt.Errorf("host %q: invalid ip_addr %q", h.Name, *h.IPAddr)
	}
	return ip, nil
}

// IterProcesses calls fn for each configured process, in document order,
// stopping and returning the first non-nil error.
func (h HostOptions) IterProcesses(fn func(ProcessOptions) error) error {
	for _, p := range h.Processes {
		if err := fn(p); err != nil {
			return err
		}
	}
	return nil
}

// ProcessOptions describes one virtual process entry.
type ProcessOptions struct {
	RawPath     string   `yaml:"path" validate:"required"`
	Args        []string `yaml:"args"`
	Quantity    int      `yaml:"quantity" validate:"gte=0"`
	Environment string   `yaml:"environment"`
	StartTime   netsim.SimulationTime `yaml:"start_time"`
	StopTime    netsim.SimulationTime `yaml:"stop_time"`
}

// EffectiveQuantity returns Quantity, treating the zero value as 1.
func (p ProcessOptions) EffectiveQuantity() int {
	if p.Quantity == 0 {
		return 1
	}
	return p.Quantity
}

// IterArgs calls fn for each user-supplied argument, in order.
func (p ProcessOptions) IterArgs(fn func(string) error) error {
	for _, a := range p.Args {
		if err := fn(a); err != nil {
			return err
		}
	}
	return nil
}

var validate = validator.New()

// Load reads and strictly parses the YAML document at path, then runs
// struct-tag validation over the result. Unknown top-level keys are a
// hard error (KnownFields(true)), matching cmd/default_config.go's
// strict-parsing discipline in the teacher repo.
func Load(path string) (*Options, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}

	var opts Options
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&opts); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}

	if err := validate.Struct(&opts); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}

	for i, h := range opts.Hosts {
		if h.EffectiveQuantity() > 1 && h.IPAddr != nil {
			return nil, fmt.Errorf("config: host %q: pinned ip_addr requires quantity <= 1, got %d", h.Name, h.EffectiveQuantity())
		}
		_ = i
	}

	return &opts, nil
}
