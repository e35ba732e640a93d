// Package netsim provides the core discrete-event network simulation
// controller: the top-level coordinator that owns topology, addressing,
// DNS, randomness and run-time boundaries, and drives one or more worker
// managers through bounded time windows.
//
// # Reading Guide
//
// Start with these to understand the controller's shape:
//   - types.go: host/process parameters passed across the controller/manager boundary
//   - manager/manager.go: the Manager interface workers implement, and the
//     capability object the controller exposes back to them
//   - netsim/controller: the orchestrator state machine
//
// # Architecture
//
// netsim defines the value types shared by the rest of the module (the
// worker interfaces live in netsim/manager); implementations live in
// sub-packages:
//   - netsim/netgraph: topology graph loading
//   - netsim/ipassign: IP address assignment (pinned + auto)
//   - netsim/dns: name/address registry
//   - netsim/routing: shortest-path precomputation and the routing oracle
//   - netsim/timewindow: the conservative time-window protocol
//   - netsim/hostreg: two-phase host/process registration
//   - netsim/manager: the Manager interface and netsim/manager/inproc, a
//     reference in-process implementation
//   - netsim/controller: composes all of the above and runs the simulation
package netsim
