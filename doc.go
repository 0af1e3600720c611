// Package wirebit implements a wire-level link simulation and transport
// layer for byte-, frame-, and packet-oriented buses.
//
// It provides the self-delimiting wirebit frame format, a lock-free
// single-producer/single-consumer byte ring usable in named shared
// memory, a frame ring built on top of it, and a deterministic link
// impairment model (latency, jitter, bandwidth pacing, drop, duplicate,
// corrupt). Protocol endpoints (serial, CAN, Ethernet) live in the
// wirebit/serial, wirebit/can, and wirebit/ethernet subpackages and
// consume the Link interface defined here.
package wirebit
