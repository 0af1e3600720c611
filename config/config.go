// Package config loads wirebit LinkModel and endpoint parameters from
// YAML, the way a test harness or simulation driver describes its
// topology declaratively instead of constructing Go literals.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/wirebit/wirebit"
	"github.com/wirebit/wirebit/can"
	"github.com/wirebit/wirebit/ethernet"
	"github.com/wirebit/wirebit/serial"
)

// LinkModel mirrors wirebit.LinkModel with YAML tags.
type LinkModel struct {
	BaseLatencyNs int64   `yaml:"base_latency_ns"`
	JitterNs      int64   `yaml:"jitter_ns"`
	DropProb      float64 `yaml:"drop_prob"`
	DupProb       float64 `yaml:"dup_prob"`
	CorruptProb   float64 `yaml:"corrupt_prob"`
	BandwidthBps  uint64  `yaml:"bandwidth_bps"`
	Seed          uint64  `yaml:"seed"`
}

// ToWirebit converts m to a *wirebit.LinkModel.
func (m LinkModel) ToWirebit() *wirebit.LinkModel {
	return &wirebit.LinkModel{
		BaseLatencyNs: m.BaseLatencyNs,
		JitterNs:      m.JitterNs,
		DropProb:      m.DropProb,
		DupProb:       m.DupProb,
		CorruptProb:   m.CorruptProb,
		BandwidthBps:  m.BandwidthBps,
		Seed:          m.Seed,
	}
}

// SerialConfig mirrors serial.Config with YAML tags.
type SerialConfig struct {
	Baud         uint64 `yaml:"baud"`
	DataBits     uint8  `yaml:"data_bits"`
	StopBits     uint8  `yaml:"stop_bits"`
	Parity       string `yaml:"parity"` // "none", "even", "odd"
	MaxChunkRead int    `yaml:"max_chunk_read"`
}

// ToWirebit converts c to a serial.Config.
func (c SerialConfig) ToWirebit() (serial.Config, error) {
	var p serial.Parity
	switch c.Parity {
	case "", "none":
		p = serial.ParityNone
	case "even":
		p = serial.ParityEven
	case "odd":
		p = serial.ParityOdd
	default:
		return serial.Config{}, fmt.Errorf("%w: unknown parity %q", wirebit.ErrInvalidArgument, c.Parity)
	}
	return serial.Config{
		Baud:         c.Baud,
		DataBits:     c.DataBits,
		StopBits:     c.StopBits,
		Parity:       p,
		MaxChunkRead: c.MaxChunkRead,
	}, nil
}

// CANConfig mirrors can.Config with YAML tags.
type CANConfig struct {
	Bitrate      uint64 `yaml:"bitrate"`
	Loopback     bool   `yaml:"loopback"`
	ListenOnly   bool   `yaml:"listen_only"`
	RxBufferSize int    `yaml:"rx_buffer_size"`
}

// ToWirebit converts c to a can.Config.
func (c CANConfig) ToWirebit() can.Config {
	return can.Config{
		Bitrate:      c.Bitrate,
		Loopback:     c.Loopback,
		ListenOnly:   c.ListenOnly,
		RxBufferSize: c.RxBufferSize,
	}
}

// EthernetConfig mirrors ethernet.Config with YAML tags.
type EthernetConfig struct {
	MAC          string `yaml:"mac"`
	BandwidthBps uint64 `yaml:"bandwidth_bps"`
	Promiscuous  bool   `yaml:"promiscuous"`
	RxBufferSize int    `yaml:"rx_buffer_size"`
}

// ToWirebit converts c to an ethernet.Config, parsing its MAC address
// in colon-separated hex form (e.g. "aa:bb:cc:dd:ee:ff").
func (c EthernetConfig) ToWirebit() (ethernet.Config, error) {
	var mac ethernet.MAC
	if c.MAC != "" {
		var b [6]int
		n, err := fmt.Sscanf(c.MAC, "%02x:%02x:%02x:%02x:%02x:%02x", &b[0], &b[1], &b[2], &b[3], &b[4], &b[5])
		if err != nil || n != 6 {
			return ethernet.Config{}, fmt.Errorf("%w: invalid mac %q", wirebit.ErrInvalidArgument, c.MAC)
		}
		for i, v := range b {
			mac[i] = byte(v)
		}
	}
	return ethernet.Config{
		MAC:          mac,
		BandwidthBps: c.BandwidthBps,
		Promiscuous:  c.Promiscuous,
		RxBufferSize: c.RxBufferSize,
	}, nil
}

// Document is the top-level YAML document: one link model plus the
// named endpoints that ride over it.
type Document struct {
	Link      LinkModel                 `yaml:"link"`
	Serial    map[string]SerialConfig   `yaml:"serial"`
	CAN       map[string]CANConfig      `yaml:"can"`
	Ethernet  map[string]EthernetConfig `yaml:"ethernet"`
}

// Load parses a Document from YAML bytes.
func Load(data []byte) (*Document, error) {
	var d Document
	if err := yaml.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("%w: %v", wirebit.ErrFormat, err)
	}
	return &d, nil
}

// LoadFile reads and parses a Document from a YAML file.
func LoadFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", wirebit.ErrIOError, err)
	}
	return Load(data)
}
