package wirebit

import "fmt"

// ShmLink is a duplex link backed by two named shared-memory FrameRings,
// giving two cooperating processes a lock-free, two-process link. The
// creator (Create) is the server and owns the shared-memory segments'
// lifetime; an attacher (Attach) is the client and swaps the TX/RX names
// so each side writes into the ring the other reads.
type ShmLink struct {
	linkCore
	txName string
	rxName string
	owner  bool
}

// Create makes a new duplex shared-memory link named name, with TX/RX
// rings of the given per-direction byte capacity. If model is non-nil it
// is installed with a fresh RNG seeded from model.Seed and a zeroed
// pacer.
func Create(name string, capacity uint64, model *LinkModel) (*ShmLink, error) {
	txName := "/" + name + "_tx"
	rxName := "/" + name + "_rx"
	tx, err := CreateShm(txName, capacity)
	if err != nil {
		return nil, fmt.Errorf("create tx ring: %w", err)
	}
	rx, err := CreateShm(rxName, capacity)
	if err != nil {
		_ = tx.Close()
		_ = UnlinkShm(txName)
		return nil, fmt.Errorf("create rx ring: %w", err)
	}
	l := &ShmLink{txName: txName, rxName: rxName, owner: true}
	l.init(NewFrameRing(tx), NewFrameRing(rx), model)
	return l, nil
}

// Attach connects to a peer's link created with Create, swapping the
// TX/RX names so this side writes into the peer's RX ring and reads
// from the peer's TX ring.
func Attach(name string, capacity uint64, model *LinkModel) (*ShmLink, error) {
	peerTx := "/" + name + "_tx"
	peerRx := "/" + name + "_rx"
	tx, err := AttachShm(peerRx, capacity) // we write where the peer reads
	if err != nil {
		return nil, fmt.Errorf("attach tx ring: %w", err)
	}
	rx, err := AttachShm(peerTx, capacity) // we read where the peer writes
	if err != nil {
		_ = tx.Close()
		return nil, fmt.Errorf("attach rx ring: %w", err)
	}
	l := &ShmLink{owner: false}
	l.init(NewFrameRing(tx), NewFrameRing(rx), model)
	return l, nil
}

// Close releases the local ring mappings. If this side is the owning
// server, it additionally unlinks the named shared-memory segments; the
// caller must ensure every attached client has detached first.
func (l *ShmLink) Close() error {
	err1 := l.tx.Close()
	err2 := l.rx.Close()
	if l.owner {
		_ = UnlinkShm(l.txName)
		_ = UnlinkShm(l.rxName)
	}
	if err1 != nil {
		return err1
	}
	return err2
}
