package app

import (
	"errors"
	"sync"

	"github.com/dkeye/Coedit/internal/domain"
	"github.com/rs/zerolog/log"
)

var ErrAddressTaken = errors.New("address already claimed")

// Directory maps direct addresses to the single connection occupying them.
// A connection may hold several addresses; an address has at most one occupant.
type Directory struct {
	mu     sync.RWMutex
	owner  map[domain.Address]domain.ConnID
	claims map[domain.ConnID][]domain.Address
}

func NewDirectory() *Directory {
	return &Directory{
		owner:  make(map[domain.Address]domain.ConnID),
		claims: make(map[domain.ConnID][]domain.Address),
	}
}

// Claim binds addr to conn. Claiming an address already held by conn is a no-op;
// one held by another connection fails with ErrAddressTaken.
func (d *Directory) Claim(conn domain.ConnID, addr domain.Address) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if cur, ok := d.owner[addr]; ok {
		if cur == conn {
			return nil
		}
		return ErrAddressTaken
	}
	d.owner[addr] = conn
	d.claims[conn] = append(d.claims[conn], addr)
	log.Debug().Str("module", "app.directory").Str("conn", string(conn)).Str("addr", string(addr)).Msg("address claimed")
	return nil
}

func (d *Directory) Resolve(addr domain.Address) (domain.ConnID, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	conn, ok := d.owner[addr]
	return conn, ok
}

// Release drops every address held by conn.
func (d *Directory) Release(conn domain.ConnID) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	addrs := d.claims[conn]
	for _, a := range addrs {
		delete(d.owner, a)
	}
	delete(d.claims, conn)
	return len(addrs)
}
