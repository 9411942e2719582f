// Package session owns the persisted role. The role is a capability
// label deciding which operations the UI offers, not a security boundary;
// no credential is ever verified here.
package session

import (
	"context"
	"log"
	"sync"

	"kirana/errs"
	"kirana/store"
)

const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

func ValidRole(role string) bool {
	return role == RoleUser || role == RoleAdmin
}

type Gate struct {
	mu    sync.Mutex
	store store.Store
	role  string
	unsub func()
}

func NewGate(ctx context.Context, s store.Store) (*Gate, error) {
	g := &Gate{store: s}
	if err := g.reload(ctx); err != nil {
		return nil, err
	}
	g.unsub = s.Subscribe(func(ch store.Change) {
		if ch.Key != store.KeyRole {
			return
		}
		if err := g.reload(context.Background()); err != nil {
			log.Println("session: reload after external write failed:", err)
		}
	})
	return g, nil
}

func (g *Gate) Close() {
	if g.unsub != nil {
		g.unsub()
	}
}

func (g *Gate) reload(ctx context.Context) error {
	var role string
	if err := store.Load(ctx, g.store, store.KeyRole, &role); err != nil {
		return err
	}
	g.mu.Lock()
	g.role = role
	g.mu.Unlock()
	return nil
}

// Login sets and persists the current role.
func (g *Gate) Login(ctx context.Context, role string) error {
	if !ValidRole(role) {
		return errs.Validation("role", "must be USER or ADMIN")
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := store.Save(ctx, g.store, store.KeyRole, role); err != nil {
		return err
	}
	g.role = role
	return nil
}

// Logout clears the persisted role.
func (g *Gate) Logout(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := store.Save(ctx, g.store, store.KeyRole, ""); err != nil {
		return err
	}
	g.role = ""
	return nil
}

// CurrentRole returns the active role, or "" when logged out.
func (g *Gate) CurrentRole() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.role
}
