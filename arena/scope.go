package arena

import (
	"go.uber.org/zap"

	kwire "github.com/karmakrafts/kWire-sub000"
	"github.com/karmakrafts/kWire-sub000/abi"
	"github.com/karmakrafts/kWire-sub000/errors"
)

type scopeState uint8

const (
	scopeUnopened scopeState = iota
	scopeOpen
	scopeClosed
)

// Scope ties temporary native allocations to a lexical block. A freshly
// created scope is unopened and costs nothing; the first allocation
// captures a frame marker lazily and opens it. Closing releases the
// arena cursor back to the marker.
//
// Callers wrap the owning block with a deferred Close so release fires
// on every exit path, including panics and error returns:
//
//	s := a.Scope()
//	defer s.Close()
type Scope struct {
	arena   *Arena
	mark    Marker
	state   scopeState
	byValue map[any]kwire.Address
	byAddr  map[kwire.Address]any
}

// Scope creates a new unopened scope on the arena. Scopes must nest
// LIFO on a single call stack; this is assumed by construction, not
// detected at runtime.
func (a *Arena) Scope() *Scope {
	return &Scope{arena: a}
}

// Allocate reserves size bytes at the given alignment inside the scope.
// The first call opens the scope, capturing the arena's current top as
// the frame marker. Allocating against a closed scope fails with a
// double_open error.
func (s *Scope) Allocate(size, align uintptr) (kwire.Address, error) {
	switch s.state {
	case scopeClosed:
		return kwire.Null, errors.DoubleOpen()
	case scopeUnopened:
		s.mark = s.arena.Mark()
		s.state = scopeOpen
		Logger().Debug("scope opened", zap.Int("block", s.mark.block), zap.Uintptr("offset", s.mark.offset))
	}
	return s.arena.allocate(size, align)
}

// AllocateType reserves space for one value of the described type, using
// the arena's layout calculator for size and alignment.
func (s *Scope) AllocateType(t *abi.Type) (kwire.Address, error) {
	layout, err := s.arena.calc.Calculate(t)
	if err != nil {
		return kwire.Null, err
	}
	return s.Allocate(uintptr(layout.Size), uintptr(layout.Align))
}

// Close releases the scope. An open scope rewinds the arena cursor to
// the frame marker; an unopened scope releases nothing. Closing is
// idempotent. After Close the scope cannot be reused.
func (s *Scope) Close() error {
	switch s.state {
	case scopeClosed:
		return nil
	case scopeOpen:
		s.arena.Release(s.mark)
		Logger().Debug("scope closed", zap.Int("block", s.mark.block), zap.Uintptr("offset", s.mark.offset))
	}
	s.state = scopeClosed
	s.byValue = nil
	s.byAddr = nil
	return nil
}

// AddLocal registers a bijective association between a source-level
// value and the native slot it was boxed into. Both directions are
// unique: re-registering either the value or the address fails with an
// already_registered error. The value must be comparable.
func (s *Scope) AddLocal(value any, addr kwire.Address) error {
	if s.state == scopeClosed {
		return errors.DoubleOpen()
	}
	if s.byValue == nil {
		s.byValue = make(map[any]kwire.Address)
		s.byAddr = make(map[kwire.Address]any)
	}
	if _, ok := s.byValue[value]; ok {
		return errors.AlreadyRegistered("value already has a local slot")
	}
	if _, ok := s.byAddr[addr]; ok {
		return errors.AlreadyRegistered("address already bound to a local")
	}
	s.byValue[value] = addr
	s.byAddr[addr] = value
	return nil
}

// LocalAddress returns the native slot registered for value.
func (s *Scope) LocalAddress(value any) (kwire.Address, bool) {
	addr, ok := s.byValue[value]
	return addr, ok
}

// LocalValue returns the source-level value registered at addr.
func (s *Scope) LocalValue(addr kwire.Address) (any, bool) {
	value, ok := s.byAddr[addr]
	return value, ok
}
