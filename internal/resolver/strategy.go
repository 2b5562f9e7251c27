package resolver

import (
	"context"
	"fmt"

	"FRELookup/internal/domain"
	"FRELookup/internal/ports"
)

const (
	ModeStatic  = "static"
	ModeDynamic = "dynamic"
)

// Strategy supplies the item table for a filing.
type Strategy interface {
	Name() string
	Items(ctx context.Context, documentNumber string) (domain.ItemCodeMap, error)
}

// Registry keeps a mapping from strategy names to their implementations.
type Registry struct {
	strategies map[string]Strategy
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{strategies: map[string]Strategy{}}
}

// Register adds or replaces a strategy.
func (r *Registry) Register(strategy Strategy) {
	if r.strategies == nil {
		r.strategies = map[string]Strategy{}
	}
	r.strategies[strategy.Name()] = strategy
}

// Resolve returns a strategy by name or an error if it is absent.
func (r *Registry) Resolve(name string) (Strategy, error) {
	if strategy, ok := r.strategies[name]; ok {
		return strategy, nil
	}
	return nil, fmt.Errorf("resolver strategy %s is not registered", name)
}

// StaticStrategy serves the same table for every filing.
type StaticStrategy struct {
	table domain.ItemCodeMap
}

// NewStaticStrategy copies table; nil falls back to DefaultItemCodes.
func NewStaticStrategy(table domain.ItemCodeMap) *StaticStrategy {
	if len(table) == 0 {
		table = DefaultItemCodes()
	}
	return &StaticStrategy{table: table.Clone()}
}

func (s *StaticStrategy) Name() string {
	return ModeStatic
}

func (s *StaticStrategy) Items(context.Context, string) (domain.ItemCodeMap, error) {
	return s.table.Clone(), nil
}

// Table returns a copy of the configured table.
func (s *StaticStrategy) Table() domain.ItemCodeMap {
	return s.table.Clone()
}

// DynamicStrategy asks a discoverer which items the filing actually has.
type DynamicStrategy struct {
	discoverer ports.ItemDiscoverer
}

func NewDynamicStrategy(discoverer ports.ItemDiscoverer) *DynamicStrategy {
	return &DynamicStrategy{discoverer: discoverer}
}

func (d *DynamicStrategy) Name() string {
	return ModeDynamic
}

func (d *DynamicStrategy) Items(ctx context.Context, documentNumber string) (domain.ItemCodeMap, error) {
	if d.discoverer == nil {
		return nil, fmt.Errorf("%w: no discoverer configured", domain.ErrDiscoveryFailed)
	}
	return d.discoverer.DiscoverItems(ctx, documentNumber)
}
