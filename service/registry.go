package service

import (
	"context"
	"sort"

	"github.com/coderi421/adkit/pager"
	"github.com/coderi421/adkit/soap"
	"github.com/coderi421/adkit/statement"
	"github.com/gotomicro/ekit/slice"
)

// Finder is the type-erased view of a Service used where the entity is only
// known at runtime, e.g. from a command line argument.
type Finder interface {
	Descriptor() Descriptor
	FindAll(ctx context.Context, base statement.Statement, opts ...pager.Option) ([]Entity, error)
	FindSome(ctx context.Context, filter statement.Statement, max int) ([]Entity, error)
	Each(ctx context.Context, base statement.Statement, fn func(rows []Entity) error) error
	PerformAction(ctx context.Context, action Action, st statement.Statement) (*UpdateResult, error)
}

type finder[T Entity] struct {
	*Service[T]
}

func toEntities[T Entity](rows []T) []Entity {
	return slice.Map[T, Entity](rows, func(idx int, src T) Entity {
		return src
	})
}

func (f finder[T]) FindAll(ctx context.Context, base statement.Statement, opts ...pager.Option) ([]Entity, error) {
	rows, err := f.All(ctx, base, opts...)
	if err != nil {
		return nil, err
	}
	return toEntities(rows), nil
}

func (f finder[T]) FindSome(ctx context.Context, filter statement.Statement, max int) ([]Entity, error) {
	rows, err := f.Some(ctx, filter, max)
	if err != nil {
		return nil, err
	}
	return toEntities(rows), nil
}

func (f finder[T]) Each(ctx context.Context, base statement.Statement, fn func(rows []Entity) error) error {
	return f.Service.Each(ctx, base, func(p *pager.Page[T]) error {
		return fn(toEntities(p.Results))
	})
}

// Erase wraps s as a Finder.
func Erase[T Entity](s *Service[T]) Finder {
	return finder[T]{Service: s}
}

type Factory func(c *soap.Client) Finder

func factory[T Entity](newFn func(c *soap.Client) *Service[T]) Factory {
	return func(c *soap.Client) Finder {
		return Erase(newFn(c))
	}
}

var registry = map[string]Factory{
	"ad-units":                factory(AdUnits),
	"companies":               factory(Companies),
	"creatives":               factory(Creatives),
	"creative-templates":      factory(CreativeTemplates),
	"custom-targeting-keys":   factory(CustomTargetingKeys),
	"custom-targeting-values": factory(CustomTargetingValues),
	"labels":                  factory(Labels),
	"licas":                   factory(LineItemCreativeAssociations),
	"line-items":              factory(LineItems),
	"orders":                  factory(Orders),
	"placements":              factory(Placements),
	"users":                   factory(Users),
	"suggested-ad-units":      factory(SuggestedAdUnits),
	"teams":                   factory(Teams),
}

// Lookup returns the factory registered under name, e.g. "labels".
func Lookup(name string) (Factory, bool) {
	f, ok := registry[name]
	return f, ok
}

// Names returns every registered name in ascending order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
