package metadata

import (
	"context"
	"errors"
	"fmt"
)

// Driver produces serializer metadata for a class. Implementations return
// ErrNoMetadata (optionally wrapped) when they know nothing about the class.
type Driver interface {
	LoadMetadataForClass(ctx context.Context, class Class) (*ClassMetadata, error)
}

// DriverFunc adapts a function into a Driver.
type DriverFunc func(ctx context.Context, class Class) (*ClassMetadata, error)

// LoadMetadataForClass calls the underlying function.
func (fn DriverFunc) LoadMetadataForClass(ctx context.Context, class Class) (*ClassMetadata, error) {
	return fn(ctx, class)
}

// ClassLister is implemented by drivers that can enumerate the classes they
// describe (file based drivers, mostly).
type ClassLister interface {
	AllClassNames(ctx context.Context) ([]string, error)
}

// Chain tries each driver in order and returns the first result that is not
// ErrNoMetadata.
type Chain struct {
	drivers []Driver
}

var _ Driver = (*Chain)(nil)

// NewChain builds a chain; nil drivers are skipped.
func NewChain(drivers ...Driver) *Chain {
	chain := &Chain{}
	for _, driver := range drivers {
		chain.Add(driver)
	}
	return chain
}

// Add appends a driver to the end of the chain.
func (c *Chain) Add(driver Driver) {
	if driver == nil {
		return
	}
	c.drivers = append(c.drivers, driver)
}

// LoadMetadataForClass implements Driver.
func (c *Chain) LoadMetadataForClass(ctx context.Context, class Class) (*ClassMetadata, error) {
	if !class.Valid() {
		return nil, ErrInvalidClass
	}
	for _, driver := range c.drivers {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		md, err := driver.LoadMetadataForClass(ctx, class)
		if errors.Is(err, ErrNoMetadata) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if md != nil {
			return md, nil
		}
	}
	return nil, fmt.Errorf("metadata: chain: %s: %w", class.Name, ErrNoMetadata)
}

// AllClassNames merges the class names of every chained driver that can list
// them, preserving first-seen order.
func (c *Chain) AllClassNames(ctx context.Context) ([]string, error) {
	seen := make(map[string]struct{})
	var names []string
	for _, driver := range c.drivers {
		lister, ok := driver.(ClassLister)
		if !ok {
			continue
		}
		found, err := lister.AllClassNames(ctx)
		if err != nil {
			return nil, err
		}
		for _, name := range found {
			if _, dup := seen[name]; dup {
				continue
			}
			seen[name] = struct{}{}
			names = append(names, name)
		}
	}
	return names, nil
}

// Decorator enriches metadata after a delegate driver produced it.
type Decorator interface {
	Decorate(ctx context.Context, md *ClassMetadata) error
}

// DecoratorFunc adapts a function into a Decorator.
type DecoratorFunc func(ctx context.Context, md *ClassMetadata) error

// Decorate calls the underlying function.
func (fn DecoratorFunc) Decorate(ctx context.Context, md *ClassMetadata) error {
	return fn(ctx, md)
}

// Decorate wraps driver so every successful load runs through decorators in
// order.
func Decorate(driver Driver, decorators ...Decorator) Driver {
	if len(decorators) == 0 {
		return driver
	}
	return DriverFunc(func(ctx context.Context, class Class) (*ClassMetadata, error) {
		md, err := driver.LoadMetadataForClass(ctx, class)
		if err != nil {
			return nil, err
		}
		for _, decorator := range decorators {
			if decorator == nil {
				continue
			}
			if err := decorator.Decorate(ctx, md); err != nil {
				return nil, fmt.Errorf("metadata: decorate %s: %w", class.Name, err)
			}
		}
		return md, nil
	})
}
