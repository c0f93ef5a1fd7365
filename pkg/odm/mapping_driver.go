package odm

import "fmt"

// MappingDriver loads document mappings from some source (struct tags, YAML
// files, ...).
type MappingDriver interface {
	// LoadMetadataForClass fills md for className.
	LoadMetadataForClass(className string, md *ClassMetadata) error
	// AllClassNames lists every class the driver maps.
	AllClassNames() ([]string, error)
	// IsTransient reports whether className is NOT mapped by this driver.
	IsTransient(className string) bool
}

// ChainDriver consults drivers in order; the first driver that maps a class
// owns it.
type ChainDriver struct {
	drivers []MappingDriver
}

var _ MappingDriver = (*ChainDriver)(nil)

// NewChainDriver builds a chain; nil drivers are skipped.
func NewChainDriver(drivers ...MappingDriver) *ChainDriver {
	chain := &ChainDriver{}
	for _, driver := range drivers {
		if driver != nil {
			chain.drivers = append(chain.drivers, driver)
		}
	}
	return chain
}

// LoadMetadataForClass implements MappingDriver.
func (c *ChainDriver) LoadMetadataForClass(className string, md *ClassMetadata) error {
	for _, driver := range c.drivers {
		if driver.IsTransient(className) {
			continue
		}
		return driver.LoadMetadataForClass(className, md)
	}
	return fmt.Errorf("odm: %s: %w", className, ErrNotManaged)
}

// AllClassNames implements MappingDriver.
func (c *ChainDriver) AllClassNames() ([]string, error) {
	seen := make(map[string]struct{})
	var names []string
	for _, driver := range c.drivers {
		found, err := driver.AllClassNames()
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

// IsTransient implements MappingDriver.
func (c *ChainDriver) IsTransient(className string) bool {
	for _, driver := range c.drivers {
		if !driver.IsTransient(className) {
			return false
		}
	}
	return true
}
