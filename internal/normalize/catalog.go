package normalize

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrUnknownServiceType is returned when a raw value matches no catalog alias.
var ErrUnknownServiceType = errors.New("unrecognized service type")

// Canonical service types.
const (
	CustomDeliveryVan14 = "Standard Parcel - Custom Delivery Van 14ft"
	CustomDeliveryVan16 = "Standard Parcel - Custom Delivery Van 16ft"
	ExtraLargeVan       = "Standard Parcel - Extra Large Van - US"
	P31DeliveryTruck    = "4WD P31 Delivery Truck"
	RivianMedium        = "Standard Parcel Electric - Rivian MEDIUM"
	RivianLarge         = "Standard Parcel Electric - Rivian LARGE"
	ElectricStepVanXL   = "Electric Step Van - XL"
	ElectricCargoVanM   = "Electric Cargo Van - M"
	ElectricCargoVanL   = "Electric Cargo Van - L"
)

// ServiceType is one canonical vehicle/route classification and its capacity limits.
type ServiceType struct {
	Name      string
	Electric  bool
	MaxBags   int
	CubicFeet decimal.Decimal
	Aliases   []string
}

// Catalog maps free-text aliases onto canonical service types.
// A Catalog is read-only once constructed and safe for concurrent use.
type Catalog struct {
	entries []ServiceType
	byName  map[string]int
	byAlias map[string]string
}

var defaultEntries = []ServiceType{
	{
		Name:      CustomDeliveryVan14,
		MaxBags:   43,
		CubicFeet: decimal.RequireFromString("501.21"),
		Aliases:   []string{"CDV 14ft", "CDV14", "CDV 14", "Custom Delivery Van 14ft", "Custom Delivery Van 14"},
	},
	{
		Name:      CustomDeliveryVan16,
		MaxBags:   48,
		CubicFeet: decimal.RequireFromString("579.89"),
		Aliases:   []string{"CDV 16ft", "CDV16", "CDV 16", "Custom Delivery Van 16ft", "Custom Delivery Van 16"},
	},
	{
		Name:      ExtraLargeVan,
		MaxBags:   22,
		CubicFeet: decimal.RequireFromString("286.96"),
		Aliases: []string{
			"Extra Large Van", "Extra Large Van - US", "XL", "ELV",
			"Nursery Route Level 1", "Nursery Route Level 2", "Nursery Route Level 3",
			"Standard Parcel - On-Road Experience: Driver",
		},
	},
	{
		Name:      P31DeliveryTruck,
		MaxBags:   20,
		CubicFeet: decimal.RequireFromString("251.20"),
		Aliases:   []string{"AmFlex Large Vehicle", "P31", "4WD P31"},
	},
	{
		Name:      RivianMedium,
		Electric:  true,
		MaxBags:   36,
		CubicFeet: decimal.RequireFromString("370.07"),
		Aliases: []string{
			"Rivian MEDIUM", "Rivian M", "Rivian Med",
			"Nursery Route Level 1 - Electric Vehicle",
			"Nursery Route Level 2 - Electric Vehicle",
			"Nursery Route Level 3 - Electric Vehicle",
		},
	},
	{
		Name:      RivianLarge,
		Electric:  true,
		MaxBags:   48,
		CubicFeet: decimal.RequireFromString("579.89"),
		Aliases:   []string{"Rivian LARGE", "Rivian L"},
	},
	{
		Name:      ElectricStepVanXL,
		Electric:  true,
		MaxBags:   56,
		CubicFeet: decimal.RequireFromString("625.51"),
		Aliases:   []string{"Step Van", "Electric Step Van", "Step Van XL"},
	},
	{
		Name:      ElectricCargoVanM,
		Electric:  true,
		MaxBags:   20,
		CubicFeet: decimal.RequireFromString("251.20"),
		Aliases:   []string{"Electric Cargo Van M", "Cargo Van M"},
	},
	{
		Name:      ElectricCargoVanL,
		Electric:  true,
		MaxBags:   22,
		CubicFeet: decimal.RequireFromString("286.96"),
		Aliases:   []string{"Electric Cargo Van L", "Cargo Van L"},
	},
}

var defaultCatalog = mustCatalog(defaultEntries)

// DefaultCatalog returns the built-in service type catalog.
func DefaultCatalog() *Catalog { return defaultCatalog }

func mustCatalog(entries []ServiceType) *Catalog {
	c, err := NewCatalog(entries)
	if err != nil {
		panic(err)
	}
	return c
}

// NewCatalog builds a catalog. Every canonical name is implicitly its own alias.
// An alias claimed by two canonical types is an error.
func NewCatalog(entries []ServiceType) (*Catalog, error) {
	c := &Catalog{
		entries: make([]ServiceType, 0, len(entries)),
		byName:  make(map[string]int, len(entries)),
		byAlias: make(map[string]string),
	}

	for _, e := range entries {
		name := strings.TrimSpace(e.Name)
		if name == "" {
			return nil, errors.New("new catalog: service type name must not be empty")
		}
		if _, ok := c.byName[name]; ok {
			return nil, fmt.Errorf("new catalog: duplicate service type %q", name)
		}

		e.Name = name
		e.Aliases = slices.Clone(e.Aliases)
		c.byName[name] = len(c.entries)
		c.entries = append(c.entries, e)

		for _, alias := range append([]string{name}, e.Aliases...) {
			if err := c.addAlias(alias, name); err != nil {
				return nil, fmt.Errorf("new catalog: %w", err)
			}
		}
	}

	return c, nil
}

func (c *Catalog) addAlias(alias, canonical string) error {
	key := aliasKey(alias)
	if key == "" {
		return fmt.Errorf("empty alias for %q", canonical)
	}
	if existing, ok := c.byAlias[key]; ok && existing != canonical {
		return fmt.Errorf("alias %q maps to both %q and %q", alias, existing, canonical)
	}
	c.byAlias[key] = canonical
	return nil
}

// WithAliases returns a copy of the catalog extended with extra aliases per canonical name.
func (c *Catalog) WithAliases(extra map[string][]string) (*Catalog, error) {
	entries := c.Entries()
	for canonical, aliases := range extra {
		i, ok := c.byName[canonical]
		if !ok {
			return nil, fmt.Errorf("extend catalog: %w: %q", ErrUnknownServiceType, canonical)
		}
		entries[i].Aliases = append(entries[i].Aliases, aliases...)
	}
	return NewCatalog(entries)
}

// ServiceType resolves a raw value to its canonical service type.
func (c *Catalog) ServiceType(raw string) (string, error) {
	canonical, ok := c.byAlias[aliasKey(raw)]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownServiceType, raw)
	}
	return canonical, nil
}

// Lookup returns the catalog entry for a canonical name.
func (c *Catalog) Lookup(name string) (ServiceType, bool) {
	i, ok := c.byName[name]
	if !ok {
		return ServiceType{}, false
	}
	return c.entries[i], true
}

func (c *Catalog) IsElectric(name string) bool {
	e, ok := c.Lookup(name)
	return ok && e.Electric
}

// Names returns canonical names in catalog order.
func (c *Catalog) Names() []string {
	out := make([]string, 0, len(c.entries))
	for _, e := range c.entries {
		out = append(out, e.Name)
	}
	return out
}

// Entries returns a copy of all catalog entries.
func (c *Catalog) Entries() []ServiceType {
	out := make([]ServiceType, len(c.entries))
	for i, e := range c.entries {
		e.Aliases = slices.Clone(e.Aliases)
		out[i] = e
	}
	return out
}

func aliasKey(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
