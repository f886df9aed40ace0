package services

import (
	"slices"

	"route-assignment-service/internal/normalize"
)

// Substitute service types, in strict priority order, for non-electric routes.
var defaultFallbackChains = map[string][]string{
	normalize.CustomDeliveryVan14: {normalize.CustomDeliveryVan14, normalize.CustomDeliveryVan16, normalize.ExtraLargeVan},
	normalize.CustomDeliveryVan16: {normalize.CustomDeliveryVan16, normalize.ExtraLargeVan},
	normalize.ExtraLargeVan:       {normalize.ExtraLargeVan, normalize.CustomDeliveryVan16},
	normalize.P31DeliveryTruck:    {normalize.P31DeliveryTruck},
}

// FallbackChain returns the ordered service types a route may be served by.
// The route's own type always comes first. Electric routes never fall back,
// whatever the overrides say.
func FallbackChain(cat *normalize.Catalog, serviceType string, overrides map[string][]string) []string {
	if cat.IsElectric(serviceType) {
		return []string{serviceType}
	}

	chain, ok := overrides[serviceType]
	if !ok {
		chain, ok = defaultFallbackChains[serviceType]
	}
	if !ok {
		return []string{serviceType}
	}

	out := []string{serviceType}
	for _, st := range chain {
		if !slices.Contains(out, st) {
			out = append(out, st)
		}
	}
	return out
}
