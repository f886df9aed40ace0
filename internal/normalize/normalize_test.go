package normalize

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRouteCode(t *testing.T) {
	tests := []struct {
		raw     string
		want    string
		wantErr bool
	}{
		{raw: "cx 105", want: "CX105"},
		{raw: "  'CX97 ", want: "CX97"},
		{raw: "cx\t1 0 5", want: "CX105"},
		{raw: "o'cx12", want: "OCX12"},
		{raw: "CX1", wantErr: true},
		{raw: "CX10005", wantErr: true},
		{raw: "", wantErr: true},
		{raw: "   ", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := RouteCode(tt.raw)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrInvalidRouteCode))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeRouteCodeIdempotent(t *testing.T) {
	inputs := []string{"cx 105", "'cx97", " Cx 1 2 3 4 ", "ab'c d", "", " cx 105", "rx12345", "x"}
	for _, in := range inputs {
		once := NormalizeRouteCode(in)
		assert.Equal(t, once, NormalizeRouteCode(once), "input %q", in)
	}
}

func TestCatalogAliasesRoundTrip(t *testing.T) {
	cat := DefaultCatalog()
	for _, e := range cat.Entries() {
		got, err := cat.ServiceType(e.Name)
		require.NoError(t, err)
		assert.Equal(t, e.Name, got)

		for _, alias := range e.Aliases {
			got, err := cat.ServiceType(alias)
			require.NoError(t, err, "alias %q", alias)
			assert.Equal(t, e.Name, got, "alias %q", alias)
		}
	}
}

func TestCatalogServiceTypeCaseAndWhitespace(t *testing.T) {
	cat := DefaultCatalog()

	got, err := cat.ServiceType("  rivian   medium ")
	require.NoError(t, err)
	assert.Equal(t, RivianMedium, got)

	got, err = cat.ServiceType("cdv14")
	require.NoError(t, err)
	assert.Equal(t, CustomDeliveryVan14, got)
}

func TestCatalogUnknownServiceType(t *testing.T) {
	_, err := DefaultCatalog().ServiceType("Hover Van 9000")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownServiceType)
	assert.Contains(t, err.Error(), "Hover Van 9000")

	// No fuzzy matching beyond the alias table.
	_, err = DefaultCatalog().ServiceType("Rivian MEDIU")
	assert.ErrorIs(t, err, ErrUnknownServiceType)
}

func TestCatalogElectric(t *testing.T) {
	cat := DefaultCatalog()
	assert.True(t, cat.IsElectric(RivianMedium))
	assert.False(t, cat.IsElectric(CustomDeliveryVan14))
	assert.False(t, cat.IsElectric("nope"))
}

func TestNewCatalogRejectsConflictingAlias(t *testing.T) {
	_, err := NewCatalog([]ServiceType{
		{Name: "A", Aliases: []string{"shared"}},
		{Name: "B", Aliases: []string{"SHARED"}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "shared")
}

func TestCatalogWithAliases(t *testing.T) {
	cat, err := DefaultCatalog().WithAliases(map[string][]string{
		CustomDeliveryVan14: {"Fourteen Footer"},
	})
	require.NoError(t, err)

	got, err := cat.ServiceType("fourteen footer")
	require.NoError(t, err)
	assert.Equal(t, CustomDeliveryVan14, got)

	_, err = DefaultCatalog().ServiceType("fourteen footer")
	assert.ErrorIs(t, err, ErrUnknownServiceType, "default catalog must stay untouched")

	_, err = DefaultCatalog().WithAliases(map[string][]string{"Not A Type": {"x"}})
	assert.ErrorIs(t, err, ErrUnknownServiceType)
}
