package shipper_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tournevent/dhlexpress/pkg/shipper"
)

func TestNewParty(t *testing.T) {
	p, err := shipper.NewParty("Jane Doe", shipper.Address{
		StreetLines: "Hauptstrasse 1",
		CountryCode: " de",
	}, "+49341000000", shipper.WithEmail("jane@example.com"))

	require.NoError(t, err)
	assert.Equal(t, "DE", p.CountryCode)
	assert.Equal(t, "Jane Doe", p.CompanyName)
	assert.Equal(t, "Jane Doe", p.Company())
	assert.Equal(t, "jane@example.com", p.Email)
}

func TestNewParty_WithCompany(t *testing.T) {
	p, err := shipper.NewParty("Jane Doe", shipper.Address{StreetLines: "Street 1", CountryCode: "DE"}, "",
		shipper.WithCompany("ACME GmbH"))

	require.NoError(t, err)
	assert.Equal(t, "ACME GmbH", p.Company())
}

func TestNewParty_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		person string
		addr   shipper.Address
	}{
		{"no person", " ", shipper.Address{StreetLines: "Street 1", CountryCode: "DE"}},
		{"no street", "Jane", shipper.Address{CountryCode: "DE"}},
		{"long country code", "Jane", shipper.Address{StreetLines: "Street 1", CountryCode: "DEU"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := shipper.NewParty(tt.person, tt.addr, "")

			assert.ErrorIs(t, err, shipper.ErrInvalidAddress)
			assert.ErrorIs(t, err, shipper.ErrInvalidInput)
		})
	}
}

func TestAddress_Validate_QuotesCountryCode(t *testing.T) {
	err := shipper.Address{StreetLines: "Street 1", CountryCode: `D"E`}.Validate()

	assert.ErrorContains(t, err, `got "D\"E"`)
}

func TestParty_CompanyFallback(t *testing.T) {
	p := shipper.Party{PersonName: "Jane"}
	assert.Equal(t, "Jane", p.Company())
}

func TestNewPackage(t *testing.T) {
	pkg, err := shipper.NewPackage(1.5, 30, 20, 10)
	require.NoError(t, err)

	withCustoms := pkg.WithCustoms(decimal.RequireFromString("12.5"), "Books")

	assert.Nil(t, pkg.Price, "WithCustoms returns a copy")
	require.NotNil(t, withCustoms.Price)
	assert.Equal(t, "12.50", withCustoms.Price.StringFixed(2))
	assert.Equal(t, "Books", withCustoms.Description)
}

func TestNewPackage_Invalid(t *testing.T) {
	for _, dims := range [][4]float64{{0, 1, 1, 1}, {1, -1, 1, 1}, {1, 1, 0, 1}, {1, 1, 1, 0}} {
		_, err := shipper.NewPackage(dims[0], dims[1], dims[2], dims[3])
		assert.ErrorIs(t, err, shipper.ErrInvalidPackage, dims)
	}
}

func TestNewShipment_Defaults(t *testing.T) {
	s := shipper.NewShipment(shipper.Party{}, shipper.Party{}, nil, shipper.CustomsPaymentReceiver)

	assert.Equal(t, shipper.CurrencyEUR, s.Currency)
	assert.Equal(t, shipper.UnitMetric, s.Unit)
	assert.Equal(t, shipper.ContentDocuments, s.CustomsContent)
	assert.Equal(t, shipper.CustomsPaymentReceiver, s.CustomsPayment)
	assert.False(t, s.Submitted())
	assert.Empty(t, s.IdentificationNumber())
	assert.Nil(t, s.TrackingNumbers())
	assert.Nil(t, s.LabelBytes())
	assert.Empty(t, s.DispatchNumber())
}

func TestShipment_Attach(t *testing.T) {
	s := shipper.NewShipment(shipper.Party{}, shipper.Party{}, nil, shipper.CustomsPaymentSender)
	resp := &shipper.ShipmentResponse{
		Response:             shipper.Response{Success: true},
		IdentificationNumber: "123",
		TrackingNumbers:      []string{"A1", "A2"},
		DispatchNumber:       "CBJ1",
		LabelBytes:           []byte("%PDF"),
	}

	require.NoError(t, s.Attach(resp))

	assert.True(t, s.Submitted())
	assert.Same(t, resp, s.Result())
	assert.Equal(t, "123", s.IdentificationNumber())
	assert.Equal(t, []string{"A1", "A2"}, s.TrackingNumbers())
	assert.Equal(t, "CBJ1", s.DispatchNumber())
	assert.Equal(t, []byte("%PDF"), s.LabelBytes())

	err := s.Attach(&shipper.ShipmentResponse{Response: shipper.Response{Success: true}, IdentificationNumber: "456"})
	assert.ErrorIs(t, err, shipper.ErrAlreadySubmitted)
	assert.Equal(t, "123", s.IdentificationNumber())
}

func TestShipment_Attach_RejectsFailure(t *testing.T) {
	s := shipper.NewShipment(shipper.Party{}, shipper.Party{}, nil, shipper.CustomsPaymentSender)

	assert.ErrorIs(t, s.Attach(nil), shipper.ErrInvalidInput)
	assert.ErrorIs(t, s.Attach(&shipper.ShipmentResponse{Response: shipper.Failed()}), shipper.ErrInvalidInput)
	assert.False(t, s.Submitted())
}
