package mock_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tournevent/dhlexpress/pkg/shipper"
	"github.com/tournevent/dhlexpress/pkg/shipper/mock"
)

func TestClient_CreateShipment(t *testing.T) {
	addr := shipper.Address{StreetLines: "Street 1", CountryCode: "DE"}
	sender, err := shipper.NewParty("Jane", addr, "")
	require.NoError(t, err)
	pkg, err := shipper.NewPackage(1, 1, 1, 1)
	require.NoError(t, err)
	s := shipper.NewShipment(sender, sender, []shipper.Package{
		pkg.WithCustoms(decimal.NewFromInt(1), "A"),
		pkg.WithCustoms(decimal.NewFromInt(2), "B"),
	}, shipper.CustomsPaymentSender)
	c := mock.New("dhl")

	resp, err := c.CreateShipment(context.Background(), s)

	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Len(t, resp.TrackingNumbers, 2)
	assert.Equal(t, shipper.ServiceDomestic, s.Derived().ServiceType)
	assert.True(t, s.Submitted())

	_, err = c.CreateShipment(context.Background(), s)
	assert.ErrorIs(t, err, shipper.ErrAlreadySubmitted)
}

func TestClient_TrackAndProofOfDelivery(t *testing.T) {
	c := mock.New("dhl")

	track, err := c.Track(context.Background(), []string{"1", "2"})
	require.NoError(t, err)
	assert.Len(t, track.ShipmentEvents, 2)
	assert.Equal(t, "2", track.ShipmentEvents[1].Waybill)

	pod, err := c.ProofOfDelivery(context.Background(), "1", true)
	require.NoError(t, err)
	assert.Contains(t, string(pod.Document), "detailed=true")
}
