package dhl

import (
	"strconv"

	"github.com/tournevent/dhlexpress/pkg/shipper"
)

const (
	labelType                    = "PDF"
	labelTemplate                = "ECOM26_84_001"
	requestAdditionalInformation = "N"
)

// BuildShipmentRequest maps a derived shipment onto the DHL request shape.
// The pickup close time is only set when a courier pickup was requested.
func BuildShipmentRequest(s *shipper.Shipment, d *shipper.Derived, account string) *ShipmentRequest {
	req := &ShipmentRequest{
		Account:                      account,
		Currency:                     s.Currency,
		UnitOfMeasurement:            string(s.Unit),
		LabelType:                    labelType,
		LabelTemplate:                labelTemplate,
		ServiceType:                  string(d.ServiceType),
		DropOffType:                  string(d.DropOffType),
		RequestAdditionalInformation: requestAdditionalInformation,
		ShipTimestamp:                d.ShipTimestamp,
		SpecialPickupInstruction:     s.SpecialPickupInstruction,
		PaymentInfo:                  string(s.CustomsPayment),
		Content:                      string(s.CustomsContent),
		CustomsDescription:           d.CustomsDescription,
		CustomsValue:                 d.CustomsValue.StringFixed(2),
		Shipper:                      partyToAPI(s.Sender),
		Recipient:                    partyToAPI(s.Receiver),
		Packages:                     make([]RequestedPackage, len(s.Packages)),
	}
	if d.DropOffType == shipper.DropOffRequestCourier {
		req.PickupLocationCloseTime = d.PickupTimestamp
	}
	if rn := s.RegistrationNumber; rn != nil {
		req.RegistrationNumbers = []RegistrationNumber{{
			Number:                  rn.Number,
			NumberTypeCode:          rn.TypeCode,
			NumberIssuerCountryCode: rn.IssuerCountryCode,
		}}
	}

	for i, pkg := range s.Packages {
		req.Packages[i] = RequestedPackage{
			Number:                    i + 1,
			Weight:                    formatMeasure(pkg.Weight),
			Length:                    formatMeasure(pkg.Length),
			Width:                     formatMeasure(pkg.Width),
			Height:                    formatMeasure(pkg.Height),
			CustomerReferences:        s.ReferenceCode,
			PackageContentDescription: pkg.Description,
		}
	}
	return req
}

func partyToAPI(p shipper.Party) Party {
	return Party{
		Contact: Contact{
			PersonName:   p.PersonName,
			CompanyName:  p.Company(),
			PhoneNumber:  p.Phone,
			EmailAddress: p.Email,
		},
		Address: Address{
			StreetLines:  p.StreetLines,
			StreetLines2: p.StreetLines2,
			StreetLines3: p.StreetLines3,
			City:         p.City,
			PostalCode:   p.PostalCode,
			CountryCode:  p.CountryCode,
		},
	}
}

func formatMeasure(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
