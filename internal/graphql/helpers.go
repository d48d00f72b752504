package graphql

import (
	"encoding/base64"
	"fmt"
	"sort"
	"strings"

	"github.com/tournevent/dhlexpress/pkg/shipper"
)

func partyInputToModel(field string, input *PartyInput) (shipper.Party, error) {
	if input == nil {
		return shipper.Party{}, shipper.NewInputError(field, "is required", shipper.ErrInvalidAddress)
	}
	addr := shipper.Address{
		StreetLines: input.StreetLines,
		City:        input.City,
		PostalCode:  input.PostalCode,
		CountryCode: input.CountryCode,
	}
	if input.StreetLines2 != nil {
		addr.StreetLines2 = *input.StreetLines2
	}
	if input.StreetLines3 != nil {
		addr.StreetLines3 = *input.StreetLines3
	}

	var opts []shipper.PartyOption
	if input.CompanyName != nil {
		opts = append(opts, shipper.WithCompany(*input.CompanyName))
	}
	if input.Email != nil {
		opts = append(opts, shipper.WithEmail(*input.Email))
	}

	party, err := shipper.NewParty(input.PersonName, addr, input.Phone, opts...)
	if err != nil {
		return shipper.Party{}, fmt.Errorf("%s: %w", field, err)
	}
	return party, nil
}

func packagesInputToModel(inputs []*PackageInput) ([]shipper.Package, error) {
	packages := make([]shipper.Package, 0, len(inputs))
	for i, input := range inputs {
		if input == nil {
			return nil, shipper.NewInputError(fmt.Sprintf("packages[%d]", i), "is null", shipper.ErrInvalidPackage)
		}
		pkg, err := shipper.NewPackage(input.Weight, input.Length, input.Width, input.Height)
		if err != nil {
			return nil, fmt.Errorf("packages[%d]: %w", i, err)
		}
		pkg.Price = input.Price
		if input.Description != nil {
			pkg.Description = *input.Description
		}
		packages = append(packages, pkg)
	}
	return packages, nil
}

// shipmentInputToModel builds a shipment from the API input. Unset optional
// fields keep the NewShipment defaults and are validated later by Derive.
func shipmentInputToModel(input CreateShipmentInput) (*shipper.Shipment, error) {
	sender, err := partyInputToModel("sender", input.Sender)
	if err != nil {
		return nil, err
	}
	receiver, err := partyInputToModel("receiver", input.Receiver)
	if err != nil {
		return nil, err
	}
	packages, err := packagesInputToModel(input.Packages)
	if err != nil {
		return nil, err
	}

	s := shipper.NewShipment(sender, receiver, packages, shipper.CustomsPayment(strings.ToUpper(input.CustomsPayment)))
	if input.ShipTime != nil {
		s.ShipTime = *input.ShipTime
	}
	if input.RequestPickup != nil {
		s.RequestPickup = *input.RequestPickup
	}
	if input.PickupTime != nil {
		s.PickupTime = *input.PickupTime
	}
	if input.ServiceType != nil {
		s.ServiceType = shipper.ServiceType(strings.ToUpper(*input.ServiceType))
	}
	if input.Currency != nil {
		s.Currency = strings.ToUpper(*input.Currency)
	}
	if input.Unit != nil {
		s.Unit = shipper.UnitSystem(strings.ToUpper(*input.Unit))
	}
	if input.CustomsContent != nil {
		s.CustomsContent = shipper.CustomsContent(strings.ToUpper(*input.CustomsContent))
	}
	if input.CustomsDescription != nil {
		s.CustomsDescription = *input.CustomsDescription
	}
	s.CustomsValue = input.CustomsValue
	if input.RegistrationNumber != nil {
		s.RegistrationNumber = &shipper.RegistrationNumber{
			Number:            input.RegistrationNumber.Number,
			TypeCode:          input.RegistrationNumber.TypeCode,
			IssuerCountryCode: input.RegistrationNumber.IssuerCountryCode,
		}
	}
	if input.ReferenceCode != nil {
		s.ReferenceCode = *input.ReferenceCode
	}
	if input.SpecialPickupInstruction != nil {
		s.SpecialPickupInstruction = *input.SpecialPickupInstruction
	}
	return s, nil
}

func errorsToPayload(notifications []shipper.Notification) []ErrorPayload {
	out := make([]ErrorPayload, len(notifications))
	for i, n := range notifications {
		out[i] = ErrorPayload{Message: n.Message}
		if n.Code != "" {
			out[i].Code = stringPtr(n.Code)
		}
	}
	return out
}

func shipmentToPayload(s *shipper.Shipment, resp *shipper.ShipmentResponse) *CreateShipmentPayload {
	payload := &CreateShipmentPayload{
		Success:         resp.Success,
		Errors:          errorsToPayload(resp.Errors),
		TrackingNumbers: resp.TrackingNumbers,
	}
	if resp.IdentificationNumber != "" {
		payload.IdentificationNumber = stringPtr(resp.IdentificationNumber)
	}
	if resp.DispatchNumber != "" {
		payload.DispatchNumber = stringPtr(resp.DispatchNumber)
	}
	if len(resp.LabelBytes) > 0 {
		payload.Label = stringPtr(base64.StdEncoding.EncodeToString(resp.LabelBytes))
	}
	if d := s.Derived(); d != nil {
		payload.Derived = &DerivedPayload{
			ServiceType:        string(d.ServiceType),
			DropOffType:        string(d.DropOffType),
			CustomsDescription: d.CustomsDescription,
			CustomsValue:       d.CustomsValue.StringFixed(2),
			ShipTimestamp:      d.ShipTimestamp,
			PickupTimestamp:    d.PickupTimestamp,
		}
	}
	return payload
}

func trackingEventToPayload(ev shipper.TrackingEvent) *TrackingEventPayload {
	return &TrackingEventPayload{
		Waybill:             ev.Waybill,
		Code:                ev.Code,
		Description:         ev.Description,
		LocationCode:        ev.LocationCode,
		LocationDescription: ev.LocationDescription,
		Date:                ev.Date,
		Time:                ev.Time,
	}
}

func trackingToPayload(resp *shipper.TrackingResponse) *TrackPayload {
	payload := &TrackPayload{
		Success:        resp.Success,
		Errors:         errorsToPayload(resp.Errors),
		ShipmentEvents: make([]*TrackingEventPayload, 0, len(resp.ShipmentEvents)),
		Pieces:         make([]*PieceEventsPayload, 0, len(resp.PieceEvents)),
	}
	for _, ev := range resp.ShipmentEvents {
		payload.ShipmentEvents = append(payload.ShipmentEvents, trackingEventToPayload(ev))
	}

	plates := make([]string, 0, len(resp.PieceEvents))
	for plate := range resp.PieceEvents {
		plates = append(plates, plate)
	}
	sort.Strings(plates)
	for _, plate := range plates {
		piece := &PieceEventsPayload{
			LicensePlate: plate,
			Events:       make([]*TrackingEventPayload, 0, len(resp.PieceEvents[plate])),
		}
		for _, ev := range resp.PieceEvents[plate] {
			piece.Events = append(piece.Events, trackingEventToPayload(ev))
		}
		payload.Pieces = append(payload.Pieces, piece)
	}
	return payload
}

func proofOfDeliveryToPayload(resp *shipper.ProofOfDeliveryResponse) *ProofOfDeliveryPayload {
	payload := &ProofOfDeliveryPayload{
		Success: resp.Success,
		Errors:  errorsToPayload(resp.Errors),
	}
	if len(resp.Document) > 0 {
		payload.Document = stringPtr(base64.StdEncoding.EncodeToString(resp.Document))
	}
	return payload
}

func stringPtr(s string) *string {
	return &s
}
