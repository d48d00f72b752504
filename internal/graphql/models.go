package graphql

import (
	"time"

	"github.com/shopspring/decimal"
)

// PartyInput is a sender or receiver as sent by API clients.
type PartyInput struct {
	PersonName   string  `json:"personName"`
	CompanyName  *string `json:"companyName,omitempty"`
	Phone        string  `json:"phone"`
	Email        *string `json:"email,omitempty"`
	StreetLines  string  `json:"streetLines"`
	StreetLines2 *string `json:"streetLines2,omitempty"`
	StreetLines3 *string `json:"streetLines3,omitempty"`
	City         string  `json:"city"`
	PostalCode   string  `json:"postalCode"`
	CountryCode  string  `json:"countryCode"`
}

// PackageInput is one physical piece. Weight in kg, dimensions in cm.
type PackageInput struct {
	Weight      float64          `json:"weight"`
	Length      float64          `json:"length"`
	Width       float64          `json:"width"`
	Height      float64          `json:"height"`
	Price       *decimal.Decimal `json:"price,omitempty"`
	Description *string          `json:"description,omitempty"`
}

type RegistrationNumberInput struct {
	Number            string `json:"number"`
	TypeCode          string `json:"typeCode"`
	IssuerCountryCode string `json:"issuerCountryCode"`
}

// CreateShipmentInput is the input of dhl_create_shipment.
type CreateShipmentInput struct {
	Sender   *PartyInput     `json:"sender"`
	Receiver *PartyInput     `json:"receiver"`
	Packages []*PackageInput `json:"packages"`

	ShipTime      *time.Time `json:"shipTime,omitempty"`
	RequestPickup *bool      `json:"requestPickup,omitempty"`
	PickupTime    *time.Time `json:"pickupTime,omitempty"`

	ServiceType    *string `json:"serviceType,omitempty"`
	Currency       *string `json:"currency,omitempty"`
	Unit           *string `json:"unit,omitempty"`
	CustomsPayment string  `json:"customsPayment"`
	CustomsContent *string `json:"customsContent,omitempty"`

	CustomsDescription *string          `json:"customsDescription,omitempty"`
	CustomsValue       *decimal.Decimal `json:"customsValue,omitempty"`

	RegistrationNumber       *RegistrationNumberInput `json:"registrationNumber,omitempty"`
	ReferenceCode            *string                  `json:"referenceCode,omitempty"`
	SpecialPickupInstruction *string                  `json:"specialPickupInstruction,omitempty"`
}

// TrackInput is the input of dhl_track.
type TrackInput struct {
	Waybills []string `json:"waybills"`
}

// ProofOfDeliveryInput is the input of dhl_proof_of_delivery.
type ProofOfDeliveryInput struct {
	Waybill  string `json:"waybill"`
	Detailed *bool  `json:"detailed,omitempty"`
}

// CreateShipmentPayload is returned by dhl_create_shipment. Derived echoes
// the values the service computed for the shipment.
type CreateShipmentPayload struct {
	Success              bool            `json:"success"`
	Errors               []ErrorPayload  `json:"errors"`
	IdentificationNumber *string         `json:"identificationNumber"`
	TrackingNumbers      []string        `json:"trackingNumbers"`
	DispatchNumber       *string         `json:"dispatchNumber"`
	Label                *string         `json:"label"` // base64
	Derived              *DerivedPayload `json:"derived"`
}

type DerivedPayload struct {
	ServiceType        string `json:"serviceType"`
	DropOffType        string `json:"dropOffType"`
	CustomsDescription string `json:"customsDescription"`
	CustomsValue       string `json:"customsValue"`
	ShipTimestamp      string `json:"shipTimestamp"`
	PickupTimestamp    string `json:"pickupTimestamp,omitempty"`
}

type ErrorPayload struct {
	Code    *string `json:"code"`
	Message string  `json:"message"`
}

type TrackingEventPayload struct {
	Waybill             string `json:"waybill,omitempty"`
	Code                string `json:"code"`
	Description         string `json:"description,omitempty"`
	LocationCode        string `json:"locationCode"`
	LocationDescription string `json:"locationDescription"`
	Date                string `json:"date,omitempty"`
	Time                string `json:"time,omitempty"`
}

type PieceEventsPayload struct {
	LicensePlate string                  `json:"licensePlate"`
	Events       []*TrackingEventPayload `json:"events"`
}

// TrackPayload is returned by dhl_track. Pieces are sorted by license plate.
type TrackPayload struct {
	Success        bool                    `json:"success"`
	Errors         []ErrorPayload          `json:"errors"`
	ShipmentEvents []*TrackingEventPayload `json:"shipmentEvents"`
	Pieces         []*PieceEventsPayload   `json:"pieces"`
}

// ProofOfDeliveryPayload is returned by dhl_proof_of_delivery.
type ProofOfDeliveryPayload struct {
	Success  bool           `json:"success"`
	Errors   []ErrorPayload `json:"errors"`
	Document *string        `json:"document"` // base64
}
