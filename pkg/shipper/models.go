package shipper

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ServiceType is the carrier product code used for a shipment.
type ServiceType string

const (
	ServiceDomestic       ServiceType = "N"
	ServiceEU             ServiceType = "U"
	ServiceWorld          ServiceType = "P"
	ServiceWorldDocuments ServiceType = "D"
)

// DropOffType tells the carrier how the parcel enters its network.
type DropOffType string

const (
	DropOffRegularPickup  DropOffType = "REGULAR_PICKUP"
	DropOffRequestCourier DropOffType = "REQUEST_COURIER"
)

// UnitSystem is the measurement system of weights and dimensions.
type UnitSystem string

const (
	UnitMetric   UnitSystem = "SI"
	UnitImperial UnitSystem = "SU"
)

// CustomsPayment is the incoterm deciding who pays duties.
type CustomsPayment string

const (
	// CustomsPaymentSender bills duties to the sender (Delivered Duty Unpaid).
	CustomsPaymentSender CustomsPayment = "DDU"
	// CustomsPaymentReceiver bills duties to the receiver (Delivered At Place).
	CustomsPaymentReceiver CustomsPayment = "DAP"
)

// CustomsContent classifies the shipment contents for customs.
type CustomsContent string

const (
	ContentDocuments    CustomsContent = "DOCUMENTS"
	ContentNonDocuments CustomsContent = "NON_DOCUMENTS"
)

const (
	CurrencyEUR = "EUR"
	CurrencyUSD = "USD"
)

// Address represents a postal address.
type Address struct {
	StreetLines  string
	StreetLines2 string
	StreetLines3 string
	City         string
	PostalCode   string
	CountryCode  string // ISO 3166-1 alpha-2
}

// Validate checks the address invariants.
func (a Address) Validate() error {
	if strings.TrimSpace(a.StreetLines) == "" {
		return NewInputError("street_lines", "at least one street line is required", ErrInvalidAddress)
	}
	if len(a.CountryCode) != 2 {
		return NewInputError("country_code", fmt.Sprintf("must be a 2-letter ISO code, got %q", a.CountryCode), ErrInvalidAddress)
	}
	return nil
}

// Party is a sender or receiver: an address plus contact identity.
type Party struct {
	Address
	PersonName  string
	CompanyName string
	Phone       string
	Email       string
}

// PartyOption customizes a Party built by NewParty.
type PartyOption func(*Party)

// WithCompany sets a company name distinct from the person name.
func WithCompany(name string) PartyOption {
	return func(p *Party) {
		p.CompanyName = name
	}
}

// WithEmail sets the contact email.
func WithEmail(email string) PartyOption {
	return func(p *Party) {
		p.Email = email
	}
}

// NewParty builds a validated Party. The carrier requires a company name for
// every party, so it falls back to the person name.
func NewParty(personName string, addr Address, phone string, opts ...PartyOption) (Party, error) {
	addr.CountryCode = strings.ToUpper(strings.TrimSpace(addr.CountryCode))
	p := Party{
		Address:    addr,
		PersonName: personName,
		Phone:      phone,
	}
	for _, opt := range opts {
		opt(&p)
	}
	if p.CompanyName == "" {
		p.CompanyName = p.PersonName
	}
	if err := p.Validate(); err != nil {
		return Party{}, err
	}
	return p, nil
}

// Validate checks the party invariants.
func (p Party) Validate() error {
	if strings.TrimSpace(p.PersonName) == "" {
		return NewInputError("person_name", "is required", ErrInvalidAddress)
	}
	return p.Address.Validate()
}

// Company returns the company name sent to the carrier.
func (p Party) Company() string {
	if p.CompanyName != "" {
		return p.CompanyName
	}
	return p.PersonName
}

// RegistrationNumber is a tax registration (VAT, EORI) of the sender.
type RegistrationNumber struct {
	Number            string
	TypeCode          string // e.g. "VAT", "EOR"
	IssuerCountryCode string
}

// Package is a single physical piece of a shipment.
type Package struct {
	Weight      float64 // kg
	Length      float64 // cm
	Width       float64 // cm
	Height      float64 // cm
	Price       *decimal.Decimal
	Description string
}

// NewPackage builds a validated Package without customs data.
func NewPackage(weight, length, width, height float64) (Package, error) {
	p := Package{Weight: weight, Length: length, Width: width, Height: height}
	if err := p.Validate(); err != nil {
		return Package{}, err
	}
	return p, nil
}

// WithCustoms returns a copy of the package carrying a declared price and
// description.
func (p Package) WithCustoms(price decimal.Decimal, description string) Package {
	p.Price = &price
	p.Description = description
	return p
}

// Validate checks weight and dimensions are positive.
func (p Package) Validate() error {
	switch {
	case p.Weight <= 0:
		return NewInputError("weight", "must be greater than 0", ErrInvalidPackage)
	case p.Length <= 0:
		return NewInputError("length", "must be greater than 0", ErrInvalidPackage)
	case p.Width <= 0:
		return NewInputError("width", "must be greater than 0", ErrInvalidPackage)
	case p.Height <= 0:
		return NewInputError("height", "must be greater than 0", ErrInvalidPackage)
	}
	return nil
}

// Derived holds the fields computed by Shipment.Derive.
type Derived struct {
	ServiceType        ServiceType
	CustomsDescription string
	CustomsValue       decimal.Decimal
	DropOffType        DropOffType
	PickupTime         *time.Time
	ShipTimestamp      string
	PickupTimestamp    string // empty when no courier pickup is requested
}

// Shipment aggregates everything needed to book one shipment with a carrier.
//
// Caller fields are set before submission. Derive fills Derived, and a
// successful CreateShipment attaches the carrier identifiers. Once a result is
// attached the shipment is frozen.
type Shipment struct {
	Sender   Party
	Receiver Party
	Packages []Package

	ShipTime      time.Time // zero means now
	RequestPickup bool
	PickupTime    time.Time // zero means one hour from now, only with RequestPickup

	ServiceType    ServiceType // empty means derive from the country codes
	Currency       string
	Unit           UnitSystem
	CustomsPayment CustomsPayment
	CustomsContent CustomsContent

	// Explicit customs overrides. Each one replaces its aggregate on its own.
	CustomsDescription string
	CustomsValue       *decimal.Decimal

	RegistrationNumber       *RegistrationNumber
	ReferenceCode            string
	SpecialPickupInstruction string

	derived *Derived
	result  *ShipmentResponse
}

// NewShipment creates a shipment with the carrier defaults: EUR, metric units
// and document contents. The customs payment code has no default because it
// decides who is billed.
func NewShipment(sender, receiver Party, packages []Package, payment CustomsPayment) *Shipment {
	return &Shipment{
		Sender:         sender,
		Receiver:       receiver,
		Packages:       packages,
		Currency:       CurrencyEUR,
		Unit:           UnitMetric,
		CustomsPayment: payment,
		CustomsContent: ContentDocuments,
	}
}

// Derived returns the fields computed by the last Derive call, or nil.
func (s *Shipment) Derived() *Derived {
	return s.derived
}

// Submitted reports whether the carrier already accepted this shipment.
func (s *Shipment) Submitted() bool {
	return s.result != nil
}

// Result returns the successful carrier response, or nil.
func (s *Shipment) Result() *ShipmentResponse {
	return s.result
}

// IdentificationNumber is the carrier waybill, empty until submitted.
func (s *Shipment) IdentificationNumber() string {
	if s.result == nil {
		return ""
	}
	return s.result.IdentificationNumber
}

// TrackingNumbers has one entry per package, empty until submitted.
func (s *Shipment) TrackingNumbers() []string {
	if s.result == nil {
		return nil
	}
	return s.result.TrackingNumbers
}

// DispatchNumber is the optional pickup confirmation number.
func (s *Shipment) DispatchNumber() string {
	if s.result == nil {
		return ""
	}
	return s.result.DispatchNumber
}

// LabelBytes is the decoded label document, nil until submitted.
func (s *Shipment) LabelBytes() []byte {
	if s.result == nil {
		return nil
	}
	return s.result.LabelBytes
}

// Attach stamps a successful carrier response onto the shipment.
func (s *Shipment) Attach(resp *ShipmentResponse) error {
	if s.result != nil {
		return ErrAlreadySubmitted
	}
	if resp == nil || !resp.Success {
		return NewInputError("response", "only successful responses can be attached", ErrInvalidInput)
	}
	s.result = resp
	return nil
}

// Notification is a (code, message) pair reported by the carrier.
type Notification struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
}

// Sentinel failure messages used when the carrier gives no structured error.
const (
	MessageNoLabel         = "No PDF label."
	MessageNoNotifications = "No notifications."
)

// Response is the common part of every carrier response.
type Response struct {
	Success bool           `json:"success"`
	Errors  []Notification `json:"errors,omitempty"`
}

// Failed builds an unsuccessful Response.
func Failed(errs ...Notification) Response {
	return Response{Success: false, Errors: errs}
}

// ShipmentResponse is the outcome of a shipment creation.
type ShipmentResponse struct {
	Response
	IdentificationNumber string   `json:"identificationNumber,omitempty"`
	TrackingNumbers      []string `json:"trackingNumbers,omitempty"`
	DispatchNumber       string   `json:"dispatchNumber,omitempty"`
	LabelBytes           []byte   `json:"labelBytes,omitempty"`
}

// TrackingEvent is a single checkpoint in a tracking history.
type TrackingEvent struct {
	Waybill             string `json:"waybill,omitempty"`
	Code                string `json:"code"`
	Description         string `json:"description,omitempty"`
	LocationCode        string `json:"locationCode,omitempty"`
	LocationDescription string `json:"locationDescription,omitempty"`
	Date                string `json:"date,omitempty"`
	Time                string `json:"time,omitempty"`
}

// TrackingResponse is the outcome of a tracking lookup.
type TrackingResponse struct {
	Response
	ShipmentEvents []TrackingEvent            `json:"shipmentEvents"`
	PieceEvents    map[string][]TrackingEvent `json:"pieceEvents"`
}

// ProofOfDeliveryResponse is the outcome of a proof-of-delivery lookup.
type ProofOfDeliveryResponse struct {
	Response
	Document []byte `json:"document,omitempty"`
}
