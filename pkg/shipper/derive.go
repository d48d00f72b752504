package shipper

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	customsDescriptionSeparator = ", "
	defaultPickupDelay          = time.Hour
)

// euCountryCodes are the member states shipped to with the EU product.
var euCountryCodes = map[string]struct{}{
	"BE": {}, "BG": {}, "CZ": {}, "DK": {}, "DE": {}, "EE": {}, "IE": {},
	"GR": {}, "ES": {}, "FR": {}, "HR": {}, "IT": {}, "CY": {}, "LV": {},
	"LT": {}, "LU": {}, "HU": {}, "MT": {}, "NL": {}, "AT": {}, "PL": {},
	"PT": {}, "RO": {}, "SI": {}, "SK": {}, "FI": {}, "SE": {}, "GB": {},
}

// IsEUCountry reports whether code is in the EU product zone.
func IsEUCountry(code string) bool {
	_, ok := euCountryCodes[strings.ToUpper(code)]
	return ok
}

// DeriveServiceType picks the carrier product from the route and contents.
// Domestic beats EU, and world shipments of documents use the documents
// product.
func DeriveServiceType(senderCountry, receiverCountry string, content CustomsContent) ServiceType {
	sender := strings.ToUpper(senderCountry)
	receiver := strings.ToUpper(receiverCountry)

	switch {
	case sender == receiver:
		return ServiceDomestic
	case IsEUCountry(sender) && IsEUCountry(receiver):
		return ServiceEU
	case content == ContentDocuments:
		return ServiceWorldDocuments
	default:
		return ServiceWorld
	}
}

// DropOffTypeFor maps the pickup request flag to the drop-off type.
func DropOffTypeFor(requestPickup bool) DropOffType {
	if requestPickup {
		return DropOffRequestCourier
	}
	return DropOffRegularPickup
}

// AggregateCustoms joins the package descriptions and sums the package prices.
// Every package must carry both.
func AggregateCustoms(packages []Package) (string, decimal.Decimal, error) {
	description, err := aggregateDescription(packages)
	if err != nil {
		return "", decimal.Zero, err
	}
	value, err := aggregateValue(packages)
	if err != nil {
		return "", decimal.Zero, err
	}
	return description, value, nil
}

func aggregateDescription(packages []Package) (string, error) {
	parts := make([]string, 0, len(packages))
	for i, pkg := range packages {
		if strings.TrimSpace(pkg.Description) == "" {
			return "", NewInputError(fmt.Sprintf("packages[%d].description", i),
				"is required to derive the customs description", ErrMissingCustomsData)
		}
		parts = append(parts, pkg.Description)
	}
	return strings.Join(parts, customsDescriptionSeparator), nil
}

func aggregateValue(packages []Package) (decimal.Decimal, error) {
	total := decimal.Zero
	for i, pkg := range packages {
		if pkg.Price == nil {
			return decimal.Zero, NewInputError(fmt.Sprintf("packages[%d].price", i),
				"is required to derive the customs value", ErrMissingCustomsData)
		}
		total = total.Add(*pkg.Price)
	}
	return total, nil
}

// Validate checks the caller-supplied fields before anything is derived.
func (s *Shipment) Validate() error {
	if err := s.Sender.Validate(); err != nil {
		return fmt.Errorf("sender: %w", err)
	}
	if err := s.Receiver.Validate(); err != nil {
		return fmt.Errorf("receiver: %w", err)
	}
	if len(s.Packages) == 0 {
		return NewInputError("packages", "at least one package is required", ErrInvalidPackage)
	}
	for i, pkg := range s.Packages {
		if err := pkg.Validate(); err != nil {
			return fmt.Errorf("packages[%d]: %w", i, err)
		}
	}
	switch s.CustomsPayment {
	case CustomsPaymentSender, CustomsPaymentReceiver:
	default:
		return NewInputError("customs_payment", fmt.Sprintf("must be DDU or DAP, got %q", s.CustomsPayment), ErrInvalidInput)
	}
	switch s.ServiceType {
	case "", ServiceDomestic, ServiceEU, ServiceWorld, ServiceWorldDocuments:
	default:
		return NewInputError("service_type", fmt.Sprintf("must be N, U, P or D, got %q", s.ServiceType), ErrInvalidInput)
	}
	switch s.CustomsContent {
	case ContentDocuments, ContentNonDocuments:
	default:
		return NewInputError("customs_content", "must be DOCUMENTS or NON_DOCUMENTS", ErrInvalidInput)
	}
	switch s.Unit {
	case UnitMetric, UnitImperial:
	default:
		return NewInputError("unit", "must be SI or SU", ErrInvalidInput)
	}
	if len(s.Currency) != 3 {
		return NewInputError("currency", "must be a 3-letter ISO code", ErrInvalidInput)
	}
	return nil
}

// Derive fills the carrier-mandated fields the caller left unset and stores
// them on the shipment. Defaults for the ship and pickup times are written
// back to the shipment, and padding is applied only when formatting, so
// calling Derive again yields the same result.
func (s *Shipment) Derive(formatter *TimestampFormatter, now time.Time) (*Derived, error) {
	if s.Submitted() {
		return nil, ErrAlreadySubmitted
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}

	d := &Derived{
		ServiceType: s.ServiceType,
		DropOffType: DropOffTypeFor(s.RequestPickup),
	}
	if d.ServiceType == "" {
		d.ServiceType = DeriveServiceType(s.Sender.CountryCode, s.Receiver.CountryCode, s.CustomsContent)
	}

	if s.CustomsDescription != "" {
		d.CustomsDescription = s.CustomsDescription
	} else {
		description, err := aggregateDescription(s.Packages)
		if err != nil {
			return nil, err
		}
		d.CustomsDescription = description
	}

	if s.CustomsValue != nil {
		d.CustomsValue = *s.CustomsValue
	} else {
		value, err := aggregateValue(s.Packages)
		if err != nil {
			return nil, err
		}
		d.CustomsValue = value
	}

	if s.ShipTime.IsZero() {
		s.ShipTime = now
	}
	d.ShipTimestamp = formatter.ShipTimestamp(s.ShipTime)

	if s.RequestPickup {
		if s.PickupTime.IsZero() {
			s.PickupTime = now.Add(defaultPickupDelay)
		}
		pickup := s.PickupTime
		d.PickupTime = &pickup
		d.PickupTimestamp = formatter.PickupTime(pickup)
	}

	s.derived = d
	return d, nil
}
