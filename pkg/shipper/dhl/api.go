package dhl

import (
	"context"
)

// APIClient defines the interface for DHL Express API operations.
// This abstraction allows for mock implementations during testing
// and real SOAP implementations in production.
type APIClient interface {
	// CreateShipment books a shipment via the expressRateBook service.
	CreateShipment(ctx context.Context, req *ShipmentRequest) (*ShipmentReply, error)

	// RetrieveProofOfDelivery fetches the ePOD document of a waybill.
	RetrieveProofOfDelivery(ctx context.Context, waybill string, detailed bool) (*PODReply, error)

	// TrackShipment retrieves checkpoints via the glDHLExpressTrack service.
	TrackShipment(ctx context.Context, waybills []string) (*TrackingReply, error)
}

// ============================================================================
// Request types (match the DHL RequestedShipment structure)
// ============================================================================

// ShipmentRequest is a fully derived DHL shipment request.
type ShipmentRequest struct {
	Account                      string
	Currency                     string
	UnitOfMeasurement            string
	LabelType                    string
	LabelTemplate                string
	ServiceType                  string
	DropOffType                  string
	RequestAdditionalInformation string
	ShipTimestamp                string
	PickupLocationCloseTime      string // empty means the element is omitted
	SpecialPickupInstruction     string
	PaymentInfo                  string
	Content                      string
	CustomsDescription           string
	CustomsValue                 string
	Shipper                      Party
	Recipient                    Party
	RegistrationNumbers          []RegistrationNumber
	Packages                     []RequestedPackage
}

// Party is a shipper or recipient in the request.
type Party struct {
	Contact Contact
	Address Address
}

// Contact is the DHL contact block.
type Contact struct {
	PersonName   string
	CompanyName  string
	PhoneNumber  string
	EmailAddress string
}

// Address is the DHL address block.
type Address struct {
	StreetLines  string
	StreetLines2 string
	StreetLines3 string
	City         string
	PostalCode   string
	CountryCode  string
}

// RegistrationNumber is a shipper tax registration.
type RegistrationNumber struct {
	Number                  string
	NumberTypeCode          string
	NumberIssuerCountryCode string
}

// RequestedPackage is one piece of the shipment.
type RequestedPackage struct {
	Number                    int
	Weight                    string
	Length                    string
	Width                     string
	Height                    string
	CustomerReferences        string
	PackageContentDescription string
}

// ============================================================================
// Reply types. Absent elements stay nil so the interpreter can tell a missing
// field from an empty one.
// ============================================================================

// ShipmentReply is the raw createShipmentRequest reply.
type ShipmentReply struct {
	Notifications                []Notification
	ShipmentIdentificationNumber *string
	PackageResults               []PackageResult
	LabelImages                  []LabelImage
	DispatchConfirmationNumber   *string
}

// Notification is a coded carrier message.
type Notification struct {
	Code    string
	Message string
}

// PackageResult carries the tracking number of one piece.
type PackageResult struct {
	Number         string
	TrackingNumber string
}

// LabelImage is a decoded label document.
type LabelImage struct {
	Format       string
	GraphicImage []byte
}

// PODReply is the raw ShipmentDocumentRetrieve reply.
type PODReply struct {
	Shipments  []PODShipment
	DataErrors []PODDataError
}

// PODShipment is a Shp element.
type PODShipment struct {
	ID                string
	ShipmentDocuments []PODShipmentDocumentation
}

// PODShipmentDocumentation is a ShpInDoc element.
type PODShipmentDocumentation struct {
	Documents []PODDocument
}

// PODDocument is an SDoc element.
type PODDocument struct {
	Images []PODImage
}

// PODImage carries the decoded document bytes of an Img element.
type PODImage struct {
	Data []byte
}

// PODDataError is a DatTrErr element.
type PODDataError struct {
	Message *PODErrorMessage
}

// PODErrorMessage is a DatErrMsg element.
type PODErrorMessage struct {
	Detail *PODErrorDetail
}

// PODErrorDetail is an ErrMsgDtl element.
type PODErrorDetail struct {
	Description string
}

// TrackingReply is the raw trackShipmentRequest reply.
type TrackingReply struct {
	AWBInfos []AWBInfo
}

// AWBInfo is the tracking result of one waybill.
type AWBInfo struct {
	AWBNumber    string
	Status       *AWBStatus
	ShipmentInfo *ShipmentInfo
	Pieces       []PieceInfo
}

// AWBStatus carries the carrier status of a lookup, e.g. "success" or "No Shipments Found".
type AWBStatus struct {
	ActionStatus string
}

// ShipmentInfo carries the shipment-level checkpoints.
type ShipmentInfo struct {
	Events []ShipmentEvent
}

// ShipmentEvent is a shipment-level checkpoint.
type ShipmentEvent struct {
	Date         string
	Time         string
	ServiceEvent *ServiceEvent
	ServiceArea  *ServiceArea
}

// PieceInfo carries the checkpoints of one piece.
type PieceInfo struct {
	Details *PieceDetails
	Events  []PieceEvent
}

// PieceDetails identifies a piece.
type PieceDetails struct {
	LicensePlate string
}

// PieceEvent is a piece-level checkpoint.
type PieceEvent struct {
	Date         string
	Time         string
	ServiceEvent *ServiceEvent
	ServiceArea  *ServiceArea
}

// ServiceEvent is the checkpoint code and text.
type ServiceEvent struct {
	EventCode   string
	Description string
}

// ServiceArea is the checkpoint location.
type ServiceArea struct {
	ServiceAreaCode string
	Description     string
}

// APIError represents a SOAP fault or HTTP-level rejection from DHL.
type APIError struct {
	Code        string
	Description string
}

func (e *APIError) Error() string {
	return e.Code + ": " + e.Description
}
