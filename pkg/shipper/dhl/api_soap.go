package dhl

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"strings"
	"text/template"
	"time"

	"github.com/google/uuid"
	"github.com/tournevent/dhlexpress/pkg/shipper"
)

const (
	productionBaseURL = "https://wsbexpress.dhl.com:443/gbl"
	testBaseURL       = "https://wsbexpress.dhl.com:443/sndpt"

	shipmentService = "/expressRateBook"
	podService      = "/getePOD"
	trackingService = "/glDHLExpressTrack"

	podHeaderVersion  = "1.038"
	podSenderApp      = "DCG"
	podDocumentType   = "POD"
	podCustomerRole   = "SP"
	podDetailContent  = "epod-detail"
	podSummaryContent = "epod-summary"

	trackingLevelOfDetails = "ALL_CHECK_POINTS"
	trackingPiecesEnabled  = "B"
)

// SOAPAPIClient is the production implementation of APIClient using SOAP/WSDL.
type SOAPAPIClient struct {
	baseURL    string
	username   string
	password   string
	account    string
	httpClient *http.Client
}

// SOAPAPIClientConfig holds configuration for the SOAP client.
type SOAPAPIClientConfig struct {
	Username string
	Password string
	Account  string
	TestMode bool
	BaseURL  string // overrides the test/production host when set
	Timeout  time.Duration
}

// NewSOAPAPIClient creates a new SOAP-based API client for production use.
func NewSOAPAPIClient(cfg SOAPAPIClientConfig) *SOAPAPIClient {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = productionBaseURL
		if cfg.TestMode {
			baseURL = testBaseURL
		}
	}

	return &SOAPAPIClient{
		baseURL:  strings.TrimRight(baseURL, "/"),
		username: cfg.Username,
		password: cfg.Password,
		account:  cfg.Account,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Endpoint returns the URL a service is posted to, e.g. "/expressRateBook".
func (c *SOAPAPIClient) Endpoint(service string) string {
	return c.baseURL + service
}

// CreateShipment books a shipment via the expressRateBook service.
func (c *SOAPAPIClient) CreateShipment(ctx context.Context, req *ShipmentRequest) (*ShipmentReply, error) {
	soapBody, err := c.buildEnvelope(shipmentBodyTmpl, shipmentNamespace, req)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	env, err := c.call(ctx, shipmentService, shipmentAction, soapBody)
	if err != nil {
		return nil, err
	}
	return parseShipmentReply(env.Body.ShipmentResponse), nil
}

// RetrieveProofOfDelivery fetches the ePOD document of a waybill.
func (c *SOAPAPIClient) RetrieveProofOfDelivery(ctx context.Context, waybill string, detailed bool) (*PODReply, error) {
	soapBody, err := c.buildEnvelope(podBodyTmpl, podNamespace, c.newPODRequest(waybill, detailed))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	env, err := c.call(ctx, podService, podAction, soapBody)
	if err != nil {
		return nil, err
	}
	return parsePODReply(env.Body.PODResponse), nil
}

// TrackShipment retrieves checkpoints via the glDHLExpressTrack service.
func (c *SOAPAPIClient) TrackShipment(ctx context.Context, waybills []string) (*TrackingReply, error) {
	data := trackingRequest{
		MessageTime:      time.Now().UTC().Format(time.RFC3339),
		MessageReference: messageReference(),
		Waybills:         waybills,
		LevelOfDetails:   trackingLevelOfDetails,
		PiecesEnabled:    trackingPiecesEnabled,
	}
	soapBody, err := c.buildEnvelope(trackingBodyTmpl, trackingNamespace, data)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	env, err := c.call(ctx, trackingService, trackingAction, soapBody)
	if err != nil {
		return nil, err
	}
	return parseTrackingReply(env.Body.TrackResponse), nil
}

// ============================================================================
// SOAP Request Helpers
// ============================================================================

func (c *SOAPAPIClient) call(ctx context.Context, service, action string, body []byte) (*soapEnvelope, error) {
	resp, err := c.doSOAPRequest(ctx, c.Endpoint(service), action, body)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.parseSOAPError(resp)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var env soapEnvelope
	if err := xml.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if env.Body.Fault != nil {
		return nil, env.Body.Fault.apiError()
	}
	return &env, nil
}

func (c *SOAPAPIClient) doSOAPRequest(ctx context.Context, endpoint, action string, body []byte) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	// DHL authenticates through the WS-Security header of the envelope.
	req.Header.Set("Content-Type", "text/xml; charset=utf-8")
	req.Header.Set("SOAPAction", action)

	return c.httpClient.Do(req)
}

// messageReference returns a 32 character reference, the maximum DHL accepts.
func messageReference() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// ============================================================================
// SOAP Request Builders
// ============================================================================

const (
	shipmentNamespace = `xmlns:ship="http://scxgxtt.phx-dc.dhl.com/euExpressRateBook/ShipmentMsgRequest"`
	podNamespace      = `xmlns:dhl="http://www.dhl.com"`
	trackingNamespace = `xmlns:trac="glDHLExpressTrack/providers/services/trackShipment"`

	shipmentAction = "euExpressRateBook_providerServices_ShipmentHandlingServices_Binder_createShipmentRequest"
	podAction      = "euExpressRateBook_providerServices_ShipmentHandlingServices_Binder_ShipmentDocumentRetrieve"
	trackingAction = "glDHLExpressTrack_providers_services_trackShipment_Binder_trackShipmentRequest"
)

var templateFuncs = template.FuncMap{
	"xml": xmlEscape,
}

func xmlEscape(s string) string {
	var buf bytes.Buffer
	_ = xml.EscapeText(&buf, []byte(s))
	return buf.String()
}

var envelopeTmpl = template.Must(template.New("envelope").Funcs(templateFuncs).Parse(`<?xml version="1.0" encoding="utf-8"?>
<soapenv:Envelope xmlns:soapenv="http://schemas.xmlsoap.org/soap/envelope/" {{.Namespace}}>
  <soapenv:Header>
    <wsse:Security soapenv:mustUnderstand="1" xmlns:wsse="http://docs.oasis-open.org/wss/2004/01/oasis-200401-wss-wssecurity-secext-1.0.xsd" xmlns:wsu="http://docs.oasis-open.org/wss/2004/01/oasis-200401-wss-wssecurity-utility-1.0.xsd">
      <wsse:UsernameToken wsu:Id="UsernameToken-{{.TokenID}}">
        <wsse:Username>{{xml .Username}}</wsse:Username>
        <wsse:Password Type="http://docs.oasis-open.org/wss/2004/01/oasis-200401-wss-username-token-profile-1.0#PasswordText">{{xml .Password}}</wsse:Password>
        <wsu:Created>{{.Created}}</wsu:Created>
      </wsse:UsernameToken>
    </wsse:Security>
  </soapenv:Header>
  <soapenv:Body>
    {{.Body}}
  </soapenv:Body>
</soapenv:Envelope>`))

var shipmentBodyTmpl = template.Must(template.New("shipment").Funcs(templateFuncs).Parse(`{{define "party"}}<Contact>
            <PersonName>{{xml .Contact.PersonName}}</PersonName>
            <CompanyName>{{xml .Contact.CompanyName}}</CompanyName>
            <PhoneNumber>{{xml .Contact.PhoneNumber}}</PhoneNumber>
            {{- if .Contact.EmailAddress}}
            <EmailAddress>{{xml .Contact.EmailAddress}}</EmailAddress>
            {{- end}}
          </Contact>
          <Address>
            <StreetLines>{{xml .Address.StreetLines}}</StreetLines>
            {{- if .Address.StreetLines2}}
            <StreetLines2>{{xml .Address.StreetLines2}}</StreetLines2>
            {{- end}}
            {{- if .Address.StreetLines3}}
            <StreetLines3>{{xml .Address.StreetLines3}}</StreetLines3>
            {{- end}}
            <City>{{xml .Address.City}}</City>
            <PostalCode>{{xml .Address.PostalCode}}</PostalCode>
            <CountryCode>{{xml .Address.CountryCode}}</CountryCode>
          </Address>{{end -}}
<ship:ShipmentRequest>
      <RequestedShipment>
        <ShipmentInfo>
          <DropOffType>{{xml .DropOffType}}</DropOffType>
          <ServiceType>{{xml .ServiceType}}</ServiceType>
          <Account>{{xml .Account}}</Account>
          <Currency>{{xml .Currency}}</Currency>
          <UnitOfMeasurement>{{xml .UnitOfMeasurement}}</UnitOfMeasurement>
          <LabelType>{{xml .LabelType}}</LabelType>
          <LabelTemplate>{{xml .LabelTemplate}}</LabelTemplate>
          <RequestAdditionalInformation>{{xml .RequestAdditionalInformation}}</RequestAdditionalInformation>
        </ShipmentInfo>
        <ShipTimestamp>{{xml .ShipTimestamp}}</ShipTimestamp>
        {{- if .PickupLocationCloseTime}}
        <PickupLocationCloseTime>{{xml .PickupLocationCloseTime}}</PickupLocationCloseTime>
        {{- end}}
        {{- if .SpecialPickupInstruction}}
        <SpecialPickupInstruction>{{xml .SpecialPickupInstruction}}</SpecialPickupInstruction>
        {{- end}}
        <PaymentInfo>{{xml .PaymentInfo}}</PaymentInfo>
        <InternationalDetail>
          <Commodities>
            <Description>{{xml .CustomsDescription}}</Description>
            <CustomsValue>{{xml .CustomsValue}}</CustomsValue>
          </Commodities>
          <Content>{{xml .Content}}</Content>
        </InternationalDetail>
        <Ship>
          <Shipper>
          {{template "party" .Shipper}}
          {{- if .RegistrationNumbers}}
          <RegistrationNumbers>
            {{- range .RegistrationNumbers}}
            <RegistrationNumber>
              <Number>{{xml .Number}}</Number>
              <NumberTypeCode>{{xml .NumberTypeCode}}</NumberTypeCode>
              <NumberIssuerCountryCode>{{xml .NumberIssuerCountryCode}}</NumberIssuerCountryCode>
            </RegistrationNumber>
            {{- end}}
          </RegistrationNumbers>
          {{- end}}
          </Shipper>
          <Recipient>
          {{template "party" .Recipient}}
          </Recipient>
        </Ship>
        <Packages>
          {{- range .Packages}}
          <RequestedPackages number="{{.Number}}">
            <Weight>{{xml .Weight}}</Weight>
            <Dimensions>
              <Length>{{xml .Length}}</Length>
              <Width>{{xml .Width}}</Width>
              <Height>{{xml .Height}}</Height>
            </Dimensions>
            <CustomerReferences>{{xml .CustomerReferences}}</CustomerReferences>
            <PackageContentDescription>{{xml .PackageContentDescription}}</PackageContentDescription>
          </RequestedPackages>
          {{- end}}
        </Packages>
      </RequestedShipment>
    </ship:ShipmentRequest>`))

type podCriterion struct {
	Type  string
	Value string
}

type podRequest struct {
	ID        string
	Version   string
	Timestamp string
	AppCode   string
	Waybill   string
	DocType   string
	Account   string // only sent for detailed documents
	Role      string
	Criteria  []podCriterion
}

func (c *SOAPAPIClient) newPODRequest(waybill string, detailed bool) podRequest {
	content := podSummaryContent
	req := podRequest{
		ID:        messageReference(),
		Version:   podHeaderVersion,
		Timestamp: time.Now().UTC().Format("2006-01-02T15:04:05"),
		AppCode:   podSenderApp,
		Waybill:   waybill,
		DocType:   podDocumentType,
	}
	if detailed {
		content = podDetailContent
		req.Account = c.account
		req.Role = podCustomerRole
	}
	req.Criteria = []podCriterion{
		{Type: "IMG_CONTENT", Value: content},
		{Type: "IMG_FORMAT", Value: "PDF"},
		{Type: "DOC_RND_REQ", Value: "true"},
		{Type: "EXT_REQ", Value: "true"},
		{Type: "DUPL_HANDL", Value: "CORE_WB_NO"},
		{Type: "SORT_BY", Value: "$INGEST_DATE,D"},
		{Type: "LANGUAGE", Value: "en"},
	}
	return req
}

var podBodyTmpl = template.Must(template.New("pod").Funcs(templateFuncs).Parse(`<dhl:shipmentDocumentRetrieveReq>
      <MSG>
        <Hdr Id="{{xml .ID}}" Ver="{{xml .Version}}" Dtm="{{xml .Timestamp}}">
          <Sndr AppCd="{{xml .AppCode}}" AppNm="{{xml .AppCode}}"/>
        </Hdr>
        <Bd>
          <Shp Id="{{xml .Waybill}}">
            <ShpInDoc DocTyCd="{{xml .DocType}}"/>
            <ShpTr>
              {{- if .Account}}
              <SCDtl AccNo="{{xml .Account}}" CRlTyCd="{{xml .Role}}"/>
              {{- else}}
              <SCDtl/>
              {{- end}}
            </ShpTr>
          </Shp>
          <GenrcRq>
            {{- range .Criteria}}
            <GenrcRqCritr TyCd="{{xml .Type}}" Val="{{xml .Value}}"/>
            {{- end}}
          </GenrcRq>
        </Bd>
      </MSG>
    </dhl:shipmentDocumentRetrieveReq>`))

type trackingRequest struct {
	MessageTime      string
	MessageReference string
	Waybills         []string
	LevelOfDetails   string
	PiecesEnabled    string
}

var trackingBodyTmpl = template.Must(template.New("tracking").Funcs(templateFuncs).Parse(`<trac:trackShipmentRequest>
      <trackingRequest>
        <TrackingRequest>
          <Request>
            <ServiceHeader>
              <MessageTime>{{xml .MessageTime}}</MessageTime>
              <MessageReference>{{xml .MessageReference}}</MessageReference>
            </ServiceHeader>
          </Request>
          <AWBNumber>
            {{- range .Waybills}}
            <ArrayOfAWBNumberItem>{{xml .}}</ArrayOfAWBNumberItem>
            {{- end}}
          </AWBNumber>
          <LevelOfDetails>{{xml .LevelOfDetails}}</LevelOfDetails>
          <PiecesEnabled>{{xml .PiecesEnabled}}</PiecesEnabled>
        </TrackingRequest>
      </trackingRequest>
    </trac:trackShipmentRequest>`))

func (c *SOAPAPIClient) buildEnvelope(bodyTmpl *template.Template, namespace string, data any) ([]byte, error) {
	var bodyBuf bytes.Buffer
	if err := bodyTmpl.Execute(&bodyBuf, data); err != nil {
		return nil, err
	}

	envData := struct {
		Namespace string
		TokenID   string
		Username  string
		Password  string
		Created   string
		Body      string
	}{
		Namespace: namespace,
		TokenID:   messageReference(),
		Username:  c.username,
		Password:  c.password,
		Created:   time.Now().UTC().Format(time.RFC3339),
		Body:      bodyBuf.String(),
	}

	var envBuf bytes.Buffer
	if err := envelopeTmpl.Execute(&envBuf, envData); err != nil {
		return nil, err
	}
	return envBuf.Bytes(), nil
}

// ============================================================================
// SOAP Response Parsers - XML Types
// ============================================================================

type soapEnvelope struct {
	XMLName xml.Name `xml:"Envelope"`
	Body    soapBody `xml:"Body"`
}

type soapBody struct {
	Fault            *soapFault            `xml:"Fault"`
	ShipmentResponse *shipmentResponseXML  `xml:"ShipmentResponse"`
	PODResponse      *podResponseXML       `xml:"shipmentDocumentRetrieveResp"`
	TrackResponse    *trackShipmentRespXML `xml:"trackShipmentRequestResponse"`
}

type soapFault struct {
	Code   string           `xml:"faultcode"`
	String string           `xml:"faultstring"`
	Detail *soapFaultDetail `xml:"detail"`
}

type soapFaultDetail struct {
	Message string `xml:"detailmessage"`
}

// apiError prefers the detail message, which carries the DHL explanation.
func (f *soapFault) apiError() *APIError {
	desc := f.String
	if f.Detail != nil && f.Detail.Message != "" {
		desc = f.Detail.Message
	}
	return &APIError{Code: f.Code, Description: desc}
}

// Shipment response types
type shipmentResponseXML struct {
	Notifications                []notificationXML  `xml:"Notification"`
	PackageResults               []packageResultXML `xml:"PackagesResult>PackageResult"`
	LabelImages                  []labelImageXML    `xml:"LabelImage"`
	ShipmentIdentificationNumber *string            `xml:"ShipmentIdentificationNumber"`
	DispatchConfirmationNumber   *string            `xml:"DispatchConfirmationNumber"`
}

type notificationXML struct {
	Code    string `xml:"code,attr"`
	Message string `xml:"Message"`
}

type packageResultXML struct {
	Number         string `xml:"number,attr"`
	TrackingNumber string `xml:"TrackingNumber"`
}

type labelImageXML struct {
	Format       string `xml:"LabelImageFormat"`
	GraphicImage string `xml:"GraphicImage"` // Base64 encoded
}

// ePOD response types
type podResponseXML struct {
	Shipments  []podShipmentXML  `xml:"MSG>Bd>Shp"`
	DataErrors []podDataErrorXML `xml:"MSG>DatTrErr"`
}

type podShipmentXML struct {
	ID        string           `xml:"Id,attr"`
	Documents []podShpInDocXML `xml:"ShpInDoc"`
}

type podShpInDocXML struct {
	Documents []podSDocXML `xml:"SDoc"`
}

type podSDocXML struct {
	Images []podImgXML `xml:"Img"`
}

type podImgXML struct {
	Img string `xml:"Img,attr"` // Base64 encoded
}

type podDataErrorXML struct {
	Message *podErrMsgXML `xml:"DatErrMsg"`
}

type podErrMsgXML struct {
	Detail *podErrDetailXML `xml:"ErrMsgDtl"`
}

type podErrDetailXML struct {
	Description string `xml:"DtlDsc,attr"`
}

// Tracking response types
type trackShipmentRespXML struct {
	AWBInfos []awbInfoXML `xml:"trackingResponse>TrackingResponse>AWBInfo>ArrayOfAWBInfoItem"`
}

type awbInfoXML struct {
	AWBNumber    string           `xml:"AWBNumber"`
	Status       *awbStatusXML    `xml:"Status"`
	ShipmentInfo *shipmentInfoXML `xml:"ShipmentInfo"`
	Pieces       []pieceInfoXML   `xml:"Pieces>PieceInfo>ArrayOfPieceInfoItem"`
}

type awbStatusXML struct {
	ActionStatus string `xml:"ActionStatus"`
}

type shipmentInfoXML struct {
	Events []eventXML `xml:"ShipmentEvent>ArrayOfShipmentEventItem"`
}

type pieceInfoXML struct {
	Details *pieceDetailsXML `xml:"PieceDetails"`
	Events  []eventXML       `xml:"PieceEvent>ArrayOfPieceEventItem"`
}

type pieceDetailsXML struct {
	LicensePlate string `xml:"LicensePlate"`
}

type eventXML struct {
	Date         string           `xml:"Date"`
	Time         string           `xml:"Time"`
	ServiceEvent *serviceEventXML `xml:"ServiceEvent"`
	ServiceArea  *serviceAreaXML  `xml:"ServiceArea"`
}

type serviceEventXML struct {
	EventCode   string `xml:"EventCode"`
	Description string `xml:"Description"`
}

type serviceAreaXML struct {
	ServiceAreaCode string `xml:"ServiceAreaCode"`
	Description     string `xml:"Description"`
}

// ============================================================================
// SOAP Response Parsing Functions
// ============================================================================

func (c *SOAPAPIClient) parseSOAPError(resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)

	var env soapEnvelope
	if err := xml.Unmarshal(body, &env); err == nil && env.Body.Fault != nil {
		return env.Body.Fault.apiError()
	}

	apiErr := &APIError{
		Code:        fmt.Sprintf("HTTP_%d", resp.StatusCode),
		Description: string(body),
	}
	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: %w", shipper.ErrAuthenticationFailed, apiErr)
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return fmt.Errorf("%w: %w", shipper.ErrServiceUnavailable, apiErr)
	}
	return apiErr
}

// parseShipmentReply leaves a label that is not valid base64 empty, so the
// reply reads as booked without a label.
func parseShipmentReply(resp *shipmentResponseXML) *ShipmentReply {
	if resp == nil {
		return &ShipmentReply{}
	}

	reply := &ShipmentReply{
		ShipmentIdentificationNumber: resp.ShipmentIdentificationNumber,
		DispatchConfirmationNumber:   resp.DispatchConfirmationNumber,
	}
	for _, n := range resp.Notifications {
		reply.Notifications = append(reply.Notifications, Notification{Code: n.Code, Message: n.Message})
	}
	for _, pr := range resp.PackageResults {
		reply.PackageResults = append(reply.PackageResults, PackageResult{Number: pr.Number, TrackingNumber: pr.TrackingNumber})
	}
	for _, img := range resp.LabelImages {
		reply.LabelImages = append(reply.LabelImages, LabelImage{Format: img.Format, GraphicImage: decodeBase64(img.GraphicImage)})
	}
	return reply
}

// parsePODReply treats an image that is not valid base64 as absent.
func parsePODReply(resp *podResponseXML) *PODReply {
	if resp == nil {
		return &PODReply{}
	}

	reply := &PODReply{}
	for _, shp := range resp.Shipments {
		s := PODShipment{ID: shp.ID}
		for _, inDoc := range shp.Documents {
			var sd PODShipmentDocumentation
			for _, doc := range inDoc.Documents {
				var d PODDocument
				for _, img := range doc.Images {
					d.Images = append(d.Images, PODImage{Data: decodeBase64(img.Img)})
				}
				sd.Documents = append(sd.Documents, d)
			}
			s.ShipmentDocuments = append(s.ShipmentDocuments, sd)
		}
		reply.Shipments = append(reply.Shipments, s)
	}

	for _, de := range resp.DataErrors {
		var e PODDataError
		if de.Message != nil {
			e.Message = &PODErrorMessage{}
			if de.Message.Detail != nil {
				e.Message.Detail = &PODErrorDetail{Description: de.Message.Detail.Description}
			}
		}
		reply.DataErrors = append(reply.DataErrors, e)
	}
	return reply
}

func parseTrackingReply(resp *trackShipmentRespXML) *TrackingReply {
	reply := &TrackingReply{}
	if resp == nil {
		return reply
	}

	for _, awb := range resp.AWBInfos {
		info := AWBInfo{AWBNumber: awb.AWBNumber}
		if awb.Status != nil {
			info.Status = &AWBStatus{ActionStatus: awb.Status.ActionStatus}
		}
		if awb.ShipmentInfo != nil {
			info.ShipmentInfo = &ShipmentInfo{}
			for _, ev := range awb.ShipmentInfo.Events {
				info.ShipmentInfo.Events = append(info.ShipmentInfo.Events, ShipmentEvent{
					Date:         ev.Date,
					Time:         ev.Time,
					ServiceEvent: ev.serviceEvent(),
					ServiceArea:  ev.serviceArea(),
				})
			}
		}
		for _, piece := range awb.Pieces {
			p := PieceInfo{}
			if piece.Details != nil {
				p.Details = &PieceDetails{LicensePlate: piece.Details.LicensePlate}
			}
			for _, ev := range piece.Events {
				p.Events = append(p.Events, PieceEvent{
					Date:         ev.Date,
					Time:         ev.Time,
					ServiceEvent: ev.serviceEvent(),
					ServiceArea:  ev.serviceArea(),
				})
			}
			info.Pieces = append(info.Pieces, p)
		}
		reply.AWBInfos = append(reply.AWBInfos, info)
	}
	return reply
}

func (e eventXML) serviceEvent() *ServiceEvent {
	if e.ServiceEvent == nil {
		return nil
	}
	return &ServiceEvent{EventCode: e.ServiceEvent.EventCode, Description: e.ServiceEvent.Description}
}

func (e eventXML) serviceArea() *ServiceArea {
	if e.ServiceArea == nil {
		return nil
	}
	return &ServiceArea{ServiceAreaCode: e.ServiceArea.ServiceAreaCode, Description: e.ServiceArea.Description}
}

// decodeBase64 tolerates the line breaks DHL inserts into long payloads and
// returns nil for anything that does not decode.
func decodeBase64(s string) []byte {
	s = strings.Join(strings.Fields(s), "")
	if s == "" {
		return nil
	}
	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil
	}
	return data
}

var _ APIClient = (*SOAPAPIClient)(nil)
