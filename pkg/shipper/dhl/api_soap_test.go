package dhl_test

import (
	"context"
	"encoding/base64"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tournevent/dhlexpress/pkg/shipper"
	"github.com/tournevent/dhlexpress/pkg/shipper/dhl"
)

type capturedRequest struct {
	path   string
	action string
	body   string
}

func newSOAPServer(t *testing.T, status int, reply string) (*dhl.SOAPAPIClient, *capturedRequest) {
	t.Helper()

	captured := &capturedRequest{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		captured.path = r.URL.Path
		captured.action = r.Header.Get("SOAPAction")
		captured.body = string(body)

		w.Header().Set("Content-Type", "text/xml; charset=utf-8")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(reply))
	}))
	t.Cleanup(srv.Close)

	client := dhl.NewSOAPAPIClient(dhl.SOAPAPIClientConfig{
		Username: "user&co",
		Password: "s3cr<t",
		Account:  "950000002",
		BaseURL:  srv.URL,
	})
	return client, captured
}

func testShipmentRequest() *dhl.ShipmentRequest {
	return &dhl.ShipmentRequest{
		Account:                      "950000002",
		Currency:                     "EUR",
		UnitOfMeasurement:            "SI",
		LabelType:                    "PDF",
		LabelTemplate:                "ECOM26_84_001",
		ServiceType:                  "U",
		DropOffType:                  "REGULAR_PICKUP",
		RequestAdditionalInformation: "N",
		ShipTimestamp:                "2024-03-01T12:05:00 GMT+02:00",
		PaymentInfo:                  "DAP",
		Content:                      "DOCUMENTS",
		CustomsDescription:           "Books, <rare> prints",
		CustomsValue:                 "15.00",
		Shipper: dhl.Party{
			Contact: dhl.Contact{PersonName: "Jane", CompanyName: "Smith & Sons", PhoneNumber: "+49341000000"},
			Address: dhl.Address{StreetLines: "Hauptstrasse 1", City: "Leipzig", PostalCode: "04109", CountryCode: "DE"},
		},
		Recipient: dhl.Party{
			Contact: dhl.Contact{PersonName: "John", CompanyName: "John", PhoneNumber: "+34910000000"},
			Address: dhl.Address{StreetLines: "Calle Mayor 5", City: "Madrid", PostalCode: "28013", CountryCode: "ES"},
		},
		RegistrationNumbers: []dhl.RegistrationNumber{{Number: "DE123456789", NumberTypeCode: "VAT", NumberIssuerCountryCode: "DE"}},
		Packages: []dhl.RequestedPackage{
			{Number: 1, Weight: "1.5", Length: "20", Width: "15", Height: "10", PackageContentDescription: "Books"},
		},
	}
}

func TestSOAPAPIClient_CreateShipment(t *testing.T) {
	label := base64.StdEncoding.EncodeToString([]byte("%PDF-1.4 label"))
	reply := `<?xml version="1.0" encoding="UTF-8"?>
<soapenv:Envelope xmlns:soapenv="http://schemas.xmlsoap.org/soap/envelope/">
  <soapenv:Body>
    <shipresp:ShipmentResponse xmlns:shipresp="http://scxgxtt.phx-dc.dhl.com/euExpressRateBook/ShipmentMsgResponse">
      <Notification code="0"><Message/></Notification>
      <PackagesResult>
        <PackageResult number="1"><TrackingNumber>JD014600003828312345</TrackingNumber></PackageResult>
      </PackagesResult>
      <LabelImage>
        <LabelImageFormat>PDF</LabelImageFormat>
        <GraphicImage>` + label[:8] + "\n" + label[8:] + `</GraphicImage>
      </LabelImage>
      <ShipmentIdentificationNumber>1234567890</ShipmentIdentificationNumber>
    </shipresp:ShipmentResponse>
  </soapenv:Body>
</soapenv:Envelope>`
	client, captured := newSOAPServer(t, http.StatusOK, reply)

	resp, err := client.CreateShipment(context.Background(), testShipmentRequest())

	require.NoError(t, err)
	require.NotNil(t, resp.ShipmentIdentificationNumber)
	assert.Equal(t, "1234567890", *resp.ShipmentIdentificationNumber)
	assert.Nil(t, resp.DispatchConfirmationNumber)
	require.Len(t, resp.PackageResults, 1)
	assert.Equal(t, "JD014600003828312345", resp.PackageResults[0].TrackingNumber)
	require.Len(t, resp.LabelImages, 1)
	assert.Equal(t, []byte("%PDF-1.4 label"), resp.LabelImages[0].GraphicImage)
	assert.Equal(t, []dhl.Notification{{Code: "0"}}, resp.Notifications)

	assert.Equal(t, "/expressRateBook", captured.path)
	assert.Contains(t, captured.action, "createShipmentRequest")
	assert.Contains(t, captured.body, "<wsse:Username>user&amp;co</wsse:Username>")
	assert.Contains(t, captured.body, "s3cr&lt;t</wsse:Password>")
	assert.Contains(t, captured.body, "<CompanyName>Smith &amp; Sons</CompanyName>")
	assert.Contains(t, captured.body, "<Description>Books, &lt;rare&gt; prints</Description>")
	assert.Contains(t, captured.body, "<ShipTimestamp>2024-03-01T12:05:00 GMT+02:00</ShipTimestamp>")
	assert.Contains(t, captured.body, "<LabelTemplate>ECOM26_84_001</LabelTemplate>")
	assert.Contains(t, captured.body, `<RequestedPackages number="1">`)
	assert.Contains(t, captured.body, "<NumberTypeCode>VAT</NumberTypeCode>")
	assert.NotContains(t, captured.body, "PickupLocationCloseTime")
	assert.NotContains(t, captured.body, "StreetLines2")
}

func TestSOAPAPIClient_CreateShipment_UndecodableLabel(t *testing.T) {
	reply := `<soapenv:Envelope xmlns:soapenv="http://schemas.xmlsoap.org/soap/envelope/">
  <soapenv:Body>
    <ShipmentResponse>
      <PackagesResult><PackageResult number="1"><TrackingNumber>T1</TrackingNumber></PackageResult></PackagesResult>
      <LabelImage><LabelImageFormat>PDF</LabelImageFormat><GraphicImage>!!!not-base64!!!</GraphicImage></LabelImage>
      <ShipmentIdentificationNumber>1234567890</ShipmentIdentificationNumber>
    </ShipmentResponse>
  </soapenv:Body>
</soapenv:Envelope>`
	client, _ := newSOAPServer(t, http.StatusOK, reply)

	resp, err := client.CreateShipment(context.Background(), testShipmentRequest())

	require.NoError(t, err)
	require.NotNil(t, resp.ShipmentIdentificationNumber)
	assert.Equal(t, "1234567890", *resp.ShipmentIdentificationNumber)
	require.Len(t, resp.LabelImages, 1)
	assert.Empty(t, resp.LabelImages[0].GraphicImage)

	shipment := dhl.InterpretShipmentReply(resp)
	assert.False(t, shipment.Success)
	assert.Equal(t, shipper.MessageNoLabel, shipment.Errors[0].Message)
}

func TestSOAPAPIClient_CreateShipment_PickupTime(t *testing.T) {
	reply := `<soapenv:Envelope xmlns:soapenv="http://schemas.xmlsoap.org/soap/envelope/"><soapenv:Body><ShipmentResponse/></soapenv:Body></soapenv:Envelope>`
	client, captured := newSOAPServer(t, http.StatusOK, reply)

	req := testShipmentRequest()
	req.DropOffType = "REQUEST_COURIER"
	req.PickupLocationCloseTime = "13:05"
	_, err := client.CreateShipment(context.Background(), req)

	require.NoError(t, err)
	assert.Contains(t, captured.body, "<PickupLocationCloseTime>13:05</PickupLocationCloseTime>")
}

func TestSOAPAPIClient_CreateShipment_Rejected(t *testing.T) {
	reply := `<soapenv:Envelope xmlns:soapenv="http://schemas.xmlsoap.org/soap/envelope/">
  <soapenv:Body>
    <ShipmentResponse>
      <Notification code="997"><Message>Invalid postal code</Message></Notification>
    </ShipmentResponse>
  </soapenv:Body>
</soapenv:Envelope>`
	client, _ := newSOAPServer(t, http.StatusOK, reply)

	resp, err := client.CreateShipment(context.Background(), testShipmentRequest())

	require.NoError(t, err)
	assert.Nil(t, resp.ShipmentIdentificationNumber)
	assert.Empty(t, resp.PackageResults)
	assert.Empty(t, resp.LabelImages)
	assert.Equal(t, []dhl.Notification{{Code: "997", Message: "Invalid postal code"}}, resp.Notifications)

	shipment := dhl.InterpretShipmentReply(resp)
	assert.False(t, shipment.Success)
	assert.Equal(t, "997", shipment.Errors[0].Code)
}

func TestSOAPAPIClient_Fault(t *testing.T) {
	reply := `<soapenv:Envelope xmlns:soapenv="http://schemas.xmlsoap.org/soap/envelope/">
  <soapenv:Body>
    <soapenv:Fault>
      <faultcode>soapenv:Server</faultcode>
      <faultstring>Internal Server Error</faultstring>
      <detail><detailmessage>Process failure occurred</detailmessage></detail>
    </soapenv:Fault>
  </soapenv:Body>
</soapenv:Envelope>`
	client, _ := newSOAPServer(t, http.StatusInternalServerError, reply)

	_, err := client.CreateShipment(context.Background(), testShipmentRequest())

	var apiErr *dhl.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "soapenv:Server", apiErr.Code)
	assert.Equal(t, "Process failure occurred", apiErr.Description)
}

func TestSOAPAPIClient_HTTPError(t *testing.T) {
	client, _ := newSOAPServer(t, http.StatusUnauthorized, "Unauthorized")

	_, err := client.TrackShipment(context.Background(), []string{"1234567890"})

	var apiErr *dhl.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "HTTP_401", apiErr.Code)
	assert.Equal(t, "Unauthorized", apiErr.Description)
	assert.ErrorIs(t, err, shipper.ErrAuthenticationFailed)
}

func TestSOAPAPIClient_ServiceUnavailable(t *testing.T) {
	client, _ := newSOAPServer(t, http.StatusServiceUnavailable, "down for maintenance")

	_, err := client.RetrieveProofOfDelivery(context.Background(), "1234567890", false)

	assert.ErrorIs(t, err, shipper.ErrServiceUnavailable)
	assert.NotErrorIs(t, err, shipper.ErrAuthenticationFailed)
}

func TestSOAPAPIClient_MalformedXML(t *testing.T) {
	client, _ := newSOAPServer(t, http.StatusOK, "<not-xml")

	_, err := client.TrackShipment(context.Background(), []string{"1234567890"})

	require.Error(t, err)
	var apiErr *dhl.APIError
	assert.False(t, errors.As(err, &apiErr))
}

func TestSOAPAPIClient_RetrieveProofOfDelivery(t *testing.T) {
	doc := base64.StdEncoding.EncodeToString([]byte("%PDF-1.4 pod"))
	reply := `<soapenv:Envelope xmlns:soapenv="http://schemas.xmlsoap.org/soap/envelope/">
  <soapenv:Body>
    <shipmentDocumentRetrieveResp>
      <MSG>
        <Hdr Id="1" Ver="1.038"/>
        <Bd>
          <Shp Id="1234567890">
            <ShpInDoc DocTyCd="POD">
              <SDoc><Img Img="` + doc + `" ImgMimeTy="application/pdf"/></SDoc>
            </ShpInDoc>
          </Shp>
        </Bd>
      </MSG>
    </shipmentDocumentRetrieveResp>
  </soapenv:Body>
</soapenv:Envelope>`

	t.Run("detailed", func(t *testing.T) {
		client, captured := newSOAPServer(t, http.StatusOK, reply)

		resp, err := client.RetrieveProofOfDelivery(context.Background(), "1234567890", true)

		require.NoError(t, err)
		require.Len(t, resp.Shipments, 1)
		assert.Equal(t, "1234567890", resp.Shipments[0].ID)
		assert.Equal(t, []byte("%PDF-1.4 pod"), resp.Shipments[0].ShipmentDocuments[0].Documents[0].Images[0].Data)

		assert.Equal(t, "/getePOD", captured.path)
		assert.Contains(t, captured.body, `<Shp Id="1234567890">`)
		assert.Contains(t, captured.body, `Ver="1.038"`)
		assert.Contains(t, captured.body, `<Sndr AppCd="DCG" AppNm="DCG"/>`)
		assert.Contains(t, captured.body, `<ShpInDoc DocTyCd="POD"/>`)
		assert.Contains(t, captured.body, `<SCDtl AccNo="950000002" CRlTyCd="SP"/>`)
		assert.Contains(t, captured.body, `<GenrcRqCritr TyCd="IMG_CONTENT" Val="epod-detail"/>`)
		assert.Contains(t, captured.body, `<GenrcRqCritr TyCd="SORT_BY" Val="$INGEST_DATE,D"/>`)
		assert.Contains(t, captured.body, `<GenrcRqCritr TyCd="DUPL_HANDL" Val="CORE_WB_NO"/>`)
	})

	t.Run("summary", func(t *testing.T) {
		client, captured := newSOAPServer(t, http.StatusOK, reply)

		_, err := client.RetrieveProofOfDelivery(context.Background(), "1234567890", false)

		require.NoError(t, err)
		assert.Contains(t, captured.body, `<GenrcRqCritr TyCd="IMG_CONTENT" Val="epod-summary"/>`)
		assert.NotContains(t, captured.body, "AccNo")
	})
}

func TestSOAPAPIClient_RetrieveProofOfDelivery_UndecodableImage(t *testing.T) {
	reply := `<soapenv:Envelope xmlns:soapenv="http://schemas.xmlsoap.org/soap/envelope/">
  <soapenv:Body>
    <shipmentDocumentRetrieveResp><MSG><Bd>
      <Shp Id="1234567890"><ShpInDoc><SDoc><Img Img="!!!not-base64!!!"/></SDoc></ShpInDoc></Shp>
    </Bd></MSG></shipmentDocumentRetrieveResp>
  </soapenv:Body>
</soapenv:Envelope>`
	client, _ := newSOAPServer(t, http.StatusOK, reply)

	resp, err := client.RetrieveProofOfDelivery(context.Background(), "1234567890", false)

	require.NoError(t, err)
	require.Len(t, resp.Shipments, 1)
	assert.Nil(t, resp.Shipments[0].ShipmentDocuments[0].Documents[0].Images[0].Data)
	assert.False(t, dhl.InterpretProofOfDeliveryReply(resp).Success)
}

func TestSOAPAPIClient_RetrieveProofOfDelivery_DataErrors(t *testing.T) {
	reply := `<soapenv:Envelope xmlns:soapenv="http://schemas.xmlsoap.org/soap/envelope/">
  <soapenv:Body>
    <shipmentDocumentRetrieveResp>
      <MSG>
        <Bd/>
        <DatTrErr><DatErrMsg><ErrMsgDtl DtlDsc="No image found"/></DatErrMsg></DatTrErr>
        <DatTrErr><DatErrMsg/></DatTrErr>
      </MSG>
    </shipmentDocumentRetrieveResp>
  </soapenv:Body>
</soapenv:Envelope>`
	client, _ := newSOAPServer(t, http.StatusOK, reply)

	resp, err := client.RetrieveProofOfDelivery(context.Background(), "1234567890", false)

	require.NoError(t, err)
	assert.Empty(t, resp.Shipments)
	require.Len(t, resp.DataErrors, 2)
	require.NotNil(t, resp.DataErrors[0].Message.Detail)
	assert.Equal(t, "No image found", resp.DataErrors[0].Message.Detail.Description)
	require.NotNil(t, resp.DataErrors[1].Message)
	assert.Nil(t, resp.DataErrors[1].Message.Detail)
}

func TestSOAPAPIClient_TrackShipment(t *testing.T) {
	reply := `<soapenv:Envelope xmlns:soapenv="http://schemas.xmlsoap.org/soap/envelope/">
  <soapenv:Body>
    <ser-root:trackShipmentRequestResponse xmlns:ser-root="glDHLExpressTrack/providers/services/trackShipment">
      <trackingResponse>
        <TrackingResponse>
          <AWBInfo>
            <ArrayOfAWBInfoItem>
              <AWBNumber>1234567890</AWBNumber>
              <Status><ActionStatus>success</ActionStatus></Status>
              <ShipmentInfo>
                <ShipmentEvent>
                  <ArrayOfShipmentEventItem>
                    <Date>2024-03-01</Date>
                    <Time>10:15:00</Time>
                    <ServiceEvent><EventCode>PU</EventCode><Description>Shipment picked up</Description></ServiceEvent>
                    <ServiceArea><ServiceAreaCode>LEJ</ServiceAreaCode><Description>Leipzig - Germany</Description></ServiceArea>
                  </ArrayOfShipmentEventItem>
                </ShipmentEvent>
              </ShipmentInfo>
              <Pieces>
                <PieceInfo>
                  <ArrayOfPieceInfoItem>
                    <PieceDetails><LicensePlate>JD014600001</LicensePlate></PieceDetails>
                    <PieceEvent>
                      <ArrayOfPieceEventItem>
                        <Date>2024-03-01</Date>
                        <Time>10:15:00</Time>
                        <ServiceEvent><EventCode>PU</EventCode><Description>Shipment picked up</Description></ServiceEvent>
                        <ServiceArea><ServiceAreaCode>LEJ</ServiceAreaCode><Description>Leipzig - Germany</Description></ServiceArea>
                      </ArrayOfPieceEventItem>
                      <ArrayOfPieceEventItem>
                        <Date>2024-03-02</Date>
                      </ArrayOfPieceEventItem>
                    </PieceEvent>
                  </ArrayOfPieceInfoItem>
                </PieceInfo>
              </Pieces>
            </ArrayOfAWBInfoItem>
            <ArrayOfAWBInfoItem>
              <AWBNumber>0000000000</AWBNumber>
              <Status><ActionStatus>No Shipments Found</ActionStatus></Status>
            </ArrayOfAWBInfoItem>
          </AWBInfo>
        </TrackingResponse>
      </trackingResponse>
    </ser-root:trackShipmentRequestResponse>
  </soapenv:Body>
</soapenv:Envelope>`
	client, captured := newSOAPServer(t, http.StatusOK, reply)

	resp, err := client.TrackShipment(context.Background(), []string{"1234567890", "0000000000"})

	require.NoError(t, err)
	require.Len(t, resp.AWBInfos, 2)

	found := resp.AWBInfos[0]
	assert.Equal(t, "1234567890", found.AWBNumber)
	require.NotNil(t, found.ShipmentInfo)
	require.Len(t, found.ShipmentInfo.Events, 1)
	assert.Equal(t, "PU", found.ShipmentInfo.Events[0].ServiceEvent.EventCode)
	require.Len(t, found.Pieces, 1)
	assert.Equal(t, "JD014600001", found.Pieces[0].Details.LicensePlate)
	require.Len(t, found.Pieces[0].Events, 2)
	assert.Nil(t, found.Pieces[0].Events[1].ServiceEvent)
	assert.Nil(t, found.Pieces[0].Events[1].ServiceArea)

	missing := resp.AWBInfos[1]
	assert.Nil(t, missing.ShipmentInfo)
	assert.Equal(t, "No Shipments Found", missing.Status.ActionStatus)

	tracking := dhl.InterpretTrackingReply(resp)
	assert.Len(t, tracking.ShipmentEvents, 1)
	assert.Len(t, tracking.PieceEvents["JD014600001"], 1)

	assert.Equal(t, "/glDHLExpressTrack", captured.path)
	assert.Contains(t, captured.body, "<ArrayOfAWBNumberItem>1234567890</ArrayOfAWBNumberItem>")
	assert.Contains(t, captured.body, "<ArrayOfAWBNumberItem>0000000000</ArrayOfAWBNumberItem>")
	assert.Contains(t, captured.body, "<LevelOfDetails>ALL_CHECK_POINTS</LevelOfDetails>")
	assert.Contains(t, captured.body, "<PiecesEnabled>B</PiecesEnabled>")
	assert.Regexp(t, `<MessageReference>[0-9a-f]{32}</MessageReference>`, captured.body)
}

func TestNewSOAPAPIClient_Endpoints(t *testing.T) {
	prod := dhl.NewSOAPAPIClient(dhl.SOAPAPIClientConfig{})
	test := dhl.NewSOAPAPIClient(dhl.SOAPAPIClientConfig{TestMode: true})

	assert.Equal(t, "https://wsbexpress.dhl.com:443/gbl/expressRateBook", prod.Endpoint("/expressRateBook"))
	assert.Equal(t, "https://wsbexpress.dhl.com:443/sndpt/getePOD", test.Endpoint("/getePOD"))
}
