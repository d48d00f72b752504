package dhl

import (
	"github.com/tournevent/dhlexpress/pkg/shipper"
)

// InterpretShipmentReply classifies a shipment creation reply.
//
// A reply carrying an identification number and a tracking number for every
// package result is treated as booked, and then needs a label to succeed.
// Anything else is a rejection, reported through the carrier notifications
// or a sentinel message when there are none.
func InterpretShipmentReply(reply *ShipmentReply) *shipper.ShipmentResponse {
	if reply == nil {
		reply = &ShipmentReply{}
	}

	id, trackingNumbers, ok := bookedIdentifiers(reply)
	if !ok {
		if len(reply.Notifications) == 0 {
			return &shipper.ShipmentResponse{
				Response: shipper.Failed(shipper.Notification{Message: shipper.MessageNoNotifications}),
			}
		}
		errs := make([]shipper.Notification, len(reply.Notifications))
		for i, n := range reply.Notifications {
			errs[i] = shipper.Notification{Code: n.Code, Message: n.Message}
		}
		return &shipper.ShipmentResponse{Response: shipper.Failed(errs...)}
	}

	var label []byte
	if len(reply.LabelImages) > 0 {
		label = reply.LabelImages[0].GraphicImage
	}
	if len(label) == 0 {
		return &shipper.ShipmentResponse{
			Response: shipper.Failed(shipper.Notification{Message: shipper.MessageNoLabel}),
		}
	}

	resp := &shipper.ShipmentResponse{
		Response:             shipper.Response{Success: true},
		IdentificationNumber: id,
		TrackingNumbers:      trackingNumbers,
		LabelBytes:           label,
	}
	if reply.DispatchConfirmationNumber != nil {
		resp.DispatchNumber = *reply.DispatchConfirmationNumber
	}
	return resp
}

func bookedIdentifiers(reply *ShipmentReply) (string, []string, bool) {
	if reply.ShipmentIdentificationNumber == nil || *reply.ShipmentIdentificationNumber == "" {
		return "", nil, false
	}
	if len(reply.PackageResults) == 0 {
		return "", nil, false
	}
	trackingNumbers := make([]string, len(reply.PackageResults))
	for i, pr := range reply.PackageResults {
		if pr.TrackingNumber == "" {
			return "", nil, false
		}
		trackingNumbers[i] = pr.TrackingNumber
	}
	return *reply.ShipmentIdentificationNumber, trackingNumbers, true
}

// InterpretProofOfDeliveryReply extracts the first document image of the
// first shipment. When there is none the reply is a failure carrying the
// data error details, or no errors at all if any detail is malformed.
func InterpretProofOfDeliveryReply(reply *PODReply) *shipper.ProofOfDeliveryResponse {
	if reply == nil {
		reply = &PODReply{}
	}

	if doc := podDocument(reply); len(doc) > 0 {
		return &shipper.ProofOfDeliveryResponse{
			Response: shipper.Response{Success: true},
			Document: doc,
		}
	}
	return &shipper.ProofOfDeliveryResponse{Response: shipper.Failed(podErrors(reply)...)}
}

func podDocument(reply *PODReply) []byte {
	if len(reply.Shipments) == 0 {
		return nil
	}
	shp := reply.Shipments[0]
	if len(shp.ShipmentDocuments) == 0 {
		return nil
	}
	docs := shp.ShipmentDocuments[0].Documents
	if len(docs) == 0 || len(docs[0].Images) == 0 {
		return nil
	}
	return docs[0].Images[0].Data
}

func podErrors(reply *PODReply) []shipper.Notification {
	errs := make([]shipper.Notification, 0, len(reply.DataErrors))
	for _, de := range reply.DataErrors {
		if de.Message == nil || de.Message.Detail == nil {
			return []shipper.Notification{}
		}
		errs = append(errs, shipper.Notification{Message: de.Message.Detail.Description})
	}
	return errs
}

// InterpretTrackingReply collects the shipment and piece checkpoints of every
// waybill in the reply. The result is always successful; a checkpoint without
// an event code or service area is skipped and the rest are kept.
func InterpretTrackingReply(reply *TrackingReply) *shipper.TrackingResponse {
	resp := &shipper.TrackingResponse{
		Response:       shipper.Response{Success: true},
		ShipmentEvents: []shipper.TrackingEvent{},
		PieceEvents:    make(map[string][]shipper.TrackingEvent),
	}
	if reply == nil {
		return resp
	}

	for _, awb := range reply.AWBInfos {
		if awb.ShipmentInfo != nil {
			for _, ev := range awb.ShipmentInfo.Events {
				if !wellFormed(ev.ServiceEvent, ev.ServiceArea) {
					continue
				}
				resp.ShipmentEvents = append(resp.ShipmentEvents, shipper.TrackingEvent{
					Waybill:             awb.AWBNumber,
					Code:                ev.ServiceEvent.EventCode,
					LocationCode:        ev.ServiceArea.ServiceAreaCode,
					LocationDescription: ev.ServiceArea.Description,
				})
			}
		}

		for _, piece := range awb.Pieces {
			if piece.Details == nil || piece.Details.LicensePlate == "" {
				continue
			}
			plate := piece.Details.LicensePlate
			events := resp.PieceEvents[plate]
			if events == nil {
				events = []shipper.TrackingEvent{}
			}
			for _, ev := range piece.Events {
				if !wellFormed(ev.ServiceEvent, ev.ServiceArea) {
					continue
				}
				events = append(events, shipper.TrackingEvent{
					Waybill:             awb.AWBNumber,
					Code:                ev.ServiceEvent.EventCode,
					Description:         ev.ServiceEvent.Description,
					LocationCode:        ev.ServiceArea.ServiceAreaCode,
					LocationDescription: ev.ServiceArea.Description,
					Date:                ev.Date,
					Time:                ev.Time,
				})
			}
			resp.PieceEvents[plate] = events
		}
	}
	return resp
}

func wellFormed(ev *ServiceEvent, area *ServiceArea) bool {
	return ev != nil && ev.EventCode != "" && area != nil
}
