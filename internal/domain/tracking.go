package domain

import "strings"

// TrackingStatus is the shipment status of a tracking record
type TrackingStatus string

const (
	TrackingNotStarted TrackingStatus = "NotStarted"
	TrackingTransit    TrackingStatus = "Transit"
	TrackingDelivered  TrackingStatus = "Delivered"
	TrackingIssue      TrackingStatus = "Issue"
)

var trackingStatusLabels = map[string]TrackingStatus{
	"notstarted": TrackingNotStarted,
	"transit":    TrackingTransit,
	"delivered":  TrackingDelivered,
	"issue":      TrackingIssue,
}

// ParseTrackingStatus returns the status for a label (case-insensitive)
func ParseTrackingStatus(label string) (TrackingStatus, bool) {
	status, ok := trackingStatusLabels[strings.ToLower(strings.TrimSpace(label))]
	return status, ok
}

// IsValid checks the status is one of the known values
func (s TrackingStatus) IsValid() bool {
	switch s {
	case TrackingNotStarted, TrackingTransit, TrackingDelivered, TrackingIssue:
		return true
	}
	return false
}

// IsOpen reports whether the shipment is still moving. Open shipments past
// their ETA get flagged Issue by the sweeper.
func (s TrackingStatus) IsOpen() bool {
	return s == TrackingNotStarted || s == TrackingTransit
}
