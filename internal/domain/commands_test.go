package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertRuleCode(t *testing.T, err error, code string) {
	t.Helper()
	var ruleErr *RuleError
	require.ErrorAs(t, err, &ruleErr)
	assert.Equal(t, code, ruleErr.Code)
}

func TestSetDestinationValidate(t *testing.T) {
	assert.NoError(t, SetDestination{Destination: DestinationHouse}.Validate())
	assert.NoError(t, SetDestination{Destination: DestinationDropship}.Validate())
	assertRuleCode(t, SetDestination{Destination: "Attic"}.Validate(), "INVALID_DESTINATION")
	assertRuleCode(t, SetDestination{}.Validate(), "INVALID_DESTINATION")
}

func TestSetCostsValidate(t *testing.T) {
	tests := []struct {
		name     string
		cmd      SetCosts
		wantCode string
	}{
		{"both nil", SetCosts{}, "EMPTY_PATCH"},
		{"total only", SetCosts{TotalCost: dec("10.00")}, ""},
		{"shipping only", SetCosts{ShippingCost: dec("2.50")}, ""},
		{"zero is fine", SetCosts{TotalCost: dec("0")}, ""},
		{"negative total", SetCosts{TotalCost: dec("-1")}, "NEGATIVE_COST"},
		{"negative shipping", SetCosts{TotalCost: dec("5"), ShippingCost: dec("-0.01")}, "NEGATIVE_COST"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cmd.Validate()
			if tt.wantCode == "" {
				assert.NoError(t, err)
				return
			}
			assertRuleCode(t, err, tt.wantCode)
		})
	}
}

func TestLinkSaleValidate(t *testing.T) {
	assert.NoError(t, LinkSale{BuyingOrderID: 1, SellingOrderID: 2}.Validate())
	assertRuleCode(t, LinkSale{SellingOrderID: 2}.Validate(), "INVALID_PURCHASE")
	assertRuleCode(t, LinkSale{BuyingOrderID: 1}.Validate(), "INVALID_SALES")
}

func TestAttachTrackingValidate(t *testing.T) {
	assert.NoError(t, AttachTracking{TrackingID: 9}.Validate())
	assertRuleCode(t, AttachTracking{}.Validate(), "INVALID_TRACKING")
}

func TestUpdateTrackingValidate(t *testing.T) {
	carrier := "UPS"
	number := "1Z999"
	empty := ""
	bogus := TrackingStatus("Lost")
	transit := TrackingTransit

	assert.NoError(t, UpdateTracking{Carrier: &carrier}.Validate())
	assert.NoError(t, UpdateTracking{TrackingNumber: &number, Status: &transit}.Validate())
	assertRuleCode(t, UpdateTracking{}.Validate(), "EMPTY_PATCH")
	assertRuleCode(t, UpdateTracking{Status: &bogus}.Validate(), "INVALID_STATUS")
	assertRuleCode(t, UpdateTracking{TrackingNumber: &empty}.Validate(), "INVALID_TRACKING_NUMBER")
}

func TestParseTrackingStatus(t *testing.T) {
	status, ok := ParseTrackingStatus("transit")
	require.True(t, ok)
	assert.Equal(t, TrackingTransit, status)

	status, ok = ParseTrackingStatus(" Delivered ")
	require.True(t, ok)
	assert.Equal(t, TrackingDelivered, status)

	_, ok = ParseTrackingStatus("lost")
	assert.False(t, ok)
}

func TestTrackingStatusIsOpen(t *testing.T) {
	assert.True(t, TrackingNotStarted.IsOpen())
	assert.True(t, TrackingTransit.IsOpen())
	assert.False(t, TrackingDelivered.IsOpen())
	assert.False(t, TrackingIssue.IsOpen())
}
