package models_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/linesmerrill/relief-api/models"
)

func TestDerivePriority(t *testing.T) {
	assert.Equal(t, models.PriorityHighest, models.DerivePriority(models.TypeEarthquake, models.SeverityCritical))
	assert.Equal(t, models.PriorityHighest, models.DerivePriority(models.TypeMedicalEmergency, models.SeverityCritical))
	assert.Equal(t, models.PriorityHigh, models.DerivePriority(models.TypeFire, models.SeverityCritical))
	assert.Equal(t, models.PriorityNormal, models.DerivePriority(models.TypeEarthquake, models.SeverityHigh))
	assert.Equal(t, models.PriorityNormal, models.DerivePriority(models.TypeFlood, models.SeverityLow))
}

func TestDefaultSeverity(t *testing.T) {
	assert.Equal(t, models.SeverityCritical, models.DefaultSeverity(models.TypeEarthquake))
	assert.Equal(t, models.SeverityHigh, models.DefaultSeverity(models.TypeFire))
	assert.Equal(t, models.SeverityMedium, models.DefaultSeverity(models.TypeCrime))
}

func TestParseSeverity(t *testing.T) {
	s, ok := models.ParseSeverity(" critical ")
	assert.True(t, ok)
	assert.Equal(t, models.SeverityCritical, s)

	_, ok = models.ParseSeverity("apocalyptic")
	assert.False(t, ok)
}

func TestMergeTags(t *testing.T) {
	got := models.MergeTags(models.TypeFire, []string{"#Downtown", "#RescueTeam", " ", "#Downtown"})
	assert.Equal(t, []string{"#Downtown", "#RescueTeam", "#FireEmergency", "#Firefighters"}, got)
	assert.Empty(t, models.MergeTags("Meteor", nil))
}

func TestEmergencyNeedsHas(t *testing.T) {
	n := models.EmergencyNeeds{Food: true, RescueTeam: true}
	assert.True(t, n.Has("food"))
	assert.True(t, n.Has("RescueTeam"))
	assert.False(t, n.Has("shelter"))
	assert.False(t, n.Has("unicorns"))
}

func TestEmergencyPendingApproval(t *testing.T) {
	e := models.Emergency{
		Status:     models.StatusInProgress,
		Volunteers: []models.VolunteerAssignment{{UserID: "a", Status: models.AssignmentPending}},
	}
	assert.False(t, e.PendingApproval())
	assert.Equal(t, models.StatusInProgress, e.DisplayStatus())

	e.Volunteers[0].Status = models.AssignmentCompleted
	assert.True(t, e.PendingApproval())
	assert.Equal(t, models.StatusPendingApproval, e.DisplayStatus())

	e.VictimApproval = true
	e.Status = models.StatusCompleted
	assert.False(t, e.PendingApproval())
	assert.Equal(t, models.StatusCompleted, e.DisplayStatus())
}

func TestEmergencyAssignment(t *testing.T) {
	e := models.Emergency{Volunteers: []models.VolunteerAssignment{{UserID: "a"}, {UserID: "b"}}}
	a, i := e.Assignment("b")
	assert.Equal(t, 1, i)
	assert.Equal(t, "b", a.UserID)

	a, i = e.Assignment("c")
	assert.Nil(t, a)
	assert.Equal(t, -1, i)
}

func TestEmergencyMarshalJSON(t *testing.T) {
	e := models.Emergency{
		Type:       models.TypeOther,
		CustomType: "Landslide",
		Location:   models.NamedPlace("Wayanad"),
		Status:     models.StatusInProgress,
		Volunteers: []models.VolunteerAssignment{{UserID: "a", Status: models.AssignmentCompleted}},
		Version:    7,
	}
	b, err := json.Marshal(e)
	assert.NoError(t, err)

	var got map[string]interface{}
	assert.NoError(t, json.Unmarshal(b, &got))
	assert.Equal(t, "Wayanad", got["location"])
	assert.Equal(t, true, got["pendingApproval"])
	assert.Equal(t, "Pending Approval", got["displayStatus"])
	assert.Equal(t, "In Progress", got["status"])
	assert.NotContains(t, got, "version")
	assert.Equal(t, "Landslide", e.DisplayType())
}

func TestStatusRank(t *testing.T) {
	assert.Less(t, models.StatusPending.Rank(), models.StatusInProgress.Rank())
	assert.Less(t, models.StatusInProgress.Rank(), models.StatusCompleted.Rank())
	assert.Equal(t, -1, models.EmergencyStatus("Lost").Rank())
	assert.True(t, models.StatusInProgress.Active())
	assert.False(t, models.StatusCompleted.Active())
}

func TestRedeemDestinationPayout(t *testing.T) {
	amount, currency := models.DestinationBank.Payout(2000)
	assert.Equal(t, 20.0, amount)
	assert.Equal(t, "INR", currency)

	amount, currency = models.DestinationWallet.Payout(3000)
	assert.InDelta(t, 0.03, amount, 1e-9)
	assert.Equal(t, "ETH", currency)

	d, ok := models.ParseRedeemDestination("Wallet")
	assert.True(t, ok)
	assert.Equal(t, models.DestinationWallet, d)
	_, ok = models.ParseRedeemDestination("paypal")
	assert.False(t, ok)
}

func TestPayoutDetails(t *testing.T) {
	assert.False(t, models.PayoutDetails{AccountNumber: "1"}.HasBank())
	assert.True(t, models.PayoutDetails{UpiID: "me@upi"}.HasBank())
	assert.True(t, models.PayoutDetails{AccountNumber: "1", IFSCCode: "X", BankName: "B"}.HasBank())
	assert.False(t, models.PayoutDetails{}.HasWallet())
}
