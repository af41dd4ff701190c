package models

import (
	"encoding/json"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// EmergencyStatus is the lifecycle state of an emergency report. Only Pending,
// In Progress and Completed are ever stored; Pending Approval is derived.
type EmergencyStatus string

// Emergency statuses in lifecycle order
const (
	StatusPending         EmergencyStatus = "Pending"
	StatusInProgress      EmergencyStatus = "In Progress"
	StatusPendingApproval EmergencyStatus = "Pending Approval"
	StatusCompleted       EmergencyStatus = "Completed"
)

// Rank orders statuses along the lifecycle. Unknown statuses rank -1.
func (s EmergencyStatus) Rank() int {
	switch s {
	case StatusPending:
		return 0
	case StatusInProgress:
		return 1
	case StatusPendingApproval:
		return 2
	case StatusCompleted:
		return 3
	}
	return -1
}

// Active reports whether the emergency still accepts volunteers.
func (s EmergencyStatus) Active() bool {
	return s == StatusPending || s == StatusInProgress
}

// Severity of a reported emergency
type Severity string

// Severities from most to least urgent
const (
	SeverityCritical Severity = "Critical"
	SeverityHigh     Severity = "High"
	SeverityMedium   Severity = "Medium"
	SeverityLow      Severity = "Low"
)

// Rank orders severities with Critical first. Unknown severities sort last.
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 0
	case SeverityHigh:
		return 1
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 3
	}
	return 4
}

// ParseSeverity matches s case-insensitively against the known severities.
func ParseSeverity(s string) (Severity, bool) {
	for _, sev := range []Severity{SeverityCritical, SeverityHigh, SeverityMedium, SeverityLow} {
		if strings.EqualFold(strings.TrimSpace(s), string(sev)) {
			return sev, true
		}
	}
	return "", false
}

// Priority is derived from the type and severity of a report
type Priority string

// Priorities
const (
	PriorityHighest Priority = "Highest"
	PriorityHigh    Priority = "High"
	PriorityNormal  Priority = "Normal"
)

// Disaster types offered by the report form
const (
	TypeFire             = "Fire"
	TypeFlood            = "Flood"
	TypeEarthquake       = "Earthquake"
	TypeAccident         = "Accident"
	TypeMedicalEmergency = "Medical Emergency"
	TypeCrime            = "Crime"
	TypeOther            = "Other"
)

// DerivePriority returns Highest for critical earthquakes and medical
// emergencies, High for any other critical report and Normal otherwise.
func DerivePriority(emergencyType string, severity Severity) Priority {
	if severity != SeverityCritical {
		return PriorityNormal
	}
	if emergencyType == TypeEarthquake || emergencyType == TypeMedicalEmergency {
		return PriorityHighest
	}
	return PriorityHigh
}

// DefaultSeverity is used when a report arrives without a severity.
func DefaultSeverity(emergencyType string) Severity {
	switch emergencyType {
	case TypeEarthquake, TypeMedicalEmergency:
		return SeverityCritical
	case TypeFire, TypeFlood:
		return SeverityHigh
	}
	return SeverityMedium
}

var defaultTags = map[string][]string{
	TypeFire:             {"#FireEmergency", "#RescueTeam", "#Firefighters"},
	TypeFlood:            {"#FloodRelief", "#WaterRescue", "#EmergencyShelter"},
	TypeEarthquake:       {"#EarthquakeAlert", "#RescueOperation", "#EmergencyResponse"},
	TypeAccident:         {"#RoadAccident", "#EmergencyServices", "#RescueTeam"},
	TypeMedicalEmergency: {"#MedicalHelp", "#Ambulance", "#EmergencyCare"},
	TypeCrime:            {"#CrimeAlert", "#PoliceHelp", "#EmergencyResponse"},
	TypeOther:            {"#EmergencyAlert", "#HelpNeeded", "#DisasterResponse"},
}

// MergeTags appends the default hashtags of emergencyType to tags, dropping
// empty values and duplicates while keeping first-seen order.
func MergeTags(emergencyType string, tags []string) []string {
	seen := make(map[string]bool)
	out := make([]string, 0, len(tags)+3)
	for _, t := range append(append([]string{}, tags...), defaultTags[emergencyType]...) {
		t = strings.TrimSpace(t)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

// EmergencyNeeds holds the resources a victim asked for
type EmergencyNeeds struct {
	MedicalAid      bool `json:"medicalAid" bson:"medicalAid"`
	Food            bool `json:"food" bson:"food"`
	Shelter         bool `json:"shelter" bson:"shelter"`
	Clothes         bool `json:"clothes" bson:"clothes"`
	DailyEssentials bool `json:"dailyEssentials" bson:"dailyEssentials"`
	RescueTeam      bool `json:"rescueTeam" bson:"rescueTeam"`
	Firefighters    bool `json:"firefighters" bson:"firefighters"`
	LawEnforcement  bool `json:"lawEnforcement" bson:"lawEnforcement"`
}

// Has reports whether the named resource (json field name, any case) is needed.
// Unknown names are never needed.
func (n EmergencyNeeds) Has(resource string) bool {
	switch strings.ToLower(strings.TrimSpace(resource)) {
	case "medicalaid":
		return n.MedicalAid
	case "food":
		return n.Food
	case "shelter":
		return n.Shelter
	case "clothes":
		return n.Clothes
	case "dailyessentials":
		return n.DailyEssentials
	case "rescueteam":
		return n.RescueTeam
	case "firefighters":
		return n.Firefighters
	case "lawenforcement":
		return n.LawEnforcement
	}
	return false
}

// Contact holds the reporter's contact details
type Contact struct {
	Phone string `json:"phone" bson:"phone"`
	Email string `json:"email" bson:"email"`
}

// EmergencyContact is someone to reach on the victim's behalf
type EmergencyContact struct {
	Name         string `json:"name" bson:"name"`
	Phone        string `json:"phone" bson:"phone"`
	Relationship string `json:"relationship" bson:"relationship"`
}

// MediaItem is an uploaded photo or video attached to a report
type MediaItem struct {
	URL         string `json:"url" bson:"url"`
	PublicID    string `json:"publicId" bson:"publicId"`
	ContentType string `json:"contentType" bson:"contentType"`
}

// AssignmentStatus is the state of one volunteer's contribution
type AssignmentStatus string

// Assignment statuses
const (
	AssignmentPending   AssignmentStatus = "Pending"
	AssignmentCompleted AssignmentStatus = "Completed"
)

// VolunteerAssignment binds a volunteer to an emergency
type VolunteerAssignment struct {
	UserID      string           `json:"userId" bson:"userId"`
	Status      AssignmentStatus `json:"status" bson:"status"`
	JoinedAt    time.Time        `json:"joinedAt" bson:"joinedAt"`
	CompletedAt *time.Time       `json:"completedAt,omitempty" bson:"completedAt,omitempty"`
}

// History actions
const (
	ActionReported           = "Reported"
	ActionVolunteered        = "Volunteered"
	ActionMarkedCompleted    = "Marked Completed"
	ActionApprovedCompletion = "Approved Completion"
)

// HistoryEntry is one audit log line on an emergency
type HistoryEntry struct {
	Action    string    `json:"action" bson:"action"`
	UserID    string    `json:"userId" bson:"userId"`
	Timestamp time.Time `json:"timestamp" bson:"timestamp"`
}

// Emergency holds the structure for the emergencies collection in mongo
type Emergency struct {
	ID               primitive.ObjectID    `json:"_id" bson:"_id,omitempty"`
	Type             string                `json:"type" bson:"type"`
	CustomType       string                `json:"customType" bson:"customType"`
	Severity         Severity              `json:"severity" bson:"severity"`
	Priority         Priority              `json:"priority" bson:"priority"`
	Description      string                `json:"description" bson:"description"`
	Location         Location              `json:"location" bson:"location"`
	Time             time.Time             `json:"time" bson:"time"`
	Tags             []string              `json:"tags" bson:"tags"`
	EmergencyNeeds   EmergencyNeeds        `json:"emergencyNeeds" bson:"emergencyNeeds"`
	Contact          Contact               `json:"contact" bson:"contact"`
	EmergencyContact EmergencyContact      `json:"emergencyContact" bson:"emergencyContact"`
	Media            []MediaItem           `json:"media" bson:"media"`
	Status           EmergencyStatus       `json:"status" bson:"status"`
	ReportedBy       string                `json:"reportedBy" bson:"reportedBy"`
	Volunteers       []VolunteerAssignment `json:"volunteers" bson:"volunteers"`
	VictimApproval   bool                  `json:"victimApproval" bson:"victimApproval"`
	History          []HistoryEntry        `json:"history" bson:"history"`
	Version          int64                 `json:"-" bson:"version"`
	CreatedAt        time.Time             `json:"createdAt" bson:"createdAt"`
	UpdatedAt        time.Time             `json:"updatedAt" bson:"updatedAt"`
}

// Assignment returns the volunteer entry for userID and its index, or nil, -1.
func (e *Emergency) Assignment(userID string) (*VolunteerAssignment, int) {
	for i := range e.Volunteers {
		if e.Volunteers[i].UserID == userID {
			return &e.Volunteers[i], i
		}
	}
	return nil, -1
}

// HasCompletedVolunteer reports whether any volunteer marked their work done.
func (e *Emergency) HasCompletedVolunteer() bool {
	for _, v := range e.Volunteers {
		if v.Status == AssignmentCompleted {
			return true
		}
	}
	return false
}

// PendingApproval is true while the reporter still has to approve completed work.
func (e *Emergency) PendingApproval() bool {
	return e.Status == StatusInProgress && e.HasCompletedVolunteer() && !e.VictimApproval
}

// DisplayStatus is Status with the derived Pending Approval state folded in.
func (e *Emergency) DisplayStatus() EmergencyStatus {
	if e.PendingApproval() {
		return StatusPendingApproval
	}
	return e.Status
}

// DisplayType is the custom type for "Other" reports, the type otherwise.
func (e *Emergency) DisplayType() string {
	if e.Type == TypeOther && e.CustomType != "" {
		return e.CustomType
	}
	return e.Type
}

// MarshalJSON adds the derived approval fields to the stored document.
func (e Emergency) MarshalJSON() ([]byte, error) {
	type emergencyAlias Emergency
	return json.Marshal(struct {
		emergencyAlias
		PendingApproval bool            `json:"pendingApproval"`
		DisplayStatus   EmergencyStatus `json:"displayStatus"`
	}{
		emergencyAlias:  emergencyAlias(e),
		PendingApproval: e.PendingApproval(),
		DisplayStatus:   e.DisplayStatus(),
	})
}

// DashboardStats are the aggregate counters shown on the dashboard
type DashboardStats struct {
	ActiveEmergencies   int64 `json:"activeEmergencies"`
	ResolvedEmergencies int64 `json:"resolvedEmergencies"`
	TotalContributors   int64 `json:"totalContributors"`
}

// VolunteerHistoryEntry is one row of a volunteer's participation history
type VolunteerHistoryEntry struct {
	EmergencyID      string           `json:"emergencyId"`
	Type             string           `json:"type"`
	Status           AssignmentStatus `json:"status"`
	EmergencyStatus  EmergencyStatus  `json:"emergencyStatus"`
	JoinedAt         time.Time        `json:"joinedAt"`
	CompletedAt      *time.Time       `json:"completedAt,omitempty"`
	IncentivesEarned int64            `json:"incentivesEarned"`
}

// EmergencyRequest is the body of a new report. Multipart submissions carry the
// same fields as form values, with the nested objects JSON encoded.
type EmergencyRequest struct {
	Type             string           `json:"type"`
	CustomType       string           `json:"customType"`
	Severity         string           `json:"severity"`
	Description      string           `json:"description"`
	Location         string           `json:"location"`
	Time             *time.Time       `json:"time"`
	Tags             []string         `json:"tags"`
	EmergencyNeeds   EmergencyNeeds   `json:"emergencyNeeds"`
	Contact          Contact          `json:"contact"`
	EmergencyContact EmergencyContact `json:"emergencyContact"`
}

// ActiveFilter narrows and orders the active emergencies list
type ActiveFilter struct {
	Location  string
	Type      string
	Severity  string
	Resources []string
	SortBy    string
}
