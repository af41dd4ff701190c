package services

import (
	"sort"
	"strings"

	"github.com/linesmerrill/relief-api/models"
)

// Sort keys accepted by FilterActive
const (
	SortBySeverity = "severity"
	SortByType     = "type"
	SortByTime     = "time"
)

// FilterActive keeps the active emergencies matching f and orders them by
// f.SortBy. Location and type match as case-insensitive substrings, severity
// exactly, and every listed resource must be a need of the emergency. An
// unknown sort key keeps the input order.
func FilterActive(emergencies []models.Emergency, f models.ActiveFilter) []models.Emergency {
	location := strings.ToLower(strings.TrimSpace(f.Location))
	emergencyType := strings.ToLower(strings.TrimSpace(f.Type))
	severity := strings.TrimSpace(f.Severity)

	out := make([]models.Emergency, 0, len(emergencies))
	for _, e := range emergencies {
		if !e.Status.Active() {
			continue
		}
		if location != "" && !strings.Contains(strings.ToLower(e.Location.String()), location) {
			continue
		}
		if emergencyType != "" &&
			!strings.Contains(strings.ToLower(e.Type), emergencyType) &&
			!strings.Contains(strings.ToLower(e.CustomType), emergencyType) {
			continue
		}
		if severity != "" && !strings.EqualFold(string(e.Severity), severity) {
			continue
		}
		if !needsAll(e.EmergencyNeeds, f.Resources) {
			continue
		}
		out = append(out, e)
	}

	switch strings.ToLower(strings.TrimSpace(f.SortBy)) {
	case SortBySeverity:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].Severity.Rank() < out[j].Severity.Rank()
		})
	case SortByType:
		sort.SliceStable(out, func(i, j int) bool {
			return strings.ToLower(out[i].DisplayType()) < strings.ToLower(out[j].DisplayType())
		})
	case SortByTime:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].Time.After(out[j].Time)
		})
	}
	return out
}

func needsAll(needs models.EmergencyNeeds, resources []string) bool {
	for _, r := range resources {
		if strings.TrimSpace(r) == "" {
			continue
		}
		if !needs.Has(r) {
			return false
		}
	}
	return true
}
