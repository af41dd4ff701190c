package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/linesmerrill/relief-api/api"
	"github.com/linesmerrill/relief-api/config"
	"github.com/linesmerrill/relief-api/models"
	"github.com/linesmerrill/relief-api/services"
)

const (
	maxMediaParts    = 5
	maxMultipartBody = maxMediaParts*services.MaxMediaSize + maxJSONBody
	multipartMemory  = 32 << 20
)

// Emergency exposes reporting, discovery and the volunteer workflow
type Emergency struct {
	Service *services.EmergencyService
	Media   *services.MediaService
}

// CreateEmergencyHandler files a report. It accepts a JSON body or a multipart
// form whose media parts are uploaded before the report is stored.
func (e Emergency) CreateEmergencyHandler(w http.ResponseWriter, r *http.Request) {
	s, ok := session(w, r)
	if !ok {
		return
	}

	var (
		req   models.EmergencyRequest
		media []models.MediaItem
		err   error
	)
	if isMultipart(r) {
		r.Body = http.MaxBytesReader(w, r.Body, maxMultipartBody)
		if err = r.ParseMultipartForm(multipartMemory); err != nil {
			writeError(w, "failed to create emergency", fmt.Errorf("%w: failed to parse form: %v", services.ErrValidation, err))
			return
		}
		defer func() { _ = r.MultipartForm.RemoveAll() }()
		if req, err = emergencyRequestFromForm(r.MultipartForm); err != nil {
			writeError(w, "failed to create emergency", err)
			return
		}
		if media, err = e.uploadMedia(r, r.MultipartForm.File["media"]); err != nil {
			writeError(w, "failed to upload media", err)
			return
		}
	} else if err = decodeJSON(r, &req); err != nil {
		writeError(w, "failed to create emergency", err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	emergency, err := e.Service.Create(ctx, s.UserID, req, media)
	if err != nil {
		writeError(w, "failed to create emergency", err)
		return
	}
	zap.S().Infow("emergency reported", "emergencyId", emergency.ID.Hex(), "type", emergency.Type, "reportedBy", s.UserID)
	config.WriteData(w, http.StatusCreated, emergency)
}

func (e Emergency) uploadMedia(r *http.Request, files []*multipart.FileHeader) ([]models.MediaItem, error) {
	if len(files) > maxMediaParts {
		return nil, fmt.Errorf("%w: at most %d media files are accepted", services.ErrValidation, maxMediaParts)
	}
	items := make([]models.MediaItem, 0, len(files))
	for _, fh := range files {
		if fh.Size > services.MaxMediaSize {
			return nil, fmt.Errorf("%w: %s is larger than %d MiB", services.ErrValidation, fh.Filename, services.MaxMediaSize>>20)
		}
		f, err := fh.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to open %s: %w", fh.Filename, err)
		}
		item, err := e.Media.Upload(r.Context(), fh.Filename, f)
		_ = f.Close()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

// emergencyRequestFromForm reads the report fields of a multipart form. The
// nested objects arrive JSON encoded.
func emergencyRequestFromForm(form *multipart.Form) (models.EmergencyRequest, error) {
	get := func(key string) string {
		if v := form.Value[key]; len(v) > 0 {
			return strings.TrimSpace(v[0])
		}
		return ""
	}
	req := models.EmergencyRequest{
		Type:        get("type"),
		CustomType:  get("customType"),
		Severity:    get("severity"),
		Description: get("description"),
		Location:    get("location"),
	}
	if v := get("time"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return req, fmt.Errorf("%w: invalid time %q", services.ErrValidation, v)
		}
		req.Time = &t
	}
	if v := get("tags"); v != "" {
		if strings.HasPrefix(v, "[") {
			if err := json.Unmarshal([]byte(v), &req.Tags); err != nil {
				return req, fmt.Errorf("%w: invalid tags", services.ErrValidation)
			}
		} else {
			req.Tags = splitCSV(v)
		}
	}
	for key, dst := range map[string]interface{}{
		"emergencyNeeds":   &req.EmergencyNeeds,
		"contact":          &req.Contact,
		"emergencyContact": &req.EmergencyContact,
	} {
		if v := get(key); v != "" {
			if err := json.Unmarshal([]byte(v), dst); err != nil {
				return req, fmt.Errorf("%w: invalid %s", services.ErrValidation, key)
			}
		}
	}
	return req, nil
}

// IncidentsHandler lists every report for the map and dashboard views
func (e Emergency) IncidentsHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	emergencies, err := e.Service.ListAll(ctx)
	if err != nil {
		writeError(w, "failed to get emergencies", err)
		return
	}
	config.WriteData(w, http.StatusOK, emergencies)
}

// ActiveEmergenciesHandler lists the emergencies volunteers can still help
// with, filtered and sorted by the query string
func (e Emergency) ActiveEmergenciesHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := models.ActiveFilter{
		Location:  strings.TrimSpace(q.Get("location")),
		Type:      strings.TrimSpace(q.Get("type")),
		Severity:  strings.TrimSpace(q.Get("severity")),
		Resources: splitCSV(q.Get("resources")),
		SortBy:    strings.TrimSpace(q.Get("sortBy")),
	}
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	emergencies, err := e.Service.ListActive(ctx, f)
	if err != nil {
		writeError(w, "failed to get active emergencies", err)
		return
	}
	config.WriteData(w, http.StatusOK, emergencies)
}

// EmergencyHandler returns one emergency with its history
func (e Emergency) EmergencyHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	emergency, err := e.Service.Get(ctx, mux.Vars(r)["emergencyId"])
	if err != nil {
		writeError(w, "failed to get emergency", err)
		return
	}
	config.WriteData(w, http.StatusOK, emergency)
}

// VolunteerHandler assigns the caller to an emergency
func (e Emergency) VolunteerHandler(w http.ResponseWriter, r *http.Request) {
	e.transition(w, r, "failed to volunteer", e.Service.Volunteer)
}

// CompleteHandler marks the caller's assignment completed
func (e Emergency) CompleteHandler(w http.ResponseWriter, r *http.Request) {
	e.transition(w, r, "failed to mark emergency completed", e.Service.MarkCompleted)
}

// ApproveHandler lets the reporter approve the completed work
func (e Emergency) ApproveHandler(w http.ResponseWriter, r *http.Request) {
	e.transition(w, r, "failed to approve emergency", e.Service.Approve)
}

func (e Emergency) transition(w http.ResponseWriter, r *http.Request, failure string, fn func(ctx context.Context, id, userID string) (*models.Emergency, error)) {
	s, ok := session(w, r)
	if !ok {
		return
	}
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	emergency, err := fn(ctx, mux.Vars(r)["emergencyId"], s.UserID)
	if err != nil {
		writeError(w, failure, err)
		return
	}
	config.WriteData(w, http.StatusOK, emergency)
}

// MyReportsHandler lists the reports filed by the caller
func (e Emergency) MyReportsHandler(w http.ResponseWriter, r *http.Request) {
	s, ok := session(w, r)
	if !ok {
		return
	}
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	emergencies, err := e.Service.ListByReporter(ctx, s.UserID)
	if err != nil {
		writeError(w, "failed to get reports", err)
		return
	}
	config.WriteData(w, http.StatusOK, emergencies)
}

// VolunteerHistoryHandler lists the caller's assignments
func (e Emergency) VolunteerHistoryHandler(w http.ResponseWriter, r *http.Request) {
	s, ok := session(w, r)
	if !ok {
		return
	}
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	history, err := e.Service.VolunteerHistory(ctx, s.UserID)
	if err != nil {
		writeError(w, "failed to get volunteer history", err)
		return
	}
	config.WriteData(w, http.StatusOK, history)
}

// DashboardStatsHandler returns the aggregate counters
func (e Emergency) DashboardStatsHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	stats, err := e.Service.DashboardStats(ctx)
	if err != nil {
		writeError(w, "failed to get dashboard stats", err)
		return
	}
	config.WriteData(w, http.StatusOK, stats)
}

func splitCSV(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
