package handlers

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/thebestitaly/mapyourfriends-emergent/devserver/middleware"
	"github.com/thebestitaly/mapyourfriends-emergent/devserver/store"
	"github.com/thebestitaly/mapyourfriends-emergent/models"
)

// maxCSVBytes bounds the multipart body accepted by ImportCSV.
const maxCSVBytes = 5 << 20

// Geocoder resolves a free-text city. Unresolvable cities come back with status "failed".
type Geocoder interface {
	Geocode(ctx context.Context, city string) models.GeocodeResult
}

type ImportedHandler struct {
	store    store.Store
	geocoder Geocoder
}

func NewImportedHandler(s store.Store, g Geocoder) *ImportedHandler {
	return &ImportedHandler{store: s, geocoder: g}
}

func (h *ImportedHandler) List(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	friends, err := h.store.ListImported(r.Context(), user.UserID)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	for i := range friends {
		friends[i].Name = friends[i].DisplayName()
	}
	middleware.WriteJSON(w, friends)
}

// Map returns markers for imported friends that have coordinates, with the groups each one belongs to.
func (h *ImportedHandler) Map(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	ctx := r.Context()
	groups, err := h.store.ListGroups(ctx, user.UserID)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	_, memberships := membershipIndex(groups)
	friends, err := h.store.ListImported(ctx, user.UserID)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	markers := []models.MapMarker{}
	for _, f := range friends {
		if f.Located() {
			markers = append(markers, f.Marker(memberships[f.FriendID]))
		}
	}
	middleware.WriteJSON(w, markers)
}

func (h *ImportedHandler) Add(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	var input models.ImportedFriendInput
	if err := decode(r, &input); err != nil {
		middleware.WriteError(w, err)
		return
	}
	if strings.TrimSpace(input.FirstName) == "" || strings.TrimSpace(input.City) == "" {
		middleware.WriteError(w, badRequest("first_name and city are required"))
		return
	}

	f := h.newImported(r.Context(), user.UserID, input)
	if err := h.store.InsertImported(r.Context(), f); err != nil {
		middleware.WriteError(w, err)
		return
	}
	middleware.WriteJSON(w, f)
}

// Update replaces the editable fields. Coordinates sent by the caller are kept as given; without them the city
// is geocoded again.
func (h *ImportedHandler) Update(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	var input models.ImportedFriendUpdate
	if err := decode(r, &input); err != nil {
		middleware.WriteError(w, err)
		return
	}
	if strings.TrimSpace(input.FirstName) == "" || strings.TrimSpace(input.City) == "" {
		middleware.WriteError(w, badRequest("first_name and city are required"))
		return
	}
	ctx := r.Context()
	f, err := h.store.GetImported(ctx, user.UserID, mux.Vars(r)["friend_id"])
	if err != nil {
		middleware.WriteError(w, orNotFound(err, "Imported friend not found"))
		return
	}

	f.FirstName = strings.TrimSpace(input.FirstName)
	f.LastName = strings.TrimSpace(input.LastName)
	f.Email, f.Phone = input.Email, input.Phone
	f.City = strings.TrimSpace(input.City)
	if input.CityLat != nil && input.CityLng != nil {
		f.CityLat, f.CityLng = input.CityLat, input.CityLng
		f.GeocodeStatus = input.GeocodeStatus
		if f.GeocodeStatus == "" {
			f.GeocodeStatus = models.GeocodeManual
		}
	} else {
		h.locate(ctx, &f)
	}
	f.Name = f.DisplayName()

	if err := h.store.UpdateImported(ctx, f); err != nil {
		middleware.WriteError(w, orNotFound(err, "Imported friend not found"))
		return
	}
	middleware.WriteJSON(w, f)
}

func (h *ImportedHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	if err := h.store.DeleteImported(r.Context(), user.UserID, mux.Vars(r)["friend_id"]); err != nil {
		middleware.WriteError(w, orNotFound(err, "Imported friend not found"))
		return
	}
	middleware.WriteJSON(w, message("Imported friend deleted"))
}

// Geocode re-runs geocoding on the stored city.
func (h *ImportedHandler) Geocode(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	ctx := r.Context()
	f, err := h.store.GetImported(ctx, user.UserID, mux.Vars(r)["friend_id"])
	if err != nil {
		middleware.WriteError(w, orNotFound(err, "Imported friend not found"))
		return
	}
	h.locate(ctx, &f)
	if err := h.store.UpdateImported(ctx, f); err != nil {
		middleware.WriteError(w, err)
		return
	}
	f.Name = f.DisplayName()
	middleware.WriteJSON(w, f)
}

// ImportCSV reads rows of first_name,last_name,city[,email,phone]. A leading header row is skipped.
// Rows that cannot be imported are reported in errors; rows whose city cannot be geocoded are imported with
// status "failed". Both count towards total_failed.
func (h *ImportedHandler) ImportCSV(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxCSVBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		middleware.WriteError(w, badRequest("CSV file is required"))
		return
	}
	defer file.Close()
	if !strings.HasSuffix(strings.ToLower(header.Filename), ".csv") {
		middleware.WriteError(w, badRequest("File must be a CSV"))
		return
	}

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	ctx := r.Context()
	result := models.CSVImportResult{Imported: []models.ImportedFriend{}}
	for row := 1; ; row++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			result.TotalFailed++
			result.Errors = append(result.Errors, models.CSVRowError{Row: row, Reason: err.Error()})
			continue
		}
		if row == 1 && isHeaderRow(record) {
			continue
		}
		input, reason := inputFromRecord(record)
		if reason != "" {
			result.TotalFailed++
			result.Errors = append(result.Errors, models.CSVRowError{Row: row, Reason: reason})
			continue
		}

		f := h.newImported(ctx, user.UserID, input)
		if err := h.store.InsertImported(ctx, f); err != nil {
			result.TotalFailed++
			result.Errors = append(result.Errors, models.CSVRowError{Row: row, Reason: err.Error()})
			continue
		}
		result.TotalImported++
		if f.GeocodeStatus == models.GeocodeFailed {
			result.TotalFailed++
		}
		result.Imported = append(result.Imported, f)
	}

	log.Printf("CSV import for %s: %d imported, %d failed", user.UserID, result.TotalImported, result.TotalFailed)
	middleware.WriteJSON(w, result)
}

func (h *ImportedHandler) newImported(ctx context.Context, ownerID string, input models.ImportedFriendInput) models.ImportedFriend {
	f := models.ImportedFriend{
		FriendID:  store.NewID("imported"),
		OwnerID:   ownerID,
		FirstName: strings.TrimSpace(input.FirstName),
		LastName:  strings.TrimSpace(input.LastName),
		City:      strings.TrimSpace(input.City),
		Email:     input.Email,
		Phone:     input.Phone,
		CreatedAt: time.Now().UTC(),
	}
	h.locate(ctx, &f)
	f.Name = f.DisplayName()
	return f
}

// locate geocodes f.City and records the outcome. A failed lookup clears the coordinates.
func (h *ImportedHandler) locate(ctx context.Context, f *models.ImportedFriend) {
	res := h.geocoder.Geocode(ctx, f.City)
	f.GeocodeStatus = res.Status
	if res.Status != models.GeocodeSuccess {
		f.CityLat, f.CityLng = nil, nil
		return
	}
	lat, lng := res.Lat, res.Lng
	f.CityLat, f.CityLng = &lat, &lng
}

var headerNames = map[string]bool{
	"first_name": true, "firstname": true, "first name": true, "name": true, "nome": true,
}

func isHeaderRow(record []string) bool {
	return len(record) > 0 && headerNames[strings.ToLower(strings.TrimSpace(record[0]))]
}

func inputFromRecord(record []string) (models.ImportedFriendInput, string) {
	if len(record) < 3 {
		return models.ImportedFriendInput{}, fmt.Sprintf("expected at least 3 columns, got %d", len(record))
	}
	input := models.ImportedFriendInput{
		FirstName: strings.TrimSpace(record[0]),
		LastName:  strings.TrimSpace(record[1]),
		City:      strings.TrimSpace(record[2]),
	}
	if input.FirstName == "" {
		return input, "first_name is required"
	}
	if input.City == "" {
		return input, "city is required"
	}
	input.Email = optionalColumn(record, 3)
	input.Phone = optionalColumn(record, 4)
	return input, ""
}

func optionalColumn(record []string, i int) *string {
	if i >= len(record) {
		return nil
	}
	v := strings.TrimSpace(record[i])
	if v == "" {
		return nil
	}
	return &v
}

type GeocodeHandler struct {
	geocoder Geocoder
}

func NewGeocodeHandler(g Geocoder) *GeocodeHandler {
	return &GeocodeHandler{geocoder: g}
}

func (h *GeocodeHandler) Geocode(w http.ResponseWriter, r *http.Request) {
	var input models.GeocodeRequest
	if err := decode(r, &input); err != nil {
		middleware.WriteError(w, err)
		return
	}
	if strings.TrimSpace(input.City) == "" {
		middleware.WriteError(w, badRequest("city is required"))
		return
	}
	middleware.WriteJSON(w, h.geocoder.Geocode(r.Context(), input.City))
}
