package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thebestitaly/mapyourfriends-emergent/models"
	"github.com/thebestitaly/mapyourfriends-emergent/utils/errors"
)

func ptr[T any](v T) *T { return &v }

func TestNewImportedFriendInput(t *testing.T) {
	in, err := NewImportedFriendInput(ImportedFriendForm{FirstName: " Mario ", LastName: "Rossi", City: "Milano"})
	require.NoError(t, err)
	assert.Equal(t, "Mario", in.FirstName)
	assert.Nil(t, in.Email)
	assert.Nil(t, in.Phone)

	_, err = NewImportedFriendInput(ImportedFriendForm{FirstName: "Mario"})
	require.Error(t, err)
	assert.True(t, errors.IsValidation(err))
}

func TestNewImportedFriendUpdateStatus(t *testing.T) {
	up, err := NewImportedFriendUpdate(ImportedFriendForm{FirstName: "Giulia", City: "Roma", Lat: ptr(41.9), Lng: ptr(12.5)})
	require.NoError(t, err)
	assert.Equal(t, models.GeocodeManual, up.GeocodeStatus)
	require.NotNil(t, up.CityLat)
	assert.InDelta(t, 41.9, *up.CityLat, 1e-9)

	up, err = NewImportedFriendUpdate(ImportedFriendForm{FirstName: "Giulia", City: "Roma", Lat: ptr(41.9)})
	require.NoError(t, err)
	assert.Equal(t, models.GeocodeFailed, up.GeocodeStatus)
	assert.Nil(t, up.CityLat)

	_, err = NewImportedFriendUpdate(ImportedFriendForm{FirstName: "Giulia", Lat: ptr(95.0), Lng: ptr(12.5)})
	assert.True(t, errors.IsValidation(err))
}

func TestValidateCSVName(t *testing.T) {
	assert.NoError(t, ValidateCSVName("contacts.CSV"))
	assert.Error(t, ValidateCSVName("contacts.xlsx"))
}

func TestNewGroupInput(t *testing.T) {
	in, err := NewGroupInput("Work", "")
	require.NoError(t, err)
	assert.Equal(t, models.DefaultGroupColor, in.Color)

	_, err = NewGroupInput("Work", "#123456")
	assert.Error(t, err)
	_, err = NewGroupInput("  ", "")
	assert.Error(t, err)
}

func TestValidateProfile(t *testing.T) {
	assert.NoError(t, ValidateProfile(models.ProfileUpdate{Availability: []string{"Coffee", "Advice"}}))
	assert.Error(t, ValidateProfile(models.ProfileUpdate{Availability: []string{"Party"}}))
	assert.Error(t, ValidateProfile(models.ProfileUpdate{ActiveCityLat: ptr(45.0)}))
}

func TestValidateMeetup(t *testing.T) {
	ok := models.MeetupInput{Title: "Aperitivo", City: "Milano", CityLat: 45.46, CityLng: 9.19, Date: "2025-06-01"}
	assert.NoError(t, ValidateMeetup(ok))
	ok.Date = ""
	assert.Error(t, ValidateMeetup(ok))
}

func TestMessageOf(t *testing.T) {
	assert.Equal(t, "Maximum 20 groups allowed", messageOf(errors.Backend(400, "Maximum 20 groups allowed"), "x"))
	assert.Equal(t, "fallback", messageOf(errors.Network(assert.AnError), "fallback"))
	assert.Equal(t, "fallback", messageOf(assert.AnError, "fallback"))
}
