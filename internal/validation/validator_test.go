package validation_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/lyricsplit/lyricsplit-server/internal/errors"
	"github.com/lyricsplit/lyricsplit-server/internal/validation"
)

type performerInput struct {
	ID string `json:"id" validate:"performer"`
}

type testRequest struct {
	Kind       string           `json:"kind" validate:"required,sectionkind"`
	Amount     int64            `json:"amount" validate:"ne=0"`
	Segments   []string         `json:"segments" validate:"min=2,dive,required"`
	Assignees  []string         `json:"assignees,omitempty" validate:"dive,assignee"`
	Performers []performerInput `json:"performers" validate:"dive"`
}

func validRequest() testRequest {
	return testRequest{
		Kind:       "CHORUS",
		Amount:     -250,
		Segments:   []string{"Hello", "World"},
		Assignees:  []string{"a", "ALL"},
		Performers: []performerInput{{ID: "a"}},
	}
}

func TestValidator_ValidateSuccess(t *testing.T) {
	v := validation.New()
	assert.NoError(t, v.Validate(validRequest()))
}

func TestValidator_ValidateErrors(t *testing.T) {
	v := validation.New()

	tests := []struct {
		name      string
		mutate    func(r *testRequest)
		wantField string
		wantMsg   string
	}{
		{
			name:      "unknown section kind",
			mutate:    func(r *testRequest) { r.Kind = "CHORUSS" },
			wantField: "kind",
			wantMsg:   "must be a known section kind",
		},
		{
			name:      "zero nudge",
			mutate:    func(r *testRequest) { r.Amount = 0 },
			wantField: "amount",
			wantMsg:   "must not be 0",
		},
		{
			name:      "too few segments",
			mutate:    func(r *testRequest) { r.Segments = []string{"one"} },
			wantField: "segments",
			wantMsg:   "must have at least 2 elements",
		},
		{
			name:      "blank segment",
			mutate:    func(r *testRequest) { r.Segments = []string{"one", ""} },
			wantField: "segments[1]",
			wantMsg:   "is required",
		},
		{
			name:      "unassigned is not a target",
			mutate:    func(r *testRequest) { r.Assignees = []string{"UNASSIGNED"} },
			wantField: "assignees[0]",
			wantMsg:   "must be a performer id, ALL or NONE",
		},
		{
			name:      "sentinel performer",
			mutate:    func(r *testRequest) { r.Performers = []performerInput{{ID: "NONE"}} },
			wantField: "performers[0].id",
			wantMsg:   "must be a performer id, not ALL, NONE or UNASSIGNED",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			tt.mutate(&req)

			err := v.Validate(req)
			require.Error(t, err)

			var domainErr *domainerrors.Error
			require.ErrorAs(t, err, &domainErr)
			assert.Equal(t, domainerrors.CodeValidation, domainErr.Code)
			assert.Equal(t, http.StatusBadRequest, domainErr.HTTPStatus())

			details, ok := domainErr.Details.(map[string]string)
			require.True(t, ok)
			assert.Equal(t, tt.wantMsg, details[tt.wantField], "details: %v", details)
		})
	}
}

func TestValidator_NonStruct(t *testing.T) {
	err := validation.New().Validate("not a struct")
	require.Error(t, err)

	var domainErr *domainerrors.Error
	assert.NotErrorAs(t, err, &domainErr)
}
