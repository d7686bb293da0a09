package ingest

import (
	"errors"
	"testing"

	"github.com/passbi/railplan/internal/model"
	"github.com/stretchr/testify/assert"
)

func TestValidate(t *testing.T) {
	stations := []model.Station{
		{ID: 1, Name: "A"},
		{ID: 2, Name: "B"},
	}

	tests := []struct {
		name    string
		in      *InputSet
		wantErr error
	}{
		{
			name: "clean input",
			in: &InputSet{
				Stations: stations,
				Trips:    []model.TripSegment{{TripID: 1, FromStop: 1, ToStop: 2}},
				Groups:   []model.GroupSpec{{ID: 1, Origin: 1, Destination: 2}},
			},
			wantErr: nil,
		},
		{
			name: "trip references unknown station",
			in: &InputSet{
				Stations: stations,
				Trips:    []model.TripSegment{{TripID: 1, FromStop: 1, ToStop: 99}},
			},
			wantErr: ErrDanglingReference,
		},
		{
			name: "footpath references unknown station",
			in: &InputSet{
				Stations:  stations,
				Footpaths: []model.Footpath{{From: 1, To: 77}},
			},
			wantErr: ErrDanglingReference,
		},
		{
			name: "group references unknown destination",
			in: &InputSet{
				Stations: stations,
				Groups:   []model.GroupSpec{{ID: 1, Origin: 1, Destination: 55}},
			},
			wantErr: ErrDanglingReference,
		},
		{
			name: "group references unknown in_trip",
			in: &InputSet{
				Stations: stations,
				Groups:   []model.GroupSpec{{ID: 1, Origin: 1, Destination: 2, HasInTrip: true, InTrip: 5}},
			},
			wantErr: ErrDanglingReference,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validate(tt.in)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errors.Is(err, tt.wantErr))
		})
	}
}
