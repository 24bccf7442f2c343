package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateEventValidation(t *testing.T) {
	svc := NewEventService(newFakeEventRepo())

	tests := []struct {
		name    string
		input   CreateEventInput
		wantErr error
	}{
		{
			name:    "blank name",
			input:   CreateEventInput{Name: "   ", Date: "2026-05-01", CreatorID: 1},
			wantErr: ErrEventNameRequired,
		},
		{
			name:    "missing date",
			input:   CreateEventInput{Name: "Spring Cup", Date: "", CreatorID: 1},
			wantErr: ErrEventDateRequired,
		},
		{
			name:    "malformed date",
			input:   CreateEventInput{Name: "Spring Cup", Date: "01.05.2026", CreatorID: 1},
			wantErr: ErrEventDateRequired,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreateEvent(context.Background(), tc.input)
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestCreateEventDefaultsCapacity(t *testing.T) {
	repo := newFakeEventRepo()
	svc := NewEventService(repo)

	event, err := svc.CreateEvent(context.Background(), CreateEventInput{
		Name:      "  Spring Cup  ",
		Date:      "2026-05-01",
		CreatorID: 3,
	})
	require.NoError(t, err)

	assert.Equal(t, "Spring Cup", event.Name)
	assert.Equal(t, DefaultMaxTeams, event.MaxTeams)
	assert.Equal(t, 3, event.CreatedBy)
	assert.Equal(t, time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC), event.EventDate)
}

func TestCreateEventKeepsExplicitCapacity(t *testing.T) {
	svc := NewEventService(newFakeEventRepo())

	event, err := svc.CreateEvent(context.Background(), CreateEventInput{
		Name:      "Autumn Open",
		Date:      "2026-10-12",
		MaxTeams:  8,
		CreatorID: 3,
	})
	require.NoError(t, err)
	assert.Equal(t, 8, event.MaxTeams)
}

func TestListEventsNewestFirst(t *testing.T) {
	repo := newFakeEventRepo()
	svc := NewEventService(repo)

	for _, name := range []string{"First", "Second", "Third"} {
		_, err := svc.CreateEvent(context.Background(), CreateEventInput{
			Name: name, Date: "2026-05-01", CreatorID: 1,
		})
		require.NoError(t, err)
	}

	events, err := svc.ListEvents(context.Background())
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, "Third", events[0].Name)
	assert.Equal(t, "First", events[2].Name)
}

func TestGetEventByIDNotFound(t *testing.T) {
	svc := NewEventService(newFakeEventRepo())

	_, err := svc.GetEventByID(context.Background(), 12345)
	assert.ErrorIs(t, err, ErrEventNotFound)
}
