package usecase

import (
	"testing"

	"flightsched-service/internal/domain/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRelevanceFilter_KeepRelevant(t *testing.T) {
	f := NewRelevanceFilter([]string{"ceb", " MNL "})

	departures := []entity.RawFlight{
		rawFlight("KE 631", "ICN", "CEB", "2025-08-01 06:55+09:00", "2025-08-01 10:35+08:00"),
		rawFlight("KE 701", "ICN", "NRT", "2025-08-01 08:00+09:00", "2025-08-01 10:20+09:00"),
		rawFlight("7C 2405", "ICN", "mnl", "2025-08-01 20:00+09:00", "2025-08-01 23:10+08:00"),
	}
	kept := f.KeepRelevant(departures, entity.Departure)
	require.Len(t, kept, 2)
	assert.Equal(t, "KE 631", kept[0].Number)
	assert.Equal(t, "7C 2405", kept[1].Number)

	arrivals := []entity.RawFlight{
		rawFlight("5J 188", "MNL", "ICN", "2025-08-01 23:50+08:00", "2025-08-02 05:05+09:00"),
		rawFlight("JL 95", "HND", "ICN", "2025-08-01 09:00+09:00", "2025-08-01 11:30+09:00"),
	}
	kept = f.KeepRelevant(arrivals, entity.Arrival)
	require.Len(t, kept, 1)
	assert.Equal(t, "5J 188", kept[0].Number)
}

func TestRelevanceFilter_EmptyAllowList(t *testing.T) {
	f := NewRelevanceFilter(nil)
	raws := []entity.RawFlight{rawFlight("KE 631", "ICN", "CEB", "2025-08-01 06:55", "2025-08-01 10:35")}

	assert.Empty(t, f.KeepRelevant(raws, entity.Departure))
	assert.False(t, f.Allowed(""))
}
