package branch

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SalonService/internal/domain"
	"github.com/m04kA/SMC-SalonService/pkg/types"
)

func TestDecodeOperatingHours(t *testing.T) {
	raw := []byte(`{
		"monday": {"closed": false, "shifts": [{"start": "09:00", "end": "18:00"}]},
		"Sunday": {"closed": true}
	}`)

	week, err := decodeOperatingHours(raw)

	require.NoError(t, err)
	require.Len(t, week, 2)
	assert.True(t, week[time.Monday].IsOpen())
	assert.Equal(t, types.TimeString("18:00"), week[time.Monday].Shifts[0].End)
	assert.False(t, week[time.Sunday].IsOpen())
	_, configured := week[time.Tuesday]
	assert.False(t, configured)
}

func TestDecodeOperatingHours_Empty(t *testing.T) {
	week, err := decodeOperatingHours(nil)

	require.NoError(t, err)
	assert.Equal(t, domain.WeekMap[domain.BusinessOperatingHours]{}, week)
}

func TestDecodeOperatingHours_UnknownWeekday(t *testing.T) {
	_, err := decodeOperatingHours([]byte(`{"funday": {"closed": true}}`))
	assert.Error(t, err)
}
