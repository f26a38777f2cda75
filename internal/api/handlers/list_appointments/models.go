package list_appointments

import (
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/m04kA/SMC-SalonService/internal/service/appointments/models"
)

// ParseListRequest разбирает query-параметры фильтра: branchId, specialistId, status, from, to (RFC3339)
func ParseListRequest(q url.Values) (*models.ListRequest, error) {
	req := &models.ListRequest{}

	var err error
	if req.BranchID, err = parseID(q, "branchId"); err != nil {
		return nil, err
	}
	if req.SpecialistID, err = parseID(q, "specialistId"); err != nil {
		return nil, err
	}
	if req.From, err = parseTime(q, "from"); err != nil {
		return nil, err
	}
	if req.To, err = parseTime(q, "to"); err != nil {
		return nil, err
	}
	if s := q.Get("status"); s != "" {
		req.Status = &s
	}

	if req.From != nil && req.To != nil && !req.To.After(*req.From) {
		return nil, fmt.Errorf("to must be after from")
	}

	return req, nil
}

func parseID(q url.Values, key string) (*int64, error) {
	raw := q.Get(key)
	if raw == "" {
		return nil, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return nil, fmt.Errorf("invalid %s: %q", key, raw)
	}
	return &id, nil
}

func parseTime(q url.Values, key string) (*time.Time, error) {
	raw := q.Get(key)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", key, err)
	}
	t = t.UTC()
	return &t, nil
}
