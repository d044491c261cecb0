package server

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/placements/internal/placement/domain"
)

const (
	// maxFilterValues bounds each filter list.
	maxFilterValues = 100
	minQueryYear    = 1900
	maxQueryYear    = 9999
)

var errYearOutOfRange = errors.New("effective_year out of range")

type placementQueryRequest struct {
	ClientName    []string `json:"client_name"`
	PlacementName []string `json:"placement_name"`
	// EffectiveYear accepts numeric strings and JSON numbers.
	EffectiveYear []any    `json:"effective_year"`
	OwnerName     []string `json:"owner_name"`
	Status        []string `json:"status"`
	InceptionFrom string   `json:"inception_from"`
	InceptionTo   string   `json:"inception_to"`
	UserOnly      *bool    `json:"user_only"`
	OrderBy       string   `json:"order_by"`
	OrderDir      string   `json:"order_dir"`
}

type marketQueryRequest struct {
	placementQueryRequest
	PageNumber int `json:"page_number"`
	PageSize   int `json:"page_size"`
}

type reassignRequest struct {
	BrokerTeam struct {
		TeamID string `json:"team_id"`
	} `json:"broker_team"`
	BrokerUser struct {
		UserEmail string `json:"user_email"`
	} `json:"broker_user"`
}

// bindOptionalJSON binds the body into dst. An empty body leaves dst
// unchanged.
func bindOptionalJSON(c *gin.Context, dst any) error {
	if c.Request.Body == nil || c.Request.ContentLength == 0 {
		return nil
	}
	if err := c.ShouldBindJSON(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return invalidRequestError()
	}
	return nil
}

func (r placementQueryRequest) spec() (domain.QuerySpec, error) {
	if err := r.checkSizes(); err != nil {
		return domain.QuerySpec{}, err
	}
	years, err := parseYears(r.EffectiveYear)
	if errors.Is(err, errYearOutOfRange) {
		return domain.QuerySpec{}, newValidationError("effective_year", "effective_year_out_of_range",
			fmt.Sprintf("effective_year must be between %d and %d", minQueryYear, maxQueryYear))
	}
	if err != nil {
		return domain.QuerySpec{}, newValidationError("effective_year", "invalid_effective_year", "effective_year must contain integers")
	}
	return domain.QuerySpec{
		ClientNames:    trimAll(r.ClientName),
		PlacementNames: trimAll(r.PlacementName),
		EffectiveYears: years,
		OwnerNames:     trimAll(r.OwnerName),
		Statuses:       trimAll(r.Status),
		InceptionFrom:  strings.TrimSpace(r.InceptionFrom),
		InceptionTo:    strings.TrimSpace(r.InceptionTo),
		UserOnly:       r.UserOnly,
		OrderBy:        strings.TrimSpace(r.OrderBy),
		OrderDir:       strings.TrimSpace(r.OrderDir),
	}, nil
}

func (r placementQueryRequest) checkSizes() error {
	lists := []struct {
		field string
		n     int
	}{
		{"client_name", len(r.ClientName)},
		{"placement_name", len(r.PlacementName)},
		{"effective_year", len(r.EffectiveYear)},
		{"owner_name", len(r.OwnerName)},
		{"status", len(r.Status)},
	}
	for _, l := range lists {
		if l.n > maxFilterValues {
			return newValidationError(l.field, "too_many_values",
				fmt.Sprintf("%s accepts at most %d values", l.field, maxFilterValues))
		}
	}
	return nil
}

func parseYears(values []any) ([]int, error) {
	out := make([]int, 0, len(values))
	for _, raw := range values {
		switch v := raw.(type) {
		case string:
			trimmed := strings.TrimSpace(v)
			if trimmed == "" {
				continue
			}
			year, err := strconv.Atoi(trimmed)
			if err != nil {
				var numErr *strconv.NumError
				if errors.As(err, &numErr) && errors.Is(numErr.Err, strconv.ErrRange) {
					return nil, errYearOutOfRange
				}
				return nil, err
			}
			if year < minQueryYear || year > maxQueryYear {
				return nil, errYearOutOfRange
			}
			out = append(out, year)
		case float64:
			if v != math.Trunc(v) {
				return nil, errors.New("invalid_effective_year")
			}
			if v < minQueryYear || v > maxQueryYear {
				return nil, errYearOutOfRange
			}
			out = append(out, int(v))
		case nil:
			continue
		default:
			return nil, errors.New("invalid_effective_year")
		}
	}
	return out, nil
}

func trimAll(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	out := make([]string, 0, len(values))
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
