package lifecycle

import (
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/Ahmed-Ibrahim-0/switches-controller/models"
)

const (
	DefaultPage  = 1
	DefaultLimit = 20
	MaxLimit     = 200
)

// Filter is the closed set of listing predicates. Empty fields are unset.
type Filter struct {
	Status models.Status
	// ProviderMissing selects records whose provider is absent or empty.
	ProviderMissing bool
	Provider        string
	Model           string
	OldModel        string
	NewModel        string
	DeliveredStatus models.DeliveredStatus
}

type ListQuery struct {
	Filter Filter
	Page   int
	Limit  int
}

func (q ListQuery) Offset() int { return (q.Page - 1) * q.Limit }

type Page struct {
	Switches     []models.Switch `json:"switches"`
	CurrentPage  int             `json:"currentPage"`
	TotalPages   int             `json:"totalPages"`
	TotalRecords int64           `json:"totalRecords"`
}

func totalPages(total int64, limit int) int {
	if limit <= 0 {
		return 0
	}
	return int(math.Ceil(float64(total) / float64(limit)))
}

// ParseListQuery builds a ListQuery from URL query values. status is
// required; provider=false means "no provider"; unknown keys are rejected.
func ParseListQuery(v url.Values) (ListQuery, error) {
	q := ListQuery{Page: DefaultPage, Limit: DefaultLimit}

	status := models.Status(v.Get("status"))
	if status == "" {
		return q, invalid("status", "Status is required for filtered list")
	}
	if !status.Valid() {
		return q, invalid("status", "invalid status %q", status)
	}
	q.Filter.Status = status

	for key, vals := range v {
		val := ""
		if len(vals) > 0 {
			val = strings.TrimSpace(vals[0])
		}
		switch key {
		case "status":
		case "page":
			n, err := strconv.Atoi(val)
			if err != nil || n < 1 {
				return q, invalid("page", "invalid page %q", val)
			}
			q.Page = n
		case "limit":
			n, err := strconv.Atoi(val)
			if err != nil || n < 1 {
				return q, invalid("limit", "invalid limit %q", val)
			}
			if n > MaxLimit {
				n = MaxLimit
			}
			q.Limit = n
		case "provider":
			if val == "false" {
				q.Filter.ProviderMissing = true
			} else {
				q.Filter.Provider = val
			}
		case "model":
			q.Filter.Model = val
		case "oldModel":
			q.Filter.OldModel = val
		case "newModel":
			q.Filter.NewModel = val
		case "deliveredStatus":
			ds := models.DeliveredStatus(val)
			if !ds.Valid() {
				return q, invalid("deliveredStatus", "invalid deliveredStatus %q", val)
			}
			q.Filter.DeliveredStatus = ds
		default:
			return q, invalid(key, "filter %q is not supported", key)
		}
	}
	return q, nil
}

// Match reports whether sw satisfies every set predicate of f.
func (f Filter) Match(sw *models.Switch) bool {
	if f.Status != "" && sw.Status != f.Status {
		return false
	}
	if f.ProviderMissing && sw.Provider != "" {
		return false
	}
	if f.Provider != "" && sw.Provider != f.Provider {
		return false
	}
	if f.Model != "" && sw.Model != f.Model {
		return false
	}
	if f.OldModel != "" && sw.OldModel != f.OldModel {
		return false
	}
	if f.NewModel != "" && sw.NewModel != f.NewModel {
		return false
	}
	if f.DeliveredStatus != "" && sw.Delivery() != f.DeliveredStatus {
		return false
	}
	return true
}
