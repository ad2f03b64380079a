package itinerary

import "fmt"

// RefCheckMode controls whether linked master-data ids are verified to exist.
// The hot write path skips the lookup by default; strict mode verifies inside
// the write transaction, lazy mode verifies after commit and only logs.
type RefCheckMode string

const (
	RefCheckNone   RefCheckMode = "none"
	RefCheckLazy   RefCheckMode = "lazy"
	RefCheckStrict RefCheckMode = "strict"
)

// ParseRefCheckMode validates a configured mode string, defaulting empty to
// RefCheckNone.
func ParseRefCheckMode(s string) (RefCheckMode, error) {
	switch RefCheckMode(s) {
	case "":
		return RefCheckNone, nil
	case RefCheckNone, RefCheckLazy, RefCheckStrict:
		return RefCheckMode(s), nil
	}
	return "", fmt.Errorf("unknown referential check mode %q", s)
}

// ValidateItem normalizes a proposed item. Type/reference mismatches and
// unknown types are coerced to activity with a notice, never rejected; only a
// missing day_number or order_number is a hard ValidationError.
//
// Referential existence of RefID against master tables is not checked here;
// that happens in the write transaction when strict mode is configured.
func ValidateItem(in Item) (Item, []Notice, error) {
	if in.DayNumber < 1 {
		return Item{}, nil, Validation("day_number", "must be at least 1")
	}
	if in.OrderNumber < 1 {
		return Item{}, nil, Validation("order_number", "must be at least 1")
	}

	var notices []Notice
	out := in

	if !out.Type.Known() {
		notices = append(notices, Notice{
			Code:    NoticeTypeCoerced,
			Field:   "item_type",
			Message: fmt.Sprintf("unknown item type %q treated as activity", out.Type),
		})
		out.Type = TypeActivity
	}

	switch {
	case out.Type.NeedsRef() && out.RefID == nil:
		notices = append(notices, Notice{
			Code:    NoticeTypeCoerced,
			Field:   "item_type",
			Message: fmt.Sprintf("%s item without a linked %s treated as activity", out.Type, out.Type),
		})
		out.Type = TypeActivity
	case out.Type == TypeActivity && out.RefID != nil:
		notices = append(notices, Notice{
			Code:    NoticeRefCleared,
			Field:   "ref_id",
			Message: "activity items carry no linked entity; reference dropped",
		})
		out.RefID = nil
	}

	return out, notices, nil
}

// CheckPublishable enforces the publish precondition: an itinerary may only
// hold (or move to) published status once city, date range, and budget are
// all present.
func CheckPublishable(h Itinerary) error {
	if h.Status != StatusPublished {
		return nil
	}
	if h.City == nil || *h.City == "" {
		return Validation("city", "required to publish")
	}
	if h.StartDate == nil || h.EndDate == nil {
		return Validation("date_range", "required to publish")
	}
	if h.Budget == nil {
		return Validation("budget", "required to publish")
	}
	return nil
}
