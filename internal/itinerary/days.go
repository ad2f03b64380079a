package itinerary

import (
	"fmt"
	"sort"
)

// GroupByDay derives the nested day view from a flat item list: days ascend,
// and each day's items are sorted ascending by order number with ties kept in
// input order. Empty input yields an empty (non-nil) slice.
func GroupByDay(items []Item) []DayGroup {
	byDay := make(map[int][]Item)
	for _, it := range items {
		byDay[it.DayNumber] = append(byDay[it.DayNumber], it)
	}

	days := make([]int, 0, len(byDay))
	for d := range byDay {
		days = append(days, d)
	}
	sort.Ints(days)

	groups := make([]DayGroup, 0, len(days))
	for _, d := range days {
		dayItems := byDay[d]
		sort.SliceStable(dayItems, func(i, j int) bool {
			return dayItems[i].OrderNumber < dayItems[j].OrderNumber
		})
		groups = append(groups, DayGroup{DayNumber: d, Items: dayItems})
	}
	return groups
}

// Flatten turns a day-grouped submission back into flat rows for storage.
// Every item gets itineraryID and its group's day number; items of an
// unrecognized type are rewritten to activity with a notice. Flatten never
// fails: it normalizes shape and leaves hard validation to ValidateItem.
func Flatten(itineraryID int64, days []DayGroup) ([]Item, []Notice) {
	var (
		items   []Item
		notices []Notice
	)
	for _, day := range days {
		for _, it := range day.Items {
			it.ItineraryID = itineraryID
			it.DayNumber = day.DayNumber
			if !it.Type.Known() {
				notices = append(notices, Notice{
					Code:    NoticeTypeCoerced,
					Field:   "item_type",
					Message: fmt.Sprintf("unknown item type %q treated as activity", it.Type),
				})
				it.Type = TypeActivity
			}
			items = append(items, it)
		}
	}
	return items, notices
}
