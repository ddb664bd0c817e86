package models

import "strings"

// Tab enumerates the viewer's predefined views.
type Tab string

const (
	TabRoster    Tab = "roster"
	TabFeed      Tab = "feed"
	TabInventory Tab = "inventory"
	TabBreeding  Tab = "breeding"
)

// Tabs lists the views in tab-strip order.
var Tabs = []Tab{TabRoster, TabFeed, TabInventory, TabBreeding}

var tabTitles = map[Tab]string{
	TabRoster:    "Roster",
	TabFeed:      "Feed log",
	TabInventory: "Inventory",
	TabBreeding:  "Breeding",
}

// ParseTab derives a Tab from user input.
func ParseTab(raw string) (Tab, bool) {
	tab := Tab(strings.TrimSpace(strings.ToLower(raw)))
	if _, ok := tabTitles[tab]; !ok {
		return "", false
	}
	return tab, true
}

// Title is the human-friendly tab label.
func (t Tab) Title() string {
	if title, ok := tabTitles[t]; ok {
		return title
	}
	return string(t)
}
