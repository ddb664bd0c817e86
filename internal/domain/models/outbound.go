package models

// PhotoState describes the resolution outcome of a row's photo reference.
type PhotoState string

const (
	PhotoNone    PhotoState = "none"
	PhotoPending PhotoState = "pending"
	PhotoReady   PhotoState = "ready"
	PhotoMissing PhotoState = "missing"
)

// Photo is the trailing image cell of a rendered row.
type Photo struct {
	State PhotoState `json:"state"`
	Ref   string     `json:"ref,omitempty"`
	URL   string     `json:"url,omitempty"`
}

// Row is one rendered table row.
type Row struct {
	Values []string `json:"values"`
	Photo  *Photo   `json:"photo,omitempty"`
}

// Table is a rendered record set.
type Table struct {
	Columns    []string `json:"columns"`
	PhotoField string   `json:"photo_field,omitempty"`
	Rows       []Row    `json:"rows"`

	Records []Record `json:"-"`
}

// Panel is one titled area of a view. A panel shows either a notice or a table.
type Panel struct {
	Key        string               `json:"key"`
	Title      string               `json:"title"`
	Notice     string               `json:"notice,omitempty"`
	Table      *Table               `json:"table,omitempty"`
	Filterable bool                 `json:"filterable"`
	Diagnostic *InventoryDiagnostic `json:"diagnostic,omitempty"`
}

// View is everything the page shows for the active tab.
type View struct {
	Tab        Tab     `json:"tab"`
	Generation uint64  `json:"generation"`
	Query      string  `json:"query"`
	RowCount   string  `json:"row_count"`
	Status     string  `json:"status"`
	Error      string  `json:"error,omitempty"`
	Strategy   string  `json:"strategy,omitempty"`
	Panels     []Panel `json:"panels"`
}

// FilterPanel returns the panel the search box applies to.
func (v View) FilterPanel() *Panel {
	for i := range v.Panels {
		if v.Panels[i].Filterable {
			return &v.Panels[i]
		}
	}
	return nil
}
