package types

// ColumnRoles maps the semantic roles of a call-detail export onto the
// original column names of the uploaded file. Timestamp stays empty when no
// column produced enough parseable values.
type ColumnRoles struct {
	Store     string `json:"store"`
	Queue     string `json:"queue"`
	Status    string `json:"status"`
	Timestamp string `json:"timestamp,omitempty"`
}

// NormalizedCall is one call after ingestion. Store is always a canonical
// "Loja NN" label; rows that fail store canonicalization never become a
// NormalizedCall. Date and Time carry the "-" sentinel when the source
// timestamp could not be parsed.
type NormalizedCall struct {
	Store  string `json:"store"`
	Queue  string `json:"queue"`
	Status string `json:"status"`
	Date   string `json:"date"` // YYYY-MM-DD or "-"
	Time   string `json:"time"` // HH:MM:SS or "-"
	IsLost bool   `json:"isLost"`
}

// NormalizeResult is the output of one pipeline run over one file.
type NormalizeResult struct {
	Calls     []NormalizedCall `json:"calls"`
	Roles     ColumnRoles      `json:"roles"`
	Delimiter string           `json:"delimiter"`
	RowsRead  int              `json:"rowsRead"`

	// QueueFilterApplied is false when no row matched the target queue and
	// the whole file was kept instead (degraded mode, never implicit).
	QueueFilterApplied bool `json:"queueFilterApplied"`

	// StoreColumnRescued signals that the chosen store column resolved too
	// few values and store numbers were recovered by scanning all columns.
	StoreColumnRescued bool `json:"storeColumnRescued"`

	// TimestampAmbiguous signals that the day-first/month-first heuristic
	// had no decisive sample and fell back to its default ordering.
	TimestampAmbiguous bool `json:"timestampAmbiguous"`
}

// StoreAggregate is the per-store outcome for one reporting month.
// TotalVolume is the externally supplied ground-truth call volume; until the
// admin provides it, PctLost is provisional (lost over received).
type StoreAggregate struct {
	Store       string  `json:"store"`
	Received    int     `json:"received"`
	Lost        int     `json:"lost"`
	TotalVolume int     `json:"totalVolume"`
	PctLost     float64 `json:"pctLost"`
}

// DetailRow is one call in the per-store chronological drill-down.
type DetailRow struct {
	Date   string `json:"date"`
	Time   string `json:"time"`
	Status string `json:"status"`
}

// ValueSample is a value-frequency pair used in ingestion diagnostics.
type ValueSample struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// MonthSummary describes one reporting month for listings.
type MonthSummary struct {
	YM      string `json:"ym"` // YYYY-MM
	Uploads int    `json:"uploads"`
	Stores  int    `json:"stores"`
}
