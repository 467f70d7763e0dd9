package model

// Record is one row of an administrative table.
type Record struct {
	Table  string         `json:"table"`
	ID     int64          `json:"id"`
	Fields map[string]any `json:"fields"`
}

type RecordListData struct {
	Items []Record `json:"items"`
}

type RecordQuery struct {
	Filter map[string]any
	Limit  int
}
