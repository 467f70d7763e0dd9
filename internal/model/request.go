package model

type SoftDeleteRequest struct {
	Reason string `json:"reason"`
}

type RestoreRequest struct {
	FieldOverrides map[string]any `json:"field_overrides"`
	Cascade        bool           `json:"cascade"`
}

type UpsertRecordRequest struct {
	Fields map[string]any `json:"fields"`
}

type AttachmentUpload struct {
	Table    string `json:"table"`
	Field    string `json:"field"`
	Bucket   string `json:"bucket"`
	Path     string `json:"path"`
	URL      string `json:"url"`
	Size     int64  `json:"size"`
	MimeType string `json:"mime_type"`
	Width    int    `json:"width,omitempty"`
	Height   int    `json:"height,omitempty"`
}
