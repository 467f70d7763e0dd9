package model

// TrashEntry is a staged snapshot of a soft-deleted row. It is written once by soft delete and
// only ever removed again, by restore or purge.
type TrashEntry struct {
	ID             string `json:"id"`
	OriginalTable  string `json:"original_table"`
	RecordID       int64  `json:"record_id"`
	RecordData     string `json:"record_data"`
	DeletedBy      string `json:"deleted_by"`
	DeletedByEmail string `json:"deleted_by_email"`
	DeletedAt      string `json:"deleted_at"`
	DeletionReason string `json:"deletion_reason,omitempty"`
}

type TrashListData struct {
	Items []TrashEntry `json:"items"`
}

type StorageRef struct {
	Bucket      string `json:"bucket"`
	Path        string `json:"path"`
	OriginalURL string `json:"original_url"`
}

type StorageFailure struct {
	Ref    StorageRef `json:"ref"`
	Reason string     `json:"reason"`
}

// PurgeResult describes what a purge removed. Storage failures do not fail the purge.
type PurgeResult struct {
	TrashEntryID    string           `json:"trash_entry_id"`
	OriginalTable   string           `json:"original_table"`
	RecordID        int64            `json:"record_id"`
	RemovedObjects  []StorageRef     `json:"removed_objects"`
	StorageFailures []StorageFailure `json:"storage_failures"`
	Cascaded        []PurgeResult    `json:"cascaded,omitempty"`
}

type RestoreOptions struct {
	FieldOverrides map[string]any `json:"field_overrides,omitempty"`
	Cascade        bool           `json:"cascade"`
}
