package model

// PendingOperation marks a lifecycle operation that stopped after committing some steps, so an
// operator can finish or dismiss it.
type PendingOperation struct {
	ID             string   `json:"id"`
	Operation      string   `json:"operation"`
	OriginalTable  string   `json:"original_table"`
	RecordID       int64    `json:"record_id"`
	TrashEntryID   string   `json:"trash_entry_id,omitempty"`
	CompletedSteps []string `json:"completed_steps"`
	FailedStep     string   `json:"failed_step"`
	Error          string   `json:"error"`
	Actor          Actor    `json:"actor"`
	CreatedAt      string   `json:"created_at"`
	ResolvedAt     string   `json:"resolved_at,omitempty"`
	ResolvedBy     *Actor   `json:"resolved_by,omitempty"`
}

type PendingListData struct {
	Items []PendingOperation `json:"items"`
}
