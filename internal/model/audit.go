package model

type AuditAction string

const (
	AuditCreate        AuditAction = "CREATE"
	AuditUpdate        AuditAction = "UPDATE"
	AuditDelete        AuditAction = "DELETE"
	AuditRestore       AuditAction = "RESTORE"
	AuditCascadeDelete AuditAction = "CASCADE_DELETE"
)

func (a AuditAction) Valid() bool {
	switch a {
	case AuditCreate, AuditUpdate, AuditDelete, AuditRestore, AuditCascadeDelete:
		return true
	default:
		return false
	}
}

// Actor identifies whoever triggered a lifecycle call.
type Actor struct {
	DisplayName string `json:"display_name"`
	Email       string `json:"email"`
}

type AuditEntry struct {
	ID               string      `json:"id"`
	TableName        string      `json:"table_name"`
	Action           AuditAction `json:"action"`
	RecordID         int64       `json:"record_id"`
	OldData          any         `json:"old_data,omitempty"`
	NewData          any         `json:"new_data,omitempty"`
	PerformedBy      string      `json:"performed_by"`
	PerformedByEmail string      `json:"performed_by_email"`
	Timestamp        string      `json:"timestamp"`
}

type AuditQuery struct {
	Table    string
	Action   string
	RecordID int64
	Actor    string
	From     string
	To       string
	Page     int
	Limit    int
}

type AuditListData struct {
	Items []AuditEntry `json:"items"`
}
