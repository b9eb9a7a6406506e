package git

import "github.com/neontowel/gitix/internal/models"

// MaxOperationLogEntries bounds the operation log.
const MaxOperationLogEntries = 10

// OperationLog keeps the most recent sync operations, newest first.
type OperationLog struct {
	entries []models.SyncOperation
}

// Record prepends op and drops the oldest entry beyond the cap.
func (l *OperationLog) Record(op models.SyncOperation) {
	l.entries = append([]models.SyncOperation{op}, l.entries...)
	if len(l.entries) > MaxOperationLogEntries {
		l.entries = l.entries[:MaxOperationLogEntries]
	}
}

// Entries returns a copy of the log, newest first.
func (l *OperationLog) Entries() []models.SyncOperation {
	out := make([]models.SyncOperation, len(l.entries))
	copy(out, l.entries)
	return out
}
