package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"go-parish-admin/internal/model"
)

func printJSON(w io.Writer, value any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(value)
}

func printTrash(w io.Writer, entries []model.TrashEntry) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTABLE\tRECORD\tDELETED AT\tDELETED BY\tREASON")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\t%s\n", e.ID, e.OriginalTable, e.RecordID, e.DeletedAt, e.DeletedByEmail, e.DeletionReason)
	}
	return tw.Flush()
}

func printAudit(w io.Writer, entries []model.AuditEntry, meta model.Meta) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TIMESTAMP\tACTION\tTABLE\tRECORD\tBY")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n", e.Timestamp, e.Action, e.TableName, e.RecordID, e.PerformedByEmail)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "page %d of %d (%d entries)\n", meta.Page, meta.TotalPages, meta.Total)
	return err
}

func printPending(w io.Writer, ops []model.PendingOperation) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tOPERATION\tTABLE\tRECORD\tFAILED STEP\tCOMPLETED\tRESOLVED")
	for _, op := range ops {
		resolved := "-"
		if op.ResolvedAt != "" {
			resolved = op.ResolvedAt
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%s\t%s\n",
			op.ID, op.Operation, op.OriginalTable, op.RecordID, op.FailedStep, strings.Join(op.CompletedSteps, ","), resolved)
	}
	return tw.Flush()
}

func printPurge(w io.Writer, result model.PurgeResult) error {
	fmt.Fprintf(w, "purged %s (%s#%d)\n", result.TrashEntryID, result.OriginalTable, result.RecordID)
	for _, ref := range result.RemovedObjects {
		fmt.Fprintf(w, "  removed %s/%s\n", ref.Bucket, ref.Path)
	}
	for _, failure := range result.StorageFailures {
		fmt.Fprintf(w, "  FAILED  %s/%s: %s\n", failure.Ref.Bucket, failure.Ref.Path, failure.Reason)
	}
	for _, child := range result.Cascaded {
		if err := printPurge(w, child); err != nil {
			return err
		}
	}
	return nil
}

func printRecord(w io.Writer, record model.Record) error {
	if _, err := fmt.Fprintf(w, "%s#%d\n", record.Table, record.ID); err != nil {
		return err
	}
	return printJSON(w, record.Fields)
}
