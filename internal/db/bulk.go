package db

import (
	"errors"
	"fmt"
)

// BulkAction is a bulk API action name.
type BulkAction string

// Bulk actions.
const (
	BulkIndex  BulkAction = "index"
	BulkCreate BulkAction = "create"
	BulkUpdate BulkAction = "update"
	BulkDelete BulkAction = "delete"
)

// BulkOp is a single bulk operation.
type BulkOp struct {
	Action BulkAction
	// Index overrides the request-level index for this operation.
	Index string
	// Type is sent only for engines that still have mapping types.
	Type    string
	ID      string
	Routing string
	// Document is the source for index/create and the partial doc for update.
	// Ignored for delete.
	Document any
}

// BulkResult is the decoded bulk response.
type BulkResult struct {
	Took   int64
	Errors bool
	Items  []BulkItem
}

// BulkItem is the per-operation outcome of a bulk request.
type BulkItem struct {
	Action BulkAction
	Index  string
	ID     string
	Status int
	Error  map[string]any
}

// Failed reports whether the engine rejected the operation.
func (i BulkItem) Failed() bool {
	return i.Error != nil
}

// Err converts a failed item into an error, nil otherwise.
func (i BulkItem) Err() error {
	if i.Error == nil {
		return nil
	}
	typ, _ := i.Error["type"].(string)
	reason, _ := i.Error["reason"].(string)
	return &Error{
		Op:     OpBulk,
		Status: i.Status,
		Type:   typ,
		Reason: fmt.Sprintf("%s %s/%s: %s", i.Action, i.Index, i.ID, reason),
		Err:    errors.New(typ),
	}
}

// Failures returns the failed items in request order.
func (r *BulkResult) Failures() []BulkItem {
	if r == nil || !r.Errors {
		return nil
	}
	var out []BulkItem
	for _, it := range r.Items {
		if it.Failed() {
			out = append(out, it)
		}
	}
	return out
}
