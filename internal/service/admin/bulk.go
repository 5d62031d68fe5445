package admin

import (
	"context"
	"log"

	"github.com/Domenick1991/hostelmarket/internal/domain"
	"github.com/google/uuid"
)

type BulkAction string

const (
	BulkApprove BulkAction = "approve"
	BulkReject  BulkAction = "reject"
)

func ParseBulkAction(s string) (BulkAction, error) {
	switch a := BulkAction(s); a {
	case BulkApprove, BulkReject:
		return a, nil
	}
	return "", &domain.ValidationError{Field: "action", Message: "must be approve or reject"}
}

func (a BulkAction) target() domain.Status {
	if a == BulkApprove {
		return domain.StatusApproved
	}
	return domain.StatusRejected
}

type BatchFailure struct {
	ID     int64  `json:"id"`
	Reason string `json:"reason"`
	Error  string `json:"error"`
}

type BatchResult struct {
	BatchID   string         `json:"batch_id"`
	Succeeded []int64        `json:"succeeded"`
	Failed    []BatchFailure `json:"failed"`
}

// BulkOverride overrides each reservation on its own. A failed item is
// reported in the result and never undoes the items that went through.
func (s *Service) BulkOverride(ctx context.Context, actorID string, ids []int64, action BulkAction, reason string) (*BatchResult, error) {
	if err := requireActor(actorID, reason); err != nil {
		return nil, err
	}
	if _, err := ParseBulkAction(string(action)); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, domain.Required("ids")
	}

	result := &BatchResult{
		BatchID:   uuid.NewString(),
		Succeeded: []int64{},
		Failed:    []BatchFailure{},
	}
	seen := make(map[int64]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true

		_, err := s.override(ctx, actorID, id, action.target(), reason, map[string]any{"batch_id": result.BatchID})
		if err != nil {
			result.Failed = append(result.Failed, BatchFailure{ID: id, Reason: domain.Code(err), Error: err.Error()})
			continue
		}
		result.Succeeded = append(result.Succeeded, id)
	}

	summary := &domain.AuditEntry{
		ActorID:    actorID,
		Action:     domain.AuditBulkOverride,
		TargetType: domain.AuditTargetBatch,
		TargetID:   result.BatchID,
		Details: map[string]any{
			"action":    string(action),
			"reason":    reason,
			"succeeded": result.Succeeded,
			"failed":    result.Failed,
		},
		CreatedAt: s.now(),
	}
	if err := s.audit.Append(ctx, summary); err != nil {
		log.Printf("WARNING: bulk override %s summary not audited: %v", result.BatchID, err)
	}
	return result, nil
}
