package worker

// dlq.go: dead letter queue
// Bill documents and emails that fail permanently or run out of retries land
// in dlq:{original_queue}. Each entry names the bill it was about, so a
// missing PDF or email can be traced back to the sale and re-sent by hand.

import (
	"context"
	"encoding/json"
	"time"

	"jewelpos/internal/model"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const DLQPrefix = "dlq:"

// DLQEntry is a failed job plus what is needed to act on it.
type DLQEntry struct {
	JobID         string          `json:"job_id,omitempty"`
	OriginalQueue string          `json:"original_queue"`
	JobType       string          `json:"job_type"`
	BillNumber    string          `json:"bill_number,omitempty"`
	Payload       json.RawMessage `json:"payload"`
	Reason        string          `json:"reason"`
	FailedAt      string          `json:"failed_at"` // RFC 3339, UTC
	Attempts      int             `json:"attempts"`
}

func newDLQEntry(queue string, job Job, reason string, attempts int, now time.Time) DLQEntry {
	return DLQEntry{
		JobID:         job.ID,
		OriginalQueue: queue,
		JobType:       job.Type,
		BillNumber:    billNumberOf(job.Payload),
		Payload:       job.Payload,
		Reason:        reason,
		FailedAt:      now.UTC().Format(time.RFC3339),
		Attempts:      attempts,
	}
}

// billNumberOf reads the bill reference out of a BillDocumentJob (bill_id) or
// an EmailJobPayload (bill_number). Unknown payloads yield "".
func billNumberOf(payload json.RawMessage) string {
	var ref struct {
		BillID     uint   `json:"bill_id"`
		BillNumber string `json:"bill_number"`
	}
	if len(payload) == 0 || json.Unmarshal(payload, &ref) != nil {
		return ""
	}
	if ref.BillNumber != "" {
		return ref.BillNumber
	}
	if ref.BillID != 0 {
		return model.FormatBillNumber(ref.BillID)
	}
	return ""
}

// SendToDLQ pushes a failed job to the dead letter queue of its source queue.
// A nil client (unit tests, Redis disabled) only logs.
func SendToDLQ(ctx context.Context, rdb *redis.Client, queue string, job Job, reason string, attempts int) {
	entry := newDLQEntry(queue, job, reason, attempts, time.Now())
	dlqKey := DLQPrefix + queue

	data, err := json.Marshal(entry)
	if err != nil {
		log.Error().Err(err).Str("dlq_key", dlqKey).Msg("dlq: failed to marshal entry")
		return
	}
	if rdb == nil {
		log.Warn().Str("dlq_key", dlqKey).Str("bill", entry.BillNumber).Str("reason", reason).
			Msg("dlq: no redis client, entry dropped")
		return
	}
	if err := rdb.LPush(ctx, dlqKey, data).Err(); err != nil {
		log.Error().Err(err).Str("dlq_key", dlqKey).Str("bill", entry.BillNumber).Msg("dlq: push failed")
		return
	}

	log.Warn().
		Str("queue", queue).
		Str("job_type", job.Type).
		Str("bill", entry.BillNumber).
		Str("reason", reason).
		Int("attempts", attempts).
		Msg("dlq: job moved to dead letter queue")
}

// DLQLength returns the number of entries in a DLQ; reported on /health.
func DLQLength(ctx context.Context, rdb *redis.Client, queue string) (int64, error) {
	return rdb.LLen(ctx, DLQPrefix+queue).Result()
}
