package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jackwill99/temporal-hr/internal/domain"
)

const redisBackend = "redis"

// DefaultRedisPrefix keeps every ledger key in one cluster hash slot so the
// multi-key scripts below stay legal on Redis Cluster.
const DefaultRedisPrefix = "{ledger}"

// appendRecordScript records a submission exactly once. The submission guard
// is claimed with SETNX; only the claimant writes the record and pushes it on
// the collection's order list.
//
// KEYS[1] = submission guard key
// KEYS[2] = record key
// KEYS[3] = order list key
// ARGV[1] = guard value ("<kind>:<member>")
// ARGV[2] = record JSON
// ARGV[3] = order list member
// ARGV[4] = "hash" to store the record as a hash field, anything else for a string.
var appendRecordScript = redis.NewScript(`
	if redis.call('EXISTS', KEYS[2]) == 1 then
		return 0
	end
	if redis.call('SETNX', KEYS[1], ARGV[1]) == 0 then
		return 0
	end
	if ARGV[4] == 'hash' then
		redis.call('HSET', KEYS[2], 'record', ARGV[2])
	else
		redis.call('SET', KEYS[2], ARGV[2])
	end
	redis.call('RPUSH', KEYS[3], ARGV[3])
	return 1
`)

// markNotifiedScript stamps notified_at on each existing, still unnotified
// failed record. HSETNX makes each record's check-and-set atomic; the EXISTS
// check stops unknown ids from creating empty hashes.
//
// KEYS    = failed record keys
// ARGV[1] = notified_at (RFC 3339, UTC)
var markNotifiedScript = redis.NewScript(`
	local updated = 0
	for _, key in ipairs(KEYS) do
		if redis.call('EXISTS', key) == 1 then
			updated = updated + redis.call('HSETNX', key, 'notified_at', ARGV[1])
		end
	end
	return updated
`)

// RedisLedger stores failed records as hashes ({record, notified_at}),
// accepted records as strings, and keeps per-collection order lists for
// insertion-ordered reads.
type RedisLedger struct {
	client redis.UniversalClient
	prefix string
	opts   options
}

var _ Ledger = (*RedisLedger)(nil)

// NewRedisLedger wraps an existing client. An empty prefix selects
// DefaultRedisPrefix.
func NewRedisLedger(client redis.UniversalClient, prefix string, opts ...Option) *RedisLedger {
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	return &RedisLedger{client: client, prefix: prefix, opts: buildOptions(opts)}
}

func (l *RedisLedger) submissionKey(key string) string { return l.prefix + ":submission:" + key }
func (l *RedisLedger) acceptedKey(key string) string   { return l.prefix + ":accepted:" + key }
func (l *RedisLedger) failedKey(id string) string      { return l.prefix + ":failed:" + id }
func (l *RedisLedger) acceptedOrder() string           { return l.prefix + ":accepted:order" }
func (l *RedisLedger) failedOrder() string             { return l.prefix + ":failed:order" }

// AppendAccepted implements Ledger.
func (l *RedisLedger) AppendAccepted(ctx context.Context, rec domain.AcceptedRecord) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return storageErr(redisBackend, "append_accepted", err)
	}
	return l.append(ctx, "append_accepted",
		[]string{l.submissionKey(rec.SubmissionKey), l.acceptedKey(rec.SubmissionKey), l.acceptedOrder()},
		string(domain.OutcomeAccepted)+":"+rec.SubmissionKey, payload, rec.SubmissionKey, "string")
}

// AppendFailed implements Ledger.
func (l *RedisLedger) AppendFailed(ctx context.Context, rec domain.FailedRecord) error {
	rec.NotifiedAt = nil
	payload, err := json.Marshal(rec)
	if err != nil {
		return storageErr(redisBackend, "append_failed", err)
	}
	return l.append(ctx, "append_failed",
		[]string{l.submissionKey(rec.SubmissionKey), l.failedKey(rec.ID), l.failedOrder()},
		string(domain.OutcomeFailed)+":"+rec.ID, payload, rec.ID, "hash")
}

func (l *RedisLedger) append(
	ctx context.Context, op string, keys []string, guard string, payload []byte, member, layout string,
) error {
	created, err := appendRecordScript.Run(ctx, l.client, keys, guard, string(payload), member, layout).Int()
	if err != nil {
		return storageErr(redisBackend, op, err)
	}
	if created == 0 {
		return ErrAlreadyRecorded
	}
	return nil
}

// FetchUnnotifiedFailed implements Ledger.
func (l *RedisLedger) FetchUnnotifiedFailed(ctx context.Context) ([]domain.FailedRecord, error) {
	ids, err := l.client.LRange(ctx, l.failedOrder(), 0, -1).Result()
	if err != nil {
		return nil, storageErr(redisBackend, "fetch_unnotified", err)
	}
	rows := make([]domain.FailedRecord, 0, len(ids))
	if len(ids) == 0 {
		return rows, nil
	}

	pipe := l.client.Pipeline()
	cmds := make([]*redis.SliceCmd, len(ids))
	for i, id := range ids {
		cmds[i] = pipe.HMGet(ctx, l.failedKey(id), "record", "notified_at")
	}
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return nil, storageErr(redisBackend, "fetch_unnotified", err)
	}

	for i, cmd := range cmds {
		vals, err := cmd.Result()
		if err != nil {
			return nil, storageErr(redisBackend, "fetch_unnotified", err)
		}
		raw, _ := vals[0].(string)
		if raw == "" {
			l.opts.logger.Warn("ledger order list references missing record",
				"backend", redisBackend, "id", ids[i])
			continue
		}
		if notified, _ := vals[1].(string); notified != "" {
			continue
		}
		var rec domain.FailedRecord
		if err := json.Unmarshal([]byte(raw), &rec); err != nil {
			return nil, storageErr(redisBackend, "fetch_unnotified", fmt.Errorf("decode %s: %w", ids[i], err))
		}
		rows = append(rows, rec)
	}
	return rows, nil
}

// MarkNotified implements Ledger.
func (l *RedisLedger) MarkNotified(ctx context.Context, ids []string) (int, error) {
	ids = uniqueIDs(ids)
	if len(ids) == 0 {
		return 0, nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = l.failedKey(id)
	}
	stamp := l.opts.now().UTC().Format(time.RFC3339Nano)
	updated, err := markNotifiedScript.Run(ctx, l.client, keys, stamp).Int()
	if err != nil {
		return 0, storageErr(redisBackend, "mark_notified", err)
	}
	l.opts.logger.Debug("ledger marked failed records notified",
		"backend", redisBackend, "requested", len(ids), "updated", updated)
	return updated, nil
}

// Lookup implements Ledger.
func (l *RedisLedger) Lookup(ctx context.Context, submissionKey string) (*domain.Outcome, error) {
	if submissionKey == "" {
		return nil, nil
	}
	guard, err := l.client.Get(ctx, l.submissionKey(submissionKey)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, storageErr(redisBackend, "lookup", err)
	}

	kind, member, ok := strings.Cut(guard, ":")
	if !ok {
		return nil, storageErr(redisBackend, "lookup", fmt.Errorf("malformed guard %q", guard))
	}

	switch domain.OutcomeKind(kind) {
	case domain.OutcomeAccepted:
		raw, err := l.client.Get(ctx, l.acceptedKey(member)).Result()
		if err != nil {
			return nil, storageErr(redisBackend, "lookup", err)
		}
		var rec domain.AcceptedRecord
		if err := json.Unmarshal([]byte(raw), &rec); err != nil {
			return nil, storageErr(redisBackend, "lookup", err)
		}
		return &domain.Outcome{Kind: domain.OutcomeAccepted, Analysis: rec.Analysis}, nil
	case domain.OutcomeFailed:
		raw, err := l.client.HGet(ctx, l.failedKey(member), "record").Result()
		if err != nil {
			return nil, storageErr(redisBackend, "lookup", err)
		}
		var rec domain.FailedRecord
		if err := json.Unmarshal([]byte(raw), &rec); err != nil {
			return nil, storageErr(redisBackend, "lookup", err)
		}
		return &domain.Outcome{Kind: domain.OutcomeFailed, Analysis: rec.Analysis, FailedID: rec.ID}, nil
	default:
		return nil, storageErr(redisBackend, "lookup", fmt.Errorf("unknown outcome kind %q", kind))
	}
}
