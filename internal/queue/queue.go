// Package queue publishes payment status updates for downstream consumers.
package queue

import "context"

// Publisher delivers messages to the notification queue with at-least-once
// semantics. The group key orders messages for the same payment; the dedup key
// is expected to carry a fresh nonce so genuine re-publishes are not coalesced.
type Publisher interface {
	Publish(ctx context.Context, body []byte, groupKey, dedupKey string) (string, error)
}
