package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const archivePrefix = "upstream-payloads"

type requestIDKey struct{}

// WithRequestID attaches the request ID used to name archived payloads
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestIDFromContext returns the request ID, or "" when none was attached
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// S3PayloadArchiver writes undecodable webhook bodies to object storage so
// they can be inspected after the request has failed.
type S3PayloadArchiver struct {
	store ObjectPutter
	now   func() time.Time
}

func NewS3PayloadArchiver(store ObjectPutter) *S3PayloadArchiver {
	return &S3PayloadArchiver{
		store: store,
		now:   time.Now,
	}
}

// Archive stores payload under upstream-payloads/<date>/<request-id>.txt and
// returns the object key
func (a *S3PayloadArchiver) Archive(ctx context.Context, payload []byte) (string, error) {
	id := RequestIDFromContext(ctx)
	if id == "" {
		id = uuid.NewString()
	}
	key := fmt.Sprintf("%s/%s/%s.txt", archivePrefix, a.now().UTC().Format("2006-01-02"), id)
	if err := a.store.PutObject(ctx, key, payload); err != nil {
		return "", fmt.Errorf("failed to archive payload: %w", err)
	}
	return key, nil
}
