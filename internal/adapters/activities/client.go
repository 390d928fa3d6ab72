package activities

import (
	"context"
	"errors"
)

// ErrTransport reports that no usable response came back from the activities
// service: the request failed, the status was unusable for a roster fetch,
// or the body was not JSON.
var ErrTransport = errors.New("activities service unavailable")

// Reply is the decoded response to a signup or unregister request.
type Reply struct {
	Status  int    // HTTP status code
	Message string // "message" field, sent on success
	Detail  string // "detail" field, sent on rejection
}

// OK reports whether the service accepted the mutation.
func (r Reply) OK() bool {
	return r.Status >= 200 && r.Status < 300
}

// Client is the interface for the external activities service.
type Client interface {
	// FetchActivities returns the raw JSON body of GET /activities.
	FetchActivities(ctx context.Context) ([]byte, error)
	// Signup enrolls email in activity.
	Signup(ctx context.Context, activity, email string) (Reply, error)
	// Unregister removes the participant identified by key from activity.
	Unregister(ctx context.Context, activity, key string) (Reply, error)
}
