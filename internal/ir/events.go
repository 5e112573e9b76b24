package ir

// EventKind names a domain event.
type EventKind string

// Domain event kinds. One per externally visible state change.
const (
	KindUserCreated    EventKind = "UserCreated"
	KindUserUpdated    EventKind = "UserUpdated"
	KindPostCreated    EventKind = "PostCreated"
	KindPostDeleted    EventKind = "PostDeleted"
	KindPostLiked      EventKind = "PostLiked"
	KindPostUnliked    EventKind = "PostUnliked"
	KindTipSent        EventKind = "TipSent"
	KindUserFollowed   EventKind = "UserFollowed"
	KindUserUnfollowed EventKind = "UserUnfollowed"
)

// Event is a sealed interface over the domain events.
// The engine constructs events and hands them to a sink; it never reads them back.
type Event interface {
	Kind() EventKind
	// Payload returns the event fields as an IRObject with snake_case keys.
	Payload() IRObject
	event()
}

type UserCreated struct {
	ID   string
	Name string
}

func (UserCreated) event() {}
func (UserCreated) Kind() EventKind { return KindUserCreated }
func (e UserCreated) Payload() IRObject {
	return IRObject{"id": IRString(e.ID), "name": IRString(e.Name)}
}

type UserUpdated struct {
	ID   string
	Name string
	Bio  string
}

func (UserUpdated) event() {}
func (UserUpdated) Kind() EventKind { return KindUserUpdated }
func (e UserUpdated) Payload() IRObject {
	return IRObject{"id": IRString(e.ID), "name": IRString(e.Name), "bio": IRString(e.Bio)}
}

type PostCreated struct {
	ID        string
	AuthorID  string
	Content   string
	Timestamp int64
}

func (PostCreated) event() {}
func (PostCreated) Kind() EventKind { return KindPostCreated }
func (e PostCreated) Payload() IRObject {
	return IRObject{
		"id":        IRString(e.ID),
		"author_id": IRString(e.AuthorID),
		"content":   IRString(e.Content),
		"timestamp": IRInt(e.Timestamp),
	}
}

type PostDeleted struct {
	ID       string
	AuthorID string
}

func (PostDeleted) event() {}
func (PostDeleted) Kind() EventKind { return KindPostDeleted }
func (e PostDeleted) Payload() IRObject {
	return IRObject{"id": IRString(e.ID), "author_id": IRString(e.AuthorID)}
}

type PostLiked struct {
	ID       string
	UserID   string
	UserName string
}

func (PostLiked) event() {}
func (PostLiked) Kind() EventKind { return KindPostLiked }
func (e PostLiked) Payload() IRObject {
	return IRObject{"id": IRString(e.ID), "user_id": IRString(e.UserID), "user_name": IRString(e.UserName)}
}

type PostUnliked struct {
	ID     string
	UserID string
}

func (PostUnliked) event() {}
func (PostUnliked) Kind() EventKind { return KindPostUnliked }
func (e PostUnliked) Payload() IRObject {
	return IRObject{"id": IRString(e.ID), "user_id": IRString(e.UserID)}
}

type TipSent struct {
	PostID     string
	TipperID   string
	TipperName string
	Amount     string
	TxHash     string
}

func (TipSent) event() {}
func (TipSent) Kind() EventKind { return KindTipSent }
func (e TipSent) Payload() IRObject {
	return IRObject{
		"post_id":     IRString(e.PostID),
		"tipper_id":   IRString(e.TipperID),
		"tipper_name": IRString(e.TipperName),
		"amount":      IRString(e.Amount),
		"tx_hash":     IRString(e.TxHash),
	}
}

type UserFollowed struct {
	FollowerID string
	FolloweeID string
}

func (UserFollowed) event() {}
func (UserFollowed) Kind() EventKind { return KindUserFollowed }
func (e UserFollowed) Payload() IRObject {
	return IRObject{"follower_id": IRString(e.FollowerID), "followee_id": IRString(e.FolloweeID)}
}

type UserUnfollowed struct {
	FollowerID string
	FolloweeID string
}

func (UserUnfollowed) event() {}
func (UserUnfollowed) Kind() EventKind { return KindUserUnfollowed }
func (e UserUnfollowed) Payload() IRObject {
	return IRObject{"follower_id": IRString(e.FollowerID), "followee_id": IRString(e.FolloweeID)}
}

// EventRecord is an event as persisted by an event log.
// Seq comes from the log's own logical clock; ID is content-addressed.
type EventRecord struct {
	ID      string    `json:"id"`
	Seq     int64     `json:"seq"`
	Kind    EventKind `json:"kind"`
	Payload IRObject  `json:"payload"`
}

// NewEventRecord stamps ev with seq and computes its content-addressed ID.
func NewEventRecord(ev Event, seq int64) (EventRecord, error) {
	payload := ev.Payload()
	id, err := EventID(ev.Kind(), payload, seq)
	if err != nil {
		return EventRecord{}, err
	}
	return EventRecord{ID: id, Seq: seq, Kind: ev.Kind(), Payload: payload}, nil
}
