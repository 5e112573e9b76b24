package engine

import (
	"errors"
	"fmt"
	"unicode/utf8"
)

// ErrorCode categorizes operation failures.
type ErrorCode string

const (
	// CodeNotFound indicates a referenced user or post does not exist.
	CodeNotFound ErrorCode = "NOT_FOUND"

	// CodeConflict indicates a uniqueness or already-in-state violation:
	// public key already bound, self-follow, already following.
	CodeConflict ErrorCode = "CONFLICT"

	// CodeUnauthorized indicates the caller is not the owner, e.g. deleting
	// someone else's post.
	CodeUnauthorized ErrorCode = "UNAUTHORIZED"

	// CodeInvalidArgument indicates a malformed request: unknown operation,
	// missing or mistyped argument, unparsable stored amount.
	CodeInvalidArgument ErrorCode = "INVALID_ARGUMENT"
)

// Error is the typed failure returned by engine operations.
//
// Entity and ID name the record involved when there is one.
type Error struct {
	Code    ErrorCode
	Entity  string
	ID      string
	Message string
}

func (e *Error) Error() string {
	if e.Entity != "" {
		return fmt.Sprintf("%s: %s (%s=%s)", e.Code, e.Message, e.Entity, e.ID)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func UserNotFound(id string) *Error {
	return &Error{Code: CodeNotFound, Entity: "user", ID: id, Message: "user not found"}
}

func PostNotFound(id string) *Error {
	return &Error{Code: CodeNotFound, Entity: "post", ID: id, Message: "post not found"}
}

func PublicKeyBound(publicKey string) *Error {
	return &Error{Code: CodeConflict, Entity: "public_key", ID: publicKey, Message: "public key already registered"}
}

func SelfFollow(id string) *Error {
	return &Error{Code: CodeConflict, Entity: "user", ID: id, Message: "cannot follow yourself"}
}

func AlreadyFollowing(followerID, followeeID string) *Error {
	return &Error{
		Code:    CodeConflict,
		Entity:  "user",
		ID:      followeeID,
		Message: fmt.Sprintf("user %s already follows user %s", followerID, followeeID),
	}
}

func NotPostAuthor(postID, requesterID string) *Error {
	return &Error{
		Code:    CodeUnauthorized,
		Entity:  "post",
		ID:      postID,
		Message: fmt.Sprintf("user %s is not the author", requesterID),
	}
}

func InvalidArgument(format string, args ...any) *Error {
	return &Error{Code: CodeInvalidArgument, Message: fmt.Sprintf(format, args...)}
}

// checkText fails InvalidArgument on the first value that is not valid
// UTF-8. fields alternates name and value. Records are stored as JSON, which
// would silently replace the invalid bytes.
func checkText(op string, fields ...string) error {
	for i := 0; i+1 < len(fields); i += 2 {
		if !utf8.ValidString(fields[i+1]) {
			return InvalidArgument("%s: %s is not valid UTF-8", op, fields[i])
		}
	}
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// CodeOf returns the code of the first *Error in err's chain, or "" if none.
func CodeOf(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// IsNotFound reports whether err is a not-found failure.
// Uses errors.As to handle wrapped errors.
func IsNotFound(err error) bool { return CodeOf(err) == CodeNotFound }

func IsConflict(err error) bool { return CodeOf(err) == CodeConflict }

func IsUnauthorized(err error) bool { return CodeOf(err) == CodeUnauthorized }

func IsInvalidArgument(err error) bool { return CodeOf(err) == CodeInvalidArgument }
