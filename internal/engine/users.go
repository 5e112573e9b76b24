package engine

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/text/cases"

	"github.com/roach88/socialgraph/internal/ir"
)

// CreateUser registers a user and binds publicKey to the new id.
// Fails Conflict if publicKey is already bound; nothing is written then.
func (e *Engine) CreateUser(ctx context.Context, name, avatar, bio, publicKey string, walletAddress *string) (ir.User, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := checkText("create_user",
		"name", name, "avatar", avatar, "bio", bio,
		"public_key", publicKey, "wallet_address", deref(walletAddress),
	); err != nil {
		return ir.User{}, err
	}

	_, bound, err := e.state.publicKeys.Get(ctx, publicKey)
	if err != nil {
		return ir.User{}, fmt.Errorf("create user: %w", err)
	}
	if bound {
		return ir.User{}, PublicKeyBound(publicKey)
	}

	id, err := e.state.ids.Next(ctx, KindUser)
	if err != nil {
		return ir.User{}, fmt.Errorf("create user: %w", err)
	}
	u := ir.User{
		ID:            id,
		Name:          name,
		Avatar:        avatar,
		Bio:           bio,
		WalletAddress: cloneString(walletAddress),
	}
	if err := e.state.users.Put(ctx, id, u); err != nil {
		return ir.User{}, fmt.Errorf("create user: %w", err)
	}
	if err := e.state.publicKeys.Put(ctx, publicKey, id); err != nil {
		return ir.User{}, fmt.Errorf("create user: %w", err)
	}

	e.logger.Debug("user created", "id", id)
	e.emit(ir.UserCreated{ID: id, Name: name})
	return u, nil
}

func (e *Engine) GetUser(ctx context.Context, id string) (ir.User, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.user(ctx, id)
}

// GetAllUsers returns every user ordered by numeric id.
func (e *Engine) GetAllUsers(ctx context.Context) ([]ir.User, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.allUsers(ctx)
}

// GetUserByPublicKey resolves the binding and loads the user. Fails NotFound
// when the key is unbound or the bound id has no user record.
func (e *Engine) GetUserByPublicKey(ctx context.Context, publicKey string) (ir.User, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	id, ok, err := e.state.publicKeys.Get(ctx, publicKey)
	if err != nil {
		return ir.User{}, fmt.Errorf("get user by public key: %w", err)
	}
	if !ok {
		return ir.User{}, &Error{Code: CodeNotFound, Entity: "public_key", ID: publicKey, Message: "user not found"}
	}
	return e.state.user(ctx, id)
}

func (e *Engine) CheckPublicKeyRegistered(ctx context.Context, publicKey string) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	_, ok, err := e.state.publicKeys.Get(ctx, publicKey)
	if err != nil {
		return false, fmt.Errorf("check public key: %w", err)
	}
	return ok, nil
}

// UpdateUser rewrites name, bio and wallet address, then rewrites
// author_name on every post the user authored. A nil walletAddress clears it.
func (e *Engine) UpdateUser(ctx context.Context, id, name, bio string, walletAddress *string) (ir.User, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := checkText("update_user", "name", name, "bio", bio, "wallet_address", deref(walletAddress)); err != nil {
		return ir.User{}, err
	}

	u, err := e.state.user(ctx, id)
	if err != nil {
		return ir.User{}, err
	}
	posts, err := e.state.posts.Values(ctx)
	if err != nil {
		return ir.User{}, fmt.Errorf("update user: %w", err)
	}

	u.Name = name
	u.Bio = bio
	u.WalletAddress = cloneString(walletAddress)

	var renamed []ir.Post
	for _, p := range posts {
		if p.AuthorID != id {
			continue
		}
		p = normalizePost(p)
		p.AuthorName = name
		renamed = append(renamed, p)
	}

	if err := e.state.users.Put(ctx, id, u); err != nil {
		return ir.User{}, fmt.Errorf("update user: %w", err)
	}
	for _, p := range renamed {
		if err := e.state.posts.Put(ctx, p.ID, p); err != nil {
			return ir.User{}, fmt.Errorf("update user: rename post %s: %w", p.ID, err)
		}
	}

	e.logger.Debug("user updated", "id", id, "posts_renamed", len(renamed))
	e.emit(ir.UserUpdated{ID: id, Name: name, Bio: bio})
	return u, nil
}

// SearchUsersByName returns users whose name starts with prefix under
// Unicode case folding, ordered by numeric id. A blank prefix matches nobody.
func (e *Engine) SearchUsersByName(ctx context.Context, prefix string) ([]ir.User, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	matches := []ir.User{}
	if strings.TrimSpace(prefix) == "" {
		return matches, nil
	}
	users, err := e.state.allUsers(ctx)
	if err != nil {
		return nil, err
	}
	fold := cases.Fold()
	want := fold.String(prefix)
	for _, u := range users {
		if strings.HasPrefix(fold.String(u.Name), want) {
			matches = append(matches, u)
		}
	}
	return matches, nil
}

// GetUserStats aggregates the user's live posts, likes received and follow counts.
func (e *Engine) GetUserStats(ctx context.Context, id string) (ir.UserStats, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, err := e.state.user(ctx, id); err != nil {
		return ir.UserStats{}, err
	}
	posts, err := e.state.posts.Values(ctx)
	if err != nil {
		return ir.UserStats{}, fmt.Errorf("user stats: %w", err)
	}
	followers, err := e.state.list(ctx, e.state.followers, id)
	if err != nil {
		return ir.UserStats{}, err
	}
	following, err := e.state.list(ctx, e.state.following, id)
	if err != nil {
		return ir.UserStats{}, err
	}

	stats := ir.UserStats{
		UserID:         id,
		FollowerCount:  int64(len(followers)),
		FollowingCount: int64(len(following)),
	}
	for _, p := range posts {
		if p.AuthorID != id {
			continue
		}
		stats.PostCount++
		stats.TotalLikes += int64(len(p.Likes))
	}
	return stats, nil
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
