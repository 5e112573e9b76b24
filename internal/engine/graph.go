package engine

import (
	"context"
	"fmt"
	"slices"

	"github.com/roach88/socialgraph/internal/ir"
)

// FollowUser adds the edge follower -> followee to both adjacency lists.
//
// Checks, in order: self-follow (Conflict, for any id), follower exists,
// followee exists, not already following (Conflict).
func (e *Engine) FollowUser(ctx context.Context, followerID, followeeID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if followerID == followeeID {
		return SelfFollow(followerID)
	}
	if _, err := e.state.user(ctx, followerID); err != nil {
		return err
	}
	if _, err := e.state.user(ctx, followeeID); err != nil {
		return err
	}
	followers, err := e.state.list(ctx, e.state.followers, followeeID)
	if err != nil {
		return err
	}
	following, err := e.state.list(ctx, e.state.following, followerID)
	if err != nil {
		return err
	}
	if slices.Contains(following, followeeID) {
		return AlreadyFollowing(followerID, followeeID)
	}

	followers = append(slices.Clone(followers), followerID)
	following = append(slices.Clone(following), followeeID)
	if err := e.state.followers.Put(ctx, followeeID, followers); err != nil {
		return fmt.Errorf("follow user: %w", err)
	}
	if err := e.state.following.Put(ctx, followerID, following); err != nil {
		return fmt.Errorf("follow user: %w", err)
	}

	e.logger.Debug("user followed", "follower_id", followerID, "followee_id", followeeID)
	e.emit(ir.UserFollowed{FollowerID: followerID, FolloweeID: followeeID})
	return nil
}

// UnfollowUser removes the edge from both lists if present. It does not
// check that either user exists and always emits UserUnfollowed.
func (e *Engine) UnfollowUser(ctx context.Context, followerID, followeeID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	followers, hasFollowers, err := e.state.followers.Get(ctx, followeeID)
	if err != nil {
		return fmt.Errorf("unfollow user: %w", err)
	}
	following, hasFollowing, err := e.state.following.Get(ctx, followerID)
	if err != nil {
		return fmt.Errorf("unfollow user: %w", err)
	}

	// Lists that were never created stay absent.
	if hasFollowers {
		followers = slices.DeleteFunc(slices.Clone(followers), func(id string) bool { return id == followerID })
		if err := e.state.followers.Put(ctx, followeeID, nonNil(followers)); err != nil {
			return fmt.Errorf("unfollow user: %w", err)
		}
	}
	if hasFollowing {
		following = slices.DeleteFunc(slices.Clone(following), func(id string) bool { return id == followeeID })
		if err := e.state.following.Put(ctx, followerID, nonNil(following)); err != nil {
			return fmt.Errorf("unfollow user: %w", err)
		}
	}

	e.logger.Debug("user unfollowed", "follower_id", followerID, "followee_id", followeeID)
	e.emit(ir.UserUnfollowed{FollowerID: followerID, FolloweeID: followeeID})
	return nil
}

func (e *Engine) IsFollowing(ctx context.Context, followerID, followeeID string) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	following, err := e.state.list(ctx, e.state.following, followerID)
	if err != nil {
		return false, err
	}
	return slices.Contains(following, followeeID), nil
}

// GetFollowers returns the ids following userID, in follow order.
func (e *Engine) GetFollowers(ctx context.Context, userID string) ([]string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.list(ctx, e.state.followers, userID)
}

// GetFollowing returns the ids userID follows, in follow order.
func (e *Engine) GetFollowing(ctx context.Context, userID string) ([]string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.list(ctx, e.state.following, userID)
}

func (e *Engine) GetFollowerCount(ctx context.Context, userID string) (int64, error) {
	ids, err := e.GetFollowers(ctx, userID)
	return int64(len(ids)), err
}

func (e *Engine) GetFollowingCount(ctx context.Context, userID string) (int64, error) {
	ids, err := e.GetFollowing(ctx, userID)
	return int64(len(ids)), err
}

// GetFollowingFeed returns posts by everyone userID follows, newest first.
func (e *Engine) GetFollowingFeed(ctx context.Context, userID string) ([]ir.Post, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	following, err := e.state.list(ctx, e.state.following, userID)
	if err != nil {
		return nil, err
	}
	posts, err := e.state.allPosts(ctx)
	if err != nil {
		return nil, err
	}
	return slices.DeleteFunc(posts, func(p ir.Post) bool {
		return !slices.Contains(following, p.AuthorID)
	}), nil
}

func nonNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}
