package engine

import (
	"context"
	"fmt"
	"slices"

	"github.com/shopspring/decimal"

	"github.com/roach88/socialgraph/internal/ir"
)

// CreatePost publishes content under authorID. The author's name, avatar
// and wallet address are copied onto the post at this moment.
func (e *Engine) CreatePost(ctx context.Context, authorID, content string) (ir.Post, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := checkText("create_post", "content", content); err != nil {
		return ir.Post{}, err
	}

	author, err := e.state.user(ctx, authorID)
	if err != nil {
		return ir.Post{}, err
	}

	id, err := e.state.ids.Next(ctx, KindPost)
	if err != nil {
		return ir.Post{}, fmt.Errorf("create post: %w", err)
	}
	p := ir.Post{
		ID:                  id,
		AuthorID:            authorID,
		AuthorName:          author.Name,
		AuthorAvatar:        author.Avatar,
		Content:             content,
		Timestamp:           e.clock.Now(),
		Likes:               []ir.Like{},
		Tips:                []ir.Tip{},
		AuthorWalletAddress: cloneString(author.WalletAddress),
	}
	if err := e.state.posts.Put(ctx, id, p); err != nil {
		return ir.Post{}, fmt.Errorf("create post: %w", err)
	}

	e.logger.Debug("post created", "id", id, "author_id", authorID)
	e.emit(ir.PostCreated{ID: id, AuthorID: authorID, Content: content, Timestamp: p.Timestamp})
	return p, nil
}

func (e *Engine) GetPost(ctx context.Context, id string) (ir.Post, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.post(ctx, id)
}

// GetAllPosts returns every post newest first.
func (e *Engine) GetAllPosts(ctx context.Context) ([]ir.Post, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.allPosts(ctx)
}

// GetPostsByAuthor returns authorID's posts newest first. Empty when none.
func (e *Engine) GetPostsByAuthor(ctx context.Context, authorID string) ([]ir.Post, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	posts, err := e.state.allPosts(ctx)
	if err != nil {
		return nil, err
	}
	return slices.DeleteFunc(posts, func(p ir.Post) bool { return p.AuthorID != authorID }), nil
}

// DeletePost removes the post with all its likes and tips. Only the author may
// delete. The post counter is not decremented.
func (e *Engine) DeletePost(ctx context.Context, postID, requesterID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	p, err := e.state.post(ctx, postID)
	if err != nil {
		return err
	}
	if p.AuthorID != requesterID {
		return NotPostAuthor(postID, requesterID)
	}
	if _, err := e.state.posts.Delete(ctx, postID); err != nil {
		return fmt.Errorf("delete post: %w", err)
	}

	e.logger.Debug("post deleted", "id", postID)
	e.emit(ir.PostDeleted{ID: postID, AuthorID: p.AuthorID})
	return nil
}

// LikePost adds a like by userID. Liking twice is a no-op: the post is
// returned unchanged, nothing is written and no event is emitted.
func (e *Engine) LikePost(ctx context.Context, postID, userID string) (ir.Post, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	p, err := e.state.post(ctx, postID)
	if err != nil {
		return ir.Post{}, err
	}
	u, err := e.state.user(ctx, userID)
	if err != nil {
		return ir.Post{}, err
	}
	if p.LikedBy(userID) {
		return p, nil
	}

	p.Likes = append(slices.Clone(p.Likes), ir.Like{
		UserID:    userID,
		UserName:  u.Name,
		Timestamp: e.clock.Now(),
	})
	if err := e.state.posts.Put(ctx, postID, p); err != nil {
		return ir.Post{}, fmt.Errorf("like post: %w", err)
	}

	e.logger.Debug("post liked", "id", postID, "user_id", userID)
	e.emit(ir.PostLiked{ID: postID, UserID: userID, UserName: u.Name})
	return p, nil
}

// UnlikePost removes any like by userID. The post is written back and
// PostUnliked emitted even when there was nothing to remove.
func (e *Engine) UnlikePost(ctx context.Context, postID, userID string) (ir.Post, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	p, err := e.state.post(ctx, postID)
	if err != nil {
		return ir.Post{}, err
	}

	p.Likes = slices.DeleteFunc(slices.Clone(p.Likes), func(l ir.Like) bool { return l.UserID == userID })
	if err := e.state.posts.Put(ctx, postID, p); err != nil {
		return ir.Post{}, fmt.Errorf("unlike post: %w", err)
	}

	e.logger.Debug("post unliked", "id", postID, "user_id", userID)
	e.emit(ir.PostUnliked{ID: postID, UserID: userID})
	return p, nil
}

func (e *Engine) CheckUserLikedPost(ctx context.Context, postID, userID string) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	p, err := e.state.post(ctx, postID)
	if err != nil {
		return false, err
	}
	return p.LikedBy(userID), nil
}

// RecordTip appends a tip. Tips are never deduplicated, by tx hash or
// otherwise. amount is stored verbatim.
func (e *Engine) RecordTip(ctx context.Context, postID, userID, amount, txHash string) (ir.Post, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := checkText("record_tip", "amount", amount, "tx_hash", txHash); err != nil {
		return ir.Post{}, err
	}

	p, err := e.state.post(ctx, postID)
	if err != nil {
		return ir.Post{}, err
	}
	u, err := e.state.user(ctx, userID)
	if err != nil {
		return ir.Post{}, err
	}

	p.Tips = append(slices.Clone(p.Tips), ir.Tip{
		UserID:    userID,
		UserName:  u.Name,
		Amount:    amount,
		Timestamp: e.clock.Now(),
		TxHash:    txHash,
	})
	if err := e.state.posts.Put(ctx, postID, p); err != nil {
		return ir.Post{}, fmt.Errorf("record tip: %w", err)
	}

	e.logger.Debug("tip recorded", "post_id", postID, "user_id", userID, "amount", amount)
	e.emit(ir.TipSent{
		PostID:     postID,
		TipperID:   userID,
		TipperName: u.Name,
		Amount:     amount,
		TxHash:     txHash,
	})
	return p, nil
}

// GetTipTotal sums the post's tip amounts exactly. Fails InvalidArgument if
// a stored amount is not a decimal number.
func (e *Engine) GetTipTotal(ctx context.Context, postID string) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	p, err := e.state.post(ctx, postID)
	if err != nil {
		return "", err
	}
	total := decimal.Zero
	for i, t := range p.Tips {
		d, err := decimal.NewFromString(t.Amount)
		if err != nil {
			return "", InvalidArgument("tip %d on post %s has malformed amount %q", i, postID, t.Amount)
		}
		total = total.Add(d)
	}
	return total.String(), nil
}

// GetPostCount returns how many posts were ever created. Deleted posts still count.
func (e *Engine) GetPostCount(ctx context.Context) (int64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.ids.Current(ctx, KindPost)
}
