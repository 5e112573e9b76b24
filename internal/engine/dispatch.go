package engine

import (
	"context"
	"slices"
	"unicode/utf8"

	"github.com/roach88/socialgraph/internal/ir"
)

// args reads typed operation arguments out of an IRObject.
type args struct {
	op  string
	obj ir.IRObject
}

func (a args) str(name string) (string, error) {
	v, ok := a.obj[name]
	if !ok {
		return "", InvalidArgument("%s: missing argument %q", a.op, name)
	}
	s, ok := v.(ir.IRString)
	if !ok {
		return "", InvalidArgument("%s: argument %q must be a string, got %T", a.op, name, v)
	}
	if !utf8.ValidString(string(s)) {
		return "", InvalidArgument("%s: argument %q is not valid UTF-8", a.op, name)
	}
	return string(s), nil
}

// optStr returns nil when name is absent or null.
func (a args) optStr(name string) (*string, error) {
	if a.obj.IsNull(name) {
		return nil, nil
	}
	s, err := a.str(name)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

type operation struct {
	mutation bool
	params   []string
	call     func(ctx context.Context, e *Engine, a args) (any, error)
}

var operations = map[string]operation{
	"create_user": {mutation: true, params: []string{"name", "avatar", "bio", "public_key", "wallet_address?"},
		call: func(ctx context.Context, e *Engine, a args) (any, error) {
			name, err := a.str("name")
			if err != nil {
				return nil, err
			}
			avatar, err := a.str("avatar")
			if err != nil {
				return nil, err
			}
			bio, err := a.str("bio")
			if err != nil {
				return nil, err
			}
			pk, err := a.str("public_key")
			if err != nil {
				return nil, err
			}
			wallet, err := a.optStr("wallet_address")
			if err != nil {
				return nil, err
			}
			return e.CreateUser(ctx, name, avatar, bio, pk, wallet)
		}},
	"get_user": {params: []string{"id"},
		call: func(ctx context.Context, e *Engine, a args) (any, error) {
			id, err := a.str("id")
			if err != nil {
				return nil, err
			}
			return e.GetUser(ctx, id)
		}},
	"get_all_users": {
		call: func(ctx context.Context, e *Engine, _ args) (any, error) {
			return e.GetAllUsers(ctx)
		}},
	"get_user_by_public_key": {params: []string{"public_key"},
		call: func(ctx context.Context, e *Engine, a args) (any, error) {
			pk, err := a.str("public_key")
			if err != nil {
				return nil, err
			}
			return e.GetUserByPublicKey(ctx, pk)
		}},
	"check_public_key_registered": {params: []string{"public_key"},
		call: func(ctx context.Context, e *Engine, a args) (any, error) {
			pk, err := a.str("public_key")
			if err != nil {
				return nil, err
			}
			return e.CheckPublicKeyRegistered(ctx, pk)
		}},
	"update_user": {mutation: true, params: []string{"id", "name", "bio", "wallet_address?"},
		call: func(ctx context.Context, e *Engine, a args) (any, error) {
			id, err := a.str("id")
			if err != nil {
				return nil, err
			}
			name, err := a.str("name")
			if err != nil {
				return nil, err
			}
			bio, err := a.str("bio")
			if err != nil {
				return nil, err
			}
			wallet, err := a.optStr("wallet_address")
			if err != nil {
				return nil, err
			}
			return e.UpdateUser(ctx, id, name, bio, wallet)
		}},
	"search_users_by_name": {params: []string{"name_prefix"},
		call: func(ctx context.Context, e *Engine, a args) (any, error) {
			prefix, err := a.str("name_prefix")
			if err != nil {
				return nil, err
			}
			return e.SearchUsersByName(ctx, prefix)
		}},
	"get_user_stats": {params: []string{"user_id"},
		call: func(ctx context.Context, e *Engine, a args) (any, error) {
			id, err := a.str("user_id")
			if err != nil {
				return nil, err
			}
			return e.GetUserStats(ctx, id)
		}},
	"create_post": {mutation: true, params: []string{"author_id", "content"},
		call: func(ctx context.Context, e *Engine, a args) (any, error) {
			author, err := a.str("author_id")
			if err != nil {
				return nil, err
			}
			content, err := a.str("content")
			if err != nil {
				return nil, err
			}
			return e.CreatePost(ctx, author, content)
		}},
	"get_post": {params: []string{"id"},
		call: func(ctx context.Context, e *Engine, a args) (any, error) {
			id, err := a.str("id")
			if err != nil {
				return nil, err
			}
			return e.GetPost(ctx, id)
		}},
	"get_all_posts": {
		call: func(ctx context.Context, e *Engine, _ args) (any, error) {
			return e.GetAllPosts(ctx)
		}},
	"get_posts_by_author": {params: []string{"author_id"},
		call: func(ctx context.Context, e *Engine, a args) (any, error) {
			author, err := a.str("author_id")
			if err != nil {
				return nil, err
			}
			return e.GetPostsByAuthor(ctx, author)
		}},
	"delete_post": {mutation: true, params: []string{"post_id", "requester_id"},
		call: func(ctx context.Context, e *Engine, a args) (any, error) {
			postID, err := a.str("post_id")
			if err != nil {
				return nil, err
			}
			requester, err := a.str("requester_id")
			if err != nil {
				return nil, err
			}
			return nil, e.DeletePost(ctx, postID, requester)
		}},
	"like_post": {mutation: true, params: []string{"post_id", "user_id"},
		call: func(ctx context.Context, e *Engine, a args) (any, error) {
			postID, userID, err := postAndUser(a)
			if err != nil {
				return nil, err
			}
			return e.LikePost(ctx, postID, userID)
		}},
	"unlike_post": {mutation: true, params: []string{"post_id", "user_id"},
		call: func(ctx context.Context, e *Engine, a args) (any, error) {
			postID, userID, err := postAndUser(a)
			if err != nil {
				return nil, err
			}
			return e.UnlikePost(ctx, postID, userID)
		}},
	"check_user_liked_post": {params: []string{"post_id", "user_id"},
		call: func(ctx context.Context, e *Engine, a args) (any, error) {
			postID, userID, err := postAndUser(a)
			if err != nil {
				return nil, err
			}
			return e.CheckUserLikedPost(ctx, postID, userID)
		}},
	"record_tip": {mutation: true, params: []string{"post_id", "user_id", "amount", "tx_hash"},
		call: func(ctx context.Context, e *Engine, a args) (any, error) {
			postID, userID, err := postAndUser(a)
			if err != nil {
				return nil, err
			}
			amount, err := a.str("amount")
			if err != nil {
				return nil, err
			}
			txHash, err := a.str("tx_hash")
			if err != nil {
				return nil, err
			}
			return e.RecordTip(ctx, postID, userID, amount, txHash)
		}},
	"get_tip_total": {params: []string{"post_id"},
		call: func(ctx context.Context, e *Engine, a args) (any, error) {
			postID, err := a.str("post_id")
			if err != nil {
				return nil, err
			}
			return e.GetTipTotal(ctx, postID)
		}},
	"get_post_count": {
		call: func(ctx context.Context, e *Engine, _ args) (any, error) {
			return e.GetPostCount(ctx)
		}},
	"follow_user": {mutation: true, params: []string{"follower_id", "followee_id"},
		call: func(ctx context.Context, e *Engine, a args) (any, error) {
			follower, followee, err := edge(a)
			if err != nil {
				return nil, err
			}
			return nil, e.FollowUser(ctx, follower, followee)
		}},
	"unfollow_user": {mutation: true, params: []string{"follower_id", "followee_id"},
		call: func(ctx context.Context, e *Engine, a args) (any, error) {
			follower, followee, err := edge(a)
			if err != nil {
				return nil, err
			}
			return nil, e.UnfollowUser(ctx, follower, followee)
		}},
	"is_following": {params: []string{"follower_id", "followee_id"},
		call: func(ctx context.Context, e *Engine, a args) (any, error) {
			follower, followee, err := edge(a)
			if err != nil {
				return nil, err
			}
			return e.IsFollowing(ctx, follower, followee)
		}},
	"get_followers": {params: []string{"user_id"},
		call: func(ctx context.Context, e *Engine, a args) (any, error) {
			id, err := a.str("user_id")
			if err != nil {
				return nil, err
			}
			return e.GetFollowers(ctx, id)
		}},
	"get_following": {params: []string{"user_id"},
		call: func(ctx context.Context, e *Engine, a args) (any, error) {
			id, err := a.str("user_id")
			if err != nil {
				return nil, err
			}
			return e.GetFollowing(ctx, id)
		}},
	"get_follower_count": {params: []string{"user_id"},
		call: func(ctx context.Context, e *Engine, a args) (any, error) {
			id, err := a.str("user_id")
			if err != nil {
				return nil, err
			}
			return e.GetFollowerCount(ctx, id)
		}},
	"get_following_count": {params: []string{"user_id"},
		call: func(ctx context.Context, e *Engine, a args) (any, error) {
			id, err := a.str("user_id")
			if err != nil {
				return nil, err
			}
			return e.GetFollowingCount(ctx, id)
		}},
	"get_following_feed": {params: []string{"user_id"},
		call: func(ctx context.Context, e *Engine, a args) (any, error) {
			id, err := a.str("user_id")
			if err != nil {
				return nil, err
			}
			return e.GetFollowingFeed(ctx, id)
		}},
}

func postAndUser(a args) (string, string, error) {
	postID, err := a.str("post_id")
	if err != nil {
		return "", "", err
	}
	userID, err := a.str("user_id")
	if err != nil {
		return "", "", err
	}
	return postID, userID, nil
}

func edge(a args) (string, string, error) {
	follower, err := a.str("follower_id")
	if err != nil {
		return "", "", err
	}
	followee, err := a.str("followee_id")
	if err != nil {
		return "", "", err
	}
	return follower, followee, nil
}

// Invoke runs the named operation with arguments taken from args.
// Unknown operations and missing or mistyped arguments fail InvalidArgument.
//
// The result is the operation's Go value (ir.User, ir.Post, []ir.Post,
// []string, bool, int64, string) or nil for operations with no result.
func (e *Engine) Invoke(ctx context.Context, op string, arguments ir.IRObject) (any, error) {
	o, ok := operations[op]
	if !ok {
		return nil, InvalidArgument("unknown operation %q", op)
	}
	if arguments == nil {
		arguments = ir.IRObject{}
	}
	return o.call(ctx, e, args{op: op, obj: arguments})
}

// Operations lists every operation name in sorted order.
func Operations() []string {
	names := make([]string, 0, len(operations))
	for name := range operations {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// IsMutation reports whether op can change state.
func IsMutation(op string) bool {
	return operations[op].mutation
}

// Params lists op's argument names. Optional arguments end in "?".
func Params(op string) []string {
	return slices.Clone(operations[op].params)
}
