package ir

// User is a registered member of the network.
// ID is assigned once from the user counter and never changes.
type User struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Avatar        string  `json:"avatar"`
	Bio           string  `json:"bio"`
	WalletAddress *string `json:"wallet_address,omitempty"`
}

// Like records that a user liked a post.
// UserName is frozen at the time of the like.
type Like struct {
	UserID    string `json:"user_id"`
	UserName  string `json:"user_name"`
	Timestamp int64  `json:"timestamp"`
}

// Tip records an on-chain payment to a post's author.
// Amount is kept verbatim as a decimal string.
type Tip struct {
	UserID    string `json:"user_id"`
	UserName  string `json:"user_name"`
	Amount    string `json:"amount"`
	Timestamp int64  `json:"timestamp"`
	TxHash    string `json:"tx_hash"`
}

// Post is a piece of content with embedded likes and tips.
//
// AuthorName, AuthorAvatar and AuthorWalletAddress are snapshots taken when
// the post is created. Only AuthorName is rewritten later, when the author
// renames themselves.
type Post struct {
	ID                  string  `json:"id"`
	AuthorID            string  `json:"author_id"`
	AuthorName          string  `json:"author_name"`
	AuthorAvatar        string  `json:"author_avatar"`
	Content             string  `json:"content"`
	Timestamp           int64   `json:"timestamp"`
	Likes               []Like  `json:"likes"`
	Tips                []Tip   `json:"tips"`
	AuthorWalletAddress *string `json:"author_wallet_address,omitempty"`
}

// LikedBy reports whether userID has a like on the post.
func (p Post) LikedBy(userID string) bool {
	for _, l := range p.Likes {
		if l.UserID == userID {
			return true
		}
	}
	return false
}

// UserStats aggregates a user's activity for profile pages.
type UserStats struct {
	UserID         string `json:"user_id"`
	PostCount      int64  `json:"post_count"`
	TotalLikes     int64  `json:"total_likes"`
	FollowerCount  int64  `json:"follower_count"`
	FollowingCount int64  `json:"following_count"`
}

// StringPtr returns a pointer to s. Handy for optional wallet addresses.
func StringPtr(s string) *string {
	return &s
}
