/**
 * @description
 * Domain models for movies and reactions. The likes and dislikes ledgers are
 * the source of truth; the counters on the movie record are a denormalized
 * cache maintained in the same transaction as the ledger mutation.
 */
package domain

import "time"

// Movie represents a catalog entry with denormalized reaction counters.
type Movie struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Genre         string    `json:"genre"`
	Rating        float64   `json:"rating"`
	Year          int       `json:"year"`
	LikesCount    int       `json:"likes_count"`
	DislikesCount int       `json:"dislikes_count"`
	CreatedAt     time.Time `json:"created_at"`
}

// ReactionCounts is the pair of counters returned after a reaction mutation.
type ReactionCounts struct {
	Likes    int `json:"likes"`
	Dislikes int `json:"dislikes"`
}

// ReactionStatus reports whether a user has reacted to a movie.
type ReactionStatus struct {
	Liked    bool `json:"liked"`
	Disliked bool `json:"disliked"`
}

// EngagementStats summarizes reactions for a movie. Ratios are percentages of
// total engagement rounded to one decimal place; both are zero when there is
// no engagement at all.
type EngagementStats struct {
	Likes           int     `json:"likes"`
	Dislikes        int     `json:"dislikes"`
	TotalEngagement int     `json:"total_engagement"`
	LikeRatio       float64 `json:"like_ratio"`
	DislikeRatio    float64 `json:"dislike_ratio"`
}

// Comment is a user remark on a movie.
type Comment struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Username  string    `json:"username,omitempty"`
	MovieID   string    `json:"movie_id"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}
