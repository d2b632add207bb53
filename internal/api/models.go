package api

// UserRef is the short form of a user used in lists.
type UserRef struct {
	ID   int64  `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

// User is a profile with its follow graph.
type User struct {
	ID        int64     `json:"id" yaml:"id"`
	Name      string    `json:"name" yaml:"name"`
	Followers []UserRef `json:"followers" yaml:"followers"`
	Following []UserRef `json:"following" yaml:"following"`
}

// IsFollowedBy reports whether userID follows u.
func (u *User) IsFollowedBy(userID int64) bool {
	for _, f := range u.Followers {
		if f.ID == userID {
			return true
		}
	}
	return false
}

// Like is a user who liked a tweet.
type Like struct {
	UserID int64  `json:"user_id" yaml:"user_id"`
	Name   string `json:"name" yaml:"name"`
}

type Tweet struct {
	ID          int64    `json:"id" yaml:"id"`
	Content     string   `json:"content" yaml:"content"`
	Attachments []string `json:"attachments" yaml:"attachments,omitempty"`
	Author      UserRef  `json:"author" yaml:"author"`
	Likes       []Like   `json:"likes" yaml:"likes,omitempty"`
}

// LikedBy reports whether userID liked t.
func (t *Tweet) LikedBy(userID int64) bool {
	for _, l := range t.Likes {
		if l.UserID == userID {
			return true
		}
	}
	return false
}

type Trend struct {
	Name        string `json:"name" yaml:"name"`
	TweetsCount int64  `json:"tweetsCount" yaml:"tweets_count"`
}

// NewTweet is the body of POST /api/tweets.
type NewTweet struct {
	Data     string  `json:"tweet_data"`
	MediaIDs []int64 `json:"tweet_media_ids"`
}

// TweetEdit is the body of PATCH /tweets.
type TweetEdit struct {
	ID      int64  `json:"id"`
	Content string `json:"content"`
}

// ProfileUpdate is the body of PUT /me; keys are profile fields.
type ProfileUpdate map[string]string

type userEnvelope struct {
	User User `json:"user"`
}

type tweetsEnvelope struct {
	Tweets []Tweet `json:"tweets"`
}

type trendsEnvelope struct {
	Trends []Trend `json:"trends"`
}

type addTweetEnvelope struct {
	TweetID int64 `json:"tweet_id"`
}

type addMediaEnvelope struct {
	MediaID int64 `json:"media_id"`
}

// ProfileUpdated is the reply of PUT /me.
type ProfileUpdated struct {
	Message string            `json:"message" yaml:"message"`
	Profile map[string]string `json:"updatedProfile" yaml:"profile"`
}

// TweetEdited is the reply of PATCH /tweets.
type TweetEdited struct {
	Message string `json:"message" yaml:"message"`
	ID      int64  `json:"id" yaml:"id"`
}
