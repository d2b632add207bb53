package mockapi

import (
	"crypto/rand"
	"math/big"
	"sort"
	"strings"
	"sync"
)

const (
	nameLength       = 14
	maxContentLength = 500
)

type userRecord struct {
	ID        int64
	Key       string
	Name      string
	Followers map[int64]bool
	Profile   map[string]string
}

type tweetRecord struct {
	ID          int64
	Content     string
	Attachments []string
	AuthorID    int64
	Likes       []int64
}

type mediaRecord struct {
	ID       int64
	Name     string
	Uploader int64
	Data     []byte
}

// store is the in-memory backend state.
type store struct {
	mu         sync.Mutex
	users      map[int64]*userRecord
	byKey      map[string]int64
	tweets     map[int64]*tweetRecord
	media      map[int64]*mediaRecord
	mediaNames map[string]int64
	nextUser   int64
	nextTweet  int64
	nextMedia  int64
}

func newStore() *store {
	return &store{
		users:      make(map[int64]*userRecord),
		byKey:      make(map[string]int64),
		tweets:     make(map[int64]*tweetRecord),
		media:      make(map[int64]*mediaRecord),
		mediaNames: make(map[string]int64),
	}
}

// userByKey returns the user owning key, registering one with a random
// name on first use.
func (s *store) userByKey(key string) *userRecord {
	if id, ok := s.byKey[key]; ok {
		return s.users[id]
	}
	return s.addUser(key, randomName())
}

func (s *store) addUser(key, name string) *userRecord {
	s.nextUser++
	u := &userRecord{
		ID:        s.nextUser,
		Key:       key,
		Name:      name,
		Followers: make(map[int64]bool),
		Profile:   map[string]string{"name": name},
	}
	s.users[u.ID] = u
	s.byKey[key] = u.ID
	return u
}

func (s *store) following(id int64) []int64 {
	var out []int64
	for _, u := range s.users {
		if u.Followers[id] {
			out = append(out, u.ID)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (s *store) orderedTweets() []*tweetRecord {
	out := make([]*tweetRecord, 0, len(s.tweets))
	for _, t := range s.tweets {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *store) hashtagCounts() map[string]int64 {
	counts := make(map[string]int64)
	for _, t := range s.tweets {
		for _, word := range strings.Fields(t.Content) {
			word = strings.TrimRight(word, ".,!?;:")
			if len(word) > 1 && strings.HasPrefix(word, "#") {
				counts[word]++
			}
		}
	}
	return counts
}

func sortedIDs(set map[int64]bool) []int64 {
	out := make([]int64, 0, len(set))
	for id, ok := range set {
		if ok {
			out = append(out, id)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func randomName() string {
	const letters = "abcdefghijklmnopqrstuvwxyz"
	b := make([]byte, nameLength)
	for i := range b {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(letters))))
		if err != nil {
			b[i] = 'x'
			continue
		}
		b[i] = letters[n.Int64()]
	}
	return string(b)
}
