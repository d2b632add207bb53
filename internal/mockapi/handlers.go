package mockapi

import (
	"encoding/json"
	"io"
	"net/http"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

const maxUploadSize = 10 << 20

type userRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type userDoc struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Followers []userRef `json:"followers"`
	Following []userRef `json:"following"`
}

type likeDoc struct {
	UserID int64  `json:"user_id"`
	Name   string `json:"name"`
}

type tweetDoc struct {
	ID          int64     `json:"id"`
	Content     string    `json:"content"`
	Attachments []string  `json:"attachments"`
	Author      userRef   `json:"author"`
	Likes       []likeDoc `json:"likes"`
}

type trendDoc struct {
	Name        string `json:"name"`
	TweetsCount int64  `json:"tweetsCount"`
}

// The helpers below expect s.store.mu to be held.

func (s *Server) userRef(id int64) userRef {
	if u, ok := s.store.users[id]; ok {
		return userRef{ID: u.ID, Name: u.Name}
	}
	return userRef{ID: id}
}

func (s *Server) userDoc(u *userRecord) userDoc {
	doc := userDoc{ID: u.ID, Name: u.Name, Followers: []userRef{}, Following: []userRef{}}
	for _, id := range sortedIDs(u.Followers) {
		doc.Followers = append(doc.Followers, s.userRef(id))
	}
	for _, id := range s.store.following(u.ID) {
		doc.Following = append(doc.Following, s.userRef(id))
	}
	return doc
}

func (s *Server) tweetDoc(t *tweetRecord) tweetDoc {
	doc := tweetDoc{
		ID:          t.ID,
		Content:     t.Content,
		Attachments: append([]string{}, t.Attachments...),
		Author:      s.userRef(t.AuthorID),
		Likes:       []likeDoc{},
	}
	for _, id := range t.Likes {
		ref := s.userRef(id)
		doc.Likes = append(doc.Likes, likeDoc{UserID: ref.ID, Name: ref.Name})
	}
	return doc
}

func pathID(r *http.Request) int64 {
	id, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	return id
}

func (s *Server) getMe(w http.ResponseWriter, r *http.Request) {
	s.store.mu.Lock()
	doc := s.userDoc(s.store.users[callerID(r)])
	s.store.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"result": true, "user": doc})
}

func (s *Server) getUser(w http.ResponseWriter, r *http.Request) {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	u, ok := s.store.users[pathID(r)]
	if !ok {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"result": true, "user": s.userDoc(u)})
}

func (s *Server) follow(w http.ResponseWriter, r *http.Request) {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	target, ok := s.store.users[pathID(r)]
	if !ok {
		writeError(w, http.StatusNotFound, "User to follow not found")
		return
	}
	me := callerID(r)
	if target.Followers[me] {
		writeError(w, http.StatusMethodNotAllowed, "Already following this user")
		return
	}
	target.Followers[me] = true
	writeJSON(w, http.StatusOK, map[string]bool{"result": true})
}

func (s *Server) unfollow(w http.ResponseWriter, r *http.Request) {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	target, ok := s.store.users[pathID(r)]
	if !ok {
		writeError(w, http.StatusNotFound, "User to unfollow not found.")
		return
	}
	me := callerID(r)
	if !target.Followers[me] {
		writeError(w, http.StatusMethodNotAllowed, "Not following this user.")
		return
	}
	delete(target.Followers, me)
	writeJSON(w, http.StatusOK, map[string]bool{"result": true})
}

func (s *Server) listTweets(w http.ResponseWriter, r *http.Request) {
	offset, limit, err := pageParams(r)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	all := s.store.orderedTweets()
	if offset > len(all) {
		offset = len(all)
	}
	all = all[offset:]
	if limit >= 0 && limit < len(all) {
		all = all[:limit]
	}
	docs := make([]tweetDoc, 0, len(all))
	for _, t := range all {
		docs = append(docs, s.tweetDoc(t))
	}
	writeJSON(w, http.StatusOK, map[string]any{"result": true, "tweets": docs})
}

// pageParams reads offset and limit; limit -1 means unbounded.
func pageParams(r *http.Request) (offset, limit int, err error) {
	limit = -1
	q := r.URL.Query()
	if v := q.Get("offset"); v != "" {
		if offset, err = strconv.Atoi(v); err != nil || offset < 0 {
			return 0, 0, errBadQuery("offset")
		}
	}
	if v := q.Get("limit"); v != "" {
		if limit, err = strconv.Atoi(v); err != nil || limit < 0 {
			return 0, 0, errBadQuery("limit")
		}
	}
	return offset, limit, nil
}

type errBadQuery string

func (e errBadQuery) Error() string { return "invalid query parameter " + string(e) }

type createTweetRequest struct {
	TweetData     *string `json:"tweet_data"`
	TweetMediaIDs []int64 `json:"tweet_media_ids"`
}

func (s *Server) createTweet(w http.ResponseWriter, r *http.Request) {
	var req createTweetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.TweetData == nil {
		writeError(w, http.StatusUnprocessableEntity, "tweet_data is required")
		return
	}
	if len([]rune(*req.TweetData)) > maxContentLength {
		writeFailure(w, "DataError", "tweet content is longer than 500 characters")
		return
	}

	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	var attachments []string
	for _, id := range req.TweetMediaIDs {
		if m, ok := s.store.media[id]; ok {
			attachments = append(attachments, mediaLink(r, m.Name))
		}
	}
	s.store.nextTweet++
	t := &tweetRecord{
		ID:          s.store.nextTweet,
		Content:     *req.TweetData,
		Attachments: attachments,
		AuthorID:    callerID(r),
	}
	s.store.tweets[t.ID] = t
	writeJSON(w, http.StatusOK, map[string]any{"result": true, "tweet_id": t.ID})
}

func (s *Server) deleteTweet(w http.ResponseWriter, r *http.Request) {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	t, ok := s.store.tweets[pathID(r)]
	if !ok {
		writeError(w, http.StatusNotFound, "Tweet not found")
		return
	}
	if t.AuthorID != callerID(r) {
		writeError(w, http.StatusForbidden, "Not authorized to delete this tweet")
		return
	}
	delete(s.store.tweets, t.ID)
	writeJSON(w, http.StatusOK, map[string]bool{"result": true})
}

func (s *Server) like(w http.ResponseWriter, r *http.Request) {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	t, ok := s.store.tweets[pathID(r)]
	if !ok {
		writeError(w, http.StatusNotFound, "Tweet not found.")
		return
	}
	me := callerID(r)
	for _, id := range t.Likes {
		if id == me {
			writeError(w, http.StatusMethodNotAllowed, "Tweet already liked.")
			return
		}
	}
	t.Likes = append(t.Likes, me)
	writeJSON(w, http.StatusOK, map[string]bool{"result": true})
}

func (s *Server) unlike(w http.ResponseWriter, r *http.Request) {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	t, ok := s.store.tweets[pathID(r)]
	if !ok {
		writeError(w, http.StatusNotFound, "Tweet not found.")
		return
	}
	me := callerID(r)
	for i, id := range t.Likes {
		if id == me {
			t.Likes = append(t.Likes[:i], t.Likes[i+1:]...)
			writeJSON(w, http.StatusOK, map[string]bool{"result": true})
			return
		}
	}
	writeError(w, http.StatusMethodNotAllowed, "Tweet was not liked.")
}

func (s *Server) uploadMedia(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "file is required")
		return
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, "file too large")
		return
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if ext == "" {
		ext = mimetype.Detect(data).Extension()
	}
	name := uuid.NewString() + ext

	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	s.store.nextMedia++
	m := &mediaRecord{ID: s.store.nextMedia, Name: name, Uploader: callerID(r), Data: data}
	s.store.media[m.ID] = m
	s.store.mediaNames[name] = m.ID
	writeJSON(w, http.StatusOK, map[string]any{"result": true, "media_id": m.ID})
}

func (s *Server) getImage(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	s.store.mu.Lock()
	id, ok := s.store.mediaNames[name]
	var data []byte
	if ok {
		data = s.store.media[id].Data
	}
	s.store.mu.Unlock()
	if !ok {
		writeFailure(w, "FileNotFoundError", "File "+name+" not Found")
		return
	}
	w.Header().Set("Content-Type", mimetype.Detect(data).String())
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func mediaLink(r *http.Request, name string) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + r.Host + "/api/images/" + name
}

func (s *Server) trends(w http.ResponseWriter, r *http.Request) {
	s.store.mu.Lock()
	counts := s.store.hashtagCounts()
	s.store.mu.Unlock()

	docs := make([]trendDoc, 0, len(counts))
	for name, n := range counts {
		docs = append(docs, trendDoc{Name: name, TweetsCount: n})
	}
	sort.Slice(docs, func(i, j int) bool {
		if docs[i].TweetsCount != docs[j].TweetsCount {
			return docs[i].TweetsCount > docs[j].TweetsCount
		}
		return docs[i].Name < docs[j].Name
	})
	writeJSON(w, http.StatusOK, map[string]any{"trends": docs})
}

func (s *Server) legacyMe(w http.ResponseWriter, r *http.Request) {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	writeJSON(w, http.StatusOK, s.userDoc(s.store.users[callerID(r)]))
}

func (s *Server) updateProfile(w http.ResponseWriter, r *http.Request) {
	var fields map[string]string
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "profile fields must be a JSON object of strings")
		return
	}
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	u := s.store.users[callerID(r)]
	for k, v := range fields {
		u.Profile[k] = v
	}
	if name := fields["name"]; name != "" {
		u.Name = name
	}
	profile := make(map[string]string, len(u.Profile))
	for k, v := range u.Profile {
		profile[k] = v
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message":        "Edited successfully!",
		"updatedProfile": profile,
	})
}

type editTweetRequest struct {
	ID      int64   `json:"id"`
	Content *string `json:"content"`
}

func (s *Server) editTweet(w http.ResponseWriter, r *http.Request) {
	var req editTweetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Content == nil {
		writeError(w, http.StatusUnprocessableEntity, "id and content are required")
		return
	}
	if len([]rune(*req.Content)) > maxContentLength {
		writeFailure(w, "DataError", "tweet content is longer than 500 characters")
		return
	}
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	t, ok := s.store.tweets[req.ID]
	if !ok {
		writeError(w, http.StatusNotFound, "Tweet not found")
		return
	}
	if t.AuthorID != callerID(r) {
		writeError(w, http.StatusForbidden, "Not authorized to edit this tweet")
		return
	}
	t.Content = *req.Content
	writeJSON(w, http.StatusOK, map[string]any{"message": "Tweet is edited successfully", "id": t.ID})
}

func (s *Server) userTweets(w http.ResponseWriter, r *http.Request) {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	author := pathID(r)
	if _, ok := s.store.users[author]; !ok {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}
	docs := []tweetDoc{}
	for _, t := range s.store.orderedTweets() {
		if t.AuthorID == author {
			docs = append(docs, s.tweetDoc(t))
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"tweets": docs})
}
