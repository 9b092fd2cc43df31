package blog

import "time"

// Meta carries post ownership and modification metadata. Timestamps are
// millisecond epoch values.
type Meta struct {
	CreatedBy       string `json:"created_by,omitempty"`
	CreatedTime     int64  `json:"created_time,omitempty"`
	UpdatedBy       string `json:"updated_by,omitempty"`
	LastUpdatedTime int64  `json:"last_updated_time,omitempty"`
}

// Post is a stored blog post. Deleted posts keep their record with IsDelete
// set; reads treat them as absent.
type Post struct {
	PostID  string `json:"post_id"`
	Title   string `json:"title"`
	Content string `json:"content"`
	Meta
	IsDelete bool `json:"is_delete"`
}

func nowMillis() int64 {
	return time.Now().UnixMilli()
}

// StampCreated fills creation and update metadata for a new post.
func (p *Post) StampCreated(userID string) {
	now := nowMillis()
	p.CreatedBy = userID
	p.CreatedTime = now
	p.UpdatedBy = userID
	p.LastUpdatedTime = now
}

// StampUpdated refreshes update metadata.
func (p *Post) StampUpdated(userID string) {
	p.UpdatedBy = userID
	p.LastUpdatedTime = nowMillis()
}
