package model

import "time"

// Activity is a stored commit mapped into the GitHub push-event
// envelope the portfolio front-end consumes.
type Activity struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	Public    bool            `json:"public"`
	CreatedAt string          `json:"created_at"`
	Repo      ActivityRepo    `json:"repo"`
	Payload   ActivityPayload `json:"payload"`
}

type ActivityRepo struct {
	Name string `json:"name"`
}

type ActivityPayload struct {
	Commits []ActivityCommit `json:"commits"`
}

type ActivityCommit struct {
	SHA     string         `json:"sha"`
	Message string         `json:"message"`
	Author  ActivityAuthor `json:"author"`
	URL     string         `json:"url"`
}

type ActivityAuthor struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// NewActivity wraps a commit record in the push-event envelope
func NewActivity(c *Commit) *Activity {
	return &Activity{
		ID:        c.SHA,
		Type:      "PushEvent",
		Public:    true,
		CreatedAt: time.UnixMilli(c.Timestamp).UTC().Format(time.RFC3339),
		Repo:      ActivityRepo{Name: c.Repo},
		Payload: ActivityPayload{
			Commits: []ActivityCommit{
				{
					SHA:     c.SHA,
					Message: c.Message,
					Author: ActivityAuthor{
						Name:  c.Author.Name,
						Email: c.Author.Email,
					},
					URL: c.URL,
				},
			},
		},
	}
}
