package model_test

import (
	"testing"
	"time"

	"github.com/m-mizutani/gt"

	"github.com/dmleblanc/gitrelay/pkg/domain/model"
)

func TestPushCommit_ResolveUsername(t *testing.T) {
	tests := []struct {
		name   string
		commit model.PushCommit
		want   string
	}{
		{
			name: "Author username used as-is",
			commit: model.PushCommit{
				AuthorUsername:    "alice",
				CommitterUsername: "bob",
				AuthorEmail:       "alice@example.com",
			},
			want: "alice",
		},
		{
			name: "Committer username when author username absent",
			commit: model.PushCommit{
				CommitterUsername: "bob",
				AuthorEmail:       "alice@example.com",
			},
			want: "bob",
		},
		{
			name: "No-reply email local part",
			commit: model.PushCommit{
				AuthorEmail: "alice@users.noreply.github.com",
			},
			want: "alice",
		},
		{
			name: "No-reply email with numeric ID prefix",
			commit: model.PushCommit{
				AuthorEmail: "12345+alice@users.noreply.github.com",
			},
			want: "alice",
		},
		{
			name: "Committer no-reply beats author plain email",
			commit: model.PushCommit{
				AuthorEmail:    "carol@example.com",
				CommitterEmail: "carol@users.noreply.github.com",
			},
			want: "carol",
		},
		{
			name: "Plain email local part",
			commit: model.PushCommit{
				AuthorEmail: "bob@example.com",
			},
			want: "bob",
		},
		{
			name:   "Nothing available",
			commit: model.PushCommit{},
			want:   "unknown",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gt.Value(t, tt.commit.ResolveUsername()).Equal(tt.want)
		})
	}
}

func TestPushEvent_Records(t *testing.T) {
	receivedAt := time.Date(2026, 3, 14, 9, 26, 53, 589_000_000, time.UTC)

	event := &model.PushEvent{
		Repository: "dmleblanc/site",
		Commits: []model.PushCommit{
			{SHA: "aaa1", Message: "first", AuthorUsername: "dmleblanc"},
			{SHA: "aaa2", Message: "second", AuthorUsername: "dmleblanc", Added: []string{"index.html"}},
			{SHA: "aaa3", Message: "third", AuthorUsername: "dmleblanc"},
		},
	}

	records := event.Records(receivedAt)
	gt.Number(t, len(records)).Equal(3)

	base := receivedAt.UnixMilli()
	wantTTL := receivedAt.Unix() + 2592000

	for i, rec := range records {
		gt.Value(t, rec.Repo).Equal("dmleblanc/site")
		gt.Number(t, rec.Timestamp).Equal(base + int64(i))
		gt.Number(t, rec.TTL).Equal(wantTTL)
	}

	// File lists default to empty, never nil
	gt.Value(t, records[0].Added).Equal([]string{})
	gt.Value(t, records[1].Added).Equal([]string{"index.html"})
	gt.Value(t, records[0].Removed).Equal([]string{})
	gt.Value(t, records[0].Modified).Equal([]string{})
}

func TestPushEvent_Records_TimestampsUnique(t *testing.T) {
	commits := make([]model.PushCommit, 20)
	event := &model.PushEvent{Repository: "dmleblanc/site", Commits: commits}

	records := event.Records(time.Now())

	seen := map[int64]bool{}
	var prev int64
	for i, rec := range records {
		gt.False(t, seen[rec.Timestamp])
		seen[rec.Timestamp] = true
		if i > 0 {
			gt.True(t, rec.Timestamp > prev)
		}
		prev = rec.Timestamp
	}
}
