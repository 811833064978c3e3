package dag

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommitEncoding(t *testing.T) {
	ts := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		name   string
		commit *Commit
		want   string
	}{
		{
			name:   "files sorted by name",
			commit: NewCommit("msg", "master", "", map[string]string{"b.txt": "2", "a.txt": "1"}, ts),
			want:   `{"blobs":{"a.txt":"1","b.txt":"2"},"branch":"master","message":"msg","parent":"","timestamp":"2024-01-01T00:00:00Z"}`,
		},
		{
			name:   "initial commit",
			commit: InitialCommit("master"),
			want:   `{"blobs":{},"branch":"master","message":"initial commit","parent":"","timestamp":"1970-01-01T00:00:00Z"}`,
		},
		{
			name: "merge parent included when set",
			commit: func() *Commit {
				c := NewCommit("merged", "dev", "p1", nil, ts)
				c.MergeParent = "p2"
				return c
			}(),
			want: `{"blobs":{},"branch":"dev","merge_parent":"p2","message":"merged","parent":"p1","timestamp":"2024-01-01T00:00:00Z"}`,
		},
		{
			name:   "local time and sub-second precision dropped",
			commit: NewCommit("m", "master", "", nil, time.Date(2024, 1, 1, 3, 0, 0, 999, time.FixedZone("X", 3*3600))),
			want:   `{"blobs":{},"branch":"master","message":"m","parent":"","timestamp":"2024-01-01T00:00:00Z"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.commit.Encode()
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got))
		})
	}
}

func TestCommitEncoding_IndependentOfMapOrder(t *testing.T) {
	names := []string{"e", "d", "c", "b", "a", "f", "g"}
	forward := map[string]string{}
	backward := map[string]string{}
	for i := range names {
		forward[names[i]] = names[i] + "1"
		backward[names[len(names)-1-i]] = names[len(names)-1-i] + "1"
	}
	a, err := NewCommit("m", "master", "", forward, time.Unix(100, 0)).ID()
	require.NoError(t, err)
	b, err := NewCommit("m", "master", "", backward, time.Unix(100, 0)).ID()
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestCommitEncoding_MessageEscaping(t *testing.T) {
	msg := "fix \"quoted\" bug\nsecond line <tag> & more"
	data, err := NewCommit(msg, "master", "", nil, time.Unix(0, 0)).Encode()
	require.NoError(t, err)

	var decoded Commit
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, msg, decoded.Message)
}

func TestBlobEncoding(t *testing.T) {
	data, err := NewBlob("a.txt", []byte("hi")).Encode()
	require.NoError(t, err)
	assert.Equal(t, `{"contents":"aGk=","name":"a.txt"}`, string(data))

	empty, err := NewBlob("a.txt", nil).Encode()
	require.NoError(t, err)
	assert.Equal(t, `{"contents":"","name":"a.txt"}`, string(empty))
}

func TestBlobID_CoversName(t *testing.T) {
	a, err := NewBlob("a.txt", []byte("same")).ID()
	require.NoError(t, err)
	b, err := NewBlob("b.txt", []byte("same")).ID()
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}
