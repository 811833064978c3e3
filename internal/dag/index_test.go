package dag

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack"

	"github.com/systemshift/gitlet/internal/errs"
)

func fakeID(prefix string) string {
	return prefix + strings.Repeat("0", IDLength-len(prefix))
}

func TestIndexFind(t *testing.T) {
	x := NewIndex()
	x.Add(fakeID("bbb"), "same")
	x.Add(fakeID("aaa"), "same")
	x.Add(fakeID("ccc"), "other")

	ids, err := x.Find("same")
	require.NoError(t, err)
	assert.Equal(t, []string{fakeID("aaa"), fakeID("bbb")}, ids)

	_, err = x.Find("missing")
	assert.ErrorIs(t, err, errs.ErrNotFound)
	assert.Equal(t, "Found no commit with that message.", errs.Message(err))
}

func TestIndexResolve(t *testing.T) {
	x := NewIndex()
	unique := fakeID("1234567a")
	twinA := fakeID("abcdef01")
	twinB := fakeID("abcdef02")
	for _, id := range []string{unique, twinA, twinB} {
		x.Add(id, "m")
	}

	tests := []struct {
		name    string
		op      string
		want    string
		wantMsg string
	}{
		{"full id", unique, unique, ""},
		{"uppercase full id", strings.ToUpper(unique), unique, ""},
		{"seven chars", "1234567", unique, ""},
		{"short prefix", "123", unique, ""},
		{"disambiguated past seven", "abcdef01", twinA, ""},
		{"ambiguous", "abcdef0", "", "Ambiguous commit id: abcdef0"},
		{"unknown prefix", "fffffff", "", "No commit with that id exists."},
		{"unknown full id", fakeID("ffff"), "", "No commit with that id exists."},
		{"empty", "", "", "No commit with that id exists."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := x.Resolve(tt.op)
			if tt.wantMsg != "" {
				require.Error(t, err)
				assert.Equal(t, tt.wantMsg, errs.Message(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIndexAbbrevCollisionsRetained(t *testing.T) {
	x := NewIndex()
	x.Add(fakeID("abcdef01"), "a")
	x.Add(fakeID("abcdef02"), "b")
	x.Add(fakeID("abcdef01"), "ignored")

	assert.Len(t, x.Abbrev["abcdef0"], 2)
	assert.Equal(t, "a", x.Messages[fakeID("abcdef01")])
}

func TestIndexMsgpackRoundTrip(t *testing.T) {
	x := NewIndex()
	x.Add(fakeID("abc1234"), "hello")

	data, err := msgpack.Marshal(x)
	require.NoError(t, err)

	var got Index
	require.NoError(t, msgpack.Unmarshal(data, &got))
	id, err := got.Resolve("abc1234")
	require.NoError(t, err)
	assert.Equal(t, fakeID("abc1234"), id)
}

func TestRefStore(t *testing.T) {
	refs, err := NewRefStore(filepath.Join(t.TempDir(), "refs"))
	require.NoError(t, err)

	require.NoError(t, refs.Set("master", fakeID("1")))
	require.NoError(t, refs.Set("dev", fakeID("2")))

	got, err := refs.Get("master")
	require.NoError(t, err)
	assert.Equal(t, fakeID("1"), got)
	assert.True(t, refs.Has("dev"))

	names, err := refs.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"dev", "master"}, names)

	require.NoError(t, refs.Delete("dev"))
	require.NoError(t, refs.Delete("dev"))
	_, err = refs.Get("dev")
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestValidRefName(t *testing.T) {
	for _, name := range []string{"master", "feature-1", "v1.2"} {
		assert.True(t, ValidRefName(name), name)
	}
	for _, name := range []string{"", ".", "..", ".hidden", "a/b", `a\b`} {
		assert.False(t, ValidRefName(name), name)
	}
}

func TestLogEntryFormat(t *testing.T) {
	e := LogEntry{
		ID:        fakeID("abc"),
		Timestamp: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
		Message:   "hello",
	}
	want := "===\ncommit " + fakeID("abc") + "\nDate: Tue Jan 2 03:04:05 2024 +0000\nhello\n\n"
	assert.Equal(t, want, e.Format(time.UTC))

	e.Parent = fakeID("1111111")
	e.MergeParent = fakeID("2222222")
	assert.Contains(t, e.Format(time.UTC), "\nMerge: 1111111 2222222\n")

	loc := time.FixedZone("PST", -8*3600)
	assert.Contains(t, e.Format(loc), "Date: Mon Jan 1 19:04:05 2024 -0800\n")
}

func TestLogStore(t *testing.T) {
	dir := t.TempDir()
	logs, err := NewLogStore(filepath.Join(dir, "logs"), filepath.Join(dir, "global-log"))
	require.NoError(t, err)

	empty, err := logs.Branch("master")
	require.NoError(t, err)
	assert.Empty(t, empty)

	require.NoError(t, logs.PrependBranch("master", "one\n"))
	require.NoError(t, logs.PrependBranch("master", "two\n"))
	got, err := logs.Branch("master")
	require.NoError(t, err)
	assert.Equal(t, "two\none\n", got)

	require.NoError(t, logs.WriteBranch("master", "reset\n"))
	got, _ = logs.Branch("master")
	assert.Equal(t, "reset\n", got)

	require.NoError(t, logs.PrependGlobal("g\n"))
	global, err := logs.Global()
	require.NoError(t, err)
	assert.Equal(t, "g\n", global)

	require.NoError(t, logs.DeleteBranch("master"))
	got, _ = logs.Branch("master")
	assert.Empty(t, got)
}

func TestGraphHistory(t *testing.T) {
	s, _ := openTestStore(t)
	root, err := s.StoreCommit(InitialCommit("master"))
	require.NoError(t, err)
	mid, err := s.StoreCommit(NewCommit("mid", "master", root, nil, time.Unix(10, 0)))
	require.NoError(t, err)
	tip, err := s.StoreCommit(NewCommit("tip", "master", mid, nil, time.Unix(20, 0)))
	require.NoError(t, err)

	g := NewGraph(s)
	entries, err := g.History(tip)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, []string{tip, mid, root}, []string{entries[0].ID, entries[1].ID, entries[2].ID})
	assert.Equal(t, InitialMessage, entries[2].Message)

	var seen []string
	err = g.Walk(tip, func(id string, c *Commit) error {
		seen = append(seen, id)
		if id == mid {
			return ErrStopWalk
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{tip, mid}, seen)
}
