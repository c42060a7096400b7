package core

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseActionGitCommit(t *testing.T) {
	action, err := ParseAction(json.RawMessage(`{"type":"git_commit","repo":"clawtech/verifier","sha":"abc123"}`))
	require.NoError(t, err)

	commit, ok := action.(GitCommitAction)
	require.True(t, ok)
	assert.Equal(t, ActionGitCommit, action.Kind())
	assert.Equal(t, "clawtech/verifier", commit.Repo)
	assert.Equal(t, "abc123", commit.SHA)

	wire := action.Wire()
	assert.Equal(t, "git_commit", wire["type"])
	assert.Equal(t, "abc123", wire["sha"])
}

func TestParseActionRelease(t *testing.T) {
	action, err := ParseAction(json.RawMessage(`{"type":"release","repo":"clawtech/verifier","tag":"v1.2.0"}`))
	require.NoError(t, err)

	release, ok := action.(ReleaseAction)
	require.True(t, ok)
	assert.Equal(t, "v1.2.0", release.Tag)
}

func TestParseActionPost(t *testing.T) {
	action, err := ParseAction(json.RawMessage(`{"type":"post","platform":"moltbook","url":"https://moltbook.com/p/1"}`))
	require.NoError(t, err)

	post, ok := action.(PostAction)
	require.True(t, ok)
	assert.Equal(t, "moltbook", post.Platform)
	assert.Equal(t, "https://moltbook.com/p/1", post.URL)
}

func TestParseActionCustom(t *testing.T) {
	action, err := ParseAction(json.RawMessage(`{"type":"custom","task":"deploy","target":"prod"}`))
	require.NoError(t, err)

	custom, ok := action.(CustomAction)
	require.True(t, ok)
	assert.Equal(t, "deploy", custom.Fields["task"])
	assert.NotContains(t, custom.Fields, "type")

	// The discriminant is re-added on the wire.
	assert.Equal(t, "custom", action.Wire()["type"])
	assert.Equal(t, "prod", action.Wire()["target"])
}

func TestParseActionMissingRequiredFields(t *testing.T) {
	cases := []string{
		`{"type":"git_commit","repo":"clawtech/verifier"}`,
		`{"type":"git_commit","sha":"abc123"}`,
		`{"type":"release","repo":"clawtech/verifier"}`,
		`{"type":"post","platform":"moltbook"}`,
	}
	for _, raw := range cases {
		_, err := ParseAction(json.RawMessage(raw))
		assert.Error(t, err, "payload %s", raw)
	}
}

func TestParseActionRejectsUnknownType(t *testing.T) {
	_, err := ParseAction(json.RawMessage(`{"type":"teleport","destination":"mars"}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown type")

	_, err = ParseAction(json.RawMessage(`{"repo":"clawtech/verifier"}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing type")

	_, err = ParseAction(json.RawMessage(`not json`))
	assert.Error(t, err)
}
