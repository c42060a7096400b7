package core

import (
	"encoding/json"
	"fmt"
)

// ActionKind discriminates the claimed-action variants.
type ActionKind string

const (
	ActionGitCommit ActionKind = "git_commit"
	ActionRelease   ActionKind = "release"
	ActionPost      ActionKind = "post"
	ActionCustom    ActionKind = "custom"
)

// Action is a claimed action to be substantiated by the provenance service.
// Each variant carries the fields specific to its kind.
type Action interface {
	Kind() ActionKind
	// Wire returns the flat JSON object sent upstream: the discriminant plus
	// the variant's fields, matching the provenance collaborator's contract.
	Wire() map[string]interface{}
}

// GitCommitAction claims a specific commit was authored by the agent.
type GitCommitAction struct {
	Repo string `json:"repo"`
	SHA  string `json:"sha"`
}

func (GitCommitAction) Kind() ActionKind { return ActionGitCommit }

func (a GitCommitAction) Wire() map[string]interface{} {
	return map[string]interface{}{"type": string(ActionGitCommit), "repo": a.Repo, "sha": a.SHA}
}

// ReleaseAction claims the agent published a release.
type ReleaseAction struct {
	Repo string `json:"repo"`
	Tag  string `json:"tag"`
}

func (ReleaseAction) Kind() ActionKind { return ActionRelease }

func (a ReleaseAction) Wire() map[string]interface{} {
	return map[string]interface{}{"type": string(ActionRelease), "repo": a.Repo, "tag": a.Tag}
}

// PostAction claims the agent authored a post on a platform.
type PostAction struct {
	Platform string `json:"platform"`
	URL      string `json:"url"`
}

func (PostAction) Kind() ActionKind { return ActionPost }

func (a PostAction) Wire() map[string]interface{} {
	return map[string]interface{}{"type": string(ActionPost), "platform": a.Platform, "url": a.URL}
}

// CustomAction carries free-form fields for action kinds this service does
// not model explicitly. The provenance collaborator interprets them.
type CustomAction struct {
	Fields map[string]interface{} `json:"fields"`
}

func (CustomAction) Kind() ActionKind { return ActionCustom }

func (a CustomAction) Wire() map[string]interface{} {
	wire := map[string]interface{}{"type": string(ActionCustom)}
	for k, v := range a.Fields {
		if k == "type" {
			continue
		}
		wire[k] = v
	}
	return wire
}

// ParseAction decodes a flat action object ({"type": "...", ...fields}) into
// its typed variant. Unknown kinds are rejected.
func ParseAction(raw json.RawMessage) (Action, error) {
	var disc struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(raw, &disc); err != nil {
		return nil, fmt.Errorf("action: %w", err)
	}

	switch ActionKind(disc.Type) {
	case ActionGitCommit:
		var a GitCommitAction
		if err := json.Unmarshal(raw, &a); err != nil {
			return nil, fmt.Errorf("action %s: %w", disc.Type, err)
		}
		if a.Repo == "" || a.SHA == "" {
			return nil, fmt.Errorf("action %s: repo and sha are required", disc.Type)
		}
		return a, nil
	case ActionRelease:
		var a ReleaseAction
		if err := json.Unmarshal(raw, &a); err != nil {
			return nil, fmt.Errorf("action %s: %w", disc.Type, err)
		}
		if a.Repo == "" || a.Tag == "" {
			return nil, fmt.Errorf("action %s: repo and tag are required", disc.Type)
		}
		return a, nil
	case ActionPost:
		var a PostAction
		if err := json.Unmarshal(raw, &a); err != nil {
			return nil, fmt.Errorf("action %s: %w", disc.Type, err)
		}
		if a.URL == "" {
			return nil, fmt.Errorf("action %s: url is required", disc.Type)
		}
		return a, nil
	case ActionCustom:
		var fields map[string]interface{}
		if err := json.Unmarshal(raw, &fields); err != nil {
			return nil, fmt.Errorf("action %s: %w", disc.Type, err)
		}
		delete(fields, "type")
		return CustomAction{Fields: fields}, nil
	case "":
		return nil, fmt.Errorf("action: missing type discriminant")
	default:
		return nil, fmt.Errorf("action: unknown type %q", disc.Type)
	}
}
