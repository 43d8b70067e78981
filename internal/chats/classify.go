package chats

// Classify derives the chat type from its construction parameters. It is the
// only place a chat type comes from: creation and every later update re-run
// it against the merged name/member/public state.
//
//	unnamed, exactly two members   -> single
//	unnamed, any other count       -> group
//	named, public                  -> public_channel
//	named, not public              -> private_channel
func Classify(name string, memberCount int, public bool) ChatType {
	if name == "" {
		if memberCount == 2 {
			return TypeSingle
		}
		return TypeGroup
	}
	if public {
		return TypePublicChannel
	}
	return TypePrivateChannel
}

// maxUnnamedMembers is the largest member count an unnamed chat may have.
const maxUnnamedMembers = 8

// planChat normalizes the member list (collapsing duplicates, keeping
// insertion order), checks the count invariants, and classifies the chat.
// It does not touch storage; member existence is checked separately.
func planChat(name string, members []int64, public bool) (ChatType, []int64, error) {
	normalized := dedupe(members)
	if len(normalized) < 2 {
		return "", nil, ErrInsufficientMembers
	}
	if len(normalized) > maxUnnamedMembers && name == "" {
		return "", nil, ErrUnnamedLargeGroup
	}
	return Classify(name, len(normalized), public), normalized, nil
}

func dedupe(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
