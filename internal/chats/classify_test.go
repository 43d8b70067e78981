package chats

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		name        string
		chatName    string
		memberCount int
		public      bool
		want        ChatType
	}{
		{name: "unnamed pair", chatName: "", memberCount: 2, want: TypeSingle},
		{name: "unnamed trio", chatName: "", memberCount: 3, want: TypeGroup},
		{name: "unnamed five", chatName: "", memberCount: 5, want: TypeGroup},
		{name: "named public", chatName: "general", memberCount: 3, public: true, want: TypePublicChannel},
		{name: "named private", chatName: "ops", memberCount: 3, public: false, want: TypePrivateChannel},
		{name: "named pair stays channel", chatName: "duo", memberCount: 2, public: false, want: TypePrivateChannel},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Classify(tc.chatName, tc.memberCount, tc.public)
			if got != tc.want {
				t.Errorf("Classify(%q, %d, %v) = %q, want %q", tc.chatName, tc.memberCount, tc.public, got, tc.want)
			}
		})
	}
}

func TestPlanChatRejectsTooFewMembers(t *testing.T) {
	if _, _, err := planChat("", []int64{1}, false); !errors.Is(err, ErrInsufficientMembers) {
		t.Errorf("err = %v, want ErrInsufficientMembers", err)
	}
	// Duplicates collapse before the count check.
	if _, _, err := planChat("", []int64{7, 7, 7}, false); !errors.Is(err, ErrInsufficientMembers) {
		t.Errorf("err = %v, want ErrInsufficientMembers for all-duplicate members", err)
	}
}

func TestPlanChatRejectsUnnamedLargeGroup(t *testing.T) {
	nine := []int64{1, 2, 3, 4, 5, 6, 7, 8, 9}
	if _, _, err := planChat("", nine, false); !errors.Is(err, ErrUnnamedLargeGroup) {
		t.Errorf("err = %v, want ErrUnnamedLargeGroup", err)
	}

	// Eight unnamed members are still allowed.
	chatType, _, err := planChat("", nine[:8], false)
	if err != nil {
		t.Fatalf("eight unnamed members should be allowed: %v", err)
	}
	if chatType != TypeGroup {
		t.Errorf("type = %q, want group", chatType)
	}

	// Nine members with a name are allowed.
	chatType, _, err = planChat("announcements", nine, true)
	if err != nil {
		t.Fatalf("nine named members should be allowed: %v", err)
	}
	if chatType != TypePublicChannel {
		t.Errorf("type = %q, want public_channel", chatType)
	}
}

func TestPlanChatNormalizesMembers(t *testing.T) {
	chatType, members, err := planChat("", []int64{3, 1, 3, 2, 1}, false)
	if err != nil {
		t.Fatal(err)
	}
	// Insertion order is preserved while duplicates collapse.
	assert.Equal(t, []int64{3, 1, 2}, members)
	assert.Equal(t, TypeGroup, chatType)
}

func TestPlanChatClassifiesPair(t *testing.T) {
	chatType, _, err := planChat("", []int64{1, 2}, false)
	if err != nil {
		t.Fatal(err)
	}
	if chatType != TypeSingle {
		t.Errorf("type = %q, want single", chatType)
	}
}
