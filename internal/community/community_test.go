package community

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestCommunityWithMembershipFlattensInJSON(t *testing.T) {
	c := CommunityWithMembership{
		Community: Community{
			ID:          uuid.New(),
			Name:        "Morning Runners",
			MemberCount: 42,
		},
		Joined: true,
	}

	out, err := json.Marshal(c)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	body := string(out)
	for _, key := range []string{`"name":"Morning Runners"`, `"member_count":42`, `"joined":true`} {
		if !strings.Contains(body, key) {
			t.Errorf("expected %s in %s", key, body)
		}
	}
	if strings.Contains(body, `"Community"`) {
		t.Errorf("embedded community must flatten, got %s", body)
	}
}
