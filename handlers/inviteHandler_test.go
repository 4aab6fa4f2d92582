package handlers_test

import (
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"sync"
	"testing"
	"time"

	"circleserver/models"
)

func acceptPath(code string) string {
	return "/api/invite/code/accept?code=" + url.QueryEscape(code)
}

func TestInviteCodeFormat(t *testing.T) {
	router, _ := setupTestEnv(t)
	token := signupAndLogin(t, router, "alice")

	code := createInviteCode(t, router, token)
	if !regexp.MustCompile(`^[0-9A-F]{6}$`).MatchString(code) {
		t.Errorf("code = %q, want 6 uppercase hex chars", code)
	}
}

func TestAcceptInviteCodeLifecycle(t *testing.T) {
	router, _ := setupTestEnv(t)
	aliceToken := signupAndLogin(t, router, "alice")
	bobToken := signupAndLogin(t, router, "bob")

	code := createInviteCode(t, router, aliceToken)

	w := doJSON(t, router, http.MethodGet, acceptPath(code), bobToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("accept: status = %d, body = %s", w.Code, w.Body.String())
	}

	// 使用済みコードの再利用は404
	carolToken := signupAndLogin(t, router, "carol")
	w = doJSON(t, router, http.MethodGet, acceptPath(code), carolToken, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("reuse: status = %d, want 404", w.Code)
	}

	// aliceの招待一覧にbobが現れる
	w = doJSON(t, router, http.MethodGet, "/api/invite/from-me", aliceToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("from-me: status = %d", w.Code)
	}
	data := dataOf(t, w)
	if totalCount := data["totalCount"].(float64); totalCount != 1 {
		t.Fatalf("totalCount = %v, want 1", totalCount)
	}
	invite := data["invites"].([]interface{})[0].(map[string]interface{})
	if toUser := invite["toUser"].(map[string]interface{}); toUser["nickname"] != "bob" {
		t.Errorf("toUser = %v, want bob", toUser["nickname"])
	}

	// bob側の一覧にもaliceが現れる
	w = doJSON(t, router, http.MethodGet, "/api/invite/to-me", bobToken, nil)
	data = dataOf(t, w)
	invite = data["invites"].([]interface{})[0].(map[string]interface{})
	if fromUser := invite["fromUser"].(map[string]interface{}); fromUser["nickname"] != "alice" {
		t.Errorf("fromUser = %v, want alice", fromUser["nickname"])
	}
}

func TestAcceptInviteCodeRejectsUnknownAndExpired(t *testing.T) {
	router, db := setupTestEnv(t)
	aliceToken := signupAndLogin(t, router, "alice")
	bobToken := signupAndLogin(t, router, "bob")

	w := doJSON(t, router, http.MethodGet, acceptPath("ZZZZZZ"), bobToken, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("unknown code: status = %d, want 404", w.Code)
	}

	w = doJSON(t, router, http.MethodGet, "/api/invite/code/accept", bobToken, nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("missing code: status = %d, want 400", w.Code)
	}

	// 有効期限切れにしてから受諾を試みる
	code := createInviteCode(t, router, aliceToken)
	if err := db.Model(&models.InviteCode{}).Where("code = ?", code).
		Update("expires_at", time.Now().Add(-time.Hour)).Error; err != nil {
		t.Fatalf("expire code: %v", err)
	}
	w = doJSON(t, router, http.MethodGet, acceptPath(code), bobToken, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("expired code: status = %d, want 404", w.Code)
	}
}

// 既に招待済みの相手が別コードを受諾した場合、エッジは二重化されず
// コードも消費されないままになること。
func TestAcceptInviteCodeDuplicateEdge(t *testing.T) {
	router, db := setupTestEnv(t)
	aliceToken := signupAndLogin(t, router, "alice")
	bobToken := signupAndLogin(t, router, "bob")

	first := createInviteCode(t, router, aliceToken)
	w := doJSON(t, router, http.MethodGet, acceptPath(first), bobToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("first accept: status = %d", w.Code)
	}

	second := createInviteCode(t, router, aliceToken)
	w = doJSON(t, router, http.MethodGet, acceptPath(second), bobToken, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("duplicate accept: status = %d, want 400", w.Code)
	}
	if code := errorCodeOf(t, w); code != models.CodeInviteDuplicate {
		t.Errorf("errorCode = %q, want %q", code, models.CodeInviteDuplicate)
	}

	var edges int64
	db.Model(&models.Invite{}).Where("from_user_id = ? OR to_user_id = ?", 1, 2).Count(&edges)
	if edges != 1 {
		t.Errorf("invite edges = %d, want 1", edges)
	}

	// トランザクションがロールバックされるので2つ目のコードは未消費のまま
	var inviteCode models.InviteCode
	if err := db.Where("code = ?", second).First(&inviteCode).Error; err != nil {
		t.Fatalf("fetch second code: %v", err)
	}
	if inviteCode.ToUserID != nil {
		t.Errorf("second code toUserID = %v, want nil", *inviteCode.ToUserID)
	}
}

// 同じコードへの同時受諾はちょうど1人だけ成功すること。
func TestAcceptInviteCodeConcurrent(t *testing.T) {
	router, _ := setupTestEnv(t)
	aliceToken := signupAndLogin(t, router, "alice")

	const racers = 5
	tokens := make([]string, racers)
	for i := range tokens {
		tokens[i] = signupAndLogin(t, router, fmt.Sprintf("racer%d", i))
	}

	code := createInviteCode(t, router, aliceToken)

	var wg sync.WaitGroup
	statuses := make([]int, racers)
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			w := doJSON(t, router, http.MethodGet, acceptPath(code), tokens[i], nil)
			statuses[i] = w.Code
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for i, status := range statuses {
		switch status {
		case http.StatusOK:
			succeeded++
		case http.StatusNotFound:
		default:
			t.Errorf("racer %d: unexpected status %d", i, status)
		}
	}
	if succeeded != 1 {
		t.Errorf("succeeded = %d, want exactly 1", succeeded)
	}
}

func TestDeleteInviteOwnership(t *testing.T) {
	router, _ := setupTestEnv(t)
	aliceToken := signupAndLogin(t, router, "alice")
	bobToken := signupAndLogin(t, router, "bob")

	code := createInviteCode(t, router, aliceToken)
	if w := doJSON(t, router, http.MethodGet, acceptPath(code), bobToken, nil); w.Code != http.StatusOK {
		t.Fatalf("accept: status = %d", w.Code)
	}

	w := doJSON(t, router, http.MethodGet, "/api/invite/from-me", aliceToken, nil)
	invite := dataOf(t, w)["invites"].([]interface{})[0].(map[string]interface{})
	inviteID := int(invite["id"].(float64))
	path := fmt.Sprintf("/api/invite/%d", inviteID)

	// 招待された側からは消せない
	w = doJSON(t, router, http.MethodDelete, path, bobToken, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("delete by invitee: status = %d, want 404", w.Code)
	}

	w = doJSON(t, router, http.MethodDelete, path, aliceToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("delete by inviter: status = %d", w.Code)
	}

	w = doJSON(t, router, http.MethodGet, "/api/invite/from-me", aliceToken, nil)
	if totalCount := dataOf(t, w)["totalCount"].(float64); totalCount != 0 {
		t.Errorf("totalCount after delete = %v, want 0", totalCount)
	}
}
